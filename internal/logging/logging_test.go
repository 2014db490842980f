package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_ProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger("prod", "", &buf)

	log.WithField("attendee_id", "U1").Info("login")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "U1", line["attendee_id"])
	assert.Equal(t, "login", line["msg"])
}

func TestNewLogger_Level(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, newLogger("dev", "debug", &bytes.Buffer{}).GetLevel())
	assert.Equal(t, logrus.InfoLevel, newLogger("dev", "nonsense", &bytes.Buffer{}).GetLevel())
}
