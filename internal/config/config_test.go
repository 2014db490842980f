package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
    t.Helper()
    for k, v := range map[string]string{
        "APP_ENV":              "dev",
        "APP_PORT":             "8080",
        "STORAGE_DRIVER":       "memory",
        "JWT_SECRET":           "secret",
        "ACCESS_TOKEN_TTL_MIN": "30",
        "BCRYPT_COST":          "10",
        "ADMIN_EMAIL":          "admin@greenwave.io",
        "ADMIN_PASSWORD":       "adminpass1",
    } {
        t.Setenv(k, v)
    }
}

func TestLoad_MemoryStorage(t *testing.T) {
    setBaseEnv(t)

    cfg, err := Load()

    require.NoError(t, err)
    assert.Equal(t, StorageMemory, cfg.Storage)
    assert.Equal(t, 30, cfg.AccessTTLMin)
    assert.Equal(t, "Administrator", cfg.AdminName)
    assert.False(t, cfg.IsProd())
}

func TestLoad_MySQLRequiresDatabase(t *testing.T) {
    setBaseEnv(t)
    t.Setenv("STORAGE_DRIVER", "mysql")
    t.Setenv("DB_USER", "")
    t.Setenv("DB_NAME", "")

    _, err := Load()

    require.Error(t, err)
    assert.Contains(t, err.Error(), "DB_USER")
    assert.Contains(t, err.Error(), "DB_NAME")
}

func TestLoad_ReportsBadValues(t *testing.T) {
    setBaseEnv(t)
    t.Setenv("BCRYPT_COST", "ten")
    t.Setenv("STORAGE_DRIVER", "postgres")

    _, err := Load()

    require.Error(t, err)
    assert.Contains(t, err.Error(), "BCRYPT_COST")
    assert.Contains(t, err.Error(), "postgres")
}

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")

    cfg := LoadRateLimitConfig()

    assert.Equal(t, 1, cfg.Capacity)
    assert.Equal(t, 10*time.Second, cfg.TTL)
    assert.Equal(t, 0.5, cfg.PerSecond())
}

func TestLoadQueueConfig_FallsBackToAMQPURL(t *testing.T) {
    t.Setenv("RABBITMQ_URL", "")
    t.Setenv("AMQP_URL", "amqp://u:p@mq:5672/")
    t.Setenv("QUEUE_ENABLED", "off")

    cfg := LoadQueueConfig()

    assert.Equal(t, "amqp://u:p@mq:5672/", cfg.URL)
    assert.False(t, cfg.Enabled)
    assert.Equal(t, "conference.events", cfg.Name)
}

func TestRedisOptions(t *testing.T) {
    t.Setenv("REDIS_ADDR", "cache:6380")
    t.Setenv("REDIS_HOST", "")
    t.Setenv("REDIS_DB", "2")

    opts := RedisOptions()

    assert.Equal(t, "cache:6380", opts.Addr)
    assert.Equal(t, 2, opts.DB)
    assert.Nil(t, opts.TLSConfig)
}
