package config // package config loads application configuration from environment variables

import (
    "errors"
    "fmt"
    "os"
    "strconv"
    "strings"
)

// Storage drivers accepted in STORAGE_DRIVER.
const (
    StorageMemory = "memory"
    StorageMySQL  = "mysql"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
    Env           string // application environment (e.g. "dev", "prod")
    Port          string // HTTP port to listen on
    Storage       string // snapshot backend: memory or mysql
    DBUser        string // database username
    DBPass        string // database password (optional)
    DBHost        string // database host address
    DBPort        string // database port number
    DBName        string // database name
    JWTSecret     string // secret used to sign JWTs
    AccessTTLMin  int    // access token and session lifetime in minutes
    BcryptCost    int    // bcrypt cost for password hashing
    AdminName     string // display name of the seeded administrator
    AdminEmail    string // login of the seeded administrator
    AdminPassword string // initial credential of the seeded administrator
}

// IsProd reports whether the service runs in production.
func (c Config) IsProd() bool {
    return strings.EqualFold(c.Env, "prod") || strings.EqualFold(c.Env, "production")
}

// Load reads configuration values from environment variables.  Every
// missing or malformed required variable is reported in the returned
// error.  DB_* values are only required by the mysql storage driver.
func Load() (Config, error) {
    var l loader
    cfg := Config{
        Env:           l.must("APP_ENV"),
        Port:          l.must("APP_PORT"),
        Storage:       strings.ToLower(envStr("STORAGE_DRIVER", StorageMySQL)),
        JWTSecret:     l.must("JWT_SECRET"),
        AccessTTLMin:  l.mustInt("ACCESS_TOKEN_TTL_MIN"),
        BcryptCost:    l.mustInt("BCRYPT_COST"),
        AdminName:     envStr("ADMIN_NAME", "Administrator"),
        AdminEmail:    l.must("ADMIN_EMAIL"),
        AdminPassword: l.must("ADMIN_PASSWORD"),
    }
    switch cfg.Storage {
    case StorageMySQL:
        cfg.DBUser = l.must("DB_USER")
        cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
        cfg.DBHost = l.must("DB_HOST")
        cfg.DBPort = l.must("DB_PORT")
        cfg.DBName = l.must("DB_NAME")
    case StorageMemory:
    default:
        l.errs = append(l.errs, fmt.Errorf("invalid STORAGE_DRIVER %q", cfg.Storage))
    }
    if cfg.AccessTTLMin <= 0 && !l.failed["ACCESS_TOKEN_TTL_MIN"] {
        l.errs = append(l.errs, errors.New("ACCESS_TOKEN_TTL_MIN must be positive"))
    }
    return cfg, errors.Join(l.errs...)
}

type loader struct {
    errs   []error
    failed map[string]bool
}

// must retrieves the value of a required environment variable and records
// an error when it is unset or empty.
func (l *loader) must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        l.fail(key, fmt.Errorf("missing required env var: %s", key))
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func (l *loader) mustInt(key string) int {
    s := l.must(key)
    if s == "" {
        return 0
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        l.fail(key, fmt.Errorf("invalid int for %s: %q", key, s))
    }
    return n
}

func (l *loader) fail(key string, err error) {
    if l.failed == nil {
        l.failed = map[string]bool{}
    }
    l.failed[key] = true
    l.errs = append(l.errs, err)
}
