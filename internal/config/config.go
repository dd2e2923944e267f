package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
    "time"     // durations for the sweep interval
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values are enforced by must(); the
// optional ones fall back to defaults that match production behaviour
// (30 day sessions, 5MB uploads, a 10 minute subscription sweep).
type Config struct {
    Env            string        // application environment (e.g. "dev", "prod")
    Port           string        // HTTP port to listen on
    DBUser         string        // database username
    DBPass         string        // database password (optional)
    DBHost         string        // database host address
    DBPort         string        // database port number
    DBName         string        // database name
    SessionSecret  string        // secret used to sign session cookies
    SessionTTLDays int           // session lifetime in days
    CookieSecure   bool          // mark the session cookie Secure
    BcryptCost     int           // bcrypt cost for password hashing
    UploadDir      string        // directory uploaded images are written to
    UploadMaxBytes int64         // upper bound for a single uploaded image
    SweepInterval  time.Duration // period of the subscription expiry sweep
    EventsEnabled  bool          // publish domain events to RabbitMQ
    SeedDemo       bool          // insert demo data into an empty database
}

// Load reads configuration values from environment variables and returns a
// Config.  Missing required variables cause the program to exit with a
// fatal log message.
func Load() Config {
    env := must("APP_ENV")
    return Config{
        Env:            env,
        Port:           must("APP_PORT"),
        DBUser:         must("DB_USER"),
        DBPass:         os.Getenv("DB_PASS"), // empty allowed
        DBHost:         must("DB_HOST"),
        DBPort:         must("DB_PORT"),
        DBName:         must("DB_NAME"),
        SessionSecret:  must("SESSION_SECRET"),
        SessionTTLDays: envInt("SESSION_TTL_DAYS", 30),
        CookieSecure:   envBool("COOKIE_SECURE", env == "prod"),
        BcryptCost:     mustInt("BCRYPT_COST"),
        UploadDir:      envStr("UPLOAD_DIR", "uploads"),
        UploadMaxBytes: int64(envInt("UPLOAD_MAX_BYTES", 5*1024*1024)),
        SweepInterval:  envDur("SWEEP_INTERVAL", 10*time.Minute),
        EventsEnabled:  envBool("EVENTS_ENABLED", true),
        SeedDemo:       envBool("SEED_DEMO", false),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
