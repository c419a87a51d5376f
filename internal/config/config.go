package config // package config loads application configuration from environment variables

import (
	"os"      // os provides access to environment variables
	"strings" // strings splits list-valued variables

	"github.com/joho/godotenv"      // godotenv loads a local .env file into the environment
	"github.com/labstack/gommon/log" // log is used to report configuration errors and halt execution
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
	Env            string   // application environment (e.g. "dev", "prod")
	Port           string   // HTTP port to listen on
	DBDriver       string   // database driver: "mysql" or "sqlite3"
	DBUser         string   // database username
	DBPass         string   // database password (optional)
	DBHost         string   // database host address
	DBPort         string   // database port number
	DBName         string   // database name
	DBPath         string   // sqlite3 database file
	JWTSecret      string   // secret used to sign JWTs
	AccessTTLMin   int      // access token time‑to‑live in minutes
	BcryptCost     int      // bcrypt cost for password hashing
	MaxUploadMB    int      // request body cap for movie uploads
	CORSOrigins    []string // allowed CORS origins
	AMQPURL        string   // broker for activity events; empty disables publishing
	LogLevel       string   // debug, info, warn or error
	LogFile        string   // optional log file when Papertrail is not configured
	PapertrailHost string   // optional Papertrail syslog host
	PapertrailPort string   // optional Papertrail syslog port
}

// Load reads configuration values from a .env file (when present) and the
// environment and returns a Config.  Required variables are enforced by
// must() and missing values cause the program to exit with a fatal log message.
func Load() Config {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg := Config{
		Env:            must("APP_ENV"),                          // environment (dev/test/prod)
		Port:           must("APP_PORT"),                         // port to bind the HTTP server
		DBDriver:       envStr("DB_DRIVER", "mysql"),             // store driver
		JWTSecret:      must("JWT_SECRET"),                       // secret used for signing JWTs
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 30),       // TTL for access tokens in minutes
		BcryptCost:     envInt("BCRYPT_COST", 10),                // bcrypt cost factor
		MaxUploadMB:    envInt("MAX_UPLOAD_MB", 64),              // upload body limit
		CORSOrigins:    splitList(envStr("CORS_ALLOWED_ORIGINS", "*")),
		AMQPURL:        firstEnv("RABBITMQ_URL", "AMQP_URL"),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		LogFile:        os.Getenv("LOG_FILE"),
		PapertrailHost: os.Getenv("PAPERTRAIL_HOST"),
		PapertrailPort: os.Getenv("PAPERTRAIL_PORT"),
	}
	switch cfg.DBDriver {
	case "mysql":
		cfg.DBUser = must("DB_USER")     // database user
		cfg.DBPass = os.Getenv("DB_PASS") // database password (empty allowed)
		cfg.DBHost = must("DB_HOST")     // database host
		cfg.DBPort = must("DB_PORT")     // database port
		cfg.DBName = must("DB_NAME")     // database name
	case "sqlite3":
		cfg.DBPath = envStr("DB_PATH", "movies.db")
	default:
		log.Fatalf("unsupported DB_DRIVER: %q", cfg.DBDriver)
	}
	return cfg
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

// firstEnv returns the first non-empty value among keys.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
