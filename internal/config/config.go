package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time expresses TTLs and backoff durations
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Booking tunables (hold TTL, cancellation cutoff,
// seats per booking, transaction retry policy) have defaults matching the
// business rules and can be overridden per environment.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	DBUser    string // database username
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	JWTSecret string // secret used to verify customer JWTs

	HoldTTL            time.Duration // how long a seat hold lives before expiring
	CancelCutoff       time.Duration // minimum lead time before showtime start to allow cancellation
	MaxSeatsPerBooking int           // upper bound on seats in one booking
	TxMaxAttempts      int           // retry ceiling for transient storage conflicts
	TxRetryBase        time.Duration // initial backoff between transaction retries
	ReapInterval       time.Duration // period of the background hold reaper
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message; tunables fall back
// to their defaults.
func Load() Config {
	return Config{
		Env:       must("APP_ENV"),      // environment (dev/test/prod)
		Port:      must("APP_PORT"),     // port to bind the HTTP server
		DBUser:    must("DB_USER"),      // database user
		DBPass:    os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:    must("DB_HOST"),      // database host
		DBPort:    must("DB_PORT"),      // database port
		DBName:    must("DB_NAME"),      // database name
		JWTSecret: must("JWT_SECRET"),   // secret used for verifying JWTs

		HoldTTL:            minutes("HOLD_TTL_MIN", 10),      // holds expire after 10 minutes
		CancelCutoff:       minutes("CANCEL_CUTOFF_MIN", 60), // no cancellation within 1 hour of start
		MaxSeatsPerBooking: intDefault("MAX_SEATS_PER_BOOKING", 10),
		TxMaxAttempts:      intDefault("TX_MAX_ATTEMPTS", 3),
		TxRetryBase:        millis("TX_RETRY_BASE_MS", 50),
		ReapInterval:       seconds("REAP_INTERVAL_SEC", 60),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// intDefault parses an integer env var, falling back to def when unset.
// A malformed value is a configuration bug and aborts startup.
func intDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}

func minutes(key string, def int) time.Duration {
	return time.Duration(intDefault(key, def)) * time.Minute
}

func seconds(key string, def int) time.Duration {
	return time.Duration(intDefault(key, def)) * time.Second
}

func millis(key string, def int) time.Duration {
	return time.Duration(intDefault(key, def)) * time.Millisecond
}
