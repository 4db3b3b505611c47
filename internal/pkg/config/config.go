package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	CORS     CORSConfig
	Log      LogConfig
	Auth     AuthConfig
	Calendar CalendarConfig
	Sync     SyncConfig
	Booking  BookingConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Seoul"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Seoul"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"32400"` // 9*60*60
}

type AuthConfig struct {
	JWTSecret string `envconfig:"AUTH_JWT_SECRET" required:"true"`
}

// CalendarConfig covers the Google Calendar integration. Client credentials
// belong to the service; per-instructor tokens live in instructor_settings.
type CalendarConfig struct {
	ClientID     string        `envconfig:"GOOGLE_CLIENT_ID" required:"true"`
	ClientSecret string        `envconfig:"GOOGLE_CLIENT_SECRET" required:"true"`
	CallTimeout  time.Duration `envconfig:"CALENDAR_CALL_TIMEOUT" default:"10s"`
	WindowDays   int           `envconfig:"CALENDAR_WINDOW_DAYS" default:"7"`
}

type SyncConfig struct {
	Interval        time.Duration `envconfig:"SYNC_INTERVAL" default:"1h"`
	StaleAfter      time.Duration `envconfig:"SYNC_STALE_AFTER" default:"2h"`
	LeaseTTL        time.Duration `envconfig:"SYNC_LEASE_TTL" default:"5m"`
	SweepInterval   time.Duration `envconfig:"SYNC_SWEEP_INTERVAL" default:"10m"`
	SweepStuckAfter time.Duration `envconfig:"SYNC_SWEEP_STUCK_AFTER" default:"15m"`
}

type BookingConfig struct {
	MinLeadTime           time.Duration `envconfig:"BOOKING_MIN_LEAD_TIME" default:"0"`
	RefundAfterAttendance bool          `envconfig:"BOOKING_REFUND_AFTER_ATTENDANCE" default:"false"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Asia/Seoul",
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Seoul",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 32400,
		},
		Auth: AuthConfig{
			JWTSecret: "test-secret",
		},
		Calendar: CalendarConfig{
			ClientID:     "test-client",
			ClientSecret: "test-client-secret",
			CallTimeout:  10 * time.Second,
			WindowDays:   7,
		},
		Sync: SyncConfig{
			Interval:        time.Hour,
			StaleAfter:      2 * time.Hour,
			LeaseTTL:        5 * time.Minute,
			SweepInterval:   10 * time.Minute,
			SweepStuckAfter: 15 * time.Minute,
		},
		Booking: BookingConfig{
			MinLeadTime:           0,
			RefundAfterAttendance: false,
		},
	}
}
