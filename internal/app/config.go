package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is read from the environment (and .env through godotenv in cmd/*).
type Config struct {
	Env  string `envconfig:"APP_ENV" default:"development"`
	Port string `envconfig:"PORT" default:"3000"`

	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"5s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
	// Batch generation bisa lama; beri waktu request berjalan selesai.
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"30s"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"payroll"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBRetries  int    `envconfig:"DB_MAX_RETRIES" default:"5"`

	RedisAddr   string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	KafkaBroker string `envconfig:"KAFKA_BROKER"`

	JWTSecret   string   `envconfig:"JWT_SECRET"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`

	RBACModelPath  string `envconfig:"RBAC_MODEL_PATH" default:"internal/rbac/infra/model.conf"`
	RBACPolicyPath string `envconfig:"RBAC_POLICY_PATH" default:"internal/rbac/infra/policy.csv"`

	PayrollWorkers int    `envconfig:"PAYROLL_WORKERS" default:"4"`
	MaxPeriodDays  int    `envconfig:"PAYROLL_MAX_PERIOD_DAYS" default:"31"`
	PayslipDir     string `envconfig:"PAYSLIP_DIR" default:"storage/payslips"`
	PayslipBaseURL string `envconfig:"PAYSLIP_BASE_URL" default:"/files/payslips"`

	OutboxPollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"3s"`
	// Senin 00:05, membuat periode minggu berjalan.
	WeeklyPeriodCron string `envconfig:"WEEKLY_PERIOD_CRON" default:"5 0 * * 1"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ValidateAPI checks the settings only the HTTP server needs.
func (c Config) ValidateAPI() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}
