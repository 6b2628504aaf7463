package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// ----------------------------
	// HTTP API
	// ----------------------------
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	JWTSecret       string        `envconfig:"JWT_SECRET" default:""`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"*"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`

	// ----------------------------
	// Database
	// ----------------------------
	DatabaseURL      string        `envconfig:"DATABASE_URL" required:"true"`
	DBConnectTimeout time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"30s"`
	AutoMigrate      bool          `envconfig:"AUTO_MIGRATE" default:"true"`

	// ----------------------------
	// Redis (daily send quota), optional
	// ----------------------------
	RedisURL string `envconfig:"REDIS_URL" default:""`

	// ----------------------------
	// AMQP (campaign events), optional
	// ----------------------------
	AMQPURL   string `envconfig:"AMQP_URL" default:""`
	AMQPQueue string `envconfig:"AMQP_QUEUE" default:"campaign_events"`

	// ----------------------------
	// Personalization
	// ----------------------------
	OpenAIBaseURL          string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com"`
	OpenAIModel            string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIAPIKey           string `envconfig:"OPENAI_API_KEY" default:""`
	PersonalizeConcurrency int    `envconfig:"PERSONALIZE_CONCURRENCY" default:"4"`

	// ----------------------------
	// Sending
	// ----------------------------
	ResendBaseURL        string        `envconfig:"RESEND_BASE_URL" default:"https://api.resend.com"`
	DefaultFrom          string        `envconfig:"DEFAULT_FROM" default:"AutoReachPro <noreply@autoreachpro.com>"`
	SendPacing           time.Duration `envconfig:"SEND_PACING" default:"500ms"`
	SendLease            time.Duration `envconfig:"SEND_LEASE" default:"10m"`
	SimulatedSendDelay   time.Duration `envconfig:"SIMULATED_SEND_DELAY" default:"1s"`
	SimulatedFailureRate float64       `envconfig:"SIMULATED_FAILURE_RATE" default:"0.1"`
}

func Load() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return &cfg, err
}
