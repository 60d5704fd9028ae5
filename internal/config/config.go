// Package config provides the configuration structures shared by the API,
// scheduler and notification-sender binaries and the function that loads them.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration.
type Config struct {
	Env             string `yaml:"env" env:"ENV" env-default:"local"`
	FrontendURL     string `yaml:"frontend_url" env:"FRONTEND_URL" env-default:"http://localhost:5173"`
	Storage         `yaml:"storage"`
	RedisConnection `yaml:"redis_connection"`
	HTTPServer      `yaml:"http_server"`
	JWTToken        `yaml:"jwttoken"`
	Credits         `yaml:"credits"`
	Coupons         `yaml:"coupons"`
	PayFast         `yaml:"payfast"`
	RabbitMQ        `yaml:"rabbitmq"`
	SMTP            `yaml:"smtp"`
	S3              `yaml:"s3"`
	Scheduler       `yaml:"scheduler"`
	CORS            `yaml:"cors"`
}

// Storage selects the database backend. Driver is either "postgres" or "mysql".
// MigrationsPath holds one subdirectory per driver.
type Storage struct {
	Driver         string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
	DSN            string `yaml:"dsn" env:"STORAGE_DSN"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
}

// HTTPServer holds the listener settings.
type HTTPServer struct {
	AddressHTTP    string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP    time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps" env-default:"20"`
	RateLimitBurst int           `yaml:"rate_limit_burst" env-default:"40"`
}

// RedisConnection holds the redis client settings.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
	DealCacheTTL time.Duration `yaml:"deal_cache_ttl" env-default:"1m"`
}

// JWTToken holds the signing settings for access tokens.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Credits describes deal posting prices and the promotional window.
type Credits struct {
	PromotionalPeriodEndsAt time.Time     `yaml:"promotional_period_ends_at" env:"PROMOTIONAL_PERIOD_ENDS_AT"`
	HotDealCost             float64       `yaml:"hot_deal_cost" env-default:"10"`
	RegularDealCost         float64       `yaml:"regular_deal_cost" env-default:"2"`
	RandPerCredit           float64       `yaml:"rand_per_credit" env-default:"5"`
	DealTTL                 time.Duration `yaml:"deal_ttl" env-default:"720h"`
	MaxPurchase             int64         `yaml:"max_purchase" env-default:"10000"`
}

// Coupons holds coupon issuance settings.
type Coupons struct {
	TTL time.Duration `yaml:"ttl" env-default:"720h"`
}

// PayFast holds merchant credentials and callback URLs.
type PayFast struct {
	MerchantID  string `yaml:"merchant_id" env:"PAYFAST_MERCHANT_ID"`
	MerchantKey string `yaml:"merchant_key" env:"PAYFAST_MERCHANT_KEY"`
	Passphrase  string `yaml:"passphrase" env:"PAYFAST_PASSPHRASE"`
	ProcessURL  string `yaml:"process_url" env-default:"https://sandbox.payfast.co.za/eng/process"`
	ValidateURL string `yaml:"validate_url" env-default:"https://sandbox.payfast.co.za/eng/query/validate"`
	ReturnURL   string `yaml:"return_url"`
	CancelURL   string `yaml:"cancel_url"`
	NotifyURL   string `yaml:"notify_url"`
	// ValidateITN enables the server-to-server confirmation of notifications.
	ValidateITN bool `yaml:"validate_itn" env-default:"true"`
}

// RabbitMQ holds the broker connection settings.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// SMTP holds the outgoing mail server settings.
type SMTP struct {
	SMTPHost string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `yaml:"user" env:"SMTP_USER"`
	SMTPPass string `yaml:"pass" env:"SMTP_PASS"`
	SMTPFrom string `yaml:"from" env:"SMTP_FROM"`
}

// S3 holds object storage settings for deal images.
type S3 struct {
	Region        string `yaml:"region" env:"S3_REGION" env-default:"af-south-1"`
	Bucket        string `yaml:"bucket" env:"S3_BUCKET"`
	Endpoint      string `yaml:"endpoint" env:"S3_ENDPOINT"`
	AccessKey     string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey     string `yaml:"secret_key" env:"S3_SECRET_KEY"`
	PublicBaseURL string `yaml:"public_base_url" env:"S3_PUBLIC_BASE_URL"`
}

// Scheduler holds cron specs for background jobs.
type Scheduler struct {
	ExpireDealsSchedule   string        `yaml:"expire_deals" env-default:"*/5 * * * *"`
	ExpiringSoonSchedule  string        `yaml:"expiring_soon" env-default:"0 8 * * *"`
	PruneSchedule         string        `yaml:"prune_notifications" env-default:"30 3 * * *"`
	NotificationRetention time.Duration `yaml:"notification_retention" env-default:"2160h"`
}

// CORS lists the origins allowed to call the API from a browser.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

// MustLoad reads the file pointed to by CONFIG_PATH and terminates the process on failure.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %s", err)
	}
	return &cfg
}

// Validate checks the values that have no usable default.
func (c *Config) Validate() error {
	switch c.Driver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("storage.driver must be postgres or mysql, got %q", c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("storage.dsn is required")
	}
	if c.HotDealCost < 0 || c.RegularDealCost < 0 {
		return fmt.Errorf("deal costs must not be negative")
	}
	if c.RandPerCredit <= 0 {
		return fmt.Errorf("credits.rand_per_credit must be positive")
	}
	return nil
}

// DriverMigrationsPath returns the migrations directory for the configured driver.
func (c *Config) DriverMigrationsPath() string {
	return filepath.Join(c.MigrationsPath, c.Driver)
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Storage:\n"+
			"  Driver: %s\n"+
			"  MigrationsPath: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Credits:\n"+
			"  PromotionalPeriodEndsAt: %s\n"+
			"  HotDealCost: %.2f\n"+
			"  RegularDealCost: %.2f\n"+
			"  RandPerCredit: %.2f\n"+
			"PayFast:\n"+
			"  MerchantID: %s\n"+
			"  ProcessURL: %s\n",
		c.Env,
		c.Driver,
		c.MigrationsPath,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.PromotionalPeriodEndsAt.Format(time.RFC3339),
		c.HotDealCost,
		c.RegularDealCost,
		c.RandPerCredit,
		c.MerchantID,
		c.ProcessURL,
	)
}
