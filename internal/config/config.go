package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer

	Database Database `envPrefix:"DB_"`
	Redis    Redis    `envPrefix:"REDIS_"`
	Auth     Auth     `envPrefix:"AUTH_"`
	Sync     Sync     `envPrefix:"SYNC_"`

	// stripe, braintree or paypal
	Processor string    `env:"PAYMENT_PROCESSOR" envDefault:"stripe"`
	Stripe    Stripe    `envPrefix:"STRIPE_"`
	Paypal    Paypal    `envPrefix:"PAYPAL_"`
	BrainTree Braintree `envPrefix:"BRAINTREE_"`
}

type Database struct {
	Driver          string        `env:"DRIVER" envDefault:"mysql"` // mysql, postgres, sqlite
	URL             string        `env:"URL"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"50"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"1h"`
}

type Redis struct {
	Addr     string `env:"ADDR"` // empty means in-process sync state
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	Prefix   string `env:"PREFIX" envDefault:"ledger-sync"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
	Issuer    string `env:"JWT_ISSUER"`
}

type Sync struct {
	DefaultCheckpoint time.Time     `env:"DEFAULT_CHECKPOINT" envDefault:"2023-01-01T00:00:00Z"`
	PageSize          int           `env:"PAGE_SIZE" envDefault:"100"`
	Concurrency       int           `env:"CONCURRENCY" envDefault:"10"`
	LockTTL           time.Duration `env:"LOCK_TTL" envDefault:"5m"`
	BypassEmails      []string      `env:"CUTOFF_BYPASS_EMAILS" envSeparator:","`
	DefaultPlanName   string        `env:"DEFAULT_PLAN_NAME" envDefault:"Default"`
}

type Stripe struct {
	SecretKey string `env:"SECRET_KEY"`
	BaseURL   string `env:"BASE_URL"` // override for stripe-mock
}

type Paypal struct {
	BaseApiURL   string `env:"BASE_API_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
}

type Braintree struct {
	Environment string `env:"ENVIRONMENT"`
	MerchantID  string `env:"MERCHANT_ID"`
	PublicKey   string `env:"PUBLIC_KEY"`
	PrivateKey  string `env:"PRIVATE_KEY"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	File   string `env:"LOG_FILE"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
