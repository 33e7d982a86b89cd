package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const defaultPath = "./config/local.yaml"

type Config struct {
	Env        string   `yaml:"env" env:"ENV" env-default:"prod"`
	HTTPServer `yaml:"http_server"`
	DB         DB       `yaml:"db"`
	Redis      Redis    `yaml:"redis"`
	Admin      Admin    `yaml:"admin"`
	CORS       CORS     `yaml:"cors"`
	Defaults   Defaults `yaml:"defaults"`
}

type HTTPServer struct {
	Address        string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout        time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
	RequestTimeout time.Duration `yaml:"request_timeout" env-default:"5s"`
}

type DB struct {
	Driver     string `yaml:"driver" env:"DB_DRIVER" env-default:"mysql"`
	User       string `yaml:"user" env:"DB_USER"`
	Password   string `yaml:"password" env:"DB_PASSWORD"`
	Host       string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port       int    `yaml:"port" env:"DB_PORT" env-default:"3306"`
	Name       string `yaml:"name" env:"DB_NAME"`
	SQLitePath string `yaml:"sqlite_path" env:"DB_SQLITE_PATH" env-default:"./budget.db"`
	Migrate    bool   `yaml:"migrate" env:"DB_MIGRATE" env-default:"true"`
}

// Redis is optional; an empty Addr disables the template cache and the budget lock.
type Redis struct {
	Addr        string        `yaml:"addr" env:"REDIS_ADDRESS"`
	Password    string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB          int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	TemplateTTL time.Duration `yaml:"template_ttl" env-default:"10m"`
	LockTTL     time.Duration `yaml:"lock_ttl" env-default:"10s"`
}

type Admin struct {
	Login    string `yaml:"login" env:"ADMIN_LOGIN"`
	PassHash string `yaml:"pass_hash" env:"ADMIN_PASS_HASH"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:5173"`
}

// Defaults is the financial policy given to newly created companies.
type Defaults struct {
	Currency     string `yaml:"currency" env-default:"BRL"`
	TaxRate      string `yaml:"tax_rate" env-default:"0.18"`
	ProfitMargin string `yaml:"profit_margin" env-default:"0.3"`
}

func (d Defaults) Rates() (taxRate, profitMargin decimal.Decimal, err error) {
	taxRate, err = decimal.NewFromString(d.TaxRate)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("defaults.tax_rate: %w", err)
	}
	profitMargin, err = decimal.NewFromString(d.ProfitMargin)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("defaults.profit_margin: %w", err)
	}
	return taxRate, profitMargin, nil
}

// Load reads the YAML file at path with environment overrides.
func Load(path string) (*Config, error) {
	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	if _, _, err := cfg.Defaults.Rates(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Path resolves the config file location from CONFIG_PATH.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return defaultPath
}

func MustConfig() *Config {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := Load(Path())
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return cfg
}
