package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	GHL      GHLConfig
	Calendly CalendlyConfig
	OnceHub  OnceHubConfig
	Mail     MailConfig
	Booking  BookingConfig
	Jobs     JobsConfig
}

type AppConfig struct {
	Name        string
	Env         string
	LogLevel    string
	URL         string // public base URL, used for webhook registration
	RedirectURL string // dashboard URL the OAuth callbacks redirect to
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type GHLConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthBaseURL  string
	APIBaseURL   string
	APIVersion   string
	AppName      string
	Scopes       []string
}

type CalendlyConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthBaseURL  string
	APIBaseURL   string
}

type OnceHubConfig struct {
	APIBaseURL string
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type BookingConfig struct {
	ProviderTimeout      time.Duration
	EnablePriorityScore  bool
	SelectionStrategy    string
	PrefetchBusinessDays int
	RefreshLockTTL       time.Duration
}

type JobsConfig struct {
	Enabled      bool
	Concurrency  int
	RefreshCron  string
	PrefetchCron string
	CleanupCron  string
}

var (
	cfg *Config
	mu  sync.RWMutex
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "booking-router")
	v.SetDefault("app.env", "production")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.port", "7070")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "booking")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.ttl", "1h")

	v.SetDefault("ghl.auth_base_url", "https://marketplace.gohighlevel.com")
	v.SetDefault("ghl.api_base_url", "https://services.leadconnectorhq.com")
	v.SetDefault("ghl.api_version", "2021-07-28")
	v.SetDefault("ghl.scopes", []string{
		"calendars.readonly", "calendars.write",
		"calendars/events.readonly", "calendars/events.write",
		"contacts.readonly", "contacts.write",
		"locations.readonly", "companies.readonly",
		"locations/customFields.readonly", "locations/customFields.write",
	})

	v.SetDefault("calendly.auth_base_url", "https://auth.calendly.com")
	v.SetDefault("calendly.api_base_url", "https://api.calendly.com")

	v.SetDefault("oncehub.api_base_url", "https://api.oncehub.com/v2")

	v.SetDefault("mail.port", 587)

	v.SetDefault("booking.provider_timeout", "15s")
	v.SetDefault("booking.enable_priority_score", false)
	v.SetDefault("booking.selection_strategy", "uniform")
	v.SetDefault("booking.prefetch_business_days", 4)
	v.SetDefault("booking.refresh_lock_ttl", "10s")

	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.concurrency", 4)
	v.SetDefault("jobs.refresh_cron", "0 0 * * *")
	v.SetDefault("jobs.prefetch_cron", "0 0 * * *")
	v.SetDefault("jobs.cleanup_cron", "55 23 * * *")
}

// Load reads .env (if present) and the environment. Keys map as
// database.host -> DATABASE_HOST.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	c := &Config{
		App: AppConfig{
			Name:        v.GetString("app.name"),
			Env:         v.GetString("app.env"),
			LogLevel:    v.GetString("app.log_level"),
			URL:         v.GetString("app.url"),
			RedirectURL: v.GetString("app.redirect_url"),
		},
		Server: ServerConfig{
			Port:            v.GetString("server.port"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Database: DatabaseConfig{
			Host:        v.GetString("database.host"),
			Port:        v.GetInt("database.port"),
			User:        v.GetString("database.user"),
			Password:    v.GetString("database.password"),
			Name:        v.GetString("database.name"),
			SSLMode:     v.GetString("database.ssl_mode"),
			AutoMigrate: v.GetBool("database.auto_migrate"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			TTL:    v.GetDuration("jwt.ttl"),
		},
		GHL: GHLConfig{
			ClientID:     v.GetString("ghl.client_id"),
			ClientSecret: v.GetString("ghl.client_secret"),
			RedirectURI:  v.GetString("ghl.redirect_uri"),
			AuthBaseURL:  v.GetString("ghl.auth_base_url"),
			APIBaseURL:   v.GetString("ghl.api_base_url"),
			APIVersion:   v.GetString("ghl.api_version"),
			AppName:      v.GetString("ghl.app_name"),
			Scopes:       v.GetStringSlice("ghl.scopes"),
		},
		Calendly: CalendlyConfig{
			ClientID:     v.GetString("calendly.client_id"),
			ClientSecret: v.GetString("calendly.client_secret"),
			RedirectURI:  v.GetString("calendly.redirect_uri"),
			AuthBaseURL:  v.GetString("calendly.auth_base_url"),
			APIBaseURL:   v.GetString("calendly.api_base_url"),
		},
		OnceHub: OnceHubConfig{
			APIBaseURL: v.GetString("oncehub.api_base_url"),
		},
		Mail: MailConfig{
			Host:     v.GetString("mail.host"),
			Port:     v.GetInt("mail.port"),
			Username: v.GetString("mail.username"),
			Password: v.GetString("mail.password"),
			From:     v.GetString("mail.from"),
		},
		Booking: BookingConfig{
			ProviderTimeout:      v.GetDuration("booking.provider_timeout"),
			EnablePriorityScore:  v.GetBool("booking.enable_priority_score"),
			SelectionStrategy:    v.GetString("booking.selection_strategy"),
			PrefetchBusinessDays: v.GetInt("booking.prefetch_business_days"),
			RefreshLockTTL:       v.GetDuration("booking.refresh_lock_ttl"),
		},
		Jobs: JobsConfig{
			Enabled:      v.GetBool("jobs.enabled"),
			Concurrency:  v.GetInt("jobs.concurrency"),
			RefreshCron:  v.GetString("jobs.refresh_cron"),
			PrefetchCron: v.GetString("jobs.prefetch_cron"),
			CleanupCron:  v.GetString("jobs.cleanup_cron"),
		},
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Booking.ProviderTimeout <= 0 {
		return fmt.Errorf("BOOKING_PROVIDER_TIMEOUT must be positive")
	}
	if c.Booking.PrefetchBusinessDays <= 0 {
		return fmt.Errorf("BOOKING_PREFETCH_BUSINESS_DAYS must be positive")
	}
	return nil
}

func Init() error {
	c, err := Load()
	if err != nil {
		return err
	}
	Set(c)
	return nil
}

// Set installs c as the process config. Tests use it directly.
func Set(c *Config) {
	mu.Lock()
	defer mu.Unlock()
	cfg = c
}

func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if cfg == nil {
		panic("config not initialized")
	}
	return cfg
}

func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return cfg, cfg != nil
}
