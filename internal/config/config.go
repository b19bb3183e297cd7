package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"arena/internal/domain/batch"
	"arena/internal/domain/calendar"
	"arena/internal/domain/payment"
)

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "GYM"

// Config is the immutable runtime configuration. Components receive the
// parts they need by value. BatchCapacity is read-only after Load; a
// component that keeps it holds its own copy.
type Config struct {
	Addr   string
	Env    string
	DBPath string

	Zone     string
	Location *time.Location

	Fees           payment.FeeSchedule
	InactivityDays int
	BatchCapacity  map[string]int // missing or zero entries mean unlimited

	MinAppVersion string
	APIVersion    string

	SweepSchedule string // cron spec evaluated in Location; empty disables

	ResendKey    string
	EmailFrom    string
	EmailReplyTo string
	CSRFKey      []byte

	SlowQuery          time.Duration
	SlowRequest        time.Duration
	RateLimitPerSecond int

	LogFormat string
	LogLevel  string
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Logger builds the process logger from LogFormat and LogLevel.
func (c Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Clock returns a real-time clock in the configured civil zone.
func (c Config) Clock() calendar.Clock {
	return calendar.NewClock(c.Location, nil)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("env", "development")
	v.SetDefault("db_path", "arena.db")
	v.SetDefault("zone", calendar.DefaultZone)
	fees := payment.DefaultFees()
	v.SetDefault("fee_registration", fees.Registration)
	v.SetDefault("fee_monthly_regular", fees.MonthlyRegular)
	v.SetDefault("fee_monthly_pt", fees.MonthlyPT)
	v.SetDefault("inactivity_days", 90)
	v.SetDefault("batch_capacity", "")
	v.SetDefault("min_app_version", "1.0.0")
	v.SetDefault("api_version", "1")
	v.SetDefault("sweep_schedule", "5 0 * * *")
	v.SetDefault("resend_key", "")
	v.SetDefault("email_from", "Jupiter Arena <noreply@jupiterarena.in>")
	v.SetDefault("email_reply_to", "")
	v.SetDefault("csrf_key", "")
	v.SetDefault("slow_query_ms", 50)
	v.SetDefault("slow_request_ms", 200)
	v.SetDefault("rate_limit_per_second", 20)
	v.SetDefault("log_format", "text")
	v.SetDefault("log_level", "info")
}

// Load reads an optional .env file, then resolves settings from GYM_*
// environment variables and the optional YAML file named by GYM_CONFIG.
// Environment variables take precedence over the file.
// POST: Returns a validated Config or an error naming the bad setting
func Load() (Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Addr:   v.GetString("addr"),
		Env:    v.GetString("env"),
		DBPath: v.GetString("db_path"),
		Zone:   v.GetString("zone"),
		Fees: payment.FeeSchedule{
			Registration:   v.GetInt("fee_registration"),
			MonthlyRegular: v.GetInt("fee_monthly_regular"),
			MonthlyPT:      v.GetInt("fee_monthly_pt"),
		},
		InactivityDays:     v.GetInt("inactivity_days"),
		MinAppVersion:      v.GetString("min_app_version"),
		APIVersion:         v.GetString("api_version"),
		SweepSchedule:      strings.TrimSpace(v.GetString("sweep_schedule")),
		ResendKey:          v.GetString("resend_key"),
		EmailFrom:          v.GetString("email_from"),
		EmailReplyTo:       v.GetString("email_reply_to"),
		SlowQuery:          time.Duration(v.GetInt("slow_query_ms")) * time.Millisecond,
		SlowRequest:        time.Duration(v.GetInt("slow_request_ms")) * time.Millisecond,
		RateLimitPerSecond: v.GetInt("rate_limit_per_second"),
		LogFormat:          strings.ToLower(v.GetString("log_format")),
		LogLevel:           strings.ToLower(v.GetString("log_level")),
	}

	loc, err := time.LoadLocation(cfg.Zone)
	if err != nil {
		return Config{}, fmt.Errorf("zone %q: %w", cfg.Zone, err)
	}
	cfg.Location = loc

	capacity, err := batchCapacity(v.Get("batch_capacity"))
	if err != nil {
		return Config{}, err
	}
	cfg.BatchCapacity = capacity

	if key := v.GetString("csrf_key"); key != "" {
		b, err := hex.DecodeString(key)
		if err != nil || len(b) != 32 {
			return Config{}, errors.New("csrf_key must be 64 hex characters")
		}
		cfg.CSRFKey = b
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the resolved settings.
func (c Config) Validate() error {
	if c.Fees.Registration <= 0 || c.Fees.MonthlyRegular <= 0 || c.Fees.MonthlyPT <= 0 {
		return errors.New("fees must be positive")
	}
	if c.Fees.MonthlyRegular == c.Fees.MonthlyPT {
		return errors.New("monthly Regular and PT fees must differ")
	}
	if c.InactivityDays <= 0 {
		return errors.New("inactivity_days must be positive")
	}
	if c.RateLimitPerSecond <= 0 {
		return errors.New("rate_limit_per_second must be positive")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// batchCapacity accepts either a YAML mapping or the env form
// "Morning=30,Evening=40".
func batchCapacity(raw any) (map[string]int, error) {
	out := map[string]int{}
	switch val := raw.(type) {
	case nil:
		return out, nil
	case string:
		for _, pair := range strings.Split(val, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			name, n, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, fmt.Errorf("batch_capacity entry %q must be Name=N", pair)
			}
			if err := putCapacity(out, strings.TrimSpace(name), strings.TrimSpace(n)); err != nil {
				return nil, err
			}
		}
	case map[string]any:
		for name, n := range val {
			if err := putCapacity(out, name, fmt.Sprint(n)); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("batch_capacity has unsupported type %T", raw)
	}
	return out, nil
}

func putCapacity(out map[string]int, name, n string) error {
	// viper lower-cases YAML keys
	for _, b := range batch.All {
		if strings.EqualFold(b, name) {
			name = b
		}
	}
	if !batch.IsValid(name) {
		return fmt.Errorf("batch_capacity: unknown batch %q", name)
	}
	limit, err := strconv.Atoi(n)
	if err != nil || limit < 0 {
		return fmt.Errorf("batch_capacity: %s must be a non-negative integer", name)
	}
	out[name] = limit
	return nil
}
