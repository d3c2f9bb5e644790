package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	PolicyHard  = "hard"
	PolicyPacks = "packs"

	BackendMemory = "memory"
	BackendRedis  = "redis"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	BotToken string

	DBDriver string
	DBDSN    string

	Timezone string
	Location *time.Location

	DailyCap      int
	PackSize      int
	UnlimitedDays int

	Pack10Stars      int
	Unlimited30Stars int

	QuotaPolicy string

	SessionBackend string
	RedisAddr      string
	SessionTTL     time.Duration

	HTTPAddr string
	LogMode  string

	MonetizationEnabled bool
	TestMode            bool
	AdminIDs            []int64

	QuestionBankURL  string
	QuestionSyncCron string
}

type source struct {
	file map[string]interface{}
}

// lookup prefers a non-empty environment value over the yaml file.
func (s source) lookup(name string) (string, bool) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v, true
	}
	v, ok := s.file[strings.ToLower(name)]
	if !ok || v == nil {
		return "", false
	}
	return strings.TrimSpace(fmt.Sprint(v)), true
}

func (s source) str(name, def string) string {
	if v, ok := s.lookup(name); ok && v != "" {
		return v
	}
	return def
}

func (s source) int(name string, def int) (int, error) {
	v, ok := s.lookup(name)
	if !ok || v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return i, nil
}

func (s source) bool(name string) bool {
	v, _ := s.lookup(name)
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first; keys missing from the environment fall back to
// yamlPath (lower-case keys, e.g. bot_token) when that file exists.
func Load(yamlPath string) (*Config, error) {
	_ = godotenv.Load()

	src := source{file: map[string]interface{}{}}
	if yamlPath != "" {
		raw, err := os.ReadFile(yamlPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &src.file); err != nil {
				return nil, fmt.Errorf("parse %s: %w", yamlPath, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, err
		}
	}

	cfg := &Config{
		BotToken:            src.str("BOT_TOKEN", ""),
		DBDriver:            strings.ToLower(src.str("DB_DRIVER", DriverSQLite)),
		DBDSN:               src.str("DB_DSN", "quizbot.db"),
		Timezone:            src.str("TIMEZONE", "Europe/Berlin"),
		QuotaPolicy:         strings.ToLower(src.str("QUOTA_POLICY", PolicyPacks)),
		SessionBackend:      strings.ToLower(src.str("SESSION_BACKEND", BackendMemory)),
		RedisAddr:           src.str("REDIS_ADDR", ""),
		LogMode:             src.str("LOG_MODE", "dev"),
		MonetizationEnabled: src.bool("MONETIZATION_ENABLED"),
		TestMode:            src.bool("TEST_MODE"),
		QuestionBankURL:     src.str("QUESTION_BANK_URL", ""),
		QuestionSyncCron:    src.str("QUESTION_SYNC_CRON", "0 4 * * *"),
	}
	// "off" disables the ops API.
	cfg.HTTPAddr = src.str("HTTP_ADDR", ":8080")
	if strings.EqualFold(cfg.HTTPAddr, "off") {
		cfg.HTTPAddr = ""
	}

	var err error
	if cfg.DailyCap, err = src.int("DAILY_CAP", 10); err != nil {
		return nil, err
	}
	if cfg.PackSize, err = src.int("PACK_SIZE", 10); err != nil {
		return nil, err
	}
	if cfg.UnlimitedDays, err = src.int("UNLIMITED_DAYS", 30); err != nil {
		return nil, err
	}
	if cfg.Pack10Stars, err = src.int("PACK10_STARS", 300); err != nil {
		return nil, err
	}
	if cfg.Unlimited30Stars, err = src.int("UNLIMITED30_STARS", 1500); err != nil {
		return nil, err
	}

	cfg.SessionTTL = 24 * time.Hour
	if v := src.str("SESSION_TTL", ""); v != "" {
		if cfg.SessionTTL, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("SESSION_TTL: %w", err)
		}
	}

	if cfg.AdminIDs, err = parseIDs(src.str("ADMIN_TG_IDS", "")); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	c.Location = loc

	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("DB_DRIVER: unsupported driver %q", c.DBDriver)
	}
	switch c.QuotaPolicy {
	case PolicyHard, PolicyPacks:
	default:
		return fmt.Errorf("QUOTA_POLICY: unsupported policy %q", c.QuotaPolicy)
	}
	switch c.SessionBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required for the redis session backend")
		}
	default:
		return fmt.Errorf("SESSION_BACKEND: unsupported backend %q", c.SessionBackend)
	}
	if c.DailyCap <= 0 || c.PackSize <= 0 || c.UnlimitedDays <= 0 {
		return errors.New("DAILY_CAP, PACK_SIZE and UNLIMITED_DAYS must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, item := range strings.Split(raw, ",") {
		token := strings.TrimSpace(item)
		if token == "" {
			continue
		}
		id, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_TG_IDS: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
