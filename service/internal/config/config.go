// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/jason-s-yu/equilibrium/engine"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrMissingSecret is returned when JWT_SECRET is unset.
var ErrMissingSecret = errors.New("JWT_SECRET must be set")

// Config holds process settings read from the environment.
type Config struct {
	ListenAddr     string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	DatabaseURL    string // empty disables result persistence
	JWTSecret      []byte
	LogLevel       logrus.Level
	LogJSON        bool
	RulesFile      string
	AllowedOrigins []string
	Rules          engine.HouseRules
}

// Load reads an optional .env file, then the environment, then the rules file if one is named.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		ListenAddr:    valueOr(getenv("LISTEN_ADDR"), ":8080"),
		RedisAddr:     valueOr(getenv("REDIS_ADDR"), "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD"),
		DatabaseURL:   getenv("DATABASE_URL"),
		RulesFile:     getenv("RULES_FILE"),
		LogJSON:       strings.EqualFold(getenv("LOG_FORMAT"), "json"),
	}

	if v := getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("REDIS_DB: %w", err)
		}
		cfg.RedisDB = db
	}

	lvl, err := logrus.ParseLevel(valueOr(getenv("LOG_LEVEL"), "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = lvl

	secret := getenv("JWT_SECRET")
	if secret == "" {
		return nil, ErrMissingSecret
	}
	cfg.JWTSecret = []byte(secret)

	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	cfg.Rules = engine.DefaultHouseRules()
	if cfg.RulesFile != "" {
		rules, err := LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		cfg.Rules = rules
	}
	return cfg, nil
}

// LoadRules reads a YAML house-rules file. Fields the file omits keep their defaults.
func LoadRules(path string) (engine.HouseRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.HouseRules{}, fmt.Errorf("reading rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes YAML house rules over the defaults.
func ParseRules(data []byte) (engine.HouseRules, error) {
	rules := engine.DefaultHouseRules()
	var o engine.HouseRules
	if err := yaml.Unmarshal(data, &o); err != nil {
		return engine.HouseRules{}, fmt.Errorf("parsing rules: %w", err)
	}
	if len(o.BagDistribution) > 0 {
		for k := range o.BagDistribution {
			if !k.Valid() {
				return engine.HouseRules{}, fmt.Errorf("parsing rules: %w: %s", engine.ErrUnknownToken, k)
			}
		}
		rules.BagDistribution = o.BagDistribution
	}
	if o.MarketCapacity > 0 {
		rules.MarketCapacity = o.MarketCapacity
	}
	if o.AnimalMarketCapacity > 0 {
		rules.AnimalMarketCapacity = o.AnimalMarketCapacity
	}
	if o.AnimalCopies > 0 {
		rules.AnimalCopies = o.AnimalCopies
	}
	if o.MaxPlayers > 0 {
		rules.MaxPlayers = o.MaxPlayers
	}
	if o.MaxIncompleteAnimals > 0 {
		rules.MaxIncompleteAnimals = o.MaxIncompleteAnimals
	}
	// Zero is a meaningful penalty, so presence is read separately.
	var penalty struct {
		DiscardPenalty *int `yaml:"discard_penalty"`
	}
	if err := yaml.Unmarshal(data, &penalty); err != nil {
		return engine.HouseRules{}, fmt.Errorf("parsing rules: %w", err)
	}
	if p := penalty.DiscardPenalty; p != nil {
		if *p < 0 {
			return engine.HouseRules{}, fmt.Errorf("parsing rules: discard_penalty must not be negative, got %d", *p)
		}
		rules.DiscardPenalty = *p
	}
	if o.Layout != "" {
		if o.Layout != engine.LayoutStaggered && o.Layout != engine.LayoutHex {
			return engine.HouseRules{}, fmt.Errorf("parsing rules: unknown layout %q", o.Layout)
		}
		rules.Layout = o.Layout
	}
	return rules, nil
}

// ConfigureLogging applies the level and formatter to the standard logrus logger.
func (c *Config) ConfigureLogging() {
	logrus.SetLevel(c.LogLevel)
	if c.LogJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
