package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrConfiguration marks a configuration that cannot start a run.
var ErrConfiguration = errors.New("invalid configuration")

// Run modes.
const (
	ModeOnce   = "once"
	ModeDaemon = "daemon"
)

// Policy names, mirrored by the strategy package.
const (
	PolicyCrossover = "crossover"
	PolicySlope     = "slope"
)

// Config holds all application configuration.
type Config struct {
	Universe struct {
		File   string `yaml:"file" validate:"required"`
		Column string `yaml:"column" validate:"required"`
		Suffix string `yaml:"suffix"`
	} `yaml:"universe"`
	Market struct {
		BaseURL           string        `yaml:"base_url" validate:"omitempty,url"`
		APIKey            string        `yaml:"api_key"`
		MarketCapFloor    string        `yaml:"market_cap_floor" validate:"required"`
		Timeout           time.Duration `yaml:"timeout" validate:"gte=0"`
		RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gte=0"`
	} `yaml:"market"`
	Detectors []DetectorConfig `yaml:"detectors" validate:"required,min=1,dive"`
	Portfolio struct {
		File string `yaml:"file" validate:"required"`
		Kind string `yaml:"kind" validate:"omitempty,oneof=xlsx json"`
	} `yaml:"portfolio"`
	Cache struct {
		RedisAddr string        `yaml:"redis_addr"`
		Password  string        `yaml:"password"`
		DB        int           `yaml:"db" validate:"gte=0"`
		TTL       time.Duration `yaml:"ttl" validate:"gte=0"`
		Namespace string        `yaml:"namespace"`
	} `yaml:"cache"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron       string `yaml:"cron" validate:"required"`
		Mode       string `yaml:"mode" validate:"oneof=once daemon"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Log struct {
		Level  string `yaml:"level" validate:"oneof=trace debug info warn warning error"`
		Format string `yaml:"format" validate:"oneof=text json"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// DetectorConfig configures one horizon's detector.
type DetectorConfig struct {
	Interval string `yaml:"interval" validate:"required,oneof=1d 1wk 1mo"`
	Lookback string `yaml:"lookback" validate:"required"`
	MinBars  int    `yaml:"min_bars" validate:"gte=1"`
	Policy   string `yaml:"policy"`

	// crossover
	Periods   []int `yaml:"periods"`
	Reference int   `yaml:"reference"`
	MinBelow  int   `yaml:"min_below"`

	// slope
	SlopePeriod int     `yaml:"slope_period"`
	RSIPeriod   int     `yaml:"rsi_period"`
	Oversold    float64 `yaml:"oversold"`
	Overbought  float64 `yaml:"overbought"`

	Oscillator OscillatorConfig `yaml:"oscillator"`
}

// OscillatorConfig configures the optional RSI-below-its-mean SELL check.
type OscillatorConfig struct {
	Enabled   bool `yaml:"enabled"`
	RSIPeriod int  `yaml:"rsi_period"`
	Window    int  `yaml:"window"`
}

// MaxPeriod returns the longest smoothing period the detector needs.
func (d DetectorConfig) MaxPeriod() int {
	if d.Policy == PolicySlope {
		return d.SlopePeriod
	}
	m := 0
	for _, p := range d.Periods {
		if p > m {
			m = p
		}
	}
	return m
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	str := map[string]*string{
		"TELEGRAM_BOT_TOKEN": &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &c.Telegram.ChatID,
		"REST_BASE_URL":      &c.Market.BaseURL,
		"REST_API_KEY":       &c.Market.APIKey,
		"HTTPS_PROXY":        &c.Proxy,
		"REDIS_ADDR":         &c.Cache.RedisAddr,
		"SQLITE_PATH":        &c.Database.SQLitePath,
		"PORTFOLIO_FILE":     &c.Portfolio.File,
		"UNIVERSE_FILE":      &c.Universe.File,
		"CRON_SCHEDULE":      &c.Schedule.Cron,
		"LOG_LEVEL":          &c.Log.Level,
		"RUN_MODE":           &c.Schedule.Mode,
	}
	for key, dst := range str {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Schedule.RunOnStart = b
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Universe.File == "" {
		c.Universe.File = "data/stocks.csv"
	}
	if c.Universe.Column == "" {
		c.Universe.Column = "SYMBOL"
	}
	if c.Universe.Suffix == "" {
		c.Universe.Suffix = ".NS"
	}
	if c.Market.MarketCapFloor == "" {
		// 5000 crore
		c.Market.MarketCapFloor = "50000000000"
	}
	if c.Market.Timeout == 0 {
		c.Market.Timeout = 30 * time.Second
	}
	if c.Market.RequestsPerSecond == 0 {
		c.Market.RequestsPerSecond = 2
	}
	if len(c.Detectors) == 0 {
		c.Detectors = DefaultDetectors()
	}
	for i := range c.Detectors {
		c.Detectors[i].applyDefaults()
	}
	if c.Portfolio.File == "" {
		c.Portfolio.File = "data/portfolio.xlsx"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 12 * time.Hour
	}
	if c.Cache.Namespace == "" {
		c.Cache.Namespace = "trendsentinel"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/trend_sentinel.db"
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 0 17 * * 1-5"
	}
	if c.Schedule.Mode == "" {
		c.Schedule.Mode = ModeOnce
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// DefaultDetectors returns the monthly and weekly crossover detectors.
func DefaultDetectors() []DetectorConfig {
	return []DetectorConfig{
		{
			Interval:   "1mo",
			Lookback:   "25y",
			MinBars:    260,
			Policy:     PolicyCrossover,
			Periods:    []int{50, 100, 250},
			MinBelow:   2,
			Oscillator: OscillatorConfig{Enabled: true, RSIPeriod: 14, Window: 14},
		},
		{
			Interval: "1wk",
			Lookback: "6y",
			MinBars:  260,
			Policy:   PolicyCrossover,
			Periods:  []int{50, 100, 250},
			MinBelow: 2,
		},
	}
}

func (d *DetectorConfig) applyDefaults() {
	if d.Policy == "" {
		d.Policy = PolicyCrossover
	}
	switch d.Policy {
	case PolicyCrossover:
		if len(d.Periods) == 0 {
			d.Periods = []int{50, 100, 250}
		}
		if d.MinBelow == 0 {
			d.MinBelow = 2
		}
	case PolicySlope:
		if d.SlopePeriod == 0 {
			d.SlopePeriod = 50
		}
		if d.RSIPeriod == 0 {
			d.RSIPeriod = 14
		}
		if d.Oversold == 0 {
			d.Oversold = 30
		}
		if d.Overbought == 0 {
			d.Overbought = 70
		}
	}
	if d.Oscillator.Enabled {
		if d.Oscillator.RSIPeriod == 0 {
			d.Oscillator.RSIPeriod = 14
		}
		if d.Oscillator.Window == 0 {
			d.Oscillator.Window = 14
		}
	}
	if d.MinBars == 0 {
		d.MinBars = d.MaxPeriod() + 10
	}
}

// Validate checks struct tags, then the cross-field rules. Every error wraps
// ErrConfiguration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if _, err := decimal.NewFromString(c.Market.MarketCapFloor); err != nil {
		return fmt.Errorf("%w: market.market_cap_floor %q: %v", ErrConfiguration, c.Market.MarketCapFloor, err)
	}
	if c.Portfolio.Kind == "" {
		switch strings.ToLower(filepath.Ext(c.Portfolio.File)) {
		case ".xlsx", ".json":
		default:
			return fmt.Errorf("%w: cannot infer store kind from %q", ErrConfiguration, c.Portfolio.File)
		}
	}

	seen := make(map[string]bool, len(c.Detectors))
	for i, d := range c.Detectors {
		if seen[d.Interval] {
			return fmt.Errorf("%w: detectors[%d]: duplicate interval %s", ErrConfiguration, i, d.Interval)
		}
		seen[d.Interval] = true
		if err := d.validate(); err != nil {
			return fmt.Errorf("%w: detectors[%d] (%s): %v", ErrConfiguration, i, d.Interval, err)
		}
	}
	return nil
}

func (d DetectorConfig) validate() error {
	switch d.Policy {
	case PolicyCrossover:
		if len(d.Periods) == 0 {
			return fmt.Errorf("periods required")
		}
		ref := false
		for _, p := range d.Periods {
			if p < 3 {
				return fmt.Errorf("period %d must be >= 3", p)
			}
			if p == d.Reference {
				ref = true
			}
		}
		if d.Reference != 0 && !ref {
			return fmt.Errorf("reference %d is not one of the periods", d.Reference)
		}
		if d.MinBelow < 1 || d.MinBelow > len(d.Periods) {
			return fmt.Errorf("min_below %d out of range 1..%d", d.MinBelow, len(d.Periods))
		}
	case PolicySlope:
		if d.SlopePeriod < 3 {
			return fmt.Errorf("slope_period %d must be >= 3", d.SlopePeriod)
		}
		if d.RSIPeriod < 1 {
			return fmt.Errorf("rsi_period must be positive")
		}
		if d.Oversold >= d.Overbought {
			return fmt.Errorf("oversold %.2f must be below overbought %.2f", d.Oversold, d.Overbought)
		}
		if d.MinBars < d.RSIPeriod+2 {
			return fmt.Errorf("min_bars %d must be >= rsi_period+2 (%d)", d.MinBars, d.RSIPeriod+2)
		}
	default:
		return fmt.Errorf("unknown policy %q", d.Policy)
	}

	if need := d.MaxPeriod() + 2; d.MinBars < need {
		return fmt.Errorf("min_bars %d must be >= max(period)+2 (%d)", d.MinBars, need)
	}
	bars, bounded, err := ExpectedBars(d.Interval, d.Lookback)
	if err != nil {
		return err
	}
	if bounded && bars < d.MinBars {
		return fmt.Errorf("lookback %s at %s yields about %d bars, below min_bars %d", d.Lookback, d.Interval, bars, d.MinBars)
	}
	if d.Oscillator.Enabled {
		o := d.Oscillator
		if o.RSIPeriod < 1 || o.Window < 1 {
			return fmt.Errorf("oscillator rsi_period and window must be positive")
		}
		if need := o.RSIPeriod + o.Window + 1; d.MinBars < need {
			return fmt.Errorf("min_bars %d must be >= oscillator warm-up (%d)", d.MinBars, need)
		}
	}
	return nil
}

var lookbackPattern = regexp.MustCompile(`^([1-9][0-9]*)(d|wk|mo|y)$`)

// ExpectedBars estimates how many bars a provider returns for lookback at
// interval. bounded is false for "max", which has no upper limit. Daily bars
// count trading days only.
func ExpectedBars(interval, lookback string) (bars int, bounded bool, err error) {
	var days float64
	switch lookback {
	case "max":
		return 0, false, nil
	case "ytd":
		days = 365
	default:
		m := lookbackPattern.FindStringSubmatch(lookback)
		if m == nil {
			return 0, false, fmt.Errorf("lookback %q: want max, ytd or <n>d|wk|mo|y", lookback)
		}
		n, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "d":
			days = float64(n)
		case "wk":
			days = float64(7 * n)
		case "mo":
			days = float64(n) * 365 / 12
		case "y":
			days = float64(n) * 365
		}
	}

	switch interval {
	case "1d":
		return int(days * 252 / 365), true, nil
	case "1wk":
		return int(days / 7), true, nil
	case "1mo":
		return int(days * 12 / 365), true, nil
	}
	return 0, false, fmt.Errorf("unknown interval %q", interval)
}

// Floor returns the market-cap floor. Call after Validate.
func (c *Config) Floor() decimal.Decimal {
	d, _ := decimal.NewFromString(c.Market.MarketCapFloor)
	return d
}
