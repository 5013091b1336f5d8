package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"Springboard/internal/anchor"
	"Springboard/internal/projector"
	"Springboard/internal/strategy"
	"Springboard/internal/timegrid"
)

// Engine holds the detection and signal knobs.
type Engine struct {
	EMALen int `yaml:"ema_len" envconfig:"SPRINGBOARD_EMA_LEN"`
	NMin   int `yaml:"n_min" envconfig:"SPRINGBOARD_N_MIN"`
	NMax   int `yaml:"n_max" envconfig:"SPRINGBOARD_N_MAX"`
	MMin   int `yaml:"m_min" envconfig:"SPRINGBOARD_M_MIN"`
	MMax   int `yaml:"m_max" envconfig:"SPRINGBOARD_M_MAX"`

	SlopeDown   float64 `yaml:"slope_down" envconfig:"SPRINGBOARD_SLOPE_DOWN"`
	SlopeUp     float64 `yaml:"slope_up" envconfig:"SPRINGBOARD_SLOPE_UP"`
	MirrorLines bool    `yaml:"mirror_lines" envconfig:"SPRINGBOARD_MIRROR_LINES"`

	TouchTolerance                 float64 `yaml:"touch_tolerance" envconfig:"SPRINGBOARD_TOUCH_TOLERANCE"`
	BodyTolerance                  float64 `yaml:"body_tolerance" envconfig:"SPRINGBOARD_BODY_TOLERANCE"`
	AllowReuse                     bool    `yaml:"allow_reuse" envconfig:"SPRINGBOARD_ALLOW_REUSE"`
	ReuseRearmAfterBars            int     `yaml:"reuse_rearm_after_bars" envconfig:"SPRINGBOARD_REUSE_REARM_AFTER_BARS"`
	ShortRequiresBelowAllOvernight bool    `yaml:"short_requires_below_all_overnight" envconfig:"SPRINGBOARD_SHORT_REQUIRES_BELOW_ALL_OVERNIGHT"`
	StopMargin                     float64 `yaml:"stop_margin" envconfig:"SPRINGBOARD_STOP_MARGIN"`
	Workers                        int     `yaml:"workers" envconfig:"SPRINGBOARD_WORKERS"`
}

// Session describes the venue calendar. Equal maintenance bounds disable the
// maintenance exclusion (stock mode).
type Session struct {
	Timezone         string `yaml:"timezone" envconfig:"SPRINGBOARD_SESSION_TIMEZONE"`
	RTHStart         string `yaml:"rth_start" envconfig:"SPRINGBOARD_SESSION_RTH_START"`
	RTHEnd           string `yaml:"rth_end" envconfig:"SPRINGBOARD_SESSION_RTH_END"`
	MaintenanceStart string `yaml:"maintenance_start" envconfig:"SPRINGBOARD_SESSION_MAINTENANCE_START"`
	MaintenanceEnd   string `yaml:"maintenance_end" envconfig:"SPRINGBOARD_SESSION_MAINTENANCE_END"`
	BarMinutes       int    `yaml:"bar_minutes" envconfig:"SPRINGBOARD_SESSION_BAR_MINUTES"`
}

// Config holds all application configuration.
type Config struct {
	Engine   Engine  `yaml:"engine"`
	Session  Session `yaml:"session"`
	Telegram struct {
		BotToken string `yaml:"bot_token" envconfig:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `yaml:"chat_id" envconfig:"TELEGRAM_CHAT_ID"`
	} `yaml:"telegram"`
	DataSource struct {
		Symbol     string `yaml:"symbol" envconfig:"SPRINGBOARD_SYMBOL"`
		SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	} `yaml:"data_source"`
	Schedule struct {
		PreOpenCron   string `yaml:"pre_open_cron" envconfig:"SPRINGBOARD_CRON_PRE_OPEN"`
		PostCloseCron string `yaml:"post_close_cron" envconfig:"SPRINGBOARD_CRON_POST_CLOSE"`
	} `yaml:"schedule"`
	Server struct {
		Addr           string   `yaml:"addr" envconfig:"SPRINGBOARD_SERVER_ADDR"`
		AllowedOrigins []string `yaml:"allowed_origins" envconfig:"SPRINGBOARD_SERVER_ALLOWED_ORIGINS"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" envconfig:"SPRINGBOARD_LOG_LEVEL"`
		Pretty bool   `yaml:"pretty" envconfig:"SPRINGBOARD_LOG_PRETTY"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Default returns the configuration used when neither file nor environment
// sets a value.
func Default() *Config {
	cfg := &Config{
		Engine: Engine{
			EMALen:                         8,
			NMin:                           1,
			NMax:                           3,
			MMin:                           1,
			MMax:                           3,
			SlopeDown:                      -0.25,
			SlopeUp:                        0.25,
			MirrorLines:                    true,
			TouchTolerance:                 0.5,
			AllowReuse:                     true,
			ReuseRearmAfterBars:            2,
			ShortRequiresBelowAllOvernight: true,
			StopMargin:                     0.8,
		},
		Session: Session{
			Timezone:         "America/Chicago",
			RTHStart:         "08:30",
			RTHEnd:           "15:00",
			MaintenanceStart: "16:00",
			MaintenanceEnd:   "17:00",
			BarMinutes:       30,
		},
	}
	cfg.DataSource.Symbol = "SPX"
	cfg.DataSource.SQLitePath = "data/springboard.db"
	cfg.Schedule.PreOpenCron = "0 0 8 * * 1-5"
	cfg.Schedule.PostCloseCron = "0 5 15 * * 1-5"
	cfg.Server.Addr = ":8080"
	cfg.Log.Level = "info"
	return cfg
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides. Tags carry the full variable name and
	// no prefix is passed, so envconfig never falls back to a bare name.
	overrides := []interface{}{
		&cfg.Engine, &cfg.Session, &cfg.Telegram, &cfg.DataSource,
		&cfg.Schedule, &cfg.Server, &cfg.Log,
	}
	for _, spec := range overrides {
		if err := envconfig.Process("", spec); err != nil {
			return nil, fmt.Errorf("env overrides: %w", err)
		}
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	return cfg, nil
}

// Validate checks ranges and that the session calendar parses.
func (c *Config) Validate() error {
	if _, err := c.EngineConfig(); err != nil {
		return err
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.DataSource.Symbol == "" {
		return fmt.Errorf("data_source.symbol is required")
	}
	if c.Schedule.PreOpenCron == "" || c.Schedule.PostCloseCron == "" {
		return fmt.Errorf("schedule.pre_open_cron and schedule.post_close_cron are required")
	}
	return nil
}

// TelegramEnabled reports whether notifications can be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Location loads the venue timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Session.Timezone)
	if err != nil {
		return nil, fmt.Errorf("session.timezone: %w", err)
	}
	return loc, nil
}

// Grid builds the time grid for the configured session.
func (c *Config) Grid() (timegrid.Grid, error) {
	loc, err := c.Location()
	if err != nil {
		return timegrid.Grid{}, err
	}
	var w timegrid.SessionWindow
	for _, f := range []struct {
		name string
		raw  string
		dst  *timegrid.Clock
	}{
		{"session.rth_start", c.Session.RTHStart, &w.RTHStart},
		{"session.rth_end", c.Session.RTHEnd, &w.RTHEnd},
		{"session.maintenance_start", c.Session.MaintenanceStart, &w.MaintenanceStart},
		{"session.maintenance_end", c.Session.MaintenanceEnd, &w.MaintenanceEnd},
	} {
		clk, err := timegrid.ParseClock(f.raw)
		if err != nil {
			return timegrid.Grid{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = clk
	}
	if c.Session.BarMinutes <= 0 {
		return timegrid.Grid{}, fmt.Errorf("session.bar_minutes must be positive, got %d", c.Session.BarMinutes)
	}
	g, err := timegrid.New(w, time.Duration(c.Session.BarMinutes)*time.Minute, loc)
	if err != nil {
		return timegrid.Grid{}, fmt.Errorf("session: %w", err)
	}
	return g, nil
}

// EngineConfig converts the loaded values into the immutable engine
// configuration.
func (c *Config) EngineConfig() (strategy.Config, error) {
	g, err := c.Grid()
	if err != nil {
		return strategy.Config{}, err
	}
	e := c.Engine
	sc := strategy.Config{
		Anchor: anchor.Params{
			EMALen: e.EMALen,
			NMin:   e.NMin,
			NMax:   e.NMax,
			MMin:   e.MMin,
			MMax:   e.MMax,
		},
		Slopes: projector.Slopes{
			Entry:  e.SlopeDown,
			Exit:   e.SlopeUp,
			Mirror: e.MirrorLines,
		},
		Signal: strategy.SignalParams{
			TouchTolerance:                 e.TouchTolerance,
			BodyTolerance:                  e.BodyTolerance,
			AllowReuse:                     e.AllowReuse,
			RearmAfterBars:                 e.ReuseRearmAfterBars,
			ShortRequiresBelowAllOvernight: e.ShortRequiresBelowAllOvernight,
			StopMargin:                     e.StopMargin,
		},
		Grid:    g,
		Workers: e.Workers,
	}
	if err := sc.Validate(); err != nil {
		return strategy.Config{}, fmt.Errorf("engine: %w", err)
	}
	return sc, nil
}
