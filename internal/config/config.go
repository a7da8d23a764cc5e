package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone  = "UTC"
	defaultDaysBack  = 7
	defaultGroupKey  = "thoracic"
	defaultGroupName = "Thoracic Oncology"

	configPathEnv   = "ONCODIGEST_CONFIG"
	contactEmailEnv = "CONTACT_EMAIL"
	outputDirEnv    = "ONCODIGEST_OUTPUT_DIR"
)

// Config holds high-level settings required across the application.
type Config struct {
	ContactEmail     string          `yaml:"contact_email"`
	RSSFeeds         []string        `yaml:"rss_feeds"`
	RSSGroups        []FeedGroup     `yaml:"rss_groups"`
	DaysBack         int             `yaml:"days_back"`
	IncludeAbstracts bool            `yaml:"include_abstracts"`
	Metric           MetricConfig    `yaml:"metric"`
	Output           OutputConfig    `yaml:"output"`
	Scheduler        SchedulerConfig `yaml:"scheduler"`
	Logging          LoggingConfig   `yaml:"logging"`
}

// FeedGroup names a category of feed sources; each group partitions the
// output into its own document.
type FeedGroup struct {
	Key   string   `yaml:"key"`
	Label string   `yaml:"label"`
	Feeds []string `yaml:"feeds"`
}

// MetricConfig locates the optional journal-quality table.
type MetricConfig struct {
	CSVPath    string `yaml:"csv_path"`
	Name       string `yaml:"name"`
	JournalCol string `yaml:"journal_col"`
	ValueCol   string `yaml:"value_col"`
}

// OutputConfig controls where JSON artifacts are written.
type OutputConfig struct {
	Dir  string `yaml:"dir"`
	File string `yaml:"file"`
}

// SchedulerConfig defines when the digest should rebuild. An empty cron
// expression means a single synchronous run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Groups folds the flat rss_feeds form into the grouped one: a bare feed
// list becomes the single default group. Explicit groups win when both
// forms are present.
func (c Config) Groups() []FeedGroup {
	if len(c.RSSGroups) > 0 {
		return c.RSSGroups
	}
	if len(c.RSSFeeds) == 0 {
		return nil
	}
	return []FeedGroup{{Key: defaultGroupKey, Label: defaultGroupName, Feeds: c.RSSFeeds}}
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(contactEmailEnv); v != "" {
		c.ContactEmail = v
	}

	if v := os.Getenv(outputDirEnv); v != "" {
		c.Output.Dir = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.ContactEmail != "" {
		base.ContactEmail = override.ContactEmail
	}

	if len(override.RSSFeeds) > 0 {
		base.RSSFeeds = override.RSSFeeds
	}
	if len(override.RSSGroups) > 0 {
		base.RSSGroups = override.RSSGroups
	}

	if override.DaysBack > 0 {
		base.DaysBack = override.DaysBack
	}
	if override.IncludeAbstracts {
		base.IncludeAbstracts = true
	}

	if override.Metric.CSVPath != "" {
		base.Metric = override.Metric
	}

	if override.Output.Dir != "" {
		base.Output.Dir = override.Output.Dir
	}
	if override.Output.File != "" {
		base.Output.File = override.Output.File
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		ContactEmail: "example@example.com",
		DaysBack:     defaultDaysBack,
		Metric: MetricConfig{
			Name:       "IF",
			JournalCol: "journal",
			ValueCol:   "value",
		},
		Output: OutputConfig{
			Dir:  "site",
			File: "data.json",
		},
		Scheduler: SchedulerConfig{Timezone: defaultTimezone, location: tz},
		Logging:   LoggingConfig{Level: "info"},
	}
}
