package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so config files can say "30s" or "500ms".
type Duration time.Duration

func (d Duration) Duration() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	if d == 0 {
		return "", nil
	}
	return time.Duration(d).String(), nil
}

// CheckDef is one check entry as written in the config file. Interval and
// timeout fall back to Defaults when omitted; cross-check validation
// (duplicate names, unknown kinds) happens in the registry.
type CheckDef struct {
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind"`
	Target   string   `yaml:"target"`
	Interval Duration `yaml:"interval"`
	Timeout  Duration `yaml:"timeout"`
}

// Defaults apply to checks that omit interval or timeout.
type Defaults struct {
	Interval Duration `yaml:"interval"`
	Timeout  Duration `yaml:"timeout"`
}

type Config struct {
	Addr        string     `yaml:"listen"`       // API bind address, e.g. ":8080"
	LogDir      string     `yaml:"log_dir"`      // logs directory
	DatabaseURL string     `yaml:"database_url"` // empty means in-memory store
	Defaults    Defaults   `yaml:"defaults"`
	Checks      []CheckDef `yaml:"checks"`
}

// Load reads the YAML config at path. DATABASE_URL in the environment
// overrides the file value so credentials can stay out of the file.
func Load(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.LogDir == "" {
		cfg.LogDir = "logs"
	}
	if cfg.Defaults.Interval == 0 {
		cfg.Defaults.Interval = Duration(30 * time.Second)
	}
	if cfg.Defaults.Timeout == 0 {
		cfg.Defaults.Timeout = Duration(10 * time.Second)
	}
	if db := os.Getenv("DATABASE_URL"); db != "" {
		cfg.DatabaseURL = db
	}

	for i := range cfg.Checks {
		if cfg.Checks[i].Interval == 0 {
			cfg.Checks[i].Interval = cfg.Defaults.Interval
		}
		if cfg.Checks[i].Timeout == 0 {
			cfg.Checks[i].Timeout = cfg.Defaults.Timeout
		}
	}
	return cfg, nil
}
