package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "ALEXCHESS"

type setting struct {
	name  string
	value any
	usage string
}

var defaults = []setting{
	{"debug", false, "enable debug logging"},
	{"config", "", "optional path to a yaml/toml/json config file"},
	{"cpu-profile", "", "write a cpu profile to this path"},

	// search
	{"depth", 3, "default fixed search depth"},
	{"max-depth", 6, "iterative deepening depth ceiling for timed searches"},
	{"ttable-mb", 64, "transposition table size in MiB"},
	{"ttable-memory-fraction", 0.25, "cap the transposition table at this fraction of system memory"},

	// time control
	{"move-overhead", 0.97, "fraction of the think time actually handed to the search"},
	{"min-think-ms", 20, "never think less than this many milliseconds on a clock"},
	{"max-clock-fraction", 0.25, "never think longer than this fraction of the remaining clock"},
	{"moves-to-go", 30, "assumed number of moves left when budgeting a clock"},

	// engine front end
	{"interactive", false, "read commands with a line editor instead of plain stdin"},
	{"engine-name", "alex-chess-engine", "name reported to uci"},
	{"engine-author", "Alex", "author reported to uci"},

	// self-play
	{"plies", 80, "maximum plies per self-play game"},
	{"games", 1, "number of self-play games"},
	{"threads", 1, "number of self-play games played concurrently"},
	{"movetime-ms", 0, "self-play think time per move; 0 means fixed depth"},
	{"start-fen", "", "self-play starting position; empty means the standard setup"},
	{"db", "", "sqlite database to record self-play games in"},
	{"log-file", "", "yaml log of every self-play ply"},
}

type Config struct {
	*viper.Viper
}

// DefaultConfig returns a config holding only default values.
func DefaultConfig() Config {
	c := Config{Viper: viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	for _, s := range defaults {
		c.SetDefault(s.name, s.value)
	}
}

// Load reads settings from command-line args, the environment and an
// optional config file, in that order of precedence.
func (c *Config) Load(args []string) error {
	if c.Viper == nil {
		c.Viper = viper.New()
	}
	c.setDefaults()

	fs := pflag.NewFlagSet("alexchess", pflag.ContinueOnError)
	for _, s := range defaults {
		switch v := s.value.(type) {
		case bool:
			fs.Bool(s.name, v, s.usage)
		case int:
			fs.Int(s.name, v, s.usage)
		case float64:
			fs.Float64(s.name, v, s.usage)
		case string:
			fs.String(s.name, v, s.usage)
		default:
			return fmt.Errorf("unsupported setting type for %s", s.name)
		}
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.BindPFlags(fs); err != nil {
		return err
	}

	c.SetEnvPrefix(envPrefix)
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	if path := c.GetString("config"); path != "" {
		c.SetConfigFile(path)
		if err := c.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	return nil
}

// SanitizedSettings returns all settings in a form that is safe to log.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
