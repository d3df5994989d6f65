package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config wraps a viper instance holding the settings crossfill cares
// about. Settings can come from the command line, the environment
// (CROSSFILL_ prefix), or defaults, in that order of precedence.
type Config struct {
	*viper.Viper

	// args holds whatever positional arguments were left over after
	// flag parsing (structure file, word list, optional output image).
	args []string
}

func DefaultConfig() Config {
	v := viper.New()
	setDefaults(v)
	return Config{Viper: v}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("infer", false)
	v.SetDefault("node-budget", 0)
	v.SetDefault("cpu-profile", "")
	v.SetDefault("words-path", "./data/words")
}

func (c *Config) Load(args []string) error {
	c.Viper = viper.New()

	fs := pflag.NewFlagSet("crossfill", pflag.ContinueOnError)
	fs.Bool("debug", false, "debug logging")
	fs.Bool("infer", false, "maintain arc consistency after each assignment during search")
	fs.Int("node-budget", 0, "abort search after this many nodes; 0 means no limit")
	fs.String("cpu-profile", "", "path for a CPU profile")
	fs.String("words-path", "./data/words", "directory holding word list files")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	c.SetEnvPrefix("crossfill")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()
	setDefaults(c.Viper)

	c.args = fs.Args()
	return nil
}

// Args returns the positional arguments left over after flag parsing.
func (c *Config) Args() []string {
	return c.args
}

// SanitizedSettings returns the settings for the startup log line.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
