// Package config loads the settings of the outseq-demo command.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/notorious-go/outseq/termout"
)

// Config holds the demo settings.
type Config struct {
	// Dir is the directory whose entries are evaluated.
	Dir string
	// Workers limits how many entries are evaluated at once. Negative means no
	// limit; zero is rejected.
	Workers int
	// Stream is "stdout" or "stderr".
	Stream string
	// Color is "auto", "always" or "never".
	Color string
	// Delay is the simulated cost of evaluating one byte of a path.
	Delay time.Duration
	// Letter marks paths that fail evaluation when they contain it.
	Letter string
}

// Load reads configuration from defaults, file, env and the command line
// arguments, in increasing order of precedence. Env var overrides use prefix
// OUTSEQ_, and OUTSEQ_CONFIG names a TOML config file. The first positional
// argument, if any, is the directory.
//
// The result is validated once every layer has been applied, so a flag can
// replace an unusable env value. Load returns pflag.ErrHelp when args ask for
// the usage message.
func Load(args []string) (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("dir", ".")
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("stream", "stderr")
	v.SetDefault("color", "auto")
	v.SetDefault("delay", 15*time.Millisecond)
	v.SetDefault("letter", "c")

	v.SetConfigType("toml")
	if path := os.Getenv("OUTSEQ_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("OUTSEQ")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	fs := Flags()
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}
	if fs.NArg() > 1 {
		return Config{}, fmt.Errorf("config: at most one directory, got %d arguments", fs.NArg())
	}
	if fs.NArg() == 1 {
		v.Set("dir", fs.Arg(0))
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, c.Validate()
}

// Flags returns the command line flags understood by Load. Their defaults are
// only shown in the usage message: a flag that is not set leaves the value of
// the lower layers in place.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("outseq-demo", pflag.ContinueOnError)
	fs.Int("workers", runtime.NumCPU(), "entries evaluated at once (negative for no limit)")
	fs.String("stream", "stderr", "output stream: stdout or stderr")
	fs.String("color", "auto", "colored output: auto, always or never")
	fs.Duration("delay", 15*time.Millisecond, "simulated evaluation cost per byte of path")
	fs.String("letter", "c", "paths containing this letter fail evaluation")
	return fs
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	if c.Workers == 0 {
		return fmt.Errorf("config: workers must not be 0, use a negative value for no limit")
	}
	switch c.Stream {
	case "stdout", "stderr":
	default:
		return fmt.Errorf("config: stream must be stdout or stderr, got %q", c.Stream)
	}
	if _, err := termout.ParseColorChoice(c.Color); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Delay < 0 {
		return fmt.Errorf("config: negative delay %v", c.Delay)
	}
	if len(c.Letter) != 1 {
		return fmt.Errorf("config: letter must be a single character, got %q", c.Letter)
	}
	return nil
}

// Output returns the stream selected by the configuration.
func (c Config) Output() *termout.Stream {
	choice, _ := termout.ParseColorChoice(c.Color)
	if c.Stream == "stdout" {
		return termout.Stdout(choice)
	}
	return termout.Stderr(choice)
}
