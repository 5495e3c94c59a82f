// Package config parses keyhunter's command-line flags into a Config.
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
)

// Config holds one resolved invocation of keyhunter.
type Config struct {
	SeedURL   string
	Headers   []Header
	Format    string // "default", "json", or "yaml"
	MaxPages  int
	MaxDepth  int
	Verbosity int // number of -v flags
	RulesFile string
	Redact    bool
}

// Header is one "Name: Value" request header supplied via --header/-H.
type Header struct {
	Name  string
	Value string
}

type headerList struct {
	values *[]Header
}

func (h *headerList) String() string {
	return ""
}

func (h *headerList) Set(raw string) error {
	name, value, ok := splitHeader(raw)
	if !ok {
		return fmt.Errorf("header %q must be in \"Name: Value\" form", raw)
	}
	*h.values = append(*h.values, Header{Name: name, Value: value})
	return nil
}

func splitHeader(raw string) (name, value string, ok bool) {
	for i := 0; i < len(raw); i++ {
		if raw[i] == ':' {
			name = raw[:i]
			value = raw[i+1:]
			for len(value) > 0 && value[0] == ' ' {
				value = value[1:]
			}
			return name, value, name != ""
		}
	}
	return "", "", false
}

type verboseFlag struct {
	count *int
}

func (v *verboseFlag) String() string {
	return ""
}

func (v *verboseFlag) Set(string) error {
	*v.count++
	return nil
}

func (v *verboseFlag) IsBoolFlag() bool {
	return true
}

// NewConfig returns a Config with default values applied.
func NewConfig() *Config {
	return &Config{
		Format:   "default",
		MaxPages: 0,
		MaxDepth: 0,
	}
}

// ParseFlags parses args (excluding the program name) into c, writing
// usage output to out on error. It returns an error describing what's
// wrong with the invocation; callers map that to a fatal exit code.
func (c *Config) ParseFlags(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("keyhunter", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprintln(out, "usage: keyhunter <SEED_URL> [flags]")
		fs.PrintDefaults()
	}

	fs.Var(&headerList{values: &c.Headers}, "header", "extra request header, \"Name: Value\" (repeatable)")
	fs.Var(&headerList{values: &c.Headers}, "H", "shorthand for --header")
	fs.StringVar(&c.Format, "format", "default", "report format: default, json, or yaml")
	fs.IntVar(&c.MaxPages, "max-pages", 0, "maximum pages to crawl (0 = unlimited)")
	fs.IntVar(&c.MaxDepth, "max-depth", 0, "maximum crawl depth (0 = unlimited)")
	fs.Var(&verboseFlag{count: &c.Verbosity}, "verbose", "increase log verbosity (repeatable)")
	fs.Var(&verboseFlag{count: &c.Verbosity}, "v", "shorthand for --verbose")
	fs.StringVar(&c.RulesFile, "rules", "", "path to a custom TOML rule catalogue (default: embedded catalogue)")
	fs.BoolVar(&c.Redact, "redact", false, "mask discovered secrets in report output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("missing required SEED_URL argument")
	}
	c.SeedURL = fs.Arg(0)

	switch c.Format {
	case "default", "json", "yaml":
	default:
		return fmt.Errorf("invalid --format %q: must be \"default\", \"json\", or \"yaml\"", c.Format)
	}

	return nil
}

// LogLevel resolves the effective slog level name from KEYHUNTER_LOG_LEVEL
// and any -v flags. -v flags raise verbosity and take precedence over
// the environment variable when present.
func (c *Config) LogLevel() string {
	if c.Verbosity >= 2 {
		return "debug"
	}
	if c.Verbosity == 1 {
		return "info"
	}
	if lvl := os.Getenv("KEYHUNTER_LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return "warn"
}
