// Package config resolves gridscrape settings from defaults, an optional TOML
// file and GRIDSCRAPE_* environment variables. Command-line flags are applied
// on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gridscrape/internal/formatter"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const envPrefix = "GRIDSCRAPE_"

// Defaults used when nothing else is configured.
const (
	DefaultTimeout   = 15 * time.Second
	DefaultSheetName = "Grid"
	DefaultWaitFor   = "element"
	DefaultScope     = "document"
	DefaultOutputDir = "."
)

// DefaultFormats are the files written by a plain run.
var DefaultFormats = []string{"csv", "xlsx"}

// Config holds the settings for one run.
type Config struct {
	URL        string
	Selector   string
	Site       string
	Input      string
	WaitFor    string
	WaitTarget string
	Timeout    time.Duration
	Scope      string
	OutputDir  string
	BaseName   string
	SheetName  string
	Formats    []string
	ShowUI     bool
	ProxyURL   string
	Verbose    bool
}

// Default returns a Config populated with defaults.
func Default() *Config {
	return &Config{
		WaitFor:   DefaultWaitFor,
		Timeout:   DefaultTimeout,
		Scope:     DefaultScope,
		OutputDir: DefaultOutputDir,
		SheetName: DefaultSheetName,
		Formats:   append([]string(nil), DefaultFormats...),
	}
}

// fileConfig mirrors the TOML layout:
//
//	url = "https://www.survivorgrid.com/"
//	selector = "table#grid"
//	timeout = "15s"
//
//	[browser]
//	show_ui = false
//	proxy = "http://127.0.0.1:7890"
//
//	[output]
//	dir = "out"
//	name = "survivor_grid"
//	sheet = "Grid"
//	formats = ["csv", "xlsx"]
type fileConfig struct {
	URL        string `toml:"url"`
	Selector   string `toml:"selector"`
	Site       string `toml:"site"`
	WaitFor    string `toml:"wait_for"`
	WaitTarget string `toml:"wait_target"`
	Timeout    string `toml:"timeout"`
	Scope      string `toml:"scope"`
	Verbose    bool   `toml:"verbose"`
	Browser    struct {
		ShowUI bool   `toml:"show_ui"`
		Proxy  string `toml:"proxy"`
	} `toml:"browser"`
	Output struct {
		Dir     string   `toml:"dir"`
		Name    string   `toml:"name"`
		Sheet   string   `toml:"sheet"`
		Formats []string `toml:"formats"`
	} `toml:"output"`
}

// LoadFile merges the TOML file at path into c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString(&c.URL, fc.URL)
	setString(&c.Selector, fc.Selector)
	setString(&c.Site, fc.Site)
	setString(&c.WaitFor, fc.WaitFor)
	setString(&c.WaitTarget, fc.WaitTarget)
	setString(&c.Scope, fc.Scope)
	setString(&c.ProxyURL, fc.Browser.Proxy)
	setString(&c.OutputDir, fc.Output.Dir)
	setString(&c.BaseName, fc.Output.Name)
	setString(&c.SheetName, fc.Output.Sheet)
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q in %s: %w", fc.Timeout, path, err)
		}
		c.Timeout = d
	}
	if len(fc.Output.Formats) > 0 {
		c.Formats = normalizeFormats(fc.Output.Formats)
	}
	c.ShowUI = c.ShowUI || fc.Browser.ShowUI
	c.Verbose = c.Verbose || fc.Verbose
	return nil
}

// LoadEnv loads a .env file if present and merges GRIDSCRAPE_* variables into c.
func (c *Config) LoadEnv(dotenv string) error {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", dotenv, err)
		}
	}

	setString(&c.URL, env("URL"))
	setString(&c.Selector, env("SELECTOR"))
	setString(&c.Site, env("SITE"))
	setString(&c.ProxyURL, env("PROXY"))
	setString(&c.OutputDir, env("OUTPUT_DIR"))
	setString(&c.BaseName, env("NAME"))
	setString(&c.SheetName, env("SHEET"))
	if v := env("TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sTIMEOUT %q: %w", envPrefix, v, err)
		}
		c.Timeout = d
	}
	if v := env("FORMATS"); v != "" {
		c.Formats = normalizeFormats(strings.Split(v, ","))
	}
	if v := env("SHOWUI"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sSHOWUI %q: %w", envPrefix, v, err)
		}
		c.ShowUI = b
	}
	return nil
}

// SetFormats replaces the output formats, dropping blanks and duplicates.
func (c *Config) SetFormats(formats []string) {
	c.Formats = normalizeFormats(formats)
}

// Validate checks that the settings describe a runnable extraction.
func (c *Config) Validate() error {
	validStrategies := map[string]bool{
		"element": true,
		"load":    true,
		"time":    true,
	}
	if !validStrategies[c.WaitFor] {
		return fmt.Errorf("invalid wait strategy: %s", c.WaitFor)
	}
	if c.WaitFor == "time" && c.WaitTarget == "" {
		return fmt.Errorf("--wait-target is required when using 'time' wait strategy")
	}

	validScopes := map[string]bool{
		"document": true,
		"element":  true,
	}
	if !validScopes[c.Scope] {
		return fmt.Errorf("invalid scope: %s", c.Scope)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}

	if len(c.Formats) == 0 {
		return fmt.Errorf("at least one output format is required")
	}
	for _, f := range c.Formats {
		if !slices.Contains(formatter.Formats, f) {
			return fmt.Errorf("invalid output format: %s", f)
		}
	}

	if strings.TrimSpace(c.SheetName) == "" {
		return fmt.Errorf("sheet name must not be empty")
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func normalizeFormats(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, f := range in {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "md" {
			f = "markdown"
		}
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
