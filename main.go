package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"gridscrape/internal/browser"
	"gridscrape/internal/config"
	"gridscrape/internal/formatter"
	"gridscrape/internal/logger"
	"gridscrape/internal/output"
	"gridscrape/internal/scraper"
	"gridscrape/internal/sites/generic"
	_ "gridscrape/internal/sites/survivorgrid"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var version = "dev"

const (
	defaultSite     = "survivorgrid"
	defaultSelector = "table"
	defaultBaseName = "table"
)

var (
	selector   string
	site       string
	input      string
	waitFor    string
	waitTarget string
	timeout    time.Duration
	scope      string
	outputDir  string
	name       string
	sheet      string
	formats    []string
	showUI     bool
	proxyURL   string
	configFile string
	verbose    bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error (%s): %v\n", scraper.Classify(err), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "gridscrape [URL]",
		Short:   "Export an HTML table from a rendered web page to CSV and XLSX",
		Version: version,
		Long: `gridscrape renders a page in a headless browser, waits for a table to
appear, normalizes it into a rectangular grid and writes it as CSV and XLSX.

Without a URL it exports the survivorgrid.com pick grid.`,
		Example: `  # Export the survivorgrid.com grid to ./survivor_grid.csv and ./survivor_grid.xlsx
  gridscrape

  # Any page, any table
  gridscrape -s "table.standings" -n standings https://example.com/standings

  # Re-run normalization on a saved page, markdown preview only
  gridscrape -i saved.html -s "table#grid" -f markdown`,
		Args:          cobra.MaximumNArgs(1),
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.StringVarP(&selector, "selector", "s", "", "CSS selector of the target table")
	flags.StringVar(&site, "site", "", fmt.Sprintf("Site preset (%s)", strings.Join(scraper.Names(), ", ")))
	flags.StringVarP(&input, "input", "i", "", "Read a saved HTML file instead of launching a browser")
	flags.StringVarP(&waitFor, "wait-for", "w", config.DefaultWaitFor, "Wait strategy (element, load, time)")
	flags.StringVarP(&waitTarget, "wait-target", "T", "", "Wait target (selector for 'element', defaults to --selector; milliseconds for 'time')")
	flags.DurationVarP(&timeout, "timeout", "t", config.DefaultTimeout, "Maximum time to wait for the page and table")
	flags.StringVar(&scope, "scope", config.DefaultScope, "Markup to capture (document, element)")
	flags.StringVarP(&outputDir, "output-dir", "o", config.DefaultOutputDir, "Directory for the exported files")
	flags.StringVarP(&name, "name", "n", "", "Base name of the exported files (an extension selects the format)")
	flags.StringVar(&sheet, "sheet", config.DefaultSheetName, "Worksheet name in the XLSX export")
	flags.StringSliceVarP(&formats, "format", "f", config.DefaultFormats, fmt.Sprintf("Output formats (%s)", strings.Join(formatter.Formats, ", ")))
	flags.BoolVar(&showUI, "showui", false, "Show browser UI (disable headless mode)")
	flags.StringVarP(&proxyURL, "proxy", "p", "", "Proxy URL (e.g. http://127.0.0.1:7890), defaults to GRIDSCRAPE_PROXY env var")
	flags.StringVar(&configFile, "config", "", "TOML config file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Print diagnostic output to stderr")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	logger.SetVerbose(cfg.Verbose)

	if len(args) == 1 {
		cfg.URL = args[0]
	}

	s, target, err := resolveScraper(cfg)
	if err != nil {
		return err
	}

	base := cfg.BaseName
	if base == "" {
		base = defaultBaseName
		if p, ok := s.(scraper.Preset); ok {
			base = p.DefaultBaseName()
		} else if cfg.Input != "" {
			base = strings.TrimSuffix(filepath.Base(cfg.Input), filepath.Ext(cfg.Input))
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	opts := scraper.Options{
		Selector:   cfg.Selector,
		WaitFor:    cfg.WaitFor,
		WaitTarget: cfg.WaitTarget,
		Timeout:    cfg.Timeout,
		Scope:      cfg.Scope,
		ShowUI:     cfg.ShowUI,
		ProxyURL:   cfg.ProxyURL,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("scraper=%s target=%q selector=%q timeout=%s", s.Name(), target, opts.Selector, opts.Timeout)
	res, err := s.Scrape(ctx, target, opts)
	if err != nil {
		return fmt.Errorf("failed to scrape: %w", err)
	}
	logger.Info("scraped %s %q in %s: headers from %s, %d columns, %d rows",
		res.Source, res.Title, res.LoadTime.Round(time.Millisecond), res.HeaderSource, res.Table.Width(), len(res.Table.Rows))
	if len(res.Table.Rows) == 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: table %q has no rows\n", opts.Selector)
	}

	paths, err := output.Write(cfg.OutputDir, base, res.Table, cfg.Formats, formatter.Options{SheetName: cfg.SheetName})
	if err != nil {
		return err
	}
	for i, p := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s to: %s\n", strings.ToUpper(cfg.Formats[i]), p)
	}
	return nil
}

// loadConfig layers defaults, the config file, the environment and finally
// the flags the user actually set.
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		if err := cfg.LoadFile(configFile); err != nil {
			return nil, err
		}
	}
	if err := cfg.LoadEnv(".env"); err != nil {
		return nil, err
	}

	if flags.Changed("selector") {
		cfg.Selector = selector
	}
	if flags.Changed("site") {
		cfg.Site = site
	}
	if flags.Changed("input") {
		cfg.Input = input
	}
	if flags.Changed("wait-for") {
		cfg.WaitFor = waitFor
	}
	if flags.Changed("wait-target") {
		cfg.WaitTarget = waitTarget
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if flags.Changed("scope") {
		cfg.Scope = scope
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = outputDir
	}
	if flags.Changed("sheet") {
		cfg.SheetName = sheet
	}
	if flags.Changed("format") {
		cfg.SetFormats(formats)
	}
	if flags.Changed("showui") {
		cfg.ShowUI = showUI
	}
	if flags.Changed("proxy") {
		cfg.ProxyURL = proxyURL
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if flags.Changed("name") {
		cfg.BaseName = name
		// If the name carries a known extension but no format was requested,
		// export just that format.
		if f := output.InferFormat(name); f != "" {
			cfg.BaseName = strings.TrimSuffix(name, filepath.Ext(name))
			if !flags.Changed("format") {
				cfg.SetFormats([]string{f})
			}
		}
	}
	return cfg, nil
}

// resolveScraper picks the scraper and target for cfg: a local file, a site
// preset, a generic URL, or the default preset when nothing was given.
func resolveScraper(cfg *config.Config) (scraper.Scraper, string, error) {
	var (
		s      scraper.Scraper
		target string
	)

	switch {
	case cfg.Input != "":
		if cfg.URL != "" {
			return nil, "", errors.New("a URL and --input cannot be used together")
		}
		s, target = generic.NewFileScraper(), cfg.Input
	case cfg.Site != "":
		ps, ok := scraper.Get(cfg.Site)
		if !ok {
			return nil, "", fmt.Errorf("unknown site: %s", cfg.Site)
		}
		s, target = ps, cfg.URL
	case cfg.URL != "":
		target = normalizeURL(cfg.URL)
		s = generic.NewBrowserScraper(browser.Config{
			Headless:  !cfg.ShowUI,
			ProxyURL:  cfg.ProxyURL,
			NoSandbox: true,
		})
	default:
		ps, ok := scraper.Get(defaultSite)
		if !ok {
			return nil, "", fmt.Errorf("unknown site: %s", defaultSite)
		}
		s = ps
	}

	if p, ok := s.(scraper.Preset); ok {
		if target == "" {
			target = p.DefaultTarget()
		}
		if cfg.Selector == "" {
			cfg.Selector = p.DefaultSelector()
		}
	}
	if cfg.Selector == "" {
		cfg.Selector = defaultSelector
	}
	return s, target, nil
}

// normalizeURL normalizes URL, adds http:// if no protocol prefix
func normalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return rawURL
	}
	lower := strings.ToLower(rawURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") && !strings.HasPrefix(lower, "file://") {
		return "http://" + rawURL
	}
	return rawURL
}
