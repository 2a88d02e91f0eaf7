// Package config loads gsack's settings from defaults, an optional YAML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/gsack/internal/logger"
	"github.com/pfrederiksen/gsack/internal/scraper"
)

const (
	DefaultOutputDir = "~/www/gsack-output"
	DefaultSleep     = time.Second

	FallbackPDF  = "pdf"
	FallbackNone = "none"
)

// DefaultPostcodes are the Stuttgart postcodes searched by the listing source.
var DefaultPostcodes = []string{
	"70173", "70174", "70176", "70178", "70180", "70182", "70184", "70186",
	"70188", "70190", "70191", "70192", "70193", "70195", "70197", "70199",
	"70327", "70329", "70372", "70374", "70376", "70378", "70435", "70437",
	"70439", "70469", "70499", "70563", "70565", "70567", "70569", "70597",
	"70599", "70619", "70629",
}

// Config holds all settings of a run.
type Config struct {
	OutputDir string        `yaml:"output_dir"`
	Sleep     time.Duration `yaml:"sleep"`
	Source    string        `yaml:"source"`
	Fallback  string        `yaml:"fallback"`
	LogLevel  string        `yaml:"log_level"`

	Listing struct {
		SearchURL string   `yaml:"search_url"`
		BaseURL   string   `yaml:"base_url"`
		Postcodes []string `yaml:"postcodes"`
	} `yaml:"listing"`

	Postback struct {
		URL         string `yaml:"url"`
		EventTarget string `yaml:"event_target"`
		Areas       int    `yaml:"areas"`
	} `yaml:"postback"`

	PDF struct {
		URLTemplate   string `yaml:"url_template"`
		ExpectedAreas int    `yaml:"expected_areas"`
	} `yaml:"pdf"`
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{
		OutputDir: DefaultOutputDir,
		Sleep:     DefaultSleep,
		Source:    scraper.SourceListing,
		Fallback:  FallbackPDF,
		LogLevel:  "info",
	}

	c.Listing.SearchURL = scraper.DefaultSearchURL
	c.Listing.BaseURL = scraper.DefaultBaseURL
	c.Listing.Postcodes = append([]string(nil), DefaultPostcodes...)

	c.Postback.URL = scraper.DefaultPostbackURL
	c.Postback.EventTarget = scraper.DefaultEventTarget
	c.Postback.Areas = scraper.DefaultAreas

	c.PDF.URLTemplate = scraper.DefaultPDFURLTemplate
	c.PDF.ExpectedAreas = scraper.DefaultExpectedAreas

	return c
}

// Load builds the configuration. A .env file in the working directory is loaded into
// the environment first. path may be empty; a named file that can't be read is an error.
// The result is not validated: callers apply their overrides and then call Validate.
func Load(path string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}

		if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), c); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
		logger.Debug("config loaded", logger.Fields{"path": path})
	}

	if err := c.loadFromEnv(); err != nil {
		return nil, err
	}

	return c, nil
}

var envVar = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} with the value of VAR. Unset variables are left as is.
func expandEnvVars(s string) string {
	return envVar.ReplaceAllStringFunc(s, func(match string) string {
		if val, ok := os.LookupEnv(match[2 : len(match)-1]); ok {
			return val
		}
		return match
	})
}

func (c *Config) loadFromEnv() error {
	if dir := os.Getenv("GSACK_OUTPUT_DIR"); dir != "" {
		c.OutputDir = dir
	}

	if sleep := os.Getenv("GSACK_SLEEP"); sleep != "" {
		d, err := time.ParseDuration(sleep)
		if err != nil {
			return fmt.Errorf("parsing GSACK_SLEEP: %w", err)
		}
		c.Sleep = d
	}

	if level := os.Getenv("GSACK_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}

	return nil
}

// Validate checks the settings that can't be defaulted.
func (c *Config) Validate() error {
	var problems []string

	if c.OutputDir == "" {
		problems = append(problems, "output_dir must not be empty")
	}
	if c.Sleep < 0 {
		problems = append(problems, "sleep must not be negative")
	}

	switch c.Source {
	case scraper.SourceListing:
		if len(c.Listing.Postcodes) == 0 {
			problems = append(problems, "listing.postcodes must not be empty")
		}
		if !strings.Contains(c.Listing.SearchURL, "{postcode}") {
			problems = append(problems, "listing.search_url must contain {postcode}")
		}
	case scraper.SourcePostback:
		if c.Postback.Areas <= 0 {
			problems = append(problems, "postback.areas must be positive")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown source %q (want listing or postback)", c.Source))
	}

	switch c.Fallback {
	case FallbackPDF:
		if c.PDF.ExpectedAreas <= 0 {
			problems = append(problems, "pdf.expected_areas must be positive")
		}
		if !strings.Contains(c.PDF.URLTemplate, "{year}") {
			problems = append(problems, "pdf.url_template must contain {year}")
		}
	case FallbackNone:
	default:
		problems = append(problems, fmt.Sprintf("unknown fallback %q (want pdf or none)", c.Fallback))
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// UsesFallback reports whether a structural failure of the primary source should
// switch to the PDF schedule. Only the postback source has one.
func (c *Config) UsesFallback() bool {
	return c.Source == scraper.SourcePostback && c.Fallback == FallbackPDF
}

// ListingConfig returns the listing source settings.
func (c *Config) ListingConfig() scraper.ListingConfig {
	return scraper.ListingConfig{
		SearchURL: c.Listing.SearchURL,
		BaseURL:   c.Listing.BaseURL,
		Postcodes: c.Listing.Postcodes,
	}
}

// PostbackConfig returns the postback source settings.
func (c *Config) PostbackConfig() scraper.PostbackConfig {
	return scraper.PostbackConfig{
		URL:         c.Postback.URL,
		EventTarget: c.Postback.EventTarget,
		Areas:       c.Postback.Areas,
	}
}

// PDFConfig returns the schedule document settings.
func (c *Config) PDFConfig() scraper.PDFConfig {
	return scraper.PDFConfig{
		URLTemplate:   c.PDF.URLTemplate,
		ExpectedAreas: c.PDF.ExpectedAreas,
	}
}
