package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"os/user"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for a test run
type Config struct {
	// Target settings
	BaseURL   string
	AuthToken string

	// Data settings
	DataFile  string
	Sheet     string
	SuiteFile string

	// Report settings
	ReportDir   string
	Formats     []string
	Application string
	Environment string

	// Execution settings
	RequestTimeout time.Duration
	StepTimeout    time.Duration
	WaitTimeout    time.Duration
	Concurrency    int
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		BaseURL:        DefaultBaseURL,
		Sheet:          DefaultSheet,
		ReportDir:      DefaultReportDir,
		Application:    DefaultApplication,
		Environment:    DefaultEnvironment,
		RequestTimeout: DefaultRequestTimeout,
		StepTimeout:    DefaultStepTimeout,
		WaitTimeout:    DefaultWaitTimeout,
		Concurrency:    DefaultConcurrency,
	}
	cfg.Formats = make([]string, len(DefaultFormats))
	copy(cfg.Formats, DefaultFormats)
	return cfg
}

// Load creates a config from the defaults, the optional env file and the process environment.
// A missing env file is not an error. Variables already set in the environment take
// precedence over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not read %s: %w", envFile, err)
		}
	}
	cfg := New()
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dest *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dest = v
		}
	}
	dur := func(name string, dest *time.Duration) error {
		if v, ok := lookup(name); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dest = d
		}
		return nil
	}

	str(EnvBaseURL, &c.BaseURL)
	str(EnvAuthToken, &c.AuthToken)
	str(EnvDataFile, &c.DataFile)
	str(EnvSheet, &c.Sheet)
	str(EnvSuiteFile, &c.SuiteFile)
	str(EnvReportDir, &c.ReportDir)
	str(EnvApplication, &c.Application)
	str(EnvEnvironment, &c.Environment)
	if v, ok := lookup(EnvFormats); ok && v != "" {
		c.Formats = SplitList(v)
	}
	if err := dur(EnvRequestTimeout, &c.RequestTimeout); err != nil {
		return err
	}
	if err := dur(EnvStepTimeout, &c.StepTimeout); err != nil {
		return err
	}
	if v, ok := lookup(EnvConcurrency); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvConcurrency, err)
		}
		c.Concurrency = n
	}
	return nil
}

// Validate reports the first setting that cannot be used
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base URL %q", c.BaseURL)
	}
	for _, f := range c.Formats {
		if f != FormatJSON && f != FormatXLSX {
			return fmt.Errorf("unknown report format %q (expected %s or %s)", f, FormatJSON, FormatXLSX)
		}
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.RequestTimeout <= 0 || c.StepTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	return nil
}

// EnvironmentLabels returns the labels recorded in the report
func (c *Config) EnvironmentLabels() map[string]string {
	return map[string]string{
		"Application": c.Application,
		"Environment": c.Environment,
		"Base URL":    c.BaseURL,
		"User":        currentUser(),
		"OS":          runtime.GOOS + "/" + runtime.GOARCH,
		"Go Version":  runtime.Version(),
	}
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}

// SplitList splits a comma separated list, dropping blanks
func SplitList(s string) []string {
	var ret []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			ret = append(ret, strings.ToLower(p))
		}
	}
	return ret
}
