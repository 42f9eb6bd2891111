package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by LoadFromEnv
const EnvPrefix = "ROZHODNUTIA_"

// Config holds all configuration options for the harvester
type Config struct {
	// Remote site
	Site SiteConfig `yaml:"site" json:"site"`

	// Fetch retry and transport settings
	Fetch FetchConfig `yaml:"fetch" json:"fetch"`

	// Pagination behaviour
	Crawl CrawlConfig `yaml:"crawl" json:"crawl"`

	// Output layout
	Output OutputConfig `yaml:"output" json:"output"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SiteConfig holds the remote listing location
type SiteConfig struct {
	BaseURL   string `yaml:"base_url" json:"base_url"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// FetchConfig holds retry and HTTP transport configuration
type FetchConfig struct {
	MaxAttempts       int           `yaml:"max_attempts" json:"max_attempts"`
	RetryDelay        time.Duration `yaml:"retry_delay" json:"retry_delay"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier" json:"backoff_multiplier"`
	MaxRetryDelay     time.Duration `yaml:"max_retry_delay" json:"max_retry_delay"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
	DownloadTimeout   time.Duration `yaml:"download_timeout" json:"download_timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	WaitForOperator   bool          `yaml:"wait_for_operator" json:"wait_for_operator"`
}

// CrawlConfig holds pagination configuration
type CrawlConfig struct {
	// EmptyPageConfirmations is how many consecutive empty fetches of the
	// same page end the crawl.
	EmptyPageConfirmations int  `yaml:"empty_page_confirmations" json:"empty_page_confirmations"`
	ExportPartialOnAbort   bool `yaml:"export_partial_on_abort" json:"export_partial_on_abort"`
}

// OutputConfig holds output layout configuration
type OutputConfig struct {
	Directory      string `yaml:"directory" json:"directory"`
	FilesDirectory string `yaml:"files_directory" json:"files_directory"`
	MetadataFile   string `yaml:"metadata_file" json:"metadata_file"`
	WriteJSON      bool   `yaml:"write_json" json:"write_json"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with the defaults the listing server was tuned for
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			BaseURL:   "http://www.supcourt.gov.sk",
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
		},
		Fetch: FetchConfig{
			MaxAttempts:       5,
			RetryDelay:        10 * time.Second,
			BackoffMultiplier: 1, // constant delay
			MaxRetryDelay:     5 * time.Minute,
			Timeout:           60 * time.Second,
			DownloadTimeout:   0, // files may be large
			RequestsPerMinute: 0, // unlimited
		},
		Crawl: CrawlConfig{
			EmptyPageConfirmations: 1,
			ExportPartialOnAbort:   false,
		},
		Output: OutputConfig{
			FilesDirectory: "files",
			MetadataFile:   "metadata.csv",
		},
		Notifications: NotificationConfig{
			Enabled: false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if v := os.Getenv(EnvPrefix + "BASE_URL"); v != "" {
		c.Site.BaseURL = v
	}
	if v := os.Getenv(EnvPrefix + "USER_AGENT"); v != "" {
		c.Site.UserAgent = v
	}

	if v := os.Getenv(EnvPrefix + "MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMAX_ATTEMPTS: %w", EnvPrefix, err))
		} else {
			c.Fetch.MaxAttempts = n
		}
	}
	if v := os.Getenv(EnvPrefix + "RETRY_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sRETRY_DELAY: %w", EnvPrefix, err))
		} else {
			c.Fetch.RetryDelay = d
		}
	}
	if v := os.Getenv(EnvPrefix + "TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err))
		} else {
			c.Fetch.Timeout = d
		}
	}
	if v := os.Getenv(EnvPrefix + "DOWNLOAD_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sDOWNLOAD_TIMEOUT: %w", EnvPrefix, err))
		} else {
			c.Fetch.DownloadTimeout = d
		}
	}
	if v := os.Getenv(EnvPrefix + "REQUESTS_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sREQUESTS_PER_MINUTE: %w", EnvPrefix, err))
		} else {
			c.Fetch.RequestsPerMinute = n
		}
	}
	if v := os.Getenv(EnvPrefix + "WAIT"); v != "" {
		c.Fetch.WaitForOperator = strings.ToLower(v) == "true"
	}

	if v := os.Getenv(EnvPrefix + "OUTPUT_DIR"); v != "" {
		c.Output.Directory = v
	}
	if v := os.Getenv(EnvPrefix + "WRITE_JSON"); v != "" {
		c.Output.WriteJSON = strings.ToLower(v) == "true"
	}

	if v := os.Getenv(EnvPrefix + "NOTIFICATIONS_ENABLED"); v != "" {
		c.Notifications.Enabled = strings.ToLower(v) == "true"
	}

	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FILE"); v != "" {
		c.Logging.File = v
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		"rozhodnutia.yaml",
		"rozhodnutia.yml",
		filepath.Join(home, ".config", "rozhodnutia", "config.yaml"),
		filepath.Join(home, ".config", "rozhodnutia", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Site.BaseURL == "" {
		errs = append(errs, errors.New("site base URL is required"))
	} else if !strings.HasPrefix(c.Site.BaseURL, "http://") && !strings.HasPrefix(c.Site.BaseURL, "https://") {
		errs = append(errs, errors.New("site base URL must be http or https"))
	}

	if c.Fetch.MaxAttempts <= 0 {
		errs = append(errs, errors.New("max attempts must be positive"))
	}
	if c.Fetch.RetryDelay < 0 {
		errs = append(errs, errors.New("retry delay cannot be negative"))
	}
	if c.Fetch.BackoffMultiplier < 0 {
		errs = append(errs, errors.New("backoff multiplier cannot be negative"))
	}
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, errors.New("fetch timeout must be positive"))
	}
	if c.Fetch.DownloadTimeout < 0 {
		errs = append(errs, errors.New("download timeout cannot be negative"))
	}
	if c.Fetch.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}

	if c.Crawl.EmptyPageConfirmations <= 0 {
		errs = append(errs, errors.New("empty page confirmations must be positive"))
	}

	if c.Output.FilesDirectory == "" || strings.ContainsAny(c.Output.FilesDirectory, `/\`) {
		errs = append(errs, errors.New("files directory must be a single path segment"))
	}
	if c.Output.MetadataFile == "" || strings.ContainsAny(c.Output.MetadataFile, `/\`) {
		errs = append(errs, errors.New("metadata file must be a single path segment"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if output, ok := flags["output"].(string); ok && output != "" {
		c.Output.Directory = output
	}
	if wait, ok := flags["wait"].(bool); ok && wait {
		c.Fetch.WaitForOperator = true
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if baseURL, ok := flags["base-url"].(string); ok && baseURL != "" {
		c.Site.BaseURL = baseURL
	}
	if writeJSON, ok := flags["json"].(bool); ok && writeJSON {
		c.Output.WriteJSON = true
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".rozhodnutia.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
