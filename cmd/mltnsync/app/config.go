package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/lucab3/ml-tn-sync/pkg/errors"
)

// Configuration defaults. The commission rate matches the marketplace fee
// built into Mercado Libre listing prices.
const (
	DefaultTolerance      = 0.01
	DefaultAbsoluteFloor  = 0.01
	DefaultCommissionRate = 13.0
	DefaultRoundDigits    = 2
	DefaultPerPage        = 50
	DefaultWorkers        = 1
	DefaultRequestDelay   = 500 * time.Millisecond
)

// Config holds the application configuration loaded from config files,
// environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Mercado Libre credentials (source platform)
	MLClientID     string
	MLClientSecret string
	MLRefreshToken string
	MLUserID       string
	MLBaseURL      string

	// Tienda Nube credentials (target platform)
	TNAccessToken string
	TNStoreID     string
	TNBaseURL     string

	// Reconciliation settings
	Tolerance      float64
	AbsoluteFloor  float64
	CommissionRate float64
	RoundDigits    int
	PerPage        int
	Workers        int
	RequestDelay   time.Duration

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.mltnsync.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	// Load .env files before Viper env binding
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	bindCredentials()
	setDefaults()

	// Try to read config file if it exists
	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".mltnsync")
		}
	}

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()

	config := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no-color"),
		Format:  viper.GetString("format"),

		ConfigFile: viper.ConfigFileUsed(),

		MLClientID:     viper.GetString("ml_client_id"),
		MLClientSecret: viper.GetString("ml_client_secret"),
		MLRefreshToken: viper.GetString("ml_refresh_token"),
		MLUserID:       viper.GetString("ml_user_id"),
		MLBaseURL:      viper.GetString("ml_base_url"),

		TNAccessToken: viper.GetString("tn_access_token"),
		TNStoreID:     viper.GetString("tn_store_id"),
		TNBaseURL:     viper.GetString("tn_base_url"),

		Tolerance:      viper.GetFloat64("tolerance"),
		AbsoluteFloor:  viper.GetFloat64("absolute_floor"),
		CommissionRate: viper.GetFloat64("commission_rate"),
		RoundDigits:    viper.GetInt("round_digits"),
		PerPage:        viper.GetInt("per_page"),
		Workers:        viper.GetInt("workers"),
		RequestDelay:   viper.GetDuration("request_delay"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the reconciliation settings. Credentials are validated
// by the platform clients, which know which of them they need.
func (c *Config) Validate() error {
	if c.Tolerance < 0 || c.Tolerance >= 1 {
		return errors.NewConfigError("tolerance",
			fmt.Sprintf("must be in [0, 1), got %v", c.Tolerance), errors.ErrConfigInvalid)
	}
	if c.AbsoluteFloor < 0 {
		return errors.NewConfigError("absolute_floor",
			fmt.Sprintf("must be >= 0, got %v", c.AbsoluteFloor), errors.ErrConfigInvalid)
	}
	if c.CommissionRate < 0 || c.CommissionRate >= 100 {
		return errors.NewConfigError("commission_rate",
			fmt.Sprintf("must be in [0, 100), got %v", c.CommissionRate), errors.ErrConfigInvalid)
	}
	if c.PerPage < 1 {
		return errors.NewConfigError("per_page",
			fmt.Sprintf("must be >= 1, got %d", c.PerPage), errors.ErrConfigInvalid)
	}
	if c.Workers < 1 {
		return errors.NewConfigError("workers",
			fmt.Sprintf("must be >= 1, got %d", c.Workers), errors.ErrConfigInvalid)
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags so flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// setDefaults registers defaults for the reconciliation settings.
func setDefaults() {
	viper.SetDefault("tolerance", DefaultTolerance)
	viper.SetDefault("absolute_floor", DefaultAbsoluteFloor)
	viper.SetDefault("commission_rate", DefaultCommissionRate)
	viper.SetDefault("round_digits", DefaultRoundDigits)
	viper.SetDefault("per_page", DefaultPerPage)
	viper.SetDefault("workers", DefaultWorkers)
	viper.SetDefault("request_delay", DefaultRequestDelay)
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	envFiles := []string{
		".env",
		".env.local",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// bindCredentials explicitly binds the platform credential environment
// variables to Viper.
func bindCredentials() {
	credentials := []string{
		"ML_CLIENT_ID",
		"ML_CLIENT_SECRET",
		"ML_REFRESH_TOKEN",
		"ML_USER_ID",
		"ML_BASE_URL",
		"TN_ACCESS_TOKEN",
		"TN_STORE_ID",
		"TN_BASE_URL",
	}

	for _, key := range credentials {
		if err := viper.BindEnv(key); err != nil {
			// Not critical, warn and continue
			fmt.Fprintf(os.Stderr, "Warning: failed to bind environment variable %s: %v\n", key, err)
		}
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
