package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config contains all of the configuration options available to the bluefin
// command line tools.
type Config struct {
	Logging struct {
		// Full path to file to which logs will be written. Blank will write to stdout.
		LogFilePath string `mapstructure:"log_file_path"`
		// Minimum level of a log required to be written. Options: debug, info, warn, error
		LogLevel string `mapstructure:"log_level"`
		// Include the caller's file and line number in each log line.
		IncludeCaller bool `mapstructure:"include_caller"`
	} `mapstructure:"logging"`

	Database struct {
		// Storage engine for the vault. Options: sqlite, postgres.
		Engine string `mapstructure:"engine"`
		// File name of the sqlite database, relative to the config directory.
		File string `mapstructure:"file"`
		// Hostname of the Postgres instance (postgres engine only).
		Host string `mapstructure:"host"`
		// Port on which the Postgres instance is accepting connections.
		Port int `mapstructure:"port"`
		// Name of the database for bluefin.
		Name string `mapstructure:"name"`
		// Username and password of a user with full RW privileges to ${name}.
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		// Set to verify-full if the Postgres instance supports SSL.
		SSLMode string `mapstructure:"sslmode"`
		// Enable database-level query logging.
		LoggingEnabled bool `mapstructure:"logging_enabled"`
	} `mapstructure:"database"`

	Vault struct {
		// Label of the key checksum record the vault commands unlock against.
		KeyLabel string `mapstructure:"key_label"`
		// How long decrypted secrets stay in the in-memory cache, in seconds.
		CacheTTLSeconds int `mapstructure:"cache_ttl_seconds"`
	} `mapstructure:"vault"`

	configDir string
}

const envVarPrefix = "BLUEFIN"

// LoadConfig initializes Viper with the contents of the config file under configPath.
func LoadConfig(configPath string) *Config {
	viper.AddConfigPath(configPath)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix(envVarPrefix)
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			fmt.Printf("error reading config file: %v\n", err)
			os.Exit(1)
		}
		// Defaults and environment variables are enough to run without a file.
	}

	// This allows us to set nested yaml config options through environment
	// variables. For example, database.engine can be set using: BLUEFIN_DATABASE_ENGINE
	for _, k := range viper.AllKeys() {
		envVar := strings.ReplaceAll(strings.ToUpper(k), ".", "_")
		if err := viper.BindEnv(k, envVarPrefix+"_"+envVar); err != nil {
			fmt.Printf("error binding %s to %s\n", k, envVarPrefix+"_"+envVar)
			os.Exit(1)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		fmt.Printf("error unmarshaling config object: %v\n", err)
		os.Exit(1)
	}
	config.configDir = configPath
	return config
}

func setDefaults() {
	viper.SetDefault("logging.log_level", "info")
	viper.SetDefault("database.engine", "sqlite")
	viper.SetDefault("database.file", "bluefin.db")
	viper.SetDefault("vault.key_label", "default")
	viper.SetDefault("vault.cache_ttl_seconds", 300)
}

// QualifiedPath returns filename joined to the config directory, so that
// relative paths in the config file resolve next to it.
func (c *Config) QualifiedPath(filename string) string {
	if c.configDir == "" {
		return filename
	}
	return filepath.Join(c.configDir, filename)
}

const databaseURITemplate = "host=%s port=%d dbname=%s user=%s password=%s sslmode=%s"

// DatabaseURL returns a Postgres connection string generated from the
// provided config values.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		databaseURITemplate,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.Username,
		c.Database.Password,
		c.Database.SSLMode,
	)
}
