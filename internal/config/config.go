package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SDU-Vikings-Racing-Team/EL-KiCad-Library/internal/branding"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Recognized configuration keys.
const (
	KeyLibSubmodule = "lib_submodule"
	KeyIgnoreFile   = "ignore_file"
	KeyModelVar     = "model_var"
	KeyLogLevel     = "log.level"
	KeyLogFormat    = "log.format"
)

// Defaults applied when neither the config file, the environment nor a flag
// provides a value.
const (
	DefaultLibSubmodule = "libs/EL-KiCad-Library"
	DefaultIgnoreFile   = ".kicadprojignore"
	DefaultModelVar     = "${VIKINGS}"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "console"
)

// Dir returns the path to the config directory (~/.kilib/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.kilib/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from .env, the config file and the environment.
// Precedence (highest first): environment, config file, defaults.
func Load() {
	// A missing .env is normal outside of a checkout.
	_ = godotenv.Load(".env")

	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault(KeyLibSubmodule, DefaultLibSubmodule)
	viper.SetDefault(KeyIgnoreFile, DefaultIgnoreFile)
	viper.SetDefault(KeyModelVar, DefaultModelVar)
	viper.SetDefault(KeyLogLevel, DefaultLogLevel)
	viper.SetDefault(KeyLogFormat, DefaultLogFormat)

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
