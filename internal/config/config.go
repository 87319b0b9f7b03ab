package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAPIURL     = "http://127.0.0.1:7433"
	DefaultDBFileName = ".casevault.db"
	DefaultLogLevel   = "info"

	DefaultStorageRegion = "us-east-1"
	DefaultStorageBucket = "casevault"

	DefaultShortIDMinLength = 8

	configFileName           = ".casevault.toml"
	configDirEnvKey          = "CASEVAULT_CONFIG_DIR"
	trustProjectConfigEnvKey = "CASEVAULT_TRUST_PROJECT_CONFIG"
)

// StorageConfig defines the object store connection.
type StorageConfig struct {
	Endpoint  string `toml:"endpoint"`
	Region    string `toml:"region"`
	Bucket    string `toml:"bucket"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
}

// ShortIDConfig defines the public identifier encoding. An empty alphabet
// selects the built-in default.
type ShortIDConfig struct {
	Alphabet  string `toml:"alphabet"`
	MinLength int    `toml:"min_length"`
}

// Config defines runtime configuration for casevault.
type Config struct {
	APIURL                   string        `toml:"api_url"`
	DBPath                   string        `toml:"db_path"`
	LogLevel                 string        `toml:"log_level"`
	Storage                  StorageConfig `toml:"storage"`
	ShortID                  ShortIDConfig `toml:"shortid"`
	TrustedProjectConfigPath string        `toml:"-"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		APIURL:   DefaultAPIURL,
		DBPath:   "",
		LogLevel: DefaultLogLevel,
		Storage: StorageConfig{
			Region: DefaultStorageRegion,
			Bucket: DefaultStorageBucket,
			UseSSL: true,
		},
		ShortID: ShortIDConfig{
			MinLength: DefaultShortIDMinLength,
		},
	}
}

func loadFile(path string, cfg *Config) error {
	_, err := loadFileIfExists(path, cfg)
	return err
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, configFileName), true
}

func trustProjectConfig() bool {
	raw := strings.TrimSpace(os.Getenv(trustProjectConfigEnvKey))
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}

var allowedKeys = []string{
	"api_url",
	"db_path",
	"log_level",
	"storage.endpoint",
	"storage.region",
	"storage.bucket",
	"storage.access_key",
	"storage.secret_key",
	"storage.use_ssl",
	"shortid.alphabet",
	"shortid.min_length",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "api_url":
		return c.APIURL, nil
	case "db_path":
		return c.DBPath, nil
	case "log_level":
		return c.LogLevel, nil
	case "storage.endpoint":
		return c.Storage.Endpoint, nil
	case "storage.region":
		return c.Storage.Region, nil
	case "storage.bucket":
		return c.Storage.Bucket, nil
	case "storage.access_key":
		return c.Storage.AccessKey, nil
	case "storage.secret_key":
		return c.Storage.SecretKey, nil
	case "storage.use_ssl":
		return strconv.FormatBool(c.Storage.UseSSL), nil
	case "shortid.alphabet":
		return c.ShortID.Alphabet, nil
	case "shortid.min_length":
		return strconv.Itoa(c.ShortID.MinLength), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// ProjectPath returns the path to the project config file.
func ProjectPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, configFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads config from trusted files and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	if overridePath, ok := overrideConfigPath(); ok {
		if err := loadFile(overridePath, &cfg); err != nil {
			return nil, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			if err := loadFile(filepath.Join(home, configFileName), &cfg); err != nil {
				return nil, err
			}
		}

		if trustProjectConfig() {
			if cwd, err := os.Getwd(); err == nil {
				projectPath := filepath.Join(cwd, configFileName)
				info, statErr := os.Stat(projectPath)
				switch {
				case statErr == nil && !info.IsDir():
					if err := loadFile(projectPath, &cfg); err != nil {
						return nil, err
					}
					cfg.TrustedProjectConfigPath = projectPath
				case statErr != nil && !os.IsNotExist(statErr):
					return nil, statErr
				}
			}
		}
	}

	if cfg.DBPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfg.DBPath = filepath.Join(cwd, DefaultDBFileName)
		}
	}

	if apiURL := os.Getenv("CASEVAULT_API_URL"); apiURL != "" {
		cfg.APIURL = apiURL
	}
	if dbPath := os.Getenv("CASEVAULT_DB"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if endpoint := os.Getenv("CASEVAULT_STORAGE_ENDPOINT"); endpoint != "" {
		cfg.Storage.Endpoint = endpoint
	}
	if region := os.Getenv("CASEVAULT_STORAGE_REGION"); region != "" {
		cfg.Storage.Region = region
	}
	if bucket := os.Getenv("CASEVAULT_STORAGE_BUCKET"); bucket != "" {
		cfg.Storage.Bucket = bucket
	}
	if accessKey := os.Getenv("CASEVAULT_STORAGE_ACCESS_KEY"); accessKey != "" {
		cfg.Storage.AccessKey = accessKey
	}
	if secretKey := os.Getenv("CASEVAULT_STORAGE_SECRET_KEY"); secretKey != "" {
		cfg.Storage.SecretKey = secretKey
	}
	if raw := strings.TrimSpace(os.Getenv("CASEVAULT_STORAGE_USE_SSL")); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			cfg.Storage.UseSSL = parsed
		}
	}

	cfg.normalizeDefaults()

	return &cfg, nil
}

// Validate reports missing settings the server cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage.Endpoint) == "" {
		return fmt.Errorf("storage.endpoint is required")
	}
	if strings.TrimSpace(c.Storage.Bucket) == "" {
		return fmt.Errorf("storage.bucket is required")
	}
	if strings.TrimSpace(c.Storage.AccessKey) == "" {
		return fmt.Errorf("storage.access_key is required")
	}
	if strings.TrimSpace(c.Storage.SecretKey) == "" {
		return fmt.Errorf("storage.secret_key is required")
	}
	return nil
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "shortid.min_length":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "storage.use_ssl":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", key)
		}
		return parsed, nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}

func (c *Config) normalizeDefaults() {
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = DefaultLogLevel
	}
	if strings.TrimSpace(c.Storage.Region) == "" {
		c.Storage.Region = DefaultStorageRegion
	}
	if c.ShortID.MinLength <= 0 {
		c.ShortID.MinLength = DefaultShortIDMinLength
	}
}
