package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables required by the authorization flow.
const (
	EnvAppKey    = "SCHWAB_APP_KEY"
	EnvAppSecret = "SCHWAB_APP_SECRET"
)

// Error reports missing or invalid configuration.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

func errorf(format string, args ...any) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// Config holds the credentials and per-account settings for one installation.
type Config struct {
	AppKey    string `yaml:"-"`
	AppSecret string `yaml:"-"`

	Accounts map[Account]AccountConfig `yaml:"accounts"`
}

// AccountConfig maps an account selector to a brokerage account identifier
// and an optional target allocation.
type AccountConfig struct {
	Number string `yaml:"number"`
	// Targets maps a symbol to its desired fraction of the account value,
	// e.g. 0.8 for 80%. Fractions must sum to at most 1; any remainder is
	// implicitly cash.
	Targets map[string]float64 `yaml:"targets,omitempty"`
}

// SecureDir returns the directory holding the .env file, TLS certificates
// and per-profile token files, creating it if needed.
func SecureDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	dir := filepath.Join(home, ".config", "schwab-oauth")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create secure dir: %w", err)
	}
	return dir, nil
}

// AccountsFile returns the default path of the accounts file inside dir.
func AccountsFile(dir string) string {
	return filepath.Join(dir, "accounts.yaml")
}

// Load reads credentials from the environment (after loading .env from dir)
// and the accounts file from path. A missing accounts file is not an error;
// account numbers can come entirely from the environment. Missing
// credentials are.
func Load(dir, path string) (*Config, error) {
	// Missing .env is fine, the variables may be exported directly.
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	cfg := &Config{Accounts: map[Account]AccountConfig{}}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read accounts file: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse accounts file: %w", err)
		}
	}
	if cfg.Accounts == nil {
		cfg.Accounts = map[Account]AccountConfig{}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFromEnv() {
	c.AppKey = os.Getenv(EnvAppKey)
	c.AppSecret = os.Getenv(EnvAppSecret)

	for acct, envVar := range envNumberVars {
		if v := os.Getenv(envVar); v != "" {
			ac := c.Accounts[acct]
			ac.Number = v
			c.Accounts[acct] = ac
		}
	}
}

// Validate checks credentials and target allocations.
func (c *Config) Validate() error {
	if c.AppKey == "" || c.AppSecret == "" {
		return errorf("missing credentials: set %s and %s (in the environment or the secure dir .env)",
			EnvAppKey, EnvAppSecret)
	}
	for acct, ac := range c.Accounts {
		if _, err := ParseAccount(string(acct)); err != nil {
			return errorf("accounts file: %v", err)
		}
		var sum float64
		for symbol, frac := range ac.Targets {
			if frac <= 0 || frac > 1 {
				return errorf("account %s: target for %s must be a fraction in (0, 1], got %v", acct, symbol, frac)
			}
			sum += frac
		}
		if sum > 1.0000001 {
			return errorf("account %s: targets sum to %.4f, must not exceed 1", acct, sum)
		}
	}
	return nil
}

// Number returns the brokerage account identifier for the selector.
func (c *Config) Number(acct Account) (string, error) {
	ac, ok := c.Accounts[acct]
	if !ok || ac.Number == "" {
		return "", errorf("no account number configured for %s (set %s or add it to the accounts file)",
			acct, envNumberVars[acct])
	}
	return ac.Number, nil
}

// Targets returns the target allocation for the selector. A missing or empty
// allocation is a configuration error; status reporting requires one.
func (c *Config) Targets(acct Account) (map[string]float64, error) {
	ac, ok := c.Accounts[acct]
	if !ok || len(ac.Targets) == 0 {
		return nil, errorf("no target allocation configured for account %s", acct)
	}
	return ac.Targets, nil
}

// SaveTo writes the accounts portion of the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal accounts: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write accounts file: %w", err)
	}
	return nil
}

// Default returns an accounts skeleton with a sample target allocation.
func Default() *Config {
	return &Config{
		Accounts: map[Account]AccountConfig{
			Investing: {
				Number: "",
				Targets: map[string]float64{
					"VTI": 0.8,
					"BND": 0.2,
				},
			},
		},
	}
}
