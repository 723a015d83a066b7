// Package config provides configuration management for the feedoracle service
package config

import (
	"crypto/ecdsa"
	"fmt"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
)

// Config holds the application configuration
type Config struct {
	RPCURL     string `envconfig:"RPC_URL"`                                                       // Ethereum JSON-RPC endpoint
	Registry   string `envconfig:"REGISTRY" default:"0x47Fb2585D2C56Fe188D0E6ec628a38b74fCeeeDf"` // Chainlink FeedRegistry address
	Owner      string `envconfig:"OWNER"`                                                         // Address allowed to administer the oracle
	PrivateKey string `envconfig:"PRIVATEKEY"`                                                    // Hex key used by the admin client to sign requests
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`                                   // HTTP listen address
	DBPath     string `envconfig:"DB_PATH" default:"feedoracle.db"`                               // LevelDB directory for configuration tables
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`                                      // debug, info, warn or error
	ServerURL  string `envconfig:"SERVER_URL" default:"http://localhost:8080"`                    // Oracle server the admin client talks to
}

// Option is a function that modifies Config
type Option func(*Config) error

// WithEnvFile loads variables from a .env file before the environment is
// processed. Variables already set in the environment win.
func WithEnvFile(path string) Option {
	return func(c *Config) error {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}

		if err := envconfig.Process("", c); err != nil {
			return fmt.Errorf("failed to process config: %w", err)
		}

		return nil
	}
}

// WithRPCURL overrides the RPC endpoint
func WithRPCURL(rpcURL string) Option {
	return func(c *Config) error {
		c.RPCURL = rpcURL
		return nil
	}
}

// WithServerURL overrides the admin client's server URL
func WithServerURL(serverURL string) Option {
	return func(c *Config) error {
		c.ServerURL = serverURL
		return nil
	}
}

// validate checks the format of every value that is set
func (c *Config) validate() error {
	for name, urlStr := range map[string]string{
		"RPC":    c.RPCURL,
		"server": c.ServerURL,
	} {
		if urlStr == "" {
			continue
		}
		if _, err := url.ParseRequestURI(urlStr); err != nil {
			return fmt.Errorf("invalid %s URL: %s", name, urlStr)
		}
	}

	if !common.IsHexAddress(c.Registry) || common.HexToAddress(c.Registry) == (common.Address{}) {
		return fmt.Errorf("invalid registry address: %s", c.Registry)
	}

	if c.Owner != "" && !common.IsHexAddress(c.Owner) {
		return fmt.Errorf("invalid owner address: %s", c.Owner)
	}

	// private key is hex without 0x prefix
	if c.PrivateKey != "" && (len(c.PrivateKey) != 64 || !isHex(c.PrivateKey)) {
		return fmt.Errorf("invalid private key format")
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}

	return nil
}

// isHex checks if a string is valid hexadecimal
func isHex(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// NewConfig creates a new validated Config instance
func NewConfig(opts ...Option) (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ValidateServer checks the values the oracle server cannot run without
func (c *Config) ValidateServer() error {
	var missing []string
	if c.RPCURL == "" {
		missing = append(missing, "RPC_URL")
	}
	if c.Owner == "" {
		missing = append(missing, "OWNER")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}

// ValidateAdmin checks the values the admin client cannot run without
func (c *Config) ValidateAdmin() error {
	if c.PrivateKey == "" {
		return fmt.Errorf("missing required configuration: PRIVATEKEY")
	}

	return nil
}

// RegistryAddress returns the configured registry address
func (c *Config) RegistryAddress() common.Address {
	return common.HexToAddress(c.Registry)
}

// OwnerAddress returns the configured owner address
func (c *Config) OwnerAddress() common.Address {
	return common.HexToAddress(c.Owner)
}

// SigningKey parses the configured private key
func (c *Config) SigningKey() (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(c.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return key, nil
}

// Level returns the configured log level
func (c *Config) Level() zapcore.Level {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}

	return level
}
