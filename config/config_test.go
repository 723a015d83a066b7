package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{"RPC_URL", "REGISTRY", "OWNER", "PRIVATEKEY", "LISTEN_ADDR", "DB_PATH", "LOG_LEVEL", "SERVER_URL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestNewConfig(t *testing.T) {
	t.Run("with environment variables", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RPC_URL", "http://test.com")
		t.Setenv("REGISTRY", "0x00000000000000000000000000000000000000f1")
		t.Setenv("OWNER", "0x00000000000000000000000000000000000000a1")
		t.Setenv("PRIVATEKEY", testKey)
		t.Setenv("LISTEN_ADDR", ":9090")
		t.Setenv("DB_PATH", "/tmp/oracle.db")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := NewConfig()
		require.NoError(t, err)

		assert.Equal(t, "http://test.com", cfg.RPCURL)
		assert.Equal(t, common.HexToAddress("0xf1"), cfg.RegistryAddress())
		assert.Equal(t, common.HexToAddress("0xa1"), cfg.OwnerAddress())
		assert.Equal(t, ":9090", cfg.ListenAddr)
		assert.Equal(t, "/tmp/oracle.db", cfg.DBPath)
		assert.Equal(t, zapcore.DebugLevel, cfg.Level())
		assert.NoError(t, cfg.ValidateServer())
		assert.NoError(t, cfg.ValidateAdmin())

		key, err := cfg.SigningKey()
		require.NoError(t, err)
		assert.NotNil(t, key)
	})

	t.Run("defaults", func(t *testing.T) {
		clearEnv(t)

		cfg, err := NewConfig()
		require.NoError(t, err)

		assert.Equal(t, common.HexToAddress("0x47Fb2585D2C56Fe188D0E6ec628a38b74fCeeeDf"), cfg.RegistryAddress())
		assert.Equal(t, ":8080", cfg.ListenAddr)
		assert.Equal(t, "feedoracle.db", cfg.DBPath)
		assert.Equal(t, zapcore.InfoLevel, cfg.Level())
		assert.Equal(t, "http://localhost:8080", cfg.ServerURL)

		assert.EqualError(t, cfg.ValidateServer(), "missing required configuration: RPC_URL, OWNER")
		assert.Error(t, cfg.ValidateAdmin())
	})

	t.Run("options override environment", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RPC_URL", "http://env.example")

		cfg, err := NewConfig(WithRPCURL("http://flag.example"), WithServerURL("http://oracle:8080"))
		require.NoError(t, err)
		assert.Equal(t, "http://flag.example", cfg.RPCURL)
		assert.Equal(t, "http://oracle:8080", cfg.ServerURL)
	})
}

func TestNewConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "rpc url", key: "RPC_URL", val: "not a url"},
		{name: "zero registry", key: "REGISTRY", val: "0x0000000000000000000000000000000000000000"},
		{name: "registry", key: "REGISTRY", val: "0x123"},
		{name: "owner", key: "OWNER", val: "owner"},
		{name: "private key", key: "PRIVATEKEY", val: "test-key"},
		{name: "log level", key: "LOG_LEVEL", val: "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := NewConfig()
			assert.Error(t, err)
		})
	}
}

func TestWithEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("LISTEN_ADDR", ":7070")

	path := filepath.Join(t.TempDir(), ".env")
	content := "OWNER=0x00000000000000000000000000000000000000a1\nLISTEN_ADDR=:6060\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() { os.Unsetenv("OWNER") })

	cfg, err := NewConfig(WithEnvFile(path))
	require.NoError(t, err)

	assert.Equal(t, common.HexToAddress("0xa1"), cfg.OwnerAddress())
	// environment wins over the file
	assert.Equal(t, ":7070", cfg.ListenAddr)

	_, err = NewConfig(WithEnvFile(filepath.Join(t.TempDir(), "missing.env")))
	assert.Error(t, err)
}
