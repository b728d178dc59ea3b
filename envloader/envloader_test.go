package envloader

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_StringFields(t *testing.T) {
	type Config struct {
		Table    string `env:"TS_TABLE" envDefault:"contacts"`
		Region   string `env:"TS_REGION" envDefault:"us-east-1"`
		LogLevel string `env:"TS_LOG_LEVEL" envDefault:"info"`
	}

	// Defaults first
	config := &Config{}
	err := Load(config)
	require.NoError(t, err)

	assert.Equal(t, "contacts", config.Table)
	assert.Equal(t, "us-east-1", config.Region)
	assert.Equal(t, "info", config.LogLevel)

	// Environment wins over defaults
	os.Setenv("TS_TABLE", "accounts")
	os.Setenv("TS_LOG_LEVEL", "debug")

	config2 := &Config{}
	err = Load(config2)
	require.NoError(t, err)

	assert.Equal(t, "accounts", config2.Table)
	assert.Equal(t, "debug", config2.LogLevel)

	os.Unsetenv("TS_TABLE")
	os.Unsetenv("TS_LOG_LEVEL")
}

func TestLoad_NumericAndBoolFields(t *testing.T) {
	type Config struct {
		Port    int     `env:"TS_PORT" envDefault:"8080"`
		MaxConn int32   `env:"TS_MAX_CONNECTIONS" envDefault:"100"`
		Ratio   float64 `env:"TS_RATIO" envDefault:"1.5"`
		Debug   bool    `env:"TS_DEBUG" envDefault:"true"`
	}

	config := &Config{}
	err := Load(config)
	require.NoError(t, err)

	assert.Equal(t, 8080, config.Port)
	assert.Equal(t, int32(100), config.MaxConn)
	assert.Equal(t, 1.5, config.Ratio)
	assert.True(t, config.Debug)

	os.Setenv("TS_PORT", "9090")
	os.Setenv("TS_DEBUG", "false")

	config2 := &Config{}
	err = Load(config2)
	require.NoError(t, err)

	assert.Equal(t, 9090, config2.Port)
	assert.False(t, config2.Debug)

	os.Unsetenv("TS_PORT")
	os.Unsetenv("TS_DEBUG")
}

func TestLoad_DurationFields(t *testing.T) {
	type Config struct {
		Timeout   time.Duration `env:"TS_TIMEOUT" envDefault:"30s"`
		KeepAlive time.Duration `env:"TS_KEEP_ALIVE" envDefault:"90s"`
	}

	config := &Config{}
	err := Load(config)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, config.Timeout)
	assert.Equal(t, 90*time.Second, config.KeepAlive)

	os.Setenv("TS_TIMEOUT", "2m")

	config2 := &Config{}
	err = Load(config2)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, config2.Timeout)

	os.Unsetenv("TS_TIMEOUT")
}

func TestLoad_StringSliceFields(t *testing.T) {
	type Config struct {
		Hosts []string `env:"TS_HOSTS" envDefault:"a.local,b.local"`
	}

	config := &Config{}
	err := Load(config)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.local", "b.local"}, config.Hosts)

	// Spaces around the separator are trimmed
	os.Setenv("TS_HOSTS", " x.local , y.local ")

	config2 := &Config{}
	err = Load(config2)
	require.NoError(t, err)
	assert.Equal(t, []string{"x.local", "y.local"}, config2.Hosts)

	os.Unsetenv("TS_HOSTS")
}

func TestLoad_WithoutEnvTag(t *testing.T) {
	type Config struct {
		Port string `env:"TS_PORT" envDefault:"8080"`
		Host string // no env tag, must be left alone
	}

	config := &Config{
		Host: "original",
	}
	err := Load(config)
	require.NoError(t, err)

	assert.Equal(t, "8080", config.Port)
	assert.Equal(t, "original", config.Host)
}

func TestLoad_InvalidConfig(t *testing.T) {
	// Not a pointer
	var config string
	err := Load(config)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "pointer to struct")

	// Pointer, but not to a struct
	var config2 int
	err = Load(&config2)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "pointer to struct")
}

func TestLoad_ConversionErrors(t *testing.T) {
	type Config struct {
		Port int `env:"TS_PORT" envDefault:"not-a-number"`
	}

	config := &Config{}
	err := Load(config)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "error setting field Port")
}

func TestMustLoad(t *testing.T) {
	type Config struct {
		Port string `env:"TS_PORT" envDefault:"8080"`
	}

	config := &Config{}
	assert.NotPanics(t, func() {
		MustLoad(config)
	})
	assert.Equal(t, "8080", config.Port)

	assert.Panics(t, func() {
		MustLoad("not-a-pointer")
	})
}

func TestLoad_NestedStruct(t *testing.T) {
	type PoolConfig struct {
		MaxIdle int           `env:"TS_POOL_MAX_IDLE" envDefault:"64"`
		Linger  time.Duration `env:"TS_POOL_LINGER" envDefault:"15s"`
	}

	type AppConfig struct {
		Pool  PoolConfig
		Table string `env:"TS_TABLE" envDefault:"contacts"`
	}

	os.Setenv("TS_POOL_MAX_IDLE", "128")

	config := &AppConfig{}
	err := Load(config)
	require.NoError(t, err)

	assert.Equal(t, "contacts", config.Table)
	assert.Equal(t, 128, config.Pool.MaxIdle)
	assert.Equal(t, 15*time.Second, config.Pool.Linger)

	os.Unsetenv("TS_POOL_MAX_IDLE")
}
