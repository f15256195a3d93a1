package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	HTTP struct {
		Port string `yaml:"port" env:"SAMPLE_PORT"`
	} `yaml:"http"`
	Backend struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"backend"`
	Origins []string `yaml:"origins" env:"SAMPLE_ORIGINS"`
	Debug   bool     `yaml:"debug" env:"-"`
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"SAMPLE_PORT":     "9090",
		"BACKEND_URL":     "http://school.local",
		"BACKEND_TIMEOUT": "3s",
		"SAMPLE_ORIGINS":  "a.example, b.example,",
		"DEBUG":           "true",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	var cfg sample
	require.NoError(t, applyEnv(reflect.ValueOf(&cfg).Elem(), "", lookup))

	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, "http://school.local", cfg.Backend.URL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, []string{"a.example", "b.example"}, cfg.Origins)
	assert.False(t, cfg.Debug)
}

func TestApplyEnvBadValue(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == "BACKEND_TIMEOUT" {
			return "soon", true
		}
		return "", false
	}
	var cfg sample
	err := applyEnv(reflect.ValueOf(&cfg).Elem(), "", lookup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BACKEND_TIMEOUT")
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  port: \"7000\"\nbackend:\n  url: http://file.local\n"), 0o600))
	t.Setenv(PathEnv, path)
	t.Setenv("SAMPLE_PORT", "7001")

	var cfg sample
	require.NoError(t, LoadConfig(&cfg))
	assert.Equal(t, "7001", cfg.HTTP.Port)
	assert.Equal(t, "http://file.local", cfg.Backend.URL)
}

func TestLoadConfigRejectsNonPointer(t *testing.T) {
	assert.Error(t, LoadConfig(nil))
	assert.Error(t, LoadConfig(sample{}))
}
