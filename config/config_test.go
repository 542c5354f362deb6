package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	cfg := New()

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultReportDir, cfg.ReportDir)
	assert.Equal(t, []string{"json", "xlsx"}, cfg.Formats)
	assert.Equal(t, "ReqRes API", cfg.Application)
	assert.Equal(t, "QA", cfg.Environment)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.NoError(t, cfg.Validate())

	cfg.Formats[0] = "html"
	assert.Equal(t, FormatJSON, DefaultFormats[0], "defaults must not be shared")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvBaseURL:        "http://localhost:8111",
		EnvFormats:        "JSON, ",
		EnvStepTimeout:    "5s",
		EnvConcurrency:    "4",
		EnvEnvironment:    "",
		EnvAuthToken:      "abc",
		EnvRequestTimeout: "250ms",
	}
	cfg := New()
	require.NoError(t, cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))

	assert.Equal(t, "http://localhost:8111", cfg.BaseURL)
	assert.Equal(t, []string{"json"}, cfg.Formats)
	assert.Equal(t, time.Second*5, cfg.StepTimeout)
	assert.Equal(t, time.Millisecond*250, cfg.RequestTimeout)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, DefaultEnvironment, cfg.Environment, "empty values keep the default")
	assert.Equal(t, "abc", cfg.AuthToken)
}

func TestApplyEnvRejectsBadValues(t *testing.T) {
	for _, name := range []string{EnvStepTimeout, EnvRequestTimeout, EnvConcurrency} {
		t.Run(name, func(t *testing.T) {
			err := New().applyEnv(func(k string) (string, bool) {
				if k == name {
					return "soon", true
				}
				return "", false
			})
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CRUD_SHEET=Users\nCRUD_APPLICATION=Users API\n"), 0o600))
	t.Setenv(EnvApplication, "From Env")
	t.Cleanup(func() { _ = os.Unsetenv(EnvSheet) })

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Users", cfg.Sheet)
	assert.Equal(t, "From Env", cfg.Application, "process environment wins over the file")
}

func TestLoadIgnoresMissingEnvFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad url", func(c *Config) { c.BaseURL = "localhost:8111" }},
		{"bad format", func(c *Config) { c.Formats = []string{"html"} }},
		{"bad concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"bad timeout", func(c *Config) { c.StepTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEnvironmentLabels(t *testing.T) {
	labels := New().EnvironmentLabels()
	assert.Equal(t, "ReqRes API", labels["Application"])
	assert.Equal(t, "QA", labels["Environment"])
	assert.NotEmpty(t, labels["Go Version"])
	assert.NotEmpty(t, labels["OS"])
}
