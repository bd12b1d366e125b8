package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	return p
}

func clearEnv(t *testing.T) {
	t.Helper()

	for _, k := range []string{"API_URL", "TIMEOUT", "DEBOUNCE", "TOAST_TTL", "TOAST_CAP",
		"SEARCH_RATE", "SEARCH_BURST", "USE_KEYRING", "LOG_LEVEL", "LOG_FORMAT", "LOG_MAX"} {
		// Setenv registers the restore; the variable must then be truly
		// absent for godotenv to set it.
		t.Setenv("BIDMATCH_"+k, "")
		require.NoError(t, os.Unsetenv("BIDMATCH_"+k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("BIDMATCH_HOME", dir)

	cfg, err := Load(LoadOptions{Path: "", EnvFile: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, Default().API, cfg.API)
	assert.Equal(t, 300*time.Millisecond, cfg.UI.DebounceDelay)
	assert.Equal(t, 4*time.Second, cfg.UI.ToastTTL)
	assert.Equal(t, 5, cfg.UI.ToastCap)
	assert.Empty(t, cfg.Path)
}

func TestLoad_Layers(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	path := writeFile(t, dir, "config.ini", `
[api]
base_url = https://file.example.com/api
timeout  = 10s

[ui]
debounce_delay = 500ms
toast_cap      = 3
`)

	envFile := writeFile(t, dir, "test.env", "BIDMATCH_TOAST_CAP=2\n")

	t.Setenv("BIDMATCH_API_URL", "https://env.example.com/api")

	cfg, err := Load(LoadOptions{Path: path, EnvFile: envFile})
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "https://env.example.com/api", cfg.API.BaseURL, "env beats file")
	assert.Equal(t, 10*time.Second, cfg.API.Timeout, "file beats default")
	assert.Equal(t, 500*time.Millisecond, cfg.UI.DebounceDelay)
	assert.Equal(t, 2, cfg.UI.ToastCap, ".env beats file")
	assert.Equal(t, 4*time.Second, cfg.UI.ToastTTL, "default kept when no layer sets it")
	assert.Equal(t, "env.example.com", cfg.Host())
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(LoadOptions{Path: filepath.Join(t.TempDir(), "nope.ini")})
	assert.Error(t, err)
}

func TestLoad_InvalidEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("BIDMATCH_HOME", t.TempDir())
	t.Setenv("BIDMATCH_DEBOUNCE", "soon")

	_, err := Load(LoadOptions{EnvFile: filepath.Join(t.TempDir(), "none.env")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BIDMATCH_DEBOUNCE")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "ftp url", mutate: func(c *Config) { c.API.BaseURL = "ftp://x" }, wantErr: true},
		{name: "empty url", mutate: func(c *Config) { c.API.BaseURL = "" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.API.Timeout = 0 }, wantErr: true},
		{name: "zero debounce allowed", mutate: func(c *Config) { c.UI.DebounceDelay = 0 }},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: true},
		{name: "bad format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)

			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_WriteRoundTrip(t *testing.T) {
	clearEnv(t)

	want := Default()
	want.API.BaseURL = "https://api.example.com"
	want.UI.ToastTTL = 6 * time.Second
	want.Auth.UseKeyring = false

	path := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, want.Write(path))

	got, err := Load(LoadOptions{Path: path, EnvFile: filepath.Join(t.TempDir(), "none.env")})
	require.NoError(t, err)

	assert.Equal(t, want.API, got.API)
	assert.Equal(t, want.UI, got.UI)
	assert.Equal(t, want.Auth, got.Auth)
}
