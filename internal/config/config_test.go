package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Load ищет listmatch.yaml в cwd, поэтому каждый тест уходит во временный каталог.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8082, cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.Equal(t, 256, cfg.MaxUploadMB)
	assert.Equal(t, runtime.NumCPU(), cfg.MatchWorkers)
	assert.Equal(t, "data/runs.db", cfg.RunStore)
	assert.Equal(t, "127.0.0.1:8082", cfg.Addr())
	assert.Equal(t, int64(256<<20), cfg.MaxUploadBytes())
}

func TestLoadEnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOW_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("MATCH_WORKERS", "3")
	t.Setenv("RUN_STORE", "/tmp/x.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowOrigins)
	assert.Equal(t, 3, cfg.MatchWorkers)
	assert.Equal(t, "/tmp/x.db", cfg.RunStore)
}

func TestLoadFile(t *testing.T) {
	dir := chdirTemp(t)
	yaml := "port: 7001\nlog_level: debug\nmax_upload_mb: 8\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "listmatch.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8, cfg.MaxUploadMB)
}

func TestLoadRejectsBadPort(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PORT", "70000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}
