package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/ecmproute/internal/config"
)

const yamlDoc = `
version: v1
topology: topo.ntf
multicast: /etc/ecmproute/groups.txt
output_dir: out
ipv4: true
engine:
  workers: 4
  ecmp_policy: all
`

const tomlDoc = `
version = "v1"
topology = "topo.ntf"

[engine]
workers = 2
max_nodes = 50
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoader_YAML(t *testing.T) {
	dir := t.TempDir()
	l, err := config.NewLoader(writeFile(t, dir, "ecmproute.yaml", yamlDoc))
	require.NoError(t, err)

	cfg := l.Config()
	assert.Equal(t, "v1", cfg.Version)
	assert.Equal(t, filepath.Join(dir, "topo.ntf"), cfg.Topology)
	assert.Equal(t, "/etc/ecmproute/groups.txt", cfg.Multicast)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.OutputDir)
	assert.True(t, cfg.IPv4)
	assert.Equal(t, 4, cfg.Engine.Workers)
	assert.Equal(t, "all", cfg.Engine.ECMPPolicy)
	// defaults
	assert.Equal(t, 1024, cfg.Engine.QueueDepth)
	assert.Equal(t, 30000, cfg.Engine.TimeoutMs)
	assert.NoError(t, config.Validate(cfg))
}

func TestLoader_TOML(t *testing.T) {
	dir := t.TempDir()
	l, err := config.NewLoader(writeFile(t, dir, "ecmproute.toml", tomlDoc))
	require.NoError(t, err)

	cfg := l.Config()
	assert.Equal(t, 2, cfg.Engine.Workers)
	assert.Equal(t, 50, cfg.Engine.MaxNodes)
	assert.Equal(t, "lowest", cfg.Engine.ECMPPolicy)
	assert.False(t, cfg.IPv4)
	assert.NoError(t, config.Validate(cfg))
}

func TestLoader_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := config.NewLoader(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = config.NewLoader(writeFile(t, dir, "bad.yaml", "engine: [1, 2"))
	assert.Error(t, err)

	_, err = config.NewLoader(writeFile(t, dir, "bad.toml", "engine = = 1"))
	assert.Error(t, err)
}

func TestLoader_ReloadCallsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ecmproute.yaml", yamlDoc)
	l, err := config.NewLoader(path)
	require.NoError(t, err)

	var got []*config.Config
	l.OnChange(func(c *config.Config) { got = append(got, c) })

	writeFile(t, dir, "ecmproute.yaml", strings.Replace(yamlDoc, "workers: 4", "workers: 6", 1))
	cfg, err := l.Reload()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Same(t, cfg, got[0])
	assert.Equal(t, 6, l.Config().Engine.Workers)

	// A broken file keeps the previous config.
	writeFile(t, dir, "ecmproute.yaml", "version: [")
	_, err = l.Reload()
	assert.Error(t, err)
	assert.Equal(t, 6, l.Config().Engine.Workers)
	assert.Len(t, got, 1)
}

func TestWatch_StopWaitsForInFlightReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ecmproute.yaml", yamlDoc)
	l, err := config.NewLoader(path)
	require.NoError(t, err)

	started := make(chan struct{}, 16)
	var finished atomic.Bool
	l.OnChange(func(*config.Config) {
		started <- struct{}{}
		time.Sleep(100 * time.Millisecond)
		finished.Store(true)
	})
	stop, err := l.Watch()
	require.NoError(t, err)

	writeFile(t, dir, "ecmproute.yaml", strings.Replace(yamlDoc, "workers: 4", "workers: 5", 1))
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after the config was written")
	}
	stop()
	assert.True(t, finished.Load(), "stop returned before the callback finished")
	stop()
}

func TestValidate(t *testing.T) {
	cfg := &config.Config{Engine: config.EngineConf{Workers: -1, QueueDepth: 0, ECMPPolicy: "random"}}
	err := config.Validate(cfg)
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"version is required", "topology is required", "engine.workers", "engine.queue_depth", "engine.ecmp_policy"} {
		assert.Contains(t, msg, want)
	}

	ok, err := config.Decode([]byte("version: v1\ntopology: t.ntf\n"), ".yml")
	require.NoError(t, err)
	assert.NoError(t, config.Validate(ok))
}
