package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/pidsim/internal/config"
)

func simCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	preset, configFile, logLevel, logFile = "", "", "", ""
	cmd := &cobra.Command{Use: "test"}
	addSimFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg, err := resolveConfig(simCmd(t))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestResolveConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pidsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("controller:\n  kp: 20\n  ki: 2\nenvironment:\n  bias: -50\n"), 0644))
	t.Setenv("PIDSIM_KI", "3")

	cmd := simCmd(t, "--kd", "150", "--seed", "9")
	configFile = path
	defer func() { configFile = "" }()

	cfg, err := resolveConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 20.0, cfg.Controller.Kp)
	assert.Equal(t, 3.0, cfg.Controller.Ki)
	assert.Equal(t, 150.0, cfg.Controller.Kd)
	assert.Equal(t, -50.0, cfg.Environment.Bias)
	assert.Equal(t, int64(9), cfg.Sim.Seed)
}

func TestResolveConfigPreset(t *testing.T) {
	cmd := simCmd(t, "--kp", "4")
	preset = "p-only"
	defer func() { preset = "" }()

	cfg, err := resolveConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 4.0, cfg.Controller.Kp)
	assert.Zero(t, cfg.Controller.Ki)
	assert.Zero(t, cfg.Controller.Kd)
}

func TestResolveConfigRejects(t *testing.T) {
	_, err := resolveConfig(simCmd(t, "--period", "0"))
	assert.Error(t, err)

	cmd := simCmd(t)
	preset = "hurricane"
	defer func() { preset = "" }()
	_, err = resolveConfig(cmd)
	assert.ErrorContains(t, err, "unknown preset")
}

func TestParseRange(t *testing.T) {
	vals, err := parseRange("0:10:3")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 5, 10}, vals)

	for _, bad := range []string{"", "1:2", "a:2:3", "1:b:3", "1:2:c", "1:2:0"} {
		_, err := parseRange(bad)
		assert.Error(t, err, bad)
	}
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"live", "gui", "run", "list", "plot", "export-json", "export-csv", "export-png", "analyze", "phase", "tune", "compare", "presets"} {
		c, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
	}
}
