package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
)

const sampleCSV = `time,consumption,pv_production,wind_production,spot_market_price,global_rad:W,wind_speed_10m:ms
2023-01-01 00:00:00,1,0,0,10,0,4
2023-01-01 01:00:00,3,0,0,100,0,5
2023-01-01 02:00:00,1,0.5,0,20,120,6
`

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, Execute(), out.String())
	return out.String()
}

func writeFixtures(t *testing.T) (cfgFile, csvFile, outDir string) {
	t.Helper()
	dir := t.TempDir()
	csvFile = filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(csvFile, []byte(sampleCSV), 0o600))
	outDir = filepath.Join(dir, "results")
	cfgFile = filepath.Join(dir, "config.yaml")
	conf := "log:\n  level: error\ntrace:\n  type: jsonl\n  conf:\n    path: " + filepath.Join(dir, "runs.jsonl") + "\n"
	require.NoError(t, os.WriteFile(cfgFile, []byte(conf), 0o600))
	return cfgFile, csvFile, outDir
}

func TestSimulateAndTrace(t *testing.T) {
	cfgFile, csvFile, outDir := writeFixtures(t)

	out := execute(t, "simulate", "-c", cfgFile, "-d", csvFile, "-o", outDir)
	assert.Contains(t, out, "(standalone), 3 steps")
	assert.Contains(t, out, "final soc")
	for _, name := range []string{"standalone_dispatch.csv", "standalone_dispatch.json", "standalone_charts.html"} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}

	out = execute(t, "market", "-c", cfgFile, "-d", csvFile, "-o", outDir)
	assert.Contains(t, out, "high price steps")
	assert.FileExists(t, filepath.Join(outDir, "market_dispatch.csv"))

	out = execute(t, "trace", "ls", "-c", cfgFile, "--variant", "market")
	assert.Contains(t, out, "VARIANT")
	assert.Contains(t, out, "market")
	assert.NotContains(t, out, "standalone")
}

func TestRecoveryCommand(t *testing.T) {
	cfgFile, csvFile, outDir := writeFixtures(t)

	out := execute(t, "recovery", "-c", cfgFile, "-d", csvFile, "-o", outDir)
	assert.Contains(t, out, "adaptive")
	assert.Contains(t, out, "rule-based")
	for _, name := range []string{"recovery_adaptive.tex", "recovery_rule_based.tex", "recovery_charts.html", "disturbance_charts.html"} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}
	tex, err := os.ReadFile(filepath.Join(outDir, "recovery_adaptive.tex"))
	require.NoError(t, err)
	assert.Contains(t, string(tex), `fuel\_cell`)
}

func TestDisturbedWindowUsesTrailingSteps(t *testing.T) {
	steps := make([]model.TimeStep, 30)
	for i := range steps {
		steps[i] = model.TimeStep{Index: i, Irradiance: 100, WindSpeed: 10}
	}
	window, disturbed, err := disturbedWindow(steps)
	require.NoError(t, err)
	require.Len(t, window, disturbanceWindow)
	assert.Equal(t, 6, window[0].Index)

	assert.Equal(t, len(steps)-12, disturbed[12].Index)
	assert.InDelta(t, 30, disturbed[12].Irradiance, 1e-9)
	assert.Equal(t, len(steps)-6, disturbed[18].Index)
	assert.InDelta(t, 4, disturbed[18].WindSpeed, 1e-9)
	assert.InDelta(t, 100, steps[len(steps)-12].Irradiance, 1e-9, "input must not be modified")

	short, _, err := disturbedWindow(steps[:5])
	require.NoError(t, err)
	assert.Len(t, short, 5)
}

func TestSimulateWithoutDataset(t *testing.T) {
	cfgFile, _, outDir := writeFixtures(t)
	dataPath = ""
	rootCmd.SetArgs([]string{"simulate", "-c", cfgFile, "-o", outDir})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	err := Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no dataset")
}
