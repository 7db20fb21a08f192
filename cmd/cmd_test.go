package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the command tree with an isolated home directory
func execute(t *testing.T, args ...string) (string, error) {
	t.Setenv("HOME", t.TempDir())

	root := newRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, dir string) string {
	fn := filepath.Join(dir, "small.yaml")
	body := `sampling:
  draws: 400
  chains: 2
  tune: 300
  seed: 11
report:
  plot: false
`
	require.NoError(t, os.WriteFile(fn, []byte(body), 0644))
	return fn
}

func TestConfigCommand(t *testing.T) {
	assert := assert.New(t)

	out, err := execute(t, "config")
	assert.NoError(err)
	assert.Contains(out, "draws: 2000")
	assert.Contains(out, "chains: 4")
	assert.Contains(out, "hdi_prob: 0.95")
}

func TestConfigCommandBadFile(t *testing.T) {
	_, err := execute(t, "config", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSimulateStdout(t *testing.T) {
	assert := assert.New(t)

	out, err := execute(t, "simulate", "--expected",
		"--competence", "0.9,0.9,0.6,0.6,0.55",
		"--consensus", "1,0,1,0")
	assert.NoError(err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(lines, 6)
	assert.Equal("Informant,Q0,Q1,Q2,Q3", lines[0])
	assert.Equal("I0,1,0,1,0", lines[1])
}

func TestSimulateInvalid(t *testing.T) {
	_, err := execute(t, "simulate", "--competence", "1.3", "--consensus", "1")
	assert.Error(t, err)

	_, err = execute(t, "simulate", "--competence", "0.9")
	assert.Error(t, err)
}

func TestSimulateThenRun(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	data := filepath.Join(dir, "data.csv")
	trace := filepath.Join(dir, "trace.csv")

	_, err := execute(t, "simulate", "--expected",
		"--competence", "0.9,0.9,0.6,0.6,0.55",
		"--consensus", "1,0,1,0",
		"--out", data)
	require.NoError(t, err)

	out, err := execute(t, "run", "--data", data,
		"--draws", "300", "--chains", "2", "--tune", "200",
		"--no-plot", "--trace", trace)
	require.NoError(t, err)

	assert.Contains(out, "Convergence diagnostics and posterior summaries")
	assert.Contains(out, "D[4]")
	assert.Contains(out, "Z[3]")
	assert.Contains(out, "Consensus matches the majority vote on")
	assert.NotContains(out, "Posterior distributions")

	body, err := os.ReadFile(trace)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	assert.Len(lines, 1+2*300)
	assert.True(strings.HasPrefix(lines[0], "chain,draw,D[0]"))
}

func TestRunErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := execute(t, "run")
	assert.Error(err)

	_, err = execute(t, "run", "--data", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("id,Q0\nA,2\n"), 0644))
	_, err = execute(t, "run", "--data", bad)
	assert.Error(err)

	good := filepath.Join(dir, "good.csv")
	require.NoError(t, os.WriteFile(good, []byte("id,Q0\nA,1\n"), 0644))
	_, err = execute(t, "run", "--data", good, "--draws", "0")
	assert.Error(err)
}

func TestSimulateFit(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	out, err := execute(t, "simulate", "--expected", "--fit",
		"--config", cfg,
		"--competence", "0.9,0.9,0.6,0.6,0.55",
		"--consensus", "1,0,1,0",
		"--out", filepath.Join(dir, "data.csv"))
	require.NoError(t, err)

	assert.Contains(out, "Recovery vs truth")
	assert.Contains(out, "items recovered")
	assert.Contains(out, "MeanAE:")
}
