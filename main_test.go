package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rgsearch/internal/config"
)

type testEnv struct {
	dir        string
	configPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	return &testEnv{dir: dir, configPath: filepath.Join(dir, "config.toml")}
}

func (e *testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	app := newApp()
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut

	full := append([]string{"rgsearch", "--config", e.configPath, "--log-file", filepath.Join(e.dir, "test.log")}, args...)
	err := app.Run(full)
	return out.String(), errOut.String(), err
}

func (e *testEnv) config(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.NewConfigServiceWithPath(e.configPath).Load()
	require.NoError(t, err)
	return cfg
}

func TestIgnoreCommands(t *testing.T) {
	env := newTestEnv(t)
	target := filepath.Join(env.dir, "build")
	require.NoError(t, os.Mkdir(target, 0o755))

	_, _, err := env.run(t, "ignore", "add", "--regex", `_gen\.go$`)
	require.NoError(t, err)
	_, _, err = env.run(t, "ignore", "add", "--path", target)
	require.NoError(t, err)
	_, _, err = env.run(t, "ignore", "add", "--glob", "*.class,*.jar")
	require.NoError(t, err)

	assert.Equal(t, []string{`x: _gen\.go$`, "f: " + target, "s: *.class,*.jar"}, env.config(t).IgnoreList)

	require.NoError(t, os.Remove(target))
	out, _, err := env.run(t, "ignore", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "f: "+target+"\t(inactive: path missing)")
	assert.Contains(t, out, `x: _gen\.go$`)

	_, _, err = env.run(t, "ignore", "remove", "s: *.class,*.jar")
	require.NoError(t, err)
	assert.Len(t, env.config(t).IgnoreList, 2)

	_, _, err = env.run(t, "ignore", "remove", "s: nope")
	assert.Error(t, err)
}

func TestIgnoreAddRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run(t, "ignore", "add")
	assert.Error(t, err, "no rule given")

	_, _, err = env.run(t, "ignore", "add", "--glob", "*.go", "--regex", "x")
	assert.Error(t, err, "two rules given")

	_, _, err = env.run(t, "ignore", "add", "--regex", "(unclosed")
	assert.Error(t, err)

	_, _, err = env.run(t, "ignore", "add", "--path", filepath.Join(env.dir, "missing"))
	assert.Error(t, err)
}

func TestScopeCommands(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run(t, "scope", "save", "web", "/src/web", "/src/shared")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"web": {"/src/web", "/src/shared"}}, env.config(t).Scopes)

	out, _, err := env.run(t, "scope", "list")
	require.NoError(t, err)
	assert.Equal(t, "@web\t/src/web /src/shared\n", out)

	_, _, err = env.run(t, "scope", "delete", "web")
	require.NoError(t, err)
	assert.Empty(t, env.config(t).Scopes)

	_, _, err = env.run(t, "scope", "delete", "web")
	assert.Error(t, err)
}

func TestSearchRequiresTerm(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run(t)
	require.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))

	_, _, err = env.run(t, "--files")
	require.Error(t, err, "--files needs --name")
}

func TestSearchMissingBinaryFails(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run(t, "--binary", filepath.Join(env.dir, "no-rg"), "TODO", env.dir)
	require.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))
}

func TestParseSortMode(t *testing.T) {
	for _, s := range []string{"", "arrival", "PATH", "matches"} {
		_, err := parseSortMode(s)
		assert.NoError(t, err, s)
	}
	_, err := parseSortMode("size")
	assert.Error(t, err)
}
