package ignore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGlob(t *testing.T, pattern string) Rule {
	t.Helper()
	r, err := Glob(pattern)
	require.NoError(t, err)
	return r
}

func mustRegex(t *testing.T, pattern string) Rule {
	t.Helper()
	r, err := Regex(pattern)
	require.NoError(t, err)
	return r
}

func TestEvaluatorGlobAndDirectory(t *testing.T) {
	e := NewEvaluator(mustGlob(t, "*.class"), DirectoryPrefix("/build"))

	assert.True(t, e.IsIgnored("/build/x.class"))
	assert.True(t, e.IsIgnored("/src/x.class"))
	assert.False(t, e.IsIgnored("/src/x.java"))
}

func TestEvaluatorOrderDoesNotMatter(t *testing.T) {
	rules := []Rule{mustGlob(t, "*.class"), DirectoryPrefix("/build"), mustRegex(t, `gen/`)}
	reversed := []Rule{rules[2], rules[1], rules[0]}

	paths := []string{"/build/a.go", "/src/a.class", "/src/gen/a.go", "/src/a.go", "/buildx/a.go"}
	forward := NewEvaluator(rules...)
	backward := NewEvaluator(reversed...)
	for _, p := range paths {
		assert.Equal(t, forward.IsIgnored(p), backward.IsIgnored(p), p)
	}
}

func TestGlobMatchesBaseNameOnly(t *testing.T) {
	r := mustGlob(t, "build*")

	assert.True(t, r.Matches("/src/build.gradle"))
	assert.False(t, r.Matches("/build/main.go"), "directory components are not matched")
}

func TestGlobCommaSeparatedAlternatives(t *testing.T) {
	r := mustGlob(t, "*.class, *.jar")

	assert.True(t, r.Matches("/a/b.class"))
	assert.True(t, r.Matches("/a/b.jar"))
	assert.False(t, r.Matches("/a/b.java"))
}

func TestGlobBraceAlternation(t *testing.T) {
	r := mustGlob(t, "*.{class,jar}")

	assert.Equal(t, "*.{class,jar}", r.Pattern)
	assert.True(t, r.Matches("/a/b.class"))
	assert.True(t, r.Matches("/a/b.jar"))
	assert.False(t, r.Matches("/a/b.java"))

	mixed := mustGlob(t, "*.{class,jar}, *.orig")
	assert.True(t, mixed.Matches("/a/b.jar"))
	assert.True(t, mixed.Matches("/a/b.orig"))

	rule, err := ParseEntry("s: *.{class,jar}", nil)
	require.NoError(t, err)
	assert.True(t, rule.Matches("/a/b.class"))
}

func TestGlobRejectsInvalidPattern(t *testing.T) {
	_, err := Glob("[")
	assert.Error(t, err)

	_, err = Glob(" , ")
	assert.Error(t, err)
}

func TestRegexFindsAnywhereInPath(t *testing.T) {
	r := mustRegex(t, `node_modules`)

	assert.True(t, r.Matches("/proj/node_modules/lib/index.js"))
	assert.False(t, r.Matches("/proj/src/index.js"))

	anchored := mustRegex(t, `\.min\.js$`)
	assert.True(t, anchored.Matches("/proj/app.min.js"))
	assert.False(t, anchored.Matches("/proj/app.min.js.map"))
}

func TestRegexInvalid(t *testing.T) {
	_, err := Regex("(")
	assert.Error(t, err)
}

func TestDirectoryPrefix(t *testing.T) {
	r := DirectoryPrefix("/proj/build/")

	assert.True(t, r.Matches("/proj/build"))
	assert.True(t, r.Matches("/proj/build/classes/A.class"))
	assert.False(t, r.Matches("/proj/buildSrc/A.kt"), "sibling with a common prefix is not nested")
	assert.False(t, r.Matches("/proj"))
}

func TestNilEvaluatorIgnoresNothing(t *testing.T) {
	var e *Evaluator

	assert.False(t, e.IsIgnored("/anything"))
	assert.Equal(t, 0, e.Len())
}
