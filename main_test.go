package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.abhg.dev/notahint/internal/iotest"
)

const _samplePage = `<!DOCTYPE html>
<html><head><title>Tactics</title></head><body>
<p class="notation"><span class="repeat-wrapper"><span class="repeat">ident</span><sup>+</sup><sub>,</sub></span></p>
<p class="notation"><span class="repeat-wrapper"><span class="repeat">term</span><sup>?</sup></span></p>
</body></html>
`

func TestMainCmd_help(t *testing.T) {
	t.Parallel()

	exitCode := (&mainCmd{
		Stdout: iotest.Writer(t),
		Stderr: iotest.Writer(t),
	}).Run([]string{"-h"})
	assert.Zero(t, exitCode, "-h should have zero status code")
}

func TestMainCmd_version(t *testing.T) {
	t.Parallel()

	var buff bytes.Buffer
	exitCode := (&mainCmd{
		Stdout: &buff,
		Stderr: iotest.Writer(t),
	}).Run([]string{"-version"})
	assert.Zero(t, exitCode, "-version should have zero status code")

	assert.Contains(t, buff.String(), "notahint")
	assert.Contains(t, buff.String(), _version)
}

func TestMainCmd_unknownFlag(t *testing.T) {
	t.Parallel()

	exitCode := (&mainCmd{
		Stdout: iotest.Writer(t),
		Stderr: iotest.Writer(t),
	}).Run([]string{"--this-flag-does-not-exist"})
	assert.NotZero(t, exitCode, "unknown flag should have non-zero status code")
}

func TestMainCmd_missingPath(t *testing.T) {
	t.Parallel()

	var buff bytes.Buffer
	exitCode := (&mainCmd{
		Stdout: iotest.Writer(t),
		Stderr: &buff,
	}).Run([]string{filepath.Join(t.TempDir(), "does-not-exist")})
	assert.NotZero(t, exitCode)
	assert.Contains(t, buff.String(), "notahint:")
}

func TestMainCmd_stdin(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	exitCode := (&mainCmd{
		Stdin:  strings.NewReader(_samplePage),
		Stdout: &stdout,
		Stderr: iotest.Writer(t),
	}).Run([]string{"-style", "title", "-"})
	require.Zero(t, exitCode)

	out := stdout.String()
	assert.Contains(t, out, `<sup title="This block may be repeated.">+</sup>`)
	assert.Contains(t, out, `<sup title="This block is optional.">?</sup>`)
	assert.Contains(t, out,
		`<sub title="Use &#34;,&#34; to separate repetitions of this block.">,</sub>`)
}

func TestMainCmd_inPlace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "refman", "_static"), 0o755))
	page := filepath.Join(dir, "refman", "tactics.html")
	static := filepath.Join(dir, "refman", "_static", "snippet.html")
	require.NoError(t, os.WriteFile(page, []byte(_samplePage), 0o644))
	require.NoError(t, os.WriteFile(static, []byte(_samplePage), 0o644))

	exitCode := (&mainCmd{
		Stdout: iotest.Writer(t),
		Stderr: iotest.Writer(t),
	}).Run([]string{"-debug", "-exclude", "refman/_static/*", dir})
	require.Zero(t, exitCode)

	got, err := os.ReadFile(page)
	require.NoError(t, err)
	assert.Contains(t, string(got),
		`<sup data-hint="This block may be repeated." class="hint--top hint--rounded">+</sup>`)

	untouched, err := os.ReadFile(static)
	require.NoError(t, err)
	assert.Equal(t, _samplePage, string(untouched))
}

func TestMainCmd_outDir(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	out := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "a"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a", "index.html"), []byte(_samplePage), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("hello"), 0o644))

	exitCode := (&mainCmd{
		Stdout: iotest.Writer(t),
		Stderr: iotest.Writer(t),
	}).Run([]string{"-out", out, "-transform", "fullwidth", src})
	require.Zero(t, exitCode)

	got, err := os.ReadFile(filepath.Join(out, "a", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(got), `data-separator=","`)
	assert.Contains(t, string(got), ">，</sub>")

	// The source is untouched and non-HTML files are not copied.
	orig, err := os.ReadFile(filepath.Join(src, "a", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, _samplePage, string(orig))
	assert.NoFileExists(t, filepath.Join(out, "notes.txt"))
}

func TestMainCmd_config(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(page, []byte(_samplePage), 0o644))

	config := filepath.Join(dir, "notahint.conf")
	require.NoError(t, os.WriteFile(config, []byte("# comment\nstyle title\n"), 0o644))

	exitCode := (&mainCmd{
		Stdout: iotest.Writer(t),
		Stderr: iotest.Writer(t),
	}).Run([]string{"-config", config, page})
	require.Zero(t, exitCode)

	got, err := os.ReadFile(page)
	require.NoError(t, err)
	assert.Contains(t, string(got), `<sup title="This block is optional.">?</sup>`)
	assert.NotContains(t, string(got), "data-hint")
}

func TestMainCmd_unrecognizedSummary(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	exitCode := (&mainCmd{
		Stdin:  strings.NewReader(`<span class="repeat-wrapper"><sup>!</sup></span>`),
		Stdout: iotest.Writer(t),
		Stderr: &stderr,
	}).Run([]string{"-"})
	require.Zero(t, exitCode)
	assert.Contains(t, stderr.String(), "1 unrecognized")
}

func TestMainCmd_outDirCollision(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	for _, name := range []string{"a", "b"} {
		require.NoError(t, os.MkdirAll(filepath.Join(src, name), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(src, name, "index.html"), []byte(_samplePage), 0o644))
	}

	var stderr bytes.Buffer
	exitCode := (&mainCmd{
		Stdout: iotest.Writer(t),
		Stderr: &stderr,
	}).Run([]string{"-out", out, filepath.Join(src, "a"), filepath.Join(src, "b")})
	assert.NotZero(t, exitCode)
	assert.Contains(t, stderr.String(), "would both be written to")
	assert.NoFileExists(t, filepath.Join(out, "index.html"))
}
