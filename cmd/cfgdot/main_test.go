package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoFuncs = `{"name":"f","blocks":[{"id":"e","name":"entry","insts":[{"op":"ret","term":true}]}]}
{"name":"g","blocks":[{"id":"e","name":"entry","insts":[{"op":"ret","term":true}]}]}
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fns.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(twoFuncs), 0644))
	return path
}

func TestIRCommand(t *testing.T) {
	in := writeInput(t)
	dir := t.TempDir()
	_, err := execute(t, "ir", in, "-o", dir, "-s", "cfg")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "cfg_f.dot"))
	require.NoError(t, err)
	want := `digraph "CFG for 'f' function " {
    "entry" [shape=record,
        label="{BB0\l\l
                ret\l\l}"];
}
`
	assert.Equal(t, want, string(data))
	assert.FileExists(t, filepath.Join(dir, "cfg_g.dot"))
}

func TestIRCommandFilterAndOverview(t *testing.T) {
	in := writeInput(t)
	dir := t.TempDir()
	_, err := execute(t, "ir", in, "--out", dir, "--func", "^g$", "--overview")
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(dir, "f.dot"))
	assert.FileExists(t, filepath.Join(dir, "g.dot"))
	assert.FileExists(t, filepath.Join(dir, "g.overview.dot"))
}

func TestIRCommandConfigFile(t *testing.T) {
	in := writeInput(t)
	dir := t.TempDir()
	conf := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(conf, []byte("prefix: fromfile\nout_dir: "+dir+"\n"), 0644))

	_, err := execute(t, "ir", in, "--config", conf, "-s", "flag")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "flag_f.dot"), "flags override the file")
}

func TestIRCommandOpenFailure(t *testing.T) {
	in := writeInput(t)
	missing := filepath.Join(t.TempDir(), "missing")
	out, err := execute(t, "ir", in, "-o", missing)
	require.ErrorIs(t, err, errFailed)
	assert.Contains(t, out, "cannot open output file")
}

func TestIRCommandBadRegexp(t *testing.T) {
	in := writeInput(t)
	_, err := execute(t, "ir", in, "--func", "(")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--func")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "cfgdot ")
}

func TestARM64BinCommand(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "leaf.bin")
	require.NoError(t, os.WriteFile(bin, []byte{0xc0, 0x03, 0x5f, 0xd6}, 0644)) // RET
	dir := t.TempDir()
	_, err := execute(t, "arm64", "--bin", bin, "--base", "0x1000", "-o", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "leaf.dot"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"loc_1000" [shape=record,`)
}

func TestARM64CommandNeedsInput(t *testing.T) {
	_, err := execute(t, "arm64")
	assert.ErrorContains(t, err, "--elf or --bin")
}
