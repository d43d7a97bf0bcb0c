package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wbrc/fpshamir"
	"github.com/wbrc/fpshamir/internal/logging"
	"github.com/wbrc/fpshamir/wrap"
)

func TestMain(m *testing.M) {
	kdfParams = wrap.Params{Time: 1, Memory: 1024, Threads: 1}
	os.Exit(m.Run())
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := execute(cmd)
	return out.String(), err
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func writeLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
}

func TestLockUnlock(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.txt")
	sealed := filepath.Join(dir, "plain.seal")
	shares := filepath.Join(dir, "shares.txt")
	subset := filepath.Join(dir, "subset.txt")
	recovered := filepath.Join(dir, "recovered.txt")

	content := []byte("the quick brown fox jumps over the lazy dog\n")
	require.NoError(t, os.WriteFile(plain, content, 0o600))

	_, err := run(t, "", "lock", "-i", plain, "-o", sealed, "-s", shares, "-t", "2", "-n", "3")
	require.NoError(t, err)

	ct, err := os.ReadFile(sealed)
	require.NoError(t, err)
	assert.NotContains(t, string(ct), "quick brown fox")

	lines := readLines(t, shares)
	require.Len(t, lines, 3)
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, "{"), "plain records are JSON")
	}

	writeLines(t, subset, lines[2], lines[0])
	_, err = run(t, "", "unlock", "-i", sealed, "-o", recovered, "-s", subset)
	require.NoError(t, err)

	got, err := os.ReadFile(recovered)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestLockUnlock_stdio(t *testing.T) {
	dir := t.TempDir()
	shares := filepath.Join(dir, "shares.txt")

	sealed, err := run(t, "secret notes", "--field", "auto", "lock", "-s", shares, "-t", "3", "-n", "4", "-m", string(wrap.AES256GCM))
	require.NoError(t, err)

	sealedFile := filepath.Join(dir, "notes.seal")
	require.NoError(t, os.WriteFile(sealedFile, []byte(sealed), 0o600))

	out, err := run(t, "", "unlock", "-i", sealedFile, "-s", shares)
	require.NoError(t, err)
	assert.Equal(t, "secret notes", out)
}

func TestLockUnlock_passphrases(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "wallet.json")
	sealed := filepath.Join(dir, "wallet.seal")
	shares := filepath.Join(dir, "shares.txt")

	require.NoError(t, os.WriteFile(plain, []byte(`{"key":"xprv"}`), 0o600))

	_, err := run(t, "", "lock", "-i", plain, "-o", sealed, "-s", shares, "-t", "2", "-n", "3",
		"-p", "alice", "-p", "bob", "-p", "carol")
	require.NoError(t, err)

	lines := readLines(t, shares)
	require.Len(t, lines, 3)
	for _, l := range lines {
		assert.False(t, strings.HasPrefix(l, "{"), "wrapped records are opaque")
		assert.NotContains(t, l, "threshold")
	}

	// bob's record is skipped
	out, err := run(t, "", "unlock", "-i", sealed, "-s", shares, "-p", "carol", "-p", "alice")
	require.NoError(t, err)
	assert.Equal(t, `{"key":"xprv"}`, out)

	_, err = run(t, "", "unlock", "-i", sealed, "-s", shares, "-p", "carol")
	assert.ErrorIs(t, err, fpshamir.ErrInsufficientShares)

	_, err = run(t, "", "unlock", "-i", sealed, "-s", shares)
	assert.ErrorIs(t, err, fpshamir.ErrInsufficientShares)
}

func TestLock_errors(t *testing.T) {
	dir := t.TempDir()
	shares := filepath.Join(dir, "shares.txt")

	_, err := run(t, "data", "lock", "-s", shares, "-t", "2", "-n", "3", "-p", "alice")
	assert.ErrorContains(t, err, "need one per share")

	_, err = run(t, "data", "lock", "-s", shares, "-t", "4", "-n", "3")
	assert.ErrorIs(t, err, fpshamir.ErrInvalidParameters)

	_, err = run(t, "data", "lock", "-s", shares, "-t", "2", "-n", "3", "-m", "rot13")
	assert.ErrorIs(t, err, wrap.ErrUnknownMode)

	_, err = run(t, "data", "--field", "nope", "lock", "-s", shares, "-t", "2", "-n", "3")
	assert.ErrorIs(t, err, fpshamir.ErrInvalidField)

	_, err = run(t, "data", "--field", "legacy64", "lock", "-s", shares, "-t", "2", "-n", "3")
	assert.ErrorIs(t, err, fpshamir.ErrSecretExceedsFieldCapacity)

	_, err = run(t, "data", "lock", "-t", "2", "-n", "3")
	assert.ErrorContains(t, err, "shares")

	_, statErr := os.Stat(shares)
	assert.True(t, os.IsNotExist(statErr), "failed runs leave no shares file")
}

func TestSplitCombine(t *testing.T) {
	dir := t.TempDir()
	shares := filepath.Join(dir, "shares.txt")

	_, err := run(t, "00ff10\n", "--field", "auto", "split", "--hex", "-s", shares, "-t", "2", "-n", "2")
	require.NoError(t, err)
	assert.Contains(t, readLines(t, shares)[0], `"length":3`)

	out, err := run(t, "", "combine", "--hex", "-s", shares)
	require.NoError(t, err)
	assert.Equal(t, "00ff10\n", out)
}

func TestSplitCombine_passphrases(t *testing.T) {
	dir := t.TempDir()
	secret := filepath.Join(dir, "secret.bin")
	shares := filepath.Join(dir, "shares.txt")
	recovered := filepath.Join(dir, "recovered.bin")

	content := []byte{0, 0, 1, 2, 3}
	require.NoError(t, os.WriteFile(secret, content, 0o600))

	_, err := run(t, "", "--field", "mersenne127", "split", "-i", secret, "-s", shares, "-t", "2", "-n", "2",
		"-p", "one", "-p", "two", "-m", string(wrap.XChaCha20Poly1305))
	require.NoError(t, err)

	_, err = run(t, "", "combine", "-s", shares, "-o", recovered, "-p", "two", "-p", "one")
	require.NoError(t, err)

	got, err := os.ReadFile(recovered)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestCombine_errors(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	mixed := filepath.Join(dir, "mixed.txt")
	garbage := filepath.Join(dir, "garbage.txt")

	_, err := run(t, "same secret", "split", "-s", a, "-t", "2", "-n", "3")
	require.NoError(t, err)
	_, err = run(t, "same secret", "split", "-s", b, "-t", "2", "-n", "3")
	require.NoError(t, err)

	writeLines(t, mixed, readLines(t, a)[0], readLines(t, b)[1])
	_, err = run(t, "", "combine", "-s", mixed)
	assert.ErrorIs(t, err, fpshamir.ErrShareSetMismatch)

	var huge []string
	for _, l := range readLines(t, a) {
		huge = append(huge, strings.Replace(l, `"length":11`, `"length":4611686018427387904`, 1))
	}
	writeLines(t, mixed, huge...)
	_, err = run(t, "", "combine", "-s", mixed)
	assert.ErrorIs(t, err, fpshamir.ErrLengthMismatch)

	writeLines(t, garbage, "{not json")
	_, err = run(t, "", "combine", "-s", garbage)
	assert.ErrorContains(t, err, "line 1")

	writeLines(t, garbage, "!!!", "")
	_, err = run(t, "", "combine", "-s", garbage, "-p", "pw")
	assert.ErrorIs(t, err, wrap.ErrMalformed)

	_, err = run(t, "", "combine", "-s", filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExecute_logsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logging.Replace(zap.New(core))
	t.Cleanup(func() { logging.Replace(nil) })

	// flag errors fail before the logger is reconfigured
	_, err := run(t, "", "--no-such-flag")
	require.Error(t, err)

	entries := logs.FilterMessage("command failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Contains(t, entries[0].ContextMap()["error"], "no-such-flag")
}

func TestFields(t *testing.T) {
	out, err := run(t, "", "fields")
	require.NoError(t, err)

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "legacy64")
	assert.Contains(t, out, "mersenne521 (default)")
	assert.Contains(t, out, "mersenne19937")
}
