package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--identity-file", filepath.Join(t.TempDir(), "identity.json")}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func wordsDir(t *testing.T, answers, allowed string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, answersFile), []byte(answers), 0600))
	if allowed != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, allowedFile), []byte(allowed), 0600))
	}
	return dir
}

// decodeAll reads every JSON value written to stdout
func decodeAll(t *testing.T, s string) []map[string]any {
	t.Helper()
	var values []map[string]any
	dec := json.NewDecoder(strings.NewReader(s))
	for {
		var v map[string]any
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			return values
		}
		require.NoError(t, err, "stdout: %s", s)
		values = append(values, v)
	}
}

func TestEvaluateJSON(t *testing.T) {
	stdout, _, err := run(t, "", "evaluate", "crane", "TRACE", "-o", "json")
	require.NoError(t, err)

	values := decodeAll(t, stdout)
	require.Len(t, values, 1)
	assert.Equal(t, "CRANE", values[0]["guess"])
	assert.Equal(t, []any{"present", "correct", "correct", "absent", "correct"}, values[0]["result"])
	assert.Equal(t, false, values[0]["solved"])
}

func TestEvaluateText(t *testing.T) {
	stdout, _, err := run(t, "", "evaluate", "speed", "abide")
	require.NoError(t, err)
	assert.Equal(t, " S  P (E) E (D)\n", stdout)
}

func TestEvaluateLengthMismatch(t *testing.T) {
	_, _, err := run(t, "", "evaluate", "cranes", "trace")
	require.Error(t, err)
}

func TestWordsCheck(t *testing.T) {
	dir := wordsDir(t, "crane\nslate\n", "adieu\n")

	stdout, _, err := run(t, "", "--words", dir, "words", "check", "Adieu", "-o", "json")
	require.NoError(t, err)
	values := decodeAll(t, stdout)
	require.Len(t, values, 1)
	assert.Equal(t, "ADIEU", values[0]["word"])
	assert.Equal(t, true, values[0]["valid"])
	assert.Equal(t, false, values[0]["answer"])

	stdout, _, err = run(t, "", "--words", dir, "words", "check", "zzzzz")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ZZZZZ is not in the word list")

	stdout, _, err = run(t, "", "--words", dir, "words", "check", "crane")
	require.NoError(t, err)
	assert.Contains(t, stdout, "possible answer")
}

func TestWordsCheckWithEmbeddedLists(t *testing.T) {
	stdout, _, err := run(t, "", "words", "check", "crane", "-o", "json")
	require.NoError(t, err)
	values := decodeAll(t, stdout)
	require.Len(t, values, 1)
	assert.Equal(t, true, values[0]["valid"])
}

func TestInvalidOutputFormat(t *testing.T) {
	_, _, err := run(t, "", "evaluate", "crane", "trace", "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestSoloWin(t *testing.T) {
	dir := wordsDir(t, "crane\n", "slate\n")

	stdout, stderr, err := run(t, "zzzzz\n\nslate\ncrane\ntrace\n", "--words", dir, "solo", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Not in word list")

	values := decodeAll(t, stdout)
	require.Len(t, values, 1)
	assert.Equal(t, "CRANE", values[0]["target"])
	assert.Equal(t, true, values[0]["won"])
	assert.Len(t, values[0]["guesses"], 2)
}

func TestSoloText(t *testing.T) {
	dir := wordsDir(t, "crane\n", "slate\n")

	stdout, _, err := run(t, "slate\ncrane\n", "--words", dir, "solo")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Guess the 5 letter word. You have 6 tries.")
	assert.Contains(t, stdout, " S  L [A] T [E]\n")
	assert.Contains(t, stdout, "Solved in 2! The word was CRANE")
}

func TestSoloHardModeRejectsIgnoredHints(t *testing.T) {
	dir := wordsDir(t, "crane\n", "slate\nadieu\n")

	stdout, stderr, err := run(t, "slate\nadieu\n", "--words", dir, "solo", "--hard", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "3rd letter must be A")

	values := decodeAll(t, stdout)
	require.Len(t, values, 1)
	assert.Equal(t, false, values[0]["won"])
	assert.Len(t, values[0]["guesses"], 1)
}

func TestPartyCreateAndLeave(t *testing.T) {
	identityFile := filepath.Join(t.TempDir(), "identity.json")

	stdout, _, err := run(t, "status\nleave\n",
		"--identity-file", identityFile,
		"party", "create", "--name", "Ann", "--bots", "1", "-o", "json")
	require.NoError(t, err)

	var code, uid string
	var sawHost bool
	for _, v := range decodeAll(t, stdout) {
		if c, ok := v["code"].(string); ok && v["type"] == nil {
			code = c
		}
		if u, ok := v["uid"].(string); ok {
			uid = u
			sawHost = v["is_host"] == true
			assert.Equal(t, "lobby", v["phase"])
		}
	}
	assert.Len(t, code, 6)
	assert.NotEmpty(t, uid)
	assert.True(t, sawHost)

	data, err := os.ReadFile(identityFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), uid)
}

func TestPartyRequiresName(t *testing.T) {
	_, _, err := run(t, "", "party", "create")
	require.Error(t, err)
}

func TestPartyJoinUnknownCode(t *testing.T) {
	_, _, err := run(t, "", "party", "join", "ZZZZZZ", "--name", "Bo")
	require.Error(t, err)
}
