package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtures = `
timeout = "10s"

[[fixture]]
name = "greeting"
command = ["/bin/sh", "-c"]
code = 'read name; read age; echo "Hello $name, you are $age years old!"'
input = "Alice\n25\n"
expect = "Hello Alice, you are 25 years old!"

[[fixture]]
name = "script"
code = """#!/bin/sh
read line
echo "script saw $line" >&2
exit 3
"""
input = "ping\n"

[[fixture]]
name = "wrong"
command = ["/bin/sh", "-c"]
code = "cat"
input = "Bob\n"
expect = "Alice"
`

func writeFixtures(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixtures.toml")
	require.NoError(t, os.WriteFile(path, []byte(fixtures), 0o644))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCheckGreetingPasses(t *testing.T) {
	out, _, err := execute(t, "", "check", "--config", writeFixtures(t), "greeting")
	require.NoError(t, err)
	assert.Contains(t, out, "== greeting ==")
	assert.Contains(t, out, "Hello Alice, you are 25 years old!")
	assert.Contains(t, out, "Exit code: 0")
	assert.Contains(t, out, "PASS")
}

func TestCheckPayloadFixture(t *testing.T) {
	out, _, err := execute(t, "", "check", "--config", writeFixtures(t), "--format", "json", "script")
	require.NoError(t, err)

	var reports []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "script saw ping\n", reports[0]["stderr"])
	assert.EqualValues(t, 3, reports[0]["exit_code"])
	assert.Equal(t, "inspect", reports[0]["verdict"])
}

func TestCheckFailedExpectation(t *testing.T) {
	out, _, err := execute(t, "", "check", "--config", writeFixtures(t), "wrong")
	require.ErrorIs(t, err, errReportedFailure)
	assert.Contains(t, out, "FAIL")
}

func TestCheckAllFixtures(t *testing.T) {
	out, _, err := execute(t, "", "check", "--config", writeFixtures(t), "--format", "yaml")
	require.ErrorIs(t, err, errReportedFailure)
	assert.Equal(t, 3, strings.Count(out, "verdict:"))
}

func TestCheckUnknownFixture(t *testing.T) {
	_, _, err := execute(t, "", "check", "--config", writeFixtures(t), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown fixture")
}

func TestCheckBadFormat(t *testing.T) {
	_, _, err := execute(t, "", "check", "--config", writeFixtures(t), "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestExecWithInput(t *testing.T) {
	out, _, err := execute(t, "", "exec", "--input", "Alice\n25\n", "--expect", "Hello Alice", "--",
		"/bin/sh", "-c", `read n; read a; echo "Hello $n, you are $a years old!"`)
	require.NoError(t, err)
	assert.Contains(t, out, "/bin/sh -c")
	assert.Contains(t, out, "Hello Alice, you are 25 years old!")
	assert.Contains(t, out, "PASS")
}

func TestExecInputFromStdin(t *testing.T) {
	out, _, err := execute(t, "b\na\n", "exec", "--format", "json", "--input-file", "-", "--", "sort")
	require.NoError(t, err)
	var reports []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	assert.Equal(t, "a\nb\n", reports[0]["stdout"])
	assert.Equal(t, "b\na\n", reports[0]["input"])
}

func TestExecInputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0o644))
	out, _, err := execute(t, "", "exec", "--input-file", path, "--", "cat")
	require.NoError(t, err)
	assert.Contains(t, out, "from file")
}

func TestExecConflictingInputs(t *testing.T) {
	_, _, err := execute(t, "", "exec", "--input", "x", "--input-file", "y", "--", "cat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestExecMissingBinaryIsReported(t *testing.T) {
	out, _, err := execute(t, "", "exec", "--", "definitely-not-a-real-binary-xyz")
	require.ErrorIs(t, err, errReportedFailure)
	assert.Contains(t, out, "ERROR:")
	assert.Contains(t, out, "definitely-not-a-real-binary-xyz")
}

func TestExecNonZeroExitIsNotFailure(t *testing.T) {
	out, _, err := execute(t, "", "exec", "--", "/bin/sh", "-c", "exit 7")
	require.NoError(t, err)
	assert.Contains(t, out, "Exit code: 7")
}

func TestExecVerboseLogsToStderr(t *testing.T) {
	_, stderr, err := execute(t, "", "exec", "--verbose", "--", "/bin/sh", "-c", "exit 0")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"msg":"starting child"`)
	assert.Contains(t, stderr, `"msg":"child exited"`)
}

func TestExecRequiresCommand(t *testing.T) {
	_, _, err := execute(t, "", "exec")
	require.Error(t, err)
}
