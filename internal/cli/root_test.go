package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "gradebook", cmd.Use)
	assert.Contains(t, cmd.Long, "dangling references")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"student", "add"}, {"student", "get"}, {"student", "list"}, {"student", "update"}, {"student", "remove"}, {"student", "import"},
		{"teacher", "add"}, {"teacher", "assign"}, {"teacher", "unassign"},
		{"subject", "add"}, {"subject", "update"},
		{"section", "add"}, {"section", "enroll"}, {"section", "unenroll"}, {"section", "report"},
		{"grade", "add"}, {"grade", "update"}, {"grade", "remove"}, {"grade", "list"},
		{"attendance", "add"}, {"attendance", "list"},
		{"stats"},
		{"integrity", "check"}, {"integrity", "prune"},
		{"backup", "export"}, {"backup", "import"},
		{"status"}, {"clear"}, {"seed"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"db", "backend", "env-file"} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "", flag.DefValue, name)
	}
}

func TestSectionReportFlags(t *testing.T) {
	cmd := NewRootCommand()
	reportCmd, _, err := cmd.Find([]string{"section", "report"})
	require.NoError(t, err)

	outputFlag := reportCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
}

func TestSectionAlias(t *testing.T) {
	cmd := NewRootCommand()
	sub, _, err := cmd.Find([]string{"class", "list"})
	require.NoError(t, err)
	assert.Equal(t, "list", sub.Name())
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--format", "yaml", "--backend", "memory", "status"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
