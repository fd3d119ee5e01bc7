package root_test

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/kcbailey111/finance-agent/cmd/root"
)

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "finance-agent", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "categorize bank transactions")
	assert.Contains(t, root.Cmd.Long, "rule engine with optional AI escalation")
	assert.NotNil(t, root.Cmd.Run)
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
	assert.NotNil(t, root.Cmd.PersistentPostRun)
}

func TestRootCommand_Flags(t *testing.T) {
	// Flags are registered by Init() from main; look them up defensively so
	// the test passes regardless of initialization order.
	inputFlag := root.Cmd.PersistentFlags().Lookup("input")
	if inputFlag != nil {
		assert.Equal(t, "i", inputFlag.Shorthand)
		assert.Equal(t, "", inputFlag.DefValue)
	}

	inputDirFlag := root.Cmd.PersistentFlags().Lookup("input-dir")
	if inputDirFlag != nil {
		assert.Equal(t, "I", inputDirFlag.Shorthand)
	}

	outputFlag := root.Cmd.PersistentFlags().Lookup("output")
	if outputFlag != nil {
		assert.Equal(t, "o", outputFlag.Shorthand)
	}
}

func TestRootCommand_Run(t *testing.T) {
	cmd := &cobra.Command{}

	assert.NotPanics(t, func() {
		root.Cmd.Run(cmd, []string{})
	})
}

func TestRootCommand_PersistentPostRun(t *testing.T) {
	originalContainer := root.AppContainer
	defer func() {
		root.AppContainer = originalContainer
	}()

	// PostRun must tolerate a nil container (PreRun failed or was skipped).
	root.AppContainer = nil
	assert.NotPanics(t, func() {
		root.Cmd.PersistentPostRun(&cobra.Command{}, []string{})
	})
}

func TestCommonFlags_Structure(t *testing.T) {
	flags := root.CommonFlags{
		Input:    "transactions.csv",
		InputDir: "exports",
		Output:   "enriched.csv",
	}

	assert.Equal(t, "transactions.csv", flags.Input)
	assert.Equal(t, "exports", flags.InputDir)
	assert.Equal(t, "enriched.csv", flags.Output)
}

func TestLoadInput_FlagValidation(t *testing.T) {
	originalFlags := root.SharedFlags
	defer func() { root.SharedFlags = originalFlags }()

	root.SharedFlags = root.CommonFlags{}
	_, err := root.LoadInput(nil)
	assert.ErrorContains(t, err, "either --input or --input-dir is required")

	root.SharedFlags = root.CommonFlags{Input: "a.csv", InputDir: "dir"}
	_, err = root.LoadInput(nil)
	assert.ErrorContains(t, err, "mutually exclusive")
}

func TestGlobalVariables_Initialization(t *testing.T) {
	assert.NotNil(t, root.Log)
	assert.NotNil(t, root.Cmd)
	assert.NotNil(t, &root.SharedFlags)
}

func TestAccessors(t *testing.T) {
	assert.NotPanics(t, func() {
		root.GetConfig()
		root.GetContainer()
	})
	assert.NotNil(t, root.GetLogrusAdapter())
}
