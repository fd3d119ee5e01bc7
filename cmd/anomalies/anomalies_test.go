package anomalies_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kcbailey111/finance-agent/cmd/anomalies"
)

func TestAnomaliesCommand_Metadata(t *testing.T) {
	assert.Equal(t, "anomalies", anomalies.Cmd.Use)
	assert.Contains(t, anomalies.Cmd.Short, "anomaly report")
	assert.Contains(t, anomalies.Cmd.Long, "anomaly passes")
	assert.NotNil(t, anomalies.Cmd.RunE)
}

func TestAnomaliesCommand_Flags(t *testing.T) {
	topFlag := anomalies.Cmd.Flags().Lookup("top")
	assert.NotNil(t, topFlag)
	assert.Equal(t, "t", topFlag.Shorthand)
	assert.Equal(t, "0", topFlag.DefValue)
	assert.Equal(t, "int", topFlag.Value.Type())
}
