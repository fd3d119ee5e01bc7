package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kcbailey111/finance-agent/cmd/stats"
)

func TestStatsCommand_Metadata(t *testing.T) {
	assert.Equal(t, "stats", stats.Cmd.Use)
	assert.Contains(t, stats.Cmd.Short, "analytics dashboard")
	assert.Contains(t, stats.Cmd.Long, "top merchants")
	assert.NotNil(t, stats.Cmd.RunE)
}
