package analyze_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kcbailey111/finance-agent/cmd/analyze"
)

func TestAnalyzeCommand_Metadata(t *testing.T) {
	assert.Equal(t, "analyze", analyze.Cmd.Use)
	assert.Contains(t, analyze.Cmd.Short, "enrichment pipeline")
	assert.Contains(t, analyze.Cmd.Long, "recurring charge detection")
	assert.NotNil(t, analyze.Cmd.RunE)
}
