package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryCmd_Use(t *testing.T) {
	assert.Equal(t, "query [question]", queryCmd.Use)
}

func TestQueryCmd_Short(t *testing.T) {
	assert.Equal(t, "Answer a question about the ledger and records", queryCmd.Short)
}

func TestQueryCmd_Long(t *testing.T) {
	assert.Contains(t, queryCmd.Long, "aggregation engine")
	assert.Contains(t, queryCmd.Long, "retrieval engine")
	assert.Contains(t, queryCmd.Long, "confidence")
}

func TestQueryCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"query"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestQueryCmd_UnwiredServiceErrors(t *testing.T) {
	prev := queryService
	queryService = nil
	defer func() { queryService = prev }()

	err := runQuery(queryCmd, []string{"total budget"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestConfidenceBadge_Levels(t *testing.T) {
	assert.Contains(t, confidenceBadge(0.95), "0.95")
	assert.Contains(t, confidenceBadge(0.6), "0.60")
	assert.Contains(t, confidenceBadge(0.1), "0.10")
}
