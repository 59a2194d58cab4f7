package runlog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "metrics.jsonl")
	l := New(path)

	require.NoError(t, l.Append(Record{
		AssetID:        "button",
		SourceLanguage: "en-US",
		TargetLanguage: "it-IT",
		TotalStrings:   4,
		ReviewOutcome:  OutcomePass,
	}))
	require.NoError(t, l.Append(Record{
		AssetID:          "diagram",
		SourceLanguage:   "en-US",
		TargetLanguage:   "it-IT",
		ReviewOutcome:    OutcomeNoLoc,
		EscalationReason: "insufficient text",
	}))

	records, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "button", records[0].AssetID)
	assert.Equal(t, OutcomePass, records[0].ReviewOutcome)
	assert.False(t, records[0].Timestamp.IsZero())
	assert.WithinDuration(t, time.Now().UTC(), records[0].Timestamp, time.Minute)

	assert.Equal(t, OutcomeNoLoc, records[1].ReviewOutcome)
	assert.Equal(t, "insufficient text", records[1].EscalationReason)
}

func TestNoopWhenUnconfigured(t *testing.T) {
	var l *Logger
	assert.NoError(t, l.Append(Record{AssetID: "x"}))
	assert.NoError(t, New("").Append(Record{AssetID: "x"}))
}

func TestReadAllMissingFile(t *testing.T) {
	_, err := ReadAll(filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.Error(t, err)
}
