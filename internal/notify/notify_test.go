package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/apidocbuilder/internal/config"
)

func TestNewWithoutURLIsNoop(t *testing.T) {
	n, err := New(config.NotifyConfig{})
	require.NoError(t, err)
	assert.IsType(t, Noop{}, n)
	require.NoError(t, n.BuildCompleted(context.Background(), BuildCompleted{BuildID: "x"}))
	require.NoError(t, n.Close())
}

func TestEncode(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	data, err := Encode(BuildCompleted{
		BuildID:     "b1",
		Outcome:     "success",
		Fingerprint: "abc",
		Documents:   map[string]int{"hack": 3},
		DurationMS:  12,
		Timestamp:   ts,
	})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "b1", got["build_id"])
	assert.Equal(t, "success", got["outcome"])
	assert.NotContains(t, got, "skip_reason")
	assert.Equal(t, "2026-01-02T03:04:05Z", got["timestamp"])
}

func TestEncodeStampsTimestamp(t *testing.T) {
	data, err := Encode(BuildCompleted{BuildID: "b2", Outcome: "skipped", SkipReason: "no_changes"})
	require.NoError(t, err)

	var got BuildCompleted
	require.NoError(t, json.Unmarshal(data, &got))
	assert.False(t, got.Timestamp.IsZero())
	assert.Equal(t, "no_changes", got.SkipReason)
}
