package models

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	id := NewID(PrefixSnapshot, now)

	assert.Regexp(t, regexp.MustCompile(`^s_20250304_050607_[a-z0-9]{6}$`), id)
	assert.NotEqual(t, id, NewID(PrefixSnapshot, now))
}

func TestNewIDUsesUTC(t *testing.T) {
	loc := time.FixedZone("plus2", 2*60*60)
	now := time.Date(2025, 1, 1, 1, 0, 0, 0, loc)
	assert.Contains(t, NewID(PrefixIssue, now), "i_20241231_230000_")
}

func TestTimestamp(t *testing.T) {
	ts := Timestamp(time.Date(2025, 11, 2, 9, 30, 15, 999, time.UTC))
	assert.Equal(t, "2025-11-02T09:30:15Z", ts)
}

func TestStateSerializesNulls(t *testing.T) {
	data, err := json.Marshal(DefaultState("/ws"))
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "present", raw["mode"])
	assert.Contains(t, raw, "backup_path")
	assert.Nil(t, raw["backup_path"])
	assert.Nil(t, raw["guard_token"])
}

func TestModeValid(t *testing.T) {
	assert.True(t, ModePresent.Valid())
	assert.True(t, ModePast.Valid())
	assert.False(t, Mode("future").Valid())
	assert.False(t, Mode("").Valid())
}
