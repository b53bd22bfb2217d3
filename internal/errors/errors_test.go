package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	err := New(ErrCodeSnapshotNotFound, "snapshot not found")
	assert.Equal(t, ErrCodeSnapshotNotFound, err.Code)

	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodeIssueReadFailed, "read failed")
	assert.Equal(t, cause, wrapped.Unwrap())

	assert.True(t, Is(wrapped, ErrCodeIssueReadFailed))
	assert.False(t, Is(wrapped, ErrCodeIssueNotFound))

	detailed := err.WithDetail("snapshot_id", "s_1").WithDetail("attempt", 2)
	assert.Equal(t, "s_1", detailed.Details["snapshot_id"])
}

func TestIsThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("travel: %w", InvalidState("travel", "past"))
	assert.True(t, Is(err, ErrCodeInvalidState))
	assert.Equal(t, ErrCodeInvalidState, GetCode(err))
	assert.Equal(t, ErrorCode(""), GetCode(fmt.Errorf("plain")))
}

func TestConstructors(t *testing.T) {
	err := MissingRequiredField("symptom")
	assert.Equal(t, ErrCodeMissingRequiredField, err.Code)
	assert.Equal(t, "symptom", err.Details["field"])

	err = InvalidIssueID("")
	assert.Nil(t, err.Details["issue_id"])

	err = SnapshotNotFound("s_x")
	assert.Equal(t, "s_x", err.Details["snapshot_id"])
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	plain := FromError(fmt.Errorf("disk full"))
	require.NotNil(t, plain)
	assert.Equal(t, ErrCodeIOFailure, plain.Code)
	assert.Equal(t, "disk full", plain.Details["detail"])

	coded := IssueNotFound("i_1")
	assert.Same(t, coded, FromError(fmt.Errorf("get: %w", coded)))
}

func TestEnvelope(t *testing.T) {
	env := IssueNotFound("i_1").Envelope()
	assert.Equal(t, ErrCodeIssueNotFound, env["code"])
	assert.Equal(t, "issue not found: i_1", env["message"])
	assert.Equal(t, "i_1", env["issue_id"])
}
