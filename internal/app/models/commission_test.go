package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAcceptsSubmissionsOn(t *testing.T) {
	deadline := time.Date(2026, time.May, 10, 0, 0, 0, 0, time.UTC)
	c := &Commission{SubmissionDeadline: deadline}

	assert.True(t, c.AcceptsSubmissionsOn(time.Date(2026, time.May, 9, 23, 0, 0, 0, time.UTC)))
	// The deadline day itself still accepts submissions.
	assert.True(t, c.AcceptsSubmissionsOn(time.Date(2026, time.May, 10, 18, 30, 0, 0, time.UTC)))
	assert.False(t, c.AcceptsSubmissionsOn(time.Date(2026, time.May, 11, 0, 0, 0, 0, time.UTC)))
}

func TestSessionHeldBefore(t *testing.T) {
	session := time.Date(2026, time.May, 20, 0, 0, 0, 0, time.UTC)
	c := &Commission{SessionDate: session}

	assert.False(t, c.SessionHeldBefore(time.Date(2026, time.May, 19, 12, 0, 0, 0, time.UTC)))
	// The session day itself does not count as held yet.
	assert.False(t, c.SessionHeldBefore(time.Date(2026, time.May, 20, 9, 0, 0, 0, time.UTC)))
	assert.True(t, c.SessionHeldBefore(time.Date(2026, time.May, 21, 0, 0, 0, 0, time.UTC)))
}
