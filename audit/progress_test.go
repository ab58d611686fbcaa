package audit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Record(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 4, 2)

	tracker.Start()
	tracker.Record(true)
	assert.Empty(t, buf.String(), "no report before the interval")

	tracker.Record(false)
	assert.Contains(t, buf.String(), "2/4 (50.0%) - 1 failed")

	tracker.Record(true)
	tracker.Record(true)
	tracker.Finish()

	output := buf.String()
	assert.Contains(t, output, "4/4 (100.0%) - 1 failed")
	assert.True(t, strings.HasSuffix(output, "\n"), "finish should print newline")
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 1)

	tracker.Record(true)
	tracker.Finish()

	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
}

func TestProgressTracker_CapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 1, 1)

	tracker.Start()
	tracker.Record(true)
	tracker.Record(true)
	tracker.Finish()

	assert.NotContains(t, buf.String(), "2/1")
}

func TestProgressTracker_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 0, 10)

	tracker.Start()
	tracker.Finish()

	assert.Contains(t, buf.String(), "0/0 (0.0%)")
}

func TestProgressTracker_NilWriter(t *testing.T) {
	tracker := NewProgressTracker(nil, 2, 1)
	tracker.Start()
	tracker.Record(true)
	tracker.Finish()
}
