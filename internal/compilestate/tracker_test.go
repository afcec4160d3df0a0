package compilestate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/studiolink/studiolink/internal/logbuf"
)

func TestFullCycleAccumulatesErrorsInOrder(t *testing.T) {
	tracker := NewTracker()

	tracker.Begin()
	require.True(t, tracker.Status().Compiling)

	tracker.UnitFinished("Assets/Scripts/Player.cs", []UnitMessage{
		{File: "Assets/Scripts/Player.cs", Line: 12, Column: 5, Text: "missing semicolon", Severity: logbuf.SeverityError},
		{File: "Assets/Scripts/Player.cs", Line: 20, Column: 1, Text: "unused variable", Severity: logbuf.SeverityWarning},
	})
	tracker.UnitFinished("Assets/Scripts/Enemy.cs", []UnitMessage{
		{File: "Assets/Scripts/Enemy.cs", Line: 3, Column: 9, Text: "unknown identifier", Severity: logbuf.SeverityError},
	})
	tracker.Finish()

	status := tracker.Status()
	require.False(t, status.Compiling)
	require.True(t, status.HasErrors())
	require.Equal(t, []string{
		"Assets/Scripts/Player.cs(12,5): missing semicolon",
		"Assets/Scripts/Enemy.cs(3,9): unknown identifier",
	}, status.Errors)
}

func TestBeginResetsErrors(t *testing.T) {
	tracker := NewTracker()
	tracker.Begin()
	tracker.UnitFinished("u", []UnitMessage{
		{File: "a.cs", Line: 1, Column: 1, Text: "boom", Severity: logbuf.SeverityError},
	})
	tracker.Finish()
	require.NotEmpty(t, tracker.Status().Errors)

	tracker.Begin()
	status := tracker.Status()
	require.True(t, status.Compiling)
	require.Empty(t, status.Errors)
	require.False(t, status.HasErrors())
}

func TestErrorsSurviveFinish(t *testing.T) {
	tracker := NewTracker()
	tracker.Begin()
	tracker.UnitFinished("u", []UnitMessage{
		{File: "b.cs", Line: 7, Column: 2, Text: "bad cast", Severity: logbuf.SeverityError},
	})
	tracker.Finish()

	// Reading after the transition still sees the cycle's errors.
	require.Equal(t, []string{"b.cs(7,2): bad cast"}, tracker.Status().Errors)
	require.Equal(t, []string{"b.cs(7,2): bad cast"}, tracker.Status().Errors)
}

func TestNonErrorMessagesIgnored(t *testing.T) {
	tracker := NewTracker()
	tracker.Begin()
	tracker.UnitFinished("u", []UnitMessage{
		{File: "c.cs", Line: 1, Column: 1, Text: "info", Severity: logbuf.SeverityLog},
		{File: "c.cs", Line: 2, Column: 1, Text: "warn", Severity: logbuf.SeverityWarning},
	})
	tracker.Finish()

	status := tracker.Status()
	require.False(t, status.HasErrors())
}

func TestStatusSnapshotIsIsolated(t *testing.T) {
	tracker := NewTracker()
	tracker.Begin()
	tracker.UnitFinished("u", []UnitMessage{
		{File: "d.cs", Line: 4, Column: 4, Text: "oops", Severity: logbuf.SeverityError},
	})

	status := tracker.Status()
	status.Errors[0] = "mutated"
	require.Equal(t, "d.cs(4,4): oops", tracker.Status().Errors[0])
}
