package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/cadence/internal/validation"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRunLifecycle(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.StartRun("run-1", "implement"))
	require.NoError(t, store.FinishRun("run-1", "sentinel reached", 3))

	n, err := store.RunCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var reason string
	var iterations int
	err = store.db.QueryRow(`SELECT stop_reason, iterations FROM runs WHERE id = ?`, "run-1").
		Scan(&reason, &iterations)
	require.NoError(t, err)
	assert.Equal(t, "sentinel reached", reason)
	assert.Equal(t, 3, iterations)
}

func TestJournalRecordsIterations(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.StartRun("run-2", "discover"))

	journal := store.Journal("run-2")
	snap := validation.Snapshot{Passed: 10, Failed: 2, Warnings: 1}
	require.NoError(t, journal.RecordIteration(1, snap, true))
	snap.TestToolFailed = true
	require.NoError(t, journal.RecordIteration(2, snap, false))

	var passed, toolFailed, hasResult int
	err := store.db.QueryRow(
		`SELECT passed, tool_failed, has_result FROM iterations WHERE run_id = ? AND iteration = 2`,
		"run-2").Scan(&passed, &toolFailed, &hasResult)
	require.NoError(t, err)
	assert.Equal(t, 10, passed)
	assert.Equal(t, 1, toolFailed)
	assert.Equal(t, 0, hasResult)
}

func TestJournalRejectsDuplicateIteration(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.StartRun("run-3", "implement"))

	journal := store.Journal("run-3")
	require.NoError(t, journal.RecordIteration(1, validation.Snapshot{}, true))
	assert.Error(t, journal.RecordIteration(1, validation.Snapshot{}, true),
		"duplicate iteration should violate the primary key")
}
