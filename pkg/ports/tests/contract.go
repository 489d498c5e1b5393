// Package tests holds reusable contract suites for port implementations.
package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/gitquest/pkg/domain"
	"github.com/aretw0/gitquest/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract verifies that a SessionStore implementation adheres to the interface contract.
func RunSessionStoreContract(t *testing.T, store ports.SessionStore) {
	t.Helper()
	ctx := context.Background()
	sessionID := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewLessonState(sessionID, 2, "intro")
		state.HintsEnabled = true
		state.Lines = append(state.Lines,
			domain.TerminalLine{Kind: domain.LineCommand, Text: "git add .", StepID: "stage", Outcome: domain.OutcomeSuccess},
			domain.TerminalLine{Kind: domain.LineSuccess, Text: "staged", StepID: "stage", Marker: "staged"},
		)

		require.NoError(t, store.Save(ctx, sessionID, state))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, state.CurrentStepID, loaded.CurrentStepID)
		assert.Equal(t, 2, loaded.ActID)
		assert.True(t, loaded.HintsEnabled)
		assert.Equal(t, state.Lines, loaded.Lines)
		assert.True(t, domain.DeriveFlags(loaded).Reached("staged"))
	})

	t.Run("Load Is Isolated", func(t *testing.T) {
		state := domain.NewLessonState(sessionID, 1, "intro")
		require.NoError(t, store.Save(ctx, sessionID, state))

		state.CurrentStepID = "mutated"
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "intro", loaded.CurrentStepID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewLessonState(sessionID, 1, "intro")))
		require.NoError(t, store.Delete(ctx, sessionID))

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewLessonState(id1, 1, "intro")))
		require.NoError(t, store.Save(ctx, id2, domain.NewLessonState(id2, 1, "intro")))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunSettingsStoreContract verifies that a SettingsStore round-trips the opaque blob.
// The store must be empty when handed in.
func RunSettingsStoreContract(t *testing.T, store ports.SettingsStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.ReadSettings(ctx)
	require.ErrorIs(t, err, domain.ErrSettingsNotFound)

	require.NoError(t, store.WriteSettings(ctx, []byte(`{"version":2}`)))
	blob, err := store.ReadSettings(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":2}`, string(blob))

	require.NoError(t, store.WriteSettings(ctx, []byte(`{"version":2,"volume":0.5}`)))
	blob, err = store.ReadSettings(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":2,"volume":0.5}`, string(blob))
}

// RunActLoaderContract verifies that a loader returns the expected acts and reports unknown IDs.
func RunActLoaderContract(t *testing.T, loader ports.ActLoader, want []int) {
	t.Helper()

	ids, err := loader.ListActs()
	require.NoError(t, err)
	assert.Equal(t, want, ids)

	for _, id := range want {
		act, err := loader.GetAct(id)
		require.NoError(t, err, "act %d", id)
		assert.Equal(t, id, act.ID)
		assert.NotEmpty(t, act.Entry)
		assert.NotEmpty(t, act.Steps)
	}

	_, err = loader.GetAct(-1)
	assert.ErrorIs(t, err, domain.ErrActNotFound)
}
