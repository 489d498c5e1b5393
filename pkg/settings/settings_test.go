package settings_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/gitquest/internal/logging"
	"github.com/aretw0/gitquest/pkg/adapters/memory"
	"github.com/aretw0/gitquest/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsOnFirstLaunch(t *testing.T) {
	svc := settings.NewService(memory.NewStore())

	got, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, settings.Defaults(), got)
	assert.Equal(t, settings.Defaults(), svc.Get())
}

func TestLoad_FallsBackOnBadBlobs(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{"corrupt json", `{"version":2,`},
		{"outdated version", `{"version":1,"volume":0.2}`},
		{"missing version", `{"volume":0.2}`},
		{"invalid theme", `{"version":2,"theme":"neon"}`},
		{"volume out of range", `{"version":2,"volume":3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := memory.NewStore()
			require.NoError(t, store.WriteSettings(ctx, []byte(tt.blob)))

			var buf bytes.Buffer
			svc := settings.NewService(store, settings.WithLogger(logging.NewWriter(&buf, slog.LevelWarn, logging.FormatText)))

			got, err := svc.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, settings.Defaults(), got)
			assert.Contains(t, buf.String(), "discarding stored settings")
		})
	}
}

func TestLoad_PartialBlobKeepsDefaults(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.WriteSettings(ctx, []byte(`{"version":2,"player_name":"Linus"}`)))

	got, err := settings.NewService(store).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Linus", got.PlayerName)
	assert.Equal(t, settings.Defaults().Volume, got.Volume)
}

func TestUpdate_WritesThrough(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := settings.NewService(store)
	_, err := svc.Load(ctx)
	require.NoError(t, err)

	_, err = svc.Update(ctx, func(s *settings.Settings) {
		s.Theme = settings.ThemeDark
		s.Volume = 0.25
	})
	require.NoError(t, err)

	reloaded, err := settings.NewService(store).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.ThemeDark, reloaded.Theme)
	assert.Equal(t, 0.25, reloaded.Volume)
}

func TestUpdate_RejectsInvalid(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := settings.NewService(store)

	before := svc.Get()
	_, err := svc.Update(ctx, func(s *settings.Settings) { s.Difficulty = "nightmare" })
	assert.ErrorIs(t, err, settings.ErrInvalidDifficulty)
	assert.Equal(t, before, svc.Get())

	_, err = store.ReadSettings(ctx)
	assert.Error(t, err, "nothing was written")
}

type failingStore struct{ *memory.Store }

func (failingStore) WriteSettings(context.Context, []byte) error { return errors.New("disk full") }

func TestUpdate_StoreFailureKeepsCurrent(t *testing.T) {
	svc := settings.NewService(failingStore{memory.NewStore()})

	_, err := svc.Update(context.Background(), func(s *settings.Settings) { s.Hints = false })
	require.Error(t, err)
	assert.True(t, svc.Get().Hints)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	svc := settings.NewService(memory.NewStore())
	_, err := svc.Update(ctx, func(s *settings.Settings) { s.PlayerName = "Grace" })
	require.NoError(t, err)

	got, err := svc.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.Defaults(), got)
}

func TestSettings_Set(t *testing.T) {
	s := settings.Defaults()

	require.NoError(t, s.Set("hints", "false"))
	require.NoError(t, s.Set("volume", "0.4"))
	require.NoError(t, s.Set("difficulty", "hard"))
	assert.False(t, s.Hints)
	assert.Equal(t, 0.4, s.Volume)
	assert.NoError(t, s.Validate())

	assert.Error(t, s.Set("volume", "loud"))
	assert.Error(t, s.Set("colour", "red"))
}

func TestDifficulty_ScaleSeconds(t *testing.T) {
	assert.Equal(t, 135, settings.DifficultyEasy.ScaleSeconds(90))
	assert.Equal(t, 90, settings.DifficultyNormal.ScaleSeconds(90))
	assert.Equal(t, 68, settings.DifficultyHard.ScaleSeconds(90))
}
