package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/gitquest/pkg/adapters/redis"
	"github.com/aretw0/gitquest/pkg/boss"
	"github.com/aretw0/gitquest/pkg/domain"
	"github.com/aretw0/gitquest/pkg/settings"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basicsAct = `
id: 1
title: Basics
entry: hello
steps:
  - id: hello
    type: dialog
    next: init
    dialog:
      speaker: Ada
      text: "Welcome."
  - id: init
    type: terminal
    next: done
    terminal:
      pattern: "^git init$"
      success: ["Initialized empty Git repository"]
      errors: ["Not a command we know here."]
  - id: done
    type: complete
    complete:
      summary: "You made a repo."
`

func contentDir(t *testing.T, act string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "acts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acts", "01.yaml"), []byte(act), 0o644))
	return dir
}

func setup(t *testing.T, opts Options) *App {
	t.Helper()
	if opts.DataDir == "" {
		opts.DataDir = t.TempDir()
	}
	app, err := Setup(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func play(t *testing.T, app *App, input string, opts PlayOptions) string {
	t.Helper()
	var out bytes.Buffer
	opts.In = strings.NewReader(input)
	opts.Out = &out
	opts.Headless = true
	require.NoError(t, RunPlay(context.Background(), app, opts))
	return out.String()
}

func TestRunPlay_CompletesAct(t *testing.T) {
	app := setup(t, Options{ContentDir: contentDir(t, basicsAct)})

	out := play(t, app, "\ngit nope\ngit init\n", PlayOptions{SessionID: "ada"})
	assert.Contains(t, out, "Not a command we know here.")
	assert.Contains(t, out, "Initialized empty Git repository")
	assert.Contains(t, out, "Act 1 complete.")

	state, err := app.Manager.Load(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, state.Status)
	assert.True(t, state.HintsEnabled, "hints follow the player settings")
}

func TestRunPlay_ResumeAndFresh(t *testing.T) {
	app := setup(t, Options{ContentDir: contentDir(t, basicsAct)})
	ctx := context.Background()

	play(t, app, "\n", PlayOptions{})
	state, err := app.Manager.Load(ctx, DefaultSessionID)
	require.NoError(t, err)
	assert.Equal(t, "init", state.CurrentStepID, "leaving on EOF saves progress")

	play(t, app, "git init\n", PlayOptions{})
	state, err = app.Manager.Load(ctx, DefaultSessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, state.Status)

	play(t, app, "", PlayOptions{Fresh: true})
	state, err = app.Manager.Load(ctx, DefaultSessionID)
	require.NoError(t, err)
	assert.Equal(t, "hello", state.CurrentStepID)
}

func TestRunPlay_UnknownAct(t *testing.T) {
	app := setup(t, Options{ContentDir: contentDir(t, basicsAct)})
	err := RunPlay(context.Background(), app, PlayOptions{
		IO:       IO{In: strings.NewReader(""), Out: &bytes.Buffer{}},
		ActID:    9,
		Headless: true,
	})
	assert.ErrorIs(t, err, domain.ErrActNotFound)
}

func TestSetup_InvalidContent(t *testing.T) {
	broken := strings.Replace(basicsAct, "next: init", "next: nowhere", 1)
	_, err := Setup(context.Background(), Options{ContentDir: contentDir(t, broken), DataDir: t.TempDir()})
	require.Error(t, err)
	assert.True(t, domain.IsConfigError(err))
}

func TestSetup_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	app := setup(t, Options{ContentDir: contentDir(t, basicsAct), RedisAddr: mr.Addr()})
	protected, ok := app.Store.(protectedStore)
	require.True(t, ok, "default redaction wraps the session store")
	_, ok = protected.SettingsStore.(*redis.Store)
	require.True(t, ok)

	play(t, app, "\n", PlayOptions{SessionID: "remote"})

	var out bytes.Buffer
	require.NoError(t, ListSessions(context.Background(), app, &out))
	assert.Contains(t, out.String(), "remote: act 1, active at 'init'")
}

func TestSetup_EncryptedSessions(t *testing.T) {
	t.Setenv("GITQUEST_ENCRYPTION_KEY", base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 32)))
	dataDir := t.TempDir()
	app := setup(t, Options{ContentDir: contentDir(t, basicsAct), DataDir: dataDir})

	play(t, app, "\ngit status\n", PlayOptions{SessionID: "secret"})

	raw, err := os.ReadFile(filepath.Join(dataDir, "sessions", "secret.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "git status")
	assert.Contains(t, string(raw), "enc:v1:")

	var out bytes.Buffer
	require.NoError(t, InspectSession(context.Background(), app, "secret", &out))
	assert.Contains(t, out.String(), "git status")
}

func TestSetup_UnreadableSettings(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "settings.json"), 0o755))

	app := setup(t, Options{ContentDir: contentDir(t, basicsAct), DataDir: dataDir})
	assert.Equal(t, settings.Defaults(), app.Settings.Get())

	out := play(t, app, "\n", PlayOptions{SessionID: "fallback"})
	assert.NotEmpty(t, out)
}

func TestSetup_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Setup(context.Background(), Options{RedisAddr: addr, DataDir: t.TempDir()})
	assert.ErrorContains(t, err, "connect redis")
}

func TestSessionCommands(t *testing.T) {
	app := setup(t, Options{ContentDir: contentDir(t, basicsAct)})
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, ListSessions(ctx, app, &out))
	assert.Contains(t, out.String(), "No saved sessions found.")

	play(t, app, "\n", PlayOptions{SessionID: "one"})

	out.Reset()
	require.NoError(t, InspectSession(ctx, app, "one", &out))
	assert.Contains(t, out.String(), `"current_step_id": "init"`)

	out.Reset()
	assert.Error(t, RemoveSessions(ctx, app, []string{"one", "../escape"}, &out))
	assert.Contains(t, out.String(), "Removed session 'one'")

	assert.ErrorIs(t, InspectSession(ctx, app, "one", &out), domain.ErrSessionNotFound)
}

func TestSettingsCommands(t *testing.T) {
	app := setup(t, Options{})
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, SetSettings(ctx, app, map[string]string{"difficulty": "hard", "player_name": "Ada"}, &out))
	assert.Contains(t, out.String(), `"difficulty": "hard"`)
	assert.Equal(t, "Ada", app.Settings.Get().PlayerName)

	assert.Error(t, SetSettings(ctx, app, map[string]string{"volume": "7", "theme": "dark"}, &out))
	assert.Equal(t, "auto", string(app.Settings.Get().Theme), "invalid batches write nothing")

	out.Reset()
	require.NoError(t, ResetSettings(ctx, app, &out))
	assert.Empty(t, app.Settings.Get().PlayerName)

	out.Reset()
	require.NoError(t, ShowSettings(app, &out))
	assert.Contains(t, out.String(), `"hints": true`)
}

func TestRunGraph(t *testing.T) {
	app := setup(t, Options{ContentDir: contentDir(t, basicsAct)})
	play(t, app, "\n", PlayOptions{SessionID: "g"})

	var out bytes.Buffer
	require.NoError(t, RunGraph(context.Background(), app, GraphOptions{ActID: 1, SessionID: "g"}, &out))
	assert.Contains(t, out.String(), "graph TD")
	assert.Contains(t, out.String(), "hello --> init")
	assert.Contains(t, out.String(), "class init current;")

	assert.ErrorIs(t, RunGraph(context.Background(), app, GraphOptions{ActID: 4}, &out), domain.ErrActNotFound)
}

func TestRunValidate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RunValidate(Options{}, &out))
	assert.Contains(t, out.String(), `Content "builtin" is valid!`)

	out.Reset()
	broken := strings.Replace(basicsAct, "type: dialog", "type: hologram", 1)
	err := RunValidate(Options{ContentDir: contentDir(t, broken)}, &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "first defect")
}

func TestRunPuzzle(t *testing.T) {
	app := setup(t, Options{})
	var out bytes.Buffer

	solved, err := RunPuzzle(context.Background(), app, PuzzleOptions{
		IO:       IO{In: strings.NewReader("pick D\ncheck\nunpick D\npick C\ncheck\n"), Out: &out},
		Kind:     PuzzleCherryPick,
		Headless: true,
	})
	require.NoError(t, err)
	assert.True(t, solved)

	_, err = RunPuzzle(context.Background(), app, PuzzleOptions{Kind: PuzzleMerge, LevelID: "merge-404", Headless: true})
	assert.ErrorIs(t, err, ErrLevelNotFound)

	_, err = RunPuzzle(context.Background(), app, PuzzleOptions{Kind: "octopus"})
	assert.ErrorContains(t, err, "unknown puzzle")

	out.Reset()
	require.NoError(t, ListLevels(app, &out))
	assert.Contains(t, out.String(), "  - merge-monster")
}

func TestRunBoss_Victory(t *testing.T) {
	app := setup(t, Options{})
	var out bytes.Buffer
	script := strings.Join([]string{
		"app.js greeting incoming",
		"app.js port current",
		"README.md title incoming",
		"config.yaml features both",
	}, "\n") + "\n"

	outcome, err := RunBoss(context.Background(), app, PuzzleOptions{
		IO:       IO{In: strings.NewReader(script), Out: &out},
		Headless: true,
	}, boss.WithInterval(0))
	require.NoError(t, err)
	assert.Equal(t, boss.OutcomeVictory, outcome)
	assert.Contains(t, out.String(), "Victory! Score:")
	assert.Equal(t, 1.0, testutil.ToFloat64(app.Metrics.Encounters.WithLabelValues("merge-monster", "victory")))
	assert.Equal(t, 4.0, testutil.ToFloat64(app.Metrics.Resolutions.WithLabelValues("merge-monster", "true")))
}

func TestNewHTTPHandler(t *testing.T) {
	app := setup(t, Options{})
	h := NewHTTPHandler(app)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRunServe_Shutdown(t *testing.T) {
	app := setup(t, Options{})
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	assert.NoError(t, RunServe(ctx, app, "127.0.0.1:0"))
}

func TestRunMCP_UnknownTransport(t *testing.T) {
	app := setup(t, Options{})
	assert.ErrorContains(t, RunMCP(context.Background(), app, "pigeon", 0), "unknown transport")
}
