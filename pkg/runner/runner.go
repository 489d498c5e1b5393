package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aretw0/gitquest/internal/logging"
	"github.com/aretw0/gitquest/pkg/domain"
	"github.com/aretw0/gitquest/pkg/ports"
	"github.com/aretw0/gitquest/pkg/session"
)

// EditorTerminator ends a multi-line fix typed into the in-game editor.
const EditorTerminator = "."

// Commands that leave the play loop. The session stays resumable.
var quitCommands = []string{"exit", "quit", ":q"}

// ContentRenderer transforms markdown before it is printed (glamour in the CLI).
type ContentRenderer func(string) (string, error)

// LineFormatter styles one terminal log line.
type LineFormatter func(domain.TerminalLine) string

// EffectSink plays presentation effects. Failures are logged and never block play.
type EffectSink interface {
	Play(ctx context.Context, effect domain.Effect) error
}

// Runner is the terminal play loop over a session.
type Runner struct {
	Input       io.Reader
	Output      io.Writer
	Logger      *slog.Logger
	Store       ports.SessionStore
	Renderer    ContentRenderer
	Formatter   LineFormatter
	Effects     EffectSink
	Headless    bool
	AutoAdvance bool

	out    io.Writer
	reader *lineReader
}

// Option configures a Runner.
type Option func(*Runner)

// WithInput sets the player input stream.
func WithInput(r io.Reader) Option {
	return func(rn *Runner) { rn.Input = r }
}

// WithOutput sets the stream the game is printed to.
func WithOutput(w io.Writer) Option {
	return func(rn *Runner) { rn.Output = w }
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(rn *Runner) { rn.Logger = logger }
}

// WithStore saves the lesson state after every action.
func WithStore(store ports.SessionStore) Option {
	return func(rn *Runner) { rn.Store = store }
}

// WithRenderer configures markdown rendering of dialog and concept text.
func WithRenderer(renderer ContentRenderer) Option {
	return func(rn *Runner) { rn.Renderer = renderer }
}

// WithFormatter configures terminal line styling.
func WithFormatter(f LineFormatter) Option {
	return func(rn *Runner) { rn.Formatter = f }
}

// WithEffects forwards step effects to a sink.
func WithEffects(sink EffectSink) Option {
	return func(rn *Runner) { rn.Effects = sink }
}

// WithHeadless skips cinematic delays and banners.
func WithHeadless(headless bool) Option {
	return func(rn *Runner) { rn.Headless = headless }
}

// WithAutoAdvance starts the next act when one completes.
func WithAutoAdvance(auto bool) Option {
	return func(rn *Runner) { rn.AutoAdvance = auto }
}

// NewRunner creates a Runner reading stdin and writing stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Input:  os.Stdin,
		Output: os.Stdout,
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.out = &syncWriter{w: r.Output}
	r.reader = newLineReader(r.Input, r.out)
	return r
}

// Run plays sess until the act completes (or the last act with AutoAdvance), the input
// ends, the player quits, or ctx is cancelled. Leaving early is not an error.
// The session must have been started or resumed.
func (r *Runner) Run(ctx context.Context, sess *session.Session) error {
	state := sess.State()
	if state == nil {
		return session.ErrNotStarted
	}

	remove := sess.OnChange(func(_ *domain.LessonState, diff *domain.StateDiff) {
		r.printLines(diff.Lines)
		r.playEffects(ctx, diff.Effects)
	})
	defer remove()
	r.printLines(state.Lines)

	for {
		if ctx.Err() != nil {
			return r.save(sess)
		}
		state = sess.State()
		if state.Status == domain.StatusCompleted {
			next, err := r.finishAct(ctx, sess, state)
			if err != nil || !next {
				return err
			}
			continue
		}

		step, err := sess.Current()
		if err != nil {
			return err
		}
		err = r.play(ctx, sess, step)
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || errors.Is(err, errQuit) {
			r.Logger.Info("player left", "act_id", state.ActID, "step_id", step.ID)
			return r.save(sess)
		}
		if err != nil {
			return err
		}
		if err := r.save(sess); err != nil {
			return err
		}
	}
}

var errQuit = errors.New("player quit")

func (r *Runner) play(ctx context.Context, sess *session.Session, step *domain.Step) error {
	switch step.Type {
	case domain.StepCinematic:
		for _, line := range step.Cinematic.Lines {
			fmt.Fprintln(r.out, line)
		}
		if !r.Headless {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(step.Cinematic.Duration()):
			}
		}
		return sess.Elapse(ctx)

	case domain.StepDialog:
		text := step.Dialog.Text
		if step.Dialog.Speaker != "" {
			text = fmt.Sprintf("**%s:** %s", step.Dialog.Speaker, text)
		}
		r.printMarkdown(text)
		if _, err := r.read(ctx, "[Enter]"); err != nil {
			return err
		}
		return sess.Acknowledge(ctx)

	case domain.StepConcept:
		r.printMarkdown(conceptMarkdown(step.Concept))
		for {
			key, err := r.read(ctx, "[Enter]")
			if err != nil {
				return err
			}
			err = sess.Dismiss(ctx, key)
			if !errors.Is(err, domain.ErrActionNotAllowed) {
				return err
			}
			fmt.Fprintln(r.out, "Press Enter to continue.")
		}

	case domain.StepTerminal:
		prompt := step.Terminal.Prompt
		if prompt == "" {
			prompt = "$"
		}
		input, err := r.read(ctx, prompt)
		if err != nil {
			return err
		}
		return sess.SubmitCommand(ctx, input)

	case domain.StepEditor:
		return r.playEditor(ctx, sess, step.Editor)
	}
	return fmt.Errorf("step %q: unsupported type %q", step.ID, step.Type)
}

func (r *Runner) playEditor(ctx context.Context, sess *session.Session, ed *domain.EditorPayload) error {
	fmt.Fprintf(r.out, "--- %s ---\n%s\n--- end ---\n", ed.File, strings.TrimRight(ed.Initial, "\n"))

	if ed.ReadOnly {
		fmt.Fprintf(r.out, "Fix %s in your own editor, then press Enter.\n", ed.File)
		if _, err := r.read(ctx, "[Enter]"); err != nil {
			return err
		}
		return sess.ConfirmEdit(ctx, domain.SourceExternal)
	}

	for {
		fmt.Fprintf(r.out, "Type the fixed file. End with a line containing only %q.\n", EditorTerminator)
		var lines []string
		for {
			line, err := r.read(ctx, "|")
			if err != nil {
				return err
			}
			if line == EditorTerminator {
				break
			}
			lines = append(lines, line)
		}
		if ed.Expected == "" || sameContent(strings.Join(lines, "\n"), ed.Expected) {
			return sess.ConfirmEdit(ctx, domain.SourcePlayer)
		}
		fmt.Fprintln(r.out, "That's not quite it. The conflict markers must go and the right lines stay.")
	}
}

// sameContent compares file bodies ignoring trailing whitespace on each line.
func sameContent(a, b string) bool {
	norm := func(s string) string {
		lines := strings.Split(strings.TrimSpace(s), "\n")
		for i, l := range lines {
			lines[i] = strings.TrimRight(l, " \t\r")
		}
		return strings.Join(lines, "\n")
	}
	return norm(a) == norm(b)
}

func conceptMarkdown(c *domain.ConceptPayload) string {
	if c.Title == "" {
		return c.Body
	}
	return "# " + c.Title + "\n\n" + c.Body
}

// finishAct prints the completion and reports whether another act was started.
func (r *Runner) finishAct(ctx context.Context, sess *session.Session, state *domain.LessonState) (bool, error) {
	if err := r.save(sess); err != nil {
		return false, err
	}
	if c := state.Completion; c != nil && c.Summary != "" {
		r.printMarkdown(c.Summary)
	}
	fmt.Fprintf(r.out, "Act %d complete.\n", state.ActID)

	c := state.Completion
	if !r.AutoAdvance || c == nil || c.NextAct == nil {
		return false, nil
	}
	if err := sess.Begin(ctx, *c.NextAct, domain.StartOptions{HintsEnabled: state.HintsEnabled}); err != nil {
		return false, fmt.Errorf("failed to start act %d: %w", *c.NextAct, err)
	}
	return true, nil
}

func (r *Runner) read(ctx context.Context, prompt string) (string, error) {
	line, err := r.reader.ReadLine(ctx, prompt)
	if err != nil {
		return "", err
	}
	for _, q := range quitCommands {
		if line == q {
			fmt.Fprintln(r.out, "Progress saved. Bye!")
			return "", errQuit
		}
	}
	return line, nil
}

func (r *Runner) save(sess *session.Session) error {
	if r.Store == nil {
		return nil
	}
	// Saving must survive a cancelled play context.
	if err := r.Store.Save(context.Background(), sess.ID(), sess.State()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	r.Logger.Debug("state saved", "session_id", sess.ID())
	return nil
}

func (r *Runner) printLines(lines []domain.TerminalLine) {
	for _, l := range lines {
		if r.Formatter != nil {
			fmt.Fprintln(r.out, r.Formatter(l))
			continue
		}
		fmt.Fprintln(r.out, plainLine(l))
	}
}

func plainLine(l domain.TerminalLine) string {
	switch l.Kind {
	case domain.LineCommand:
		return "> " + l.Text
	case domain.LineError:
		return "✗ " + l.Text
	case domain.LineSuccess:
		return "✓ " + l.Text
	case domain.LineInfo:
		return "ℹ " + l.Text
	}
	return l.Text
}

func (r *Runner) printMarkdown(text string) {
	out := text
	if r.Renderer != nil {
		if rendered, err := r.Renderer(text); err == nil {
			out = rendered
		} else {
			r.Logger.Warn("render failed", "err", err)
		}
	}
	fmt.Fprintln(r.out, strings.TrimSpace(out))
}

func (r *Runner) playEffects(ctx context.Context, effects []domain.Effect) {
	if r.Effects == nil {
		return
	}
	for _, e := range effects {
		if err := r.Effects.Play(ctx, e); err != nil {
			r.Logger.Warn("effect failed", "step_id", e.StepID, "visual", e.VisualEvent, "sound", e.SoundEvent, "err", err)
		}
	}
}
