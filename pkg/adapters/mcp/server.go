// Package mcp exposes gitquest sessions as Model Context Protocol tools so an
// agent can play or demo a lesson.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/gitquest"
	"github.com/aretw0/gitquest/internal/logging"
	"github.com/aretw0/gitquest/pkg/domain"
	"github.com/aretw0/gitquest/pkg/runner"
	"github.com/aretw0/gitquest/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ActsURI is the resource listing the playable acts.
const ActsURI = "gitquest://acts"

// SessionArgs selects a session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// StartArgs are the arguments of start_session.
type StartArgs struct {
	SessionID string `json:"session_id,omitempty"`
	ActID     int    `json:"act_id,omitempty"`
	Hints     *bool  `json:"hints,omitempty"`
}

// CommandArgs are the arguments of submit_command.
type CommandArgs struct {
	SessionID string `json:"session_id"`
	Input     string `json:"input"`
}

// DismissArgs are the arguments of dismiss.
type DismissArgs struct {
	SessionID string `json:"session_id"`
	Key       string `json:"key,omitempty"`
}

// ConfirmArgs are the arguments of confirm_edit.
type ConfirmArgs struct {
	SessionID string `json:"session_id"`
	Source    string `json:"source,omitempty"`
}

// GraphArgs are the arguments of get_graph.
type GraphArgs struct {
	ActID int `json:"act_id"`
}

// Server wraps a session manager as an MCP server.
type Server struct {
	manager   *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a Server. logger may be nil.
func NewServer(mgr *session.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		manager:   mgr,
		mcpServer: server.NewMCPServer("gitquest-mcp", gitquest.Version),
		logger:    logger,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sse.SSEHandler())
	mux.Handle("/message", sse.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening (sse)", "address", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("stop mcp server: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	sessionID := mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier returned by start_session"))

	s.mcpServer.AddTool(mcp.NewTool("list_acts",
		mcp.WithDescription("List the playable act numbers."),
	), s.handleListActs)

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get every step of an act with its transitions."),
		mcp.WithNumber("act_id", mcp.Required(), mcp.Description("Act number")),
	), mcp.NewStructuredToolHandler(s.GetGraph))

	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start an act from its entry step. Replaces any saved progress for the session."),
		mcp.WithString("session_id", mcp.Description("Session identifier (generated when omitted)")),
		mcp.WithNumber("act_id", mcp.Description("Act number, defaults to 1")),
		mcp.WithBoolean("hints", mcp.Description("Show hints after repeated failures, defaults to true")),
		mcp.WithOutputSchema[runner.View](),
	), mcp.NewStructuredToolHandler(s.StartSession))

	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Get the current step, terminal lines, and flags of a session."),
		sessionID,
		mcp.WithOutputSchema[runner.View](),
	), mcp.NewStructuredToolHandler(s.GetState))

	s.mcpServer.AddTool(mcp.NewTool("submit_command",
		mcp.WithDescription("Type a git command into the lesson terminal."),
		sessionID,
		mcp.WithString("input", mcp.Required(), mcp.Description("Command line, e.g. git status")),
		mcp.WithOutputSchema[runner.View](),
	), mcp.NewStructuredToolHandler(s.SubmitCommand))

	s.mcpServer.AddTool(mcp.NewTool("acknowledge",
		mcp.WithDescription("Advance past a dialog line."),
		sessionID,
		mcp.WithOutputSchema[runner.View](),
	), mcp.NewStructuredToolHandler(s.Acknowledge))

	s.mcpServer.AddTool(mcp.NewTool("elapse",
		mcp.WithDescription("Finish the running cinematic."),
		sessionID,
		mcp.WithOutputSchema[runner.View](),
	), mcp.NewStructuredToolHandler(s.Elapse))

	s.mcpServer.AddTool(mcp.NewTool("dismiss",
		mcp.WithDescription("Dismiss a concept card. An empty key acts as a click."),
		sessionID,
		mcp.WithString("key", mcp.Description("Key pressed, e.g. Enter")),
		mcp.WithOutputSchema[runner.View](),
	), mcp.NewStructuredToolHandler(s.Dismiss))

	s.mcpServer.AddTool(mcp.NewTool("confirm_edit",
		mcp.WithDescription("Confirm the editor content of the current step."),
		sessionID,
		mcp.WithString("source", mcp.Description("player (default) or external")),
		mcp.WithOutputSchema[runner.View](),
	), mcp.NewStructuredToolHandler(s.ConfirmEdit))
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ActsURI, "Playable acts",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.acts()
		if err != nil {
			return nil, err
		}
		data, _ := json.Marshal(map[string][]int{"acts": ids})
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: ActsURI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})
}

type actLister interface {
	Acts() ([]int, error)
}

func (s *Server) acts() ([]int, error) {
	l, ok := s.manager.Engine().(actLister)
	if !ok {
		return nil, errors.New("engine cannot list acts")
	}
	return l.Acts()
}

func (s *Server) handleListActs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.acts()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, _ := json.Marshal(ids)
	return mcp.NewToolResultText(string(data)), nil
}

// GetGraph returns the steps of an act.
func (s *Server) GetGraph(ctx context.Context, request mcp.CallToolRequest, args GraphArgs) ([]domain.Step, error) {
	return s.manager.Engine().Inspect(args.ActID)
}

// StartSession starts (or restarts) a session.
func (s *Server) StartSession(ctx context.Context, request mcp.CallToolRequest, args StartArgs) (runner.View, error) {
	if args.ActID == 0 {
		args.ActID = 1
	}
	opts := domain.StartOptions{HintsEnabled: true}
	if args.Hints != nil {
		opts.HintsEnabled = *args.Hints
	}
	state, err := s.manager.Start(ctx, args.SessionID, args.ActID, opts)
	if err != nil {
		return runner.View{}, err
	}
	s.logger.Info("mcp session started", "session_id", state.SessionID, "act_id", state.ActID)
	return s.view(state, domain.Diff(nil, state))
}

// GetState returns the view of a saved session.
func (s *Server) GetState(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (runner.View, error) {
	state, err := s.manager.Load(ctx, args.SessionID)
	if err != nil {
		return runner.View{}, err
	}
	return s.view(state, nil)
}

// SubmitCommand sanitizes input and submits it to the current terminal step.
func (s *Server) SubmitCommand(ctx context.Context, request mcp.CallToolRequest, args CommandArgs) (runner.View, error) {
	input, err := runner.SanitizeInput(args.Input)
	if err != nil {
		s.logger.Warn("mcp input rejected", "err", err, "size", len(args.Input))
		return runner.View{}, fmt.Errorf("input rejected: %w", err)
	}
	engine := s.manager.Engine()
	return s.apply(ctx, args.SessionID, func(ctx context.Context, st *domain.LessonState) (*domain.LessonState, error) {
		return engine.SubmitCommand(ctx, st, input)
	})
}

// Acknowledge advances a dialog step.
func (s *Server) Acknowledge(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (runner.View, error) {
	return s.apply(ctx, args.SessionID, s.manager.Engine().Acknowledge)
}

// Elapse finishes a cinematic step.
func (s *Server) Elapse(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (runner.View, error) {
	return s.apply(ctx, args.SessionID, s.manager.Engine().Elapse)
}

// Dismiss dismisses a concept step.
func (s *Server) Dismiss(ctx context.Context, request mcp.CallToolRequest, args DismissArgs) (runner.View, error) {
	engine := s.manager.Engine()
	return s.apply(ctx, args.SessionID, func(ctx context.Context, st *domain.LessonState) (*domain.LessonState, error) {
		return engine.Dismiss(ctx, st, args.Key)
	})
}

// ConfirmEdit confirms an editor step.
func (s *Server) ConfirmEdit(ctx context.Context, request mcp.CallToolRequest, args ConfirmArgs) (runner.View, error) {
	source := domain.SourcePlayer
	switch args.Source {
	case "", string(domain.SourcePlayer):
	case string(domain.SourceExternal):
		source = domain.SourceExternal
	default:
		return runner.View{}, fmt.Errorf("unknown source %q", args.Source)
	}
	engine := s.manager.Engine()
	return s.apply(ctx, args.SessionID, func(ctx context.Context, st *domain.LessonState) (*domain.LessonState, error) {
		return engine.ConfirmEdit(ctx, st, source)
	})
}

func (s *Server) apply(ctx context.Context, id string, action session.Action) (runner.View, error) {
	state, diff, err := s.manager.Apply(ctx, id, action)
	if err != nil {
		return runner.View{}, err
	}
	return s.view(state, diff)
}

func (s *Server) view(state *domain.LessonState, diff *domain.StateDiff) (runner.View, error) {
	v, err := runner.Render(s.manager.Engine(), state, diff)
	if err != nil {
		return runner.View{}, err
	}
	return *v, nil
}
