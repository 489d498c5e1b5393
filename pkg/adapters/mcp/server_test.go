package mcp_test

import (
	"context"
	"testing"

	"github.com/aretw0/gitquest"
	mcpAdapter "github.com/aretw0/gitquest/pkg/adapters/mcp"
	"github.com/aretw0/gitquest/pkg/adapters/memory"
	"github.com/aretw0/gitquest/pkg/domain"
	"github.com/aretw0/gitquest/pkg/dsl"
	"github.com/aretw0/gitquest/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *mcpAdapter.Server {
	t.Helper()
	b := dsl.New(1)
	b.Dialog("hello", "", "Hi").Then("init")
	b.Terminal("init", `^git init$`).Success("Initialized.").Then("fix")
	b.Editor("fix", "main.go", "broken", "fixed").Then("card")
	b.Concept("card", "repo", "").Finish()
	loader, err := dsl.Loader(b)
	require.NoError(t, err)
	engine, err := gitquest.New(gitquest.WithLoader(loader))
	require.NoError(t, err)
	return mcpAdapter.NewServer(session.NewManager(engine, memory.NewStore()), nil)
}

func TestServer_PlaysAct(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	v, err := s.StartSession(ctx, req, mcpAdapter.StartArgs{SessionID: "agent"})
	require.NoError(t, err)
	assert.Equal(t, "hello", v.Step.ID)
	assert.Equal(t, 1, v.State.ActID)

	_, err = s.SubmitCommand(ctx, req, mcpAdapter.CommandArgs{SessionID: "agent", Input: "git init"})
	assert.ErrorIs(t, err, domain.ErrActionNotAllowed)

	v, err = s.Acknowledge(ctx, req, mcpAdapter.SessionArgs{SessionID: "agent"})
	require.NoError(t, err)
	assert.Equal(t, "init", v.Step.ID)

	v, err = s.SubmitCommand(ctx, req, mcpAdapter.CommandArgs{SessionID: "agent", Input: "  git init\x00 "})
	require.NoError(t, err)
	assert.Equal(t, "fix", v.Step.ID)
	assert.Equal(t, 1, v.Flags.Commands)
	require.NotNil(t, v.Diff)
	assert.NotEmpty(t, v.Diff.Lines)

	_, err = s.ConfirmEdit(ctx, req, mcpAdapter.ConfirmArgs{SessionID: "agent", Source: "robot"})
	assert.Error(t, err)

	v, err = s.ConfirmEdit(ctx, req, mcpAdapter.ConfirmArgs{SessionID: "agent"})
	require.NoError(t, err)
	assert.Equal(t, "card", v.Step.ID)

	v, err = s.Dismiss(ctx, req, mcpAdapter.DismissArgs{SessionID: "agent"})
	require.NoError(t, err)
	assert.True(t, v.Flags.Completed)

	v, err = s.GetState(ctx, req, mcpAdapter.SessionArgs{SessionID: "agent"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, v.State.Status)
	assert.Nil(t, v.Diff)
}

func TestServer_Errors(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	_, err := s.GetState(ctx, req, mcpAdapter.SessionArgs{SessionID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = s.StartSession(ctx, req, mcpAdapter.StartArgs{ActID: 9})
	assert.ErrorIs(t, err, domain.ErrActNotFound)

	_, err = s.Elapse(ctx, req, mcpAdapter.SessionArgs{SessionID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestServer_Graph(t *testing.T) {
	s := newServer(t)
	steps, err := s.GetGraph(context.Background(), mcp.CallToolRequest{}, mcpAdapter.GraphArgs{ActID: 1})
	require.NoError(t, err)
	assert.Len(t, steps, 4)
	assert.NotNil(t, s.MCPServer())
}
