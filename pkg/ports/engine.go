package ports

import (
	"context"

	"github.com/aretw0/gitquest/pkg/domain"
)

// LessonEngine is the stateless progression core as seen by adapters (HTTP, MCP, terminal).
// Every action takes the current state and returns the next one; the input is never mutated.
type LessonEngine interface {
	Start(ctx context.Context, sessionID string, actID int, opts domain.StartOptions) (*domain.LessonState, error)
	Current(state *domain.LessonState) (*domain.Step, error)

	SubmitCommand(ctx context.Context, state *domain.LessonState, input string) (*domain.LessonState, error)
	Acknowledge(ctx context.Context, state *domain.LessonState) (*domain.LessonState, error)
	ConfirmEdit(ctx context.Context, state *domain.LessonState, source domain.ConfirmSource) (*domain.LessonState, error)
	Dismiss(ctx context.Context, state *domain.LessonState, key string) (*domain.LessonState, error)
	Elapse(ctx context.Context, state *domain.LessonState) (*domain.LessonState, error)

	// Inspect returns the steps of an act for introspection and graph rendering.
	Inspect(actID int) ([]domain.Step, error)
}
