package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/gitquest/pkg/domain"
	"github.com/aretw0/gitquest/pkg/ports"
)

// Mask replaces every redacted match.
const Mask = "***"

// DefaultRedactPatterns masks credentials embedded in remote URLs and token flags.
var DefaultRedactPatterns = []string{
	`[^\s/:@]+:[^\s/@]+@`,
	`(?i)(token|password)=\S+`,
}

type redactMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware masks matches of patterns in terminal lines before they are saved.
// The in-memory state is never modified. Invalid patterns panic.
func NewRedactMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactMiddleware) Save(ctx context.Context, sessionID string, state *domain.LessonState) error {
	masked := state.Clone()
	for i := range masked.Lines {
		for _, p := range m.patterns {
			masked.Lines[i].Text = p.ReplaceAllString(masked.Lines[i].Text, Mask)
		}
	}
	return m.next.Save(ctx, sessionID, masked)
}

func (m *redactMiddleware) Load(ctx context.Context, sessionID string) (*domain.LessonState, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *redactMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
