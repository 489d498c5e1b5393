package domain

// ConfirmSource identifies who reports an editor fix.
type ConfirmSource string

const (
	// SourcePlayer is a fix the player applied in the editor.
	SourcePlayer ConfirmSource = "player"
	// SourceExternal is a confirmation from the host (the only accepted source for readonly editors).
	SourceExternal ConfirmSource = "external"
)

// ContinueKeys lists the inputs that dismiss a concept step. They are all equivalent.
var ContinueKeys = []string{"click", "Enter", "Space", "Escape"}

// IsContinueKey reports whether key dismisses a concept step.
func IsContinueKey(key string) bool {
	for _, k := range ContinueKeys {
		if k == key {
			return true
		}
	}
	return false
}

// StartOptions configures a new lesson session.
type StartOptions struct {
	// HintsEnabled shows the terminal hint after repeated failures.
	HintsEnabled bool
}
