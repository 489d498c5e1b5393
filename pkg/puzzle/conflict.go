package puzzle

import (
	"fmt"
	"slices"

	"github.com/aretw0/gitquest/pkg/domain"
)

// Choice is the resolution picked for a conflict hunk.
type Choice string

const (
	ChoiceCurrent  Choice = "current"
	ChoiceIncoming Choice = "incoming"
	ChoiceBoth     Choice = "both"
)

// Valid reports whether c is one of the three resolutions.
func (c Choice) Valid() bool {
	return c == ChoiceCurrent || c == ChoiceIncoming || c == ChoiceBoth
}

// Hunk is one conflicting region of a file.
type Hunk struct {
	ID       string `json:"id" yaml:"id" mapstructure:"id"`
	Current  string `json:"current" yaml:"current" mapstructure:"current"`
	Incoming string `json:"incoming" yaml:"incoming" mapstructure:"incoming"`
	Solution Choice `json:"solution" yaml:"solution" mapstructure:"solution"`

	Resolved bool   `json:"resolved" yaml:"-" mapstructure:"-"`
	Chosen   Choice `json:"chosen,omitempty" yaml:"-" mapstructure:"-"`
}

// Correct reports whether the hunk was resolved with the authored choice.
func (h Hunk) Correct() bool {
	return h.Resolved && h.Chosen == h.Solution
}

// Merged returns the content the chosen resolution produces.
func (h Hunk) Merged() string {
	switch h.Chosen {
	case ChoiceCurrent:
		return h.Current
	case ChoiceIncoming:
		return h.Incoming
	case ChoiceBoth:
		return h.Current + "\n" + h.Incoming
	}
	return ""
}

// ConflictFile is a file with one or more conflicting hunks.
type ConflictFile struct {
	Name  string `json:"name" yaml:"name" mapstructure:"name"`
	Hunks []Hunk `json:"hunks" yaml:"hunks" mapstructure:"hunks"`
}

// Resolved reports whether every hunk has been resolved, right or wrong.
func (f ConflictFile) Resolved() bool {
	for _, h := range f.Hunks {
		if !h.Resolved {
			return false
		}
	}
	return true
}

// Check verifies that the file is well-formed authored content.
func (f ConflictFile) Check() error {
	if len(f.Hunks) == 0 {
		return fmt.Errorf("conflict file %q has no hunks", f.Name)
	}
	seen := make(map[string]bool)
	for _, h := range f.Hunks {
		if seen[h.ID] {
			return fmt.Errorf("conflict file %q: duplicate hunk %q", f.Name, h.ID)
		}
		seen[h.ID] = true
		if !h.Solution.Valid() {
			return fmt.Errorf("conflict file %q: hunk %q: %w %q", f.Name, h.ID, ErrInvalidChoice, h.Solution)
		}
	}
	return nil
}

// HunkResolved is the typed signal emitted after every resolution.
type HunkResolved struct {
	File         string   `json:"file"`
	HunkID       string   `json:"hunk_id"`
	Choice       Choice   `json:"choice"`
	Correct      bool     `json:"correct"`
	FileResolved bool     `json:"file_resolved"`
	AllResolved  bool     `json:"all_resolved"`
	Progress     Progress `json:"progress"`
}

// Progress counts are recomputed on every call.
type Progress struct {
	ConflictsResolved int `json:"conflicts_resolved"`
	ConflictsTotal    int `json:"conflicts_total"`
	FilesResolved     int `json:"files_resolved"`
	FilesTotal        int `json:"files_total"`
	Correct           int `json:"correct"`
}

// ConflictSystem holds the files of one boss encounter.
// It is not safe for concurrent use; the owning encounter serializes access.
type ConflictSystem struct {
	files     []ConflictFile
	listeners []func(HunkResolved)
}

// NewConflictSystem creates a system loaded with copies of files.
func NewConflictSystem(files ...ConflictFile) *ConflictSystem {
	c := &ConflictSystem{}
	c.Load(files)
	return c
}

// Load replaces the files with unresolved copies. Listeners are kept.
func (c *ConflictSystem) Load(files []ConflictFile) {
	c.files = cloneFiles(files)
	c.Reset()
}

// Reset clears every resolution so the encounter can be replayed.
func (c *ConflictSystem) Reset() {
	for i := range c.files {
		for j := range c.files[i].Hunks {
			c.files[i].Hunks[j].Resolved = false
			c.files[i].Hunks[j].Chosen = ""
		}
	}
}

// OnResolved registers a listener for HunkResolved signals.
func (c *ConflictSystem) OnResolved(fn func(HunkResolved)) {
	c.listeners = append(c.listeners, fn)
}

// Resolve records choice on the hunk and reports whether it was the authored one.
// The hunk is marked resolved even when the choice is wrong, so the narrative can continue.
// Errors are only returned for unknown targets or an invalid choice.
func (c *ConflictSystem) Resolve(file, hunkID string, choice Choice) (bool, error) {
	if !choice.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidChoice, choice)
	}
	fi := slices.IndexFunc(c.files, func(f ConflictFile) bool { return f.Name == file })
	if fi < 0 {
		return false, fmt.Errorf("%w: %s", domain.ErrUnknownFile, file)
	}
	f := &c.files[fi]
	hi := slices.IndexFunc(f.Hunks, func(h Hunk) bool { return h.ID == hunkID })
	if hi < 0 {
		return false, fmt.Errorf("%w: %s#%s", domain.ErrUnknownHunk, file, hunkID)
	}

	h := &f.Hunks[hi]
	h.Resolved = true
	h.Chosen = choice
	correct := choice == h.Solution

	ev := HunkResolved{
		File:         file,
		HunkID:       hunkID,
		Choice:       choice,
		Correct:      correct,
		FileResolved: f.Resolved(),
		AllResolved:  c.AllResolved(),
		Progress:     c.Progress(),
	}
	for _, fn := range c.listeners {
		fn(ev)
	}
	return correct, nil
}

// Progress recomputes the resolution counts.
func (c *ConflictSystem) Progress() Progress {
	var p Progress
	p.FilesTotal = len(c.files)
	for _, f := range c.files {
		if f.Resolved() {
			p.FilesResolved++
		}
		for _, h := range f.Hunks {
			p.ConflictsTotal++
			if h.Resolved {
				p.ConflictsResolved++
			}
			if h.Correct() {
				p.Correct++
			}
		}
	}
	return p
}

// FileResolved reports whether the named file is fully resolved.
func (c *ConflictSystem) FileResolved(name string) bool {
	for _, f := range c.files {
		if f.Name == name {
			return f.Resolved()
		}
	}
	return false
}

// AllResolved reports whether every file is resolved. An empty system is not resolved.
func (c *ConflictSystem) AllResolved() bool {
	if len(c.files) == 0 {
		return false
	}
	for _, f := range c.files {
		if !f.Resolved() {
			return false
		}
	}
	return true
}

// Files returns a snapshot of the files and their resolution state.
func (c *ConflictSystem) Files() []ConflictFile {
	return cloneFiles(c.files)
}

func cloneFiles(files []ConflictFile) []ConflictFile {
	out := make([]ConflictFile, len(files))
	for i, f := range files {
		out[i] = ConflictFile{Name: f.Name, Hunks: slices.Clone(f.Hunks)}
	}
	return out
}
