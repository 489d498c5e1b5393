// Package yamlfs loads acts and puzzle levels from YAML documents in a file system.
//
// Layout:
//
//	acts/*.yaml    one act per document
//	levels.yaml    merge, rebase, cherry_pick, and boss level lists
//
// Documents are parsed with yaml.v3 and decoded onto the domain types through their
// mapstructure tags. Unknown keys are rejected so typos surface as configuration errors.
package yamlfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/gitquest/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

const (
	actsDir    = "acts"
	levelsFile = "levels.yaml"
)

// Loader implements ports.ActLoader over a file system.
// Acts are decoded once on first access.
type Loader struct {
	fsys fs.FS

	once sync.Once
	acts map[int]*domain.Act
	err  error
}

// New creates a loader reading from fsys.
func New(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// NewDir creates a loader reading from a directory on disk.
func NewDir(dir string) *Loader {
	return New(os.DirFS(dir))
}

// GetAct returns the act with the given ID.
func (l *Loader) GetAct(id int) (*domain.Act, error) {
	if err := l.load(); err != nil {
		return nil, err
	}
	act, ok := l.acts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrActNotFound, id)
	}
	return act, nil
}

// ListActs returns all act IDs in ascending order.
func (l *Loader) ListActs() ([]int, error) {
	if err := l.load(); err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(l.acts))
	for id := range l.acts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

func (l *Loader) load() error {
	l.once.Do(func() {
		l.acts, l.err = l.readActs()
	})
	return l.err
}

func (l *Loader) readActs() (map[int]*domain.Act, error) {
	entries, err := fs.ReadDir(l.fsys, actsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list acts: %w", err)
	}

	acts := make(map[int]*domain.Act)
	origin := make(map[int]string)
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		name := path.Join(actsDir, entry.Name())

		var act domain.Act
		if err := decodeFile(l.fsys, name, &act); err != nil {
			errs = append(errs, &domain.ConfigError{ActID: act.ID, Reason: fmt.Sprintf("%s: %v", name, err)})
			continue
		}
		if prev, dup := origin[act.ID]; dup {
			errs = append(errs, &domain.ConfigError{ActID: act.ID, Reason: fmt.Sprintf("declared in both %s and %s", prev, name)})
			continue
		}
		origin[act.ID] = name
		acts[act.ID] = &act
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return acts, nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// decodeFile parses a YAML document and decodes it onto out.
func decodeFile(fsys fs.FS, name string, out any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid yaml: %w", err)
	}
	return decode(raw, out)
}

func decode(raw any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		TagName:     "mapstructure",
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}
