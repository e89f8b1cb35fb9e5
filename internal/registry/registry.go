// Package registry loads droid definitions from the user and project
// directories and resolves name collisions between the two scopes.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/zjrosen/droidctl/internal/droid"
)

// ErrNotFound is returned when a lookup by name matches no loaded droid.
var ErrNotFound = errors.New("droid not found")

// ErrExists is returned when template creation targets a name whose file
// already exists at the chosen scope.
var ErrExists = errors.New("droid file already exists")

// SkipRecord describes a file excluded from the effective collection by
// the most recent load.
type SkipRecord struct {
	Path string
	Err  error
}

// Config carries the directories a Registry scans. The logger may be left
// zero for silent operation.
type Config struct {
	UserDir    string
	ProjectDir string
	Logger     zerolog.Logger
}

// Registry holds the effective droid collection built from the user and
// project directories. A project droid overrides a same-named user droid
// unconditionally. Accessors are safe for concurrent readers; Load builds
// a fresh collection and swaps it in under the write lock, so readers
// never observe a half-populated collection.
type Registry struct {
	userDir    string
	projectDir string
	log        zerolog.Logger

	mu       sync.RWMutex
	byName   map[string]*droid.Droid
	order    []string
	shadowed map[string]*droid.Droid
	skipped  []SkipRecord
}

// New creates a Registry over the given directories. Nothing is loaded
// until Load is called.
func New(cfg Config) *Registry {
	return &Registry{
		userDir:    cfg.UserDir,
		projectDir: cfg.ProjectDir,
		log:        cfg.Logger,
		byName:     make(map[string]*droid.Droid),
		shadowed:   make(map[string]*droid.Droid),
	}
}

// Load scans the user directory, then the project directory, and replaces
// the held collection. Files that fail to parse are skipped and recorded,
// never fatal. A missing directory yields zero droids; an existing but
// unreadable one aborts the load.
func (r *Registry) Load() error {
	byName := make(map[string]*droid.Droid)
	shadowed := make(map[string]*droid.Droid)
	var order []string
	var skipped []SkipRecord

	insert := func(d *droid.Droid) {
		if prev, ok := byName[d.Name]; ok {
			if prev.Scope != d.Scope {
				shadowed[d.Name] = prev
			}
			// Drop the earlier position so the override lands at the end.
			for i, name := range order {
				if name == d.Name {
					order = append(order[:i], order[i+1:]...)
					break
				}
			}
		}
		byName[d.Name] = d
		order = append(order, d.Name)
	}

	if err := r.loadDir(r.userDir, droid.ScopeUser, insert, &skipped); err != nil {
		return err
	}
	if err := r.loadDir(r.projectDir, droid.ScopeProject, insert, &skipped); err != nil {
		return err
	}

	r.mu.Lock()
	r.byName = byName
	r.order = order
	r.shadowed = shadowed
	r.skipped = skipped
	r.mu.Unlock()

	r.log.Debug().
		Int("droids", len(order)).
		Int("skipped", len(skipped)).
		Msg("registry loaded")
	return nil
}

func (r *Registry) loadDir(dir string, scope droid.Scope, insert func(*droid.Droid), skipped *[]SkipRecord) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			// Directory doesn't exist - not an error, just no droids at this scope.
			return nil
		}
		return fmt.Errorf("checking droid directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("droid path is not a directory: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading droid directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		d, err := droid.ParseFile(path)
		if err != nil {
			*skipped = append(*skipped, SkipRecord{Path: path, Err: err})
			r.log.Warn().Err(err).Str("path", path).Msg("skipping droid file")
			continue
		}

		d.Scope = scope
		insert(d)
	}

	return nil
}

// List returns the effective collection in load order: user droids not
// overridden by the project, then project droids.
func (r *Registry) List() []*droid.Droid {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*droid.Droid, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Get looks up a droid by exact name.
func (r *Registry) Get(name string) (*droid.Droid, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byName[name]
	return d, ok
}

// Suggest returns the names of proactive droids relevant to the given
// context text. A droid matches when its description appears in the
// context, when any trigger appears in the context, or when any trigger
// appears in the droid's own name. Comparisons are lowercased; empty
// descriptions and triggers never match. Results follow List order with
// no ranking.
func (r *Registry) Suggest(contextText string) []string {
	lowered := strings.ToLower(contextText)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for _, name := range r.order {
		d := r.byName[name]
		if !d.Proactive {
			continue
		}
		if suggestMatch(d, lowered) {
			names = append(names, d.Name)
		}
	}
	return names
}

func suggestMatch(d *droid.Droid, context string) bool {
	if desc := strings.ToLower(d.Description); desc != "" && strings.Contains(context, desc) {
		return true
	}
	name := strings.ToLower(d.Name)
	for _, trigger := range d.Triggers {
		t := strings.ToLower(trigger)
		if t == "" {
			continue
		}
		if strings.Contains(context, t) || strings.Contains(name, t) {
			return true
		}
	}
	return false
}

// CreateTemplate writes a starter droid file for name at the given scope
// and returns the written path. The target directory is created when
// missing. Only the directory is consulted, not the loaded collection; an
// existing file for the name fails with ErrExists. The in-memory
// collection is not updated; call Load to pick up the new file.
func (r *Registry) CreateTemplate(name string, scope droid.Scope) (string, error) {
	if !droid.ValidName(name) {
		return "", fmt.Errorf("invalid droid name %q: %w", name, droid.ErrInvalidName)
	}

	dir, err := r.dirFor(scope)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating droid directory: %w", err)
	}

	path := filepath.Join(dir, name+".md")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%w: %s", ErrExists, path)
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("checking droid file: %w", err)
	}

	if err := writeFileAtomic(path, []byte(droid.Template(name))); err != nil {
		return "", err
	}
	return path, nil
}

// Delete removes the backing file of the named droid. The in-memory entry
// survives until the next Load, so a Get after Delete still returns the
// stale droid.
func (r *Registry) Delete(name string) error {
	d, ok := r.Get(name)
	if !ok {
		return fmt.Errorf("droid %q: %w", name, ErrNotFound)
	}
	if err := os.Remove(d.SourcePath); err != nil {
		return fmt.Errorf("removing droid file: %w", err)
	}
	return nil
}

// Count reports the size of the effective collection.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}

// Skipped returns the files the last Load excluded, with reasons.
func (r *Registry) Skipped() []SkipRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SkipRecord, len(r.skipped))
	copy(out, r.skipped)
	return out
}

// Shadowed returns the user droid hidden by a project override of the
// same name, if any.
func (r *Registry) Shadowed(name string) (*droid.Droid, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.shadowed[name]
	return d, ok
}

func (r *Registry) dirFor(scope droid.Scope) (string, error) {
	switch scope {
	case droid.ScopeUser:
		return r.userDir, nil
	case droid.ScopeProject:
		return r.projectDir, nil
	default:
		return "", fmt.Errorf("unknown scope: %s", scope)
	}
}

// writeFileAtomic writes data via a temp file in the same directory
// followed by a rename, so a failed write never leaves a truncated file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	temp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
