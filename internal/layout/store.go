package layout

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/jonboulle/clockwork"
)

const backupTimeLayout = "20060102-150405"

// StoreOptions configures a Store.
type StoreOptions struct {
	Path     string
	Resolver Resolver
	Defaults Defaults
	Clock    clockwork.Clock
	Logger   *slog.Logger
}

// Store loads and saves the layout file at a fixed path.
type Store struct {
	path     string
	resolver Resolver
	defaults Defaults
	clock    clockwork.Clock
	logger   *slog.Logger

	mu      sync.Mutex
	corrupt bool

	// synced is set once the file's state is known; disk holds the bytes
	// last read or written, nil when the file was absent.
	synced bool
	disk   []byte
}

// LoadResult is the outcome of a load. Model is always usable.
type LoadResult struct {
	Model    *Model
	Warnings []Warning
	// Missing is set when no layout file existed.
	Missing bool
	// Corrupt holds the parse failure when the file could not be used.
	Corrupt *CorruptLayoutError
}

func NewStore(opts StoreOptions) *Store {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Defaults.ProductName == "" {
		opts.Defaults = BuiltinDefaults()
	}
	return &Store{
		path:     opts.Path,
		resolver: opts.Resolver,
		defaults: opts.Defaults,
		clock:    opts.Clock,
		logger:   opts.Logger,
	}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Defaults() Defaults {
	return s.defaults
}

// Load reads the layout file. It never fails: a missing, unreadable or
// corrupt file yields the default model, and the file is left as it was.
func (s *Store) Load() LoadResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.corrupt = false
	s.synced = false
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.synced, s.disk = true, nil
		s.logger.Debug("no layout file, using default layout", "path", s.path)
		return LoadResult{Model: DefaultModel(s.defaults), Missing: true}
	}
	if err != nil {
		w := Warning{Kind: WarnUnreadableLayout, Err: fmt.Errorf("failed to read layout %q: %w", s.path, err)}
		s.logger.Warn("layout file unreadable, using default layout", "path", s.path, "error", err)
		return LoadResult{Model: DefaultModel(s.defaults), Warnings: []Warning{w}}
	}

	s.synced, s.disk = true, data
	m, warnings, err := Decode(data, s.resolver, s.defaults)
	if err != nil {
		var corrupt *CorruptLayoutError
		if !errors.As(err, &corrupt) {
			corrupt = &CorruptLayoutError{Err: err}
		}
		corrupt.Path = s.path
		s.corrupt = true
		s.logger.Warn("layout file is corrupt, using default layout", "path", s.path, "error", corrupt.Err)
		return LoadResult{
			Model:    DefaultModel(s.defaults),
			Warnings: []Warning{{Kind: WarnCorruptLayout, Err: corrupt}},
			Corrupt:  corrupt,
		}
	}

	for _, w := range warnings {
		s.logger.Warn("layout load warning", "path", s.path, "warning", w.String())
	}
	s.logger.Info("layout loaded",
		"path", s.path,
		"screens", m.Screens.Len(),
		"widgets", m.Geometry.Len(),
		"warnings", len(warnings))
	return LoadResult{Model: m, Warnings: warnings}
}

// Save writes the model atomically. A file found corrupt on the last load is
// first moved aside so its contents stay recoverable.
func (s *Store) Save(m *Model) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	data, err := Encode(m, s.defaults.ProductName, now)
	if err != nil {
		return err
	}

	if s.corrupt {
		backup := fmt.Sprintf("%s.corrupt-%s", s.path, now.Format(backupTimeLayout))
		if err := os.Rename(s.path, backup); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to back up corrupt layout %q: %w", s.path, err)
		}
		s.logger.Warn("moved corrupt layout aside", "path", s.path, "backup", backup)
		s.corrupt = false
	}

	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		s.synced = false
		return err
	}
	s.synced, s.disk = true, data
	s.logger.Debug("layout saved", "path", s.path, "bytes", len(data))
	return nil
}

// Changed reports whether the file differs from what this store last loaded
// or saved.
func (s *Store) Changed() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return !s.synced || s.disk != nil, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read layout %q: %w", s.path, err)
	}
	return !s.synced || s.disk == nil || !bytes.Equal(data, s.disk), nil
}

// writeFileAtomic replaces path with data via a synced temp file in the same
// directory and a rename.
func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create layout directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %q: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write layout %q: %w", tmpPath, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync layout %q: %w", tmpPath, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close layout %q: %w", tmpPath, err)
	}
	if err = os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to chmod layout %q: %w", tmpPath, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to finalize layout %q: %w", path, err)
	}
	return nil
}
