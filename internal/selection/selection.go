package selection

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/gofrs/flock"

	"mediaforge/internal/fileutil"
	"mediaforge/internal/logging"
)

// ErrUnsupported reports a file whose extension is not a known media type.
var ErrUnsupported = errors.New("unsupported media file")

// Store is the persisted selection list.
type Store struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger
	files  []string
}

// Load reads the selection at path. A missing document is an empty
// selection; an unreadable one is discarded with a warning.
func Load(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("selection path required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Store{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logging.NewComponentLogger(logger, "selection"),
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create selection directory: %w", err)
	}
	if err := s.lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock selection: %w", err)
	}
	data, err := os.ReadFile(path)
	_ = s.lock.Unlock()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read selection: %w", err)
	}
	if err := json.Unmarshal(data, &s.files); err != nil {
		logging.WarnWithContext(s.logger, "selection list unreadable; starting empty", "selection_corrupt",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "re-add files with mediaforge select"),
		)
		s.files = nil
	}
	return s, nil
}

// Path returns the backing document path.
func (s *Store) Path() string { return s.path }

// Files returns the selected paths in insertion order.
func (s *Store) Files() []string {
	return slices.Clone(s.files)
}

// Len returns the number of selected files.
func (s *Store) Len() int { return len(s.files) }

// Add appends supported files not already selected and returns how many were
// added. Every path is checked before any is added.
func (s *Store) Add(paths ...string) (int, error) {
	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return 0, fmt.Errorf("resolve %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return 0, fmt.Errorf("stat %s: %w", p, err)
		}
		if info.IsDir() {
			return 0, fmt.Errorf("%s is a directory; use AddDir", p)
		}
		if !IsSupported(abs) {
			return 0, fmt.Errorf("%w: %s", ErrUnsupported, p)
		}
		resolved = append(resolved, abs)
	}
	return s.appendFiles(resolved)
}

// AddDir walks dir recursively and adds every supported file found. It
// returns the number of newly selected files.
func (s *Store) AddDir(dir string) (int, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("resolve %s: %w", dir, err)
	}
	found, err := Scan(root)
	if err != nil {
		return 0, err
	}
	s.logger.Debug("directory scanned", logging.String("dir", root), logging.Int("supported", len(found)))
	return s.appendFiles(found)
}

// Scan returns the supported files below root in lexical walk order.
func Scan(root string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && IsSupported(path) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return found, nil
}

func (s *Store) appendFiles(paths []string) (int, error) {
	next := slices.Clone(s.files)
	added := 0
	for _, p := range paths {
		if slices.Contains(next, p) {
			continue
		}
		next = append(next, p)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := s.write(next); err != nil {
		return 0, err
	}
	return added, nil
}

// Remove drops the given paths from the selection and returns how many were
// present.
func (s *Store) Remove(paths ...string) (int, error) {
	drop := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		drop[p] = struct{}{}
		if abs, err := filepath.Abs(p); err == nil {
			drop[abs] = struct{}{}
		}
	}
	next := make([]string, 0, len(s.files))
	for _, f := range s.files {
		if _, ok := drop[f]; ok {
			continue
		}
		next = append(next, f)
	}
	removed := len(s.files) - len(next)
	if removed == 0 {
		return 0, nil
	}
	if err := s.write(next); err != nil {
		return 0, err
	}
	return removed, nil
}

// Clear empties the selection.
func (s *Store) Clear() error {
	return s.write([]string{})
}

func (s *Store) write(files []string) error {
	if files == nil {
		files = []string{}
	}
	data, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("encode selection: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock selection: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("save selection: %w", err)
	}
	s.files = files
	return nil
}
