package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"mediaforge/internal/fileutil"
	"mediaforge/internal/logging"
	"mediaforge/internal/schema"
)

const schemaKey = "schema"

// Store owns the profile collection and its on-disk JSON document. Every
// successful mutation rewrites the whole document before returning.
//
// A Store is not safe for concurrent use. Separate processes sharing the file
// are serialized per write by an advisory lock, but the last writer wins.
type Store struct {
	path     string
	lock     *flock.Flock
	logger   *slog.Logger
	schema   schema.Schema
	profiles Collection
	// foreign keeps top-level keys this version does not understand.
	foreign map[string]json.RawMessage
}

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a logger for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open loads the profile document at path. A missing document is created from
// the built-in defaults; a corrupt one is moved aside and rebuilt. Legacy
// records are migrated and the result persisted.
func Open(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.New("profile store path required")
	}
	s := &Store{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "profiles")
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing document path.
func (s *Store) Path() string { return s.path }

func (s *Store) load() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create profile directory: %w", err)
	}

	data, err := s.readLocked()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.resetToDefaults()
		s.logger.Info("created default profile collection", logging.String("path", s.path))
		return s.save()
	case err != nil:
		return fmt.Errorf("read profiles: %w", err)
	}

	if err := s.decode(data); err != nil {
		backup := s.path + ".corrupt-" + time.Now().UTC().Format("20060102T150405")
		if renameErr := os.Rename(s.path, backup); renameErr != nil {
			backup = ""
		}
		logging.WarnWithContext(s.logger, "profile collection unreadable; rebuilt from defaults", "profiles_corrupt",
			logging.String("path", s.path),
			logging.String("backup", backup),
			logging.Error(err),
			logging.String(logging.FieldImpact, "custom profiles are no longer listed"),
			logging.String(logging.FieldErrorHint, "inspect the backup file and re-import profiles"),
		)
		s.resetToDefaults()
		return s.save()
	}

	changed := false
	if s.schema == nil {
		s.schema = schema.Default()
		changed = true
	} else if s.schema.Merge(schema.Default()) {
		changed = true
	}
	if migrated := s.profiles.Migrate(); migrated > 0 {
		s.logger.Info("migrated legacy profiles", logging.Int("count", migrated))
		changed = true
	}
	if changed {
		return s.save()
	}
	return nil
}

func (s *Store) resetToDefaults() {
	s.schema = schema.Default()
	s.profiles = DefaultCollection()
	s.foreign = nil
}

func (s *Store) readLocked() ([]byte, error) {
	if err := s.lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock profiles: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()
	return os.ReadFile(s.path)
}

func (s *Store) decode(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return err
	}
	if top == nil {
		return errors.New("profile document is not an object")
	}
	profiles := Collection{CategoryAudio: {}, CategoryVideo: {}}
	var sch schema.Schema
	foreign := map[string]json.RawMessage{}
	for key, raw := range top {
		switch key {
		case schemaKey:
			if err := json.Unmarshal(raw, &sch); err != nil {
				return fmt.Errorf("decode schema: %w", err)
			}
		case string(CategoryAudio), string(CategoryVideo):
			var named map[string]*Profile
			if err := json.Unmarshal(raw, &named); err != nil {
				return fmt.Errorf("decode %s profiles: %w", key, err)
			}
			for name, p := range named {
				if p == nil {
					continue
				}
				profiles[Category(key)][name] = *p
			}
		default:
			foreign[key] = raw
		}
	}
	s.schema = sch
	s.profiles = profiles
	s.foreign = foreign
	return nil
}

func (s *Store) encode() ([]byte, error) {
	top := make(map[string]any, 3+len(s.foreign))
	for key, raw := range s.foreign {
		top[key] = raw
	}
	for _, category := range Categories() {
		named := s.profiles[category]
		if named == nil {
			named = map[string]Profile{}
		}
		top[string(category)] = named
	}
	top[schemaKey] = s.schema
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	if err := enc.Encode(top); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// save writes the document atomically under the exclusive lock.
func (s *Store) save() error {
	data, err := s.encode()
	if err != nil {
		return fmt.Errorf("encode profiles: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock profiles: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("save profiles: %w", err)
	}
	return nil
}

// mutate applies fn to a copy of the collection and persists it. The
// in-memory state only changes when the write succeeds.
func (s *Store) mutate(fn func(Collection) error) error {
	previous := s.profiles
	next := s.profiles.Clone()
	if err := fn(next); err != nil {
		return err
	}
	s.profiles = next
	if err := s.save(); err != nil {
		s.profiles = previous
		return err
	}
	return nil
}

// Schema returns a copy of the active schema.
func (s *Store) Schema() schema.Schema {
	return s.schema.Clone()
}

// Get returns a copy of the named profile.
func (s *Store) Get(category Category, name string) (Profile, error) {
	p, ok := s.profiles[category][name]
	if !ok {
		return Profile{}, notFound(category, name)
	}
	return p.Clone(), nil
}

// Add validates p and stores it under name, replacing any existing profile of
// that name. A video profile's audio speed is synchronized to its speed
// control before validation.
func (s *Store) Add(category Category, name string, p Profile) error {
	if _, err := ParseCategory(string(category)); err != nil {
		return err
	}
	if name == "" {
		return errors.New("profile name required")
	}
	candidate := p.Clone()
	normalize(category, &candidate)
	if err := Validate(s.schema, category, candidate); err != nil {
		return err
	}
	return s.mutate(func(c Collection) error {
		if c[category] == nil {
			c[category] = map[string]Profile{}
		}
		c[category][name] = candidate
		return nil
	})
}

// Remove deletes the named profile.
func (s *Store) Remove(category Category, name string) error {
	if _, ok := s.profiles[category][name]; !ok {
		return notFound(category, name)
	}
	return s.mutate(func(c Collection) error {
		delete(c[category], name)
		return nil
	})
}

// Rename moves a profile to a new name within its category.
func (s *Store) Rename(category Category, oldName, newName string) error {
	p, err := s.Get(category, oldName)
	if err != nil {
		return err
	}
	if newName == "" {
		return errors.New("new profile name required")
	}
	if oldName == newName {
		return nil
	}
	return s.mutate(func(c Collection) error {
		c[category][newName] = p
		delete(c[category], oldName)
		return nil
	})
}

// List returns the sorted profile names per category. An empty category
// argument lists every category.
func (s *Store) List(category Category) map[Category][]string {
	if category != "" {
		return map[Category][]string{category: s.profiles.Names(category)}
	}
	out := make(map[Category][]string, len(s.profiles))
	for _, c := range Categories() {
		out[c] = s.profiles.Names(c)
	}
	return out
}

// EditParameter changes one "section.param" value in a stored profile. The
// value must belong to the parameter's option list unless it is "copy"; speed
// multipliers never accept "copy". Editing either speed of a video profile
// updates both so the streams stay synchronized.
func (s *Store) EditParameter(category Category, name, path, value string) error {
	current, ok := s.profiles[category][name]
	if !ok {
		return notFound(category, name)
	}
	sectionName, param, err := SplitParameterPath(path)
	if err != nil {
		return err
	}
	if _, ok := current.Lookup(sectionName, param); !ok {
		return fmt.Errorf("%w: %s in %s/%s", ErrUnknownParameter, path, category, name)
	}

	key := schema.OptionKey(sectionName, param)
	if value != schema.Copy || schema.IsSpeedKey(key) {
		if s.schema.Has(key) && !s.schema.Allows(key, value) {
			return &ValidationError{Category: category, Field: path, Value: value, Reason: "not in " + key}
		}
	}

	updated := current.Clone()
	if err := updated.Assign(sectionName, param, Setting(value)); err != nil {
		return err
	}
	if category == CategoryVideo && isSpeedParam(param) {
		if updated.Video != nil {
			updated.Video.SpeedControl = Setting(value)
		}
		if updated.Audio != nil {
			updated.Audio.AudioSpeed = Setting(value)
		}
	}
	if err := Validate(s.schema, category, updated); err != nil {
		return err
	}
	return s.mutate(func(c Collection) error {
		c[category][name] = updated
		return nil
	})
}

func isSpeedParam(param string) bool {
	return param == "speed_control" || param == "audio_speed"
}

// ParameterOptions returns the schema options for a "section.param" path.
func (s *Store) ParameterOptions(path string) ([]string, error) {
	sectionName, param, err := SplitParameterPath(path)
	if err != nil {
		return nil, err
	}
	return s.schema.ParameterOptions(sectionName, param), nil
}

// Export writes one profile as an indented JSON document.
func (s *Store) Export(category Category, name string, w io.Writer) error {
	p, err := s.Get(category, name)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(p)
}

// ExportFile writes one profile to path.
func (s *Store) ExportFile(category Category, name, path string) error {
	var buf bytes.Buffer
	if err := s.Export(category, name, &buf); err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// ImportFile reads a single profile document. The result is not stored; pass
// it to Add.
func ImportFile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return p, nil
}

// Count returns the number of stored profiles per category.
func (s *Store) Count() map[Category]int {
	out := make(map[Category]int, len(s.profiles))
	for _, c := range Categories() {
		out[c] = len(s.profiles[c])
	}
	return out
}
