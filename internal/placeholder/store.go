package placeholder

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/natefinch/atomic"

	perrors "github.com/marykravets/ks-email-parser/internal/errors"
	"github.com/marykravets/ks-email-parser/internal/logging"
	"github.com/marykravets/ks-email-parser/internal/types"
)

// FileName is the shapes file kept at the root of every source tree.
const FileName = "placeholders_config.json"

const (
	fileIndent       = "    "
	defaultCacheSize = 16
)

// Store reads and writes the shapes file of source roots. Parsed files are
// memoised per source root; Save and Invalidate drop the memoised copy.
// Shapes returned by the store are shared and must be treated as read-only.
type Store struct {
	cache  *lru.Cache[string, Shapes]
	logger logging.Logger
}

// NewStore creates a store caching up to size source roots.
func NewStore(size int, logger logging.Logger) (*Store, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, Shapes](size)
	if err != nil {
		return nil, perrors.NewInternalError(perrors.ErrCodeConfigInvalid, "create shapes cache", err)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Store{
		cache:  cache,
		logger: logger.WithComponent("placeholder_store"),
	}, nil
}

// Path returns the shapes file location for a source root.
func (s *Store) Path(srcDir string) string {
	return filepath.Join(srcDir, FileName)
}

func cacheKey(srcDir string) string {
	if abs, err := filepath.Abs(srcDir); err == nil {
		return abs
	}
	return filepath.Clean(srcDir)
}

// Load returns the shapes stored for srcDir. A missing file is reported with
// an error for which errors.IsNotFound is true and is not cached.
func (s *Store) Load(srcDir string) (Shapes, error) {
	key := cacheKey(srcDir)
	if shapes, ok := s.cache.Get(key); ok {
		return shapes, nil
	}

	path := s.Path(srcDir)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, perrors.WrapIO(err, "read placeholders config", path)
	}

	var shapes Shapes
	if err := json.Unmarshal(data, &shapes); err != nil {
		return nil, perrors.NewIOError(perrors.ErrCodePlaceholdersInvalid, "parse placeholders config", err).
			WithFile(path)
	}
	if shapes == nil {
		shapes = make(Shapes)
	}

	s.cache.Add(key, shapes)
	s.logger.Debug(context.Background(), "Loaded placeholders config", "path", path, "emails", len(shapes))
	return shapes, nil
}

// Expected returns the shape of one email. ok is false when the source root
// has no shapes file yet; an email absent from an existing file has an empty
// shape.
func (s *Store) Expected(srcDir, email string) (shape Shape, ok bool, err error) {
	shapes, err := s.Load(srcDir)
	if err != nil {
		if perrors.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	shape = shapes[email]
	if shape == nil {
		shape = Shape{}
	}
	return shape, true, nil
}

// Save writes shapes for srcDir atomically and drops the cached copy.
func (s *Store) Save(srcDir string, shapes Shapes) error {
	data, err := Encode(shapes)
	if err != nil {
		return err
	}

	path := s.Path(srcDir)
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return perrors.WrapIO(err, "write placeholders config", path)
	}

	s.Invalidate(srcDir)
	s.logger.Info(context.Background(), "Saved placeholders config", "path", path, "emails", len(shapes))
	return nil
}

// Invalidate drops the cached shapes of srcDir so the next read hits disk.
func (s *Store) Invalidate(srcDir string) {
	s.cache.Remove(cacheKey(srcDir))
}

// Purge drops every cached source root.
func (s *Store) Purge() {
	s.cache.Purge()
}

// ValidateEmail checks one source document against the stored shape of its
// email. Without a shapes file the result is valid: there is nothing to check
// yet.
func (s *Store) ValidateEmail(srcDir string, email types.Email) (Result, error) {
	expected, ok, err := s.Expected(srcDir, email.Name)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		s.logger.Debug(context.Background(), "No placeholders config, skipping validation",
			"email", email.Name, "locale", email.Locale)
		return Result{Email: email.Name, Locale: email.Locale, Findings: []Finding{}}, nil
	}

	actual, err := ExtractFile(email.Path)
	if err != nil {
		return Result{}, err
	}

	s.logger.Debug(context.Background(), "Validating placeholders", "path", email.Path)
	result := Validate(email.Name, email.Locale, actual, expected)
	if !result.Valid() {
		s.logger.Warn(context.Background(), nil, "Placeholders are inconsistent",
			"email", email.Name, "locale", email.Locale, "findings", result.Summary())
	}
	return result, nil
}

// Encode serialises shapes with sorted keys and a fixed four space indent, so
// unchanged input always produces identical bytes.
func Encode(shapes Shapes) ([]byte, error) {
	if shapes == nil {
		shapes = Shapes{}
	}
	data, err := json.MarshalIndent(shapes, "", fileIndent)
	if err != nil {
		return nil, perrors.NewInternalError(perrors.ErrCodePlaceholdersInvalid, "encode placeholders config", err)
	}
	return data, nil
}
