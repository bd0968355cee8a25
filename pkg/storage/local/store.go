package local

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/angelmondragon/mediashare-backend/pkg/config"
	"github.com/angelmondragon/mediashare-backend/pkg/logger"
)

// URLPrefix is the path under which stored blobs are served.
const URLPrefix = "/uploads/"

var (
	// ErrTooLarge is returned by Save when the blob exceeds the size limit.
	ErrTooLarge = errors.New("blob exceeds size limit")
	// ErrInvalidName is returned for names that would escape the upload dir.
	ErrInvalidName = errors.New("invalid blob name")
)

// Store persists blobs as flat files in a single directory.
type Store struct {
	dir           string
	publicBaseURL string
	maxBytes      int64
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New ensures the upload directory exists and returns a Store rooted there.
func New(ctx context.Context, cfg config.StorageConfig, maxBytes int64, logg *logger.Logger) (*Store, error) {
	dir := strings.TrimSpace(cfg.UploadDir)
	if dir == "" {
		return nil, errors.New("upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir %q: %w", dir, err)
	}
	if maxBytes <= 0 {
		maxBytes = config.DefaultMaxUploadBytes
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "upload_dir", dir), "local storage ready")
	}
	return &Store{
		dir:           dir,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		maxBytes:      maxBytes,
	}, nil
}

// Dir returns the directory blobs are written to.
func (s *Store) Dir() string { return s.dir }

// MaxBytes returns the per-blob size limit.
func (s *Store) MaxBytes() int64 { return s.maxBytes }

// GenerateName builds a collision-resistant name of the form
// <unix-millis>-<12 hex chars><lowercased ext>.
func GenerateName(original string, now time.Time) (string, error) {
	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generate name suffix: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), hex.EncodeToString(suffix), ext), nil
}

// Save streams r into name. Blobs larger than the limit are removed and
// ErrTooLarge is returned. Existing files are never overwritten.
func (s *Store) Save(ctx context.Context, name string, r io.Reader) (int64, error) {
	full, err := s.path(name)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create blob %q: %w", name, err)
	}

	written, copyErr := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		_ = os.Remove(full)
		return 0, fmt.Errorf("write blob %q: %w", name, copyErr)
	case written > s.maxBytes:
		_ = os.Remove(full)
		return 0, ErrTooLarge
	case closeErr != nil:
		_ = os.Remove(full)
		return 0, fmt.Errorf("close blob %q: %w", name, closeErr)
	}
	return written, nil
}

// Open returns a reader over the stored blob.
func (s *Store) Open(name string) (io.ReadCloser, error) {
	full, err := s.path(name)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// Delete removes name. A missing file is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	full, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete blob %q: %w", name, err)
	}
	return nil
}

// Exists reports whether name is present.
func (s *Store) Exists(name string) bool {
	full, err := s.path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// PublicURL returns the externally reachable URL for name.
func (s *Store) PublicURL(name string) string {
	return s.publicBaseURL + URLPrefix + name
}

// Ping verifies the upload directory is still present.
func (s *Store) Ping(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("upload path %q is not a directory", s.dir)
	}
	return nil
}

// NameFromURL extracts the blob name from a URL produced by PublicURL.
func NameFromURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse blob url: %w", err)
	}
	name := path.Base(u.Path)
	if err := validateName(name); err != nil {
		return "", err
	}
	return name, nil
}

func (s *Store) path(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." || name == "/" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
