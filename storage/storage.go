package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// MaterialsBucket holds lesson attachments.
const MaterialsBucket = "lesson-materials"

var (
	ErrObjectExists   = errors.New("object already exists")
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidKey     = errors.New("invalid object key")
)

// ObjectStore is the bucket/path blob store used for materials.
type ObjectStore interface {
	// Put writes a new object. It never overwrites: an existing key yields
	// ErrObjectExists.
	Put(ctx context.Context, bucket, path string, body io.Reader, contentType string) error
	Open(ctx context.Context, bucket, path string) (*os.File, error)
	Remove(ctx context.Context, bucket, path string) error
}

// LocalStore keeps objects on disk under root/bucket/path.
type LocalStore struct {
	root string
}

var _ ObjectStore = (*LocalStore)(nil)

func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, "resolving storage root")
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating storage root")
	}
	return &LocalStore{root: abs}, nil
}

func (s *LocalStore) Root() string {
	return s.root
}

// resolve maps bucket/path to a file below root, refusing anything that
// would escape it.
func (s *LocalStore) resolve(bucket, path string) (string, error) {
	if bucket == "" || path == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." {
		return "", ErrInvalidKey
	}
	for _, part := range strings.Split(path, "/") {
		if part == "" || part == "." || part == ".." || strings.Contains(part, `\`) {
			return "", ErrInvalidKey
		}
	}
	full := filepath.Join(s.root, bucket, filepath.FromSlash(path))
	if !strings.HasPrefix(full, filepath.Join(s.root, bucket)+string(os.PathSeparator)) {
		return "", ErrInvalidKey
	}
	return full, nil
}

func (s *LocalStore) Put(ctx context.Context, bucket, path string, body io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(bucket, path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errors.Wrap(err, "creating object directory")
	}

	dst, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return ErrObjectExists
	}
	if err != nil {
		return errors.Wrap(err, "creating object")
	}

	if _, err := io.Copy(dst, body); err != nil {
		dst.Close()
		os.Remove(full)
		return errors.Wrap(err, "writing object")
	}
	return errors.Wrap(dst.Close(), "closing object")
}

func (s *LocalStore) Open(ctx context.Context, bucket, path string) (*os.File, error) {
	full, err := s.resolve(bucket, path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	return f, errors.Wrap(err, "opening object")
}

func (s *LocalStore) Remove(ctx context.Context, bucket, path string) error {
	full, err := s.resolve(bucket, path)
	if err != nil {
		return err
	}
	err = os.Remove(full)
	if errors.Is(err, os.ErrNotExist) {
		return ErrObjectNotFound
	}
	return errors.Wrap(err, "removing object")
}
