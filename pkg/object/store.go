package object

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Store is a content-addressed loose-object store with a 2-character
// fan-out directory layout: objects/ab/cdef0123...
//
// Each file holds the zlib-compressed framed object. The store takes no
// locks: writes of different objects never touch the same file. On the OS
// filesystem an object file, once in place, is never replaced; racing
// writers of the same object leave the first finished file. Callers that need stronger
// guarantees serialize access themselves.
type Store struct {
	fs      afero.Fs
	root    string
	level   int
	maxSize int64
	log     *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithFs sets the filesystem the store lives on. The default is the OS
// filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(s *Store) {
		if fsys != nil {
			s.fs = fsys
		}
	}
}

// WithLogger sets the logger used for debug tracing of reads and writes.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithCompressionLevel sets the zlib level for new objects.
func WithCompressionLevel(level int) Option {
	return func(s *Store) {
		s.level = level
	}
}

// WithMaxObjectSize caps the inflated size of objects read back. Larger
// objects are reported as ErrCorruptData. Non-positive values are ignored.
func WithMaxObjectSize(n int64) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectory and its fan-out directories are created lazily on write.
func NewStore(root string, opts ...Option) *Store {
	s := &Store{
		fs:      afero.NewOsFs(),
		root:    root,
		level:   DefaultCompressionLevel,
		maxSize: DefaultMaxObjectSize,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the directory the store was created with.
func (s *Store) Root() string { return s.root }

func (s *Store) objectsDir() string {
	return filepath.Join(s.root, "objects")
}

// Path returns the filesystem path for a given hash: the first two hex
// characters name the directory, the remaining 38 the file.
func (s *Store) Path(h Hash) string {
	if len(h) <= 2 {
		return filepath.Join(s.objectsDir(), string(h))
	}
	return filepath.Join(s.objectsDir(), string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if !ValidHash(string(h)) {
		return false
	}
	info, err := s.fs.Stat(s.Path(h))
	return err == nil && !info.IsDir()
}

// Write stores an object and returns its content hash. An object that is
// already present is left untouched. New objects are written to a temp file
// and renamed into place, so readers never see a partial file.
func (s *Store) Write(obj Object) (Hash, error) {
	framed := Frame(obj.Type(), obj.Serialize())
	h := HashFramed(framed)

	// Fast path: already exists.
	if s.Has(h) {
		s.log.Debug("object already stored", zap.String("hash", string(h)))
		return h, nil
	}

	dir := filepath.Dir(s.Path(h))
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write %s mkdir: %w", h, err)
	}

	tmp, err := afero.TempFile(s.fs, dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object write %s tmpfile: %w", h, err)
	}
	tmpName := tmp.Name()

	if err := compressTo(tmp, framed, s.level); err != nil {
		err = multierr.Append(err, tmp.Close())
		s.fs.Remove(tmpName)
		return "", fmt.Errorf("object write %s: %w", h, err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return "", fmt.Errorf("object write %s close: %w", h, err)
	}

	if err := s.install(tmpName, s.Path(h)); err != nil {
		return "", fmt.Errorf("object write %s: %w", h, err)
	}

	s.log.Debug("wrote object",
		zap.String("hash", string(h)),
		zap.String("type", string(obj.Type())),
		zap.Int("size", len(framed)),
	)
	return h, nil
}

// install moves a finished temp file to dst without replacing a file
// another writer put there first. On the OS filesystem this is a hard link,
// which fails if dst exists; filesystems without hard links fall back to a
// checked rename. The temp file is gone when install returns.
func (s *Store) install(tmpName, dst string) error {
	if _, ok := s.fs.(*afero.OsFs); ok {
		err := os.Link(tmpName, dst)
		if err == nil || errors.Is(err, fs.ErrExist) {
			s.fs.Remove(tmpName)
			return nil
		}
	}
	if _, err := s.fs.Stat(dst); err == nil {
		s.fs.Remove(tmpName)
		return nil
	}
	if err := s.fs.Rename(tmpName, dst); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Read retrieves an object by hash and deserializes it into its variant.
func (s *Store) Read(h Hash) (Object, error) {
	objType, payload, err := s.readFramed(h)
	if err != nil {
		return nil, err
	}
	obj, err := Deserialize(objType, payload)
	if err != nil {
		if errors.Is(err, ErrUnknownType) {
			return nil, objectError("read", h, ErrUnknownType, err)
		}
		return nil, objectError("read", h, ErrCorruptData, err)
	}
	s.log.Debug("read object", zap.String("hash", string(h)), zap.String("type", string(objType)))
	return obj, nil
}

// readFramed opens, inflates and unframes the object file for h.
func (s *Store) readFramed(h Hash) (ObjectType, []byte, error) {
	if !ValidHash(string(h)) {
		return "", nil, objectError("read", h, ErrNotFound, nil)
	}
	f, err := s.fs.Open(s.Path(h))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil, objectError("read", h, ErrNotFound, nil)
		}
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}
	defer f.Close()

	raw, err := decompressFrom(f, s.maxSize)
	if err != nil {
		return "", nil, objectError("read", h, ErrCorruptData, err)
	}
	objType, payload, err := ParseFrame(raw)
	if err != nil {
		return "", nil, objectError("read", h, ErrCorruptData, err)
	}
	return objType, payload, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

func readAs[T Object](s *Store, h Hash, want ObjectType) (T, error) {
	var zero T
	obj, err := s.Read(h)
	if err != nil {
		return zero, err
	}
	typed, ok := obj.(T)
	if !ok {
		return zero, objectError("read", h, ErrTypeMismatch,
			fmt.Errorf("got %q, want %q", obj.Type(), want))
	}
	return typed, nil
}

// ReadBlob reads an object that must be a blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	return readAs[*Blob](s, h, TypeBlob)
}

// ReadTree reads an object that must be a tree.
func (s *Store) ReadTree(h Hash) (*Tree, error) {
	return readAs[*Tree](s, h, TypeTree)
}

// ReadCommit reads an object that must be a commit.
func (s *Store) ReadCommit(h Hash) (*Commit, error) {
	return readAs[*Commit](s, h, TypeCommit)
}

// ReadTag reads an object that must be a tag.
func (s *Store) ReadTag(h Hash) (*Tag, error) {
	return readAs[*Tag](s, h, TypeTag)
}
