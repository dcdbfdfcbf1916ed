package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/odvcencio/gitlite/pkg/object"
)

const defaultDescription = "Unnamed repository; edit this file 'description' to name the repository.\n"

// Init creates a new repository at path. path must either not exist or be a
// directory; an existing .gitlite/ directory must be empty. It creates
// branches/, objects/, refs/tags/, refs/heads/, description, HEAD and config.
func Init(path string, opts ...object.Option) (*Repo, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		return nil, fmt.Errorf("init: %s is not a directory", path)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("init: %w", err)
	}

	gitDir := filepath.Join(path, DirName)
	if entries, err := os.ReadDir(gitDir); err == nil && len(entries) > 0 {
		return nil, fmt.Errorf("init: repository already exists at %s", gitDir)
	}

	dirs := []string{
		filepath.Join(gitDir, "branches"),
		filepath.Join(gitDir, "objects"),
		filepath.Join(gitDir, "refs", "tags"),
		filepath.Join(gitDir, "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	if err := os.WriteFile(filepath.Join(gitDir, "description"), []byte(defaultDescription), 0o644); err != nil {
		return nil, fmt.Errorf("init: write description: %w", err)
	}
	if err := os.WriteFile(filepath.Join(gitDir, "HEAD"), []byte("ref: refs/heads/master\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	cfg := DefaultConfig()
	if err := WriteConfig(filepath.Join(gitDir, "config"), cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	return newRepo(path, cfg, opts), nil
}

// Open opens the repository whose work tree is path. It fails with
// ErrInvalidRepository if path has no .gitlite/ directory, the config is
// missing, or the repository format version is not supported.
func Open(path string, opts ...object.Option) (*Repo, error) {
	gitDir := filepath.Join(path, DirName)
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("open %s: %w", path, ErrInvalidRepository)
	}

	cfg, err := LoadConfig(filepath.Join(gitDir, "config"))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return newRepo(path, cfg, opts), nil
}

// Find searches upward from path for a .gitlite/ directory and opens the
// repository it belongs to.
func Find(path string, opts ...object.Option) (*Repo, error) {
	// Resolve to absolute path for consistent traversal.
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("find: abs path: %w", err)
	}

	cur := abs
	for {
		info, err := os.Stat(filepath.Join(cur, DirName))
		if err == nil && info.IsDir() {
			return Open(cur, opts...)
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			// Reached filesystem root without finding .gitlite/.
			return nil, fmt.Errorf("find %s: %w (or any parent up to /)", abs, ErrInvalidRepository)
		}
		cur = parent
	}
}
