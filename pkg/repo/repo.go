package repo

import (
	"errors"
	"path/filepath"

	"github.com/odvcencio/gitlite/pkg/object"
)

// DirName is the name of the repository metadata directory.
const DirName = ".gitlite"

// ErrInvalidRepository means a path does not hold a usable repository.
var ErrInvalidRepository = errors.New("not a gitlite repository")

// Repo represents an opened gitlite repository.
type Repo struct {
	RootDir string        // working directory root
	GitDir  string        // .gitlite/ directory
	Config  *Config       // parsed .gitlite/config
	Store   *object.Store // content-addressed object store
}

// RootPath returns the directory the object store lives under.
func (r *Repo) RootPath() string {
	return r.GitDir
}

func (r *Repo) path(elem ...string) string {
	return filepath.Join(append([]string{r.GitDir}, elem...)...)
}

func newRepo(root string, cfg *Config, opts []object.Option) *Repo {
	gitDir := filepath.Join(root, DirName)
	storeOpts := append([]object.Option{
		object.WithCompressionLevel(cfg.Object.Compression),
		object.WithMaxObjectSize(cfg.Object.MaxSize),
	}, opts...)
	return &Repo{
		RootDir: root,
		GitDir:  gitDir,
		Config:  cfg,
		Store:   object.NewStore(gitDir, storeOpts...),
	}
}
