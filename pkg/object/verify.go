package object

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// VerifySummary reports what Verify checked.
type VerifySummary struct {
	LooseObjects  int
	CorruptHashes []Hash
}

// Verify re-reads every loose object, checks that its content hashes to
// the digest it is stored under, and that it deserializes. All failures are
// collected; the returned error combines them.
func (s *Store) Verify() (*VerifySummary, error) {
	hashes, err := s.List()
	if err != nil {
		return nil, err
	}

	report := &VerifySummary{}
	var errs error
	for _, h := range hashes {
		report.LooseObjects++
		if err := s.verifyOne(h); err != nil {
			s.log.Warn("object failed verification", zap.String("hash", string(h)), zap.Error(err))
			report.CorruptHashes = append(report.CorruptHashes, h)
			errs = multierr.Append(errs, err)
		}
	}
	return report, errs
}

func (s *Store) verifyOne(h Hash) error {
	objType, payload, err := s.readFramed(h)
	if err != nil {
		return err
	}
	if actual := HashFramed(Frame(objType, payload)); actual != h {
		return objectError("verify", h, ErrCorruptData, fmt.Errorf("hash mismatch (computed %s)", actual))
	}
	if _, err := Deserialize(objType, payload); err != nil {
		if errors.Is(err, ErrUnknownType) {
			return objectError("verify", h, ErrUnknownType, err)
		}
		return objectError("verify", h, ErrCorruptData, err)
	}
	return nil
}

// List returns the digests of all loose objects, sorted. Stray files such
// as temp files are skipped.
func (s *Store) List() ([]Hash, error) {
	fanoutDirs, err := afero.ReadDir(s.fs, s.objectsDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read objects dir: %w", err)
	}

	hashes := make([]Hash, 0)
	for _, fanoutDir := range fanoutDirs {
		if !fanoutDir.IsDir() {
			continue
		}
		prefix := fanoutDir.Name()
		if !isHexHashComponent(prefix, 2) {
			continue
		}

		objectEntries, err := afero.ReadDir(s.fs, filepath.Join(s.objectsDir(), prefix))
		if err != nil {
			return nil, fmt.Errorf("read objects fanout %s: %w", prefix, err)
		}
		for _, objectEntry := range objectEntries {
			if objectEntry.IsDir() {
				continue
			}
			suffix := objectEntry.Name()
			if !isHexHashComponent(suffix, HashLen-2) {
				continue
			}
			hashes = append(hashes, Hash(prefix+suffix))
		}
	}

	sort.Slice(hashes, func(i, j int) bool {
		return hashes[i] < hashes[j]
	})
	return hashes, nil
}

func isHexHashComponent(s string, expectedLen int) bool {
	return len(s) == expectedLen && isLowerHex(s)
}
