package object

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

func TestStoreListEmpty(t *testing.T) {
	s := memStore(t)
	hashes, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(hashes) != 0 {
		t.Fatalf("List = %v, want empty", hashes)
	}
}

func TestStoreListSkipsStrayFiles(t *testing.T) {
	s := memStore(t)
	h, err := s.Write(NewBlob([]byte("hello world")))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	dir := filepath.Dir(s.Path(h))
	if err := afero.WriteFile(s.fs, filepath.Join(dir, ".tmp-123"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	for _, sub := range []string{"info", "pack"} {
		if err := s.fs.MkdirAll(filepath.Join(s.Root(), "objects", sub), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
	}

	hashes, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if diff := cmp.Diff([]Hash{h}, hashes); diff != "" {
		t.Fatalf("List mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreVerifyClean(t *testing.T) {
	s := memStore(t)
	objs := sampleObjects(t)
	for _, obj := range objs {
		if _, err := s.Write(obj); err != nil {
			t.Fatalf("Write(%s): %v", obj.Type(), err)
		}
	}

	report, err := s.Verify()
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if report.LooseObjects != len(objs) {
		t.Errorf("LooseObjects = %d, want %d", report.LooseObjects, len(objs))
	}
	if len(report.CorruptHashes) != 0 {
		t.Errorf("CorruptHashes = %v, want none", report.CorruptHashes)
	}
}

func TestStoreVerifyReportsEveryFailure(t *testing.T) {
	s := memStore(t)
	good, err := s.Write(NewBlob([]byte("fine")))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	// Valid frame stored under the wrong digest.
	misplaced := Hash(helloBlobHash)
	writeRawObject(t, s, misplaced, Frame(TypeBlob, []byte("not hello world")))

	// Unknown type stored under its own digest.
	unknown := []byte("foo 3\x00bar")
	unknownHash := HashFramed(unknown)
	writeRawObject(t, s, unknownHash, unknown)

	report, err := s.Verify()
	if err == nil {
		t.Fatal("Verify succeeded on a corrupt store")
	}
	if report.LooseObjects != 3 {
		t.Errorf("LooseObjects = %d, want 3", report.LooseObjects)
	}
	sortHashes := cmpopts.SortSlices(func(a, b Hash) bool { return a < b })
	if diff := cmp.Diff([]Hash{misplaced, unknownHash}, report.CorruptHashes, sortHashes); diff != "" {
		t.Errorf("CorruptHashes mismatch (-want +got):\n%s", diff)
	}
	for _, h := range report.CorruptHashes {
		if h == good {
			t.Errorf("intact object %s reported corrupt", good)
		}
	}

	errs := multierr.Errors(err)
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), err)
	}
	var unknownTypes, corrupt int
	for _, e := range errs {
		switch {
		case errors.Is(e, ErrUnknownType):
			unknownTypes++
		case errors.Is(e, ErrCorruptData):
			corrupt++
		}
	}
	if unknownTypes != 1 || corrupt != 1 {
		t.Errorf("unknown type errors = %d, corrupt errors = %d, want 1 each", unknownTypes, corrupt)
	}
}

func TestStoreVerifyRejectsPaddedLength(t *testing.T) {
	s := memStore(t)
	padded := []byte("blob 011\x00hello world")
	h := HashFramed(padded)
	writeRawObject(t, s, h, padded)

	if _, err := s.Read(h); !errors.Is(err, ErrCorruptData) {
		t.Fatalf("Read err = %v, want ErrCorruptData", err)
	}
	report, err := s.Verify()
	if !errors.Is(err, ErrCorruptData) {
		t.Fatalf("Verify err = %v, want ErrCorruptData", err)
	}
	if diff := cmp.Diff([]Hash{h}, report.CorruptHashes); diff != "" {
		t.Errorf("CorruptHashes mismatch (-want +got):\n%s", diff)
	}
}
