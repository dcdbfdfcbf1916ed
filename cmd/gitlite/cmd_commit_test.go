package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/odvcencio/gitlite/pkg/object"
	"github.com/odvcencio/gitlite/pkg/repo"
	"golang.org/x/crypto/ssh"
)

const emptyTreeHash = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

func writeEmptyTree(t *testing.T) string {
	t.Helper()
	h := strings.TrimSpace(mustRun(t, newMktreeCmd(), ""))
	if h != emptyTreeHash {
		t.Fatalf("empty mktree = %s, want %s", h, emptyTreeHash)
	}
	return h
}

func TestCommitTreeMatchesKnownDigest(t *testing.T) {
	initTestRepo(t)
	tree := writeEmptyTree(t)

	out := mustRun(t, newCommitTreeCmd(), "", tree, "-m", "initial", "--author", "Ada <ada@example.com>", "--date", "1700000000")
	h := strings.TrimSpace(out)

	got := mustRun(t, newCatFileCmd(), "", "commit", h)
	want := "tree " + emptyTreeHash + "\n" +
		"author Ada <ada@example.com> 1700000000 +0000\n" +
		"committer Ada <ada@example.com> 1700000000 +0000\n" +
		"\ninitial\n"
	if got != want {
		t.Fatalf("commit payload:\n%q\nwant:\n%q", got, want)
	}
	if h != string(object.HashFramed(object.Frame(object.TypeCommit, []byte(want)))) {
		t.Fatalf("commit-tree printed %s, which is not the digest of its payload", h)
	}
}

func TestCommitTreeUsesConfigIdentity(t *testing.T) {
	r := initTestRepo(t)
	cfg := repo.DefaultConfig()
	cfg.User.Name = "Grace"
	cfg.User.Email = "grace@example.com"
	if err := r.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	tree := writeEmptyTree(t)

	h := strings.TrimSpace(mustRun(t, newCommitTreeCmd(), "", tree, "-m", "msg"))
	commit, err := r.Store.ReadCommit(object.Hash(h))
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if !strings.HasPrefix(commit.Author(), "Grace <grace@example.com> ") {
		t.Errorf("author = %q", commit.Author())
	}
}

func TestCommitTreeParentsAndValidation(t *testing.T) {
	initTestRepo(t)
	tree := writeEmptyTree(t)
	first := strings.TrimSpace(mustRun(t, newCommitTreeCmd(), "", tree, "-m", "one", "--date", "1"))
	second := strings.TrimSpace(mustRun(t, newCommitTreeCmd(), "", tree, "-p", first, "-m", "two", "--date", "2"))

	got := mustRun(t, newCatFileCmd(), "", "-p", second)
	if !strings.Contains(got, "\nparent "+first+"\n") {
		t.Fatalf("commit missing parent header:\n%s", got)
	}

	if _, err := runCmd(t, newCommitTreeCmd(), "", tree); err == nil {
		t.Error("commit-tree without -m succeeded")
	}
	if _, err := runCmd(t, newCommitTreeCmd(), "", helloBlobHash, "-m", "x"); !errors.Is(err, object.ErrNotFound) {
		t.Errorf("missing tree: err = %v, want ErrNotFound", err)
	}
	if _, err := runCmd(t, newCommitTreeCmd(), "", tree, "-m", "x", "--author", "no email"); err == nil {
		t.Error("commit-tree accepted malformed --author")
	}
}

func writeTestSigningKey(t *testing.T) (string, ssh.PublicKey) {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	block, err := ssh.MarshalPrivateKey(priv, "")
	if err != nil {
		t.Fatalf("MarshalPrivateKey: %v", err)
	}
	path := filepath.Join(t.TempDir(), "id_ed25519")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("NewSignerFromKey: %v", err)
	}
	return path, signer.PublicKey()
}

func TestCommitTreeSignAndVerifyCommit(t *testing.T) {
	initTestRepo(t)
	tree := writeEmptyTree(t)
	keyPath, pub := writeTestSigningKey(t)

	signed := strings.TrimSpace(mustRun(t, newCommitTreeCmd(), "", tree, "-m", "signed", "--sign-key", keyPath))
	out := mustRun(t, newVerifyCommitCmd(), "", signed)
	if !strings.Contains(out, ssh.FingerprintSHA256(pub)) {
		t.Fatalf("verify-commit output = %q, want fingerprint %s", out, ssh.FingerprintSHA256(pub))
	}

	unsigned := strings.TrimSpace(mustRun(t, newCommitTreeCmd(), "", tree, "-m", "plain"))
	if _, err := runCmd(t, newVerifyCommitCmd(), "", unsigned); !errors.Is(err, object.ErrUnsigned) {
		t.Fatalf("unsigned: err = %v, want ErrUnsigned", err)
	}
}

func TestCommitTreeSignUsesConfiguredKey(t *testing.T) {
	r := initTestRepo(t)
	keyPath, _ := writeTestSigningKey(t)
	cfg := repo.DefaultConfig()
	cfg.User.SigningKey = keyPath
	if err := r.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	tree := writeEmptyTree(t)

	h := strings.TrimSpace(mustRun(t, newCommitTreeCmd(), "", tree, "-m", "signed", "-S"))
	mustRun(t, newVerifyCommitCmd(), "", h)
}

func TestMktag(t *testing.T) {
	initTestRepo(t)
	mustRun(t, newHashObjectCmd(), "hello world", "-w", "-")

	h := strings.TrimSpace(mustRun(t, newMktagCmd(), "", helloBlobHash, "--name", "v1.0", "-m", "release", "--tagger", "Ada <ada@example.com>", "--date", "1700000000"))
	got := mustRun(t, newCatFileCmd(), "", "tag", h)
	want := "object " + helloBlobHash + "\n" +
		"type blob\n" +
		"tag v1.0\n" +
		"tagger Ada <ada@example.com> 1700000000 +0000\n" +
		"\nrelease\n"
	if got != want {
		t.Fatalf("tag payload:\n%q\nwant:\n%q", got, want)
	}

	if _, err := runCmd(t, newMktagCmd(), "", emptyTreeHash, "--name", "v2"); !errors.Is(err, object.ErrNotFound) {
		t.Errorf("tag of missing object: err = %v, want ErrNotFound", err)
	}
	if _, err := runCmd(t, newMktagCmd(), "", helloBlobHash); err == nil {
		t.Error("mktag without --name succeeded")
	}
}

func TestParseIdentity(t *testing.T) {
	name, email, err := parseIdentity("  Ada Lovelace <ada@example.com> ")
	if err != nil || name != "Ada Lovelace" || email != "ada@example.com" {
		t.Fatalf("parseIdentity = %q, %q, %v", name, email, err)
	}
	for _, bad := range []string{"Ada", "<ada@example.com>", "Ada <>", "Ada <a> trailing", "Ada <a<b>"} {
		if _, _, err := parseIdentity(bad); err == nil {
			t.Errorf("parseIdentity(%q) succeeded", bad)
		}
	}
}
