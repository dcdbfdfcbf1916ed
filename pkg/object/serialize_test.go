package object

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

const emptyTreeHash = Hash("4b825dc642cb6eb9a060e54bf8d69288fbee4904")

func testIdent() Ident {
	return Ident{
		Name:  "Ada",
		Email: "ada@example.com",
		When:  time.Unix(1700000000, 0).In(time.FixedZone("EST", -5*3600)),
	}
}

func TestBlobIsImmutable(t *testing.T) {
	data := []byte("hello world")
	b := NewBlob(data)
	data[0] = 'J'
	if string(b.Data()) != "hello world" {
		t.Fatalf("Blob aliased caller's buffer: %q", b.Data())
	}

	out := b.Serialize()
	out[0] = 'J'
	if string(b.Serialize()) != "hello world" {
		t.Fatalf("Serialize exposed internal buffer: %q", b.Serialize())
	}
	if b.Size() != len("hello world") {
		t.Errorf("Size = %d", b.Size())
	}
}

func TestIdentString(t *testing.T) {
	got := testIdent().String()
	want := "Ada <ada@example.com> 1700000000 -0500"
	if got != want {
		t.Errorf("Ident.String = %q, want %q", got, want)
	}

	utc := Ident{Name: "B", Email: "b@x", When: time.Unix(0, 0).UTC()}
	if got := utc.String(); got != "B <b@x> 0 +0000" {
		t.Errorf("Ident.String = %q", got)
	}
}

func TestBuildCommit(t *testing.T) {
	c, err := BuildCommit(CommitInfo{
		Tree:    emptyTreeHash,
		Author:  testIdent(),
		Message: "initial",
	})
	if err != nil {
		t.Fatalf("BuildCommit: %v", err)
	}

	want := "tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904\n" +
		"author Ada <ada@example.com> 1700000000 -0500\n" +
		"committer Ada <ada@example.com> 1700000000 -0500\n" +
		"\n" +
		"initial\n"
	if got := string(c.Serialize()); got != want {
		t.Fatalf("Serialize =\n%s\nwant\n%s", got, want)
	}
	if h := HashObject(c); h != "22de9991981dc4a82352d829df8e34eac61804ae" {
		t.Errorf("HashObject = %s", h)
	}
	if c.TreeHash() != emptyTreeHash {
		t.Errorf("TreeHash = %q", c.TreeHash())
	}
	if len(c.Parents()) != 0 {
		t.Errorf("Parents = %v, want none", c.Parents())
	}
	if c.Committer() != c.Author() {
		t.Errorf("Committer = %q, want author %q", c.Committer(), c.Author())
	}
}

func TestBuildCommitParents(t *testing.T) {
	p1 := Hash("95d09f2b10159347eece71399a7e2e907ea3df4f")
	p2 := Hash("e69de29bb2d1d6434b8b29ae775ad8c2e48c5391")
	c, err := BuildCommit(CommitInfo{
		Tree:    emptyTreeHash,
		Parents: []Hash{p1, p2},
		Author:  testIdent(),
		Message: "merge\n",
	})
	if err != nil {
		t.Fatalf("BuildCommit: %v", err)
	}

	parsed, err := ParseCommit(c.Serialize())
	if err != nil {
		t.Fatalf("ParseCommit: %v", err)
	}
	parents := parsed.Parents()
	if len(parents) != 2 || parents[0] != p1 || parents[1] != p2 {
		t.Fatalf("Parents = %v, want [%s %s]", parents, p1, p2)
	}
	if parsed.Message() != "merge\n" {
		t.Errorf("Message = %q", parsed.Message())
	}
	if !bytes.Equal(parsed.Serialize(), c.Serialize()) {
		t.Error("commit did not re-serialize byte-for-byte")
	}
}

func TestBuildCommitRejectsBadHashes(t *testing.T) {
	if _, err := BuildCommit(CommitInfo{Tree: "nope", Author: testIdent()}); err == nil {
		t.Error("BuildCommit accepted invalid tree hash")
	}
	if _, err := BuildCommit(CommitInfo{Tree: emptyTreeHash, Parents: []Hash{"short"}, Author: testIdent()}); err == nil {
		t.Error("BuildCommit accepted invalid parent hash")
	}
}

func TestCommitFieldsAreCopies(t *testing.T) {
	c, err := ParseCommit([]byte("tree abc\n\nmsg\n"))
	if err != nil {
		t.Fatalf("ParseCommit: %v", err)
	}
	before := HashObject(c)

	fields := c.Fields()
	if err := fields.Add("parent", []byte("def")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	fields.Message = []byte("changed\n")

	if HashObject(c) != before {
		t.Fatal("mutating Fields() changed the commit")
	}
	changed := NewCommit(fields)
	if HashObject(changed) == before {
		t.Fatal("a changed commit should have a new digest")
	}
}

func TestParseCommitCorrupt(t *testing.T) {
	_, err := ParseCommit([]byte("tree abc\n"))
	if !errors.Is(err, ErrCorruptData) {
		t.Fatalf("ParseCommit err = %v, want ErrCorruptData", err)
	}
}

func TestBuildTag(t *testing.T) {
	target := Hash("95d09f2b10159347eece71399a7e2e907ea3df4f")
	tag, err := BuildTag(TagInfo{
		Target:     target,
		TargetType: TypeBlob,
		Name:       "v1.0",
		Tagger:     testIdent(),
		Message:    "release",
	})
	if err != nil {
		t.Fatalf("BuildTag: %v", err)
	}

	parsed, err := ParseTag(tag.Serialize())
	if err != nil {
		t.Fatalf("ParseTag: %v", err)
	}
	if parsed.Target() != target {
		t.Errorf("Target = %q", parsed.Target())
	}
	if parsed.TargetType() != TypeBlob {
		t.Errorf("TargetType = %q", parsed.TargetType())
	}
	if parsed.Name() != "v1.0" {
		t.Errorf("Name = %q", parsed.Name())
	}
	if parsed.Tagger() != testIdent().String() {
		t.Errorf("Tagger = %q", parsed.Tagger())
	}
	if parsed.Message() != "release\n" {
		t.Errorf("Message = %q", parsed.Message())
	}
	if keys := parsed.Fields().Keys(); len(keys) != 4 || keys[0] != "object" || keys[3] != "tagger" {
		t.Errorf("Keys = %v", keys)
	}
}

func TestBuildTagValidation(t *testing.T) {
	target := Hash("95d09f2b10159347eece71399a7e2e907ea3df4f")
	bad := []TagInfo{
		{Target: "x", TargetType: TypeBlob, Name: "v1"},
		{Target: target, TargetType: "foo", Name: "v1"},
		{Target: target, TargetType: TypeBlob, Name: ""},
		{Target: target, TargetType: TypeBlob, Name: "v 1"},
	}
	for _, info := range bad {
		if _, err := BuildTag(info); err == nil {
			t.Errorf("BuildTag(%+v) succeeded, want error", info)
		}
	}
}

func TestDeserializeDispatch(t *testing.T) {
	tests := []struct {
		objType ObjectType
		payload string
	}{
		{TypeBlob, "raw bytes"},
		{TypeTree, ""},
		{TypeCommit, "tree abc\n\nmsg\n"},
		{TypeTag, "object abc\ntype blob\n\nmsg\n"},
	}
	for _, tt := range tests {
		obj, err := Deserialize(tt.objType, []byte(tt.payload))
		if err != nil {
			t.Fatalf("Deserialize(%s): %v", tt.objType, err)
		}
		if obj.Type() != tt.objType {
			t.Errorf("Deserialize(%s).Type() = %s", tt.objType, obj.Type())
		}
		if string(obj.Serialize()) != tt.payload {
			t.Errorf("Deserialize(%s) payload = %q, want %q", tt.objType, obj.Serialize(), tt.payload)
		}
	}

	if _, err := Deserialize("foo", []byte("x")); !errors.Is(err, ErrUnknownType) {
		t.Errorf("Deserialize(foo) err = %v, want ErrUnknownType", err)
	}
}
