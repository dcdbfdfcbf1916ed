package object

import (
	"fmt"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// Blob holds raw file data. The payload is the data verbatim.
type Blob struct {
	data []byte
}

// NewBlob returns a Blob holding a copy of data.
func NewBlob(data []byte) *Blob {
	return &Blob{data: append([]byte{}, data...)}
}

func (b *Blob) Type() ObjectType { return TypeBlob }

// Serialize returns a copy of the blob's data.
func (b *Blob) Serialize() []byte { return append([]byte{}, b.data...) }

// Data returns a copy of the blob's data.
func (b *Blob) Data() []byte { return b.Serialize() }

// Size returns the data length without copying.
func (b *Blob) Size() int { return len(b.data) }

func (*Blob) sealed() {}

// ---------------------------------------------------------------------------
// Ident
// ---------------------------------------------------------------------------

// Ident is an author, committer or tagger line: "Name <email> unix tz".
type Ident struct {
	Name  string
	Email string
	When  time.Time
}

func (id Ident) String() string {
	return fmt.Sprintf("%s <%s> %d %s", id.Name, id.Email, id.When.Unix(), formatTimezoneOffset(id.When))
}

func formatTimezoneOffset(t time.Time) string {
	_, offset := t.Zone()
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("%c%02d%02d", sign, offset/3600, (offset%3600)/60)
}

// ---------------------------------------------------------------------------
// Commit
// ---------------------------------------------------------------------------

// Commit is a KVLM-encoded commit: a tree, zero or more parents, author and
// committer lines, optional signature and a message.
type Commit struct {
	kvlm *KVLM
}

// NewCommit wraps a copy of k.
func NewCommit(k *KVLM) *Commit {
	return &Commit{kvlm: k.Clone()}
}

// ParseCommit decodes a commit payload.
func ParseCommit(data []byte) (*Commit, error) {
	k, err := ParseKVLM(data)
	if err != nil {
		return nil, fmt.Errorf("parse commit: %w", err)
	}
	return &Commit{kvlm: k}, nil
}

func (c *Commit) Type() ObjectType  { return TypeCommit }
func (c *Commit) Serialize() []byte { return c.kvlm.Serialize() }
func (*Commit) sealed()             {}

// Fields returns a copy of the commit's headers and message.
func (c *Commit) Fields() *KVLM { return c.kvlm.Clone() }

func (c *Commit) TreeHash() Hash { return Hash(c.kvlm.GetString("tree")) }

func (c *Commit) Parents() []Hash {
	vs := c.kvlm.GetAll("parent")
	out := make([]Hash, 0, len(vs))
	for _, v := range vs {
		out = append(out, Hash(v))
	}
	return out
}

func (c *Commit) Author() string    { return c.kvlm.GetString("author") }
func (c *Commit) Committer() string { return c.kvlm.GetString("committer") }
func (c *Commit) Message() string   { return string(c.kvlm.Message) }

// Signature returns the armored signature stored under gpgsig, if any.
func (c *Commit) Signature() string { return c.kvlm.GetString(signatureKey) }

// CommitInfo is the input to BuildCommit.
type CommitInfo struct {
	Tree      Hash
	Parents   []Hash
	Author    Ident
	Committer Ident
	Message   string
}

// BuildCommit lays out a commit with the canonical header order: tree,
// parents, author, committer.
func BuildCommit(info CommitInfo) (*Commit, error) {
	if !ValidHash(string(info.Tree)) {
		return nil, fmt.Errorf("build commit: invalid tree hash %q", info.Tree)
	}
	k := NewKVLM()
	k.add("tree", []byte(info.Tree))
	for _, p := range info.Parents {
		if !ValidHash(string(p)) {
			return nil, fmt.Errorf("build commit: invalid parent hash %q", p)
		}
		k.add("parent", []byte(p))
	}
	committer := info.Committer
	if committer.Name == "" && committer.Email == "" {
		committer = info.Author
	}
	k.add("author", []byte(info.Author.String()))
	k.add("committer", []byte(committer.String()))
	k.Message = []byte(ensureTrailingNewline(info.Message))
	return &Commit{kvlm: k}, nil
}

func ensureTrailingNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// ---------------------------------------------------------------------------
// Tag
// ---------------------------------------------------------------------------

// Tag is a KVLM-encoded annotated tag pointing at another object.
type Tag struct {
	kvlm *KVLM
}

// NewTag wraps a copy of k.
func NewTag(k *KVLM) *Tag {
	return &Tag{kvlm: k.Clone()}
}

// ParseTag decodes a tag payload.
func ParseTag(data []byte) (*Tag, error) {
	k, err := ParseKVLM(data)
	if err != nil {
		return nil, fmt.Errorf("parse tag: %w", err)
	}
	return &Tag{kvlm: k}, nil
}

func (t *Tag) Type() ObjectType  { return TypeTag }
func (t *Tag) Serialize() []byte { return t.kvlm.Serialize() }
func (*Tag) sealed()             {}

// Fields returns a copy of the tag's headers and message.
func (t *Tag) Fields() *KVLM { return t.kvlm.Clone() }

func (t *Tag) Target() Hash           { return Hash(t.kvlm.GetString("object")) }
func (t *Tag) TargetType() ObjectType { return ObjectType(t.kvlm.GetString("type")) }
func (t *Tag) Name() string           { return t.kvlm.GetString("tag") }
func (t *Tag) Tagger() string         { return t.kvlm.GetString("tagger") }
func (t *Tag) Message() string        { return string(t.kvlm.Message) }

// TagInfo is the input to BuildTag.
type TagInfo struct {
	Target     Hash
	TargetType ObjectType
	Name       string
	Tagger     Ident
	Message    string
}

// BuildTag lays out a tag with headers object, type, tag, tagger.
func BuildTag(info TagInfo) (*Tag, error) {
	if !ValidHash(string(info.Target)) {
		return nil, fmt.Errorf("build tag: invalid target hash %q", info.Target)
	}
	if _, err := ParseType(string(info.TargetType)); err != nil {
		return nil, fmt.Errorf("build tag: %w", err)
	}
	name := strings.TrimSpace(info.Name)
	if name == "" || strings.ContainsAny(name, " \n") {
		return nil, fmt.Errorf("build tag: invalid tag name %q", info.Name)
	}
	k := NewKVLM()
	k.add("object", []byte(info.Target))
	k.add("type", []byte(info.TargetType))
	k.add("tag", []byte(name))
	k.add("tagger", []byte(info.Tagger.String()))
	k.Message = []byte(ensureTrailingNewline(info.Message))
	return &Tag{kvlm: k}, nil
}
