package object

import "fmt"

// Hash is a 40-character lowercase hex-encoded SHA-1 digest.
type Hash string

// HashLen is the length of a hex-encoded Hash.
const HashLen = 40

// ObjectType identifies the kind of object stored. It is the type tag that
// prefixes every framed object.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
	TypeTag    ObjectType = "tag"
)

// ParseType maps a type tag to one of the four known object types.
func ParseType(s string) (ObjectType, error) {
	switch t := ObjectType(s); t {
	case TypeBlob, TypeTree, TypeCommit, TypeTag:
		return t, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownType, s)
}

// Object is one of *Blob, *Tree, *Commit or *Tag. The set is closed; use a
// type switch to get at the variant.
type Object interface {
	// Type returns the variant's type tag.
	Type() ObjectType
	// Serialize returns the variant's payload, without the frame header.
	Serialize() []byte

	sealed()
}

// Deserialize builds the variant named by objType from its payload.
func Deserialize(objType ObjectType, data []byte) (Object, error) {
	switch objType {
	case TypeBlob:
		return NewBlob(data), nil
	case TypeTree:
		return ParseTree(data)
	case TypeCommit:
		return ParseCommit(data)
	case TypeTag:
		return ParseTag(data)
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownType, string(objType))
}
