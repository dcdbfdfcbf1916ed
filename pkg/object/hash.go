package object

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// HashFramed computes the SHA-1 of an already framed buffer and returns it
// as a lowercase hex-encoded Hash.
func HashFramed(framed []byte) Hash {
	sum := sha1.Sum(framed)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashObject computes the digest an object would be stored under, without
// touching any store.
func HashObject(obj Object) Hash {
	return HashFramed(Frame(obj.Type(), obj.Serialize()))
}

// ValidHash reports whether s is a full 40-character lowercase hex digest.
func ValidHash(s string) bool {
	return len(s) == HashLen && isLowerHex(s)
}

func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// ResolveName turns a user-supplied object name into a digest. Only full
// digests are accepted; short names and refs are resolved by the caller
// before reaching the store.
func ResolveName(name string) (Hash, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if !ValidHash(n) {
		return "", objectError("resolve", Hash(name), ErrNotFound, nil)
	}
	return Hash(n), nil
}

func hashBytes(h Hash) ([]byte, error) {
	raw, err := hex.DecodeString(string(h))
	if err != nil || len(raw) != sha1.Size {
		return nil, corruptf("invalid digest %q", h)
	}
	return raw, nil
}
