package object

import (
	"bytes"
	"fmt"
	"strings"
)

var (
	newline     = []byte("\n")
	foldNewline = []byte("\n ")
)

// KVLM ("key-value list with message") is the header-block encoding used by
// commit and tag payloads:
//
//	tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904
//	parent 1c4b8b2f...
//	parent 9e0f16d1...
//	gpgsig -----BEGIN SSH SIGNATURE-----
//	 U1NIU0lH...
//	 -----END SSH SIGNATURE-----
//
//	message text
//
// Keys keep their first-insertion order. A repeated key accumulates its
// values in encounter order. A newline inside a value is written as a
// newline followed by a single space (a continuation fold).
type KVLM struct {
	keys   []string
	values map[string][][]byte

	// Message is everything after the blank line that ends the headers.
	Message []byte
}

// NewKVLM returns an empty KVLM.
func NewKVLM() *KVLM {
	return &KVLM{values: make(map[string][][]byte)}
}

// ParseKVLM decodes a header block plus message.
func ParseKVLM(raw []byte) (*KVLM, error) {
	k := NewKVLM()
	pos := 0
	for {
		spc := indexFrom(raw, pos, ' ')
		nl := indexFrom(raw, pos, '\n')

		// A blank line ends the headers; the rest is the message.
		if spc < 0 || nl < spc {
			if nl != pos {
				return nil, corruptf("kvlm: malformed header line at offset %d", pos)
			}
			k.Message = append([]byte{}, raw[pos+1:]...)
			return k, nil
		}

		key := string(raw[pos:spc])

		// The value ends at the first newline not followed by a space.
		end := pos
		for {
			next := indexFrom(raw, end+1, '\n')
			if next < 0 || next+1 >= len(raw) {
				return nil, corruptf("kvlm: unterminated value for key %q", key)
			}
			end = next
			if raw[end+1] != ' ' {
				break
			}
		}

		k.add(key, bytes.ReplaceAll(raw[spc+1:end], foldNewline, newline))
		pos = end + 1
	}
}

func indexFrom(b []byte, from int, c byte) int {
	if from >= len(b) {
		return -1
	}
	i := bytes.IndexByte(b[from:], c)
	if i < 0 {
		return -1
	}
	return from + i
}

// Serialize encodes k. Values of a repeated key are written together at the
// key's first position.
func (k *KVLM) Serialize() []byte {
	var buf bytes.Buffer
	for _, key := range k.keys {
		for _, v := range k.values[key] {
			buf.WriteString(key)
			buf.WriteByte(' ')
			buf.Write(bytes.ReplaceAll(v, newline, foldNewline))
			buf.WriteByte('\n')
		}
	}
	buf.WriteByte('\n')
	buf.Write(k.Message)
	return buf.Bytes()
}

// Keys returns the header keys in insertion order.
func (k *KVLM) Keys() []string {
	return append([]string(nil), k.keys...)
}

// Len returns the number of distinct keys.
func (k *KVLM) Len() int { return len(k.keys) }

// Get returns the first value stored under key.
func (k *KVLM) Get(key string) ([]byte, bool) {
	vs := k.values[key]
	if len(vs) == 0 {
		return nil, false
	}
	return vs[0], true
}

// GetString is Get for callers that want text.
func (k *KVLM) GetString(key string) string {
	v, _ := k.Get(key)
	return string(v)
}

// GetAll returns every value stored under key, in order.
func (k *KVLM) GetAll(key string) [][]byte {
	vs := k.values[key]
	if len(vs) == 0 {
		return nil
	}
	out := make([][]byte, len(vs))
	copy(out, vs)
	return out
}

// Add appends a value under key. Keys must be non-empty and free of spaces
// and newlines.
func (k *KVLM) Add(key string, value []byte) error {
	if err := validateKVLMKey(key); err != nil {
		return err
	}
	k.add(key, append([]byte{}, value...))
	return nil
}

// Set replaces every value under key with value, keeping the key's
// position if it already exists.
func (k *KVLM) Set(key string, value []byte) error {
	if err := validateKVLMKey(key); err != nil {
		return err
	}
	if _, ok := k.values[key]; ok {
		k.values[key] = [][]byte{append([]byte{}, value...)}
		return nil
	}
	k.add(key, append([]byte{}, value...))
	return nil
}

// Del removes key and all its values.
func (k *KVLM) Del(key string) {
	if _, ok := k.values[key]; !ok {
		return
	}
	delete(k.values, key)
	for i, existing := range k.keys {
		if existing == key {
			k.keys = append(k.keys[:i], k.keys[i+1:]...)
			break
		}
	}
}

func (k *KVLM) add(key string, value []byte) {
	if k.values == nil {
		k.values = make(map[string][][]byte)
	}
	if _, ok := k.values[key]; !ok {
		k.keys = append(k.keys, key)
	}
	k.values[key] = append(k.values[key], value)
}

func validateKVLMKey(key string) error {
	if key == "" || strings.ContainsAny(key, " \n") {
		return fmt.Errorf("kvlm: invalid key %q", key)
	}
	return nil
}

// Clone returns a deep copy of k.
func (k *KVLM) Clone() *KVLM {
	out := &KVLM{
		keys:    append([]string(nil), k.keys...),
		values:  make(map[string][][]byte, len(k.values)),
		Message: append([]byte{}, k.Message...),
	}
	for key, vs := range k.values {
		cp := make([][]byte, len(vs))
		for i, v := range vs {
			cp[i] = append([]byte{}, v...)
		}
		out.values[key] = cp
	}
	return out
}

// Equal reports whether k and other hold the same keys in the same order,
// the same values and the same message.
func (k *KVLM) Equal(other *KVLM) bool {
	if k == nil || other == nil {
		return k == other
	}
	if len(k.keys) != len(other.keys) || !bytes.Equal(k.Message, other.Message) {
		return false
	}
	for i, key := range k.keys {
		if other.keys[i] != key {
			return false
		}
		a, b := k.values[key], other.values[key]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if !bytes.Equal(a[j], b[j]) {
				return false
			}
		}
	}
	return true
}
