package object

import (
	"bytes"
	"strconv"
)

// Frame prepends the object header to payload:
//
//	<type> SP <decimal length> NUL <payload>
func Frame(objType ObjectType, payload []byte) []byte {
	size := strconv.Itoa(len(payload))
	out := make([]byte, 0, len(objType)+len(size)+2+len(payload))
	out = append(out, objType...)
	out = append(out, ' ')
	out = append(out, size...)
	out = append(out, 0)
	return append(out, payload...)
}

// ParseFrame splits a framed buffer into its type tag and payload. The tag
// is returned as found; checking it against the known types is left to the
// caller. The payload aliases raw.
func ParseFrame(raw []byte) (ObjectType, []byte, error) {
	sp := bytes.IndexByte(raw, ' ')
	if sp < 0 {
		return "", nil, corruptf("missing type separator")
	}
	nul := bytes.IndexByte(raw[sp+1:], 0)
	if nul < 0 {
		return "", nil, corruptf("missing header terminator")
	}
	nul += sp + 1

	sizeField := raw[sp+1 : nul]
	if !canonicalLength(sizeField) {
		return "", nil, corruptf("invalid length %q", sizeField)
	}
	size, err := strconv.Atoi(string(sizeField))
	if err != nil {
		return "", nil, corruptf("invalid length %q", sizeField)
	}
	payload := raw[nul+1:]
	if size != len(payload) {
		return "", nil, corruptf("length mismatch (header=%d, actual=%d)", size, len(payload))
	}
	return ObjectType(raw[:sp]), payload, nil
}

// canonicalLength accepts only the decimal form Frame writes: digits, no
// sign, no leading zeros.
func canonicalLength(b []byte) bool {
	if len(b) == 0 || (len(b) > 1 && b[0] == '0') {
		return false
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
