package object

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"
)

var (
	// ErrUnsigned means the commit carries no signature header.
	ErrUnsigned = errors.New("commit is not signed")
	// ErrBadSignature means the signature is malformed or does not verify.
	ErrBadSignature = errors.New("bad commit signature")
)

// signatureKey is the commit header holding the armored signature.
const signatureKey = "gpgsig"

// SSHSIG framing, as produced by ssh-keygen -Y sign and read by git.
const (
	sshsigMagic     = "SSHSIG"
	sshsigVersion   = 1
	sshsigNamespace = "git"
	sshsigHashAlg   = "sha512"
	sshsigArmorHead = "-----BEGIN SSH SIGNATURE-----"
	sshsigArmorTail = "-----END SSH SIGNATURE-----"
	sshsigLineLen   = 70
)

type sshsigBlob struct {
	Version       uint32
	PublicKey     []byte
	Namespace     string
	Reserved      string
	HashAlgorithm string
	Signature     []byte
}

type sshsigSignedData struct {
	Namespace     string
	Reserved      string
	HashAlgorithm string
	Hash          []byte
}

// CommitSigningPayload returns the canonical bytes that are signed for a
// commit: the commit without its signature header.
func CommitSigningPayload(c *Commit) []byte {
	if c == nil {
		return nil
	}
	k := c.kvlm.Clone()
	k.Del(signatureKey)
	return k.Serialize()
}

// SignCommit returns a copy of c carrying an armored SSH signature over
// CommitSigningPayload(c). Any existing signature is replaced.
func SignCommit(c *Commit, signer ssh.Signer) (*Commit, error) {
	payload := CommitSigningPayload(c)

	signed, err := sshsigMessage(sshsigHashAlg, payload)
	if err != nil {
		return nil, err
	}
	var sig *ssh.Signature
	if as, ok := signer.(ssh.AlgorithmSigner); ok && signer.PublicKey().Type() == ssh.KeyAlgoRSA {
		sig, err = as.SignWithAlgorithm(rand.Reader, signed, ssh.KeyAlgoRSASHA512)
	} else {
		sig, err = signer.Sign(rand.Reader, signed)
	}
	if err != nil {
		return nil, fmt.Errorf("sign commit: %w", err)
	}

	blob := append([]byte(sshsigMagic), ssh.Marshal(sshsigBlob{
		Version:       sshsigVersion,
		PublicKey:     signer.PublicKey().Marshal(),
		Namespace:     sshsigNamespace,
		HashAlgorithm: sshsigHashAlg,
		Signature:     ssh.Marshal(sig),
	})...)

	k := c.kvlm.Clone()
	k.Del(signatureKey)
	k.add(signatureKey, armorSSHSig(blob))
	return &Commit{kvlm: k}, nil
}

// VerifyCommitSignature checks the commit's SSH signature and returns the
// public key that made it.
func VerifyCommitSignature(c *Commit) (ssh.PublicKey, error) {
	armored, ok := c.kvlm.Get(signatureKey)
	if !ok {
		return nil, ErrUnsigned
	}
	blob, err := dearmorSSHSig(armored)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if !bytes.HasPrefix(blob, []byte(sshsigMagic)) {
		return nil, fmt.Errorf("%w: missing %s magic", ErrBadSignature, sshsigMagic)
	}

	var sb sshsigBlob
	if err := ssh.Unmarshal(blob[len(sshsigMagic):], &sb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if sb.Version != sshsigVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadSignature, sb.Version)
	}
	if sb.Namespace != sshsigNamespace {
		return nil, fmt.Errorf("%w: namespace %q", ErrBadSignature, sb.Namespace)
	}

	pub, err := ssh.ParsePublicKey(sb.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	var sig ssh.Signature
	if err := ssh.Unmarshal(sb.Signature, &sig); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	signed, err := sshsigMessage(sb.HashAlgorithm, CommitSigningPayload(c))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if err := pub.Verify(signed, &sig); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return pub, nil
}

func sshsigMessage(hashAlg string, payload []byte) ([]byte, error) {
	var digest []byte
	switch hashAlg {
	case "sha512":
		sum := sha512.Sum512(payload)
		digest = sum[:]
	case "sha256":
		sum := sha256.Sum256(payload)
		digest = sum[:]
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q", hashAlg)
	}
	return append([]byte(sshsigMagic), ssh.Marshal(sshsigSignedData{
		Namespace:     sshsigNamespace,
		HashAlgorithm: hashAlg,
		Hash:          digest,
	})...), nil
}

func armorSSHSig(blob []byte) []byte {
	enc := base64.StdEncoding.EncodeToString(blob)
	var b strings.Builder
	b.WriteString(sshsigArmorHead)
	b.WriteByte('\n')
	for len(enc) > sshsigLineLen {
		b.WriteString(enc[:sshsigLineLen])
		b.WriteByte('\n')
		enc = enc[sshsigLineLen:]
	}
	b.WriteString(enc)
	b.WriteByte('\n')
	b.WriteString(sshsigArmorTail)
	return []byte(b.String())
}

func dearmorSSHSig(armored []byte) ([]byte, error) {
	text := strings.TrimSpace(string(armored))
	if !strings.HasPrefix(text, sshsigArmorHead) || !strings.HasSuffix(text, sshsigArmorTail) {
		return nil, errors.New("missing armor delimiters")
	}
	body := strings.TrimSuffix(strings.TrimPrefix(text, sshsigArmorHead), sshsigArmorTail)
	body = strings.Join(strings.Fields(body), "")
	return base64.StdEncoding.DecodeString(body)
}
