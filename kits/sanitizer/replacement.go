package sanitizer

import (
	"encoding/hex"
	"hash"

	"golang.org/x/crypto/sha3"
)

// DefaultExtendableLength is the output length, in bytes, used for
// extendable-output digests when the caller does not pick one.
const DefaultExtendableLength = 256

// TransformFunc rewrites the text form of a flagged value.
type TransformFunc func(text string) (string, error)

// DigestFunc computes a digest over the UTF-8 bytes of a flagged value.
type DigestFunc func(data []byte) ([]byte, error)

type replacementKind uint8

const (
	replaceStatic replacementKind = iota
	replaceTransform
	replaceDigest
)

// Replacement converts the value of a sensitive key into its masked form.
// The zero Replacement substitutes an empty string.
type Replacement struct {
	kind      replacementKind
	text      string
	transform TransformFunc
	digest    DigestFunc
}

// Static replaces the value with text verbatim.
func Static(text string) Replacement {
	return Replacement{kind: replaceStatic, text: text}
}

// Transform passes the value's text form to fn and uses its result.
func Transform(fn TransformFunc) Replacement {
	return Replacement{kind: replaceTransform, transform: fn}
}

// Digest hashes the value's text form with fn and renders the result as
// lowercase hex.
func Digest(fn DigestFunc) Replacement {
	return Replacement{kind: replaceDigest, digest: fn}
}

// Hash is Digest over a fixed-size hash.Hash constructor such as sha256.New.
func Hash(newHash func() hash.Hash) Replacement {
	return Digest(func(data []byte) ([]byte, error) {
		h := newHash()
		h.Write(data)
		return h.Sum(nil), nil
	})
}

// ExtendableHash is Digest over an extendable-output function such as
// sha3.NewShake256, reading length bytes of output. A length of zero or less
// selects DefaultExtendableLength.
func ExtendableHash(newShake func() sha3.ShakeHash, length int) Replacement {
	if length <= 0 {
		length = DefaultExtendableLength
	}
	return Digest(func(data []byte) ([]byte, error) {
		h := newShake()
		h.Write(data)
		out := make([]byte, length)
		if _, err := h.Read(out); err != nil {
			return nil, err
		}
		return out, nil
	})
}

// Apply returns the masked form of v. Errors from caller-supplied functions
// are returned unmodified.
func (r Replacement) Apply(v Value) (Value, error) {
	switch r.kind {
	case replaceTransform:
		out, err := r.transform(v.String())
		if err != nil {
			return Value{}, err
		}
		return Text(out), nil
	case replaceDigest:
		sum, err := r.digest([]byte(v.String()))
		if err != nil {
			return Value{}, err
		}
		return Text(hex.EncodeToString(sum)), nil
	}
	return Text(r.text), nil
}
