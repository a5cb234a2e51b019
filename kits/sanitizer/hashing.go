package sanitizer

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
)

var fixedHashes = map[string]func() hash.Hash{
	"md5":        md5.New,
	"sha1":       sha1.New,
	"sha224":     sha256.New224,
	"sha256":     sha256.New,
	"sha384":     sha512.New384,
	"sha512":     sha512.New,
	"sha512_224": sha512.New512_224,
	"sha512_256": sha512.New512_256,
	"sha3_224":   sha3.New224,
	"sha3_256":   sha3.New256,
	"sha3_384":   sha3.New384,
	"sha3_512":   sha3.New512,
	"blake2b":    newBlake2b,
	"blake2s":    newBlake2s,
}

var extendableHashes = map[string]func() sha3.ShakeHash{
	"shake_128": sha3.NewShake128,
	"shake_256": sha3.NewShake256,
}

// Unkeyed constructors only fail on an oversized key.
func newBlake2b() hash.Hash {
	h, _ := blake2b.New512(nil)
	return h
}

func newBlake2s() hash.Hash {
	h, _ := blake2s.New256(nil)
	return h
}

// HashNames lists the algorithm names accepted by HashByName.
func HashNames() []string {
	names := make([]string, 0, len(fixedHashes)+len(extendableHashes))
	for n := range fixedHashes {
		names = append(names, n)
	}
	for n := range extendableHashes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// IsExtendable reports whether name is an extendable-output algorithm that
// takes an output length.
func IsExtendable(name string) bool {
	_, ok := extendableHashes[normalizeHashName(name)]
	return ok
}

// HashByName returns a digest Replacement for a named algorithm. Names are
// case-insensitive and accept "-" in place of "_" (sha3-256, shake-128) or as
// a separator (sha-256). length only applies to the shake algorithms; zero
// selects DefaultExtendableLength.
func HashByName(name string, length int) (Replacement, error) {
	n := normalizeHashName(name)
	if newHash, ok := fixedHashes[n]; ok {
		return Hash(newHash), nil
	}
	if newShake, ok := extendableHashes[n]; ok {
		return ExtendableHash(newShake, length), nil
	}
	return Replacement{}, &ConfigError{Field: "hash", Value: name, Err: errUnknownHash}
}

func normalizeHashName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, c := range []string{
		strings.ReplaceAll(n, "-", "_"),
		strings.ReplaceAll(n, "-", ""),
	} {
		if _, ok := fixedHashes[c]; ok {
			return c
		}
		if _, ok := extendableHashes[c]; ok {
			return c
		}
	}
	return n
}
