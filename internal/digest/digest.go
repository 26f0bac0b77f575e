// Package digest computes cryptographic digests for integrity reporting.
package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"
)

// Sum returns the hex digest of buf under the named algorithm. Supported:
// md5, sha1, sha256, sha512 (case-insensitive, "sha-256" style accepted).
func Sum(buf []byte, algorithm string) (string, error) {
	h, err := newHash(algorithm)
	if err != nil {
		return "", err
	}
	h.Write(buf)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SumAll computes every requested digest, keyed by the normalized algorithm
// name. An unsupported algorithm fails the whole call.
func SumAll(buf []byte, algorithms []string) (map[string]string, error) {
	out := make(map[string]string, len(algorithms))
	for _, alg := range algorithms {
		sum, err := Sum(buf, alg)
		if err != nil {
			return nil, err
		}
		out[normalize(alg)] = sum
	}
	return out, nil
}

func newHash(algorithm string) (hash.Hash, error) {
	switch normalize(algorithm) {
	case "md5":
		return md5.New(), nil
	case "sha1":
		return sha1.New(), nil
	case "sha256":
		return sha256.New(), nil
	case "sha512":
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("digest: unsupported algorithm %q", algorithm)
	}
}

func normalize(algorithm string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(algorithm)), "-", "")
}
