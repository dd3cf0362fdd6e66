// Package keys finalizes the layered ciphertext into the 256-bit key.
package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Size is the key length in bytes.
const Size = sha256.Size

// Key is the final cryptographic key, SHA-256 of the last cipher stage.
type Key [Size]byte

// Derive hashes c3 into the final key.
func Derive(c3 []byte) Key {
	return Key(sha256.Sum256(c3))
}

func (k Key) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, k[:])
	return out
}

// Hex returns the 64 character lowercase hex encoding.
func (k Key) Hex() string {
	return hex.EncodeToString(k[:])
}

// Bits returns the 256 character '0'/'1' string, most significant bit first per byte.
func (k Key) Bits() string {
	var sb strings.Builder
	sb.Grow(Size * 8)
	for _, b := range k {
		for i := 7; i >= 0; i-- {
			if b>>uint(i)&1 == 1 {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
	}
	return sb.String()
}

func (k Key) String() string {
	return k.Hex()
}
