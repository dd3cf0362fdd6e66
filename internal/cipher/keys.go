package cipher

import (
	"crypto/sha256"
	"fmt"
)

// KeySize is the Triple-DES three-key length in bytes.
const KeySize = 24

// KeySet carries the three stage keys of a layered encryption.
type KeySet struct {
	K1 []byte
	K2 []byte
	K3 []byte
}

// DeriveKey hashes a user supplied string and keeps the first KeySize bytes.
// Empty input is accepted and yields a fixed, weak key.
func DeriveKey(raw string) []byte {
	sum := sha256.Sum256([]byte(raw))
	key := make([]byte, KeySize)
	copy(key, sum[:KeySize])
	return key
}

// DeriveKeySet derives K1..K3 from three raw strings.
func DeriveKeySet(raw1, raw2, raw3 string) KeySet {
	return KeySet{
		K1: DeriveKey(raw1),
		K2: DeriveKey(raw2),
		K3: DeriveKey(raw3),
	}
}

// Validate fails with ErrKeyLength unless every key is exactly KeySize bytes.
func (ks KeySet) Validate() error {
	for i, k := range [][]byte{ks.K1, ks.K2, ks.K3} {
		if len(k) != KeySize {
			return fmt.Errorf("%w: K%d is %d bytes, want %d", ErrKeyLength, i+1, len(k), KeySize)
		}
	}
	return nil
}
