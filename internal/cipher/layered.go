// Package cipher implements the three-stage layered Triple-DES encryption of
// the user PIN.
//
// Each stage runs Triple-DES in ECB mode with PKCS#7 padding and no IV, so a
// given key and plaintext always produce the same ciphertext and equal
// plaintext blocks produce equal ciphertext blocks. The construction is kept
// as-is for study and is not hardened.
package cipher

import (
	gocipher "crypto/cipher"
	"crypto/des"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrKeyLength is returned when a stage key is not KeySize bytes long.
var ErrKeyLength = errors.New("invalid triple-DES key length")

// BlockSize is the Triple-DES block size in bytes.
const BlockSize = des.BlockSize

// Chain holds the ciphertext produced by each stage.
type Chain struct {
	C1 []byte
	C2 []byte
	C3 []byte
}

// Hex returns the hex encodings of C1, C2 and C3.
func (c Chain) Hex() (string, string, string) {
	return hex.EncodeToString(c.C1), hex.EncodeToString(c.C2), hex.EncodeToString(c.C3)
}

// Layered chains three Triple-DES encryptions.
type Layered struct {
	stages [3]gocipher.Block
}

// NewLayered builds the three stage ciphers, failing fast on a bad key length.
func NewLayered(ks KeySet) (*Layered, error) {
	if err := ks.Validate(); err != nil {
		return nil, err
	}

	l := &Layered{}
	for i, k := range [][]byte{ks.K1, ks.K2, ks.K3} {
		block, err := des.NewTripleDESCipher(k)
		if err != nil {
			return nil, fmt.Errorf("stage %d cipher: %w", i+1, err)
		}
		l.stages[i] = block
	}
	return l, nil
}

// Encrypt runs C(i) = E(K(i), Pad(C(i-1))) with C0 = pin.
func (l *Layered) Encrypt(pin []byte) Chain {
	c1 := encryptECB(l.stages[0], Pad(pin, BlockSize))
	c2 := encryptECB(l.stages[1], Pad(c1, BlockSize))
	c3 := encryptECB(l.stages[2], Pad(c2, BlockSize))
	return Chain{C1: c1, C2: c2, C3: c3}
}

// Decrypt peels the three stages off c3 and returns the original PIN bytes.
func (l *Layered) Decrypt(c3 []byte) ([]byte, error) {
	data := c3
	for i := len(l.stages) - 1; i >= 0; i-- {
		if len(data) == 0 || len(data)%BlockSize != 0 {
			return nil, fmt.Errorf("stage %d: ciphertext is not a whole number of blocks", i+1)
		}
		plain := decryptECB(l.stages[i], data)
		unpadded, err := Unpad(plain, BlockSize)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i+1, err)
		}
		data = unpadded
	}
	return data, nil
}

// encryptECB encrypts each block independently. len(src) must be a multiple of the block size.
func encryptECB(b gocipher.Block, src []byte) []byte {
	bs := b.BlockSize()
	dst := make([]byte, len(src))
	for off := 0; off < len(src); off += bs {
		b.Encrypt(dst[off:off+bs], src[off:off+bs])
	}
	return dst
}

func decryptECB(b gocipher.Block, src []byte) []byte {
	bs := b.BlockSize()
	dst := make([]byte, len(src))
	for off := 0; off < len(src); off += bs {
		b.Decrypt(dst[off:off+bs], src[off:off+bs])
	}
	return dst
}
