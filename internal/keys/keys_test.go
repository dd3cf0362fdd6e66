package keys

import (
	"crypto/sha256"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestDerive_IsSHA256(t *testing.T) {
	c3 := []byte{0xde, 0xad, 0xbe, 0xef}
	want := sha256.Sum256(c3)
	assert.Equal(t, want[:], Derive(c3).Bytes())
}

func TestKeyForms_Lengths(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c3 := rapid.SliceOf(rapid.Byte()).Draw(rt, "c3")
		k := Derive(c3)
		if len(k.Bytes()) != 32 {
			rt.Fatalf("key is %d bytes", len(k.Bytes()))
		}
		if len(k.Hex()) != 64 {
			rt.Fatalf("hex is %d chars", len(k.Hex()))
		}
		bits := k.Bits()
		if len(bits) != 256 || strings.Trim(bits, "01") != "" {
			rt.Fatalf("bad bit string %q", bits)
		}
	})
}

func TestBits_MSBFirst(t *testing.T) {
	var k Key
	k[0] = 0x80
	k[1] = 0x01
	k[31] = 0xff
	bits := k.Bits()

	assert.Equal(t, "10000000", bits[0:8])
	assert.Equal(t, "00000001", bits[8:16])
	assert.Equal(t, "11111111", bits[248:256])
}

func TestHex_Lowercase(t *testing.T) {
	var k Key
	k[0] = 0xAB
	assert.Equal(t, "ab"+strings.Repeat("0", 62), k.Hex())
	assert.Equal(t, k.Hex(), k.String())
}

func TestDerive_Deterministic(t *testing.T) {
	assert.Equal(t, Derive([]byte("x")), Derive([]byte("x")))
	assert.NotEqual(t, Derive([]byte("x")), Derive([]byte("y")))
}
