package field

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundary(t *testing.T) {
	t.Run("p is rejected", func(t *testing.T) {
		_, err := FromBigInt(Modulus())
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("p-1 is accepted", func(t *testing.T) {
		pMinus1 := new(big.Int).Sub(Modulus(), big.NewInt(1))
		e, err := FromBigInt(pMinus1)
		require.NoError(t, err)
		assert.Equal(t, pMinus1, e.BigInt())
	})

	t.Run("negative is rejected", func(t *testing.T) {
		_, err := FromBigInt(big.NewInt(-1))
		assert.ErrorIs(t, err, ErrOutOfRange)
	})
}

func TestLittleEndianRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 42, 1 << 63} {
		e := FromUint64(v)
		le := EncodeLE(e)
		back, err := DecodeLE(le)
		require.NoError(t, err)
		assert.True(t, e.Equal(back))
	}
}

func TestDecodeLERejectsOutOfRange(t *testing.T) {
	// Modulus encoded little-endian must be rejected by DecodeLE.
	be := Element{}.Bytes() // zero, placeholder to get array type
	m := Modulus().Bytes()
	copy(be[32-len(m):], m)
	var le [32]byte
	for i := range be {
		le[i] = be[31-i]
	}
	_, err := DecodeLE(le)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestEqualAndCmp(t *testing.T) {
	a := FromUint64(5)
	b := FromUint64(5)
	c := FromUint64(6)
	assert.True(t, a.Equal(b))
	assert.Equal(t, 0, a.Cmp(b))
	assert.Less(t, a.Cmp(c), 0)
}
