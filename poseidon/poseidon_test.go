package poseidon

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/polybase/payy/field"
)

func TestHash2Deterministic(t *testing.T) {
	a := field.FromUint64(1)
	b := field.FromUint64(2)
	h1 := Hash2(a, b)
	h2 := Hash2(a, b)
	assert.True(t, h1.Equal(h2))
}

func TestHash2Asymmetric(t *testing.T) {
	a := field.FromUint64(1)
	b := field.FromUint64(2)
	assert.False(t, Hash2(a, b).Equal(Hash2(b, a)))
}

func TestHashNMatchesHash2ForTwoElements(t *testing.T) {
	a := field.FromUint64(7)
	b := field.FromUint64(9)
	assert.True(t, Hash2(a, b).Equal(HashN(a, b)))
}
