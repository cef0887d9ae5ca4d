package rng_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/duskhollow/emberfall/internal/game/rng"
)

func TestSeededSource_Deterministic(t *testing.T) {
	a := rng.NewSeededSource(42)
	b := rng.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestSeededSource_IntnRange(t *testing.T) {
	src := rng.NewSeededSource(7)
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Float64Range(t *testing.T) {
	src := rng.NewCryptoSource()
	for i := 0; i < 100; i++ {
		v := src.Float64()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestIntn_PanicsOnNonPositive(t *testing.T) {
	src := rng.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}
