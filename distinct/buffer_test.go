package distinct

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferSetSemantics(t *testing.T) {
	b := newSampleBuffer[string](4)

	assert.Equal(t, 0, b.size())
	assert.False(t, b.contains("a"))

	b.insert("a")
	b.insert("a")
	b.insert("b")
	assert.Equal(t, 2, b.size())
	assert.True(t, b.contains("a"))

	b.remove("a")
	b.remove("a") // removing an absent element is a no-op
	assert.Equal(t, 1, b.size())
	assert.False(t, b.contains("a"))
}

func TestThinKeepAllAndDropAll(t *testing.T) {
	b := newSampleBuffer[int](8)
	for i := 0; i < 8; i++ {
		b.insert(i)
	}

	b.thin(stubSource{keep: true})
	assert.Equal(t, 8, b.size())

	b.thin(stubSource{keep: false})
	assert.Equal(t, 0, b.size())
}

func TestThinHalvesOnAverage(t *testing.T) {
	const n = 10000
	b := newSampleBuffer[int](n)
	for i := 0; i < n; i++ {
		b.insert(i)
	}

	b.thin(NewSeededSource(11))

	// Survivors are Binomial(10000, 0.5): far more than ten standard
	// deviations inside [4500, 5500].
	assert.Greater(t, b.size(), 4500)
	assert.Less(t, b.size(), 5500)
}
