package rand

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLetterString(t *testing.T) {
	name := LetterString(20)
	assert.Len(t, name, 20)
	for _, r := range name {
		assert.Contains(t, "abcdefghijklmnopqrstuvwxyz0123456789", string(r))
	}
}

func TestBytes(t *testing.T) {
	assert.Len(t, Bytes(0), 0)
	assert.Len(t, Bytes(4097), 4097)
	assert.NotEqual(t, Bytes(64), Bytes(64))
}

func benchmarkBytes(b *testing.B, size int) {
	for n := 0; n < b.N; n++ {
		_ = Bytes(size)
	}
}

func BenchmarkBytes1K(b *testing.B) { benchmarkBytes(b, 1024) }
func BenchmarkBytes1M(b *testing.B) { benchmarkBytes(b, 1024*1024) }
