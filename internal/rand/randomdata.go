// Package rand produces payloads for tests: fat file contents and file names.
package rand

import (
	"bytes"
	"math/rand"
	"sync"
	"time"
)

var (
	once    sync.Once
	mu      sync.Mutex
	rgen    *rand.Rand
	letters = bytes.Repeat([]byte("abcdefghijklmnopqrstuvwxyz0123456789a"), 7)
)

func seed() {
	rgen = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec
}

// Bytes returns n random bytes
func Bytes(n int) []byte {
	once.Do(seed)
	buf := make([]byte, n)
	mu.Lock()
	_, _ = rgen.Read(buf)
	mu.Unlock()
	return buf
}

// LetterBytes returns n random bytes picked in [a-z0-9]
func LetterBytes(n int) []byte {
	buf := Bytes(n)
	for i, b := range buf {
		buf[i] = letters[b]
	}
	return buf
}

// LetterString returns a random string picked in [a-z0-9], suitable as a file name
func LetterString(n int) string {
	return string(LetterBytes(n))
}
