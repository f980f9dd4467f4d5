// Package stub encodes and decodes the fixed-width placeholder committed to
// git history in place of fat file content.
//
// A stub reads:
//
//	#$# git-fat <40 hex sha1 digest> <size, right-justified on 20 columns>\n
package stub

import (
	"bytes"
	"crypto/sha1" // nolint: gosec
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/oneconcern/gitfat/pkg/errors"
)

// Cookie marks the beginning of every stub.
const Cookie = "#$# git-fat"

var cookie = []byte(Cookie)

// ErrInvalidStub is returned when decoding text which does not carry a digest.
var ErrInvalidStub = errors.New("invalid git-fat stub")

// MagicLen is the exact length of any stub. It is derived once from a known
// encoding rather than hard-coded.
var MagicLen = magicLen()

func magicLen() int {
	dummy := []byte("dummy")
	sum := sha1.Sum(dummy) // nolint: gosec
	return len(Encode(hex.EncodeToString(sum[:]), int64(len(dummy))))
}

// Encode the stub for some content digest and size.
func Encode(digest string, size int64) []byte {
	return []byte(fmt.Sprintf("%s %s %20d\n", Cookie, digest, size))
}

// Decode extracts the digest and size declared by a stub.
//
// Legacy stubs with no size decode with a size of 0.
func Decode(data []byte) (string, int64, error) {
	if !bytes.HasPrefix(data, cookie) {
		return "", 0, ErrInvalidStub.Wrapf("missing cookie")
	}
	parts := bytes.Fields(data[len(cookie):])
	if len(parts) == 0 {
		return "", 0, ErrInvalidStub.Wrapf("missing digest")
	}
	digest := string(parts[0])
	if len(parts) < 2 {
		return digest, 0, nil
	}
	size, err := strconv.ParseInt(string(parts[1]), 10, 64)
	if err != nil {
		return "", 0, ErrInvalidStub.Wrap(err)
	}
	return digest, size, nil
}

// IsStub tells if data is exactly a stub: a matching cookie with any other
// length is not a stub.
func IsStub(data []byte) bool {
	return len(data) == MagicLen && bytes.HasPrefix(data, cookie)
}
