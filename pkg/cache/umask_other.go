//go:build !unix

package cache

import "os"

func currentUmask() os.FileMode {
	return 0022
}
