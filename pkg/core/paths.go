package core

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/oneconcern/gitfat/pkg/core/status"
	"github.com/oneconcern/gitfat/pkg/model"
	"github.com/oneconcern/gitfat/pkg/stub"
)

// relPath maps an absolute or root-relative path to a slash-separated path relative to the root
func (e *Engine) relPath(p string) (string, error) {
	root := e.repo.Root()
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	rel, err := filepath.Rel(root, filepath.Clean(p))
	if err != nil {
		return "", status.ErrNotTracked.Wrap(err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", status.ErrNotTracked.Wrapf("%s is outside of the repository", p)
	}
	return filepath.ToSlash(rel), nil
}

// holdsStub tells if the working tree file of an object still contains its stub
func (e *Engine) holdsStub(obj model.FatObject) bool {
	f, err := e.fs.Open(obj.AbsPath)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, stub.MagicLen+1)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false
	}
	return stub.IsStub(buf[:n])
}
