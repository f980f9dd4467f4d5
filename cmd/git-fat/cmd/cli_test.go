package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/oneconcern/gitfat/internal/rand"
	"github.com/oneconcern/gitfat/pkg/cache"
	"github.com/oneconcern/gitfat/pkg/core"
	"github.com/oneconcern/gitfat/pkg/stub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exitRecorder stands for os.Exit() and log.Fatal() during tests
type exitRecorder struct {
	fatalCalls int
	codes      []int
}

type cliRepo struct {
	t      testing.TB
	root   string
	remote string
	git    *git.Repository
	wt     *git.Worktree
	exits  *exitRecorder
	stderr string
}

func setupTests(t *testing.T) *cliRepo {
	t.Helper()
	exits := &exitRecorder{}
	savedFatalln, savedFatalf, savedExit := logFatalln, logFatalf, osExit
	logFatalln = func(...interface{}) { exits.fatalCalls++ }
	logFatalf = func(string, ...interface{}) { exits.fatalCalls++ }
	osExit = func(code int) { exits.codes = append(exits.codes, code) }
	t.Cleanup(func() {
		logFatalln, logFatalf, osExit = savedFatalln, savedFatalf, savedExit
		fatFlags.root.config = ""
		fatFlags.root.dryRun = false
		fatFlags.verify.all = false
		fatFlags.verify.addedSince = ""
	})

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	r := &cliRepo{t: t, root: root, remote: t.TempDir(), git: repo, wt: wt, exits: exits}
	r.write(".gitfat", []byte("[localfs]\npath = '"+filepath.ToSlash(r.remote)+"'\n"))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	r.chdir("")
	return r
}

// chdir moves to a directory of the working tree, as a user running git-fat from there
func (r *cliRepo) chdir(dir string) {
	r.t.Helper()
	abs := filepath.Join(r.root, filepath.FromSlash(dir))
	require.NoError(r.t, os.MkdirAll(abs, 0755))
	require.NoError(r.t, os.Chdir(abs))
}

// run executes a git-fat command in the repository and returns its standard output
func (r *cliRepo) run(stdin []byte, args ...string) string {
	r.t.Helper()
	var out, errs bytes.Buffer
	rootCmd.SetIn(bytes.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errs)
	rootCmd.SetArgs(append([]string{"--repo", r.root, "--log-level", "none"}, args...))
	require.NoError(r.t, rootCmd.Execute())
	r.stderr = errs.String()
	return out.String()
}

func (r *cliRepo) write(path string, content []byte) {
	r.t.Helper()
	abs := filepath.Join(r.root, filepath.FromSlash(path))
	require.NoError(r.t, os.MkdirAll(filepath.Dir(abs), 0755))
	require.NoError(r.t, os.WriteFile(abs, content, 0644))
}

func (r *cliRepo) read(path string) []byte {
	r.t.Helper()
	b, err := os.ReadFile(filepath.Join(r.root, filepath.FromSlash(path)))
	require.NoError(r.t, err)
	return b
}

// addFat stages a fat file the way git does: through the clean filter
func (r *cliRepo) addFat(path string, content []byte) string {
	r.t.Helper()
	s := r.run(content, "filter-clean", path)
	require.True(r.t, stub.IsStub([]byte(s)), "expected a stub, got %q", s)
	r.write(path, []byte(s))
	_, err := r.wt.Add(path)
	require.NoError(r.t, err)
	digest, _, err := stub.Decode([]byte(s))
	require.NoError(r.t, err)
	return digest
}

func (r *cliRepo) commit(msg string) {
	r.t.Helper()
	_, err := r.wt.Add(".gitfat")
	require.NoError(r.t, err)
	_, err = r.wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	require.NoError(r.t, err)
}

func (r *cliRepo) cachePath(digest string) string {
	return filepath.Join(cache.DefaultDir(filepath.Join(r.root, ".git")), digest)
}

func TestInit(t *testing.T) {
	r := setupTests(t)
	r.run(nil, "init")
	require.Zero(t, r.exits.fatalCalls)

	cfg, err := r.git.Config()
	require.NoError(t, err)
	fat := cfg.Raw.Section("filter").Subsection(core.FilterName)
	assert.Equal(t, core.CleanCommand, fat.Option("clean"))
	assert.Equal(t, core.SmudgeCommand, fat.Option("smudge"))

	fi, err := os.Stat(cache.DefaultDir(filepath.Join(r.root, ".git")))
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}

func TestFilters(t *testing.T) {
	r := setupTests(t)
	data := rand.Bytes(10000)

	s := r.run(data, "filter-clean")
	require.True(t, stub.IsStub([]byte(s)))

	// a stub is passed through
	assert.Equal(t, s, r.run([]byte(s), "filter-clean"))

	assert.Equal(t, data, []byte(r.run([]byte(s), "filter-smudge")))
	assert.Empty(t, r.run([]byte("not a stub"), "filter-smudge"))
	require.Zero(t, r.exits.fatalCalls)
}

func TestPushPull(t *testing.T) {
	r := setupTests(t)
	r.run(nil, "init")
	data := rand.Bytes(20000)
	digest := r.addFat("assets/big.bin", data)
	r.commit("add big file")

	out := r.run(nil, "push")
	assert.Contains(t, out, "uploaded "+digest)
	uploaded, err := os.ReadFile(filepath.Join(r.remote, digest))
	require.NoError(t, err)
	assert.Equal(t, data, uploaded)

	r.run(nil, "verify")
	require.Empty(t, r.exits.codes)

	// a fresh clone has stubs and no cache
	require.NoError(t, os.Remove(r.cachePath(digest)))
	out = r.run(nil, "pull")
	assert.Contains(t, out, "downloaded "+digest)
	assert.Contains(t, out, "restored assets/big.bin")
	assert.Equal(t, data, r.read("assets/big.bin"))

	lines := strings.Split(strings.TrimSpace(r.run(nil, "status")), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"PATH", "OBJECT", "SIZE", "CACHED", "REMOTE", "RESTORED"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"assets/big.bin", digest, "20kB", "yes", "yes", "yes"}, strings.Fields(lines[1]))
	require.Zero(t, r.exits.fatalCalls)
}

func TestPull_Files(t *testing.T) {
	r := setupTests(t)
	first := rand.Bytes(100)
	d1 := r.addFat("first.bin", first)
	d2 := r.addFat("second.bin", rand.Bytes(100))
	r.commit("add fat files")
	r.run(nil, "push")
	require.NoError(t, os.Remove(r.cachePath(d1)))
	require.NoError(t, os.Remove(r.cachePath(d2)))

	out := r.run(nil, "pull", "first.bin", "unknown.bin")
	assert.Contains(t, out, "restored first.bin")
	assert.Contains(t, out, "skipped unknown.bin")
	assert.Equal(t, first, r.read("first.bin"))
	assert.True(t, stub.IsStub(r.read("second.bin")))
	require.Zero(t, r.exits.fatalCalls)
}

func TestVerify_Missing(t *testing.T) {
	r := setupTests(t)
	r.addFat("pushed.bin", rand.Bytes(100))
	r.commit("v1")
	r.run(nil, "push")

	r.addFat("local.bin", rand.Bytes(100))

	r.run(nil, "verify", "pushed.bin")
	require.Empty(t, r.exits.codes)

	r.run(nil, "verify")
	assert.Equal(t, []int{1}, r.exits.codes)

	r.run(nil, "verify", "--added-since", "HEAD")
	assert.Equal(t, []int{1, 1}, r.exits.codes)
	fatFlags.verify.addedSince = ""

	r.run(nil, "verify", "--all", "pushed.bin")
	assert.Equal(t, 1, r.exits.fatalCalls, "conflicting scopes")
}

func TestPathsFromSubdirectory(t *testing.T) {
	r := setupTests(t)
	pulled := rand.Bytes(100)
	digest := r.addFat("sub/pulled.bin", pulled)
	r.addFat("pulled.bin", rand.Bytes(100))
	r.commit("v1")
	r.run(nil, "push")
	require.NoError(t, os.Remove(r.cachePath(digest)))

	r.addFat("sub/unpushed.bin", rand.Bytes(100))
	r.chdir("sub")

	r.run(nil, "verify", "unpushed.bin")
	assert.Equal(t, []int{1}, r.exits.codes)
	assert.Contains(t, r.stderr, "git-fat: not found on remote store: sub/unpushed.bin")
	assert.Contains(t, r.stderr, "git-fat: verify failed: 1 fat file(s) missing")

	r.run(nil, "verify", filepath.Join("..", "pulled.bin"))
	assert.Equal(t, []int{1}, r.exits.codes)

	out := r.run(nil, "pull", "pulled.bin")
	assert.Contains(t, out, "restored sub/pulled.bin")
	assert.Equal(t, pulled, r.read("sub/pulled.bin"))
	assert.True(t, stub.IsStub(r.read("pulled.bin")), "the file at the root is left alone")
	require.Zero(t, r.exits.fatalCalls)
}

func TestPublish(t *testing.T) {
	r := setupTests(t)
	published := t.TempDir()
	r.write(".gitfat", []byte(strings.Join([]string{
		"[localfs]",
		"path = '" + filepath.ToSlash(r.remote) + "'",
		"[localfs.smudgestore]",
		"path = '" + filepath.ToSlash(published) + "'",
		"",
	}, "\n")))
	r.commit("v1")
	head, err := r.git.Head()
	require.NoError(t, err)

	data := rand.Bytes(500)
	r.addFat("pkgs/tool.pkg", data)
	r.commit("v2")
	r.run(nil, "push")

	// publish what v2 adds, seen from v1
	require.NoError(t, r.wt.Checkout(&git.CheckoutOptions{Hash: head.Hash(), Force: true}))
	out := r.run(nil, "publish", "master")
	assert.Contains(t, out, "uploaded pkgs/tool.pkg")
	require.Zero(t, r.exits.fatalCalls)

	content, err := os.ReadFile(filepath.Join(published, "pkgs", "tool.pkg"))
	require.NoError(t, err)
	assert.Equal(t, data, content)
}

func TestVersion(t *testing.T) {
	r := setupTests(t)
	assert.Contains(t, r.run(nil, "version"), "Version: dev")
}
