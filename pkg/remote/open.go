package remote

import (
	"path/filepath"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/oneconcern/gitfat/pkg/config"
	"github.com/oneconcern/gitfat/pkg/errors"
	"github.com/oneconcern/gitfat/pkg/storage"
	"github.com/oneconcern/gitfat/pkg/storage/localfs"
	"github.com/oneconcern/gitfat/pkg/storage/sthree"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ErrUnknownBackend indicates a configuration naming an unregistered backend
var ErrUnknownBackend = errors.New("unknown fat store backend")

// Backend builds a storage from its configuration. Relative paths are resolved against root.
type Backend func(cfg config.Store, root string) (storage.Store, error)

var (
	backendsMx sync.RWMutex
	backends   = map[string]Backend{
		"s3":      newS3,
		"localfs": newLocalFS,
	}
)

// Register a backend under a configuration section name
func Register(name string, backend Backend) {
	backendsMx.Lock()
	defer backendsMx.Unlock()
	backends[name] = backend
}

// Backends lists registered backend names
func Backends() []string {
	backendsMx.RLock()
	defer backendsMx.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open the primary store and, when configured, the publish store.
//
// The publish store is nil when the configuration has no smudgestore.
func Open(cfg config.Config, root string, opts ...OpenOption) (primary, publish *Store, err error) {
	o := openOptions{l: zap.NewNop(), fs: afero.NewOsFs()}
	for _, apply := range opts {
		apply(&o)
	}

	backendsMx.RLock()
	backend, ok := backends[cfg.Backend]
	backendsMx.RUnlock()
	if !ok {
		return nil, nil, ErrUnknownBackend.Wrapf("%q (known backends: %v)", cfg.Backend, Backends())
	}

	build := func(sc config.Store) (*Store, error) {
		st, err := backend(sc, root)
		if err != nil {
			return nil, err
		}
		st = storage.Instrument(o.tracer, o.l, st)
		return New(st, Fs(o.fs), Logger(o.l)), nil
	}

	if primary, err = build(cfg.Store); err != nil {
		return nil, nil, err
	}
	if cfg.Publish != nil {
		if publish, err = build(*cfg.Publish); err != nil {
			return nil, nil, err
		}
	}
	return primary, publish, nil
}

func newS3(cfg config.Store, _ string) (storage.Store, error) {
	awsConfig := aws.NewConfig()
	if cfg.Region != "" {
		awsConfig = awsConfig.WithRegion(cfg.Region)
	}
	if cfg.Endpoint != "" {
		awsConfig = awsConfig.WithEndpoint(cfg.Endpoint).WithS3ForcePathStyle(true)
	}
	switch {
	case cfg.AccessKeyID != "" && cfg.SecretAccessKey != "":
		awsConfig = awsConfig.WithCredentials(credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, ""))
	case cfg.Profile != "":
		awsConfig = awsConfig.WithCredentials(credentials.NewSharedCredentials("", cfg.Profile))
	}

	return sthree.New(
		sthree.Bucket(cfg.Bucket),
		sthree.Prefix(cfg.Prefix),
		sthree.ACL(cfg.ACL()),
		sthree.AWSConfig(awsConfig),
	)
}

func newLocalFS(cfg config.Store, root string) (storage.Store, error) {
	if cfg.Path == "" {
		return nil, config.ErrInvalidConfig.Wrapf("localfs store requires a path")
	}
	dir := cfg.Path
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	osfs := afero.NewOsFs()
	if err := osfs.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return localfs.New(afero.NewBasePathFs(osfs, dir))
}
