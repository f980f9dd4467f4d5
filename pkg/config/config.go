// Package config reads the .gitfat document describing where fat objects are stored.
//
// The document is TOML. Its first table names the storage backend and holds the
// settings of the primary store. An optional "smudgestore" sub-table describes the
// store which added files are published to, and "extrapushargs" tunes uploads:
//
//	[s3]
//	bucket = 's3://munki-repo'
//	endpoint = 'http://127.0.0.1:9000'
//	[s3.smudgestore]
//	bucket = 's3://munki-publish'
//	[s3.extrapushargs]
//	ACL = 'bucket-owner-full-control'
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/oneconcern/gitfat/pkg/errors"
)

// FileName of the configuration document, at the root of the working tree
const FileName = ".gitfat"

var (
	// ErrConfigMissing indicates that no .gitfat document was found
	ErrConfigMissing = errors.New("no valid fat config exists")

	// ErrInvalidConfig indicates a document which cannot be parsed or describes no store
	ErrInvalidConfig = errors.New("invalid fat config")
)

// Store settings
type Store struct {
	Bucket          string            `toml:"bucket"`
	Prefix          string            `toml:"prefix"`
	Endpoint        string            `toml:"endpoint"`
	Region          string            `toml:"region"`
	Profile         string            `toml:"profile"`
	AccessKeyID     string            `toml:"access_key_id"`
	SecretAccessKey string            `toml:"secret_access_key"`
	Path            string            `toml:"path"` // local directory, for the localfs backend
	ExtraPushArgs   map[string]string `toml:"extrapushargs"`
	SmudgeStore     *Store            `toml:"smudgestore"`
}

// ACL requested for uploads, if any
func (s Store) ACL() string {
	return s.ExtraPushArgs["ACL"]
}

// Config of the fat stores
type Config struct {
	// Backend is the name of the first table of the document
	Backend string

	// Store is the primary store, which fat objects are pushed to and pulled from
	Store Store

	// Publish is the store added files are published to. It is nil when not configured.
	Publish *Store

	// Undecoded lists keys ignored while parsing
	Undecoded []string
}

// Load the configuration document at path
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, ErrConfigMissing.Wrapf("%s", path)
		}
		return Config{}, err
	}
	return Parse(data)
}

// LoadFromRoot loads the configuration document at the root of a working tree
func LoadFromRoot(root string) (Config, error) {
	return Load(filepath.Join(root, FileName))
}

// Parse a configuration document
func Parse(data []byte) (Config, error) {
	var sections map[string]Store
	md, err := toml.Decode(string(data), &sections)
	if err != nil {
		return Config{}, ErrInvalidConfig.Wrap(err)
	}

	var cfg Config
	// keys come in document order
	for _, key := range md.Keys() {
		if len(key) == 1 {
			cfg.Backend = key[0]
			break
		}
	}
	if cfg.Backend == "" {
		return Config{}, ErrInvalidConfig.Wrapf("no store section")
	}

	cfg.Store = sections[cfg.Backend]
	if cfg.Store.SmudgeStore != nil {
		publish := cfg.Store.SmudgeStore.inherit(cfg.Store)
		publish.SmudgeStore = nil
		cfg.Publish = &publish
	}
	for _, key := range md.Undecoded() {
		cfg.Undecoded = append(cfg.Undecoded, key.String())
	}
	return cfg, nil
}

// inherit connection settings left unset from a parent store
func (s Store) inherit(parent Store) Store {
	if s.Endpoint == "" {
		s.Endpoint = parent.Endpoint
	}
	if s.Region == "" {
		s.Region = parent.Region
	}
	if s.Profile == "" {
		s.Profile = parent.Profile
	}
	if s.AccessKeyID == "" && s.SecretAccessKey == "" {
		s.AccessKeyID = parent.AccessKeyID
		s.SecretAccessKey = parent.SecretAccessKey
	}
	if s.ExtraPushArgs == nil {
		s.ExtraPushArgs = parent.ExtraPushArgs
	}
	return s
}
