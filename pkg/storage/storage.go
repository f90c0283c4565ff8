// Package storage publishes the exported files.
package storage

import (
	"fmt"
	"path"

	"github.com/giongto35/vexport/pkg/config"
)

type Storage interface {
	// Save uploads the local file under the name.
	Save(name string, localPath string) error
}

const (
	ProviderNone   = "none"
	ProviderGoogle = "google"
	ProviderOracle = "oracle"
)

// New returns the storage of the configured provider.
func New(conf config.Storage) (Storage, error) {
	switch conf.Provider {
	case ProviderNone, "":
		return NewNoopCloudStorage(), nil
	case ProviderGoogle:
		return NewGoogleCloudClient(conf.Bucket)
	case ProviderOracle:
		return NewOracleDataStorageClient(conf.AccessURL)
	}
	return nil, fmt.Errorf("unknown storage provider %q", conf.Provider)
}

// Name makes the remote name of a local file.
func Name(prefix, localPath string) string { return path.Join(prefix, path.Base(localPath)) }
