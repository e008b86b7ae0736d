// Package memorystorage is the storage backend used when neither a database
// DSN nor a file name is configured. Data lives only as long as the process.
package memorystorage

import (
	"github.com/patric-chuzhbe/mesto/internal/db/jsondb"
)

type MemoryStorage struct {
	*jsondb.JSONDB
}

func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: &jsondb.JSONDB{
			Cache: jsondb.NewCache(),
		},
	}, nil
}

func (theStorage *MemoryStorage) Close() error {
	return nil
}
