// Package store persists the job registry between restarts.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amir-mohammad-HP/cronwatch/internal/job"
	"github.com/amir-mohammad-HP/cronwatch/internal/types"
	"github.com/amir-mohammad-HP/cronwatch/pkg/logger"
)

const (
	DriverNone   = "none"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

var ErrUnknownDriver = errors.New("unknown store driver")

// Store saves the full ordered job list and loads it back.
type Store interface {
	job.Store
	Load(ctx context.Context) ([]job.Job, error)
	Close() error
}

// Open returns the store selected by cfg.Driver. An empty driver means none.
func Open(cfg types.StoreConfig, log logger.Logger) (Store, error) {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.WithField("component", "store")

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverNone:
		return nopStore{}, nil
	case DriverFile:
		return NewFileStore(cfg.Path, log)
	case DriverSQLite:
		return OpenSQLite(cfg, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

type nopStore struct{}

func (nopStore) Save(ctx context.Context, jobs []job.Job) error {
	return nil
}

func (nopStore) Load(ctx context.Context) ([]job.Job, error) {
	return nil, nil
}

func (nopStore) Close() error {
	return nil
}
