package utils

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	db "github.com/tendermint/tm-db"
)

const (
	stateDBName  = "state"
	eventsDBName = "events"
)

// Storage owns the state and events databases of a node.
type Storage struct {
	home    string
	backend db.BackendType
	stateDB db.DB
	eventDB db.DB
}

func NewStorage(home string, backend string) *Storage {
	return &Storage{home: home, backend: db.BackendType(backend)}
}

func (s *Storage) GetGrantHome() string {
	return s.home
}

func (s *Storage) dataDir() string {
	return filepath.Join(s.home, "data")
}

func (s *Storage) open(name string) (db.DB, error) {
	if s.backend == db.GoLevelDBBackend {
		levelDB, err := db.NewGoLevelDBWithOpts(name, s.dataDir(), &opt.Options{
			BlockCacheCapacity: 64 * opt.MiB,
			Filter:             filter.NewBloomFilter(10),
		})
		if err != nil {
			return nil, err
		}
		return levelDB, nil
	}

	return db.NewDB(name, s.backend, s.dataDir())
}

// InitStateDB opens the database backing the ledger state tree.
func (s *Storage) InitStateDB() (db.DB, error) {
	stateDB, err := s.open(stateDBName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open state db")
	}

	s.stateDB = stateDB
	return stateDB, nil
}

// InitEventDB opens the database of committed ledger events.
func (s *Storage) InitEventDB() (db.DB, error) {
	eventDB, err := s.open(eventsDBName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open events db")
	}

	s.eventDB = eventDB
	return eventDB, nil
}

func (s *Storage) StateDB() db.DB {
	return s.stateDB
}

func (s *Storage) EventDB() db.DB {
	return s.eventDB
}

// Close closes every opened database.
func (s *Storage) Close() error {
	if s.stateDB != nil {
		if err := s.stateDB.Close(); err != nil {
			return err
		}
	}
	if s.eventDB != nil {
		if err := s.eventDB.Close(); err != nil {
			return err
		}
	}
	return nil
}
