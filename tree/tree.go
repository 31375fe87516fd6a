package tree

import (
	"sync"

	"github.com/cosmos/iavl"
	dbm "github.com/tendermint/tm-db"
)

type saver interface {
	Commit(db *iavl.MutableTree) error
	SetImmutableTree(immutableTree *iavl.ImmutableTree)
}

// MTree is a versioned IAVL tree shared by all state modules.
type MTree interface {
	Commit(...saver) ([]byte, int64, error)
	SetInitialVersion(version uint64)
	MutableTree() *iavl.MutableTree
	GetLastImmutable() *iavl.ImmutableTree
	GetImmutableAtHeight(version int64) (*iavl.ImmutableTree, error)
	DeleteVersion(version int64) error
	AvailableVersions() []int
	Version() int64
	Hash() []byte
}

// NewMutableTree opens the tree at the given height, height 0 means empty or latest.
// Versions older than keepLastStates are pruned on commit, 0 keeps everything.
func NewMutableTree(height uint64, db dbm.DB, cacheSize int, keepLastStates int64) (MTree, error) {
	tree, err := iavl.NewMutableTree(db, cacheSize)
	if err != nil {
		return nil, err
	}

	if height == 0 {
		if _, err := tree.Load(); err != nil {
			return nil, err
		}
	} else if _, err := tree.LoadVersionForOverwriting(int64(height)); err != nil {
		return nil, err
	}

	m := &mutableTree{
		tree:           tree,
		db:             db,
		cacheSize:      cacheSize,
		keepLastStates: keepLastStates,
	}
	m.immutable = m.loadImmutable()

	return m, nil
}

type mutableTree struct {
	tree      *iavl.MutableTree
	immutable *iavl.ImmutableTree

	db             dbm.DB
	cacheSize      int
	keepLastStates int64

	lock sync.RWMutex
}

func (t *mutableTree) loadImmutable() *iavl.ImmutableTree {
	if t.tree.Version() == 0 {
		return iavl.NewImmutableTree(t.db, t.cacheSize)
	}

	immutable, err := t.tree.GetImmutable(t.tree.Version())
	if err != nil {
		panic(err)
	}

	return immutable
}

// Commit writes every saver into the working tree, saves a new version and
// hands the committed view back to the savers.
func (t *mutableTree) Commit(savers ...saver) ([]byte, int64, error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	for _, s := range savers {
		if err := s.Commit(t.tree); err != nil {
			return nil, 0, err
		}
	}

	hash, version, err := t.tree.SaveVersion()
	if err != nil {
		return nil, 0, err
	}

	immutable, err := t.tree.GetImmutable(version)
	if err != nil {
		return nil, 0, err
	}
	t.immutable = immutable

	for _, s := range savers {
		s.SetImmutableTree(immutable)
	}

	if t.keepLastStates > 0 {
		old := version - t.keepLastStates
		if old > 0 && t.tree.VersionExists(old) {
			if err := t.tree.DeleteVersion(old); err != nil {
				return nil, 0, err
			}
		}
	}

	return hash, version, nil
}

// SetInitialVersion makes the first saved version of an empty tree start at version.
func (t *mutableTree) SetInitialVersion(version uint64) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.tree.SetInitialVersion(version)
}

func (t *mutableTree) MutableTree() *iavl.MutableTree {
	return t.tree
}

func (t *mutableTree) GetLastImmutable() *iavl.ImmutableTree {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.immutable
}

func (t *mutableTree) GetImmutableAtHeight(version int64) (*iavl.ImmutableTree, error) {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.tree.GetImmutable(version)
}

func (t *mutableTree) DeleteVersion(version int64) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if !t.tree.VersionExists(version) {
		return nil
	}

	return t.tree.DeleteVersion(version)
}

func (t *mutableTree) AvailableVersions() []int {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.tree.AvailableVersions()
}

func (t *mutableTree) Version() int64 {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.tree.Version()
}

func (t *mutableTree) Hash() []byte {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.tree.Hash()
}
