package appdb

import (
	"encoding/binary"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/grantledger/grant-node/config"
	tmjson "github.com/tendermint/tendermint/libs/json"
	"github.com/tendermint/tm-db"
)

const (
	hashPath        = "hash"
	heightPath      = "height"
	startHeightPath = "startHeight"
	chainIDPath     = "chainID"
	blocksTimePath  = "blockDelta"

	dbName = "app"
)

// AppDB is responsible for storing basic information about app state on disk
type AppDB struct {
	db db.DB

	startHeight    uint64
	lastHeight     uint64
	lastTimeBlocks []uint64
}

// Close closes db connection
func (appDB *AppDB) Close() error {
	return appDB.db.Close()
}

// GetLastBlockHash returns latest block hash stored on disk
func (appDB *AppDB) GetLastBlockHash() []byte {
	rawHash, err := appDB.db.Get([]byte(hashPath))
	if err != nil {
		panic(err)
	}

	if len(rawHash) == 0 {
		return nil
	}

	return rawHash
}

// SetLastBlockHash stores given block hash on disk, panics on error
func (appDB *AppDB) SetLastBlockHash(hash []byte) {
	if err := appDB.db.Set([]byte(hashPath), hash); err != nil {
		panic(err)
	}
}

// GetLastHeight returns latest block height stored on disk
func (appDB *AppDB) GetLastHeight() uint64 {
	val := atomic.LoadUint64(&appDB.lastHeight)
	if val != 0 {
		return val
	}

	result, err := appDB.db.Get([]byte(heightPath))
	if err != nil {
		panic(err)
	}

	if len(result) != 0 {
		val = binary.BigEndian.Uint64(result)
		atomic.StoreUint64(&appDB.lastHeight, val)
	}

	return val
}

// SetLastHeight stores given block height on disk, panics on error
func (appDB *AppDB) SetLastHeight(height uint64) {
	h := make([]byte, 8)
	binary.BigEndian.PutUint64(h, height)

	if err := appDB.db.Set([]byte(heightPath), h); err != nil {
		panic(err)
	}

	atomic.StoreUint64(&appDB.lastHeight, height)
}

// SetStartHeight remembers the genesis initial height, SaveStartHeight persists it
func (appDB *AppDB) SetStartHeight(height uint64) {
	atomic.StoreUint64(&appDB.startHeight, height)
}

// SaveStartHeight stores the start height on disk, panics on error
func (appDB *AppDB) SaveStartHeight() {
	h := make([]byte, 8)
	binary.BigEndian.PutUint64(h, atomic.LoadUint64(&appDB.startHeight))

	if err := appDB.db.Set([]byte(startHeightPath), h); err != nil {
		panic(err)
	}
}

func (appDB *AppDB) GetStartHeight() uint64 {
	val := atomic.LoadUint64(&appDB.startHeight)
	if val != 0 {
		return val
	}

	result, err := appDB.db.Get([]byte(startHeightPath))
	if err != nil {
		panic(err)
	}

	if len(result) != 0 {
		val = binary.BigEndian.Uint64(result)
		atomic.StoreUint64(&appDB.startHeight, val)
	}

	return val
}

// SetChainID stores the chain id from genesis, panics on error
func (appDB *AppDB) SetChainID(chainID string) {
	if err := appDB.db.Set([]byte(chainIDPath), []byte(chainID)); err != nil {
		panic(err)
	}
}

// GetChainID returns the stored chain id, empty before genesis
func (appDB *AppDB) GetChainID() string {
	result, err := appDB.db.Get([]byte(chainIDPath))
	if err != nil {
		panic(err)
	}

	return string(result)
}

const BlocksTimeCount = 4

// GetLastBlockTimeDelta returns the sum of the intervals between the last blocks in seconds and their count
func (appDB *AppDB) GetLastBlockTimeDelta() (sumTimes int, count int) {
	appDB.loadBlocksTime()

	return calcBlockDelta(appDB.lastTimeBlocks)
}

func calcBlockDelta(times []uint64) (sumTimes int, num int) {
	count := len(times)
	if count < 2 {
		return 0, 0
	}

	var res int
	for i, timestamp := range times[1:] {
		res += int(timestamp - times[i])
	}
	return res, count - 1
}

func (appDB *AppDB) loadBlocksTime() {
	if len(appDB.lastTimeBlocks) != 0 {
		return
	}

	result, err := appDB.db.Get([]byte(blocksTimePath))
	if err != nil {
		panic(err)
	}
	if len(result) == 0 {
		return
	}

	if err := tmjson.Unmarshal(result, &appDB.lastTimeBlocks); err != nil {
		panic(err)
	}
}

func (appDB *AppDB) AddBlocksTime(time time.Time) {
	appDB.loadBlocksTime()

	appDB.lastTimeBlocks = append(appDB.lastTimeBlocks, uint64(time.Unix()))
	count := len(appDB.lastTimeBlocks)
	if count > BlocksTimeCount {
		appDB.lastTimeBlocks = appDB.lastTimeBlocks[count-BlocksTimeCount:]
	}
}

func (appDB *AppDB) SaveBlocksTime() {
	data, err := tmjson.Marshal(appDB.lastTimeBlocks)
	if err != nil {
		panic(err)
	}

	if err := appDB.db.Set([]byte(blocksTimePath), data); err != nil {
		panic(err)
	}
}

// NewAppDB opens the app database in the data dir of homeDir
func NewAppDB(homeDir string, cfg *config.Config) *AppDB {
	newDB, err := db.NewDB(dbName, db.BackendType(cfg.DBBackend), filepath.Join(homeDir, "data"))
	if err != nil {
		panic(err)
	}

	return &AppDB{
		db: newDB,
	}
}
