package statistics

import (
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "grant"

type Data struct {
	BlockStart struct {
		sync.RWMutex
		height    uint64
		time      time.Time
		timestamp float64
	}
	BlockEnd blockEnd

	Api    apiResponseTime
	Ledger ledgerGauges
	Txs    *prometheus.CounterVec
}

type LastBlockInfo struct {
	Height    uint64
	Duration  float64
	Timestamp float64
}

type blockEnd struct {
	sync.RWMutex
	HeightProm    prometheus.Gauge
	DurationProm  prometheus.Gauge
	TimestampProm prometheus.Gauge
	LastBlockInfo LastBlockInfo
}

type apiResponseTime struct {
	sync.Mutex
	responseTime *prometheus.GaugeVec
}

type ledgerGauges struct {
	LockedProm  prometheus.Gauge
	BackingProm prometheus.Gauge
	GrantsProm  prometheus.Gauge
}

// New creates the collectors and registers them in registerer.
func New(registerer prometheus.Registerer) *Data {
	gauge := func(name, help string) prometheus.Gauge {
		g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
		registerer.MustRegister(g)
		return g
	}

	apiVec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "api",
			Help:      "Api response time by path",
		},
		[]string{"path"},
	)
	registerer.MustRegister(apiVec)

	txs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "txs_total",
			Help:      "Delivered transactions by type and response code",
		},
		[]string{"type", "code"},
	)
	registerer.MustRegister(txs)

	return &Data{
		Api: apiResponseTime{responseTime: apiVec},
		BlockEnd: blockEnd{
			HeightProm:    gauge("height", "Current height"),
			DurationProm:  gauge("last_block_duration", "Last block duration"),
			TimestampProm: gauge("last_block_timestamp", "Timestamp of the last block"),
		},
		Ledger: ledgerGauges{
			LockedProm:  gauge("locked_balance", "Sum of outstanding entitlements"),
			BackingProm: gauge("backing", "Underlying balance of the ledger account"),
			GrantsProm:  gauge("grants", "Number of grant records"),
		},
		Txs: txs,
	}
}

func (d *Data) SetStartBlock(height uint64, now time.Time, headerTime time.Time) {
	if d == nil {
		return
	}

	d.BlockStart.Lock()
	defer d.BlockStart.Unlock()

	d.BlockStart.height = height
	d.BlockStart.time = now
	d.BlockStart.timestamp = float64(headerTime.UnixNano() / 1e09)
}

func (d *Data) SetEndBlockDuration(timeEnd time.Time, height uint64) {
	if d == nil {
		return
	}

	d.BlockStart.RLock()
	defer d.BlockStart.RUnlock()

	if height != d.BlockStart.height {
		return
	}

	d.BlockEnd.Lock()
	defer d.BlockEnd.Unlock()

	durationSeconds := timeEnd.Sub(d.BlockStart.time).Seconds()

	d.BlockEnd.HeightProm.Set(float64(height))
	d.BlockEnd.DurationProm.Set(durationSeconds)
	d.BlockEnd.TimestampProm.Set(d.BlockStart.timestamp)

	d.BlockEnd.LastBlockInfo.Height = height
	d.BlockEnd.LastBlockInfo.Duration = durationSeconds
	d.BlockEnd.LastBlockInfo.Timestamp = d.BlockStart.timestamp
}

// SetLedger publishes the ledger totals, amounts are truncated to float64.
func (d *Data) SetLedger(locked, backing *big.Int, grants int) {
	if d == nil {
		return
	}

	lockedFloat, _ := new(big.Float).SetInt(locked).Float64()
	backingFloat, _ := new(big.Float).SetInt(backing).Float64()

	d.Ledger.LockedProm.Set(lockedFloat)
	d.Ledger.BackingProm.Set(backingFloat)
	d.Ledger.GrantsProm.Set(float64(grants))
}

func (d *Data) AddTx(txType string, code uint32) {
	if d == nil {
		return
	}

	d.Txs.With(prometheus.Labels{"type": txType, "code": strconv.Itoa(int(code))}).Inc()
}

func (d *Data) SetApiTime(duration time.Duration, path string) {
	if d == nil {
		return
	}

	d.Api.Lock()
	defer d.Api.Unlock()

	d.Api.responseTime.With(prometheus.Labels{"path": path}).Set(duration.Seconds())
}

func (d *Data) GetLastBlockInfo() LastBlockInfo {
	if d == nil {
		return LastBlockInfo{}
	}

	d.BlockEnd.RLock()
	defer d.BlockEnd.RUnlock()

	return d.BlockEnd.LastBlockInfo
}
