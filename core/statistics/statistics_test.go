package statistics

import (
	"math/big"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBlockDuration(t *testing.T) {
	t.Parallel()
	data := New(prometheus.NewRegistry())

	start := time.Unix(100, 0)
	data.SetStartBlock(5, start, start)
	data.SetEndBlockDuration(start.Add(2*time.Second), 5)

	info := data.GetLastBlockInfo()
	if info.Height != 5 || info.Duration != 2 || info.Timestamp != 100 {
		t.Fatalf("unexpected block info %+v", info)
	}
	if value := testutil.ToFloat64(data.BlockEnd.HeightProm); value != 5 {
		t.Fatalf("unexpected height gauge %f", value)
	}

	data.SetEndBlockDuration(start.Add(time.Minute), 6)
	if data.GetLastBlockInfo().Height != 5 {
		t.Fatal("end of unknown block is recorded")
	}
}

func TestLedgerAndTxs(t *testing.T) {
	t.Parallel()
	data := New(prometheus.NewRegistry())

	data.SetLedger(big.NewInt(10), big.NewInt(100), 3)
	if value := testutil.ToFloat64(data.Ledger.LockedProm); value != 10 {
		t.Fatalf("unexpected locked gauge %f", value)
	}
	if value := testutil.ToFloat64(data.Ledger.GrantsProm); value != 3 {
		t.Fatalf("unexpected grants gauge %f", value)
	}

	data.AddTx("0x01", 0)
	data.AddTx("0x01", 0)
	if value := testutil.ToFloat64(data.Txs.WithLabelValues("0x01", "0")); value != 2 {
		t.Fatalf("unexpected tx counter %f", value)
	}
}

func TestNilData(t *testing.T) {
	t.Parallel()
	var data *Data
	data.SetStartBlock(1, time.Now(), time.Now())
	data.SetEndBlockDuration(time.Now(), 1)
	data.SetLedger(big.NewInt(1), big.NewInt(1), 1)
	data.AddTx("0x01", 0)
	data.SetApiTime(time.Second, "/status")
	if data.GetLastBlockInfo().Height != 0 {
		t.Fatal("nil data returned block info")
	}
}
