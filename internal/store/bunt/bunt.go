// Package bunt implements the repository on top of an embedded buntdb database.
// With the default ":memory:" path all data is lost on restart.
package bunt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jekabolt/shop-metrics/internal/dependency"
	"github.com/tidwall/buntdb"
)

const (
	shopPrefix   = "shop:"
	metricPrefix = "metric:"
	syncPrefix   = "sync:"

	shopSeqKey   = "seq:shop"
	metricSeqKey = "seq:metric"

	idxMetricDate = "metric_date"
)

type Config struct {
	Path string `mapstructure:"path"`
}

// BuntDB keeps shops, metric records and sync statuses in a single buntdb file.
type BuntDB struct {
	db  *buntdb.DB
	now func() time.Time

	// mu guards the id counters. They only advance inside write transactions,
	// which also persist them, so deleted ids are never handed out again.
	mu        sync.Mutex
	shopSeq   int
	metricSeq int
}

// New opens the database, creates indexes and restores the id counters.
func New(cfg Config) (*BuntDB, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("can't open buntdb %s: %w", path, err)
	}
	if err := db.CreateIndex(idxMetricDate, metricPrefix+"*", buntdb.IndexJSON("date")); err != nil {
		db.Close()
		return nil, fmt.Errorf("can't create metric date index: %w", err)
	}

	b := &BuntDB{db: db, now: time.Now}
	if err := b.restoreSequences(); err != nil {
		db.Close()
		return nil, err
	}
	slog.Default().Info("bunt store opened",
		slog.String("path", path),
		slog.Int("shop_seq", b.shopSeq),
		slog.Int("metric_seq", b.metricSeq),
	)
	return b, nil
}

func (b *BuntDB) restoreSequences() error {
	return b.db.View(func(tx *buntdb.Tx) error {
		var err error
		b.shopSeq, err = restoreSeq(tx, shopSeqKey, shopPrefix)
		if err != nil {
			return err
		}
		b.metricSeq, err = restoreSeq(tx, metricSeqKey, metricPrefix)
		return err
	})
}

// restoreSeq returns the stored counter, or the largest id under prefix
// when that is higher.
func restoreSeq(tx *buntdb.Tx, seqKey, prefix string) (int, error) {
	seq := 0
	v, err := tx.Get(seqKey)
	switch {
	case err == nil:
		if seq, err = strconv.Atoi(v); err != nil {
			return 0, fmt.Errorf("bad sequence %q: %w", seqKey, err)
		}
	case !errors.Is(err, buntdb.ErrNotFound):
		return 0, err
	}
	max, err := maxId(tx, prefix)
	if err != nil {
		return 0, err
	}
	if max > seq {
		seq = max
	}
	return seq, nil
}

func maxId(tx *buntdb.Tx, prefix string) (int, error) {
	max := 0
	var parseErr error
	err := tx.AscendKeys(prefix+"*", func(key, _ string) bool {
		id, err := strconv.Atoi(strings.TrimPrefix(key, prefix))
		if err != nil {
			parseErr = fmt.Errorf("bad key %q: %w", key, err)
			return false
		}
		if id > max {
			max = id
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	return max, parseErr
}

// nextShopId must be called inside a write transaction.
func (b *BuntDB) nextShopId(tx *buntdb.Tx) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shopSeq++
	if _, _, err := tx.Set(shopSeqKey, strconv.Itoa(b.shopSeq), nil); err != nil {
		return 0, fmt.Errorf("can't store shop sequence: %w", err)
	}
	return b.shopSeq, nil
}

// nextMetricIds reserves n consecutive ids and returns the first one.
// It must be called inside a write transaction.
func (b *BuntDB) nextMetricIds(tx *buntdb.Tx, n int) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	first := b.metricSeq + 1
	b.metricSeq += n
	if _, _, err := tx.Set(metricSeqKey, strconv.Itoa(b.metricSeq), nil); err != nil {
		return 0, fmt.Errorf("can't store metric sequence: %w", err)
	}
	return first, nil
}

func shopKey(id int) string   { return fmt.Sprintf("%s%010d", shopPrefix, id) }
func metricKey(id int) string { return fmt.Sprintf("%s%012d", metricPrefix, id) }
func syncKey(shopId int) string {
	return fmt.Sprintf("%s%010d", syncPrefix, shopId)
}

func (b *BuntDB) Shops() dependency.Shops         { return b }
func (b *BuntDB) Metrics() dependency.Metrics     { return b }
func (b *BuntDB) SheetSync() dependency.SheetSync { return b }

func (b *BuntDB) Ping(ctx context.Context) error {
	return b.db.View(func(tx *buntdb.Tx) error {
		_, err := tx.Len()
		return err
	})
}

func (b *BuntDB) Close() {
	if err := b.db.Close(); err != nil {
		slog.Default().Error("can't close bunt store", slog.String("err", err.Error()))
	}
}
