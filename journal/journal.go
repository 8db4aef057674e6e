package journal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"gm-rewards/logger"
	"gm-rewards/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultLimit caps List when the caller gives no limit
const DefaultLimit = 100

var memCounter atomic.Uint64

// Record is one committed event as stored in sqlite
type Record struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	Block        uint64 `gorm:"not null;index"`
	Type         string `gorm:"size:32;not null;index"`
	Account      string `gorm:"size:66;index"`
	Counterparty string `gorm:"size:66;index"`
	TokenID      uint64 `gorm:"index"`
	NodeID       uint64
	CycleID      uint64          `gorm:"index"`
	Amount       decimal.Decimal `gorm:"type:TEXT"`
	Detail       string
	CreatedAt    time.Time
}

func (Record) TableName() string {
	return "events"
}

// Filter narrows a List query. Zero fields match everything.
type Filter struct {
	Account string
	Type    models.EventType
	CycleID uint64
	Limit   int
}

// Journal keeps a queryable history of every committed event
type Journal struct {
	db *gorm.DB
}

// Open creates the journal at path. An empty path keeps it in memory.
func Open(path string) (*Journal, error) {
	dsn := fmt.Sprintf("file:journal-%d?mode=memory&cache=shared", memCounter.Add(1))
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), fs.ModePerm); err != nil && !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", path)
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}
	return &Journal{db: db}, nil
}

// Close releases the underlying connection
func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record stores the events of one committed block. Failures are logged, not returned:
// the block is already committed and the journal is a derived view.
func (j *Journal) Record(events []models.Event) {
	if len(events) == 0 {
		return
	}
	records := make([]Record, 0, len(events))
	for _, e := range events {
		records = append(records, Record{
			Block:        e.Block,
			Type:         string(e.Type),
			Account:      e.Account,
			Counterparty: e.Counterparty,
			TokenID:      e.TokenID,
			NodeID:       e.NodeID,
			CycleID:      e.CycleID,
			Amount:       e.Amount,
			Detail:       e.Detail,
		})
	}
	if err := j.db.Create(&records).Error; err != nil {
		logger.Logger.Error("Failed to journal events",
			zap.Uint64("block", events[0].Block), zap.Int("count", len(events)), zap.Error(err))
	}
}

// List returns the most recent events matching f, newest first
func (j *Journal) List(f Filter) ([]models.Event, error) {
	limit := f.Limit
	if limit <= 0 || limit > DefaultLimit*10 {
		limit = DefaultLimit
	}
	q := j.db.Model(&Record{})
	if f.Account != "" {
		acct := models.NormalizeAddress(f.Account)
		q = q.Where("account = ? OR counterparty = ?", acct, acct)
	}
	if f.Type != "" {
		q = q.Where("type = ?", string(f.Type))
	}
	if f.CycleID != 0 {
		q = q.Where("cycle_id = ?", f.CycleID)
	}

	var records []Record
	if err := q.Order("id DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]models.Event, 0, len(records))
	for _, r := range records {
		out = append(out, models.Event{
			Block:        r.Block,
			Type:         models.EventType(r.Type),
			Account:      r.Account,
			Counterparty: r.Counterparty,
			TokenID:      r.TokenID,
			NodeID:       r.NodeID,
			CycleID:      r.CycleID,
			Amount:       r.Amount,
			Detail:       r.Detail,
		})
	}
	return out, nil
}
