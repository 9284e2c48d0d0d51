// Package postgres persists applied depth snapshots to a columnar
// Postgres table: one row per price level on each side, with the rows of
// one applied snapshot inserted in a single batch.
package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BullionBear/depthkeeper/internal/depth"
)

// Row is one price level of one applied snapshot.
type Row struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	Symbol     string `gorm:"type:text;index"`
	Type       string `gorm:"type:text"`
	Price      string `gorm:"type:text"`
	Quantity   string `gorm:"type:text"`
	DatetimeAt time.Time
}

func (Row) TableName() string { return "depth" }

// Store writes Snapshot rows through gorm. AutoMigrate runs only when dev
// is true, matching the config's env-gated schema recreation: PROD never
// drops or recreates the table.
type Store struct {
	db *gorm.DB
}

// NewStore opens a connection using the given DSN. echo toggles gorm's
// statement logger; dev gates whether the depth table is (re)created here.
func NewStore(dsn string, echo, dev bool) (*Store, error) {
	level := gormlogger.Silent
	if echo {
		level = gormlogger.Info
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	store := &Store{db: db}
	if dev {
		if err := db.AutoMigrate(&Row{}); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// InsertSnapshot batch-inserts len(snap.Bids)+len(snap.Asks) rows, one per
// side per price level, in a single Create call.
func (s *Store) InsertSnapshot(snap depth.Snapshot) error {
	rows := rowsForSnapshot(snap)
	if len(rows) == 0 {
		return nil
	}
	return s.db.Create(&rows).Error
}

func rowsForSnapshot(snap depth.Snapshot) []Row {
	at := time.UnixMilli(snap.EventTimeMs).UTC()
	rows := make([]Row, 0, len(snap.Bids)+len(snap.Asks))

	for price, qty := range snap.Bids {
		rows = append(rows, Row{
			ID: uuid.NewString(), Symbol: snap.Symbol, Type: "BID",
			Price: price.String(), Quantity: qty, DatetimeAt: at,
		})
	}
	for price, qty := range snap.Asks {
		rows = append(rows, Row{
			ID: uuid.NewString(), Symbol: snap.Symbol, Type: "ASK",
			Price: price.String(), Quantity: qty, DatetimeAt: at,
		})
	}
	return rows
}
