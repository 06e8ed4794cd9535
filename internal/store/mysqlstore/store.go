// Package mysqlstore is the gorm-backed MySQL ledger backend.
package mysqlstore

import (
	"context"
	"errors"
	"time"

	"casino-wallet/internal/store"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type balanceRow struct {
	PlayerID  string `gorm:"primaryKey;size:64"`
	Amount    int64  `gorm:"not null;default:0"`
	Version   int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

func (balanceRow) TableName() string { return "balances" }

type transactionRow struct {
	Seq       uint64    `gorm:"primaryKey;autoIncrement"`
	TxID      string    `gorm:"column:tx_id;size:26;uniqueIndex"`
	PlayerID  string    `gorm:"size:64;index:idx_transactions_player_seq,priority:1"`
	Amount    int64     `gorm:"not null"`
	Kind      string    `gorm:"size:8;not null"`
	Ref       string    `gorm:"size:128;not null;default:''"`
	CreatedAt time.Time `gorm:"precision:6"`
}

func (transactionRow) TableName() string { return "transactions" }

// ER_DATA_OUT_OF_RANGE
const errBigintOutOfRange = 1690

type Store struct {
	db *gorm.DB
}

// Open connects and migrates the two ledger tables.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&balanceRow{}, &transactionRow{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Incr(ctx context.Context, playerID string, delta int64) (store.Balance, error) {
	var bal store.Balance
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		bal, err = incr(tx, playerID, delta)
		return err
	})
	return bal, err
}

func (s *Store) IncrAndAppend(ctx context.Context, entry store.Transaction) (store.Balance, error) {
	var bal store.Balance
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if bal, err = incr(tx, entry.PlayerID, entry.Delta()); err != nil {
			return err
		}
		return tx.Create(toRow(entry)).Error
	})
	return bal, err
}

func (s *Store) Get(ctx context.Context, playerID string) (store.Balance, bool, error) {
	var row balanceRow
	err := s.db.WithContext(ctx).Where("player_id = ?", playerID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.Balance{PlayerID: playerID}, false, nil
	}
	if err != nil {
		return store.Balance{}, false, err
	}
	return store.Balance{PlayerID: playerID, Amount: row.Amount, Version: row.Version}, true, nil
}

func (s *Store) Put(ctx context.Context, playerID string, amount int64) (store.Balance, error) {
	var bal store.Balance
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := balanceRow{PlayerID: playerID, Amount: amount, Version: 1, UpdatedAt: time.Now()}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "player_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"amount":     amount,
				"version":    gorm.Expr("version + 1"),
				"updated_at": row.UpdatedAt,
			}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
		bal, err = lockedRead(tx, playerID)
		return err
	})
	return bal, err
}

func (s *Store) Append(ctx context.Context, entry store.Transaction) error {
	return s.db.WithContext(ctx).Create(toRow(entry)).Error
}

func (s *Store) ReadAll(ctx context.Context, playerID string) ([]store.Transaction, error) {
	var rows []transactionRow
	if err := s.db.WithContext(ctx).Where("player_id = ?", playerID).Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]store.Transaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, store.Transaction{
			ID:        r.TxID,
			PlayerID:  r.PlayerID,
			Amount:    r.Amount,
			Kind:      store.Kind(r.Kind),
			Ref:       r.Ref,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// incr upserts the counter then reads it back under the row lock the upsert
// already holds, so the returned value is this write's result.
func incr(tx *gorm.DB, playerID string, delta int64) (store.Balance, error) {
	row := balanceRow{PlayerID: playerID, Amount: delta, Version: 1, UpdatedAt: time.Now()}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "player_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"amount":     gorm.Expr("amount + ?", delta),
			"version":    gorm.Expr("version + 1"),
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error
	if err != nil {
		var me *mysqldrv.MySQLError
		if errors.As(err, &me) && me.Number == errBigintOutOfRange {
			return store.Balance{}, store.ErrOverflow
		}
		return store.Balance{}, err
	}
	return lockedRead(tx, playerID)
}

func lockedRead(tx *gorm.DB, playerID string) (store.Balance, error) {
	var row balanceRow
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("player_id = ?", playerID).Take(&row).Error
	if err != nil {
		return store.Balance{}, err
	}
	return store.Balance{PlayerID: playerID, Amount: row.Amount, Version: row.Version}, nil
}

func toRow(entry store.Transaction) *transactionRow {
	return &transactionRow{
		TxID:      entry.ID,
		PlayerID:  entry.PlayerID,
		Amount:    entry.Amount,
		Kind:      string(entry.Kind),
		Ref:       entry.Ref,
		CreatedAt: entry.CreatedAt,
	}
}
