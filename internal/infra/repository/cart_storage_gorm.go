package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"app/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// カートスナップショットの1スロット。キーごとに最新の全量だけ持つ。
type cartSnapshotRecord struct {
	StorageKey string    `gorm:"type:varchar(255);primaryKey;column:storage_key"`
	Payload    []byte    `gorm:"type:jsonb;not null"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime"`
}

func (cartSnapshotRecord) TableName() string { return "cart_snapshots" }

type CartStorageGorm struct {
	db *gorm.DB
}

func NewCartStorageGorm(db *gorm.DB) *CartStorageGorm {
	return &CartStorageGorm{db: db}
}

// Migrate はスナップショット用テーブルを作る。
func (s *CartStorageGorm) Migrate() error {
	return s.db.AutoMigrate(&cartSnapshotRecord{})
}

// Save はキーのスロットを丸ごと上書きする（write-through前提）。
func (s *CartStorageGorm) Save(ctx context.Context, key string, snap model.CartSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal cart snapshot: %w", err)
	}

	rec := cartSnapshotRecord{StorageKey: key, Payload: payload}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "storage_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&rec).Error
}

// Load はキーのスナップショットを返す。
// 行が無ければ(found=false)。パースできないペイロードはエラーで返し、
// 呼び出し側（Registry）が「保存なし」と同じ扱いにする。
func (s *CartStorageGorm) Load(ctx context.Context, key string) (model.CartSnapshot, bool, error) {
	var rec cartSnapshotRecord
	err := s.db.WithContext(ctx).Where("storage_key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CartSnapshot{}, false, nil
	}
	if err != nil {
		return model.CartSnapshot{}, false, err
	}

	var snap model.CartSnapshot
	if err := json.Unmarshal(rec.Payload, &snap); err != nil {
		return model.CartSnapshot{}, false, fmt.Errorf("unmarshal cart snapshot: %w", err)
	}
	return snap, true, nil
}

func (s *CartStorageGorm) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("storage_key = ?", key).Delete(&cartSnapshotRecord{}).Error
}
