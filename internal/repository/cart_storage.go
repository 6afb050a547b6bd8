package repository

import (
	"context"

	"app/internal/domain/model"
)

// カートスナップショットのキーバリュー永続化。
// Loadの2番目の戻り値は「スナップショットが存在したか」。
// 保存失敗はStore側でログにして握りつぶす（UIには伝播させない）ため、
// 実装は失敗してもプロセスを壊さないこと。
type CartStorage interface {
	Save(ctx context.Context, key string, snap model.CartSnapshot) error
	Load(ctx context.Context, key string) (model.CartSnapshot, bool, error)
	Delete(ctx context.Context, key string) error
}
