package cart

import (
	"context"
	"sync"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/rs/zerolog"
)

// 永続化キーの接頭辞。セッションIDと組み合わせて1スロットになる。
const storageKeyPrefix = "cart-storage:"

// Registry はセッションIDごとのStoreを持つ合成ルート側の置き場。
// HandlerはここからStoreへの参照をもらうだけで、グローバル状態には触らない。
type Registry struct {
	mu      sync.Mutex
	stores  map[string]*Store
	storage repo.CartStorage
	log     zerolog.Logger
}

func NewRegistry(storage repo.CartStorage, log zerolog.Logger) *Registry {
	return &Registry{
		stores:  map[string]*Store{},
		storage: storage,
		log:     log,
	}
}

// GetOrCreate はセッションのStoreを返す。無ければ空で作り、
// 永続化スナップショットの復元をバックグラウンドで開始する。
// 復元とユーザー操作の競合はStore側のマージ規則が解決する。
func (r *Registry) GetOrCreate(sessionID string) *Store {
	r.mu.Lock()
	s, ok := r.stores[sessionID]
	if !ok {
		s = NewStore(r.storage, storageKeyPrefix+sessionID, r.log)
		r.stores[sessionID] = s
	}
	r.mu.Unlock()

	if !ok && r.storage != nil {
		go r.restore(s)
	}
	return s
}

// restore は保存済みスナップショットを読んでStoreに届ける。
// 読めない・壊れている場合は「保存なし」と同じ扱いでログだけ残す。
func (r *Registry) restore(s *Store) {
	snap, found, err := r.storage.Load(context.Background(), s.key)
	if err != nil {
		r.log.Warn().Err(err).Str("key", s.key).Msg("cart snapshot load failed, starting empty")
		s.Rehydrate(model.CartSnapshot{})
		return
	}
	if !found {
		s.Rehydrate(model.CartSnapshot{})
		return
	}
	s.Rehydrate(snap)
}
