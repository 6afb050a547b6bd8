package cart

import (
	"context"
	"errors"
	"sync"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/rs/zerolog"
)

// AddItemにquantity < 1を渡すのは呼び出し側の契約違反。
// 勝手に丸めず、エラーで拒否する（負数の明細を作らないため）。
var ErrInvalidQuantity = errors.New("quantity must be >= 1")

// Store はセッション1つ分のカートの唯一の置き場。
//
// 明細は挿入順を保ち、商品IDごとに1件だけ持つ。すべての変更は同期的・原子的で、
// 集計（件数・小計・合計重量）は毎回計算し直す（カートは小さいのでO(n)で十分）。
//
// 永続化はwrite-through：変更のたびに全スナップショットを裏のwriterに渡す。
// 書き込みは投げっぱなしで、失敗はログに残すだけ（UIの操作は絶対に失敗させない）。
// storageがnilならメモリのみで動く（永続化はすべてno-op）。
type Store struct {
	mu          sync.Mutex
	items       []model.CartItem
	index       map[string]int // productID -> itemsの位置
	restoreDone bool

	storage repo.CartStorage
	key     string
	log     zerolog.Logger

	pending chan model.CartSnapshot
	done    chan struct{}
}

// NewStore はカートを空で作る。復元はRehydrateで後から届く。
func NewStore(storage repo.CartStorage, key string, log zerolog.Logger) *Store {
	s := &Store{
		items:   []model.CartItem{},
		index:   map[string]int{},
		storage: storage,
		key:     key,
		log:     log,
	}

	if storage != nil {
		s.pending = make(chan model.CartSnapshot, 1)
		s.done = make(chan struct{})
		go s.writeLoop()
	}

	return s
}

// Close は永続化writerを止める。メモリのみのStoreでは何もしない。
func (s *Store) Close() {
	if s.pending == nil {
		return
	}
	close(s.pending)
	<-s.done
}

// AddItem は商品をカートに入れる。同じ商品IDが既にあれば数量を加算し、
// 無ければ挿入順の末尾に追加する。quantity < 1 はErrInvalidQuantity。
func (s *Store) AddItem(p model.Product, quantity int64) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[p.ID]; ok {
		s.items[i].Quantity += quantity
	} else {
		s.index[p.ID] = len(s.items)
		s.items = append(s.items, model.CartItem{Product: p, Quantity: quantity})
	}

	s.queuePersistLocked()
	return nil
}

// RemoveItem は商品IDの明細を消す。無ければ何もしない（エラーにしない）。
func (s *Store) RemoveItem(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(productID)
	s.queuePersistLocked()
}

// UpdateQuantity は数量を「置き換える」（加算ではない）。
// quantity <= 0 は削除と同じ。商品IDが無ければ何もしない（no-op仕様を採用）。
func (s *Store) UpdateQuantity(productID string, quantity int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(productID)
		s.queuePersistLocked()
		return
	}

	if i, ok := s.index[productID]; ok {
		s.items[i].Quantity = quantity
	}
	s.queuePersistLocked()
}

// Clear はカートを無条件で空にする。注文確定後に呼ばれる。
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []model.CartItem{}
	s.index = map[string]int{}
	s.queuePersistLocked()
}

// Items は明細のコピーを挿入順で返す。
func (s *Store) Items() []model.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]model.CartItem, len(s.items))
	copy(cp, s.items)
	return cp
}

// TotalItems は数量の合計。
func (s *Store) TotalItems() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64 = 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// Subtotal は価格×数量の合計（最小通貨単位）。
func (s *Store) Subtotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum int64 = 0
	for _, it := range s.items {
		sum += it.Product.Price * it.Quantity
	}
	return sum
}

// TotalWeight は重さ×数量の合計（グラム）。
func (s *Store) TotalWeight() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum int64 = 0
	for _, it := range s.items {
		sum += it.Product.WeightGrams * it.Quantity
	}
	return sum
}

// Rehydrate は起動後に1回だけ届く復元スナップショットを受け取る。
//
// マージ規則：届いた時点でメモリ側に明細があれば、スナップショットは丸ごと捨てる
// （復元より先にユーザーが入れた商品を上書きで消さないため）。
// メモリ側が空のときだけ採用し、採用時は壊れたペイロードに備えて
// 商品ID重複（最初の1件が勝ち、数量は合算しない）と不正明細を落とす。
// 2回目以降の呼び出しは無視する。
func (s *Store) Rehydrate(snap model.CartSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.restoreDone {
		return
	}
	s.restoreDone = true

	if len(s.items) > 0 {
		s.log.Debug().Str("key", s.key).Msg("cart already has items, discarding persisted snapshot")
		return
	}

	items := dedupeItems(snap.Items)
	if len(items) == 0 {
		return
	}

	s.items = items
	s.index = map[string]int{}
	for i, it := range s.items {
		s.index[it.Product.ID] = i
	}

	//重複除去で中身が変わっていても、次のwrite-throughで正しい状態に揃える
	s.queuePersistLocked()
}

func (s *Store) removeLocked(productID string) {
	i, ok := s.index[productID]
	if !ok {
		return
	}

	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, productID)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].Product.ID] = j
	}
}

// queuePersistLocked は現在の全スナップショットをwriterに渡す。
// 未処理の古いスナップショットがあれば捨てて最新だけ残す（全量書きなので途中は飛ばしてよい）。
func (s *Store) queuePersistLocked() {
	if s.pending == nil {
		return
	}

	items := make([]model.CartItem, len(s.items))
	copy(items, s.items)
	snap := model.CartSnapshot{Items: items}

	for {
		select {
		case s.pending <- snap:
			return
		default:
			select {
			case <-s.pending:
			default:
			}
		}
	}
}

// writeLoop はスナップショットを順に書く。空になったらスロットごと消す。
func (s *Store) writeLoop() {
	defer close(s.done)

	for snap := range s.pending {
		var err error
		if len(snap.Items) == 0 {
			err = s.storage.Delete(context.Background(), s.key)
		} else {
			err = s.storage.Save(context.Background(), s.key, snap)
		}
		if err != nil {
			s.log.Warn().Err(err).Str("key", s.key).Msg("cart snapshot write failed, continuing in memory")
		}
	}
}

// dedupeItems は商品IDの重複と不正明細（空ID・数量1未満）を落とす。
func dedupeItems(items []model.CartItem) []model.CartItem {
	out := make([]model.CartItem, 0, len(items))
	seen := map[string]bool{}

	for _, it := range items {
		if it.Product.ID == "" || it.Quantity < 1 {
			continue
		}
		if seen[it.Product.ID] {
			continue
		}
		seen[it.Product.ID] = true
		out = append(out, it)
	}
	return out
}
