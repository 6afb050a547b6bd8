package shipping

import (
	"encoding/json"
	"fmt"
)

// 荷物のサイズ区分（PUDOロッカーのサイズ）。
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// 1区分の料金。MaxWeightGramsは「この重さまで」の上限（グラム）。
type Rate struct {
	Size           Size  `json:"size"`
	MaxWeightGrams int64 `json:"max_weight_g"`
	Price          int64 `json:"price"`
}

// 昇順の料金表。上限は必ず単調増加。
// 最大区分を超える重さは最大区分に丸める（重すぎて注文できない、は作らない）。
type Table struct {
	rates []Rate
}

// 計算結果。TotalWeightGramsは入力の重さをそのまま返す（表示・デバッグ用）。
type Quote struct {
	Size             Size  `json:"size"`
	Price            int64 `json:"price"`
	TotalWeightGrams int64 `json:"total_weight_g"`
}

// NewTable は料金表を検証して作る。
// 空・上限が増加していない・価格が負、はすべて設定ミスとしてエラー。
func NewTable(rates []Rate) (Table, error) {
	if len(rates) == 0 {
		return Table{}, fmt.Errorf("shipping: empty rate table")
	}

	var prev int64 = 0
	for i, r := range rates {
		if r.Size == "" {
			return Table{}, fmt.Errorf("shipping: rate %d has empty size", i)
		}
		if r.MaxWeightGrams <= prev {
			return Table{}, fmt.Errorf("shipping: max weights must be strictly increasing (rate %d)", i)
		}
		if r.Price < 0 {
			return Table{}, fmt.Errorf("shipping: rate %d has negative price", i)
		}
		prev = r.MaxWeightGrams
	}

	cp := make([]Rate, len(rates))
	copy(cp, rates)
	return Table{rates: cp}, nil
}

// DefaultTable は既定の料金表（small ≤5kg / medium ≤10kg / large ≤15kg）。
func DefaultTable() Table {
	t, err := NewTable([]Rate{
		{Size: SizeSmall, MaxWeightGrams: 5000, Price: 6000},
		{Size: SizeMedium, MaxWeightGrams: 10000, Price: 8000},
		{Size: SizeLarge, MaxWeightGrams: 15000, Price: 10000},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTable は設定（JSON文字列）から料金表を作る。空文字なら既定の表。
func ParseTable(raw string) (Table, error) {
	if raw == "" {
		return DefaultTable(), nil
	}

	var rates []Rate
	if err := json.Unmarshal([]byte(raw), &rates); err != nil {
		return Table{}, fmt.Errorf("shipping: invalid SHIPPING_RATES json: %w", err)
	}
	return NewTable(rates)
}

// Rates は料金表のコピーを返す。
func (t Table) Rates() []Rate {
	cp := make([]Rate, len(t.rates))
	copy(cp, t.rates)
	return cp
}

// Quote は合計重量（グラム）からサイズと送料を決める純関数。
// 昇順に走査して「上限 >= 重さ」の最初の区分を返す。
// 全区分を超える場合は最大区分に丸め、負の重さは0として扱う。
func (t Table) Quote(totalWeightGrams int64) Quote {
	w := totalWeightGrams
	if w < 0 {
		w = 0
	}

	for _, r := range t.rates {
		if w <= r.MaxWeightGrams {
			return Quote{Size: r.Size, Price: r.Price, TotalWeightGrams: totalWeightGrams}
		}
	}

	last := t.rates[len(t.rates)-1]
	return Quote{Size: last.Size, Price: last.Price, TotalWeightGrams: totalWeightGrams}
}
