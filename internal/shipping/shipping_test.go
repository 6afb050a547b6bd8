package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test: 区分の境界値（上限ちょうどは下の区分、1g超えたら次の区分）
func TestTable_Quote_Boundaries(t *testing.T) {
	table := DefaultTable()

	cases := []struct {
		name      string
		weight    int64
		wantSize  Size
		wantPrice int64
	}{
		{"5kgちょうどはsmall", 5000, SizeSmall, 6000},
		{"5.01kgはmedium", 5010, SizeMedium, 8000},
		{"10kgちょうどはmedium", 10000, SizeMedium, 8000},
		{"15kgちょうどはlarge", 15000, SizeLarge, 10000},
		{"0gはsmall", 0, SizeSmall, 6000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := table.Quote(tc.weight)
			assert.Equal(t, tc.wantSize, q.Size)
			assert.Equal(t, tc.wantPrice, q.Price)
			assert.Equal(t, tc.weight, q.TotalWeightGrams)
		})
	}
}

// Test: 全区分を超えたら最大区分に丸める（エラーにしない）
func TestTable_Quote_ClampHigh(t *testing.T) {
	table := DefaultTable()

	q := table.Quote(50000)
	assert.Equal(t, SizeLarge, q.Size)
	assert.Equal(t, int64(10000), q.Price)
	assert.Equal(t, int64(50000), q.TotalWeightGrams)
}

// Test: 負の重さは0に丸めて最小区分を返す
func TestTable_Quote_NegativeWeight(t *testing.T) {
	table := DefaultTable()

	q := table.Quote(-100)
	assert.Equal(t, SizeSmall, q.Size)
	assert.Equal(t, int64(6000), q.Price)
}

// Test: 料金表の検証
func TestNewTable_Validation(t *testing.T) {
	//空はエラー
	_, err := NewTable(nil)
	assert.Error(t, err)

	//上限が増加していない
	_, err = NewTable([]Rate{
		{Size: SizeSmall, MaxWeightGrams: 5000, Price: 6000},
		{Size: SizeMedium, MaxWeightGrams: 5000, Price: 8000},
	})
	assert.Error(t, err)

	//負の価格
	_, err = NewTable([]Rate{
		{Size: SizeSmall, MaxWeightGrams: 5000, Price: -1},
	})
	assert.Error(t, err)

	//正常
	tbl, err := NewTable([]Rate{
		{Size: SizeSmall, MaxWeightGrams: 3000, Price: 500},
		{Size: SizeLarge, MaxWeightGrams: 9000, Price: 900},
	})
	assert.NoError(t, err)
	assert.Len(t, tbl.Rates(), 2)
}

// Test: SHIPPING_RATES のJSONから表を作る
func TestParseTable(t *testing.T) {
	//空文字は既定の表
	tbl, err := ParseTable("")
	assert.NoError(t, err)
	assert.Len(t, tbl.Rates(), 3)

	//JSON指定
	tbl, err = ParseTable(`[{"size":"small","max_weight_g":1000,"price":100},{"size":"large","max_weight_g":2000,"price":200}]`)
	assert.NoError(t, err)
	q := tbl.Quote(1500)
	assert.Equal(t, SizeLarge, q.Size)
	assert.Equal(t, int64(200), q.Price)

	//壊れたJSONはエラー
	_, err = ParseTable(`{not json`)
	assert.Error(t, err)
}
