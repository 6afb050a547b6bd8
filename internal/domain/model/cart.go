package model

// カートの明細。
// 商品は追加時点のスナップショットを丸ごと持つ（価格・重さは追加時点で固定）。
// Quantityは必ず1以上。同じ商品IDの明細はカート内に1つだけ。
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int64   `json:"quantity"`
}

// 永続化に使うカート全体のスナップショット。
// JSONでProductの全フィールドとQuantityをそのまま往復させる。
type CartSnapshot struct {
	Items []CartItem `json:"items"`
}
