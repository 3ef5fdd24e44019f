package model

import "time"

// 商品バリアント（サイズ・色などのSKU単位）。
// stock は条件付きUPDATEだけで増減し、0未満にはならない。
type ProductVariant struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64  `gorm:"not null;index" json:"product_id"`
	SKU       string `gorm:"type:varchar(100);uniqueIndex;not null;column:sku" json:"sku"`

	//商品価格の上書き（nullなら商品の価格をそのまま使う）
	Price *int64 `json:"price,omitempty"`

	Stock int64 `gorm:"not null;default:0;check:stock >= 0" json:"stock"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// バリアントの販売単価（上書きがあれば上書き、なければ商品価格）
func (v ProductVariant) UnitPrice(productPrice int64) int64 {
	if v.Price != nil {
		return *v.Price
	}
	return productPrice
}
