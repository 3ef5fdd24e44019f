package model

import "time"

// 1明細あたりの数量上限。リクエスト単位の検証と加算マージの両方で共通。
const MaxLineQuantity int64 = 99

// 注文明細。PENDINGの間はカート明細として増減し、確定後は不変のスナップショット。
// unit_price_snapshot はカート追加時点の価格を必ず保存。
type OrderItem struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64 `gorm:"not null;index" json:"order_id"`
	ProductID int64 `gorm:"not null;index" json:"product_id"`

	//バリアント指定なしの商品はnull（在庫管理の対象外）
	VariantID *int64 `gorm:"index" json:"variant_id,omitempty"`

	ProductNameSnapshot string `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	UnitPriceSnapshot   int64  `gorm:"not null;column:unit_price_snapshot" json:"unit_price_snapshot"`
	Quantity            int64  `gorm:"not null" json:"quantity"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
