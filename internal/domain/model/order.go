package model

import "time"

type OrderStatus string

const (
	//カート（確定前）
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// DELIVERED / CANCELLED からは一切遷移できない
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// キャンセルできるのは確定後〜発送済みまで
func (s OrderStatus) CanCancel() bool {
	switch s {
	case OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped:
		return true
	}
	return false
}

// ステータス変更の可否。
// PENDING→CONFIRMED はチェックアウト専用なのでここでは許可しない。
// 前進のスキップ（CONFIRMED→DELIVEREDなど）は許可、PENDINGへ戻すのは不可。
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !next.Valid() {
		return false
	}
	if s.IsTerminal() {
		return false
	}
	if next == OrderStatusPending {
		return false
	}
	if s == OrderStatusPending {
		//カートは管理者操作の対象外
		return false
	}
	if next == OrderStatusCancelled {
		return s.CanCancel()
	}
	return true
}

// 注文。status=PENDING の行がカート。
// 1ユーザーにつきPENDINGは1行（部分ユニークインデックスで保証）
type Order struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index;index:idx_orders_user_pending,unique,where:status = 'PENDING'" json:"user_id"`

	//確定時に採番する表示用の注文番号（カートの間はnull）
	Number *int64 `gorm:"uniqueIndex" json:"number,omitempty"`

	Status        OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentMethod string      `gorm:"type:varchar(30)" json:"payment_method,omitempty"`
	AddressID     *int64      `gorm:"index" json:"address_id,omitempty"`

	//金額はすべて最小通貨単位の整数
	Subtotal int64 `gorm:"not null;default:0" json:"subtotal"`
	Discount int64 `gorm:"not null;default:0" json:"discount"`
	Total    int64 `gorm:"not null;default:0" json:"total"`

	CouponID *int64 `gorm:"index" json:"coupon_id,omitempty"`

	//配送先スナップショット（確定時にAddressからコピー。以後の住所編集の影響を受けない）
	ShipName       string `gorm:"type:varchar(255)" json:"ship_name,omitempty"`
	ShipPostalCode string `gorm:"type:varchar(20)" json:"ship_postal_code,omitempty"`
	ShipPrefecture string `gorm:"type:varchar(100)" json:"ship_prefecture,omitempty"`
	ShipCity       string `gorm:"type:varchar(255)" json:"ship_city,omitempty"`
	ShipLine1      string `gorm:"type:varchar(255)" json:"ship_line1,omitempty"`
	ShipLine2      string `gorm:"type:varchar(255)" json:"ship_line2,omitempty"`
	ShipPhone      string `gorm:"type:varchar(30)" json:"ship_phone,omitempty"`

	TrackingCode      string     `gorm:"type:varchar(64)" json:"tracking_code,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
