package model

import "time"

type CouponType string

const (
	CouponTypePercent CouponType = "PERCENT"
	CouponTypeFixed   CouponType = "FIXED"
)

// クーポン。code は大文字に正規化して保存する。
type Coupon struct {
	ID   int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Code string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Type CouponType `gorm:"type:varchar(10);not null" json:"type"`

	//PERCENTなら割合（1〜100）、FIXEDなら割引額
	Value int64 `gorm:"not null" json:"value"`

	MinOrderValue *int64 `json:"min_order_value,omitempty"`

	//全体の使用回数上限（nullなら無制限）
	MaxUses *int64 `json:"max_uses,omitempty"`

	//used_count <= max_uses を条件付きUPDATEで保証する
	UsedCount int64 `gorm:"not null;default:0" json:"used_count"`

	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	IsActive  bool       `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// クーポン使用記録。(coupon_id, user_id) のユニーク制約で
// 同一ユーザーの二重使用をDBレベルで防ぐ。
type CouponUsage struct {
	ID       int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CouponID int64     `gorm:"not null;index:idx_coupon_usages_once,unique" json:"coupon_id"`
	UserID   int64     `gorm:"not null;index:idx_coupon_usages_once,unique" json:"user_id"`
	OrderID  int64     `gorm:"not null;index" json:"order_id"`
	UsedAt   time.Time `gorm:"not null;autoCreateTime" json:"used_at"`
}
