package repository

import (
	"context"
	"time"

	"shop/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

// チェックアウト確定時にまとめて書き込む値。
// 配送先はAddressからスナップショットする。
type ConfirmOrderParams struct {
	Address       model.Address
	PaymentMethod string
	Subtotal      int64
	Discount      int64
	Total         int64
	CouponID      *int64
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)

	//ユーザーのカート（PENDING行）
	FindPendingByUserID(ctx context.Context, userID int64) (model.Order, error)
	GetOrCreatePendingByUserID(ctx context.Context, userID int64) (model.Order, error)

	//PENDING（カート）は含めない
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)

	//PENDING→CONFIRMED の確定。status = 'PENDING' を条件にした
	//1回のUPDATEで行い、他のトランザクションに先を越されたらfalse。
	//注文番号もこのUPDATEで採番する。
	Confirm(ctx context.Context, orderID int64, p ConfirmOrderParams) (bool, error)

	//from を条件にした条件付き更新。競合したらfalse。
	UpdateStatus(ctx context.Context, orderID int64, from model.OrderStatus, to model.OrderStatus) (bool, error)

	//発送情報（追跡コード・配達予定日）を設定
	UpdateShipping(ctx context.Context, orderID int64, trackingCode string, estimatedDelivery *time.Time) error
}
