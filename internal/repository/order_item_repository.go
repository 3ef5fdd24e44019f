package repository

import (
	"context"

	"shop/internal/domain/model"
)

type OrderItemRepository interface {
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	FindByID(ctx context.Context, itemID int64) (model.OrderItem, error)

	// 同一の(product, variant)は数量加算
	UpsertLine(ctx context.Context, orderID int64, line model.OrderItem) error

	UpdateQuantity(ctx context.Context, itemID int64, qty int64) error
	DeleteByID(ctx context.Context, itemID int64) error

	//カートクリア用
	DeleteByOrderID(ctx context.Context, orderID int64) error

	//明細がそのユーザーのPENDINGカートに属しているか
	IsOwnedByUser(ctx context.Context, itemID int64, userID int64) (bool, error)
}
