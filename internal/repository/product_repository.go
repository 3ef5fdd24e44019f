package repository

import (
	"context"
	"errors"

	"shop/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// ユニーク制約違反など
var ErrConflict = errors.New("conflict")

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Q        string
	MinPrice *int64
	MaxPrice *int64
	Sort     string
}

// 商品とバリアントの永続化（保存・取得）だけを約束。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error

	FindVariantByID(ctx context.Context, variantID int64) (model.ProductVariant, error)

	//バリアントがその商品に属していることまで確認する
	FindVariantOfProduct(ctx context.Context, variantID int64, productID int64) (model.ProductVariant, error)

	ListVariantsByProductID(ctx context.Context, productID int64) ([]model.ProductVariant, error)
	CreateVariant(ctx context.Context, v model.ProductVariant) (model.ProductVariant, error)
}
