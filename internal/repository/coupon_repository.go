package repository

import (
	"context"

	"shop/internal/domain/model"
)

type CouponListQuery struct {
	Page  int
	Limit int
}

type CouponRepository interface {
	//codeは呼び出し側で大文字に正規化しておく
	FindByCode(ctx context.Context, code string) (model.Coupon, error)
	FindByID(ctx context.Context, couponID int64) (model.Coupon, error)

	//このユーザーが使用済みか
	HasUsage(ctx context.Context, couponID int64, userID int64) (bool, error)

	//使用記録の作成。(coupon_id, user_id)の重複は ErrConflict。
	CreateUsage(ctx context.Context, usage model.CouponUsage) error

	//used_count < max_uses のときだけ加算。上限到達ならfalse。
	IncrementUsedCount(ctx context.Context, couponID int64) (bool, error)

	Create(ctx context.Context, c model.Coupon) (model.Coupon, error)
	Update(ctx context.Context, c model.Coupon) error
	Delete(ctx context.Context, couponID int64) error
	List(ctx context.Context, q CouponListQuery) ([]model.Coupon, int64, error)
}
