package repository

import (
	"context"
	"errors"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 注文番号の採番に使うシーケンス。マイグレーション時に作成する。
const OrderNumberSequence = "order_numbers"

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// ユーザーのカート（PENDING行）を取得
func (r *OrderGormRepository) FindPendingByUserID(ctx context.Context, userID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.OrderStatusPending).
		First(&o).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// カートを取得し、無ければ作成。
// PENDINGの一意性は部分ユニークインデックスが保証するので、
// 同時作成で負けた側は作成エラー後にもう一度検索して拾う。
func (r *OrderGormRepository) GetOrCreatePendingByUserID(ctx context.Context, userID int64) (model.Order, error) {
	var cart model.Order

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND status = ?", userID, model.OrderStatusPending).
			First(&cart).Error

		if findErr == nil {
			return nil
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		// 無ければ作る
		now := time.Now()
		newCart := model.Order{
			UserID:    userID,
			Status:    model.OrderStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := tx.Create(&newCart).Error; err != nil {
			retryErr := tx.
				Where("user_id = ? AND status = ?", userID, model.OrderStatusPending).
				First(&cart).Error
			if retryErr == nil {
				return nil
			}
			return err
		}

		cart = newCart
		return nil
	})

	if err != nil {
		return model.Order{}, err
	}
	return cart, nil
}

// カート（PENDING）は注文履歴に含めない
func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("user_id = ? AND status <> ?", userID, model.OrderStatusPending)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status <> ?", userID, model.OrderStatusPending).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("status <> ?", model.OrderStatusPending)

	//status 絞り込み
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	//user_id 絞り込み
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}

	//期間絞り込み
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("id desc").Limit(f.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}

// PENDING→CONFIRMED の確定。status = 'PENDING' を条件にした1回のUPDATEなので、
// 同じカートへの同時チェックアウトは片方だけが行を更新できる（負けた側はfalse）。
// 配送先はこの時点のAddressをスナップショットする。
func (r *OrderGormRepository) Confirm(ctx context.Context, orderID int64, p repo.ConfirmOrderParams) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, model.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":           model.OrderStatusConfirmed,
			"number":           gorm.Expr("nextval('" + OrderNumberSequence + "')"),
			"payment_method":   p.PaymentMethod,
			"address_id":       p.Address.ID,
			"subtotal":         p.Subtotal,
			"discount":         p.Discount,
			"total":            p.Total,
			"coupon_id":        p.CouponID,
			"ship_name":        p.Address.Name,
			"ship_postal_code": p.Address.PostalCode,
			"ship_prefecture":  p.Address.Prefecture,
			"ship_city":        p.Address.City,
			"ship_line1":       p.Address.Line1,
			"ship_line2":       p.Address.Line2,
			"ship_phone":       p.Address.Phone,
		})

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// fromを条件にした条件付き更新。すでに他の遷移が入っていたらfalse。
func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, from model.OrderStatus, to model.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *OrderGormRepository) UpdateShipping(ctx context.Context, orderID int64, trackingCode string, estimatedDelivery *time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"tracking_code":      trackingCode,
			"estimated_delivery": estimatedDelivery,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
