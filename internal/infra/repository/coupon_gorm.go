package repository

import (
	"context"
	"errors"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"gorm.io/gorm"
)

type CouponGormRepository struct {
	db *gorm.DB
}

func NewCouponGormRepository(db *gorm.DB) *CouponGormRepository {
	return &CouponGormRepository{db: db}
}

func (r *CouponGormRepository) FindByCode(ctx context.Context, code string) (model.Coupon, error) {
	var c model.Coupon
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Coupon{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Coupon{}, err
	}
	return c, nil
}

func (r *CouponGormRepository) FindByID(ctx context.Context, couponID int64) (model.Coupon, error) {
	var c model.Coupon
	err := r.db.WithContext(ctx).Where("id = ?", couponID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Coupon{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Coupon{}, err
	}
	return c, nil
}

func (r *CouponGormRepository) HasUsage(ctx context.Context, couponID int64, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CouponUsage{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// (coupon_id, user_id) のユニーク制約で二重使用を弾く。
// 同一ユーザーの同時チェックアウトは片方のINSERTが落ちて ErrConflict になる。
func (r *CouponGormRepository) CreateUsage(ctx context.Context, usage model.CouponUsage) error {
	err := r.db.WithContext(ctx).Create(&usage).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repo.ErrConflict
	}
	return err
}

// used_count < max_uses のときだけ加算（max_usesがnullなら無条件）。
// 上限チェックと加算を1つのUPDATEにまとめる。
func (r *CouponGormRepository) IncrementUsedCount(ctx context.Context, couponID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Coupon{}).
		Where("id = ? AND (max_uses IS NULL OR used_count < max_uses)", couponID).
		Update("used_count", gorm.Expr("used_count + 1"))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

func (r *CouponGormRepository) Create(ctx context.Context, c model.Coupon) (model.Coupon, error) {
	err := r.db.WithContext(ctx).Create(&c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return model.Coupon{}, repo.ErrConflict
	}
	if err != nil {
		return model.Coupon{}, err
	}
	return c, nil
}

func (r *CouponGormRepository) Update(ctx context.Context, c model.Coupon) error {
	res := r.db.WithContext(ctx).
		Model(&model.Coupon{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"code":            c.Code,
			"type":            c.Type,
			"value":           c.Value,
			"min_order_value": c.MinOrderValue,
			"max_uses":        c.MaxUses,
			"expires_at":      c.ExpiresAt,
			"is_active":       c.IsActive,
		})

	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return repo.ErrConflict
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CouponGormRepository) Delete(ctx context.Context, couponID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Coupon{}, couponID)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CouponGormRepository) List(ctx context.Context, q repo.CouponListQuery) ([]model.Coupon, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 50
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Coupon{}).Count(&total).Error; err != nil {
		return []model.Coupon{}, 0, err
	}

	var items []model.Coupon
	offset := (q.Page - 1) * q.Limit
	err := r.db.WithContext(ctx).
		Order("id desc").
		Limit(q.Limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Coupon{}, 0, err
	}

	return items, total, nil
}
