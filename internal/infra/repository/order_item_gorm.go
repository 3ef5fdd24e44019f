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

type OrderItemGormRepository struct {
	db *gorm.DB
}

func NewOrderItemGormRepository(db *gorm.DB) *OrderItemGormRepository {
	return &OrderItemGormRepository{db: db}
}

func (r *OrderItemGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&items).Error
	if err != nil {
		return []model.OrderItem{}, err
	}
	return items, nil
}

func (r *OrderItemGormRepository) FindByID(ctx context.Context, itemID int64) (model.OrderItem, error) {
	var item model.OrderItem
	err := r.db.WithContext(ctx).Where("id = ?", itemID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.OrderItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.OrderItem{}, err
	}
	return item, nil
}

// 同一の(product, variant)は数量加算
func (r *OrderItemGormRepository) UpsertLine(ctx context.Context, orderID int64, line model.OrderItem) error {
	if line.Quantity <= 0 {
		return errors.New("invalid quantity")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("order_id = ? AND product_id = ?", orderID, line.ProductID)
		if line.VariantID != nil {
			q = q.Where("variant_id = ?", *line.VariantID)
		} else {
			q = q.Where("variant_id IS NULL")
		}

		var item model.OrderItem
		err := q.First(&item).Error

		if err == nil {
			// 既存ありだったら数量を増やす。上限超過は加算せず弾く
			newQty := item.Quantity + line.Quantity
			if newQty > model.MaxLineQuantity {
				return repo.ErrConflict
			}

			res := tx.Model(&model.OrderItem{}).
				Where("id = ?", item.ID).
				Update("quantity", newQty)

			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return repo.ErrNotFound
			}
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		//無い場合は新規作成
		now := time.Now()
		newItem := model.OrderItem{
			OrderID:             orderID,
			ProductID:           line.ProductID,
			VariantID:           line.VariantID,
			ProductNameSnapshot: line.ProductNameSnapshot,
			UnitPriceSnapshot:   line.UnitPriceSnapshot,
			Quantity:            line.Quantity,
			CreatedAt:           now,
			UpdatedAt:           now,
		}

		if err := tx.Create(&newItem).Error; err != nil {
			return err
		}

		return nil
	})
}

// 明細の数量を更新
func (r *OrderItemGormRepository) UpdateQuantity(ctx context.Context, itemID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.OrderItem{}).
		Where("id = ?", itemID).
		Update("quantity", qty)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細を削除
func (r *OrderItemGormRepository) DeleteByID(ctx context.Context, itemID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.OrderItem{}, itemID)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// カートクリア用（行数0でもエラーにしない）
func (r *OrderItemGormRepository) DeleteByOrderID(ctx context.Context, orderID int64) error {
	return r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&model.OrderItem{}).Error
}

//明細が、そのユーザーのPENDINGカートに属しているかを判定

func (r *OrderItemGormRepository) IsOwnedByUser(ctx context.Context, itemID int64, userID int64) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Table("order_items").
		Joins("join orders on orders.id = order_items.order_id").
		Where("order_items.id = ? AND orders.user_id = ? AND orders.status = ?",
			itemID, userID, model.OrderStatusPending).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}
