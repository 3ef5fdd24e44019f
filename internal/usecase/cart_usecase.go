package usecase

import (
	"context"
	"net/http"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
)

type CartUsecase struct {
	tx repo.TransactionManager
}

func NewCartUsecase(tx repo.TransactionManager) *CartUsecase {
	return &CartUsecase{tx: tx}
}

type CartItemView struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	VariantID   *int64 `json:"variant_id,omitempty"`
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int64  `json:"quantity"`
	LineTotal   int64  `json:"line_total"`
}

type CartOutput struct {
	OrderID  int64          `json:"order_id"`
	Items    []CartItemView `json:"items"`
	Subtotal int64          `json:"subtotal"`
}

// カートの表示はスナップショット値から組み立てる。
// （商品の現在価格は参照しない）
func buildCartOutput(orderID int64, items []model.OrderItem) CartOutput {
	out := CartOutput{OrderID: orderID, Items: []CartItemView{}}
	for _, it := range items {
		line := it.UnitPriceSnapshot * it.Quantity
		out.Items = append(out.Items, CartItemView{
			ID:          it.ID,
			ProductID:   it.ProductID,
			VariantID:   it.VariantID,
			ProductName: it.ProductNameSnapshot,
			UnitPrice:   it.UnitPriceSnapshot,
			Quantity:    it.Quantity,
			LineTotal:   line,
		})
		out.Subtotal += line
	}
	return out
}

func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindPendingByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			//カート未作成なら空で返す
			out = CartOutput{Items: []CartItemView{}}
			return nil
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, order.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = buildCartOutput(order.ID, items)
		return nil
	})
	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

type AddToCartInput struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id"`
	Quantity  int64  `json:"quantity"`
}

// カートへ追加。追加時点の商品名・単価をスナップショットする。
// 同じ(product, variant)の明細があれば数量を加算。
// ここでの在庫チェックは参考値（確定はチェックアウト時の条件付きUPDATE）。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddToCartInput) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if in.Quantity < 1 || in.Quantity > model.MaxLineQuantity {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be between 1 and 99")
	}

	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, in.ProductID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !p.IsActive {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}

		unitPrice := p.Price
		if in.VariantID != nil {
			v, err := r.Products().FindVariantOfProduct(ctx, *in.VariantID, in.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "variant not found")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if v.Stock < in.Quantity {
				return NewHTTPError(http.StatusConflict, "insufficient stock")
			}
			unitPrice = v.UnitPrice(p.Price)
		}

		order, err := r.Orders().GetOrCreatePendingByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.OrderItems().UpsertLine(ctx, order.ID, model.OrderItem{
			OrderID:             order.ID,
			ProductID:           in.ProductID,
			VariantID:           in.VariantID,
			ProductNameSnapshot: p.Name,
			UnitPriceSnapshot:   unitPrice,
			Quantity:            in.Quantity,
		}); err != nil {
			// 既存明細との合算が上限を超えるケース
			if err == repo.ErrConflict {
				return NewHTTPError(http.StatusConflict, "cart quantity limit exceeded")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, order.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = buildCartOutput(order.ID, items)
		return nil
	})
	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

func (u *CartUsecase) UpdateItem(ctx context.Context, userID int64, itemID int64, quantity int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if itemID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item id")
	}
	if quantity < 1 || quantity > model.MaxLineQuantity {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be between 1 and 99")
	}

	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		owned, err := r.OrderItems().IsOwnedByUser(ctx, itemID, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !owned {
			//他人の明細の存在は漏らさない
			return NewHTTPError(http.StatusNotFound, "item not found")
		}

		if err := r.OrderItems().UpdateQuantity(ctx, itemID, quantity); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		item, err := r.OrderItems().FindByID(ctx, itemID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		items, err := r.OrderItems().ListByOrderID(ctx, item.OrderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = buildCartOutput(item.OrderID, items)
		return nil
	})
	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

func (u *CartUsecase) DeleteItem(ctx context.Context, userID int64, itemID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if itemID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		owned, err := r.OrderItems().IsOwnedByUser(ctx, itemID, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !owned {
			return NewHTTPError(http.StatusNotFound, "item not found")
		}
		if err := r.OrderItems().DeleteByID(ctx, itemID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}

func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindPendingByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return nil
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.OrderItems().DeleteByOrderID(ctx, order.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}
