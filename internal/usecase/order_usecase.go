package usecase

import (
	"context"
	"net/http"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
)

type OrderUsecase struct {
	tx        repo.TransactionManager
	orderRepo repo.OrderRepository
	itemRepo  repo.OrderItemRepository
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orderRepo repo.OrderRepository,
	itemRepo repo.OrderItemRepository,
) *OrderUsecase {
	return &OrderUsecase{
		tx:        tx,
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
	}
}

type OrderListOutput struct {
	Items []model.Order `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

type OrderDetailOutput struct {
	Order model.Order       `json:"order"`
	Items []model.OrderItem `json:"items"`
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page, limit int) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	orders, total, err := u.orderRepo.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return OrderListOutput{Items: orders, Total: total, Page: page, Limit: limit}, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderDetailOutput, error) {
	if userID <= 0 {
		return OrderDetailOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, err := u.orderRepo.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return OrderDetailOutput{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return OrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	//他人の注文もカート（PENDING）も見せない
	if order.UserID != userID || order.Status == model.OrderStatusPending {
		return OrderDetailOutput{}, NewHTTPError(http.StatusNotFound, "order not found")
	}

	items, err := u.itemRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return OrderDetailOutput{Order: order, Items: items}, nil
}

// キャンセル時の在庫戻し。引き当てた数量をそのまま返す
func releaseOrderStock(ctx context.Context, r repo.TxRepos, orderID int64) error {
	items, err := r.OrderItems().ListByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.VariantID == nil {
			continue
		}
		if err := r.Inventory().Release(ctx, *it.VariantID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (u *OrderUsecase) CancelMyOrder(ctx context.Context, userID int64, orderID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if order.UserID != userID || order.Status == model.OrderStatusPending {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}

		switch order.Status {
		case model.OrderStatusDelivered:
			return NewHTTPError(http.StatusConflict, "cannot cancel delivered order")
		case model.OrderStatusCancelled:
			return NewHTTPError(http.StatusConflict, "order is already cancelled")
		}
		if !order.Status.CanCancel() {
			return NewHTTPError(http.StatusConflict, "order cannot be cancelled")
		}

		//読み取り後に状態が変わっていたら弾く
		ok, err := r.Orders().UpdateStatus(ctx, orderID, order.Status, model.OrderStatusCancelled)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			return NewHTTPError(http.StatusConflict, "order status changed, retry")
		}

		if err := releaseOrderStock(ctx, r, orderID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}
