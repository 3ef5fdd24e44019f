package usecase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	orderRepo repo.OrderRepository
	auditRepo repo.AuditLogRepository
}

func NewAdminOrderUsecase(
	tx repo.TransactionManager,
	orderRepo repo.OrderRepository,
	auditRepo repo.AuditLogRepository,
) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		tx:        tx,
		orderRepo: orderRepo,
		auditRepo: auditRepo,
	}
}

type AdminOrderListInput struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

func (u *AdminOrderUsecase) List(ctx context.Context, adminUserID int64, in AdminOrderListInput) (OrderListOutput, error) {
	if adminUserID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.Status != "" && !model.OrderStatus(in.Status).Valid() {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	orders, total, err := u.orderRepo.ListAdmin(ctx, repo.AdminOrderListFilter{
		Page:   in.Page,
		Limit:  in.Limit,
		Status: in.Status,
		UserID: in.UserID,
		From:   in.From,
		To:     in.To,
	})
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return OrderListOutput{Items: orders, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

// 注文ステータスの変更。遷移可否はOrderStatus側のルールに従う。
// CANCELLEDへは在庫を戻し、SHIPPEDへは追跡コードを採番する。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, adminUserID int64, orderID int64, next model.OrderStatus) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	if !next.Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if order.Status == next {
			//同じステータスへの変更は何もしない
			return nil
		}
		if !order.Status.CanTransitionTo(next) {
			return NewHTTPError(http.StatusConflict,
				fmt.Sprintf("cannot change status from %s to %s", order.Status, next))
		}

		ok, err := r.Orders().UpdateStatus(ctx, orderID, order.Status, next)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			return NewHTTPError(http.StatusConflict, "order status changed, retry")
		}

		switch next {
		case model.OrderStatusCancelled:
			if err := releaseOrderStock(ctx, r, orderID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		case model.OrderStatusShipped:
			eta := time.Now().AddDate(0, 0, 3)
			if err := r.Orders().UpdateShipping(ctx, orderID, uuid.NewString(), &eta); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		action := model.AuditActionUpdateOrderStatus
		if next == model.OrderStatusCancelled {
			action = model.AuditActionCancelOrder
		}
		if err := u.auditRepo.Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       action,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   fmt.Sprintf(`{"status":%q}`, order.Status),
			AfterJSON:    fmt.Sprintf(`{"status":%q}`, next),
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}

func (u *AdminOrderUsecase) Cancel(ctx context.Context, adminUserID int64, orderID int64) error {
	return u.UpdateStatus(ctx, adminUserID, orderID, model.OrderStatusCancelled)
}
