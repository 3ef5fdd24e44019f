package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"shop/internal/domain/model"
	"shop/internal/notification"
	repo "shop/internal/repository"
)

type CheckoutUsecase struct {
	tx        repo.TransactionManager
	orderRepo repo.OrderRepository
	userRepo  repo.UserRepository
	mailer    notification.Mailer
	log       *zap.Logger
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	orderRepo repo.OrderRepository,
	userRepo repo.UserRepository,
	mailer notification.Mailer,
	log *zap.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:        tx,
		orderRepo: orderRepo,
		userRepo:  userRepo,
		mailer:    mailer,
		log:       log,
	}
}

type CheckoutInput struct {
	AddressID     int64  `json:"address_id"`
	PaymentMethod string `json:"payment_method"`
	CouponCode    string `json:"coupon_code"`
}

type CheckoutOutput struct {
	OrderID  int64  `json:"order_id"`
	Number   int64  `json:"number"`
	Subtotal int64  `json:"subtotal"`
	Discount int64  `json:"discount"`
	Total    int64  `json:"total"`
	Status   string `json:"status"`
}

// チェックアウト確定。1つのトランザクションで
// カート検証 → クーポン判定 → 在庫引当 → 注文確定 → クーポン使用記録
// までを行い、どこかで失敗したら全部ロールバックする。
func (u *CheckoutUsecase) Checkout(ctx context.Context, userID int64, in CheckoutInput) (CheckoutOutput, error) {
	if userID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.AddressID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "address_id required")
	}
	switch in.PaymentMethod {
	case "COD", "BANK_TRANSFER", "CARD":
	default:
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment method")
	}

	var out CheckoutOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//配送先。存在しない場合も他人の住所の場合も404で返す
		owned, err := r.Addresses().IsOwnedByUser(ctx, in.AddressID, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !owned {
			return NewHTTPError(http.StatusNotFound, "address not found")
		}
		addr, err := r.Addresses().FindByID(ctx, in.AddressID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order, err := r.Orders().FindPendingByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, order.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(items) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}

		//小計はスナップショット単価から計算する
		var subtotal int64
		for _, it := range items {
			subtotal += it.UnitPriceSnapshot * it.Quantity
		}

		var discount int64
		var couponID *int64
		if strings.TrimSpace(in.CouponCode) != "" {
			c, d, err := evaluateCoupon(ctx, r.Coupons(), in.CouponCode, userID, subtotal, time.Now())
			if err != nil {
				return err
			}
			discount = d
			couponID = &c.ID
		}

		//在庫引当。1件でも足りなければ全体を中断
		for _, it := range items {
			if it.VariantID == nil {
				continue
			}
			ok, err := r.Inventory().Reserve(ctx, *it.VariantID, it.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusConflict,
					fmt.Sprintf("insufficient stock for variant %d", *it.VariantID))
			}
		}

		total := subtotal - discount

		//PENDINGであることを条件に確定。二重チェックアウトはここで弾く
		ok, err := r.Orders().Confirm(ctx, order.ID, repo.ConfirmOrderParams{
			Address:       addr,
			PaymentMethod: in.PaymentMethod,
			Subtotal:      subtotal,
			Discount:      discount,
			Total:         total,
			CouponID:      couponID,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			return NewHTTPError(http.StatusConflict, "order already confirmed")
		}

		//クーポン使用の記録は確定が通ってから
		if couponID != nil {
			err := r.Coupons().CreateUsage(ctx, model.CouponUsage{
				CouponID: *couponID,
				UserID:   userID,
				OrderID:  order.ID,
				UsedAt:   time.Now(),
			})
			if err == repo.ErrConflict {
				return ErrCouponAlreadyUsed
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			incremented, err := r.Coupons().IncrementUsedCount(ctx, *couponID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !incremented {
				return ErrCouponExhausted
			}
		}

		out = CheckoutOutput{
			OrderID:  order.ID,
			Subtotal: subtotal,
			Discount: discount,
			Total:    total,
			Status:   string(model.OrderStatusConfirmed),
		}
		return nil
	})
	if err != nil {
		return CheckoutOutput{}, err
	}

	//採番された注文番号はコミット後に読み直す
	confirmed, err := u.orderRepo.FindByID(ctx, out.OrderID)
	if err != nil {
		u.log.Warn("reload confirmed order failed", zap.Int64("order_id", out.OrderID), zap.Error(err))
	} else if confirmed.Number != nil {
		out.Number = *confirmed.Number
	}

	//確認メールは注文の成否に影響させない
	go u.sendConfirmationMail(userID, out)

	return out, nil
}

func (u *CheckoutUsecase) sendConfirmationMail(userID int64, out CheckoutOutput) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		u.log.Warn("load user for confirmation mail failed", zap.Int64("user_id", userID), zap.Error(err))
		return
	}
	if err := u.mailer.SendOrderConfirmation(ctx, notification.OrderConfirmation{
		To:          user.Email,
		OrderNumber: out.Number,
		Total:       out.Total,
	}); err != nil {
		u.log.Warn("send confirmation mail failed", zap.Int64("order_id", out.OrderID), zap.Error(err))
	}
}
