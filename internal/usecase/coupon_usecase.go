package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
)

// クーポン判定の失敗理由。ハンドラ側でそのままレスポンスになる
var (
	ErrCouponInvalid      = NewHTTPError(http.StatusBadRequest, "coupon is invalid")
	ErrCouponExpired      = NewHTTPError(http.StatusBadRequest, "coupon is expired")
	ErrCouponExhausted    = NewHTTPError(http.StatusConflict, "coupon usage limit reached")
	ErrCouponAlreadyUsed  = NewHTTPError(http.StatusConflict, "coupon already used")
	ErrCouponBelowMinimum = NewHTTPError(http.StatusBadRequest, "order total below coupon minimum")
)

type CouponUsecase struct {
	couponRepo repo.CouponRepository
	auditRepo  repo.AuditLogRepository
}

func NewCouponUsecase(couponRepo repo.CouponRepository, auditRepo repo.AuditLogRepository) *CouponUsecase {
	return &CouponUsecase{
		couponRepo: couponRepo,
		auditRepo:  auditRepo,
	}
}

// 割引額の計算。金額はすべて最小通貨単位のint64なので
// PERCENTは整数除算で切り捨てになる。割引は小計を超えない
func computeDiscount(c model.Coupon, subtotal int64) int64 {
	var d int64
	switch c.Type {
	case model.CouponTypePercent:
		d = subtotal * c.Value / 100
	case model.CouponTypeFixed:
		d = c.Value
	default:
		return 0
	}
	if d > subtotal {
		d = subtotal
	}
	if d < 0 {
		d = 0
	}
	return d
}

// クーポンの適用可否チェック。判定順は固定:
// 存在・有効 → 期限 → 上限 → 使用済み → 最低金額
// ここでは使用を記録しない。記録はチェックアウト確定時のみ
func evaluateCoupon(ctx context.Context, coupons repo.CouponRepository, code string, userID int64, subtotal int64, now time.Time) (model.Coupon, int64, error) {
	c, err := coupons.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err == repo.ErrNotFound {
		return model.Coupon{}, 0, ErrCouponInvalid
	}
	if err != nil {
		return model.Coupon{}, 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !c.IsActive {
		return model.Coupon{}, 0, ErrCouponInvalid
	}
	if c.ExpiresAt != nil && !now.Before(*c.ExpiresAt) {
		return model.Coupon{}, 0, ErrCouponExpired
	}
	if c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
		return model.Coupon{}, 0, ErrCouponExhausted
	}

	used, err := coupons.HasUsage(ctx, c.ID, userID)
	if err != nil {
		return model.Coupon{}, 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if used {
		return model.Coupon{}, 0, ErrCouponAlreadyUsed
	}

	if c.MinOrderValue != nil && subtotal < *c.MinOrderValue {
		return model.Coupon{}, 0, ErrCouponBelowMinimum
	}

	return c, computeDiscount(c, subtotal), nil
}

type ValidateCouponOutput struct {
	Code     string `json:"code"`
	Discount int64  `json:"discount"`
	Total    int64  `json:"total"`
}

// チェックアウト前のプレビュー。使用は一切記録しない
func (u *CouponUsecase) Validate(ctx context.Context, userID int64, code string, subtotal int64) (ValidateCouponOutput, error) {
	if userID <= 0 {
		return ValidateCouponOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(code) == "" {
		return ValidateCouponOutput{}, NewHTTPError(http.StatusBadRequest, "code required")
	}
	if subtotal < 0 {
		return ValidateCouponOutput{}, NewHTTPError(http.StatusBadRequest, "subtotal must be >= 0")
	}

	c, discount, err := evaluateCoupon(ctx, u.couponRepo, code, userID, subtotal, time.Now())
	if err != nil {
		return ValidateCouponOutput{}, err
	}

	return ValidateCouponOutput{
		Code:     c.Code,
		Discount: discount,
		Total:    subtotal - discount,
	}, nil
}

type AdminCouponInput struct {
	Code          string
	Type          string
	Value         int64
	MinOrderValue *int64
	MaxUses       *int64
	ExpiresAt     *time.Time
	IsActive      bool
}

func validateCouponInput(in AdminCouponInput) error {
	if strings.TrimSpace(in.Code) == "" {
		return NewHTTPError(http.StatusBadRequest, "code required")
	}
	t := model.CouponType(in.Type)
	if t != model.CouponTypePercent && t != model.CouponTypeFixed {
		return NewHTTPError(http.StatusBadRequest, "invalid coupon type")
	}
	if t == model.CouponTypePercent && (in.Value < 1 || in.Value > 100) {
		return NewHTTPError(http.StatusBadRequest, "percent value must be between 1 and 100")
	}
	if t == model.CouponTypeFixed && in.Value < 1 {
		return NewHTTPError(http.StatusBadRequest, "fixed value must be >= 1")
	}
	if in.MinOrderValue != nil && *in.MinOrderValue < 0 {
		return NewHTTPError(http.StatusBadRequest, "min_order_value must be >= 0")
	}
	if in.MaxUses != nil && *in.MaxUses < 1 {
		return NewHTTPError(http.StatusBadRequest, "max_uses must be >= 1")
	}
	return nil
}

func (u *CouponUsecase) AdminCreate(ctx context.Context, adminUserID int64, in AdminCouponInput) (int64, error) {
	if adminUserID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateCouponInput(in); err != nil {
		return 0, err
	}

	now := time.Now()
	c := model.Coupon{
		Code:          strings.ToUpper(strings.TrimSpace(in.Code)),
		Type:          model.CouponType(in.Type),
		Value:         in.Value,
		MinOrderValue: in.MinOrderValue,
		MaxUses:       in.MaxUses,
		ExpiresAt:     in.ExpiresAt,
		IsActive:      in.IsActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	created, err := u.couponRepo.Create(ctx, c)
	if err == repo.ErrConflict {
		return 0, NewHTTPError(http.StatusConflict, "code already exists")
	}
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionManageCoupon,
		ResourceType: model.AuditResourceCoupon,
		ResourceID:   created.ID,
		AfterJSON:    fmt.Sprintf(`{"code":%q,"active":%t}`, created.Code, created.IsActive),
		CreatedAt:    time.Now(),
	}); err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created.ID, nil
}

func (u *CouponUsecase) AdminUpdate(ctx context.Context, adminUserID int64, couponID int64, in AdminCouponInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if couponID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid coupon id")
	}
	if err := validateCouponInput(in); err != nil {
		return err
	}

	before, err := u.couponRepo.FindByID(ctx, couponID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	c := model.Coupon{
		ID:            couponID,
		Code:          strings.ToUpper(strings.TrimSpace(in.Code)),
		Type:          model.CouponType(in.Type),
		Value:         in.Value,
		MinOrderValue: in.MinOrderValue,
		MaxUses:       in.MaxUses,
		ExpiresAt:     in.ExpiresAt,
		IsActive:      in.IsActive,
		UpdatedAt:     time.Now(),
	}
	if err := u.couponRepo.Update(ctx, c); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err == repo.ErrConflict {
			return NewHTTPError(http.StatusConflict, "code already exists")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionManageCoupon,
		ResourceType: model.AuditResourceCoupon,
		ResourceID:   couponID,
		BeforeJSON:   fmt.Sprintf(`{"code":%q,"active":%t}`, before.Code, before.IsActive),
		AfterJSON:    fmt.Sprintf(`{"code":%q,"active":%t}`, c.Code, c.IsActive),
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *CouponUsecase) AdminDelete(ctx context.Context, adminUserID int64, couponID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if couponID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid coupon id")
	}

	before, err := u.couponRepo.FindByID(ctx, couponID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.couponRepo.Delete(ctx, couponID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionManageCoupon,
		ResourceType: model.AuditResourceCoupon,
		ResourceID:   couponID,
		BeforeJSON:   fmt.Sprintf(`{"code":%q,"active":%t}`, before.Code, before.IsActive),
		AfterJSON:    `null`,
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *CouponUsecase) AdminList(ctx context.Context, adminUserID int64, page, limit int) ([]model.Coupon, int64, error) {
	if adminUserID <= 0 {
		return nil, 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.couponRepo.List(ctx, repo.CouponListQuery{Page: page, Limit: limit})
	if err != nil {
		return nil, 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, total, nil
}
