package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"shop/internal/domain/model"
)

func newAdminOrderFixture() (*MockTxRepos, *MockAuditLogRepository, *AdminOrderUsecase) {
	txr := NewMockTxRepos()
	orders := new(MockOrderRepository)
	audit := new(MockAuditLogRepository)
	uc := NewAdminOrderUsecase(NewMockTxManager(txr), orders, audit)
	return txr, audit, uc
}

func TestAdminUpdateStatusForward(t *testing.T) {
	txr, audit, uc := newAdminOrderFixture()

	txr.orders.On("FindByID", mock.Anything, int64(100)).Return(model.Order{
		ID: 100, Status: model.OrderStatusConfirmed,
	}, nil)
	txr.orders.On("UpdateStatus", mock.Anything, int64(100), model.OrderStatusConfirmed, model.OrderStatusProcessing).Return(true, nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateOrderStatus && l.ResourceID == 100
	})).Return(nil)

	err := uc.UpdateStatus(context.Background(), 1, 100, model.OrderStatusProcessing)
	assert.NoError(t, err)
	audit.AssertExpectations(t)
}

func TestAdminUpdateStatusShippedSetsTracking(t *testing.T) {
	txr, audit, uc := newAdminOrderFixture()

	txr.orders.On("FindByID", mock.Anything, int64(100)).Return(model.Order{
		ID: 100, Status: model.OrderStatusProcessing,
	}, nil)
	txr.orders.On("UpdateStatus", mock.Anything, int64(100), model.OrderStatusProcessing, model.OrderStatusShipped).Return(true, nil)
	txr.orders.On("UpdateShipping", mock.Anything, int64(100), mock.MatchedBy(func(code string) bool {
		return code != ""
	}), mock.Anything).Return(nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.UpdateStatus(context.Background(), 1, 100, model.OrderStatusShipped)
	assert.NoError(t, err)
	txr.orders.AssertExpectations(t)
}

func TestAdminCancelReleasesStock(t *testing.T) {
	txr, audit, uc := newAdminOrderFixture()

	txr.orders.On("FindByID", mock.Anything, int64(100)).Return(model.Order{
		ID: 100, Status: model.OrderStatusProcessing,
	}, nil)
	txr.orders.On("UpdateStatus", mock.Anything, int64(100), model.OrderStatusProcessing, model.OrderStatusCancelled).Return(true, nil)
	txr.orderItems.On("ListByOrderID", mock.Anything, int64(100)).Return([]model.OrderItem{
		{ID: 1, VariantID: i64(30), Quantity: 3},
	}, nil)
	txr.inventory.On("Release", mock.Anything, int64(30), int64(3)).Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionCancelOrder
	})).Return(nil)

	err := uc.Cancel(context.Background(), 1, 100)
	assert.NoError(t, err)
	txr.inventory.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestAdminUpdateStatusTerminalRejected(t *testing.T) {
	txr, _, uc := newAdminOrderFixture()

	txr.orders.On("FindByID", mock.Anything, int64(100)).Return(model.Order{
		ID: 100, Status: model.OrderStatusDelivered,
	}, nil)

	err := uc.UpdateStatus(context.Background(), 1, 100, model.OrderStatusShipped)
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 409, he.Status)
	txr.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminUpdateStatusNoopOnSame(t *testing.T) {
	txr, audit, uc := newAdminOrderFixture()

	txr.orders.On("FindByID", mock.Anything, int64(100)).Return(model.Order{
		ID: 100, Status: model.OrderStatusConfirmed,
	}, nil)

	err := uc.UpdateStatus(context.Background(), 1, 100, model.OrderStatusConfirmed)
	assert.NoError(t, err)
	txr.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminUpdateStatusPendingRejected(t *testing.T) {
	txr, _, uc := newAdminOrderFixture()

	//カート（PENDING）は管理者の対象外
	txr.orders.On("FindByID", mock.Anything, int64(100)).Return(model.Order{
		ID: 100, Status: model.OrderStatusPending,
	}, nil)

	err := uc.UpdateStatus(context.Background(), 1, 100, model.OrderStatusConfirmed)
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 409, he.Status)
}
