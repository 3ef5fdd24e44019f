package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
)

func newCartFixture() (*MockTxRepos, *CartUsecase) {
	txr := NewMockTxRepos()
	return txr, NewCartUsecase(NewMockTxManager(txr))
}

func TestGetCartEmptyWhenNoPendingOrder(t *testing.T) {
	txr, uc := newCartFixture()

	txr.orders.On("FindPendingByUserID", mock.Anything, int64(7)).Return(model.Order{}, repo.ErrNotFound)

	out, err := uc.GetCart(context.Background(), 7)
	assert.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Equal(t, int64(0), out.Subtotal)
}

func TestGetCartUsesSnapshots(t *testing.T) {
	txr, uc := newCartFixture()

	txr.orders.On("FindPendingByUserID", mock.Anything, int64(7)).Return(model.Order{ID: 100}, nil)
	txr.orderItems.On("ListByOrderID", mock.Anything, int64(100)).Return([]model.OrderItem{
		{ID: 1, ProductNameSnapshot: "Tee", UnitPriceSnapshot: 1000, Quantity: 2},
		{ID: 2, ProductNameSnapshot: "Mug", UnitPriceSnapshot: 500, Quantity: 3},
	}, nil)

	out, err := uc.GetCart(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, int64(100), out.OrderID)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, int64(2000), out.Items[0].LineTotal)
	assert.Equal(t, int64(3500), out.Subtotal)
}

func TestAddToCartSnapshotsPriceAndName(t *testing.T) {
	txr, uc := newCartFixture()

	override := int64(1200)
	txr.products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{
		ID: 1, Name: "Tee", Price: 1000, IsActive: true,
	}, nil)
	txr.products.On("FindVariantOfProduct", mock.Anything, int64(30), int64(1)).Return(model.ProductVariant{
		ID: 30, ProductID: 1, Stock: 10, Price: &override,
	}, nil)
	txr.orders.On("GetOrCreatePendingByUserID", mock.Anything, int64(7)).Return(model.Order{ID: 100}, nil)
	txr.orderItems.On("UpsertLine", mock.Anything, int64(100), mock.MatchedBy(func(l model.OrderItem) bool {
		//追加時点の名前とバリアント価格が入る
		return l.ProductNameSnapshot == "Tee" && l.UnitPriceSnapshot == 1200 && l.Quantity == 2
	})).Return(nil)
	txr.orderItems.On("ListByOrderID", mock.Anything, int64(100)).Return([]model.OrderItem{
		{ID: 1, ProductNameSnapshot: "Tee", UnitPriceSnapshot: 1200, Quantity: 2},
	}, nil)

	out, err := uc.AddToCart(context.Background(), 7, AddToCartInput{ProductID: 1, VariantID: i64(30), Quantity: 2})
	assert.NoError(t, err)
	assert.Equal(t, int64(2400), out.Subtotal)
	txr.orderItems.AssertExpectations(t)
}

func TestAddToCartMergedQuantityOverLimit(t *testing.T) {
	txr, uc := newCartFixture()

	txr.products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Name: "Tee", Price: 1000, IsActive: true}, nil)
	txr.orders.On("GetOrCreatePendingByUserID", mock.Anything, int64(7)).Return(model.Order{ID: 100}, nil)
	//既存明細との合算が上限超過でリポジトリが弾くケース
	txr.orderItems.On("UpsertLine", mock.Anything, int64(100), mock.Anything).Return(repo.ErrConflict)

	_, err := uc.AddToCart(context.Background(), 7, AddToCartInput{ProductID: 1, Quantity: 50})
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 409, he.Status)
	assert.Equal(t, "cart quantity limit exceeded", he.Message)
}

func TestAddToCartRejectsForeignVariant(t *testing.T) {
	txr, uc := newCartFixture()

	txr.products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Name: "Tee", Price: 1000, IsActive: true}, nil)
	//別商品のバリアントを指定
	txr.products.On("FindVariantOfProduct", mock.Anything, int64(30), int64(1)).Return(model.ProductVariant{}, repo.ErrNotFound)

	_, err := uc.AddToCart(context.Background(), 7, AddToCartInput{ProductID: 1, VariantID: i64(30), Quantity: 1})
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
	txr.orders.AssertNotCalled(t, "GetOrCreatePendingByUserID", mock.Anything, mock.Anything)
}

func TestAddToCartInactiveProductHidden(t *testing.T) {
	txr, uc := newCartFixture()

	txr.products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, IsActive: false}, nil)

	_, err := uc.AddToCart(context.Background(), 7, AddToCartInput{ProductID: 1, Quantity: 1})
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
}

func TestAddToCartSoftStockCheck(t *testing.T) {
	txr, uc := newCartFixture()

	txr.products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Name: "Tee", Price: 1000, IsActive: true}, nil)
	txr.products.On("FindVariantOfProduct", mock.Anything, int64(30), int64(1)).Return(model.ProductVariant{
		ID: 30, ProductID: 1, Stock: 1,
	}, nil)

	_, err := uc.AddToCart(context.Background(), 7, AddToCartInput{ProductID: 1, VariantID: i64(30), Quantity: 5})
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 409, he.Status)
}

func TestAddToCartQuantityBounds(t *testing.T) {
	_, uc := newCartFixture()
	ctx := context.Background()

	_, err := uc.AddToCart(ctx, 7, AddToCartInput{ProductID: 1, Quantity: 0})
	he, _ := AsHTTPError(err)
	assert.Equal(t, 400, he.Status)

	_, err = uc.AddToCart(ctx, 7, AddToCartInput{ProductID: 1, Quantity: 100})
	he, _ = AsHTTPError(err)
	assert.Equal(t, 400, he.Status)
}

func TestUpdateItemOwnershipHidden(t *testing.T) {
	txr, uc := newCartFixture()

	txr.orderItems.On("IsOwnedByUser", mock.Anything, int64(5), int64(7)).Return(false, nil)

	_, err := uc.UpdateItem(context.Background(), 7, 5, 2)
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
	txr.orderItems.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteItemOwned(t *testing.T) {
	txr, uc := newCartFixture()

	txr.orderItems.On("IsOwnedByUser", mock.Anything, int64(5), int64(7)).Return(true, nil)
	txr.orderItems.On("DeleteByID", mock.Anything, int64(5)).Return(nil)

	err := uc.DeleteItem(context.Background(), 7, 5)
	assert.NoError(t, err)
	txr.orderItems.AssertExpectations(t)
}

func TestClearCartNoopWithoutCart(t *testing.T) {
	txr, uc := newCartFixture()

	txr.orders.On("FindPendingByUserID", mock.Anything, int64(7)).Return(model.Order{}, repo.ErrNotFound)

	err := uc.ClearCart(context.Background(), 7)
	assert.NoError(t, err)
	txr.orderItems.AssertNotCalled(t, "DeleteByOrderID", mock.Anything, mock.Anything)
}
