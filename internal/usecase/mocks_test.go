package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"shop/internal/domain/model"
	"shop/internal/notification"
	repo "shop/internal/repository"
)

// =====================
// Mock: TransactionManager
// =====================

// WithinTxはロールバックの代わりにエラーをそのまま返すだけ
type MockTxManager struct {
	repos *MockTxRepos
}

func NewMockTxManager(r *MockTxRepos) *MockTxManager {
	return &MockTxManager{repos: r}
}

func (m *MockTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.repos)
}

type MockTxRepos struct {
	orders     *MockOrderRepository
	orderItems *MockOrderItemRepository
	inventory  *MockInventoryRepository
	coupons    *MockCouponRepository
	products   *MockProductRepository
	addresses  *MockAddressRepository
}

func NewMockTxRepos() *MockTxRepos {
	return &MockTxRepos{
		orders:     new(MockOrderRepository),
		orderItems: new(MockOrderItemRepository),
		inventory:  new(MockInventoryRepository),
		coupons:    new(MockCouponRepository),
		products:   new(MockProductRepository),
		addresses:  new(MockAddressRepository),
	}
}

func (m *MockTxRepos) Orders() repo.OrderRepository         { return m.orders }
func (m *MockTxRepos) OrderItems() repo.OrderItemRepository { return m.orderItems }
func (m *MockTxRepos) Inventory() repo.InventoryRepository  { return m.inventory }
func (m *MockTxRepos) Coupons() repo.CouponRepository       { return m.coupons }
func (m *MockTxRepos) Products() repo.ProductRepository     { return m.products }
func (m *MockTxRepos) Addresses() repo.AddressRepository    { return m.addresses }

// =====================
// Mock: OrderRepository
// =====================

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) FindPendingByUserID(ctx context.Context, userID int64) (model.Order, error) {
	args := m.Called(ctx, userID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) GetOrCreatePendingByUserID(ctx context.Context, userID int64) (model.Order, error) {
	args := m.Called(ctx, userID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	list, _ := args.Get(0).([]model.Order)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]model.Order)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Confirm(ctx context.Context, orderID int64, p repo.ConfirmOrderParams) (bool, error) {
	args := m.Called(ctx, orderID, p)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, orderID int64, from model.OrderStatus, to model.OrderStatus) (bool, error) {
	args := m.Called(ctx, orderID, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) UpdateShipping(ctx context.Context, orderID int64, trackingCode string, estimatedDelivery *time.Time) error {
	args := m.Called(ctx, orderID, trackingCode, estimatedDelivery)
	return args.Error(0)
}

// =====================
// Mock: OrderItemRepository
// =====================

type MockOrderItemRepository struct {
	mock.Mock
}

func (m *MockOrderItemRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	list, _ := args.Get(0).([]model.OrderItem)
	return list, args.Error(1)
}

func (m *MockOrderItemRepository) FindByID(ctx context.Context, itemID int64) (model.OrderItem, error) {
	args := m.Called(ctx, itemID)
	it, _ := args.Get(0).(model.OrderItem)
	return it, args.Error(1)
}

func (m *MockOrderItemRepository) UpsertLine(ctx context.Context, orderID int64, line model.OrderItem) error {
	args := m.Called(ctx, orderID, line)
	return args.Error(0)
}

func (m *MockOrderItemRepository) UpdateQuantity(ctx context.Context, itemID int64, qty int64) error {
	args := m.Called(ctx, itemID, qty)
	return args.Error(0)
}

func (m *MockOrderItemRepository) DeleteByID(ctx context.Context, itemID int64) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *MockOrderItemRepository) DeleteByOrderID(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOrderItemRepository) IsOwnedByUser(ctx context.Context, itemID int64, userID int64) (bool, error) {
	args := m.Called(ctx, itemID, userID)
	return args.Bool(0), args.Error(1)
}

// =====================
// Mock: InventoryRepository
// =====================

type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) Reserve(ctx context.Context, variantID int64, qty int64) (bool, error) {
	args := m.Called(ctx, variantID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *MockInventoryRepository) Release(ctx context.Context, variantID int64, qty int64) error {
	args := m.Called(ctx, variantID, qty)
	return args.Error(0)
}

func (m *MockInventoryRepository) SetStock(ctx context.Context, variantID int64, newStock int64) error {
	args := m.Called(ctx, variantID, newStock)
	return args.Error(0)
}

func (m *MockInventoryRepository) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	args := m.Called(ctx, adjustment)
	return args.Error(0)
}

func (m *MockInventoryRepository) ListLowStock(ctx context.Context, threshold int64) ([]model.ProductVariant, error) {
	args := m.Called(ctx, threshold)
	list, _ := args.Get(0).([]model.ProductVariant)
	return list, args.Error(1)
}

// =====================
// Mock: CouponRepository
// =====================

type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) FindByCode(ctx context.Context, code string) (model.Coupon, error) {
	args := m.Called(ctx, code)
	c, _ := args.Get(0).(model.Coupon)
	return c, args.Error(1)
}

func (m *MockCouponRepository) FindByID(ctx context.Context, couponID int64) (model.Coupon, error) {
	args := m.Called(ctx, couponID)
	c, _ := args.Get(0).(model.Coupon)
	return c, args.Error(1)
}

func (m *MockCouponRepository) HasUsage(ctx context.Context, couponID int64, userID int64) (bool, error) {
	args := m.Called(ctx, couponID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCouponRepository) CreateUsage(ctx context.Context, usage model.CouponUsage) error {
	args := m.Called(ctx, usage)
	return args.Error(0)
}

func (m *MockCouponRepository) IncrementUsedCount(ctx context.Context, couponID int64) (bool, error) {
	args := m.Called(ctx, couponID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCouponRepository) Create(ctx context.Context, c model.Coupon) (model.Coupon, error) {
	args := m.Called(ctx, c)
	out, _ := args.Get(0).(model.Coupon)
	return out, args.Error(1)
}

func (m *MockCouponRepository) Update(ctx context.Context, c model.Coupon) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCouponRepository) Delete(ctx context.Context, couponID int64) error {
	args := m.Called(ctx, couponID)
	return args.Error(0)
}

func (m *MockCouponRepository) List(ctx context.Context, q repo.CouponListQuery) ([]model.Coupon, int64, error) {
	args := m.Called(ctx, q)
	list, _ := args.Get(0).([]model.Coupon)
	return list, args.Get(1).(int64), args.Error(2)
}

// =====================
// Mock: ProductRepository
// =====================

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	list, _ := args.Get(0).([]model.Product)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) FindVariantByID(ctx context.Context, variantID int64) (model.ProductVariant, error) {
	args := m.Called(ctx, variantID)
	v, _ := args.Get(0).(model.ProductVariant)
	return v, args.Error(1)
}

func (m *MockProductRepository) FindVariantOfProduct(ctx context.Context, variantID int64, productID int64) (model.ProductVariant, error) {
	args := m.Called(ctx, variantID, productID)
	v, _ := args.Get(0).(model.ProductVariant)
	return v, args.Error(1)
}

func (m *MockProductRepository) ListVariantsByProductID(ctx context.Context, productID int64) ([]model.ProductVariant, error) {
	args := m.Called(ctx, productID)
	list, _ := args.Get(0).([]model.ProductVariant)
	return list, args.Error(1)
}

func (m *MockProductRepository) CreateVariant(ctx context.Context, v model.ProductVariant) (model.ProductVariant, error) {
	args := m.Called(ctx, v)
	out, _ := args.Get(0).(model.ProductVariant)
	return out, args.Error(1)
}

// =====================
// Mock: AddressRepository
// =====================

type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) Create(ctx context.Context, address model.Address) (model.Address, error) {
	args := m.Called(ctx, address)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *MockAddressRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]model.Address)
	return list, args.Error(1)
}

func (m *MockAddressRepository) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	args := m.Called(ctx, addressID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *MockAddressRepository) Update(ctx context.Context, address model.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *MockAddressRepository) Delete(ctx context.Context, addressID int64) error {
	args := m.Called(ctx, addressID)
	return args.Error(0)
}

func (m *MockAddressRepository) IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error) {
	args := m.Called(ctx, addressID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAddressRepository) SetDefault(ctx context.Context, userID, addressID int64) error {
	args := m.Called(ctx, userID, addressID)
	return args.Error(0)
}

// =====================
// Mock: UserRepository
// =====================

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

// =====================
// Mock: AuditLogRepository
// =====================

type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditLogRepository) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).([]model.AuditLog)
	return list, args.Error(1)
}

// =====================
// Mock: Mailer
// =====================

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendOrderConfirmation(ctx context.Context, c notification.OrderConfirmation) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
