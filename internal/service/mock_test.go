package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dunelark/storefront/internal/repository"
)

// mockStore implements repository.Store for testing. Set the Func field for
// each query the test exercises; getters default to pgx.ErrNoRows and
// mutations to "not implemented". ExecTx runs the callback against the mock
// itself, so transactional flows are exercised without a database.
type mockStore struct {
	GetProductFunc            func(ctx context.Context, id pgtype.UUID) (repository.Product, error)
	ListActiveProductsFunc    func(ctx context.Context) ([]repository.Product, error)
	DecrementProductStockFunc func(ctx context.Context, arg repository.DecrementProductStockParams) (int64, error)
	IncrementProductStockFunc func(ctx context.Context, arg repository.IncrementProductStockParams) error

	GetCartByUserIDFunc       func(ctx context.Context, userID pgtype.UUID) (repository.Cart, error)
	GetCartBySessionTokenFunc func(ctx context.Context, token string) (repository.Cart, error)
	CreateCartFunc            func(ctx context.Context, arg repository.CreateCartParams) (repository.Cart, error)
	DeleteCartFunc            func(ctx context.Context, id pgtype.UUID) error
	GetCartItemsFunc          func(ctx context.Context, cartID pgtype.UUID) ([]repository.GetCartItemsRow, error)
	GetCartItemFunc           func(ctx context.Context, arg repository.GetCartItemParams) (repository.CartItem, error)
	GetCartItemByIDFunc       func(ctx context.Context, id pgtype.UUID) (repository.CartItem, error)
	CreateCartItemFunc        func(ctx context.Context, arg repository.CreateCartItemParams) (repository.CartItem, error)
	UpdateCartItemFunc        func(ctx context.Context, arg repository.UpdateCartItemParams) error
	RemoveCartItemFunc        func(ctx context.Context, id pgtype.UUID) error
	ClearCartFunc             func(ctx context.Context, cartID pgtype.UUID) error

	GetCouponByCodeFunc      func(ctx context.Context, code string) (repository.Coupon, error)
	GetCouponByIDFunc        func(ctx context.Context, id pgtype.UUID) (repository.Coupon, error)
	CreateCouponFunc         func(ctx context.Context, arg repository.CreateCouponParams) (repository.Coupon, error)
	IncrementCouponUsageFunc func(ctx context.Context, couponID pgtype.UUID) (int64, error)
	CouponHasAssignmentsFunc func(ctx context.Context, couponID pgtype.UUID) (bool, error)
	GetUserCouponFunc        func(ctx context.Context, arg repository.GetUserCouponParams) (repository.UserCoupon, error)
	CreateUserCouponFunc     func(ctx context.Context, arg repository.CreateUserCouponParams) (repository.UserCoupon, error)
	MarkUserCouponUsedFunc   func(ctx context.Context, arg repository.MarkUserCouponUsedParams) (int64, error)

	GetAddressFunc func(ctx context.Context, id pgtype.UUID) (repository.Address, error)

	CreateOrderFunc             func(ctx context.Context, arg repository.CreateOrderParams) (repository.Order, error)
	CreateOrderItemFunc         func(ctx context.Context, arg repository.CreateOrderItemParams) (repository.OrderItem, error)
	GetOrderFunc                func(ctx context.Context, id pgtype.UUID) (repository.Order, error)
	GetOrderItemsFunc           func(ctx context.Context, orderID pgtype.UUID) ([]repository.OrderItem, error)
	ListOrdersForUserFunc       func(ctx context.Context, arg repository.ListOrdersForUserParams) ([]repository.Order, error)
	MarkOrderShippedFunc        func(ctx context.Context, id pgtype.UUID) (repository.Order, error)
	MarkOrderDeliveredFunc      func(ctx context.Context, id pgtype.UUID) (repository.Order, error)
	MarkOrderCancelledFunc      func(ctx context.Context, arg repository.MarkOrderCancelledParams) (repository.Order, error)
	UserHasDeliveredProductFunc func(ctx context.Context, arg repository.UserHasDeliveredProductParams) (bool, error)

	CreateInvoiceFunc       func(ctx context.Context, arg repository.CreateInvoiceParams) (repository.Invoice, error)
	GetInvoiceFunc          func(ctx context.Context, id pgtype.UUID) (repository.Invoice, error)
	GetInvoiceByOrderIDFunc func(ctx context.Context, orderID pgtype.UUID) (repository.Invoice, error)

	EnqueueEmailJobFunc    func(ctx context.Context, arg repository.EnqueueEmailJobParams) (repository.EmailJob, error)
	ClaimNextEmailJobFunc  func(ctx context.Context) (repository.EmailJob, error)
	MarkEmailJobSentFunc   func(ctx context.Context, id pgtype.UUID) error
	MarkEmailJobFailedFunc func(ctx context.Context, arg repository.MarkEmailJobFailedParams) error
}

var _ repository.Store = (*mockStore)(nil)

var errNotImplemented = errors.New("not implemented")

func (m *mockStore) ExecTx(ctx context.Context, fn func(repository.Querier) error) error {
	return fn(m)
}

func (m *mockStore) GetProduct(ctx context.Context, id pgtype.UUID) (repository.Product, error) {
	if m.GetProductFunc != nil {
		return m.GetProductFunc(ctx, id)
	}
	return repository.Product{}, pgx.ErrNoRows
}

func (m *mockStore) ListActiveProducts(ctx context.Context) ([]repository.Product, error) {
	if m.ListActiveProductsFunc != nil {
		return m.ListActiveProductsFunc(ctx)
	}
	return nil, nil
}

func (m *mockStore) DecrementProductStock(ctx context.Context, arg repository.DecrementProductStockParams) (int64, error) {
	if m.DecrementProductStockFunc != nil {
		return m.DecrementProductStockFunc(ctx, arg)
	}
	return 1, nil
}

func (m *mockStore) IncrementProductStock(ctx context.Context, arg repository.IncrementProductStockParams) error {
	if m.IncrementProductStockFunc != nil {
		return m.IncrementProductStockFunc(ctx, arg)
	}
	return nil
}

func (m *mockStore) GetCartByUserID(ctx context.Context, userID pgtype.UUID) (repository.Cart, error) {
	if m.GetCartByUserIDFunc != nil {
		return m.GetCartByUserIDFunc(ctx, userID)
	}
	return repository.Cart{}, pgx.ErrNoRows
}

func (m *mockStore) GetCartBySessionToken(ctx context.Context, token string) (repository.Cart, error) {
	if m.GetCartBySessionTokenFunc != nil {
		return m.GetCartBySessionTokenFunc(ctx, token)
	}
	return repository.Cart{}, pgx.ErrNoRows
}

func (m *mockStore) CreateCart(ctx context.Context, arg repository.CreateCartParams) (repository.Cart, error) {
	if m.CreateCartFunc != nil {
		return m.CreateCartFunc(ctx, arg)
	}
	return repository.Cart{}, errNotImplemented
}

func (m *mockStore) DeleteCart(ctx context.Context, id pgtype.UUID) error {
	if m.DeleteCartFunc != nil {
		return m.DeleteCartFunc(ctx, id)
	}
	return nil
}

func (m *mockStore) GetCartItems(ctx context.Context, cartID pgtype.UUID) ([]repository.GetCartItemsRow, error) {
	if m.GetCartItemsFunc != nil {
		return m.GetCartItemsFunc(ctx, cartID)
	}
	return nil, nil
}

func (m *mockStore) GetCartItem(ctx context.Context, arg repository.GetCartItemParams) (repository.CartItem, error) {
	if m.GetCartItemFunc != nil {
		return m.GetCartItemFunc(ctx, arg)
	}
	return repository.CartItem{}, pgx.ErrNoRows
}

func (m *mockStore) GetCartItemByID(ctx context.Context, id pgtype.UUID) (repository.CartItem, error) {
	if m.GetCartItemByIDFunc != nil {
		return m.GetCartItemByIDFunc(ctx, id)
	}
	return repository.CartItem{}, pgx.ErrNoRows
}

func (m *mockStore) CreateCartItem(ctx context.Context, arg repository.CreateCartItemParams) (repository.CartItem, error) {
	if m.CreateCartItemFunc != nil {
		return m.CreateCartItemFunc(ctx, arg)
	}
	return repository.CartItem{}, errNotImplemented
}

func (m *mockStore) UpdateCartItem(ctx context.Context, arg repository.UpdateCartItemParams) error {
	if m.UpdateCartItemFunc != nil {
		return m.UpdateCartItemFunc(ctx, arg)
	}
	return nil
}

func (m *mockStore) RemoveCartItem(ctx context.Context, id pgtype.UUID) error {
	if m.RemoveCartItemFunc != nil {
		return m.RemoveCartItemFunc(ctx, id)
	}
	return nil
}

func (m *mockStore) ClearCart(ctx context.Context, cartID pgtype.UUID) error {
	if m.ClearCartFunc != nil {
		return m.ClearCartFunc(ctx, cartID)
	}
	return nil
}

func (m *mockStore) GetCouponByCode(ctx context.Context, code string) (repository.Coupon, error) {
	if m.GetCouponByCodeFunc != nil {
		return m.GetCouponByCodeFunc(ctx, code)
	}
	return repository.Coupon{}, pgx.ErrNoRows
}

func (m *mockStore) GetCouponByID(ctx context.Context, id pgtype.UUID) (repository.Coupon, error) {
	if m.GetCouponByIDFunc != nil {
		return m.GetCouponByIDFunc(ctx, id)
	}
	return repository.Coupon{}, pgx.ErrNoRows
}

func (m *mockStore) CreateCoupon(ctx context.Context, arg repository.CreateCouponParams) (repository.Coupon, error) {
	if m.CreateCouponFunc != nil {
		return m.CreateCouponFunc(ctx, arg)
	}
	return repository.Coupon{}, errNotImplemented
}

func (m *mockStore) IncrementCouponUsage(ctx context.Context, couponID pgtype.UUID) (int64, error) {
	if m.IncrementCouponUsageFunc != nil {
		return m.IncrementCouponUsageFunc(ctx, couponID)
	}
	return 1, nil
}

func (m *mockStore) CouponHasAssignments(ctx context.Context, couponID pgtype.UUID) (bool, error) {
	if m.CouponHasAssignmentsFunc != nil {
		return m.CouponHasAssignmentsFunc(ctx, couponID)
	}
	return false, nil
}

func (m *mockStore) GetUserCoupon(ctx context.Context, arg repository.GetUserCouponParams) (repository.UserCoupon, error) {
	if m.GetUserCouponFunc != nil {
		return m.GetUserCouponFunc(ctx, arg)
	}
	return repository.UserCoupon{}, pgx.ErrNoRows
}

func (m *mockStore) CreateUserCoupon(ctx context.Context, arg repository.CreateUserCouponParams) (repository.UserCoupon, error) {
	if m.CreateUserCouponFunc != nil {
		return m.CreateUserCouponFunc(ctx, arg)
	}
	return repository.UserCoupon{}, errNotImplemented
}

func (m *mockStore) MarkUserCouponUsed(ctx context.Context, arg repository.MarkUserCouponUsedParams) (int64, error) {
	if m.MarkUserCouponUsedFunc != nil {
		return m.MarkUserCouponUsedFunc(ctx, arg)
	}
	return 1, nil
}

func (m *mockStore) GetAddress(ctx context.Context, id pgtype.UUID) (repository.Address, error) {
	if m.GetAddressFunc != nil {
		return m.GetAddressFunc(ctx, id)
	}
	return repository.Address{}, pgx.ErrNoRows
}

func (m *mockStore) CreateOrder(ctx context.Context, arg repository.CreateOrderParams) (repository.Order, error) {
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, arg)
	}
	return repository.Order{}, errNotImplemented
}

func (m *mockStore) CreateOrderItem(ctx context.Context, arg repository.CreateOrderItemParams) (repository.OrderItem, error) {
	if m.CreateOrderItemFunc != nil {
		return m.CreateOrderItemFunc(ctx, arg)
	}
	return repository.OrderItem{}, errNotImplemented
}

func (m *mockStore) GetOrder(ctx context.Context, id pgtype.UUID) (repository.Order, error) {
	if m.GetOrderFunc != nil {
		return m.GetOrderFunc(ctx, id)
	}
	return repository.Order{}, pgx.ErrNoRows
}

func (m *mockStore) GetOrderItems(ctx context.Context, orderID pgtype.UUID) ([]repository.OrderItem, error) {
	if m.GetOrderItemsFunc != nil {
		return m.GetOrderItemsFunc(ctx, orderID)
	}
	return nil, nil
}

func (m *mockStore) ListOrdersForUser(ctx context.Context, arg repository.ListOrdersForUserParams) ([]repository.Order, error) {
	if m.ListOrdersForUserFunc != nil {
		return m.ListOrdersForUserFunc(ctx, arg)
	}
	return nil, nil
}

func (m *mockStore) MarkOrderShipped(ctx context.Context, id pgtype.UUID) (repository.Order, error) {
	if m.MarkOrderShippedFunc != nil {
		return m.MarkOrderShippedFunc(ctx, id)
	}
	return repository.Order{}, errNotImplemented
}

func (m *mockStore) MarkOrderDelivered(ctx context.Context, id pgtype.UUID) (repository.Order, error) {
	if m.MarkOrderDeliveredFunc != nil {
		return m.MarkOrderDeliveredFunc(ctx, id)
	}
	return repository.Order{}, errNotImplemented
}

func (m *mockStore) MarkOrderCancelled(ctx context.Context, arg repository.MarkOrderCancelledParams) (repository.Order, error) {
	if m.MarkOrderCancelledFunc != nil {
		return m.MarkOrderCancelledFunc(ctx, arg)
	}
	return repository.Order{}, errNotImplemented
}

func (m *mockStore) UserHasDeliveredProduct(ctx context.Context, arg repository.UserHasDeliveredProductParams) (bool, error) {
	if m.UserHasDeliveredProductFunc != nil {
		return m.UserHasDeliveredProductFunc(ctx, arg)
	}
	return false, nil
}

func (m *mockStore) CreateInvoice(ctx context.Context, arg repository.CreateInvoiceParams) (repository.Invoice, error) {
	if m.CreateInvoiceFunc != nil {
		return m.CreateInvoiceFunc(ctx, arg)
	}
	return repository.Invoice{}, errNotImplemented
}

func (m *mockStore) GetInvoice(ctx context.Context, id pgtype.UUID) (repository.Invoice, error) {
	if m.GetInvoiceFunc != nil {
		return m.GetInvoiceFunc(ctx, id)
	}
	return repository.Invoice{}, pgx.ErrNoRows
}

func (m *mockStore) GetInvoiceByOrderID(ctx context.Context, orderID pgtype.UUID) (repository.Invoice, error) {
	if m.GetInvoiceByOrderIDFunc != nil {
		return m.GetInvoiceByOrderIDFunc(ctx, orderID)
	}
	return repository.Invoice{}, pgx.ErrNoRows
}

func (m *mockStore) EnqueueEmailJob(ctx context.Context, arg repository.EnqueueEmailJobParams) (repository.EmailJob, error) {
	if m.EnqueueEmailJobFunc != nil {
		return m.EnqueueEmailJobFunc(ctx, arg)
	}
	return repository.EmailJob{JobType: arg.JobType, Payload: arg.Payload}, nil
}

func (m *mockStore) ClaimNextEmailJob(ctx context.Context) (repository.EmailJob, error) {
	if m.ClaimNextEmailJobFunc != nil {
		return m.ClaimNextEmailJobFunc(ctx)
	}
	return repository.EmailJob{}, pgx.ErrNoRows
}

func (m *mockStore) MarkEmailJobSent(ctx context.Context, id pgtype.UUID) error {
	if m.MarkEmailJobSentFunc != nil {
		return m.MarkEmailJobSentFunc(ctx, id)
	}
	return nil
}

func (m *mockStore) MarkEmailJobFailed(ctx context.Context, arg repository.MarkEmailJobFailedParams) error {
	if m.MarkEmailJobFailedFunc != nil {
		return m.MarkEmailJobFailedFunc(ctx, arg)
	}
	return nil
}
