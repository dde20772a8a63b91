package repository

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// Row types mirror the database schema one-to-one. Business view models live
// in the domain package; services map between the two.

type Product struct {
	ID            pgtype.UUID
	Name          string
	Slug          string
	Description   pgtype.Text
	ImageUrl      pgtype.Text
	PriceCents    int32
	StockQuantity int32
	Active        bool
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

type Cart struct {
	ID           pgtype.UUID
	UserID       pgtype.UUID
	SessionToken pgtype.Text
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

type CartItem struct {
	ID             pgtype.UUID
	CartID         pgtype.UUID
	ProductID      pgtype.UUID
	Quantity       int32
	UnitPriceCents int32
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

// GetCartItemsRow joins cart lines with live product details. Stock and name
// come from the catalog; the unit price is the captured one.
type GetCartItemsRow struct {
	ID             pgtype.UUID
	CartID         pgtype.UUID
	ProductID      pgtype.UUID
	Quantity       int32
	UnitPriceCents int32
	ProductName    string
	ImageUrl       pgtype.Text
	StockQuantity  int32
}

type Coupon struct {
	ID            pgtype.UUID
	Code          string
	DiscountType  string
	DiscountValue int32
	MinOrderCents pgtype.Int4
	StartsAt      pgtype.Timestamptz
	EndsAt        pgtype.Timestamptz
	Active        bool
	MaxUsageCount pgtype.Int4
	UsageCount    int32
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

type UserCoupon struct {
	ID         pgtype.UUID
	UserID     pgtype.UUID
	CouponID   pgtype.UUID
	Used       bool
	AssignedAt pgtype.Timestamptz
	UsedAt     pgtype.Timestamptz
	OrderID    pgtype.UUID
}

type Address struct {
	ID         pgtype.UUID
	UserID     pgtype.UUID
	FullName   string
	Line1      string
	Line2      pgtype.Text
	City       string
	Region     string
	PostalCode string
	Country    string
	Phone      pgtype.Text
	CreatedAt  pgtype.Timestamptz
}

type Order struct {
	ID                 pgtype.UUID
	OrderNumber        string
	UserID             pgtype.UUID
	CustomerEmail      string
	Status             string
	PaymentStatus      string
	PaymentMethod      string
	SubtotalCents      int32
	ShippingCents      int32
	DiscountCents      int32
	TotalCents         int32
	CouponID           pgtype.UUID
	CouponCode         pgtype.Text
	ShippingAddressID  pgtype.UUID
	BillingAddressID   pgtype.UUID
	CustomerNotes      pgtype.Text
	CancellationReason pgtype.Text
	ShippedAt          pgtype.Timestamptz
	DeliveredAt        pgtype.Timestamptz
	CreatedAt          pgtype.Timestamptz
	UpdatedAt          pgtype.Timestamptz
}

type OrderItem struct {
	ID             pgtype.UUID
	OrderID        pgtype.UUID
	ProductID      pgtype.UUID
	ProductName    string
	ImageUrl       pgtype.Text
	Quantity       int32
	UnitPriceCents int32
	TotalCents     int32
	CreatedAt      pgtype.Timestamptz
}

type Invoice struct {
	ID            pgtype.UUID
	OrderID       pgtype.UUID
	InvoiceNumber string
	SubtotalCents int32
	ShippingCents int32
	DiscountCents int32
	TotalCents    int32
	IssuedAt      pgtype.Timestamptz
	CreatedAt     pgtype.Timestamptz
}

type EmailJob struct {
	ID          pgtype.UUID
	JobType     string
	Payload     []byte
	Status      string
	Attempts    int32
	LastError   pgtype.Text
	CreatedAt   pgtype.Timestamptz
	ProcessedAt pgtype.Timestamptz
}
