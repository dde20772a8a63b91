package email

import (
	"bytes"
	"fmt"
	"text/template"
	"time"
)

// Template data types for the transactional emails the fulfillment flow sends.
// Money fields are cents; the templates format them as dollars.

// OrderConfirmationEmail is rendered right after checkout commits.
type OrderConfirmationEmail struct {
	Email         string
	OrderNumber   string
	OrderDate     time.Time
	SubtotalCents int32
	ShippingCents int32
	DiscountCents int32
	TotalCents    int32
}

func (e OrderConfirmationEmail) Subject() string {
	return "Order Confirmation - " + e.OrderNumber
}

// OrderStatusUpdateEmail is rendered whenever an order changes status.
type OrderStatusUpdateEmail struct {
	Email       string
	OrderNumber string
	NewStatus   string
	Reason      string // set for cancellations
}

func (e OrderStatusUpdateEmail) Subject() string {
	return "Order Update - " + e.OrderNumber
}

// InvoiceEmail is rendered when an invoice is issued for an order.
type InvoiceEmail struct {
	Email         string
	OrderNumber   string
	InvoiceNumber string
	TotalCents    int32
	IssuedAt      time.Time
}

func (e InvoiceEmail) Subject() string {
	return "Invoice " + e.InvoiceNumber + " - " + e.OrderNumber
}

const orderConfirmationText = `Thank you for your order!

Order number: {{.OrderNumber}}
Placed:       {{.OrderDate.Format "January 2, 2006"}}

Subtotal:  {{dollars .SubtotalCents}}
Shipping:  {{dollars .ShippingCents}}
{{- if gt .DiscountCents 0}}
Discount: -{{dollars .DiscountCents}}
{{- end}}
Total:     {{dollars .TotalCents}}

We'll email you again when your order ships.
`

const orderStatusUpdateText = `Your order {{.OrderNumber}} is now {{.NewStatus}}.
{{- if .Reason}}

Reason: {{.Reason}}
{{- end}}
`

const invoiceText = `Your invoice is ready.

Invoice number: {{.InvoiceNumber}}
Order number:   {{.OrderNumber}}
Issued:         {{.IssuedAt.Format "January 2, 2006"}}
Total:          {{dollars .TotalCents}}
`

var templates = template.Must(
	template.New("email").Funcs(template.FuncMap{
		"dollars": func(cents int32) string {
			return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
		},
	}).Parse(`
{{- define "order_confirmation"}}` + orderConfirmationText + `{{end}}
{{- define "order_status_update"}}` + orderStatusUpdateText + `{{end}}
{{- define "invoice"}}` + invoiceText + `{{end}}`),
)

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
