package email

import (
	"context"
	"fmt"
)

// Service handles email composition and sending.
type Service struct {
	sender      Sender
	fromAddress string
	fromName    string
}

// NewService creates a new email service.
func NewService(sender Sender, fromAddress, fromName string) *Service {
	return &Service{
		sender:      sender,
		fromAddress: fromAddress,
		fromName:    fromName,
	}
}

// SendOrderConfirmation sends an order confirmation email.
func (s *Service) SendOrderConfirmation(ctx context.Context, data OrderConfirmationEmail) error {
	body, err := render("order_confirmation", data)
	if err != nil {
		return fmt.Errorf("failed to render order confirmation template: %w", err)
	}
	return s.send(ctx, data.Email, data.Subject(), body)
}

// SendOrderStatusUpdate sends an order status change email.
func (s *Service) SendOrderStatusUpdate(ctx context.Context, data OrderStatusUpdateEmail) error {
	body, err := render("order_status_update", data)
	if err != nil {
		return fmt.Errorf("failed to render order status template: %w", err)
	}
	return s.send(ctx, data.Email, data.Subject(), body)
}

// SendInvoice sends an invoice notification email.
func (s *Service) SendInvoice(ctx context.Context, data InvoiceEmail) error {
	body, err := render("invoice", data)
	if err != nil {
		return fmt.Errorf("failed to render invoice template: %w", err)
	}
	return s.send(ctx, data.Email, data.Subject(), body)
}

func (s *Service) send(ctx context.Context, to, subject, textBody string) error {
	_, err := s.sender.Send(ctx, &Email{
		To:       []string{to},
		From:     fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress),
		Subject:  subject,
		TextBody: textBody,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
