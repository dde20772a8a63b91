package email

import "context"

// MockSender is a Sender for tests. Sent messages are recorded; SendFunc can
// be set to inject failures.
type MockSender struct {
	SendFunc func(ctx context.Context, email *Email) (string, error)
	Sent     []*Email
}

func (m *MockSender) Send(ctx context.Context, email *Email) (string, error) {
	m.Sent = append(m.Sent, email)
	if m.SendFunc != nil {
		return m.SendFunc(ctx, email)
	}
	return "mock-message-id", nil
}
