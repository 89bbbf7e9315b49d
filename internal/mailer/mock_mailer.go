package mailer

import "sync"

// SentEmail is one recorded Send call.
type SentEmail struct {
	Recipient    string
	TemplateFile string
	Data         any
}

// MockMailer records sends instead of dialing SMTP. The reconciler sends from
// goroutines, so the record is guarded.
type MockMailer struct {
	mu   sync.Mutex
	sent []SentEmail
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) Send(recipient, templateFile string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, SentEmail{
		Recipient:    recipient,
		TemplateFile: templateFile,
		Data:         data,
	})

	return nil
}

// GetSentEmails returns a snapshot of everything sent so far.
func (m *MockMailer) GetSentEmails() []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]SentEmail, len(m.sent))
	copy(out, m.sent)

	return out
}

// Reset clears the record between test cases sharing one mailer.
func (m *MockMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = nil
}
