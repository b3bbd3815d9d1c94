package email

import (
	"context"
	"sync"
)

// Message is one captured email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// MemorySender captures emails in memory for tests.
type MemorySender struct {
	mu     sync.Mutex
	emails []Message
}

func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

func (s *MemorySender) Send(_ context.Context, from, to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails = append(s.emails, Message{From: from, To: to, Subject: subject, Body: body})
	return nil
}

// Emails returns a copy of the captured messages.
func (s *MemorySender) Emails() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.emails))
	copy(out, s.emails)
	return out
}
