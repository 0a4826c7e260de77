// Package transcribetest provides in-memory fakes for testing applications
// that use transcribekit, so integration tests run without a real payment
// provider or transcription engine.
//
// Example usage:
//
//	provider := transcribetest.NewFakeProvider()
//	sid := provider.AddSession("a@x.com", checkout.PaymentPaid)
//
//	svc, _ := core.NewService(core.ServiceConfig{Checkout: provider, ...})
//	svc.Verify(ctx, sid)
package transcribetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/open-rails/transcribekit/checkout"
)

// FakeProvider is an in-memory checkout.Client. Sessions are created open
// and unpaid; tests flip payment state with MarkPaid.
type FakeProvider struct {
	mu       sync.Mutex
	seq      int
	sessions map[string]checkout.Outcome

	// CreateErr and RetrieveErr, when set, are returned by the respective
	// calls to simulate provider outages.
	CreateErr   error
	RetrieveErr error
}

// NewFakeProvider creates an empty fake provider.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{sessions: make(map[string]checkout.Outcome)}
}

// AddSession seeds a session in the given payment state and returns its id.
func (p *FakeProvider) AddSession(identity string, status checkout.PaymentStatus) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	sid := fmt.Sprintf("cs_test_%03d", p.seq)
	p.sessions[sid] = checkout.Outcome{
		Identity:      identity,
		Status:        checkout.SessionOpen,
		PaymentStatus: status,
	}
	return sid
}

// MarkPaid transitions a session to completed/paid, as the provider would
// after a successful checkout.
func (p *FakeProvider) MarkPaid(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out, ok := p.sessions[sessionID]
	if !ok {
		panic("transcribetest: unknown session " + sessionID)
	}
	out.Status = checkout.SessionCompleted
	out.PaymentStatus = checkout.PaymentPaid
	p.sessions[sessionID] = out
}

func (p *FakeProvider) CreateSession(ctx context.Context, identity string) (checkout.CreatedSession, error) {
	_ = ctx
	if err := checkout.ValidateIdentity(identity); err != nil {
		return checkout.CreatedSession{}, err
	}
	if p.CreateErr != nil {
		return checkout.CreatedSession{}, p.CreateErr
	}
	sid := p.AddSession(identity, checkout.PaymentUnpaid)
	return checkout.CreatedSession{
		SessionID:   sid,
		RedirectURL: "https://checkout.example.test/pay/" + sid,
	}, nil
}

func (p *FakeProvider) RetrieveSession(ctx context.Context, sessionID string) (checkout.Outcome, error) {
	_ = ctx
	if p.RetrieveErr != nil {
		return checkout.Outcome{}, p.RetrieveErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	out, ok := p.sessions[sessionID]
	if !ok {
		return checkout.Outcome{}, checkout.ErrSessionNotFound
	}
	return out, nil
}
