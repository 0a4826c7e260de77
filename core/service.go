// Package core wires the checkout adapter, entitlement store, upload intake,
// and transcription engine into the verification and gating service.
package core

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/open-rails/transcribekit/checkout"
	"github.com/open-rails/transcribekit/engine"
	"github.com/open-rails/transcribekit/entitlement"
	"github.com/open-rails/transcribekit/upload"
)

// ErrSubscriptionRequired indicates the identity has no active entitlement.
// Maps to a forbidden outcome at the boundary; distinct from provider
// unavailability, which must stay retryable.
var ErrSubscriptionRequired = errors.New("subscription_required")

// ServiceConfig carries the service's collaborators.
type ServiceConfig struct {
	Checkout checkout.Client
	Store    entitlement.Store
	Intake   *upload.Intake
	Engine   engine.Engine
	// Events is optional; defaults to a logrus sink.
	Events EventLogger
	Logger *logrus.Logger
	// Now is swappable for tests. Defaults to time.Now.
	Now func() time.Time
}

// Service owns entitlement verification and the request-time gate.
type Service struct {
	checkout checkout.Client
	store    entitlement.Store
	intake   *upload.Intake
	engine   engine.Engine
	events   EventLogger
	log      *logrus.Entry
	now      func() time.Time
}

// NewService validates collaborators and builds the service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Checkout == nil {
		return nil, errors.New("core: checkout client required")
	}
	if cfg.Store == nil {
		return nil, errors.New("core: entitlement store required")
	}
	if cfg.Intake == nil {
		return nil, errors.New("core: upload intake required")
	}
	if cfg.Engine == nil {
		return nil, errors.New("core: engine required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	log := cfg.Logger.WithField("component", "core")
	if cfg.Events == nil {
		cfg.Events = NewLogEvents(cfg.Logger)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		checkout: cfg.Checkout,
		store:    cfg.Store,
		intake:   cfg.Intake,
		engine:   cfg.Engine,
		events:   cfg.Events,
		log:      log,
		now:      cfg.Now,
	}, nil
}

// BeginCheckout opens a provider checkout session for identity. No retry
// here; the caller decides how to handle a provider outage.
func (s *Service) BeginCheckout(ctx context.Context, identity string) (checkout.CreatedSession, error) {
	return s.checkout.CreateSession(ctx, identity)
}
