package checkout

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"
)

const defaultStripeBaseURL = "https://api.stripe.com"

// StripeConfig configures the Stripe checkout client.
type StripeConfig struct {
	SecretKey string
	PriceID   string
	// SuccessURL should contain the {CHECKOUT_SESSION_ID} placeholder so the
	// session token survives the redirect back.
	SuccessURL string
	CancelURL  string
	// BaseURL overrides the API host (tests, stripe-mock).
	BaseURL string
	// ProviderTimeout bounds each provider call. Defaults to 10s.
	ProviderTimeout time.Duration
}

// StripeClient talks to the Stripe Checkout Sessions API.
type StripeClient struct {
	cfg  StripeConfig
	http *http.Client
	log  *logrus.Entry
}

// NewStripeClient builds a client with defaults filled in.
func NewStripeClient(cfg StripeConfig, log *logrus.Logger) *StripeClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultStripeBaseURL
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 10 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &StripeClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.ProviderTimeout},
		log:  log.WithField("component", "checkout.stripe"),
	}
}

type stripeSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	CustomerEmail string `json:"customer_email"`
	CustomerData  struct {
		Email string `json:"email"`
	} `json:"customer_details"`
}

// CreateSession opens a subscription-mode checkout session for identity.
func (c *StripeClient) CreateSession(ctx context.Context, identity string) (CreatedSession, error) {
	if err := ValidateIdentity(identity); err != nil {
		return CreatedSession{}, err
	}

	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price]", c.cfg.PriceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("customer_email", strings.TrimSpace(identity))
	form.Set("success_url", c.cfg.SuccessURL)
	form.Set("cancel_url", c.cfg.CancelURL)
	form.Set("client_reference_id", newReferenceID())

	var sess stripeSession
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", strings.NewReader(form.Encode()), &sess); err != nil {
		return CreatedSession{}, err
	}
	return CreatedSession{SessionID: sess.ID, RedirectURL: sess.URL}, nil
}

// RetrieveSession reads an existing session. Pure read on the provider side.
func (c *StripeClient) RetrieveSession(ctx context.Context, sessionID string) (Outcome, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Outcome{}, ErrSessionNotFound
	}

	var sess stripeSession
	if err := c.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(sessionID), nil, &sess); err != nil {
		return Outcome{}, err
	}

	identity := sess.CustomerEmail
	if identity == "" {
		identity = sess.CustomerData.Email
	}
	out := Outcome{
		Identity:      identity,
		Status:        SessionStatus(sess.Status),
		PaymentStatus: PaymentStatus(sess.PaymentStatus),
	}
	if out.PaymentStatus != PaymentPaid {
		out.PaymentStatus = PaymentUnpaid
	}
	return out, nil
}

func (c *StripeClient) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ProviderTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).Warn("provider call failed")
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrSessionNotFound
	case resp.StatusCode >= 500:
		c.log.WithField("status", resp.StatusCode).Warn("provider error response")
		return fmt.Errorf("%w: provider returned %d", ErrProviderUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		apiErr := decodeStripeError(resp.Body)
		// Only a rejection of the email itself means the identity was bad;
		// other 4xxs (bad price id, malformed params) are configuration
		// faults and must not masquerade as a caller error.
		if method == http.MethodPost && apiErr.Param == "customer_email" {
			return ErrInvalidIdentity
		}
		if method == http.MethodGet {
			// Stripe answers 400 for ids it cannot parse; same caller
			// remediation as a missing session.
			return ErrSessionNotFound
		}
		c.log.WithFields(logrus.Fields{"status": resp.StatusCode, "param": apiErr.Param}).Warn("provider rejected request")
		return fmt.Errorf("checkout: provider rejected request (%d): %s", resp.StatusCode, apiErr.Message)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrProviderUnavailable, err)
	}
	return nil
}

type stripeError struct {
	Param   string
	Message string
}

func decodeStripeError(body io.Reader) stripeError {
	var payload struct {
		Error struct {
			Param   string `json:"param"`
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(body, 64<<10)).Decode(&payload)
	return stripeError{Param: payload.Error.Param, Message: payload.Error.Message}
}

// newReferenceID returns a collision-resistant token to correlate the
// checkout attempt with provider dashboards and webhooks.
func newReferenceID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base58.Encode(b)
}
