package gateway

import "context"

// InitializeRequest carries everything the provider needs to open a checkout
// session. AmountMinor is in the currency's smallest denomination; the
// conversion from major units happens before this boundary.
type InitializeRequest struct {
	Email       string
	AmountMinor int64
	Currency    string
	Reference   string
	CallbackURL string
}

// InitializeResult is the provider's answer to an initialize call. Accepted
// false means an authoritative decline, not a transport failure.
type InitializeResult struct {
	Accepted         bool
	AccessCode       string
	AuthorizationURL string
	Message          string
}

// VerifyResult is the provider's authoritative status for a reference.
type VerifyResult struct {
	Succeeded     bool
	GatewayStatus string
	FailureReason string
}

// PaymentGateway abstracts the payment provider's HTTP API. Implementations
// return an error only for transport problems or non-2xx responses; a decline
// is reported through the result, never as an error.
type PaymentGateway interface {
	Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error)
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
}
