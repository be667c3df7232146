package types

// Envelope statuses.
const (
	StatusSuccess = "SUCCESS"
	StatusFailure = "FAILURE"
	StatusError   = "ERROR"
)

// Envelope is the body of every /orders response. Message is a symbolic code
// such as ORDER_CREATED or PAYMENT_AMOUNT_MISMATCH.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  any    `json:"result"`
}

// ErrorResult is the result block of FAILURE and ERROR envelopes. Error is
// only populated outside prod.
type ErrorResult struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
	Error   string `json:"error,omitempty"`
}
