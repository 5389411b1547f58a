package models

// Result is the outcome of a charging call. A declined charge is a normal
// result with Success false, not an error.
type Result struct {
	Success      bool          `json:"success"`
	Transaction  *Transaction  `json:"transaction,omitempty"`
	CreditCard   *CreditCard   `json:"creditCard,omitempty"`
	Customer     *Customer     `json:"customer,omitempty"`
	Subscription *Subscription `json:"subscription,omitempty"`

	// Errors holds the failure payload when Success is false.
	Errors *ErrorResponse `json:"errors,omitempty"`
}

// ValidationError is one entry of an api-error-response.
type ValidationError struct {
	Attribute string `json:"attribute"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// Verification describes the processor verdict on a card.
type Verification struct {
	Status                Status `json:"status"`
	ProcessorResponseCode string `json:"processorResponseCode"`
	ProcessorResponseText string `json:"processorResponseText"`
}

// ErrorResponse is the gateway's failure payload.
type ErrorResponse struct {
	Message      string            `json:"message"`
	Errors       []ValidationError `json:"errors"`
	Params       map[string]string `json:"params"`
	Verification *Verification     `json:"verification,omitempty"`
	Transaction  *Transaction      `json:"transaction,omitempty"`
}

// Validation error codes the fake returns.
const (
	CodeAmountRequired            = "81502"
	CodePaymentMethodTokenInvalid = "91518"
	CodePlanIDRequired            = "91904"
	CodeCreditCardNumberInvalid   = "81715"
	CodeSubscriptionCanceled      = "81905"
)
