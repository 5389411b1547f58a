package gateway

import "github.com/robertjwhitney/fake-braintree/models"

// FailureOption customises FailureResponse.
type FailureOption func(*models.ErrorResponse)

// WithMessage replaces the top-level message.
func WithMessage(msg string) FailureOption {
	return func(r *models.ErrorResponse) { r.Message = msg }
}

// WithTransaction attaches the declined transaction and echoes its amount in
// the params.
func WithTransaction(t models.Transaction) FailureOption {
	return func(r *models.ErrorResponse) {
		t = t.Clone()
		r.Transaction = &t
		r.Params["amount"] = t.Amount
		r.Params["type"] = string(t.Type)
		if t.Status.Declined() {
			r.Verification = &models.Verification{
				Status:                t.Status,
				ProcessorResponseCode: t.ProcessorResponseCode,
				ProcessorResponseText: t.ProcessorResponseText,
			}
		}
	}
}

// WithValidationError reports a rejected request. A validation failure never
// reached the processor, so the verification is dropped.
func WithValidationError(attribute, code, msg string) FailureOption {
	return func(r *models.ErrorResponse) {
		r.Errors = append(r.Errors, models.ValidationError{Attribute: attribute, Code: code, Message: msg})
		r.Message = msg
		r.Verification = nil
	}
}

// FailureResponse builds the gateway's decline payload. Called with no
// options it is a minimal processor decline.
func FailureResponse(opts ...FailureOption) models.ErrorResponse {
	r := models.ErrorResponse{
		Message: models.ResponseTextDoNotHonor,
		Errors:  []models.ValidationError{},
		Params:  map[string]string{},
		Verification: &models.Verification{
			Status:                models.StatusProcessorDeclined,
			ProcessorResponseCode: models.ResponseCodeDoNotHonor,
			ProcessorResponseText: models.ResponseTextDoNotHonor,
		},
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func failed(opts ...FailureOption) models.Result {
	resp := FailureResponse(opts...)
	return models.Result{Success: false, Transaction: resp.Transaction, Errors: &resp}
}
