package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeValidation        = "VALIDATION_FAILED"
	ErrCodeCheckoutRejected  = "CHECKOUT_REJECTED"
	ErrCodeInvalidDelivery   = "INVALID_DELIVERY_INFO"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeDraftNotFound     = "DRAFT_ORDER_NOT_FOUND"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeEmptyCheckout     = "EMPTY_CHECKOUT"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeInvoiceNotPending = "INVOICE_NOT_PENDING"
)

// DomainError is a failure whose message is safe to show to the shopper.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrCheckoutRejected  = NewDomainError(ErrCodeCheckoutRejected, "We couldn't start checkout with these items. Please review your cart and try again.")
	ErrEmptyCheckout     = NewDomainError(ErrCodeEmptyCheckout, "lines must contain at least 1 item(s)")
	ErrInvalidQuantity   = NewDomainError(ErrCodeInvalidQuantity, "quantity must be greater than 0")
	ErrInvalidDelivery   = NewDomainError(ErrCodeInvalidDelivery, "Delivery info must look like \"street, city, STATE ZIP\"")
	ErrProductNotFound   = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrDraftNotFound     = NewDomainError(ErrCodeDraftNotFound, "Draft order not found")
	ErrInvoiceNotPending = NewDomainError(ErrCodeInvoiceNotPending, "Invoice for this draft order was already sent")
)
