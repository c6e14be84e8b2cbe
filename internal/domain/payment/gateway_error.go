package payment

import (
	"errors"
	"fmt"
)

var ErrGateway = errors.New("payment gateway failure")

// GatewayError is the only error shape gateway adapters return for provider failures
type GatewayError struct {
	Gateway    Method
	Operation  string
	StatusCode int
	Code       string
	Message    string
}

func (e *GatewayError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s failed (status %d): %s", e.Gateway, e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Gateway, e.Operation, e.Message)
}

func (e *GatewayError) Is(target error) bool {
	return target == ErrGateway
}

func NewGatewayError(gateway Method, operation string, statusCode int, message string) *GatewayError {
	return &GatewayError{Gateway: gateway, Operation: operation, StatusCode: statusCode, Message: message}
}
