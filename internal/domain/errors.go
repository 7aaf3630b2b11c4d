package domain

import (
	"errors"
	"fmt"
)

// ErrAuthenticationRequired is returned when no valid session accompanies a request.
var ErrAuthenticationRequired = errors.New("authentication required")

// NotFoundError marks a missing row in the ownership chain.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// OwnershipError marks a resource that exists but belongs to another principal.
type OwnershipError struct {
	Resource string
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("%s does not belong to your site", e.Resource)
}

// ValidationError marks malformed or missing request input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UpstreamError carries a failed Shopify or LLM call with the raw upstream
// status and body intact.
type UpstreamError struct {
	Service string
	Status  int
	Body    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API error: %d - %s", e.Service, e.Status, e.Body)
}

// DecryptionError marks a token blob that could not be decrypted. A wrong key
// or corrupted ciphertext always surfaces as this, never as silent garbage.
type DecryptionError struct {
	Reason string
}

func (e *DecryptionError) Error() string {
	return "token decryption failed: " + e.Reason
}

// ConfigError marks missing or malformed startup configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Message)
}
