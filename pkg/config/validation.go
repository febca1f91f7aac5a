package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString("invalid rbac configuration:")
	for _, err := range e {
		b.WriteString("\n  - ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Validator checks one group of settings
type Validator func() ValidationErrors

// Validate runs every validator and returns all problems at once, or nil
func Validate(validators ...Validator) error {
	var all ValidationErrors
	for _, v := range validators {
		all = append(all, v()...)
	}
	if len(all) == 0 {
		return nil
	}
	return all
}

// RequireNonEmpty validates that a string field is not empty
func RequireNonEmpty(field, value string) *ValidationError {
	if value == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

// RequireNonNegative validates that an integer field is non-negative
func RequireNonNegative(field string, value int) *ValidationError {
	if value < 0 {
		return &ValidationError{Field: field, Message: fmt.Sprintf("must be non-negative, got %d", value)}
	}
	return nil
}

// RequireValidPort validates that a port number is valid (1-65535)
func RequireValidPort(field string, value uint16) *ValidationError {
	if value == 0 {
		return &ValidationError{Field: field, Message: "port must be between 1 and 65535"}
	}
	return nil
}

// RequireOneOf validates that a value is one of the allowed values
func RequireOneOf(field, value string, allowed []string) *ValidationError {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ValidationError{Field: field, Message: fmt.Sprintf("must be one of %v, got %q", allowed, value)}
}

// RequirePrefix validates a route prefix: it must start with a slash and not end with one
func RequirePrefix(field, value string) *ValidationError {
	if !strings.HasPrefix(value, "/") || (len(value) > 1 && strings.HasSuffix(value, "/")) {
		return &ValidationError{Field: field, Message: fmt.Sprintf("must look like /api/rbac, got %q", value)}
	}
	return nil
}

// CollectErrors drops the nil checks and keeps the failures
func CollectErrors(checks ...*ValidationError) ValidationErrors {
	var result ValidationErrors
	for _, c := range checks {
		if c != nil {
			result = append(result, *c)
		}
	}
	return result
}
