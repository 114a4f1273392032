package middleware

import (
	"errors"
	"unicode/utf8"
)

// ValidateTenantName validates a tenant display name.
func ValidateTenantName(name string) error {
	if len(name) == 0 {
		return errors.New("name cannot be empty")
	}
	if len(name) > 128 {
		return errors.New("name exceeds maximum length")
	}
	if !utf8.ValidString(name) {
		return errors.New("name must be valid UTF-8")
	}
	return nil
}

// ValidateSecret validates a dashboard login secret.
func ValidateSecret(secret string) error {
	if len(secret) < 8 {
		return errors.New("secret must be at least 8 characters")
	}
	if len(secret) > 72 { // bcrypt input limit
		return errors.New("secret exceeds maximum length")
	}
	return nil
}

// ValidateContactAddress validates a tenant contact address.
func ValidateContactAddress(addr string) error {
	if len(addr) == 0 {
		return errors.New("contact address cannot be empty")
	}
	if len(addr) > 256 {
		return errors.New("contact address exceeds maximum length")
	}
	return nil
}

// ValidatePromptTemplate validates a custom prompt template.
func ValidatePromptTemplate(template string) error {
	if len(template) > 10000 {
		return errors.New("prompt template exceeds maximum length")
	}
	if !utf8.ValidString(template) {
		return errors.New("prompt template must be valid UTF-8")
	}
	return nil
}
