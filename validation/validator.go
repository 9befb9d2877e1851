// Package validation screens user supplied drug names and request bodies
// before they reach the classifier.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/giygas/interactions-api/entities"
	"github.com/giygas/interactions-api/interfaces"
	"github.com/go-playground/validator/v10"
)

const maxNameLength = 100

// Pre-compiled once at package initialization
var (
	// Letters in any script, digits, spaces and the punctuation found in
	// product names such as "Amoxicillin/Clavulanate (Augmentin)"
	drugNameRegex = regexp.MustCompile(`^[\p{L}\p{M}0-9\s\-\.\+'/(),]+$`)

	// Checked with strings.Contains on the lowercased input
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"eval(", "expression(", "url(", "@import",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"--", "/*", "*/", "exec(", "execute(",
		// Command injection patterns
		"; ", "| ", "`", "$(", "${",
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://",
		// NoSQL injection patterns
		"{$ne:", "{$gt:", "{$where:", "{$or:", "{$regex:",
	}
)

// Compile-time check to ensure Validator implements InputValidator
var _ interfaces.InputValidator = (*Validator)(nil)

// Validator implements interfaces.InputValidator
type Validator struct {
	structs *validator.Validate
}

// NewValidator creates a validator
func NewValidator() *Validator {
	return &Validator{structs: validator.New(validator.WithRequiredStructEnabled())}
}

// ValidateStruct applies `validate` struct tags and flattens the failures
// into one readable error.
func (v *Validator) ValidateStruct(s any) error {
	err := v.structs.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			messages = append(messages, field+" is required")
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return errors.New(strings.Join(messages, "; "))
}

// ValidateDrugName rejects blank, oversized or suspicious names. A blank
// name yields entities.ErrEmptyName.
func (v *Validator) ValidateDrugName(input string) error {
	if strings.TrimSpace(input) == "" {
		return entities.ErrEmptyName
	}

	if utf8.RuneCountInString(input) > maxNameLength {
		return fmt.Errorf("drug name too long: maximum %d characters", maxNameLength)
	}

	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("drug name contains potentially dangerous content")
		}
	}

	if !drugNameRegex.MatchString(input) {
		return fmt.Errorf("drug name contains invalid characters. Only letters, numbers, spaces and - . + ' / ( ) , are allowed")
	}

	if hasExcessiveRepetition(input) {
		return fmt.Errorf("drug name contains excessive character repetition")
	}

	return nil
}

// hasExcessiveRepetition reports runs of more than 5 identical characters
func hasExcessiveRepetition(input string) bool {
	var prev rune
	run := 0
	for _, r := range input {
		if r == prev {
			run++
			if run > 5 {
				return true
			}
			continue
		}
		prev = r
		run = 1
	}
	return false
}
