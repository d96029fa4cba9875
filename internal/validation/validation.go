// Package validation evaluates declarative, ordered rule chains against
// request fields and reports every failure in declaration order.
package validation

import (
	"fmt"
	"strings"
)

// Predicate reports whether a field value is acceptable.
type Predicate func(value string) bool

// Rule pairs a predicate with the message reported when it fails.
type Rule struct {
	Check   Predicate
	Message string
}

// Must builds a Rule.
func Must(check Predicate, message string) Rule {
	return Rule{Check: check, Message: message}
}

// FieldRules is the ordered rule chain for a single field.
type FieldRules struct {
	Name  string
	Rules []Rule
}

// Field builds the rule chain for name.
func Field(name string, rules ...Rule) FieldRules {
	return FieldRules{Name: name, Rules: rules}
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors is an ordered list of failures.
type Errors []FieldError

func (e Errors) Error() string {
	messages := make([]string, len(e))
	for i, fieldErr := range e {
		messages[i] = fieldErr.Error()
	}
	return "validation failed: " + strings.Join(messages, ", ")
}

// Fields returns the distinct field names that failed, in order.
func (e Errors) Fields() []string {
	var fields []string
	seen := make(map[string]struct{}, len(e))
	for _, fieldErr := range e {
		if _, ok := seen[fieldErr.Field]; ok {
			continue
		}
		seen[fieldErr.Field] = struct{}{}
		fields = append(fields, fieldErr.Field)
	}
	return fields
}

// Ruleset is an ordered list of field rule chains.
type Ruleset []FieldRules

// Validate runs every rule of every field and collects the failures.
// A field that is absent from input is checked as the empty string.
func (rs Ruleset) Validate(input map[string]any) Errors {
	var errs Errors
	for _, field := range rs {
		value := Value(input, field.Name)
		for _, rule := range field.Rules {
			if !rule.Check(value) {
				errs = append(errs, FieldError{Field: field.Name, Message: rule.Message})
			}
		}
	}
	return errs
}

// Value returns input[name] as the string the rules see.
func Value(input map[string]any, name string) string {
	switch v := input[name].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
