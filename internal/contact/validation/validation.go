// Package validation turns an untyped JSON body into a models.Submission or
// the complete list of field issues. It performs no I/O.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"contactd/internal/contact/models"
)

// ErrMalformedBody is returned when the body is not a JSON object at all.
// Callers treat it as an unexpected failure rather than a field issue.
var ErrMalformedBody = errors.New("request body is not a JSON object")

// Result is either a valid Submission or a non-empty list of Issues.
// Honeypot carries the company field whenever it parsed as a string, even
// when other fields have issues.
type Result struct {
	Submission *models.Submission
	Issues     []models.Issue
	Honeypot   string
}

// Valid reports whether the payload produced a Submission.
func (r Result) Valid() bool {
	return r.Submission != nil && len(r.Issues) == 0
}

// form holds the length and format rules for the required text fields.
type form struct {
	Name    string `json:"name" validate:"min=2,max=30"`
	Email   string `json:"email" validate:"max=160,email"`
	Subject string `json:"subject" validate:"min=2,max=160"`
	Message string `json:"message" validate:"min=10,max=300"`
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
)

type fieldSpec struct {
	name     string
	kind     fieldKind
	required bool
}

// Wire field names. company is the honeypot, ts the form render time.
var fields = []fieldSpec{
	{"name", kindString, true},
	{"email", kindString, true},
	{"subject", kindString, true},
	{"message", kindString, true},
	{"ts", kindNumber, false},
	{"company", kindString, false},
	{"captcha", kindString, false},
	{"lang", kindString, false},
}

// Validator is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return &Validator{validate: v}
}

// Validate checks every field in a single pass. It returns ErrMalformedBody
// (wrapped) only when raw is not a JSON object; all other problems are
// reported as Issues.
func (v *Validator) Validate(raw []byte) (Result, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}
	if payload == nil {
		return Result{}, ErrMalformedBody
	}

	var (
		issues  []models.Issue
		flagged = make(map[string]bool)
		strs    = make(map[string]string)
		ts      *int64
	)

	for _, f := range fields {
		value, present := payload[f.name]
		if !present {
			if f.required {
				issues = append(issues, models.Issue{Path: f.name, Message: "Required"})
				flagged[f.name] = true
			}
			continue
		}

		got := jsonType(value)
		switch f.kind {
		case kindString:
			var s string
			if got != "string" || json.Unmarshal(value, &s) != nil {
				issues = append(issues, typeIssue(f.name, "string", got))
				flagged[f.name] = true
				continue
			}
			strs[f.name] = s
		case kindNumber:
			var n float64
			if got != "number" || json.Unmarshal(value, &n) != nil {
				issues = append(issues, typeIssue(f.name, "number", got))
				flagged[f.name] = true
				continue
			}
			if !fitsInt64(n) {
				issues = append(issues, models.Issue{Path: f.name, Message: "Invalid number"})
				flagged[f.name] = true
				continue
			}
			ms := int64(n)
			ts = &ms
		}
	}

	candidate := form{
		Name:    strs["name"],
		Email:   strs["email"],
		Subject: strs["subject"],
		Message: strs["message"],
	}
	if err := v.validate.Struct(candidate); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return Result{}, fmt.Errorf("validate contact form: %w", err)
		}
		for _, fe := range fieldErrs {
			if flagged[fe.Field()] {
				continue
			}
			issues = append(issues, models.Issue{Path: fe.Field(), Message: ruleMessage(fe)})
		}
	}

	if len(issues) > 0 {
		return Result{Issues: issues, Honeypot: strs["company"]}, nil
	}

	return Result{Submission: &models.Submission{
		Name:            candidate.Name,
		Email:           candidate.Email,
		Subject:         candidate.Subject,
		Message:         candidate.Message,
		TimestampMillis: ts,
		Honeypot:        strs["company"],
		CaptchaToken:    strs["captcha"],
		Language:        strs["lang"],
	}, Honeypot: strs["company"]}, nil
}

// fitsInt64 rejects values a millisecond timestamp cannot hold.
func fitsInt64(n float64) bool {
	return !math.IsNaN(n) && n >= math.MinInt64 && n < math.MaxInt64
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("String must contain at least %s character(s)", fe.Param())
	case "max":
		return fmt.Sprintf("String must contain at most %s character(s)", fe.Param())
	case "email":
		return "Invalid email"
	}
	return "Invalid value"
}

func typeIssue(path, expected, received string) models.Issue {
	return models.Issue{
		Path:    path,
		Message: fmt.Sprintf("Expected %s, received %s", expected, received),
	}
}

// jsonType names the JSON type of a raw value from its first byte.
func jsonType(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "undefined"
	}
	switch trimmed[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	}
	return "number"
}
