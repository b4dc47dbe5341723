package types

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	intlPhonePattern = regexp.MustCompile(`^\+\d+$`)

	validateOnce sync.Once
	validate     *validator.Validate
)

// requiredRules lists the validator tags applied to each kind's fields.
// Fields absent from a kind's map are free-form.
var requiredRules = map[Kind]map[string]any{
	KindExperience: {
		FieldTitle:   "required",
		FieldCompany: "required",
	},
	KindEducation: {
		FieldCourse: "required",
		FieldSchool: "required",
	},
	KindPersonalInfo: {
		FieldName:        "required",
		FieldPhoneNumber: "required,intl_phone",
		FieldEmail:       "required,email_domain",
	},
}

// ValidationError reports every field that failed local validation.
// It is produced before any network call is made.
type ValidationError struct {
	Kind   Kind
	Errors []FieldError
}

// FieldError represents a single validation failure on one field
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s validation failed:", e.Kind))
	for _, fe := range e.Errors {
		sb.WriteString(fmt.Sprintf(" %s: %s;", fe.Field, fe.Message))
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// Has reports whether field is among the failed fields.
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// Registration only fails on empty tags or nil funcs.
		_ = validate.RegisterValidation("intl_phone", func(fl validator.FieldLevel) bool {
			return intlPhonePattern.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("email_domain", func(fl validator.FieldLevel) bool {
			return isEmailWithDomain(fl.Field().String())
		})
	})
	return validate
}

// isEmailWithDomain accepts local@domain where the domain contains a dot
// with text on both sides. Whitespace is not allowed anywhere.
func isEmailWithDomain(s string) bool {
	if strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	domain := s[at+1:]
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

// Validate checks a record against the presence and pattern rules of its kind.
// It returns nil or a *ValidationError with field errors sorted by field name.
func Validate(kind Kind, rec Record) error {
	rules, ok := requiredRules[kind]
	if !ok {
		return fmt.Errorf("no validation rules for kind %q", kind)
	}

	// Whitespace-only values count as missing; pattern tags see the raw value.
	data := make(map[string]any, len(rules))
	for field := range rules {
		value := rec[field]
		if strings.TrimSpace(value) == "" {
			value = ""
		}
		data[field] = value
	}

	failures := validatorInstance().ValidateMap(data, rules)
	if len(failures) == 0 {
		return nil
	}

	verr := &ValidationError{Kind: kind}
	for field, raw := range failures {
		fe := FieldError{Field: field, Tag: "invalid", Message: "is invalid"}
		var vErrs validator.ValidationErrors
		if err, ok := raw.(error); ok && errors.As(err, &vErrs) && len(vErrs) > 0 {
			fe.Tag = vErrs[0].Tag()
			fe.Message = messageForTag(fe.Tag)
		}
		verr.Errors = append(verr.Errors, fe)
	}
	sort.Slice(verr.Errors, func(i, j int) bool {
		return verr.Errors[i].Field < verr.Errors[j].Field
	})
	return verr
}

func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "is required"
	case "intl_phone":
		return "must be in international format (e.g., +1234567890)"
	case "email_domain":
		return "must be a valid email address"
	default:
		return "failed " + tag + " check"
	}
}
