package contact

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field ceilings. Oversized paste-heavy input is truncated, not rejected.
const (
	maxNameLen    = 120
	maxSubjectLen = 160
	maxMessageLen = 4000
)

// emailShape insists on local@domain.tld; validator's built-in email tag
// admits dotless domains, which bounce for every real guest.
var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)

// Validator normalizes and validates contact submissions. Pure and
// synchronous; it never touches the network.
type Validator struct {
	v *validator.Validate
}

// NewValidator builds the validator with the contact-form rules registered.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterValidation("email_tld", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Validate normalizes the submission in place (trim, strip control
// characters, truncate oversized fields) and returns a *ValidationError
// listing every failing field, or nil when the submission is acceptable.
func (va *Validator) Validate(sub *Submission) error {
	sub.Name = truncate(clean(sub.Name), maxNameLen)
	sub.Email = clean(sub.Email)
	sub.Message = truncate(clean(sub.Message), maxMessageLen)
	sub.Phone = clean(sub.Phone)
	sub.Apartment = clean(sub.Apartment)
	sub.Dates = clean(sub.Dates)
	sub.Subject = truncate(clean(sub.Subject), maxSubjectLen)

	err := va.v.Struct(sub)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Fields: []FieldError{{Field: "form", Message: "Invalid submission."}}}
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   strings.ToLower(fe.Field()),
			Message: fieldMessage(fe.Field()),
		})
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(field string) string {
	switch field {
	case "Name":
		return "Please enter your name."
	case "Email":
		return "Please enter a valid email."
	case "Message":
		return "Please enter a message."
	default:
		return "Please check the form and try again."
	}
}

// clean trims whitespace and strips control characters, the same scrub the
// form has always applied server-side.
func clean(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\t' || r == 0x7f {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
