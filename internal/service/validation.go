package service

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// emailShape accepts local@domain.tld with no whitespace anywhere.
var emailShape = regexp.MustCompile(`^\S+@\S+\.\S+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	})
	return v
}

// RegisterInput is the raw registration form.
type RegisterInput struct {
	Username string `form:"username"`
	FullName string `form:"fullname"`
	Email    string `form:"email"`
	Password string `form:"password"`
	Age      string `form:"age"`
}

// Registration is a normalized, validated RegisterInput.
type Registration struct {
	Username string `validate:"required,max=64"`
	FullName string `validate:"required,max=128"`
	Email    string `validate:"required,max=254,emailshape"`
	Password string `validate:"required,min=6,max=72"` // bcrypt ignores bytes past 72
	Age      *int   `validate:"omitempty,min=1,max=150"`
}

// ValidateRegistration trims and lower-cases identity fields, parses age and checks
// every constraint a new user must satisfy before it reaches the store.
func ValidateRegistration(in RegisterInput) (Registration, error) {
	r := Registration{
		Username: normalizeIdentity(in.Username),
		FullName: strings.TrimSpace(in.FullName),
		Email:    normalizeIdentity(in.Email),
		Password: in.Password,
	}

	if raw := strings.TrimSpace(in.Age); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			return Registration{}, validationErr("age %q is not a number", raw)
		}
		r.Age = &age
	}

	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return Registration{}, validationErr("%s failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		return Registration{}, validationErr("%v", err)
	}
	return r, nil
}

// normalizeIdentity is the canonical form of usernames and emails.
func normalizeIdentity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeContent trims post content; an empty result is rejected.
func normalizeContent(s string) (string, error) {
	c := strings.TrimSpace(s)
	if c == "" {
		return "", validationErr("content is empty")
	}
	return c, nil
}
