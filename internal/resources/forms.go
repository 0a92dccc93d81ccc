// Package resources holds the form models and operations behind the user,
// employee, and subscriber management screens. Forms are validated locally
// before any backend call so the modal can mark bad fields inline.
package resources

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/sbrock928/dealdesk/internal/api"
	"github.com/sbrock928/dealdesk/internal/report"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// UserForm is the editable surface of a user record.
type UserForm struct {
	Username string `validate:"required,min=3,max=64" field:"username"`
	Email    string `validate:"required,email" field:"email"`
	FullName string `validate:"max=128" field:"fullName"`
	IsActive bool
}

// EmployeeForm is the editable surface of an employee record.
type EmployeeForm struct {
	FirstName  string `validate:"required,max=64" field:"firstName"`
	LastName   string `validate:"required,max=64" field:"lastName"`
	Email      string `validate:"required,email" field:"email"`
	Department string `validate:"max=64" field:"department"`
	Title      string `validate:"max=64" field:"title"`
}

// SubscriberForm is the editable surface of a subscriber record.
type SubscriberForm struct {
	Name     string `validate:"required,min=2,max=128" field:"name"`
	Email    string `validate:"required,email" field:"email"`
	IsActive bool
}

// messages maps validation tags to user-facing text.
var messages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"min":      "is too short",
	"max":      "is too long",
}

// ValidateForm checks a form struct and returns one error per bad field,
// keyed by the struct's field tag.
func ValidateForm(form any) []report.FieldError {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []report.FieldError{{Field: "form", Message: err.Error()}}
	}

	fields := fieldTags(form)
	out := make([]report.FieldError, 0, len(verrs))
	for _, ve := range verrs {
		msg, ok := messages[ve.Tag()]
		if !ok {
			msg = "is invalid"
		}
		name := fields[ve.StructField()]
		if name == "" {
			name = strings.ToLower(ve.StructField())
		}
		out = append(out, report.FieldError{Field: name, Message: displayName(name) + " " + msg})
	}
	return out
}

// fieldTags maps Go struct field names to their form field tags.
func fieldTags(form any) map[string]string {
	t := reflect.TypeOf(form)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if tag := f.Tag.Get("field"); tag != "" {
			out[f.Name] = tag
		}
	}
	return out
}

// displayName renders a camelCase field tag as a label, e.g.
// "firstName" -> "First name".
func displayName(field string) string {
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteByte(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (f UserForm) ToAPI() api.User {
	return api.User{
		Username: strings.TrimSpace(f.Username),
		Email:    strings.TrimSpace(f.Email),
		FullName: strings.TrimSpace(f.FullName),
		IsActive: f.IsActive,
	}
}

func (f EmployeeForm) ToAPI() api.Employee {
	return api.Employee{
		FirstName:  strings.TrimSpace(f.FirstName),
		LastName:   strings.TrimSpace(f.LastName),
		Email:      strings.TrimSpace(f.Email),
		Department: strings.TrimSpace(f.Department),
		Title:      strings.TrimSpace(f.Title),
	}
}

func (f SubscriberForm) ToAPI() api.Subscriber {
	return api.Subscriber{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		IsActive: f.IsActive,
	}
}

// UserFormFrom seeds a form from an existing record for editing.
func UserFormFrom(u api.User) UserForm {
	return UserForm{Username: u.Username, Email: u.Email, FullName: u.FullName, IsActive: u.IsActive}
}

func EmployeeFormFrom(e api.Employee) EmployeeForm {
	return EmployeeForm{FirstName: e.FirstName, LastName: e.LastName, Email: e.Email, Department: e.Department, Title: e.Title}
}

func SubscriberFormFrom(s api.Subscriber) SubscriberForm {
	return SubscriberForm{Name: s.Name, Email: s.Email, IsActive: s.IsActive}
}
