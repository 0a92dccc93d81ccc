package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUserForm(t *testing.T) {
	t.Run("valid form passes", func(t *testing.T) {
		form := UserForm{Username: "ssmith", Email: "ssmith@example.com", IsActive: true}
		assert.Empty(t, ValidateForm(form))
	})

	t.Run("missing fields are reported by tag name", func(t *testing.T) {
		errs := ValidateForm(UserForm{})
		fields := map[string]bool{}
		for _, e := range errs {
			fields[e.Field] = true
		}
		assert.True(t, fields["username"], "missing username error: %v", errs)
		assert.True(t, fields["email"], "missing email error: %v", errs)
	})

	t.Run("bad email", func(t *testing.T) {
		errs := ValidateForm(UserForm{Username: "ssmith", Email: "not-an-email"})
		require.Len(t, errs, 1)
		assert.Equal(t, "email", errs[0].Field)
		assert.Equal(t, "Email must be a valid email address", errs[0].Message)
	})

	t.Run("short username", func(t *testing.T) {
		errs := ValidateForm(UserForm{Username: "ab", Email: "a@b.com"})
		require.Len(t, errs, 1)
		assert.Equal(t, "username", errs[0].Field)
	})
}

func TestValidateEmployeeForm(t *testing.T) {
	errs := ValidateForm(EmployeeForm{FirstName: "Sam", Email: "sam@example.com"})
	require.Len(t, errs, 1)
	assert.Equal(t, "lastName", errs[0].Field)
	assert.Equal(t, "Last name is required", errs[0].Message)
}

func TestValidateSubscriberForm(t *testing.T) {
	form := SubscriberForm{Name: "Ops Distribution", Email: "ops@example.com", IsActive: true}
	assert.Empty(t, ValidateForm(form))
}

func TestFormRoundTrip(t *testing.T) {
	form := UserForm{Username: "  ssmith ", Email: " s@example.com ", FullName: "Sam Smith", IsActive: true}
	u := form.ToAPI()
	assert.Equal(t, "ssmith", u.Username, "username not trimmed")
	assert.Equal(t, "s@example.com", u.Email, "email not trimmed")

	back := UserFormFrom(u)
	assert.Equal(t, "ssmith", back.Username)
	assert.True(t, back.IsActive)
}
