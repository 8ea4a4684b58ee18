package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "addressbook/pkg/domain-errors"
)

type contactForm struct {
	FirstName string `validate:"required,contact_name"`
	Phone     string `validate:"required,contact_phone"`
	Email     string `validate:"required,email"`
}

type accountForm struct {
	DisplayName string `validate:"display_name"`
	Password    string `validate:"min=6,max=16"`
}

func TestValidate(t *testing.T) {
	valid := contactForm{FirstName: "Mary-Jane", Phone: "+1-555-123-456", Email: "mj@example.com"}
	require.NoError(t, Validate(valid))

	t.Run("name rules", func(t *testing.T) {
		for _, name := range []string{"O'Neil", "Ann", "Jo"} {
			form := valid
			form.FirstName = name
			assert.NoError(t, Validate(form), name)
		}
		for _, name := range []string{"J", "Mary Jane", "Anne--Marie", "R2D2", "-Ann"} {
			form := valid
			form.FirstName = name
			err := Validate(form)
			require.Error(t, err, name)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		}
	})

	t.Run("phone rules", func(t *testing.T) {
		for _, phone := range []string{"+972-555-123-456", "+44-123-456-789"} {
			form := valid
			form.Phone = phone
			assert.NoError(t, Validate(form), phone)
		}
		for _, phone := range []string{"555-123-456", "+0-555-123-456", "+1-55-123-456", "+1234-555-123-456"} {
			form := valid
			form.Phone = phone
			assert.Error(t, Validate(form), phone)
		}
	})

	t.Run("message names the field in snake case", func(t *testing.T) {
		form := valid
		form.FirstName = ""
		err := Validate(form)
		require.Error(t, err)
		assert.Equal(t, "first_name is required", err.Error())

		form = valid
		form.Phone = "123"
		assert.Equal(t, "phone must match +###-###-###-###", Validate(form).Error())
	})

	t.Run("account rules", func(t *testing.T) {
		assert.NoError(t, Validate(accountForm{DisplayName: "alice_01", Password: "secret1"}))
		assert.EqualError(t, Validate(accountForm{DisplayName: "al", Password: "secret1"}),
			"display_name must be 3 to 16 letters, digits or underscores")
		assert.EqualError(t, Validate(accountForm{DisplayName: "alice", Password: "12345"}),
			"password must be at least 6")
	})
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("email", "a@b.com", "required,email"))

	err := Var("email", "not-an-email", "required,email")
	require.Error(t, err)
	assert.Equal(t, "email must be a valid email", err.Error())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
