package validator

import (
	"errors"

	playground "github.com/go-playground/validator/v10"
)

var structValidator = newStructValidator()

func newStructValidator() *playground.Validate {
	v := playground.New(playground.WithRequiredStructEnabled())
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("cpf", func(fl playground.FieldLevel) bool {
		return IsValidCPF(fl.Field().String())
	})
	return v
}

// InvalidFields checks v against its `validate` struct tags and returns the
// failing field names mapped to the tag that rejected them. The "cpf" tag
// applies IsValidCPF. A nil map means v is valid.
func InvalidFields(v any) map[string]string {
	var verrs playground.ValidationErrors
	if err := structValidator.Struct(v); !errors.As(err, &verrs) {
		return nil
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
