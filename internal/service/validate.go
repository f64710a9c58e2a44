package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrValidation marks a structural constraint violation detected before
// any store access. The transport binds payloads with the same tags, so
// this is a second line of defense for non-HTTP callers.
var ErrValidation = errors.New("validation failed")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// reuse the gin binding tags so the rules live in one place
	v.SetTagName("binding")

	return v
}

func validateRequest(req interface{}) error {
	err := validate.Struct(req)

	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors

	if errors.As(err, &fieldErrs) {
		fields := make([]string, 0, len(fieldErrs))

		for _, fe := range fieldErrs {
			fields = append(fields, fe.Field())
		}

		return fmt.Errorf("%w: %v", ErrValidation, fields)
	}

	return fmt.Errorf("%w: %v", ErrValidation, err)
}
