package usecase

import (
	"evcharge-client/internal/apperror"
	"evcharge-client/pkg/utils"
)

// validate runs struct tags and returns a ValidationError on failure.
func validate(data any) error {
	if errs := utils.ValidateStruct(data); len(errs) > 0 {
		return &apperror.ValidationError{Fields: errs}
	}
	return nil
}
