package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/savemyigcse/backend/internal/apperrors"
)

// validate is the shared validator instance for all entity writes. It
// checks the validate:"..." struct tags on the models.
var validate = newValidator()

// newValidator builds the instance with violations reported under the
// field's json name, so tag-driven and dynamic checks use one naming
// convention toward clients.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// checkStruct runs tag validation and returns every violated field/rule
// pair as a ValidationError the caller can extend with dynamic checks.
func checkStruct(v any) *apperrors.ValidationError {
	err := validate.Struct(v)
	if err == nil {
		return &apperrors.ValidationError{}
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.FromValidator(verrs)
	}
	ve := &apperrors.ValidationError{}
	ve.Add("struct", err.Error())
	return ve
}
