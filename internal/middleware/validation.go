package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/clinic-dashboard/internal/service/clinic"
)

// RegisterValidators installs the request tags used by the handlers on
// gin's validator and reports fields by their json names.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	validators := map[string]validator.Func{
		"hhmm": func(fl validator.FieldLevel) bool {
			return clinic.IsClock(fl.Field().String())
		},
		"weekday": func(fl validator.FieldLevel) bool {
			return clinic.IsWeekday(fl.Field().String())
		},
	}
	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}
