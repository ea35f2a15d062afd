package catalog

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkStruct runs the struct tags of s and converts the first violation
// into a catalog error.
func checkStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return &Error{Kind: ErrInvalidPayload, Detail: err.Error()}
	}

	fe := ves[0]
	field := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return fieldErr(ErrMissingRequiredField, field, "is required")
	case "min":
		switch field {
		case "sizes":
			return fieldErr(ErrInvalidSizeList, field, "must not be empty")
		case "colors":
			return fieldErr(ErrInvalidColorList, field, "must not be empty")
		}
		return fieldErr(ErrMissingRequiredField, field, "must not be empty")
	case "gt":
		return fieldErr(ErrInvalidPrice, field, "must be greater than 0")
	case "gte":
		return fieldErr(ErrInvalidStock, field, "must not be negative")
	}
	return fieldErr(ErrInvalidPayload, field, "failed %s validation", fe.Tag())
}

// fieldPath turns "SizedInput.Common.sizes[0].price" into "sizes[0].price".
func fieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	out := parts[:0]
	for i, p := range parts {
		if i == 0 || p == "Common" {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ".")
}
