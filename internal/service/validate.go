package service

import (
    "errors"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"
)

// Validator is shared by the services and the HTTP layer.  Field names in
// errors are the JSON names of the struct fields.
var Validator = newValidator()

func newValidator() *validator.Validate {
    v := validator.New(validator.WithRequiredStructEnabled())
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
        if name == "-" {
            return ""
        }
        if name == "" {
            return f.Name
        }
        return name
    })
    return v
}

// validateStruct runs the struct tags of in and converts the first failure
// into a *ValidationError.
func validateStruct(in any) error {
    err := Validator.Struct(in)
    if err == nil {
        return nil
    }
    return FromValidator(err)
}

// FromValidator converts a validator error into a *ValidationError naming
// the first failing field.  Other errors are returned unchanged.
func FromValidator(err error) error {
    var verrs validator.ValidationErrors
    if !errors.As(err, &verrs) || len(verrs) == 0 {
        return err
    }
    fe := verrs[0]
    field := fe.Field()
    switch fe.Tag() {
    case "required":
        return invalid(field, "%s is required", field)
    case "oneof":
        return invalid(field, "%s must be one of: %s", field, fe.Param())
    case "email":
        return invalid(field, "%s must be a valid email address", field)
    case "url":
        return invalid(field, "%s must be a valid URL", field)
    case "gt":
        return invalid(field, "%s must be greater than %s", field, fe.Param())
    case "gte", "min":
        return invalid(field, "%s must be at least %s", field, fe.Param())
    case "lte", "max":
        return invalid(field, "%s must be at most %s", field, fe.Param())
    }
    return invalid(field, "%s is invalid", field)
}
