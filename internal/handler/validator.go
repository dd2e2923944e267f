package handler

import (
    "github.com/go-playground/validator/v10"

    "github.com/iliyamo/lotty-marketplace/internal/service"
)

// RequestValidator plugs go-playground/validator into echo.  Errors come
// back as *service.ValidationError naming the first bad field.
type RequestValidator struct {
    v *validator.Validate
}

func NewRequestValidator() *RequestValidator {
    return &RequestValidator{v: service.Validator}
}

func (rv *RequestValidator) Validate(i interface{}) error {
    if err := rv.v.Struct(i); err != nil {
        return service.FromValidator(err)
    }
    return nil
}
