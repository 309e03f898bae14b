package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"openspace/pkg/logger"
	"openspace/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type SpaceValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewSpaceValidator(log *logger.Logger) *SpaceValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	// TimeOfDay is validated as its "HH-MM" form; unset values become "".
	v.RegisterCustomTypeFunc(timeOfDayValue, model.TimeOfDay{})

	log.Info("Space validator initialized successfully")

	return &SpaceValidator{
		validate: v,
		logger:   log,
	}
}

func timeOfDayValue(field reflect.Value) any {
	if tod, ok := field.Interface().(model.TimeOfDay); ok {
		return tod.String()
	}
	return nil
}

func (v *SpaceValidator) Validate(space *model.Space) error {
	if err := v.validate.Struct(space); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if !space.OperatingStart.Before(space.OperatingEnd) {
		return ValidationErrors{
			ValidationError{
				Field:   "operating_end",
				Message: fmt.Sprintf("operating_end (%s) must be after operating_start (%s)", space.OperatingEnd, space.OperatingStart),
			},
		}
	}

	return nil
}

func (v *SpaceValidator) ValidateUpdate(update *model.SpaceUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *SpaceValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
			if err.Field() == "operating_start" || err.Field() == "operating_end" {
				message = fmt.Sprintf("%s is required in HH-MM format", err.Field())
			}
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "url":
			message = fmt.Sprintf("%s must be a valid URL", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
