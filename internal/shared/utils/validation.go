package utils

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/orris-inc/channelsync/internal/domain/channel"
	"github.com/orris-inc/channelsync/internal/shared/errors"
)

// ProviderTag validates a string field holding a supported provider name.
const ProviderTag = "provider"

var validate *validator.Validate

func init() {
	validate = validator.New()
	ConfigureValidator(validate)
}

// ConfigureValidator registers the shared tag name function and custom tags on
// v. The HTTP layer applies it to gin's binding engine too.
func ConfigureValidator(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form", "uri"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	_ = v.RegisterValidation(ProviderTag, func(fl validator.FieldLevel) bool {
		_, err := channel.ParseProvider(fl.Field().String())
		return err == nil
	})
}

// ValidateStruct validates a struct and returns a user-friendly error
func ValidateStruct(s interface{}) error {
	return ValidationError(validate.Struct(s))
}

// ValidationError converts validator output into an AppError. Other errors,
// such as a malformed number in a query string, become a generic validation error.
func ValidationError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !asValidationErrors(err, &fieldErrors) {
		return errors.NewValidationError("Invalid request parameters", err.Error())
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, getFieldErrorMessage(fe))
	}
	return errors.NewValidationError("Validation failed", strings.Join(messages, "; "))
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	ve, ok := err.(validator.ValidationErrors)
	if ok {
		*target = ve
	}
	return ok
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case ProviderTag:
		return fmt.Sprintf("%s must be one of [%s]", field, providerNames())
	default:
		return fmt.Sprintf("%s failed validation for '%s'", field, fe.Tag())
	}
}

func providerNames() string {
	providers := channel.Providers()
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.String())
	}
	return strings.Join(names, " ")
}
