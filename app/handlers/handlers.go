// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// newValidator builds the validator shared by the public handlers. Field names
// in error reports use json tag names so clients receive wire-format paths.
func newValidator() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Amazon order numbers look like 123-1234567-1234567
	validate.RegisterValidation("amazon_order", func(fl validator.FieldLevel) bool {
		return isAmazonOrderNumber(fl.Field().String())
	})

	return validate
}

func isAmazonOrderNumber(value string) bool {
	if len(value) != 19 {
		return false
	}
	for i, char := range value {
		switch i {
		case 3, 11:
			if char != '-' {
				return false
			}
		default:
			if char < '0' || char > '9' {
				return false
			}
		}
	}
	return true
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "len":
		return err.Field() + " must be exactly " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "eq":
		return err.Field() + " must be " + err.Param()
	case "url":
		return err.Field() + " must be a valid URL"
	case "amazon_order":
		return err.Field() + " must match the pattern 123-1234567-1234567"
	case "excludesall":
		return err.Field() + " contains forbidden characters"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}
