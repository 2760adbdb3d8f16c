// internal/domain/checkout/shipping.go
package checkout

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/your-org/saree-store/internal/pkg/apperror"
)

// shippingValidate checks ShippingInfo. Field errors are keyed by json name.
var shippingValidate *validator.Validate

func init() {
	shippingValidate = validator.New()
	shippingValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	_ = shippingValidate.RegisterValidation("digits", validateDigits)
}

// validateDigits accepts a string of exactly param ASCII digits
func validateDigits(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	s := fl.Field().String()
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ShippingInfo is the delivery address a shopper submits at checkout
type ShippingInfo struct {
	CustomerName string `json:"customer_name" validate:"required,max=200"`
	Phone        string `json:"phone" validate:"digits=10"`
	AddressLine1 string `json:"address_line1" validate:"required,max=255"`
	AddressLine2 string `json:"address_line2" validate:"max=255"`
	City         string `json:"city" validate:"required,max=100"`
	Pincode      string `json:"pincode" validate:"digits=6"`
}

// Normalize trims surrounding whitespace from every field
func (s ShippingInfo) Normalize() ShippingInfo {
	return ShippingInfo{
		CustomerName: strings.TrimSpace(s.CustomerName),
		Phone:        strings.TrimSpace(s.Phone),
		AddressLine1: strings.TrimSpace(s.AddressLine1),
		AddressLine2: strings.TrimSpace(s.AddressLine2),
		City:         strings.TrimSpace(s.City),
		Pincode:      strings.TrimSpace(s.Pincode),
	}
}

// Validate checks the structural rules and returns every failing field at once
func (s ShippingInfo) Validate() *apperror.ValidationError {
	verr := &apperror.ValidationError{}

	err := shippingValidate.Struct(s)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), fieldMessage(fe))
		}
	} else if err != nil {
		verr.Add("shipping", err.Error())
	}

	return verr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "is too long"
	case "digits":
		return "must be exactly " + fe.Param() + " digits"
	default:
		return "is invalid"
	}
}
