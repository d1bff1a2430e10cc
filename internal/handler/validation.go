package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"storefront/internal/model"

	validatorv10 "github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// NewValidator returns a validator with the request-level rules registered.
func NewValidator() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(checkoutLineStructValidation, model.CheckoutLine{})
	v.RegisterStructValidation(draftOrderStructValidation, model.DraftOrderRequest{})
	return v
}

// checkoutLineStructValidation requires merchandiseId or its legacy variantId.
func checkoutLineStructValidation(sl validatorv10.StructLevel) {
	line := sl.Current().Interface().(model.CheckoutLine)
	if strings.TrimSpace(line.ID()) == "" {
		sl.ReportError(line.MerchandiseID, "merchandiseId", "MerchandiseID", "required", "")
	}
}

// draftOrderStructValidation requires a positive bag price.
func draftOrderStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(model.DraftOrderRequest)
	if !req.BagPrice.IsPositive() {
		sl.ReportError(req.BagPrice, "bagPrice", "BagPrice", "gt", "0")
	}
}

// decodeAndValidate reads a JSON body into out and validates it. Failures are
// returned as domain errors.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, out interface{}, v *validatorv10.Validate) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(out); err != nil {
		return model.NewDomainError(model.ErrCodeInvalidJSON, "invalid request body")
	}

	if err := v.Struct(out); err != nil {
		var ve validatorv10.ValidationErrors
		if !errors.As(err, &ve) {
			return model.NewDomainError(model.ErrCodeValidation, err.Error())
		}
		fields := make([]string, 0, len(ve))
		for _, fe := range ve {
			fields = append(fields, describeFieldError(fe))
		}
		return model.NewDomainError(model.ErrCodeValidation, strings.Join(fields, "; "))
	}
	return nil
}

func describeFieldError(fe validatorv10.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
	case "gte", "gt":
		return fmt.Sprintf("%s must be greater than %s", field, lowerBound(fe))
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

func lowerBound(fe validatorv10.FieldError) string {
	if fe.Tag() == "gte" && fe.Param() == "1" {
		return "0"
	}
	return fe.Param()
}
