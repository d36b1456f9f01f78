package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Order ids are minted as uppercase hex plus separators; anything outside
// this alphabet never came from us.
var safeOrderIDRe = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("safe_order_id", validateSafeOrderID)
	}
}

func validateSafeOrderID(fl validator.FieldLevel) bool {
	return ValidOrderID(fl.Field().String())
}

// ValidOrderID reports whether a gateway order id is shaped like one this
// service issued. Used before echoing ids into queries or redirects.
func ValidOrderID(id string) bool {
	return id != "" && len(id) <= 64 && safeOrderIDRe.MatchString(id)
}
