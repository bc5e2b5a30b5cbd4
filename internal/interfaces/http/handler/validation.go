package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/pharmapos/backend/internal/domain/trade"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("payment_method", validPaymentMethod)
	}
}

// validPaymentMethod accepts only the payment methods the sale engine knows.
// Binding-level rejection keeps the service's own validation as a backstop.
func validPaymentMethod(fl validator.FieldLevel) bool {
	return trade.PaymentMethod(fl.Field().String()).IsValid()
}
