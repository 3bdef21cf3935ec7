package utils

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidations wires project-specific rules into gin's binding
// validator. Call once from main before serving.
func RegisterCustomValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("omsdate", validateOMSDate)
	}
}

// omsdate accepts the timestamp format the OMS sends on webhooks.
func validateOMSDate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := time.Parse("2006-01-02 15:04", value)
	return err == nil
}
