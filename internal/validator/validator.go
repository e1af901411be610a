// Package validator provides ticker validation shared between Gin's binding
// engine and the service layer.
package validator

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// tickerRegex accepts exchange symbols like AAPL, BRK.B and RDS-A.
var tickerRegex = regexp.MustCompile(`^[A-Z0-9.\-]{1,10}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("ticker", validateTicker)
	}
}

func validateTicker(fl validator.FieldLevel) bool {
	return ValidTicker(fl.Field().String())
}

// ValidTicker reports whether a symbol matches the ticker pattern after
// normalization (trim + uppercase).
func ValidTicker(ticker string) bool {
	return tickerRegex.MatchString(NormalizeTicker(ticker))
}

// NormalizeTicker trims surrounding whitespace and uppercases a symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
