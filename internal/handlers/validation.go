package handlers

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	tagDecimalGreaterThanZero = "dgt0"
	tagDecimalNotNegative     = "dgte0"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators teaches gin's validator about decimal.Decimal fields. Safe to call more than once;
// every call reports the outcome of the first.
func RegisterValidators() error {
	registerOnce.Do(func() {
		registerErr = registerDecimalRules()
	})
	return registerErr
}

func registerDecimalRules() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unsupported binding validator engine %T", binding.Validator.Engine())
	}
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	if err := v.RegisterValidation(tagDecimalGreaterThanZero, func(fl validator.FieldLevel) bool {
		d, ok := fieldDecimal(fl)
		return ok && d.IsPositive()
	}); err != nil {
		return fmt.Errorf("failed to register %s validation: %w", tagDecimalGreaterThanZero, err)
	}
	if err := v.RegisterValidation(tagDecimalNotNegative, func(fl validator.FieldLevel) bool {
		d, ok := fieldDecimal(fl)
		return ok && !d.IsNegative()
	}); err != nil {
		return fmt.Errorf("failed to register %s validation: %w", tagDecimalNotNegative, err)
	}
	return nil
}

// decimalValue exposes a decimal as a string so rules run on the value instead of recursing into the struct.
func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func fieldDecimal(fl validator.FieldLevel) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
