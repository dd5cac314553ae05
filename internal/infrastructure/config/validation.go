package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// maxGraphBudget keeps densification inside the bot's start-up window
const maxGraphBudget = 30 * time.Second

// Validator is a wrapper around go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator registers the site-graph tags and the scheduler cross-field rules
func NewValidator() *Validator {
	v := validator.New()

	// the tags are compile-time constants; a registration error is a programming error
	if err := v.RegisterValidation("slack", validateSlack); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("graph_budget", validateGraphBudget); err != nil {
		panic(err)
	}
	v.RegisterStructValidation(validateScheduler, SchedulerConfig{})

	return &Validator{
		validate: v,
	}
}

// validateSlack accepts [0, 1). A candidate link i-j loses to a linked
// neighbour k when d(j,k) + slack*d(i,k) < d(i,j); from a slack of one upward
// the triangle inequality makes that impossible.
func validateSlack(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.Float64 && fl.Field().Kind() != reflect.Float32 {
		return false
	}
	s := fl.Field().Float()
	return s >= 0 && s < 1
}

func validateGraphBudget(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.Int64 {
		return false
	}
	d := time.Duration(fl.Field().Int())
	return d > 0 && d <= maxGraphBudget
}

// validateScheduler checks the caps against the ledger cap and the instance
// periods against the minimal interval they are scheduled on
func validateScheduler(sl validator.StructLevel) {
	s := sl.Current().Interface().(SchedulerConfig)

	caps := []struct {
		field string
		value int
	}{
		{"ProducerQueueCap", s.ProducerQueueCap},
		{"ConstructorQueueCap", s.ConstructorQueueCap},
		{"PrerequisiteCap", s.PrerequisiteCap},
	}
	for _, c := range caps {
		if c.value > s.LedgerCap {
			sl.ReportError(c.value, c.field, c.field, "ltefield_ledger_cap", "")
		}
	}

	periods := []struct {
		field string
		value int
	}{
		{"PowerInterval", s.PowerInterval},
		{"BuildListInterval", s.BuildListInterval},
		{"UnitsInterval", s.UnitsInterval},
	}
	for _, p := range periods {
		if p.value < s.MinimalInterval {
			sl.ReportError(p.value, p.field, p.field, "gtefield_minimal_interval", "")
		}
	}
}

// Validate validates a struct using validation tags
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return v.formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors into readable messages
func (v *Validator) formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		messages = append(messages, fmt.Sprintf("%s failed %s (value: '%v')", e.Namespace(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
}

// ValidateConfig validates the entire configuration
func ValidateConfig(cfg *Config) error {
	return NewValidator().Validate(cfg)
}
