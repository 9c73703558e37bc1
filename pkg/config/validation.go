package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/XiaoConstantine/ropevo-go/pkg/selection"
	"github.com/go-playground/validator/v10"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Tag     string
	Value   interface{}
	Message string
}

// Error returns the error message for a validation error.
func (e ValidationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("field '%s' failed validation for tag '%s'", e.Field, e.Tag)
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors []ValidationError

// Error returns a combined error message for all validation errors.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	messages := make([]string, len(e))
	for i, err := range e {
		messages[i] = err.Error()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// Validator wraps the validation framework with the custom rules the
// configuration needs.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new configuration validator.
func NewValidator() (*Validator, error) {
	v := validator.New()
	if err := registerAllValidators(v); err != nil {
		return nil, err
	}
	return &Validator{validate: v}, nil
}

// registerAllValidators registers the custom validation functions.
func registerAllValidators(v *validator.Validate) error {
	validators := map[string]validator.Func{
		"selection_method": validateSelectionMethod,
	}

	for name, fn := range validators {
		if err := v.RegisterValidation(name, fn); err != nil {
			return fmt.Errorf("failed to register validator %s: %w", name, err)
		}
	}
	return nil
}

// validateSelectionMethod accepts only the selection strategies this
// system implements. Metropolis, in particular, is not one of them.
func validateSelectionMethod(fl validator.FieldLevel) bool {
	return selection.Method(fl.Field().String()).Valid()
}

// ValidateConfig validates a configuration: struct tags first, then the
// cross-field rules that tags cannot express.
func (v *Validator) ValidateConfig(config *Config) error {
	if config == nil {
		return ValidationErrors{{
			Field:   "config",
			Tag:     "required",
			Message: "configuration cannot be nil",
		}}
	}

	var errs ValidationErrors

	if err := v.validate.Struct(config); err != nil {
		fieldErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("configuration validation error: %w", err)
		}
		for _, fe := range fieldErrors {
			errs = append(errs, ValidationError{
				Field:   strings.TrimPrefix(fe.Namespace(), "Config."),
				Tag:     fe.Tag(),
				Value:   fe.Value(),
				Message: getValidationMessage(fe),
			})
		}
	}

	errs = append(errs, validateCustomRules(config)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateCustomRules enforces the cross-field invariants of a run.
func validateCustomRules(config *Config) ValidationErrors {
	var errs ValidationErrors

	// Every selection round must leave losers behind for the offspring
	// to replace.
	if config.Tournament.TournamentSize < config.Tournament.NumOffspring+2 {
		errs = append(errs, ValidationError{
			Field: "Tournament.TournamentSize",
			Tag:   "tournament_size",
			Value: config.Tournament.TournamentSize,
			Message: fmt.Sprintf("tournament size must be at least num_offspring + 2 (%d)",
				config.Tournament.NumOffspring+2),
		})
	}

	if config.Tournament.NumParents >= config.Tournament.TournamentSize {
		errs = append(errs, ValidationError{
			Field:   "Tournament.NumParents",
			Tag:     "num_parents",
			Value:   config.Tournament.NumParents,
			Message: "a tournament must draw more combatants than it keeps as parents",
		})
	}

	if config.Tournament.TournamentSize >= config.PopSize {
		errs = append(errs, ValidationError{
			Field:   "Tournament.TournamentSize",
			Tag:     "tournament_size",
			Value:   config.Tournament.TournamentSize,
			Message: fmt.Sprintf("tournament size must be smaller than pop_size (%d)", config.PopSize),
		})
	}

	if r := config.Tournament.GeographicRadius; r != 0 && r <= config.Tournament.TournamentSize {
		errs = append(errs, ValidationError{
			Field:   "Tournament.GeographicRadius",
			Tag:     "geographic_radius",
			Value:   r,
			Message: "a nonzero geographic radius must exceed the tournament size",
		})
	}

	if config.NumIslands > 0 && config.IslandID >= config.NumIslands {
		errs = append(errs, ValidationError{
			Field:   "IslandID",
			Tag:     "island_id",
			Value:   config.IslandID,
			Message: fmt.Sprintf("island_id must be smaller than num_islands (%d)", config.NumIslands),
		})
	}

	if config.MinInitLen > config.MaxInitLen {
		errs = append(errs, ValidationError{
			Field:   "MinInitLen",
			Tag:     "min_init_len",
			Value:   config.MinInitLen,
			Message: "min_init_len cannot exceed max_init_len",
		})
	}

	if config.MaxInitLen > config.MaxLength {
		errs = append(errs, ValidationError{
			Field:   "MaxInitLen",
			Tag:     "max_init_len",
			Value:   config.MaxInitLen,
			Message: "max_init_len cannot exceed max_length",
		})
	}

	return errs
}

// getValidationMessage returns a human-readable message for a field error.
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", e.Field(), e.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", e.Field(), e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param())
	case "selection_method":
		return fmt.Sprintf("%s must be one of: %s, %s, %s",
			e.Field(), selection.Tournament, selection.Roulette, selection.Lexicase)
	default:
		return fmt.Sprintf("%s failed validation for tag '%s'", e.Field(), e.Tag())
	}
}

// Global validator instance.
var (
	globalValidator *Validator
	validatorOnce   sync.Once
)

// GetValidator returns the global configuration validator.
func GetValidator() *Validator {
	validatorOnce.Do(func() {
		v, err := NewValidator()
		if err != nil {
			panic(fmt.Sprintf("failed to initialize config validator: %v", err))
		}
		globalValidator = v
	})
	return globalValidator
}

// ValidateConfiguration validates a configuration using the global
// validator.
func ValidateConfiguration(config *Config) error {
	return GetValidator().ValidateConfig(config)
}
