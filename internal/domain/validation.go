package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json field names in issue paths.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Quantities are validated by their numeric value.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank validation: %v", err))
	}
	return v
}

// ValidationIssue identifies one offending field of one input record.
type ValidationIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError groups every issue found in one input set.
type ValidationError struct {
	Issues []ValidationIssue `json:"issues"`
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	first := e.Issues[0]
	if len(e.Issues) == 1 {
		return fmt.Sprintf("validation failed: %s: %s", first.Path, first.Message)
	}
	return fmt.Sprintf("validation failed: %s: %s (and %d more)", first.Path, first.Message, len(e.Issues)-1)
}

// AsValidationError unwraps err into a *ValidationError when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}

// ValidateInventory returns the valid records and an issue per offending field.
func ValidateInventory(input string, records []InventoryRecord) ([]InventoryRecord, []ValidationIssue) {
	return validateAll(input, records)
}

// ValidateSales returns the valid sales lines and the issues of the rest.
func ValidateSales(input string, lines []SalesLine) ([]SalesLine, []ValidationIssue) {
	return validateAll(input, lines)
}

// ValidateRules returns the valid min/max rules and the issues of the rest.
func ValidateRules(input string, rules []MinMaxRule) ([]MinMaxRule, []ValidationIssue) {
	return validateAll(input, rules)
}

// ValidateCrossCheck returns the valid feed rows and the issues of the rest.
func ValidateCrossCheck(input string, records []CrossCheckRecord) ([]CrossCheckRecord, []ValidationIssue) {
	return validateAll(input, records)
}

// ValidateShelfLifeLimits returns the valid master limits and the issues of the rest.
func ValidateShelfLifeLimits(input string, limits []ShelfLifeLimit) ([]ShelfLifeLimit, []ValidationIssue) {
	return validateAll(input, limits)
}

func validateAll[T any](input string, items []T) ([]T, []ValidationIssue) {
	valid := make([]T, 0, len(items))
	var issues []ValidationIssue
	for i := range items {
		prefix := fmt.Sprintf("%s[%d]", input, i)
		recordIssues := decodeFailures(prefix, &items[i])
		if !recordUndecodable(&items[i]) {
			recordIssues = append(recordIssues, validateOne(prefix, &items[i])...)
		}
		if len(recordIssues) > 0 {
			issues = append(issues, recordIssues...)
			continue
		}
		valid = append(valid, items[i])
	}
	return valid, issues
}

func decodeFailures(prefix string, v interface{}) []ValidationIssue {
	r, ok := v.(decodeReporter)
	if !ok {
		return nil
	}
	var issues []ValidationIssue
	for _, issue := range r.issues() {
		path := prefix
		if issue.Path != "" {
			path += "." + issue.Path
		}
		issues = append(issues, ValidationIssue{Path: path, Message: issue.Message})
	}
	return issues
}

func recordUndecodable(v interface{}) bool {
	r, ok := v.(interface{ recordLevel() bool })
	return ok && r.recordLevel()
}

func validateOne(prefix string, v interface{}) []ValidationIssue {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationIssue{{Path: prefix, Message: err.Error()}}
	}

	issues := make([]ValidationIssue, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		issues = append(issues, ValidationIssue{
			Path:    prefix + "." + e.Field(),
			Message: formatValidationError(e),
		})
	}
	return issues
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "this field is required"
	case "gte":
		return "must be greater than or equal to " + e.Param()
	default:
		return "invalid value"
	}
}
