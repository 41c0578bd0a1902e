package catalog

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the validator instance for catalog records.
// Initialized in init() with custom validators.
var validate *validator.Validate

var (
	hexColor   = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	namedColor = regexp.MustCompile(`^[a-zA-Z]+$`)
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("strandcolor", validateStrandColor)
}

// validateStrandColor accepts #rgb, #rrggbb, an ANSI palette index 0-255, or
// a plain colour name.
func validateStrandColor(fl validator.FieldLevel) bool {
	return ValidColor(fl.Field().String())
}

// ValidColor reports whether s is a colour a strand may carry.
func ValidColor(s string) bool {
	s = strings.TrimSpace(s)
	if hexColor.MatchString(s) || namedColor.MatchString(s) {
		return true
	}
	n, err := strconv.Atoi(s)
	return err == nil && n >= 0 && n <= 255
}

// describeValidation flattens validator errors into one line.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Namespace()+" failed "+fe.Tag())
	}
	return strings.Join(parts, "; ")
}
