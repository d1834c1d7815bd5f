package validation

import (
	"errors"
	"fmt"
	"net/netip"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// validate is safe for concurrent use and caches struct metadata,
// so one instance serves the whole process.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// "notblank" rejects whitespace-only strings, which "required" accepts
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}

	// Report JSON field names instead of Go field names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	return v
}

// IsValidIP reports whether s is a syntactically valid IPv4 or IPv6 address.
// It never fails; empty input is simply invalid.
func IsValidIP(s string) bool {
	return validate.Var(s, "required,ip") == nil
}

// CanonicalIP validates s and returns its canonical textual form, so that
// "0:0::1" and "::1" (or "::ffff:8.8.8.8" and "8.8.8.8") share one key.
func CanonicalIP(s string) (string, bool) {
	if !IsValidIP(s) {
		return "", false
	}

	addr, err := netip.ParseAddr(s)
	if err != nil {
		return "", false
	}

	return addr.Unmap().String(), true
}

// Struct validates v using its `validate` tags and returns a readable error
// naming the first offending field.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Errorf("field '%s' failed on '%s'", fe.Field(), fe.Tag())
	}

	return err
}
