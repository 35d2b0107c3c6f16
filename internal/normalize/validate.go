// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrValidation marks a raw record that failed boundary validation. The
// record is replaced by a fallback; the run continues.
var ErrValidation = errors.New("raw record failed validation")

var (
	vOnce sync.Once
	vInst *validator.Validate
)

// validate returns the package validator, reporting fields by their JSON
// names.
func validate() *validator.Validate {
	vOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})
		vInst = v
	})
	return vInst
}

// validateStruct checks s and converts validator failures into an
// ErrValidation listing the offending fields.
func validateStruct(s any) error {
	err := validate().Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	fields := make([]string, 0, len(ves))
	for _, fe := range ves {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(fields, ", "))
}
