package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs validator tags on a request body and converts
// failures into a 400 with a readable field list.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) {
		fields := make([]string, 0, len(invalid))
		for _, f := range invalid {
			fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(f.Field()), f.Tag()))
		}
		return fiber.NewError(fiber.StatusBadRequest, "invalid fields: "+strings.Join(fields, ", "))
	}

	return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
}
