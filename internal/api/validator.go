package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	app_errors "qwen-console/internal/errors"

	"github.com/go-playground/validator/v10"
)

// maxJSONBody caps request bodies decoded by decodeAndValidate.
const maxJSONBody = 1 << 20

var (
	// validate holds the single instance of the validator.
	validate *validator.Validate
	// once ensures that the validator is initialized only one time.
	once sync.Once
)

// getInstance returns the validator singleton. Field errors are reported under
// their JSON names so messages match what the client sent.
func getInstance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// validateRequest checks payload against its `validate` struct tags and
// returns a wrapped app_errors.ErrValidation describing every failed field.
func validateRequest(payload interface{}) error {
	err := getInstance().Struct(payload)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: an unexpected error occurred during validation: %s", app_errors.ErrValidation, err.Error())
	}

	var errorMessages []string
	for _, fieldErr := range validationErrors {
		// Example output: "Field 'api_url' failed on the 'url' tag"
		errorMessages = append(errorMessages, fmt.Sprintf("Field '%s' failed on the '%s' tag", fieldErr.Field(), fieldErr.Tag()))
	}

	return fmt.Errorf("%w: %s", app_errors.ErrValidation, strings.Join(errorMessages, "; "))
}

// decodeAndValidate reads a JSON body into dst and validates it. An empty body
// is treated as an empty object.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: invalid request payload: %v", app_errors.ErrValidation, err)
	}
	return validateRequest(dst)
}
