package middleware

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "revpulse/internal/errors"
)

// DefaultMaxBodySize bounds decoded request bodies
const DefaultMaxBodySize = 1 << 20

// Validator decodes JSON request bodies and validates them against struct tags
type Validator struct {
	validate    *validator.Validate
	maxBodySize int64
}

// NewValidator creates a validator that reports fields by their JSON names
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterValidation("label", isLabel)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v, maxBodySize: DefaultMaxBodySize}
}

// DecodeAndValidate decodes the JSON body of r into dst and validates it.
// The returned error is an *apierrors.APIError ready for the error handler.
func (v *Validator) DecodeAndValidate(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return apierrors.NewValidationError("request body is required")
	}

	body := http.MaxBytesReader(nil, r.Body, v.maxBodySize)
	if err := render.DecodeJSON(body, dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apierrors.NewWithDetails(
				http.StatusRequestEntityTooLarge,
				"PAYLOAD_TOO_LARGE",
				"Request body exceeds maximum allowed size",
				map[string]interface{}{"max_size": v.maxBodySize},
			)
		}
		if errors.Is(err, io.EOF) {
			return apierrors.NewValidationError("request body is required")
		}
		return apierrors.InvalidRequestWithError(err)
	}

	return v.ValidateStruct(dst)
}

// ValidateStruct validates a struct and returns validation errors
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fieldPath(fe),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// ContentTypeValidator rejects bodies that are not one of contentTypes
func ContentTypeValidator(errorHandler *apierrors.ErrorHandler, contentTypes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			for _, allowed := range contentTypes {
				if strings.HasPrefix(contentType, allowed) {
					next.ServeHTTP(w, r)
					return
				}
			}

			errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusUnsupportedMediaType,
				"UNSUPPORTED_MEDIA_TYPE",
				"Unsupported content type",
				map[string]interface{}{
					"content_type": contentType,
					"allowed":      contentTypes,
				},
			))
		})
	}
}

// fieldPath drops the top-level struct name from the namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func formatValidationError(err validator.FieldError) string {
	field := fieldPath(err)
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "label":
		return fmt.Sprintf("%s must be a non-blank label without control characters", field)
	case "unique":
		return fmt.Sprintf("%s must not contain duplicates", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isLabel accepts non-blank strings free of control characters, the shape
// of location, period and item names.
func isLabel(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if strings.TrimSpace(s) == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
