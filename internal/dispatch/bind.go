package dispatch

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bizdir/bizdir/internal/shared"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// Bind decodes the JSON request body into dst and validates its `validate` tags.
// Malformed or invalid input is reported as a validation error.
func Bind(r *http.Request, dst any) error {
	if r.Body == nil {
		return shared.Validation("request body required")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return shared.Validation("request body required")
		}
		return shared.Validation("malformed JSON body")
	}
	return Validate(dst)
}

// Validate runs struct validation on v.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return shared.Validation("invalid request")
	}
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = describe(fe)
	}
	return shared.ValidationFields("invalid request", fields)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// Page is a limit/offset window read from the query string.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Paging defaults.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// PageFromQuery reads ?limit= and ?offset=.
func PageFromQuery(r *http.Request) (Page, error) {
	page := Page{Limit: DefaultLimit}
	q := r.URL.Query()
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxLimit {
			return Page{}, shared.ValidationFields("invalid paging", map[string]string{"limit": "must be between 1 and " + strconv.Itoa(MaxLimit)})
		}
		page.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Page{}, shared.ValidationFields("invalid paging", map[string]string{"offset": "must be a non-negative integer"})
		}
		page.Offset = n
	}
	return page, nil
}
