package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes caps the request body read by DecodeJSON.
const MaxBodyBytes = 1 << 20

// ErrMalformedBody indicates a body that is not a single well-formed JSON value.
var ErrMalformedBody = errors.New("malformed request body")

// TypeMismatchError reports a JSON value whose type does not match the field
// it was decoded into.
type TypeMismatchError struct {
	// Field is the dotted JSON path of the offending field
	Field string
	// Expected is the Go type the field required
	Expected string
	// Value is the JSON kind that was found ("string", "number", ...)
	Value string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("field %q: cannot use JSON %s as %s", e.Field, e.Value, e.Expected)
}

// DecodeJSON decodes the request body into the given struct.
// An empty body leaves v untouched so that validation reports the missing
// fields. Type mismatches on a named field are returned as *TypeMismatchError;
// any other failure, including data after the first value or a body that is
// not an object, wraps ErrMalformedBody.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: unexpected data after JSON value", ErrMalformedBody)
		}
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &TypeMismatchError{
			Field:    typeErr.Field,
			Expected: typeErr.Type.String(),
			Value:    typeErr.Value,
		}
	}
	return fmt.Errorf("%w: %v", ErrMalformedBody, err)
}

// ValidateRequest validates the given value through its Validate method.
// Values without one are considered valid.
func ValidateRequest(v interface{}) error {
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}
	return nil
}
