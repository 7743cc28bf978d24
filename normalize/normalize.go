// Package normalize turns decoded request payloads into storage records.
package normalize

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/casedesk-api/identifier"
	"github.com/linesmerrill/casedesk-api/models"
)

// Mode selects between full create records and merge-patch updates
type Mode int

const (
	// Create emits every declared field, applying defaults
	Create Mode = iota
	// PartialUpdate emits only the fields the caller sent
	PartialUpdate
)

var (
	// ErrValidation is returned when a required field is missing
	ErrValidation = errors.New("validation failed")
	// ErrInvalidValue is returned for values outside their allowed set
	ErrInvalidValue = errors.New("invalid value")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// optional is satisfied by every models.Optional[T]
type optional interface {
	State() models.State
	Interface() interface{}
	Zero() interface{}
}

// enum is satisfied by the enumerated string types in models
type enum interface {
	Valid() bool
}

// Normalize converts payload, a struct or pointer to struct whose fields carry
// bson tags, into a record ready for storage. Nothing is returned unless
// every field converts cleanly.
func Normalize(payload interface{}, mode Mode) (bson.M, error) {
	rv := reflect.ValueOf(payload)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, fmt.Errorf("%w: empty payload", ErrValidation)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("normalize: unsupported payload type %T", payload)
	}

	if mode == Create {
		if err := validate.Struct(rv.Interface()); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrValidation, describe(err))
		}
	}
	return normalizeStruct(rv, mode)
}

func normalizeStruct(rv reflect.Value, mode Mode) (bson.M, error) {
	rt := rv.Type()
	out := bson.M{}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := fieldName(sf)
		if name == "-" {
			continue
		}

		fv := rv.Field(i).Interface()
		opt, isOptional := fv.(optional)
		if !isOptional {
			val, err := coerce(fv)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			out[name] = val
			continue
		}

		switch opt.State() {
		case models.Present:
			val, err := coerce(opt.Interface())
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			out[name] = val
		case models.Null:
			if mode == Create {
				if def, ok := sf.Tag.Lookup("default"); ok {
					val, err := defaultValue(def, opt.Zero())
					if err != nil {
						return nil, fmt.Errorf("%s: %w", name, err)
					}
					out[name] = val
					continue
				}
			}
			out[name] = nil
		case models.Unset:
			if mode == PartialUpdate {
				continue
			}
			if def, ok := sf.Tag.Lookup("default"); ok {
				val, err := defaultValue(def, opt.Zero())
				if err != nil {
					return nil, fmt.Errorf("%s: %w", name, err)
				}
				out[name] = val
				continue
			}
			out[name] = nil
		}
	}
	return out, nil
}

// coerce maps a single payload value onto the types stored in MongoDB
func coerce(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case models.Date:
		return t.Midnight(), nil
	case models.RefID:
		return identifier.Decode(string(t))
	case time.Time:
		return t.UTC(), nil
	case enum:
		if !t.Valid() {
			return nil, fmt.Errorf("%w: %v", ErrInvalidValue, t)
		}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return coerce(rv.Elem().Interface())
	case reflect.String:
		return rv.String(), nil
	case reflect.Slice:
		if rv.IsNil() {
			return nil, nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Bytes(), nil
		}
		out := make(bson.A, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			val, err := coerce(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = val
		}
		return out, nil
	case reflect.Map:
		if rv.IsNil() {
			return nil, nil
		}
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map keys must be strings", ErrInvalidValue)
		}
		out := bson.M{}
		iter := rv.MapRange()
		for iter.Next() {
			val, err := coerce(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			out[iter.Key().String()] = val
		}
		return out, nil
	case reflect.Struct:
		return normalizeStruct(rv, Create)
	}
	return v, nil
}

// defaultValue parses a default tag into the field's type and coerces it
func defaultValue(raw string, zero interface{}) (interface{}, error) {
	typ := reflect.TypeOf(zero)
	if typ == nil {
		return nil, fmt.Errorf("default %q on untyped field", raw)
	}
	switch typ.Kind() {
	case reflect.String:
		return coerce(reflect.ValueOf(raw).Convert(typ).Interface())
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("default %q: %w", raw, err)
		}
		return b, nil
	case reflect.Slice:
		if raw == "[]" {
			return bson.A{}, nil
		}
	}
	return nil, fmt.Errorf("unsupported default %q for %s", raw, typ)
}

func fieldName(sf reflect.StructField) string {
	tag := sf.Tag.Get("bson")
	if tag == "" {
		return strings.ToLower(sf.Name)
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return strings.ToLower(sf.Name)
	}
	return name
}

// describe lists the failing fields by their json names
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
