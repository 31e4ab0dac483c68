package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// TagName is the struct tag that maps settings keys to fields.
const TagName = "config"

// Stage names the step of Bind that failed.
type Stage string

const (
	StageDecode   Stage = "decode"
	StageValidate Stage = "validate"
)

// Binder turns a merged settings map into a typed struct.
//
// Decoding is weakly typed ("8080" binds to an int, "true" to a bool) and
// understands durations ("10s") and comma separated slices. Validation runs
// the go-playground/validator rules in `validate` tags and reports fields
// by their `config` key, so a failure reads "Settings.log.level" rather
// than the Go field name.
//
//	type LogSettings struct {
//	    Level  string `config:"level" validate:"oneof=debug info warn error"`
//	    Format string `config:"format" validate:"oneof=text json"`
//	}
type Binder struct {
	validator *validator.Validate
	strict    bool
}

// BindError reports which Stage of Bind failed.
type BindError struct {
	Stage Stage
	Err   error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("config %s error: %v", e.Stage, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// NewBinder returns a Binder that ignores keys with no matching field.
func NewBinder() *Binder {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get(TagName), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &Binder{validator: v}
}

// NewStrictBinder returns a Binder that rejects keys with no matching field.
func NewStrictBinder() *Binder {
	b := NewBinder()
	b.strict = true
	return b
}

// Bind decodes source into target, a pointer to a struct, and validates
// the result. target may be partially filled when validation fails.
func (b *Binder) Bind(source map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          TagName,
		WeaklyTypedInput: true,
		ErrorUnused:      b.strict,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return &BindError{Stage: StageDecode, Err: err}
	}
	if err := dec.Decode(source); err != nil {
		return &BindError{Stage: StageDecode, Err: err}
	}
	if err := b.validator.Struct(target); err != nil {
		return &BindError{Stage: StageValidate, Err: err}
	}
	return nil
}
