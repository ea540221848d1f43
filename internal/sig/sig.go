// Package sig compiles a handler function's signature into an ordered
// parameter specification, and owns the reflective call that turns a bound
// input struct back into a command result.
//
// The reflection pass happens exactly once, at registration time. Dispatch
// only ever sees the compiled Signature.
package sig

import (
	"context"
	"iter"
	"reflect"
	"strings"

	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/funcli/internal/clierr"
)

// TagKey is the struct tag that names a parameter on an input struct field.
const TagKey = "funcli"

var (
	ctxType  = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType  = reflect.TypeOf((*error)(nil)).Elem()
	seqType  = reflect.TypeOf((*iter.Seq[any])(nil)).Elem()
	seq2Type = reflect.TypeOf((*iter.Seq2[any, error])(nil)).Elem()
)

// supportedTypes maps the Go field types a handler may declare to the cty
// type used for coercion. Extending the supported set means extending this
// table.
var supportedTypes = map[reflect.Kind]cty.Type{
	reflect.String:  cty.String,
	reflect.Int:     cty.Number,
	reflect.Float64: cty.Number,
	reflect.Bool:    cty.Bool,
}

// ParameterSpec describes one parameter derived from an input struct field.
// Specs are created at registration time and immutable afterwards.
type ParameterSpec struct {
	Name       string
	Position   int
	Type       cty.Type
	GoType     reflect.Type
	HasDefault bool
	Default    cty.Value // valid only when HasDefault
	RawDefault string    // the default tag text, shown by the flag layer
	Help       string

	fieldIndex int
}

// Positional reports whether the parameter must be supplied by position.
// Parameters without a default are positional; a default makes an option.
func (p ParameterSpec) Positional() bool { return !p.HasDefault }

// Signature is the compiled form of a registered handler.
type Signature struct {
	Params []ParameterSpec

	inputType reflect.Type // the Args struct type, nil when the handler takes none
	fn        reflect.Value
	streaming bool
	wrapSeq   bool // handler returns iter.Seq[any] rather than iter.Seq2
	hasValue  bool // single-result handler returns (T, error), not just error
}

// Streaming reports whether the handler lazily produces a sequence of items
// rather than a single value. Decided from the return type alone; no user
// code runs to find out.
func (s *Signature) Streaming() bool { return s.streaming }

// NewInput returns a freshly constructed input struct pointer for one
// invocation, or nil when the handler declares no arguments.
func (s *Signature) NewInput() any {
	if s.inputType == nil {
		return nil
	}
	return reflect.New(s.inputType).Interface()
}

// Result is the tagged outcome of invoking a handler: either a single value
// or a lazily produced sequence. A streaming Result is single-pass.
type Result struct {
	Streaming bool
	HasValue  bool                 // single results from error-only handlers carry no value
	Value     any                  // valid when !Streaming && HasValue
	Seq       iter.Seq2[any, error] // valid when Streaming
}

// Introspect compiles fn into a Signature. It fails when fn matches no
// supported handler shape, when an exported input field lacks a funcli tag,
// when a field type is outside the supported set, or when a default tag
// value does not coerce to the field's type.
func Introspect(fn any) (*Signature, error) {
	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, errors.Wrap(clierr.ErrBadHandler, "handler must be a non-nil function")
	}
	rt := rv.Type()

	s := &Signature{fn: rv}

	switch rt.NumIn() {
	case 1:
		// ctx only
	case 2:
		in := rt.In(1)
		if in.Kind() != reflect.Ptr || in.Elem().Kind() != reflect.Struct {
			return nil, errors.Wrapf(clierr.ErrBadHandler, "second parameter must be a pointer to a struct, got %s", in)
		}
		s.inputType = in.Elem()
	default:
		return nil, errors.Wrap(clierr.ErrBadHandler, "handler must take (ctx) or (ctx, *Args)")
	}
	if rt.In(0) != ctxType {
		return nil, errors.Wrap(clierr.ErrBadHandler, "first parameter must be context.Context")
	}
	if rt.IsVariadic() {
		return nil, errors.Wrap(clierr.ErrBadHandler, "variadic handlers are not supported")
	}

	switch rt.NumOut() {
	case 1:
		switch rt.Out(0) {
		case errType:
			// error-only single result
		case seqType:
			s.streaming, s.wrapSeq = true, true
		case seq2Type:
			s.streaming = true
		default:
			return nil, errors.Wrapf(clierr.ErrBadHandler, "single return value must be error, iter.Seq[any], or iter.Seq2[any, error], got %s", rt.Out(0))
		}
	case 2:
		if rt.Out(1) != errType {
			return nil, errors.Wrapf(clierr.ErrBadHandler, "second return value must be error, got %s", rt.Out(1))
		}
		s.hasValue = true
	default:
		return nil, errors.Wrap(clierr.ErrBadHandler, "handler must return error, (T, error), or an iterator")
	}

	if s.inputType != nil {
		params, err := introspectInput(s.inputType)
		if err != nil {
			return nil, err
		}
		s.Params = params
	}
	return s, nil
}

// introspectInput walks the exported fields of the input struct and builds
// the ordered parameter specification.
func introspectInput(st reflect.Type) ([]ParameterSpec, error) {
	var params []ParameterSpec
	seen := make(map[string]struct{})

	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		if !field.IsExported() {
			continue
		}

		tag, ok := field.Tag.Lookup(TagKey)
		if !ok || tag == "" {
			return nil, errors.Wrapf(clierr.ErrUnannotatedParameter, "field %s.%s", st.Name(), field.Name)
		}
		name := strings.Split(tag, ",")[0]
		if name == "-" {
			continue
		}
		if _, dup := seen[name]; dup {
			return nil, errors.Errorf("duplicate parameter name %q on %s", name, st.Name())
		}
		seen[name] = struct{}{}

		ctyType, ok := supportedTypes[field.Type.Kind()]
		if !ok {
			return nil, errors.Wrapf(clierr.ErrUnsupportedType, "field %s.%s has type %s", st.Name(), field.Name, field.Type)
		}

		p := ParameterSpec{
			Name:       name,
			Position:   len(params),
			Type:       ctyType,
			GoType:     field.Type,
			Help:       field.Tag.Get("help"),
			fieldIndex: i,
		}

		if raw, ok := field.Tag.Lookup("default"); ok {
			val, err := Coerce(p, raw)
			if err != nil {
				return nil, errors.Wrapf(err, "default for parameter %q", name)
			}
			p.HasDefault = true
			p.Default = val
			p.RawDefault = raw
		}
		params = append(params, p)
	}
	return params, nil
}

// truthy and falsy are the recognized boolean tokens, compared
// case-insensitively.
var (
	truthy = map[string]bool{"true": true, "1": true, "yes": true}
	falsy  = map[string]bool{"false": true, "0": true, "no": true}
)

// Coerce converts one raw command-line token to the parameter's declared
// type. Text is passed through untouched; numbers parse as base-10; booleans
// accept true/1/yes and false/0/no.
func Coerce(p ParameterSpec, token string) (cty.Value, error) {
	switch p.Type {
	case cty.String:
		return cty.StringVal(token), nil
	case cty.Bool:
		switch lower := strings.ToLower(token); {
		case truthy[lower]:
			return cty.True, nil
		case falsy[lower]:
			return cty.False, nil
		default:
			return cty.NilVal, errors.Errorf("%q is not a recognized boolean token", token)
		}
	case cty.Number:
		val, err := convert.Convert(cty.StringVal(token), cty.Number)
		if err != nil {
			return cty.NilVal, errors.Wrapf(err, "parse %q as a number", token)
		}
		return val, nil
	default:
		return cty.NilVal, errors.Wrapf(clierr.ErrUnsupportedType, "parameter %q declared as %s", p.Name, p.Type.FriendlyName())
	}
}

// SetField stores a coerced value into the parameter's field on the input
// struct. Fractional numbers destined for an int field fail here.
func (p ParameterSpec) SetField(input any, val cty.Value) error {
	field := reflect.ValueOf(input).Elem().Field(p.fieldIndex)
	return gocty.FromCtyValue(val, field.Addr().Interface())
}

// Call invokes the handler with the bound input struct. The returned Result
// is consumed exactly once by the streaming executor. Handler errors from a
// single-result handler surface here; streaming errors surface as the
// sequence is drained.
func (s *Signature) Call(ctx context.Context, input any) (*Result, error) {
	args := []reflect.Value{reflect.ValueOf(ctx)}
	if s.inputType != nil {
		if input == nil {
			input = s.NewInput()
		}
		args = append(args, reflect.ValueOf(input))
	}
	out := s.fn.Call(args)

	if s.streaming {
		if s.wrapSeq {
			seq := out[0].Interface().(iter.Seq[any])
			return &Result{Streaming: true, Seq: func(yield func(any, error) bool) {
				for v := range seq {
					if !yield(v, nil) {
						return
					}
				}
			}}, nil
		}
		return &Result{Streaming: true, Seq: out[0].Interface().(iter.Seq2[any, error])}, nil
	}

	errIdx := 0
	res := &Result{}
	if s.hasValue {
		res.HasValue = true
		res.Value = out[0].Interface()
		errIdx = 1
	}
	if e := out[errIdx]; !e.IsNil() {
		return nil, e.Interface().(error)
	}
	return res, nil
}
