package object

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/safescript/safescript/errz"
)

// AsBool returns the Go bool held by obj.
func AsBool(obj Object) (bool, error) {
	b, ok := obj.(*Bool)
	if !ok {
		return false, TypeErrorf("expected bool (got %s)", TypeName(obj))
	}
	return b.value, nil
}

// AsString returns the Go string held by obj.
func AsString(obj Object) (string, error) {
	s, ok := obj.(*String)
	if !ok {
		return "", TypeErrorf("expected string (got %s)", TypeName(obj))
	}
	return s.value, nil
}

// AsNumber returns the float64 held by obj.
func AsNumber(obj Object) (float64, error) {
	n, ok := obj.(*Number)
	if !ok {
		return 0, TypeErrorf("expected number (got %s)", TypeName(obj))
	}
	return n.value, nil
}

// AsInt returns the value of an integral number.
func AsInt(obj Object) (int64, error) {
	n, ok := obj.(*Number)
	if !ok {
		return 0, TypeErrorf("expected number (got %s)", TypeName(obj))
	}
	if !n.IsInteger() {
		return 0, TypeErrorf("expected an integer (got %s)", n.Inspect())
	}
	return int64(n.value), nil
}

func AsList(obj Object) (*List, error) {
	list, ok := obj.(*List)
	if !ok {
		return nil, TypeErrorf("expected list (got %s)", TypeName(obj))
	}
	return list, nil
}

func AsStringSlice(obj Object) ([]string, error) {
	list, err := AsList(obj)
	if err != nil {
		return nil, err
	}
	result := make([]string, 0, len(list.items))
	for _, item := range list.items {
		s, err := AsString(item)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, nil
}

func AsMap(obj Object) (*Map, error) {
	m, ok := obj.(*Map)
	if !ok {
		return nil, TypeErrorf("expected map (got %s)", TypeName(obj))
	}
	return m, nil
}

// FromGo converts a Go value to an Object. Supported inputs are nil, bools,
// all integer and float kinds, strings, errors, Objects, and slices and
// string-keyed maps of supported values.
func FromGo(v any) (Object, error) {
	switch v := v.(type) {
	case nil:
		return Nil, nil
	case Object:
		return v, nil
	case bool:
		return NewBool(v), nil
	case string:
		return NewString(v), nil
	case float64:
		return NewNumber(v), nil
	case float32:
		return NewNumber(float64(v)), nil
	case int:
		return NewNumber(float64(v)), nil
	case int64:
		return NewNumber(float64(v)), nil
	case int32:
		return NewNumber(float64(v)), nil
	case []string:
		return NewStringList(v), nil
	case []Object:
		return NewList(v), nil
	case map[string]Object:
		return NewMap(v), nil
	case *errz.Error:
		return NewError(v), nil
	case error:
		return NewError(errz.Wrap(errz.KindUnknown, v, "")), nil
	}
	return fromGoByKind(reflect.ValueOf(v))
}

func fromGoByKind(rv reflect.Value) (Object, error) {
	switch rv.Kind() {
	case reflect.Bool:
		return NewBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NewNumber(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return NewNumber(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return NewNumber(rv.Float()), nil
	case reflect.String:
		return NewString(rv.String()), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return NewList(nil), nil
		}
		items := make([]Object, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, err := FromGo(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return NewList(items), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, TypeErrorf("unsupported map key type: %s", rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		m := NewOrderedMap()
		for _, k := range keys {
			value, err := FromGo(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return nil, err
			}
			m.Set(k, value)
		}
		return m, nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Nil, nil
		}
		return FromGo(rv.Elem().Interface())
	case reflect.Invalid:
		return Nil, nil
	}
	return nil, TypeErrorf("unsupported go type: %s", rv.Type())
}

// ToGo converts an Object to a plain Go value: nil, bool, float64, string,
// []any or map[string]any. Functions convert to themselves and errors to
// *errz.Error.
func ToGo(obj Object) any {
	if obj == nil {
		return nil
	}
	return obj.Interface()
}

// ToGoType converts an Object to a value assignable to the target type.
func ToGoType(obj Object, target reflect.Type) (reflect.Value, error) {
	if obj == nil {
		obj = Nil
	}
	if target.Kind() == reflect.Interface {
		if target.NumMethod() > 0 && reflect.TypeOf(obj).Implements(target) {
			return reflect.ValueOf(obj), nil
		}
		v := ToGo(obj)
		if v == nil {
			return reflect.Zero(target), nil
		}
		rv := reflect.ValueOf(v)
		if !rv.Type().AssignableTo(target) {
			return reflect.Value{}, TypeErrorf("cannot convert %s to %s", TypeName(obj), target)
		}
		return rv, nil
	}
	if reflect.TypeOf(obj).AssignableTo(target) {
		return reflect.ValueOf(obj), nil
	}
	switch target.Kind() {
	case reflect.Bool:
		b, err := AsBool(obj)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(b).Convert(target), nil
	case reflect.String:
		s, err := AsString(obj)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(s).Convert(target), nil
	case reflect.Float32, reflect.Float64:
		f, err := AsNumber(obj)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(f).Convert(target), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, err := AsInt(obj)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(i).Convert(target), nil
	case reflect.Slice:
		list, err := AsList(obj)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.MakeSlice(target, 0, list.Len())
		for _, item := range list.items {
			elem, err := ToGoType(item, target.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out = reflect.Append(out, elem)
		}
		return out, nil
	case reflect.Map:
		if target.Key().Kind() != reflect.String {
			break
		}
		m, err := AsMap(obj)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.MakeMapWithSize(target, m.Len())
		for _, k := range m.keys {
			elem, err := ToGoType(m.items[k], target.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(target.Key()), elem)
		}
		return out, nil
	}
	return reflect.Value{}, TypeErrorf("cannot convert %s to %s", TypeName(obj), target)
}

// MustFromGo is FromGo for values known to be convertible.
func MustFromGo(v any) Object {
	obj, err := FromGo(v)
	if err != nil {
		panic(fmt.Sprintf("object: %v", err))
	}
	return obj
}
