package tlang

import (
	"fmt"
	"reflect"

	"github.com/funvibe/tlang/internal/evaluator"
	"github.com/funvibe/tlang/internal/typesystem"
)

// Char marks a Go rune that should become a char value. Plain runes are
// int32 and convert to int.
type Char rune

// Marshaller handles conversion between Go and tlang values.
type Marshaller struct{}

func NewMarshaller() *Marshaller {
	return &Marshaller{}
}

// ToValue converts a Go value to a tlang Object.
func (m *Marshaller) ToValue(val interface{}) (evaluator.Object, error) {
	if val == nil {
		return nil, fmt.Errorf("cannot convert nil: tlang has no null value")
	}

	// Check if already an Object
	if obj, ok := val.(evaluator.Object); ok {
		return obj, nil
	}
	if c, ok := val.(Char); ok {
		return &evaluator.Char{Value: rune(c)}, nil
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &evaluator.Integer{Value: v.Int()}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return &evaluator.Integer{Value: int64(v.Uint())}, nil
	case reflect.Float32, reflect.Float64:
		return &evaluator.Float{Value: v.Float()}, nil
	case reflect.Bool:
		return &evaluator.Boolean{Value: v.Bool()}, nil
	case reflect.String:
		return &evaluator.String{Value: v.String()}, nil
	case reflect.Slice, reflect.Array:
		return m.sliceToArray(v)
	}
	return nil, fmt.Errorf("unsupported Go type %s", v.Type())
}

// sliceToArray builds a homogeneous array. Ints mixed with floats widen
// to a float array, as in array literals.
func (m *Marshaller) sliceToArray(v reflect.Value) (*evaluator.Array, error) {
	if v.Len() == 0 {
		return nil, fmt.Errorf("cannot convert empty %s: arrays need an element type", v.Type())
	}

	elements := make([]evaluator.Object, v.Len())
	var elem typesystem.Type
	for i := 0; i < v.Len(); i++ {
		obj, err := m.ToValue(v.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if _, nested := obj.(*evaluator.Array); nested {
			return nil, fmt.Errorf("element %d: multidimensional arrays are not supported", i)
		}
		t := obj.RuntimeType()
		switch {
		case elem == nil, typesystem.Equal(elem, t):
			elem = t
		case typesystem.IsKind(elem, typesystem.KindFloat) && typesystem.IsKind(t, typesystem.KindInt),
			typesystem.IsKind(elem, typesystem.KindInt) && typesystem.IsKind(t, typesystem.KindFloat):
			elem = typesystem.Float
		default:
			return nil, fmt.Errorf("element %d: array values must all be of the same type: %s and %s", i, elem, t)
		}
		elements[i] = obj
	}

	if typesystem.IsKind(elem, typesystem.KindFloat) {
		for i, el := range elements {
			if n, ok := el.(*evaluator.Integer); ok {
				elements[i] = &evaluator.Float{Value: float64(n.Value)}
			}
		}
	}
	return &evaluator.Array{ElemType: elem, Elements: elements}, nil
}

// FromValue converts a tlang Object to a Go value:
//
//	int     int64
//	float   float64
//	bool    bool
//	string  string
//	char    rune
//	array   []interface{} (nil for unset slots)
//	struct  map[string]interface{} (unset members are omitted)
func (m *Marshaller) FromValue(obj evaluator.Object) (interface{}, error) {
	switch o := obj.(type) {
	case nil, *evaluator.Nil:
		return nil, nil
	case *evaluator.Integer:
		return o.Value, nil
	case *evaluator.Float:
		return o.Value, nil
	case *evaluator.Boolean:
		return o.Value, nil
	case *evaluator.String:
		return o.Value, nil
	case *evaluator.Char:
		return o.Value, nil
	case *evaluator.Array:
		return m.arrayToSlice(o)
	case *evaluator.StructInstance:
		return m.structToMap(o)
	}
	return nil, fmt.Errorf("unsupported type for conversion: %s", obj.Type())
}

func (m *Marshaller) arrayToSlice(a *evaluator.Array) ([]interface{}, error) {
	result := make([]interface{}, len(a.Elements))
	for i, el := range a.Elements {
		val, err := m.FromValue(el)
		if err != nil {
			return nil, err
		}
		result[i] = val
	}
	return result, nil
}

func (m *Marshaller) structToMap(s *evaluator.StructInstance) (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(s.Fields))
	for _, name := range s.Fields {
		obj, ok := s.Env.Get(name)
		if !ok {
			continue
		}
		val, err := m.FromValue(obj)
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", name, err)
		}
		result[name] = val
	}
	return result, nil
}
