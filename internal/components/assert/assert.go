// Package assert panics on violated invariants, mostly missing collaborators at
// construction time.
package assert

import "reflect"

// NotNil also catches typed nils, a nil *Store passed as an interface is still nil here.
func NotNil(value any) {
	if value == nil {
		panic("expected value to be not nil")
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if v.IsNil() {
			panic("expected " + v.Type().String() + " to be not nil")
		}
	}
}

func NotEmptyStr(str string) {
	if str == "" {
		panic("expected string to be non-empty")
	}
}
