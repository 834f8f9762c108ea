// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package icc

import "reflect"

// hasPointers reports whether T holds anything the garbage collector would
// trace. Such payloads cannot be copied racily or placed in shared memory.
func hasPointers[T any]() bool {
	return hasPointerKinds(reflect.TypeFor[T]())
}

func hasPointerKinds(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Slice, reflect.Map,
		reflect.Interface, reflect.Func, reflect.Chan, reflect.String:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointerKinds(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointerKinds(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}
