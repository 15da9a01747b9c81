package hostmem

import (
	"reflect"
	"sync"
	"unsafe"

	"github.com/pkg/errors"
)

// Layout describes how elements of one type are laid out in raw memory.
type Layout struct {
	Size  int
	Align int
}

type layoutEntry struct {
	layout Layout
	err    error
}

var layouts sync.Map // reflect.Type -> layoutEntry

// LayoutOf returns the cached layout of T. It fails for zero-size types and
// for types that hold Go pointers, since raw blocks are not scanned by the
// garbage collector.
func LayoutOf[T any]() (Layout, error) {
	typ := reflect.TypeFor[T]()
	if e, ok := layouts.Load(typ); ok {
		entry := e.(layoutEntry)
		return entry.layout, entry.err
	}

	var zero T
	entry := layoutEntry{layout: Layout{
		Size:  int(unsafe.Sizeof(zero)),
		Align: int(unsafe.Alignof(zero)),
	}}
	switch {
	case entry.layout.Size == 0:
		entry.err = errors.Wrapf(ErrZeroSize, "type %s", typ)
	case !pointerFree(typ):
		entry.err = errors.Wrapf(ErrPointerType, "type %s", typ)
	}
	layouts.Store(typ, entry)
	return entry.layout, entry.err
}

// MustLayoutOf is like LayoutOf but panics on error.
func MustLayoutOf[T any]() Layout {
	l, err := LayoutOf[T]()
	if err != nil {
		panic(err)
	}
	return l
}

func pointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || pointerFree(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if !pointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
