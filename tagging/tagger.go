// Package tagging assigns stable identities to the opaque objects that flow
// through intercepted calls.
//
// A Tagger gives every distinct object a per-type sequential id the first
// time it is seen in a call argument or result. The same object keeps its
// tag for the lifetime of the Tagger, so a capture can correlate the texture
// created by one command with the texture bound by a later one.
//
// Objects are identified by address: pointers, maps, channels, funcs and
// the gpucontext opaque handles (TextureView, CommandEncoder). Plain values
// such as numbers and strings are not objects and are never tagged.
package tagging

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gpuspy"
)

// objectKey identifies an object by type and address.
type objectKey struct {
	typeName string
	ptr      unsafe.Pointer
}

// Tagger implements gpuspy.ObjectTagger.
//
// Tagger is not safe for concurrent use. It is driven from the dispatch
// funnel of a single ContextSpy.
type Tagger struct {
	tags   map[objectKey]gpuspy.Tag
	nextID map[string]int
}

// New creates an empty Tagger.
func New() *Tagger {
	return &Tagger{
		tags:   make(map[objectKey]gpuspy.Tag),
		nextID: make(map[string]int),
	}
}

// TagObjects tags every object among the call's arguments and result and
// appends the tags to call.Tags in argument order, result last.
func (t *Tagger) TagObjects(call *gpuspy.CallInfo) error {
	for _, arg := range call.Arguments {
		if tag, ok := t.tag(arg); ok {
			call.Tags = append(call.Tags, tag)
		}
	}
	if tag, ok := t.tag(call.Result); ok {
		call.Tags = append(call.Tags, tag)
	}
	return nil
}

// TagObject returns the tag of obj, assigning one if obj is new.
// It returns the zero Tag when obj is not an object.
func (t *Tagger) TagObject(obj any) gpuspy.Tag {
	tag, _ := t.tag(obj)
	return tag
}

// Lookup returns the tag already assigned to obj without assigning one.
func (t *Tagger) Lookup(obj any) (gpuspy.Tag, bool) {
	key, ok := keyOf(obj)
	if !ok {
		return gpuspy.Tag{}, false
	}
	tag, ok := t.tags[key]
	return tag, ok
}

// Len returns the number of tagged objects.
func (t *Tagger) Len() int {
	return len(t.tags)
}

// Count returns the number of tagged objects of the given type name.
func (t *Tagger) Count(typeName string) int {
	return t.nextID[typeName]
}

// Reset forgets every tag. Ids restart at zero for each type.
func (t *Tagger) Reset() {
	clear(t.tags)
	clear(t.nextID)
}

func (t *Tagger) tag(obj any) (gpuspy.Tag, bool) {
	key, ok := keyOf(obj)
	if !ok {
		return gpuspy.Tag{}, false
	}
	if tag, ok := t.tags[key]; ok {
		return tag, true
	}
	id := t.nextID[key.typeName]
	t.nextID[key.typeName] = id + 1
	tag := gpuspy.Tag{
		TypeName:    key.typeName,
		ID:          id,
		DisplayText: DisplayText(key.typeName, id),
	}
	t.tags[key] = tag
	return tag, true
}

// DisplayText formats the human-readable label of a tag.
func DisplayText(typeName string, id int) string {
	return fmt.Sprintf("%s - ID: %d", typeName, id)
}

// keyOf derives the identity of obj. Nil objects have no identity.
func keyOf(obj any) (objectKey, bool) {
	switch h := obj.(type) {
	case nil:
		return objectKey{}, false
	case gpucontext.TextureView:
		if h.IsNil() {
			return objectKey{}, false
		}
		return objectKey{typeName: "TextureView", ptr: h.Pointer()}, true
	case gpucontext.CommandEncoder:
		if h.IsNil() {
			return objectKey{}, false
		}
		return objectKey{typeName: "CommandEncoder", ptr: h.Pointer()}, true
	}

	v := reflect.ValueOf(obj)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if v.IsNil() {
			return objectKey{}, false
		}
		return objectKey{typeName: typeName(v.Type()), ptr: v.UnsafePointer()}, true
	}
	return objectKey{}, false
}

// typeName returns the name used to group ids: the element name for
// pointers to named types, the type string otherwise.
func typeName(t reflect.Type) string {
	if t.Kind() == reflect.Pointer && t.Elem().Name() != "" {
		return t.Elem().Name()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
