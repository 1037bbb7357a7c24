package values

import (
	"fmt"
	"strings"
)

// Dictionary is TokenScript's ordered string-keyed map value (spec §4.3).
type Dictionary struct {
	Map *OrderedMap
}

// NewDictionary returns an empty Dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{Map: NewOrderedMap()}
}

func (d *Dictionary) TypeName() string { return "Dictionary" }

func (d *Dictionary) String() string {
	keys := d.Map.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		v, _ := d.Map.Get(k)
		parts[i] = k + ": " + v.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (d *Dictionary) Equals(other Value) bool {
	o, ok := other.(*Dictionary)
	return ok && d.Map.Equals(o.Map)
}
func (d *Dictionary) TypeEquals(other Value) bool { return other.TypeName() == d.TypeName() }
func (d *Dictionary) DeepCopy() Value             { return &Dictionary{Map: d.Map.Clone()} }

func (d *Dictionary) HasAttribute(name string) bool {
	_, ok := d.Map.Get(name)
	return ok || name == "length"
}
func (d *Dictionary) GetAttribute(name string) (Value, error) {
	if name == "length" {
		return Number{Value: float64(d.Map.Len())}, nil
	}
	if v, ok := d.Map.Get(name); ok {
		return v, nil
	}
	return nil, fmt.Errorf("Dictionary has no key %q", name)
}
func (d *Dictionary) SetAttribute(name string, v Value) error {
	d.Map.Set(name, v.DeepCopy())
	return nil
}

var dictionaryMethods = map[string]MethodDef{
	// set/delete/clear mutate the receiver in place and return it, matching
	// SetAttribute below and the dotted-lvalue assignment path (`d.foo = v`),
	// so both ways of mutating a Dictionary agree (spec §3: "Dictionary
	// containers are mutable"). Stored values are still deep-copied.
	"set": {MinArgs: 2, MaxArgs: 2, Fn: func(recv Value, args []Value) (Value, error) {
		key, ok := args[0].(String)
		if !ok {
			return nil, fmt.Errorf("Dictionary.set key must be a String")
		}
		d := recv.(*Dictionary)
		d.Map.Set(key.Value, args[1].DeepCopy())
		return d, nil
	}},
	"get": {MinArgs: 1, MaxArgs: 1, Fn: func(recv Value, args []Value) (Value, error) {
		key, ok := args[0].(String)
		if !ok {
			return nil, fmt.Errorf("Dictionary.get key must be a String")
		}
		d := recv.(*Dictionary)
		v, ok := d.Map.Get(key.Value)
		if !ok {
			// spec §4.3: "get(k) → Null if absent", not an error.
			return Null{}, nil
		}
		return v, nil
	}},
	"delete": {MinArgs: 1, MaxArgs: 1, Fn: func(recv Value, args []Value) (Value, error) {
		key, ok := args[0].(String)
		if !ok {
			return nil, fmt.Errorf("Dictionary.delete key must be a String")
		}
		d := recv.(*Dictionary)
		d.Map.Delete(key.Value)
		return d, nil
	}},
	"keys": {Fn: func(recv Value, args []Value) (Value, error) {
		d := recv.(*Dictionary)
		keys := d.Map.Keys()
		elems := make([]Value, len(keys))
		for i, k := range keys {
			elems[i] = String{Value: k}
		}
		return &List{Elements: elems}, nil
	}},
	"values": {Fn: func(recv Value, args []Value) (Value, error) {
		d := recv.(*Dictionary)
		keys := d.Map.Keys()
		elems := make([]Value, len(keys))
		for i, k := range keys {
			v, _ := d.Map.Get(k)
			elems[i] = v
		}
		return &List{Elements: elems}, nil
	}},
	"key_exists": {MinArgs: 1, MaxArgs: 1, Fn: func(recv Value, args []Value) (Value, error) {
		key, ok := args[0].(String)
		if !ok {
			return nil, fmt.Errorf("Dictionary.key_exists key must be a String")
		}
		d := recv.(*Dictionary)
		_, exists := d.Map.Get(key.Value)
		return Boolean{Value: exists}, nil
	}},
	"clear": {Fn: func(recv Value, args []Value) (Value, error) {
		d := recv.(*Dictionary)
		d.Map = NewOrderedMap()
		return d, nil
	}},
	"length": {Fn: func(recv Value, args []Value) (Value, error) {
		return Number{Value: float64(recv.(*Dictionary).Map.Len())}, nil
	}},
}

func init() {
	// keyExists is the spec §4.3 camelCase alias for key_exists.
	dictionaryMethods["keyExists"] = dictionaryMethods["key_exists"]
}

func (d *Dictionary) HasMethod(name string) bool { _, ok := dictionaryMethods[name]; return ok }
func (d *Dictionary) CallMethod(name string, args []Value) (Value, error) {
	def, ok := dictionaryMethods[name]
	if !ok {
		return nil, fmt.Errorf("Dictionary has no method %q", name)
	}
	return def.Call(d.TypeName(), name, d, args)
}
