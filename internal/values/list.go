package values

import (
	"fmt"
	"strings"
)

// List is TokenScript's ordered, heterogeneous sequence value. Explicit
// lists (comma-joined in source) and implicit lists (space-juxtaposed) are
// both represented the same way at runtime; Implicit only affects how the
// parser built it and how it would re-render (spec §4.2/§4.3).
type List struct {
	Elements []Value
	Implicit bool
}

func (l *List) TypeName() string { return "List" }

func (l *List) String() string {
	sep := ", "
	if l.Implicit {
		sep = " "
	}
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	return strings.Join(parts, sep)
}

func (l *List) Equals(other Value) bool {
	o, ok := other.(*List)
	if !ok || len(o.Elements) != len(l.Elements) {
		return false
	}
	for i, e := range l.Elements {
		if !e.Equals(o.Elements[i]) {
			return false
		}
	}
	return true
}

func (l *List) TypeEquals(other Value) bool { return other.TypeName() == l.TypeName() }

func (l *List) DeepCopy() Value {
	elems := make([]Value, len(l.Elements))
	for i, e := range l.Elements {
		elems[i] = e.DeepCopy()
	}
	return &List{Elements: elems, Implicit: l.Implicit}
}

func (l *List) HasAttribute(name string) bool { return name == "length" }
func (l *List) GetAttribute(name string) (Value, error) {
	if name == "length" {
		return Number{Value: float64(len(l.Elements))}, nil
	}
	return nil, fmt.Errorf("List has no attribute %q", name)
}
func (l *List) SetAttribute(name string, v Value) error {
	return fmt.Errorf("List attribute %q is not assignable", name)
}

func listIndex(l *List, n Number) (int, error) {
	i := int(n.Value)
	if i < 0 {
		i += len(l.Elements)
	}
	if i < 0 || i >= len(l.Elements) {
		return 0, fmt.Errorf("List index %d out of range (length %d)", int(n.Value), len(l.Elements))
	}
	return i, nil
}

var listMethods = map[string]MethodDef{
	"length": {Fn: func(recv Value, args []Value) (Value, error) {
		return Number{Value: float64(len(recv.(*List).Elements))}, nil
	}},
	// append/extend/insert/delete/update mutate the receiver in place (spec
	// §3: "List containers are mutable") and return it, so `x.append(1);` as
	// a standalone statement updates `x` directly. Only the argument being
	// stored is deep-copied, so a source variable aliased into the list
	// can't later mutate the stored element out from under it (spec §3,
	// §8 testable property #3).
	"append": {MinArgs: 1, MaxArgs: -1, Variadic: true, Fn: func(recv Value, args []Value) (Value, error) {
		l := recv.(*List)
		for _, a := range args {
			l.Elements = append(l.Elements, a.DeepCopy())
		}
		return l, nil
	}},
	"extend": {MinArgs: 1, MaxArgs: 1, Fn: func(recv Value, args []Value) (Value, error) {
		other, ok := args[0].(*List)
		if !ok {
			return nil, fmt.Errorf("List.extend expects a List argument")
		}
		l := recv.(*List)
		for _, e := range other.Elements {
			l.Elements = append(l.Elements, e.DeepCopy())
		}
		return l, nil
	}},
	"insert": {MinArgs: 2, MaxArgs: 2, Fn: func(recv Value, args []Value) (Value, error) {
		idxNum, ok := args[0].(Number)
		if !ok {
			return nil, fmt.Errorf("List.insert index must be a Number")
		}
		l := recv.(*List)
		i := int(idxNum.Value)
		if i < 0 {
			i += len(l.Elements) + 1
		}
		if i < 0 || i > len(l.Elements) {
			return nil, fmt.Errorf("List.insert index %d out of range (length %d)", int(idxNum.Value), len(l.Elements))
		}
		v := args[1].DeepCopy()
		l.Elements = append(l.Elements, nil)
		copy(l.Elements[i+1:], l.Elements[i:])
		l.Elements[i] = v
		return l, nil
	}},
	"delete": {MinArgs: 1, MaxArgs: 1, Fn: func(recv Value, args []Value) (Value, error) {
		idxNum, ok := args[0].(Number)
		if !ok {
			return nil, fmt.Errorf("List.delete index must be a Number")
		}
		l := recv.(*List)
		i, err := listIndex(l, idxNum)
		if err != nil {
			return nil, err
		}
		l.Elements = append(l.Elements[:i], l.Elements[i+1:]...)
		return l, nil
	}},
	"update": {MinArgs: 2, MaxArgs: 2, Fn: func(recv Value, args []Value) (Value, error) {
		idxNum, ok := args[0].(Number)
		if !ok {
			return nil, fmt.Errorf("List.update index must be a Number")
		}
		l := recv.(*List)
		i, err := listIndex(l, idxNum)
		if err != nil {
			return nil, err
		}
		l.Elements[i] = args[1].DeepCopy()
		return l, nil
	}},
	"get": {MinArgs: 1, MaxArgs: 1, Fn: func(recv Value, args []Value) (Value, error) {
		idxNum, ok := args[0].(Number)
		if !ok {
			return nil, fmt.Errorf("List.get index must be a Number")
		}
		l := recv.(*List)
		i, err := listIndex(l, idxNum)
		if err != nil {
			return nil, err
		}
		return l.Elements[i], nil
	}},
	"index": {MinArgs: 1, MaxArgs: 1, Fn: func(recv Value, args []Value) (Value, error) {
		l := recv.(*List)
		for i, e := range l.Elements {
			if e.Equals(args[0]) {
				return Number{Value: float64(i)}, nil
			}
		}
		return Number{Value: -1}, nil
	}},
	"join": {MinArgs: 0, MaxArgs: 1, Fn: func(recv Value, args []Value) (Value, error) {
		sep := ", "
		if len(args) == 1 {
			s, ok := args[0].(String)
			if !ok {
				return nil, fmt.Errorf("List.join separator must be a String")
			}
			sep = s.Value
		}
		l := recv.(*List)
		parts := make([]string, len(l.Elements))
		for i, e := range l.Elements {
			parts[i] = e.String()
		}
		return String{Value: strings.Join(parts, sep)}, nil
	}},
}

func (l *List) HasMethod(name string) bool { _, ok := listMethods[name]; return ok }
func (l *List) CallMethod(name string, args []Value) (Value, error) {
	def, ok := listMethods[name]
	if !ok {
		return nil, fmt.Errorf("List has no method %q", name)
	}
	return def.Call(l.TypeName(), name, l, args)
}
