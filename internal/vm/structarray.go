package vm

import (
	"github.com/vela-lang/vela/internal/rterror"
	"github.com/vela-lang/vela/internal/value"
)

// execNewStruct builds a struct instance from a field-name template
// constant plus fieldCount values popped off the stack. Struct instances
// are represented as NamedTuple values (§3.1's struct model maps onto the
// same named-fields shape a NamedTuple already has); the constant at
// typeConstIdx supplies the field name order, emitted once per struct
// definition by the lowerer rather than re-derived at each construction
// site.
func (vm *VM) execNewStruct(frame *Frame, fieldCount, typeConstIdx int) error {
	template := value.AsNamedTuple(frame.Chunk.Constants[typeConstIdx])
	elems := vm.popArgs(frame, fieldCount)
	if len(elems) != len(template.Keys) {
		return &rterror.ArgumentError{Message: "struct literal field count mismatch"}
	}
	frame.Push(value.NamedTupleValueTyped(template.TypeID, template.Keys, elems))
	return nil
}

// execGetField resolves fieldName against the instance's key list at run
// time rather than by a compiled-in position: the front end has no static
// per-variable type inference, so it cannot know a field's slot index at
// compile time in general (only that the name exists on whatever struct
// flows through at runtime).
func (vm *VM) execGetField(frame *Frame, fieldName string) error {
	inst := frame.Pop()
	nt := value.AsNamedTuple(inst)
	v, ok := nt.Get(fieldName)
	if !ok {
		return &rterror.ArgumentError{Message: "type has no field " + fieldName}
	}
	frame.Push(v)
	return nil
}

// execSetField mutates a struct field in place: NamedTuple.Elems is a
// slice, so writing through it is visible to every other Value sharing
// the same backing array, matching the aliasing behavior containers
// already have (§8 property 6) rather than giving structs copy semantics
// arrays/memory don't have.
func (vm *VM) execSetField(frame *Frame, fieldName string) error {
	val := frame.Pop()
	inst := frame.Pop()
	nt := value.AsNamedTuple(inst)
	for i, k := range nt.Keys {
		if k == fieldName {
			nt.Elems[i] = val
			return nil
		}
	}
	return &rterror.ArgumentError{Message: "type has no field " + fieldName}
}

// execNewArray builds a 1-D array literal from the top count stack values,
// with the element kind promoted across the elements the same way
// broadcast results and collect promote theirs.
func (vm *VM) execNewArray(frame *Frame, count int) error {
	elems := vm.popArgs(frame, count)
	frame.Push(value.ArrayValue(value.NewArrayFrom(elems)))
	return nil
}

// arrayIndices accepts either a bare Int64 (the `a[i]` sugar on a 1-D
// array) or a Tuple of indices (multi-dimensional access).
func arrayIndices(idx value.Value) []int {
	if idx.Kind == value.KindTuple {
		t := value.AsTuple(idx)
		out := make([]int, len(t.Elems))
		for i, e := range t.Elems {
			out[i] = int(value.AsInt64(e))
		}
		return out
	}
	return []int{int(value.AsInt64(idx))}
}

func (vm *VM) execGetIndex(frame *Frame) error {
	idx := frame.Pop()
	container := frame.Pop()
	switch container.Kind {
	case value.KindArray:
		arr := value.AsArray(container)
		v, err := arr.Get(arrayIndices(idx)...)
		if err != nil {
			return &rterror.DimensionMismatch{Message: err.Error()}
		}
		frame.Push(v)
	case value.KindMemory:
		m := container.Data.(*value.Memory)
		i := int(value.AsInt64(idx))
		v, err := m.Get(i)
		if err != nil {
			return &rterror.StringIndexError{Index: i}
		}
		frame.Push(v)
	case value.KindTuple:
		t := value.AsTuple(container)
		i := int(value.AsInt64(idx))
		if i < 1 || i > len(t.Elems) {
			return &rterror.StringIndexError{Index: i}
		}
		frame.Push(t.Elems[i-1])
	default:
		return &rterror.TypeError{Context: "getindex", Expected: "an indexable container", Got: container}
	}
	return nil
}

func (vm *VM) execSetIndex(frame *Frame) error {
	val := frame.Pop()
	idx := frame.Pop()
	container := frame.Pop()
	switch container.Kind {
	case value.KindArray:
		arr := value.AsArray(container)
		if err := arr.Set(val, arrayIndices(idx)...); err != nil {
			return &rterror.DimensionMismatch{Message: err.Error()}
		}
	case value.KindMemory:
		m := container.Data.(*value.Memory)
		i := int(value.AsInt64(idx))
		if err := m.Set(i, val); err != nil {
			return &rterror.StringIndexError{Index: i}
		}
	default:
		return &rterror.TypeError{Context: "setindex!", Expected: "a mutable indexable container", Got: container}
	}
	return nil
}

func (vm *VM) execIsA(frame *Frame, typeConstIdx int) error {
	v := frame.Pop()
	target := value.AsDataType(frame.Chunk.Constants[typeConstIdx])
	actual := value.TypeOf(vm.Registry, v)
	frame.Push(value.Bool(vm.Registry.Lattice.IsSubtype(actual, target.TypeID)))
	return nil
}
