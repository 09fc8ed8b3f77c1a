package aml

// localBox returns the persistent Reference wrapper backing a Local slot,
// materializing it over the slot's current value (or a fresh Uninitialized
// if never touched) on first use — so every RefOf(LocalX) taken afterward
// keeps observing later Stores (spec §4.4 "First touch lazily wraps...").
func (ev *Evaluator) localBox(f *Frame, slot uint8) *Object {
	cur := f.locals[slot]
	if cur != nil && cur.Kind == KindReference {
		return cur
	}
	initial := cur
	if initial == nil {
		initial = NewUninitialized()
	}
	box := newSlotReference(RefLocal, slot, initial)
	initial.Release(ev.host) // box now owns the only strong ref to initial
	f.locals[slot] = box
	return box
}

// refOfTarget resolves the object a RefOf/CondRefOf's SuperName names,
// without retaining it (the caller wraps it in a fresh Reference, which
// does its own Retain).
func (ev *Evaluator) refOfTarget(f *Frame, t targetRef) (*Object, error) {
	switch t.kind {
	case targetNode:
		if t.node == nil || t.node.Object() == nil {
			return nil, errNotFound
		}
		return t.node.Object(), nil
	case targetLocal:
		return ev.localBox(f, t.slot).ref.target, nil
	case targetArg:
		box := f.args[t.slot]
		if box == nil || box.Kind != KindReference {
			return nil, errNotFound
		}
		return box.ref.target, nil
	case targetObject:
		return t.obj, nil
	default:
		return nil, errTypeMismatch
	}
}

// handleRefOf implements RefOf: SuperName -> Reference (spec §4.4
// Ref/DerefOf/CondRefOf).
func (ev *Evaluator) handleRefOf(f *Frame, ctx *opContext) (*Object, error) {
	t := ctx.items[0].tgt
	target, err := ev.refOfTarget(f, t)
	if err != nil {
		return nil, err
	}
	return newReference(RefOfTarget, target), nil
}

// handleCondRefOf implements CondRefOf: stores a Reference into Target and
// returns true only if the source resolves to a bound object.
func (ev *Evaluator) handleCondRefOf(f *Frame, ctx *opContext) (*Object, error) {
	t := ctx.items[0].tgt
	target, err := ev.refOfTarget(f, t)
	if err != nil || target == nil {
		return ev.newBool(false), nil
	}
	ref := newReference(RefOfTarget, target)
	dst := ctx.items[1].tgt
	if dst.kind == targetNone {
		ref.Release(ev.host)
	} else if err := ev.storeToTarget(f, dst, ref); err != nil {
		return nil, err
	}
	return ev.newBool(true), nil
}

// unwrapReference follows a Reference chain (including through lazily
// -resolved PkgIndex self-references) to its bottom-most non-Reference
// object, without consuming obj's reference (spec §4.3 "DerefOf returns the
// bottom-most non-Reference object").
func unwrapReference(obj *Object) (*Object, error) {
	bottom := obj
	for bottom.Kind == KindReference {
		if bottom.ref.kind == RefPkgIndex {
			elems, _ := bottom.ref.pkg.Elements()
			idx := bottom.ref.index
			if idx < 0 || idx >= len(elems) {
				return nil, errOutOfBounds
			}
			bottom = elems[idx]
			continue
		}
		bottom = bottom.ref.target
	}
	return bottom, nil
}

// handleDerefOf implements DerefOf: a BufferIndex operand reads one byte as
// an Integer; otherwise the bottom of any Reference chain is returned.
func (ev *Evaluator) handleDerefOf(ctx *opContext) (*Object, error) {
	obj := ctx.items[0].obj
	if obj.Kind == KindBufferIndex {
		return ev.readField(obj)
	}
	bottom, err := unwrapReference(obj)
	if err != nil {
		return nil, err
	}
	return bottom.Retain(), nil
}

// handleIndexOp implements Index: Buffer/String operands produce a
// BufferIndex co-owning the backing; a Package operand lazily converts the
// slot into a self-Reference of kind PkgIndex (spec §4.4 Index).
func (ev *Evaluator) handleIndexOp(f *Frame, ctx *opContext) (*Object, error) {
	src := ctx.items[0].obj
	idxVal, err := ev.peekInteger(ctx.items[1].obj)
	if err != nil {
		return nil, err
	}

	var result *Object
	switch src.Kind {
	case KindBuffer:
		if idxVal >= uint64(len(src.buf.data)) {
			return nil, errOutOfBounds
		}
		result = newBufferIndex(src, idxVal, false)
	case KindString:
		if idxVal > uint64(len(src.str.text)) {
			return nil, errOutOfBounds
		}
		result = newBufferIndex(src, idxVal, true)
	case KindPackage:
		elems, _ := src.Elements()
		if idxVal >= uint64(len(elems)) {
			return nil, errOutOfBounds
		}
		result = newPkgIndexReference(src, int(idxVal))
	default:
		return nil, errTypeMismatch
	}

	if t := ctx.items[2].tgt; t.kind != targetNone {
		if err := ev.storeToTarget(f, t, result.Retain()); err != nil {
			result.Release(ev.host)
			return nil, err
		}
	}
	return result, nil
}

// ACPI Match comparator opcodes.
const (
	matchTR uint64 = iota
	matchEQ
	matchLE
	matchLT
	matchGE
	matchGT
)

// handleMatch implements Match: scan a Package from StartIndex for the
// first element satisfying both comparator/operand pairs (spec §4.4).
func (ev *Evaluator) handleMatch(ctx *opContext) (*Object, error) {
	pkg := ctx.items[0].obj
	if pkg.Kind != KindPackage {
		return nil, errTypeMismatch
	}
	op1 := ctx.items[1].obj.i
	operand1 := ctx.items[2].obj
	op2 := ctx.items[3].obj.i
	operand2 := ctx.items[4].obj
	start, err := ev.peekInteger(ctx.items[5].obj)
	if err != nil {
		return nil, err
	}

	elems, _ := pkg.Elements()
	for i := int(start); i < len(elems); i++ {
		ok1, err := ev.matchOne(elems[i], op1, operand1)
		if err != nil {
			return nil, err
		}
		ok2, err := ev.matchOne(elems[i], op2, operand2)
		if err != nil {
			return nil, err
		}
		if ok1 && ok2 {
			return NewInteger(uint64(i)), nil
		}
	}
	return NewInteger(ev.ones()), nil
}

func (ev *Evaluator) matchOne(elem *Object, op uint64, operand *Object) (bool, error) {
	if op == matchTR {
		return true, nil
	}
	cmp, err := ev.compareOperands(elem, operand)
	if err != nil {
		return false, err
	}
	switch op {
	case matchEQ:
		return cmp == 0, nil
	case matchLE:
		return cmp <= 0, nil
	case matchLT:
		return cmp < 0, nil
	case matchGE:
		return cmp >= 0, nil
	case matchGT:
		return cmp > 0, nil
	}
	return false, errTypeMismatch
}

// rawTargetObject fetches a SuperName's current bound object as-is —
// unlike loadFromTarget, it does not synthesize a field read for a
// BufferField/BufferIndex target, since SizeOf/ObjectType report on the
// field object itself.
func (ev *Evaluator) rawTargetObject(f *Frame, t targetRef) (*Object, error) {
	switch t.kind {
	case targetNode:
		if t.node == nil || t.node.Object() == nil {
			return nil, errNotFound
		}
		return t.node.Object().Retain(), nil
	case targetLocal:
		return ev.readSlot(f.locals[t.slot]), nil
	case targetArg:
		return ev.readSlot(f.args[t.slot]), nil
	case targetObject:
		return t.obj.Retain(), nil
	default:
		return NewUninitialized(), nil
	}
}

// handleSizeOf implements SizeOf: Buffer/String byte length, Package
// element count, unwrapping a Reference first (spec §4.4).
func (ev *Evaluator) handleSizeOf(f *Frame, ctx *opContext) (*Object, error) {
	obj, err := ev.rawTargetObject(f, ctx.items[0].tgt)
	if err != nil {
		return nil, err
	}
	defer obj.Release(ev.host)
	bottom, err := unwrapReference(obj)
	if err != nil {
		return nil, err
	}
	return NewInteger(bottom.Size()), nil
}

// handleObjectType implements ObjectType: the operand's Kind tag,
// unwrapping a Reference first (spec §4.4; BufferIndex reports as
// BufferField per Kind.String's documented open question).
func (ev *Evaluator) handleObjectType(f *Frame, ctx *opContext) (*Object, error) {
	obj, err := ev.rawTargetObject(f, ctx.items[0].tgt)
	if err != nil {
		return nil, err
	}
	defer obj.Release(ev.host)
	bottom, err := unwrapReference(obj)
	if err != nil {
		return nil, err
	}
	return NewInteger(objectTypeCode(bottom.Kind)), nil
}
