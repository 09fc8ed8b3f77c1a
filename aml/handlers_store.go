package aml

// storeToTarget implements STORE_TO_TARGET (spec §4.3/§4.4): val arrives
// already owned by this call (one reference to dispose of, one way or
// another). A targetNone destination (Store of Target NullName) is a
// documented no-op.
func (ev *Evaluator) storeToTarget(f *Frame, t targetRef, val *Object) error {
	switch t.kind {
	case targetNone:
		val.Release(ev.host)
		return nil
	case targetLocal:
		return ev.storeIntoLocal(f, t.slot, val)
	case targetArg:
		return ev.storeIntoArg(f, t.slot, val)
	case targetDebug:
		ev.storeDebug(val)
		val.Release(ev.host)
		return nil
	case targetNode:
		return ev.storeIntoNode(t.node, val)
	case targetObject:
		return ev.storeIntoDynamic(t.obj, val)
	}
	val.Release(ev.host)
	return nil
}

// loadFromTarget reads a target's current value without disturbing it,
// returning a retained Object the caller must release (used by Increment
// /Decrement, which both read and write the same SuperName).
func (ev *Evaluator) loadFromTarget(f *Frame, t targetRef) (*Object, error) {
	switch t.kind {
	case targetNone:
		return NewUninitialized(), nil
	case targetLocal:
		return ev.readSlot(f.locals[t.slot]), nil
	case targetArg:
		return ev.readSlot(f.args[t.slot]), nil
	case targetDebug:
		return NewUninitialized(), nil
	case targetNode:
		if t.node == nil || t.node.Object() == nil {
			return nil, errNotFound
		}
		obj := t.node.Object()
		if obj.Kind == KindBufferField || obj.Kind == KindBufferIndex {
			return ev.readField(obj)
		}
		return obj.Retain(), nil
	case targetObject:
		return ev.loadFromDynamic(t.obj)
	}
	return NewUninitialized(), nil
}

// storeIntoLocal implements the LocalX row of the Store semantics table: a
// never-touched Local is simply overwritten; a Local already holding a
// Reference (the box RefOf(LocalX) installs, or an explicit RefOf stored
// into it) is implicit-cast into the referenced object so every
// outstanding RefOf(LocalX) observes the update, and a PkgIndex reference
// writes through to its package element.
func (ev *Evaluator) storeIntoLocal(f *Frame, slot uint8, val *Object) error {
	cur := f.locals[slot]
	if cur != nil && cur.Kind == KindReference {
		if cur.ref.kind == RefPkgIndex {
			return ev.writeThroughPkgIndex(cur, val, true)
		}
		target := cur.ref.target
		converted, err := ev.convertToKind(val, target.Kind)
		val.Release(ev.host)
		if err != nil {
			converted.Release(ev.host)
			return err
		}
		assignInPlace(target, converted, ev.host)
		converted.Release(ev.host)
		return nil
	}
	cur.Release(ev.host)
	f.locals[slot] = val
	return nil
}

// storeIntoArg implements the ArgX row: an Arg is always Reference-wrapped
// (pushMethodFrame wraps every incoming argument), so Store always
// overwrites the referenced object directly — no implicit cast.
func (ev *Evaluator) storeIntoArg(f *Frame, slot uint8, val *Object) error {
	cur := f.args[slot]
	if cur != nil && cur.Kind == KindReference {
		assignInPlace(cur.ref.target, val, ev.host)
		val.Release(ev.host)
		return nil
	}
	cur.Release(ev.host)
	f.args[slot] = val
	return nil
}

// storeIntoNode implements the Named row: implicit-cast into the bound
// object, or a field write if the node is a BufferField/BufferIndex.
func (ev *Evaluator) storeIntoNode(node *Node, val *Object) error {
	if node == nil {
		val.Release(ev.host)
		return errNotFound
	}
	bound := node.Object()
	if bound == nil {
		node.Bind(val, ev.host)
		val.Release(ev.host)
		return nil
	}
	if bound.Kind == KindBufferField || bound.Kind == KindBufferIndex {
		err := ev.writeField(bound, val)
		val.Release(ev.host)
		return err
	}
	converted, err := ev.convertToKind(val, bound.Kind)
	val.Release(ev.host)
	if err != nil {
		converted.Release(ev.host)
		return err
	}
	assignInPlace(bound, converted, ev.host)
	converted.Release(ev.host)
	return nil
}

// storeIntoDynamic handles a Target that is itself a Type6Opcode result
// (Index()'s BufferIndex/PkgIndex reference, a RefOf reference, or the
// object DerefOf yields): the PkgIndex row implicit-casts into the package
// slot via its lazy self-reference (spec §4.4 Index); BufferField/
// BufferIndex go through writeField; any other Reference overwrites its
// target; an Integer/String/Buffer object is implicit-cast in place.
func (ev *Evaluator) storeIntoDynamic(obj *Object, val *Object) error {
	switch obj.Kind {
	case KindBufferField, KindBufferIndex:
		err := ev.writeField(obj, val)
		val.Release(ev.host)
		return err
	case KindReference:
		if obj.ref.kind == RefPkgIndex {
			return ev.writeThroughPkgIndex(obj, val, true)
		}
		assignInPlace(obj.ref.target, val, ev.host)
		val.Release(ev.host)
		return nil
	case KindInteger, KindString, KindBuffer:
		converted, err := ev.convertToKind(val, obj.Kind)
		val.Release(ev.host)
		if err != nil {
			converted.Release(ev.host)
			return err
		}
		assignInPlace(obj, converted, ev.host)
		converted.Release(ev.host)
		return nil
	default:
		val.Release(ev.host)
		return errTypeMismatch
	}
}

// writeThroughPkgIndex implements the PkgIndex row of the Store/CopyObject
// destination table: ref is Index()'s lazy self-reference into a Package,
// so the write lands on the referenced element rather than on ref itself.
// Store (cast true) implicit-casts into the element's existing Kind;
// CopyObject (cast false) overwrites it outright (spec §4.3/§4.4).
func (ev *Evaluator) writeThroughPkgIndex(ref *Object, val *Object, cast bool) error {
	elems, _ := ref.ref.pkg.Elements()
	idx := ref.ref.index
	if idx < 0 || idx >= len(elems) {
		val.Release(ev.host)
		return errOutOfBounds
	}
	slot := elems[idx]
	if !cast {
		assignInPlace(slot, val, ev.host)
		val.Release(ev.host)
		return nil
	}
	converted, err := ev.convertToKind(val, slot.Kind)
	val.Release(ev.host)
	if err != nil {
		converted.Release(ev.host)
		return err
	}
	assignInPlace(slot, converted, ev.host)
	converted.Release(ev.host)
	return nil
}

// loadFromDynamic reads a Type6Opcode-result target's current value
// without mutating it.
func (ev *Evaluator) loadFromDynamic(obj *Object) (*Object, error) {
	switch obj.Kind {
	case KindBufferField, KindBufferIndex:
		return ev.readField(obj)
	case KindReference:
		if obj.ref.kind == RefPkgIndex {
			elems, _ := obj.ref.pkg.Elements()
			idx := obj.ref.index
			if idx < 0 || idx >= len(elems) {
				return nil, errOutOfBounds
			}
			return elems[idx].Retain(), nil
		}
		return obj.ref.target.Retain(), nil
	default:
		return obj.Retain(), nil
	}
}

// convertToKind implicit-casts val into kind (Integer/String/Buffer),
// matching the target it is about to overwrite (spec §4.3 implicit
// conversion). val is not consumed; the caller releases it separately. A
// kind outside {Integer,String,Buffer} (Uninitialized, Package, Device,
// ...) cannot be cast into, so val itself becomes the new content.
func (ev *Evaluator) convertToKind(val *Object, kind Kind) (*Object, error) {
	switch kind {
	case KindInteger:
		return ev.toIntegerObj(val)
	case KindString:
		return ev.toStringImplicit(val)
	case KindBuffer:
		return ev.toBuffer(val)
	default:
		return val.Retain(), nil
	}
}

// handleStore implements the Store opcode: Source TermArg, Target
// SuperName.
func (ev *Evaluator) handleStore(f *Frame, ctx *opContext) (*Object, error) {
	val := ctx.items[0].obj.Retain()
	t := ctx.items[1].tgt
	if err := ev.storeToTarget(f, t, val); err != nil {
		return nil, err
	}
	return ctx.items[0].obj.Retain(), nil
}

// handleCopyObject implements CopyObject: unlike Store, every destination
// row overwrites outright with no implicit cast, and a RefOf target is
// disallowed entirely (spec §4.3 Store-vs-CopyObject table).
func (ev *Evaluator) handleCopyObject(f *Frame, ctx *opContext) (*Object, error) {
	val := ctx.items[0].obj.Retain()
	t := ctx.items[1].tgt
	if t.kind == targetObject && t.obj.Kind == KindReference && t.obj.ref.kind == RefOfTarget {
		val.Release(ev.host)
		return nil, errRefOfCopyObject
	}
	if err := ev.copyIntoTarget(f, t, val); err != nil {
		return nil, err
	}
	return ctx.items[0].obj.Retain(), nil
}

// copyIntoTarget implements CopyObject's destination rows: LocalX/ArgX
// overwrite the slot outright (following an Arg's Reference to its bottom
// first); Named/PkgIndex overwrite the bound object/package slot outright
// rather than implicit-casting.
func (ev *Evaluator) copyIntoTarget(f *Frame, t targetRef, val *Object) error {
	switch t.kind {
	case targetNone:
		val.Release(ev.host)
		return nil
	case targetLocal:
		cur := f.locals[t.slot]
		if cur != nil && cur.Kind == KindReference && cur.ref.kind == RefPkgIndex {
			return ev.writeThroughPkgIndex(cur, val, false)
		}
		cur.Release(ev.host)
		f.locals[t.slot] = val
		return nil
	case targetArg:
		cur := f.args[t.slot]
		if cur != nil && cur.Kind == KindReference {
			bottom := cur.ref.target
			for bottom.Kind == KindReference && bottom.ref.kind != RefPkgIndex {
				bottom = bottom.ref.target
			}
			if bottom.Kind == KindReference && bottom.ref.kind == RefPkgIndex {
				return ev.writeThroughPkgIndex(bottom, val, false)
			}
			assignInPlace(bottom, val, ev.host)
			val.Release(ev.host)
			return nil
		}
		cur.Release(ev.host)
		f.args[t.slot] = val
		return nil
	case targetDebug:
		ev.storeDebug(val)
		val.Release(ev.host)
		return nil
	case targetNode:
		if t.node == nil {
			val.Release(ev.host)
			return errNotFound
		}
		t.node.Bind(val, ev.host)
		val.Release(ev.host)
		return nil
	case targetObject:
		if t.obj.Kind == KindReference && t.obj.ref.kind == RefPkgIndex {
			return ev.writeThroughPkgIndex(t.obj, val, false)
		}
		return ev.storeIntoDynamic(t.obj, val)
	}
	val.Release(ev.host)
	return nil
}
