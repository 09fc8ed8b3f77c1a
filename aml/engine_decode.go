package aml

// cr builds a codeReader bound to f's code, with the frame's live offset
// threaded through every call via &f.offset.
func cr(f *Frame) *codeReader { return &codeReader{data: f.code} }

var ifPredicateInfo = &opcodeInfo{op: opIf, name: "If", args: []ArgKind{ArgOperand}}

// decodeStatement decodes the next top-level statement at f.offset and
// returns the op-context that should drive it, or (nil, nil) if the
// statement was fully handled inline (Break/Continue/Else-skip) and the
// main loop should simply continue.
func (ev *Evaluator) decodeStatement(f *Frame) (*opContext, error) {
	wasSkipElse := f.skipElse
	f.skipElse = false

	b, err := cr(f).peekByte(f.offset)
	if err != nil {
		return nil, err
	}
	if b == rootChar || b == parentChar || isLeadNameChar(b) {
		begin := f.offset
		pn, err := decodeNameString(cr(f), &f.offset)
		if err != nil {
			return nil, err
		}
		node := ev.ns.Resolve(f.scope, pn)
		item, pushCtx, err := ev.convertNameString(f, node, ArgTermArg, false, pn)
		if err != nil {
			return nil, err
		}
		_ = begin
		if pushCtx != nil {
			return pushCtx, nil
		}
		item.release(ev.host)
		return nil, nil
	}

	op, err := fetchOpcode(cr(f), &f.offset)
	if err != nil {
		return nil, err
	}

	switch op {
	case opIf:
		_, end, err := decodePkgLength(cr(f), &f.offset)
		if err != nil {
			return nil, err
		}
		ctx := &opContext{info: ifPredicateInfo, purpose: purposePredicate, pkgEnd: end}
		return ctx, nil

	case opWhile:
		begin, end, err := decodePkgLength(cr(f), &f.offset)
		if err != nil {
			return nil, err
		}
		_ = begin
		f.pushBlock(&codeBlock{kind: blockWhile, begin: f.offset, end: end})
		return newPredicateCtx(), nil

	case opElse:
		_, end, err := decodePkgLength(cr(f), &f.offset)
		if err != nil {
			return nil, err
		}
		if wasSkipElse {
			f.offset = end
			return nil, nil
		}
		f.pushBlock(&codeBlock{kind: blockElse, begin: f.offset, end: end})
		return nil, nil

	case opBreak:
		return nil, ev.handleBreak(f)

	case opContinue:
		return nil, ev.handleContinue(f)
	}

	info, ok := opcodeCatalog[op]
	if !ok {
		return nil, errUnknownOpcode
	}
	return &opContext{info: info, opBegin: f.offset}, nil
}

// stepOp advances ctx by one argument slot. It returns advanced=false when
// it preempted into a freshly pushed child op-context (the caller must loop
// back into the main evaluation loop rather than re-entering stepOp).
func (ev *Evaluator) stepOp(f *Frame, ctx *opContext) (bool, error) {
	switch ctx.info.op {
	case opPackage, opVarPackage:
		return ev.stepPackageArgs(f, ctx)
	}

	if ctx.argIdx >= len(ctx.info.args) {
		ctx.done = true
		return true, nil
	}

	kind := ctx.info.args[ctx.argIdx]
	switch kind {
	case ArgPkgLen:
		begin, end, err := decodePkgLength(cr(f), &f.offset)
		if err != nil {
			return false, err
		}
		ctx.hasPkg = true
		ctx.pkgBegin, ctx.pkgEnd = begin, end
		ctx.items = append(ctx.items, pendingItem{kind: itemPkgLen, pkgBegin: begin, pkgEnd: end})
		ctx.argIdx++
		return ev.markDoneIfFinished(ctx), nil

	case ArgByteData, ArgWordData, ArgDwordData, ArgQwordData:
		n := map[ArgKind]int{ArgByteData: 1, ArgWordData: 2, ArgDwordData: 4, ArgQwordData: 8}[kind]
		raw, err := cr(f).readBytes(&f.offset, n)
		if err != nil {
			return false, err
		}
		var v uint64
		for i, b := range raw {
			v |= uint64(b) << (8 * uint(i))
		}
		ctx.items = append(ctx.items, pendingItem{kind: itemObject, obj: NewInteger(v)})
		ctx.argIdx++
		return ev.markDoneIfFinished(ctx), nil

	case ArgAMLString:
		s, err := readAMLString(f)
		if err != nil {
			return false, err
		}
		ctx.items = append(ctx.items, pendingItem{kind: itemObject, obj: NewString(s)})
		ctx.argIdx++
		return ev.markDoneIfFinished(ctx), nil

	case ArgCreateNameString:
		pn, err := decodeNameString(cr(f), &f.offset)
		if err != nil {
			return false, err
		}
		node, err := ev.ns.ResolveCreateLast(f.scope, pn)
		if err != nil {
			return false, err
		}
		ctx.items = append(ctx.items, pendingItem{kind: itemNode, node: node})
		ctx.forNamed = node
		ctx.argIdx++
		return ev.markDoneIfFinished(ctx), nil

	case ArgNameString, ArgNameStringOrNull:
		pn, err := decodeNameString(cr(f), &f.offset)
		if err != nil {
			return false, err
		}
		node := ev.ns.Resolve(f.scope, pn)
		if node == nil && kind == ArgNameString {
			return false, errNotFound
		}
		ctx.items = append(ctx.items, pendingItem{kind: itemNode, node: node})
		ctx.argIdx++
		return ev.markDoneIfFinished(ctx), nil

	case ArgTermArg, ArgOperand, ArgSuperName, ArgTarget, ArgSimpleName:
		allowUnresolved := kind == ArgSuperName && ctx.info.op == opCondRefOf && ctx.argIdx == 0
		item, pushCtx, err := ev.decodeForSlot(f, kind, allowUnresolved)
		if err != nil {
			return false, err
		}
		if pushCtx != nil {
			f.pushOp(pushCtx)
			return false, nil
		}
		// Note: ArgOperand does NOT imply Integer coercion here — "Operand"
		// in the grammar covers Index's source Buffer/String/Package,
		// DerefOf's reference, Concatenate/Mid/ToX's Buffer-or-String
		// operands, etc. Only the arithmetic/logic handlers coerce their
		// own operands to Integer (spec §4.4 binary math/logic).
		ctx.items = append(ctx.items, item)
		ctx.argIdx++
		return ev.markDoneIfFinished(ctx), nil

	case ArgTermArgOptional:
		ctx.items = append(ctx.items, pendingItem{kind: itemEmpty})
		ctx.argIdx++
		return ev.markDoneIfFinished(ctx), nil
	}

	return false, errUnknownOpcode
}

func (ev *Evaluator) markDoneIfFinished(ctx *opContext) bool {
	if ctx.argIdx >= len(ctx.info.args) {
		ctx.done = true
	}
	return true
}

// decodeForSlot resolves one TermArg/Operand/SuperName/Target/SimpleName
// slot: a NameString is resolved synchronously (possibly yielding a
// synthetic method-call context), anything else preempts by pushing a
// fresh op-context for the nested opcode (spec §4.1/§4.2 DISPATCH_METHOD
// _CALL / CONVERT_NAMESTRING).
func (ev *Evaluator) decodeForSlot(f *Frame, wanted ArgKind, allowUnresolved bool) (pendingItem, *opContext, error) {
	if wanted == ArgSuperName || wanted == ArgTarget || wanted == ArgSimpleName {
		return ev.decodeTargetSlot(f, wanted, allowUnresolved)
	}

	b, err := cr(f).peekByte(f.offset)
	if err != nil {
		return pendingItem{}, nil, err
	}
	if b == rootChar || b == parentChar || isLeadNameChar(b) {
		pn, err := decodeNameString(cr(f), &f.offset)
		if err != nil {
			return pendingItem{}, nil, err
		}
		node := ev.ns.Resolve(f.scope, pn)
		return ev.convertNameString(f, node, wanted, allowUnresolved, pn)
	}

	op, err := fetchOpcode(cr(f), &f.offset)
	if err != nil {
		return pendingItem{}, nil, err
	}
	info, ok := opcodeCatalog[op]
	if !ok {
		return pendingItem{}, nil, errUnknownOpcode
	}
	return pendingItem{}, &opContext{info: info, opBegin: f.offset}, nil
}

// decodeTargetSlot resolves a SuperName/Target/SimpleName slot into a
// writable targetRef: Local0-7, Arg0-6 and DebugObj are recognized as
// single/double-byte leaves, NullName means "no target" (Target only),
// a NameString resolves to a node, and anything else is a Type6Opcode
// (Index/RefOf/DerefOf/...) whose eventual result is itself the writable
// place (spec §4.4).
func (ev *Evaluator) decodeTargetSlot(f *Frame, wanted ArgKind, allowUnresolved bool) (pendingItem, *opContext, error) {
	b, err := cr(f).peekByte(f.offset)
	if err != nil {
		return pendingItem{}, nil, err
	}

	if wanted == ArgTarget && b == nullName {
		f.offset++
		return pendingItem{kind: itemTarget, tgt: targetRef{kind: targetNone}}, nil, nil
	}
	if b >= byte(opLocal0) && b <= byte(opLocal7) {
		f.offset++
		return pendingItem{kind: itemTarget, tgt: targetRef{kind: targetLocal, slot: b - byte(opLocal0)}}, nil, nil
	}
	if b >= byte(opArg0) && b <= byte(opArg6) {
		f.offset++
		return pendingItem{kind: itemTarget, tgt: targetRef{kind: targetArg, slot: b - byte(opArg0)}}, nil, nil
	}
	if b == extPrefix {
		if b2, err2 := cr(f).peekByte(f.offset + 1); err2 == nil && b2 == 0x31 {
			f.offset += 2
			return pendingItem{kind: itemTarget, tgt: targetRef{kind: targetDebug}}, nil, nil
		}
	}
	if b == rootChar || b == parentChar || isLeadNameChar(b) {
		pn, err := decodeNameString(cr(f), &f.offset)
		if err != nil {
			return pendingItem{}, nil, err
		}
		node := ev.ns.Resolve(f.scope, pn)
		if node == nil {
			if allowUnresolved {
				return pendingItem{kind: itemTarget, tgt: targetRef{kind: targetNode}}, nil, nil
			}
			return pendingItem{}, nil, errNotFound
		}
		return pendingItem{kind: itemTarget, tgt: targetRef{kind: targetNode, node: node}}, nil, nil
	}

	op, err := fetchOpcode(cr(f), &f.offset)
	if err != nil {
		return pendingItem{}, nil, err
	}
	info, ok := opcodeCatalog[op]
	if !ok {
		return pendingItem{}, nil, errUnknownOpcode
	}
	return pendingItem{}, &opContext{info: info, opBegin: f.offset}, nil
}

// convertNameString implements CONVERT_NAMESTRING (spec §4.1): a resolved
// name feeds a slot either as a plain value (reading through Method-call
// dispatch and BufferField/BufferIndex synthesis) or as a target/name
// reference, depending on what the slot wants. An unresolved name with
// allowUnresolved set is never an error: a SuperName slot (CondRefOf's
// first operand) gets a nil-node placeholder the handler checks itself,
// while any other slot (a Package initializer element) gets a lazy path
// String instead, so a forward reference within a table still decodes and
// is only resolved once the element is actually read (spec §4.4 Package /
// §9 lazy name resolution).
func (ev *Evaluator) convertNameString(f *Frame, node *Node, wanted ArgKind, allowUnresolved bool, pn parsedName) (pendingItem, *opContext, error) {
	if node == nil {
		if allowUnresolved {
			if wanted == ArgSuperName {
				return pendingItem{kind: itemNode, node: nil}, nil, nil
			}
			return pendingItem{kind: itemObject, obj: NewString([]byte(pn.string()))}, nil, nil
		}
		return pendingItem{}, nil, errNotFound
	}

	obj := node.Object()
	if obj == nil {
		return pendingItem{}, nil, errNotFound
	}
	if obj.Kind == KindMethod {
		argc := int(obj.method.argCount)
		info := &opcodeInfo{name: "MethodCall", args: repeatArg(ArgTermArg, argc)}
		ctx := &opContext{info: info, purpose: purposeMethodCall, calleeMethod: obj.Retain()}
		return pendingItem{}, ctx, nil
	}
	if obj.Kind == KindBufferField || obj.Kind == KindBufferIndex {
		val, err := ev.readField(obj)
		if err != nil {
			return pendingItem{}, nil, err
		}
		return pendingItem{kind: itemObject, obj: val}, nil, nil
	}
	return pendingItem{kind: itemObject, obj: obj.Retain()}, nil, nil
}

func repeatArg(k ArgKind, n int) []ArgKind {
	out := make([]ArgKind, n)
	for i := range out {
		out[i] = k
	}
	return out
}

func readAMLString(f *Frame) ([]byte, error) {
	start := f.offset
	for {
		b, err := cr(f).peekByte(f.offset)
		if err != nil {
			return nil, err
		}
		if b == 0 {
			break
		}
		f.offset++
	}
	s := f.code[start:f.offset]
	f.offset++ // consume the NUL terminator
	return s, nil
}

// stepPackageArgs drives Package/VarPackage's [PkgLen, Count, elements...]
// shape: the element list is variadic and data-driven, so it is collected
// out of band from the generic fixed-arity arg list (spec §4.2).
func (ev *Evaluator) stepPackageArgs(f *Frame, ctx *opContext) (bool, error) {
	switch ctx.argIdx {
	case 0:
		begin, end, err := decodePkgLength(cr(f), &f.offset)
		if err != nil {
			return false, err
		}
		ctx.hasPkg = true
		ctx.pkgBegin, ctx.pkgEnd = begin, end
		ctx.argIdx = 1
		return true, nil
	case 1:
		if ctx.info.op == opPackage {
			raw, err := cr(f).readBytes(&f.offset, 1)
			if err != nil {
				return false, err
			}
			ctx.declaredCount = int(raw[0])
			ctx.argIdx = 2
			return true, nil
		}
		item, pushCtx, err := ev.decodeForSlot(f, ArgTermArg, false)
		if err != nil {
			return false, err
		}
		if pushCtx != nil {
			f.pushOp(pushCtx)
			return false, nil
		}
		n, err := ev.coerceOperand(item.obj)
		if err != nil {
			return false, err
		}
		ctx.declaredCount = int(n.i)
		n.Release(ev.host)
		ctx.argIdx = 2
		return true, nil
	default:
		if len(ctx.elems) >= ctx.declaredCount || f.offset >= ctx.pkgEnd {
			if f.offset < ctx.pkgEnd {
				ev.logf(LevelWarn, "Package: more initializers than the declared %d elements, truncated", ctx.declaredCount)
			}
			ctx.done = true
			return true, nil
		}
		item, pushCtx, err := ev.decodeForSlot(f, ArgTermArg, true)
		if err != nil {
			return false, err
		}
		if pushCtx != nil {
			f.pushOp(pushCtx)
			return false, nil
		}
		ctx.elems = append(ctx.elems, item.obj)
		return true, nil
	}
}
