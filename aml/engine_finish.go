package aml

// acceptChildResult feeds a completed child's result (a nested expression's
// value, or a called method's return value) into ctx's current slot as-is:
// an Operand slot is not coerced to Integer here (see the note below). A
// VarPackage's computed element count is taken as its declared count. A nil
// ret (no value returned) becomes an Uninitialized object so downstream
// code never has to special-case "no value" separately from "Uninitialized
// value" (spec §3 invariant).
func (ev *Evaluator) acceptChildResult(ctx *opContext, ret *Object) error {
	if ret == nil {
		ret = NewUninitialized()
	}
	switch ctx.info.op {
	case opPackage, opVarPackage:
		if ctx.info.op == opVarPackage && ctx.argIdx == 1 {
			n, err := ev.coerceOperand(ret)
			if err != nil {
				return err
			}
			ctx.declaredCount = int(n.i)
			n.Release(ev.host)
			ctx.argIdx = 2
			return nil
		}
		ctx.elems = append(ctx.elems, ret)
		return nil
	}
	kind := ArgTermArg
	if ctx.argIdx < len(ctx.info.args) {
		kind = ctx.info.args[ctx.argIdx]
	}
	switch kind {
	case ArgSuperName, ArgTarget, ArgSimpleName:
		ctx.items = append(ctx.items, pendingItem{kind: itemTarget, tgt: targetRef{kind: targetObject, obj: ret}})
	default:
		// ArgOperand is intentionally NOT coerced here — see stepOp's note;
		// only arithmetic/logic handlers coerce their own operands.
		ctx.items = append(ctx.items, pendingItem{kind: itemObject, obj: ret})
	}
	ctx.argIdx++
	if ctx.argIdx >= len(ctx.info.args) {
		ctx.done = true
	}
	return nil
}

// finishOp is called once ctx has collected everything it needs. It pops
// ctx off the frame's pending stack, then dispatches by purpose/opcode:
// predicates and method calls drive control flow directly; scoped-body
// opcodes push a code block instead of invoking a handler; everything else
// goes through invokeHandler and feeds its result to whichever context is
// now on top (spec §4.3).
func (ev *Evaluator) finishOp(f *Frame, ctx *opContext) error {
	f.popOp()

	switch ctx.purpose {
	case purposePredicate:
		return ev.finishPredicate(f, ctx)
	case purposeMethodCall:
		return ev.finishMethodCall(f, ctx)
	}

	if ctx.info.isScopedBody() {
		return ev.finishScopedBody(f, ctx)
	}

	result, err := ev.invokeHandler(f, ctx)
	ctx.release(ev.host)
	if err != nil {
		return err
	}

	if ctx.hasPkg && !ctx.info.isScopedBody() {
		f.offset = ctx.pkgEnd
	}

	parent := f.curOp()
	if parent == nil {
		result.Release(ev.host)
		return nil
	}
	return ev.acceptChildResult(parent, result)
}

// finishPredicate implements If/While's one-shot or re-entrant predicate
// check (spec §4.3: "If: skip block if zero, set skip_else on exit";
// "While: re-enter block until predicate is zero").
func (ev *Evaluator) finishPredicate(f *Frame, ctx *opContext) error {
	val, err := ev.coerceOperand(ctx.items[0].obj)
	if err != nil {
		return err
	}
	zero := val.i == 0
	val.Release(ev.host)

	if ctx.predIsWhile {
		if zero {
			blk := f.popBlock()
			f.offset = blk.end
		}
		return nil
	}

	// If predicate.
	if zero {
		f.offset = ctx.pkgEnd
		f.skipElse = false
		return nil
	}
	f.pushBlock(&codeBlock{kind: blockIf, begin: f.offset, end: ctx.pkgEnd})
	return nil
}

// finishMethodCall dispatches a resolved method invocation: the arguments
// already collected become the callee's Arg0..N, and a new frame is pushed
// rather than recursing (spec §4.3 DISPATCH_METHOD_CALL).
func (ev *Evaluator) finishMethodCall(f *Frame, ctx *opContext) error {
	method := ctx.calleeMethod
	if len(ctx.items) != int(method.method.argCount) {
		ctx.release(ev.host)
		return errArgCountMismatch
	}
	args := make([]*Object, len(ctx.items))
	for i, it := range ctx.items {
		args[i] = it.obj
	}
	ev.pushMethodFrame(method, method.method.node, args)
	for _, a := range args {
		a.Release(ev.host)
	}
	method.Release(ev.host)
	return nil
}

// finishScopedBody handles Scope/Device/Processor/PowerRes/ThermalZone: the
// header args (a name, plus a few immediates for Processor/PowerRes) have
// been collected; the opcode's body executes inline as a code block rather
// than through invokeHandler (spec §4.2 opFlagScopedBody).
func (ev *Evaluator) finishScopedBody(f *Frame, ctx *opContext) error {
	var node *Node
	switch ctx.info.op {
	case opScope:
		node = ctx.items[1].node
		if node == nil {
			ctx.release(ev.host)
			return errNotFound
		}
	case opDevice:
		node = ctx.forNamed
		ev.installNode(f, node)
		node.Bind(NewDevice(), ev.host)
	case opProcessor:
		node = ctx.forNamed
		id := ctx.items[2].obj.i
		blockAddr := uint32(ctx.items[3].obj.i)
		blockLen := uint8(ctx.items[4].obj.i)
		ev.installNode(f, node)
		node.Bind(NewProcessor(uint8(id), blockAddr, blockLen), ev.host)
	case opPowerRes:
		node = ctx.forNamed
		sysLevel := uint8(ctx.items[2].obj.i)
		resOrder := uint16(ctx.items[3].obj.i)
		ev.installNode(f, node)
		node.Bind(NewPowerResource(sysLevel, resOrder), ev.host)
	case opThermalZone:
		node = ctx.forNamed
		ev.installNode(f, node)
		node.Bind(NewThermalZone(), ev.host)
	}
	ctx.release(ev.host)

	prevScope := f.scope
	f.scope = node
	f.pushBlock(&codeBlock{kind: blockScope, begin: f.offset, end: ctx.pkgEnd, node: node, prevScope: prevScope})
	return nil
}

// installNode links a freshly created node into the namespace and, if the
// current frame is a non-serialized method invocation, registers it as
// temporary so it is uninstalled when the frame is torn down (spec §4.5).
func (ev *Evaluator) installNode(f *Frame, node *Node) {
	node.parent.install(node)
	if !f.namedObjectsPersist {
		node.temporary = true
		f.tempNodes = append(f.tempNodes, node)
	}
}

// handleBreak unwinds the block stack up to and including the nearest
// enclosing While, restoring scope for any Scope/Device blocks it passes
// through (spec §4.2 Break).
func (ev *Evaluator) handleBreak(f *Frame) error {
	for {
		if len(f.blocks) == 0 {
			return errBreakOutsideLoop
		}
		blk := f.popBlock()
		if blk.kind == blockScope {
			f.scope = blk.prevScope
		}
		if blk.kind == blockWhile {
			f.offset = blk.end
			return nil
		}
	}
}

// handleContinue unwinds to the nearest enclosing While and re-enters its
// predicate check without popping the While block itself (spec §4.2
// Continue).
func (ev *Evaluator) handleContinue(f *Frame) error {
	for {
		if len(f.blocks) == 0 {
			return errContinueOutsideLoop
		}
		blk := f.curBlock()
		if blk.kind == blockWhile {
			f.offset = blk.begin
			f.pushOp(newPredicateCtx())
			return nil
		}
		f.popBlock()
		if blk.kind == blockScope {
			f.scope = blk.prevScope
		}
	}
}
