package aml

// Evaluator holds the state of one bytecode evaluation: the namespace it
// reads/writes, the host it calls out to, the DSDT revision that governs
// integer width, and the stack of call frames (spec §4.3/§4.5). It is not
// safe for concurrent use from more than one goroutine (spec §5).
type Evaluator struct {
	ns       *Namespace
	host     Host
	revision uint8

	frames []*Frame
}

// NewEvaluator creates an Evaluator over the given namespace. revision must
// be 1 or 2 (2 meaning "rev 2 or later", i.e. full 64-bit integers).
func NewEvaluator(ns *Namespace, host Host, revision uint8) *Evaluator {
	return &Evaluator{ns: ns, host: host, revision: revision}
}

// Namespace exposes the evaluator's namespace for callers wiring up
// predefined nodes (spec §6).
func (ev *Evaluator) Namespace() *Namespace { return ev.ns }

func (ev *Evaluator) curFrame() *Frame {
	if len(ev.frames) == 0 {
		return nil
	}
	return ev.frames[len(ev.frames)-1]
}

// integerMask returns the width mask arithmetic handlers must truncate to:
// 32-bit under revision 1, 64-bit otherwise (spec §3/§8).
func (ev *Evaluator) integerMask() uint64 {
	if ev.revision == 1 {
		return 0xFFFFFFFF
	}
	return 0xFFFFFFFFFFFFFFFF
}

func (ev *Evaluator) truncate(v uint64) uint64 { return v & ev.integerMask() }

// ones returns the all-ones value for the current integer width.
func (ev *Evaluator) ones() uint64 { return ev.integerMask() }

func (ev *Evaluator) newBool(v bool) *Object {
	if v {
		return NewInteger(ev.ones())
	}
	return NewInteger(0)
}

func (ev *Evaluator) logf(level Level, format string, args ...interface{}) {
	if ev.host != nil {
		ev.host.Log(level, format, args...)
	}
}

// Evaluate runs method starting in scope with the given arguments and
// returns its result object, if any (spec §6).
func (ev *Evaluator) Evaluate(scope *Node, method *Object, args []*Object) (*Object, error) {
	if method == nil || method.Kind != KindMethod {
		return nil, newErr("evaluate", StatusInvalidArgument, "method object is not callable")
	}
	if len(args) != int(method.method.argCount) {
		return nil, errArgCountMismatch
	}

	ev.pushMethodFrame(method, scope, args)

	result, err := ev.run()
	if err != nil {
		for len(ev.frames) > 0 {
			top := ev.frames[len(ev.frames)-1]
			ev.frames = ev.frames[:len(ev.frames)-1]
			top.teardown(ev.host)
		}
		return nil, err
	}
	return result, nil
}

// EvaluateBytes runs a raw TermList (e.g. a hand-assembled test fixture) as
// a zero-argument top-level body bound at scope, and returns whatever value
// the body Returns (nil if it falls off the end). The synthetic method is
// marked serialized, so the named objects the body declares stay installed
// after it returns, as a table's definition block would. This is the entry
// point the tests use in place of a full table loader, which is out of this
// module's scope.
func (ev *Evaluator) EvaluateBytes(scope *Node, code []byte) (*Object, error) {
	m := newMethod(code, 0, true, 0)
	m.method.node = scope
	result, err := ev.Evaluate(scope, m, nil)
	m.Release(ev.host)
	return result, err
}

func (ev *Evaluator) pushMethodFrame(method *Object, scope *Node, args []*Object) *Frame {
	f := newFrame(method.method.code, method.method.node, method, 0)
	f.namedObjectsPersist = method.method.serialized
	for i, a := range args {
		f.args[i] = newSlotReference(RefArg, uint8(i), a)
	}
	base := &codeBlock{kind: blockScope, begin: 0, end: uint32(len(method.method.code)), node: method.method.node, prevScope: scope}
	f.pushBlock(base)
	ev.frames = append(ev.frames, f)
	return f
}

// run drives the main evaluation loop (spec §4.3) until the frame stack
// empties or a fatal error occurs. All AML-level nesting is represented by
// the explicit frame, op-context and block stacks rather than by Go-level
// recursion (spec §9).
func (ev *Evaluator) run() (*Object, error) {
	var topResult *Object
	for {
		done, err := ev.step(&topResult)
		if err != nil {
			return nil, err
		}
		if done {
			return topResult, nil
		}
	}
}

// step performs exactly one iteration of the main loop body: it never
// blocks on more than one decode/stepOp/finishOp action, so a caller
// driving it directly (cmd/amldbg) can single-step the evaluator frame by
// frame. done reports whether the frame stack is now empty.
func (ev *Evaluator) step(topResult **Object) (bool, error) {
	f := ev.curFrame()
	if f == nil {
		return true, nil
	}

	if f.ctrlFlowReturn {
		ret := f.returnValue
		f.returnValue = nil
		ev.popCurrentFrame()
		return false, ev.deliverFrameResult(ret, topResult)
	}

	if len(f.pending) == 0 {
		if blk := f.curBlock(); blk != nil && f.offset >= blk.end {
			return false, ev.endBlock(f, blk)
		}
		if f.offset >= uint32(len(f.code)) {
			ev.popCurrentFrame()
			return false, ev.deliverFrameResult(nil, topResult)
		}
		newCtx, err := ev.decodeStatement(f)
		if err != nil {
			return false, err
		}
		if newCtx != nil {
			f.pushOp(newCtx)
		}
		return false, nil
	}

	ctx := f.curOp()
	advanced, err := ev.stepOp(f, ctx)
	if err != nil {
		return false, err
	}
	if !advanced {
		return false, nil
	}
	if ctx.done {
		return false, ev.finishOp(f, ctx)
	}
	return false, nil
}

// Step advances the evaluator by one primitive action and reports whether
// the frame stack emptied (evaluation finished). On error the frame stack
// is unwound the same way Evaluate does. Intended for cmd/amldbg; ordinary
// callers should use Evaluate/EvaluateBytes.
func (ev *Evaluator) Step() (finished bool, result *Object, err error) {
	var topResult *Object
	done, err := ev.step(&topResult)
	if err != nil {
		for len(ev.frames) > 0 {
			ev.popCurrentFrame()
		}
		return true, nil, err
	}
	return done, topResult, nil
}

// Begin pushes a frame for code at scope without running it, so a caller
// can then drive Step() directly (cmd/amldbg's single-step mode).
func (ev *Evaluator) Begin(scope *Node, code []byte) {
	m := newMethod(code, 0, false, 0)
	m.method.node = scope
	ev.pushMethodFrame(m, scope, nil)
	m.Release(ev.host)
}

// Running reports whether any frame is still on the stack.
func (ev *Evaluator) Running() bool { return ev.curFrame() != nil }

// FrameView is a read-only snapshot of one call frame's state, for display
// in cmd/amldbg.
type FrameView struct {
	Offset     uint32
	CodeLen    uint32
	Scope      *Node
	Locals     [8]*Object
	Args       [7]*Object
	PendingOps []string
	Blocks     int
}

// CurrentFrame returns a snapshot of the top frame, or nil if the
// evaluator is idle.
func (ev *Evaluator) CurrentFrame() *FrameView {
	f := ev.curFrame()
	if f == nil {
		return nil
	}
	v := &FrameView{
		Offset:  f.offset,
		CodeLen: uint32(len(f.code)),
		Scope:   f.scope,
		Locals:  f.locals,
		Args:    f.args,
		Blocks:  len(f.blocks),
	}
	for _, ctx := range f.pending {
		v.PendingOps = append(v.PendingOps, ctx.info.name)
	}
	return v
}

// FrameDepth reports how many nested call frames are currently active.
func (ev *Evaluator) FrameDepth() int { return len(ev.frames) }

func (ev *Evaluator) popCurrentFrame() {
	n := len(ev.frames)
	f := ev.frames[n-1]
	ev.frames = ev.frames[:n-1]
	f.teardown(ev.host)
}

// deliverFrameResult feeds a returned/fell-off-end value into the caller's
// waiting op-context, or into topResult if this was the outermost frame.
func (ev *Evaluator) deliverFrameResult(ret *Object, topResult **Object) error {
	parent := ev.curFrame()
	if parent == nil {
		*topResult = ret
		return nil
	}
	ctx := parent.curOp()
	if ctx == nil {
		ret.Release(ev.host)
		return nil
	}
	return ev.acceptChildResult(ctx, ret)
}

// endBlock implements the spec §4.3 main-loop block-end handling.
func (ev *Evaluator) endBlock(f *Frame, blk *codeBlock) error {
	if blk.kind == blockWhile {
		f.offset = blk.begin
		f.pushOp(newPredicateCtx())
		return nil
	}
	f.popBlock()
	switch blk.kind {
	case blockIf:
		f.skipElse = true
	case blockScope:
		f.scope = blk.prevScope
	}
	return nil
}

func (ev *Evaluator) rewindWhile(f *Frame, blk *codeBlock) {
	f.offset = blk.begin
	f.pushOp(newPredicateCtx())
}
