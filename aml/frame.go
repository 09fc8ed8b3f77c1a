package aml

// blockKind tags a code block's control-flow role (spec §3 Code block).
type blockKind uint8

const (
	blockScope blockKind = iota
	blockIf
	blockElse
	blockWhile
)

// codeBlock is a nested AML region (If/Else/While body or a named scope)
// the engine is currently inside.
type codeBlock struct {
	kind  blockKind
	begin uint32
	end   uint32
	// node is the scope the block temporarily installs as cur scope, set
	// for blockScope only (Scope/Device/Processor/PowerRes/ThermalZone/
	// Method bodies).
	node *Node
	// prevScope is restored when the block ends.
	prevScope *Node
}

// itemKind discriminates what a pendingItem owns, so teardown releases the
// right resource (spec §3 Pending-operation item).
type itemKind uint8

const (
	itemEmpty itemKind = iota
	itemObject
	itemNode
	itemImmediate
	itemPkgLen
	// itemTarget holds a writable place resolved from a SuperName/Target
	// /SimpleName slot: a namespace node, a Local/Arg slot, DebugObj, "no
	// target", or a Type6Opcode result (e.g. Index()'s BufferIndex) that
	// is itself the writable place (spec §4.4 Store destination table).
	itemTarget
)

// targetKind discriminates the kind of writable place a target item
// names.
type targetKind uint8

const (
	targetNone targetKind = iota
	targetNode
	targetLocal
	targetArg
	targetDebug
	targetObject
)

// targetRef is a lightweight (non-refcounted, except targetObject)
// descriptor for a Store/CopyObject/Increment destination.
type targetRef struct {
	kind targetKind
	node *Node
	slot uint8
	// obj is retained; used only for targetObject (a BufferIndex/
	// PkgIndex/Reference produced by a nested Index/RefOf/DerefOf).
	obj *Object
}

// pendingItem is one collected argument slot of an in-progress op-context.
type pendingItem struct {
	kind itemKind
	obj  *Object
	node *Node
	tgt  targetRef
	imm  uint64
	// pkgBegin/pkgEnd hold a decoded PkgLength span (itemPkgLen).
	pkgBegin, pkgEnd uint32
}

func (it *pendingItem) release(host Host) {
	switch it.kind {
	case itemObject:
		it.obj.Release(host)
	case itemTarget:
		if it.tgt.kind == targetObject {
			it.tgt.obj.Release(host)
		}
	}
	*it = pendingItem{}
}

// ctxPurpose distinguishes the handful of op-contexts the engine drives
// through a path other than "collect args, invoke handler, feed result
// up": loop/branch predicates and synthesized method-call argument lists.
type ctxPurpose uint8

const (
	purposeNormal ctxPurpose = iota
	purposePredicate
	purposeMethodCall
)

// opContext is the state of one opcode's parse program in flight: which
// arg it is collecting, the items collected so far, and (for opcodes with
// a PkgLength) the byte range it must finish consuming.
type opContext struct {
	info *opcodeInfo
	// opBegin is the stream offset just after the opcode bytes, recorded
	// when the context is created; no handler reads it.
	opBegin uint32
	argIdx  int
	items   []pendingItem
	// done is set once this context has collected everything it needs and
	// is ready for finishOp to act on it.
	done bool

	hasPkg           bool
	pkgBegin, pkgEnd uint32

	// forNamed carries the node created by ArgCreateNameString until the
	// handler installs it (INSTALL_NAMESPACE_NODE happens in the
	// handler once the bound Object exists).
	forNamed *Node

	purpose ctxPurpose

	// predIsWhile distinguishes an If-predicate (one-shot) from a
	// While-predicate (re-entered on every loop iteration) when
	// purpose == purposePredicate.
	predIsWhile bool

	// calleeMethod is the retained Method object a purposeMethodCall
	// context is gathering arguments for.
	calleeMethod *Object

	// elems accumulates Package/VarPackage initializer values, collected
	// out of band from items since their count is data-driven rather
	// than a fixed arg-list length (spec §4.2 variadic tail).
	elems         []*Object
	declaredCount int
}

func (ctx *opContext) release(host Host) {
	for i := range ctx.items {
		ctx.items[i].release(host)
	}
	for _, e := range ctx.elems {
		e.Release(host)
	}
	ctx.calleeMethod.Release(host)
}

func newPredicateCtx() *opContext {
	return &opContext{info: &opcodeInfo{name: "Predicate", args: []ArgKind{ArgOperand}}, purpose: purposePredicate, predIsWhile: true}
}

// Frame is one call frame: a method/scope body plus its locals, args,
// pending op-context stack, open code blocks, and temporary nodes (spec §3
// Call frame).
type Frame struct {
	code   []byte
	offset uint32

	locals [8]*Object
	args   [7]*Object

	pending []*opContext
	blocks  []*codeBlock

	tempNodes []*Node

	scope  *Node
	method *Object

	// namedObjectsPersist mirrors the teacher's serialized-method
	// handling: if true, nodes created by this frame are permanent even
	// though the frame itself is popped.
	namedObjectsPersist bool

	// ctrlFlowReturn and returnValue are set by the Return handler; the
	// frame is popped at the next step once ctrlFlowReturn is set.
	ctrlFlowReturn bool
	returnValue    *Object

	// skipElse is set when an If block's body ran to completion, so the
	// Else block that may follow is skipped entirely (spec §4.3).
	skipElse bool
}

func newFrame(code []byte, scope *Node, method *Object, offset uint32) *Frame {
	return &Frame{code: code, scope: scope, method: method, offset: offset}
}

func (f *Frame) curBlock() *codeBlock {
	if len(f.blocks) == 0 {
		return nil
	}
	return f.blocks[len(f.blocks)-1]
}

func (f *Frame) pushBlock(b *codeBlock) { f.blocks = append(f.blocks, b) }

func (f *Frame) popBlock() *codeBlock {
	n := len(f.blocks)
	b := f.blocks[n-1]
	f.blocks = f.blocks[:n-1]
	return b
}

func (f *Frame) curOp() *opContext {
	if len(f.pending) == 0 {
		return nil
	}
	return f.pending[len(f.pending)-1]
}

func (f *Frame) pushOp(ctx *opContext) { f.pending = append(f.pending, ctx) }

func (f *Frame) popOp() *opContext {
	n := len(f.pending)
	ctx := f.pending[n-1]
	f.pending = f.pending[:n-1]
	return ctx
}

// teardown releases every resource the frame still owns: pending items,
// locals, args, and temporary namespace nodes (spec §4.5).
func (f *Frame) teardown(host Host) {
	for _, ctx := range f.pending {
		ctx.release(host)
	}
	for i := range f.locals {
		f.locals[i].Release(host)
		f.locals[i] = nil
	}
	for i := range f.args {
		f.args[i].Release(host)
		f.args[i] = nil
	}
	if !f.namedObjectsPersist {
		for _, n := range f.tempNodes {
			if n.parent != nil {
				n.parent.removeChild(n)
			}
			if n.object != nil {
				n.object.Release(host)
				n.object = nil
			}
		}
	}
	f.returnValue.Release(host)
}
