package aml

// handleName implements DefName: bind the TermArg value to the freshly
// created node and install it (spec §4.2 Name).
func (ev *Evaluator) handleName(f *Frame, ctx *opContext) error {
	node := ctx.forNamed
	val := ctx.items[1].obj
	node.Bind(val, ev.host)
	ev.installNode(f, node)
	return nil
}

// handleAlias implements DefAlias: the alias node shares the aliased
// node's Object (spec §4.2 Alias).
func (ev *Evaluator) handleAlias(f *Frame, ctx *opContext) error {
	target := ctx.items[0].node
	aliasNode := ctx.items[1].node
	if target == nil || target.Object() == nil {
		return errNotFound
	}
	aliasNode.Bind(target.Object(), ev.host)
	ev.installNode(f, aliasNode)
	return nil
}

// handleMethod implements DefMethod: bind a Method object carrying a
// pointer at the (as yet unexecuted) body bytes; the body is skipped
// entirely at declaration time (spec §4.2 Method: "binds to a node;
// execution is deferred to invocation").
func (ev *Evaluator) handleMethod(f *Frame, ctx *opContext) error {
	node := ctx.forNamed
	flags := ctx.items[2].obj.i
	argCount := uint8(flags & 0x7)
	serialized := flags&0x8 != 0
	syncLevel := uint8((flags >> 4) & 0xF)

	bodyStart := f.offset
	code := cr(f).slice(bodyStart, ctx.pkgEnd)
	m := newMethod(code, argCount, serialized, syncLevel)
	m.method.node = node
	node.Bind(m, ev.host)
	m.Release(ev.host)
	ev.installNode(f, node)
	return nil
}

// handleMutex implements DefMutex (spec §4.2 Mutex / Acquire / Release).
func (ev *Evaluator) handleMutex(f *Frame, ctx *opContext) error {
	node := ctx.forNamed
	syncLevel := uint8(ctx.items[1].obj.i & 0xF)
	handle, err := ev.host.MutexCreate()
	if err != nil {
		return err
	}
	m := newMutex(handle, syncLevel)
	node.Bind(m, ev.host)
	m.Release(ev.host)
	ev.installNode(f, node)
	return nil
}

// handleOpRegion implements DefOpRegion (spec §4.2 OpRegion).
func (ev *Evaluator) handleOpRegion(f *Frame, ctx *opContext) error {
	node := ctx.forNamed
	space := RegionSpace(ctx.items[1].obj.i)
	offsetObj, err := ev.coerceOperand(ctx.items[2].obj)
	if err != nil {
		return err
	}
	lengthObj, err := ev.coerceOperand(ctx.items[3].obj)
	if err != nil {
		offsetObj.Release(ev.host)
		return err
	}
	region := NewOperationRegion(space, offsetObj.i, lengthObj.i)
	offsetObj.Release(ev.host)
	lengthObj.Release(ev.host)
	node.Bind(region, ev.host)
	region.Release(ev.host)
	ev.installNode(f, node)
	ctx.items[2].obj = nil
	ctx.items[3].obj = nil
	return nil
}

// handleField implements a simplified DefField: it walks the FieldList
// decoding NamedField and ReservedField elements into named BufferField
// objects backed by the region, advancing a running bit offset. AccessField
// elements are skipped rather than applied; ConnectField and
// ExtendedAccessField elements are not recognized. readField/writeField
// accept only a Buffer backing, so reading or writing these fields fails
// with a type mismatch and the Host's RegionRead/RegionWrite are never
// called; see DESIGN.md.
func (ev *Evaluator) handleField(f *Frame, ctx *opContext) error {
	regionNode := ctx.items[1].node
	if regionNode == nil || regionNode.Object() == nil || regionNode.Object().Kind != KindOperationRegion {
		return errTypeMismatch
	}
	region := regionNode.Object()
	flags := ctx.items[2].obj.i
	_ = flags // field-unit access type; not yet differentiated, see DESIGN.md

	bitOffset := uint64(0)
	off := f.offset
	r := &codeReader{data: f.code}
	for off < ctx.pkgEnd {
		lead, err := r.peekByte(off)
		if err != nil {
			return err
		}
		switch lead {
		case 0x00: // ReservedField
			off++
			begin, end, err := decodePkgLength(r, &off)
			if err != nil {
				return err
			}
			bitOffset += uint64(end - begin)
		case 0x01: // AccessField
			off += 3
		default:
			seg, err := r.readBytes(&off, 4)
			if err != nil {
				return err
			}
			var name [4]byte
			copy(name[:], seg)
			bitsRaw, err := decodeFieldBitCount(r, &off)
			if err != nil {
				return err
			}
			pn := parsedName{segments: [][4]byte{name}}
			node, err := ev.ns.ResolveCreateLast(f.scope, pn)
			if err != nil {
				return err
			}
			fieldObj := newBufferField(region, bitOffset, bitsRaw, false)
			node.Bind(fieldObj, ev.host)
			fieldObj.Release(ev.host)
			ev.installNode(f, node)
			bitOffset += bitsRaw
		}
	}
	f.offset = ctx.pkgEnd
	return nil
}

// decodeFieldBitCount reads a field unit's bit-width, encoded the same way
// as PkgLength (ACPI reuses that encoding for field lengths too).
func decodeFieldBitCount(r *codeReader, offset *uint32) (uint64, error) {
	begin, end, err := decodePkgLength(r, offset)
	if err != nil {
		return 0, err
	}
	return uint64(end - begin), nil
}

// handleBuffer implements DefBuffer: the size TermArg has already been
// collected generically; the remaining bytes up to pkgEnd are the raw
// ByteList initializer, copied verbatim rather than parsed as expressions
// (spec §4.2 Buffer).
func (ev *Evaluator) handleBuffer(f *Frame, ctx *opContext) (*Object, error) {
	sizeObj, err := ev.coerceOperand(ctx.items[1].obj)
	if err != nil {
		return nil, err
	}
	size := sizeObj.i
	sizeObj.Release(ev.host)
	ctx.items[1].obj = nil

	init := cr(f).slice(f.offset, ctx.pkgEnd)
	buf, err := NewBuffer(size, init)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// handlePackage implements DefPackage/DefVarPackage: pad or truncate the
// collected initializer elements to the declared slot count (spec §4.2
// Package).
func (ev *Evaluator) handlePackage(ctx *opContext) (*Object, error) {
	pkg := NewPackage(ctx.declaredCount)
	elems, _ := pkg.Elements()
	for i := 0; i < len(ctx.elems) && i < len(elems); i++ {
		elems[i].Release(ev.host)
		elems[i] = ctx.elems[i]
	}
	for i := len(elems); i < len(ctx.elems); i++ {
		ctx.elems[i].Release(ev.host)
	}
	ctx.elems = nil
	return pkg, nil
}
