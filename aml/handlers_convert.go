package aml

// handleConcatenate implements Concatenate/ConcatenateResTemplate, dispatched
// on the first operand's Kind: Integer emits a Buffer of two width-sized
// little-endian integers, Buffer does a byte concat, String coerces the
// second operand to a String (Buffer is disallowed) and concatenates text
// (spec §4.4 Concatenate).
func (ev *Evaluator) handleConcatenate(f *Frame, ctx *opContext) (*Object, error) {
	a := ctx.items[0].obj
	b := ctx.items[1].obj

	var result *Object
	var err error
	switch a.Kind {
	case KindInteger:
		bi, cerr := ev.toIntegerObj(b)
		if cerr != nil {
			return nil, cerr
		}
		width := 8
		if ev.revision == 1 {
			width = 4
		}
		data := make([]byte, width*2)
		for i := 0; i < width; i++ {
			data[i] = byte(a.i >> (8 * uint(i)))
			data[width+i] = byte(bi.i >> (8 * uint(i)))
		}
		bi.Release(ev.host)
		result, err = NewBuffer(uint64(len(data)), data)
	case KindBuffer:
		bb, cerr := ev.toBuffer(b)
		if cerr != nil {
			return nil, cerr
		}
		data := make([]byte, 0, len(a.buf.data)+len(bb.buf.data))
		data = append(data, a.buf.data...)
		data = append(data, bb.buf.data...)
		bb.Release(ev.host)
		result, err = NewBuffer(uint64(len(data)), data)
	case KindString:
		if b.Kind == KindBuffer {
			return nil, errConcatStringBuffer
		}
		bs, cerr := ev.toStringImplicit(b)
		if cerr != nil {
			return nil, cerr
		}
		text := make([]byte, 0, len(a.str.text)+len(bs.str.text))
		text = append(text, a.str.text...)
		text = append(text, bs.str.text...)
		bs.Release(ev.host)
		result = NewString(text)
	default:
		return nil, errTypeMismatch
	}
	if err != nil {
		return nil, err
	}

	if t := ctx.items[2].tgt; t.kind != targetNone {
		if serr := ev.storeToTarget(f, t, result.Retain()); serr != nil {
			result.Release(ev.host)
			return nil, serr
		}
	}
	return result, nil
}

// handleMid implements Mid: Source, ByteIndex, ByteLength, Target. A String
// source yields a String; any other source converts to Buffer first (spec
// §4.4 Mid).
func (ev *Evaluator) handleMid(f *Frame, ctx *opContext) (*Object, error) {
	src := ctx.items[0].obj
	index, err := ev.peekInteger(ctx.items[1].obj)
	if err != nil {
		return nil, err
	}
	length, err := ev.peekInteger(ctx.items[2].obj)
	if err != nil {
		return nil, err
	}

	var result *Object
	if src.Kind == KindString {
		text := src.str.text
		lo, hi := midBounds(uint64(len(text)), index, length)
		result = NewString(append([]byte(nil), text[lo:hi]...))
	} else {
		buf, cerr := ev.toBuffer(src)
		if cerr != nil {
			return nil, cerr
		}
		lo, hi := midBounds(uint64(len(buf.buf.data)), index, length)
		sliced := append([]byte(nil), buf.buf.data[lo:hi]...)
		buf.Release(ev.host)
		result, err = NewBuffer(uint64(len(sliced)), sliced)
		if err != nil {
			return nil, err
		}
	}

	if t := ctx.items[3].tgt; t.kind != targetNone {
		if serr := ev.storeToTarget(f, t, result.Retain()); serr != nil {
			result.Release(ev.host)
			return nil, serr
		}
	}
	return result, nil
}

// midBounds clips [index, index+length) to [0, n].
func midBounds(n, index, length uint64) (uint64, uint64) {
	if index > n {
		index = n
	}
	hi := index + length
	if hi > n {
		hi = n
	}
	return index, hi
}

// handleToX implements ToBuffer/ToInteger/ToHexString/ToDecimalString: one
// Operand, one Target, dispatched through the supplied conversion (spec §4.4
// Mid/ToString/To{Integer,Buffer,HexString,DecimalString}).
func (ev *Evaluator) handleToX(f *Frame, ctx *opContext, conv func(*Object) (*Object, error)) (*Object, error) {
	result, err := conv(ctx.items[0].obj)
	if err != nil {
		return nil, err
	}
	if t := ctx.items[1].tgt; t.kind != targetNone {
		if serr := ev.storeToTarget(f, t, result.Retain()); serr != nil {
			result.Release(ev.host)
			return nil, serr
		}
	}
	return result, nil
}

// handleToString implements ToString: Buffer, Length, Target. Length of
// Ones means "render up to the first NUL"; otherwise the rendered String is
// clipped to at most Length bytes.
func (ev *Evaluator) handleToString(f *Frame, ctx *opContext) (*Object, error) {
	src := ctx.items[0].obj
	if src.Kind != KindBuffer {
		return nil, errTypeMismatch
	}
	length, err := ev.peekInteger(ctx.items[1].obj)
	if err != nil {
		return nil, err
	}

	data := src.buf.data
	end := len(data)
	for i, b := range data {
		if b == 0 {
			end = i
			break
		}
	}
	if length != ev.ones() && length < uint64(end) {
		end = int(length)
	}
	result := NewString(append([]byte(nil), data[:end]...))

	if t := ctx.items[2].tgt; t.kind != targetNone {
		if serr := ev.storeToTarget(f, t, result.Retain()); serr != nil {
			result.Release(ev.host)
			return nil, serr
		}
	}
	return result, nil
}

// handleCreateField implements CreateField and the CreateXField family: a
// new BufferField node bound to the Buffer operand at a bit index/length
// computed per variant. CreateField's general form forces field reads to
// always produce a Buffer regardless of width (spec §4.4 CreateField).
func (ev *Evaluator) handleCreateField(f *Frame, ctx *opContext) error {
	backing := ctx.items[0].obj
	if backing.Kind != KindBuffer {
		return errTypeMismatch
	}

	var bitIndex, bitLength uint64
	var nodeIdx int
	forceBuffer := false

	switch ctx.info.op {
	case opCreateBitField:
		idx, err := ev.peekInteger(ctx.items[1].obj)
		if err != nil {
			return err
		}
		bitIndex, bitLength, nodeIdx = idx, 1, 2
	case opCreateByteField:
		idx, err := ev.peekInteger(ctx.items[1].obj)
		if err != nil {
			return err
		}
		bitIndex, bitLength, nodeIdx = idx*8, 8, 2
	case opCreateWordField:
		idx, err := ev.peekInteger(ctx.items[1].obj)
		if err != nil {
			return err
		}
		bitIndex, bitLength, nodeIdx = idx*8, 16, 2
	case opCreateDWordField:
		idx, err := ev.peekInteger(ctx.items[1].obj)
		if err != nil {
			return err
		}
		bitIndex, bitLength, nodeIdx = idx*8, 32, 2
	case opCreateQWordField:
		idx, err := ev.peekInteger(ctx.items[1].obj)
		if err != nil {
			return err
		}
		bitIndex, bitLength, nodeIdx = idx*8, 64, 2
	case opCreateField:
		bitIdx, err := ev.peekInteger(ctx.items[1].obj)
		if err != nil {
			return err
		}
		bits, err := ev.peekInteger(ctx.items[2].obj)
		if err != nil {
			return err
		}
		bitIndex, bitLength, nodeIdx, forceBuffer = bitIdx, bits, 3, true
	default:
		return errUnimplementedOpcode
	}

	if bitIndex+bitLength > uint64(len(backing.buf.data))*8 {
		return errBitSpanOutOfRange
	}

	node := ctx.items[nodeIdx].node
	field := newBufferField(backing, bitIndex, bitLength, forceBuffer)
	node.Bind(field, ev.host)
	field.Release(ev.host)
	ev.installNode(f, node)
	return nil
}

// handleAcquire implements Acquire: SuperName naming a Mutex, a timeout in
// AML's 0-0xFFFF unit; returns true on timeout, false on success (ACPI's
// inverted boolean convention for Acquire's return value).
func (ev *Evaluator) handleAcquire(f *Frame, ctx *opContext) (*Object, error) {
	mutex, err := ev.mutexFromTarget(f, ctx.items[0].tgt)
	if err != nil {
		return nil, err
	}
	timeout := uint16(ctx.items[1].obj.i)
	acquired, err := ev.host.MutexAcquire(mutex.mutex.handle, timeout)
	if err != nil {
		return nil, err
	}
	return ev.newBool(!acquired), nil
}

// handleRelease implements Release: SuperName naming a Mutex.
func (ev *Evaluator) handleRelease(f *Frame, ctx *opContext) error {
	mutex, err := ev.mutexFromTarget(f, ctx.items[0].tgt)
	if err != nil {
		return err
	}
	ev.host.MutexRelease(mutex.mutex.handle)
	return nil
}

func (ev *Evaluator) mutexFromTarget(f *Frame, t targetRef) (*Object, error) {
	obj, err := ev.rawTargetObject(f, t)
	if err != nil {
		return nil, err
	}
	defer obj.Release(ev.host)
	bottom, err := unwrapReference(obj)
	if err != nil {
		return nil, err
	}
	if bottom.Kind != KindMutex {
		return nil, errTypeMismatch
	}
	return bottom, nil
}

// handleNotify implements Notify: SuperName naming a Device/ThermalZone
// /Processor/PowerResource, plus an Operand value delivered to the host.
func (ev *Evaluator) handleNotify(f *Frame, ctx *opContext) error {
	t := ctx.items[0].tgt
	if t.kind != targetNode || t.node == nil {
		return errTypeMismatch
	}
	value, err := ev.peekInteger(ctx.items[1].obj)
	if err != nil {
		return err
	}
	ev.host.Notify(t.node, value)
	return nil
}
