package aml

// operandInt coerces a collected item's object to Integer in place (spec
// §4.4 Operand coercion), so the caller no longer separately owns the
// pre-coercion object — ctx.release will release whatever operandInt left
// in it.obj.
func (ev *Evaluator) operandInt(it *pendingItem) (uint64, error) {
	coerced, err := ev.coerceOperand(it.obj)
	it.obj = coerced
	if err != nil {
		return 0, err
	}
	return coerced.i, nil
}

// handleBinaryALU implements Add/Subtract/Multiply/Shift*/And/Nand/Or/Nor
// /Xor/Mod/Divide: two Operands, a Target (Divide has two). The optional
// target receives a Store of the result in addition to it being returned
// for potential nested use (spec §4.2 arithmetic operators).
func (ev *Evaluator) handleBinaryALU(f *Frame, ctx *opContext) (*Object, error) {
	a, err := ev.operandInt(&ctx.items[0])
	if err != nil {
		return nil, err
	}
	b, err := ev.operandInt(&ctx.items[1])
	if err != nil {
		return nil, err
	}

	if ctx.info.op == opDivide {
		var quotient, remainder uint64
		if b == 0 {
			ev.logf(LevelWarn, "Divide: division by zero, yielding 0")
		} else {
			quotient = ev.truncate(a / b)
			remainder = ev.truncate(a % b)
		}
		if t := ctx.items[2].tgt; t.kind != targetNone {
			if err := ev.storeToTarget(f, t, NewInteger(remainder)); err != nil {
				return nil, err
			}
		}
		result := NewInteger(quotient)
		if t := ctx.items[3].tgt; t.kind != targetNone {
			if err := ev.storeToTarget(f, t, result.Retain()); err != nil {
				return nil, err
			}
		}
		return result, nil
	}

	var v uint64
	switch ctx.info.op {
	case opAdd:
		v = a + b
	case opSubtract:
		v = a - b
	case opMultiply:
		v = a * b
	case opShiftLeft:
		if b >= 64 {
			v = 0
		} else {
			v = a << b
		}
	case opShiftRight:
		if b >= 64 {
			v = 0
		} else {
			v = a >> b
		}
	case opAnd:
		v = a & b
	case opNand:
		v = ^(a & b)
	case opOr:
		v = a | b
	case opNor:
		v = ^(a | b)
	case opXor:
		v = a ^ b
	case opMod:
		if b == 0 {
			ev.logf(LevelWarn, "Mod: modulo by zero, yielding 0")
			v = 0
		} else {
			v = a % b
		}
	}
	v = ev.truncate(v)
	result := NewInteger(v)
	if t := ctx.items[2].tgt; t.kind != targetNone {
		if err := ev.storeToTarget(f, t, result.Retain()); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// handleUnaryALU implements Not/FindSetLeftBit/FindSetRightBit/FromBCD
// /ToBCD: one Operand, one Target.
func (ev *Evaluator) handleUnaryALU(f *Frame, ctx *opContext, fn func(uint64) uint64) (*Object, error) {
	a, err := ev.operandInt(&ctx.items[0])
	if err != nil {
		return nil, err
	}
	v := ev.truncate(fn(a))
	result := NewInteger(v)
	if t := ctx.items[1].tgt; t.kind != targetNone {
		if err := ev.storeToTarget(f, t, result.Retain()); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func findSetLeftBit(v uint64) uint64 {
	if v == 0 {
		return 0
	}
	bit := 0
	for v != 0 {
		v >>= 1
		bit++
	}
	return uint64(bit)
}

func findSetRightBit(v uint64) uint64 {
	if v == 0 {
		return 0
	}
	bit := 1
	for v&1 == 0 {
		v >>= 1
		bit++
	}
	return uint64(bit)
}

func fromBCD(v uint64) uint64 {
	var out uint64
	shift := uint64(1)
	for v != 0 {
		digit := v & 0xF
		out += digit * shift
		shift *= 10
		v >>= 4
	}
	return out
}

func toBCD(v uint64) uint64 {
	var out uint64
	shift := uint(0)
	for v != 0 {
		digit := v % 10
		out |= digit << shift
		shift += 4
		v /= 10
	}
	return out
}

// handleIncDec implements Increment/Decrement: a SuperName that is both
// read and written (spec §4.2).
func (ev *Evaluator) handleIncDec(f *Frame, ctx *opContext) (*Object, error) {
	tgt := ctx.items[0].tgt
	cur, err := ev.loadFromTarget(f, tgt)
	if err != nil {
		return nil, err
	}
	curInt, err := ev.coerceOperand(cur)
	if err != nil {
		return nil, err
	}
	delta := uint64(1)
	if ctx.info.op == opDecrement {
		delta = ^uint64(0) // -1
	}
	v := ev.truncate(curInt.i + delta)
	curInt.Release(ev.host)
	result := NewInteger(v)
	if err := ev.storeToTarget(f, tgt, result.Retain()); err != nil {
		result.Release(ev.host)
		return nil, err
	}
	return result, nil
}

// handleLogic implements LAnd/LOr/LNot/LEqual/LGreater/LLess. LAnd/LOr/LNot
// coerce to Integer; LEqual/LGreater/LLess compare Strings/Buffers
// lexicographically (length as tiebreak) rather than coercing, per spec
// §4.2 binary/logical operators.
func (ev *Evaluator) handleLogic(ctx *opContext) (*Object, error) {
	switch ctx.info.op {
	case opLnot:
		a, err := ev.operandInt(&ctx.items[0])
		if err != nil {
			return nil, err
		}
		return ev.newBool(a == 0), nil
	case opLand, opLor:
		a, err := ev.operandInt(&ctx.items[0])
		if err != nil {
			return nil, err
		}
		b, err := ev.operandInt(&ctx.items[1])
		if err != nil {
			return nil, err
		}
		if ctx.info.op == opLand {
			return ev.newBool(a != 0 && b != 0), nil
		}
		return ev.newBool(a != 0 || b != 0), nil
	}

	cmp, err := ev.compareOperands(ctx.items[0].obj, ctx.items[1].obj)
	if err != nil {
		return nil, err
	}
	switch ctx.info.op {
	case opLEqual:
		return ev.newBool(cmp == 0), nil
	case opLGreater:
		return ev.newBool(cmp > 0), nil
	case opLLess:
		return ev.newBool(cmp < 0), nil
	}
	return nil, errUnimplementedOpcode
}

// compareOperands implements LEqual/LGreater/LLess's comparator: if either
// side is an Integer, both sides convert to Integer; otherwise both sides
// must share a Kind and compare as bytes with length as tiebreak.
func (ev *Evaluator) compareOperands(x, y *Object) (int, error) {
	if x.Kind == KindInteger || y.Kind == KindInteger {
		xi, err := ev.toIntegerObj(x)
		if err != nil {
			return 0, err
		}
		yi, err := ev.toIntegerObj(y)
		if err != nil {
			xi.Release(ev.host)
			return 0, err
		}
		defer xi.Release(ev.host)
		defer yi.Release(ev.host)
		switch {
		case xi.i < yi.i:
			return -1, nil
		case xi.i > yi.i:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if x.Kind != y.Kind {
		return 0, errTypeMismatch
	}
	switch x.Kind {
	case KindString:
		return compareBytesLenTiebreak(x.str.text, y.str.text), nil
	case KindBuffer:
		return compareBytesLenTiebreak(x.buf.data, y.buf.data), nil
	default:
		return 0, errTypeMismatch
	}
}

func compareBytesLenTiebreak(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return int(a[i]) - int(b[i])
		}
	}
	return len(a) - len(b)
}
