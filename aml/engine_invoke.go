package aml

// invokeHandler runs the semantic action for a fully-collected, non-scoped
// -body op-context and returns the value it produces (nil if the opcode is
// purely side-effecting). ctx.items/ctx.elems are still owned by ctx at
// call time; handlers that keep a value must Retain it, since finishOp
// releases ctx's items right after this returns.
func (ev *Evaluator) invokeHandler(f *Frame, ctx *opContext) (*Object, error) {
	switch ctx.info.op {
	case opZero:
		return NewInteger(0), nil
	case opOne:
		return NewInteger(1), nil
	case opOnes:
		return NewInteger(ev.ones()), nil
	case opRevision:
		return NewInteger(uint64(ev.revision)), nil
	case opDebug:
		return NewDebug(), nil
	case opTimer:
		return NewInteger(ev.host.Now()), nil
	case opNoop, opBreakPoint:
		return nil, nil

	case opBytePrefix, opWordPrefix, opDwordPrefix, opQwordPrefix, opStringPrefix:
		return ctx.items[0].obj.Retain(), nil

	default:
		if isLocalOp(ctx.info.op) {
			return ev.readSlot(f.locals[ctx.info.op-opLocal0]), nil
		}
		if isArgOp(ctx.info.op) {
			return ev.readSlot(f.args[ctx.info.op-opArg0]), nil
		}
	}

	switch ctx.info.op {
	case opName:
		return nil, ev.handleName(f, ctx)
	case opAlias:
		return nil, ev.handleAlias(f, ctx)
	case opMethod:
		return nil, ev.handleMethod(f, ctx)
	case opMutex:
		return nil, ev.handleMutex(f, ctx)
	case opOpRegion:
		return nil, ev.handleOpRegion(f, ctx)
	case opField:
		return nil, ev.handleField(f, ctx)
	case opBuffer:
		return ev.handleBuffer(f, ctx)
	case opPackage, opVarPackage:
		return ev.handlePackage(ctx)

	case opStore:
		return ev.handleStore(f, ctx)
	case opCopyObject:
		return ev.handleCopyObject(f, ctx)
	case opRefOf:
		return ev.handleRefOf(f, ctx)
	case opCondRefOf:
		return ev.handleCondRefOf(f, ctx)
	case opDerefOf:
		return ev.handleDerefOf(ctx)
	case opIndex:
		return ev.handleIndexOp(f, ctx)
	case opMatch:
		return ev.handleMatch(ctx)
	case opSizeOf:
		return ev.handleSizeOf(f, ctx)
	case opObjectType:
		return ev.handleObjectType(f, ctx)

	case opIncrement, opDecrement:
		return ev.handleIncDec(f, ctx)
	case opNot:
		return ev.handleUnaryALU(f, ctx, func(v uint64) uint64 { return ^v })
	case opFindSetLeftBit:
		return ev.handleUnaryALU(f, ctx, findSetLeftBit)
	case opFindSetRightBit:
		return ev.handleUnaryALU(f, ctx, findSetRightBit)
	case opFromBCD:
		return ev.handleUnaryALU(f, ctx, fromBCD)
	case opToBCD:
		return ev.handleUnaryALU(f, ctx, toBCD)

	case opAdd, opSubtract, opMultiply, opShiftLeft, opShiftRight,
		opAnd, opNand, opOr, opNor, opXor, opMod, opDivide:
		return ev.handleBinaryALU(f, ctx)

	case opLand, opLor, opLnot, opLEqual, opLGreater, opLLess:
		return ev.handleLogic(ctx)

	case opConcat:
		return ev.handleConcatenate(f, ctx)
	case opConcatRes:
		return ev.handleConcatenate(f, ctx)
	case opMid:
		return ev.handleMid(f, ctx)
	case opToBuffer:
		return ev.handleToX(f, ctx, ev.toBuffer)
	case opToInteger:
		return ev.handleToX(f, ctx, ev.toIntegerObj)
	case opToHexString:
		return ev.handleToX(f, ctx, ev.toHexString)
	case opToDecimalString:
		return ev.handleToX(f, ctx, ev.toDecimalString)
	case opToString:
		return ev.handleToString(f, ctx)

	case opCreateBitField, opCreateByteField, opCreateWordField, opCreateDWordField, opCreateQWordField, opCreateField:
		return nil, ev.handleCreateField(f, ctx)

	case opAcquire:
		return ev.handleAcquire(f, ctx)
	case opRelease:
		return nil, ev.handleRelease(f, ctx)
	case opNotify:
		return nil, ev.handleNotify(f, ctx)

	case opReturn:
		// Integer/String/Buffer values are returned as copies; other kinds
		// are returned shared.
		val := ctx.items[0].obj
		switch {
		case val == nil:
		case val.Kind == KindInteger:
			val = NewInteger(val.i)
		case val.Kind == KindString:
			val = NewString(val.str.text)
		case val.Kind == KindBuffer:
			cp, err := NewBuffer(uint64(len(val.buf.data)), val.buf.data)
			if err != nil {
				return nil, err
			}
			val = cp
		default:
			val.Retain()
		}
		f.ctrlFlowReturn = true
		f.returnValue = val
		return nil, nil

	case opExternal:
		return nil, nil
	}

	return nil, errUnimplementedOpcode
}

// readSlot returns a Local/Arg's value: the RefLocal/RefArg box wrapping a
// slot is looked through, while any other Reference stored in the slot
// (RefOf, Index) is returned as itself.
func (ev *Evaluator) readSlot(slot *Object) *Object {
	if slot == nil {
		return NewUninitialized()
	}
	if slot.Kind == KindReference && (slot.ref.kind == RefLocal || slot.ref.kind == RefArg) {
		return slot.ref.target.Retain()
	}
	return slot.Retain()
}
