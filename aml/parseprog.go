package aml

// ArgKind describes one argument slot of an opcode's parse program. This is
// a condensed form of the spec's parse-op vocabulary (§4.2): rather than
// interpreting a literal per-opcode byte program, the catalog below tags
// each argument slot with the ArgKind it expects and a single generic
// driver (engine_decode.go:stepOp) performs the corresponding action --
// immediate load, name resolution, or preemption to parse a nested
// sub-expression. See DESIGN.md for why this collapse was made.
type ArgKind uint8

const (
	// ArgNone marks the end of an opcode's argument list.
	ArgNone ArgKind = iota
	// ArgByteData / ArgWordData / ArgDwordData / ArgQwordData load N raw
	// bytes from the code stream (LOAD_IMM).
	ArgByteData
	ArgWordData
	ArgDwordData
	ArgQwordData
	// ArgAMLString loads a NUL-terminated string literal.
	ArgAMLString
	// ArgCreateNameString resolve-creates a name (CREATE_NAMESTRING).
	ArgCreateNameString
	// ArgNameString resolves an existing name; absence is NotFound.
	ArgNameString
	// ArgNameStringOrNull resolves an existing name; absence yields no
	// node rather than failing (EXISTING_NAMESTRING_OR_NULL).
	ArgNameStringOrNull
	// ArgTermArg / ArgOperand / ArgSuperName / ArgTarget / ArgSimpleName
	// all preempt: the engine parses one nested opcode as a sub-
	// expression and feeds the result back into this slot.
	ArgTermArg
	ArgOperand
	ArgSuperName
	ArgTarget
	ArgSimpleName
	// ArgTermArgOptional yields an empty item without reading the code
	// stream. No catalog row uses it: Package/VarPackage initializers are
	// collected by stepPackageArgs instead.
	ArgTermArgOptional
	// ArgPkgLen decodes a PkgLength span into ctx.pkgBegin/pkgEnd and also
	// appends it as an itemPkgLen item, so it counts in handlers' item
	// indices.
	ArgPkgLen
)

// opFlag carries cross-cutting properties consulted by CONVERT_NAMESTRING
// and by type-checking preempted results.
type opFlag uint16

const (
	opFlagNone opFlag = 0
	// opFlagHasPkgLen marks an opcode whose first structural element is a
	// PkgLength the engine must decode before any listed Args.
	opFlagHasPkgLen opFlag = 1 << iota
	// opFlagNamed marks an opcode that binds a namespace node (its first
	// ArgCreateNameString result).
	opFlagNamed
	// opFlagScopedBody marks an opcode whose body is a nested TermList
	// executed inline as a code block (Scope/Device/Processor/PowerRes/
	// ThermalZone, If/Else/While). Method does not carry it: its body runs
	// only when the method is invoked.
	opFlagScopedBody
)

// opcodeInfo is one row of the opcode catalog (spec §4.2).
type opcodeInfo struct {
	op    opcode
	name  string
	args  []ArgKind
	flags opFlag
}

func (i *opcodeInfo) hasPkgLen() bool    { return i.flags&opFlagHasPkgLen != 0 }
func (i *opcodeInfo) isNamed() bool      { return i.flags&opFlagNamed != 0 }
func (i *opcodeInfo) isScopedBody() bool { return i.flags&opFlagScopedBody != 0 }

var opcodeCatalog = buildOpcodeCatalog()

func buildOpcodeCatalog() map[opcode]*opcodeInfo {
	rows := []opcodeInfo{
		{op: opZero, name: "Zero"},
		{op: opOne, name: "One"},
		{op: opOnes, name: "Ones"},
		{op: opBytePrefix, name: "BytePrefix", args: []ArgKind{ArgByteData}},
		{op: opWordPrefix, name: "WordPrefix", args: []ArgKind{ArgWordData}},
		{op: opDwordPrefix, name: "DwordPrefix", args: []ArgKind{ArgDwordData}},
		{op: opQwordPrefix, name: "QwordPrefix", args: []ArgKind{ArgQwordData}},
		{op: opStringPrefix, name: "StringPrefix", args: []ArgKind{ArgAMLString}},
		{op: opRevision, name: "Revision"},
		{op: opDebug, name: "Debug"},
		{op: opTimer, name: "Timer"},
		{op: opNoop, name: "Noop"},
		{op: opBreakPoint, name: "BreakPoint"},

		{op: opName, name: "Name", args: []ArgKind{ArgCreateNameString, ArgTermArg}, flags: opFlagNamed},
		{op: opAlias, name: "Alias", args: []ArgKind{ArgNameString, ArgCreateNameString}, flags: opFlagNamed},

		{op: opScope, name: "Scope", args: []ArgKind{ArgPkgLen, ArgNameString}, flags: opFlagHasPkgLen | opFlagScopedBody},
		{op: opDevice, name: "Device", args: []ArgKind{ArgPkgLen, ArgCreateNameString}, flags: opFlagHasPkgLen | opFlagNamed | opFlagScopedBody},
		{op: opProcessor, name: "Processor", args: []ArgKind{ArgPkgLen, ArgCreateNameString, ArgByteData, ArgDwordData, ArgByteData}, flags: opFlagHasPkgLen | opFlagNamed | opFlagScopedBody},
		{op: opPowerRes, name: "PowerRes", args: []ArgKind{ArgPkgLen, ArgCreateNameString, ArgByteData, ArgWordData}, flags: opFlagHasPkgLen | opFlagNamed | opFlagScopedBody},
		{op: opThermalZone, name: "ThermalZone", args: []ArgKind{ArgPkgLen, ArgCreateNameString}, flags: opFlagHasPkgLen | opFlagNamed | opFlagScopedBody},
		{op: opMethod, name: "Method", args: []ArgKind{ArgPkgLen, ArgCreateNameString, ArgByteData}, flags: opFlagHasPkgLen | opFlagNamed},

		{op: opBuffer, name: "Buffer", args: []ArgKind{ArgPkgLen, ArgTermArg}, flags: opFlagHasPkgLen},
		{op: opPackage, name: "Package", args: []ArgKind{ArgPkgLen, ArgByteData}, flags: opFlagHasPkgLen},
		{op: opVarPackage, name: "VarPackage", args: []ArgKind{ArgPkgLen, ArgTermArg}, flags: opFlagHasPkgLen},

		{op: opLocal0, name: "Local0"}, {op: opLocal0 + 1, name: "Local1"}, {op: opLocal0 + 2, name: "Local2"},
		{op: opLocal0 + 3, name: "Local3"}, {op: opLocal0 + 4, name: "Local4"}, {op: opLocal0 + 5, name: "Local5"},
		{op: opLocal0 + 6, name: "Local6"}, {op: opLocal7, name: "Local7"},
		{op: opArg0, name: "Arg0"}, {op: opArg0 + 1, name: "Arg1"}, {op: opArg0 + 2, name: "Arg2"},
		{op: opArg0 + 3, name: "Arg3"}, {op: opArg0 + 4, name: "Arg4"}, {op: opArg0 + 5, name: "Arg5"},
		{op: opArg6, name: "Arg6"},

		{op: opStore, name: "Store", args: []ArgKind{ArgTermArg, ArgSuperName}},
		{op: opCopyObject, name: "CopyObject", args: []ArgKind{ArgTermArg, ArgSimpleName}},
		{op: opRefOf, name: "RefOf", args: []ArgKind{ArgSuperName}},
		{op: opCondRefOf, name: "CondRefOf", args: []ArgKind{ArgSuperName, ArgTarget}},
		{op: opDerefOf, name: "DerefOf", args: []ArgKind{ArgOperand}},

		{op: opAdd, name: "Add", args: []ArgKind{ArgOperand, ArgOperand, ArgTarget}},
		{op: opSubtract, name: "Subtract", args: []ArgKind{ArgOperand, ArgOperand, ArgTarget}},
		{op: opMultiply, name: "Multiply", args: []ArgKind{ArgOperand, ArgOperand, ArgTarget}},
		{op: opShiftLeft, name: "ShiftLeft", args: []ArgKind{ArgOperand, ArgOperand, ArgTarget}},
		{op: opShiftRight, name: "ShiftRight", args: []ArgKind{ArgOperand, ArgOperand, ArgTarget}},
		{op: opAnd, name: "And", args: []ArgKind{ArgOperand, ArgOperand, ArgTarget}},
		{op: opNand, name: "Nand", args: []ArgKind{ArgOperand, ArgOperand, ArgTarget}},
		{op: opOr, name: "Or", args: []ArgKind{ArgOperand, ArgOperand, ArgTarget}},
		{op: opNor, name: "Nor", args: []ArgKind{ArgOperand, ArgOperand, ArgTarget}},
		{op: opXor, name: "Xor", args: []ArgKind{ArgOperand, ArgOperand, ArgTarget}},
		{op: opMod, name: "Mod", args: []ArgKind{ArgOperand, ArgOperand, ArgTarget}},
		{op: opDivide, name: "Divide", args: []ArgKind{ArgOperand, ArgOperand, ArgTarget, ArgTarget}},
		{op: opConcat, name: "Concatenate", args: []ArgKind{ArgOperand, ArgOperand, ArgTarget}},
		{op: opConcatRes, name: "ConcatenateResTemplate", args: []ArgKind{ArgOperand, ArgOperand, ArgTarget}},

		{op: opNot, name: "Not", args: []ArgKind{ArgOperand, ArgTarget}},
		{op: opFindSetLeftBit, name: "FindSetLeftBit", args: []ArgKind{ArgOperand, ArgTarget}},
		{op: opFindSetRightBit, name: "FindSetRightBit", args: []ArgKind{ArgOperand, ArgTarget}},
		{op: opFromBCD, name: "FromBCD", args: []ArgKind{ArgOperand, ArgTarget}},
		{op: opToBCD, name: "ToBCD", args: []ArgKind{ArgOperand, ArgTarget}},
		{op: opIncrement, name: "Increment", args: []ArgKind{ArgSuperName}},
		{op: opDecrement, name: "Decrement", args: []ArgKind{ArgSuperName}},

		{op: opLand, name: "LAnd", args: []ArgKind{ArgOperand, ArgOperand}},
		{op: opLor, name: "LOr", args: []ArgKind{ArgOperand, ArgOperand}},
		{op: opLnot, name: "LNot", args: []ArgKind{ArgOperand}},
		{op: opLEqual, name: "LEqual", args: []ArgKind{ArgOperand, ArgOperand}},
		{op: opLGreater, name: "LGreater", args: []ArgKind{ArgOperand, ArgOperand}},
		{op: opLLess, name: "LLess", args: []ArgKind{ArgOperand, ArgOperand}},

		{op: opSizeOf, name: "SizeOf", args: []ArgKind{ArgSuperName}},
		{op: opObjectType, name: "ObjectType", args: []ArgKind{ArgSuperName}},
		{op: opIndex, name: "Index", args: []ArgKind{ArgOperand, ArgOperand, ArgTarget}},
		{op: opMatch, name: "Match", args: []ArgKind{ArgOperand, ArgByteData, ArgOperand, ArgByteData, ArgOperand, ArgOperand}},

		{op: opCreateBitField, name: "CreateBitField", args: []ArgKind{ArgOperand, ArgOperand, ArgCreateNameString}, flags: opFlagNamed},
		{op: opCreateByteField, name: "CreateByteField", args: []ArgKind{ArgOperand, ArgOperand, ArgCreateNameString}, flags: opFlagNamed},
		{op: opCreateWordField, name: "CreateWordField", args: []ArgKind{ArgOperand, ArgOperand, ArgCreateNameString}, flags: opFlagNamed},
		{op: opCreateDWordField, name: "CreateDWordField", args: []ArgKind{ArgOperand, ArgOperand, ArgCreateNameString}, flags: opFlagNamed},
		{op: opCreateQWordField, name: "CreateQWordField", args: []ArgKind{ArgOperand, ArgOperand, ArgCreateNameString}, flags: opFlagNamed},
		{op: opCreateField, name: "CreateField", args: []ArgKind{ArgOperand, ArgOperand, ArgOperand, ArgCreateNameString}, flags: opFlagNamed},

		{op: opToHexString, name: "ToHexString", args: []ArgKind{ArgOperand, ArgTarget}},
		{op: opToDecimalString, name: "ToDecimalString", args: []ArgKind{ArgOperand, ArgTarget}},
		{op: opToBuffer, name: "ToBuffer", args: []ArgKind{ArgOperand, ArgTarget}},
		{op: opToInteger, name: "ToInteger", args: []ArgKind{ArgOperand, ArgTarget}},
		{op: opToString, name: "ToString", args: []ArgKind{ArgOperand, ArgOperand, ArgTarget}},
		{op: opMid, name: "Mid", args: []ArgKind{ArgOperand, ArgOperand, ArgOperand, ArgTarget}},

		{op: opIf, name: "If", args: []ArgKind{ArgPkgLen, ArgOperand}, flags: opFlagHasPkgLen | opFlagScopedBody},
		{op: opElse, name: "Else", args: []ArgKind{ArgPkgLen}, flags: opFlagHasPkgLen | opFlagScopedBody},
		{op: opWhile, name: "While", args: []ArgKind{ArgPkgLen, ArgOperand}, flags: opFlagHasPkgLen | opFlagScopedBody},
		{op: opReturn, name: "Return", args: []ArgKind{ArgTermArg}},
		{op: opBreak, name: "Break"},
		{op: opContinue, name: "Continue"},

		{op: opMutex, name: "Mutex", args: []ArgKind{ArgCreateNameString, ArgByteData}, flags: opFlagNamed},
		{op: opAcquire, name: "Acquire", args: []ArgKind{ArgSuperName, ArgWordData}},
		{op: opRelease, name: "Release", args: []ArgKind{ArgSuperName}},
		{op: opNotify, name: "Notify", args: []ArgKind{ArgSuperName, ArgOperand}},

		{op: opOpRegion, name: "OpRegion", args: []ArgKind{ArgCreateNameString, ArgByteData, ArgTermArg, ArgTermArg}, flags: opFlagNamed},
		{op: opField, name: "Field", args: []ArgKind{ArgPkgLen, ArgNameString, ArgByteData}, flags: opFlagHasPkgLen},

		{op: opExternal, name: "External", args: []ArgKind{ArgNameStringOrNull, ArgByteData, ArgByteData}},
	}

	m := make(map[opcode]*opcodeInfo, len(rows))
	for i := range rows {
		r := rows[i]
		m[r.op] = &r
	}
	return m
}
