package amltest

// Builder hand-assembles AML byte sequences for tests. It mirrors the ACPI
// opcode encoding directly (see ACPI 6.x §20) rather than importing aml's
// unexported opcode table, since tests live in a separate package; opcode
// byte values below are kept in one place and named so a diff against the
// specification is easy to audit.
type Builder struct {
	buf []byte
}

// New returns an empty Builder.
func New() *Builder { return &Builder{} }

// Bytes returns the assembled byte slice.
func (b *Builder) Bytes() []byte { return b.buf }

func (b *Builder) emit(bs ...byte) *Builder {
	b.buf = append(b.buf, bs...)
	return b
}

// Raw appends bs verbatim, for opcodes this Builder has no dedicated helper
// for.
func (b *Builder) Raw(bs ...byte) *Builder { return b.emit(bs...) }

const extPrefix = 0x5B

// --- constants ---

func (b *Builder) Zero() *Builder { return b.emit(0x00) }
func (b *Builder) One() *Builder  { return b.emit(0x01) }
func (b *Builder) Ones() *Builder { return b.emit(0xFF) }

func (b *Builder) ByteConst(v byte) *Builder { return b.emit(0x0A, v) }
func (b *Builder) WordConst(v uint16) *Builder {
	return b.emit(0x0B, byte(v), byte(v>>8))
}
func (b *Builder) DWordConst(v uint32) *Builder {
	return b.emit(0x0C, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
func (b *Builder) QWordConst(v uint64) *Builder {
	b.emit(0x0E)
	for i := 0; i < 8; i++ {
		b.emit(byte(v >> (8 * uint(i))))
	}
	return b
}

// StringConst appends a StringPrefix'd NUL-terminated ASCII string.
func (b *Builder) StringConst(s string) *Builder {
	b.emit(0x0D)
	b.buf = append(b.buf, []byte(s)...)
	return b.emit(0x00)
}

// --- locals / args ---

func (b *Builder) Local(n int) *Builder { return b.emit(0x60 + byte(n)) }
func (b *Builder) Arg(n int) *Builder   { return b.emit(0x68 + byte(n)) }

// --- names ---

// Name encodes a NameString. Segments are dot-separated 4-char NameSegs,
// e.g. "_SB.PCI0.FOO_"; a leading "\" anchors at the root, leading "^"s hop
// to parent scopes. Short segments are padded with trailing '_'.
func Name(path string) []byte {
	var out []byte
	i := 0
	if len(path) > 0 && path[0] == '\\' {
		out = append(out, '\\')
		i = 1
	} else {
		for i < len(path) && path[i] == '^' {
			out = append(out, '^')
			i++
		}
	}
	rest := path[i:]
	var segs []string
	if rest != "" {
		segs = splitDots(rest)
	}
	switch len(segs) {
	case 0:
		out = append(out, 0x00)
	case 1:
		out = append(out, padSeg(segs[0])...)
	case 2:
		out = append(out, 0x2E)
		out = append(out, padSeg(segs[0])...)
		out = append(out, padSeg(segs[1])...)
	default:
		out = append(out, 0x2F, byte(len(segs)))
		for _, s := range segs {
			out = append(out, padSeg(s)...)
		}
	}
	return out
}

func splitDots(s string) []string {
	var segs []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '.' {
			segs = append(segs, s[start:i])
			start = i + 1
		}
	}
	return segs
}

func padSeg(s string) []byte {
	seg := [4]byte{'_', '_', '_', '_'}
	copy(seg[:], s)
	return seg[:]
}

// NameString appends an encoded NameString.
func (b *Builder) NameString(path string) *Builder { return b.emit(Name(path)...) }

// --- pkglength-bearing structures ---

// pkgLength encodes the ACPI PkgLength field for a payload of n bytes
// following the length field itself, always using the 4-byte form (3
// follow bytes) for simplicity since tests don't need the compact
// 1-byte encoding.
func pkgLength(n int) []byte {
	total := uint32(n) + 4
	lead := 0xC0 | byte(total&0x0F)
	return []byte{
		lead,
		byte(total >> 4),
		byte(total >> 12),
		byte(total >> 20),
	}
}

// wrapPkg prepends opcode and a PkgLength covering body, returning the
// combined byte slice.
func wrapPkg(opcode byte, body []byte) []byte {
	out := []byte{opcode}
	out = append(out, pkgLength(len(body))...)
	out = append(out, body...)
	return out
}

func wrapExtPkg(opcode byte, body []byte) []byte {
	out := []byte{extPrefix, opcode}
	out = append(out, pkgLength(len(body))...)
	out = append(out, body...)
	return out
}

// Scope wraps body in a ScopeOp naming path.
func Scope(path string, body []byte) []byte {
	b := append(Name(path), body...)
	return wrapPkg(0x10, b)
}

// Device wraps body in a DeviceOp naming path.
func Device(path string, body []byte) []byte {
	b := append(Name(path), body...)
	return wrapExtPkg(0x82, b)
}

// Method wraps body in a MethodOp naming path, with the given argument
// count (0-7) and flags byte (bit 3 = Serialized, bits 4-7 = SyncLevel).
func Method(path string, argCount byte, flags byte, body []byte) []byte {
	b := append(Name(path), argCount|flags)
	b = append(b, body...)
	return wrapPkg(0x14, b)
}

// MutexDecl encodes a MutexOp naming path with the given SyncLevel (0-15).
func MutexDecl(path string, syncLevel byte) []byte {
	b := append(Name(path), syncLevel)
	return append([]byte{extPrefix, 0x01}, b...)
}

// NameDecl encodes a NameOp binding path to the object produced by value.
func NameDecl(path string, value []byte) []byte {
	b := append(Name(path), value...)
	return append([]byte{0x08}, b...)
}

// Buffer encodes a BufferOp of the given declared byte length, with body as
// the (already-encoded) size-operand followed by raw initializer bytes.
func Buffer(sizeOperand []byte, initData []byte) []byte {
	body := append([]byte{}, sizeOperand...)
	body = append(body, initData...)
	return wrapPkg(0x11, body)
}

// Package encodes a PackageOp with the given element count and
// already-encoded element bytes.
func Package(numElements byte, elements []byte) []byte {
	body := append([]byte{numElements}, elements...)
	return wrapPkg(0x12, body)
}

// --- statements ---

// Store encodes StoreOp(source, target).
func Store(source, target []byte) []byte {
	out := []byte{0x70}
	out = append(out, source...)
	out = append(out, target...)
	return out
}

// Add/Subtract/Multiply etc. all share the TermArg,TermArg,Target shape;
// binop encodes that family generically.
func binop(opcode byte, a, b, target []byte) []byte {
	out := []byte{opcode}
	out = append(out, a...)
	out = append(out, b...)
	out = append(out, target...)
	return out
}

func Add(a, b, target []byte) []byte        { return binop(0x72, a, b, target) }
func Subtract(a, b, target []byte) []byte   { return binop(0x74, a, b, target) }
func Multiply(a, b, target []byte) []byte   { return binop(0x77, a, b, target) }
func ShiftLeft(a, b, target []byte) []byte  { return binop(0x79, a, b, target) }
func ShiftRight(a, b, target []byte) []byte { return binop(0x7A, a, b, target) }
func And(a, b, target []byte) []byte        { return binop(0x7B, a, b, target) }
func Or(a, b, target []byte) []byte         { return binop(0x7D, a, b, target) }
func Xor(a, b, target []byte) []byte        { return binop(0x7F, a, b, target) }
func Concat(a, b, target []byte) []byte     { return binop(0x73, a, b, target) }
func Index(a, b, target []byte) []byte      { return binop(0x88, a, b, target) }

func LEqual(a, b []byte) []byte   { return append(append([]byte{0x93}, a...), b...) }
func LGreater(a, b []byte) []byte { return append(append([]byte{0x94}, a...), b...) }
func LLess(a, b []byte) []byte    { return append(append([]byte{0x95}, a...), b...) }

// Increment/Decrement/RefOf/DerefOf/SizeOf/ObjectType/Not/LNot all share the
// one-SuperName/TermArg shape.
func unop(opcode byte, a []byte) []byte { return append([]byte{opcode}, a...) }

func Increment(a []byte) []byte  { return unop(0x75, a) }
func Decrement(a []byte) []byte  { return unop(0x76, a) }
func RefOf(a []byte) []byte      { return unop(0x71, a) }
func DerefOf(a []byte) []byte    { return unop(0x83, a) }
func SizeOf(a []byte) []byte     { return unop(0x87, a) }
func ObjectType(a []byte) []byte { return unop(0x8E, a) }
func LNot(a []byte) []byte       { return unop(0x92, a) }
func Not(a, target []byte) []byte {
	return append(unop(0x80, a), target...)
}

// Return encodes ReturnOp(value).
func Return(value []byte) []byte { return append([]byte{0xA4}, value...) }

// If encodes IfOp(predicate){body}.
func If(predicate, body []byte) []byte {
	b := append([]byte{}, predicate...)
	b = append(b, body...)
	return wrapPkg(0xA0, b)
}

// While encodes WhileOp(predicate){body}.
func While(predicate, body []byte) []byte {
	b := append([]byte{}, predicate...)
	b = append(b, body...)
	return wrapPkg(0xA2, b)
}

// Break/Continue/Noop are bare opcodes.
func Break() []byte    { return []byte{0xA5} }
func Continue() []byte { return []byte{0x9F} }
func Noop() []byte     { return []byte{0xA3} }

// Acquire encodes AcquireOp(mutex, timeout).
func Acquire(mutex []byte, timeout uint16) []byte {
	out := []byte{extPrefix, 0x23}
	out = append(out, mutex...)
	out = append(out, byte(timeout), byte(timeout>>8))
	return out
}

// Release encodes ReleaseOp(mutex).
func Release(mutex []byte) []byte {
	return append([]byte{extPrefix, 0x27}, mutex...)
}

// Notify encodes NotifyOp(object, value).
func Notify(object, value []byte) []byte {
	return append(append([]byte{0x86}, object...), value...)
}

// CreateDWordField/CreateByteField/CreateWordField/CreateQWordField encode
// their respective TermArg(buffer), TermArg(byteIndex), NameString shape.
func CreateByteField(buffer, byteIndex []byte, path string) []byte {
	return append(append(append([]byte{0x8C}, buffer...), byteIndex...), Name(path)...)
}
func CreateWordField(buffer, byteIndex []byte, path string) []byte {
	return append(append(append([]byte{0x8B}, buffer...), byteIndex...), Name(path)...)
}
func CreateDWordField(buffer, byteIndex []byte, path string) []byte {
	return append(append(append([]byte{0x8A}, buffer...), byteIndex...), Name(path)...)
}
func CreateQWordField(buffer, byteIndex []byte, path string) []byte {
	return append(append(append([]byte{0x8F}, buffer...), byteIndex...), Name(path)...)
}

// CreateField encodes the general form: buffer, bitIndex, numBits, path.
func CreateField(buffer, bitIndex, numBits []byte, path string) []byte {
	out := []byte{extPrefix, 0x13}
	out = append(out, buffer...)
	out = append(out, bitIndex...)
	out = append(out, numBits...)
	out = append(out, Name(path)...)
	return out
}
