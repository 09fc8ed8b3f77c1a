package aml

// Kind tags the variant an Object currently holds.
type Kind uint8

const (
	KindUninitialized Kind = iota
	KindInteger
	KindString
	KindBuffer
	KindPackage
	KindReference
	KindBufferField
	KindBufferIndex
	KindOperationRegion
	KindMethod
	KindMutex
	KindProcessor
	KindPowerResource
	KindThermalZone
	KindDevice
	KindDebug
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindString:
		return "String"
	case KindBuffer:
		return "Buffer"
	case KindPackage:
		return "Package"
	case KindReference:
		return "Reference"
	case KindBufferField:
		return "BufferField"
	case KindBufferIndex:
		return "BufferField" // ObjectType reports BufferIndex as BufferField, see spec §9 open question
	case KindOperationRegion:
		return "OperationRegion"
	case KindMethod:
		return "Method"
	case KindMutex:
		return "Mutex"
	case KindProcessor:
		return "Processor"
	case KindPowerResource:
		return "PowerResource"
	case KindThermalZone:
		return "ThermalZone"
	case KindDevice:
		return "Device"
	case KindDebug:
		return "Debug"
	default:
		return "Uninitialized"
	}
}

// RefKind discriminates the binding site a Reference object was created
// over.
type RefKind uint8

const (
	RefOfTarget RefKind = iota
	RefArg
	RefLocal
	RefNamed
	RefPkgIndex
)

// Object is a refcounted, variant-tagged ACPI value. Only the field(s)
// matching Kind are meaningful; it is shared by pointer and must be
// retained/released through Retain/Release rather than copied.
type Object struct {
	refs int32
	Kind Kind

	i uint64 // Integer; also Processor.blockLen misuse avoided via dedicated struct below

	str    *stringPayload
	buf    *bufferPayload
	pkg    *packagePayload
	ref    *refPayload
	field  *fieldPayload
	index  *indexPayload
	region *regionPayload
	method *methodPayload
	mutex  *mutexPayload
	proc   *processorPayload
	pwr    *powerResourcePayload
}

type stringPayload struct {
	// text excludes the NUL terminator; Size() reports len(text).
	text []byte
}

type bufferPayload struct {
	data []byte
}

type packagePayload struct {
	elems []*Object
}

type refPayload struct {
	kind RefKind
	// target is the co-owned referenced object, always non-nil except for
	// RefPkgIndex which instead resolves dynamically through pkg/index so
	// that later Store()s into the package slot are visible to every
	// outstanding Index() result.
	target *Object
	pkg    *Object // retained; RefPkgIndex only
	index  int     // RefPkgIndex only
	// slot records which slot number a newSlotReference reference wraps;
	// nothing reads it back.
	slot uint8
}

type fieldPayload struct {
	backing     *Object // retained Buffer
	bitIndex    uint64
	bitLength   uint64
	forceBuffer bool
}

type indexPayload struct {
	backing *Object // retained Buffer or String
	byteIdx uint64
	isStr   bool
}

type regionPayload struct {
	space  RegionSpace
	offset uint64
	length uint64
}

type methodPayload struct {
	code       []byte
	argCount   uint8
	serialized bool
	syncLevel  uint8
	// node is the namespace node the method is bound to, used to resolve
	// its enclosing scope when it is invoked.
	node *Node
}

type mutexPayload struct {
	handle    MutexHandle
	syncLevel uint8
}

type processorPayload struct {
	id           uint8
	blockAddress uint32
	blockLength  uint8
}

type powerResourcePayload struct {
	systemLevel   uint8
	resourceOrder uint16
}

// RegionSpace identifies an ACPI address space for an OperationRegion.
type RegionSpace uint8

const (
	RegionSystemMemory RegionSpace = iota
	RegionSystemIO
	RegionPCIConfig
	RegionEmbeddedControl
	RegionSMBus
	RegionGeneric
)

func newObject(k Kind) *Object {
	return &Object{Kind: k, refs: 1}
}

// NewInteger returns a fresh Integer Object with one reference.
func NewInteger(v uint64) *Object {
	o := newObject(KindInteger)
	o.i = v
	return o
}

// NewUninitialized returns a fresh Uninitialized Object with one reference.
func NewUninitialized() *Object {
	return newObject(KindUninitialized)
}

// NewString returns a fresh String Object; text must not include the NUL
// terminator, which Size() does not count either.
func NewString(text []byte) *Object {
	o := newObject(KindString)
	cp := make([]byte, len(text))
	copy(cp, text)
	o.str = &stringPayload{text: cp}
	return o
}

// NewBuffer allocates a Buffer Object of the given size, copying init into
// the front of it and zeroing the remainder.
func NewBuffer(size uint64, init []byte) (*Object, error) {
	if size == 0 || size > 0xE000_0000 {
		return nil, errBufferTooLarge
	}
	if uint64(len(init)) > size {
		return nil, errBufferInitOverrun
	}
	data := make([]byte, size)
	copy(data, init)
	o := newObject(KindBuffer)
	o.buf = &bufferPayload{data: data}
	return o, nil
}

// NewPackage allocates a Package Object with n Uninitialized elements.
func NewPackage(n int) *Object {
	elems := make([]*Object, n)
	for i := range elems {
		elems[i] = NewUninitialized()
	}
	o := newObject(KindPackage)
	o.pkg = &packagePayload{elems: elems}
	return o
}

// NewDebug/NewDevice/NewThermalZone are stateless singleton-shaped variants;
// each call still yields a distinct refcounted Object since they may be
// bound independently to different namespace nodes.
func NewDebug() *Object       { return newObject(KindDebug) }
func NewDevice() *Object      { return newObject(KindDevice) }
func NewThermalZone() *Object { return newObject(KindThermalZone) }

func NewProcessor(id uint8, blockAddr uint32, blockLen uint8) *Object {
	o := newObject(KindProcessor)
	o.proc = &processorPayload{id: id, blockAddress: blockAddr, blockLength: blockLen}
	return o
}

func NewPowerResource(systemLevel uint8, resourceOrder uint16) *Object {
	o := newObject(KindPowerResource)
	o.pwr = &powerResourcePayload{systemLevel: systemLevel, resourceOrder: resourceOrder}
	return o
}

func NewOperationRegion(space RegionSpace, offset, length uint64) *Object {
	o := newObject(KindOperationRegion)
	o.region = &regionPayload{space: space, offset: offset, length: length}
	return o
}

func newMethod(code []byte, argCount uint8, serialized bool, syncLevel uint8) *Object {
	o := newObject(KindMethod)
	o.method = &methodPayload{code: code, argCount: argCount, serialized: serialized, syncLevel: syncLevel}
	return o
}

func newMutex(handle MutexHandle, syncLevel uint8) *Object {
	o := newObject(KindMutex)
	o.mutex = &mutexPayload{handle: handle, syncLevel: syncLevel}
	return o
}

// newReference returns a Reference Object of the given kind, retaining
// target. RefPkgIndex references are built by newPkgIndexReference instead.
func newReference(kind RefKind, target *Object) *Object {
	if target != nil {
		target.Retain()
	}
	o := newObject(KindReference)
	o.ref = &refPayload{kind: kind, target: target}
	return o
}

func newSlotReference(kind RefKind, slot uint8, target *Object) *Object {
	o := newReference(kind, target)
	o.ref.slot = slot
	return o
}

func newPkgIndexReference(pkg *Object, index int) *Object {
	pkg.Retain()
	o := newObject(KindReference)
	o.ref = &refPayload{kind: RefPkgIndex, pkg: pkg, index: index}
	return o
}

func newBufferField(backing *Object, bitIndex, bitLength uint64, forceBuffer bool) *Object {
	backing.Retain()
	o := newObject(KindBufferField)
	o.field = &fieldPayload{backing: backing, bitIndex: bitIndex, bitLength: bitLength, forceBuffer: forceBuffer}
	return o
}

func newBufferIndex(backing *Object, byteIdx uint64, isStr bool) *Object {
	backing.Retain()
	o := newObject(KindBufferIndex)
	o.index = &indexPayload{backing: backing, byteIdx: byteIdx, isStr: isStr}
	return o
}

// Retain increments the reference count and returns the receiver for
// chaining.
func (o *Object) Retain() *Object {
	if o != nil {
		o.refs++
	}
	return o
}

// Release decrements the reference count, tearing down owned resources and
// the object itself once it reaches zero. Releasing a nil Object is a no-op.
func (o *Object) Release(host Host) {
	if o == nil {
		return
	}
	o.refs--
	if o.refs > 0 {
		return
	}
	if o.refs < 0 {
		panic("aml: Object released more times than retained")
	}
	releaseObjectPayload(o, host)
}

// releaseObjectPayload drops whatever resources o's variant payload owns,
// without touching o's own refcount. Used both by Release (payload about to
// be discarded along with o) and by assignInPlace (payload about to be
// replaced while o's identity/refcount survives).
func releaseObjectPayload(o *Object, host Host) {
	switch o.Kind {
	case KindReference:
		switch o.ref.kind {
		case RefPkgIndex:
			o.ref.pkg.Release(host)
		default:
			o.ref.target.Release(host)
		}
	case KindBufferField:
		o.field.backing.Release(host)
	case KindBufferIndex:
		o.index.backing.Release(host)
	case KindPackage:
		// Break the Package->element edge before unref-ing elements so a
		// PkgIndex self-reference chain cannot re-enter this Package.
		elems := o.pkg.elems
		o.pkg.elems = nil
		for _, e := range elems {
			e.Release(host)
		}
	case KindMutex:
		if host != nil {
			host.MutexDestroy(o.mutex.handle)
		}
	}
}

// assignInPlace overwrites dst's variant payload with src's, preserving
// dst's pointer identity and refcount so every other holder of dst observes
// the new value (spec §4.3 "implicit-cast into the referenced object"). src
// is consumed: its payload is transferred rather than copied, so src is
// reset to an empty Uninitialized shell before the caller releases it.
func assignInPlace(dst, src *Object, host Host) {
	releaseObjectPayload(dst, host)
	dst.Kind = src.Kind
	dst.i = src.i
	dst.str = src.str
	dst.buf = src.buf
	dst.pkg = src.pkg
	dst.ref = src.ref
	dst.field = src.field
	dst.index = src.index
	dst.region = src.region
	dst.method = src.method
	dst.mutex = src.mutex
	dst.proc = src.proc
	dst.pwr = src.pwr

	src.Kind = KindUninitialized
	src.i = 0
	src.str, src.buf, src.pkg, src.ref = nil, nil, nil, nil
	src.field, src.index, src.region = nil, nil, nil
	src.method, src.mutex, src.proc, src.pwr = nil, nil, nil, nil
}

// RefCount reports the current strong reference count; exported for tests
// that assert on the leak-free teardown invariant.
func (o *Object) RefCount() int32 {
	if o == nil {
		return 0
	}
	return o.refs
}

// Integer returns the Integer payload and true if Kind == KindInteger.
func (o *Object) Integer() (uint64, bool) {
	if o.Kind != KindInteger {
		return 0, false
	}
	return o.i, true
}

// StringBytes returns the String payload (without the NUL terminator).
func (o *Object) StringBytes() ([]byte, bool) {
	if o.Kind != KindString {
		return nil, false
	}
	return o.str.text, true
}

// BufferBytes returns the Buffer payload.
func (o *Object) BufferBytes() ([]byte, bool) {
	if o.Kind != KindBuffer {
		return nil, false
	}
	return o.buf.data, true
}

// Elements returns the Package payload slice.
func (o *Object) Elements() ([]*Object, bool) {
	if o.Kind != KindPackage {
		return nil, false
	}
	return o.pkg.elems, true
}

// Size implements the Sizeof opcode's per-variant byte/element length.
func (o *Object) Size() uint64 {
	switch o.Kind {
	case KindString:
		return uint64(len(o.str.text)) // excludes NUL per invariant in §3
	case KindBuffer:
		return uint64(len(o.buf.data))
	case KindPackage:
		return uint64(len(o.pkg.elems))
	default:
		return 0
	}
}
