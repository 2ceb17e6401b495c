package aml

// ObjectKind enumerates the data types an AML object can hold. The numeric
// values of the spec-defined kinds match the values returned by the
// ObjectType opcode; kinds above ObjectDebug are internal.
type ObjectKind uint8

// The list of supported object kinds.
const (
	ObjectUninitialized   ObjectKind = 0
	ObjectInteger         ObjectKind = 1
	ObjectString          ObjectKind = 2
	ObjectBuffer          ObjectKind = 3
	ObjectPackage         ObjectKind = 4
	ObjectFieldUnit       ObjectKind = 5
	ObjectDevice          ObjectKind = 6
	ObjectEvent           ObjectKind = 7
	ObjectMethod          ObjectKind = 8
	ObjectMutex           ObjectKind = 9
	ObjectOperationRegion ObjectKind = 10
	ObjectPowerResource   ObjectKind = 11
	ObjectProcessor       ObjectKind = 12
	ObjectThermalZone     ObjectKind = 13
	ObjectBufferField     ObjectKind = 14
	ObjectDebug           ObjectKind = 16
	ObjectReference       ObjectKind = 17
	ObjectBufferIndex     ObjectKind = 18
)

// String implements fmt.Stringer for ObjectKind.
func (k ObjectKind) String() string {
	switch k {
	case ObjectUninitialized:
		return "Uninitialized"
	case ObjectInteger:
		return "Integer"
	case ObjectString:
		return "String"
	case ObjectBuffer:
		return "Buffer"
	case ObjectPackage:
		return "Package"
	case ObjectFieldUnit:
		return "FieldUnit"
	case ObjectDevice:
		return "Device"
	case ObjectEvent:
		return "Event"
	case ObjectMethod:
		return "Method"
	case ObjectMutex:
		return "Mutex"
	case ObjectOperationRegion:
		return "OperationRegion"
	case ObjectPowerResource:
		return "PowerResource"
	case ObjectProcessor:
		return "Processor"
	case ObjectThermalZone:
		return "ThermalZone"
	case ObjectBufferField:
		return "BufferField"
	case ObjectDebug:
		return "Debug"
	case ObjectReference:
		return "Reference"
	case ObjectBufferIndex:
		return "BufferIndex"
	default:
		return "Unknown"
	}
}

// ReferenceKind distinguishes the five flavors of Reference objects. The
// store and copy dispatchers treat each flavor differently.
type ReferenceKind uint8

// The list of supported reference kinds.
const (
	RefKindRefOf ReferenceKind = iota
	RefKindNamed
	RefKindArg
	RefKindLocal
	RefKindPkgIndex
)

// stringKind tags String objects. Path strings are produced by the package
// builder for named elements that are resolved lazily by the consumer.
type stringKind uint8

const (
	stringKindNormal stringKind = iota
	stringKindPath
)

// sharedBuffer is the refcounted byte storage behind String, Buffer,
// BufferField and BufferIndex objects. For strings the data includes the
// trailing NUL.
type sharedBuffer struct {
	refs int32
	data []byte
}

func newSharedBuffer(size int) *sharedBuffer {
	return &sharedBuffer{refs: 1, data: make([]byte, size)}
}

func (b *sharedBuffer) ref() *sharedBuffer {
	if b != nil {
		b.refs++
	}
	return b
}

func (b *sharedBuffer) unref() {
	if b == nil {
		return
	}
	if b.refs--; b.refs == 0 {
		b.data = nil
	}
}

// packageValue holds the refcounted element array of a Package object.
// Elements are owned (strong references).
type packageValue struct {
	refs     int32
	elements []*Object
}

func (p *packageValue) ref() *packageValue {
	if p != nil {
		p.refs++
	}
	return p
}

func (p *packageValue) unref() {
	if p == nil {
		return
	}
	if p.refs--; p.refs == 0 {
		for _, el := range p.elements {
			el.unref()
		}
		p.elements = nil
	}
}

// bufferField is a bit-granular view into a backing buffer.
type bufferField struct {
	backing   *sharedBuffer
	bitIndex  uint64
	bitLength uint64

	// forceBuffer marks fields created via the explicit CreateField opcode
	// which always read back as buffers regardless of their bit length.
	forceBuffer bool
}

func (f *bufferField) byteSize() int {
	return int((f.bitLength + 7) / 8)
}

// bufferIndex is a single-byte view into a buffer, produced by Index on a
// Buffer or String operand.
type bufferIndex struct {
	buffer *sharedBuffer
	idx    uint64
}

func (bi *bufferIndex) cursor() []byte {
	return bi.buffer.data[bi.idx : bi.idx+1]
}

// OperationRegion records the address space window declared by an
// OperationRegion opcode. Actual I/O is delegated to registered handlers.
type OperationRegion struct {
	Space  uint8
	Offset uint64
	Length uint64
}

// ControlMethod describes an executable AML procedure: a byte range within
// a loaded table plus the decoded method flags.
type ControlMethod struct {
	Code       []byte
	ArgCount   uint8
	Serialized bool
	SyncLevel  uint8

	// NamedObjectsPersist is set for the synthetic method that wraps a
	// table's root term list: nodes it creates outlive execution.
	NamedObjectsPersist bool
}

// Mutex is the payload of a Mutex object.
type Mutex struct {
	Handle    uintptr
	SyncLevel uint8
	Owner     uintptr
}

// Processor is the payload of a Processor object.
type Processor struct {
	ID           uint8
	BlockAddress uint32
	BlockLength  uint8
}

// PowerResource is the payload of a PowerResource object.
type PowerResource struct {
	SystemLevel   uint8
	ResourceOrder uint16
}

// liveObjects counts objects that are currently allocated. Execution must
// return this counter to its pre-call value; the tests rely on it.
var liveObjects int64

// Object is the tagged value universe of the interpreter. Objects are
// refcounted; single-threaded discipline is assumed so the counts are not
// atomic.
type Object struct {
	kind ObjectKind
	refs int32

	integer uint64
	buffer  *sharedBuffer
	strKind stringKind
	pkg     *packageValue
	refKind ReferenceKind
	inner   *Object
	field   bufferField
	bufIdx  bufferIndex
	region  OperationRegion
	method  *ControlMethod
	mutex   *Mutex
	proc    Processor
	power   PowerResource
}

// createObject allocates a new object of the given kind with a reference
// count of one. String, Buffer, Package and Mutex objects receive an empty
// payload so handlers can fill them in place.
func createObject(kind ObjectKind) *Object {
	obj := &Object{kind: kind, refs: 1}
	switch kind {
	case ObjectString, ObjectBuffer:
		obj.buffer = &sharedBuffer{refs: 1}
	case ObjectPackage:
		obj.pkg = &packageValue{refs: 1}
	case ObjectMutex:
		obj.mutex = &Mutex{}
	}
	liveObjects++
	return obj
}

// NewInteger returns a fresh Integer object holding val.
func NewInteger(val uint64) *Object {
	obj := createObject(ObjectInteger)
	obj.integer = val
	return obj
}

// NewString returns a fresh String object holding s.
func NewString(s string) *Object {
	obj := createObject(ObjectString)
	obj.buffer.data = append([]byte(s), 0)
	return obj
}

// NewBuffer returns a fresh Buffer object holding a copy of data.
func NewBuffer(data []byte) *Object {
	obj := createObject(ObjectBuffer)
	obj.buffer.data = append([]byte(nil), data...)
	return obj
}

func (o *Object) ref() *Object {
	if o != nil {
		o.refs++
	}
	return o
}

func (o *Object) unref() {
	if o == nil {
		return
	}
	if o.refs--; o.refs == 0 {
		o.detachPayload()
		liveObjects--
	}
}

// detachPayload releases whatever the object currently owns and resets it
// to Uninitialized.
func (o *Object) detachPayload() {
	switch o.kind {
	case ObjectString, ObjectBuffer:
		o.buffer.unref()
		o.buffer = nil
		o.strKind = stringKindNormal
	case ObjectPackage:
		o.pkg.unref()
		o.pkg = nil
	case ObjectReference:
		o.inner.unref()
		o.inner = nil
	case ObjectBufferField:
		o.field.backing.unref()
		o.field = bufferField{}
	case ObjectBufferIndex:
		o.bufIdx.buffer.unref()
		o.bufIdx = bufferIndex{}
	}
	o.integer = 0
	o.method = nil
	o.mutex = nil
	o.kind = ObjectUninitialized
}

// Kind returns the object's kind.
func (o *Object) Kind() ObjectKind { return o.kind }

// Unwrap peels internal references off the object, yielding the value
// behind a returned Local, Arg or Named reference.
func (o *Object) Unwrap() *Object { return unwrapInternalReference(o) }

// Integer returns the value of an Integer object.
func (o *Object) Integer() uint64 { return o.integer }

// Bytes returns the raw storage of a Buffer object.
func (o *Object) Bytes() []byte { return o.buffer.data }

// StringValue returns the text of a String object without the trailing NUL.
func (o *Object) StringValue() string {
	if len(o.buffer.data) == 0 {
		return ""
	}
	return string(o.buffer.data[:len(o.buffer.data)-1])
}

// IsPathString reports whether a String object was produced as a lazy
// namespace path by the package builder.
func (o *Object) IsPathString() bool {
	return o.kind == ObjectString && o.strKind == stringKindPath
}

// PackageLen returns the element count of a Package object.
func (o *Object) PackageLen() int { return len(o.pkg.elements) }

// PackageAt returns the i-th element of a Package object.
func (o *Object) PackageAt(i int) *Object { return o.pkg.elements[i] }

// Method returns the payload of a Method object.
func (o *Object) Method() *ControlMethod { return o.method }

// createInternalReference wraps child in a new Reference object of the
// given kind. The reference owns one count on the child.
func createInternalReference(kind ReferenceKind, child *Object) *Object {
	ref := createObject(ObjectReference)
	ref.refKind = kind
	ref.inner = child.ref()
	return ref
}

// unwrapInternalReference peels Arg, Local, Named and PkgIndex references
// off obj until a non-reference or an explicit RefOf reference is reached.
func unwrapInternalReference(obj *Object) *Object {
	for {
		if obj == nil || obj.kind != ObjectReference || obj.refKind == RefKindRefOf {
			return obj
		}
		obj = obj.inner
	}
}

// referenceUnwind follows a reference chain and returns its final link:
// the reference whose inner object is not itself a reference.
func referenceUnwind(obj *Object) *Object {
	parent := obj
	for obj != nil {
		if obj.kind != ObjectReference {
			return parent
		}
		parent = obj
		obj = parent.inner
	}
	// Chains always terminate at a non-reference.
	return nil
}

// objectDerefImplicit implements the implicit dereference applied to
// SuperName operands of Store, Increment and friends:
// RefOf unwinds to the bottom-most referenced object; LocalX/ArgX yield the
// wrapped object unless it is itself a reference; named references yield
// the named object.
func objectDerefImplicit(obj *Object) *Object {
	if obj.refKind != RefKindRefOf {
		if obj.refKind == RefKindNamed || obj.inner.kind != ObjectReference {
			return obj.inner
		}
		obj = obj.inner
	}
	return referenceUnwind(obj).inner
}

// assignBehavior selects between deep and shallow payload copies.
type assignBehavior uint8

const (
	assignShallowCopy assignBehavior = iota
	assignDeepCopy
)

// objectAssign overwrites dst with the value held by src. A shallow copy
// shares refcounted payloads; a deep copy duplicates buffers and package
// contents. References always share their inner object since a chain
// cannot be meaningfully duplicated.
func objectAssign(dst, src *Object, behavior assignBehavior) Status {
	if dst == src {
		return StatusOK
	}
	dst.detachPayload()
	dst.kind = src.kind

	switch src.kind {
	case ObjectUninitialized, ObjectDebug:
	case ObjectInteger:
		dst.integer = src.integer
	case ObjectString, ObjectBuffer:
		dst.strKind = src.strKind
		if behavior == assignShallowCopy {
			dst.buffer = src.buffer.ref()
		} else {
			dst.buffer = newSharedBuffer(len(src.buffer.data))
			copy(dst.buffer.data, src.buffer.data)
		}
	case ObjectPackage:
		if behavior == assignShallowCopy {
			dst.pkg = src.pkg.ref()
			break
		}
		dst.pkg = &packageValue{refs: 1, elements: make([]*Object, len(src.pkg.elements))}
		for i, el := range src.pkg.elements {
			elCopy := createObject(ObjectUninitialized)
			if st := objectAssign(elCopy, el, assignDeepCopy); st != StatusOK {
				return st
			}
			dst.pkg.elements[i] = elCopy
		}
	case ObjectReference:
		dst.refKind = src.refKind
		dst.inner = src.inner.ref()
	case ObjectBufferField:
		dst.field = src.field
		dst.field.backing.ref()
	case ObjectBufferIndex:
		dst.bufIdx = src.bufIdx
		dst.bufIdx.buffer.ref()
	case ObjectOperationRegion:
		dst.region = src.region
	case ObjectMethod:
		dst.method = src.method
	case ObjectMutex:
		dst.mutex = src.mutex
	case ObjectProcessor:
		dst.proc = src.proc
	case ObjectPowerResource:
		dst.power = src.power
	case ObjectDevice, ObjectThermalZone, ObjectEvent, ObjectFieldUnit:
	default:
		return StatusInvalidArgument
	}

	return StatusOK
}
