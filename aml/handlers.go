package aml

import "encoding/binary"

// handlerFn is the signature shared by all opcode handlers. A handler runs
// from the INVOKE_HANDLER parse op once its operands are resolved and
// finds them in the current op-context's item array.
type handlerFn func(ctx *execContext) Status

// opHandlers maps opcodes to their effect routines. Opcodes reachable via
// INVOKE_HANDLER but absent here report Unimplemented through
// invokeHandler.
var opHandlers map[amlOp]handlerFn

func init() {
	opHandlers = map[amlOp]handlerFn{
		opStringPrefix: handleString,

		opAdd: handleBinaryMath, opSubtract: handleBinaryMath,
		opMultiply: handleBinaryMath, opDivide: handleBinaryMath,
		opShiftLeft: handleBinaryMath, opShiftRight: handleBinaryMath,
		opAnd: handleBinaryMath, opNand: handleBinaryMath,
		opOr: handleBinaryMath, opNor: handleBinaryMath,
		opXor: handleBinaryMath, opMod: handleBinaryMath,

		opNot: handleUnaryMath, opFindSetLeftBit: handleUnaryMath,
		opFindSetRightBit: handleUnaryMath,

		opLnot:   handleLogicalNot,
		opLEqual: handleBinaryLogic, opLGreater: handleBinaryLogic,
		opLLess: handleBinaryLogic, opLand: handleBinaryLogic,
		opLor: handleBinaryLogic,

		opIf: handleCodeBlock, opElse: handleCodeBlock,
		opWhile: handleCodeBlock, opScope: handleCodeBlock,
		opDevice: handleCodeBlock, opProcessor: handleCodeBlock,
		opPowerRes: handleCodeBlock, opThermalZone: handleCodeBlock,

		opBreak: handleControlFlow, opContinue: handleControlFlow,

		opReturn: handleReturn,

		opMethod: handleCreateMethod,
		opMutex:  handleCreateMutex,

		opStore: handleCopyObjectOrStore, opCopyObject: handleCopyObjectOrStore,

		opIncrement: handleIncDec, opDecrement: handleIncDec,

		opRefOf: handleRefOrDerefOf, opDerefOf: handleRefOrDerefOf,
		opCondRefOf: handleRefOrDerefOf,

		opBuffer:     handleBuffer,
		opPackage:    handlePackage,
		opVarPackage: handlePackage,

		opName:  handleCreateNamed,
		opAlias: handleCreateAlias,

		opCreateBitField: handleCreateBufferField, opCreateByteField: handleCreateBufferField,
		opCreateWordField: handleCreateBufferField, opCreateDWordField: handleCreateBufferField,
		opCreateQWordField: handleCreateBufferField, opCreateField: handleCreateBufferField,

		opIntNamedObject:        handleNamedObject,
		opIntReadFieldAsBuffer:  handleFieldRead,
		opIntReadFieldAsInteger: handleFieldRead,

		opToInteger: handleTo, opToBuffer: handleTo,
		opToDecimalString: handleTo, opToHexString: handleTo,
		opToString: handleToString,

		opSizeOf:     handleSizeof,
		opObjectType: handleObjectType,
		opTimer:      handleTimer,
		opIndex:      handleIndex,
		opMid:        handleMid,
		opConcat:     handleConcatenate,
		opOpRegion:   handleCreateOpRegion,
		opField:      handleCreateFieldList,
		opIndexField: handleCreateFieldList,
		opBankField:  handleCreateFieldList,
	}

	for i := amlOp(0); i < maxLocals; i++ {
		opHandlers[opLocal0+i] = handleLocal
	}
	for i := amlOp(0); i < maxMethodArgs; i++ {
		opHandlers[opArg0+i] = handleArg
	}
}

// invokeHandler dispatches the opcode's handler, or reports the canonical
// diagnostic for opcodes that have none installed.
func (ctx *execContext) invokeHandler(code amlOp) Status {
	if h := opHandlers[code]; h != nil {
		return h(ctx)
	}

	ctx.vm.log.Warningf("op %q: no dedicated handler installed", ctx.curOpCtx.op.name)
	return StatusUnimplemented
}

// handleArgOrLocal materializes the LocalX/ArgX slot: the slot lazily
// becomes a reference wrapping an Uninitialized object on first use, and
// the op yields a new count on that reference.
func handleArgOrLocal(ctx *execContext, slot **Object, kind ReferenceKind) Status {
	if *slot == nil {
		defaultValue := createObject(ObjectUninitialized)
		*slot = createInternalReference(kind, defaultValue)
		defaultValue.unref()
	}

	dst := ctx.curOpCtx.lastItem()
	dst.obj = (*slot).ref()
	dst.typ = itemObject
	return StatusOK
}

func handleLocal(ctx *execContext) Status {
	idx := ctx.curOpCtx.op.code - opLocal0
	return handleArgOrLocal(ctx, &ctx.curFrame.locals[idx], RefKindLocal)
}

func handleArg(ctx *execContext) Status {
	idx := ctx.curOpCtx.op.code - opArg0
	return handleArgOrLocal(ctx, &ctx.curFrame.args[idx], RefKindArg)
}

// handleNamedObject yields the object attached to a resolved namespace
// node, which for most named things is a Named reference.
func handleNamedObject(ctx *execContext) Status {
	src := ctx.curOpCtx.items[0].node
	dst := ctx.curOpCtx.items[1]

	dst.obj = src.obj.ref()
	dst.typ = itemObject
	return StatusOK
}

// handleString decodes a NUL-terminated string literal at the frame's
// code cursor.
func handleString(ctx *execContext) Status {
	frame := ctx.curFrame
	obj := ctx.curOpCtx.lastItem().obj

	code := frame.method.Code[frame.codeOffset:]
	length := 0
	for length < len(code) && code[length] != 0 {
		length++
	}
	if length == len(code) {
		return StatusBadBytecode
	}
	length++ // trailing NUL

	obj.buffer.data = append([]byte(nil), code[:length]...)
	frame.codeOffset += uint32(length)
	return StatusOK
}

// handleBuffer builds a Buffer object from a declared size and the raw
// initializer bytes between the cursor and the package end.
func handleBuffer(ctx *execContext) Status {
	var (
		opCtx = ctx.curOpCtx
		frame = ctx.curFrame
		vm    = ctx.vm
	)

	amlOffset := uint32(opCtx.items[2].imm)
	pkg := opCtx.items[0].pkg
	initSize := int(pkg.end) - int(amlOffset)

	// TODO: do package bounds checking at parse time
	if int(pkg.end) > len(frame.method.Code) {
		return StatusBadBytecode
	}

	declaredSize := opCtx.items[1].obj.integer
	if declaredSize > 0xE0000000 {
		vm.log.Warningf("buffer is too large (%d), assuming corrupted bytestream", declaredSize)
		return StatusBadBytecode
	}
	if declaredSize == 0 {
		vm.log.Warningf("attempted to create an empty buffer")
		return StatusBadBytecode
	}

	bufferSize := int(declaredSize)
	if initSize > bufferSize {
		vm.log.Warningf("too many buffer initializers: %d (size is %d)", initSize, bufferSize)
		initSize = bufferSize
	}

	dst := opCtx.items[3].obj
	dst.buffer.data = make([]byte, bufferSize)
	memcpyZerout(dst.buffer.data, frame.method.Code[amlOffset:int(amlOffset)+initSize])
	return StatusOK
}

// handlePackage builds a Package object.
//
// Item layout:
//
//	[0]      package length
//	[1]      immediate or integer object, depending on Package/VarPackage
//	[2..N-2] AML pc + element pairs
//	[N-1]    the resulting package object
//
// Elements that name objects are not resolved here: often the referenced
// object is only defined later, so the name is recorded as a Path string
// and bound lazily by whoever consumes the package. This follows the
// reference OS.
func handlePackage(ctx *execContext) Status {
	var (
		opCtx = ctx.curOpCtx
		vm    = ctx.vm
	)

	pkg := opCtx.lastItem().obj.pkg

	var numElements int
	if opCtx.op.code == opVarPackage {
		varNum := opCtx.items[1].obj.integer
		if varNum > 0xE0000000 {
			vm.log.Warningf("package is too large (%d), assuming corrupted bytestream", varNum)
			return StatusBadBytecode
		}
		numElements = int(varNum)
	} else {
		numElements = int(opCtx.items[1].imm)
	}

	numDefined := (len(opCtx.items) - 3) / 2
	if numDefined > numElements {
		vm.log.Warningf("too many package initializers: %d, truncating to %d",
			numDefined, numElements)
		numDefined = numElements
	}

	pkg.elements = make([]*Object, numElements)
	for i := range pkg.elements {
		pkg.elements[i] = createObject(ObjectUninitialized)
	}

	for i := 0; i < numDefined; i++ {
		basePkgIndex := i*2 + 2
		it := opCtx.items[basePkgIndex+1]
		obj := it.obj

		if obj != nil && obj.kind == ObjectReference {
			if obj.refKind == RefKindNamed {
				obj.unref()
				it.obj = nil
				obj = nil
			} else {
				obj = unwrapInternalReference(obj)
			}
		}

		if obj == nil {
			path, st := nameStringToPath(ctx.curFrame, uint32(opCtx.items[basePkgIndex].imm))
			if st != StatusOK {
				return st
			}

			obj = createObject(ObjectString)
			obj.strKind = stringKindPath
			obj.buffer.data = append([]byte(path), 0)

			it.obj = obj
			it.typ = itemObject
		}

		if st := objectAssign(pkg.elements[i], obj, assignDeepCopy); st != StatusOK {
			return st
		}
	}

	return StatusOK
}

// handleCreateNamed implements the Name opcode: the node's object becomes
// a Named reference wrapping the evaluated value.
func handleCreateNamed(ctx *execContext) Status {
	node := ctx.curOpCtx.items[0].node
	src := ctx.curOpCtx.items[1].obj
	if src == nil {
		return StatusBadBytecode
	}

	node.obj = createInternalReference(RefKindNamed, src)
	return StatusOK
}

// handleCreateAlias points the destination node at the source node's
// object.
func handleCreateAlias(ctx *execContext) Status {
	src := ctx.curOpCtx.items[0].node
	dst := ctx.curOpCtx.items[1].node

	dst.obj = src.obj.ref()
	return StatusOK
}

// handleCreateOpRegion records the declared address space window.
func handleCreateOpRegion(ctx *execContext) Status {
	opCtx := ctx.curOpCtx
	node := opCtx.items[0].node
	obj := opCtx.items[4].obj

	obj.region.Space = uint8(opCtx.items[1].imm)
	obj.region.Offset = opCtx.items[2].obj.integer
	obj.region.Length = opCtx.items[3].obj.integer

	node.obj = obj.ref()
	return StatusOK
}

// handleCreateFieldList is the Field/IndexField/BankField declaration
// handler. It creates no field units; the field list bytes are skipped via
// the tracked package length.
func handleCreateFieldList(ctx *execContext) Status {
	return StatusOK
}

// handleCreateMethod captures the method body byte range and flags.
//
//	ByteData flags:
//	bit 0-2: ArgCount (0-7)
//	bit 3:   SerializeFlag
//	bit 4-7: SyncLevel (0x00-0x0f)
func handleCreateMethod(ctx *execContext) Status {
	var (
		opCtx = ctx.curOpCtx
		frame = ctx.curFrame
	)

	pkg := opCtx.items[0].pkg
	node := opCtx.items[1].node
	flags := uint8(opCtx.items[2].imm)
	beginOffset := uint32(opCtx.items[3].imm)

	if int(pkg.end) > len(frame.method.Code) || pkg.end < beginOffset {
		return StatusBadBytecode
	}

	method := &ControlMethod{
		Code:       frame.method.Code[beginOffset:pkg.end],
		ArgCount:   flags & 0b111,
		Serialized: (flags>>3)&1 != 0,
		SyncLevel:  flags >> 4,
	}

	dst := opCtx.items[4].obj
	dst.method = method

	node.obj = createInternalReference(RefKindNamed, dst)
	return StatusOK
}

// handleCreateMutex records the mutex sync level (low 4 bits of the flag
// byte; the rest is reserved).
func handleCreateMutex(ctx *execContext) Status {
	opCtx := ctx.curOpCtx
	node := opCtx.items[0].node
	dst := opCtx.items[2].obj

	dst.mutex.SyncLevel = uint8(opCtx.items[1].imm) & 0b1111

	node.obj = createInternalReference(RefKindNamed, dst)
	return StatusOK
}

// handleCreateBufferField derives the bit geometry of a new buffer field.
//
// Item layout:
//
//	[0] type checked source buffer object
//	[1] byte/bit index integer object
//	[2] (  if     CreateField) bit length integer object
//	[3] (2 if not CreateField) the new namespace node
//	[4] (3 if not CreateField) the buffer field object
func handleCreateBufferField(ctx *execContext) Status {
	var (
		opCtx = ctx.curOpCtx
		vm    = ctx.vm

		node     *NamespaceNode
		fieldObj *Object
	)

	srcBuf := opCtx.items[0].obj.buffer

	if opCtx.op.code == opCreateField {
		idxObj := opCtx.items[1].obj
		lenObj := opCtx.items[2].obj
		node = opCtx.items[3].node
		fieldObj = opCtx.items[4].obj

		fieldObj.field.bitIndex = idxObj.integer

		if lenObj.integer == 0 || lenObj.integer > 0xFFFFFFFF {
			vm.log.Warningf("invalid bit field length (%d)", lenObj.integer)
			return StatusBadBytecode
		}

		fieldObj.field.bitLength = lenObj.integer
		fieldObj.field.forceBuffer = true
	} else {
		idxObj := opCtx.items[1].obj
		node = opCtx.items[2].node
		fieldObj = opCtx.items[3].obj

		fieldObj.field.bitIndex = idxObj.integer * 8
		switch opCtx.op.code {
		case opCreateBitField:
			fieldObj.field.bitLength = 1
		case opCreateByteField:
			fieldObj.field.bitLength = 8
		case opCreateWordField:
			fieldObj.field.bitLength = 16
		case opCreateDWordField:
			fieldObj.field.bitLength = 32
		case opCreateQWordField:
			fieldObj.field.bitLength = 64
		default:
			return StatusInvalidArgument
		}
	}

	field := &fieldObj.field
	if field.bitIndex+field.bitLength > uint64(len(srcBuf.data))*8 {
		vm.log.Warningf("invalid buffer field: bits [%d..%d], buffer size is %d bytes",
			field.bitIndex, field.bitIndex+field.bitLength, len(srcBuf.data))
		return StatusBadBytecode
	}

	field.backing = srcBuf.ref()
	node.obj = createInternalReference(RefKindNamed, fieldObj)
	return StatusOK
}

// handleFieldRead reads a named buffer field into a fresh Integer or
// Buffer, chosen by the internal opcode the name was rewritten to.
func handleFieldRead(ctx *execContext) Status {
	opCtx := ctx.curOpCtx
	node := opCtx.items[0].node
	field := &nodeObject(node).field
	dstObj := opCtx.items[1].obj

	if dstObj.kind == ObjectBuffer {
		dstObj.buffer.data = make([]byte, field.byteSize())
		readBufferField(field, dstObj.buffer.data)
		return StatusOK
	}

	var buf [8]byte
	readBufferField(field, buf[:field.byteSize()])
	dstObj.integer = binary.LittleEndian.Uint64(buf[:])
	return StatusOK
}

// handleIncDec adjusts the implicitly dereferenced integer in place.
func handleIncDec(ctx *execContext) Status {
	obj := ctx.curOpCtx.items[0].obj

	if ctx.curOpCtx.op.code == opIncrement {
		obj.integer++
	} else {
		obj.integer--
	}

	return StatusOK
}

// handleRefOrDerefOf implements RefOf, CondRefOf and DerefOf.
func handleRefOrDerefOf(ctx *execContext) Status {
	opCtx := ctx.curOpCtx

	src := opCtx.items[0].obj
	if src == nil {
		return StatusBadBytecode
	}

	var dst *Object
	if opCtx.op.code == opCondRefOf {
		dst = opCtx.items[2].obj
	} else {
		dst = opCtx.items[1].obj
	}

	if opCtx.op.code == opDerefOf {
		wasReference := false

		if src.kind == ObjectReference {
			wasReference = true

			// DerefOf grabs the bottom-most object that is not a
			// reference. This mimics the behavior of the reference OS and
			// differs from implementations that dereference one level.
			src = referenceUnwind(src).inner
		}

		if src.kind == ObjectBufferIndex {
			dst.kind = ObjectInteger
			dst.integer = uint64(src.bufIdx.cursor()[0])
			return StatusOK
		}

		if !wasReference {
			ctx.vm.log.Warningf("invalid DerefOf argument: %s, expected a reference", src.kind)
			return StatusBadBytecode
		}

		return objectAssign(dst, src, assignShallowCopy)
	}

	dst.kind = ObjectReference
	dst.refKind = RefKindRefOf
	dst.inner = src.ref()
	return StatusOK
}

// handleSizeof measures the implicit-storage size of the operand after
// unwinding references: strings count without their trailing NUL, buffers
// count bytes, packages count elements.
func handleSizeof(ctx *execContext) Status {
	opCtx := ctx.curOpCtx
	src := opCtx.items[0].obj
	dst := opCtx.items[1].obj
	if src == nil {
		return StatusBadBytecode
	}

	if src.kind == ObjectReference {
		src = referenceUnwind(src).inner
	}

	switch src.kind {
	case ObjectString, ObjectBuffer:
		buf, st := ctx.vm.objectStorage(src, false)
		if st != StatusOK {
			return st
		}
		dst.integer = uint64(len(buf))
	case ObjectPackage:
		dst.integer = uint64(len(src.pkg.elements))
	default:
		ctx.vm.log.Warningf("invalid argument for Sizeof: %s, expected String/Buffer/Package", src.kind)
		return StatusBadBytecode
	}

	return StatusOK
}

// handleObjectType reports the numeric kind of the operand. A BufferIndex
// reports as BufferField.
func handleObjectType(ctx *execContext) Status {
	opCtx := ctx.curOpCtx
	src := opCtx.items[0].obj
	dst := opCtx.items[1].obj
	if src == nil {
		return StatusBadBytecode
	}

	if src.kind == ObjectReference {
		src = referenceUnwind(src).inner
	}

	dst.integer = uint64(src.kind)
	if src.kind == ObjectBufferIndex {
		dst.integer = uint64(ObjectBufferField)
	}

	return StatusOK
}

// handleTimer yields the current time in 100-nanosecond ticks.
func handleTimer(ctx *execContext) Status {
	ctx.curOpCtx.items[0].obj.integer = ctx.vm.Ticks()
	return StatusOK
}

func (ctx *execContext) ensureValidIdx(idx, size uint64) Status {
	if idx < size {
		return StatusOK
	}

	ctx.vm.log.Warningf("invalid index %d, object has %d elements", idx, size)
	return StatusBadBytecode
}

// handleIndex creates a view into the operand: a BufferIndex for buffers
// and strings, a lazily lifted PkgIndex reference for packages.
func handleIndex(ctx *execContext) Status {
	opCtx := ctx.curOpCtx
	src := opCtx.items[0].obj
	if src == nil {
		return StatusBadBytecode
	}
	idx := opCtx.items[1].obj.integer
	dst := opCtx.items[3]

	switch src.kind {
	case ObjectBuffer, ObjectString:
		buf, st := ctx.vm.objectStorage(src, false)
		if st != StatusOK {
			return st
		}

		if st = ctx.ensureValidIdx(idx, uint64(len(buf))); st != StatusOK {
			return st
		}

		dst.typ = itemObject
		dst.obj = createObject(ObjectBufferIndex)
		dst.obj.bufIdx.idx = idx
		dst.obj.bufIdx.buffer = src.buffer.ref()

	case ObjectPackage:
		pkg := src.pkg

		if st := ctx.ensureValidIdx(idx, uint64(len(pkg.elements))); st != StatusOK {
			return st
		}

		// Lazily lift the package element into a PkgIndex reference to
		// itself so that CopyObject(..., Index(pkg, X)) propagates the new
		// object to everyone holding a live index. IndexOp is not a
		// SimpleName so this should be illegal, but the reference OS
		// allows it just fine.
		obj := pkg.elements[idx]
		if obj.kind != ObjectReference || obj.refKind != RefKindPkgIndex {
			ref := createInternalReference(RefKindPkgIndex, obj)
			pkg.elements[idx] = ref
			obj.unref()
			obj = ref
		}

		dst.typ = itemObject
		dst.obj = obj.ref()

	default:
		ctx.vm.log.Warningf("invalid argument for Index: %s, expected String/Buffer/Package", src.kind)
		return StatusBadBytecode
	}

	return StatusOK
}
