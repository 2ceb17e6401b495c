package aml

import (
	"time"

	"github.com/tliron/commonlog"
)

// RegionHandler performs physical I/O for one operation-region address
// space. Handlers are hook points: the core records regions and routes
// nothing through them itself.
type RegionHandler func(region *OperationRegion, write bool, offset uint64, width int, value *uint64) error

// VM evaluates AML control methods against a namespace. A VM is not safe
// for concurrent use; concurrent invocations need separate VMs or external
// synchronization of the namespace.
type VM struct {
	ns  *Namespace
	log commonlog.Logger

	// According to the ACPI spec, a table revision below 2 makes integers
	// 32 bits wide. The VM memoizes this so conversion helpers can use it.
	isRev1 bool

	// Ticks supplies the Timer opcode with 100-nanosecond ticks. It can
	// be replaced for deterministic tests.
	Ticks func() uint64

	regionHandlers map[uint8]RegionHandler
}

// NewVM returns a VM with a fresh namespace containing the predefined
// scopes and 64-bit integer semantics.
func NewVM() *VM {
	return &VM{
		ns:  NewNamespace(),
		log: commonlog.GetLogger("uacpi.aml"),
		Ticks: func() uint64 {
			return uint64(time.Now().UnixNano() / 100)
		},
	}
}

// Namespace returns the VM's namespace.
func (vm *VM) Namespace() *Namespace { return vm.ns }

// SetRevision configures integer width from a table revision field.
func (vm *VM) SetRevision(rev uint8) { vm.isRev1 = rev < 2 }

// RegisterRegionHandler installs the I/O hook for one address space id.
func (vm *VM) RegisterRegionHandler(space uint8, h RegionHandler) {
	if vm.regionHandlers == nil {
		vm.regionHandlers = make(map[uint8]RegionHandler)
	}
	vm.regionHandlers[space] = h
}

// LoadTable executes the root term list of a table. Named objects created
// during the load persist in the namespace.
func (vm *VM) LoadTable(code []byte) error {
	method := &ControlMethod{Code: code, NamedObjectsPersist: true}
	_, err := vm.Execute(vm.ns.Root(), method)
	return err
}

// Execute runs a control method with the given arguments and returns its
// result, or nil if the method does not return a value. The caller owns
// the returned object and releases it with Release.
func (vm *VM) Execute(scope *NamespaceNode, method *ControlMethod, args ...*Object) (*Object, error) {
	if len(args) != int(method.ArgCount) {
		return nil, StatusInvalidArgument
	}

	ret, st := vm.execute(scope, method, args)
	if st != StatusOK {
		return nil, st
	}
	return ret, nil
}

// EvaluatePath resolves an absolute dotted path to a method and executes
// it. Non-method named objects evaluate to a deep copy of their value.
func (vm *VM) EvaluatePath(path string, args ...*Object) (*Object, error) {
	node := vm.ns.FindAbsolute(path)
	if node == nil {
		return nil, StatusNotFound
	}

	obj := nodeObject(node)
	if obj == nil {
		return nil, StatusNotFound
	}
	if obj.kind != ObjectMethod {
		cp := createObject(ObjectUninitialized)
		if st := objectAssign(cp, obj, assignDeepCopy); st != StatusOK {
			cp.unref()
			return nil, st
		}
		return cp, nil
	}

	return vm.Execute(node, obj.method, args...)
}

// Release drops the caller's reference on an object returned by Execute.
func (o *Object) Release() { o.unref() }

// nodeObject returns the object named by a node with internal references
// peeled off, or nil when the node has no object.
func nodeObject(node *NamespaceNode) *Object {
	if node.obj == nil {
		return nil
	}
	return unwrapInternalReference(node.obj)
}

func (vm *VM) execute(scope *NamespaceNode, method *ControlMethod, args []*Object) (*Object, Status) {
	ctx := &execContext{vm: vm, ret: createObject(ObjectUninitialized)}

	frame := &callFrame{}
	ctx.callStack = append(ctx.callStack, frame)
	ctx.curFrame = frame

	for i, arg := range args {
		frame.args[i] = createInternalReference(RefKindArg, arg)
	}

	frameSetupBaseScope(frame, scope, method)
	ctx.curBlock = frame.lastBlock()

	st := StatusOK
	for {
		if !ctx.hasNonPreemptedOp() {
			if ctx.curFrame == nil {
				break
			}

			if ctx.maybeEndBlock() {
				continue
			}

			if !ctx.curFrame.hasCode() {
				ctx.reloadPostRet()
				continue
			}

			if st = ctx.getOp(); st != StatusOK {
				break
			}

			vm.log.Debugf("processing op %q (0x%04X)", ctx.curOp.name, uint16(ctx.curOp.code))
		}

		if st = ctx.execOp(); st != StatusOK {
			break
		}

		ctx.skipElse = false
	}

	var ret *Object
	if st == StatusOK && ctx.ret.kind != ObjectUninitialized {
		ret = ctx.ret.ref()
	}
	ctx.release()
	return ret, st
}

// getOp fetches the next opcode at the frame's code cursor. Bytes that
// begin a name string map to the internal NameString opcode.
func (ctx *execContext) getOp() Status {
	frame := ctx.curFrame
	code := frame.method.Code

	if int(frame.codeOffset) >= len(code) {
		return StatusOutOfBounds
	}

	b := code[frame.codeOffset]
	frame.codeOffset++

	op := amlOp(b)
	if b == extOpPrefix {
		if int(frame.codeOffset) >= len(code) {
			return StatusOutOfBounds
		}
		op = op<<8 | amlOp(code[frame.codeOffset])
		frame.codeOffset++
	} else if isNameLeadByte(b) {
		op = opIntNameString
	}

	spec := getOpSpec(op)
	if spec == nil || spec.props&opPropReserved != 0 {
		ctx.vm.log.Errorf("invalid/reserved opcode 0x%04X", uint16(op))
		return StatusBadBytecode
	}

	ctx.curOp = spec
	return StatusOK
}

// maybeEndBlock checks whether the frame's cursor reached the end of the
// innermost code block and pops it if so. Ending a While loops back to its
// predicate; ending an If arms the skip flag consulted by a following
// Else.
func (ctx *execContext) maybeEndBlock() bool {
	block := ctx.curBlock
	frame := ctx.curFrame

	if block == nil || frame.codeOffset != block.end {
		return false
	}

	ctx.skipElse = false

	if block.typ == codeBlockWhile {
		frame.codeOffset = block.begin
	} else if block.typ == codeBlockIf {
		ctx.skipElse = true
	}

	ctx.frameResetPostEndBlock(block.typ)
	return true
}

// frameResetPostEndBlock pops the innermost block and re-derives the
// cached state that depended on it.
func (ctx *execContext) frameResetPostEndBlock(typ codeBlockType) {
	frame := ctx.curFrame
	frame.codeBlocks = frame.codeBlocks[:len(frame.codeBlocks)-1]
	ctx.curBlock = frame.lastBlock()

	if typ == codeBlockWhile {
		frame.lastWhile = frame.findLastBlock(codeBlockWhile)
	} else if typ == codeBlockScope {
		ctx.updateScope(frame)
	}
}

// reloadPostRet tears down the finished frame and resumes its caller.
func (ctx *execContext) reloadPostRet() {
	ctx.curFrame.clear(ctx)
	ctx.callStack = ctx.callStack[:len(ctx.callStack)-1]

	if len(ctx.callStack) == 0 {
		ctx.curFrame = nil
	} else {
		ctx.curFrame = ctx.callStack[len(ctx.callStack)-1]
	}
	ctx.refresh()
}

// release unwinds every op-context and frame, dropping all owned objects.
func (ctx *execContext) release() {
	if ctx.ret != nil {
		ctx.ret.unref()
	}

	for len(ctx.callStack) != 0 {
		ctx.curFrame = ctx.callStack[len(ctx.callStack)-1]
		ctx.refresh()

		for len(ctx.curFrame.pendingOps) != 0 {
			ctx.popOp()
		}

		ctx.curFrame.clear(ctx)
		ctx.callStack = ctx.callStack[:len(ctx.callStack)-1]
	}
	ctx.curFrame = nil
	ctx.refresh()
}

// methodGetRetTarget locates the object that should receive the running
// method's return value: the awaiting item of the caller's live op
// context. A nil result with StatusOK means nobody wants the value.
func (ctx *execContext) methodGetRetTarget() (*Object, Status) {
	depth := len(ctx.callStack)
	if depth > 1 {
		frame := ctx.callStack[depth-2]
		if len(frame.pendingOps) == 0 {
			// No one wants the return value at the call site. Discard it.
			return nil, StatusOK
		}

		opCtx := frame.pendingOps[len(frame.pendingOps)-1]
		return opCtx.lastItem().obj, StatusOK
	}

	return nil, StatusNotFound
}

func (ctx *execContext) methodGetRetObject() (*Object, Status) {
	obj, st := ctx.methodGetRetTarget()
	if st == StatusNotFound {
		return ctx.ret, StatusOK
	}
	if st != StatusOK || obj == nil {
		return nil, st
	}
	return unwrapInternalReference(obj), StatusOK
}

// opTypecheck validates a freshly fetched opcode against the grammar
// production its preempted parent expects.
func (ctx *execContext) opTypecheck(prevCtx, curCtx *opContext) Status {
	var (
		expected string
		okMask   opProps
	)

	switch prevCtx.op.decode[prevCtx.pc] {
	case parseOpSimpleName:
		expected = "SimpleName := NameString | ArgObj | LocalObj"
		okMask = opPropSimpleName
	case parseOpTarget:
		expected = "Target := SuperName | NullName"
		okMask = opPropTarget | opPropSuperName
	case parseOpSuperName, parseOpSuperNameImplicitDeref, parseOpSuperNameOrUnresolved:
		expected = "SuperName := SimpleName | DebugObj | ReferenceTypeOpcode"
		okMask = opPropSuperName
	case parseOpTermArg, parseOpTermArgUnwrapInternal, parseOpTermArgOrNamedObject,
		parseOpTermArgOrNamedObjectOrUnresolved, parseOpOperand, parseOpComputationalData:
		expected = "TermArg := ExpressionOpcode | DataObject | ArgObj | LocalObj"
		okMask = opPropTermArg
	default:
		return StatusOK
	}

	if curCtx.op.props&okMask == 0 {
		ctx.vm.log.Warningf("op %q: invalid argument %q, expected a %s",
			prevCtx.op.name, curCtx.op.name, expected)
		return StatusBadBytecode
	}

	return StatusOK
}

func (ctx *execContext) typecheckOperand(obj *Object) Status {
	if obj == nil {
		ctx.vm.log.Warningf("object-less named entity used as an Operand")
		return StatusBadBytecode
	}
	if obj.kind == ObjectInteger {
		return StatusOK
	}
	ctx.vm.log.Warningf("invalid argument type %s, expected an Operand (Integer)", obj.kind)
	return StatusBadBytecode
}

func (ctx *execContext) typecheckComputationalData(obj *Object) Status {
	if obj == nil {
		ctx.vm.log.Warningf("object-less named entity used as ComputationalData")
		return StatusBadBytecode
	}
	switch obj.kind {
	case ObjectString, ObjectBuffer, ObjectInteger:
		return StatusOK
	default:
		ctx.vm.log.Warningf("invalid argument type %s, expected ComputationalData", obj.kind)
		return StatusBadBytecode
	}
}

// execOp runs the current op-context's parse program until it finishes,
// preempts for a dynamic argument, or dispatches a method call.
func (ctx *execContext) execOp() Status {
	var (
		st     = StatusOK
		it     *item
		prevOp parseOp
	)

	// Allocate a new op context if the previous one is preempted (looking
	// for a dynamic argument) or doesn't exist at all.
	if !ctx.hasNonPreemptedOp() {
		ctx.pushOp()
	}

	if ctx.prevOpCtx != nil {
		prevOp = ctx.prevOpCtx.op.decode[ctx.prevOpCtx.pc]
	}

	for {
		if st != StatusOK {
			return st
		}

		opCtx := ctx.curOpCtx
		frame := ctx.curFrame
		vm := ctx.vm

		if opCtx.pc == 0 && ctx.prevOpCtx != nil {
			// Check the fetched opcode against what the preempted op
			// expects. Operand integer-ness can only be verified after the
			// child produces its object.
			if st = ctx.opTypecheck(ctx.prevOpCtx, opCtx); st != StatusOK {
				return st
			}
		}

		op := opCtx.op.decode[opCtx.pc]
		opCtx.pc++

		decodeByte := func() parseOp {
			b := opCtx.op.decode[opCtx.pc]
			opCtx.pc++
			return b
		}

		if genType := parseOpGeneratesItem[op]; genType != itemNone {
			it = opCtx.newItem()
			it.typ = genType
			if genType == itemObject {
				kind := ObjectUninitialized
				if op == parseOpObjectAllocTyped {
					kind = ObjectKind(decodeByte())
				}
				it.obj = createObject(kind)
			}
		} else if it == nil {
			it = opCtx.lastItem()
		}

		switch op {
		case parseOpEnd:
			if opCtx.trackedPkgIdx != 0 {
				frame.codeOffset = opCtx.items[opCtx.trackedPkgIdx-1].pkg.end
			}

			ctx.popOp()
			if ctx.curOpCtx != nil {
				ctx.curOpCtx.preempted = false
				ctx.curOpCtx.pc++
			}
			return StatusOK

		case parseOpSimpleName, parseOpSuperName, parseOpSuperNameImplicitDeref,
			parseOpSuperNameOrUnresolved, parseOpTermArg, parseOpTermArgUnwrapInternal,
			parseOpTermArgOrNamedObject, parseOpTermArgOrNamedObjectOrUnresolved,
			parseOpOperand, parseOpComputationalData, parseOpTarget:
			// Preempt this op: the next fetched opcode parses the dynamic
			// argument and re-activates us from its END.
			opCtx.preempted = true
			opCtx.pc--
			return StatusOK

		case parseOpTrackedPkgLen, parseOpPkgLen:
			if op == parseOpTrackedPkgLen {
				opCtx.trackedPkgIdx = len(opCtx.items)
			}
			it.pkg, st = parsePackageLength(frame)

		case parseOpLoadInlineImm, parseOpLoadInlineImmAsObject:
			width := 8
			if op == parseOpLoadInlineImm {
				width = int(decodeByte())
			}

			var imm uint64
			for i := 0; i < width; i++ {
				imm |= uint64(opCtx.op.decode[opCtx.pc+i]) << (8 * i)
			}
			opCtx.pc += width

			if op == parseOpLoadInlineImmAsObject {
				it.obj.kind = ObjectInteger
				it.obj.integer = imm
			} else {
				it.imm = imm
			}

		case parseOpLoadImm, parseOpLoadImmAsObject:
			width := int(decodeByte())
			if frame.codeBytesLeft() < width {
				return StatusBadBytecode
			}

			var imm uint64
			for i := 0; i < width; i++ {
				imm |= uint64(frame.method.Code[int(frame.codeOffset)+i]) << (8 * i)
			}
			frame.codeOffset += uint32(width)

			if op == parseOpLoadImmAsObject {
				it.obj.kind = ObjectInteger
				it.obj.integer = imm
			} else {
				it.imm = imm
			}

		case parseOpLoadFalseObject, parseOpLoadTrueObject:
			it.obj.kind = ObjectInteger
			if op == parseOpLoadTrueObject {
				it.obj.integer = vm.ones()
			}

		case parseOpRecordAMLPC:
			it.imm = uint64(frame.codeOffset)

		case parseOpTruncateNumber:
			vm.truncateIfNeeded(it.obj)

		case parseOpTypecheck:
			expected := ObjectKind(decodeByte())
			if it.obj == nil {
				vm.log.Warningf("op %q: bad object type: expected %s, got nothing",
					opCtx.op.name, expected)
				st = StatusBadBytecode
				break
			}
			if it.obj.kind != expected {
				vm.log.Warningf("op %q: bad object type: expected %s, got %s",
					opCtx.op.name, expected, it.obj.kind)
				st = StatusBadBytecode
			}

		case parseOpTodo:
			vm.log.Warningf("op %q: not yet implemented", opCtx.op.name)
			st = StatusUnimplemented

		case parseOpBadOpcode, parseOpUnreachable:
			vm.log.Warningf("op %q: invalid/unexpected opcode", opCtx.op.name)
			st = StatusBadBytecode

		case parseOpAMLPCDecrement:
			frame.codeOffset--

		case parseOpImmDecrement:
			opCtx.items[decodeByte()].imm--

		case parseOpIfHasData:
			skip := decodeByte()
			pkg := opCtx.items[opCtx.trackedPkgIdx-1].pkg
			if frame.codeOffset >= pkg.end {
				opCtx.pc += int(skip)
			}

		case parseOpIfNull, parseOpIfNotNull:
			idx := decodeByte()
			skip := decodeByte()

			target := opCtx.items[idx]
			isNull := target.obj == nil && target.node == nil
			if isNull == (op == parseOpIfNotNull) {
				opCtx.pc += int(skip)
			}

		case parseOpIfEquals:
			idx := decodeByte()
			value := decodeByte()
			skip := decodeByte()

			if opCtx.items[idx].imm != uint64(value) {
				opCtx.pc += int(skip)
			}

		case parseOpJmp:
			opCtx.pc = int(opCtx.op.decode[opCtx.pc])

		case parseOpCreateNameString, parseOpExistingNameString, parseOpExistingNameStringOrNull:
			var (
				offset   = frame.codeOffset
				behavior = resolveFailIfMissing
				action   = "resolve"
			)

			if op == parseOpCreateNameString {
				behavior = resolveCreateLastSeg
				action = "create"
			}

			it.node, st = vm.resolveNameString(frame, behavior)

			if st == StatusNotFound {
				var ok bool
				if prevOp != 0 {
					ok = parseOpAllowsUnresolved(prevOp) && parseOpAllowsUnresolved(op)
				} else {
					// The only standalone op where unresolved names are fine
					ok = opCtx.op.code == opExternal
				}

				if ok {
					st = StatusOK
				}
			}

			if st != StatusOK {
				path, _ := nameStringToPath(frame, offset)
				vm.log.Errorf("failed to %s named object %q: %s", action, path, st)
			}

		case parseOpInvokeHandler:
			st = ctx.invokeHandler(opCtx.op.code)

		case parseOpInstallNamespaceNode:
			it = opCtx.items[decodeByte()]
			if st = vm.ns.install(it.node.parent, it.node); st == StatusOK {
				if !frame.method.NamedObjectsPersist {
					frame.tempNodes = append(frame.tempNodes, it.node)
				}
				it.node = nil
			}

		case parseOpObjectTransferToPrev, parseOpObjectCopyToPrev:
			if ctx.prevOpCtx == nil {
				break
			}

			var src *Object
			switch prevOp {
			case parseOpTermArgUnwrapInternal, parseOpComputationalData, parseOpOperand:
				src = unwrapInternalReference(it.obj)
				if prevOp == parseOpOperand {
					st = ctx.typecheckOperand(src)
				} else if prevOp == parseOpComputationalData {
					st = ctx.typecheckComputationalData(src)
				}
			case parseOpSuperName, parseOpSuperNameOrUnresolved:
				src = it.obj
			case parseOpSuperNameImplicitDeref:
				if it.obj == nil {
					st = StatusBadBytecode
					break
				}
				src = objectDerefImplicit(it.obj)
			case parseOpSimpleName, parseOpTermArg, parseOpTermArgOrNamedObject,
				parseOpTermArgOrNamedObjectOrUnresolved, parseOpTarget:
				src = it.obj
			default:
				vm.log.Warningf("op %q: cannot transfer object to parse op %d",
					opCtx.op.name, prevOp)
				st = StatusInvalidArgument
			}

			if st != StatusOK {
				break
			}

			dst := ctx.prevOpCtx.lastItem()
			dst.typ = itemObject
			if op == parseOpObjectTransferToPrev {
				dst.obj = src.ref()
			} else {
				dst.obj = createObject(ObjectUninitialized)
				st = objectAssign(dst.obj, src, assignDeepCopy)
			}

		case parseOpStoreToTarget, parseOpStoreToTargetIndirect:
			dst := opCtx.items[decodeByte()].obj
			src := it.obj
			if op == parseOpStoreToTargetIndirect {
				src = opCtx.items[decodeByte()].obj
			}
			st = vm.storeToTarget(dst, src)

		// Nothing to do here, the item machinery above handles allocation
		case parseOpObjectAlloc, parseOpObjectAllocTyped, parseOpEmptyObjectAlloc:

		case parseOpObjectConvertToShallowCopy, parseOpObjectConvertToDeepCopy:
			temp := it.obj
			opCtx.items = opCtx.items[:len(opCtx.items)-1]
			it = opCtx.lastItem()

			behavior := assignShallowCopy
			if op == parseOpObjectConvertToDeepCopy {
				behavior = assignDeepCopy
			}

			if st = objectAssign(temp, it.obj, behavior); st != StatusOK {
				break
			}

			it.obj.unref()
			it.obj = temp

		case parseOpDispatchMethodCall:
			node := opCtx.items[0].node
			method := nodeObject(node).method

			newFrame := &callFrame{}
			ctx.callStack = append(ctx.callStack, newFrame)

			if st = framePushArgs(newFrame, opCtx); st != StatusOK {
				return st
			}
			frameSetupBaseScope(newFrame, node, method)

			ctx.curFrame = newFrame
			ctx.curOpCtx = nil
			ctx.prevOpCtx = nil
			ctx.curBlock = newFrame.lastBlock()
			return StatusOK

		case parseOpConvertNameString:
			newOp := opIntNamedObject

			if it.node == nil {
				if !parseOpAllowsUnresolved(prevOp) {
					st = StatusNotFound
				}
				break
			}

			obj := nodeObject(it.node)
			kind := ObjectUninitialized
			if obj != nil {
				kind = obj.kind
			}

			switch kind {
			case ObjectMethod:
				shouldInvoke := true
				switch prevOp {
				case parseOpTermArgOrNamedObject, parseOpTermArgOrNamedObjectOrUnresolved:
					shouldInvoke = false
				default:
					shouldInvoke = !parseOpWantsSuperName(prevOp)
				}

				if !shouldInvoke {
					break
				}

				newOp = opIntMethodCall0 + amlOp(obj.method.ArgCount)

			case ObjectBufferField:
				if !parseOpWantsTermArgOrOperand(prevOp) {
					break
				}

				if vm.fieldReadKind(&obj.field) == ObjectBuffer {
					newOp = opIntReadFieldAsBuffer
				} else {
					newOp = opIntReadFieldAsInteger
				}
			}

			opCtx.pc = 0
			opCtx.op = getOpSpec(newOp)

		default:
			vm.log.Warningf("op %q: unhandled parser op %d", opCtx.op.name, op)
			st = StatusUnimplemented
		}
	}
}
