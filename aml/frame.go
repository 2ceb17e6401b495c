package aml

const (
	// According to the ACPI spec, methods can use up to 8 local args and
	// can receive up to 7 method args.
	maxLocals     = 8
	maxMethodArgs = 7
)

// packageLength records the byte range covered by an encoded package
// length: begin is the offset of the lead byte, end is one past the last
// byte the package covers.
type packageLength struct {
	begin uint32
	end   uint32
}

// item is one entry of an op-context's item array: a namespace node, an
// object (possibly still empty), a package length or an inline immediate.
type item struct {
	typ  itemType
	node *NamespaceNode
	obj  *Object
	pkg  packageLength
	imm  uint64
}

// opContext tracks one opcode in the middle of decoding: the parse-program
// counter, the preemption flag set while a dynamic argument is parsed, the
// item index of a tracked package length and the items produced so far.
type opContext struct {
	pc        int
	preempted bool

	// trackedPkgIdx is 0 when unset, otherwise items[trackedPkgIdx-1]
	// holds the package length used to fast-forward the frame on END.
	trackedPkgIdx int

	op    *opSpec
	items []*item
}

func (oc *opContext) newItem() *item {
	it := &item{}
	oc.items = append(oc.items, it)
	return it
}

func (oc *opContext) lastItem() *item {
	if len(oc.items) == 0 {
		return nil
	}
	return oc.items[len(oc.items)-1]
}

// codeBlockType describes the kinds of scoped byte ranges a method body is
// made of.
type codeBlockType uint8

const (
	codeBlockIf codeBlockType = iota + 1
	codeBlockElse
	codeBlockWhile
	codeBlockScope
)

// codeBlock is one entry of a frame's block stack: a byte range plus, for
// scope blocks, the namespace node that names the scope.
type codeBlock struct {
	typ   codeBlockType
	begin uint32
	end   uint32
	node  *NamespaceNode
}

// callFrame holds the execution state of one method invocation.
type callFrame struct {
	method *ControlMethod

	args   [maxMethodArgs]*Object
	locals [maxLocals]*Object

	pendingOps []*opContext
	codeBlocks []*codeBlock
	tempNodes  []*NamespaceNode
	lastWhile  *codeBlock
	curScope   *NamespaceNode

	codeOffset uint32
}

func (frame *callFrame) codeBytesLeft() int {
	return len(frame.method.Code) - int(frame.codeOffset)
}

func (frame *callFrame) hasCode() bool {
	return frame.codeBytesLeft() > 0
}

func (frame *callFrame) lastBlock() *codeBlock {
	if len(frame.codeBlocks) == 0 {
		return nil
	}
	return frame.codeBlocks[len(frame.codeBlocks)-1]
}

// findLastBlock returns the innermost block of the given type, or nil.
func (frame *callFrame) findLastBlock(typ codeBlockType) *codeBlock {
	for i := len(frame.codeBlocks) - 1; i >= 0; i-- {
		if frame.codeBlocks[i].typ == typ {
			return frame.codeBlocks[i]
		}
	}
	return nil
}

// execContext holds the interpreter state while a method executes: the
// call stack plus cached pointers to the hot entries at its top.
type execContext struct {
	vm *VM

	ret       *Object
	callStack []*callFrame

	curFrame  *callFrame
	curBlock  *codeBlock
	curOp     *opSpec
	prevOpCtx *opContext
	curOpCtx  *opContext

	skipElse bool
}

// refresh re-derives the cached top-of-stack pointers after the frame or
// op stacks change.
func (ctx *execContext) refresh() {
	frame := ctx.curFrame
	if frame == nil {
		ctx.curOpCtx = nil
		ctx.prevOpCtx = nil
		ctx.curBlock = nil
		return
	}

	n := len(frame.pendingOps)
	ctx.curOpCtx = nil
	ctx.prevOpCtx = nil
	if n > 0 {
		ctx.curOpCtx = frame.pendingOps[n-1]
	}
	if n > 1 {
		ctx.prevOpCtx = frame.pendingOps[n-2]
	}
	ctx.curBlock = frame.lastBlock()
}

func (ctx *execContext) hasNonPreemptedOp() bool {
	return ctx.curOpCtx != nil && !ctx.curOpCtx.preempted
}

// pushOp allocates a fresh op-context for the opcode in ctx.curOp.
func (ctx *execContext) pushOp() {
	frame := ctx.curFrame
	frame.pendingOps = append(frame.pendingOps, &opContext{op: ctx.curOp})
	ctx.refresh()
}

// popOp releases the current op-context and everything it owns: objects
// are unref'd, method-local nodes that were never installed are freed.
func (ctx *execContext) popOp() {
	frame := ctx.curFrame
	opCtx := ctx.curOpCtx

	for i := len(opCtx.items) - 1; i >= 0; i-- {
		it := opCtx.items[i]
		if it.typ == itemObject && it.obj != nil {
			it.obj.unref()
		}
		if it.typ == itemNamespaceNodeMethodLocal && it.node != nil {
			ctx.vm.ns.free(it.node)
		}
	}
	opCtx.items = nil

	frame.pendingOps = frame.pendingOps[:len(frame.pendingOps)-1]
	ctx.refresh()
}

// updateScope points the frame's current scope at the innermost scope
// block, or the namespace root when none is open.
func (ctx *execContext) updateScope(frame *callFrame) {
	if block := frame.findLastBlock(codeBlockScope); block != nil {
		frame.curScope = block.node
		return
	}
	frame.curScope = ctx.vm.ns.Root()
}

// frameSetupBaseScope installs the outermost scope block covering the full
// method body.
func frameSetupBaseScope(frame *callFrame, scope *NamespaceNode, method *ControlMethod) {
	frame.codeBlocks = append(frame.codeBlocks, &codeBlock{
		typ:   codeBlockScope,
		node:  scope,
		begin: 0,
		end:   uint32(len(method.Code)),
	})
	frame.method = method
	frame.curScope = scope
}

// framePushArgs wraps each evaluated call argument in an Arg reference and
// stores it into the new frame. See methodCallProgram for the item layout.
func framePushArgs(frame *callFrame, opCtx *opContext) Status {
	for i := 2; i < len(opCtx.items)-1; i++ {
		src := opCtx.items[i].obj
		frame.args[i-2] = createInternalReference(RefKindArg, src)
	}
	return StatusOK
}

// clear releases everything the frame owns. Temporary namespace nodes are
// uninstalled in reverse install order.
func (frame *callFrame) clear(ctx *execContext) {
	frame.pendingOps = nil
	frame.codeBlocks = nil

	for i := len(frame.tempNodes) - 1; i >= 0; i-- {
		ctx.vm.ns.uninstall(frame.tempNodes[i])
	}
	frame.tempNodes = nil

	for i := range frame.args {
		frame.args[i].unref()
		frame.args[i] = nil
	}
	for i := range frame.locals {
		frame.locals[i].unref()
		frame.locals[i] = nil
	}
}
