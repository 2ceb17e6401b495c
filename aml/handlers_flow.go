package aml

// createNamedScope binds the scope-creating opcodes that also produce an
// object (Device, Processor, PowerResource, ThermalZone) to their node.
func createNamedScope(opCtx *opContext) Status {
	node := opCtx.items[1].node
	obj := opCtx.lastItem().obj

	switch opCtx.op.code {
	case opProcessor:
		obj.proc.ID = uint8(opCtx.items[2].imm)
		obj.proc.BlockAddress = uint32(opCtx.items[3].imm)
		obj.proc.BlockLength = uint8(opCtx.items[4].imm)
	case opPowerRes:
		obj.power.SystemLevel = uint8(opCtx.items[2].imm)
		obj.power.ResourceOrder = uint16(opCtx.items[3].imm)
	}

	node.obj = createInternalReference(RefKindNamed, obj)
	return StatusOK
}

// beginBlockExecution pushes a code block for the current opcode onto the
// frame's block stack and re-derives the scope state.
func (ctx *execContext) beginBlockExecution() Status {
	var (
		frame = ctx.curFrame
		opCtx = ctx.curOpCtx
		block = &codeBlock{}
	)

	switch opCtx.op.code {
	case opIf:
		block.typ = codeBlockIf
	case opElse:
		block.typ = codeBlockElse
	case opWhile:
		block.typ = codeBlockWhile
	case opScope, opDevice, opProcessor, opPowerRes, opThermalZone:
		block.typ = codeBlockScope
		block.node = opCtx.items[1].node
	default:
		return StatusInvalidArgument
	}

	pkg := opCtx.items[0].pkg

	// -1 so the predicate is re-evaluated when a While wraps around.
	block.begin = pkg.begin - 1
	block.end = pkg.end

	frame.codeBlocks = append(frame.codeBlocks, block)
	ctx.curBlock = block
	frame.lastWhile = frame.findLastBlock(codeBlockWhile)
	ctx.updateScope(frame)
	return StatusOK
}

// handleCodeBlock decides whether to enter the block of an If, Else,
// While or scope-like opcode or to skip over its byte range.
func handleCodeBlock(ctx *execContext) Status {
	opCtx := ctx.curOpCtx
	pkg := opCtx.items[0].pkg

	var skipBlock bool
	switch opCtx.op.code {
	case opElse:
		skipBlock = ctx.skipElse
	case opProcessor, opPowerRes, opThermalZone, opDevice:
		if st := createNamedScope(opCtx); st != StatusOK {
			return st
		}
		skipBlock = false
	case opScope:
		skipBlock = false
	case opIf, opWhile:
		skipBlock = opCtx.items[1].obj.integer == 0
	default:
		return StatusInvalidArgument
	}

	if skipBlock {
		ctx.curFrame.codeOffset = pkg.end
		return StatusOK
	}

	return ctx.beginBlockExecution()
}

// handleControlFlow implements Break and Continue: pop blocks up to and
// including the innermost While, then resume at its end or start.
func handleControlFlow(ctx *execContext) Status {
	frame := ctx.curFrame

	if frame.lastWhile == nil {
		ctx.vm.log.Warningf("op %q: not inside a While block", ctx.curOpCtx.op.name)
		return StatusBadBytecode
	}

	for {
		if ctx.curBlock != frame.lastWhile {
			ctx.frameResetPostEndBlock(ctx.curBlock.typ)
			continue
		}

		if ctx.curOpCtx.op.code == opBreak {
			frame.codeOffset = ctx.curBlock.end
		} else {
			frame.codeOffset = ctx.curBlock.begin
		}
		ctx.frameResetPostEndBlock(ctx.curBlock.typ)
		break
	}

	return StatusOK
}

// handleReturn ends the method and deep-copies the operand into whatever
// awaits the value: the caller's live op-context item, or the out slot of
// the top-level invocation.
func handleReturn(ctx *execContext) Status {
	ctx.curFrame.codeOffset = uint32(len(ctx.curFrame.method.Code))

	dst, st := ctx.methodGetRetObject()
	if st != StatusOK {
		return st
	}

	src := ctx.curOpCtx.items[0].obj
	if dst == nil || src == nil {
		return StatusOK
	}

	return objectAssign(dst, src, assignDeepCopy)
}

// handleCopyObjectOrStore routes Store through the implicit-cast protocol
// and CopyObject through unconditional replacement.
func handleCopyObjectOrStore(ctx *execContext) Status {
	src := ctx.curOpCtx.items[0].obj
	dst := ctx.curOpCtx.items[1].obj

	if ctx.curOpCtx.op.code == opStore {
		return ctx.vm.storeToTarget(dst, src)
	}

	if src == nil || dst == nil || dst.kind != ObjectReference {
		return StatusBadBytecode
	}

	return copyObjectToReference(dst, src)
}
