package aml

import "math/bits"

// bitScanForward returns the 1-based position of the lowest set bit, or 0.
func bitScanForward(v uint64) uint64 {
	if v == 0 {
		return 0
	}
	return uint64(bits.TrailingZeros64(v)) + 1
}

// bitScanBackward returns the 1-based position of the highest set bit, or 0.
func bitScanBackward(v uint64) uint64 {
	if v == 0 {
		return 0
	}
	return uint64(bits.Len64(v))
}

// doBinaryMath computes one two-operand arithmetic op. Divide fills both
// targets: tgt0 receives the remainder, tgt1 the quotient.
func (vm *VM) doBinaryMath(arg0, arg1, tgt0, tgt1 *Object, op amlOp) {
	var (
		lhs = arg0.integer
		rhs = arg1.integer

		res          uint64
		shouldNegate bool
	)

	switch op {
	case opAdd:
		res = lhs + rhs
	case opSubtract:
		res = lhs - rhs
	case opMultiply:
		res = lhs * rhs
	case opShiftLeft, opShiftRight:
		limit := uint64(63)
		if vm.isRev1 {
			limit = 31
		}
		if rhs <= limit {
			if op == opShiftLeft {
				res = lhs << rhs
			} else {
				res = lhs >> rhs
			}
		}
	case opNand:
		shouldNegate = true
		res = rhs & lhs
	case opAnd:
		res = rhs & lhs
	case opNor:
		shouldNegate = true
		res = rhs | lhs
	case opOr:
		res = rhs | lhs
	case opXor:
		res = rhs ^ lhs
	case opDivide, opMod:
		// Division by zero zeroes both results instead of trapping; the
		// reference implementation reaches the remainder computation via a
		// deliberate fall-through here.
		if rhs == 0 {
			vm.log.Warningf("attempted division by zero")
			if tgt1 != nil {
				tgt1.integer = 0
			}
			res = 0
			break
		}
		if op == opDivide {
			tgt1.integer = lhs / rhs
		}
		res = lhs % rhs
	}

	if shouldNegate {
		res = ^res
	}

	tgt0.integer = res
}

func handleBinaryMath(ctx *execContext) Status {
	var (
		items = ctx.curOpCtx.items
		op    = ctx.curOpCtx.op.code

		tgt0, tgt1 *Object
	)

	arg0 := items[0].obj
	arg1 := items[1].obj

	if op == opDivide {
		tgt0 = items[4].obj
		tgt1 = items[5].obj
	} else {
		tgt0 = items[3].obj
	}

	ctx.vm.doBinaryMath(arg0, arg1, tgt0, tgt1, op)
	return StatusOK
}

func handleUnaryMath(ctx *execContext) Status {
	items := ctx.curOpCtx.items
	arg := items[0].obj
	tgt := items[2].obj

	switch ctx.curOpCtx.op.code {
	case opNot:
		tgt.integer = ^arg.integer
		ctx.vm.truncateIfNeeded(tgt)
	case opFindSetRightBit:
		tgt.integer = bitScanForward(arg.integer)
	case opFindSetLeftBit:
		tgt.integer = bitScanBackward(arg.integer)
	default:
		return StatusInvalidArgument
	}

	return StatusOK
}

func handleLogicalNot(ctx *execContext) Status {
	src := ctx.curOpCtx.items[0].obj
	dst := ctx.curOpCtx.items[1].obj

	dst.kind = ObjectInteger
	if src.integer != 0 {
		dst.integer = 0
	} else {
		dst.integer = ctx.vm.ones()
	}

	return StatusOK
}

func logicalEquality(lhs, rhs *Object) bool {
	if lhs.kind == ObjectString || lhs.kind == ObjectBuffer {
		if len(lhs.buffer.data) != len(rhs.buffer.data) {
			return false
		}
		for i := range lhs.buffer.data {
			if lhs.buffer.data[i] != rhs.buffer.data[i] {
				return false
			}
		}
		return true
	}
	return lhs.kind == ObjectInteger && lhs.integer == rhs.integer
}

func logicalLessOrGreater(op amlOp, lhs, rhs *Object) bool {
	if lhs.kind == ObjectString || lhs.kind == ObjectBuffer {
		var (
			lb  = lhs.buffer.data
			rb  = rhs.buffer.data
			res int
		)

		n := len(lb)
		if len(rb) < n {
			n = len(rb)
		}
		for i := 0; i < n && res == 0; i++ {
			switch {
			case lb[i] < rb[i]:
				res = -1
			case lb[i] > rb[i]:
				res = 1
			}
		}
		if res == 0 {
			// Content ties break on length
			switch {
			case len(lb) < len(rb):
				res = -1
			case len(lb) > len(rb):
				res = 1
			}
		}

		if op == opLLess {
			return res < 0
		}
		return res > 0
	}

	if op == opLLess {
		return lhs.integer < rhs.integer
	}
	return lhs.integer > rhs.integer
}

func handleBinaryLogic(ctx *execContext) Status {
	var (
		items = ctx.curOpCtx.items
		op    = ctx.curOpCtx.op.code
		res   bool
	)

	lhs := items[0].obj
	rhs := items[1].obj
	dst := items[2].obj

	switch op {
	case opLEqual, opLLess, opLGreater:
		// TODO: typecheck at parse time
		if lhs.kind != rhs.kind {
			return StatusBadBytecode
		}

		if op == opLEqual {
			res = logicalEquality(lhs, rhs)
		} else {
			res = logicalLessOrGreater(op, lhs, rhs)
		}
	default:
		// The reference OS only looks at the first 4 bytes of a buffer
		lhsInt := objectToInteger(lhs, 4)
		rhsInt := objectToInteger(rhs, 4)

		if op == opLand {
			res = lhsInt != 0 && rhsInt != 0
		} else {
			res = lhsInt != 0 || rhsInt != 0
		}
	}

	if res {
		dst.integer = ctx.vm.ones()
	} else {
		dst.integer = 0
	}
	return StatusOK
}
