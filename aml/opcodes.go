package aml

// amlOp identifies an AML opcode. One-byte opcodes use their encoding
// value; extended opcodes are (extOpPrefix << 8) | second byte; opcodes at
// 0xf7xx are internal to the interpreter and never appear in a bytestream.
type amlOp uint16

const (
	extOpPrefix = 0x5b

	dualNamePrefix  = 0x2e
	multiNamePrefix = 0x2f
	nullName        = 0x00
)

// The list of AML opcodes.
const (
	// Regular opcode list
	opZero             = amlOp(0x00)
	opOne              = amlOp(0x01)
	opAlias            = amlOp(0x06)
	opName             = amlOp(0x08)
	opBytePrefix       = amlOp(0x0a)
	opWordPrefix       = amlOp(0x0b)
	opDwordPrefix      = amlOp(0x0c)
	opStringPrefix     = amlOp(0x0d)
	opQwordPrefix      = amlOp(0x0e)
	opScope            = amlOp(0x10)
	opBuffer           = amlOp(0x11)
	opPackage          = amlOp(0x12)
	opVarPackage       = amlOp(0x13)
	opMethod           = amlOp(0x14)
	opExternal         = amlOp(0x15)
	opLocal0           = amlOp(0x60)
	opLocal7           = amlOp(0x67)
	opArg0             = amlOp(0x68)
	opArg6             = amlOp(0x6e)
	opStore            = amlOp(0x70)
	opRefOf            = amlOp(0x71)
	opAdd              = amlOp(0x72)
	opConcat           = amlOp(0x73)
	opSubtract         = amlOp(0x74)
	opIncrement        = amlOp(0x75)
	opDecrement        = amlOp(0x76)
	opMultiply         = amlOp(0x77)
	opDivide           = amlOp(0x78)
	opShiftLeft        = amlOp(0x79)
	opShiftRight       = amlOp(0x7a)
	opAnd              = amlOp(0x7b)
	opNand             = amlOp(0x7c)
	opOr               = amlOp(0x7d)
	opNor              = amlOp(0x7e)
	opXor              = amlOp(0x7f)
	opNot              = amlOp(0x80)
	opFindSetLeftBit   = amlOp(0x81)
	opFindSetRightBit  = amlOp(0x82)
	opDerefOf          = amlOp(0x83)
	opConcatRes        = amlOp(0x84)
	opMod              = amlOp(0x85)
	opNotify           = amlOp(0x86)
	opSizeOf           = amlOp(0x87)
	opIndex            = amlOp(0x88)
	opMatch            = amlOp(0x89)
	opCreateDWordField = amlOp(0x8a)
	opCreateWordField  = amlOp(0x8b)
	opCreateByteField  = amlOp(0x8c)
	opCreateBitField   = amlOp(0x8d)
	opObjectType       = amlOp(0x8e)
	opCreateQWordField = amlOp(0x8f)
	opLand             = amlOp(0x90)
	opLor              = amlOp(0x91)
	opLnot             = amlOp(0x92)
	opLEqual           = amlOp(0x93)
	opLGreater         = amlOp(0x94)
	opLLess            = amlOp(0x95)
	opToBuffer         = amlOp(0x96)
	opToDecimalString  = amlOp(0x97)
	opToHexString      = amlOp(0x98)
	opToInteger        = amlOp(0x99)
	opReservedA        = amlOp(0x9a)
	opReservedB        = amlOp(0x9b)
	opToString         = amlOp(0x9c)
	opCopyObject       = amlOp(0x9d)
	opMid              = amlOp(0x9e)
	opContinue         = amlOp(0x9f)
	opIf               = amlOp(0xa0)
	opElse             = amlOp(0xa1)
	opWhile            = amlOp(0xa2)
	opNoop             = amlOp(0xa3)
	opReturn           = amlOp(0xa4)
	opBreak            = amlOp(0xa5)
	opBreakPoint       = amlOp(0xcc)
	opOnes             = amlOp(0xff)
	// Extended opcodes
	opMutex       = amlOp(extOpPrefix<<8 | 0x01)
	opEvent       = amlOp(extOpPrefix<<8 | 0x02)
	opCondRefOf   = amlOp(extOpPrefix<<8 | 0x12)
	opCreateField = amlOp(extOpPrefix<<8 | 0x13)
	opLoadTable   = amlOp(extOpPrefix<<8 | 0x1f)
	opLoad        = amlOp(extOpPrefix<<8 | 0x20)
	opStall       = amlOp(extOpPrefix<<8 | 0x21)
	opSleep       = amlOp(extOpPrefix<<8 | 0x22)
	opAcquire     = amlOp(extOpPrefix<<8 | 0x23)
	opSignal      = amlOp(extOpPrefix<<8 | 0x24)
	opWait        = amlOp(extOpPrefix<<8 | 0x25)
	opReset       = amlOp(extOpPrefix<<8 | 0x26)
	opRelease     = amlOp(extOpPrefix<<8 | 0x27)
	opFromBCD     = amlOp(extOpPrefix<<8 | 0x28)
	opToBCD       = amlOp(extOpPrefix<<8 | 0x29)
	opUnload      = amlOp(extOpPrefix<<8 | 0x2a)
	opRevision    = amlOp(extOpPrefix<<8 | 0x30)
	opDebug       = amlOp(extOpPrefix<<8 | 0x31)
	opFatal       = amlOp(extOpPrefix<<8 | 0x32)
	opTimer       = amlOp(extOpPrefix<<8 | 0x33)
	opOpRegion    = amlOp(extOpPrefix<<8 | 0x80)
	opField       = amlOp(extOpPrefix<<8 | 0x81)
	opDevice      = amlOp(extOpPrefix<<8 | 0x82)
	opProcessor   = amlOp(extOpPrefix<<8 | 0x83)
	opPowerRes    = amlOp(extOpPrefix<<8 | 0x84)
	opThermalZone = amlOp(extOpPrefix<<8 | 0x85)
	opIndexField  = amlOp(extOpPrefix<<8 | 0x86)
	opBankField   = amlOp(extOpPrefix<<8 | 0x87)
	opDataRegion  = amlOp(extOpPrefix<<8 | 0x88)
	// Internal opcodes used while rewriting resolved name strings. These
	// never appear on the wire.
	opIntNameString         = amlOp(0xf730)
	opIntNamedObject        = amlOp(0xf731)
	opIntReadFieldAsBuffer  = amlOp(0xf732)
	opIntReadFieldAsInteger = amlOp(0xf733)
	opIntMethodCall0        = amlOp(0xf738)
	opIntMethodCall7        = amlOp(0xf73f)
)

// opProps is the property bitset carried by each opcode spec. The grammar
// bits feed the typecheck gate that validates a dynamically parsed argument
// against the production its parent expects.
type opProps uint8

const (
	opPropReserved opProps = 1 << iota
	opPropSimpleName
	opPropSuperName
	opPropTarget
	opPropTermArg
)

// opSpec describes one opcode: its code, a printable name, grammar property
// bits and the parse program interpreted by execOp.
type opSpec struct {
	code   amlOp
	name   string
	props  opProps
	decode []parseOp
}

const (
	propName = opPropSimpleName | opPropSuperName | opPropTermArg
	propExpr = opPropTermArg
)

// methodCallProgram builds the parse program for the internal
// MethodCall[N] opcodes. Item layout at dispatch time:
//
//	[0]          method namespace node (installed by ConvertNameString)
//	[1]          remaining-argument counter
//	[2..2+N-1]   evaluated call arguments
//	[last]       return value object
func methodCallProgram(argCount uint8) []parseOp {
	return []parseOp{
		parseOpLoadInlineImm, 1, parseOp(argCount),
		parseOpIfEquals, 1, 0, 2,
		parseOpJmp, 14,
		parseOpTermArg,
		parseOpImmDecrement, 1,
		parseOpJmp, 3,
		parseOpObjectAlloc,
		parseOpDispatchMethodCall,
		parseOpObjectTransferToPrev,
		parseOpEnd,
	}
}

// binaryMathProgram is shared by the two-operand, one-target arithmetic
// opcodes (Add, Subtract, Multiply, shifts, bitwise ops, Mod).
func binaryMathProgram() []parseOp {
	return []parseOp{
		parseOpOperand, parseOpOperand, parseOpTarget,
		parseOpObjectAllocTyped, parseOp(ObjectInteger),
		parseOpInvokeHandler,
		parseOpStoreToTarget, 2,
		parseOpObjectTransferToPrev,
		parseOpEnd,
	}
}

// unaryMathProgram is shared by Not, FindSetLeftBit and FindSetRightBit.
func unaryMathProgram() []parseOp {
	return []parseOp{
		parseOpOperand, parseOpTarget,
		parseOpObjectAllocTyped, parseOp(ObjectInteger),
		parseOpInvokeHandler,
		parseOpStoreToTarget, 1,
		parseOpObjectTransferToPrev,
		parseOpEnd,
	}
}

// binaryLogicProgram is shared by LEqual, LGreater, LLess, Land and Lor.
func binaryLogicProgram() []parseOp {
	return []parseOp{
		parseOpComputationalData, parseOpComputationalData,
		parseOpObjectAllocTyped, parseOp(ObjectInteger),
		parseOpInvokeHandler,
		parseOpObjectTransferToPrev,
		parseOpEnd,
	}
}

// createBufferFieldProgram is shared by the fixed-width buffer field
// creation opcodes (CreateBit/Byte/Word/DWord/QWordField).
func createBufferFieldProgram() []parseOp {
	return []parseOp{
		parseOpTermArgUnwrapInternal,
		parseOpTypecheck, parseOp(ObjectBuffer),
		parseOpOperand,
		parseOpCreateNameString,
		parseOpObjectAllocTyped, parseOp(ObjectBufferField),
		parseOpInvokeHandler,
		parseOpInstallNamespaceNode, 2,
		parseOpEnd,
	}
}

// toProgram is shared by ToInteger, ToBuffer, ToHexString and
// ToDecimalString; kind selects the result object type.
func toProgram(kind ObjectKind) []parseOp {
	return []parseOp{
		parseOpComputationalData, parseOpTarget,
		parseOpObjectAllocTyped, parseOp(kind),
		parseOpInvokeHandler,
		parseOpStoreToTarget, 1,
		parseOpObjectTransferToPrev,
		parseOpEnd,
	}
}

// localArgProgram is shared by Local0-7 and Arg0-6.
func localArgProgram() []parseOp {
	return []parseOp{
		parseOpEmptyObjectAlloc,
		parseOpInvokeHandler,
		parseOpObjectTransferToPrev,
		parseOpEnd,
	}
}

// The opcode table contains all opcode-related information the interpreter
// knows. It is modeled after the table used by the reference
// implementation; each entry carries the opcode's full parse program.
var opSpecTable = []opSpec{
	{opZero, "Zero", opPropTermArg | opPropTarget, []parseOp{
		parseOpLoadFalseObject, parseOpObjectTransferToPrev, parseOpEnd}},
	{opOne, "One", propExpr, []parseOp{
		parseOpLoadInlineImmAsObject, 1, 0, 0, 0, 0, 0, 0, 0,
		parseOpObjectTransferToPrev, parseOpEnd}},
	{opAlias, "Alias", 0, []parseOp{
		parseOpExistingNameString, parseOpCreateNameString,
		parseOpInvokeHandler, parseOpInstallNamespaceNode, 1, parseOpEnd}},
	{opName, "Name", 0, []parseOp{
		parseOpCreateNameString, parseOpTermArgUnwrapInternal,
		parseOpInvokeHandler, parseOpInstallNamespaceNode, 0, parseOpEnd}},
	{opBytePrefix, "Byte", propExpr, []parseOp{
		parseOpLoadImmAsObject, 1, parseOpObjectTransferToPrev, parseOpEnd}},
	{opWordPrefix, "Word", propExpr, []parseOp{
		parseOpLoadImmAsObject, 2, parseOpObjectTransferToPrev, parseOpEnd}},
	{opDwordPrefix, "Dword", propExpr, []parseOp{
		parseOpLoadImmAsObject, 4, parseOpObjectTransferToPrev, parseOpEnd}},
	{opStringPrefix, "String", propExpr, []parseOp{
		parseOpObjectAllocTyped, parseOp(ObjectString),
		parseOpInvokeHandler, parseOpObjectTransferToPrev, parseOpEnd}},
	{opQwordPrefix, "Qword", propExpr, []parseOp{
		parseOpLoadImmAsObject, 8, parseOpTruncateNumber,
		parseOpObjectTransferToPrev, parseOpEnd}},
	{opScope, "Scope", 0, []parseOp{
		parseOpPkgLen, parseOpExistingNameString,
		parseOpInvokeHandler, parseOpEnd}},
	{opBuffer, "Buffer", propExpr, []parseOp{
		parseOpTrackedPkgLen, parseOpOperand, parseOpRecordAMLPC,
		parseOpObjectAllocTyped, parseOp(ObjectBuffer),
		parseOpInvokeHandler, parseOpObjectTransferToPrev, parseOpEnd}},
	{opPackage, "Package", propExpr, []parseOp{
		/* 0*/ parseOpTrackedPkgLen,
		/* 1*/ parseOpLoadImm, 1,
		/* 3*/ parseOpIfHasData, 4,
		/* 5*/ parseOpRecordAMLPC,
		/* 6*/ parseOpTermArgOrNamedObjectOrUnresolved,
		/* 7*/ parseOpJmp, 3,
		/* 9*/ parseOpObjectAllocTyped, parseOp(ObjectPackage),
		/*11*/ parseOpInvokeHandler,
		/*12*/ parseOpObjectTransferToPrev,
		/*13*/ parseOpEnd}},
	{opVarPackage, "VarPackage", propExpr, []parseOp{
		/* 0*/ parseOpTrackedPkgLen,
		/* 1*/ parseOpOperand,
		/* 2*/ parseOpIfHasData, 4,
		/* 4*/ parseOpRecordAMLPC,
		/* 5*/ parseOpTermArgOrNamedObjectOrUnresolved,
		/* 6*/ parseOpJmp, 2,
		/* 8*/ parseOpObjectAllocTyped, parseOp(ObjectPackage),
		/*10*/ parseOpInvokeHandler,
		/*11*/ parseOpObjectTransferToPrev,
		/*12*/ parseOpEnd}},
	{opMethod, "Method", 0, []parseOp{
		parseOpTrackedPkgLen, parseOpCreateNameString, parseOpLoadImm, 1,
		parseOpRecordAMLPC,
		parseOpObjectAllocTyped, parseOp(ObjectMethod),
		parseOpInvokeHandler, parseOpInstallNamespaceNode, 1, parseOpEnd}},
	{opExternal, "External", 0, []parseOp{
		parseOpExistingNameString, parseOpLoadImm, 1, parseOpLoadImm, 1,
		parseOpEnd}},
	{opLocal0 + 0, "Local0", propName, localArgProgram()},
	{opLocal0 + 1, "Local1", propName, localArgProgram()},
	{opLocal0 + 2, "Local2", propName, localArgProgram()},
	{opLocal0 + 3, "Local3", propName, localArgProgram()},
	{opLocal0 + 4, "Local4", propName, localArgProgram()},
	{opLocal0 + 5, "Local5", propName, localArgProgram()},
	{opLocal0 + 6, "Local6", propName, localArgProgram()},
	{opLocal7, "Local7", propName, localArgProgram()},
	{opArg0 + 0, "Arg0", propName, localArgProgram()},
	{opArg0 + 1, "Arg1", propName, localArgProgram()},
	{opArg0 + 2, "Arg2", propName, localArgProgram()},
	{opArg0 + 3, "Arg3", propName, localArgProgram()},
	{opArg0 + 4, "Arg4", propName, localArgProgram()},
	{opArg0 + 5, "Arg5", propName, localArgProgram()},
	{opArg6, "Arg6", propName, localArgProgram()},
	{opStore, "Store", propExpr, []parseOp{
		parseOpTermArg, parseOpSuperName,
		parseOpInvokeHandler, parseOpObjectTransferToPrev, parseOpEnd}},
	{opRefOf, "RefOf", propExpr | opPropSuperName, []parseOp{
		parseOpSuperName, parseOpObjectAlloc,
		parseOpInvokeHandler, parseOpObjectTransferToPrev, parseOpEnd}},
	{opAdd, "Add", propExpr, binaryMathProgram()},
	{opConcat, "Concat", propExpr, []parseOp{
		parseOpComputationalData, parseOpComputationalData, parseOpTarget,
		parseOpObjectAllocTyped, parseOp(ObjectBuffer),
		parseOpInvokeHandler,
		parseOpStoreToTarget, 2,
		parseOpObjectTransferToPrev, parseOpEnd}},
	{opSubtract, "Subtract", propExpr, binaryMathProgram()},
	{opIncrement, "Increment", propExpr, []parseOp{
		parseOpSuperNameImplicitDeref,
		parseOpInvokeHandler, parseOpObjectTransferToPrev, parseOpEnd}},
	{opDecrement, "Decrement", propExpr, []parseOp{
		parseOpSuperNameImplicitDeref,
		parseOpInvokeHandler, parseOpObjectTransferToPrev, parseOpEnd}},
	{opMultiply, "Multiply", propExpr, binaryMathProgram()},
	{opDivide, "Divide", propExpr, []parseOp{
		parseOpOperand, parseOpOperand, parseOpTarget, parseOpTarget,
		parseOpObjectAllocTyped, parseOp(ObjectInteger),
		parseOpObjectAllocTyped, parseOp(ObjectInteger),
		parseOpInvokeHandler,
		parseOpStoreToTargetIndirect, 2, 4,
		parseOpStoreToTargetIndirect, 3, 5,
		parseOpObjectTransferToPrev, parseOpEnd}},
	{opShiftLeft, "ShiftLeft", propExpr, binaryMathProgram()},
	{opShiftRight, "ShiftRight", propExpr, binaryMathProgram()},
	{opAnd, "And", propExpr, binaryMathProgram()},
	{opNand, "Nand", propExpr, binaryMathProgram()},
	{opOr, "Or", propExpr, binaryMathProgram()},
	{opNor, "Nor", propExpr, binaryMathProgram()},
	{opXor, "Xor", propExpr, binaryMathProgram()},
	{opNot, "Not", propExpr, unaryMathProgram()},
	{opFindSetLeftBit, "FindSetLeftBit", propExpr, unaryMathProgram()},
	{opFindSetRightBit, "FindSetRightBit", propExpr, unaryMathProgram()},
	{opDerefOf, "DerefOf", propExpr | opPropSuperName, []parseOp{
		parseOpTermArg, parseOpObjectAlloc,
		parseOpInvokeHandler, parseOpObjectTransferToPrev, parseOpEnd}},
	{opConcatRes, "ConcatRes", propExpr, []parseOp{
		parseOpTermArg, parseOpTermArg, parseOpTarget,
		parseOpInvokeHandler, parseOpEnd}},
	{opMod, "Mod", propExpr, binaryMathProgram()},
	{opNotify, "Notify", 0, []parseOp{
		parseOpSuperName, parseOpTermArg,
		parseOpInvokeHandler, parseOpEnd}},
	{opSizeOf, "SizeOf", propExpr, []parseOp{
		parseOpSuperName,
		parseOpObjectAllocTyped, parseOp(ObjectInteger),
		parseOpInvokeHandler, parseOpObjectTransferToPrev, parseOpEnd}},
	{opIndex, "Index", propExpr | opPropSuperName, []parseOp{
		parseOpTermArgUnwrapInternal, parseOpOperand, parseOpTarget,
		parseOpEmptyObjectAlloc,
		parseOpInvokeHandler,
		parseOpStoreToTarget, 2,
		parseOpObjectTransferToPrev, parseOpEnd}},
	{opMatch, "Match", propExpr, []parseOp{
		parseOpTermArg, parseOpLoadImm, 1, parseOpTermArg,
		parseOpLoadImm, 1, parseOpTermArg, parseOpTermArg,
		parseOpInvokeHandler, parseOpEnd}},
	{opCreateDWordField, "CreateDWordField", 0, createBufferFieldProgram()},
	{opCreateWordField, "CreateWordField", 0, createBufferFieldProgram()},
	{opCreateByteField, "CreateByteField", 0, createBufferFieldProgram()},
	{opCreateBitField, "CreateBitField", 0, createBufferFieldProgram()},
	{opObjectType, "ObjectType", propExpr, []parseOp{
		parseOpSuperName,
		parseOpObjectAllocTyped, parseOp(ObjectInteger),
		parseOpInvokeHandler, parseOpObjectTransferToPrev, parseOpEnd}},
	{opCreateQWordField, "CreateQWordField", 0, createBufferFieldProgram()},
	{opLand, "Land", propExpr, binaryLogicProgram()},
	{opLor, "Lor", propExpr, binaryLogicProgram()},
	{opLnot, "Lnot", propExpr, []parseOp{
		parseOpOperand,
		parseOpObjectAllocTyped, parseOp(ObjectInteger),
		parseOpInvokeHandler, parseOpObjectTransferToPrev, parseOpEnd}},
	{opLEqual, "LEqual", propExpr, binaryLogicProgram()},
	{opLGreater, "LGreater", propExpr, binaryLogicProgram()},
	{opLLess, "LLess", propExpr, binaryLogicProgram()},
	{opToBuffer, "ToBuffer", propExpr, toProgram(ObjectBuffer)},
	{opToDecimalString, "ToDecimalString", propExpr, toProgram(ObjectString)},
	{opToHexString, "ToHexString", propExpr, toProgram(ObjectString)},
	{opToInteger, "ToInteger", propExpr, toProgram(ObjectInteger)},
	{opReservedA, "Reserved", opPropReserved, nil},
	{opReservedB, "Reserved", opPropReserved, nil},
	{opToString, "ToString", propExpr, []parseOp{
		parseOpTermArgUnwrapInternal,
		parseOpTypecheck, parseOp(ObjectBuffer),
		parseOpOperand, parseOpTarget,
		parseOpObjectAllocTyped, parseOp(ObjectString),
		parseOpInvokeHandler,
		parseOpStoreToTarget, 2,
		parseOpObjectTransferToPrev, parseOpEnd}},
	{opCopyObject, "CopyObject", propExpr, []parseOp{
		parseOpTermArg, parseOpSimpleName,
		parseOpInvokeHandler, parseOpObjectTransferToPrev, parseOpEnd}},
	{opMid, "Mid", propExpr, []parseOp{
		parseOpComputationalData, parseOpOperand, parseOpOperand,
		parseOpTarget,
		parseOpObjectAllocTyped, parseOp(ObjectBuffer),
		parseOpInvokeHandler,
		parseOpStoreToTarget, 3,
		parseOpObjectTransferToPrev, parseOpEnd}},
	{opContinue, "Continue", 0, []parseOp{parseOpInvokeHandler, parseOpEnd}},
	{opIf, "If", 0, []parseOp{
		parseOpPkgLen, parseOpOperand, parseOpInvokeHandler, parseOpEnd}},
	{opElse, "Else", 0, []parseOp{
		parseOpPkgLen, parseOpInvokeHandler, parseOpEnd}},
	{opWhile, "While", 0, []parseOp{
		parseOpPkgLen, parseOpOperand, parseOpInvokeHandler, parseOpEnd}},
	{opNoop, "Noop", 0, []parseOp{parseOpEnd}},
	{opReturn, "Return", 0, []parseOp{
		parseOpTermArg, parseOpInvokeHandler, parseOpEnd}},
	{opBreak, "Break", 0, []parseOp{parseOpInvokeHandler, parseOpEnd}},
	{opBreakPoint, "BreakPoint", 0, []parseOp{parseOpEnd}},
	{opOnes, "Ones", opPropTermArg, []parseOp{
		parseOpLoadTrueObject, parseOpObjectTransferToPrev, parseOpEnd}},
	// Extended opcodes
	{opMutex, "Mutex", 0, []parseOp{
		parseOpCreateNameString, parseOpLoadImm, 1,
		parseOpObjectAllocTyped, parseOp(ObjectMutex),
		parseOpInvokeHandler, parseOpInstallNamespaceNode, 0, parseOpEnd}},
	{opEvent, "Event", 0, []parseOp{
		parseOpCreateNameString,
		parseOpObjectAllocTyped, parseOp(ObjectEvent),
		parseOpInvokeHandler, parseOpInstallNamespaceNode, 0, parseOpEnd}},
	{opCondRefOf, "CondRefOf", propExpr, []parseOp{
		/* 0*/ parseOpSuperNameOrUnresolved,
		/* 1*/ parseOpTarget,
		/* 2*/ parseOpObjectAlloc,
		/* 3*/ parseOpIfNotNull, 0, 7,
		/* 6*/ parseOpInvokeHandler,
		/* 7*/ parseOpStoreToTargetIndirect, 1, 2,
		/*10*/ parseOpLoadTrueObject,
		/*11*/ parseOpJmp, 14,
		/*13*/ parseOpLoadFalseObject,
		/*14*/ parseOpObjectTransferToPrev,
		/*15*/ parseOpEnd}},
	{opCreateField, "CreateField", 0, []parseOp{
		parseOpTermArgUnwrapInternal,
		parseOpTypecheck, parseOp(ObjectBuffer),
		parseOpOperand, parseOpOperand,
		parseOpCreateNameString,
		parseOpObjectAllocTyped, parseOp(ObjectBufferField),
		parseOpInvokeHandler,
		parseOpInstallNamespaceNode, 3, parseOpEnd}},
	{opLoadTable, "LoadTable", propExpr, []parseOp{parseOpTodo, parseOpEnd}},
	{opLoad, "Load", 0, []parseOp{parseOpTodo, parseOpEnd}},
	{opStall, "Stall", 0, []parseOp{
		parseOpOperand, parseOpInvokeHandler, parseOpEnd}},
	{opSleep, "Sleep", 0, []parseOp{
		parseOpOperand, parseOpInvokeHandler, parseOpEnd}},
	{opAcquire, "Acquire", propExpr, []parseOp{
		parseOpSuperName, parseOpLoadImm, 2,
		parseOpInvokeHandler, parseOpEnd}},
	{opSignal, "Signal", 0, []parseOp{
		parseOpSuperName, parseOpInvokeHandler, parseOpEnd}},
	{opWait, "Wait", propExpr, []parseOp{
		parseOpSuperName, parseOpOperand, parseOpInvokeHandler, parseOpEnd}},
	{opReset, "Reset", 0, []parseOp{
		parseOpSuperName, parseOpInvokeHandler, parseOpEnd}},
	{opRelease, "Release", 0, []parseOp{
		parseOpSuperName, parseOpInvokeHandler, parseOpEnd}},
	{opFromBCD, "FromBCD", propExpr, []parseOp{
		parseOpOperand, parseOpTarget, parseOpInvokeHandler, parseOpEnd}},
	{opToBCD, "ToBCD", propExpr, []parseOp{
		parseOpOperand, parseOpTarget, parseOpInvokeHandler, parseOpEnd}},
	{opUnload, "Unload", 0, []parseOp{parseOpTodo, parseOpEnd}},
	{opRevision, "Revision", propExpr, []parseOp{parseOpTodo, parseOpEnd}},
	{opDebug, "Debug", opPropSuperName, []parseOp{
		parseOpObjectAllocTyped, parseOp(ObjectDebug),
		parseOpObjectTransferToPrev, parseOpEnd}},
	{opFatal, "Fatal", 0, []parseOp{
		parseOpLoadImm, 1, parseOpLoadImm, 4, parseOpOperand,
		parseOpInvokeHandler, parseOpEnd}},
	{opTimer, "Timer", propExpr, []parseOp{
		parseOpObjectAllocTyped, parseOp(ObjectInteger),
		parseOpInvokeHandler, parseOpObjectTransferToPrev, parseOpEnd}},
	{opOpRegion, "OpRegion", 0, []parseOp{
		parseOpCreateNameString, parseOpLoadImm, 1,
		parseOpOperand, parseOpOperand,
		parseOpObjectAllocTyped, parseOp(ObjectOperationRegion),
		parseOpInvokeHandler, parseOpInstallNamespaceNode, 0, parseOpEnd}},
	{opField, "Field", 0, []parseOp{
		parseOpTrackedPkgLen, parseOpExistingNameString, parseOpLoadImm, 1,
		parseOpInvokeHandler, parseOpEnd}},
	{opDevice, "Device", 0, []parseOp{
		parseOpPkgLen, parseOpCreateNameString,
		parseOpObjectAllocTyped, parseOp(ObjectDevice),
		parseOpInvokeHandler, parseOpInstallNamespaceNode, 1, parseOpEnd}},
	{opProcessor, "Processor", 0, []parseOp{
		parseOpPkgLen, parseOpCreateNameString,
		parseOpLoadImm, 1, parseOpLoadImm, 4, parseOpLoadImm, 1,
		parseOpObjectAllocTyped, parseOp(ObjectProcessor),
		parseOpInvokeHandler, parseOpInstallNamespaceNode, 1, parseOpEnd}},
	{opPowerRes, "PowerRes", 0, []parseOp{
		parseOpPkgLen, parseOpCreateNameString,
		parseOpLoadImm, 1, parseOpLoadImm, 2,
		parseOpObjectAllocTyped, parseOp(ObjectPowerResource),
		parseOpInvokeHandler, parseOpInstallNamespaceNode, 1, parseOpEnd}},
	{opThermalZone, "ThermalZone", 0, []parseOp{
		parseOpPkgLen, parseOpCreateNameString,
		parseOpObjectAllocTyped, parseOp(ObjectThermalZone),
		parseOpInvokeHandler, parseOpInstallNamespaceNode, 1, parseOpEnd}},
	{opIndexField, "IndexField", 0, []parseOp{
		parseOpTrackedPkgLen, parseOpExistingNameString,
		parseOpExistingNameString, parseOpLoadImm, 1,
		parseOpInvokeHandler, parseOpEnd}},
	{opBankField, "BankField", 0, []parseOp{
		parseOpTrackedPkgLen, parseOpExistingNameString,
		parseOpExistingNameString, parseOpOperand, parseOpLoadImm, 1,
		parseOpInvokeHandler, parseOpEnd}},
	{opDataRegion, "DataRegion", 0, []parseOp{parseOpTodo, parseOpEnd}},
	// Internal opcodes
	{opIntNameString, "NameString", propName, []parseOp{
		parseOpAMLPCDecrement,
		parseOpExistingNameStringOrNull,
		parseOpConvertNameString,
		parseOpObjectTransferToPrev, parseOpEnd}},
	{opIntNamedObject, "NamedObject", propName, []parseOp{
		parseOpEmptyObjectAlloc,
		parseOpInvokeHandler, parseOpObjectTransferToPrev, parseOpEnd}},
	{opIntReadFieldAsBuffer, "ReadFieldAsBuffer", propExpr, []parseOp{
		parseOpObjectAllocTyped, parseOp(ObjectBuffer),
		parseOpInvokeHandler, parseOpObjectTransferToPrev, parseOpEnd}},
	{opIntReadFieldAsInteger, "ReadFieldAsInteger", propExpr, []parseOp{
		parseOpObjectAllocTyped, parseOp(ObjectInteger),
		parseOpInvokeHandler, parseOpObjectTransferToPrev, parseOpEnd}},
	{opIntMethodCall0 + 0, "MethodCall0", propExpr, methodCallProgram(0)},
	{opIntMethodCall0 + 1, "MethodCall1", propExpr, methodCallProgram(1)},
	{opIntMethodCall0 + 2, "MethodCall2", propExpr, methodCallProgram(2)},
	{opIntMethodCall0 + 3, "MethodCall3", propExpr, methodCallProgram(3)},
	{opIntMethodCall0 + 4, "MethodCall4", propExpr, methodCallProgram(4)},
	{opIntMethodCall0 + 5, "MethodCall5", propExpr, methodCallProgram(5)},
	{opIntMethodCall0 + 6, "MethodCall6", propExpr, methodCallProgram(6)},
	{opIntMethodCall7, "MethodCall7", propExpr, methodCallProgram(7)},
}

// opSpecs maps opcode values to their table entries.
var opSpecs map[amlOp]*opSpec

func init() {
	opSpecs = make(map[amlOp]*opSpec, len(opSpecTable))
	for i := range opSpecTable {
		opSpecs[opSpecTable[i].code] = &opSpecTable[i]
	}
}

// getOpSpec returns the spec for an opcode or nil if the opcode is unknown.
func getOpSpec(code amlOp) *opSpec {
	return opSpecs[code]
}

// isNameLeadByte returns true for byte values that begin a name string
// rather than an opcode: prefix chars, dual/multi markers and lead name
// characters.
func isNameLeadByte(b byte) bool {
	switch {
	case b == '\\' || b == '^' || b == '_':
		return true
	case b >= 'A' && b <= 'Z':
		return true
	case b == dualNamePrefix || b == multiNamePrefix:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer for amlOp.
func (code amlOp) String() string {
	if spec := getOpSpec(code); spec != nil {
		return spec.name
	}
	return "unknown"
}
