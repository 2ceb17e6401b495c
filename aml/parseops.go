package aml

// parseOp is one micro-instruction of an opcode's parse program. The
// interpreter in execOp advances an op-context's program counter through
// these; some consume extra operand bytes from the program itself.
type parseOp uint8

// The closed set of parser micro-ops.
const (
	parseOpEnd parseOp = iota + 1

	// Dynamic-argument ops. Each preempts the current op-context and is
	// re-run once the nested opcode has deposited its result.
	parseOpSimpleName
	parseOpSuperName
	parseOpSuperNameImplicitDeref
	parseOpSuperNameOrUnresolved
	parseOpTermArg
	parseOpTermArgUnwrapInternal
	parseOpTermArgOrNamedObject
	parseOpTermArgOrNamedObjectOrUnresolved
	parseOpOperand
	parseOpComputationalData
	parseOpTarget

	parseOpPkgLen
	parseOpTrackedPkgLen

	parseOpLoadInlineImm         // +1 width byte, +width value bytes
	parseOpLoadInlineImmAsObject // +8 value bytes
	parseOpLoadImm               // +1 width byte
	parseOpLoadImmAsObject       // +1 width byte
	parseOpLoadFalseObject
	parseOpLoadTrueObject

	parseOpRecordAMLPC
	parseOpTruncateNumber
	parseOpTypecheck // +1 object-kind byte

	parseOpCreateNameString
	parseOpExistingNameString
	parseOpExistingNameStringOrNull
	parseOpConvertNameString
	parseOpInstallNamespaceNode // +1 item-index byte

	parseOpInvokeHandler
	parseOpDispatchMethodCall

	parseOpObjectAlloc
	parseOpObjectAllocTyped // +1 object-kind byte
	parseOpEmptyObjectAlloc
	parseOpObjectConvertToShallowCopy
	parseOpObjectConvertToDeepCopy
	parseOpObjectTransferToPrev
	parseOpObjectCopyToPrev

	parseOpStoreToTarget         // +1 dst item-index byte
	parseOpStoreToTargetIndirect // +1 dst item-index byte, +1 src item-index byte

	parseOpIfNull       // +1 item-index byte, +1 skip byte
	parseOpIfNotNull    // +1 item-index byte, +1 skip byte
	parseOpIfHasData    // +1 skip byte
	parseOpIfEquals     // +1 item-index byte, +1 value byte, +1 skip byte
	parseOpJmp          // +1 target-pc byte
	parseOpImmDecrement // +1 item-index byte
	parseOpAMLPCDecrement

	parseOpTodo
	parseOpBadOpcode
	parseOpUnreachable

	parseOpMax
)

// itemType tags the entries of an op-context's item array.
type itemType uint8

const (
	itemNone itemType = iota
	itemNamespaceNode
	itemNamespaceNodeMethodLocal
	itemObject
	itemEmptyObject
	itemPackageLength
	itemImmediate
)

// parseOpGeneratesItem maps each micro-op to the item it appends to the
// current op-context, if any.
var parseOpGeneratesItem = [parseOpMax]itemType{
	parseOpSimpleName:                       itemEmptyObject,
	parseOpSuperName:                        itemEmptyObject,
	parseOpSuperNameImplicitDeref:           itemEmptyObject,
	parseOpSuperNameOrUnresolved:            itemEmptyObject,
	parseOpTermArg:                          itemEmptyObject,
	parseOpTermArgUnwrapInternal:            itemEmptyObject,
	parseOpTermArgOrNamedObject:             itemEmptyObject,
	parseOpTermArgOrNamedObjectOrUnresolved: itemEmptyObject,
	parseOpOperand:                          itemEmptyObject,
	parseOpComputationalData:                itemEmptyObject,
	parseOpTarget:                           itemEmptyObject,
	parseOpPkgLen:                           itemPackageLength,
	parseOpTrackedPkgLen:                    itemPackageLength,
	parseOpCreateNameString:                 itemNamespaceNodeMethodLocal,
	parseOpExistingNameString:               itemNamespaceNode,
	parseOpExistingNameStringOrNull:         itemNamespaceNode,
	parseOpLoadInlineImm:                    itemImmediate,
	parseOpLoadInlineImmAsObject:            itemObject,
	parseOpLoadImm:                          itemImmediate,
	parseOpLoadImmAsObject:                  itemObject,
	parseOpLoadFalseObject:                  itemObject,
	parseOpLoadTrueObject:                   itemObject,
	parseOpObjectAlloc:                      itemObject,
	parseOpObjectAllocTyped:                 itemObject,
	parseOpEmptyObjectAlloc:                 itemEmptyObject,
	parseOpObjectConvertToShallowCopy:       itemObject,
	parseOpObjectConvertToDeepCopy:          itemObject,
	parseOpRecordAMLPC:                      itemImmediate,
}

// parseOpWantsSuperName reports whether a dynamic-argument op expects a
// SuperName production from the nested opcode.
func parseOpWantsSuperName(op parseOp) bool {
	switch op {
	case parseOpSimpleName, parseOpSuperName, parseOpSuperNameImplicitDeref,
		parseOpSuperNameOrUnresolved, parseOpTarget:
		return true
	default:
		return false
	}
}

// parseOpWantsTermArgOrOperand reports whether a dynamic-argument op expects
// a TermArg/Operand production from the nested opcode.
func parseOpWantsTermArgOrOperand(op parseOp) bool {
	switch op {
	case parseOpTermArg, parseOpTermArgUnwrapInternal, parseOpOperand,
		parseOpComputationalData:
		return true
	default:
		return false
	}
}

// parseOpAllowsUnresolved reports whether a NotFound from name resolution
// is demoted to success under this op.
func parseOpAllowsUnresolved(op parseOp) bool {
	switch op {
	case parseOpSuperNameOrUnresolved, parseOpTermArgOrNamedObjectOrUnresolved,
		parseOpExistingNameStringOrNull:
		return true
	default:
		return false
	}
}
