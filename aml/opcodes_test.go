package aml

import "testing"

// opsWithPayload maps micro-ops to the number of inline payload bytes they
// consume from the parse program.
var opsWithPayload = map[parseOp]int{
	parseOpLoadInlineImmAsObject: 8,
	parseOpLoadImm:               1,
	parseOpLoadImmAsObject:       1,
	parseOpTypecheck:             1,
	parseOpObjectAllocTyped:      1,
	parseOpInstallNamespaceNode:  1,
	parseOpStoreToTarget:         1,
	parseOpStoreToTargetIndirect: 2,
	parseOpIfNull:                2,
	parseOpIfNotNull:             2,
	parseOpIfHasData:             1,
	parseOpIfEquals:              3,
	parseOpJmp:                   1,
	parseOpImmDecrement:          1,
}

func TestOpcodeTableSanity(t *testing.T) {
	for specIndex, spec := range opSpecTable {
		if spec.props&opPropReserved != 0 {
			continue
		}

		if len(spec.decode) == 0 {
			t.Errorf("[spec %02d] %s: empty parse program", specIndex, spec.name)
			continue
		}

		// Walk the program and verify that every micro-op is known and
		// that it terminates with an END that is actually reachable by a
		// linear scan.
		sawEnd := false
		for pc := 0; pc < len(spec.decode); {
			op := spec.decode[pc]
			pc++

			if op == parseOpLoadInlineImm {
				width := int(spec.decode[pc])
				pc += 1 + width
				continue
			}
			if payload, ok := opsWithPayload[op]; ok {
				pc += payload
				continue
			}
			if op >= parseOpMax || op == 0 {
				t.Errorf("[spec %02d] %s: invalid micro-op %d at pc %d", specIndex, spec.name, op, pc-1)
				break
			}
			if op == parseOpEnd {
				sawEnd = true
			}
		}

		if !sawEnd {
			t.Errorf("[spec %02d] %s: program has no END", specIndex, spec.name)
		}
	}
}

func TestOpcodeLookup(t *testing.T) {
	specs := []struct {
		code amlOp
		name string
	}{
		{opZero, "Zero"},
		{opStore, "Store"},
		{opLocal0, "Local0"},
		{opArg6, "Arg6"},
		{opOnes, "Ones"},
		{opMutex, "Mutex"},
		{opOpRegion, "OpRegion"},
		{opIntNameString, "NameString"},
		{opIntMethodCall7, "MethodCall7"},
	}

	for specIndex, spec := range specs {
		got := getOpSpec(spec.code)
		if got == nil || got.name != spec.name {
			t.Errorf("[spec %02d] lookup of 0x%04X failed", specIndex, uint16(spec.code))
		}
	}

	if getOpSpec(amlOp(0x02)) != nil {
		t.Error("opcode 0x02 must be unknown")
	}
}

func TestOpcodeGrammarProperties(t *testing.T) {
	// SimpleName := NameString | ArgObj | LocalObj
	for code := opLocal0; code <= opLocal7; code++ {
		if getOpSpec(code).props&opPropSimpleName == 0 {
			t.Errorf("%s must be a SimpleName", code)
		}
	}
	for code := opArg0; code <= opArg6; code++ {
		if getOpSpec(code).props&opPropSimpleName == 0 {
			t.Errorf("%s must be a SimpleName", code)
		}
	}

	// ReferenceTypeOpcodes and Debug are SuperNames.
	for _, code := range []amlOp{opRefOf, opDerefOf, opIndex, opDebug} {
		if getOpSpec(code).props&opPropSuperName == 0 {
			t.Errorf("%s must be a SuperName", code)
		}
	}

	// Zero doubles as the NullName target sentinel.
	if getOpSpec(opZero).props&opPropTarget == 0 {
		t.Error("Zero must be usable as a Target")
	}

	// Reserved encodings must be flagged.
	for _, code := range []amlOp{opReservedA, opReservedB} {
		if getOpSpec(code).props&opPropReserved == 0 {
			t.Errorf("0x%02X must be reserved", uint16(code))
		}
	}
}

func TestNameLeadBytes(t *testing.T) {
	specs := []struct {
		b   byte
		exp bool
	}{
		{'A', true}, {'Z', true}, {'_', true},
		{'\\', true}, {'^', true},
		{dualNamePrefix, true}, {multiNamePrefix, true},
		{'a', false}, {'0', false}, {0x00, false}, {extOpPrefix, false},
	}

	for specIndex, spec := range specs {
		if got := isNameLeadByte(spec.b); got != spec.exp {
			t.Errorf("[spec %02d] isNameLeadByte(0x%02X): expected %v; got %v",
				specIndex, spec.b, spec.exp, got)
		}
	}
}
