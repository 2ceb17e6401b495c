package aml

import (
	"bytes"
	"testing"
)

// testMethod wraps a raw byte stream so it can be executed directly.
func testMethod(code ...byte) *ControlMethod {
	return &ControlMethod{Code: code}
}

// runMethod executes a method body on vm at the namespace root and returns
// the result with internal references peeled off.
func runMethod(t *testing.T, vm *VM, code ...byte) *Object {
	t.Helper()

	ret, err := vm.Execute(vm.Namespace().Root(), testMethod(code...))
	if err != nil {
		t.Fatalf("execution failed: %v", err)
	}
	if ret == nil {
		return nil
	}

	t.Cleanup(ret.Release)
	return unwrapInternalReference(ret)
}

func TestStoreToLocals(t *testing.T) {
	// Store(5, Local0)
	// Store(Add(Local0, One, ), Local1)
	// Return(Local1)
	ret := runMethod(t, NewVM(),
		0x70, 0x0A, 0x05, 0x60,
		0x70, 0x72, 0x60, 0x01, 0x00, 0x61,
		0xA4, 0x61,
	)

	if ret.Kind() != ObjectInteger || ret.Integer() != 6 {
		t.Fatalf("expected Integer 6; got %s %d", ret.Kind(), ret.Integer())
	}
}

func TestArithmeticExpressions(t *testing.T) {
	specs := []struct {
		name string
		code []byte
		exp  uint64
	}{
		{"Add", []byte{0xA4, 0x72, 0x0A, 0x05, 0x0A, 0x03, 0x00}, 8},
		{"Subtract", []byte{0xA4, 0x74, 0x0A, 0x05, 0x0A, 0x03, 0x00}, 2},
		{"Multiply", []byte{0xA4, 0x77, 0x0A, 0x05, 0x0A, 0x03, 0x00}, 15},
		{"ShiftLeft", []byte{0xA4, 0x79, 0x0A, 0x01, 0x0A, 0x04, 0x00}, 16},
		{"ShiftRight", []byte{0xA4, 0x7A, 0x0A, 0x10, 0x0A, 0x04, 0x00}, 1},
		{"ShiftPastWidth", []byte{0xA4, 0x79, 0x0A, 0x01, 0x0A, 0x64, 0x00}, 0},
		{"And", []byte{0xA4, 0x7B, 0x0A, 0x0C, 0x0A, 0x0A, 0x00}, 8},
		{"Or", []byte{0xA4, 0x7D, 0x0A, 0x0C, 0x0A, 0x0A, 0x00}, 14},
		{"Xor", []byte{0xA4, 0x7F, 0x0A, 0x0C, 0x0A, 0x0A, 0x00}, 6},
		{"Nand", []byte{0xA4, 0x7C, 0x0A, 0x0C, 0x0A, 0x0A, 0x00}, ^uint64(8)},
		{"Nor", []byte{0xA4, 0x7E, 0x0A, 0x0C, 0x0A, 0x0A, 0x00}, ^uint64(14)},
		{"Mod", []byte{0xA4, 0x85, 0x0A, 0x0D, 0x0A, 0x05, 0x00}, 3},
		{"Divide", []byte{0xA4, 0x78, 0x0A, 0x0D, 0x0A, 0x05, 0x00, 0x00}, 2},
		{"DivideByZero", []byte{0xA4, 0x78, 0x0A, 0x0D, 0x00, 0x00, 0x00}, 0},
		{"Not", []byte{0xA4, 0x80, 0x0A, 0x0F, 0x00}, ^uint64(15)},
		{"FindSetRightBit", []byte{0xA4, 0x82, 0x0A, 0x18, 0x00}, 4},
		{"FindSetLeftBit", []byte{0xA4, 0x81, 0x0A, 0x18, 0x00}, 5},
		{"FindSetRightBitZero", []byte{0xA4, 0x82, 0x00, 0x00}, 0},
		{"Increment", []byte{0x70, 0x0A, 0x07, 0x60, 0x75, 0x60, 0xA4, 0x60}, 8},
		{"Decrement", []byte{0x70, 0x0A, 0x07, 0x60, 0x76, 0x60, 0xA4, 0x60}, 6},
	}

	for specIndex, spec := range specs {
		ret := runMethod(t, NewVM(), spec.code...)
		if ret.Kind() != ObjectInteger || ret.Integer() != spec.exp {
			t.Errorf("[spec %02d] %s: expected %d; got %s %d",
				specIndex, spec.name, spec.exp, ret.Kind(), ret.Integer())
		}
	}
}

func TestLogicExpressions(t *testing.T) {
	ones := ^uint64(0)

	specs := []struct {
		name string
		code []byte
		exp  uint64
	}{
		{"LEqualTrue", []byte{0xA4, 0x93, 0x0A, 0x05, 0x0A, 0x05}, ones},
		{"LEqualFalse", []byte{0xA4, 0x93, 0x0A, 0x05, 0x0A, 0x06}, 0},
		{"LLess", []byte{0xA4, 0x95, 0x0A, 0x05, 0x0A, 0x06}, ones},
		{"LGreater", []byte{0xA4, 0x94, 0x0A, 0x05, 0x0A, 0x06}, 0},
		{"Lnot", []byte{0xA4, 0x92, 0x00}, ones},
		{"LnotOfNonzero", []byte{0xA4, 0x92, 0x0A, 0x07}, 0},
		{"Land", []byte{0xA4, 0x90, 0x01, 0x0A, 0x02}, ones},
		{"LandFalse", []byte{0xA4, 0x90, 0x01, 0x00}, 0},
		{"Lor", []byte{0xA4, 0x91, 0x00, 0x0A, 0x02}, ones},
		{"LEqualStrings", []byte{
			0xA4, 0x93, 0x0D, 'A', 'B', 0x00, 0x0D, 'A', 'B', 0x00}, ones},
		{"LLessStrings", []byte{
			0xA4, 0x95, 0x0D, 'A', 'B', 0x00, 0x0D, 'A', 'C', 0x00}, ones},
		{"LLessStringLengthTiebreak", []byte{
			0xA4, 0x95, 0x0D, 'A', 0x00, 0x0D, 'A', 'B', 0x00}, ones},
		// Land only looks at the first 4 bytes of a buffer
		{"LandBufferCoercion", []byte{
			0xA4, 0x90, 0x11, 0x08, 0x0A, 0x05, 0x00, 0x00, 0x00, 0x00, 0x01, 0x01}, 0},
	}

	for specIndex, spec := range specs {
		ret := runMethod(t, NewVM(), spec.code...)
		if ret.Kind() != ObjectInteger || ret.Integer() != spec.exp {
			t.Errorf("[spec %02d] %s: expected 0x%x; got %s 0x%x",
				specIndex, spec.name, spec.exp, ret.Kind(), ret.Integer())
		}
	}
}

func TestLogicTypeMismatch(t *testing.T) {
	// LEqual("AB", 5) must be rejected: comparisons require same-type
	// operands.
	vm := NewVM()
	_, err := vm.Execute(vm.ns.Root(), testMethod(
		0xA4, 0x93, 0x0D, 'A', 'B', 0x00, 0x0A, 0x05,
	))
	if err != StatusBadBytecode {
		t.Fatalf("expected %v; got %v", StatusBadBytecode, err)
	}
}

func TestIfElse(t *testing.T) {
	specs := []struct {
		name string
		code []byte
		exp  uint64
	}{
		// If(0) { Store(1, Local0) } Else { Store(2, Local0) }
		{"ElseTaken", []byte{
			0xA0, 0x05, 0x00, 0x70, 0x01, 0x60,
			0xA1, 0x05, 0x70, 0x0A, 0x02, 0x60,
			0xA4, 0x60}, 2},
		// If(1) { Store(1, Local0) } Else { Store(2, Local0) }
		{"IfTaken", []byte{
			0xA0, 0x05, 0x01, 0x70, 0x01, 0x60,
			0xA1, 0x05, 0x70, 0x0A, 0x02, 0x60,
			0xA4, 0x60}, 1},
	}

	for specIndex, spec := range specs {
		ret := runMethod(t, NewVM(), spec.code...)
		if ret.Kind() != ObjectInteger || ret.Integer() != spec.exp {
			t.Errorf("[spec %02d] %s: expected %d; got %s %d",
				specIndex, spec.name, spec.exp, ret.Kind(), ret.Integer())
		}
	}
}

func TestWhileLoop(t *testing.T) {
	// Store(0, Local0)
	// While(LLess(Local0, 5)) { Store(Add(Local0, One, ), Local0) }
	// Return(Local0)
	ret := runMethod(t, NewVM(),
		0x70, 0x00, 0x60,
		0xA2, 0x0B, 0x95, 0x60, 0x0A, 0x05, 0x70, 0x72, 0x60, 0x01, 0x00, 0x60,
		0xA4, 0x60,
	)

	if ret.Integer() != 5 {
		t.Fatalf("expected 5; got %d", ret.Integer())
	}
}

func TestWhileBreakAndContinue(t *testing.T) {
	// While(1) { Break } Return(42)
	ret := runMethod(t, NewVM(),
		0xA2, 0x03, 0x01, 0xA5,
		0xA4, 0x0A, 0x2A,
	)
	if ret.Integer() != 42 {
		t.Fatalf("expected 42; got %d", ret.Integer())
	}

	// Store(0, Local0) Store(0, Local1)
	// While(LLess(Local0, 5)) {
	//   Store(Add(Local0, One, ), Local0)
	//   If(LLess(Local0, 3)) { Continue }
	//   Store(Add(Local1, One, ), Local1)
	// }
	// Return(Local1)
	ret = runMethod(t, NewVM(),
		0x70, 0x00, 0x60,
		0x70, 0x00, 0x61,
		0xA2, 0x18, 0x95, 0x60, 0x0A, 0x05,
		0x70, 0x72, 0x60, 0x01, 0x00, 0x60,
		0xA0, 0x06, 0x95, 0x60, 0x0A, 0x03, 0x9F,
		0x70, 0x72, 0x61, 0x01, 0x00, 0x61,
		0xA4, 0x61,
	)
	if ret.Integer() != 3 {
		t.Fatalf("expected 3; got %d", ret.Integer())
	}
}

func TestPackageWithLazyName(t *testing.T) {
	// Return(Package(2) { \_SB_, Zero })
	ret := runMethod(t, NewVM(),
		0xA4, 0x12, 0x08, 0x02, 0x5C, 0x5F, 0x53, 0x42, 0x5F, 0x00,
	)

	if ret.Kind() != ObjectPackage || ret.PackageLen() != 2 {
		t.Fatalf("expected a 2-element Package; got %s", ret.Kind())
	}

	el0 := ret.PackageAt(0)
	if !el0.IsPathString() || el0.StringValue() != `\_SB_` {
		t.Errorf("element 0: expected Path string \\_SB_; got %s %q", el0.Kind(), el0.StringValue())
	}

	if el1 := ret.PackageAt(1); el1.Kind() != ObjectInteger || el1.Integer() != 0 {
		t.Errorf("element 1: expected Integer 0; got %s", el1.Kind())
	}
}

func TestPackageTruncatesExtraInitializers(t *testing.T) {
	// Return(Package(1) { 1, 2 }) keeps only the first element.
	ret := runMethod(t, NewVM(),
		0xA4, 0x12, 0x05, 0x01, 0x01, 0x0A, 0x02,
	)

	if ret.Kind() != ObjectPackage || ret.PackageLen() != 1 {
		t.Fatalf("expected a 1-element Package; got %s len %d", ret.Kind(), ret.PackageLen())
	}
	if el := ret.PackageAt(0); el.Integer() != 1 {
		t.Fatalf("expected Integer 1; got %d", el.Integer())
	}
}

func TestVarPackage(t *testing.T) {
	// Return(VarPackage(Add(1, 2, )) { 1 })
	ret := runMethod(t, NewVM(),
		0xA4, 0x13, 0x07, 0x72, 0x01, 0x0A, 0x02, 0x00, 0x01,
	)

	if ret.Kind() != ObjectPackage || ret.PackageLen() != 3 {
		t.Fatalf("expected a 3-element Package; got %s len %d", ret.Kind(), ret.PackageLen())
	}
	if el := ret.PackageAt(1); el.Kind() != ObjectUninitialized {
		t.Fatalf("expected Uninitialized filler; got %s", el.Kind())
	}
}

func TestBufferFieldAlignment(t *testing.T) {
	// Name(BUFX, Buffer(4) { 0, 0, 0, 0 })
	// CreateField(BUFX, 4, 12, F___)
	// Store(0x0ABC, F___)
	// Return(BUFX)
	ret := runMethod(t, NewVM(),
		0x08, 'B', 'U', 'F', 'X', 0x11, 0x07, 0x0A, 0x04, 0x00, 0x00, 0x00, 0x00,
		0x5B, 0x13, 'B', 'U', 'F', 'X', 0x0A, 0x04, 0x0A, 0x0C, 'F', '_', '_', '_',
		0x70, 0x0B, 0xBC, 0x0A, 'F', '_', '_', '_',
		0xA4, 'B', 'U', 'F', 'X',
	)

	if ret.Kind() != ObjectBuffer {
		t.Fatalf("expected a Buffer; got %s", ret.Kind())
	}
	if exp := []byte{0xC0, 0xAB, 0x00, 0x00}; !bytes.Equal(ret.Bytes(), exp) {
		t.Fatalf("expected % X; got % X", exp, ret.Bytes())
	}
}

func TestBufferFieldReadBack(t *testing.T) {
	// Name(BUFX, Buffer(4) { 0, 0, 0, 0 })
	// CreateWordField(BUFX, 1, WRD_)
	// Store(0x1234, WRD_)
	// Return(Add(WRD_, Zero, ))
	ret := runMethod(t, NewVM(),
		0x08, 'B', 'U', 'F', 'X', 0x11, 0x07, 0x0A, 0x04, 0x00, 0x00, 0x00, 0x00,
		0x8B, 'B', 'U', 'F', 'X', 0x01, 'W', 'R', 'D', '_',
		0x70, 0x0B, 0x34, 0x12, 'W', 'R', 'D', '_',
		0xA4, 0x72, 'W', 'R', 'D', '_', 0x00, 0x00,
	)

	if ret.Kind() != ObjectInteger || ret.Integer() != 0x1234 {
		t.Fatalf("expected Integer 0x1234; got %s 0x%x", ret.Kind(), ret.Integer())
	}
}

func TestDerefOfBufferIndex(t *testing.T) {
	// Return(DerefOf(Index(Buffer(2) { 0x11, 0x22 }, 1, )))
	ret := runMethod(t, NewVM(),
		0xA4, 0x83, 0x88, 0x11, 0x05, 0x0A, 0x02, 0x11, 0x22, 0x01, 0x00,
	)

	if ret.Kind() != ObjectInteger || ret.Integer() != 0x22 {
		t.Fatalf("expected Integer 0x22; got %s 0x%x", ret.Kind(), ret.Integer())
	}
}

func TestPackageIndexStore(t *testing.T) {
	// Name(PKG_, Package(2) { 1, 2 })
	// Store(9, Index(PKG_, 0, ))
	// Return(DerefOf(Index(PKG_, 0, )))
	ret := runMethod(t, NewVM(),
		0x08, 'P', 'K', 'G', '_', 0x12, 0x05, 0x02, 0x01, 0x0A, 0x02,
		0x70, 0x0A, 0x09, 0x88, 'P', 'K', 'G', '_', 0x00, 0x00,
		0xA4, 0x83, 0x88, 'P', 'K', 'G', '_', 0x00, 0x00,
	)

	if ret.Kind() != ObjectInteger || ret.Integer() != 9 {
		t.Fatalf("expected Integer 9; got %s %d", ret.Kind(), ret.Integer())
	}
}

func TestMethodCallWithArgs(t *testing.T) {
	vm := NewVM()

	// Method(ADD2, 2) { Return(Add(Arg0, Arg1, )) }
	table := []byte{
		0x14, 0x0B, 'A', 'D', 'D', '2', 0x02,
		0xA4, 0x72, 0x68, 0x69, 0x00,
	}
	if err := vm.LoadTable(table); err != nil {
		t.Fatalf("table load failed: %v", err)
	}

	arg0, arg1 := NewInteger(3), NewInteger(4)
	defer arg0.Release()
	defer arg1.Release()

	ret, err := vm.EvaluatePath(`\ADD2`, arg0, arg1)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	defer ret.Release()

	if val := unwrapInternalReference(ret); val.Integer() != 7 {
		t.Fatalf("expected 7; got %d", val.Integer())
	}
}

func TestNestedMethodCall(t *testing.T) {
	vm := NewVM()

	// Method(INR_, 1) { Return(Add(Arg0, One, )) }
	// Method(TWO_, 1) { Return(INR_(INR_(Arg0))) }
	table := []byte{
		0x14, 0x0B, 'I', 'N', 'R', '_', 0x01,
		0xA4, 0x72, 0x68, 0x01, 0x00,
		0x14, 0x10, 'T', 'W', 'O', '_', 0x01,
		0xA4, 'I', 'N', 'R', '_', 'I', 'N', 'R', '_', 0x68,
	}
	if err := vm.LoadTable(table); err != nil {
		t.Fatalf("table load failed: %v", err)
	}

	arg := NewInteger(40)
	defer arg.Release()

	ret, err := vm.EvaluatePath(`\TWO_`, arg)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	defer ret.Release()

	if val := unwrapInternalReference(ret); val.Integer() != 42 {
		t.Fatalf("expected 42; got %d", val.Integer())
	}
}

func TestUpwardScopeSearch(t *testing.T) {
	vm := NewVM()

	// Scope(\_SB_) {
	//   Name(FOO_, 7)
	//   Method(MTH_, 0) { Return(FOO_) }
	// }
	table := []byte{
		0x10, 0x19, 0x5C, '_', 'S', 'B', '_',
		0x08, 'F', 'O', 'O', '_', 0x0A, 0x07,
		0x14, 0x0B, 'M', 'T', 'H', '_', 0x00,
		0xA4, 'F', 'O', 'O', '_',
	}
	if err := vm.LoadTable(table); err != nil {
		t.Fatalf("table load failed: %v", err)
	}

	ret, err := vm.EvaluatePath(`\_SB_.MTH_`)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	defer ret.Release()

	if val := unwrapInternalReference(ret); val.Integer() != 7 {
		t.Fatalf("expected 7; got %d", val.Integer())
	}
}

func TestUnresolvedNameFails(t *testing.T) {
	vm := NewVM()

	// Method(MISS, 0) { Return(BAR0) }
	table := []byte{
		0x14, 0x0B, 'M', 'I', 'S', 'S', 0x00,
		0xA4, 'B', 'A', 'R', '0',
	}
	if err := vm.LoadTable(table); err != nil {
		t.Fatalf("table load failed: %v", err)
	}

	if _, err := vm.EvaluatePath(`\MISS`); err != StatusNotFound {
		t.Fatalf("expected %v; got %v", StatusNotFound, err)
	}
}

func TestCondRefOf(t *testing.T) {
	vm := NewVM()

	// Name(FOO_, 7)
	// Return(CondRefOf(FOO_, Local0))
	ret := runMethod(t, vm,
		0x08, 'F', 'O', 'O', '_', 0x0A, 0x07,
		0xA4, 0x5B, 0x12, 'F', 'O', 'O', '_', 0x60,
	)
	if ret.Integer() != ^uint64(0) {
		t.Errorf("resolved name: expected all-ones; got 0x%x", ret.Integer())
	}

	// Return(CondRefOf(BAR0, Local0)) with BAR0 undefined
	ret = runMethod(t, NewVM(),
		0xA4, 0x5B, 0x12, 'B', 'A', 'R', '0', 0x60,
	)
	if ret.Integer() != 0 {
		t.Errorf("unresolved name: expected 0; got 0x%x", ret.Integer())
	}
}

func TestRefOfDerefOfRoundTrip(t *testing.T) {
	// Store(7, Local0)
	// Return(DerefOf(RefOf(Local0)))
	ret := runMethod(t, NewVM(),
		0x70, 0x0A, 0x07, 0x60,
		0xA4, 0x83, 0x71, 0x60,
	)

	if ret.Kind() != ObjectInteger || ret.Integer() != 7 {
		t.Fatalf("expected Integer 7; got %s %d", ret.Kind(), ret.Integer())
	}
}

func TestDerefOfNonReference(t *testing.T) {
	vm := NewVM()

	// DerefOf(5) is invalid
	_, err := vm.Execute(vm.ns.Root(), testMethod(0xA4, 0x83, 0x0A, 0x05))
	if err != StatusBadBytecode {
		t.Fatalf("expected %v; got %v", StatusBadBytecode, err)
	}
}

func TestSizeofAndObjectType(t *testing.T) {
	// Name(STR_, "AB") Return(SizeOf(STR_))
	ret := runMethod(t, NewVM(),
		0x08, 'S', 'T', 'R', '_', 0x0D, 'A', 'B', 0x00,
		0xA4, 0x87, 'S', 'T', 'R', '_',
	)
	if ret.Integer() != 2 {
		t.Errorf("SizeOf: expected 2; got %d", ret.Integer())
	}

	// Name(PKG_, Package(2) { 1, 2 }) Return(SizeOf(PKG_))
	ret = runMethod(t, NewVM(),
		0x08, 'P', 'K', 'G', '_', 0x12, 0x05, 0x02, 0x01, 0x0A, 0x02,
		0xA4, 0x87, 'P', 'K', 'G', '_',
	)
	if ret.Integer() != 2 {
		t.Errorf("SizeOf package: expected 2; got %d", ret.Integer())
	}

	// ObjectType of a buffer index reports as BufferField
	ret = runMethod(t, NewVM(),
		0xA4, 0x8E, 0x88, 0x11, 0x05, 0x0A, 0x02, 0x11, 0x22, 0x01, 0x00,
	)
	if ret.Integer() != uint64(ObjectBufferField) {
		t.Errorf("ObjectType: expected %d; got %d", ObjectBufferField, ret.Integer())
	}
}

func TestTimer(t *testing.T) {
	vm := NewVM()
	vm.Ticks = func() uint64 { return 0xDEAD }

	ret := runMethod(t, vm, 0xA4, 0x5B, 0x33)
	if ret.Integer() != 0xDEAD {
		t.Fatalf("expected 0xDEAD; got 0x%x", ret.Integer())
	}
}

func TestRevisionSelectsIntegerWidth(t *testing.T) {
	// Return(Ones) is sized by the table revision.
	code := []byte{0xA4, 0xFF}

	ret := runMethod(t, NewVM(), code...)
	if ret.Integer() != 0xFFFFFFFFFFFFFFFF {
		t.Errorf("rev 2: expected 64-bit ones; got 0x%x", ret.Integer())
	}

	vm := NewVM()
	vm.SetRevision(1)
	ret = runMethod(t, vm, code...)
	if ret.Integer() != 0xFFFFFFFF {
		t.Errorf("rev 1: expected 32-bit ones; got 0x%x", ret.Integer())
	}
}

func TestStoreToDebugAndNullTarget(t *testing.T) {
	// Store(5, Debug) Add(1, 2, Zero) Return(3)
	ret := runMethod(t, NewVM(),
		0x70, 0x0A, 0x05, 0x5B, 0x31,
		0x72, 0x01, 0x0A, 0x02, 0x00,
		0xA4, 0x0A, 0x03,
	)

	if ret.Integer() != 3 {
		t.Fatalf("expected 3; got %d", ret.Integer())
	}
}

func TestObjectCountReturnsToBaseline(t *testing.T) {
	vm := NewVM()

	table := []byte{
		0x14, 0x0B, 'A', 'D', 'D', '2', 0x02,
		0xA4, 0x72, 0x68, 0x69, 0x00,
	}
	if err := vm.LoadTable(table); err != nil {
		t.Fatalf("table load failed: %v", err)
	}

	baseline := liveObjects

	arg0, arg1 := NewInteger(3), NewInteger(4)
	ret, err := vm.EvaluatePath(`\ADD2`, arg0, arg1)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	ret.Release()
	arg0.Release()
	arg1.Release()

	if liveObjects != baseline {
		t.Fatalf("object leak: baseline %d, now %d", baseline, liveObjects)
	}
}

func TestObjectCountBaselineAfterError(t *testing.T) {
	vm := NewVM()
	baseline := liveObjects

	// Add(Buffer(1) { 1 }, 2, ): buffers are not valid Operands
	_, err := vm.Execute(vm.ns.Root(), testMethod(
		0xA4, 0x72, 0x11, 0x04, 0x0A, 0x01, 0x01, 0x0A, 0x02, 0x00,
	))
	if err != StatusBadBytecode {
		t.Fatalf("expected %v; got %v", StatusBadBytecode, err)
	}

	if liveObjects != baseline {
		t.Fatalf("object leak after unwind: baseline %d, now %d", baseline, liveObjects)
	}
}
