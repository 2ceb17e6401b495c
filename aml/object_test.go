package aml

import (
	"bytes"
	"testing"
)

func TestObjectRefCounting(t *testing.T) {
	baseline := liveObjects

	obj := NewInteger(42)
	if liveObjects != baseline+1 {
		t.Fatalf("expected %d live objects; got %d", baseline+1, liveObjects)
	}

	ref := createInternalReference(RefKindLocal, obj)
	obj.unref() // now owned by the reference

	if liveObjects != baseline+2 {
		t.Fatalf("expected %d live objects; got %d", baseline+2, liveObjects)
	}

	ref.unref()
	if liveObjects != baseline {
		t.Fatalf("expected baseline %d; got %d", baseline, liveObjects)
	}
}

func TestUnwrapInternalReference(t *testing.T) {
	val := NewInteger(7)
	local := createInternalReference(RefKindLocal, val)
	arg := createInternalReference(RefKindArg, local)

	if got := unwrapInternalReference(arg); got != val {
		t.Error("internal references must unwrap to the bottom object")
	}

	// RefOf references stop the unwrap.
	refOf := createInternalReference(RefKindRefOf, val)
	if got := unwrapInternalReference(refOf); got != refOf {
		t.Error("RefOf must not unwrap")
	}

	refOf.unref()
	arg.unref()
	local.unref()
	val.unref()
}

func TestReferenceUnwind(t *testing.T) {
	val := NewInteger(7)
	inner := createInternalReference(RefKindLocal, val)
	outer := createInternalReference(RefKindRefOf, inner)

	// Unwind returns the final link of the chain, whose inner object is
	// the value.
	if got := referenceUnwind(outer); got != inner || got.inner != val {
		t.Error("unwind must stop at the last reference")
	}

	// Unwinding a non-reference returns it unchanged.
	if got := referenceUnwind(val); got != val {
		t.Error("unwinding a non-reference must be the identity")
	}

	outer.unref()
	inner.unref()
	val.unref()
}

func TestObjectDerefImplicit(t *testing.T) {
	val := NewInteger(7)

	local := createInternalReference(RefKindLocal, val)
	if got := objectDerefImplicit(local); got != val {
		t.Error("LocalX must implicitly deref to its wrapped object")
	}

	named := createInternalReference(RefKindNamed, local)
	if got := objectDerefImplicit(named); got != local {
		t.Error("NAME must implicitly deref exactly one level")
	}

	refOf := createInternalReference(RefKindRefOf, local)
	if got := objectDerefImplicit(refOf); got != val {
		t.Error("RefOf must implicitly deref to the bottom-most object")
	}

	refOf.unref()
	named.unref()
	local.unref()
	val.unref()
}

func TestObjectAssignDeepCopiesBuffers(t *testing.T) {
	src := NewBuffer([]byte{1, 2, 3})
	dst := createObject(ObjectUninitialized)

	if st := objectAssign(dst, src, assignDeepCopy); st != StatusOK {
		t.Fatalf("assign failed: %v", st)
	}

	dst.buffer.data[0] = 0xFF
	if src.buffer.data[0] != 1 {
		t.Error("deep copy must not share the backing buffer")
	}

	shallow := createObject(ObjectUninitialized)
	if st := objectAssign(shallow, src, assignShallowCopy); st != StatusOK {
		t.Fatalf("assign failed: %v", st)
	}

	shallow.buffer.data[0] = 0xFF
	if src.buffer.data[0] != 0xFF {
		t.Error("shallow copy must share the backing buffer")
	}

	shallow.unref()
	dst.unref()
	src.unref()
}

func TestObjectAssignDeepCopiesPackages(t *testing.T) {
	src := createObject(ObjectPackage)
	src.pkg.elements = []*Object{NewInteger(1), NewString("two")}

	dst := createObject(ObjectUninitialized)
	if st := objectAssign(dst, src, assignDeepCopy); st != StatusOK {
		t.Fatalf("assign failed: %v", st)
	}

	dst.pkg.elements[0].integer = 99
	if src.pkg.elements[0].integer != 1 {
		t.Error("deep package copy must not alias elements")
	}
	if got := dst.pkg.elements[1].StringValue(); got != "two" {
		t.Errorf("expected element copy \"two\"; got %q", got)
	}

	dst.unref()
	src.unref()
}

func TestObjectAccessors(t *testing.T) {
	str := NewString("hello")
	if str.StringValue() != "hello" || len(str.buffer.data) != 6 {
		t.Errorf("string payload malformed: %q", str.StringValue())
	}
	str.unref()

	buf := NewBuffer([]byte{0xAB})
	if !bytes.Equal(buf.Bytes(), []byte{0xAB}) {
		t.Errorf("buffer payload malformed: % X", buf.Bytes())
	}
	buf.unref()
}
