package aml

import "encoding/binary"

// sizeofInt returns the width of AML integers for the active revision.
func (vm *VM) sizeofInt() int {
	if vm.isRev1 {
		return 4
	}
	return 8
}

// ones returns the all-bits-set integer for the active revision.
func (vm *VM) ones() uint64 {
	if vm.isRev1 {
		return 0xFFFFFFFF
	}
	return 0xFFFFFFFFFFFFFFFF
}

// truncateIfNeeded masks an Integer object down to 32 bits when running a
// revision 1 table.
func (vm *VM) truncateIfNeeded(obj *Object) {
	if vm.isRev1 {
		obj.integer &= 0xFFFFFFFF
	}
}

// objectStorage exposes the raw byte storage of an Integer, String or
// Buffer object. Strings drop their trailing NUL unless includeNull is
// set. Integer storage is an encoded copy sized to the revision's integer
// width; writes to it do not land back in the object.
func (vm *VM) objectStorage(obj *Object, includeNull bool) ([]byte, Status) {
	switch obj.kind {
	case ObjectInteger:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], obj.integer)
		return buf[:vm.sizeofInt()], StatusOK
	case ObjectString:
		data := obj.buffer.data
		if len(data) > 0 && !includeNull {
			data = data[:len(data)-1]
		}
		return data, StatusOK
	case ObjectBuffer:
		return obj.buffer.data, StatusOK
	case ObjectReference:
		return nil, StatusInvalidArgument
	default:
		return nil, StatusBadBytecode
	}
}

// objectToInteger coerces an object to an integer the way the reference OS
// does: buffers contribute at most maxBufferBytes little-endian bytes,
// strings parse as numbers, anything else reads as 0.
func objectToInteger(obj *Object, maxBufferBytes int) uint64 {
	switch obj.kind {
	case ObjectInteger:
		return obj.integer
	case ObjectBuffer:
		var buf [8]byte
		n := len(obj.buffer.data)
		if n > maxBufferBytes {
			n = maxBufferBytes
		}
		memcpyZerout(buf[:], obj.buffer.data[:n])
		return binary.LittleEndian.Uint64(buf[:])
	case ObjectString:
		return parseNumber(obj.StringValue())
	default:
		return 0
	}
}

// parseNumber decodes a decimal or 0x-prefixed hexadecimal numeric prefix
// of s; conversion stops at the first invalid character.
func parseNumber(s string) uint64 {
	var (
		res  uint64
		base = uint64(10)
	)

	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	for i := 0; i < len(s); i++ {
		var digit uint64
		switch ch := s[i]; {
		case ch >= '0' && ch <= '9':
			digit = uint64(ch - '0')
		case base == 16 && ch >= 'a' && ch <= 'f':
			digit = uint64(ch-'a') + 10
		case base == 16 && ch >= 'A' && ch <= 'F':
			digit = uint64(ch-'A') + 10
		default:
			return res
		}
		res = res*base + digit
	}

	return res
}

// objectAssignWithImplicitCast copies the source's storage into the fixed
// storage of dst, truncating or zero-padding as needed. The "implicit
// cast" name comes from the specification; in reality this is a plain
// buffer copy because that is what the reference OS does.
func (vm *VM) objectAssignWithImplicitCast(dst, src *Object) Status {
	srcBuf, st := vm.objectStorage(src, false)
	if st != StatusOK {
		return st
	}

	switch dst.kind {
	case ObjectInteger:
		var buf [8]byte
		memcpyZerout(buf[:vm.sizeofInt()], srcBuf)
		dst.integer = binary.LittleEndian.Uint64(buf[:])
	case ObjectString, ObjectBuffer:
		dstBuf, st := vm.objectStorage(dst, false)
		if st != StatusOK {
			return st
		}
		memcpyZerout(dstBuf, srcBuf)
	case ObjectBufferField:
		writeBufferField(&dst.field, srcBuf)
	case ObjectBufferIndex:
		writeBufferIndex(&dst.bufIdx, srcBuf)
	default:
		return StatusBadBytecode
	}

	return StatusOK
}

// replaceChild swaps the inner object of a reference for newChild.
func replaceChild(parent, newChild *Object) {
	parent.inner.unref()
	parent.inner = newChild.ref()
}

// overwriteReference replaces the object behind dst with a deep copy of
// src.
func overwriteReference(dst, src *Object) Status {
	newObj := createObject(ObjectUninitialized)
	if st := objectAssign(newObj, src, assignDeepCopy); st != StatusOK {
		newObj.unref()
		return st
	}
	replaceChild(dst, newObj)
	newObj.unref()
	return StatusOK
}

// storeToReference implements Store(..., dst) where dst is a reference:
//
//  1. LocalX/Index: overwrite, unless the wrapped object is a reference,
//     in which case store to the referenced object with implicit cast.
//  2. ArgX: overwrite, unless the wrapped object is a reference, in which
//     case overwrite the referenced object.
//  3. NAME: store with implicit cast.
//  4. RefOf: not allowed here.
func (vm *VM) storeToReference(dst, src *Object) Status {
	var overwrite bool

	switch dst.refKind {
	case RefKindLocal, RefKindArg, RefKindPkgIndex:
		var referenced *Object
		if dst.refKind == RefKindPkgIndex {
			referenced = dst.inner
		} else {
			referenced = unwrapInternalReference(dst)
		}

		if referenced.kind == ObjectReference {
			overwrite = dst.refKind == RefKindArg
			dst = referenceUnwind(referenced)
			break
		}

		overwrite = true
	case RefKindNamed:
		dst = referenceUnwind(dst)
	default:
		return StatusInvalidArgument
	}

	srcObj := unwrapInternalReference(src)
	overwrite = overwrite || dst.inner.kind == ObjectUninitialized

	if overwrite {
		return overwriteReference(dst, srcObj)
	}

	return vm.objectAssignWithImplicitCast(dst.inner, srcObj)
}

// copyObjectToReference implements CopyObject(..., dst):
//
//  1. LocalX: overwrite LocalX.
//  2. NAME: overwrite NAME.
//  3. ArgX: overwrite ArgX unless ArgX holds a reference, in which case
//     overwrite the referenced object.
//  4. RefOf: not allowed here.
//  5. Index: overwrite the object stored at the index.
func copyObjectToReference(dst, src *Object) Status {
	switch dst.refKind {
	case RefKindArg:
		if referenced := unwrapInternalReference(dst); referenced.kind == ObjectReference {
			dst = referenceUnwind(referenced)
		}
	case RefKindLocal, RefKindPkgIndex, RefKindNamed:
	default:
		return StatusInvalidArgument
	}

	return overwriteReference(dst, unwrapInternalReference(src))
}

// storeToTarget dispatches a Store on the target's kind: Debug logs the
// value, references follow the store protocol, a BufferIndex writes one
// byte, and Integer 0 is the null-target sentinel.
func (vm *VM) storeToTarget(dst, src *Object) Status {
	if dst == nil || src == nil {
		return StatusBadBytecode
	}

	switch dst.kind {
	case ObjectDebug:
		return vm.debugStore(src)
	case ObjectReference:
		return vm.storeToReference(dst, src)
	case ObjectBufferIndex:
		return vm.objectAssignWithImplicitCast(dst, src)
	case ObjectInteger:
		// NULL target
		if dst.integer == 0 {
			return StatusOK
		}
	}

	return StatusBadBytecode
}

// debugStore logs the unwrapped value of src. Packages log each element
// one level deep, looking through lazily lifted package index slots.
func (vm *VM) debugStore(src *Object) Status {
	src = unwrapInternalReference(src)

	vm.debugStoreNoRecurse("[AML DEBUG]", src)

	if src.kind == ObjectPackage {
		for _, el := range src.pkg.elements {
			if el.kind == ObjectReference && el.refKind == RefKindPkgIndex {
				el = el.inner
			}
			vm.debugStoreNoRecurse("Element:", el)
		}
	}

	return StatusOK
}

func (vm *VM) debugStoreNoRecurse(prefix string, src *Object) {
	switch src.kind {
	case ObjectUninitialized:
		vm.log.Infof("%s Uninitialized", prefix)
	case ObjectString:
		vm.log.Infof("%s String => %q", prefix, src.StringValue())
	case ObjectInteger:
		if vm.isRev1 {
			vm.log.Infof("%s Integer => 0x%08X", prefix, src.integer)
		} else {
			vm.log.Infof("%s Integer => 0x%016X", prefix, src.integer)
		}
	case ObjectReference:
		vm.log.Infof("%s Reference %p => %p", prefix, src, src.inner)
	case ObjectPackage:
		vm.log.Infof("%s Package (%d elements)", prefix, len(src.pkg.elements))
	case ObjectBuffer:
		vm.log.Infof("%s Buffer (%d bytes)", prefix, len(src.buffer.data))
	case ObjectOperationRegion:
		vm.log.Infof("%s OperationRegion (ASID %d) 0x%016X -> 0x%016X",
			prefix, src.region.Space, src.region.Offset,
			src.region.Offset+src.region.Length)
	case ObjectPowerResource:
		vm.log.Infof("%s Power Resource %d %d",
			prefix, src.power.SystemLevel, src.power.ResourceOrder)
	case ObjectProcessor:
		vm.log.Infof("%s Processor[%d] 0x%08X (%d)",
			prefix, src.proc.ID, src.proc.BlockAddress, src.proc.BlockLength)
	case ObjectBufferIndex:
		vm.log.Infof("%s Buffer Index [%d] => 0x%02X",
			prefix, src.bufIdx.idx, src.bufIdx.cursor()[0])
	case ObjectMutex:
		vm.log.Infof("%s Mutex sync level %d", prefix, src.mutex.SyncLevel)
	default:
		vm.log.Infof("%s %s %p", prefix, src.kind, src)
	}
}
