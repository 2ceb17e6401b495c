package aml

import (
	"encoding/binary"
	"fmt"
)

// makeNullString gives dst's buffer the empty string payload (one NUL).
func makeNullString(obj *Object) Status {
	obj.buffer.data = []byte{0}
	return StatusOK
}

// makeNullBuffer gives dst's buffer an empty payload.
func makeNullBuffer(obj *Object) Status {
	obj.buffer.data = nil
	return StatusOK
}

// integerToString renders an integer as the string payload of str. Hex
// output is upper-case with a 0x prefix.
func integerToString(integer uint64, str *Object, isHex bool) Status {
	var repr string
	if isHex {
		repr = fmt.Sprintf("0x%X", integer)
	} else {
		repr = fmt.Sprintf("%d", integer)
	}

	str.buffer.data = append([]byte(repr), 0)
	return StatusOK
}

// bufferToString renders each buffer byte as a comma-separated item,
// 0xXX for hex and plain decimal otherwise.
func bufferToString(buf *sharedBuffer, str *Object, isHex bool) Status {
	out := make([]byte, 0, 4*len(buf.data))
	for i, b := range buf.data {
		if i != 0 {
			out = append(out, ',')
		}
		if isHex {
			out = append(out, fmt.Sprintf("0x%02X", b)...)
		} else {
			out = append(out, fmt.Sprintf("%d", b)...)
		}
	}

	str.buffer.data = append(out, 0)
	return StatusOK
}

// handleTo implements ToInteger, ToBuffer, ToHexString and
// ToDecimalString.
func handleTo(ctx *execContext) Status {
	opCtx := ctx.curOpCtx
	src := opCtx.items[0].obj
	dst := opCtx.items[2].obj

	switch opCtx.op.code {
	case opToInteger:
		// The reference OS always takes the first 8 bytes, even for
		// revision 1
		dst.integer = objectToInteger(src, 8)
		return StatusOK

	case opToHexString, opToDecimalString:
		isHex := opCtx.op.code == opToHexString

		if src.kind == ObjectInteger {
			return integerToString(src.integer, dst, isHex)
		}
		if src.kind == ObjectBuffer {
			if len(src.buffer.data) == 0 {
				return makeNullString(dst)
			}
			return bufferToString(src.buffer, dst, isHex)
		}
		// Strings convert to themselves; fall through to the raw storage
		// copy below.
	}

	buf, st := ctx.vm.objectStorage(src, true)
	if st != StatusOK {
		return st
	}

	if len(buf) == 0 {
		return makeNullBuffer(dst)
	}

	dst.buffer.data = append([]byte(nil), buf...)
	return StatusOK
}

// handleToString extracts up to Length bytes of a buffer as a string,
// stopping early at an embedded NUL.
func handleToString(ctx *execContext) Status {
	opCtx := ctx.curOpCtx
	srcBuf := opCtx.items[0].obj.buffer
	reqLen := opCtx.items[1].obj.integer
	dst := opCtx.items[3].obj

	length := uint64(len(srcBuf.data))
	if reqLen < length {
		length = reqLen
	}
	if length == 0 {
		return makeNullString(dst)
	}

	for i := uint64(0); i < length; i++ {
		if srcBuf.data[i] == 0 {
			length = i
			break
		}
	}
	if length == 0 {
		return makeNullString(dst)
	}

	dst.buffer.data = append(append([]byte(nil), srcBuf.data[:length]...), 0)
	return StatusOK
}

// handleMid extracts a clamped substring or subbuffer. Out-of-range
// requests yield the empty instance of the source's kind.
func handleMid(ctx *execContext) Status {
	opCtx := ctx.curOpCtx
	src := opCtx.items[0].obj

	if src.kind != ObjectString && src.kind != ObjectBuffer {
		ctx.vm.log.Warningf("invalid argument for Mid: %s, expected String/Buffer", src.kind)
		return StatusBadBytecode
	}

	idx := opCtx.items[1].obj.integer
	length := opCtx.items[2].obj.integer
	dst := opCtx.items[4].obj

	isString := src.kind == ObjectString
	srcBuf, st := ctx.vm.objectStorage(src, false)
	if st != StatusOK {
		return st
	}

	if len(srcBuf) == 0 || idx >= uint64(len(srcBuf)) {
		if isString {
			dst.kind = ObjectString
			return makeNullString(dst)
		}
		return makeNullBuffer(dst)
	}

	// Guaranteed to be at least 1 here
	if max := uint64(len(srcBuf)) - idx; length > max {
		length = max
	}

	dst.buffer.data = append([]byte(nil), srcBuf[idx:idx+length]...)
	if isString {
		dst.buffer.data = append(dst.buffer.data, 0)
		dst.kind = ObjectString
	}

	return StatusOK
}

// handleConcatenate joins two operands with the first operand's type
// deciding the rules:
//
//	Integer:   both sides widen to the revision's integer width.
//	Buffer:    raw bytes of the second operand are appended.
//	String:    integers append as hex text, strings append as text,
//	           buffers are not supported (reference OS behavior).
func handleConcatenate(ctx *execContext) Status {
	opCtx := ctx.curOpCtx
	arg0 := opCtx.items[0].obj
	arg1 := opCtx.items[1].obj
	dst := opCtx.items[3].obj

	var out []byte

	switch arg0.kind {
	case ObjectInteger:
		intSize := ctx.vm.sizeofInt()
		out = make([]byte, intSize*2)

		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], arg0.integer)
		copy(out, tmp[:intSize])
		binary.LittleEndian.PutUint64(tmp[:], objectToInteger(arg1, 8))
		copy(out[intSize:], tmp[:intSize])

	case ObjectBuffer:
		arg1Buf, st := ctx.vm.objectStorage(arg1, true)
		if st != StatusOK {
			return st
		}

		out = make([]byte, 0, len(arg0.buffer.data)+len(arg1Buf))
		out = append(out, arg0.buffer.data...)
		out = append(out, arg1Buf...)

	case ObjectString:
		var tail []byte
		switch arg1.kind {
		case ObjectInteger:
			tail = append([]byte(fmt.Sprintf("%x", arg1.integer)), 0)
		case ObjectString:
			tail = arg1.buffer.data
		default:
			// The reference OS doesn't support this, so we don't either
			return StatusInvalidArgument
		}

		head := arg0.buffer.data
		if len(head) > 0 {
			head = head[:len(head)-1]
		}

		out = make([]byte, 0, len(head)+len(tail))
		out = append(out, head...)
		out = append(out, tail...)
		dst.kind = ObjectString

	default:
		return StatusInvalidArgument
	}

	dst.buffer.data = out
	return StatusOK
}
