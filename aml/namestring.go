package aml

// parseNameSeg validates and extracts one 4-byte name segment.
//
//	LeadNameChar := 'A'-'Z' | '_'
//	DigitChar := '0'-'9'
//	NameChar := DigitChar | LeadNameChar
func parseNameSeg(code []byte) (nodeName, Status) {
	var name nodeName

	if len(code) < amlNameLen {
		return name, StatusBadBytecode
	}
	for i := 0; i < amlNameLen; i++ {
		b := code[i]
		switch {
		case b == '_':
		case b >= '0' && b <= '9':
		case b >= 'A' && b <= 'Z':
		default:
			return name, StatusBadBytecode
		}
		name[i] = b
	}

	return name, StatusOK
}

// resolveBehavior selects between the two name resolution modes.
type resolveBehavior uint8

const (
	// resolveCreateLastSeg walks all but the final segment, then allocates
	// a new node for the last one. The node is linked to its parent but
	// not yet installed; resolution fails if the name already exists.
	resolveCreateLastSeg resolveBehavior = iota

	// resolveFailIfMissing requires every segment to exist. Single-segment
	// relative names additionally search upward through ancestor scopes.
	resolveFailIfMissing
)

// resolveNameString decodes the name string at the frame's code cursor and
// resolves it against the current scope.
//
//	NameString := <rootchar namepath> | <prefixpath namepath>
//	PrefixPath := Nothing | <'^' prefixpath>
//	NamePath := NameSeg | DualNamePath | MultiNamePath | NullName
//
// The frame's code offset is advanced past the entire name string even
// when the final lookup misses, so callers that tolerate NotFound can
// continue parsing.
func (vm *VM) resolveNameString(frame *callFrame, behavior resolveBehavior) (*NamespaceNode, Status) {
	var (
		code       = frame.method.Code
		cursor     = int(frame.codeOffset)
		curNode    = frame.curScope
		prevChar   byte
		justOneSeg = true
		namesegs   int
	)

	for {
		if cursor >= len(code) {
			return nil, StatusBadBytecode
		}

		switch code[cursor] {
		case '\\':
			if prevChar == '^' {
				return nil, StatusBadBytecode
			}
			curNode = vm.ns.Root()
		case '^':
			// Tried to go behind root
			if curNode == vm.ns.Root() {
				return nil, StatusBadBytecode
			}
			curNode = curNode.parent
		}

		prevChar = code[cursor]
		if prevChar == '^' || prevChar == '\\' {
			justOneSeg = false
			cursor++
		}
		if prevChar != '^' {
			break
		}
	}

	// At least a NullName byte is expected here
	if cursor >= len(code) {
		return nil, StatusBadBytecode
	}

	switch b := code[cursor]; b {
	case dualNamePrefix:
		cursor++
		namesegs = 2
		justOneSeg = false
	case multiNamePrefix:
		cursor++
		if cursor >= len(code) {
			return nil, StatusBadBytecode
		}
		namesegs = int(code[cursor])
		cursor++
		justOneSeg = false
	case nullName:
		cursor++
		if behavior == resolveCreateLastSeg {
			return nil, StatusBadBytecode
		}
		if justOneSeg {
			// A bare NullName resolves to no node; the caller decides
			// whether that is acceptable.
			curNode = nil
		}
		frame.codeOffset = uint32(cursor)
		return curNode, StatusOK
	default:
		// Might be an invalid byte, but assume a single nameseg for now;
		// parseNameSeg validates it below.
		namesegs = 1
	}

	if namesegs*amlNameLen > len(code)-cursor {
		return nil, StatusBadBytecode
	}

	ret := StatusOK
	for ; namesegs > 0; namesegs, cursor = namesegs-1, cursor+amlNameLen {
		name, st := parseNameSeg(code[cursor:])
		if st != StatusOK {
			return nil, st
		}

		parent := curNode
		curNode = vm.ns.find(parent, name)

		switch behavior {
		case resolveCreateLastSeg:
			if namesegs == 1 {
				if curNode != nil {
					return nil, StatusAlreadyExists
				}

				// Create the node and link to parent but don't install yet
				curNode = vm.ns.alloc(name)
				curNode.parent = parent
			}
		case resolveFailIfMissing:
			if justOneSeg {
				for curNode == nil && parent != vm.ns.Root() {
					curNode = parent
					parent = curNode.parent
					curNode = vm.ns.find(parent, name)
				}
			}
		}

		if curNode == nil {
			ret = StatusNotFound
			namesegs--
			cursor += amlNameLen
			break
		}
	}

	// Skip whatever segments remain so the stream stays in sync even on a
	// failed lookup.
	cursor += namesegs * amlNameLen
	frame.codeOffset = uint32(cursor)
	return curNode, ret
}

// nameStringToPath renders the name string at the given code offset as a
// printable dotted path. It does not advance the frame.
func nameStringToPath(frame *callFrame, offset uint32) (string, Status) {
	var (
		code     = frame.method.Code
		cursor   = int(offset)
		prefix   []byte
		namesegs int
	)

	for {
		if cursor >= len(code) {
			return "", StatusBadBytecode
		}
		b := code[cursor]
		if b == '^' || b == '\\' {
			prefix = append(prefix, b)
			cursor++
		}
		if b != '^' {
			break
		}
	}

	if cursor >= len(code) {
		return "", StatusBadBytecode
	}

	switch code[cursor] {
	case dualNamePrefix:
		cursor++
		namesegs = 2
	case multiNamePrefix:
		cursor++
		if cursor >= len(code) {
			return "", StatusBadBytecode
		}
		namesegs = int(code[cursor])
		cursor++
	case nullName:
		return string(prefix), StatusOK
	default:
		namesegs = 1
	}

	if namesegs*amlNameLen > len(code)-cursor {
		return "", StatusBadBytecode
	}

	path := append([]byte(nil), prefix...)
	for ; namesegs > 0; namesegs-- {
		path = append(path, code[cursor:cursor+amlNameLen]...)
		cursor += amlNameLen
		if namesegs > 1 {
			path = append(path, '.')
		}
	}

	return string(path), StatusOK
}

// parsePackageLength decodes the variable-width package length at the
// frame's code cursor and advances past it.
//
//	PkgLength :=
//	  PkgLeadByte |
//	  <pkgleadbyte bytedata> |
//	  <pkgleadbyte bytedata bytedata> |
//	  <pkgleadbyte bytedata bytedata bytedata>
//	PkgLeadByte :=
//	  <bit 7-6: bytedata count that follows (0-3)>
//	  <bit 5-4: only used if pkglength < 63>
//	  <bit 3-0: least significant package length nybble>
//
// The returned range includes the length bytes themselves.
func parsePackageLength(frame *callFrame) (packageLength, Status) {
	var (
		pkg  packageLength
		code = frame.method.Code
	)

	pkg.begin = frame.codeOffset
	left := frame.codeBytesLeft()
	if left < 1 {
		return pkg, StatusBadBytecode
	}

	lead := code[pkg.begin]
	markerLength := 1 + int(lead>>6)
	if left < markerLength {
		return pkg, StatusBadBytecode
	}

	var size uint32
	if markerLength == 1 {
		size = uint32(lead & 0x3f)
	} else {
		size = uint32(lead & 0x0f)
		for i := 1; i < markerLength; i++ {
			size |= uint32(code[int(pkg.begin)+i]) << (4 + 8*(i-1))
		}
	}

	frame.codeOffset += uint32(markerLength)
	pkg.end = pkg.begin + size
	return pkg, StatusOK
}
