package aml

// Status describes the outcome of a parse op or an opcode handler. Every
// step of method execution returns a Status; the interpreter short-circuits
// on the first value that is not StatusOK.
type Status uint8

// The list of supported status codes.
const (
	StatusOK Status = iota
	StatusOutOfMemory
	StatusOutOfBounds
	StatusBadBytecode
	StatusNotFound
	StatusAlreadyExists
	StatusInvalidArgument
	StatusUnimplemented
)

// String implements fmt.Stringer for Status.
func (st Status) String() string {
	switch st {
	case StatusOK:
		return "ok"
	case StatusOutOfMemory:
		return "out of memory"
	case StatusOutOfBounds:
		return "out of bounds"
	case StatusBadBytecode:
		return "bad bytecode"
	case StatusNotFound:
		return "not found"
	case StatusAlreadyExists:
		return "already exists"
	case StatusInvalidArgument:
		return "invalid argument"
	case StatusUnimplemented:
		return "unimplemented"
	default:
		return "unknown status"
	}
}

// Error implements the error interface so that non-OK statuses can be
// returned directly from the exported API.
func (st Status) Error() string {
	return "aml: " + st.String()
}
