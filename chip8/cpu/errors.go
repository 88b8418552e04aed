package cpu

import (
	"errors"
	"fmt"
)

var (
	// ErrFatal is wrapped by every error that stops the interpreter.
	ErrFatal = errors.New("fatal interpreter error")

	// ErrStop can be returned by a Hook to end Run without an error.
	ErrStop = errors.New("stopped by host")

	// ErrProgramTooLarge is returned when a program does not fit above ProgramStart.
	ErrProgramTooLarge = errors.New("program too large")
)

// DecodeKind tells apart the reasons an instruction word could not be executed.
type DecodeKind int

const (
	// DecodeUnknown means no instruction of the opcode group matches the word.
	DecodeUnknown DecodeKind = iota
	// DecodeUnsupported is the 0NNN machine language call.
	DecodeUnsupported
)

func (k DecodeKind) String() string {
	switch k {
	case DecodeUnknown:
		return "unknown"
	case DecodeUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("DecodeKind(%d)", int(k))
	}
}

// DecodeError reports an instruction word the interpreter cannot execute.
type DecodeError struct {
	Opcode uint16
	PC     uint16 // address the word was fetched from
	Kind   DecodeKind
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s instruction 0x%04X at 0x%03X", e.Kind, e.Opcode, e.PC)
}

func (e *DecodeError) Unwrap() error { return ErrFatal }

// StackKind tells apart stack overflow and underflow.
type StackKind int

const (
	StackOverflow StackKind = iota
	StackUnderflow
)

func (k StackKind) String() string {
	switch k {
	case StackOverflow:
		return "stack overflow"
	case StackUnderflow:
		return "stack underflow"
	default:
		return fmt.Sprintf("StackKind(%d)", int(k))
	}
}

// StackError reports a CALL beyond StackDepth nested levels or a RET with an empty stack.
type StackError struct {
	Opcode uint16
	PC     uint16
	Kind   StackKind
}

func (e *StackError) Error() string {
	return fmt.Sprintf("%s executing 0x%04X at 0x%03X", e.Kind, e.Opcode, e.PC)
}

func (e *StackError) Unwrap() error { return ErrFatal }
