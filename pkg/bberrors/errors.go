// ABOUTME: Sentinel errors and error-classification helpers shared across the streaming core
// ABOUTME: Classify maps any error to its taxonomy Kind; Kind.Fatal says whether it stops the session
package bberrors

import (
	"errors"
	"fmt"
)

// Kind identifies which member of the closed error taxonomy an error
// belongs to. UnknownKind means the error did not originate in this
// package's taxonomy at all (a bug, or an unwrapped external error).
type Kind int

const (
	UnknownKind Kind = iota
	ClockReferenceMismatch
	NonContiguous
	ClockStartedPlaceholder
	ResponseOutOfOrder
	CodecRPCFailed
	CodecException
	MalformedFrame
	DecodeLengthMismatch
	PlayerUnderflow
	UnknownMessage
	ConnectivityLost
	SetupFailed
)

func (k Kind) String() string {
	switch k {
	case ClockReferenceMismatch:
		return "ClockReferenceMismatch"
	case NonContiguous:
		return "NonContiguous"
	case ClockStartedPlaceholder:
		return "ClockStarted_Placeholder"
	case ResponseOutOfOrder:
		return "ResponseOutOfOrder"
	case CodecRPCFailed:
		return "CodecRpcFailed"
	case CodecException:
		return "CodecException"
	case MalformedFrame:
		return "MalformedFrame"
	case DecodeLengthMismatch:
		return "DecodeLengthMismatch"
	case PlayerUnderflow:
		return "PlayerUnderflow"
	case UnknownMessage:
		return "UnknownMessage"
	case ConnectivityLost:
		return "ConnectivityLost"
	case SetupFailed:
		return "SetupFailed"
	default:
		return "Unknown"
	}
}

// Fatal reports whether an error of this kind must stop the current
// session. ConnectivityLost is the one taxonomy member that is
// observable-but-survivable; UnknownKind also reports false.
func (k Kind) Fatal() bool {
	return k != ConnectivityLost && k != UnknownKind
}

// Sentinel errors for the taxonomy members that carry no payload beyond a
// message. Wrap these with fmt.Errorf("...: %w", ErrX) for context.
var (
	ErrClockReferenceMismatch = errors.New("clock reference mismatch")
	ErrNonContiguous          = errors.New("non-contiguous chunk")
	ErrClockStartedPlaceholder = errors.New("placeholder arrived after clock start")
	ErrResponseOutOfOrder     = errors.New("codec response out of order")
	ErrMalformedFrame         = errors.New("malformed frame")
	ErrDecodeLengthMismatch   = errors.New("decode length mismatch")
	ErrPlayerUnderflow        = errors.New("player underflow")
	ErrUnknownMessage         = errors.New("unknown message")
	ErrConnectivityLost       = errors.New("connectivity lost")
	ErrSetupFailed            = errors.New("codec setup failed")
)

// CodecRPCFailedError wraps a nonzero status code returned by a codec
// worker's response.
type CodecRPCFailedError struct {
	Status int
}

func (e *CodecRPCFailedError) Error() string {
	return fmt.Sprintf("codec rpc failed: status=%d", e.Status)
}

// CodecExceptionError wraps an exception payload propagated verbatim from
// a codec worker's `{type: "exception", exception}` response.
type CodecExceptionError struct {
	Payload string
}

func (e *CodecExceptionError) Error() string {
	return fmt.Sprintf("codec exception: %s", e.Payload)
}

// Classify maps an error produced by this codebase to its taxonomy Kind.
// It walks the error chain with errors.Is/As, so wrapped errors classify
// the same as their sentinel.
func Classify(err error) Kind {
	if err == nil {
		return UnknownKind
	}

	var rpcErr *CodecRPCFailedError
	var excErr *CodecExceptionError

	switch {
	case errors.Is(err, ErrClockReferenceMismatch):
		return ClockReferenceMismatch
	case errors.Is(err, ErrNonContiguous):
		return NonContiguous
	case errors.Is(err, ErrClockStartedPlaceholder):
		return ClockStartedPlaceholder
	case errors.Is(err, ErrResponseOutOfOrder):
		return ResponseOutOfOrder
	case errors.As(err, &rpcErr):
		return CodecRPCFailed
	case errors.As(err, &excErr):
		return CodecException
	case errors.Is(err, ErrMalformedFrame):
		return MalformedFrame
	case errors.Is(err, ErrDecodeLengthMismatch):
		return DecodeLengthMismatch
	case errors.Is(err, ErrPlayerUnderflow):
		return PlayerUnderflow
	case errors.Is(err, ErrUnknownMessage):
		return UnknownMessage
	case errors.Is(err, ErrConnectivityLost):
		return ConnectivityLost
	case errors.Is(err, ErrSetupFailed):
		return SetupFailed
	default:
		return UnknownKind
	}
}
