package protocol

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the programmer can report.
// A Kind is itself an error so callers can match with errors.Is:
//
//	if errors.Is(err, protocol.KeyResetMismatch) { ... }
type Kind int

const (
	// KindUnknown is never returned; it is the zero value
	KindUnknown Kind = iota

	// DeviceNotFound means no USB device matches the vendor/product ID
	DeviceNotFound

	// ConfigurationUnavailable means the active configuration could not be read
	ConfigurationUnavailable

	// InterfaceUnavailable means the configuration has no usable interface
	InterfaceUnavailable

	// EndpointDiscoveryFailed means a bulk IN or bulk OUT endpoint is missing
	EndpointDiscoveryFailed

	// ActivateConfigurationFailed means the configuration could not be set
	ActivateConfigurationFailed

	// ClaimInterfaceFailed means the interface could not be claimed
	ClaimInterfaceFailed

	// UnexpectedDetectResponse means the device is not a CH559 bootloader
	UnexpectedDetectResponse

	// IdentifyFailed means the identify response is malformed
	IdentifyFailed

	// KeyResetMismatch means the reset-key response did not echo the chip id
	KeyResetMismatch

	// TransportWriteShort means the device accepted fewer bytes than sent
	TransportWriteShort

	// TransportWriteFailed means the bulk OUT transfer failed
	TransportWriteFailed

	// TransportReadFailed means the bulk IN transfer failed or timed out
	TransportReadFailed

	// EraseFailed means the device rejected an erase
	EraseFailed

	// ReadFailed means the device rejected a data read
	ReadFailed

	// FlashFailed means the device rejected a write
	FlashFailed

	// VerifyFailed means flash contents differ from the image
	VerifyFailed

	// InvalidFileSize means the image does not fit the region
	InvalidFileSize

	// NotARegularFile means the image path is not a regular file
	NotARegularFile

	// UnexpectedEndOfFile means the image ended before its reported size
	UnexpectedEndOfFile
)

var kindNames = map[Kind]string{
	DeviceNotFound:              "device not found",
	ConfigurationUnavailable:    "failed to check configurations",
	InterfaceUnavailable:        "failed to check interfaces",
	EndpointDiscoveryFailed:     "failed to detect endpoints",
	ActivateConfigurationFailed: "failed to activate the target configuration",
	ClaimInterfaceFailed:        "failed to claim the target interface",
	UnexpectedDetectResponse:    "unexpected detect response",
	IdentifyFailed:              "failed to identify",
	KeyResetMismatch:            "failed to reset key",
	TransportWriteShort:         "failed to do a bulk write all data",
	TransportWriteFailed:        "failed to do a bulk write",
	TransportReadFailed:         "failed to do a bulk read response",
	EraseFailed:                 "failed to erase",
	ReadFailed:                  "failed to read",
	FlashFailed:                 "failed to flash",
	VerifyFailed:                "failed to verify",
	InvalidFileSize:             "invalid file size",
	NotARegularFile:             "not a regular file",
	UnexpectedEndOfFile:         "unexpected EOF",
}

func (k Kind) Error() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown error kind %d", int(k))
}

// Phase names the handshake step an error happened in.
type Phase string

const (
	// PhaseDetect is the detect exchange
	PhaseDetect Phase = "detect"

	// PhaseIdentify is the identify exchange
	PhaseIdentify Phase = "identify"
)

// Error is the single error type returned by the programmer.
// Only the fields relevant to Kind are set.
type Error struct {
	// Kind classifies the failure
	Kind Kind

	// Phase is set for failures during the detect handshake
	Phase Phase

	// Offset is the region offset of the failing chunk, if any
	Offset int

	// HasOffset reports whether Offset is meaningful
	HasOffset bool

	// Status is the nonzero device status byte, if any
	Status byte

	// Detail is extra context such as expected and actual sizes
	Detail string

	// Err is the underlying cause, e.g. a USB transfer error
	Err error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.HasOffset {
		msg += fmt.Sprintf(" at offset 0x%04X", e.Offset)
	}
	if e.Status != StatusSuccess {
		msg += fmt.Sprintf(": status 0x%02X", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Phase != "" {
		msg += " on " + string(PhaseDetect)
		if e.Phase != PhaseDetect {
			msg += " (" + string(e.Phase) + ")"
		}
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return KindUnknown
}

// PhaseOf returns the handshake phase carried by err, or "".
func PhaseOf(err error) Phase {
	var e *Error
	if errors.As(err, &e) {
		return e.Phase
	}
	return ""
}

// WithPhase tags err with a handshake phase. Errors that are not *Error
// are wrapped as kind fallback.
func WithPhase(err error, phase Phase, fallback Kind) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		tagged := *e
		tagged.Phase = phase
		return &tagged
	}
	return &Error{Kind: fallback, Phase: phase, Err: err}
}

// statusError builds the error for a nonzero status in the response to an
// opcode-level operation.
func statusError(kind Kind, status byte) *Error {
	return &Error{Kind: kind, Status: status}
}
