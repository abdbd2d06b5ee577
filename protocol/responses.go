package protocol

import (
	"fmt"
	"strconv"
)

// ParseResponse extracts the status byte and payload from a response.
// The payload is everything from PayloadOffset on, and is empty for plain
// status responses.
//
// Response structure:
//
//	[OP][xx][LEN_L][LEN_H][STATUS][xx][DATA...]
func ParseResponse(frame []byte, expectedLen int) (status byte, data []byte, err error) {
	if len(frame) != expectedLen {
		return 0, nil, fmt.Errorf("response length mismatch: got %d bytes, expected %d", len(frame), expectedLen)
	}
	if len(frame) < StatusResponseSize {
		return 0, nil, fmt.Errorf("response too short: got %d bytes, minimum is %d", len(frame), StatusResponseSize)
	}
	return frame[StatusOffset], frame[PayloadOffset:], nil
}

// CheckStatus returns an error of kind if the response status is nonzero.
func CheckStatus(frame []byte, expectedLen int, kind Kind) ([]byte, error) {
	status, data, err := ParseResponse(frame, expectedLen)
	if err != nil {
		return nil, &Error{Kind: kind, Err: err}
	}
	if status != StatusSuccess {
		return nil, statusError(kind, status)
	}
	return data, nil
}

// ParseDetectResponse returns the chip id from a detect response.
// Only the CH559 family code is accepted.
func ParseDetectResponse(frame []byte) (byte, error) {
	if len(frame) != DetectResponseSize {
		return 0, &Error{
			Kind:   UnexpectedDetectResponse,
			Detail: fmt.Sprintf("got %d bytes, expected %d", len(frame), DetectResponseSize),
		}
	}
	chipID := frame[StatusOffset]
	if chipID != ChipIDCH559 {
		return 0, &Error{
			Kind:   UnexpectedDetectResponse,
			Detail: fmt.Sprintf("chip id 0x%02X, expected 0x%02X", chipID, ChipIDCH559),
		}
	}
	return chipID, nil
}

// ParseIdentifyResponse decodes the bootloader version and checksum seed.
//
// Data format (30 bytes):
//
//	[0..18 reserved][MAJOR][MINOR][PATCH][ID0][ID1][ID2][ID3][26..29 reserved]
func ParseIdentifyResponse(frame []byte) (*Identity, error) {
	if len(frame) != IdentifyResponseSize {
		return nil, &Error{
			Kind:   IdentifyFailed,
			Detail: fmt.Sprintf("got %d bytes, expected %d", len(frame), IdentifyResponseSize),
		}
	}

	version := strconv.Itoa(int(frame[19])) + "." +
		strconv.Itoa(int(frame[20])) + strconv.Itoa(int(frame[21]))

	return &Identity{
		Version:      version,
		ChecksumSeed: ChecksumSeed(frame[22:26]),
	}, nil
}

// ParseResetKeyResponse checks that the reset-key response echoes chipID.
func ParseResetKeyResponse(frame []byte, chipID byte) error {
	if len(frame) != StatusResponseSize {
		return &Error{
			Kind:   KeyResetMismatch,
			Detail: fmt.Sprintf("got %d bytes, expected %d", len(frame), StatusResponseSize),
		}
	}
	if frame[StatusOffset] != chipID {
		return &Error{
			Kind:   KeyResetMismatch,
			Detail: fmt.Sprintf("got 0x%02X, expected chip id 0x%02X", frame[StatusOffset], chipID),
		}
	}
	return nil
}
