package protocol

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestErrorIsKind(t *testing.T) {
	err := fmt.Errorf("write chunk: %w", &Error{Kind: FlashFailed, Status: 0xFE, Offset: 0x70, HasOffset: true})

	if !errors.Is(err, FlashFailed) {
		t.Error("errors.Is(err, FlashFailed) = false, want true")
	}
	if errors.Is(err, VerifyFailed) {
		t.Error("errors.Is(err, VerifyFailed) = true, want false")
	}
	if KindOf(err) != FlashFailed {
		t.Errorf("KindOf = %v, want FlashFailed", KindOf(err))
	}

	msg := err.Error()
	for _, want := range []string{"failed to flash", "0x0070", "0xFE"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message should contain %q, got: %s", want, msg)
		}
	}
}

func TestErrorUnwrapCause(t *testing.T) {
	err := &Error{Kind: TransportReadFailed, Err: io.ErrUnexpectedEOF}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("cause not reachable through Unwrap")
	}
	if !errors.Is(err, TransportReadFailed) {
		t.Error("kind not matched")
	}
}

func TestWithPhase(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		phase    Phase
		wantKind Kind
		wantMsg  string
	}{
		{
			name:     "tags protocol error",
			err:      &Error{Kind: TransportReadFailed, Err: errors.New("timeout")},
			phase:    PhaseDetect,
			wantKind: TransportReadFailed,
			wantMsg:  "failed to do a bulk read response: timeout on detect",
		},
		{
			name:     "identify phase",
			err:      &Error{Kind: IdentifyFailed},
			phase:    PhaseIdentify,
			wantKind: IdentifyFailed,
			wantMsg:  "failed to identify on detect (identify)",
		},
		{
			name:     "foreign error uses fallback kind",
			err:      errors.New("boom"),
			phase:    PhaseIdentify,
			wantKind: IdentifyFailed,
			wantMsg:  "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WithPhase(tt.err, tt.phase, IdentifyFailed)
			if KindOf(err) != tt.wantKind {
				t.Errorf("kind = %v, want %v", KindOf(err), tt.wantKind)
			}
			if PhaseOf(err) != tt.phase {
				t.Errorf("phase = %q, want %q", PhaseOf(err), tt.phase)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error message should contain %q, got: %s", tt.wantMsg, err.Error())
			}
		})
	}

	if WithPhase(nil, PhaseDetect, IdentifyFailed) != nil {
		t.Error("WithPhase(nil) should be nil")
	}
}

func TestKindNames(t *testing.T) {
	for k := DeviceNotFound; k <= UnexpectedEndOfFile; k++ {
		if strings.HasPrefix(k.Error(), "unknown error kind") {
			t.Errorf("kind %d has no name", int(k))
		}
	}
	if !strings.HasPrefix(KindUnknown.Error(), "unknown error kind") {
		t.Errorf("KindUnknown.Error() = %q", KindUnknown.Error())
	}
}
