package protocol

import (
	"errors"
	"strings"
	"testing"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name       string
		frame      []byte
		expected   int
		wantStatus byte
		wantData   []byte
		wantErr    bool
	}{
		{
			name:       "success status",
			frame:      []byte{0xA4, 0x00, 0x02, 0x00, 0x00, 0x00},
			expected:   6,
			wantStatus: StatusSuccess,
		},
		{
			name:       "failure status",
			frame:      []byte{0xA4, 0x00, 0x02, 0x00, 0xFE, 0x00},
			expected:   6,
			wantStatus: 0xFE,
		},
		{
			name:       "read payload",
			frame:      []byte{0xAB, 0x00, 0x04, 0x00, 0x00, 0x00, 0xDE, 0xAD},
			expected:   8,
			wantStatus: StatusSuccess,
			wantData:   []byte{0xDE, 0xAD},
		},
		{
			name:     "length mismatch",
			frame:    []byte{0xA4, 0x00, 0x02, 0x00, 0x00},
			expected: 6,
			wantErr:  true,
		},
		{
			name:     "too short",
			frame:    []byte{0xA4, 0x00},
			expected: 2,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, data, err := ParseResponse(tt.frame, tt.expected)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if status != tt.wantStatus {
				t.Errorf("status = 0x%02X, want 0x%02X", status, tt.wantStatus)
			}
			if string(data) != string(tt.wantData) {
				t.Errorf("data = % 02X, want % 02X", data, tt.wantData)
			}
		})
	}
}

func TestCheckStatus(t *testing.T) {
	_, err := CheckStatus([]byte{0xA9, 0, 2, 0, 0x01, 0}, 6, EraseFailed)
	if !errors.Is(err, EraseFailed) {
		t.Fatalf("error = %v, want EraseFailed", err)
	}
	var e *Error
	if !errors.As(err, &e) || e.Status != 0x01 {
		t.Errorf("status not carried: %#v", err)
	}

	if _, err := CheckStatus([]byte{0xA9, 0, 2, 0, 0x00, 0}, 6, EraseFailed); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseDetectResponse(t *testing.T) {
	tests := []struct {
		name    string
		frame   []byte
		wantID  byte
		wantErr bool
	}{
		{
			name:   "ch559",
			frame:  []byte{0xA1, 0x00, 0x02, 0x00, 0x59, 0x11},
			wantID: 0x59,
		},
		{
			name:    "ch552",
			frame:   []byte{0xA1, 0x00, 0x02, 0x00, 0x52, 0x11},
			wantErr: true,
		},
		{
			name:    "short",
			frame:   []byte{0xA1, 0x00},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseDetectResponse(tt.frame)
			if tt.wantErr {
				if !errors.Is(err, UnexpectedDetectResponse) {
					t.Fatalf("error = %v, want UnexpectedDetectResponse", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id != tt.wantID {
				t.Errorf("chip id = 0x%02X, want 0x%02X", id, tt.wantID)
			}
		})
	}
}

func TestParseIdentifyResponse(t *testing.T) {
	frame := make([]byte, IdentifyResponseSize)
	frame[19], frame[20], frame[21] = 2, 4, 0
	frame[22], frame[23], frame[24], frame[25] = 0x80, 0x90, 0x10, 0x05

	id, err := ParseIdentifyResponse(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Version != "2.40" {
		t.Errorf("Version = %q, want %q", id.Version, "2.40")
	}
	// 0x80+0x90+0x10+0x05 = 0x125 -> 0x25
	if id.ChecksumSeed != 0x25 {
		t.Errorf("ChecksumSeed = 0x%02X, want 0x25", id.ChecksumSeed)
	}

	_, err = ParseIdentifyResponse(frame[:20])
	if !errors.Is(err, IdentifyFailed) {
		t.Errorf("error = %v, want IdentifyFailed", err)
	}
}

func TestParseResetKeyResponse(t *testing.T) {
	if err := ParseResetKeyResponse([]byte{0xA3, 0, 2, 0, 0x59, 0}, 0x59); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := ParseResetKeyResponse([]byte{0xA3, 0, 2, 0, 0x00, 0}, 0x59)
	if !errors.Is(err, KeyResetMismatch) {
		t.Fatalf("error = %v, want KeyResetMismatch", err)
	}
	if !strings.Contains(err.Error(), "failed to reset key") {
		t.Errorf("error message = %q", err.Error())
	}
}
