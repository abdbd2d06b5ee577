package protocol

import "testing"

func TestRegion(t *testing.T) {
	tests := []struct {
		region  Region
		name    string
		maxSize int
	}{
		{RegionCode, "code", 0xF400},
		{RegionData, "data", 0x400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.region.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.region.MaxSize(); got != tt.maxSize {
				t.Errorf("MaxSize() = 0x%X, want 0x%X", got, tt.maxSize)
			}
		})
	}

	if got := Region(7).String(); got != "unknown" {
		t.Errorf("String() = %q, want unknown", got)
	}
}
