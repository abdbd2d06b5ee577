package protocol

// Identity describes the bootloader found by the detect and identify handshake.
type Identity struct {
	// ChipID is the chip family code from the detect response
	ChipID byte

	// Version is the bootloader version, formatted "MAJOR.MINORPATCH"
	Version string

	// ChecksumSeed is the 8-bit sum of identify bytes 22-25; it seeds the key
	ChecksumSeed byte
}

// Region selects one of the two independently erased flash areas.
type Region int

const (
	// RegionCode is the program flash starting at address 0
	RegionCode Region = iota

	// RegionData is the 0x400-byte data flash at physical 0xF000
	RegionData
)

func (r Region) String() string {
	switch r {
	case RegionCode:
		return "code"
	case RegionData:
		return "data"
	default:
		return "unknown"
	}
}

// MaxSize returns the largest image the region accepts.
func (r Region) MaxSize() int {
	if r == RegionData {
		return DataRegionSize
	}
	return CodeRegionMaxSize
}
