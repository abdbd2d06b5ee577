package protocol

// USB identification of the CH559 mask-ROM bootloader.
const (
	// VendorID is the WCH vendor ID (0x4348)
	VendorID = 0x4348

	// ProductID is the CH55x bootloader product ID (0x55E0)
	ProductID = 0x55E0
)

// Command codes. The opcode is always the first byte of a request.
const (
	// CmdDetect announces the host tool and returns the chip family
	CmdDetect = 0xA1

	// CmdResetKey installs the session key derived from the identify response
	CmdResetKey = 0xA3

	// CmdEraseCode erases the code flash
	CmdEraseCode = 0xA4

	// CmdWriteCode programs a code flash chunk
	CmdWriteCode = 0xA5

	// CmdVerify compares a flash chunk against the payload
	CmdVerify = 0xA6

	// CmdIdentify returns the bootloader configuration block
	CmdIdentify = 0xA7

	// CmdEraseData erases the data flash
	CmdEraseData = 0xA9

	// CmdWriteData programs a data flash chunk
	CmdWriteData = 0xAA

	// CmdReadData reads a data flash chunk
	CmdReadData = 0xAB
)

// ChipIDCH559 is the chip family code the detect response carries at StatusOffset.
const ChipIDCH559 = 0x59

// StatusSuccess is the only status value that means the command succeeded.
const StatusSuccess = 0x00

// Response layout.
const (
	// StatusOffset is the position of the status (or chip id) byte in every response
	StatusOffset = 4

	// PayloadOffset is where read data starts in a read-chunk response
	PayloadOffset = 6

	// StatusResponseSize is the size of detect, reset-key, erase and write responses
	StatusResponseSize = 6

	// DetectResponseSize is the size of the detect response
	DetectResponseSize = 6

	// IdentifyResponseSize is the size of the identify response
	IdentifyResponseSize = 30
)

// Flash geometry.
const (
	// MaxChunkSize is the largest payload a single read, write or verify carries
	MaxChunkSize = 0x38

	// CodeRegionSize is the code flash size below the data region
	CodeRegionSize = 0xF000

	// CodeRegionMaxSize is the largest code image, overlapping the data region
	CodeRegionMaxSize = 0xF400

	// DataRegionSize is the fixed size of the data flash
	DataRegionSize = 0x400

	// DataFlashBase is the physical address of the data flash
	DataFlashBase = 0xF000

	// EraseCodeBlocks is the number of 1 KiB blocks erased by CmdEraseCode
	EraseCodeBlocks = 60

	// KeySize is the number of key bytes carried by CmdResetKey
	KeySize = 0x30

	// RequestHeaderSize is the header size of read, write and verify requests
	RequestHeaderSize = 8

	// ScrambleStride is the block size of the chip id XOR
	ScrambleStride = 8
)

// detectPayload follows the opcode in the detect request. It carries the
// expected chip family and the vendor tool banner "MCU ISP & WCH.CN".
var detectPayload = []byte{
	0x12, 0x00, ChipIDCH559, 0x11,
	'M', 'C', 'U', ' ', 'I', 'S', 'P', ' ', '&', ' ', 'W', 'C', 'H', '.', 'C', 'N',
}

// identifyPayload follows the opcode in the identify request.
var identifyPayload = []byte{0x02, 0x00, 0x1F, 0x00}
