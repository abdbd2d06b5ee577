package protocol

import (
	"encoding/binary"
	"fmt"
)

// BuildDetectCmd constructs the detect request.
//
// Request structure (21 bytes):
//
//	[A1][12][00][59][11]["MCU ISP & WCH.CN"]
func BuildDetectCmd() []byte {
	cmd := make([]byte, 0, 1+len(detectPayload))
	cmd = append(cmd, CmdDetect)
	return append(cmd, detectPayload...)
}

// BuildIdentifyCmd constructs the identify request.
//
// Request structure (5 bytes):
//
//	[A7][02][00][1F][00]
func BuildIdentifyCmd() []byte {
	cmd := make([]byte, 0, 1+len(identifyPayload))
	cmd = append(cmd, CmdIdentify)
	return append(cmd, identifyPayload...)
}

// BuildResetKeyCmd constructs the reset-key request. Every key byte is the
// checksum seed derived from the identify response.
//
// Request structure (0x33 bytes):
//
//	[A3][30][00][SEED x 0x30]
func BuildResetKeyCmd(seed byte) []byte {
	cmd := make([]byte, 3+KeySize)
	cmd[0] = CmdResetKey
	cmd[1] = KeySize
	cmd[2] = 0x00
	for i := 3; i < len(cmd); i++ {
		cmd[i] = seed
	}
	return cmd
}

// BuildEraseCodeCmd constructs the code flash erase request.
//
// Request structure:
//
//	[A4][01][00][3C]
func BuildEraseCodeCmd() []byte {
	return []byte{CmdEraseCode, 0x01, 0x00, EraseCodeBlocks}
}

// BuildEraseDataCmd constructs the data flash erase request.
//
// Request structure:
//
//	[A9][00][00][00]
func BuildEraseDataCmd() []byte {
	return []byte{CmdEraseData, 0x00, 0x00, 0x00}
}

// BuildReadDataCmd constructs a data flash read request for size bytes at
// offset, relative to the data flash base.
//
// Request structure (8 bytes):
//
//	[AB][00][00][ADDR_L][ADDR_H][00][00][LEN]
func BuildReadDataCmd(offset uint16, size int) ([]byte, error) {
	if size <= 0 || size > MaxChunkSize {
		return nil, fmt.Errorf("read size %d out of range 1-%d", size, MaxChunkSize)
	}
	cmd := make([]byte, RequestHeaderSize)
	cmd[0] = CmdReadData
	binary.LittleEndian.PutUint16(cmd[3:5], offset)
	cmd[7] = byte(size)
	return cmd, nil
}

// BuildProgramCmd constructs a write request for a chunk of region at offset.
// The payload is scrambled with chipID; see Scramble.
func BuildProgramCmd(region Region, offset uint16, data []byte, chipID byte) ([]byte, error) {
	op := byte(CmdWriteCode)
	if region == RegionData {
		op = CmdWriteData
	}
	return buildFlashCmd(op, offset, data, chipID)
}

// BuildVerifyCmd constructs a verify request for a chunk of region at offset.
// Verify addresses are physical, so data region offsets are moved up by
// DataFlashBase.
func BuildVerifyCmd(region Region, offset uint16, data []byte, chipID byte) ([]byte, error) {
	addr := offset
	if region == RegionData {
		addr += DataFlashBase
	}
	return buildFlashCmd(CmdVerify, addr, data, chipID)
}

// PaddedLength rounds a chunk length up to the scramble stride.
func PaddedLength(n int) int {
	return (n + ScrambleStride - 1) &^ (ScrambleStride - 1)
}

// buildFlashCmd lays out a write or verify request.
//
// Request structure:
//
//	[OP][LEN+5][00][ADDR_L][ADDR_H][00][00][LEN][DATA(LEN)]
//
// LEN is len(data) rounded up to 8; the tail is filled with 0xFF.
func buildFlashCmd(op byte, addr uint16, data []byte, chipID byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("data cannot be empty")
	}
	if len(data) > MaxChunkSize {
		return nil, fmt.Errorf("data length %d exceeds maximum %d bytes", len(data), MaxChunkSize)
	}

	length := PaddedLength(len(data))
	cmd := make([]byte, RequestHeaderSize, RequestHeaderSize+length)
	cmd[0] = op
	cmd[1] = byte(length + 5)
	binary.LittleEndian.PutUint16(cmd[3:5], addr)
	cmd[7] = byte(length)

	cmd = append(cmd, data...)
	for len(cmd) < RequestHeaderSize+length {
		cmd = append(cmd, 0xFF)
	}

	Scramble(cmd[RequestHeaderSize:], chipID)
	return cmd, nil
}
