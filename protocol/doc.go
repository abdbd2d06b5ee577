// Package protocol implements the WCH CH559 USB bootloader wire protocol.
//
// This package builds request packets and parses responses for the subset of
// the mask-ROM bootloader commands needed to program the chip: detect,
// identify, reset-key, erase, read and write/verify.
//
// # Protocol Overview
//
// Every exchange is a single bulk OUT request followed by a single bulk IN
// response. Requests start with an opcode; responses carry a status byte at
// offset 4 where zero means success:
//
//	Request:  [OP][...fixed positional fields...][DATA...]
//	Response: [OP][xx][LEN_L][LEN_H][STATUS][xx][DATA...]
//
// Read, write and verify requests share an 8-byte header:
//
//	[OP][LEN+5][00][ADDR_L][ADDR_H][00][00][LEN]
//
// # Session Key
//
// Before flash commands are accepted the host must send reset-key with 0x30
// copies of the checksum seed (the 8-bit sum of identify bytes 22-25). Write
// and verify payloads are then scrambled by XORing every 8th byte with the
// chip id:
//
//	cmd, err := protocol.BuildProgramCmd(protocol.RegionCode, 0x0000, chunk, id.ChipID)
//
// # Error Handling
//
// All failures are reported as *Error carrying a Kind. Kinds are errors
// themselves, so callers match with errors.Is:
//
//	if errors.Is(err, protocol.VerifyFailed) {
//	    // flash differs from image
//	}
package protocol
