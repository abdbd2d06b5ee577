// Package simulator emulates a CH559 bootloader in memory.
//
// Device satisfies the bootloader.Transport contract. It validates requests
// the way the chip does, decodes scrambled payloads, keeps a flash image and
// answers with the documented status layout, so programming sequences can be
// exercised without hardware.
package simulator

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"github.com/ch55x-tools/ch559flash/protocol"
)

// Status codes returned for rejected commands.
const (
	StatusLocked   = 0xFE // flash command before reset-key
	StatusBadRange = 0xFD // address or length out of range
	StatusMismatch = 0xF5 // verify found different content
)

// Device is a simulated bootloader. The zero value is not usable; call New.
type Device struct {
	// ChipID is echoed by detect and reset-key
	ChipID byte

	// Version is reported by identify as MAJOR, MINOR, PATCH
	Version [3]byte

	// UniqueID is the identify bytes 22-25 the checksum seed is derived from
	UniqueID [4]byte

	// Flash is the physical flash, 0xF400 bytes; the data region is its tail
	Flash []byte

	// Faults forces a status for an opcode
	Faults map[byte]byte

	// RejectKey makes reset-key answer with a wrong chip id
	RejectKey bool

	keyReset bool
	requests [][]byte
}

// New returns an erased CH559 with bootloader version 2.40.
func New() *Device {
	d := &Device{
		ChipID:   protocol.ChipIDCH559,
		Version:  [3]byte{2, 4, 0},
		UniqueID: [4]byte{0x4A, 0x1C, 0x7E, 0x93},
		Flash:    make([]byte, protocol.CodeRegionMaxSize),
		Faults:   make(map[byte]byte),
	}
	d.erase(0, len(d.Flash))
	return d
}

// Requests returns a copy of every request received, in order.
func (d *Device) Requests() [][]byte {
	out := make([][]byte, len(d.requests))
	for i, r := range d.requests {
		out[i] = append([]byte(nil), r...)
	}
	return out
}

// CountOpcode returns how many requests started with op.
func (d *Device) CountOpcode(op byte) int {
	n := 0
	for _, r := range d.requests {
		if len(r) > 0 && r[0] == op {
			n++
		}
	}
	return n
}

// DataFlash returns the data region.
func (d *Device) DataFlash() []byte {
	return d.Flash[protocol.DataFlashBase:]
}

// KeyReset reports whether the device accepted the session key.
func (d *Device) KeyReset() bool {
	return d.keyReset
}

// Exchange handles one request and returns a response of responseLen bytes.
func (d *Device) Exchange(ctx context.Context, request []byte, responseLen int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &protocol.Error{Kind: protocol.TransportWriteFailed, Err: err}
	}
	if len(request) == 0 {
		return nil, &protocol.Error{Kind: protocol.TransportWriteFailed, Detail: "empty request"}
	}
	d.requests = append(d.requests, append([]byte(nil), request...))

	op := request[0]
	var resp []byte
	switch op {
	case protocol.CmdDetect:
		resp = d.handleDetect(request)
	case protocol.CmdIdentify:
		resp = d.handleIdentify()
	case protocol.CmdResetKey:
		resp = d.handleResetKey(request)
	case protocol.CmdEraseCode:
		resp = d.handleErase(request, 0, protocol.CodeRegionSize)
	case protocol.CmdEraseData:
		resp = d.handleErase(request, protocol.DataFlashBase, protocol.DataRegionSize)
	case protocol.CmdReadData:
		resp = d.handleReadData(request)
	case protocol.CmdWriteCode:
		resp = d.handleProgram(request, 0)
	case protocol.CmdWriteData:
		resp = d.handleProgram(request, protocol.DataFlashBase)
	case protocol.CmdVerify:
		resp = d.handleVerify(request)
	default:
		resp = status(op, StatusBadRange)
	}

	if len(resp) != responseLen {
		return nil, &protocol.Error{
			Kind:   protocol.TransportReadFailed,
			Detail: fmt.Sprintf("device sent %d bytes, host expected %d", len(resp), responseLen),
		}
	}
	return resp, nil
}

// status builds a 6-byte response.
func status(op, code byte) []byte {
	return []byte{op, 0x00, 0x02, 0x00, code, 0x00}
}

func (d *Device) fault(op byte) (byte, bool) {
	code, ok := d.Faults[op]
	return code, ok
}

func (d *Device) handleDetect(req []byte) []byte {
	if !bytes.Equal(req, protocol.BuildDetectCmd()) {
		return status(req[0], 0x00)
	}
	return []byte{protocol.CmdDetect, 0x00, 0x02, 0x00, d.ChipID, 0x11}
}

func (d *Device) handleIdentify() []byte {
	resp := make([]byte, protocol.IdentifyResponseSize)
	resp[0] = protocol.CmdIdentify
	resp[2] = protocol.IdentifyResponseSize - 4
	copy(resp[19:22], d.Version[:])
	copy(resp[22:26], d.UniqueID[:])
	return resp
}

func (d *Device) handleResetKey(req []byte) []byte {
	seed := protocol.ChecksumSeed(d.UniqueID[:])
	valid := len(req) == 3+protocol.KeySize && req[1] == protocol.KeySize
	for _, b := range req[min(3, len(req)):] {
		if b != seed {
			valid = false
		}
	}
	if !valid || d.RejectKey {
		d.keyReset = false
		return status(protocol.CmdResetKey, d.ChipID^0xFF)
	}
	d.keyReset = true
	return status(protocol.CmdResetKey, d.ChipID)
}

func (d *Device) handleErase(req []byte, base, size int) []byte {
	op := req[0]
	if code, ok := d.fault(op); ok {
		return status(op, code)
	}
	if !d.keyReset {
		return status(op, StatusLocked)
	}
	d.erase(base, size)
	return status(op, protocol.StatusSuccess)
}

func (d *Device) erase(base, size int) {
	for i := base; i < base+size; i++ {
		d.Flash[i] = 0xFF
	}
}

func (d *Device) handleReadData(req []byte) []byte {
	if len(req) != protocol.RequestHeaderSize {
		return status(req[0], StatusBadRange)
	}
	offset := int(binary.LittleEndian.Uint16(req[3:5]))
	size := int(req[7])

	resp := make([]byte, protocol.PayloadOffset+size)
	resp[0] = protocol.CmdReadData
	resp[2] = byte(size + 2)

	switch code, ok := d.fault(protocol.CmdReadData); {
	case ok:
		resp[protocol.StatusOffset] = code
	case !d.keyReset:
		resp[protocol.StatusOffset] = StatusLocked
	case size > protocol.MaxChunkSize || offset+size > protocol.DataRegionSize:
		resp[protocol.StatusOffset] = StatusBadRange
	default:
		copy(resp[protocol.PayloadOffset:], d.DataFlash()[offset:offset+size])
	}
	return resp
}

// decode checks the request header and returns the address and the
// descrambled payload.
func (d *Device) decode(req []byte) (int, []byte, bool) {
	if len(req) < protocol.RequestHeaderSize {
		return 0, nil, false
	}
	length := int(req[7])
	if length == 0 || length%protocol.ScrambleStride != 0 || length > protocol.MaxChunkSize ||
		int(req[1]) != length+5 || len(req) != protocol.RequestHeaderSize+length {
		return 0, nil, false
	}
	addr := int(binary.LittleEndian.Uint16(req[3:5]))
	payload := append([]byte(nil), req[protocol.RequestHeaderSize:]...)
	protocol.Scramble(payload, d.ChipID)
	return addr, payload, true
}

// handleProgram writes a chunk. Programming can only clear bits, like NOR flash.
func (d *Device) handleProgram(req []byte, base int) []byte {
	op := req[0]
	if code, ok := d.fault(op); ok {
		return status(op, code)
	}
	if !d.keyReset {
		return status(op, StatusLocked)
	}
	addr, payload, ok := d.decode(req)
	if !ok {
		return status(op, StatusBadRange)
	}
	start := base + addr
	if start+len(payload) > len(d.Flash) {
		return status(op, StatusBadRange)
	}
	for i, b := range payload {
		d.Flash[start+i] &= b
	}
	return status(op, protocol.StatusSuccess)
}

// handleVerify compares a chunk at a physical address.
func (d *Device) handleVerify(req []byte) []byte {
	op := req[0]
	if code, ok := d.fault(op); ok {
		return status(op, code)
	}
	if !d.keyReset {
		return status(op, StatusLocked)
	}
	addr, payload, ok := d.decode(req)
	if !ok || addr+len(payload) > len(d.Flash) {
		return status(op, StatusBadRange)
	}
	if !bytes.Equal(d.Flash[addr:addr+len(payload)], payload) {
		return status(op, StatusMismatch)
	}
	return status(op, protocol.StatusSuccess)
}
