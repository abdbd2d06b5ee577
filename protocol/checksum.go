package protocol

// ChecksumSeed sums the identify bytes with 8-bit wraparound.
// The result fills the reset-key request.
func ChecksumSeed(id []byte) byte {
	var sum byte
	for _, b := range id {
		sum += b
	}
	return sum
}

// Scramble XORs the last byte of every 8-byte block of payload with chipID,
// in place. Bytes at indices 7, 15, 23, ... are touched; a trailing partial
// block is left alone. Applying it twice restores the payload.
func Scramble(payload []byte, chipID byte) {
	for i := ScrambleStride - 1; i < len(payload); i += ScrambleStride {
		payload[i] ^= chipID
	}
}
