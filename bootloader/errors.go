package bootloader

import (
	"errors"
	"fmt"

	"github.com/ch55x-tools/ch559flash/protocol"
)

// atOffset records the chunk offset on a protocol error.
func atOffset(err error, offset int) error {
	var e *protocol.Error
	if errors.As(err, &e) {
		tagged := *e
		tagged.Offset = offset
		tagged.HasOffset = true
		return &tagged
	}
	return fmt.Errorf("chunk at 0x%04X: %w", offset, err)
}

func fileSizeError(format string, args ...interface{}) error {
	return &protocol.Error{Kind: protocol.InvalidFileSize, Detail: fmt.Sprintf(format, args...)}
}
