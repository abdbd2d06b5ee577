package bootloader

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ch55x-tools/ch559flash/fill"
	"github.com/ch55x-tools/ch559flash/image"
	"github.com/ch55x-tools/ch559flash/protocol"
)

// EraseCode erases the code flash.
func (s *Session) EraseCode(ctx context.Context) error {
	return s.erase(ctx, protocol.RegionCode, protocol.BuildEraseCodeCmd())
}

// EraseData erases the data flash. Code and data flash are erased
// independently.
func (s *Session) EraseData(ctx context.Context) error {
	return s.erase(ctx, protocol.RegionData, protocol.BuildEraseDataCmd())
}

func (s *Session) erase(ctx context.Context, region protocol.Region, cmd []byte) error {
	if err := s.authorize(ctx); err != nil {
		return err
	}

	start := time.Now()
	resp, err := s.exchange(ctx, cmd, protocol.StatusResponseSize)
	if err != nil {
		return err
	}
	if _, err := protocol.CheckStatus(resp, protocol.StatusResponseSize, protocol.EraseFailed); err != nil {
		return err
	}

	s.reportProgress(Progress{
		Phase:       PhaseErasing,
		Region:      region,
		Done:        1,
		Total:       1,
		Percentage:  100,
		ElapsedTime: time.Since(start),
	})
	s.logInfo("erase complete", "region", region.String())
	return nil
}

// ReadData copies the whole data flash to w, in offset order.
//
// Example:
//
//	f, _ := os.Create("data.bin")
//	defer f.Close()
//	err := s.ReadData(ctx, f)
func (s *Session) ReadData(ctx context.Context, w io.Writer) error {
	if err := s.authorize(ctx); err != nil {
		return err
	}

	start := time.Now()
	total := protocol.DataRegionSize
	for offset := 0; offset < total; offset += protocol.MaxChunkSize {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		size := min(protocol.MaxChunkSize, total-offset)
		cmd, err := protocol.BuildReadDataCmd(uint16(offset), size)
		if err != nil {
			return err
		}

		respLen := protocol.PayloadOffset + size
		resp, err := s.exchange(ctx, cmd, respLen)
		if err != nil {
			return atOffset(err, offset)
		}
		data, err := protocol.CheckStatus(resp, respLen, protocol.ReadFailed)
		if err != nil {
			return atOffset(err, offset)
		}

		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write output: %w", err)
		}

		s.reportProgress(Progress{
			Phase:       PhaseReading,
			Region:      protocol.RegionData,
			Done:        offset + size,
			Total:       total,
			Percentage:  float64(offset+size) / float64(total) * 100,
			ElapsedTime: time.Since(start),
		})
	}

	s.logInfo("read complete", "region", protocol.RegionData.String(), "bytes", total)
	return nil
}

// Write programs img into region. With fullfill the rest of the region is
// programmed with bytes from the session's seeded generator.
//
// A failed write leaves the chunks already sent programmed.
func (s *Session) Write(ctx context.Context, img *image.Image, region protocol.Region, fullfill bool) error {
	return s.transfer(ctx, img, transferRequest{write: true, region: region, fullfill: fullfill})
}

// Verify compares region against img. It must be called with the same
// fullfill setting, and for fullfill images the same seed, as the Write.
func (s *Session) Verify(ctx context.Context, img *image.Image, region protocol.Region, fullfill bool) error {
	return s.transfer(ctx, img, transferRequest{write: false, region: region, fullfill: fullfill})
}

type transferRequest struct {
	write    bool
	region   protocol.Region
	fullfill bool
}

// targetLength validates the image size for the region and returns the
// number of region bytes the transfer covers.
func (s *Session) targetLength(size int, req transferRequest) (int, error) {
	switch req.region {
	case protocol.RegionData:
		if !req.fullfill && size != protocol.DataRegionSize {
			return 0, fileSizeError("file size should be 0x%X, got 0x%X", protocol.DataRegionSize, size)
		}
		if size > req.region.MaxSize() {
			return 0, fileSizeError("file size 0x%X is too large for data", size)
		}
		if req.fullfill {
			return protocol.DataRegionSize, nil
		}
		return size, nil

	case protocol.RegionCode:
		if size > req.region.MaxSize() {
			return 0, fileSizeError("file size 0x%X is too large for code", size)
		}
		if size > protocol.CodeRegionSize {
			s.logWarn("code will run over data region as file size is larger than 0xF000",
				"size", fmt.Sprintf("0x%X", size))
		}
		if !req.fullfill {
			return size, nil
		}
		if size > protocol.CodeRegionSize {
			return req.region.MaxSize(), nil
		}
		return protocol.CodeRegionSize, nil

	default:
		return 0, fmt.Errorf("unknown region %d", int(req.region))
	}
}

// transfer writes or verifies img chunk by chunk.
func (s *Session) transfer(ctx context.Context, img *image.Image, req transferRequest) error {
	if img == nil {
		return fmt.Errorf("image cannot be nil")
	}

	target, err := s.targetLength(img.Size(), req)
	if err != nil {
		return err
	}

	if err := s.authorize(ctx); err != nil {
		return err
	}

	phase, failKind, build := PhaseWriting, protocol.FlashFailed, protocol.BuildProgramCmd
	if !req.write {
		phase, failKind, build = PhaseVerifying, protocol.VerifyFailed, protocol.BuildVerifyCmd
	}

	var gen *fill.Generator
	if req.fullfill {
		gen = fill.New(s.seed)
		s.logInfo("filling unused area", "seed", s.seed, "bytes", target-img.Size())
	}

	start := time.Now()
	chunk := make([]byte, protocol.MaxChunkSize)
	for offset := 0; offset < target; offset += protocol.MaxChunkSize {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		size := min(protocol.MaxChunkSize, target-offset)
		data := chunk[:size]

		readSize := min(max(img.Size()-offset, 0), size)
		if readSize > 0 {
			if err := img.ReadChunk(data[:readSize], offset); err != nil {
				return err
			}
		}
		if readSize < size {
			if gen != nil {
				_, _ = gen.Read(data[readSize:])
			} else {
				for i := readSize; i < size; i++ {
					data[i] = 0xFF
				}
			}
		}

		cmd, err := build(req.region, uint16(offset), data, s.identity.ChipID)
		if err != nil {
			return err
		}

		resp, err := s.exchange(ctx, cmd, protocol.StatusResponseSize)
		if err != nil {
			return atOffset(err, offset)
		}
		if _, err := protocol.CheckStatus(resp, protocol.StatusResponseSize, failKind); err != nil {
			return atOffset(err, offset)
		}

		s.reportProgress(Progress{
			Phase:       phase,
			Region:      req.region,
			Done:        offset + size,
			Total:       target,
			Percentage:  float64(offset+size) / float64(target) * 100,
			ElapsedTime: time.Since(start),
		})
	}

	s.logInfo(phase+" complete",
		"region", req.region.String(),
		"image", img.Name(),
		"bytes", target,
		"elapsed", time.Since(start).String(),
	)
	return nil
}
