package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ch55x-tools/ch559flash/bootloader"
	"github.com/ch55x-tools/ch559flash/image"
	"github.com/ch55x-tools/ch559flash/protocol"
)

type step struct {
	name string
	run  func(ctx context.Context, s *bootloader.Session) error
}

// plan lists the requested operations in execution order.
func plan(opts *options) []step {
	var steps []step

	if opts.erase || opts.writeProgram != "" {
		steps = append(steps, step{"erase", func(ctx context.Context, s *bootloader.Session) error {
			return s.EraseCode(ctx)
		}})
	}
	if opts.writeProgram != "" {
		steps = append(steps, transferStep("write", opts.writeProgram, protocol.RegionCode, true, opts.fullfill))
	}
	if opts.compareProgram != "" {
		steps = append(steps, transferStep("compare", opts.compareProgram, protocol.RegionCode, false, opts.fullfill))
	}
	if opts.eraseData || opts.writeData != "" {
		steps = append(steps, step{"erase_data", func(ctx context.Context, s *bootloader.Session) error {
			return s.EraseData(ctx)
		}})
	}
	if opts.readData != "" {
		path := opts.readData
		steps = append(steps, step{"read_data", func(ctx context.Context, s *bootloader.Session) error {
			return readData(ctx, s, path)
		}})
	}
	if opts.writeData != "" {
		steps = append(steps, transferStep("write_data", opts.writeData, protocol.RegionData, true, opts.fullfill))
	}
	if opts.compareData != "" {
		steps = append(steps, transferStep("compare_data", opts.compareData, protocol.RegionData, false, opts.fullfill))
	}
	return steps
}

func transferStep(name, path string, region protocol.Region, write, fullfill bool) step {
	return step{name, func(ctx context.Context, s *bootloader.Session) error {
		img, err := image.Open(path)
		if err != nil {
			return err
		}
		defer img.Close()

		if write {
			return s.Write(ctx, img, region, fullfill)
		}
		return s.Verify(ctx, img, region, fullfill)
	}}
}

func readData(ctx context.Context, s *bootloader.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := s.ReadData(ctx, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
