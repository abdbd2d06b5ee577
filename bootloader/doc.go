// Package bootloader programs the CH559 through its USB mask-ROM bootloader.
//
// # Overview
//
// A Session owns the connection to one bootloader and runs the command
// sequences on top of the protocol package:
//   - Detecting the chip and reading its bootloader version
//   - Authenticating with the reset-key exchange, once per session
//   - Erasing the code or data flash
//   - Reading the data flash
//   - Writing and verifying code or data images in 0x38-byte chunks
//
// # Basic Usage
//
//	s, err := bootloader.Open(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	img, err := image.Open("firmware.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer img.Close()
//
//	if err := s.EraseCode(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if err := s.Write(ctx, img, protocol.RegionCode, false); err != nil {
//	    log.Fatal(err)
//	}
//
// Verify reopens the image and compares instead of programming:
//
//	img, _ = image.Open("firmware.bin")
//	err = s.Verify(ctx, img, protocol.RegionCode, false)
//
// # Session Key
//
// Every flash operation first makes sure the session key has been reset.
// The reset-key request is sent lazily by the first operation and never again
// once it succeeds. If the device rejects the key the session stays
// unauthenticated and the next operation retries.
//
// # Fullfill
//
// In fullfill mode the unused tail of the region is programmed with
// pseudorandom bytes instead of being left erased. The bytes come from the
// fill package seeded with the session seed (see WithSeed), so a later Verify
// with the same seed reproduces them.
//
// # Configuration Options
//
//	s, err := bootloader.Open(ctx,
//	    bootloader.WithProgressCallback(progressFunc),
//	    bootloader.WithLogger(myLogger),
//	    bootloader.WithSeed(1234),
//	    bootloader.WithTimeout(2*time.Second),
//	)
//
// # Error Handling
//
// Every failure is a *protocol.Error with a Kind; match with errors.Is:
//
//	if errors.Is(err, protocol.VerifyFailed) {
//	    // flash content differs from the image
//	}
//
// Nothing is retried. A failed multi-chunk write leaves the chunks already
// sent programmed; erase and write again to recover.
//
// # Hardware Independence
//
// Connect accepts any Transport, so the same session code runs against the
// USB device (package usb) or the in-memory simulator (package simulator).
package bootloader
