// Package image provides the firmware source for flash writes and verifies.
//
// # Image Format
//
// CH559 images are raw flat binaries: byte N of the file is programmed at
// region offset N. There is no header, address record or checksum. Code
// images hold at most 0xF400 bytes; data images hold exactly 0x400 bytes
// unless the unused tail is generated (fullfill mode).
//
// # Usage
//
//	img, err := image.Open("firmware.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer img.Close()
//	fmt.Printf("%d bytes\n", img.Size())
//
// Images can also be built from memory, which is handy in tests:
//
//	img := image.FromBytes(data)
package image
