package bootloader

import (
	"time"

	"github.com/ch55x-tools/ch559flash/protocol"
	"github.com/ch55x-tools/ch559flash/usb"
)

// Config holds the session configuration.
type Config struct {
	// ProgressCallback is called after every chunk (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// Seed seeds the fullfill generator; see WithSeed
	Seed uint64

	// SeedSet reports whether Seed was given explicitly
	SeedSet bool

	// Timeout bounds each bulk transfer when the session opens the device
	Timeout time.Duration

	// VendorID and ProductID select the device Open looks for
	VendorID  uint16
	ProductID uint16
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Timeout:   usb.DefaultTimeout,
		VendorID:  protocol.VendorID,
		ProductID: protocol.ProductID,
	}
}

// Option is a functional option for configuring the Session.
type Option func(*Config)

// WithProgressCallback sets a callback function to track chunk progress.
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the session operations.
//
// Example:
//
//	s, err := bootloader.Connect(ctx, dev, bootloader.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithSeed fixes the seed of the random filler used in fullfill mode.
// Writing and later verifying a fullfill image needs the same seed.
// Without this option each session draws its own seed.
//
// Example:
//
//	s, err := bootloader.Open(ctx, bootloader.WithSeed(1234))
func WithSeed(seed uint64) Option {
	return func(c *Config) {
		c.Seed = seed
		c.SeedSet = true
	}
}

// WithTimeout sets the per-transfer timeout used by Open.
// Default is one second.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.Timeout = timeout
		}
	}
}

// WithVendorProduct overrides the USB IDs Open looks for.
func WithVendorProduct(vid, pid uint16) Option {
	return func(c *Config) {
		c.VendorID = vid
		c.ProductID = pid
	}
}
