package bootloader

import (
	"context"
	"fmt"
	"io"

	"github.com/google/gousb"

	"github.com/ch55x-tools/ch559flash/fill"
	"github.com/ch55x-tools/ch559flash/protocol"
	"github.com/ch55x-tools/ch559flash/usb"
)

// Transport performs one request/response exchange with the bootloader.
// *usb.Device is the hardware implementation.
type Transport interface {
	Exchange(ctx context.Context, request []byte, responseLen int) ([]byte, error)
}

// Session is an identified connection to a CH559 bootloader.
// It owns the transport and the session key state.
//
// Session is not safe for concurrent use. Operations touching the same flash
// must be sequenced by the caller, e.g. EraseCode before Write.
type Session struct {
	transport Transport
	config    Config
	identity  protocol.Identity
	keyReset  bool
	seed      uint64
}

// openDevice opens the USB transport for Open. Tests replace it.
var openDevice = func(cfg Config) (Transport, error) {
	dev, err := usb.Open(gousb.ID(cfg.VendorID), gousb.ID(cfg.ProductID), usb.WithTimeout(cfg.Timeout))
	if err != nil {
		return nil, err
	}
	return dev, nil
}

// Open finds the bootloader on the USB bus, claims it and runs the detect
// handshake. The device is released if the handshake fails.
//
// Example:
//
//	s, err := bootloader.Open(ctx, bootloader.WithLogger(myLogger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
func Open(ctx context.Context, opts ...Option) (*Session, error) {
	cfg := newConfig(opts)

	dev, err := openDevice(cfg)
	if err != nil {
		return nil, err
	}

	s, err := connect(ctx, dev, cfg)
	if err != nil {
		if c, ok := dev.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, err
	}

	if d, ok := dev.(*usb.Device); ok {
		ep := d.Endpoints()
		s.logDebug("bulk endpoints", "in", ep.In.String(), "out", ep.Out.String())
	}
	return s, nil
}

// Connect runs the detect and identify handshake over transport.
// Handshake errors carry protocol.PhaseDetect or protocol.PhaseIdentify.
func Connect(ctx context.Context, transport Transport, opts ...Option) (*Session, error) {
	if transport == nil {
		panic("transport cannot be nil")
	}
	return connect(ctx, transport, newConfig(opts))
}

// newConfig applies opts to the default configuration.
func newConfig(opts []Option) Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// connect builds the session from an already resolved configuration.
func connect(ctx context.Context, transport Transport, cfg Config) (*Session, error) {
	s := &Session{
		transport: transport,
		config:    cfg,
		seed:      cfg.Seed,
	}
	if !cfg.SeedSet {
		s.seed = fill.RandomSeed()
	}

	if err := s.detect(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// detect identifies the chip and derives the checksum seed.
func (s *Session) detect(ctx context.Context) error {
	resp, err := s.exchange(ctx, protocol.BuildDetectCmd(), protocol.DetectResponseSize)
	if err != nil {
		return protocol.WithPhase(err, protocol.PhaseDetect, protocol.UnexpectedDetectResponse)
	}
	chipID, err := protocol.ParseDetectResponse(resp)
	if err != nil {
		return protocol.WithPhase(err, protocol.PhaseDetect, protocol.UnexpectedDetectResponse)
	}

	resp, err = s.exchange(ctx, protocol.BuildIdentifyCmd(), protocol.IdentifyResponseSize)
	if err != nil {
		return protocol.WithPhase(err, protocol.PhaseIdentify, protocol.IdentifyFailed)
	}
	id, err := protocol.ParseIdentifyResponse(resp)
	if err != nil {
		return protocol.WithPhase(err, protocol.PhaseIdentify, protocol.IdentifyFailed)
	}
	id.ChipID = chipID
	s.identity = *id

	s.logInfo("CH559 found",
		"bootloader", "v"+id.Version,
		"chip_id", fmt.Sprintf("0x%02X", id.ChipID),
		"checksum_seed", fmt.Sprintf("0x%02X", id.ChecksumSeed),
	)
	return nil
}

// ResetKey authenticates the session. It sends the reset-key request at most
// once per session; after a success further calls return immediately. After
// a failure the next call tries again.
func (s *Session) ResetKey(ctx context.Context) error {
	if s.keyReset {
		return nil
	}

	resp, err := s.exchange(ctx, protocol.BuildResetKeyCmd(s.identity.ChecksumSeed), protocol.StatusResponseSize)
	if err != nil {
		return err
	}
	if err := protocol.ParseResetKeyResponse(resp, s.identity.ChipID); err != nil {
		s.logError("reset key rejected", "err", err)
		return err
	}

	s.keyReset = true
	s.logDebug("key reset")
	return nil
}

// authorize is the entry check of every flash operation.
func (s *Session) authorize(ctx context.Context) error {
	return s.ResetKey(ctx)
}

// Identity returns what the handshake reported.
func (s *Session) Identity() protocol.Identity {
	return s.identity
}

// KeyReset reports whether the session key has been accepted.
func (s *Session) KeyReset() bool {
	return s.keyReset
}

// Seed returns the fullfill seed of this session.
func (s *Session) Seed() uint64 {
	return s.seed
}

// Close releases the transport if it can be closed.
func (s *Session) Close() error {
	if c, ok := s.transport.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// exchange sends one request and returns the raw response.
func (s *Session) exchange(ctx context.Context, request []byte, responseLen int) ([]byte, error) {
	s.logDebug("exchange",
		"op", fmt.Sprintf("0x%02X", request[0]),
		"request_len", len(request),
		"response_len", responseLen,
	)
	return s.transport.Exchange(ctx, request, responseLen)
}

// reportProgress calls the progress callback if configured.
func (s *Session) reportProgress(progress Progress) {
	if s.config.ProgressCallback != nil {
		s.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (s *Session) logDebug(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (s *Session) logInfo(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Info(msg, keysAndValues...)
	}
}

// logWarn logs a warning if a logger is configured.
func (s *Session) logWarn(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Warn(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (s *Session) logError(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Error(msg, keysAndValues...)
	}
}
