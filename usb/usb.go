// Package usb opens the CH559 bootloader on the USB bus and exchanges
// request/response packets over its bulk endpoint pair.
package usb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/gousb"

	"github.com/ch55x-tools/ch559flash/protocol"
)

// DefaultTimeout bounds each bulk transfer.
const DefaultTimeout = time.Second

// Endpoints is the bulk endpoint pair found on the bootloader interface.
type Endpoints struct {
	In  gousb.EndpointAddress
	Out gousb.EndpointAddress
}

type inEndpoint interface {
	ReadContext(ctx context.Context, buf []byte) (int, error)
}

type outEndpoint interface {
	WriteContext(ctx context.Context, buf []byte) (int, error)
}

// Device is a claimed bootloader interface. It is not safe for concurrent use.
type Device struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface

	in        inEndpoint
	out       outEndpoint
	endpoints Endpoints
	timeout   time.Duration
}

// Option configures Open.
type Option func(*Device)

// WithTimeout sets the per-transfer timeout. Non-positive values are ignored.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Device) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// Open finds the device with the given IDs, discovers its bulk endpoints on
// the first interface of the active configuration and claims it. Everything
// acquired so far is released when a step fails.
func Open(vid, pid gousb.ID, opts ...Option) (*Device, error) {
	d := &Device{ctx: gousb.NewContext(), timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(d)
	}

	if err := d.open(vid, pid); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Device) open(vid, pid gousb.ID) error {
	dev, err := d.ctx.OpenDeviceWithVIDPID(vid, pid)
	if err != nil {
		return &protocol.Error{Kind: protocol.DeviceNotFound, Err: err}
	}
	if dev == nil {
		return &protocol.Error{
			Kind:   protocol.DeviceNotFound,
			Detail: fmt.Sprintf("no device matching %s:%s", vid, pid),
		}
	}
	d.dev = dev

	// Not every platform has a kernel driver to detach.
	_ = dev.SetAutoDetach(true)

	num, err := dev.ActiveConfigNum()
	if err != nil {
		return &protocol.Error{Kind: protocol.ConfigurationUnavailable, Err: err}
	}
	desc, ok := dev.Desc.Configs[num]
	if !ok {
		return &protocol.Error{
			Kind:   protocol.ConfigurationUnavailable,
			Detail: fmt.Sprintf("no descriptor for configuration %d", num),
		}
	}

	setting, err := FirstSetting(desc)
	if err != nil {
		return err
	}

	in, out, err := DiscoverEndpoints(setting)
	if err != nil {
		return err
	}

	d.cfg, err = dev.Config(num)
	if err != nil {
		return &protocol.Error{Kind: protocol.ActivateConfigurationFailed, Err: err}
	}
	d.intf, err = d.cfg.Interface(setting.Number, setting.Alternate)
	if err != nil {
		return &protocol.Error{Kind: protocol.ClaimInterfaceFailed, Err: err}
	}

	ie, err := d.intf.InEndpoint(in.Number)
	if err != nil {
		return &protocol.Error{Kind: protocol.EndpointDiscoveryFailed, Err: err}
	}
	oe, err := d.intf.OutEndpoint(out.Number)
	if err != nil {
		return &protocol.Error{Kind: protocol.EndpointDiscoveryFailed, Err: err}
	}

	d.in, d.out = ie, oe
	d.endpoints = Endpoints{In: in.Address, Out: out.Address}
	return nil
}

// FirstSetting returns the first alternate setting of the first interface.
func FirstSetting(desc gousb.ConfigDesc) (gousb.InterfaceSetting, error) {
	if len(desc.Interfaces) == 0 {
		return gousb.InterfaceSetting{}, &protocol.Error{
			Kind:   protocol.InterfaceUnavailable,
			Detail: fmt.Sprintf("configuration %d has no interfaces", desc.Number),
		}
	}
	intf := desc.Interfaces[0]
	if len(intf.AltSettings) == 0 {
		return gousb.InterfaceSetting{}, &protocol.Error{
			Kind:   protocol.InterfaceUnavailable,
			Detail: fmt.Sprintf("interface %d has no settings", intf.Number),
		}
	}
	return intf.AltSettings[0], nil
}

// DiscoverEndpoints picks the first IN and the first OUT endpoint of setting,
// in address order. Both must exist and both must be bulk endpoints.
func DiscoverEndpoints(setting gousb.InterfaceSetting) (in, out gousb.EndpointDesc, err error) {
	addrs := make([]gousb.EndpointAddress, 0, len(setting.Endpoints))
	for addr := range setting.Endpoints {
		addrs = append(addrs, addr)
	}
	slices.Sort(addrs)

	var haveIn, haveOut bool
	for _, addr := range addrs {
		ep := setting.Endpoints[addr]
		switch {
		case ep.Direction == gousb.EndpointDirectionIn && !haveIn:
			in, haveIn = ep, true
		case ep.Direction == gousb.EndpointDirectionOut && !haveOut:
			out, haveOut = ep, true
		}
	}

	switch {
	case !haveIn:
		err = &protocol.Error{Kind: protocol.EndpointDiscoveryFailed, Detail: "no IN endpoint"}
	case !haveOut:
		err = &protocol.Error{Kind: protocol.EndpointDiscoveryFailed, Detail: "no OUT endpoint"}
	case in.TransferType != gousb.TransferTypeBulk:
		err = &protocol.Error{
			Kind:   protocol.EndpointDiscoveryFailed,
			Detail: fmt.Sprintf("IN endpoint %s is %s", in.Address, in.TransferType),
		}
	case out.TransferType != gousb.TransferTypeBulk:
		err = &protocol.Error{
			Kind:   protocol.EndpointDiscoveryFailed,
			Detail: fmt.Sprintf("OUT endpoint %s is %s", out.Address, out.TransferType),
		}
	}
	if err != nil {
		return gousb.EndpointDesc{}, gousb.EndpointDesc{}, err
	}
	return in, out, nil
}

// Endpoints returns the endpoint pair in use.
func (d *Device) Endpoints() Endpoints {
	return d.endpoints
}

// Exchange writes request as one bulk OUT transfer and reads exactly
// responseLen bytes back. Each direction gets its own timeout. There are no
// retries.
func (d *Device) Exchange(ctx context.Context, request []byte, responseLen int) ([]byte, error) {
	wctx, cancel := context.WithTimeout(ctx, d.timeout)
	n, err := d.out.WriteContext(wctx, request)
	cancel()
	if err != nil {
		return nil, &protocol.Error{Kind: protocol.TransportWriteFailed, Err: err}
	}
	if n != len(request) {
		return nil, &protocol.Error{
			Kind:   protocol.TransportWriteShort,
			Detail: fmt.Sprintf("wrote %d of %d bytes", n, len(request)),
		}
	}

	response := make([]byte, responseLen)
	rctx, cancel := context.WithTimeout(ctx, d.timeout)
	n, err = d.in.ReadContext(rctx, response)
	cancel()
	if err != nil {
		return nil, &protocol.Error{Kind: protocol.TransportReadFailed, Err: err}
	}
	if n != responseLen {
		return nil, &protocol.Error{
			Kind:   protocol.TransportReadFailed,
			Detail: fmt.Sprintf("read %d of %d bytes", n, responseLen),
			Err:    io.ErrUnexpectedEOF,
		}
	}
	return response, nil
}

// Close releases the interface, configuration, device and USB context.
func (d *Device) Close() error {
	var errs []error
	if d.intf != nil {
		d.intf.Close()
		d.intf = nil
	}
	if d.cfg != nil {
		errs = append(errs, d.cfg.Close())
		d.cfg = nil
	}
	if d.dev != nil {
		errs = append(errs, d.dev.Close())
		d.dev = nil
	}
	if d.ctx != nil {
		errs = append(errs, d.ctx.Close())
		d.ctx = nil
	}
	return errors.Join(errs...)
}
