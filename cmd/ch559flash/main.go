// Command ch559flash programs a CH559 over its USB bootloader.
//
//	ch559flash -w firmware.bin -c firmware.bin
//	ch559flash -R data.bin
//	ch559flash -W data.bin -f -s 1234
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ch55x-tools/ch559flash/bootloader"
	"github.com/ch55x-tools/ch559flash/usb"
)

// Exit codes from sysexits.h.
const (
	exitOK    = 0
	exitUsage = 64
	exitIOErr = 74
)

// exitError carries the process exit code for a failed run.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

type options struct {
	erase          bool
	writeProgram   string
	compareProgram string
	eraseData      bool
	readData       string
	writeData      string
	compareData    string
	fullfill       bool
	seed           uint64
	seedSet        bool
	timeout        time.Duration
	verbose        bool
	noProgress     bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "ch559flash",
		Short: "Program a CH559 through its USB bootloader",
		Long: `Program a CH559 through its USB bootloader.

Operations run in a fixed order: erase, write-program, compare-program,
erase-data, read-data, write-data, compare-data. Writing a region erases
it first.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.seedSet = cmd.Flags().Changed("seed")
			return run(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&opts.erase, "erase", "e", false, "Erase program area")
	f.StringVarP(&opts.writeProgram, "write-program", "w", "", "Write a specified file to program area")
	f.StringVarP(&opts.compareProgram, "compare-program", "c", "", "Compare program area with a specified file")
	f.BoolVarP(&opts.eraseData, "erase-data", "E", false, "Erase data area")
	f.StringVarP(&opts.readData, "read-data", "R", "", "Read data area to a specified file")
	f.StringVarP(&opts.writeData, "write-data", "W", "", "Write a specified file to data area")
	f.StringVarP(&opts.compareData, "compare-data", "C", "", "Compare data area with a specified file")
	f.BoolVarP(&opts.fullfill, "fullfill", "f", false, "Fullfill unused area with randomized values")
	f.Uint64VarP(&opts.seed, "seed", "s", 0, "Random seed")
	f.DurationVar(&opts.timeout, "timeout", usb.DefaultTimeout, "USB transfer timeout")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log every exchange")
	f.BoolVar(&opts.noProgress, "no-progress", false, "Do not draw progress bars")

	return cmd
}

func run(ctx context.Context, opts *options) error {
	if opts.verbose {
		log.SetLevel(log.DebugLevel)
	}

	sessionOpts := []bootloader.Option{
		bootloader.WithLogger(newLogger(log.StandardLogger())),
		bootloader.WithTimeout(opts.timeout),
	}
	if opts.seedSet {
		log.Infof("random seed: %d", opts.seed)
		sessionOpts = append(sessionOpts, bootloader.WithSeed(opts.seed))
	}
	var bar *progressSink
	if !opts.noProgress {
		bar = newProgressSink(os.Stderr)
		defer bar.Finish()
		sessionOpts = append(sessionOpts, bootloader.WithProgressCallback(bar.Update))
	}

	s, err := bootloader.Open(ctx, sessionOpts...)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}
	defer s.Close()

	for _, st := range plan(opts) {
		if err := st.run(ctx, s); err != nil {
			if bar != nil {
				bar.Finish()
			}
			return &exitError{code: exitIOErr, err: fmt.Errorf("%s: %w", st.name, err)}
		}
		if bar != nil {
			bar.Finish()
		}
		log.Infof("%s: complete", st.name)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err == nil {
		os.Exit(exitOK)
	}

	log.Error(err)
	var ee *exitError
	if errors.As(err, &ee) {
		os.Exit(ee.code)
	}
	// flag parsing and argument errors
	os.Exit(exitUsage)
}
