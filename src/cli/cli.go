// Package cli is the png2pnm command line: argument parsing, file handling
// and the mapping from conversion errors to exit codes.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/KuratZero/c-png-to-pnm/src/composite"
	"github.com/KuratZero/c-png-to-pnm/src/config"
	"github.com/KuratZero/c-png-to-pnm/src/convert"
	"github.com/KuratZero/c-png-to-pnm/src/logging"
	"github.com/KuratZero/c-png-to-pnm/src/oops"
	"github.com/KuratZero/c-png-to-pnm/src/pngerr"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess         = 0
	ExitCannotOpen      = 1
	ExitOutOfMemory     = 2
	ExitInvalidData     = 3
	ExitInvalidArgument = 4
	ExitUnsupported     = 5
	ExitUnknown         = 6
)

type flags struct {
	LogLevel  string
	MaxMemory uint64
	CRC       string
}

func defaultFlags() flags {
	return flags{
		LogLevel:  config.Config.LogLevel.String(),
		MaxMemory: config.Config.MaxAllocBytes,
		CRC:       string(config.Config.CRC),
	}
}

var opts = defaultFlags()

var RootCommand = &cobra.Command{
	Use:   "png2pnm <input.png> <output.pnm> [X | R G B]",
	Short: "Convert an 8-bit PNG image to PGM or PPM",
	Long: `Convert an 8-bit, non-interlaced PNG image to a binary PGM (grayscale
images) or PPM (everything else).

Transparent pixels are blended onto a background: X or R G B if given (in
palette images a single X is a palette index), otherwise the image's bKGD
chunk. Without either, transparency is ignored.

An input file named "chunks" is read as the chunks subcommand; pass it as
./chunks instead.`,
	Args:          ArgCounts(2, 3, 5),
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := zerolog.ParseLevel(opts.LogLevel)
		if err != nil {
			return oops.New(pngerr.ErrInvalidArgument, "bad --log-level %q", opts.LogLevel)
		}
		logging.SetLevel(level)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		crc, err := config.ParseCRCPolicy(opts.CRC)
		if err != nil {
			return oops.New(pngerr.ErrInvalidArgument, "bad --crc: %v", err)
		}
		if opts.MaxMemory == 0 {
			return oops.New(pngerr.ErrInvalidArgument, "--max-memory must be positive")
		}
		background, err := ParseBackground(args[2:])
		if err != nil {
			return err
		}

		return Run(cmd.Context(), args[0], args[1], convert.Options{
			Input:         args[0],
			Background:    background,
			CRC:           crc,
			MaxAllocBytes: opts.MaxMemory,
		})
	},
}

func init() {
	RootCommand.PersistentFlags().StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "log level (trace, debug, info, warn, error)")
	RootCommand.PersistentFlags().Uint64Var(&opts.MaxMemory, "max-memory", opts.MaxMemory, "maximum bytes a single conversion may allocate")
	RootCommand.Flags().StringVar(&opts.CRC, "crc", opts.CRC, `which chunk checksums to enforce: "all" or "critical"`)
	RootCommand.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return oops.New(pngerr.ErrInvalidArgument, "%v", err)
	})
}

// ArgCounts accepts exactly one of the given numbers of positional
// arguments.
func ArgCounts(counts ...int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		for _, n := range counts {
			if len(args) == n {
				return nil
			}
		}
		return oops.New(pngerr.ErrInvalidArgument, "got %d arguments, want one of %v", len(args), counts)
	}
}

// ParseBackground reads the optional background values, each 0..255.
func ParseBackground(args []string) (composite.Override, error) {
	if len(args) == 0 {
		return nil, nil
	}
	bg := make(composite.Override, len(args))
	for i, arg := range args {
		v, err := strconv.ParseUint(arg, 10, 8)
		if err != nil {
			return nil, oops.New(pngerr.ErrInvalidArgument, "background value %q is not an integer from 0 to 255", arg)
		}
		bg[i] = uint8(v)
	}
	if err := bg.Validate(); err != nil {
		return nil, err
	}
	return bg, nil
}

// Run converts the file at inPath. The output file is only created once the
// image has been decoded, and is removed again if writing it fails.
func Run(ctx context.Context, inPath, outPath string, opts convert.Options) error {
	in, err := os.Open(inPath)
	if err != nil {
		return oops.New(pngerr.ErrCannotOpen, "opening input: %v", err)
	}
	defer in.Close()
	if info, err := in.Stat(); err != nil || info.IsDir() {
		return oops.New(pngerr.ErrCannotOpen, "%s is not a readable file", inPath)
	}

	res, err := convert.Decode(ctx, in, opts)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return oops.New(pngerr.ErrCannotOpen, "creating output: %v", err)
	}
	err = res.Encode(out)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = oops.New(pngerr.ErrWrite, "closing output: %v", closeErr)
	}
	if err != nil {
		os.Remove(outPath)
		return err
	}
	logging.ExtractLogger(ctx).Info().
		Str("input", inPath).
		Str("output", outPath).
		Int("width", res.Width).
		Int("height", res.Height).
		Msg("Converted image")
	return nil
}

func ExitCode(err error) int {
	switch pngerr.KindOf(err) {
	case pngerr.KindNone:
		return ExitSuccess
	case pngerr.KindCannotOpen:
		return ExitCannotOpen
	case pngerr.KindAllocation:
		return ExitOutOfMemory
	case pngerr.KindStreamTruncated, pngerr.KindChecksumMismatch, pngerr.KindStructure, pngerr.KindDecompression:
		return ExitInvalidData
	case pngerr.KindInvalidArgument:
		return ExitInvalidArgument
	case pngerr.KindUnsupported:
		return ExitUnsupported
	}
	return ExitUnknown
}

// Execute runs the command line with the given arguments and returns the
// process exit code.
func Execute(args []string) (code int) {
	defer func() {
		if r := recover(); r != nil {
			logging.LogPanicValue(nil, r, "png2pnm crashed")
			code = ExitUnknown
		}
	}()

	opts = defaultFlags()
	RootCommand.SetArgs(args)
	err := RootCommand.ExecuteContext(context.Background())
	if err == nil {
		return ExitSuccess
	}

	logging.GlobalLogger().Error().Str("kind", pngerr.KindOf(err).String()).Msg(err.Error())
	logging.Debug().Err(err).Msg("error details")
	if errors.Is(err, pngerr.ErrInvalidArgument) {
		fmt.Fprintln(RootCommand.ErrOrStderr(), RootCommand.UsageString())
	}
	return ExitCode(err)
}
