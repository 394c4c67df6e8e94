// Package convert runs a whole PNG to PNM conversion: container parsing,
// decompression, defiltering, compositing and encoding.
package convert

import (
	"context"
	"io"

	"github.com/KuratZero/c-png-to-pnm/src/arena"
	"github.com/KuratZero/c-png-to-pnm/src/composite"
	"github.com/KuratZero/c-png-to-pnm/src/config"
	"github.com/KuratZero/c-png-to-pnm/src/container"
	"github.com/KuratZero/c-png-to-pnm/src/defilter"
	"github.com/KuratZero/c-png-to-pnm/src/inflate"
	"github.com/KuratZero/c-png-to-pnm/src/logging"
	"github.com/KuratZero/c-png-to-pnm/src/oops"
	"github.com/KuratZero/c-png-to-pnm/src/perf"
	"github.com/KuratZero/c-png-to-pnm/src/pnm"
	"github.com/KuratZero/c-png-to-pnm/src/utils"
	"github.com/google/uuid"
)

type Options struct {
	// Input names the source in logs.
	Input string

	Background    composite.Override
	CRC           config.CRCPolicy
	MaxAllocBytes uint64
}

// Result is a decoded image ready to be written as PNM: one byte per channel,
// rows top to bottom.
type Result struct {
	Width    int
	Height   int
	Channels int
	Pixels   []byte
}

func (res *Result) Encode(w io.Writer) error {
	return pnm.Encode(w, res.Width, res.Height, res.Channels, res.Pixels)
}

// Convert decodes r and writes the PNM to w. Nothing is written unless
// decoding succeeds.
func Convert(ctx context.Context, r io.Reader, w io.Writer, opts Options) (*Result, error) {
	res, err := Decode(ctx, r, opts)
	if err != nil {
		return nil, err
	}
	if err := res.Encode(w); err != nil {
		return nil, err
	}
	return res, nil
}

// Decode reads a PNG stream to the end and composites it into output pixels.
// Every intermediate buffer is charged to a budget of opts.MaxAllocBytes.
func Decode(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	if err := opts.Background.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.New()
	logger := logging.ExtractLogger(ctx).With().
		Str("run", runID.String()).
		Str("input", opts.Input).
		Logger()
	ctx = logging.AttachLoggerToContext(&logger, ctx)

	a := arena.New(utils.OrDefault(opts.MaxAllocBytes, config.Config.MaxAllocBytes))
	p := perf.MakeNewConversionPerf(opts.Input)
	defer func() {
		p.EndConversion()
		logger.Debug().
			EmbedObject(p).
			Uint64("allocated", a.Allocated()).
			Msg("conversion timings")
	}()

	d := decoder{
		ctx:   ctx,
		opts:  opts,
		arena: a,
		perf:  p,
	}
	res, err := d.run(r)
	if err != nil {
		logger.Debug().Err(err).Msg("conversion failed")
		return nil, err
	}
	logger.Debug().
		Int("width", res.Width).
		Int("height", res.Height).
		Int("channels", res.Channels).
		Msg("decoded image")
	return res, nil
}

type decoder struct {
	ctx   context.Context
	opts  Options
	arena *arena.Arena
	perf  *perf.ConversionPerf
}

// stage runs one step of the pipeline in its own perf block, giving up if
// the context was canceled first.
func (d *decoder) stage(name string, f func() error) error {
	if err := d.ctx.Err(); err != nil {
		return oops.New(err, "conversion canceled before %s", name)
	}
	d.perf.StartBlock(name)
	defer d.perf.EndBlock()
	return f()
}

func (d *decoder) run(r io.Reader) (*Result, error) {
	var img *container.Image
	err := d.stage("read", func() (err error) {
		img, err = container.Read(r, container.Options{
			CRC:    utils.OrDefault(d.opts.CRC, config.Config.CRC),
			Arena:  d.arena,
			Logger: logging.ExtractLogger(d.ctx),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	mode := img.Header.ColorMode

	layout, err := img.Header.Layout()
	if err != nil {
		return nil, err
	}

	var raw []byte
	err = d.stage("inflate", func() (err error) {
		raw, err = inflate.Inflate(img.Compressed, layout.Size(), d.arena)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = d.stage("defilter", func() error {
		return defilter.Defilter(raw, layout)
	})
	if err != nil {
		return nil, err
	}

	bg, hasBackground, err := composite.ResolveBackground(mode, img.Palette, d.opts.Background, img.Background)
	if err != nil {
		return nil, err
	}
	d.perf.Checkpoint("background")
	logging.ExtractLogger(d.ctx).Debug().
		Bool("hasBackground", hasBackground).
		Hex("background", bg[:]).
		Msg("resolved background")

	var pixels []byte
	err = d.stage("composite", func() (err error) {
		pixels, err = composite.Composite(composite.Input{
			Mode:          mode,
			Layout:        layout,
			Raw:           raw,
			Palette:       img.Palette,
			Transparency:  img.Transparency,
			Background:    bg,
			HasBackground: hasBackground,
		}, d.arena)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Width:    layout.Width,
		Height:   layout.Height,
		Channels: mode.OutChannels(),
		Pixels:   pixels,
	}, nil
}
