package convert

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/KuratZero/c-png-to-pnm/src/composite"
	"github.com/KuratZero/c-png-to-pnm/src/config"
	"github.com/KuratZero/c-png-to-pnm/src/logging"
	"github.com/KuratZero/c-png-to-pnm/src/pngerr"
	"github.com/KuratZero/c-png-to-pnm/src/pngtest"
	pnmdec "github.com/jbuchbinder/gopnm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func convert(t *testing.T, in []byte, opts Options) (string, error) {
	t.Helper()
	var out bytes.Buffer
	_, err := Convert(context.Background(), bytes.NewReader(in), &out, opts)
	if err != nil {
		assert.Zero(t, out.Len(), "output written for a failed conversion")
	}
	return out.String(), err
}

func TestGrayscalePixel(t *testing.T) {
	in := pngtest.New().Header(1, 1, 0).ImageData([]byte{0, 0x7F}).End().Bytes()
	out, err := convert(t, in, Options{})
	require.NoError(t, err)
	assert.Equal(t, "P5\n1 1\n255\n\x7f", out)
}

func TestTrueColorKey(t *testing.T) {
	in := pngtest.New().
		Header(2, 1, 2).
		Chunk("tRNS", []byte{0, 10, 0, 20, 0, 30}).
		ImageData([]byte{0, 10, 20, 30, 40, 50, 60}).
		End().
		Bytes()

	t.Run("explicit background", func(t *testing.T) {
		out, err := convert(t, in, Options{Background: composite.Override{0, 0, 0}})
		require.NoError(t, err)
		assert.Equal(t, "P6\n2 1\n255\n\x00\x00\x00\x28\x32\x3c", out)
	})
	t.Run("no background", func(t *testing.T) {
		out, err := convert(t, in, Options{})
		require.NoError(t, err)
		assert.Equal(t, "P6\n2 1\n255\n\x0a\x14\x1e\x28\x32\x3c", out)
	})
}

func TestBackgroundChunk(t *testing.T) {
	in := pngtest.New().
		Header(2, 1, 4).
		Chunk("bKGD", []byte{0, 200}).
		ImageData([]byte{0, 100, 0, 100, 255}).
		End().
		Bytes()

	out, err := convert(t, in, Options{})
	require.NoError(t, err)
	assert.Equal(t, "P5\n2 1\n255\n\xc8\x64", out)

	// An explicit value wins over bKGD.
	out, err = convert(t, in, Options{Background: composite.Override{0}})
	require.NoError(t, err)
	assert.Equal(t, "P5\n2 1\n255\n\x00\x64", out)
}

func TestFilteredRows(t *testing.T) {
	// Sub on the first row and Up on the second reconstruct 1 2 / 3 4.
	in := pngtest.New().
		Header(2, 2, 0).
		ImageData([]byte{1, 1, 1}, []byte{2, 2, 2}).
		End().
		Bytes()
	out, err := convert(t, in, Options{})
	require.NoError(t, err)
	assert.Equal(t, "P5\n2 2\n255\n\x01\x02\x03\x04", out)
}

func TestRejects(t *testing.T) {
	row := []byte{0, 1}
	tests := []struct {
		name string
		in   []byte
		opts Options
		err  error
	}{
		{
			name: "not a png",
			in:   []byte("GIF89a and some more bytes"),
			err:  pngerr.ErrStructure,
		},
		{
			name: "truncated",
			in:   pngtest.New().Header(1, 1, 0).Bytes()[:20],
			err:  pngerr.ErrStreamTruncated,
		},
		{
			name: "trailing data",
			in:   pngtest.New().Header(1, 1, 0).ImageData(row).End().Raw([]byte{0}).Bytes(),
			err:  pngerr.ErrStructure,
		},
		{
			name: "no image data",
			in:   pngtest.New().Header(1, 1, 0).End().Bytes(),
			err:  pngerr.ErrStructure,
		},
		{
			name: "bad checksum",
			in:   pngtest.New().Header(1, 1, 0).ChunkWithCRC("IDAT", pngtest.Compress(row), 1).End().Bytes(),
			err:  pngerr.ErrChecksumMismatch,
		},
		{
			name: "16-bit",
			in:   pngtest.New().Chunk("IHDR", pngtest.HeaderData(1, 1, 16, 0, 0, 0, 0)).ImageData([]byte{0, 1, 2}).End().Bytes(),
			err:  pngerr.ErrUnsupported,
		},
		{
			name: "interlaced",
			in:   pngtest.New().Chunk("IHDR", pngtest.HeaderData(1, 1, 8, 0, 0, 0, 1)).ImageData(row).End().Bytes(),
			err:  pngerr.ErrUnsupported,
		},
		{
			name: "short image data",
			in:   pngtest.New().Header(2, 1, 0).ImageData(row).End().Bytes(),
			err:  pngerr.ErrDecompression,
		},
		{
			name: "corrupt image data",
			in:   pngtest.New().Header(1, 1, 0).Chunk("IDAT", []byte{1, 2, 3, 4}).End().Bytes(),
			err:  pngerr.ErrDecompression,
		},
		{
			name: "bad filter",
			in:   pngtest.New().Header(1, 1, 0).ImageData([]byte{5, 1}).End().Bytes(),
			err:  pngerr.ErrStructure,
		},
		{
			name: "palette index out of range",
			in:   pngtest.New().Header(1, 1, 3).Chunk("PLTE", []byte{1, 2, 3}).ImageData([]byte{0, 1}).End().Bytes(),
			err:  pngerr.ErrStructure,
		},
		{
			name: "bad background length",
			in:   pngtest.New().Header(1, 1, 0).ImageData(row).End().Bytes(),
			opts: Options{Background: composite.Override{1, 2}},
			err:  pngerr.ErrInvalidArgument,
		},
		{
			name: "background index out of range",
			in:   pngtest.New().Header(1, 1, 3).Chunk("PLTE", []byte{1, 2, 3}).ImageData([]byte{0, 0}).End().Bytes(),
			opts: Options{Background: composite.Override{1}},
			err:  pngerr.ErrInvalidArgument,
		},
		{
			name: "huge image",
			in:   pngtest.New().Header(0x7fffffff, 0x7fffffff, 6).ImageData(row).End().Bytes(),
			err:  pngerr.ErrAllocation,
		},
		{
			name: "over budget",
			in:   pngtest.New().Header(64, 64, 2).ImageData(row).End().Bytes(),
			opts: Options{MaxAllocBytes: 1024},
			err:  pngerr.ErrAllocation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := convert(t, tt.in, tt.opts)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestAncillaryChecksumPolicy(t *testing.T) {
	in := pngtest.New().
		Header(1, 1, 0).
		ChunkWithCRC("tEXt", []byte("Comment\x00hi"), 0).
		ImageData([]byte{0, 9}).
		End().
		Bytes()

	_, err := convert(t, in, Options{CRC: config.CRCAll})
	assert.ErrorIs(t, err, pngerr.ErrChecksumMismatch)

	out, err := convert(t, in, Options{CRC: config.CRCCritical})
	require.NoError(t, err)
	assert.Equal(t, "P5\n1 1\n255\n\x09", out)
}

func TestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := pngtest.New().Header(1, 1, 0).ImageData([]byte{0, 0}).End().Bytes()
	_, err := Decode(ctx, bytes.NewReader(in), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

// The standard library encoder produces the reference streams; the output is
// read back with a PNM decoder and compared pixel by pixel.
func TestMatchesStandardDecoder(t *testing.T) {
	bounds := image.Rect(0, 0, 23, 7)

	gray := image.NewGray(bounds)
	nrgba := image.NewNRGBA(bounds)
	palette := make(color.Palette, 40)
	for i := range palette {
		palette[i] = color.NRGBA{R: uint8(i * 6), G: uint8(255 - i), B: uint8(i * i), A: uint8(255 - i*3)}
	}
	paletted := image.NewPaletted(bounds, palette)
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			v := uint8(x*11 + y*37)
			gray.SetGray(x, y, color.Gray{Y: v})
			nrgba.SetNRGBA(x, y, color.NRGBA{R: v, G: v ^ 0x5a, B: uint8(x * y), A: uint8(y*40 + x)})
			paletted.SetColorIndex(x, y, uint8((x+y*3)%len(palette)))
		}
	}

	bg := composite.Override{30, 60, 90}
	for _, tt := range []struct {
		name     string
		img      image.Image
		channels int
	}{
		{"gray", gray, 1},
		{"nrgba", nrgba, 3},
		{"paletted", paletted, 3},
	} {
		t.Run(tt.name, func(t *testing.T) {
			var enc bytes.Buffer
			require.NoError(t, png.Encode(&enc, tt.img))
			ref, err := png.Decode(bytes.NewReader(enc.Bytes()))
			require.NoError(t, err)

			res, err := Decode(context.Background(), bytes.NewReader(enc.Bytes()), Options{Background: bg})
			require.NoError(t, err)
			require.Equal(t, tt.channels, res.Channels)

			var out bytes.Buffer
			require.NoError(t, res.Encode(&out))
			got, err := pnmdec.Decode(&out)
			require.NoError(t, err)
			require.Equal(t, bounds, got.Bounds())

			for y := 0; y < bounds.Dy(); y++ {
				for x := 0; x < bounds.Dx(); x++ {
					want := composited(ref.At(x, y), bg, tt.channels)
					r, g, b, _ := got.At(x, y).RGBA()
					have := [3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
					if !assert.Equal(t, want, have, "pixel (%d, %d)", x, y) {
						return
					}
				}
			}
		})
	}
}

func composited(c color.Color, bg composite.Override, channels int) [3]uint8 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if channels == 1 {
		return [3]uint8{n.R, n.R, n.R}
	}
	return [3]uint8{
		composite.Blend(n.A, n.R, bg[0]),
		composite.Blend(n.A, n.G, bg[1]),
		composite.Blend(n.A, n.B, bg[2]),
	}
}

func TestDecodeLogsStages(t *testing.T) {
	logging.SetLevel(zerolog.DebugLevel)
	defer logging.SetLevel(config.Config.LogLevel)

	var logs bytes.Buffer
	logger := zerolog.New(&logs)
	ctx := logging.AttachLoggerToContext(&logger, context.Background())

	in := pngtest.New().Header(1, 1, 0).Chunk("bKGD", []byte{0, 5}).ImageData([]byte{0, 1}).End().Bytes()
	_, err := Decode(ctx, bytes.NewReader(in), Options{Input: "in.png"})
	require.NoError(t, err)

	s := logs.String()
	assert.Contains(t, s, `"background":"050505"`)
	assert.Contains(t, s, `"hasBackground":true`)
	for _, stage := range []string{"readMs", "inflateMs", "defilterMs", "backgroundMs", "compositeMs", "totalMs"} {
		assert.Contains(t, s, stage)
	}
	assert.Contains(t, s, `"input":"in.png"`)
	assert.Contains(t, s, `"run":"`)
}
