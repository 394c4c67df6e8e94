// Package pnm writes binary graymaps (P5) and pixmaps (P6) with a maxval of 255.
package pnm

import (
	"bufio"
	"fmt"
	"io"

	"github.com/KuratZero/c-png-to-pnm/src/oops"
	"github.com/KuratZero/c-png-to-pnm/src/pngerr"
)

// Magic returns the format tag for an image with the given channel count.
func Magic(channels int) (string, error) {
	switch channels {
	case 1:
		return "P5", nil
	case 3:
		return "P6", nil
	}
	return "", oops.New(pngerr.ErrUnsupported, "pnm cannot hold %d channels per pixel", channels)
}

// Header returns the text header preceding the pixel data.
func Header(width, height, channels int) (string, error) {
	magic, err := Magic(channels)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s\n%d %d\n255\n", magic, width, height), nil
}

// Encode writes the header and exactly width*height*channels pixel bytes.
func Encode(w io.Writer, width, height, channels int, pixels []byte) error {
	header, err := Header(width, height, channels)
	if err != nil {
		return err
	}
	if want := width * height * channels; len(pixels) != want {
		return oops.New(pngerr.ErrWrite, "have %d pixel bytes, want %d", len(pixels), want)
	}

	bw := bufio.NewWriter(w)
	if _, err := io.WriteString(bw, header); err != nil {
		return oops.New(pngerr.ErrWrite, "writing header: %v", err)
	}
	n, err := bw.Write(pixels)
	if err != nil {
		return oops.New(pngerr.ErrWrite, "wrote %d of %d pixel bytes: %v", n, len(pixels), err)
	}
	if err := bw.Flush(); err != nil {
		return oops.New(pngerr.ErrWrite, "flushing output: %v", err)
	}
	return nil
}
