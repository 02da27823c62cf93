// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package flir

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	// Formats used for RawThermalImage.
	_ "image/png"

	_ "golang.org/x/image/tiff"
)

// RawTag is the exiftool tag containing the raw sensor frame.
const RawTag = "RawThermalImage"

// ErrNoRawImage is returned when an image has no raw sensor frame.
var ErrNoRawImage = errors.New("flir: no " + RawTag)

// ErrUnknownFormat is returned when the raw sensor frame cannot be decoded.
var ErrUnknownFormat = errors.New("flir: unknown raw image format")

// ByteOrder describes how the 16 bits samples are stored in the raw frame.
type ByteOrder uint8

// Valid values for ByteOrder.
const (
	// AsIs keeps the samples as decoded.
	AsIs ByteOrder = 0
	// Swapped swaps the two bytes of every sample. Most FLIR cameras store
	// little endian words in their PNG payload, which is big endian.
	Swapped ByteOrder = 1
)

func (b ByteOrder) String() string {
	switch b {
	case AsIs:
		return "asis"
	case Swapped:
		return "swapped"
	default:
		return fmt.Sprintf("ByteOrder(%d)", uint8(b))
	}
}

// ParseByteOrder is the reverse of ByteOrder.String().
func ParseByteOrder(s string) (ByteOrder, error) {
	switch s {
	case "", "asis":
		return AsIs, nil
	case "swapped":
		return Swapped, nil
	default:
		return AsIs, fmt.Errorf("flir: unknown byte order %q", s)
	}
}

// DecodeRaw decodes a RawThermalImage payload, either PNG or TIFF, into
// 16 bits counts.
//
// 8 bits frames keep their values, they are not rescaled to 16 bits.
func DecodeRaw(b []byte, order ByteOrder) (*image.Gray16, error) {
	if len(b) == 0 {
		return nil, ErrNoRawImage
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		if err == image.ErrFormat {
			return nil, ErrUnknownFormat
		}
		return nil, fmt.Errorf("flir: decoding %s: %w", RawTag, err)
	}
	out := toGray16(img)
	if order == Swapped {
		uint16Swap(out.Pix)
	}
	return out, nil
}

//

func toGray16(img image.Image) *image.Gray16 {
	switch t := img.(type) {
	case *image.Gray16:
		return t
	case *image.Gray:
		b := t.Bounds()
		out := image.NewGray16(b)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				out.SetGray16(x, y, color.Gray16{Y: uint16(t.GrayAt(x, y).Y)})
			}
		}
		return out
	default:
		out := image.NewGray16(img.Bounds())
		draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
		return out
	}
}

// uint16Swap swaps the bytes of each 16 bits word.
func uint16Swap(p []byte) {
	for i := 0; i+1 < len(p); i += 2 {
		p[i], p[i+1] = p[i+1], p[i]
	}
}
