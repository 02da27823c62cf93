// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package flir

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

func gray16() *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.SetGray16(x, y, color.Gray16{Y: uint16(0x1F00 + y*4 + x)})
		}
	}
	return img
}

func TestDecodeRawPNG(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, png.Encode(&b, gray16()))
	img, err := DecodeRaw(b.Bytes(), AsIs)
	require.NoError(t, err)
	assert.Equal(t, gray16().Pix, img.Pix)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
}

func TestDecodeRawTIFF(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, tiff.Encode(&b, gray16(), nil))
	img, err := DecodeRaw(b.Bytes(), AsIs)
	require.NoError(t, err)
	assert.Equal(t, gray16().Pix, img.Pix)
}

func TestDecodeRawSwapped(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, png.Encode(&b, gray16()))
	img, err := DecodeRaw(b.Bytes(), Swapped)
	require.NoError(t, err)
	// 0x1F00 becomes 0x001F.
	assert.Equal(t, uint16(0x001F), img.Gray16At(0, 0).Y)
	assert.Equal(t, uint16(0x0B1F), img.Gray16At(3, 2).Y)
}

func TestDecodeRaw8Bits(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 1))
	src.Pix[0] = 10
	src.Pix[1] = 200
	var b bytes.Buffer
	require.NoError(t, png.Encode(&b, src))
	img, err := DecodeRaw(b.Bytes(), AsIs)
	require.NoError(t, err)
	assert.Equal(t, uint16(10), img.Gray16At(0, 0).Y)
	assert.Equal(t, uint16(200), img.Gray16At(1, 0).Y)
}

func TestDecodeRawErrors(t *testing.T) {
	_, err := DecodeRaw(nil, AsIs)
	assert.True(t, errors.Is(err, ErrNoRawImage))
	_, err = DecodeRaw([]byte("not an image"), AsIs)
	assert.True(t, errors.Is(err, ErrUnknownFormat))
	_, err = DecodeRaw([]byte("\x89PNG\r\n\x1a\ntruncated"), AsIs)
	assert.Error(t, err)
}

func TestByteOrder(t *testing.T) {
	for _, o := range []ByteOrder{AsIs, Swapped} {
		got, err := ParseByteOrder(o.String())
		require.NoError(t, err)
		assert.Equal(t, o, got)
	}
	o, err := ParseByteOrder("")
	require.NoError(t, err)
	assert.Equal(t, AsIs, o)
	_, err = ParseByteOrder("middle")
	assert.Error(t, err)
}
