// Copyright 2025 The exifdump authors
// SPDX-License-Identifier: MIT

package exifdump_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/fosby/exifdump"
)

func FuzzDecode(f *testing.F) {
	seeds := [][]byte{
		exifJPEG(fixtureSingleEntry(binary.LittleEndian)),
		exifJPEG(fixtureSingleEntry(binary.BigEndian)),
		exifJPEG(fixtureThumbnailChain(binary.LittleEndian)),
		exifJPEG(fixtureGPS(binary.BigEndian)),
		exifJPEG(fixtureExifInterop(binary.LittleEndian)),
		exifJPEG(nil),
		{0xff, 0xd8, 0xff, 0xe1},
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input []byte) {
		res, err := exifdump.Decode(exifdump.Options{
			R:         bytes.NewReader(input),
			LimitIFDs: 8,
		})
		if err != nil {
			return
		}
		// Whatever decoded must render without panicking.
		for _, ifd := range res.IFDs {
			names := ifd.Namespace.TagNames()
			for _, e := range ifd.Entries {
				exifdump.FormatEntry(names, e)
			}
		}
	})
}
