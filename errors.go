// Copyright 2025 The exifdump authors
// SPDX-License-Identifier: MIT

package exifdump

import "errors"

var (
	// ErrStopWalking is a sentinel error a HandleTag callback can return
	// to stop the walk early. Decode treats it as success.
	ErrStopWalking = errors.New("stop walking")

	// ErrNotExif is returned when the input does not start with the JPEG
	// SOI+APP1 marker and the "Exif" identifier. The input should be
	// skipped; it is not an error worth aborting a batch for.
	ErrNotExif = errors.New("exifdump: not an Exif file")

	// ErrByteOrder is returned when the first byte of the TIFF region is
	// neither 'I' (Intel, little-endian) nor 'M' (Motorola, big-endian).
	ErrByteOrder = errors.New("exifdump: unrecognized byte order")

	// ErrOutOfBounds is returned by any read whose end would cross the
	// end of the TIFF region.
	ErrOutOfBounds = errors.New("exifdump: read out of bounds")

	// ErrIFDChain is returned when the next-IFD chain exceeds
	// Options.LimitIFDs, which on well-formed input means a loop.
	ErrIFDChain = errors.New("exifdump: malformed IFD chain")
)
