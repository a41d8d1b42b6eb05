// Copyright 2025 The exifdump authors
// SPDX-License-Identifier: MIT

package exifdump

import (
	"encoding/binary"
	"fmt"
)

const (
	byteOrderIntel    = 'I'
	byteOrderMotorola = 'M'
)

// tiffBuffer wraps the TIFF region of an Exif segment. The region is
// read-only after construction; every read is bounds checked against it.
// All offsets are relative to the start of the region.
type tiffBuffer struct {
	data      []byte
	byteOrder binary.ByteOrder
}

func newTIFFBuffer(data []byte) (*tiffBuffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty TIFF region", ErrByteOrder)
	}
	b := &tiffBuffer{data: data}
	switch data[0] {
	case byteOrderIntel:
		b.byteOrder = binary.LittleEndian
	case byteOrderMotorola:
		b.byteOrder = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrByteOrder, data[0])
	}
	return b, nil
}

// readInt decodes the length consecutive bytes at offset as a single
// integer in the buffer's byte order. With signed set, the value is sign
// extended from its most significant bit.
func (b *tiffBuffer) readInt(offset, length uint32, signed bool) (int64, error) {
	s, err := b.slice(offset, length)
	if err != nil {
		return 0, err
	}

	var v uint64
	if b.byteOrder == binary.LittleEndian {
		for i := len(s) - 1; i >= 0; i-- {
			v = v<<8 | uint64(s[i])
		}
	} else {
		for _, c := range s {
			v = v<<8 | uint64(c)
		}
	}

	if signed && length < 8 {
		msb := uint64(1) << (8*length - 1)
		if v&msb != 0 {
			v -= msb << 1
		}
	}

	return int64(v), nil
}

// slice returns the length bytes at offset without copying.
func (b *tiffBuffer) slice(offset, length uint32) ([]byte, error) {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(b.data)) {
		return nil, fmt.Errorf("%w: %d bytes at offset %d in %d-byte region",
			ErrOutOfBounds, length, offset, len(b.data))
	}
	return b.data[offset:end], nil
}

// firstIFDOffset reads the TIFF header's offset field.
func (b *tiffBuffer) firstIFDOffset() (uint32, error) {
	v, err := b.readInt(4, 4, false)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func (b *tiffBuffer) entryCount(ifd uint32) (uint16, error) {
	v, err := b.readInt(ifd, 2, false)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

// nextIFDOffset reads the next-directory offset stored immediately after
// the directory's last 12-byte entry. Zero means end of chain.
func (b *tiffBuffer) nextIFDOffset(ifd uint32) (uint32, error) {
	n, err := b.entryCount(ifd)
	if err != nil {
		return 0, err
	}
	v, err := b.readInt(ifd+2+12*uint32(n), 4, false)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// listIFDs follows the next-IFD chain from the header's first offset and
// collects each non-zero offset in order, stopping on the zero sentinel.
// The chain is capped at limit directories; a longer chain means a loop
// in the input.
func (b *tiffBuffer) listIFDs(limit int) ([]uint32, error) {
	offset, err := b.firstIFDOffset()
	if err != nil {
		return nil, err
	}

	var offsets []uint32
	for offset != 0 {
		if len(offsets) >= limit {
			return offsets, fmt.Errorf("%w: more than %d linked directories", ErrIFDChain, limit)
		}
		offsets = append(offsets, offset)
		offset, err = b.nextIFDOffset(offset)
		if err != nil {
			return offsets, err
		}
	}
	return offsets, nil
}
