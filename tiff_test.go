// Copyright 2025 The exifdump authors
// SPDX-License-Identifier: MIT

package exifdump

import (
	"encoding/binary"
	"testing"

	qt "github.com/frankban/quicktest"
)

// region is a test helper for laying out a synthetic TIFF region.
type region struct {
	bo   binary.ByteOrder
	data []byte
}

func newRegion(bo binary.ByteOrder, size int) *region {
	r := &region{bo: bo, data: make([]byte, size)}
	if bo == binary.LittleEndian {
		r.data[0], r.data[1] = 'I', 'I'
	} else {
		r.data[0], r.data[1] = 'M', 'M'
	}
	r.putU16(2, 42)
	return r
}

func (r *region) putU16(offset uint32, v uint16) { r.bo.PutUint16(r.data[offset:], v) }
func (r *region) putU32(offset uint32, v uint32) { r.bo.PutUint32(r.data[offset:], v) }
func (r *region) putBytes(offset uint32, b []byte) {
	copy(r.data[offset:], b)
}

func (r *region) setFirstIFD(offset uint32) { r.putU32(4, offset) }

// putEntryHeader writes the fixed part of a 12-byte directory entry.
func (r *region) putEntryHeader(offset uint32, tag uint16, typ TypeCode, count uint32) {
	r.putU16(offset, tag)
	r.putU16(offset+2, uint16(typ))
	r.putU32(offset+4, count)
}

func (r *region) buffer(c *qt.C) *tiffBuffer {
	b, err := newTIFFBuffer(r.data)
	c.Assert(err, qt.IsNil)
	return b
}

func TestNewTIFFBuffer(t *testing.T) {
	c := qt.New(t)

	b, err := newTIFFBuffer([]byte{'I', 'I', 42, 0, 8, 0, 0, 0})
	c.Assert(err, qt.IsNil)
	c.Assert(b.byteOrder, qt.Equals, binary.ByteOrder(binary.LittleEndian))

	b, err = newTIFFBuffer([]byte{'M', 'M', 0, 42, 0, 0, 0, 8})
	c.Assert(err, qt.IsNil)
	c.Assert(b.byteOrder, qt.Equals, binary.ByteOrder(binary.BigEndian))

	_, err = newTIFFBuffer([]byte{'X', 'X', 0, 42})
	c.Assert(err, qt.ErrorIs, ErrByteOrder)

	_, err = newTIFFBuffer(nil)
	c.Assert(err, qt.ErrorIs, ErrByteOrder)
}

func TestReadIntEndiannessSymmetry(t *testing.T) {
	c := qt.New(t)

	bytes8 := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}

	for _, length := range []uint32{1, 2, 4, 8} {
		be := &tiffBuffer{data: bytes8[:length], byteOrder: binary.BigEndian}

		reversed := make([]byte, length)
		for i := range reversed {
			reversed[i] = bytes8[length-1-uint32(i)]
		}
		le := &tiffBuffer{data: reversed, byteOrder: binary.LittleEndian}

		for _, signed := range []bool{false, true} {
			vbe, err := be.readInt(0, length, signed)
			c.Assert(err, qt.IsNil)
			vle, err := le.readInt(0, length, signed)
			c.Assert(err, qt.IsNil)
			c.Assert(vbe, qt.Equals, vle, qt.Commentf("length=%d signed=%v", length, signed))
		}
	}
}

func TestReadIntSignExtension(t *testing.T) {
	c := qt.New(t)

	b := &tiffBuffer{data: []byte{0xff, 0xff}, byteOrder: binary.BigEndian}

	v, err := b.readInt(0, 2, true)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, int64(-1))

	v, err = b.readInt(0, 2, false)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, int64(65535))

	b = &tiffBuffer{data: []byte{0x80}, byteOrder: binary.BigEndian}
	v, err = b.readInt(0, 1, true)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, int64(-128))

	// 8-byte reads are already two's complement in an int64.
	b = &tiffBuffer{data: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xfe}, byteOrder: binary.BigEndian}
	v, err = b.readInt(0, 8, true)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, int64(-2))
}

func TestReadIntOutOfBounds(t *testing.T) {
	c := qt.New(t)

	b := &tiffBuffer{data: []byte{1, 2, 3, 4}, byteOrder: binary.BigEndian}

	_, err := b.readInt(0, 4, false)
	c.Assert(err, qt.IsNil)

	_, err = b.readInt(1, 4, false)
	c.Assert(err, qt.ErrorIs, ErrOutOfBounds)

	_, err = b.readInt(4, 1, false)
	c.Assert(err, qt.ErrorIs, ErrOutOfBounds)

	// A huge offset must not wrap around.
	_, err = b.readInt(0xfffffffe, 4, false)
	c.Assert(err, qt.ErrorIs, ErrOutOfBounds)
}

func TestListIFDs(t *testing.T) {
	c := qt.New(t)

	// Two empty directories at 100 and 250, then the zero sentinel.
	r := newRegion(binary.LittleEndian, 300)
	r.setFirstIFD(100)
	r.putU16(100, 0)
	r.putU32(102, 250)
	r.putU16(250, 0)
	r.putU32(252, 0)

	offsets, err := r.buffer(c).listIFDs(32)
	c.Assert(err, qt.IsNil)
	c.Assert(offsets, qt.DeepEquals, []uint32{100, 250})
}

func TestListIFDsChainLoop(t *testing.T) {
	c := qt.New(t)

	// 250 points back to 100.
	r := newRegion(binary.BigEndian, 300)
	r.setFirstIFD(100)
	r.putU16(100, 0)
	r.putU32(102, 250)
	r.putU16(250, 0)
	r.putU32(252, 100)

	offsets, err := r.buffer(c).listIFDs(8)
	c.Assert(err, qt.ErrorIs, ErrIFDChain)
	c.Assert(len(offsets), qt.Equals, 8)
}

func TestListIFDsOffsetBeyondRegion(t *testing.T) {
	c := qt.New(t)

	r := newRegion(binary.LittleEndian, 16)
	r.setFirstIFD(1000)

	_, err := r.buffer(c).listIFDs(32)
	c.Assert(err, qt.ErrorIs, ErrOutOfBounds)
}
