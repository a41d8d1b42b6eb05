// Copyright 2025 The exifdump authors
// SPDX-License-Identifier: MIT

// Package exifdump decodes the Exif metadata embedded in a JPEG file's
// APP1 segment into named, typed tag/value pairs.
//
// The decoder reads only the Exif segment at the start of the file: the
// JPEG SOI+APP1 framing, the "Exif" identifier and the TIFF region that
// follows. The TIFF region is walked directory by directory (IFD0, the
// thumbnail IFD if present, and the Exif, GPS and Interoperability
// sub-IFDs reachable through their pointer tags) and every supported
// directory entry is materialized as a Value.
package exifdump

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

var jpegExifMagic = []byte{0xff, 0xd8, 0xff, 0xe1}

const (
	exifPointer    = 0x8769
	gpsPointer     = 0x8825
	interopPointer = 0xa005
)

const (
	// Main is the namespace of IFD0, the main image directory.
	Main Namespace = iota
	// Thumbnail is the namespace of IFD1 and any further top-level directories.
	Thumbnail
	// ExifSub is the namespace of the sub-IFD referenced by the ExifIFDPointer tag.
	ExifSub
	// GPS is the namespace of the sub-IFD referenced by the GPSInfoIFDPointer tag.
	GPS
	// Interop is the namespace of the sub-IFD referenced by the
	// InteroperabilityIFDPointer tag inside the Exif sub-IFD.
	Interop
)

// Namespace identifies which tag-name table a directory should be
// rendered against.
type Namespace int

func (n Namespace) String() string {
	switch n {
	case Main:
		return "Main"
	case Thumbnail:
		return "Thumbnail"
	case ExifSub:
		return "ExifSub"
	case GPS:
		return "GPS"
	case Interop:
		return "Interop"
	default:
		return fmt.Sprintf("Namespace(%d)", int(n))
	}
}

// TagNames returns the id-to-name table for the namespace.
// The Exif sub-IFD shares the main table.
func (n Namespace) TagNames() TagNames {
	switch n {
	case GPS:
		return TagNamesGPS
	case Interop:
		return TagNamesInterop
	default:
		return TagNamesMain
	}
}

// HandleTagFunc is the function that is called for each decoded tag.
type HandleTagFunc func(info TagInfo) error

// TagInfo contains information about one decoded tag.
type TagInfo struct {
	// The namespace of the directory the tag was found in.
	Namespace Namespace
	// The raw tag id.
	ID uint16
	// The resolved tag name, or "0x%04X" if the id is not in the
	// namespace's table.
	Name string
	// The TIFF type code of the entry.
	Type TypeCode
	// The decoded value.
	Value Value
}

// Options contains the options for the Decode function.
type Options struct {
	// The Reader (typically a *os.File) to read the Exif segment from.
	// Only the segment itself is consumed; the rest of the stream is
	// left untouched.
	R io.Reader

	// If set, the decoder skips the HandleTag callback for tags in which
	// this function returns false. The tag is still part of the Result.
	ShouldHandleTag func(tag TagInfo) bool

	// The function to call for each tag, in wire order.
	HandleTag HandleTagFunc

	// Warnf will be called for each warning, e.g. a dropped entry with
	// an unsupported type code.
	Warnf func(string, ...any)

	// LimitIFDs is the maximum number of top-level directories to follow
	// in the next-IFD chain before the chain is considered malformed.
	// Default value is 32.
	LimitIFDs int

	// LimitTagSize is the maximum size in bytes of a tag value to read.
	// Tag values larger than this will be skipped without notice.
	// Default value is 10000.
	LimitTagSize uint32
}

// IFD is one decoded image file directory.
type IFD struct {
	Namespace Namespace
	// Offset of the directory relative to the start of the TIFF region.
	Offset uint32
	// Entries in wire order. Entries with unsupported type codes are
	// not included.
	Entries []Entry
}

// Result contains the decoded directories of one Exif segment, in the
// order they were walked: IFD0, its Exif/Interoperability/GPS sub-IFDs,
// then any further top-level directories.
type Result struct {
	// ByteOrder of the TIFF region.
	ByteOrder binary.ByteOrder
	// SegmentLength is the APP1 segment length as declared in the JPEG
	// length field (including the two length bytes).
	SegmentLength int
	IFDs          []IFD
}

// Decode reads the Exif segment from opts.R and decodes its directories.
//
// On a structural decode error the directories decoded so far are
// returned together with the error.
func Decode(opts Options) (result *Result, err error) {
	defer func() {
		err2 := errFromRecover(recover())
		if err == nil {
			err = err2
		}
	}()

	if opts.R == nil {
		return nil, fmt.Errorf("no reader provided")
	}
	if opts.ShouldHandleTag == nil {
		opts.ShouldHandleTag = func(TagInfo) bool { return true }
	}
	if opts.HandleTag == nil {
		opts.HandleTag = func(TagInfo) error { return nil }
	}
	if opts.Warnf == nil {
		opts.Warnf = func(string, ...any) {}
	}

	const (
		defaultLimitIFDs    = 32
		defaultLimitTagSize = 10000
	)

	if opts.LimitIFDs == 0 {
		opts.LimitIFDs = defaultLimitIFDs
	}
	if opts.LimitTagSize == 0 {
		opts.LimitTagSize = defaultLimitTagSize
	}

	// SOI+APP1 marker, segment length, "Exif\0\0".
	header := make([]byte, 12)
	if _, err := io.ReadFull(opts.R, header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotExif, err)
	}
	if !bytes.Equal(header[:4], jpegExifMagic) || !bytes.Equal(header[6:10], []byte("Exif")) {
		return nil, ErrNotExif
	}

	// The length field includes its own two bytes; the "Exif\0\0"
	// identifier accounts for the other six already read.
	segLen := int(binary.BigEndian.Uint16(header[4:6]))
	if segLen < 8 {
		return nil, fmt.Errorf("%w: segment length %d too short", ErrNotExif, segLen)
	}
	tiffRegion := make([]byte, segLen-8)
	if _, err := io.ReadFull(opts.R, tiffRegion); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotExif, err)
	}

	buf, err := newTIFFBuffer(tiffRegion)
	if err != nil {
		return nil, err
	}

	result = &Result{
		ByteOrder:     buf.byteOrder,
		SegmentLength: segLen,
	}

	d := &segmentDecoder{
		buf:    buf,
		opts:   opts,
		result: result,
	}

	if err := d.decode(); err != nil {
		if err == ErrStopWalking {
			return result, nil
		}
		return result, err
	}

	return result, nil
}

func errFromRecover(r any) error {
	if r == nil {
		return nil
	}
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("unknown panic: %v", r)
}

type segmentDecoder struct {
	buf    *tiffBuffer
	opts   Options
	result *Result
}

func (d *segmentDecoder) decode() error {
	offsets, err := d.buf.listIFDs(d.opts.LimitIFDs)
	if err != nil {
		return err
	}

	for i, offset := range offsets {
		ns := Main
		if i > 0 {
			ns = Thumbnail
		}
		ifd, err := d.decodeIFD(ns, offset)
		if err != nil {
			return err
		}

		// The Exif and GPS pointers are independent branches; the
		// Interoperability pointer only ever appears inside the Exif
		// sub-IFD. The format defines no deeper nesting.
		if exifOffset, ok := ifd.pointerTo(exifPointer); ok {
			sub, err := d.decodeIFD(ExifSub, exifOffset)
			if err != nil {
				return err
			}
			if interopOffset, ok := sub.pointerTo(interopPointer); ok {
				if _, err := d.decodeIFD(Interop, interopOffset); err != nil {
					return err
				}
			}
		}
		if gpsOffset, ok := ifd.pointerTo(gpsPointer); ok {
			if _, err := d.decodeIFD(GPS, gpsOffset); err != nil {
				return err
			}
		}
	}

	return nil
}

// decodeIFD decodes the directory at offset, appends it to the result
// and delivers its tags to the HandleTag callback.
func (d *segmentDecoder) decodeIFD(ns Namespace, offset uint32) (IFD, error) {
	ifd := IFD{Namespace: ns, Offset: offset}

	n, err := d.buf.entryCount(offset)
	if err != nil {
		return ifd, err
	}

	names := ns.TagNames()

	for i := uint32(0); i < uint32(n); i++ {
		entryOffset := offset + 2 + 12*i
		entry, ok, err := d.buf.decodeEntry(entryOffset, d.opts.LimitTagSize)
		if err != nil {
			return ifd, err
		}
		if !ok {
			d.opts.Warnf("exifdump: dropped entry at offset %d", entryOffset)
			continue
		}
		ifd.Entries = append(ifd.Entries, entry)

		info := TagInfo{
			Namespace: ns,
			ID:        entry.Tag,
			Name:      names.Name(entry.Tag),
			Type:      entry.Type,
			Value:     entry.Value,
		}
		if !d.opts.ShouldHandleTag(info) {
			continue
		}
		if err := d.opts.HandleTag(info); err != nil {
			return ifd, err
		}
	}

	d.result.IFDs = append(d.result.IFDs, ifd)
	return ifd, nil
}

// pointerTo returns the offset stored in the given pointer tag, if the
// directory has it with a usable value.
func (f IFD) pointerTo(tag uint16) (uint32, bool) {
	for _, e := range f.Entries {
		if e.Tag != tag {
			continue
		}
		nums, ok := e.Value.(Numbers)
		if !ok || len(nums) == 0 {
			return 0, false
		}
		if nums[0] <= 0 {
			return 0, false
		}
		return uint32(nums[0]), true
	}
	return 0, false
}
