// Copyright 2025 The exifdump authors
// SPDX-License-Identifier: MIT

package exifdump

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeCode represents the basic TIFF tag data types.
type TypeCode uint16

const (
	TypeByte      TypeCode = 1
	TypeAscii     TypeCode = 2
	TypeShort     TypeCode = 3
	TypeLong      TypeCode = 4
	TypeRational  TypeCode = 5
	TypeSByte     TypeCode = 6
	TypeUndefined TypeCode = 7
	TypeSShort    TypeCode = 8
	TypeSLong     TypeCode = 9
	TypeSRational TypeCode = 10
)

// Size in bytes of a single element of each type.
var typeSize = map[TypeCode]uint32{
	TypeByte:      1,
	TypeAscii:     1,
	TypeShort:     2,
	TypeLong:      4,
	TypeRational:  8,
	TypeSByte:     1,
	TypeUndefined: 1,
	TypeSShort:    2,
	TypeSLong:     4,
	TypeSRational: 8,
}

var typeNames = map[TypeCode]string{
	TypeByte:      "Byte",
	TypeAscii:     "Ascii",
	TypeShort:     "Short",
	TypeLong:      "Long",
	TypeRational:  "Rational",
	TypeSByte:     "SByte",
	TypeUndefined: "Undefined",
	TypeSShort:    "SShort",
	TypeSLong:     "SLong",
	TypeSRational: "SRational",
}

var typeAbbrevs = map[TypeCode]string{
	TypeByte:      "B",
	TypeAscii:     "A",
	TypeShort:     "S",
	TypeLong:      "L",
	TypeRational:  "R",
	TypeSByte:     "SB",
	TypeUndefined: "U",
	TypeSShort:    "SS",
	TypeSLong:     "SL",
	TypeSRational: "SR",
}

func (t TypeCode) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TypeCode(%d)", uint16(t))
}

// Abbrev returns the short form used when rendering entries,
// e.g. "L" for Long and "SR" for SRational.
func (t TypeCode) Abbrev() string {
	if s, ok := typeAbbrevs[t]; ok {
		return s
	}
	return "?"
}

// Size returns the byte width of one element, or 0 for unsupported codes.
func (t TypeCode) Size() uint32 {
	return typeSize[t]
}

func (t TypeCode) valid() bool {
	return t >= TypeByte && t <= TypeSRational
}

// signed reports whether elements are sign extended when decoded.
func (t TypeCode) signed() bool {
	return t == TypeSByte || t >= TypeSShort
}

// Rational is a numerator/denominator pair. It is kept exactly as
// stored: not reduced, never divided.
type Rational struct {
	Num int64
	Den int64
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Value is the decoded payload of a directory entry. Exactly one of
// Text, Numbers or Rationals, chosen by the entry's type code. Switches
// over Value at render time should carry a default branch that skips
// anything unknown.
type Value interface {
	fmt.Stringer
	value()
}

// Text is the payload of an Ascii entry, without the trailing NUL.
type Text string

// Numbers is the payload of an integral entry, in wire order.
// Signed types are sign extended; unsigned types never are.
type Numbers []int64

// Rationals is the payload of a Rational or SRational entry.
type Rationals []Rational

func (Text) value()      {}
func (Numbers) value()   {}
func (Rationals) value() {}

func (v Text) String() string {
	return strconv.Quote(string(v))
}

func (v Numbers) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, n := range v {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.FormatInt(n, 10))
	}
	sb.WriteByte(']')
	return sb.String()
}

func (v Rationals) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, r := range v {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(r.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// Entry is one decoded 12-byte directory entry.
type Entry struct {
	Tag   uint16
	Type  TypeCode
	Count uint32
	Value Value
}

// decodeEntry decodes the 12-byte entry at entryOffset. The second
// return value is false when the entry is dropped: an unsupported type
// code, or a value larger than limitTagSize.
func (b *tiffBuffer) decodeEntry(entryOffset, limitTagSize uint32) (Entry, bool, error) {
	tag, err := b.readInt(entryOffset, 2, false)
	if err != nil {
		return Entry{}, false, err
	}
	typeCode, err := b.readInt(entryOffset+2, 2, false)
	if err != nil {
		return Entry{}, false, err
	}

	typ := TypeCode(typeCode)
	if !typ.valid() {
		return Entry{}, false, nil
	}

	count, err := b.readInt(entryOffset+4, 4, false)
	if err != nil {
		return Entry{}, false, err
	}

	entry := Entry{
		Tag:   uint16(tag),
		Type:  typ,
		Count: uint32(count),
	}

	totalBytes := uint64(entry.Count) * uint64(typ.Size())
	if totalBytes > uint64(limitTagSize) {
		return Entry{}, false, nil
	}

	// Values up to 4 bytes are stored inline in the entry itself;
	// anything larger lives elsewhere in the region and the entry holds
	// its absolute offset.
	offset := entryOffset + 8
	if totalBytes > 4 {
		v, err := b.readInt(offset, 4, false)
		if err != nil {
			return Entry{}, false, err
		}
		offset = uint32(v)
	}

	value, err := b.decodeValue(typ, entry.Count, offset)
	if err != nil {
		return Entry{}, false, err
	}
	entry.Value = value

	return entry, true, nil
}

// decodeValue materializes count elements of the given type starting at
// offset.
func (b *tiffBuffer) decodeValue(typ TypeCode, count, offset uint32) (Value, error) {
	switch typ {
	case TypeAscii:
		// The final byte is the mandated NUL terminator. Interior NULs
		// are kept as-is.
		s, err := b.slice(offset, count)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return Text(""), nil
		}
		return Text(s[:count-1]), nil
	case TypeRational, TypeSRational:
		signed := typ.signed()
		rats := make(Rationals, 0, count)
		for i := uint32(0); i < count; i++ {
			num, err := b.readInt(offset, 4, signed)
			if err != nil {
				return nil, err
			}
			den, err := b.readInt(offset+4, 4, signed)
			if err != nil {
				return nil, err
			}
			rats = append(rats, Rational{Num: num, Den: den})
			offset += 8
		}
		return rats, nil
	default:
		signed := typ.signed()
		width := typ.Size()
		nums := make(Numbers, 0, count)
		for i := uint32(0); i < count; i++ {
			v, err := b.readInt(offset, width, signed)
			if err != nil {
				return nil, err
			}
			nums = append(nums, v)
			offset += width
		}
		return nums, nil
	}
}
