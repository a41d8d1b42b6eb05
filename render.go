// Copyright 2025 The exifdump authors
// SPDX-License-Identifier: MIT

package exifdump

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/japanese"
	xunicode "golang.org/x/text/encoding/unicode"
)

// FormatEntry renders one entry as "Name(T)=value", e.g.
// "ImageWidth(L)=[800]". The second return value is false when the
// value cannot be rendered; such entries should be skipped.
func FormatEntry(names TagNames, e Entry) (string, bool) {
	var repr string
	switch v := e.Value.(type) {
	case Text:
		repr = v.String()
	case Numbers:
		repr = v.String()
	case Rationals:
		repr = v.String()
	default:
		return "", false
	}
	return fmt.Sprintf("%s(%s)=%s", names.Name(e.Tag), e.Type.Abbrev(), repr), true
}

// UserComment character code prefixes, 8 bytes each.
var (
	userCommentASCII     = []byte("ASCII\x00\x00\x00")
	userCommentJIS       = []byte("JIS\x00\x00\x00\x00\x00")
	userCommentUnicode   = []byte("UNICODE\x00")
	userCommentUndefined = make([]byte, 8)
)

// FormatUserComment decodes a UserComment value into a printable
// string. The first 8 bytes of the comment name its character code;
// UNICODE comments are UCS-2 in the byte order of the surrounding TIFF
// region, JIS comments are ISO-2022-JP.
func FormatUserComment(byteOrder binary.ByteOrder, v Value) string {
	nums, ok := v.(Numbers)
	if !ok {
		// Some writers store the comment as Ascii instead of Undefined.
		if t, ok := v.(Text); ok {
			return printableString(string(t))
		}
		return ""
	}

	b := make([]byte, len(nums))
	for i, n := range nums {
		b[i] = byte(n)
	}
	if len(b) < 8 {
		return printableString(string(b))
	}

	code, payload := b[:8], b[8:]
	switch {
	case bytes.Equal(code, userCommentASCII), bytes.Equal(code, userCommentUndefined):
		return printableString(string(payload))
	case bytes.Equal(code, userCommentUnicode):
		endianness := xunicode.BigEndian
		if byteOrder == binary.LittleEndian {
			endianness = xunicode.LittleEndian
		}
		dec := xunicode.UTF16(endianness, xunicode.IgnoreBOM).NewDecoder()
		decoded, err := dec.Bytes(payload)
		if err != nil {
			return printableString(string(payload))
		}
		return printableString(string(decoded))
	case bytes.Equal(code, userCommentJIS):
		decoded, err := japanese.ISO2022JP.NewDecoder().Bytes(payload)
		if err != nil {
			return printableString(string(payload))
		}
		return printableString(string(decoded))
	default:
		return printableString(string(b))
	}
}

func printableString(s string) string {
	ss := strings.Map(func(r rune) rune {
		if unicode.IsGraphic(r) {
			return r
		}
		return -1
	}, s)

	return strings.TrimSpace(ss)
}
