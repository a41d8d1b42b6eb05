// Command exifdump prints the Exif metadata of the JPEG files given on
// the command line, one block per file. A file that cannot be opened or
// carries no Exif segment is reported and the batch continues.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fosby/exifdump"
)

func main() {
	log.SetFlags(0)
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s files...\n", os.Args[0])
		os.Exit(2)
	}

	for _, name := range flag.Args() {
		fmt.Printf("%s:\n", name)
		if err := dump(name); err != nil {
			log.Printf(" %v", err)
		}
	}
}

func dump(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := exifdump.Decode(exifdump.Options{R: f})
	if res == nil {
		return err
	}

	fmt.Printf(" Exif header length: %d bytes, %s format\n",
		res.SegmentLength, byteOrderName(res.ByteOrder))

	topIndex := -1
	for _, ifd := range res.IFDs {
		printHeader(ifd, &topIndex)
		names := ifd.Namespace.TagNames()
		for _, e := range ifd.Entries {
			if names.Name(e.Tag) == "UserComment" {
				fmt.Printf("  UserComment(%s)=%q\n",
					e.Type.Abbrev(), exifdump.FormatUserComment(res.ByteOrder, e.Value))
				continue
			}
			if line, ok := exifdump.FormatEntry(names, e); ok {
				fmt.Printf("  %s\n", line)
			}
		}
	}

	// A structural error aborts the walk but everything decoded before
	// it has been printed already.
	return err
}

func printHeader(ifd exifdump.IFD, topIndex *int) {
	switch ifd.Namespace {
	case exifdump.Main:
		*topIndex++
		fmt.Printf(" IFD %d (main image) at offset %d:\n", *topIndex, ifd.Offset)
	case exifdump.Thumbnail:
		*topIndex++
		if *topIndex == 1 {
			fmt.Printf(" IFD %d (thumbnail) at offset %d:\n", *topIndex, ifd.Offset)
		} else {
			fmt.Printf(" IFD %d at offset %d:\n", *topIndex, ifd.Offset)
		}
	case exifdump.ExifSub:
		fmt.Printf(" Exif SubIFD at offset %d:\n", ifd.Offset)
	case exifdump.Interop:
		fmt.Printf(" Exif Interoperability SubSubIFD at offset %d:\n", ifd.Offset)
	case exifdump.GPS:
		fmt.Printf(" GPS SubIFD at offset %d:\n", ifd.Offset)
	}
}

func byteOrderName(bo binary.ByteOrder) string {
	if bo == binary.LittleEndian {
		return "Intel"
	}
	return "Motorola"
}
