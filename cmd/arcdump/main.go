// Copyright 2026 The arc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// arcdump validates an archive file and prints its fields.  The record
// field table is self-describing, so no schema is needed.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/stablebytes/arc/arcfile"
	"github.com/stablebytes/arc/flatrec"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s FILE\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	f, err := arcfile.Open(path)
	if err != nil {
		log.Fatalf("arcfile.Open(%s): %s", path, err)
	}
	defer func() { _ = f.Close() }()

	fields, err := flatrec.Inspect(f.Bytes())
	if err != nil {
		log.Fatalf("%s: invalid archive: %s", path, err)
	}

	how := "mapped"
	if !f.Mapped() {
		how = "decompressed"
	}
	fmt.Printf("%s: %d fields (%s, %d bytes)\n", path, len(fields), how, len(f.Bytes()))

	r := flatrec.View(f.Bytes())
	for _, fd := range fields {
		switch fd.Kind {
		case flatrec.KindUint8:
			fmt.Printf("  %5d  %-8s %d\n", fd.Tag, fd.Kind, r.Uint8(fd.Tag))
		case flatrec.KindUint16:
			fmt.Printf("  %5d  %-8s %d\n", fd.Tag, fd.Kind, r.Uint16(fd.Tag))
		case flatrec.KindUint32:
			fmt.Printf("  %5d  %-8s %d\n", fd.Tag, fd.Kind, r.Uint32(fd.Tag))
		case flatrec.KindUint64:
			fmt.Printf("  %5d  %-8s %d\n", fd.Tag, fd.Kind, r.Uint64(fd.Tag))
		case flatrec.KindInt64:
			fmt.Printf("  %5d  %-8s %d\n", fd.Tag, fd.Kind, r.Int64(fd.Tag))
		case flatrec.KindFloat64:
			fmt.Printf("  %5d  %-8s %g\n", fd.Tag, fd.Kind, r.Float64(fd.Tag))
		case flatrec.KindBytes:
			fmt.Printf("  %5d  %-8s %x\n", fd.Tag, fd.Kind, r.Bytes(fd.Tag))
		case flatrec.KindString:
			fmt.Printf("  %5d  %-8s %q\n", fd.Tag, fd.Kind, r.Text(fd.Tag))
		case flatrec.KindUint32Slice:
			s := r.Uint32s(fd.Tag)
			fmt.Printf("  %5d  %-8s (%d elements)\n", fd.Tag, fd.Kind, s.Len())
		case flatrec.KindUint64Slice:
			s := r.Uint64s(fd.Tag)
			fmt.Printf("  %5d  %-8s (%d elements)\n", fd.Tag, fd.Kind, s.Len())
		}
	}
}
