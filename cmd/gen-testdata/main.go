// Copyright 2026 The arc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// gen-testdata writes a small archive file with a known set of fields,
// for exercising arcdump and the mapped-container paths by hand.
package main

import (
	"flag"
	"log"

	"github.com/stablebytes/arc/arcfile"
	"github.com/stablebytes/arc/flatrec"
)

var (
	outPath  = flag.String("o", "testdata.arc", "path to write the archive file to")
	compress = flag.Bool("compress", false, "store the archive zstd-compressed")
)

func main() {
	flag.Parse()

	b := flatrec.NewBuilder()
	b.AddUint8(1, 4)
	b.AddUint64(2, 5)
	b.AddInt64(3, -12345)
	b.AddFloat64(4, 2.718281828)
	if err := b.AddString(5, "hello, world"); err != nil {
		log.Fatalf("AddString: %s", err)
	}
	if err := b.AddBytes(6, []byte{0xde, 0xad, 0xbe, 0xef}); err != nil {
		log.Fatalf("AddBytes: %s", err)
	}
	if err := b.AddUint64s(7, []uint64{1, 1, 2, 3, 5, 8, 13}); err != nil {
		log.Fatalf("AddUint64s: %s", err)
	}

	archived, err := b.Finish()
	if err != nil {
		log.Fatalf("Finish: %s", err)
	}

	if err := arcfile.Create(*outPath, archived, arcfile.Options{Compress: *compress}); err != nil {
		log.Fatalf("arcfile.Create(%s): %s", *outPath, err)
	}
	log.Printf("wrote %d archived bytes to %s", len(archived), *outPath)
}
