// Package arc packs files into a single uncompressed archive and extracts
// them again byte for byte.
//
// An archive is a text header followed by the concatenated file contents:
//
//	<file count>
//	<name 1> - <size 1>
//	<name 2> - <size 2>
//	...
//	<bytes of file 1><bytes of file 2>...
//
// Header tokens are whitespace delimited, so entry names cannot contain
// whitespace. No offsets are stored: an entry's content starts at the
// header length plus the sizes of the entries before it.
//
// Content is copied in fixed-size chunks (1024 bytes by default), so peak
// memory does not depend on file size.
//
// # Packing
//
//	res, err := arc.Pack("out.arc", []string{"a.txt", "b.bin"},
//	    arc.PackWithChunkSize(4096),
//	)
//
// # Unpacking
//
//	h, err := arc.Unpack("out.arc", arc.UnpackWithDir("restore"))
//
// Pack and Unpack abort on the first error and do not roll back: a failed
// pack may leave a truncated archive and a failed unpack may leave some
// files extracted.
package arc
