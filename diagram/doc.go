// Package diagram holds persistence diagrams in the units of the input grid
// and their binary representations.
//
// # Exchange Format
//
// WriteTo and ReadFrom speak the DIPHA persistence diagram format, little
// endian:
//
//	int64   magic      8067171840
//	int64   file type  2
//	int64   pair count n
//	n × { int64 dim, float64 birth, float64 death }
//
// Essential classes store dim as -dim-1 and a zero death.
//
// # Compressed Envelope
//
// Encode wraps the DIPHA bytes in a small block envelope that is optionally
// compressed with LZ4 or ZSTD, for archival in blob stores:
//
//	uint8   compression type
//	uint32  uncompressed size
//	uint32  compressed size (0 = stored uncompressed)
//	...     payload
package diagram
