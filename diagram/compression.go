package diagram

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the envelope codec.
type Compression uint8

const (
	// CompressionNone stores the DIPHA bytes as is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD (better ratio).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression returns the codec named by String.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return CompressionNone, fmt.Errorf("diagram: unknown compression %q", name)
	}
}

// Ext returns the file name suffix used for the codec.
func (c Compression) Ext() string {
	switch c {
	case CompressionLZ4:
		return ".lz4"
	case CompressionZSTD:
		return ".zst"
	default:
		return ""
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// envelopeHeaderSize is [type uint8][uncompressed uint32][compressed uint32].
const envelopeHeaderSize = 9

// Encode serializes d to DIPHA bytes wrapped in a compression envelope.
// Payloads that do not shrink by at least 10% are stored uncompressed.
func Encode(d *Diagram, c Compression) ([]byte, error) {
	raw, err := d.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if uint64(len(raw)) > 1<<32-1 {
		return nil, fmt.Errorf("%w: %d bytes exceed the envelope limit", ErrCorrupt, len(raw))
	}

	var packed []byte
	switch c {
	case CompressionNone:
	case CompressionLZ4:
		packed, err = compressLZ4(raw)
	case CompressionZSTD:
		packed, err = compressZSTD(raw)
	default:
		return nil, fmt.Errorf("diagram: unknown compression %d", c)
	}
	if err != nil {
		return nil, err
	}

	if len(packed) == 0 || float64(len(packed)) > float64(len(raw))*0.9 {
		out := make([]byte, envelopeHeaderSize+len(raw))
		out[0] = byte(c)
		binary.LittleEndian.PutUint32(out[1:], uint32(len(raw)))
		binary.LittleEndian.PutUint32(out[5:], 0)
		copy(out[envelopeHeaderSize:], raw)
		return out, nil
	}

	out := make([]byte, envelopeHeaderSize+len(packed))
	out[0] = byte(c)
	binary.LittleEndian.PutUint32(out[1:], uint32(len(raw)))
	binary.LittleEndian.PutUint32(out[5:], uint32(len(packed)))
	copy(out[envelopeHeaderSize:], packed)
	return out, nil
}

// Decode reverses Encode.
func Decode(data []byte) (*Diagram, error) {
	if len(data) < envelopeHeaderSize {
		return nil, fmt.Errorf("%w: envelope of %d bytes", ErrCorrupt, len(data))
	}
	c := Compression(data[0])
	rawSize := binary.LittleEndian.Uint32(data[1:])
	packedSize := binary.LittleEndian.Uint32(data[5:])
	payload := data[envelopeHeaderSize:]

	var raw []byte
	if packedSize == 0 {
		if uint32(len(payload)) != rawSize {
			return nil, fmt.Errorf("%w: stored %d bytes, header says %d", ErrCorrupt, len(payload), rawSize)
		}
		raw = payload
	} else {
		if uint32(len(payload)) != packedSize {
			return nil, fmt.Errorf("%w: compressed %d bytes, header says %d", ErrCorrupt, len(payload), packedSize)
		}
		var err error
		switch c {
		case CompressionLZ4:
			raw, err = decompressLZ4(payload, int(rawSize))
		case CompressionZSTD:
			raw, err = decompressZSTD(payload, int(rawSize))
		default:
			return nil, fmt.Errorf("%w: compressed payload with codec %s", ErrCorrupt, c)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, c, err)
		}
	}

	d := &Diagram{}
	if err := d.UnmarshalBinary(raw); err != nil {
		return nil, err
	}
	return d, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, dst, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return dst[:n], nil
}

func decompressLZ4(data []byte, size int) ([]byte, error) {
	dst := make([]byte, size)
	n, err := lz4.UncompressBlock(data, dst)
	if err != nil {
		return nil, err
	}
	if n != size {
		return nil, fmt.Errorf("lz4: got %d bytes, want %d", n, size)
	}
	return dst, nil
}

func compressZSTD(data []byte) ([]byte, error) {
	enc, err := getZstdEncoder()
	if err != nil {
		return nil, err
	}
	defer zstdEncoderPool.Put(enc)
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

func decompressZSTD(data []byte, size int) ([]byte, error) {
	dec, err := getZstdDecoder()
	if err != nil {
		return nil, err
	}
	defer zstdDecoderPool.Put(dec)
	out, err := dec.DecodeAll(data, make([]byte, 0, size))
	if err != nil {
		return nil, err
	}
	if len(out) != size {
		return nil, fmt.Errorf("zstd: got %d bytes, want %d", len(out), size)
	}
	return out, nil
}
