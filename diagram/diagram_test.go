package diagram

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Diagram {
	d := New(4)
	d.Add(Essential(0, -1.5))
	d.Add(Finite(0, 0.25, 2))
	d.Add(Finite(1, 1, 3.5))
	d.Add(Essential(2, 4))
	return d
}

func TestDiagram_Views(t *testing.T) {
	d := sample()

	assert.Equal(t, 4, d.Len())
	assert.Equal(t, 2, d.MaxDim())
	assert.Equal(t, []Pair{Essential(0, -1.5), Finite(0, 0.25, 2)}, d.Dim(0))
	assert.Equal(t, []Pair{Finite(0, 0.25, 2)}, d.Finite(0))
	assert.Equal(t, []Pair{Essential(2, 4)}, d.Essential(2))
	assert.Equal(t, 1, d.Betti(0))
	assert.Equal(t, 0, d.Betti(1))
	assert.Equal(t, -1, New(0).MaxDim())

	assert.True(t, d.Pairs[0].IsEssential())
	assert.InDelta(t, 1.75, d.Pairs[1].Persistence(), 1e-12)
	assert.True(t, math.IsInf(d.Pairs[3].Persistence(), 1))

	c := d.Clone()
	assert.True(t, c.Equal(d))
	c.Pairs[0].Birth = 0
	assert.False(t, c.Equal(d))
}

func TestWriteTo_Layout(t *testing.T) {
	d := New(2)
	d.Add(Finite(1, 0.5, 2))
	d.Add(Essential(0, -3))

	var buf bytes.Buffer
	n, err := d.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(24+2*24), n)

	b := buf.Bytes()
	i64 := func(off int) int64 { return int64(binary.LittleEndian.Uint64(b[off:])) }
	f64 := func(off int) float64 { return math.Float64frombits(binary.LittleEndian.Uint64(b[off:])) }

	assert.Equal(t, int64(8067171840), i64(0))
	assert.Equal(t, int64(2), i64(8))
	assert.Equal(t, int64(2), i64(16))

	assert.Equal(t, int64(1), i64(24))
	assert.Equal(t, 0.5, f64(32))
	assert.Equal(t, 2.0, f64(40))

	assert.Equal(t, int64(-1), i64(48))
	assert.Equal(t, -3.0, f64(56))
	assert.Equal(t, 0.0, f64(64))
}

func TestReadFrom_RoundTrip(t *testing.T) {
	d := sample()
	data, err := d.MarshalBinary()
	require.NoError(t, err)

	var got Diagram
	require.NoError(t, got.UnmarshalBinary(data))
	assert.True(t, got.Equal(d))
}

func TestReadFrom_StopsAfterLastRecord(t *testing.T) {
	data, err := sample().MarshalBinary()
	require.NoError(t, err)

	r := bytes.NewReader(append(bytes.Clone(data), "next"...))
	var got Diagram
	n, err := got.ReadFrom(r)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)
	assert.True(t, got.Equal(sample()))

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "next", string(rest))
}

func TestDiagram_Prune(t *testing.T) {
	d := New(4)
	d.Add(Essential(0, 1))
	d.Add(Finite(0, 1, 1))
	d.Add(Finite(0, 2, 2.5))
	d.Add(Finite(1, 1, 5))

	assert.Equal(t, []Pair{Essential(0, 1), Finite(0, 2, 2.5), Finite(1, 1, 5)}, d.Prune(0).Pairs)
	assert.Equal(t, []Pair{Essential(0, 1), Finite(1, 1, 5)}, d.Prune(0.5).Pairs)
	assert.Equal(t, 4, d.Len())
}

func TestReadFrom_Errors(t *testing.T) {
	data, err := sample().MarshalBinary()
	require.NoError(t, err)

	t.Run("BadMagic", func(t *testing.T) {
		bad := bytes.Clone(data)
		bad[0] ^= 0xff
		assert.ErrorIs(t, new(Diagram).UnmarshalBinary(bad), ErrBadMagic)
	})

	t.Run("BadFileType", func(t *testing.T) {
		bad := bytes.Clone(data)
		binary.LittleEndian.PutUint64(bad[8:], uint64(FileTypeImage))
		assert.ErrorIs(t, new(Diagram).UnmarshalBinary(bad), ErrBadFileType)
	})

	t.Run("Truncated", func(t *testing.T) {
		assert.ErrorIs(t, new(Diagram).UnmarshalBinary(data[:len(data)-5]), ErrCorrupt)
		assert.ErrorIs(t, new(Diagram).UnmarshalBinary(data[:10]), ErrCorrupt)
	})

	t.Run("Trailing", func(t *testing.T) {
		assert.ErrorIs(t, new(Diagram).UnmarshalBinary(append(bytes.Clone(data), 0)), ErrCorrupt)
	})
}

func TestEncode_RoundTrip(t *testing.T) {
	// A long, repetitive diagram compresses well.
	d := New(0)
	for i := 0; i < 500; i++ {
		d.Add(Finite(i%3, float64(i%7), float64(i%7)+1))
	}
	d.Add(Essential(0, 0))

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			data, err := Encode(d, c)
			require.NoError(t, err)
			assert.Equal(t, byte(c), data[0])

			got, err := Decode(data)
			require.NoError(t, err)
			assert.True(t, got.Equal(d))

			if c != CompressionNone {
				raw, _ := d.MarshalBinary()
				assert.Less(t, len(data), len(raw))
			}
		})
	}
}

func TestEncode_SmallStoredUncompressed(t *testing.T) {
	d := New(1)
	d.Add(Essential(0, 1))

	data, err := Encode(d, CompressionZSTD)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(data[5:]))

	got, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, got.Equal(d))
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte{1, 2})
	assert.ErrorIs(t, err, ErrCorrupt)

	data, err := Encode(sample(), CompressionNone)
	require.NoError(t, err)
	_, err = Decode(data[:len(data)-1])
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = Encode(sample(), Compression(9))
	assert.Error(t, err)
}

func TestCompression_Ext(t *testing.T) {
	assert.Equal(t, "", CompressionNone.Ext())
	assert.Equal(t, ".lz4", CompressionLZ4.Ext())
	assert.Equal(t, ".zst", CompressionZSTD.Ext())
	assert.Equal(t, "compression(7)", Compression(7).String())
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	got, err := ParseCompression("")
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, got)

	_, err = ParseCompression("brotli")
	assert.Error(t, err)
}
