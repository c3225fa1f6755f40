package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)

	_, err := Lookup("msgpack")
	assert.ErrorContains(t, err, "msgpack")
}

func TestCodecs_Interchangeable(t *testing.T) {
	m := newBenchManifest()

	for _, enc := range []Codec{JSON{}, GoJSON{}} {
		for _, dec := range []Codec{JSON{}, GoJSON{}} {
			var got benchManifest
			require.NoError(t, dec.Unmarshal(MustMarshal(enc, m), &got))
			assert.Equal(t, m, got, "%s -> %s", enc.Name(), dec.Name())
		}
	}
}

func TestGoJSON_Append(t *testing.T) {
	out, err := GoJSON{}.Append([]byte("x="), []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "x=[1,2]", string(out))
}

func TestMustMarshal_DefaultCodec(t *testing.T) {
	assert.Equal(t, `{"a":1}`, string(MustMarshal(nil, map[string]int{"a": 1})))
	assert.Panics(t, func() { MustMarshal(JSON{}, make(chan int)) })
}

func TestCodecs_IndentAndEscape(t *testing.T) {
	v := map[string]string{"name": "a<b>"}
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		assert.Equal(t, `{"name":"a<b>"}`, string(MustMarshal(c, v)), c.Name())
	}
	for _, c := range []Codec{JSON{Indent: true}, GoJSON{Indent: true}} {
		assert.Equal(t, "{\n  \"name\": \"a<b>\"\n}", string(MustMarshal(c, v)), c.Name())
	}
}
