package block

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   Block
	}{
		{"houston", Block{Longitude: -95.3698123, Latitude: 29.7604267, Population: 412, Area: 18234.4}},
		{"origin", Block{}},
		{"extremes", Block{Longitude: -180, Latitude: -90, Population: math.MaxUint32, Area: MaxArea}},
		{"positive extremes", Block{Longitude: 180, Latitude: 90, Population: 1, Area: 1}},
		{"sub-micro degree", Block{Longitude: 12.0000004, Latitude: -33.9999996, Population: 7, Area: 99}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Encode(tt.in)
			require.Len(t, rec, RecordSize)

			got, err := Decode(rec)
			require.NoError(t, err)
			assert.InDelta(t, tt.in.Longitude, got.Longitude, 1e-6)
			assert.InDelta(t, tt.in.Latitude, got.Latitude, 1e-6)
			assert.Equal(t, tt.in.Population, got.Population)
			assert.Equal(t, math.Round(tt.in.Area), got.Area)
		})
	}
}

func TestEncode_LittleEndianLayout(t *testing.T) {
	rec := Encode(Block{Longitude: 0.000001, Latitude: -0.000001, Population: 258, Area: 65536})

	assert.Equal(t, []byte{
		0x01, 0x00, 0x00, 0x00,
		0xff, 0xff, 0xff, 0xff,
		0x02, 0x01, 0x00, 0x00,
		0x00, 0x00, 0x01, 0x00,
	}, rec)
}

func TestEncode_AreaOverflowWritesSentinel(t *testing.T) {
	b := Block{Longitude: -100, Latitude: 40, Population: 3, Area: MaxArea + 1}

	got, err := Decode(Encode(b))
	require.NoError(t, err)
	assert.Equal(t, float64(0), got.Area)
	assert.Equal(t, uint32(3), got.Population)
}

func TestEncode_InvalidAreaWritesSentinel(t *testing.T) {
	for _, area := range []float64{-1, math.NaN(), math.Inf(1)} {
		got, err := Decode(Encode(Block{Area: area}))
		require.NoError(t, err)
		assert.Equal(t, float64(0), got.Area)
	}
}

func TestAppendEncode_Concatenates(t *testing.T) {
	var buf []byte
	buf = AppendEncode(buf, Block{Longitude: 1, Latitude: 2, Population: 3, Area: 4})
	buf = AppendEncode(buf, Block{Longitude: 5, Latitude: 6, Population: 7, Area: 8})
	require.Len(t, buf, 2*RecordSize)

	blocks, err := DecodeAll(buf)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.InDelta(t, 5.0, blocks[1].Longitude, 1e-9)
	assert.Equal(t, uint32(3), blocks[0].Population)
}

func TestDecodeAll_Empty(t *testing.T) {
	blocks, err := DecodeAll(nil)
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestDecodeAll_TruncatedIsFormatError(t *testing.T) {
	data := append(Encode(Block{Longitude: 1}), 0x00)

	_, err := DecodeAll(data)
	require.Error(t, err)

	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 17, fe.Len)
	assert.Equal(t, RecordSize, fe.Width)
	assert.Contains(t, err.Error(), "not a multiple")
}

func TestDecode_WrongWidth(t *testing.T) {
	_, err := Decode(make([]byte, 15))

	var fe *FormatError
	assert.ErrorAs(t, err, &fe)
}
