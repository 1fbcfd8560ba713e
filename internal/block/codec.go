package block

import (
	"encoding/binary"
	"fmt"
	"math"

	"go.uber.org/zap"
)

const (
	// RecordSize is the encoded width of one block.
	RecordSize = 16

	// MaxArea is the largest area, in square meters, that survives encoding.
	MaxArea = math.MaxUint32

	coordScale = 1e6
)

// FormatError reports a payload that is not a whole number of records or a
// source that cannot be turned into blocks.
type FormatError struct {
	Op    string
	Len   int
	Width int
	Msg   string
}

func (e *FormatError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("block: %s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("block: %s: %d bytes is not a multiple of the %d byte record width", e.Op, e.Len, e.Width)
}

// Encode returns the 16 byte little-endian record for b.
func Encode(b Block) []byte {
	return AppendEncode(make([]byte, 0, RecordSize), b)
}

// AppendEncode appends the record for b to dst.
//
// Layout: int32 lon*1e6, int32 lat*1e6, uint32 population, uint32 area.
// Areas above MaxArea are written as 0.
func AppendEncode(dst []byte, b Block) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(scaleCoord(b.Longitude)))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(scaleCoord(b.Latitude)))
	dst = binary.LittleEndian.AppendUint32(dst, b.Population)
	dst = binary.LittleEndian.AppendUint32(dst, encodeArea(b))
	return dst
}

// Decode reads a single record. rec must be exactly RecordSize bytes.
func Decode(rec []byte) (Block, error) {
	if len(rec) != RecordSize {
		return Block{}, &FormatError{Op: "decode", Len: len(rec), Width: RecordSize}
	}
	return decodeRecord(rec), nil
}

// DecodeAll decodes a concatenation of records, as stored in a region cache
// file or in a city's block list.
func DecodeAll(data []byte) ([]Block, error) {
	if len(data)%RecordSize != 0 {
		return nil, &FormatError{Op: "decode", Len: len(data), Width: RecordSize}
	}
	blocks := make([]Block, 0, len(data)/RecordSize)
	for off := 0; off < len(data); off += RecordSize {
		blocks = append(blocks, decodeRecord(data[off:off+RecordSize]))
	}
	return blocks, nil
}

func decodeRecord(rec []byte) Block {
	return Block{
		Longitude:  float64(int32(binary.LittleEndian.Uint32(rec[0:4]))) / coordScale,
		Latitude:   float64(int32(binary.LittleEndian.Uint32(rec[4:8]))) / coordScale,
		Population: binary.LittleEndian.Uint32(rec[8:12]),
		Area:       float64(binary.LittleEndian.Uint32(rec[12:16])),
	}
}

func scaleCoord(deg float64) int32 {
	return int32(math.Round(deg * coordScale))
}

func encodeArea(b Block) uint32 {
	area := math.Round(b.Area)
	if math.IsNaN(area) || area < 0 {
		return 0
	}
	if area > MaxArea {
		zap.L().Warn("block area exceeds encodable range, writing 0",
			zap.String("component", "block.codec"),
			zap.Float64("area", b.Area),
			zap.Float64("lon", b.Longitude),
			zap.Float64("lat", b.Latitude),
		)
		return 0
	}
	return uint32(area)
}
