// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Endian selects byte order for PCM sample encodings.
type Endian int

const (
	LittleEndian Endian = iota
	BigEndian
)

// SampleEncoding describes how a single channel sample is laid out on the
// wire: its bit depth, signedness, byte order, and whether it is an IEEE
// float rather than a PCM integer.
type SampleEncoding struct {
	BitDepth int
	Signed   bool
	Endian   Endian
	Float    bool
}

// BytesPerSample is the number of bytes one channel sample occupies.
func (e SampleEncoding) BytesPerSample() int {
	return e.BitDepth / 8
}

var (
	PCM8  = SampleEncoding{BitDepth: 8, Signed: true, Endian: LittleEndian}
	PCM16 = SampleEncoding{BitDepth: 16, Signed: true, Endian: LittleEndian}
	PCM24 = SampleEncoding{BitDepth: 24, Signed: true, Endian: LittleEndian}
	PCM32 = SampleEncoding{BitDepth: 32, Signed: true, Endian: LittleEndian}

	Float32Enc = SampleEncoding{BitDepth: 32, Float: true, Endian: LittleEndian}
	Float64Enc = SampleEncoding{BitDepth: 64, Float: true, Endian: LittleEndian}
)

// AudioFormat is the immutable description of a PCM stream's layout.
// Invariant: FrameSize == Channels * Encoding.BytesPerSample().
type AudioFormat struct {
	SampleRate float64
	Channels   int
	Encoding   SampleEncoding
}

// FrameSize is the number of bytes one multi-channel sample occupies.
func (f AudioFormat) FrameSize() int {
	return f.Channels * f.Encoding.BytesPerSample()
}

// FloatConverter converts interleaved bytes to/from interleaved float32
// samples in [-1, 1] for a fixed AudioFormat. The conversion is bit-exact
// for in-range 8-, 16- and 24-bit PCM values and for float32. 32-bit PCM
// and float64 values are rounded to float32 precision, so they do not
// round-trip bit-exactly.
type FloatConverter struct {
	format AudioFormat
}

// NewFloatConverter builds a converter for the given format.
func NewFloatConverter(format AudioFormat) *FloatConverter {
	return &FloatConverter{format: format}
}

// ToFloatArray decodes dstLen float32 values from src starting at srcOffset
// into dst starting at dstOffset; src must hold dstLen*BytesPerSample bytes
// from srcOffset on.
func (c *FloatConverter) ToFloatArray(src []byte, srcOffset int, dst []float32, dstOffset int, dstLen int) error {
	enc := c.format.Encoding
	bps := enc.BytesPerSample()
	need := dstLen * bps
	if srcOffset+need > len(src) {
		return fmt.Errorf("float converter: src too short: need %d bytes at offset %d, have %d", need, srcOffset, len(src))
	}
	if dstOffset+dstLen > len(dst) {
		return fmt.Errorf("float converter: dst too short: need %d values at offset %d, have %d", dstLen, dstOffset, len(dst))
	}

	order := byteOrder(enc.Endian)

	for i := 0; i < dstLen; i++ {
		off := srcOffset + i*bps
		var v float32
		switch {
		case enc.Float && enc.BitDepth == 32:
			v = math.Float32frombits(order.Uint32(src[off : off+4]))
		case enc.Float && enc.BitDepth == 64:
			v = float32(math.Float64frombits(order.Uint64(src[off : off+8])))
		default:
			v = decodePCM(src[off:off+bps], enc, order)
		}
		dst[dstOffset+i] = v
	}
	return nil
}

// ToByteArray is the inverse of ToFloatArray: it encodes srcLen float32
// values from src starting at srcOffset into dst starting at dstOffset.
func (c *FloatConverter) ToByteArray(src []float32, srcOffset int, srcLen int, dst []byte, dstOffset int) error {
	enc := c.format.Encoding
	bps := enc.BytesPerSample()
	need := srcLen * bps
	if dstOffset+need > len(dst) {
		return fmt.Errorf("float converter: dst too short: need %d bytes at offset %d, have %d", need, dstOffset, len(dst))
	}
	if srcOffset+srcLen > len(src) {
		return fmt.Errorf("float converter: src too short: need %d values at offset %d, have %d", srcLen, srcOffset, len(src))
	}

	order := byteOrder(enc.Endian)

	for i := 0; i < srcLen; i++ {
		off := dstOffset + i*bps
		v := src[srcOffset+i]
		switch {
		case enc.Float && enc.BitDepth == 32:
			order.PutUint32(dst[off:off+4], math.Float32bits(v))
		case enc.Float && enc.BitDepth == 64:
			order.PutUint64(dst[off:off+8], math.Float64bits(float64(v)))
		default:
			encodePCM(dst[off:off+bps], v, enc, order)
		}
	}
	return nil
}

type byteOrderIface interface {
	Uint16([]byte) uint16
	Uint32([]byte) uint32
	Uint64([]byte) uint64
	PutUint16([]byte, uint16)
	PutUint32([]byte, uint32)
	PutUint64([]byte, uint64)
}

func byteOrder(e Endian) byteOrderIface {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func decodePCM(b []byte, enc SampleEncoding, order byteOrderIface) float32 {
	switch enc.BitDepth {
	case 8:
		if enc.Signed {
			return float32(int8(b[0])) / 128.0
		}
		return (float32(b[0]) - 128.0) / 128.0
	case 16:
		u := order.Uint16(b)
		if enc.Signed {
			return float32(int16(u)) / 32768.0
		}
		return (float32(u) - 32768.0) / 32768.0
	case 24:
		var u uint32
		if enc.Endian == BigEndian {
			u = uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
		} else {
			u = uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
		}
		if enc.Signed {
			if u&0x800000 != 0 {
				u |= 0xFF000000
			}
			return float32(int32(u)) / 8388608.0
		}
		return (float32(u) - 8388608.0) / 8388608.0
	case 32:
		u := order.Uint32(b)
		if enc.Signed {
			return float32(int32(u)) / 2147483648.0
		}
		return (float32(u) - 2147483648.0) / 2147483648.0
	default:
		return 0
	}
}

// clampInt32 rounds x to the nearest integer and clamps it to [lo, hi]. Using
// the same divisor for encode as decodePCM uses means a value that came from
// decodePCM round-trips back to its exact original bytes for bit depths up
// to 24 (32-bit values were already rounded to float32 precision on decode);
// the clamp only bites for out-of-range floats supplied directly by a caller.
func clampInt32(x float64, lo, hi int64) int64 {
	r := int64(math.Round(x))
	if r < lo {
		return lo
	}
	if r > hi {
		return hi
	}
	return r
}

func encodePCM(b []byte, v float32, enc SampleEncoding, order byteOrderIface) {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	fv := float64(v)
	switch enc.BitDepth {
	case 8:
		if enc.Signed {
			b[0] = byte(int8(clampInt32(fv*128.0, -128, 127)))
		} else {
			b[0] = byte(clampInt32(fv*128.0+128.0, 0, 255))
		}
	case 16:
		if enc.Signed {
			order.PutUint16(b, uint16(int16(clampInt32(fv*32768.0, -32768, 32767))))
		} else {
			order.PutUint16(b, uint16(clampInt32(fv*32768.0+32768.0, 0, 65535)))
		}
	case 24:
		var u uint32
		if enc.Signed {
			u = uint32(int32(clampInt32(fv*8388608.0, -8388608, 8388607)))
		} else {
			u = uint32(clampInt32(fv*8388608.0+8388608.0, 0, 16777215))
		}
		if enc.Endian == BigEndian {
			b[0] = byte(u >> 16)
			b[1] = byte(u >> 8)
			b[2] = byte(u)
		} else {
			b[0] = byte(u)
			b[1] = byte(u >> 8)
			b[2] = byte(u >> 16)
		}
	case 32:
		if enc.Signed {
			order.PutUint32(b, uint32(int32(clampInt32(fv*2147483648.0, -2147483648, 2147483647))))
		} else {
			order.PutUint32(b, uint32(clampInt32(fv*2147483648.0+2147483648.0, 0, 4294967295)))
		}
	}
}
