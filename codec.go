package baker

import (
	"math"

	"github.com/flywave/go3d/vec4"
)

const quantScale = 127.0

// EncodeNormal 将[-1,1]范围内的四维向量量化为4个有符号8位定点数并按小端打包为一个32位字
// 超出范围的分量被截断到[-1,1]
func EncodeNormal(v vec4.T) uint32 {
	var c vec4.T
	for i := range v {
		c[i] = clampUnit(v[i])
	}
	return EncodeNormalWrap(c)
}

// EncodeNormalWrap 与EncodeNormal相同但不截断，超出范围的分量按整数截断回绕
func EncodeNormalWrap(v vec4.T) uint32 {
	var word uint32
	for i := 0; i < 4; i++ {
		q := int8(int32(math.Round(float64(v[i]) * quantScale)))
		word |= uint32(uint8(q)) << (8 * uint(i))
	}
	return word
}

// DecodeNormal 将打包的32位字还原为四维向量
func DecodeNormal(word uint32) vec4.T {
	var v vec4.T
	for i := 0; i < 4; i++ {
		v[i] = float32(int8(uint8(word>>(8*uint(i))))) / quantScale
	}
	return v
}

// PackedToFloat 将打包字的位模式原样放入float32槽位，不做数值转换
func PackedToFloat(word uint32) float32 {
	return math.Float32frombits(word)
}

// FloatToPacked 从float32槽位取回打包字的位模式
func FloatToPacked(f float32) uint32 {
	return math.Float32bits(f)
}

func clampUnit(f float32) float32 {
	if f > 1 {
		return 1
	}
	if f < -1 {
		return -1
	}
	// NaN
	if f != f {
		return 0
	}
	return f
}

type encodeFunc func(vec4.T) uint32

func encoderFor(clamp bool) encodeFunc {
	if clamp {
		return EncodeNormal
	}
	return EncodeNormalWrap
}
