package baker

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
	"github.com/flywave/go3d/vec4"
	"github.com/qmuntal/gltf"
)

// attribStream 一个顶点属性的字节流，present为false时读出零向量
type attribStream struct {
	present    bool
	data       []byte
	stride     int
	count      int
	comp       gltf.ComponentType
	compSize   int
	components int
	normalized bool
}

func (s *attribStream) read(i int, dst []float32) {
	if !s.present {
		return
	}
	n := s.components
	if n > len(dst) {
		n = len(dst)
	}
	base := i * s.stride
	for c := 0; c < n; c++ {
		dst[c] = componentFloat(s.data[base+c*s.compSize:], s.comp, s.normalized)
	}
}

// primitiveStreams 图元的属性集合，固定字段而非动态映射
type primitiveStreams struct {
	position attribStream
	normal   attribStream
	tangent  attribStream
	texcoord attribStream
}

// FlattenOptions 展平参数
type FlattenOptions struct {
	// Clamp 量化前把法线和切线分量截断到[-1,1]
	Clamp bool
}

// ProcessMeshes 按文档顺序遍历所有网格和图元，生成统一布局的顶点数组和32位索引数组
func ProcessMeshes(doc *gltf.Document, opts FlattenOptions) (*ProcessedMeshes, []Warning, error) {
	res := &ProcessedMeshes{}
	reserve(doc, res)
	encode := encoderFor(opts.Clamp)

	var warnings []Warning
	for mi, mesh := range doc.Meshes {
		res.Meshes = append(res.Meshes, Mesh{
			FirstRelem: uint32(len(res.Relems)),
			RelemCount: uint32(len(mesh.Primitives)),
		})

		for pi, prim := range mesh.Primitives {
			if !isTriangleList(prim) {
				warnings = append(warnings, Warning{
					Mesh:      mi,
					Primitive: pi,
					Message:   fmt.Sprintf("%v: mode %d, skipping", ErrUnsupportedTopology, prim.Mode),
				})
				res.Meshes[mi].RelemCount--
				continue
			}
			if err := flattenPrimitive(doc, prim, res, encode); err != nil {
				return nil, warnings, primitiveError("flatten", mi, pi, err)
			}
		}
	}
	return res, warnings, nil
}

func isTriangleList(prim *gltf.Primitive) bool {
	return prim.Mode == gltf.PrimitiveTriangles
}

func reserve(doc *gltf.Document, res *ProcessedMeshes) {
	var vertexBytes, indexBytes int
	for _, view := range doc.BufferViews {
		switch view.Target {
		case gltf.TargetArrayBuffer:
			vertexBytes += int(view.ByteLength)
		case gltf.TargetElementArrayBuffer:
			indexBytes += int(view.ByteLength)
		}
	}
	prims := 0
	for _, mesh := range doc.Meshes {
		prims += len(mesh.Primitives)
	}
	res.Vertices = make([]Vertex, 0, vertexBytes/VERTEX_SIZE)
	res.Indices = make([]uint32, 0, indexBytes/INDEX_SIZE)
	res.Relems = make([]RenderElement, 0, prims)
	res.Meshes = make([]Mesh, 0, len(doc.Meshes))
}

func flattenPrimitive(doc *gltf.Document, prim *gltf.Primitive, res *ProcessedMeshes, encode encodeFunc) error {
	posIdx, ok := prim.Attributes[ATTRIB_POSITION]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingRequiredAttribute, ATTRIB_POSITION)
	}

	var streams primitiveStreams
	var err error
	if streams.position, err = openStream(doc, posIdx, -1, 3); err != nil {
		return fmt.Errorf("%s: %w", ATTRIB_POSITION, err)
	}
	vertexCount := streams.position.count

	optional := []struct {
		name          string
		stream        *attribStream
		minComponents int
	}{
		{ATTRIB_NORMAL, &streams.normal, 3},
		{ATTRIB_TANGENT, &streams.tangent, 3},
		{ATTRIB_TEXCOORD_0, &streams.texcoord, 2},
	}
	for _, o := range optional {
		idx, ok := prim.Attributes[o.name]
		if !ok {
			continue
		}
		if *o.stream, err = openStream(doc, idx, vertexCount, o.minComponents); err != nil {
			return fmt.Errorf("%s: %w", o.name, err)
		}
	}

	relem := RenderElement{
		VertexOffset: uint32(len(res.Vertices)),
		IndexOffset:  uint32(len(res.Indices)),
		IndexCount:   uint32(vertexCount),
		VertexCount:  uint32(vertexCount),
	}

	for i := 0; i < vertexCount; i++ {
		var pos, normal, tangent vec3.T
		var uv vec2.T
		streams.position.read(i, pos[:])
		streams.normal.read(i, normal[:])
		streams.tangent.read(i, tangent[:])
		streams.texcoord.read(i, uv[:])

		res.Vertices = append(res.Vertices, Vertex{
			PositionAndNormal: vec4.T{
				pos[0], pos[1], pos[2],
				PackedToFloat(encode(vec4.T{normal[0], normal[1], normal[2], 0})),
			},
			TexCoordAndTangentAndPadding: vec4.T{
				uv[0], uv[1],
				PackedToFloat(encode(vec4.T{tangent[0], tangent[1], tangent[2], 0})),
				0,
			},
		})
	}

	if prim.Indices == nil {
		for i := 0; i < vertexCount; i++ {
			res.Indices = append(res.Indices, uint32(i))
		}
	} else {
		before := len(res.Indices)
		if res.Indices, err = appendIndices(res.Indices, doc, *prim.Indices, vertexCount); err != nil {
			return fmt.Errorf("indices: %w", err)
		}
		relem.IndexCount = uint32(len(res.Indices) - before)
	}

	res.Relems = append(res.Relems, relem)
	return nil
}

// openStream 解析访问器对应的字节区间并计算有效步长，越界时立即返回错误
// minCount为-1时不检查元素个数
func openStream(doc *gltf.Document, accIdx uint32, minCount, minComponents int) (attribStream, error) {
	if int(accIdx) >= len(doc.Accessors) {
		return attribStream{}, fmt.Errorf("%w: accessor %d", ErrAccessorOutOfBounds, accIdx)
	}
	acc := doc.Accessors[accIdx]
	data, err := accessorData(doc, acc)
	if err != nil {
		return attribStream{}, err
	}

	s := attribStream{
		present:    true,
		count:      int(acc.Count),
		comp:       acc.ComponentType,
		compSize:   int(acc.ComponentType.ByteSize()),
		components: int(acc.Type.Components()),
		normalized: acc.Normalized,
	}
	if s.components < minComponents {
		return attribStream{}, fmt.Errorf("%w: %d components, need %d", ErrUnsupportedComponent, s.components, minComponents)
	}
	if s.compSize == 0 {
		return attribStream{}, fmt.Errorf("%w: %v", ErrUnsupportedComponent, acc.ComponentType)
	}
	if minCount >= 0 && s.count < minCount {
		return attribStream{}, fmt.Errorf("%w: %d elements, need %d", ErrAccessorOutOfBounds, s.count, minCount)
	}

	elem := s.compSize * s.components
	if acc.BufferView != nil {
		s.stride = int(doc.BufferViews[*acc.BufferView].ByteStride)
	}
	if s.stride == 0 {
		s.stride = elem
	}
	if s.count > 0 {
		if need := (s.count-1)*s.stride + elem; need > len(data) {
			return attribStream{}, fmt.Errorf("%w: needs %d bytes, view holds %d", ErrAccessorOutOfBounds, need, len(data))
		}
	}
	s.data = data
	return s, nil
}

// accessorData 返回访问器起始位置到缓冲区视图末尾的字节
// 没有缓冲区视图的访问器按全零数据处理
func accessorData(doc *gltf.Document, acc *gltf.Accessor) ([]byte, error) {
	if acc.BufferView == nil {
		return make([]byte, int(acc.Count)*int(acc.ComponentType.ByteSize())*int(acc.Type.Components())), nil
	}
	if int(*acc.BufferView) >= len(doc.BufferViews) {
		return nil, fmt.Errorf("%w: buffer view %d", ErrAccessorOutOfBounds, *acc.BufferView)
	}
	view := doc.BufferViews[*acc.BufferView]
	if int(view.Buffer) >= len(doc.Buffers) {
		return nil, fmt.Errorf("%w: buffer %d", ErrAccessorOutOfBounds, view.Buffer)
	}
	buf := doc.Buffers[view.Buffer].Data
	start := uint64(view.ByteOffset)
	end := start + uint64(view.ByteLength)
	if end > uint64(len(buf)) || uint64(acc.ByteOffset) > uint64(view.ByteLength) {
		return nil, fmt.Errorf("%w: [%d:%d] in buffer of %d bytes", ErrAccessorOutOfBounds, start, end, len(buf))
	}
	return buf[start+uint64(acc.ByteOffset) : end], nil
}

// appendIndices 8/16位索引逐个扩展为32位，32位索引整块拷贝
// 索引值不得超出图元自身的顶点数
func appendIndices(dst []uint32, doc *gltf.Document, accIdx uint32, vertexCount int) ([]uint32, error) {
	if int(accIdx) >= len(doc.Accessors) {
		return dst, fmt.Errorf("%w: accessor %d", ErrAccessorOutOfBounds, accIdx)
	}
	acc := doc.Accessors[accIdx]
	data, err := accessorData(doc, acc)
	if err != nil {
		return dst, err
	}
	if acc.Type != gltf.AccessorScalar {
		return dst, fmt.Errorf("%w: index accessor must be scalar", ErrUnsupportedComponent)
	}

	count := int(acc.Count)
	size := int(acc.ComponentType.ByteSize())
	if count*size > len(data) {
		return dst, fmt.Errorf("%w: needs %d bytes, view holds %d", ErrAccessorOutOfBounds, count*size, len(data))
	}

	first := len(dst)
	switch acc.ComponentType {
	case gltf.ComponentUbyte:
		for i := 0; i < count; i++ {
			dst = append(dst, uint32(data[i]))
		}
	case gltf.ComponentUshort:
		for i := 0; i < count; i++ {
			dst = append(dst, uint32(binary.LittleEndian.Uint16(data[i*2:])))
		}
	case gltf.ComponentUint:
		dst = append(dst, make([]uint32, count)...)
		if err := readLittleBlock(data[:count*4], dst[first:]); err != nil {
			return dst[:first], err
		}
	default:
		return dst, fmt.Errorf("%w: index component %v", ErrUnsupportedComponent, acc.ComponentType)
	}

	for i, v := range dst[first:] {
		if int64(v) >= int64(vertexCount) {
			return dst[:first], fmt.Errorf("%w: index %d at position %d, primitive has %d vertices",
				ErrAccessorOutOfBounds, v, i, vertexCount)
		}
	}
	return dst, nil
}

func componentFloat(b []byte, ct gltf.ComponentType, normalized bool) float32 {
	switch ct {
	case gltf.ComponentFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case gltf.ComponentByte:
		v := float32(int8(b[0]))
		if normalized {
			return float32(math.Max(float64(v)/127, -1))
		}
		return v
	case gltf.ComponentUbyte:
		v := float32(b[0])
		if normalized {
			return v / 255
		}
		return v
	case gltf.ComponentShort:
		v := float32(int16(binary.LittleEndian.Uint16(b)))
		if normalized {
			return float32(math.Max(float64(v)/32767, -1))
		}
		return v
	case gltf.ComponentUshort:
		v := float32(binary.LittleEndian.Uint16(b))
		if normalized {
			return v / 65535
		}
		return v
	case gltf.ComponentUint:
		return float32(binary.LittleEndian.Uint32(b))
	}
	return 0
}
