package baker

import (
	"github.com/flywave/go3d/vec4"
)

const BAKED_SUFFIX string = "_baked"
const GLTFEXT string = ".gltf"
const GLBEXT string = ".glb"
const BINEXT string = ".bin"

// QuantizationExtension 烘焙结果声明使用的量化扩展
const QuantizationExtension = "KHR_mesh_quantization"

const (
	ATTRIB_POSITION   = "POSITION"
	ATTRIB_NORMAL     = "NORMAL"
	ATTRIB_TANGENT    = "TANGENT"
	ATTRIB_TEXCOORD_0 = "TEXCOORD_0"
)

// 顶点内各字段的字节偏移，渲染器按此布局绑定顶点输入
const (
	VERTEX_SIZE            = 32
	VERTEX_POSITION_OFFSET = 0
	VERTEX_NORMAL_OFFSET   = 12
	VERTEX_TEXCOORD_OFFSET = 16
	VERTEX_TANGENT_OFFSET  = 24
	INDEX_SIZE             = 4
)

const (
	INDEX_BUFFER_VIEW  uint32 = 0
	VERTEX_BUFFER_VIEW uint32 = 1
)

// Vertex 固定32字节的顶点布局
// PositionAndNormal: xyz为位置，w为打包法线的位模式
// TexCoordAndTangentAndPadding: xy为纹理坐标，z为打包切线的位模式，w为填充
type Vertex struct {
	PositionAndNormal            vec4.T
	TexCoordAndTangentAndPadding vec4.T
}

// RenderElement 一个图元在展平后的顶点/索引数组中的切片
type RenderElement struct {
	VertexOffset uint32
	IndexOffset  uint32
	IndexCount   uint32
	VertexCount  uint32
}

// Mesh 展平后的网格，指向连续的RenderElement区间
type Mesh struct {
	FirstRelem uint32
	RelemCount uint32
}

// ProcessedMeshes 展平阶段的输出
type ProcessedMeshes struct {
	Vertices []Vertex
	Indices  []uint32
	Relems   []RenderElement
	Meshes   []Mesh
}

func (p *ProcessedMeshes) IndexBytes() int {
	return len(p.Indices) * INDEX_SIZE
}

func (p *ProcessedMeshes) VertexBytes() int {
	return len(p.Vertices) * VERTEX_SIZE
}

// MeshRelems 返回第i个网格对应的RenderElement切片
func (p *ProcessedMeshes) MeshRelems(i int) []RenderElement {
	m := p.Meshes[i]
	return p.Relems[m.FirstRelem : m.FirstRelem+m.RelemCount]
}
