package baker

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
	"github.com/flywave/go3d/vec4"
	"github.com/qmuntal/gltf"
)

// primDesc 测试用图元描述，空切片表示属性缺失
type primDesc struct {
	mode      gltf.PrimitiveMode
	positions []vec3.T
	normals   []vec3.T
	tangents  []vec4.T
	texcoords []vec2.T
	indices8  []uint8
	indices16 []uint16
	indices32 []uint32
}

// docBuilder 在内存中构建只有一个缓冲区的GLTF文档
type docBuilder struct {
	doc  *gltf.Document
	data []byte
}

func newDocBuilder() *docBuilder {
	return &docBuilder{
		doc: &gltf.Document{
			Asset:   gltf.Asset{Version: "2.0"},
			Buffers: []*gltf.Buffer{{}},
		},
	}
}

func (b *docBuilder) addView(data []byte, target gltf.Target, stride uint32) uint32 {
	b.data = append(b.data, make([]byte, calcPadding(len(b.data), 4))...)
	b.doc.BufferViews = append(b.doc.BufferViews, &gltf.BufferView{
		Buffer:     0,
		ByteOffset: uint32(len(b.data)),
		ByteLength: uint32(len(data)),
		ByteStride: stride,
		Target:     target,
	})
	b.data = append(b.data, data...)
	return uint32(len(b.doc.BufferViews) - 1)
}

func (b *docBuilder) addAccessor(values interface{}, ct gltf.ComponentType, typ gltf.AccessorType, count int, target gltf.Target) uint32 {
	buf := bytes.NewBuffer(nil)
	if err := writeLittleByte(buf, values); err != nil {
		panic(err)
	}
	view := b.addView(buf.Bytes(), target, 0)
	b.doc.Accessors = append(b.doc.Accessors, &gltf.Accessor{
		BufferView:    uint32Ptr(view),
		ComponentType: ct,
		Type:          typ,
		Count:         uint32(count),
	})
	return uint32(len(b.doc.Accessors) - 1)
}

func (b *docBuilder) addPrimitive(p primDesc) *gltf.Primitive {
	prim := &gltf.Primitive{Mode: p.mode, Attributes: gltf.Attribute{}}
	if len(p.positions) > 0 {
		prim.Attributes[ATTRIB_POSITION] = b.addAccessor(p.positions, gltf.ComponentFloat, gltf.AccessorVec3, len(p.positions), gltf.TargetArrayBuffer)
	}
	if len(p.normals) > 0 {
		prim.Attributes[ATTRIB_NORMAL] = b.addAccessor(p.normals, gltf.ComponentFloat, gltf.AccessorVec3, len(p.normals), gltf.TargetArrayBuffer)
	}
	if len(p.tangents) > 0 {
		prim.Attributes[ATTRIB_TANGENT] = b.addAccessor(p.tangents, gltf.ComponentFloat, gltf.AccessorVec4, len(p.tangents), gltf.TargetArrayBuffer)
	}
	if len(p.texcoords) > 0 {
		prim.Attributes[ATTRIB_TEXCOORD_0] = b.addAccessor(p.texcoords, gltf.ComponentFloat, gltf.AccessorVec2, len(p.texcoords), gltf.TargetArrayBuffer)
	}
	switch {
	case len(p.indices8) > 0:
		prim.Indices = uint32Ptr(b.addAccessor(p.indices8, gltf.ComponentUbyte, gltf.AccessorScalar, len(p.indices8), gltf.TargetElementArrayBuffer))
	case len(p.indices16) > 0:
		prim.Indices = uint32Ptr(b.addAccessor(p.indices16, gltf.ComponentUshort, gltf.AccessorScalar, len(p.indices16), gltf.TargetElementArrayBuffer))
	case len(p.indices32) > 0:
		prim.Indices = uint32Ptr(b.addAccessor(p.indices32, gltf.ComponentUint, gltf.AccessorScalar, len(p.indices32), gltf.TargetElementArrayBuffer))
	}
	return prim
}

func (b *docBuilder) addMesh(prims ...primDesc) *docBuilder {
	mesh := &gltf.Mesh{}
	for _, p := range prims {
		mesh.Primitives = append(mesh.Primitives, b.addPrimitive(p))
	}
	b.doc.Meshes = append(b.doc.Meshes, mesh)
	meshIndex := uint32(len(b.doc.Meshes) - 1)
	b.doc.Nodes = append(b.doc.Nodes, &gltf.Node{Mesh: uint32Ptr(meshIndex)})
	return b
}

func (b *docBuilder) build() *gltf.Document {
	b.doc.Buffers[0].Data = b.data
	b.doc.Buffers[0].ByteLength = uint32(len(b.data))
	nodes := make([]uint32, len(b.doc.Nodes))
	for i := range nodes {
		nodes[i] = uint32(i)
	}
	b.doc.Scenes = []*gltf.Scene{{Nodes: nodes}}
	b.doc.Scene = uint32Ptr(0)
	return b.doc
}

// saveGltf 以 .gltf + 旁路 .bin 的形式写出测试场景
func saveGltf(t *testing.T, doc *gltf.Document, dir, stem string) string {
	t.Helper()
	doc.Buffers[0].URI = stem + BINEXT
	path := filepath.Join(dir, stem+GLTFEXT)
	if err := saveDocument(doc, path); err != nil {
		t.Fatalf("failed to save fixture: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, stem+BINEXT)); err != nil {
		t.Fatalf("fixture buffer not beside %s: %v", path, err)
	}
	return path
}

// saveGlb 以自包含GLB的形式写出测试场景
func saveGlb(t *testing.T, doc *gltf.Document, dir, stem string) string {
	t.Helper()
	doc.Buffers[0].URI = ""
	data, err := GetGltfBinary(doc, PaddingUnit)
	if err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	path := filepath.Join(dir, stem+GLBEXT)
	if err := writeFile(path, data); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func quadPrim() primDesc {
	return primDesc{
		positions: []vec3.T{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		normals:   []vec3.T{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		texcoords: []vec2.T{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		indices16: []uint16{0, 1, 2, 0, 2, 3},
	}
}

func trianglePrim() primDesc {
	return primDesc{
		positions: []vec3.T{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		indices16: []uint16{0, 1, 2},
	}
}
