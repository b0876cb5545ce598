package baker

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/flywave/go3d/vec4"
	"github.com/qmuntal/gltf"
)

func sampleProcessed() *ProcessedMeshes {
	return &ProcessedMeshes{
		Indices: []uint32{0, 1, 2, 2, 1, 0},
		Vertices: []Vertex{
			{PositionAndNormal: vec4.T{1, 2, 3, PackedToFloat(0x007F0000)}},
			{PositionAndNormal: vec4.T{4, 5, 6, 0}, TexCoordAndTangentAndPadding: vec4.T{0.5, 0.5, 0, 0}},
			{PositionAndNormal: vec4.T{7, 8, 9, 0}},
		},
		Relems: []RenderElement{{IndexCount: 6, VertexCount: 3}},
		Meshes: []Mesh{{FirstRelem: 0, RelemCount: 1}},
	}
}

// TestBuildBuffer 测试二进制块布局：先索引后顶点，中间无填充
func TestBuildBuffer(t *testing.T) {
	res := sampleProcessed()
	buffer, err := BuildBuffer(res, "scene", "scene_baked.bin")
	if err != nil {
		t.Fatalf("BuildBuffer failed: %v", err)
	}

	wantLen := 6*INDEX_SIZE + 3*VERTEX_SIZE
	if int(buffer.ByteLength) != wantLen || len(buffer.Data) != wantLen {
		t.Fatalf("buffer length %d/%d, want %d", buffer.ByteLength, len(buffer.Data), wantLen)
	}
	if buffer.Name != "scene" || buffer.URI != "scene_baked.bin" {
		t.Errorf("buffer name/uri %q/%q", buffer.Name, buffer.URI)
	}

	for i, want := range res.Indices {
		if got := binary.LittleEndian.Uint32(buffer.Data[i*INDEX_SIZE:]); got != want {
			t.Errorf("index %d = %d, want %d", i, got, want)
		}
	}

	vertexRegion := buffer.Data[res.IndexBytes():]
	expected := bytes.NewBuffer(nil)
	if err := writeLittleByte(expected, res.Vertices); err != nil {
		t.Fatalf("writeLittleByte failed: %v", err)
	}
	if !bytes.Equal(vertexRegion, expected.Bytes()) {
		t.Error("vertex region does not match the packed vertices")
	}
	if got := binary.LittleEndian.Uint32(vertexRegion[VERTEX_NORMAL_OFFSET:]); got != 0x007F0000 {
		t.Errorf("first normal word %#08x, want 0x007f0000", got)
	}
}

// TestBuildBufferViews 测试只生成两个缓冲区视图
func TestBuildBufferViews(t *testing.T) {
	res := sampleProcessed()
	views := BuildBufferViews(res)

	if len(views) != 2 {
		t.Fatalf("expected 2 buffer views, got %d", len(views))
	}

	idx := views[INDEX_BUFFER_VIEW]
	if idx.ByteOffset != 0 || idx.ByteLength != 24 || idx.ByteStride != 0 || idx.Target != gltf.TargetElementArrayBuffer {
		t.Errorf("index view %+v", idx)
	}

	vtx := views[VERTEX_BUFFER_VIEW]
	if vtx.ByteOffset != 24 || vtx.ByteLength != 96 || vtx.ByteStride != VERTEX_SIZE || vtx.Target != gltf.TargetArrayBuffer {
		t.Errorf("vertex view %+v", vtx)
	}
}

// TestUpdateBufferReplaces 测试原有缓冲区和视图被替换而非合并
func TestUpdateBufferReplaces(t *testing.T) {
	doc := newDocBuilder().addMesh(quadPrim(), trianglePrim()).build()
	doc.Buffers = append(doc.Buffers, &gltf.Buffer{ByteLength: 4, Data: []byte{1, 2, 3, 4}})
	res, _ := process(t, doc)

	paths := BakedPaths("/tmp/models/house.gltf", "")
	if err := UpdateBuffer(doc, res, paths); err != nil {
		t.Fatalf("UpdateBuffer failed: %v", err)
	}
	UpdateBufferViews(doc, res)

	if len(doc.Buffers) != 1 {
		t.Fatalf("expected 1 buffer, got %d", len(doc.Buffers))
	}
	if doc.Buffers[0].URI != "house_baked.bin" || doc.Buffers[0].Name != "house" {
		t.Errorf("buffer uri/name %q/%q", doc.Buffers[0].URI, doc.Buffers[0].Name)
	}
	if want := uint32(9*INDEX_SIZE + 7*VERTEX_SIZE); doc.Buffers[0].ByteLength != want {
		t.Errorf("buffer length %d, want %d", doc.Buffers[0].ByteLength, want)
	}
	if len(doc.BufferViews) != 2 {
		t.Errorf("expected 2 buffer views, got %d", len(doc.BufferViews))
	}
}

// TestBakedPaths 测试输出文件命名
func TestBakedPaths(t *testing.T) {
	tests := []struct {
		in     string
		suffix string
		gltf   string
		bin    string
		glb    string
	}{
		{"models/house.gltf", "", "models/house_baked.gltf", "models/house_baked.bin", "models/house_baked.glb"},
		{"models/house.glb", "_baked", "models/house_baked.gltf", "models/house_baked.bin", "models/house_baked.glb"},
		{"a.b.gltf", "_rt", "a.b_rt.gltf", "a.b_rt.bin", "a.b_rt.glb"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p := BakedPaths(tt.in, tt.suffix)
			if p.GLTF != tt.gltf || p.Bin != tt.bin || p.GLB != tt.glb {
				t.Errorf("BakedPaths(%q) = %+v", tt.in, p)
			}
		})
	}
}

// TestCalcPadding 测试对齐填充计算
func TestCalcPadding(t *testing.T) {
	tests := []struct{ offset, unit, want int }{
		{0, 4, 0}, {1, 4, 3}, {4, 4, 0}, {6, 4, 2}, {33, 32, 31},
	}
	for _, tt := range tests {
		if got := calcPadding(tt.offset, tt.unit); got != tt.want {
			t.Errorf("calcPadding(%d, %d) = %d, want %d", tt.offset, tt.unit, got, tt.want)
		}
	}
}
