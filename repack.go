package baker

import (
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
)

// BuildBuffer 把索引和顶点写入唯一的二进制块：[0, indexBytes) 为索引，其后紧跟32字节步长的顶点
func BuildBuffer(res *ProcessedMeshes, name, uri string) (*gltf.Buffer, error) {
	w := newBufferWriter()
	if err := writeLittleByte(w, res.Indices); err != nil {
		return nil, fmt.Errorf("indices: %w", err)
	}
	if err := writeLittleByte(w, res.Vertices); err != nil {
		return nil, fmt.Errorf("vertices: %w", err)
	}
	if want := res.IndexBytes() + res.VertexBytes(); w.Size() != want {
		return nil, fmt.Errorf("packed %d bytes, expected %d", w.Size(), want)
	}
	return &gltf.Buffer{
		Name:       name,
		URI:        uri,
		ByteLength: uint32(w.Size()),
		Data:       w.Bytes(),
	}, nil
}

// BuildBufferViews 生成两个缓冲区视图：0为索引区，1为顶点区
func BuildBufferViews(res *ProcessedMeshes) []*gltf.BufferView {
	indexBytes := uint32(res.IndexBytes())
	return []*gltf.BufferView{
		{
			Buffer:     0,
			ByteLength: indexBytes,
			Target:     gltf.TargetElementArrayBuffer,
		},
		{
			Buffer:     0,
			ByteOffset: indexBytes,
			ByteLength: uint32(res.VertexBytes()),
			ByteStride: VERTEX_SIZE,
			Target:     gltf.TargetArrayBuffer,
		},
	}
}

// UpdateBuffer 丢弃文档原有的全部缓冲区，替换为烘焙后的单一缓冲区
func UpdateBuffer(doc *gltf.Document, res *ProcessedMeshes, paths OutputPaths) error {
	buffer, err := BuildBuffer(res, paths.Stem, filepath.Base(paths.Bin))
	if err != nil {
		return err
	}
	doc.Buffers = []*gltf.Buffer{buffer}
	return nil
}

// UpdateBufferViews 丢弃原有的缓冲区视图
func UpdateBufferViews(doc *gltf.Document, res *ProcessedMeshes) {
	doc.BufferViews = BuildBufferViews(res)
}
