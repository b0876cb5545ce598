package baker

import (
	"fmt"

	"github.com/flywave/go3d/vec3"
	"github.com/qmuntal/gltf"
)

// UpdateAccessors 为每个保留的图元重新生成访问器，并移除被跳过的非三角形图元
// 访问器只为源图元上存在的属性生成
func UpdateAccessors(doc *gltf.Document, res *ProcessedMeshes) error {
	var accessors []*gltf.Accessor
	for mi, mesh := range doc.Meshes {
		if mi >= len(res.Meshes) {
			return fmt.Errorf("mesh %d has no flattened range", mi)
		}
		relems := res.MeshRelems(mi)
		kept := mesh.Primitives[:0]
		j := 0
		for pi, prim := range mesh.Primitives {
			if !isTriangleList(prim) {
				continue
			}
			if j >= len(relems) {
				return fmt.Errorf("mesh %d primitive %d has no render element", mi, pi)
			}
			accessors = buildAccessors(accessors, prim, relems[j], res.Vertices)
			kept = append(kept, prim)
			j++
		}
		mesh.Primitives = kept
	}
	doc.Accessors = accessors
	return nil
}

func buildAccessors(accessors []*gltf.Accessor, prim *gltf.Primitive, relem RenderElement, vertices []Vertex) []*gltf.Accessor {
	_, hasNormals := prim.Attributes[ATTRIB_NORMAL]
	_, hasTangents := prim.Attributes[ATTRIB_TANGENT]
	_, hasTexcoord := prim.Attributes[ATTRIB_TEXCOORD_0]

	offset := relem.VertexOffset * VERTEX_SIZE
	attributes := gltf.Attribute{}

	prim.Indices = uint32Ptr(uint32(len(accessors)))
	accessors = append(accessors, &gltf.Accessor{
		BufferView:    uint32Ptr(INDEX_BUFFER_VIEW),
		ByteOffset:    relem.IndexOffset * INDEX_SIZE,
		ComponentType: gltf.ComponentUint,
		Count:         relem.IndexCount,
		Type:          gltf.AccessorScalar,
	})

	min, max := positionBounds(vertices[relem.VertexOffset : relem.VertexOffset+relem.VertexCount])
	attributes[ATTRIB_POSITION] = uint32(len(accessors))
	accessors = append(accessors, &gltf.Accessor{
		BufferView:    uint32Ptr(VERTEX_BUFFER_VIEW),
		ByteOffset:    offset + VERTEX_POSITION_OFFSET,
		ComponentType: gltf.ComponentFloat,
		Count:         relem.VertexCount,
		Type:          gltf.AccessorVec3,
		Min:           min,
		Max:           max,
	})

	if hasNormals {
		// 只暴露打包字的前3个字节，第4个为填充
		attributes[ATTRIB_NORMAL] = uint32(len(accessors))
		accessors = append(accessors, &gltf.Accessor{
			BufferView:    uint32Ptr(VERTEX_BUFFER_VIEW),
			ByteOffset:    offset + VERTEX_NORMAL_OFFSET,
			ComponentType: gltf.ComponentByte,
			Normalized:    true,
			Count:         relem.VertexCount,
			Type:          gltf.AccessorVec3,
		})
	}

	if hasTexcoord {
		attributes[ATTRIB_TEXCOORD_0] = uint32(len(accessors))
		accessors = append(accessors, &gltf.Accessor{
			BufferView:    uint32Ptr(VERTEX_BUFFER_VIEW),
			ByteOffset:    offset + VERTEX_TEXCOORD_OFFSET,
			ComponentType: gltf.ComponentFloat,
			Count:         relem.VertexCount,
			Type:          gltf.AccessorVec2,
		})
	}

	if hasTangents {
		attributes[ATTRIB_TANGENT] = uint32(len(accessors))
		accessors = append(accessors, &gltf.Accessor{
			BufferView:    uint32Ptr(VERTEX_BUFFER_VIEW),
			ByteOffset:    offset + VERTEX_TANGENT_OFFSET,
			ComponentType: gltf.ComponentByte,
			Normalized:    true,
			Count:         relem.VertexCount,
			Type:          gltf.AccessorVec4,
		})
	}

	prim.Attributes = attributes
	return accessors
}

func positionBounds(vertices []Vertex) ([]float32, []float32) {
	if len(vertices) == 0 {
		return nil, nil
	}
	first := vertexPosition(&vertices[0])
	lo, hi := first, first
	for i := 1; i < len(vertices); i++ {
		p := vertexPosition(&vertices[i])
		lo = vec3.Min(&lo, &p)
		hi = vec3.Max(&hi, &p)
	}
	return []float32{lo[0], lo[1], lo[2]}, []float32{hi[0], hi[1], hi[2]}
}

func vertexPosition(v *Vertex) vec3.T {
	return vec3.T{v.PositionAndNormal[0], v.PositionAndNormal[1], v.PositionAndNormal[2]}
}

// dropEmptyMeshes 移除没有剩余图元的网格，并重映射节点的网格索引
// 引用被移除网格的节点不再挂网格
func dropEmptyMeshes(doc *gltf.Document) []int {
	var removed []int
	remap := make([]*uint32, len(doc.Meshes))
	kept := doc.Meshes[:0]
	for mi, mesh := range doc.Meshes {
		if len(mesh.Primitives) == 0 {
			removed = append(removed, mi)
			continue
		}
		remap[mi] = uint32Ptr(uint32(len(kept)))
		kept = append(kept, mesh)
	}
	if len(removed) == 0 {
		return nil
	}
	doc.Meshes = kept

	for _, node := range doc.Nodes {
		if node.Mesh == nil || int(*node.Mesh) >= len(remap) {
			continue
		}
		node.Mesh = remap[*node.Mesh]
		if node.Mesh == nil {
			node.Weights = nil
		}
	}
	return removed
}

// dropDangling 移除仍引用旧访问器的变形目标、蒙皮和动画
func dropDangling(doc *gltf.Document) []string {
	var dropped []string
	targets := 0
	for _, mesh := range doc.Meshes {
		morphed := false
		for _, prim := range mesh.Primitives {
			if len(prim.Targets) > 0 {
				targets++
				morphed = true
				prim.Targets = nil
			}
		}
		if morphed {
			mesh.Weights = nil
		}
	}
	if targets > 0 {
		dropped = append(dropped, fmt.Sprintf("morph targets on %d primitives", targets))
	}
	if len(doc.Skins) > 0 {
		dropped = append(dropped, fmt.Sprintf("%d skins", len(doc.Skins)))
		doc.Skins = nil
		for _, node := range doc.Nodes {
			node.Skin = nil
		}
	}
	if len(doc.Animations) > 0 {
		dropped = append(dropped, fmt.Sprintf("%d animations", len(doc.Animations)))
		doc.Animations = nil
	}
	return dropped
}

// WriteScene 在输入文件旁写出 <stem>_baked.gltf 及其二进制块，可选再写一份自包含的GLB
// 写入失败时可能已留下部分文件
func WriteScene(doc *gltf.Document, paths OutputPaths, writeGLB bool) error {
	if err := saveDocument(doc, paths.GLTF); err != nil {
		return fileError("write", paths.GLTF, fmt.Errorf("%w: %v", ErrWriteFailure, err))
	}
	if !writeGLB {
		return nil
	}

	buffer := doc.Buffers[0]
	uri := buffer.URI
	buffer.URI = ""
	data, err := GetGltfBinary(doc, PaddingUnit)
	buffer.URI = uri
	if err != nil {
		return fileError("write", paths.GLB, fmt.Errorf("%w: %v", ErrWriteFailure, err))
	}
	if err := writeFile(paths.GLB, data); err != nil {
		return fileError("write", paths.GLB, fmt.Errorf("%w: %v", ErrWriteFailure, err))
	}
	return nil
}
