package baker

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/qmuntal/gltf"
)

var glbMagic = []byte("glTF")

// SceneFormat 输入文件格式
type SceneFormat int

const (
	FormatUnknown SceneFormat = iota
	FormatGLTF
	FormatGLB
)

func (f SceneFormat) String() string {
	switch f {
	case FormatGLTF:
		return "gltf"
	case FormatGLB:
		return "glb"
	default:
		return "unknown"
	}
}

// DetectFormat 只根据扩展名判断格式
func DetectFormat(path string) SceneFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case GLTFEXT:
		return FormatGLTF
	case GLBEXT:
		return FormatGLB
	default:
		return FormatUnknown
	}
}

// LoadScene 读取glTF/GLB场景
// 图像数据保持原样，不做解码；文档级扩展只产生警告
func LoadScene(path string) (*gltf.Document, []Warning, error) {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return nil, nil, fileError("load", path,
			fmt.Errorf("%w: expected %s or %s, got %q", ErrUnsupportedFormat, GLTFEXT, GLBEXT, filepath.Ext(path)))
	}

	if err := checkContainer(path, format); err != nil {
		return nil, nil, fileError("load", path, err)
	}

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fileError("load", path, fmt.Errorf("%w: %v", ErrParseFailure, err))
	}

	if err := checkReferences(doc); err != nil {
		return nil, nil, fileError("load", path, err)
	}

	var warnings []Warning
	if exts := declaredExtensions(doc); len(exts) > 0 {
		warnings = append(warnings, Warning{
			Path:      path,
			Mesh:      -1,
			Primitive: -1,
			Message:   fmt.Sprintf("no glTF extensions are implemented, ignoring %s", strings.Join(exts, ", ")),
		})
	}
	return doc, warnings, nil
}

func checkContainer(path string, format SceneFormat) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	defer f.Close()

	head := make([]byte, len(glbMagic))
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	isBinary := n == len(glbMagic) && bytes.Equal(head, glbMagic)

	switch {
	case format == FormatGLB && !isBinary:
		return fmt.Errorf("%w: missing GLB header", ErrParseFailure)
	case format == FormatGLTF && isBinary:
		return fmt.Errorf("%w: binary container in a %s file", ErrParseFailure, GLTFEXT)
	}
	return nil
}

func declaredExtensions(doc *gltf.Document) []string {
	seen := make(map[string]bool)
	for k := range doc.Extensions {
		seen[k] = true
	}
	for _, k := range doc.ExtensionsUsed {
		seen[k] = true
	}
	for _, k := range doc.ExtensionsRequired {
		seen[k] = true
	}
	exts := make([]string, 0, len(seen))
	for k := range seen {
		exts = append(exts, k)
	}
	sort.Strings(exts)
	return exts
}

// checkReferences 校验三角形图元引用的访问器、缓冲区视图、缓冲区都在文档范围内
// 会被跳过的图元不参与校验
func checkReferences(doc *gltf.Document) error {
	for mi, mesh := range doc.Meshes {
		for pi, prim := range mesh.Primitives {
			if !isTriangleList(prim) {
				continue
			}
			if prim.Indices != nil {
				if err := checkAccessor(doc, *prim.Indices); err != nil {
					return primitiveError("indices", mi, pi, err)
				}
			}
			for name, idx := range prim.Attributes {
				if err := checkAccessor(doc, idx); err != nil {
					return primitiveError(name, mi, pi, err)
				}
			}
		}
	}
	return nil
}

func checkAccessor(doc *gltf.Document, idx uint32) error {
	if int(idx) >= len(doc.Accessors) {
		return fmt.Errorf("%w: accessor %d of %d", ErrParseFailure, idx, len(doc.Accessors))
	}
	acc := doc.Accessors[idx]
	if acc.BufferView == nil {
		return nil
	}
	if int(*acc.BufferView) >= len(doc.BufferViews) {
		return fmt.Errorf("%w: buffer view %d of %d", ErrParseFailure, *acc.BufferView, len(doc.BufferViews))
	}
	view := doc.BufferViews[*acc.BufferView]
	if int(view.Buffer) >= len(doc.Buffers) {
		return fmt.Errorf("%w: buffer %d of %d", ErrParseFailure, view.Buffer, len(doc.Buffers))
	}
	if end := uint64(view.ByteOffset) + uint64(view.ByteLength); end > uint64(len(doc.Buffers[view.Buffer].Data)) {
		return fmt.Errorf("%w: buffer view %d ends at %d past buffer length %d",
			ErrParseFailure, *acc.BufferView, end, len(doc.Buffers[view.Buffer].Data))
	}
	return nil
}
