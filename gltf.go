package baker

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
)

const (
	// PaddingChar 用于二进制填充的字符
	PaddingChar = 0x20

	// PaddingUnit GLB块的对齐单位
	PaddingUnit = 4
)

// bufferWriter 记录写入字节的内存写入器
type bufferWriter struct {
	buf bytes.Buffer
}

func (w *bufferWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *bufferWriter) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *bufferWriter) Size() int {
	return w.buf.Len()
}

func newBufferWriter() *bufferWriter {
	return &bufferWriter{}
}

// sidecarWriter 把外部缓冲区写到文档所在目录，而不是进程工作目录
type sidecarWriter struct {
	Dir string
}

func (h *sidecarWriter) WriteResource(uri string, data []byte) error {
	return writeFile(filepath.Join(h.Dir, filepath.FromSlash(uri)), data)
}

// saveDocument 以JSON形式写出文档，外部缓冲区写在name的同级目录
func saveDocument(doc *gltf.Document, name string) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	encoder := gltf.NewEncoder(f).WithWriteHandler(&sidecarWriter{Dir: filepath.Dir(name)})
	encoder.AsBinary = false
	if err := encoder.Encode(doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// calcPadding 计算需要的填充字节数
func calcPadding(offset, unit int) int {
	padding := offset % unit
	if padding != 0 {
		padding = unit - padding
	}
	return padding
}

// GetGltfBinary 将GLTF文档编码为二进制格式
func GetGltfBinary(doc *gltf.Document, paddingUnit int) ([]byte, error) {
	writer := newBufferWriter()

	encoder := gltf.NewEncoder(writer)
	encoder.AsBinary = true

	if err := encoder.Encode(doc); err != nil {
		return nil, err
	}

	if padding := calcPadding(writer.Size(), paddingUnit); padding > 0 {
		writer.Write(bytes.Repeat([]byte{PaddingChar}, padding))
	}
	return writer.Bytes(), nil
}

// addExtension 向文档声明扩展，已存在时不重复添加
func addExtension(doc *gltf.Document, name string, required bool) {
	if !containsString(doc.ExtensionsUsed, name) {
		doc.ExtensionsUsed = append(doc.ExtensionsUsed, name)
	}
	if required && !containsString(doc.ExtensionsRequired, name) {
		doc.ExtensionsRequired = append(doc.ExtensionsRequired, name)
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// embedImages 把存放在缓冲区视图里的图像改写为data URI，字节原样拷贝，不做解码
func embedImages(doc *gltf.Document) (int, error) {
	moved := 0
	for i, img := range doc.Images {
		if img.BufferView == nil {
			continue
		}
		view := *img.BufferView
		if int(view) >= len(doc.BufferViews) {
			return moved, fmt.Errorf("%w: image %d references buffer view %d", ErrAccessorOutOfBounds, i, view)
		}
		bv := doc.BufferViews[view]
		if int(bv.Buffer) >= len(doc.Buffers) {
			return moved, fmt.Errorf("%w: image %d references buffer %d", ErrAccessorOutOfBounds, i, bv.Buffer)
		}
		data := doc.Buffers[bv.Buffer].Data
		end := uint64(bv.ByteOffset) + uint64(bv.ByteLength)
		if end > uint64(len(data)) {
			return moved, fmt.Errorf("%w: image %d bytes [%d:%d] of %d", ErrAccessorOutOfBounds, i, bv.ByteOffset, end, len(data))
		}
		mime := img.MimeType
		if mime == "" {
			mime = "application/octet-stream"
		}
		img.URI = "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data[bv.ByteOffset:end])
		img.BufferView = nil
		moved++
	}
	return moved, nil
}

// uint32Ptr 返回uint32指针的辅助函数
func uint32Ptr(v uint32) *uint32 {
	return &v
}
