package baker

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
)

func writeLittleByte(wt io.Writer, v interface{}) error {
	return binary.Write(wt, binary.LittleEndian, v)
}

func readLittleByte(rd io.Reader, v interface{}) error {
	return binary.Read(rd, binary.LittleEndian, v)
}

// readLittleBlock 按小端整块解码到v
func readLittleBlock(data []byte, v interface{}) error {
	return readLittleByte(bytes.NewReader(data), v)
}

// OutputPaths 烘焙输出文件路径，与输入文件同目录
type OutputPaths struct {
	Stem string
	GLTF string
	Bin  string
	GLB  string
}

// BakedPaths 由输入路径的文件名主干生成 <stem><suffix>.gltf/.bin/.glb
func BakedPaths(input, suffix string) OutputPaths {
	if suffix == "" {
		suffix = BAKED_SUFFIX
	}
	dir := filepath.Dir(input)
	stem := filepath.Base(input)
	stem = stem[:len(stem)-len(filepath.Ext(stem))]
	base := filepath.Join(dir, stem+suffix)
	return OutputPaths{
		Stem: stem,
		GLTF: base + GLTFEXT,
		Bin:  base + BINEXT,
		GLB:  base + GLBEXT,
	}
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}
