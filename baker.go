package baker

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Options 烘焙参数
type Options struct {
	// Suffix 输出文件名后缀，默认 _baked
	Suffix string
	// Clamp 量化前截断超出[-1,1]的分量
	Clamp bool
	// GLB 额外写出自包含的GLB文件
	GLB    bool
	Logger *zap.Logger
}

// DefaultOptions 返回默认烘焙参数
func DefaultOptions() Options {
	return Options{
		Suffix: BAKED_SUFFIX,
		Clamp:  true,
	}
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Result 一次烘焙的结果
type Result struct {
	Input    string
	Outputs  OutputPaths
	Meshes   int
	Relems   int
	Vertices int
	Indices  int
	Warnings []Warning
	Err      error
}

// BakeScene 加载 -> 展平 -> 重新打包 -> 写出，每个阶段完成后才开始下一个
// 加载失败时不写任何文件
func BakeScene(path string, opts Options) (*Result, error) {
	log := opts.logger().With(zap.String("path", path))
	start := time.Now()
	res := &Result{Input: path, Outputs: BakedPaths(path, opts.Suffix)}

	fail := func(err error) (*Result, error) {
		res.Err = err
		log.Error("bake failed", zap.Error(err))
		return res, err
	}
	warn := func(ws []Warning) {
		for _, w := range ws {
			w.Path = path
			res.Warnings = append(res.Warnings, w)
			log.Warn(w.Message, zap.Int("mesh", w.Mesh), zap.Int("primitive", w.Primitive))
		}
	}

	doc, warnings, err := LoadScene(path)
	if err != nil {
		return fail(err)
	}
	warn(warnings)
	log.Debug("loaded scene",
		zap.Int("meshes", len(doc.Meshes)),
		zap.Int("accessors", len(doc.Accessors)),
		zap.Int("buffers", len(doc.Buffers)))

	meshes, warnings, err := ProcessMeshes(doc, FlattenOptions{Clamp: opts.Clamp})
	warn(warnings)
	if err != nil {
		var be *BakeError
		if errors.As(err, &be) {
			be.Path = path
		}
		return fail(err)
	}
	res.Meshes = len(meshes.Meshes)
	res.Relems = len(meshes.Relems)
	res.Vertices = len(meshes.Vertices)
	res.Indices = len(meshes.Indices)

	moved, err := embedImages(doc)
	if err != nil {
		return fail(fileError("images", path, err))
	}
	if moved > 0 {
		log.Debug("embedded images as data URIs", zap.Int("images", moved))
	}

	if err := UpdateBuffer(doc, meshes, res.Outputs); err != nil {
		return fail(fileError("repack", path, err))
	}
	UpdateBufferViews(doc, meshes)
	if err := UpdateAccessors(doc, meshes); err != nil {
		return fail(fileError("accessors", path, err))
	}
	for _, mi := range dropEmptyMeshes(doc) {
		warn([]Warning{{Mesh: mi, Primitive: -1, Message: "no triangle primitives left, mesh removed"}})
	}
	for _, d := range dropDangling(doc) {
		warn([]Warning{{Mesh: -1, Primitive: -1, Message: fmt.Sprintf("dropped %s referencing replaced accessors", d)}})
	}
	addExtension(doc, QuantizationExtension, true)

	if err := WriteScene(doc, res.Outputs, opts.GLB); err != nil {
		return fail(err)
	}

	log.Info("baked scene",
		zap.String("output", res.Outputs.GLTF),
		zap.Int("meshes", res.Meshes),
		zap.Int("renderElements", res.Relems),
		zap.Int("vertices", res.Vertices),
		zap.Int("indices", res.Indices),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}
