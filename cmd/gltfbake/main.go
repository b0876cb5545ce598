// gltfbake 把glTF/GLB场景烘焙为渲染器使用的固定顶点布局
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	baker "github.com/flywave/go-gltf-baker"
	"github.com/flywave/go-gltf-baker/internal/config"
	"github.com/flywave/go-gltf-baker/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	config.ParseFlags()

	args := config.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "scene.gltf path is required")
		printUsage()
		return 1
	}
	for _, a := range args {
		if strings.TrimSpace(a) == "" {
			fmt.Fprintln(os.Stderr, "empty scene path")
			printUsage()
			return 1
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	opts := baker.Options{
		Suffix: cfg.Output.Suffix,
		Clamp:  cfg.Quantization.Clamp,
		GLB:    cfg.Output.GLB,
		Logger: logger.Log,
	}

	if len(args) == 1 {
		if _, err := baker.BakeScene(args[0], opts); err != nil {
			return 1
		}
		return 0
	}

	bar := progressbar.Default(int64(len(args)), "baking")
	results := baker.BakeAll(args, cfg.Batch.Workers, opts, func(*baker.Result) {
		_ = bar.Add(1)
	})
	_ = bar.Finish()

	failed := baker.Failed(results)
	for _, r := range failed {
		logger.Log.Error("not baked", zap.String("path", r.Input), zap.Error(r.Err))
	}
	logger.Log.Info("batch finished",
		zap.Int("files", len(results)),
		zap.Int("failed", len(failed)))
	if len(failed) > 0 {
		return 1
	}
	return 0
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage:
  gltfbake [options] <scene.gltf|scene.glb> [more scenes...]

Writes <stem>_baked.gltf and <stem>_baked.bin beside each input.

Options:
  -config <file>   YAML config file
  -debug           Enable debug logging
  -glb             Also write <stem>_baked.glb
  -no-clamp        Wrap out-of-range normal components instead of clamping
  -workers <n>     Files baked in parallel
  -log-file <file> Also log to a rotated file`)
}
