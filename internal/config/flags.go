package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagGLB     = flag.Bool("glb", false, "Also write <stem>_baked.glb")
	flagNoClamp = flag.Bool("no-clamp", false, "Wrap out-of-range normal components instead of clamping")
	flagWorkers = flag.Int("workers", 0, "Number of files baked in parallel")
	flagLogFile = flag.String("log-file", "", "Write logs to this file as well")
)

// ParseFlags 解析命令行参数，需在Load之前调用
func ParseFlags() {
	flag.Parse()
}

// Args 返回参数解析后剩余的场景路径
func Args() []string {
	return flag.Args()
}

// ConfigPath 返回 -config 指定的配置文件路径
func ConfigPath() string {
	return *flagConfig
}

// applyFlags 用显式给出的命令行参数覆盖配置
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagGLB {
		cfg.Output.GLB = true
	}
	if *flagNoClamp {
		cfg.Quantization.Clamp = false
	}
	if *flagWorkers > 0 {
		cfg.Batch.Workers = *flagWorkers
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
