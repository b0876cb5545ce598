// Package config 烘焙工具配置：默认值、YAML文件、命令行参数，按此优先级覆盖
package config

// Config 全部烘焙配置
type Config struct {
	Output       OutputConfig       `yaml:"output"`
	Quantization QuantizationConfig `yaml:"quantization"`
	Logging      LoggingConfig      `yaml:"logging"`
	Batch        BatchConfig        `yaml:"batch"`
}

// OutputConfig 输入文件旁写出的文件
type OutputConfig struct {
	Suffix string `yaml:"suffix" validate:"required"`
	GLB    bool   `yaml:"glb"` // 额外写出自包含的 .glb
}

// QuantizationConfig 法线/切线量化
type QuantizationConfig struct {
	Clamp bool `yaml:"clamp"`
}

type LoggingConfig struct {
	Level   string `yaml:"level" validate:"oneof=debug info warn error"`
	LogFile string `yaml:"log_file"`
}

// BatchConfig 多文件并行烘焙
type BatchConfig struct {
	Workers int `yaml:"workers" validate:"min=1,max=256"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Suffix: "_baked",
			GLB:    false,
		},
		Quantization: QuantizationConfig{
			Clamp: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Batch: BatchConfig{
			Workers: 1,
		},
	}
}
