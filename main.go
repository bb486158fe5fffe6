package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ByLCY/hstrip/drawable"
	"github.com/ByLCY/hstrip/dsl"
	"github.com/ByLCY/hstrip/layout"
	"github.com/ByLCY/hstrip/renderer"
	canvasrenderer "github.com/ByLCY/hstrip/renderer/canvas"
	termrenderer "github.com/ByLCY/hstrip/renderer/term"
)

func main() {
	input := flag.String("in", "examples/toolbar.strip", "DSL 文件路径")
	output := flag.String("out", "output/toolbar.pdf", "输出文件路径（term 格式忽略）")
	format := flag.String("format", "pdf", "输出格式：pdf、svg、png 或 term")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到 DSL 的 JSON 数据")
	trim := flag.Bool("trim", false, "绘制时不在最后一个子元素之后保留间距")
	verbose := flag.Bool("verbose", false, "输出调试日志")
	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	drawable.SetLogger(logger.Named("drawable"))
	layout.SetLogger(logger.Named("layout"))

	var inputData any
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &inputData); err != nil {
			logger.Fatal("解析 data JSON 失败", zap.Error(err))
		}
	}

	backend, err := newBackend(*format, filepath.Dir(*input), logger)
	if err != nil {
		logger.Fatal("无法创建渲染后端", zap.Error(err))
	}
	out := *output
	if *format == "term" {
		out = ""
	}
	if err := run(*input, out, *debug, inputData, *trim, backend); err != nil {
		logger.Fatal("生成失败", zap.Error(err))
	}
	if out != "" {
		fmt.Printf("已生成 %s：%s\n", *format, out)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	return cfg.Build()
}

// newBackend 按格式创建渲染后端。终端预览借用 canvas 后端加载图片，以便得到真实宽高比。
func newBackend(format, baseDir string, logger *zap.Logger) (renderer.Backend, error) {
	if format == "term" {
		assets := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{BaseDir: baseDir, Logger: logger})
		return termrenderer.New(termrenderer.Options{Assets: assets, Logger: logger.Named("term")}), nil
	}
	f, err := canvasrenderer.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir: baseDir,
		Format:  f,
		Logger:  logger.Named("canvas"),
	}), nil
}

// run 串联解析、布局与渲染。outputPath 为空时写到标准输出。
func run(inputPath, outputPath, debugPath string, data any, trim bool, r renderer.Backend) error {
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("无法打开 DSL 文件 %s: %w", inputPath, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析 DSL 失败: %w", err)
	}

	result, err := layout.Build(doc, data, renderer.BuildOptions(r, trim))
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}

	if debugPath != "" {
		if err := writeDebug(result, debugPath); err != nil {
			return err
		}
	}

	out, err := r.Render(result)
	if err != nil {
		return fmt.Errorf("渲染失败: %w", err)
	}
	if outputPath == "" {
		_, err := os.Stdout.Write(out)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
