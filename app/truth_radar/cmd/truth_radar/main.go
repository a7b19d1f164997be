package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/config"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/engine"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/logger"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
)

func main() {
	var (
		configPath = flag.String("config", "configs/config.yaml", "配置文件路径")
		file       = flag.String("file", "", "从文件读取待分析文本")
		url        = flag.String("url", "", "分析链接正文")
		image      = flag.String("image", "", "图片取证")
		lang       = flag.String("lang", "en", "语言代码")
		deep       = flag.Bool("deep", false, "深度取证")
		authority  = flag.Bool("authority", false, "以权威用户身份分析")
		withCtx    = flag.Bool("context", true, "上下文关联")
		noSafety   = flag.Bool("no-safety", false, "跳过安全检查")
		asJSON     = flag.Bool("json", false, "输出 JSON")
		seed       = flag.Bool("seed", false, "写入演示数据后退出")
	)
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("无法加载配置文件: %v", err)
	}
	if err = logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}

	ctx := context.Background()
	comp, cleanup, err := engine.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("引擎初始化失败: %v", err)
	}
	defer cleanup()

	if *seed {
		if comp.Archive == nil {
			log.Fatal("未配置数据库，无法写入演示数据")
		}
		n, err := comp.Archive.SeedDemo(ctx)
		if err != nil {
			log.Fatalf("写入演示数据失败: %v", err)
		}
		fmt.Printf("seeded %d demo analyses\n", n)
		return
	}

	if *image != "" {
		data, err := os.ReadFile(*image)
		if err != nil {
			log.Fatalf("无法读取图片: %v", err)
		}
		report, err := comp.Engine.AnalyzeImage(ctx, data, *image)
		if err != nil {
			log.Fatalf("图片分析失败: %v", err)
		}
		if *asJSON {
			printJSON(report)
			return
		}
		fmt.Println(renderImage(report))
		return
	}

	text := strings.Join(flag.Args(), " ")
	if *file != "" {
		b, err := os.ReadFile(*file)
		if err != nil {
			log.Fatalf("无法读取文件: %v", err)
		}
		text = string(b)
	}
	if text == "" && *url == "" {
		fmt.Fprintln(os.Stderr, "usage: truth_radar [flags] <text>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	req := model.AnalysisRequest{
		Text:          text,
		URL:           *url,
		Language:      *lang,
		Level:         model.LevelQuick,
		EnableContext: *withCtx,
		SafetyCheck:   !*noSafety,
		UserType:      model.UserPublic,
	}
	if *deep {
		req.Level = model.LevelDeep
	}
	if *authority {
		req.UserType = model.UserAuthority
	}

	res, err := comp.Engine.Submit(ctx, req)
	if err != nil {
		log.Fatalf("分析失败: %v", err)
	}
	if *asJSON {
		printJSON(res)
		return
	}
	fmt.Println(render(res))
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatalf("输出失败: %v", err)
	}
}
