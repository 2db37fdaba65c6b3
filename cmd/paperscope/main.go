package main

import (
	"context"
	"fmt"
	"os"

	"PaperScope/config"
	"PaperScope/db/sqlite"
	"PaperScope/internal/llm"
	"PaperScope/internal/search"
	"PaperScope/internal/server"
	"PaperScope/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
	logFile    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "paperscope",
		Short: "多引擎学术论文聚合搜索服务",
		Long:  "PaperScope 聚合 arXiv、Semantic Scholar、PubMed 的搜索结果，用 LLM 做相关性筛选和中文解读。",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "日志级别: debug/info/warn/error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "日志文件路径，留空输出到终端")

	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	// .env 不存在时静默跳过
	_ = godotenv.Load()

	logger.Init(logLevel, logFile == "", logFile)

	cfg := config.MustInit(configFile)

	store, err := sqlite.NewSQLiteDB(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("初始化数据库失败: %w", err)
	}
	defer store.Close()

	ctx := context.Background()

	filter, translator, refiner := buildLLM(ctx, cfg)

	svc := search.NewService(cfg, filter, translator, store)
	srv := server.New(cfg, svc, refiner, store)

	return srv.Run()
}

// buildLLM 构建筛选、翻译、检索词扩展三个 LLM 组件。
// API Key 未配置时服务照常启动，筛选退化为取前 N，翻译与扩展直接报错。
func buildLLM(ctx context.Context, cfg *config.AppConfig) (*llm.Filter, *llm.Translator, *llm.Refiner) {
	mainModel, err := llm.NewChatModel(ctx, cfg.LLM)
	if err != nil {
		logger.Warn("LLM 未配置或创建失败，筛选与翻译功能受限: %v", err)
	}

	refineModel, err := llm.NewChatModel(ctx, cfg.RefineLLM())
	if err != nil {
		refineModel = mainModel
	}

	return llm.NewFilter(mainModel),
		llm.NewTranslator(mainModel, cfg.Search.TranslateWorkers),
		llm.NewRefiner(refineModel)
}
