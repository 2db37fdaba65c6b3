package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"PaperScope/internal/platform/arxiv"
	"PaperScope/internal/platform/pubmed"
	"PaperScope/internal/platform/semanticscholar"
	"PaperScope/pkg/logger"
)

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"` // 数据库文件路径
}

// LLMConfig LLM 配置（筛选与翻译共用）
type LLMConfig struct {
	BaseURL   string `mapstructure:"base_url" yaml:"base_url"` // API 地址，支持 OpenAI 兼容的 API
	ModelName string `mapstructure:"model" yaml:"model"`       // 模型名称
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`   // API Key
}

// RefineConfig 检索词扩展所用模型，留空则复用 llm 配置
type RefineConfig struct {
	BaseURL   string `mapstructure:"base_url" yaml:"base_url"`
	ModelName string `mapstructure:"model" yaml:"model"`
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`
}

// SearchConfig 搜索流水线参数
type SearchConfig struct {
	MaxResultsPerEngine int    `mapstructure:"max_results_per_engine" yaml:"max_results_per_engine"` // 单引擎抓取上限
	MaxFilteredResults  int    `mapstructure:"max_filtered_results" yaml:"max_filtered_results"`     // LLM 筛选后保留上限
	EngineDelay         int    `mapstructure:"engine_delay" yaml:"engine_delay"`                     // 引擎间延迟（秒）
	TranslateWorkers    int    `mapstructure:"translate_workers" yaml:"translate_workers"`           // 翻译并发数
	DefaultCategory     string `mapstructure:"default_category" yaml:"default_category"`
}

// AppConfig 应用总配置(全局 + 平台)
type AppConfig struct {
	Env             string                 `mapstructure:"env" yaml:"env"` // 运行环境:dev/prod
	Server          ServerConfig           `mapstructure:"server" yaml:"server"`
	Database        DatabaseConfig         `mapstructure:"database" yaml:"database"`
	LLM             LLMConfig              `mapstructure:"llm" yaml:"llm"`
	Refine          RefineConfig           `mapstructure:"refine" yaml:"refine"`
	Search          SearchConfig           `mapstructure:"search" yaml:"search"`
	Arxiv           arxiv.Config           `mapstructure:"arxiv" yaml:"arxiv"`
	SemanticScholar semanticscholar.Config `mapstructure:"semantic_scholar" yaml:"semantic_scholar"`
	PubMed          pubmed.Config          `mapstructure:"pubmed" yaml:"pubmed"`
}

// AvailableCategories 前端可选的 arXiv 大类
var AvailableCategories = map[string]string{
	"cs":      "计算机科学",
	"math":    "数学",
	"physics": "物理",
	"q-bio":   "定量生物学",
	"q-fin":   "定量金融",
	"stat":    "统计学",
	"eess":    "电气工程与系统科学",
	"econ":    "经济学",
}

var (
	global     *AppConfig
	once       sync.Once
	globalErr  error
	configPath string // 存储当前使用的配置文件路径
)

func setDefaults(v *viper.Viper) {

	homedir, _ := os.UserHomeDir()
	dataBasePath := filepath.Join(homedir, ".paperscope", "data", "paperscope.db")
	v.SetDefault("env", "prod")
	v.SetDefault("database.path", dataBasePath)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)

	v.SetDefault("arxiv.use_api", true)
	v.SetDefault("arxiv.proxy", "")
	v.SetDefault("arxiv.step", 100)
	v.SetDefault("arxiv.timeout", 30)
	v.SetDefault("arxiv.api_base", "https://export.arxiv.org/api/query")
	v.SetDefault("arxiv.web_base", "https://arxiv.org/search/advanced")

	v.SetDefault("semantic_scholar.api_base", "https://api.semanticscholar.org/graph/v1")
	v.SetDefault("semantic_scholar.api_key", "")
	v.SetDefault("semantic_scholar.proxy", "")
	v.SetDefault("semantic_scholar.timeout", 30)

	v.SetDefault("pubmed.api_base", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils")
	v.SetDefault("pubmed.api_key", "")
	v.SetDefault("pubmed.proxy", "")
	v.SetDefault("pubmed.timeout", 30)

	// 搜索流水线默认值
	v.SetDefault("search.max_results_per_engine", 50)
	v.SetDefault("search.max_filtered_results", 20)
	v.SetDefault("search.engine_delay", 1)
	v.SetDefault("search.translate_workers", 5)
	v.SetDefault("search.default_category", "cs")

	// LLM 默认值
	v.SetDefault("llm.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("llm.model", "deepseek-chat")
	v.SetDefault("llm.api_key", "")

	// refine 留空时复用 llm
	v.SetDefault("refine.base_url", "")
	v.SetDefault("refine.model", "")
	v.SetDefault("refine.api_key", "")
}

// 可额外传入目录或具体文件路径
func Init(configPaths ...string) (*AppConfig, error) {
	once.Do(func() {
		v := viper.New()
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		homedir, _ := os.UserHomeDir()
		configDir := filepath.Join(homedir, ".paperscope", "config")
		os.MkdirAll(configDir, 0755)

		v.AddConfigPath("./config")
		v.AddConfigPath("../config")
		v.AddConfigPath(".")
		v.AddConfigPath("config")
		v.AddConfigPath(configDir)

		for _, p := range configPaths {
			if p == "" {
				continue
			}
			if strings.HasSuffix(p, ".yaml") || strings.HasSuffix(p, ".yml") {
				v.SetConfigFile(p)
			} else {
				v.AddConfigPath(p)
			}
		}

		v.SetEnvPrefix("PSC")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		setDefaults(v)

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				globalErr = fmt.Errorf("读取配置文件失败: %w", err)
				return
			}
			// 配置文件不存在，创建示例配置文件
			if err := CreateExampleConfig(); err != nil {
				globalErr = fmt.Errorf("创建示例配置文件失败: %w", err)
				return
			}
		} else {
			configPath = v.ConfigFileUsed()
		}

		cfg := &AppConfig{}
		if err := v.Unmarshal(&cfg); err != nil {
			globalErr = fmt.Errorf("配置解析失败: %w", err)
			return
		}

		// 验证各平台配置
		if err := cfg.Arxiv.Validate(); err != nil {
			globalErr = fmt.Errorf("arxiv 配置不合法: %w", err)
			return
		}

		if err := cfg.SemanticScholar.Validate(); err != nil {
			globalErr = fmt.Errorf("semantic_scholar 配置不合法: %w", err)
			return
		}

		if err := cfg.PubMed.Validate(); err != nil {
			globalErr = fmt.Errorf("pubmed 配置不合法: %w", err)
			return
		}

		if err := cfg.Search.Validate(); err != nil {
			globalErr = fmt.Errorf("search 配置不合法: %w", err)
			return
		}

		global = cfg
	})
	return global, globalErr
}

// Validate 流水线参数不能为 0 或负数
func (c *SearchConfig) Validate() error {
	if c.MaxResultsPerEngine <= 0 {
		return fmt.Errorf("max_results_per_engine must be positive, got %d", c.MaxResultsPerEngine)
	}
	if c.MaxFilteredResults <= 0 {
		return fmt.Errorf("max_filtered_results must be positive, got %d", c.MaxFilteredResults)
	}
	if c.TranslateWorkers <= 0 {
		return fmt.Errorf("translate_workers must be positive, got %d", c.TranslateWorkers)
	}
	if c.EngineDelay < 0 {
		return fmt.Errorf("engine_delay cannot be negative, got %d", c.EngineDelay)
	}
	return nil
}

// RefineLLM 返回检索词扩展所用的 LLM 配置，未单独配置时回落到主 llm
func (c *AppConfig) RefineLLM() LLMConfig {
	out := LLMConfig{
		BaseURL:   c.Refine.BaseURL,
		ModelName: c.Refine.ModelName,
		APIKey:    c.Refine.APIKey,
	}
	if out.BaseURL == "" {
		out.BaseURL = c.LLM.BaseURL
	}
	if out.ModelName == "" {
		out.ModelName = c.LLM.ModelName
	}
	if out.APIKey == "" {
		out.APIKey = c.LLM.APIKey
	}
	return out
}

func MustInit(configPaths ...string) *AppConfig {
	cfg, err := Init(configPaths...)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Get() *AppConfig {
	if global == nil {
		_, _ = Init()
	}
	return global
}

func GetConfigPath() string {
	if configPath == "" {

		_, _ = Init()
	}
	return configPath
}

func CreateExampleConfig() error {
	homedir, _ := os.UserHomeDir()
	configDir := filepath.Join(homedir, ".paperscope", "config")

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	configFile := filepath.Join(configDir, "config.yaml")

	_, err := os.Stat(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			// 文件不存在，创建配置文件
			exampleContent := `# PaperScope 配置文件
# 请根据你的需求修改以下配置

# HTTP 服务配置
server:
  host: "0.0.0.0"
  port: 8000

# 数据库配置
database:
  path: ""  # 可以配置后重新初始化，从而指定你的数据库保存位置

# LLM 配置（筛选与翻译共用）
llm:
  base_url: "https://api.deepseek.com/v1"  # API 地址，支持 OpenAI 兼容的 API
  model: "deepseek-chat"                   # 模型名称
  api_key: ""                              # API Key

# 检索词扩展模型（可选，留空时复用 llm）
refine:
  base_url: ""
  model: ""
  api_key: ""

# 搜索流水线参数
search:
  max_results_per_engine: 50  # 单引擎抓取上限
  max_filtered_results: 20    # LLM 筛选后保留上限
  engine_delay: 1             # 引擎间延迟（秒）
  translate_workers: 5        # 翻译并发数
  default_category: "cs"

# arXiv 平台配置
arxiv:
  use_api: true   # 是否使用官方 API（推荐）
  proxy: ""       # 代理设置，如: "http://127.0.0.1:7890"
  step: 100
  timeout: 30

# Semantic Scholar 平台配置
semantic_scholar:
  api_key: ""     # 可选，有密钥可以提高速率限制
  proxy: ""
  timeout: 30

# PubMed 平台配置
pubmed:
  api_key: ""     # 可选，NCBI API key
  proxy: ""
  timeout: 30
`

			if err := os.WriteFile(configFile, []byte(exampleContent), 0644); err != nil {
				return fmt.Errorf("写入配置文件失败: %w", err)
			}
			logger.Info("已在 %s 中创建配置文件", configFile)
			fmt.Printf("已创建示例配置文件: %s\n", configFile)
			fmt.Println("请编辑配置文件，设置你的 API Key 和其他配置")
			return nil
		} else {
			// 其他错误（权限问题、路径问题等）
			return fmt.Errorf("检查配置文件时出错: %w", err)
		}
	} else {
		// 文件存在
		logger.Warn("home 目录下已存在配置文件，请前往编辑即可")
		return nil
	}
}
