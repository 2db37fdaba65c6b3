package arxiv

import (
	"PaperScope/internal/core"
	"PaperScope/internal/platform"
)

const Name = "arxiv"

func New(config *Config) (platform.Platform, error) {
	return NewAdapter(config)
}

func init() {
	core.MustRegister(core.Provider{
		Name: Name,
		New: func(cfg platform.Config) (platform.Platform, error) {
			c, _ := cfg.(*Config)
			if c == nil {
				c = DefaultConfig()
			}
			return New(c)
		},
		DefaultConfig: func() platform.Config { return DefaultConfig() },
	})
}

// PDFURL 根据 arXiv ID 拼接 PDF 下载链接
func PDFURL(arxivID string) string {
	return "https://arxiv.org/pdf/" + arxivID + ".pdf"
}
