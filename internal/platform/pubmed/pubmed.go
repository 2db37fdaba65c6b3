package pubmed

import (
	"PaperScope/internal/core"
	"PaperScope/internal/platform"
)

const Name = "pubmed"

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

// ArticleURL 根据 PubMed uid 拼接文章页链接
func ArticleURL(uid string) string {
	return "https://pubmed.ncbi.nlm.nih.gov/" + uid + "/"
}
