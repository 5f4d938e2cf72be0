package source

import (
	"go.uber.org/zap"

	"github.com/sells-group/pricechart/internal/config"
)

// FromConfig picks the source described by the data configuration. A database
// driver takes precedence over a URL, which takes precedence over files.
func FromConfig(cfg config.DataConfig) Source {
	log := zap.L().With(zap.String("component", "source"))
	switch {
	case cfg.Driver != "":
		log.Debug("using table source", zap.String("driver", cfg.Driver), zap.String("table", cfg.Table))
		return NewTable(cfg.Driver, cfg.DatabaseURL, cfg.Table)
	case cfg.URL != "":
		log.Debug("using url source")
		return NewURL(cfg.URL, cfg.Sheet, cfg.RetryAttempts)
	default:
		return NewFiles(cfg.Path, cfg.DefaultPath, cfg.Sheet)
	}
}
