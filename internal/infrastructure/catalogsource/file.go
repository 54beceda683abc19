package catalogsource

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/xiebiao/storefront/internal/domain/catalog"
)

// FileLoader 从本地文件加载目录（.json / .yaml / .yml）
type FileLoader struct {
	path string
}

// NewFileLoader 创建文件目录加载器
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

func (l *FileLoader) Load(ctx context.Context) ([]catalog.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, catalog.ErrCatalogUnavailable.WithCause(err)
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, catalog.ErrCatalogUnavailable.WithCause(err)
	}
	return Decode(data, formatOf(l.path))
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}
