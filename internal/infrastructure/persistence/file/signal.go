package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const signalExt = ".signal"

// SignalTransport 基于信号目录的跨进程变更通知（实现notify.Transport）
//
// Publish在信号目录中rename出一个以origin命名的文件再立即删除；
// Listen用fsnotify监听目录，从Create事件的文件名取出origin。
// 文件内容从不读取，所以删除与事件处理之间不存在竞争。
type SignalTransport struct {
	dir    string
	logger *zap.Logger
}

// NewSignalTransport 创建信号传输，目录不存在时自动创建
func NewSignalTransport(dir string, logger *zap.Logger) (*SignalTransport, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建信号目录失败: %w", err)
	}
	return &SignalTransport{dir: dir, logger: logger}, nil
}

func (t *SignalTransport) Publish(ctx context.Context, origin string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(t.dir, origin+signalExt)
	if err := writeAtomic(path, nil); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("清理信号文件失败: %w", err)
	}
	return nil
}

// Listen 监听信号目录，阻塞直到ctx结束
func (t *SignalTransport) Listen(ctx context.Context, fn func(origin string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听失败: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(t.dir); err != nil {
		return fmt.Errorf("监听信号目录失败: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			if !strings.HasSuffix(name, signalExt) {
				continue
			}
			fn(strings.TrimSuffix(name, signalExt))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			t.logger.Warn("signal watcher error", zap.Error(err))
		}
	}
}
