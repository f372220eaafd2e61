package shutdown

import (
	"context"
	"sync"

	"github.com/betbot/custodygw/pkg/logger"
)

// Handler 关闭回调
type Handler func(ctx context.Context) error

type hook struct {
	name string
	fn   Handler
}

// Manager 优雅关闭管理器：按注册的逆序依次执行（先停入口，再关存储）
type Manager struct {
	mu    sync.Mutex
	hooks []hook
	done  bool
}

func NewManager() *Manager {
	return &Manager{}
}

// OnShutdown 注册关闭回调
func (m *Manager) OnShutdown(name string, fn Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook{name: name, fn: fn})
}

// Shutdown 只执行一次；ctx 超时后剩余回调仍会执行，但会收到已取消的 ctx
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return
	}
	m.done = true
	hooks := m.hooks
	m.mu.Unlock()

	logger.Infof("开始优雅关闭，共 %d 个回调", len(hooks))
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		if err := h.fn(ctx); err != nil {
			logger.Warnf("关闭 %s 失败: %v", h.name, err)
			continue
		}
		logger.Debugf("已关闭 %s", h.name)
	}
	if err := ctx.Err(); err != nil {
		logger.Warnf("关闭超时: %v", err)
	}
}
