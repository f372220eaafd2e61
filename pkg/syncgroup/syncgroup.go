package syncgroup

import (
	"sync"
)

type syncGroupFunc func()

// SyncGroup 是 sync.WaitGroup 的包装器，自动管理 Add() 和 Done()
type SyncGroup struct {
	wg sync.WaitGroup

	sgFuncsMu sync.Mutex
	sgFuncs   []syncGroupFunc
}

// NewSyncGroup 创建新的 SyncGroup
func NewSyncGroup() *SyncGroup {
	return &SyncGroup{}
}

// Add 添加一个 goroutine 函数，Run() 时启动
func (w *SyncGroup) Add(fn syncGroupFunc) {
	if fn == nil {
		return
	}
	w.sgFuncsMu.Lock()
	defer w.sgFuncsMu.Unlock()
	w.sgFuncs = append(w.sgFuncs, fn)
}

// Run 启动所有已添加的 goroutine 并清空函数列表
func (w *SyncGroup) Run() {
	w.sgFuncsMu.Lock()
	fns := w.sgFuncs
	w.sgFuncs = nil
	w.sgFuncsMu.Unlock()

	for _, fn := range fns {
		w.wg.Add(1)
		go func(doFunc syncGroupFunc) {
			defer w.wg.Done()
			doFunc()
		}(fn)
	}
}

// Wait 等待所有 goroutine 完成
func (w *SyncGroup) Wait() {
	w.wg.Wait()
}

// Result 单个分支的结果
type Result[T any] struct {
	Value T
	Err   error
}

// Collect 对 inputs 并发执行 fn，结果按输入顺序返回（不是完成顺序）
// 某个分支失败不会取消其他分支
func Collect[I any, T any](inputs []I, fn func(I) (T, error)) []Result[T] {
	results := make([]Result[T], len(inputs))
	sg := NewSyncGroup()
	for i, in := range inputs {
		i, in := i, in
		sg.Add(func() {
			v, err := fn(in)
			results[i] = Result[T]{Value: v, Err: err}
		})
	}
	sg.Run()
	sg.Wait()
	return results
}
