package syncgroup

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncGroup_RunWait(t *testing.T) {
	sg := NewSyncGroup()
	var n int32
	for i := 0; i < 5; i++ {
		sg.Add(func() { atomic.AddInt32(&n, 1) })
	}
	sg.Add(nil)
	sg.Run()
	sg.Wait()
	assert.Equal(t, int32(5), n)

	// 第二轮：列表已清空
	sg.Run()
	sg.Wait()
	assert.Equal(t, int32(5), n)
}

func TestCollect_PreservesInputOrder(t *testing.T) {
	inputs := []int{30, 10, 20}
	results := Collect(inputs, func(ms int) (int, error) {
		time.Sleep(time.Duration(ms) * time.Millisecond)
		return ms * 2, nil
	})
	require.Len(t, results, 3)
	assert.Equal(t, 60, results[0].Value)
	assert.Equal(t, 20, results[1].Value)
	assert.Equal(t, 40, results[2].Value)
}

func TestCollect_ErrorDoesNotCancelSiblings(t *testing.T) {
	boom := errors.New("boom")
	var done int32
	results := Collect([]string{"a", "fail", "c"}, func(s string) (string, error) {
		if s == "fail" {
			return "", boom
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&done, 1)
		return s, nil
	})
	assert.Equal(t, int32(2), done)
	assert.Equal(t, "a", results[0].Value)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.Equal(t, "c", results[2].Value)
}

func TestCollect_Empty(t *testing.T) {
	assert.Empty(t, Collect([]int{}, func(int) (int, error) { return 0, nil }))
}
