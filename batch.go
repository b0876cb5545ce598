package baker

import (
	"sync"
)

// ProgressFunc 每完成一个文件回调一次，可能从多个goroutine并发调用
type ProgressFunc func(res *Result)

// BakeAll 用工作池并行烘焙多个相互独立的文件，结果顺序与输入一致
// 单个文件内部的各阶段仍然串行执行
func BakeAll(paths []string, workers int, opts Options, progress ProgressFunc) []*Result {
	results := make([]*Result, len(paths))
	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				res, _ := BakeScene(paths[idx], opts)
				results[idx] = res
				if progress != nil {
					progress(res)
				}
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// Failed 返回失败的结果
func Failed(results []*Result) []*Result {
	var failed []*Result
	for _, r := range results {
		if r != nil && r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
