package updater

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// updateTask is one domain update handed to a worker
type updateTask struct {
	index  int
	record DomainRecord
	ip     string
}

// taskResult carries a worker's result back to its slot
type taskResult struct {
	index int
	err   error
}

// dispatchUpdates updates every record with ip using worker goroutines.
// Each record is attempted exactly once and a failing record never stops the others.
// Results are returned in the order of records.
func (u *Updater) dispatchUpdates(ctx context.Context, logger *zap.Logger, records []DomainRecord, ip string) []DomainResult {
	results := make([]DomainResult, len(records))
	if len(records) == 0 {
		return results
	}

	workerCount := u.config.workerCount()
	if len(records) < workerCount {
		workerCount = len(records) // Don't create more workers than tasks
	}

	taskChan := make(chan updateTask, len(records))
	resultChan := make(chan taskResult, len(records))

	for i, record := range records {
		results[i] = DomainResult{Record: record, IP: ip, DryRun: u.config.DryRun}
		taskChan <- updateTask{index: i, record: record, ip: ip}
	}
	close(taskChan)

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			u.worker(ctx, logger.With(zap.Int("worker", workerID)), taskChan, resultChan)
		}(i)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	for res := range resultChan {
		results[res.index].Err = res.err
	}

	return results
}

// worker processes tasks until the task channel is drained
func (u *Updater) worker(ctx context.Context, logger *zap.Logger, taskChan <-chan updateTask, resultChan chan<- taskResult) {
	for task := range taskChan {
		err := u.UpdateDomain(ctx, logger, task.record, task.ip)
		resultChan <- taskResult{index: task.index, err: err}
	}
}
