package downloader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bilifetch/pkg/feed"
	"bilifetch/pkg/logger"
	"bilifetch/pkg/ratelimit"
)

// DownloadResult represents the outcome of one download task
type DownloadResult struct {
	Task     feed.DownloadTask
	Success  bool
	Skipped  bool
	Error    error
	Duration time.Duration
	Size     int
}

// ImageDownloader interface for fetching image bytes
type ImageDownloader interface {
	DownloadImage(url string) ([]byte, error)
}

// ImageStorage interface for persisting downloaded images
type ImageStorage interface {
	Exists(path string) bool
	SaveFile(path string, data []byte) error
}

// WorkerPool manages concurrent download workers. Tasks whose destination
// file already exists are skipped without touching the network; a failed
// fetch is recorded in its result but never stops the other workers.
type WorkerPool struct {
	numWorkers  int
	jobQueue    chan feed.DownloadTask
	resultQueue chan DownloadResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	client      ImageDownloader
	store       ImageStorage
	rateLimiter ratelimit.Limiter
	logger      logger.Logger
}

// NewWorkerPool creates a new download worker pool. The rate limiter may
// be nil to download at full speed.
func NewWorkerPool(
	numWorkers int,
	client ImageDownloader,
	store ImageStorage,
	rateLimiter ratelimit.Limiter,
	log logger.Logger,
) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	if log == nil {
		log = logger.GetLogger()
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	return &WorkerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan feed.DownloadTask, numWorkers*2),
		resultQueue: make(chan DownloadResult, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		client:      client,
		store:       store,
		rateLimiter: rateLimiter,
		logger:      log,
	}
}

// Start initializes and starts all workers
func (wp *WorkerPool) Start() {
	wp.logger.InfoWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop gracefully shuts down the worker pool
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)

	// Wait for workers to drain the remaining jobs
	wp.wg.Wait()

	close(wp.resultQueue)
	wp.cancel()

	wp.logger.Info("Worker pool stopped")
}

// Submit adds a new download task to the queue
func (wp *WorkerPool) Submit(task feed.DownloadTask) error {
	select {
	case wp.jobQueue <- task:
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Results returns the result channel for consuming download results
func (wp *WorkerPool) Results() <-chan DownloadResult {
	return wp.resultQueue
}

// Run drains a full task list through the pool and reports how many tasks
// attempted a network fetch and how many of those failed. Skipped tasks
// count toward neither.
func (wp *WorkerPool) Run(tasks []feed.DownloadTask) (attempted, failed int) {
	wp.Start()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for result := range wp.resultQueue {
			if result.Skipped {
				continue
			}
			attempted++
			if !result.Success {
				failed++
			}
		}
	}()

	for _, task := range tasks {
		if err := wp.Submit(task); err != nil {
			break
		}
	}

	wp.Stop()
	<-done

	return attempted, failed
}

// worker is the main worker routine
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for task := range wp.jobQueue {
		select {
		case <-wp.ctx.Done():
			return
		default:
		}

		result := wp.processTask(task, id)

		select {
		case wp.resultQueue <- result:
		case <-wp.ctx.Done():
			return
		}
	}
}

// processTask handles a single download task
func (wp *WorkerPool) processTask(task feed.DownloadTask, workerID int) DownloadResult {
	start := time.Now()
	result := DownloadResult{
		Task:    task,
		Success: false,
	}

	if wp.store.Exists(task.Dest) {
		wp.logger.DebugWithFields("file already downloaded", map[string]interface{}{
			"worker_id": workerID,
			"dest":      task.Dest,
		})
		result.Success = true
		result.Skipped = true
		result.Duration = time.Since(start)
		return result
	}

	if wp.rateLimiter != nil && !wp.rateLimiter.Allow() {
		wp.rateLimiter.Wait()
	}

	data, err := wp.client.DownloadImage(task.URL)
	if err != nil {
		result.Error = fmt.Errorf("download failed: %w", err)
		result.Duration = time.Since(start)

		wp.logger.ErrorWithFields("failed to download image", map[string]interface{}{
			"worker_id": workerID,
			"url":       task.URL,
			"error":     err.Error(),
		})

		return result
	}
	if len(data) == 0 {
		// An empty body is a failed fetch; nothing is written for it.
		result.Error = fmt.Errorf("download failed: empty response body")
		result.Duration = time.Since(start)

		wp.logger.ErrorWithFields("empty response body", map[string]interface{}{
			"worker_id": workerID,
			"url":       task.URL,
		})

		return result
	}

	result.Size = len(data)

	if err := wp.store.SaveFile(task.Dest, data); err != nil {
		result.Error = fmt.Errorf("save failed: %w", err)
		result.Duration = time.Since(start)

		wp.logger.ErrorWithFields("failed to save image", map[string]interface{}{
			"worker_id": workerID,
			"dest":      task.Dest,
			"error":     err.Error(),
		})

		return result
	}

	result.Success = true
	result.Duration = time.Since(start)

	wp.logger.DebugWithFields("download complete", map[string]interface{}{
		"worker_id": workerID,
		"dest":      task.Dest,
		"size":      result.Size,
		"duration":  result.Duration,
	})

	return result
}

// GetQueueSize returns the current number of tasks in the queue
func (wp *WorkerPool) GetQueueSize() int {
	return len(wp.jobQueue)
}

// GetActiveWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetActiveWorkers() int {
	return wp.numWorkers
}
