package renderer

import (
	"context"
	"image"
	"runtime"
	"sync"
)

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile   *Tile
	Image  *image.RGBA // Shared output image; tiles write disjoint pixels
	TaskID int         // For deterministic ordering
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TaskID int
	Stats  RenderStats
	Error  error
}

// WorkerPool manages parallel tile rendering
type WorkerPool struct {
	ctx         context.Context
	renderer    *TileRenderer
	taskQueue   chan TileTask
	resultQueue chan TileResult
	numWorkers  int
	wg          sync.WaitGroup
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// Queues are sized for maxTasks so submitting never blocks.
func NewWorkerPool(ctx context.Context, renderer *TileRenderer, maxTasks, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{
		ctx:         ctx,
		renderer:    renderer,
		taskQueue:   make(chan TileTask, maxTasks),
		resultQueue: make(chan TileResult, maxTasks),
		numWorkers:  numWorkers,
	}
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.run()
	}
}

// Stop waits for queued tasks to drain and shuts down all workers
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// SubmitTask submits a tile task to the worker pool
func (wp *WorkerPool) SubmitTask(task TileTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed tile result
func (wp *WorkerPool) GetResult() (TileResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop. Once the context is cancelled remaining
// tasks are answered with the context error without being rendered.
func (wp *WorkerPool) run() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		if err := wp.ctx.Err(); err != nil {
			wp.resultQueue <- TileResult{TaskID: task.TaskID, Error: err}
			continue
		}
		stats := wp.renderer.RenderTile(task.Tile, task.Image)
		wp.resultQueue <- TileResult{TaskID: task.TaskID, Stats: stats}
	}
}
