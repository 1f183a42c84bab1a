package renderer

import (
	"runtime"
	"sync"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// RowTask asks a worker to add one sample to a band of buffer rows
type RowTask struct {
	TaskID   int
	Buffer   []uint32 // Shared buffer; bands never overlap
	Width    int
	Height   int
	RowStart int // First buffer row, inclusive
	RowEnd   int // Last buffer row, exclusive
	NSamples int // Samples already averaged into the buffer
	Sampler  core.Sampler
}

// RowResult reports a finished band
type RowResult struct {
	TaskID int
	Pixels int
}

// WorkerPool manages parallel row rendering
type WorkerPool struct {
	taskQueue   chan RowTask
	resultQueue chan RowResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker renders row tasks for a tracer
type Worker struct {
	ID          int
	tracer      *Tracer
	taskQueue   chan RowTask
	resultQueue chan RowResult
}

// NewWorkerPool creates a worker pool with the specified number of workers
func NewWorkerPool(tracer *Tracer, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan RowTask, numWorkers),
		resultQueue: make(chan RowResult, numWorkers),
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			tracer:      tracer,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// SubmitTask submits a row task to the worker pool
func (wp *WorkerPool) SubmitTask(task RowTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed row result
func (wp *WorkerPool) GetResult() (RowResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		w.tracer.renderRows(task)
		w.resultQueue <- RowResult{
			TaskID: task.TaskID,
			Pixels: (task.RowEnd - task.RowStart) * task.Width,
		}
	}
}
