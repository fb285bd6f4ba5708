package workers

// Workers aggregates background workers and starts them together.
type Workers struct {
	workers []Worker
}

// New collects the given workers into one aggregate.
func New(ws ...Worker) *Workers {
	return &Workers{workers: ws}
}

// Run starts every worker in registration order.
func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}
