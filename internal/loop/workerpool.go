package loop

import (
	"sync"

	"go.uber.org/zap"
)

// workerPool offloads blocking filesystem syscalls off the loop
// goroutine, marshalling results back via the supplied callback. It is
// a direct generalization of internal/drivers/queue.go's RequestQueue
// from the teacher repo: a buffered job channel drained by a fixed pool
// of worker goroutines.
type workerPool struct {
	jobs   chan func()
	closed chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
	log    *zap.Logger
}

func newWorkerPool(workers int, log *zap.Logger) *workerPool {
	p := &workerPool{
		jobs:   make(chan func(), 256),
		closed: make(chan struct{}),
		log:    log,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run(i)
	}
	return p
}

func (p *workerPool) run(id int) {
	defer p.wg.Done()
	for {
		select {
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			job()
		case <-p.closed:
			return
		}
	}
}

// submit runs fn on a worker goroutine. If the pool's buffer is full,
// fn still gets queued (the channel send blocks) rather than dropped;
// the loop offloads, it never sheds filesystem work.
func (p *workerPool) submit(fn func()) {
	select {
	case p.jobs <- fn:
	case <-p.closed:
		if p.log != nil {
			p.log.Warn("worker pool closed, running inline")
		}
		fn()
	}
}

func (p *workerPool) stop() {
	p.once.Do(func() { close(p.closed) })
	p.wg.Wait()
}
