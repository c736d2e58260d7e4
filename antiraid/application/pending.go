package application

import (
	"context"
	"sync"
)

// Pending tracks an asynchronous persistence attempt. Replies never wait on
// it; tests and the offline CLI do.
type Pending struct {
	once sync.Once
	done chan struct{}
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) resolve(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Done is closed once the persistence attempt finished.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Err returns the outcome. It is only meaningful after Done is closed.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Wait blocks until the persistence attempt finished or ctx is done.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
