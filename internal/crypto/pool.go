package crypto

import (
	"context"
	"runtime"
)

// Pool bounds the number of PBKDF2 derivations running at once so a burst of
// requests cannot monopolise every CPU. A nil *Pool runs work inline.
type Pool struct {
	slots chan struct{}
}

// NewPool returns a pool with size slots; size < 1 means runtime.NumCPU().
func NewPool(size int) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Do runs fn once a slot is free. It returns ctx.Err() if the context is
// done before a slot becomes available; fn is not run in that case.
func (p *Pool) Do(ctx context.Context, fn func()) error {
	if p == nil {
		fn()
		return nil
	}
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.slots }()
	fn()
	return nil
}

// Derive runs DeriveKey inside the pool.
func (p *Pool) Derive(ctx context.Context, password string, salt []byte) ([]byte, error) {
	var key []byte
	if err := p.Do(ctx, func() { key = DeriveKey(password, salt) }); err != nil {
		return nil, err
	}
	return key, nil
}

// Size returns the number of concurrent derivations allowed.
func (p *Pool) Size() int {
	if p == nil {
		return 0
	}
	return cap(p.slots)
}
