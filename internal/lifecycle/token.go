// Package lifecycle provides the one-shot shutdown signal shared
// between the HTTP layer and the server loop.
package lifecycle

import "sync"

// Token is a single-use cancellation capability: it can be fired at
// most once and observed through its Done channel. It replaces the
// lock-guarded one-shot sender pattern with a self-contained object.
type Token struct {
	once sync.Once
	done chan struct{}
}

func NewToken() *Token {
	return &Token{done: make(chan struct{})}
}

// Signal fires the token and reports whether this call was the first.
func (t *Token) Signal() bool {
	fired := false
	t.once.Do(func() {
		close(t.done)
		fired = true
	})
	return fired
}

// Done returns a channel that is closed once the token has fired.
func (t *Token) Done() <-chan struct{} {
	return t.done
}
