package irq

import "sync"

// Section is a critical section shared between the interrupt context
// and the foreground, the stand-in for masking interrupts around
// state a handler also touches. The zero value is ready to use.
//
// Hold times must stay bounded, a single enqueue or one drain: while
// the foreground holds the section, any handler entering it blocks,
// which is exactly the exclusion interrupt masking buys on hardware.
type Section struct {
	mu sync.Mutex
}

// Do runs fn inside the section.
func (s *Section) Do(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}
