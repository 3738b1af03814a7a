// SPDX-License-Identifier: EPL-2.0

package audio

import "sync/atomic"

// AudioProcessor is the capability every stage of the processing chain
// implements: Process mutates the event in place and returns false to
// short-circuit the chain for this call; Finished is invoked exactly once,
// when the processor is removed or the chain is torn down.
type AudioProcessor interface {
	Process(event *AudioEvent) bool
	Finished()
}

// ProcessorChain is a concurrent-safe ordered list of AudioProcessor.
// Add/Remove may run concurrently with ForEach: ForEach iterates a stable
// snapshot taken at call time, insertion order preserved, grounded on the
// copy-on-write list the original dispatcher used for the same purpose.
type ProcessorChain struct {
	processors atomic.Pointer[[]AudioProcessor]
}

// NewProcessorChain creates an empty chain.
func NewProcessorChain() *ProcessorChain {
	c := &ProcessorChain{}
	empty := make([]AudioProcessor, 0)
	c.processors.Store(&empty)
	return c
}

// Add appends p to the chain. It takes effect starting with the next
// ForEach call; a ForEach already in progress is unaffected.
func (c *ProcessorChain) Add(p AudioProcessor) {
	if p == nil {
		return
	}
	for {
		old := c.processors.Load()
		next := make([]AudioProcessor, len(*old)+1)
		copy(next, *old)
		next[len(*old)] = p
		if c.processors.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Remove detaches p from the chain and calls p.Finished() exactly once. If
// p is not present, it is a no-op.
func (c *ProcessorChain) Remove(p AudioProcessor) {
	for {
		old := c.processors.Load()
		idx := -1
		for i, cur := range *old {
			if cur == p {
				idx = i
				break
			}
		}
		if idx == -1 {
			return
		}
		next := make([]AudioProcessor, 0, len(*old)-1)
		next = append(next, (*old)[:idx]...)
		next = append(next, (*old)[idx+1:]...)
		if c.processors.CompareAndSwap(old, &next) {
			p.Finished()
			return
		}
	}
}

// ForEach visits the current snapshot in insertion order, stopping early
// if f returns false. It returns false iff some processor short-circuited.
func (c *ProcessorChain) ForEach(f func(p AudioProcessor) bool) bool {
	snapshot := *c.processors.Load()
	for _, p := range snapshot {
		if !f(p) {
			return false
		}
	}
	return true
}

// FinishAll calls Finished on every processor currently in the chain,
// exactly once each, and empties the chain. Used when the dispatcher's
// run loop exits.
func (c *ProcessorChain) FinishAll() {
	for {
		old := c.processors.Load()
		empty := make([]AudioProcessor, 0)
		if c.processors.CompareAndSwap(old, &empty) {
			for _, p := range *old {
				p.Finished()
			}
			return
		}
	}
}

// Len returns the number of processors currently in the chain.
func (c *ProcessorChain) Len() int {
	return len(*c.processors.Load())
}
