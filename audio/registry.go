// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"sync"
)

// ByteSourceDecoder constructs a ByteSource from an input reader; its result
// is fed straight to an AudioDispatcher.
type ByteSourceDecoder interface {
	Decode(r io.Reader) (ByteSource, error)
}

// Registry maps a format key (e.g. "wav", "mp3", "ogg") to the
// ByteSourceDecoder that handles it. Grounded on the teacher's mutex-guarded
// map registry (decode.Registry), generalized to the dispatcher's
// byte-oriented decoder contract.
type Registry struct {
	mu     sync.Mutex
	codecs map[string]ByteSourceDecoder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]ByteSourceDecoder)}
}

// Register associates format with d, replacing any existing registration.
func (r *Registry) Register(format string, d ByteSourceDecoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[format] = d
}

// Get looks up the decoder registered for format.
func (r *Registry) Get(format string) (ByteSourceDecoder, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.codecs[format]
	return d, ok
}
