package phpserial

import (
	"sync"

	"github.com/wippyai/php-serial/errors"
	"github.com/wippyai/php-serial/value"
)

// Constructor creates an empty instance of a registered class. The decoder
// fills the instance with InitField.
type Constructor func(class string) *value.Object

// ClassRegistry resolves class names found on the wire.
type ClassRegistry interface {
	Resolve(name string) (Constructor, bool)
}

// Diagnostics receives soft failures. Decoding continues after each notice.
type Diagnostics interface {
	Notice(err *errors.Error)
}

// DiagnosticsFunc adapts a function to Diagnostics.
type DiagnosticsFunc func(err *errors.Error)

func (f DiagnosticsFunc) Notice(err *errors.Error) {
	f(err)
}

// Discard drops every notice.
var Discard Diagnostics = DiagnosticsFunc(func(*errors.Error) {})

// Recorder collects notices in arrival order.
type Recorder struct {
	notices []*errors.Error
	mu      sync.Mutex
}

func (r *Recorder) Notice(err *errors.Error) {
	r.mu.Lock()
	r.notices = append(r.notices, err)
	r.mu.Unlock()
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []*errors.Error {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*errors.Error, len(r.notices))
	copy(out, r.notices)
	return out
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notices)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.notices = nil
	r.mu.Unlock()
}

// Tee forwards each notice to every sink in order. Nil sinks are skipped.
func Tee(sinks ...Diagnostics) Diagnostics {
	return DiagnosticsFunc(func(err *errors.Error) {
		for _, s := range sinks {
			if s != nil {
				s.Notice(err)
			}
		}
	})
}
