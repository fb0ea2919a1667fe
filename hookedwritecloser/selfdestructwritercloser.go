package hookedwritecloser

import (
	"io"
	"sync"
	"time"
)

const (
	selfDestructChecksPerTTL = 10 // how many times per ttl duration the idle check runs
)

// SelfDestructWriteCloser automatically closes a writer after a period of
// inactivity.
type SelfDestructWriteCloser struct {
	*HookedWriteCloser

	// for WithMaxIdleTime
	lastWrite time.Time
}

// SelfDestructOption represents an option that can be provided to the
// NewSelfDestructWriteCloser constructor.
type SelfDestructOption func(*SelfDestructWriteCloser) *SelfDestructWriteCloser

// NewSelfDestructWriteCloser returns a new SelfDestructWriteCloser
func NewSelfDestructWriteCloser(wc io.WriteCloser, options ...SelfDestructOption) *SelfDestructWriteCloser {
	hwc, ok := wc.(*HookedWriteCloser)
	if !ok {
		hwc = NewHookedWriteCloser(wc)
	}
	res := &SelfDestructWriteCloser{
		HookedWriteCloser: hwc,
		lastWrite:         time.Now(),
	}
	for _, option := range options {
		res = option(res)
	}
	return res
}

// WithMaxIdleTime adds a timeout after which the writecloser closes itself.
// The resolution of the timer is a 10th of maxIdleTime, meaning the writer
// will close between maxIdleTime and maxIdleTime*1.1 from the last write.
func WithMaxIdleTime(maxIdleTime time.Duration) SelfDestructOption {
	return func(sdwc *SelfDestructWriteCloser) *SelfDestructWriteCloser {
		mutex := sync.Mutex{}

		mutex.Lock()
		sdwc.lastWrite = time.Now()
		mutex.Unlock()

		ticker := time.NewTicker(maxIdleTime / selfDestructChecksPerTTL)
		go func() {
			for tick := range ticker.C {
				mutex.Lock()
				if tick.After(sdwc.lastWrite.Add(maxIdleTime)) {
					sdwc.Close()
					mutex.Unlock()
					return
				}
				mutex.Unlock()
			}
		}()

		// Update the last access both before and after the write; the mutex
		// stops concurrent closing of an active write.
		sdwc.AddPreWriteHooks(func() {
			mutex.Lock()
			defer mutex.Unlock()
			sdwc.lastWrite = time.Now()
		})
		sdwc.AddPostWriteHooks(func(_ int, _ error) {
			mutex.Lock()
			defer mutex.Unlock()
			sdwc.lastWrite = time.Now()
		})
		sdwc.AddPostCloseHooks(func(_ error) {
			ticker.Stop()
		})
		return sdwc
	}
}
