package metrics

import (
	"sync/atomic"
)

// Metrics tracks run counters.
type Metrics struct {
	FilesMatched   uint64 `json:"files_matched"`
	Collisions     uint64 `json:"collisions"`
	FilesSigned    uint64 `json:"files_signed"`
	FilesNotarized uint64 `json:"files_notarized"`
	FilesStapled   uint64 `json:"files_stapled"`
}

var global = &Metrics{}

// FileMatched increments the count of files matched by the search expression.
func FileMatched() { atomic.AddUint64(&global.FilesMatched, 1) }

// CollisionDetected increments the count of case-insensitive path collisions.
func CollisionDetected() { atomic.AddUint64(&global.Collisions, 1) }

// FileSigned increments the count of files signed.
func FileSigned() { atomic.AddUint64(&global.FilesSigned, 1) }

// FileNotarized increments the count of files submitted for notarization.
func FileNotarized() { atomic.AddUint64(&global.FilesNotarized, 1) }

// FileStapled increments the count of files stapled.
func FileStapled() { atomic.AddUint64(&global.FilesStapled, 1) }

// Get returns a snapshot of the current metrics.
func Get() Metrics {
	return Metrics{
		FilesMatched:   atomic.LoadUint64(&global.FilesMatched),
		Collisions:     atomic.LoadUint64(&global.Collisions),
		FilesSigned:    atomic.LoadUint64(&global.FilesSigned),
		FilesNotarized: atomic.LoadUint64(&global.FilesNotarized),
		FilesStapled:   atomic.LoadUint64(&global.FilesStapled),
	}
}

// Reset resets all metrics to zero (useful for testing).
func Reset() {
	atomic.StoreUint64(&global.FilesMatched, 0)
	atomic.StoreUint64(&global.Collisions, 0)
	atomic.StoreUint64(&global.FilesSigned, 0)
	atomic.StoreUint64(&global.FilesNotarized, 0)
	atomic.StoreUint64(&global.FilesStapled, 0)
}
