package main

import (
	"collabSheet/contracts"
	"sync"
	"time"
)

func SystemClock() int64 {
	return time.Now().UnixMilli()
}

// NewMonotonicClock never returns a value less than or equal to one it already returned
func NewMonotonicClock(source contracts.Clock) contracts.Clock {
	var mu sync.Mutex
	var last int64

	return func() int64 {
		mu.Lock()
		defer mu.Unlock()

		now := source()
		if now <= last {
			now = last + 1
		}
		last = now
		return now
	}
}
