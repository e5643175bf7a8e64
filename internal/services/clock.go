package services

import "time"

// Clock abstracts time for the session services so tests can drive elapsed
// time deterministically.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall-clock implementation used in production.
func SystemClock() Clock { return realClock{} }
