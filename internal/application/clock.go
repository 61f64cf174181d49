package application

import "time"

// Clock supaya timestamp scan dan katalog gampang di-pin dari test
type Clock interface {
	Now() time.Time
}

// SystemClock pakai time.Now()
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
