// Package clock отделяет компоненты от time.Now, чтобы сроки жизни токенов
// и окна лимитера можно было проверять в тестах без реальных таймеров.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

// System — настоящее время.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fake — ручные часы для тестов. Безопасны для конкурентного использования.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance сдвигает часы вперёд на d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}
