// Package ratelimit — счётчик запросов с фиксированным окном на ключ
// (клиент, маршрут). Состояние живёт в памяти процесса и обнуляется при рестарте.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dentalcms/internal/clock"
	"dentalcms/internal/security"
)

// Decision — результат одной проверки.
type Decision struct {
	Allowed bool
	Count   int
	// RetryAfter — целые секунды до сброса окна, заполняется только при отказе.
	RetryAfter int
}

// Err — nil для пропущенного запроса, иначе ошибка, совместимая с security.ErrRateLimited.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return fmt.Errorf("%w: retry after %ds", security.ErrRateLimited, d.RetryAfter)
}

type windowKey struct {
	client string
	route  string
}

type window struct {
	count   int
	resetAt time.Time
}

// Store — примитив лимитера. Check и Sweep работают под одним мьютексом,
// поэтому удаление ключа не может вернуть к жизни устаревшее окно.
type Store struct {
	mu      sync.Mutex
	clock   clock.Clock
	windows map[windowKey]*window
}

func NewStore(clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.System{}
	}
	return &Store{
		clock:   clk,
		windows: make(map[windowKey]*window),
	}
}

// Check учитывает запрос и решает, пропускать ли его.
// Окно фиксированное: на стыке двух окон возможен всплеск до 2*maxRequests.
func (s *Store) Check(client, route string, maxRequests int, windowDuration time.Duration) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	k := windowKey{client: client, route: route}

	w, ok := s.windows[k]
	if !ok || !now.Before(w.resetAt) {
		s.windows[k] = &window{count: 1, resetAt: now.Add(windowDuration)}
		if maxRequests < 1 {
			return Decision{Allowed: false, Count: 1, RetryAfter: retryAfterSeconds(windowDuration)}
		}
		return Decision{Allowed: true, Count: 1}
	}

	w.count++
	if w.count > maxRequests {
		return Decision{Allowed: false, Count: w.count, RetryAfter: retryAfterSeconds(w.resetAt.Sub(now))}
	}
	return Decision{Allowed: true, Count: w.count}
}

// Sweep удаляет ключи с истёкшим окном и возвращает их количество.
// На корректность Check не влияет, только на память.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0
	for k, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, k)
			removed++
		}
	}
	return removed
}

// Len — число отслеживаемых ключей.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

func retryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Policy — лимит для класса маршрутов.
type Policy struct {
	Name        string
	MaxRequests int
	Window      time.Duration
}

var (
	LoginPolicy    = Policy{Name: "login", MaxRequests: 5, Window: 15 * time.Minute}
	APIPolicy      = Policy{Name: "api", MaxRequests: 100, Window: time.Minute}
	UploadPolicy   = Policy{Name: "upload", MaxRequests: 20, Window: time.Minute}
	PasswordPolicy = Policy{Name: "password", MaxRequests: 5, Window: 15 * time.Minute}
)

// Limiter — отдельный экземпляр Store под одну политику.
type Limiter struct {
	store  *Store
	policy Policy
}

func NewLimiter(policy Policy, clk clock.Clock) *Limiter {
	return &Limiter{store: NewStore(clk), policy: policy}
}

func (l *Limiter) Allow(client, route string) Decision {
	return l.store.Check(client, route, l.policy.MaxRequests, l.policy.Window)
}

func (l *Limiter) Policy() Policy { return l.policy }

func (l *Limiter) Sweep() int { return l.store.Sweep() }

func (l *Limiter) Len() int { return l.store.Len() }

// Sweeper — всё, что умеет чистить себя по таймеру.
type Sweeper interface {
	Sweep() int
}

// RunSweeper вызывает Sweep у всех sweepers каждые interval до отмены ctx.
// onSweep (может быть nil) получает суммарное число удалённых ключей.
func RunSweeper(ctx context.Context, interval time.Duration, onSweep func(removed int), sweepers ...Sweeper) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			removed := 0
			for _, s := range sweepers {
				removed += s.Sweep()
			}
			if onSweep != nil {
				onSweep(removed)
			}
		}
	}
}
