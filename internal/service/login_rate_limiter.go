package service

import (
	"strings"
	"sync"
	"time"
)

// LoginRateLimiter acota intentos fallidos de login por clave (email
// normalizado). Solo los fallos consumen ventana: un login correcto nunca
// bloquea al siguiente y además limpia los fallos acumulados. La respuesta
// del limitador es idéntica exista o no la cuenta.
type LoginRateLimiter interface {
	// Allow consulta la ventana sin consumirla.
	Allow(key string) bool
	// Fail registra un intento con credenciales inválidas.
	Fail(key string)
	// Reset descarta los fallos acumulados tras un login exitoso.
	Reset(key string)
}

type memoryLoginRateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	entries map[string]*limiterEntry
}

type limiterEntry struct {
	count     int
	windowEnd time.Time
}

// NewLoginRateLimiter crea un limitador en memoria de ventana fija. Sirve
// para una sola instancia; con varias réplicas usar la variante Redis.
func NewLoginRateLimiter(window time.Duration, max int) LoginRateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &memoryLoginRateLimiter{
		window:  window,
		max:     max,
		entries: make(map[string]*limiterEntry),
	}
}

func (l *memoryLoginRateLimiter) Allow(key string) bool {
	key = normalizeLimiterKey(key)
	if key == "" {
		return false
	}

	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok || now.After(entry.windowEnd) {
		return true
	}
	return entry.count < l.max
}

func (l *memoryLoginRateLimiter) Fail(key string) {
	key = normalizeLimiterKey(key)
	if key == "" {
		return
	}

	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok || now.After(entry.windowEnd) {
		l.entries[key] = &limiterEntry{count: 1, windowEnd: now.Add(l.window)}
		return
	}
	entry.count++
}

func (l *memoryLoginRateLimiter) Reset(key string) {
	key = normalizeLimiterKey(key)
	if key == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entries, key)
}

func normalizeLimiterKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
