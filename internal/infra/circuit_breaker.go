package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// CircuitBreaker guards the outbound integrations (ISBN lookup and SMTP).
// After FailureThreshold consecutive failures it opens and rejects calls
// without running them; once OpenTimeout has passed it lets a single probe
// through at a time and closes again after SuccessThreshold good probes.
type CircuitBreaker struct {
	name string
	cfg  CircuitBreakerConfig
	now  func() time.Time

	mu        sync.Mutex
	state     CBState
	fallos    int
	exitos    int
	abiertoEn time.Time
	sondeando bool // a half-open probe is in flight
	ultimoErr string
}

type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// ErrCircuitOpen is returned by Execute without calling fn.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
}

func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{FailureThreshold: 5, SuccessThreshold: 2, OpenTimeout: time.Minute}
}

func NewCircuitBreaker(name string, cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCBConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	return &CircuitBreaker{name: name, cfg: cfg, now: time.Now}
}

// State reports the breaker state as callers would see it right now: an open
// breaker whose timeout elapsed reads as half-open.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.vencerApertura()
	return cb.state
}

// CBSnapshot is what the health endpoint reports per breaker. The last error
// text stays in the logs.
type CBSnapshot struct {
	Estado string `json:"estado"`
	Fallos int    `json:"fallos"`
}

func (cb *CircuitBreaker) Snapshot() CBSnapshot {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.vencerApertura()
	return CBSnapshot{Estado: cb.state.String(), Fallos: cb.fallos}
}

// Execute runs fn unless the breaker is open or already probing. Errors
// wrapped with Ignorable are returned to the caller but count as successes:
// the upstream answered, just not with what we wanted.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	sonda, err := cb.admitir()
	if err != nil {
		return err
	}
	err = fn()
	cb.registrar(sonda, err)
	return err
}

func (cb *CircuitBreaker) admitir() (sonda bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.vencerApertura()
	switch cb.state {
	case CBOpen:
		return false, ErrCircuitOpen
	case CBHalfOpen:
		if cb.sondeando {
			return false, ErrCircuitOpen
		}
		cb.sondeando = true
		return true, nil
	}
	return false, nil
}

func (cb *CircuitBreaker) registrar(sonda bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if sonda {
		cb.sondeando = false
	}

	if err != nil && !errors.Is(err, errIgnorable) {
		cb.ultimoErr = err.Error()
		cb.fallos++
		if cb.state == CBHalfOpen || cb.fallos >= cb.cfg.FailureThreshold {
			cb.abrir()
		}
		return
	}

	cb.fallos = 0
	if cb.state == CBHalfOpen {
		cb.exitos++
		if cb.exitos >= cb.cfg.SuccessThreshold {
			cb.state = CBClosed
			cb.exitos = 0
			cb.ultimoErr = ""
			log.Info().Str("breaker", cb.name).Msg("circuit breaker closed")
		}
	}
}

// abrir must be called with mu held.
func (cb *CircuitBreaker) abrir() {
	if cb.state != CBOpen {
		log.Warn().Str("breaker", cb.name).Int("fallos", cb.fallos).Str("error", cb.ultimoErr).Msg("circuit breaker opened")
	}
	cb.state = CBOpen
	cb.abiertoEn = cb.now()
	cb.exitos = 0
}

// vencerApertura must be called with mu held.
func (cb *CircuitBreaker) vencerApertura() {
	if cb.state == CBOpen && cb.now().Sub(cb.abiertoEn) >= cb.cfg.OpenTimeout {
		cb.state = CBHalfOpen
		cb.exitos = 0
	}
}

var errIgnorable = errors.New("ignorable")

type ignorableError struct{ err error }

func (e ignorableError) Error() string   { return e.err.Error() }
func (e ignorableError) Unwrap() []error { return []error{e.err, errIgnorable} }

// Ignorable marks err as a non-failure for the breaker. errors.Is still sees
// the original error.
func Ignorable(err error) error { return ignorableError{err: err} }
