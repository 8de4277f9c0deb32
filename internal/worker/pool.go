package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReportes = "jobs:reportes"

	JobReporteCierre = "reporte_cierre"

	maxAttempts = 3
	popTimeout  = 5 * time.Second
)

// Job is the envelope stored in the Redis list.
type Job struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Enqueued time.Time       `json:"enqueued_at"`
}

// HandlerFunc processes one payload. Errors are retried with backoff and the
// job is parked in the dead-letter list once maxAttempts is reached.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

// Dispatcher is the producer side: LPUSH now, BRPOP later in a Pool.
type Dispatcher struct{ rdb *redis.Client }

func NewDispatcher(rdb *redis.Client) *Dispatcher { return &Dispatcher{rdb: rdb} }

// EncolarReporteCierre queues the closing report of a turno.
func (d *Dispatcher) EncolarReporteCierre(ctx context.Context, turnoID uuid.UUID) error {
	return d.push(ctx, QueueReportes, JobReporteCierre, ReporteCierrePayload{TurnoID: turnoID.String()})
}

func (d *Dispatcher) push(ctx context.Context, queue, jobType string, payload any) error {
	job, err := nuevoJob(jobType, payload)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := d.rdb.LPush(ctx, queue, raw).Err(); err != nil {
		return fmt.Errorf("encolar %s: %w", jobType, err)
	}
	log.Debug().Str("job_id", job.ID).Str("type", jobType).Msg("job encolado")
	return nil
}

func nuevoJob(jobType string, payload any) (Job, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Job{}, fmt.Errorf("payload %s: %w", jobType, err)
	}
	return Job{ID: uuid.NewString(), Type: jobType, Payload: data, Enqueued: time.Now().UTC()}, nil
}

// Pool is the consumer side: a fixed set of goroutines blocked on BRPOP.
type Pool struct {
	rdb      *redis.Client
	queues   []string
	handlers map[string]HandlerFunc
	wg       sync.WaitGroup
}

func NewPool(rdb *redis.Client, queues ...string) *Pool {
	if len(queues) == 0 {
		queues = []string{QueueReportes}
	}
	return &Pool{rdb: rdb, queues: queues, handlers: map[string]HandlerFunc{}}
}

// Handle registers the handler of a job type. Not safe after Start.
func (p *Pool) Handle(jobType string, fn HandlerFunc) { p.handlers[jobType] = fn }

// Start returns immediately; workers stop when ctx is cancelled.
func (p *Pool) Start(ctx context.Context, workers int) {
	if workers < 1 {
		workers = 1
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(n int) {
			defer p.wg.Done()
			p.loop(ctx, n)
		}(i)
	}
	log.Info().Int("workers", workers).Strs("queues", p.queues).Msg("worker pool iniciado")
}

// Wait blocks until every worker returned.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) loop(ctx context.Context, n int) {
	for ctx.Err() == nil {
		res, err := p.rdb.BRPop(ctx, popTimeout, p.queues...).Result()
		switch {
		case errors.Is(err, redis.Nil), ctx.Err() != nil:
			continue
		case err != nil:
			log.Warn().Err(err).Int("worker", n).Msg("brpop falló")
			sleepCtx(ctx, time.Second)
			continue
		}
		if len(res) == 2 {
			p.process(ctx, res[0], res[1])
		}
	}
	log.Debug().Int("worker", n).Msg("worker detenido")
}

func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("job mal formado")
		SendToDLQ(ctx, p.rdb, queue, "", json.RawMessage(raw), "envelope inválido: "+err.Error(), 0)
		return
	}
	handler, ok := p.handlers[job.Type]
	if !ok {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, "sin handler registrado", 0)
		return
	}

	logger := log.With().Str("job_id", job.ID).Str("type", job.Type).Logger()
	logger.Info().Dur("espera", time.Since(job.Enqueued)).Msg("procesando job")

	intentos := 0
	err := withRetry(ctx, maxAttempts, func(attempt int) error {
		intentos = attempt + 1
		err := ejecutar(ctx, handler, job.Payload)
		if err != nil {
			logger.Warn().Err(err).Int("attempt", intentos).Msg("intento fallido")
		}
		return err
	})
	if err != nil {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), intentos)
		return
	}
	logger.Info().Int("attempts", intentos).Msg("job completado")
}

// ejecutar turns a handler panic into an error so the worker survives it.
func ejecutar(ctx context.Context, fn HandlerFunc, payload json.RawMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, payload)
}

// withRetry runs fn up to maxAttempts times. The wait before attempt i (i≥1)
// is retryBase·2^(i-1). It returns nil on the first success, the last error
// otherwise, or ctx.Err() if cancelled while waiting.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var err error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 && !sleepCtx(ctx, retryBase<<(i-1)) {
			return ctx.Err()
		}
		if err = fn(i); err == nil {
			return nil
		}
	}
	return err
}

// sleepCtx reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryBase is a variable so tests can shrink the backoff.
var retryBase = time.Second
