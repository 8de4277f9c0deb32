package worker

// dlq.go: dead letter queue.
// A closing report that still fails after maxAttempts lands in dlq:{queue} so
// the owner can re-send it by hand. The list is capped; /health reports its
// length.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DLQPrefix = "dlq:"
	dlqMaxLen = 500

	dlqWriteTimeout = 5 * time.Second
)

// DLQEntry is one parked job.
type DLQEntry struct {
	Queue    string          `json:"queue"`
	JobType  string          `json:"job_type"`
	Payload  json.RawMessage `json:"payload"`
	Motivo   string          `json:"motivo"`
	FailedAt string          `json:"failed_at"`
	Attempts int             `json:"attempts"`
}

// SendToDLQ parks a failed job, dropping the oldest entries past dlqMaxLen.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue, jobType string, payload json.RawMessage, motivo string, attempts int) {
	data, err := json.Marshal(DLQEntry{
		Queue:    queue,
		JobType:  jobType,
		Payload:  payload,
		Motivo:   motivo,
		FailedAt: time.Now().UTC().Format(time.RFC3339),
		Attempts: attempts,
	})
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal entry")
		return
	}

	key := DLQPrefix + queue
	// The job already failed; park it even if the caller's ctx is gone.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dlqWriteTimeout)
	defer cancel()
	_, err = rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, key, data)
		p.LTrim(ctx, key, 0, dlqMaxLen-1)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("dlq_key", key).Str("payload", string(payload)).Msg("dlq: push failed, job lost")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("motivo", motivo).
		Int("attempts", attempts).
		Msg("dlq: job parked")
}

// DLQLength returns how many jobs of queue are parked.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
