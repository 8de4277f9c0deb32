//go:build integration

package worker

// Runs against a real Redis via testcontainers:
// go test -tags integration ./internal/worker/... -v

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"
)

func redisDePrueba(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	c, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })
	url, err := c.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

type reportesFijos struct{ turno *model.Turno }

func (r reportesFijos) ExcelMovimientos(context.Context, uuid.UUID) ([]byte, string, error) {
	return nil, "", errors.New("no usado")
}

func (r reportesFijos) PDFCierre(context.Context, uuid.UUID) (string, *model.Turno, error) {
	return "", r.turno, nil
}

type mailerContador struct {
	mu     sync.Mutex
	envios int
}

func (m *mailerContador) EnviarConAdjunto(_, _, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.envios++
	return nil
}

func TestReporteCierre_SeEnviaUnaSolaVez(t *testing.T) {
	rdb := redisDePrueba(t)
	turno := &model.Turno{ID: uuid.New(), Codigo: "T20250301-M-1", FechaNegocio: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Sesion: model.SesionManana}
	mailer := &mailerContador{}
	w := NewReporteCierreWorker(rdb, reportesFijos{turno: turno}, mailer, "dueno@libreria.test")

	raw, err := json.Marshal(ReporteCierrePayload{TurnoID: turno.ID.String()})
	require.NoError(t, err)
	require.NoError(t, w.Process(context.Background(), raw))
	require.NoError(t, w.Process(context.Background(), raw))

	assert.Equal(t, 1, mailer.envios)
	n, err := rdb.Exists(context.Background(), enviadoKey(turno.ID.String())).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestPool_JobFallidoTerminaEnDLQ(t *testing.T) {
	retryBase = time.Millisecond
	defer func() { retryBase = time.Second }()

	rdb := redisDePrueba(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var intentos int
	var mu sync.Mutex
	pool := NewPool(rdb, QueueReportes)
	pool.Handle(JobReporteCierre, func(context.Context, json.RawMessage) error {
		mu.Lock()
		intentos++
		mu.Unlock()
		return errors.New("smtp caído")
	})
	pool.Start(ctx, 1)

	require.NoError(t, NewDispatcher(rdb).EncolarReporteCierre(ctx, uuid.New()))

	assert.Eventually(t, func() bool {
		n, err := DLQLength(ctx, rdb, QueueReportes)
		return err == nil && n == 1
	}, 10*time.Second, 50*time.Millisecond)

	cancel()
	pool.Wait()
	assert.Equal(t, maxAttempts, intentos)
}

func TestPool_CancelarDuranteBackoffIgualAparcaEnDLQ(t *testing.T) {
	retryBase = 2 * time.Second
	defer func() { retryBase = time.Second }()

	rdb := redisDePrueba(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	primerIntento := make(chan struct{})
	var once sync.Once
	pool := NewPool(rdb, QueueReportes)
	pool.Handle(JobReporteCierre, func(context.Context, json.RawMessage) error {
		once.Do(func() { close(primerIntento) })
		return errors.New("smtp caído")
	})
	pool.Start(ctx, 1)
	require.NoError(t, NewDispatcher(rdb).EncolarReporteCierre(ctx, uuid.New()))

	select {
	case <-primerIntento:
	case <-time.After(10 * time.Second):
		t.Fatal("el handler nunca corrió")
	}
	// The worker is now sleeping before attempt 2.
	cancel()
	pool.Wait()

	n, err := DLQLength(context.Background(), rdb, QueueReportes)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	raw, err := rdb.LIndex(context.Background(), DLQPrefix+QueueReportes, 0).Result()
	require.NoError(t, err)
	var entry DLQEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &entry))
	assert.Equal(t, JobReporteCierre, entry.JobType)
	assert.Equal(t, 1, entry.Attempts)
	assert.Contains(t, entry.Motivo, context.Canceled.Error())
}
