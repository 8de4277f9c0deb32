package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestReporteCierre_PayloadInvalido(t *testing.T) {
	w := NewReporteCierreWorker(nil, nil, nil, "dueno@libreria.test")

	assert.Error(t, w.Process(context.Background(), json.RawMessage(`{`)))
	assert.Error(t, w.Process(context.Background(), json.RawMessage(`{"turno_id":"no-uuid"}`)))
}

func TestReporteCierre_SinDestinoNoHaceNada(t *testing.T) {
	w := NewReporteCierreWorker(nil, nil, nil, "")
	raw, _ := json.Marshal(ReporteCierrePayload{TurnoID: uuid.NewString()})
	assert.NoError(t, w.Process(context.Background(), raw))
}
