package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlink-stock/stockpro/internal/persist"
	"github.com/starlink-stock/stockpro/internal/store"
	_ "github.com/starlink-stock/stockpro/testing"
)

type fakeMailer struct {
	to      string
	subject string
	body    string
	sent    int
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	f.to, f.subject, f.body = to, subject, body
	f.sent++
	return nil
}

func newTestState(t *testing.T) *persist.StateStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return persist.NewStateStore(persist.NewRedisSlotStore(client, "starlink"), nil)
}

func TestLowStockScanSendsAlert(t *testing.T) {
	state := newTestState(t)
	ctx := context.Background()
	require.NoError(t, state.Save(ctx, store.Snapshot{
		Products: []store.Product{
			{ID: "p1", Name: "Antena Starlink V2", SKU: "ANT-V2", Stock: 2},
			{ID: "p2", Name: "Cabo 15m", SKU: "CAB-15", Stock: 9},
		},
	}))

	mailer := &fakeMailer{}
	proc := NewProcessor(state, mailer, "dono@starlink.com", nil)

	task, err := NewLowStockScanTask(time.Now())
	require.NoError(t, err)
	require.NoError(t, proc.HandleLowStockScan(ctx, task))

	require.Equal(t, 1, mailer.sent)
	assert.Equal(t, "dono@starlink.com", mailer.to)
	assert.Contains(t, mailer.body, "Antena Starlink V2")
	assert.NotContains(t, mailer.body, "Cabo 15m")
}

func TestLowStockScanNoAlertWhenHealthy(t *testing.T) {
	state := newTestState(t)
	ctx := context.Background()
	require.NoError(t, state.Save(ctx, store.Snapshot{
		Products: []store.Product{{ID: "p1", Name: "Antena", SKU: "ANT", Stock: 10}},
	}))

	mailer := &fakeMailer{}
	proc := NewProcessor(state, mailer, "dono@starlink.com", nil)

	task, err := NewLowStockScanTask(time.Now())
	require.NoError(t, err)
	require.NoError(t, proc.HandleLowStockScan(ctx, task))
	assert.Zero(t, mailer.sent)
}

func TestSendEmailDelegatesToMailer(t *testing.T) {
	state := newTestState(t)
	mailer := &fakeMailer{}
	proc := NewProcessor(state, mailer, "", nil)

	task, err := NewSendEmailTask(SendEmailPayload{To: "x@y.com", Subject: "oi", Body: "corpo"})
	require.NoError(t, err)
	require.NoError(t, proc.HandleSendEmail(context.Background(), task))
	assert.Equal(t, "x@y.com", mailer.to)
	assert.Equal(t, "oi", mailer.subject)
}

func TestStockDrift(t *testing.T) {
	snap := store.Snapshot{
		Products: []store.Product{
			{ID: "p1", Name: "Antena", Stock: 3},
			{ID: "p2", Name: "Cabo", Stock: 4},
			{ID: "p3", Name: "Sem histórico", Stock: 7},
		},
		StockLogs: []store.StockLog{
			{ProductID: "p1", Quantity: 5},
			{ProductID: "p2", Quantity: 6},
		},
		Sales: []store.Sale{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		},
	}

	drifts := stockDrift(snap)
	require.Len(t, drifts, 1)
	assert.Equal(t, "p2", drifts[0].ProductID)
	assert.Equal(t, 4, drifts[0].Recorded)
	assert.Equal(t, 5, drifts[0].Expected)
}

func TestStockIntegrityHandlerTolerant(t *testing.T) {
	state := newTestState(t)
	proc := NewProcessor(state, nil, "", nil)

	task, err := NewStockIntegrityTask(time.Now())
	require.NoError(t, err)
	require.NoError(t, proc.HandleStockIntegrity(context.Background(), task))
}
