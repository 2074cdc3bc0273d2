package notifier_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vitals-monitor/internal/models"
	"vitals-monitor/internal/notifier"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testEvents() []models.AlertEvent {
	v := 130.0
	return []models.AlertEvent{
		{
			EventID:     "evt-1",
			PatientID:   "patient-1",
			Parameter:   models.MetricHeartRate,
			Value:       &v,
			Threshold:   models.ThresholdBand{Min: 60, Max: 100, Unit: "bpm"},
			Timestamp:   1700000000000,
			AlertStatus: models.AlertStatusActive,
		},
	}
}

func TestWebhookNotifier_PostsBatchOnce(t *testing.T) {
	var calls int
	var body struct {
		PatientID string              `json:"patient_id"`
		Events    []models.AlertEvent `json:"events"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := notifier.NewWebhookNotifier(server.URL, zap.NewNop())
	n.Dispatch(context.Background(), testEvents())

	require.Equal(t, 1, calls)
	require.Equal(t, "patient-1", body.PatientID)
	require.Len(t, body.Events, 1)
	require.Equal(t, "evt-1", body.Events[0].EventID)
}

func TestWebhookNotifier_EmptyBatchNotSent(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	n := notifier.NewWebhookNotifier(server.URL, zap.NewNop())
	n.Dispatch(context.Background(), nil)

	require.Zero(t, calls)
}

func TestWebhookNotifier_FailureDoesNotPanic(t *testing.T) {
	// fire-and-forget：目标不可达只记录日志
	n := notifier.NewWebhookNotifier("http://127.0.0.1:1", zap.NewNop())
	n.Dispatch(context.Background(), testEvents())
}

func TestStreamNotifier_PublishesToStream(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	n := notifier.NewStreamNotifier(client, "vitals:alerts", zap.NewNop())
	n.Dispatch(context.Background(), testEvents())

	msgs, err := client.XRange(context.Background(), "vitals:alerts", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	data, ok := msgs[0].Values["data"].(string)
	require.True(t, ok)

	var decoded []models.AlertEvent
	require.NoError(t, json.Unmarshal([]byte(data), &decoded))
	require.Equal(t, "evt-1", decoded[0].EventID)
}
