//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/gustmaps/windshear-service/internal/domain"
)

// startKafka starts a single-broker Kafka container and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("windshear-test"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err, "resolve kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic on the broker.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial kafka")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}), "create topic %s", topic)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// gridCell holds the hourly wind components the fake reanalysis API serves
// for one grid point, and the land cover code the fake classifier assigns to
// the same location.
type gridCell struct {
	Lon, Lat      float64
	U, V          []float64
	LandCoverCode int
	LandCoverName string
}

// newWeatherServer serves GET /v1/hourly with the given grid cells, hourly
// from the requested start time. Every cell reports the same number of
// samples.
func newWeatherServer(t *testing.T, cells []gridCell) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/hourly", r.URL.Path)

		start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
		require.NoError(t, err, "parse start query param")

		samples := len(cells[0].U)
		times := make([]string, samples)
		for i := range times {
			times[i] = start.Add(time.Duration(i) * time.Hour).Format(time.RFC3339)
		}

		points := make([]map[string]any, len(cells))
		for i, c := range cells {
			points[i] = map[string]any{
				"lon": c.Lon,
				"lat": c.Lat,
				"values": map[string][]float64{
					"U50M": c.U,
					"V50M": c.V,
				},
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"times": times, "points": points})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newLandCoverServer serves GET /v1/classify, matching the queried location
// to the nearest configured cell.
func newLandCoverServer(t *testing.T, cells []gridCell) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/classify", r.URL.Path)

		lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
		require.NoError(t, err, "parse lon query param")
		lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		require.NoError(t, err, "parse lat query param")

		best := 0
		bestDist := 0.0
		for i, c := range cells {
			d := (c.Lon-lon)*(c.Lon-lon) + (c.Lat-lat)*(c.Lat-lat)
			if i == 0 || d < bestDist {
				best = i
				bestDist = d
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"code":  cells[best].LandCoverCode,
			"label": cells[best].LandCoverName,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// resultMessage holds a deserialized message read from the result topic.
type resultMessage struct {
	Result  domain.AssessmentResult
	Key     string
	Headers map[string]string
}

// readResult reads a single message from the result consumer and deserializes it.
func readResult(ctx context.Context, t *testing.T, consumer *kafkago.Reader) resultMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from result topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var result domain.AssessmentResult
	require.NoError(t, json.Unmarshal(msg.Value, &result), "unmarshal result message")

	return resultMessage{
		Result:  result,
		Key:     string(msg.Key),
		Headers: headers,
	}
}
