package kafka

import (
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/relief-geocoder-service/internal/domain"
)

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("rpt-1"),
		Value:     []byte(`{"id":"rpt-1"}`),
		Topic:     "flood-reports-reviewed",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "reviewer", Value: []byte("volunteer-7")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("rpt-1"), raw.Key)
	assert.JSONEq(t, `{"id":"rpt-1"}`, string(raw.Value))
	assert.Equal(t, "flood-reports-reviewed", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "volunteer-7", raw.Headers["reviewer"])
	assert.Nil(t, raw.Commit)
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2025, 11, 26, 8, 30, 0, 0, time.UTC)
	lat, lng := 7.0086, 100.4747
	report := domain.Report{
		ID:          "rpt-1",
		Name:        "สมชาย ใจดี",
		Address:     "12 ถ.เพชรเกษม อ.หาดใหญ่ จ.สงขลา",
		Lat:         &lat,
		Lng:         &lng,
		MapLink:     domain.MapLink(lat, lng),
		GeoStatus:   domain.GeoStatusFound,
		ProcessedAt: now,
	}

	msg, err := serializeToMessage(report)
	require.NoError(t, err)

	assert.Equal(t, []byte("rpt-1"), msg.Key)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "geo_status", msg.Headers[0].Key)
	assert.Equal(t, []byte("found"), msg.Headers[0].Value)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "https://www.google.com/maps?q=7.0086,100.4747", decoded["map_link"])
	assert.InDelta(t, 7.0086, decoded["lat"], 1e-9)
	assert.NotContains(t, decoded, "geocoded_at")
}

func TestSerializeToMessage_NoCoordinates(t *testing.T) {
	msg, err := serializeToMessage(domain.Report{ID: "rpt-2", GeoStatus: domain.GeoStatusNotFound})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Nil(t, decoded["lat"])
	assert.Nil(t, decoded["lng"])
	assert.Equal(t, []byte("not_found"), msg.Headers[0].Value)
}
