package events_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/device-lending/backend/internal/domain"
	"github.com/pkordes/device-lending/backend/internal/events"
)

func bookingFixture() domain.Booking {
	return domain.Booking{
		ID:       uuid.New(),
		Device:   domain.Device{ID: 1, Name: "Device #1"},
		User:     domain.User{ID: 7, Name: "User #7"},
		BookedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewBookingEvent(t *testing.T) {
	b := bookingFixture()

	booked := events.NewBookingEvent(b)
	assert.Equal(t, events.TypeDeviceBooked, booked.Type)
	assert.Equal(t, b.ID, booked.BookingID)
	assert.Equal(t, int64(1), booked.DeviceID)
	assert.Equal(t, int64(7), booked.UserID)
	assert.NotEqual(t, uuid.Nil, booked.ID)
	assert.Nil(t, booked.ReturnedAt)

	returnedAt := b.BookedAt.Add(time.Hour)
	b.ReturnedAt = &returnedAt
	returned := events.NewBookingEvent(b)
	assert.Equal(t, events.TypeDeviceReturned, returned.Type)
	require.NotNil(t, returned.ReturnedAt)
	assert.NotEqual(t, booked.ID, returned.ID, "each event gets its own id")
}

func TestLogPublisher_Publish(t *testing.T) {
	var buf bytes.Buffer
	p := events.NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	evt := events.NewBookingEvent(bookingFixture())
	require.NoError(t, p.Publish(context.Background(), evt))
	require.NoError(t, p.Close())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, events.TypeDeviceBooked, line["msg"])
	assert.Equal(t, evt.BookingID.String(), line["booking_id"])
	assert.EqualValues(t, 1, line["device_id"])
	assert.NotContains(t, line, "returned_at")
}

// TestAMQPPublisher_RoundTrip publishes one event through a real broker and
// reads it back from a bound queue. Skipped unless TEST_AMQP_URL is set.
func TestAMQPPublisher_RoundTrip(t *testing.T) {
	url := os.Getenv("TEST_AMQP_URL")
	if url == "" {
		t.Skip("TEST_AMQP_URL not set; skipping integration test")
	}
	const exchange = "device-lending-test"

	p, err := events.NewAMQPPublisher(url, exchange)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	conn, err := amqp.Dial(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	ch, err := conn.Channel()
	require.NoError(t, err)

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, "device.*", exchange, false, nil))

	evt := events.NewBookingEvent(bookingFixture())
	require.NoError(t, p.Publish(context.Background(), evt))

	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		assert.Equal(t, events.TypeDeviceBooked, d.RoutingKey)
		var got events.Event
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, evt.BookingID, got.BookingID)
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
}
