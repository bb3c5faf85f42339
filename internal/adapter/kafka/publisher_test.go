package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/zip-coverage/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockWriter) Close() error {
	return m.Called().Error(0)
}

func testPublisher(w messageWriter) *Publisher {
	return &Publisher{writer: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 4, 26, 15, 10, 0, 0, time.UTC)
	rec := domain.Record{
		Brand:       domain.BrandMSQ,
		ZIP:         "43004",
		Status:      domain.StatusUnavailable,
		PublishedAt: now,
	}

	msg, err := serializeToMessage(rec)
	require.NoError(t, err)

	assert.Equal(t, []byte("msq:43004"), msg.Key)
	assert.JSONEq(t, `{"brand":"msq","zip":"43004","status":"unavailable"}`, string(msg.Value))
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "brand", msg.Headers[0].Key)
	assert.Equal(t, []byte("msq"), msg.Headers[0].Value)
	assert.Equal(t, "status", msg.Headers[1].Key)
	assert.Equal(t, []byte("unavailable"), msg.Headers[1].Value)
	assert.Equal(t, "published_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)
}

func TestPublish_SingleWrite(t *testing.T) {
	w := &mockWriter{}
	w.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafkago.Message) bool {
		return len(msgs) == 2 && string(msgs[0].Key) == "hwc:43004" && string(msgs[1].Key) == "tca:43201"
	})).Return(nil).Once()

	p := testPublisher(w)
	err := p.Publish(context.Background(), []domain.Record{
		{Brand: domain.BrandHWC, ZIP: "43004", Status: domain.StatusAvailable},
		{Brand: domain.BrandTCA, ZIP: "43201", Status: domain.StatusUnavailable},
	})
	require.NoError(t, err)
	w.AssertExpectations(t)
}

func TestPublish_Empty(t *testing.T) {
	w := &mockWriter{}
	p := testPublisher(w)

	require.NoError(t, p.Publish(context.Background(), nil))
	w.AssertNotCalled(t, "WriteMessages", mock.Anything, mock.Anything)
}

func TestPublish_WriteError(t *testing.T) {
	boom := errors.New("broker unavailable")
	w := &mockWriter{}
	w.On("WriteMessages", mock.Anything, mock.Anything).Return(boom)

	p := testPublisher(w)
	err := p.Publish(context.Background(), []domain.Record{{Brand: domain.BrandHWC, ZIP: "43004", Status: domain.StatusAvailable}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestClose(t *testing.T) {
	w := &mockWriter{}
	w.On("Close").Return(nil)

	require.NoError(t, testPublisher(w).Close())
	w.AssertExpectations(t)
}
