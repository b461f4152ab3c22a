package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/config"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/notify"
)

type sentMessage struct {
	destination string
	text        string
	action      *notify.Action
}

// recordingChannel captures deliveries and can fail chosen destinations.
type recordingChannel struct {
	maxLen   int
	failDest string
	sent     []sentMessage
}

func (c *recordingChannel) Send(ctx context.Context, destination, text string, action *notify.Action) error {
	if destination == c.failDest {
		return errors.New("destination unreachable")
	}
	c.sent = append(c.sent, sentMessage{destination: destination, text: text, action: action})
	return nil
}

func (c *recordingChannel) MaxTextLength() int {
	return c.maxLen
}

func notificationRequest() domain.Request {
	return domain.Request{
		ID:           "req-12345678-abcd",
		Status:       domain.RequestStatusNew,
		Location:     "Room 204",
		IssueType:    "Plumbing",
		ReporterName: "Maria",
		CreatedAt:    time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func newNotificationService(channel notify.Channel, destinations ...string) *NotificationService {
	return NewNotificationService(nil, channel, nil, config.NotificationConfig{
		Destinations: destinations,
	}, zap.NewNop())
}

func TestNotificationService_SingleMessageCarriesAction(t *testing.T) {
	channel := &recordingChannel{maxLen: 4096}
	svc := newNotificationService(channel, "ops-room")

	svc.NotifyNewRequest(context.Background(), notificationRequest())

	require.Len(t, channel.sent, 1)
	msg := channel.sent[0]
	assert.Equal(t, "ops-room", msg.destination)
	assert.Contains(t, msg.text, "New maintenance request #req-1234")
	assert.Contains(t, msg.text, "Location: Room 204")
	assert.Contains(t, msg.text, "Status: new")
	require.NotNil(t, msg.action)
	assert.Equal(t, "Accept", msg.action.Label)
	assert.Equal(t, "accept_req:req-12345678-abcd", msg.action.Callback)
}

func TestNotificationService_LongTextChunkedWithActionOnLast(t *testing.T) {
	channel := &recordingChannel{maxLen: 40}
	svc := newNotificationService(channel, "ops-room")

	svc.NotifyNewRequest(context.Background(), notificationRequest())

	require.Greater(t, len(channel.sent), 1, "text over the limit must be split")
	for i, msg := range channel.sent {
		if i < len(channel.sent)-1 {
			assert.Nil(t, msg.action, "only the final chunk carries the affordance")
		}
		assert.LessOrEqual(t, len([]rune(msg.text)), 40)
	}
	assert.NotNil(t, channel.sent[len(channel.sent)-1].action)

	var joined strings.Builder
	for i, msg := range channel.sent {
		if i > 0 {
			joined.WriteString("\n")
		}
		joined.WriteString(msg.text)
	}
	assert.Contains(t, joined.String(), "Reported by: Maria")
}

func TestNotificationService_FailingDestinationDoesNotStopOthers(t *testing.T) {
	channel := &recordingChannel{maxLen: 4096, failDest: "dead-room"}
	svc := newNotificationService(channel, "dead-room", "ops-room")

	svc.NotifyNewRequest(context.Background(), notificationRequest())

	require.Len(t, channel.sent, 1)
	assert.Equal(t, "ops-room", channel.sent[0].destination)
}

func TestNotificationService_PhotoLineOnlyWhenPresent(t *testing.T) {
	channel := &recordingChannel{maxLen: 4096}
	svc := newNotificationService(channel, "ops-room")

	req := notificationRequest()
	svc.NotifyNewRequest(context.Background(), req)

	req.PhotoURL = "https://blob/photo.jpg"
	svc.NotifyNewRequest(context.Background(), req)

	require.Len(t, channel.sent, 2)
	assert.NotContains(t, channel.sent[0].text, "Photo:")
	assert.Contains(t, channel.sent[1].text, "Photo: https://blob/photo.jpg")
}

func TestNotificationService_CreatedHandlerRejectsForeignPayload(t *testing.T) {
	channel := &recordingChannel{maxLen: 4096}
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, channel, nil, config.NotificationConfig{
		Destinations: []string{"ops-room"},
	}, zap.NewNop())
	svc.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventRequestCreated,
		Payload: "not a request payload",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("unexpected payload for %s", events.EventRequestCreated))
	assert.Empty(t, channel.sent)
}

func TestNotificationService_AcceptedAndCompletedHandlersAreQuiet(t *testing.T) {
	channel := &recordingChannel{maxLen: 4096}
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, channel, nil, config.NotificationConfig{
		Destinations: []string{"ops-room"},
	}, zap.NewNop())
	svc.RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:      events.EventRequestAccepted,
		RequestID: "req-1",
		ActorID:   "tech-7",
	}))
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:      events.EventRequestCompleted,
		RequestID: "req-1",
		ActorID:   "tech-7",
	}))
	assert.Empty(t, channel.sent)
}
