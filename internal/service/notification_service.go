package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/config"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/notify"
)

// NotificationService renders and delivers outbound notifications for domain
// events. Delivery is at-least-once and best-effort: failures are logged per
// destination and never surface into the transition that triggered them.
type NotificationService struct {
	dispatcher   events.Dispatcher
	channel      notify.Channel
	journal      *notify.Journal
	destinations []string
	logger       *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, channel notify.Channel, journal *notify.Journal, cfg config.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher:   dispatcher,
		channel:      channel,
		journal:      journal,
		destinations: cfg.Destinations,
		logger:       logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRequestCreated, n.handleRequestCreated)
	n.dispatcher.Subscribe(events.EventRequestAccepted, n.handleRequestAccepted)
	n.dispatcher.Subscribe(events.EventRequestCompleted, n.handleRequestCompleted)
}

func (n *NotificationService) handleRequestCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RequestCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}
	n.NotifyNewRequest(ctx, payload.Request)
	return nil
}

func (n *NotificationService) handleRequestAccepted(ctx context.Context, event events.Event) error {
	n.logger.Info("request accepted",
		zap.String("request_id", event.RequestID),
		zap.String("actor_id", event.ActorID))
	return nil
}

func (n *NotificationService) handleRequestCompleted(ctx context.Context, event events.Event) error {
	n.logger.Info("request completed",
		zap.String("request_id", event.RequestID),
		zap.String("actor_id", event.ActorID))
	return nil
}

// NotifyNewRequest announces a committed request to every configured
// destination with an accept affordance. Text over the channel limit is
// split into ordered chunks, each sent as its own message, with the
// affordance on the final chunk. A failing destination does not stop the
// others.
func (n *NotificationService) NotifyNewRequest(ctx context.Context, req domain.Request) {
	text := renderNewRequest(req)
	chunks := notify.SplitText(text, n.channel.MaxTextLength())
	action := &notify.Action{Label: "Accept", Callback: "accept_req:" + req.ID}

	for _, dest := range n.destinations {
		key := fmt.Sprintf("request_created:%s:%s", req.ID, dest)
		if !n.journal.MarkIfNew(ctx, key) {
			n.logger.Debug("skipping duplicate notification",
				zap.String("request_id", req.ID),
				zap.String("destination", dest))
			continue
		}
		for i, chunk := range chunks {
			var act *notify.Action
			if i == len(chunks)-1 {
				act = action
			}
			if err := n.channel.Send(ctx, dest, chunk, act); err != nil {
				n.logger.Error("notification delivery failed",
					zap.String("request_id", req.ID),
					zap.String("destination", dest),
					zap.Int("chunk", i+1),
					zap.Error(err))
				break
			}
		}
	}
}

func renderNewRequest(req domain.Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New maintenance request #%s\n\n", shortID(req.ID))
	fmt.Fprintf(&b, "Location: %s\n", req.Location)
	fmt.Fprintf(&b, "Issue: %s\n", req.IssueType)
	fmt.Fprintf(&b, "Reported by: %s\n", req.ReporterName)
	fmt.Fprintf(&b, "Created: %s\n", req.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))
	if req.PhotoURL != "" {
		fmt.Fprintf(&b, "Photo: %s\n", req.PhotoURL)
	}
	b.WriteString("\nStatus: new")
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
