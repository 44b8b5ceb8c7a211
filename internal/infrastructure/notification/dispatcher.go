package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"avilegal.backend/internal/infrastructure/mail"
	"avilegal.backend/pkg/logger"
	"avilegal.backend/pkg/metrics"
)

// EmailJob is one templated email addressed to a single recipient.
type EmailJob struct {
	To       string            `json:"to"`
	ToName   string            `json:"toName"`
	Template string            `json:"template"`
	Vars     map[string]string `json:"vars"`
}

// Dispatcher hands an email job to a delivery mechanism.
type Dispatcher interface {
	Dispatch(ctx context.Context, job EmailJob) error
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg mail.Message) error
}

// Publisher writes a keyed message to the email queue.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// DirectDispatcher renders and sends in-process.
type DirectDispatcher struct {
	renderer *Renderer
	sender   Sender
}

func NewDirectDispatcher(renderer *Renderer, sender Sender) *DirectDispatcher {
	return &DirectDispatcher{renderer: renderer, sender: sender}
}

func (d *DirectDispatcher) Dispatch(ctx context.Context, job EmailJob) error {
	rendered, err := d.renderer.Render(ctx, job.Template, job.Vars)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", job.Template, err)
	}
	return d.SendRendered(ctx, job.To, job.ToName, rendered)
}

// SendRendered converts the markdown body and sends it.
func (d *DirectDispatcher) SendRendered(ctx context.Context, to, toName string, rendered *Rendered) error {
	html, err := mail.MarkdownToHTML(rendered.Subject, rendered.Markdown)
	if err != nil {
		return err
	}
	return d.sender.Send(ctx, mail.Message{
		To:      to,
		ToName:  toName,
		Subject: rendered.Subject,
		HTML:    html,
	})
}

// Handle decodes a queued job and delivers it. It is the mail worker's
// consumer handler.
func (d *DirectDispatcher) Handle(ctx context.Context, _, value []byte) error {
	var job EmailJob
	if err := json.Unmarshal(value, &job); err != nil {
		// A malformed job can never succeed; drop it.
		logger.Error(ctx, "Discarding malformed email job", zap.Error(err))
		return nil
	}
	if err := d.Dispatch(ctx, job); err != nil {
		metrics.EmailDispatched(job.Template, "error")
		return err
	}
	metrics.EmailDispatched(job.Template, "sent")
	return nil
}

// KafkaDispatcher queues jobs for the mail worker.
type KafkaDispatcher struct {
	publisher Publisher
}

func NewKafkaDispatcher(publisher Publisher) *KafkaDispatcher {
	return &KafkaDispatcher{publisher: publisher}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, job EmailJob) error {
	return d.publisher.Publish(ctx, job.To, job)
}

// Notifier sends business notifications. Failures are logged and never
// returned to the caller.
type Notifier struct {
	dispatcher Dispatcher
}

func NewNotifier(dispatcher Dispatcher) *Notifier {
	return &Notifier{dispatcher: dispatcher}
}

func (n *Notifier) Notify(ctx context.Context, job EmailJob) {
	if n == nil || n.dispatcher == nil || job.To == "" {
		return
	}
	if err := n.dispatcher.Dispatch(ctx, job); err != nil {
		metrics.EmailDispatched(job.Template, "error")
		logger.Error(ctx, "Failed to dispatch email",
			zap.String("template", job.Template),
			zap.String("to", job.To),
			zap.Error(err),
		)
		return
	}
	metrics.EmailDispatched(job.Template, "dispatched")
}
