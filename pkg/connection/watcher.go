package connection

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SQSClient defines the interface the watcher needs (allows mocking).
type SQSClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Refresher is invoked whenever a rotation notification arrives.
type Refresher interface {
	Refresh() error
}

// SettingsWatcher long-polls a queue for credential or settings rotation
// notifications and triggers a refresh for each one.
type SettingsWatcher struct {
	client    SQSClient
	queueURL  string
	refresher Refresher
	logger    zerolog.Logger
}

// NewSettingsWatcher creates a new watcher instance.
func NewSettingsWatcher(client SQSClient, queueURL string, refresher Refresher) *SettingsWatcher {
	return &SettingsWatcher{
		client:    client,
		queueURL:  queueURL,
		refresher: refresher,
		logger:    log.With().Str("component", "settings_watcher").Logger(),
	}
}

// Watch starts the monitoring loop (blocking).
func (w *SettingsWatcher) Watch(ctx context.Context) {
	if w.queueURL == "" {
		w.logger.Warn().Msg("rotation queue URL not configured, hot refresh disabled")
		return
	}

	w.logger.Info().Str("queue", w.queueURL).Msg("📡 watching rotation queue")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("stopping rotation watcher")
			return
		default:
			out, err := w.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
				QueueUrl:            aws.String(w.queueURL),
				MaxNumberOfMessages: 1,
				WaitTimeSeconds:     20, // long polling
			})

			if err != nil {
				if ctx.Err() != nil {
					return
				}
				w.logger.Error().Err(err).Msg("receive failed, retrying in 5s")
				time.Sleep(5 * time.Second)
				continue
			}

			if len(out.Messages) > 0 {
				w.logger.Info().Msg("🔔 rotation notification received")

				if err := w.refresher.Refresh(); err != nil {
					w.logger.Error().Err(err).Msg("❌ settings refresh failed")
				} else {
					w.logger.Info().Msg("✅ settings refreshed")
				}

				_, _ = w.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
					QueueUrl:      aws.String(w.queueURL),
					ReceiptHandle: out.Messages[0].ReceiptHandle,
				})
			}
		}
	}
}
