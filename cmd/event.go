package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/bp848/mqdriven-sub004/internal/core/events"
	"github.com/bp848/mqdriven-sub004/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event bus commands",
	Long:  `Inspect the in-process event bus by publishing sample application lifecycle events`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a sample application event",
	Long: `Publish a sample event of the given type (for example application.submitted
or application.approved) to a local bus with a logging subscriber, to check
payload shapes during development`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishSampleEvent(args[0])
	},
}

var sampleApplicationID int64

func publishSampleEvent(eventType string) {
	logger := logger.LoggerWrapper()

	eventBus := events.NewEventBus(logger)

	eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		logger.Info("subscriber received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	sampleEvent := events.BaseEvent{
		ID:        fmt.Sprintf("sample-%d", time.Now().Unix()),
		Type:      eventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"applicationId": sampleApplicationID,
			"applicantId":   int64(1),
			"source":        "cli-sample",
		},
	}

	logger.Info("publishing sample event", "event_type", eventType, "event_id", sampleEvent.ID)

	ctx := context.Background()
	if err := eventBus.Publish(ctx, sampleEvent); err != nil {
		logger.Error("failed to publish event", "error", err)
		return
	}

	time.Sleep(100 * time.Millisecond)
	logger.Info("sample event published")
}

func init() {
	publishEventCmd.Flags().Int64Var(&sampleApplicationID, "application-id", 1, "Application id for the sample payload")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
