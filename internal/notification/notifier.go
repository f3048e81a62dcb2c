package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Job is one notification to deliver. Delivery is asynchronous; approval
// flow never waits on the relay.
type Job struct {
	RecipientID   int64
	ApplicationID int64
	Event         string
	Subject       string
	Body          string
}

type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Job, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(Job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {

			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker processing notification", "worker_id", w.ID, "application_id", job.ApplicationID)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type Config struct {
	RelayURL     string
	APIKey       string
	FromAddress  string
	SendTimeout  time.Duration
	MaxWorkers   int
	JobQueueSize int
}

// Notifier delivers notifications through a relay service over HTTP. With
// no relay configured it logs each notification instead of sending it.
type Notifier struct {
	relayURL    string
	apiKey      string
	fromAddress string
	sendTimeout time.Duration
	logger      *slog.Logger

	jobQueue   chan Job
	workerPool chan chan Job
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewNotifier(config Config, logger *slog.Logger) *Notifier {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 5
	}

	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}

	sendTimeout := config.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}

	notifier := &Notifier{
		relayURL:    config.RelayURL,
		apiKey:      config.APIKey,
		fromAddress: config.FromAddress,
		sendTimeout: sendTimeout,
		logger:      logger,

		maxWorkers: maxWorkers,
		jobQueue:   make(chan Job, jobQueueSize),
		workerPool: make(chan chan Job, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}

	notifier.startWorkerPool()

	return notifier
}

func (n *Notifier) startWorkerPool() {
	n.once.Do(func() {

		for i := 0; i < n.maxWorkers; i++ {
			worker := NewWorker(i, n.workerPool, n.logger)
			worker.Start(n.ctx, &n.wg, n.deliver)
		}

		go n.dispatch()

		n.logger.Info("notification worker pool started",
			"max_workers", n.maxWorkers,
			"queue_size", cap(n.jobQueue),
			"relay_configured", n.relayURL != "")
	})
}

func (n *Notifier) dispatch() {
	n.wg.Add(1)
	defer n.wg.Done()

	for {
		select {
		case job := <-n.jobQueue:

			select {
			case jobChannel := <-n.workerPool:

				select {
				case jobChannel <- job:

				case <-n.ctx.Done():
					n.logger.Info("notification dispatcher shutting down")
					return
				}
			case <-n.ctx.Done():
				n.logger.Info("notification dispatcher shutting down")
				return
			}
		case <-n.ctx.Done():
			n.logger.Info("notification dispatcher shutting down")
			return
		}
	}
}

func (n *Notifier) Shutdown() {
	n.logger.Info("shutting down notifier")
	n.cancel()
	n.wg.Wait()
	n.logger.Info("notifier shutdown complete")
}

// Enqueue hands a notification to the worker pool. A full queue drops the
// notification rather than blocking the caller.
func (n *Notifier) Enqueue(job Job) error {
	select {
	case n.jobQueue <- job:
		n.logger.Debug("notification queued",
			"recipient_id", job.RecipientID,
			"application_id", job.ApplicationID,
			"event", job.Event,
			"queue_length", len(n.jobQueue))
		return nil
	default:
		n.logger.Warn("notification queue full, dropping notification",
			"recipient_id", job.RecipientID,
			"application_id", job.ApplicationID,
			"event", job.Event)
		return fmt.Errorf("notification queue full")
	}
}

func (n *Notifier) deliver(job Job) {
	if n.relayURL == "" {
		n.logger.Info("notification (no relay configured)",
			"recipient_id", job.RecipientID,
			"application_id", job.ApplicationID,
			"event", job.Event,
			"subject", job.Subject)
		return
	}

	payload := map[string]interface{}{
		"recipient_id":   job.RecipientID,
		"application_id": job.ApplicationID,
		"event":          job.Event,
		"subject":        job.Subject,
		"body":           job.Body,
		"from":           n.fromAddress,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error("failed to marshal notification payload", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(n.ctx, n.sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", n.relayURL+"/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		n.logger.Error("failed to create relay request", "error", err, "application_id", job.ApplicationID)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if n.apiKey != "" {
		req.Header.Set("X-API-Key", n.apiKey)
	}

	client := &http.Client{Timeout: n.sendTimeout}
	resp, err := client.Do(req)
	if err != nil {
		n.logger.Error("notification delivery failed",
			"error", err,
			"recipient_id", job.RecipientID,
			"application_id", job.ApplicationID)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		n.logger.Info("notification delivered",
			"recipient_id", job.RecipientID,
			"application_id", job.ApplicationID,
			"event", job.Event)
	} else {
		n.logger.Warn("relay rejected notification",
			"recipient_id", job.RecipientID,
			"application_id", job.ApplicationID,
			"status_code", resp.StatusCode)
	}
}
