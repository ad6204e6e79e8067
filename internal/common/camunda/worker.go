package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"policyfund-workers/internal/common/config"
	"policyfund-workers/internal/common/logger"
)

// JobRecorder receives the wall time of every handled job.
type JobRecorder interface {
	RecordJob(ctx context.Context, taskType, status string, duration time.Duration)
}

// Worker is one open job subscription.
type Worker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// StartWorker opens a job worker for taskType. recorder may be nil.
func StartWorker(
	c *Client,
	taskType string,
	wcfg config.WorkerConfig,
	handler worker.JobHandler,
	recorder JobRecorder,
	log logger.Logger,
) *Worker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})

	jobWorker := c.Zeebe().NewJobWorker().
		JobType(taskType).
		Handler(timed(taskType, handler, recorder)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	log.Info("worker started", map[string]interface{}{
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeoutMs":     wcfg.Timeout,
	})

	return &Worker{worker: jobWorker, logger: log, taskType: taskType}
}

func timed(taskType string, handler worker.JobHandler, recorder JobRecorder) worker.JobHandler {
	if recorder == nil {
		return handler
	}
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		handler(client, job)
		recorder.RecordJob(context.Background(), taskType, "handled", time.Since(start))
	}
}

// Stop closes the subscription and waits for in-flight handlers.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
