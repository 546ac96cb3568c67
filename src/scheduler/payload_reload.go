package scheduler

import (
	"context"
	"log/slog"

	"github.com/username/pypdash/src/logger"
)

// Reloader is the part of the dashboard service the reload job needs.
type Reloader interface {
	Reload(ctx context.Context) error
}

// PayloadReloadJob re-reads the payload files so exporter runs show up without a restart.
type PayloadReloadJob struct {
	reloader Reloader
}

func NewPayloadReloadJob(reloader Reloader) *PayloadReloadJob {
	return &PayloadReloadJob{reloader: reloader}
}

func (j *PayloadReloadJob) Name() string {
	return "payload_reload"
}

func (j *PayloadReloadJob) Run() error {
	ctx := logger.ToContext(context.Background(), logger.L.With(slog.String("job", j.Name())))
	return j.reloader.Reload(ctx)
}
