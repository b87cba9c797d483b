package worker

import (
	"context"
	"time"

	"filevault/infra"
	"filevault/repository"
)

const defaultSweepInterval = 5 * time.Minute

// Reaper periodically deletes file records whose download URL expiry has
// elapsed and hands the orphaned objects to the purge queue. This is the
// lifecycle sweep the metadata store does not do on its own.
type Reaper struct {
	infra      *infra.Infra
	repository *repository.Repository
	interval   time.Duration
}

func NewReaper(infra *infra.Infra, repo *repository.Repository) *Reaper {
	return &Reaper{
		infra:      infra,
		repository: repo,
		interval:   defaultSweepInterval,
	}
}

func (r *Reaper) Start(ctx context.Context) {
	r.infra.Logger.InfoWithContextf(ctx, "[Reaper] Started, sweeping every %s", r.interval)

	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				r.infra.Logger.InfoWithContextf(ctx, "[Reaper] Shutting down...")
				return
			case <-ticker.C:
				r.sweep(ctx)
			}
		}
	}()
}

func (r *Reaper) sweep(ctx context.Context) {
	expired, err := r.repository.FileRepo.DeleteExpired(time.Now().UTC())
	if err != nil {
		r.infra.Logger.ErrorWithContextf(ctx, err, "[Reaper] Sweep failed: %v", err)
		return
	}
	if len(expired) == 0 {
		return
	}

	r.infra.Logger.InfoWithContextf(ctx, "[Reaper] Reclaimed %d expired records", len(expired))

	for _, record := range expired {
		if err := r.infra.Produce.FileService.PublishFilePurge(ctx, record.FileID, record.ObjectKey, record.UploadedBy); err != nil {
			r.infra.Logger.ErrorWithContextf(ctx, err, "[Reaper] Failed to publish purge for %q: %v", record.FileID, err)
		}
		if cache := r.infra.Redis; cache != nil {
			_ = cache.Delete(ctx, "filevault:listing:"+record.UploadedBy)
		}
	}
}
