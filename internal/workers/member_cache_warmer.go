package workers

import (
	"context"
	"time"

	"wohee/vodtracker/internal/logging"
	"wohee/vodtracker/internal/models"
)

// MemberRefresher reloads the member cache from the store.
type MemberRefresher interface {
	Refresh(ctx context.Context) (*models.MemberSet, error)
}

// MemberCacheWarmer keeps the member cache populated so reads rarely pay for
// a full fetch.
type MemberCacheWarmer struct {
	members  MemberRefresher
	interval time.Duration
	timeout  time.Duration
}

func NewMemberCacheWarmer(members MemberRefresher, interval time.Duration) *MemberCacheWarmer {
	return &MemberCacheWarmer{members: members, interval: interval, timeout: time.Minute}
}

// Start refreshes once, then on every tick until ctx is done. A zero
// interval disables the warmer.
func (w *MemberCacheWarmer) Start(ctx context.Context) {
	if w.interval <= 0 {
		return
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			logging.Info("member cache warmer stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *MemberCacheWarmer) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	// on failure the old entry expires and the next request retries
	if _, err := w.members.Refresh(ctx); err != nil {
		logging.Warn("member cache warm failed", "error", err.Error())
	}
}
