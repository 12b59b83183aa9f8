package services

import (
	"context"

	"golang.org/x/sync/errgroup"
	"wohee/vodtracker/internal/constants"
	"wohee/vodtracker/internal/models"
)

// SnapshotService assembles the all-data payload.
type SnapshotService struct {
	members *MemberService
	vod     *VodService
	statics *StaticsService
}

func NewSnapshotService(members *MemberService, vod *VodService, statics *StaticsService) *SnapshotService {
	return &SnapshotService{members: members, vod: vod, statics: statics}
}

// AllData serves members from the cache and fetches tracking records and
// preset 1 statics concurrently.
func (s *SnapshotService) AllData(ctx context.Context) (*models.Snapshot, error) {
	set, err := s.members.GetMembers(ctx)
	if err != nil {
		return nil, err
	}

	var (
		tracking map[string]models.VodTracking
		statics  []models.Static
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tracking, err = s.vod.GetAllTracking(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		statics, err = s.statics.List(gctx, constants.StaticPreset1)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.Snapshot{
		Members:      set.Members,
		UniqueValues: set.UniqueValues,
		VodTracking:  tracking,
		Statics:      statics,
	}, nil
}
