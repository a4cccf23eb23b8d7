package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"imagibox-server/internal/interfaces"
	"imagibox-server/internal/models"
)

// AnalyticsService aggregates kid activity for the parent dashboard.
type AnalyticsService struct {
	stories  interfaces.StoryRepository
	moodTags interfaces.MoodTagRepository
	users    interfaces.UserRepository
	logger   *zap.Logger
}

// NewAnalyticsService creates the analytics service.
func NewAnalyticsService(
	stories interfaces.StoryRepository,
	moodTags interfaces.MoodTagRepository,
	users interfaces.UserRepository,
	logger *zap.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		stories:  stories,
		moodTags: moodTags,
		users:    users,
		logger:   logger.Named("AnalyticsService"),
	}
}

// Dashboard summarizes story activity across all of a parent's kids.
func (s *AnalyticsService) Dashboard(ctx context.Context, parentID uuid.UUID) (*models.DashboardResponse, error) {
	parent, err := s.users.GetByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.Role != models.RoleParent {
		return nil, models.ErrForbidden
	}

	kidIDs, err := s.users.ListKidIDsByParent(ctx, parentID)
	if err != nil {
		return nil, err
	}

	resp := &models.DashboardResponse{
		MoodDistribution: map[string]int64{},
		ActivitySummary:  map[string]int64{},
	}
	if len(kidIDs) == 0 {
		return resp, nil
	}

	total, err := s.stories.CountByUsers(ctx, kidIDs)
	if err != nil {
		return nil, err
	}
	thisWeek, err := s.stories.CountByUsersSince(ctx, kidIDs, 7)
	if err != nil {
		return nil, err
	}
	avgChapters, err := s.stories.AvgChaptersForUsers(ctx, kidIDs)
	if err != nil {
		return nil, err
	}
	moods, err := s.moodTags.DistributionByUsers(ctx, kidIDs)
	if err != nil {
		return nil, err
	}

	resp.TotalStories = total
	resp.StoriesThisWeek = thisWeek
	resp.AvgChaptersPerStory = avgChapters
	resp.MoodDistribution = moods
	resp.ActivitySummary["kids"] = int64(len(kidIDs))
	resp.ActivitySummary["storiesThisWeek"] = thisWeek

	s.logger.Debug("Dashboard assembled",
		zap.String("parentID", parentID.String()),
		zap.Int64("totalStories", total),
	)
	return resp, nil
}

// MoodDistribution returns the mood histogram over a parent's kids.
func (s *AnalyticsService) MoodDistribution(ctx context.Context, parentID uuid.UUID) (map[string]int64, error) {
	parent, err := s.users.GetByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.Role != models.RoleParent {
		return nil, models.ErrForbidden
	}

	kidIDs, err := s.users.ListKidIDsByParent(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return s.moodTags.DistributionByUsers(ctx, kidIDs)
}
