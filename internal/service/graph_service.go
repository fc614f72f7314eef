package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"socialcore/internal/middleware"
	"socialcore/internal/models"
	"socialcore/internal/observability"
	"socialcore/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// FollowNotifier receives follow events after the edge set changed.
type FollowNotifier interface {
	PublishFollowEvent(ctx context.Context, ev models.FollowEvent) error
}

// GraphService maintains the directed follow graph.
type GraphService struct {
	follows  repository.FollowRepository
	profiles repository.ProfileRepository
	notifier FollowNotifier
}

// NewGraphService returns a new GraphService. notifier may be nil.
func NewGraphService(follows repository.FollowRepository, profiles repository.ProfileRepository, notifier FollowNotifier) *GraphService {
	return &GraphService{
		follows:  follows,
		profiles: profiles,
		notifier: notifier,
	}
}

// Follow makes follower follow target and returns the target read from the store,
// which also replaces any cached copy. Following an already followed profile
// succeeds without adding a second edge.
func (s *GraphService) Follow(ctx context.Context, follower, target string) (profile *models.Profile, err error) {
	if follower == target {
		return nil, models.NewInvalidOperationError("You can't follow yourself")
	}
	ctx, span := observability.StartSpan(ctx, "graph.Follow",
		attribute.String("follower", follower), attribute.String("target", target))
	defer func() { observability.EndSpan(span, err) }()

	if err := s.ensureProfiles(ctx, follower, target); err != nil {
		return nil, err
	}
	created, err := s.follows.Insert(ctx, follower, target)
	if err != nil {
		return nil, err
	}
	observability.FollowOperations.WithLabelValues(models.EventFollow, strconv.FormatBool(created)).Inc()
	if created {
		s.publish(ctx, models.EventFollow, follower, target)
	}
	return s.profiles.Refresh(ctx, target)
}

// Unfollow removes the edge from follower to target and returns the target with
// fresh follow lists. Unfollowing a profile that is not followed succeeds.
func (s *GraphService) Unfollow(ctx context.Context, follower, target string) (profile *models.Profile, err error) {
	if follower == target {
		return nil, models.NewInvalidOperationError("You can't unfollow yourself")
	}
	ctx, span := observability.StartSpan(ctx, "graph.Unfollow",
		attribute.String("follower", follower), attribute.String("target", target))
	defer func() { observability.EndSpan(span, err) }()

	if err := s.ensureProfiles(ctx, follower, target); err != nil {
		return nil, err
	}
	removed, err := s.follows.Delete(ctx, follower, target)
	if err != nil {
		return nil, err
	}
	observability.FollowOperations.WithLabelValues(models.EventUnfollow, strconv.FormatBool(removed)).Inc()
	if removed {
		s.publish(ctx, models.EventUnfollow, follower, target)
	}
	return s.profiles.Refresh(ctx, target)
}

// Followers lists the profiles following name.
func (s *GraphService) Followers(ctx context.Context, name string) ([]models.ProfileRef, error) {
	if err := s.ensureProfiles(ctx, name); err != nil {
		return nil, err
	}
	return s.follows.Followers(ctx, name)
}

// Following lists the profiles name follows.
func (s *GraphService) Following(ctx context.Context, name string) ([]models.ProfileRef, error) {
	if err := s.ensureProfiles(ctx, name); err != nil {
		return nil, err
	}
	return s.follows.Following(ctx, name)
}

// IsFollowing reports whether the edge follower -> target exists.
func (s *GraphService) IsFollowing(ctx context.Context, follower, target string) (bool, error) {
	return s.follows.Exists(ctx, follower, target)
}

func (s *GraphService) ensureProfiles(ctx context.Context, names ...string) error {
	for _, name := range names {
		exists, err := s.profiles.Exists(ctx, name)
		if err != nil {
			return err
		}
		if !exists {
			return models.NewNotFoundError("Profile", name)
		}
	}
	return nil
}

// publish is best-effort: the edge is already committed.
func (s *GraphService) publish(ctx context.Context, eventType, follower, target string) {
	if s.notifier == nil {
		return
	}
	ev := models.FollowEvent{Type: eventType, Follower: follower, Target: target, At: time.Now().UTC()}
	if err := s.notifier.PublishFollowEvent(ctx, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish follow event",
			slog.String("type", eventType),
			slog.String("target", target),
			slog.String("error", err.Error()))
	}
}
