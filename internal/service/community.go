package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xolan/haven/internal/community"
	"github.com/xolan/haven/internal/storage"
)

// DefaultFeedLimit is how many posts the feed shows.
const DefaultFeedLimit = 50

// CommunityService provides profiles, the feed, likes and comments
type CommunityService struct {
	*env
}

// MyProfile returns the current user's profile, or nil if none exists.
func (s *CommunityService) MyProfile(ctx context.Context) (*community.Profile, error) {
	result, err := s.ownQuery(ctx, storage.EntityProfile, "", 1)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	if len(result.Records) == 0 {
		return nil, nil
	}
	p := community.ProfileFromRecord(result.Records[0])
	return &p, nil
}

// SaveProfile creates the current user's profile or replaces its fields.
func (s *CommunityService) SaveProfile(ctx context.Context, p community.Profile) (*community.Profile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	owner, _, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := s.MyProfile(ctx)
	if err != nil {
		return nil, err
	}

	p.CreatedBy = owner
	fields := p.Record()
	var rec storage.Record
	if existing == nil {
		rec, err = s.store.Create(ctx, storage.EntityProfile, fields)
	} else {
		// Clear optional fields the new profile leaves out.
		for _, k := range []string{community.FieldBio, community.FieldInterests, community.FieldSupportPreferences} {
			if _, ok := fields[k]; !ok {
				fields[k] = nil
			}
		}
		rec, err = s.store.Update(ctx, storage.EntityProfile, existing.ID, fields)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	saved := community.ProfileFromRecord(rec)
	s.logger.Info("community profile saved", zap.String("id", saved.ID), zap.Bool("created", existing == nil))
	return &saved, nil
}

func (s *CommunityService) requireProfile(ctx context.Context) (*community.Profile, error) {
	p, err := s.MyProfile(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileRequired
	}
	return p, nil
}

// CreatePost publishes a post under the current user's display name.
func (s *CommunityService) CreatePost(ctx context.Context, content string, m community.PostMood, tags []string) (*community.Post, error) {
	post := community.Post{Content: content, Mood: m, Tags: tags}
	if err := post.Validate(); err != nil {
		return nil, err
	}
	profile, err := s.requireProfile(ctx)
	if err != nil {
		return nil, err
	}

	post.AuthorDisplayName = profile.DisplayName
	post.CreatedBy = profile.CreatedBy
	rec, err := s.store.Create(ctx, storage.EntityPost, post.Record())
	if err != nil {
		return nil, fmt.Errorf("failed to publish post: %w", err)
	}
	created := community.PostFromRecord(rec)
	s.logger.Info("community post created", zap.String("id", created.ID))
	return &created, nil
}

// Feed returns the newest posts from everyone, marking the ones the current user liked.
func (s *CommunityService) Feed(ctx context.Context, limit int) (*FeedResult, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	owner, _, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.store.List(ctx, storage.EntityPost, storage.Query{
		OrderBy: "-" + storage.FieldCreatedDate,
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}
	s.logWarnings(storage.EntityPost, result.Warnings)

	likes, err := s.store.List(ctx, storage.EntityInteraction, storage.Query{
		Filter: map[string]any{
			storage.FieldCreatedBy:         owner,
			community.FieldInteractionType: string(community.Like),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read likes: %w", err)
	}
	liked := make(map[string]bool, len(likes.Records))
	for _, r := range likes.Records {
		liked[r.String(community.FieldPostID)] = true
	}

	out := &FeedResult{Warnings: result.Warnings}
	for i, r := range result.Records {
		p := community.PostFromRecord(r)
		out.Posts = append(out.Posts, IndexedPost{Post: p, Index: i + 1, Liked: liked[p.ID]})
	}
	return out, nil
}

func (s *CommunityService) post(ctx context.Context, index int) (community.Post, error) {
	feed, err := s.Feed(ctx, DefaultFeedLimit)
	if err != nil {
		return community.Post{}, err
	}
	i, err := pick(index, len(feed.Posts))
	if err != nil {
		return community.Post{}, err
	}
	return feed.Posts[i].Post, nil
}

// ToggleLike likes the post at the 1-based feed index, or removes an existing
// like. The post's like count follows and never drops below zero.
func (s *CommunityService) ToggleLike(ctx context.Context, index int) (*community.Post, bool, error) {
	post, err := s.post(ctx, index)
	if err != nil {
		return nil, false, err
	}
	owner, _, err := s.owner(ctx)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.store.List(ctx, storage.EntityInteraction, storage.Query{
		Filter: map[string]any{
			community.FieldPostID:          post.ID,
			storage.FieldCreatedBy:         owner,
			community.FieldInteractionType: string(community.Like),
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to read likes: %w", err)
	}

	liked := len(existing.Records) == 0
	count := post.LikesCount
	if liked {
		like := community.Interaction{PostID: post.ID, Type: community.Like, CreatedBy: owner}
		if _, err := s.store.Create(ctx, storage.EntityInteraction, like.Record()); err != nil {
			return nil, false, fmt.Errorf("failed to like post: %w", err)
		}
		count++
	} else {
		for _, r := range existing.Records {
			if err := s.store.Delete(ctx, storage.EntityInteraction, r.ID()); err != nil {
				return nil, false, fmt.Errorf("failed to remove like: %w", err)
			}
		}
		count = max(0, count-1)
	}

	rec, err := s.store.Update(ctx, storage.EntityPost, post.ID, storage.Record{community.FieldLikesCount: count})
	if err != nil {
		return nil, false, fmt.Errorf("failed to update like count: %w", err)
	}
	updated := community.PostFromRecord(rec)
	s.logger.Info("post like toggled", zap.String("post", post.ID), zap.Bool("liked", liked))
	return &updated, liked, nil
}

// Comment adds a comment to the post at the 1-based feed index.
func (s *CommunityService) Comment(ctx context.Context, index int, text string) (*community.Interaction, error) {
	if strings.TrimSpace(text) == "" {
		return nil, community.ErrEmptyComment
	}
	profile, err := s.requireProfile(ctx)
	if err != nil {
		return nil, err
	}
	post, err := s.post(ctx, index)
	if err != nil {
		return nil, err
	}

	c := community.Interaction{
		PostID:            post.ID,
		Type:              community.Comment,
		CommentText:       text,
		AuthorDisplayName: profile.DisplayName,
		CreatedBy:         profile.CreatedBy,
	}
	rec, err := s.store.Create(ctx, storage.EntityInteraction, c.Record())
	if err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}
	if _, err := s.store.Update(ctx, storage.EntityPost, post.ID, storage.Record{community.FieldCommentsCount: post.CommentsCount + 1}); err != nil {
		return nil, fmt.Errorf("failed to update comment count: %w", err)
	}

	created := community.InteractionFromRecord(rec)
	s.logger.Info("comment added", zap.String("post", post.ID), zap.String("id", created.ID))
	return &created, nil
}

// Comments returns the comments on the post at index, oldest first.
func (s *CommunityService) Comments(ctx context.Context, index int) (*community.Post, []community.Interaction, error) {
	post, err := s.post(ctx, index)
	if err != nil {
		return nil, nil, err
	}
	result, err := s.store.List(ctx, storage.EntityInteraction, storage.Query{
		Filter: map[string]any{
			community.FieldPostID:          post.ID,
			community.FieldInteractionType: string(community.Comment),
		},
		OrderBy: storage.FieldCreatedDate,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read comments: %w", err)
	}

	comments := make([]community.Interaction, len(result.Records))
	for i, r := range result.Records {
		comments[i] = community.InteractionFromRecord(r)
	}
	return &post, comments, nil
}
