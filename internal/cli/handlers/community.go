package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xolan/haven/internal/cli"
	"github.com/xolan/haven/internal/community"
	"github.com/xolan/haven/internal/service"
)

const postTimeLayout = "Jan 2 15:04"

// ShowProfile prints the current user's community profile
func ShowProfile(ctx context.Context, deps *cli.Deps) {
	p, err := deps.Services.Community.MyProfile(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		deps.Exit(1)
		return
	}
	if p == nil {
		_, _ = fmt.Fprintln(deps.Stdout, "No community profile yet")
		_, _ = fmt.Fprintln(deps.Stdout, "Hint: Create one with 'haven profile set --name <display name>'")
		return
	}

	_, _ = fmt.Fprintln(deps.Stdout, "Community profile:")
	_, _ = fmt.Fprintln(deps.Stdout, cli.Separator)
	_, _ = fmt.Fprintf(deps.Stdout, "Display name: %s\n", p.DisplayName)
	if p.Bio != "" {
		_, _ = fmt.Fprintf(deps.Stdout, "Bio:          %s\n", p.Bio)
	}
	if len(p.Interests) > 0 {
		_, _ = fmt.Fprintf(deps.Stdout, "Interests:    %s\n", strings.Join(p.Interests, ", "))
	}
	if len(p.SupportPreferences) > 0 {
		_, _ = fmt.Fprintf(deps.Stdout, "Support:      %s\n", strings.Join(p.SupportPreferences, ", "))
	}
	visibility := "hidden"
	if p.Visible {
		visibility = "visible"
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Profile:      %s\n", visibility)
}

// SaveProfile creates or replaces the current user's community profile
func SaveProfile(ctx context.Context, deps *cli.Deps, p community.Profile) {
	saved, err := deps.Services.Community.SaveProfile(ctx, p)
	if err != nil {
		if errors.Is(err, community.ErrMissingDisplayName) {
			_, _ = fmt.Fprintln(deps.Stderr, "Error: Display name cannot be empty")
			_, _ = fmt.Fprintln(deps.Stderr, "Usage: haven profile set --name <display name> [--bio text] [--interest name]")
		} else {
			_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		}
		deps.Exit(1)
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Profile saved: %s\n", saved.DisplayName)
}

// CreatePost shares a post with the community
func CreatePost(ctx context.Context, deps *cli.Deps, content, moodStr string, tags []string) {
	m, err := community.ParsePostMood(moodStr)
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		_, _ = fmt.Fprintf(deps.Stderr, "Hint: Use one of %s\n", postMoodNames())
		deps.Exit(1)
		return
	}

	post, err := deps.Services.Community.CreatePost(ctx, content, m, tags)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileRequired):
			_, _ = fmt.Fprintln(deps.Stderr, "Error: You need a community profile to post")
			_, _ = fmt.Fprintln(deps.Stderr, "Hint: Create one with 'haven profile set --name <display name>'")
		case errors.Is(err, community.ErrEmptyPost):
			_, _ = fmt.Fprintln(deps.Stderr, "Error: Post content cannot be empty")
		default:
			_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		}
		deps.Exit(1)
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Posted as %s: %s\n", post.AuthorDisplayName, cli.Truncate(post.Content, 60))
}

func postMoodNames() string {
	names := make([]string, len(community.PostMoods))
	for i, m := range community.PostMoods {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

// ShowFeed prints the newest community posts
func ShowFeed(ctx context.Context, deps *cli.Deps, limit int) {
	feed, err := deps.Services.Community.Feed(ctx, limit)
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		deps.Exit(1)
		return
	}
	printWarnings(deps, feed.Warnings)

	if len(feed.Posts) == 0 {
		_, _ = fmt.Fprintln(deps.Stdout, "No posts yet")
		_, _ = fmt.Fprintln(deps.Stdout, "Hint: Share something with 'haven post <text>'")
		return
	}

	_, _ = fmt.Fprintln(deps.Stdout, "Community feed:")
	_, _ = fmt.Fprintln(deps.Stdout, cli.Separator)
	width := indexWidth(len(feed.Posts))
	indent := strings.Repeat(" ", width+3)
	loc := deps.Config.Location()
	for _, ip := range feed.Posts {
		p := ip.Post
		header := p.AuthorDisplayName
		if !p.CreatedDate.IsZero() {
			header += "  " + p.CreatedDate.In(loc).Format(postTimeLayout)
		}
		if m := cli.FormatPostMood(p.Mood); m != "" {
			header += "  " + m
		}
		_, _ = fmt.Fprintf(deps.Stdout, "[%*d] %s\n", width, ip.Index, header)
		_, _ = fmt.Fprintf(deps.Stdout, "%s%s\n", indent, p.Content)
		if tags := cli.FormatTags(p.Tags); tags != "" {
			_, _ = fmt.Fprintf(deps.Stdout, "%s%s\n", indent, tags)
		}
		heart := "♡"
		if ip.Liked {
			heart = "♥"
		}
		_, _ = fmt.Fprintf(deps.Stdout, "%s%s %d  💬 %d\n", indent, heart, p.LikesCount, p.CommentsCount)
	}
	_, _ = fmt.Fprintln(deps.Stdout, cli.Separator)
}

// ToggleLike likes or unlikes a post by its feed index
func ToggleLike(ctx context.Context, deps *cli.Deps, indexStr string) {
	index, ok := parseIndex(deps, indexStr, "feed")
	if !ok {
		return
	}
	post, liked, err := deps.Services.Community.ToggleLike(ctx, index)
	if err != nil {
		printIndexError(deps, err, "feed")
		return
	}
	verb := "Unliked"
	if liked {
		verb = "Liked"
	}
	_, _ = fmt.Fprintf(deps.Stdout, "%s post by %s (%d %s)\n", verb, post.AuthorDisplayName,
		post.LikesCount, cli.Pluralize("like", post.LikesCount))
}

// AddComment comments on a post by its feed index
func AddComment(ctx context.Context, deps *cli.Deps, indexStr, text string) {
	index, ok := parseIndex(deps, indexStr, "feed")
	if !ok {
		return
	}
	_, err := deps.Services.Community.Comment(ctx, index, text)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileRequired):
			_, _ = fmt.Fprintln(deps.Stderr, "Error: You need a community profile to comment")
			_, _ = fmt.Fprintln(deps.Stderr, "Hint: Create one with 'haven profile set --name <display name>'")
			deps.Exit(1)
		case errors.Is(err, community.ErrEmptyComment):
			_, _ = fmt.Fprintln(deps.Stderr, "Error: Comment cannot be empty")
			deps.Exit(1)
		default:
			printIndexError(deps, err, "feed")
		}
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Comment added to post %d\n", index)
}

// ShowComments prints a post and its comments, oldest first
func ShowComments(ctx context.Context, deps *cli.Deps, indexStr string) {
	index, ok := parseIndex(deps, indexStr, "feed")
	if !ok {
		return
	}
	post, comments, err := deps.Services.Community.Comments(ctx, index)
	if err != nil {
		printIndexError(deps, err, "feed")
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "%s: %s\n", post.AuthorDisplayName, post.Content)
	_, _ = fmt.Fprintln(deps.Stdout, cli.Separator)
	if len(comments) == 0 {
		_, _ = fmt.Fprintln(deps.Stdout, "No comments yet")
		return
	}
	loc := deps.Config.Location()
	for _, c := range comments {
		_, _ = fmt.Fprintf(deps.Stdout, "%s (%s): %s\n", c.AuthorDisplayName, c.CreatedDate.In(loc).Format(postTimeLayout), c.CommentText)
	}
}
