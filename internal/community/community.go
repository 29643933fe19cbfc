// Package community holds the peer-support feed types: profiles, posts and
// the likes and comments left on them.
package community

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xolan/haven/internal/mood"
	"github.com/xolan/haven/internal/storage"
)

// Record field names.
const (
	FieldDisplayName        = "display_name"
	FieldBio                = "bio"
	FieldInterests          = "interests"
	FieldSupportPreferences = "support_preferences"
	FieldVisible            = "is_visible"

	FieldContent           = "content"
	FieldMood              = "mood"
	FieldTags              = "tags"
	FieldAuthorDisplayName = "author_display_name"
	FieldLikesCount        = "likes_count"
	FieldCommentsCount     = "comments_count"

	FieldPostID          = "post_id"
	FieldInteractionType = "interaction_type"
	FieldCommentText     = "comment_text"
)

var (
	ErrMissingDisplayName = errors.New("display name is required")
	ErrEmptyPost          = errors.New("post content is required")
	ErrEmptyComment       = errors.New("comment text is required")
	ErrUnknownPostMood    = errors.New("unknown post mood")
)

// PostMood is the optional feeling attached to a post.
type PostMood string

const (
	Celebrating    PostMood = "celebrating"
	Struggling     PostMood = "struggling"
	Reflecting     PostMood = "reflecting"
	Grateful       PostMood = "grateful"
	SeekingSupport PostMood = "seeking_support"
)

var postMoods = map[PostMood][2]string{
	Celebrating:    {"🎉", "Celebrating"},
	Struggling:     {"💙", "Struggling"},
	Reflecting:     {"💭", "Reflecting"},
	Grateful:       {"🙏", "Grateful"},
	SeekingSupport: {"🤝", "Seeking Support"},
}

// PostMoods lists the post moods in display order.
var PostMoods = []PostMood{Celebrating, Struggling, Reflecting, Grateful, SeekingSupport}

func (m PostMood) Valid() bool {
	_, ok := postMoods[m]
	return ok
}

func (m PostMood) Emoji() string { return postMoods[m][0] }

func (m PostMood) Label() string {
	if v, ok := postMoods[m]; ok {
		return v[1]
	}
	return string(m)
}

// ParsePostMood accepts a value or label, e.g. "seeking_support" or "Seeking Support".
// An empty string means no mood.
func ParsePostMood(s string) (PostMood, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if key == "" {
		return "", nil
	}
	if m := PostMood(key); m.Valid() {
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPostMood, s)
}

// Option lists offered by the profile editor and post composer.
var (
	InterestOptions = []string{
		"Anxiety", "Depression", "Stress Management", "Self-Care", "Meditation",
		"Exercise", "Sleep", "Relationships", "Work-Life Balance", "Grief",
		"Trauma", "Personal Growth", "Mindfulness", "Creativity", "Spirituality",
	}
	SupportOptions = []string{
		"Share experiences", "Get advice", "Be an accountability partner",
		"Just listen", "Find encouragement", "Learn coping strategies",
	}
	PostTagOptions = []string{"Anxiety", "Depression", "Progress", "Advice Needed", "Victory", "Gratitude", "Question"}
)

// Profile is a user's public community profile.
type Profile struct {
	ID                 string
	DisplayName        string
	Bio                string
	Interests          []string
	SupportPreferences []string
	Visible            bool
	CreatedBy          string
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.DisplayName) == "" {
		return ErrMissingDisplayName
	}
	return nil
}

func ProfileFromRecord(r storage.Record) Profile {
	return Profile{
		ID:                 r.ID(),
		DisplayName:        r.String(FieldDisplayName),
		Bio:                r.String(FieldBio),
		Interests:          r.Strings(FieldInterests),
		SupportPreferences: r.Strings(FieldSupportPreferences),
		Visible:            r.Bool(FieldVisible),
		CreatedBy:          r.String(storage.FieldCreatedBy),
	}
}

func (p Profile) Record() storage.Record {
	r := storage.Record{
		FieldDisplayName:       strings.TrimSpace(p.DisplayName),
		FieldVisible:           p.Visible,
		storage.FieldCreatedBy: p.CreatedBy,
	}
	if p.Bio != "" {
		r[FieldBio] = p.Bio
	}
	if len(p.Interests) > 0 {
		r[FieldInterests] = mood.NormalizeTags(p.Interests, InterestOptions)
	}
	if len(p.SupportPreferences) > 0 {
		r[FieldSupportPreferences] = mood.NormalizeTags(p.SupportPreferences, SupportOptions)
	}
	return r
}

// Post is a community feed post.
type Post struct {
	ID                string
	Content           string
	Mood              PostMood
	Tags              []string
	AuthorDisplayName string
	LikesCount        int
	CommentsCount     int
	CreatedDate       time.Time
	CreatedBy         string
}

func (p Post) Validate() error {
	if strings.TrimSpace(p.Content) == "" {
		return ErrEmptyPost
	}
	if p.Mood != "" && !p.Mood.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPostMood, p.Mood)
	}
	return nil
}

func PostFromRecord(r storage.Record) Post {
	p := Post{
		ID:                r.ID(),
		Content:           r.String(FieldContent),
		Tags:              r.Strings(FieldTags),
		AuthorDisplayName: r.String(FieldAuthorDisplayName),
		CreatedBy:         r.String(storage.FieldCreatedBy),
	}
	if m := PostMood(r.String(FieldMood)); m.Valid() {
		p.Mood = m
	}
	p.LikesCount, _ = r.Int(FieldLikesCount)
	p.CommentsCount, _ = r.Int(FieldCommentsCount)
	p.CreatedDate = parseCreated(r)
	return p
}

func (p Post) Record() storage.Record {
	r := storage.Record{
		FieldContent:           strings.TrimSpace(p.Content),
		FieldAuthorDisplayName: p.AuthorDisplayName,
		FieldLikesCount:        p.LikesCount,
		FieldCommentsCount:     p.CommentsCount,
		storage.FieldCreatedBy: p.CreatedBy,
	}
	if p.Mood != "" {
		r[FieldMood] = string(p.Mood)
	}
	if tags := mood.NormalizeTags(p.Tags, PostTagOptions); len(tags) > 0 {
		r[FieldTags] = tags
	}
	return r
}

// InteractionType is either a like or a comment.
type InteractionType string

const (
	Like    InteractionType = "like"
	Comment InteractionType = "comment"
)

// Interaction is a like or comment on a post.
type Interaction struct {
	ID                string
	PostID            string
	Type              InteractionType
	CommentText       string
	AuthorDisplayName string
	CreatedDate       time.Time
	CreatedBy         string
}

func InteractionFromRecord(r storage.Record) Interaction {
	return Interaction{
		ID:                r.ID(),
		PostID:            r.String(FieldPostID),
		Type:              InteractionType(r.String(FieldInteractionType)),
		CommentText:       r.String(FieldCommentText),
		AuthorDisplayName: r.String(FieldAuthorDisplayName),
		CreatedDate:       parseCreated(r),
		CreatedBy:         r.String(storage.FieldCreatedBy),
	}
}

func (i Interaction) Record() storage.Record {
	r := storage.Record{
		FieldPostID:            i.PostID,
		FieldInteractionType:   string(i.Type),
		storage.FieldCreatedBy: i.CreatedBy,
	}
	if i.Type == Comment {
		r[FieldCommentText] = strings.TrimSpace(i.CommentText)
		r[FieldAuthorDisplayName] = i.AuthorDisplayName
	}
	return r
}

func parseCreated(r storage.Record) time.Time {
	t, err := time.Parse(time.RFC3339, r.String(storage.FieldCreatedDate))
	if err != nil {
		return time.Time{}
	}
	return t
}
