package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xolan/haven/internal/cli"
	"github.com/xolan/haven/internal/community"
	"github.com/xolan/haven/internal/service"
	"github.com/xolan/haven/internal/storage"
	"github.com/xolan/haven/internal/tui/ui"
)

// CommunityModel is the model for the community feed
type CommunityModel struct {
	ctx      context.Context
	services *service.Services
	styles   ui.Styles
	keys     ui.KeyMap

	width   int
	height  int
	cursor  int
	posts   []service.IndexedPost
	loading bool
	err     error
}

// NewCommunityModel creates a new community view model
func NewCommunityModel(ctx context.Context, services *service.Services, styles ui.Styles, keys ui.KeyMap) CommunityModel {
	return CommunityModel{
		ctx:      ctx,
		services: services,
		styles:   styles,
		keys:     keys,
		loading:  true,
	}
}

type feedLoadedMsg struct {
	result *service.FeedResult
	err    error
}

type likeToggledMsg struct {
	post  *community.Post
	liked bool
	err   error
}

// Init implements tea.Model
func (m CommunityModel) Init() tea.Cmd {
	return m.load()
}

// Update implements tea.Model
func (m CommunityModel) Update(msg tea.Msg) (CommunityModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.posts)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Refresh):
			return m, m.load()
		case key.Matches(msg, m.keys.Like):
			if m.cursor < len(m.posts) {
				return m, m.toggleLike(m.posts[m.cursor].Index)
			}
		}
		return m, nil

	case feedLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.posts = msg.result.Posts
			m.cursor = clampCursor(m.cursor, len(m.posts))
		}
		return m, nil

	case likeToggledMsg:
		if msg.err != nil {
			return m, status(fmt.Sprintf("Like failed: %v", msg.err), true)
		}
		text := "Like removed"
		if msg.liked {
			text = "Liked"
		}
		return m, tea.Batch(status(text, false), m.load())

	case ui.ReloadMsg:
		if reloads(msg, storage.EntityPost, storage.EntityInteraction) {
			return m, m.load()
		}

	case ui.ThemeChangedMsg:
		m.styles = msg.Styles
	}
	return m, nil
}

// SetSize sets the view dimensions
func (m *CommunityModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m CommunityModel) load() tea.Cmd {
	ctx, services := m.ctx, m.services
	return func() tea.Msg {
		result, err := services.Community.Feed(ctx, service.DefaultFeedLimit)
		return feedLoadedMsg{result: result, err: err}
	}
}

func (m CommunityModel) toggleLike(index int) tea.Cmd {
	ctx, services := m.ctx, m.services
	return func() tea.Msg {
		post, liked, err := services.Community.ToggleLike(ctx, index)
		return likeToggledMsg{post: post, liked: liked, err: err}
	}
}

// View implements tea.Model
func (m CommunityModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.ViewTitle.Render("Community"))
	b.WriteString("\n")

	if m.loading {
		b.WriteString("Loading...")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(errorLine(m.styles, m.err))
		return b.String()
	}
	if len(m.posts) == 0 {
		b.WriteString(m.styles.StatLabel.Render("No posts yet. Share one with 'haven post'."))
		return b.String()
	}

	loc := m.services.Config.Get().Location()
	width := max(m.width, 40)
	for i, item := range m.posts {
		p := item.Post
		prefix := "  "
		style := m.styles.ItemNormal
		if i == m.cursor {
			prefix = "> "
			style = m.styles.ItemSelected
		}

		b.WriteString(m.styles.ItemIndex.Render(fmt.Sprintf("%s%3d. ", prefix, item.Index)))
		b.WriteString(style.Render(p.AuthorDisplayName))
		if pm := cli.FormatPostMood(p.Mood); pm != "" {
			b.WriteString("  " + pm)
		}
		if !p.CreatedDate.IsZero() {
			b.WriteString(m.styles.ItemMeta.Render("  " + p.CreatedDate.In(loc).Format("Jan 2 15:04")))
		}
		b.WriteString("\n")

		b.WriteString("       ")
		b.WriteString(cli.Truncate(strings.Join(strings.Fields(p.Content), " "), width-8))
		b.WriteString("\n")

		b.WriteString("       ")
		heart := "♡"
		heartStyle := m.styles.ItemMeta
		if item.Liked {
			heart = "♥"
			heartStyle = m.styles.Liked
		}
		b.WriteString(heartStyle.Render(fmt.Sprintf("%s %d", heart, p.LikesCount)))
		b.WriteString(m.styles.ItemMeta.Render(fmt.Sprintf("  💬 %d", p.CommentsCount)))
		if tags := cli.FormatTags(p.Tags); tags != "" {
			b.WriteString("  " + m.styles.Tag.Render(tags))
		}
		b.WriteString("\n")
	}
	return b.String()
}
