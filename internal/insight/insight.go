// Package insight delegates journal reflections to a conversational agent.
//
// A Conversation accepts user messages asynchronously and publishes the whole
// message list to subscribers after every change. Subscribers only ever see
// the most recent list; a slow reader skips intermediate states.
package insight

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xolan/haven/internal/journal"
)

// AgentName identifies the journal analyzer in logs and conversation names.
const AgentName = "journal_analyzer"

var ErrAgentUnavailable = errors.New("insights are unavailable without an API key")

// FallbackMessage replaces the agent's reply when it cannot be reached.
const FallbackMessage = "I'm having trouble connecting right now. Please try again in a moment. " +
	"If you're in crisis, please reach out to 988 Suicide & Crisis Lifeline immediately."

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Resource is a crisis contact shown next to replies that mention a crisis.
type Resource struct {
	Name    string
	Contact string
}

var CrisisResources = []Resource{
	{Name: "988 Suicide & Crisis Lifeline", Contact: "Call or text 988"},
	{Name: "Crisis Text Line", Contact: "Text HOME to 741741"},
	{Name: "NAMI Helpline", Contact: "1-800-950-NAMI (6264)"},
}

// NeedsCrisisSupport reports whether text mentions 988 or a crisis.
func NeedsCrisisSupport(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "988") || strings.Contains(lower, "crisis")
}

// ConversationName is the display name of an analysis of e.
func ConversationName(e journal.Entry) string {
	return "Analysis: " + e.Title
}

// JournalPrompt builds the analysis request for a journal entry. The entry
// date is rendered in loc.
func JournalPrompt(e journal.Entry, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	moodText := "Not specified"
	if e.Mood != "" {
		moodText = e.Mood.Label()
	}
	date := "Unknown"
	if !e.CreatedDate.IsZero() {
		date = e.CreatedDate.In(loc).Format("January 2, 2006")
	}

	var b strings.Builder
	b.WriteString("Please analyze this journal entry and provide supportive insights, coping suggestions, ")
	b.WriteString("and let me know if professional help might be beneficial:\n\n")
	fmt.Fprintf(&b, "Title: %s\n", e.Title)
	fmt.Fprintf(&b, "Content: %s\n", e.Content)
	fmt.Fprintf(&b, "Mood: %s\n", moodText)
	fmt.Fprintf(&b, "Date: %s\n", date)
	if len(e.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(e.Tags, ", "))
	}
	b.WriteString("\nPlease provide:\n")
	b.WriteString("1. Empathetic validation of my feelings\n")
	b.WriteString("2. Key observations or patterns you notice\n")
	b.WriteString("3. Practical coping strategies or self-care suggestions\n")
	b.WriteString("4. Whether you recommend professional support and why\n")
	b.WriteString("5. Any relevant resources or crisis contacts if needed")
	return b.String()
}
