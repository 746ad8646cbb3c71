package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// pre styled colors, all lipgloss
var (
	appTitleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213")).Padding(0, 1)
	subtitleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("110")).MarginTop(1)
	roomHeaderStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213")).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("109")).MarginTop(1)
	connectedStyle     = statusStyle.Copy().Foreground(lipgloss.Color("42")).Bold(true)
	connectingStyle    = statusStyle.Copy().Foreground(lipgloss.Color("178")).Italic(true)
	errorStyle         = statusStyle.Copy().Foreground(lipgloss.Color("196")).Bold(true)
	messageBodyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("253"))
	messageBoxStyle    = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("60")).Padding(1, 2).MarginTop(1)
	rosterBoxStyle     = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1).MarginTop(1)
	inputBoxStyle      = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1).MarginTop(1)
	timestampStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	usernameStyle      = lipgloss.NewStyle().Bold(true)
	selfUserStyle      = usernameStyle.Copy().Foreground(lipgloss.Color("213"))
	hostBadgeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	pendingStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	systemMessageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true)
	playbackBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	playbackFillStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	hintStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).MarginTop(1)
	dividerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("237")).Render(" ┃ ")
)

// sanitizeText strips control characters from user-supplied strings so chat
// content cannot smuggle escape sequences into the terminal.
func sanitizeText(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

// RenderParticipant renders one roster line.
func RenderParticipant(p Participant, selfID string) string {
	name := sanitizeText(p.Username)
	style := usernameStyle
	if p.UserID == selfID {
		style = selfUserStyle
	}
	line := style.Render(name)
	if p.IsHost {
		line = hostBadgeStyle.Render("♛ ") + line
	} else {
		line = "  " + line
	}
	return line
}

// RenderRoster renders the participant list, host first, guests in insertion
// order. The count shown is the server-supplied total, not len(participants).
func RenderRoster(participants []Participant, displayCount int, selfID string) string {
	header := subtitleStyle.Render(fmt.Sprintf("Participants (%d)", displayCount))
	if len(participants) == 0 {
		return rosterBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, systemMessageStyle.Render("Nobody here yet")))
	}
	lines := make([]string, 0, len(participants)+1)
	lines = append(lines, header)
	for _, p := range participants {
		lines = append(lines, RenderParticipant(p, selfID))
	}
	return rosterBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// RenderChatEntry renders a single message line.
func RenderChatEntry(entry ChatEntry, selfID string) string {
	var when string
	if entry.CreatedAt.IsZero() {
		when = "--:--:--"
	} else {
		when = entry.CreatedAt.Local().Format("15:04:05")
	}
	timestamp := timestampStyle.Render(fmt.Sprintf("[%s]", when))

	nameStyle := usernameStyle
	if entry.SenderID == selfID {
		nameStyle = selfUserStyle
	}
	name := nameStyle.Render(sanitizeText(entry.SenderUsername))
	if entry.IsHost {
		name = hostBadgeStyle.Render("♛") + name
	}

	body := messageBodyStyle.Render(sanitizeText(entry.Content))
	line := lipgloss.JoinHorizontal(lipgloss.Left, timestamp, " ", name, ": ", body)
	if entry.Pending {
		line = lipgloss.JoinHorizontal(lipgloss.Left, line, " ", pendingStyle.Render("…"))
	}
	return line
}

// RenderChatLog renders the whole log, newest first, matching the stored
// order. Safe to call repeatedly with the same input.
func RenderChatLog(entries []ChatEntry, selfID string) string {
	if len(entries) == 0 {
		return systemMessageStyle.Render("No messages yet. Say hi.")
	}
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, RenderChatEntry(entry, selfID))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// RenderPlaybackBar draws the playback status line. Guests get no scrub bar,
// only the state and position.
func RenderPlaybackBar(state string, positionSeconds float64, progressHidden bool) string {
	position := formatPosition(positionSeconds)
	label := playbackBarStyle.Render(fmt.Sprintf("%s %s", playbackGlyph(state), position))
	if progressHidden {
		return label
	}
	const width = 24
	// without a known duration the bar loops every ten minutes
	filled := int(positionSeconds/600*width) % (width + 1)
	if filled < 0 {
		filled = 0
	}
	bar := playbackFillStyle.Render(strings.Repeat("━", filled)) + playbackBarStyle.Render(strings.Repeat("─", width-filled))
	return lipgloss.JoinHorizontal(lipgloss.Left, label, " ", bar)
}

func playbackGlyph(state string) string {
	switch state {
	case StatePlaying:
		return "▶"
	case StatePaused:
		return "⏸"
	case StateEnd:
		return "⏹"
	default:
		return "·"
	}
}

func formatPosition(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	d := time.Duration(seconds * float64(time.Second))
	total := int(d.Seconds())
	if total >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
