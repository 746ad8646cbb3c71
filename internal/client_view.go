package internal

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// View renders the room: header, connection status, playback bar, roster and
// chat side by side, then the input. All room data comes from machine state
// snapshots; the view never mutates anything.
func (model TUIModel) View() string {
	if model.quitting {
		return ""
	}

	state := model.machine.State()

	title := state.Session.RoomTitle
	if title == "" {
		title = "cowatch"
	}
	headerSegments := []string{title}
	if state.Session.AuthUsername != "" {
		headerSegments = append(headerSegments, fmt.Sprintf("You %s", state.Session.AuthUsername))
	}
	if state.Session.HostUsername != "" {
		headerSegments = append(headerSegments, fmt.Sprintf("Host %s", state.Session.HostUsername))
	}
	if state.Session.IsHost() {
		headerSegments = append(headerSegments, "hosting")
	}
	header := roomHeaderStyle.Render(strings.Join(headerSegments, dividerStyle))

	sections := []string{header, model.renderStatusLine(state)}

	if state.Session.Phase == PhaseJoined {
		sections = append(sections, model.renderPlayback())
	}

	chatEntries := state.Chat.Entries()
	if len(chatEntries) == 0 && len(model.cachedHistory) > 0 {
		chatEntries = model.cachedHistory
	}
	chatView := messageBoxStyle.Render(RenderChatLog(chatEntries, state.Session.AuthUserID))
	rosterView := RenderRoster(state.Roster.Ordered(), state.Roster.DisplayCount, state.Session.AuthUserID)
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, chatView, rosterView))

	if notices := model.renderNotices(); notices != "" {
		sections = append(sections, notices)
	}

	sections = append(sections, inputBoxStyle.Render(model.textInput.View()))
	sections = append(sections, hintStyle.Render(model.renderHints()))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (model TUIModel) renderStatusLine(state *RoomState) string {
	switch {
	case model.connectionError != nil && !model.isConnected:
		return errorStyle.Render(fmt.Sprintf("Disconnected: %v (retry in %s)", model.connectionError, model.transport.NextDelay()))
	case !model.isConnected:
		return connectingStyle.Render("Connecting…")
	case state.Session.Phase == PhaseJoined:
		return connectedStyle.Render("Connected")
	default:
		return connectingStyle.Render(fmt.Sprintf("Connected, %s…", state.Session.Phase))
	}
}

func (model TUIModel) renderPlayback() string {
	state := StatePaused
	if !model.player.IsPaused() {
		state = StatePlaying
	}
	if model.player.Source() == "" {
		state = StateStop
	}
	return RenderPlaybackBar(state, model.player.CurrentTimeSeconds(), model.player.ProgressHidden())
}

func (model TUIModel) renderNotices() string {
	if len(model.notices) == 0 {
		return ""
	}
	lines := make([]string, 0, len(model.notices))
	for _, notice := range model.notices {
		lines = append(lines, systemMessageStyle.Render(notice))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (model TUIModel) renderHints() string {
	hints := []string{"enter send", "ctrl+p play/pause"}
	if !model.player.ProgressHidden() {
		hints = append(hints, "ctrl+f/ctrl+b seek")
	}
	hints = append(hints, "esc quit")
	return strings.Join(hints, "  ·  ")
}

// RunClient launches the bubbletea program for one room visit.
func RunClient(cfg RunConfig, transport *Transport) error {
	program := tea.NewProgram(NewTUIModel(cfg, transport))
	_, err := program.Run()
	return err
}
