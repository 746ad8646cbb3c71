package internal

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"cowatch/internal/storage"
)

// Update reacts to key presses, transport notifications, and timers. All
// mutation of the room aggregate happens here, on bubbletea's single logical
// thread, by way of the machine.
func (model *TUIModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch typedMessage := message.(type) {
	case tea.KeyMsg:
		return model.updateKey(typedMessage)

	case connectedMsg:
		if typedMessage.generation != model.generation {
			return model, nil
		}
		model.isConnected = true
		model.connectionError = nil
		effects := model.machine.Connected()
		cmds := model.execute(effects)
		cmds = append(cmds, model.readOnceCmd(), model.graceCmd())
		return model, tea.Batch(cmds...)

	case frameMsg:
		if typedMessage.generation != model.generation {
			return model, nil
		}
		cmds := []tea.Cmd{model.readOnceCmd()}
		if typedMessage.payload != nil {
			cmds = append(cmds, model.dispatchFrame(typedMessage.payload)...)
		}
		return model, tea.Batch(cmds...)

	case readFailedMsg:
		if typedMessage.generation != model.generation {
			return model, nil
		}
		model.isConnected = false
		model.connectionError = typedMessage.err
		model.transport.MarkBroken()
		cmds := model.execute(model.machine.Disconnected(typedMessage.err))
		cmds = append(cmds, model.scheduleReconnect())
		return model, tea.Batch(cmds...)

	case connectFailedMsg:
		if typedMessage.generation != model.generation {
			return model, nil
		}
		model.isConnected = false
		model.connectionError = typedMessage.err
		return model, model.scheduleReconnect()

	case reconnectMsg:
		if typedMessage.generation != model.generation || model.isConnected || model.quitting {
			return model, nil
		}
		model.metrics.IncReconnect()
		return model, model.connectCmd()

	case graceMsg:
		// fallback join when the identify frame never arrived in time
		if typedMessage.generation != model.generation || model.quitting {
			return model, nil
		}
		return model, tea.Batch(model.execute(model.machine.GraceElapsed())...)

	case playbackTickMsg:
		if model.quitting {
			return model, nil
		}
		// the tick only forces a re-render so the position keeps moving
		return model, model.playbackTickCmd()

	case cachedHistoryMsg:
		model.cachedHistory = typedMessage.entries
		return model, nil
	}

	var command tea.Cmd
	model.textInput, command = model.textInput.Update(message)
	return model, command
}

func (model *TUIModel) updateKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		model.quitting = true
		model.generation++
		model.transport.Close()
		return model, tea.Quit

	case tea.KeyEnter:
		content := strings.TrimSpace(model.textInput.Value())
		if content == "" {
			return model, nil
		}
		if !model.limiter.Allow(model.roomID) {
			model.notice("slow down, too many messages")
			return model, nil
		}
		model.textInput.SetValue("")
		effects := model.machine.SubmitChat(content, time.Now())
		model.metrics.IncChatSent()
		return model, tea.Batch(model.execute(effects)...)

	case tea.KeyCtrlP:
		// play/pause toggle; the player callback feeds the bridge
		if model.player.IsPaused() {
			model.player.Play()
		} else {
			model.player.Pause()
		}
		return model, tea.Batch(model.drainBridged()...)

	case tea.KeyCtrlF, tea.KeyCtrlB:
		if model.player.ProgressHidden() {
			// guests cannot scrub the shared timeline
			return model, nil
		}
		step := float64(seekStepSeconds)
		if key.Type == tea.KeyCtrlB {
			step = -step
		}
		model.player.SetCurrentTimeSeconds(model.player.CurrentTimeSeconds() + step)
		return model, tea.Batch(model.drainBridged()...)
	}

	var command tea.Cmd
	model.textInput, command = model.textInput.Update(key)
	return model, command
}

// dispatchFrame decodes one inbound frame and runs it through the machine. A
// malformed frame is logged and dropped without touching the aggregate.
func (model *TUIModel) dispatchFrame(payload []byte) []tea.Cmd {
	msg, err := DecodeFrame(payload)
	if err != nil {
		model.metrics.IncDecodeError()
		logDropped("frame", err)
		return nil
	}
	model.metrics.IncFrameDecoded()
	if msg.Type == TypeEvent && !handledInbound(msg.Event) {
		model.metrics.IncDroppedFrame()
	}
	return model.execute(model.machine.Apply(msg))
}

// execute runs machine effects in order. Player commands execute inside the
// remote-apply guard so the bridge does not echo them back to the server;
// anything the guard let through earlier in this pass is drained afterwards.
func (model *TUIModel) execute(effects []Effect) []tea.Cmd {
	var cmds []tea.Cmd
	for _, effect := range effects {
		switch e := effect.(type) {
		case SendFrame:
			if e.Msg.Event == EventHostStateSend || e.Msg.Event == EventUserStateSend {
				model.metrics.IncStateEventSent()
			}
			cmds = append(cmds, model.sendCmd(e.Msg))

		case PlayerSetSource:
			model.withRemoteGuard(func() { model.player.SetSource(e.Src) })
			cmds = append(cmds, model.recordVisitCmd())

		case PlayerPlay:
			model.withRemoteGuard(func() { model.player.Play() })

		case PlayerPause:
			model.withRemoteGuard(func() { model.player.Pause() })

		case PlayerSeek:
			model.withRemoteGuard(func() { model.player.SetCurrentTimeSeconds(e.Seconds) })

		case PlayerHideProgress:
			model.player.HideProgressBar()

		case PersistChat:
			cmds = append(cmds, model.persistChatCmd(e.Entry))

		case Notice:
			model.notice(e.Text)
		}
	}
	cmds = append(cmds, model.drainBridged()...)
	return cmds
}

func (model *TUIModel) withRemoteGuard(fn func()) {
	model.machine.BeginRemoteApply()
	fn()
	model.machine.EndRemoteApply()
}

// drainBridged executes effects the player callbacks queued during this
// Update pass.
func (model *TUIModel) drainBridged() []tea.Cmd {
	if len(model.bridged) == 0 {
		return nil
	}
	queued := model.bridged
	model.bridged = nil
	return model.execute(queued)
}

func (model *TUIModel) notice(text string) {
	model.notices = append(model.notices, text)
	if len(model.notices) > 3 {
		model.notices = model.notices[len(model.notices)-3:]
	}
}

// connectCmd dials the websocket. The generation bump invalidates timers
// still in flight from the previous connection.
func (model *TUIModel) connectCmd() tea.Cmd {
	model.generation++
	generation := model.generation
	return func() tea.Msg {
		if err := model.transport.Dial(); err != nil {
			return connectFailedMsg{err: err, generation: generation}
		}
		return connectedMsg{generation: generation}
	}
}

// readOnceCmd reads a single frame and reschedules itself via frameMsg.
func (model *TUIModel) readOnceCmd() tea.Cmd {
	generation := model.generation
	return func() tea.Msg {
		payload, err := model.transport.ReadFrame()
		if err != nil {
			return readFailedMsg{err: err, generation: generation}
		}
		return frameMsg{payload: payload, generation: generation}
	}
}

func (model *TUIModel) sendCmd(msg WSMessage) tea.Cmd {
	frame := EncodeFrame(msg)
	return func() tea.Msg {
		if err := model.transport.SendFrame(frame); err != nil {
			logDropped(msg.Event, err)
		}
		return nil
	}
}

func (model *TUIModel) scheduleReconnect() tea.Cmd {
	generation := model.generation
	return tea.Tick(model.transport.NextDelay(), func(time.Time) tea.Msg {
		return reconnectMsg{generation: generation}
	})
}

func (model *TUIModel) graceCmd() tea.Cmd {
	generation := model.generation
	return tea.Tick(joinGraceDelay, func(time.Time) tea.Msg {
		return graceMsg{generation: generation}
	})
}

func (model *TUIModel) playbackTickCmd() tea.Cmd {
	return tea.Tick(playbackTickRate, func(time.Time) tea.Msg {
		return playbackTickMsg{}
	})
}

// persistChatCmd writes a confirmed chat line to the transcript cache.
func (model *TUIModel) persistChatCmd(entry ChatEntry) tea.Cmd {
	if model.store == nil || entry.Pending {
		return nil
	}
	roomID := model.roomID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := model.store.SaveMessage(ctx, storage.Message{
			RoomID:         roomID,
			SenderID:       entry.SenderID,
			SenderUsername: entry.SenderUsername,
			IsHost:         entry.IsHost,
			Content:        entry.Content,
			CreatedAt:      entry.CreatedAt,
		})
		if err != nil {
			logDropped("persist", err)
		}
		return nil
	}
}

// recordVisitCmd stamps the room in the transcript cache once the join
// answer named it.
func (model *TUIModel) recordVisitCmd() tea.Cmd {
	if model.store == nil {
		return nil
	}
	roomID := model.roomID
	title := model.machine.State().Session.RoomTitle
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := model.store.RecordVisit(ctx, roomID, title); err != nil {
			logDropped("visit", err)
		}
		return nil
	}
}

// loadCachedHistoryCmd prefills the chat view from the local cache while the
// server snapshot is still on its way.
func (model *TUIModel) loadCachedHistoryCmd() tea.Cmd {
	if model.store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		messages, err := model.store.RecentMessages(ctx, model.roomID, 50)
		if err != nil {
			logDropped("history", err)
			return nil
		}
		entries := make([]ChatEntry, 0, len(messages))
		for _, m := range messages {
			entries = append(entries, ChatEntry{
				SenderID:       m.SenderID,
				SenderUsername: m.SenderUsername,
				IsHost:         m.IsHost,
				Content:        m.Content,
				CreatedAt:      m.CreatedAt,
			})
		}
		return cachedHistoryMsg{entries: entries}
	}
}
