// Package channel holds the inbound chat adapters that turn network events
// into turn envelopes for the decision core.
package channel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
)

// MatrixConfig holds the guest-facing Matrix listener configuration.
type MatrixConfig struct {
	Homeserver  string
	UserID      string
	AccessToken string
	// GuestRooms optionally restricts which rooms are treated as guest
	// conversations. Empty means every room the account is in.
	GuestRooms []string
	// DB is an optional SQLite connection used to persist the sync token
	// across restarts. When nil, an in-memory store is used and room history
	// is replayed on every restart.
	DB *sql.DB
}

// Message is one inbound guest message, already filtered to plain text from
// someone other than the bot itself.
type Message struct {
	RoomID  string
	Sender  string
	Content string
	At      time.Time
}

// MessageHandler processes one inbound guest message.
type MessageHandler func(ctx context.Context, msg Message)

// Matrix is the guest-facing Matrix client: it syncs conversations in, and
// pushes replies and operator notices out.
type Matrix struct {
	client     *mautrix.Client
	config     MatrixConfig
	stopCh     chan struct{}
	msgHandler MessageHandler
}

// NewMatrix creates the listener.
func NewMatrix(config MatrixConfig) (*Matrix, error) {
	client, err := mautrix.NewClient(config.Homeserver, id.UserID(config.UserID), config.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("create matrix client: %w", err)
	}

	m := &Matrix{
		client: client,
		config: config,
		stopCh: make(chan struct{}),
	}

	// A persistent sync store lets the bot resume from the last known
	// position after a restart instead of replaying full room history.
	if config.DB != nil {
		client.Store = newDBSyncStore(config.DB)
		slog.Info("matrix sync store: using persistent SQLite store")
	} else {
		slog.Warn("matrix sync store: no DB configured, history will replay on restart")
	}

	return m, nil
}

// Start joins the configured guest rooms and begins syncing in the
// background, reconnecting with exponential backoff on transient failures.
func (m *Matrix) Start(ctx context.Context, handler MessageHandler) error {
	m.msgHandler = handler

	syncer := m.client.Syncer.(*mautrix.DefaultSyncer)
	syncer.OnEventType(event.EventMessage, m.handleEvent)

	for _, roomID := range m.config.GuestRooms {
		if err := m.joinRoom(id.RoomID(roomID)); err != nil {
			return fmt.Errorf("join guest room %s: %w", roomID, err)
		}
	}

	go func() {
		const (
			backoffMin = 2 * time.Second
			backoffMax = 5 * time.Minute
		)
		backoff := backoffMin
		for {
			if err := m.client.Sync(); err != nil {
				select {
				case <-m.stopCh:
					return
				default:
				}
				slog.Error("matrix sync stopped; reconnecting", "err", err, "backoff", backoff)
				select {
				case <-m.stopCh:
					return
				case <-time.After(backoff):
				}
				backoff *= 2
				if backoff > backoffMax {
					backoff = backoffMax
				}
				continue
			}
			return
		}
	}()

	return nil
}

// Stop halts the sync loop.
func (m *Matrix) Stop() {
	close(m.stopCh)
	m.client.StopSync()
}

// SendText sends a plain text message to a room.
func (m *Matrix) SendText(roomID, message string) error {
	_, err := m.client.SendText(context.Background(), id.RoomID(roomID), message)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// SendNotice sends a notice, the less intrusive message type used for
// operator room updates.
func (m *Matrix) SendNotice(roomID, message string) error {
	content := event.MessageEventContent{
		MsgType: event.MsgNotice,
		Body:    message,
	}
	_, err := m.client.SendMessageEvent(context.Background(), id.RoomID(roomID), event.EventMessage, &content)
	if err != nil {
		return fmt.Errorf("send notice: %w", err)
	}
	return nil
}

func (m *Matrix) handleEvent(ctx context.Context, evt *event.Event) {
	if evt.Sender == id.UserID(m.config.UserID) {
		return
	}
	msgContent := evt.Content.AsMessage()
	if msgContent == nil || msgContent.MsgType != event.MsgText {
		return
	}
	if !m.isGuestRoom(evt.RoomID.String()) {
		return
	}
	if m.msgHandler == nil {
		return
	}
	m.msgHandler(ctx, Message{
		RoomID:  evt.RoomID.String(),
		Sender:  evt.Sender.String(),
		Content: msgContent.Body,
		At:      time.UnixMilli(evt.Timestamp),
	})
}

func (m *Matrix) isGuestRoom(roomID string) bool {
	if len(m.config.GuestRooms) == 0 {
		return true
	}
	for _, r := range m.config.GuestRooms {
		if r == roomID {
			return true
		}
	}
	return false
}

func (m *Matrix) joinRoom(roomID id.RoomID) error {
	_, err := m.client.JoinRoomByID(context.Background(), roomID)
	if err != nil {
		// Homeservers return M_FORBIDDEN when the bot is already a member.
		if errors.Is(err, mautrix.MForbidden) {
			slog.Warn("joinRoom: already a member or access denied, continuing", "room", roomID)
			return nil
		}
		return err
	}
	return nil
}
