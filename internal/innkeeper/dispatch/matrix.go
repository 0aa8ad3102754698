package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/id"
)

// MatrixConfig holds the chat-network sender credentials.
type MatrixConfig struct {
	Homeserver  string
	UserID      string
	AccessToken string
}

// MatrixDispatcher delivers summaries over the Matrix chat network. A
// destination starting with '@' is a user ID and gets a direct room opened
// (and cached) on first use; anything else is treated as a room ID.
type MatrixDispatcher struct {
	client *mautrix.Client

	mu          sync.Mutex
	directRooms map[id.UserID]id.RoomID
}

// NewMatrixDispatcher creates the sender. It does not sync; this client only
// ever pushes messages.
func NewMatrixDispatcher(cfg MatrixConfig) (*MatrixDispatcher, error) {
	client, err := mautrix.NewClient(cfg.Homeserver, id.UserID(cfg.UserID), cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("create matrix client: %w", err)
	}
	return &MatrixDispatcher{
		client:      client,
		directRooms: make(map[id.UserID]id.RoomID),
	}, nil
}

func (d *MatrixDispatcher) Channel() string { return "matrix" }

// Send implements Dispatcher.
func (d *MatrixDispatcher) Send(ctx context.Context, destination, summary string) error {
	roomID, err := d.resolveRoom(ctx, destination)
	if err != nil {
		return &Error{Channel: d.Channel(), Destination: destination, Err: err}
	}
	if _, err := d.client.SendText(ctx, roomID, summary); err != nil {
		return &Error{Channel: d.Channel(), Destination: destination, Err: err}
	}
	return nil
}

func (d *MatrixDispatcher) resolveRoom(ctx context.Context, destination string) (id.RoomID, error) {
	if !strings.HasPrefix(destination, "@") {
		return id.RoomID(destination), nil
	}

	userID := id.UserID(destination)
	d.mu.Lock()
	roomID, ok := d.directRooms[userID]
	d.mu.Unlock()
	if ok {
		return roomID, nil
	}

	resp, err := d.client.CreateRoom(ctx, &mautrix.ReqCreateRoom{
		Preset:   "trusted_private_chat",
		IsDirect: true,
		Invite:   []id.UserID{userID},
	})
	if err != nil {
		return "", fmt.Errorf("open direct room with %s: %w", destination, err)
	}

	d.mu.Lock()
	d.directRooms[userID] = resp.RoomID
	d.mu.Unlock()
	return resp.RoomID, nil
}
