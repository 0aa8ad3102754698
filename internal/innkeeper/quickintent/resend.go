// Package quickintent short-circuits narrow side requests, currently "resend
// my booking summary via another channel", before the main planner runs.
package quickintent

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dmorandell/innkeeper/common/redact"
	"github.com/dmorandell/innkeeper/internal/innkeeper/audit"
	"github.com/dmorandell/innkeeper/internal/innkeeper/consolidate"
	"github.com/dmorandell/innkeeper/internal/innkeeper/dispatch"
	"github.com/dmorandell/innkeeper/internal/innkeeper/domain"
)

// Layer records which matching layer fired, for logs and tests.
type Layer string

const (
	LayerStrict   Layer = "strict"
	LayerLight    Layer = "light"
	LayerFollowup Layer = "followup"
)

// Outcome is the interceptor's handled turn: a reply plus the state patch to
// persist.
type Outcome struct {
	Layer Layer
	Reply string
	Patch domain.StatePatch
}

var (
	// Destination shapes. Email routes to document delivery, a Matrix user
	// ID or room ID to the chat network.
	emailRe  = regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`)
	matrixRe = regexp.MustCompile(`[@!][a-zA-Z0-9._=\-/+]+:[a-zA-Z0-9.\-]+`)

	// Strict layer needs an explicit resend keyword.
	resendKeywords = []string{
		"reenviar", "reenvía", "reenvia", "reenvíame", "reenviame",
		"resend", "forward",
	}
	// Light layer settles for a generic send verb plus the summary noun,
	// leaning on recent reservation context instead of an explicit keyword.
	sendVerbs    = []string{"mándame", "mandame", "envíame", "enviame", "manda", "envía", "envia", "send me", "send"}
	summaryNouns = []string{"resumen", "confirmación", "confirmacion", "summary", "confirmation"}
)

// Resend is the booking-summary resend interceptor. Dispatchers are keyed by
// channel name ("document", "matrix"); the caller wraps them with the bounded
// retry policy. Dispatch failures that exhaust the retries are announced to
// the operator room through the notifier.
type Resend struct {
	dispatchers map[string]dispatch.Dispatcher
	notifier    audit.Notifier
	log         *slog.Logger
}

// NewResend builds the interceptor. notifier may be nil.
func NewResend(dispatchers map[string]dispatch.Dispatcher, notifier audit.Notifier, log *slog.Logger) *Resend {
	if notifier == nil {
		notifier = audit.Noop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Resend{dispatchers: dispatchers, notifier: notifier, log: log}
}

// Intercept inspects one turn. It returns (nil, false) when the turn is not a
// resend request and the main pipeline should run.
func (r *Resend) Intercept(ctx context.Context, message string, state *domain.ConversationState, locale string) (*Outcome, bool) {
	msg := strings.ToLower(message)
	channel, destination := detectDestination(message)

	layer, matched := r.match(msg, state, destination)
	if !matched {
		return nil, false
	}

	if destination == "" {
		// Ask once, remember the committed side intent so the next turn's
		// bare address is picked up by the follow-up layer.
		return &Outcome{
			Layer: layer,
			Reply: askDestinationText(locale),
			Patch: domain.StatePatch{
				LastCategory: domain.Set(domain.CategoryResend),
			},
		}, true
	}

	dispatcher, ok := r.dispatchers[channel]
	if !ok {
		r.log.Warn("resend intercept: no dispatcher for channel", "channel", channel)
		return &Outcome{
			Layer: layer,
			Reply: unsupportedChannelText(locale),
			Patch: domain.StatePatch{
				LastCategory: domain.Set(domain.CategoryResend),
			},
		}, true
	}

	summary := BuildSummary(state, locale)
	if err := dispatcher.Send(ctx, destination, summary); err != nil {
		r.log.Error("resend intercept: dispatch failed",
			"channel", channel, "destination", redact.Address(destination), "err", err)
		r.notifier.Notify(ctx, audit.Event{
			Kind:         audit.KindDispatchFailed,
			Conversation: domain.Key(state.TenantID, state.ConversationID),
			Message: fmt.Sprintf("summary dispatch over %s to %s failed: %v",
				channel, redact.Address(destination), err),
		})
		return &Outcome{
			Layer: layer,
			Reply: dispatchFailedText(locale),
			Patch: domain.StatePatch{
				LastCategory: domain.Set(domain.CategoryResend),
			},
		}, true
	}

	r.log.Info("resend intercept: summary delivered",
		"channel", channel, "layer", layer, "destination", redact.Address(destination))
	return &Outcome{
		Layer: layer,
		Reply: sentText(locale, destination),
		Patch: domain.StatePatch{
			LastCategory: domain.Set(domain.CategoryResend),
		},
	}, true
}

func (r *Resend) match(msg string, state *domain.ConversationState, destination string) (Layer, bool) {
	if containsAny(msg, resendKeywords) {
		return LayerStrict, true
	}
	hasContext := state != nil && (state.LastReservation != nil || state.LastProposal != nil)
	if hasContext && containsAny(msg, sendVerbs) && containsAny(msg, summaryNouns) {
		return LayerLight, true
	}
	if state != nil && state.LastCategory == domain.CategoryResend && destination != "" {
		return LayerFollowup, true
	}
	return "", false
}

func detectDestination(message string) (channel, destination string) {
	if m := emailRe.FindString(message); m != "" {
		return "document", m
	}
	if m := matrixRe.FindString(message); m != "" {
		return "matrix", m
	}
	return "", ""
}

// BuildSummary renders the booking summary sent over the side channel.
func BuildSummary(state *domain.ConversationState, locale string) string {
	var b strings.Builder
	if locale == "en" {
		b.WriteString("Booking summary\n")
	} else {
		b.WriteString("Resumen de su reserva\n")
	}
	if state == nil {
		return b.String()
	}

	slots := state.Slots
	if slots.GuestName != "" {
		b.WriteString(fmt.Sprintf("%s: %s\n", label(locale, "Guest", "Huésped"), slots.GuestName))
	}
	if slots.CheckIn != "" {
		b.WriteString(fmt.Sprintf("%s: %s\n", label(locale, "Check-in", "Entrada"), consolidate.DisplayDate(slots.CheckIn)))
	}
	if slots.CheckOut != "" {
		b.WriteString(fmt.Sprintf("%s: %s\n", label(locale, "Check-out", "Salida"), consolidate.DisplayDate(slots.CheckOut)))
	}
	if slots.NumGuests > 0 {
		b.WriteString(fmt.Sprintf("%s: %d\n", label(locale, "Guests", "Personas"), slots.NumGuests))
	}
	if slots.RoomType != "" {
		b.WriteString(fmt.Sprintf("%s: %s\n", label(locale, "Room", "Habitación"), slots.RoomType))
	}
	if p := state.LastProposal; p != nil && p.SuggestedPricePerNight > 0 {
		nights := slots.Nights()
		if nights > 0 {
			b.WriteString(fmt.Sprintf("%s: %.2f EUR\n", label(locale, "Total", "Total"),
				p.SuggestedPricePerNight*float64(nights)))
		}
	}
	if res := state.LastReservation; res != nil && res.ID != "" {
		b.WriteString(fmt.Sprintf("%s: %s\n", label(locale, "Reservation", "Reserva"), res.ID))
	}
	return b.String()
}

func label(locale, en, es string) string {
	if locale == "en" {
		return en
	}
	return es
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
