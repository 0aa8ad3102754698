package interpret

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dmorandell/innkeeper/internal/innkeeper/domain"
)

// Heuristic is the deterministic, rule-based interpreter ("pre"). It performs
// no external calls; classification and slot extraction are pure lexicon and
// regexp work so it can run on every turn for free.
type Heuristic struct{}

// NewHeuristic returns the rule-based interpreter.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

var (
	cancelLexicon = []string{
		"cancelar", "cancela", "anular", "anula", "cancel my", "cancel the", "cancel it", "call off",
	}
	reservationLexicon = []string{
		"reserva", "reservar", "habitación", "habitacion", "disponibilidad", "noches", "alojamiento",
		"book", "booking", "reserve", "room", "availability", "nights", "stay",
	}
	resendLexicon = []string{
		"reenviar", "reenvía", "reenvia", "mándame", "mandame", "envíame", "enviame",
		"resend", "send me", "forward me",
	}
	snapshotLexicon = []string{
		"resumen de mi reserva", "mi reserva actual", "datos de mi reserva",
		"booking summary", "my reservation details", "my current booking",
	}
	verifyLexicon = []string{
		"verificar mi reserva", "comprobar mi reserva", "sigue en pie",
		"verify my booking", "confirm my booking is", "is my booking confirmed",
	}
	greetingLexicon = []string{
		"hola", "buenos días", "buenos dias", "buenas tardes", "buenas noches",
		"hello", "hi ", "hi!", "good morning", "good afternoon",
	}
)

var (
	numGuestsRe = regexp.MustCompile(`(?:somos|para|for)\s+(\d{1,2})\b(?:\s+(noches?|nights?|d[íi]as?|days?))?|(\d{1,2})\s*(?:personas?|adultos?|huéspedes|huespedes|guests?|people|pax)\b`)
	guestNameRe = regexp.MustCompile(`(?:me llamo|mi nombre es|a nombre de|my name is|under the name(?: of)?)\s+([\p{L}][\p{L} .'-]{1,60})`)
	dateTokenRe = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}(?:[/-]\d{4})?\b`)
)

// roomTypeLexicon maps guest wording to the canonical room type name.
var roomTypeLexicon = map[string]string{
	"individual": "individual",
	"doble":      "doble",
	"triple":     "triple",
	"familiar":   "familiar",
	"suite":      "suite",
	"single":     "individual",
	"double":     "doble",
	"twin":       "doble",
	"family":     "familiar",
}

// Interpret classifies one turn and extracts slots from it. consolidated is
// the slot set after this turn's date consolidation, so the date fields here
// already reflect the turn's mentions; hasReservation tells the action rule
// whether the conversation has a committed reservation to update or cancel.
func (h *Heuristic) Interpret(message string, consolidated domain.ReservationSlots, hasReservation bool) domain.Interpretation {
	msg := strings.ToLower(message)

	slots := make(map[domain.SlotField]string)
	if consolidated.CheckIn != "" {
		slots[domain.SlotCheckIn] = consolidated.CheckIn
	}
	if consolidated.CheckOut != "" {
		slots[domain.SlotCheckOut] = consolidated.CheckOut
	}
	if n := extractNumGuests(msg); n > 0 {
		slots[domain.SlotNumGuests] = strconv.Itoa(n)
	} else if consolidated.NumGuests > 0 {
		slots[domain.SlotNumGuests] = strconv.Itoa(consolidated.NumGuests)
	}
	if rt := extractRoomType(msg); rt != "" {
		slots[domain.SlotRoomType] = rt
	} else if consolidated.RoomType != "" {
		slots[domain.SlotRoomType] = consolidated.RoomType
	}
	if name := extractGuestName(message); name != "" {
		slots[domain.SlotGuestName] = name
	} else if consolidated.GuestName != "" {
		slots[domain.SlotGuestName] = consolidated.GuestName
	}

	category, action, note := h.classify(msg, slots, hasReservation)

	interp := domain.Interpretation{
		Source:        domain.SourcePre,
		Category:      category,
		DesiredAction: action,
		Slots:         slots,
		Confidence: domain.Confidence{
			Intent: IntentConfidence(category),
			Slots:  scoreSlots(slots),
		},
	}
	if note != "" {
		interp.Notes = append(interp.Notes, note)
	}
	return interp
}

// classify applies the lexicons in priority order. Cancellation wins over
// everything: a guest writing "quiero cancelar la reserva" must not be
// classified as a reservation just because the word "reserva" appears.
func (h *Heuristic) classify(msg string, slots map[domain.SlotField]string, hasReservation bool) (domain.Category, domain.Action, string) {
	switch {
	case containsAny(msg, cancelLexicon):
		return domain.CategoryCancel, domain.ActionCancel, "cancel lexicon match"
	case containsAny(msg, resendLexicon):
		return domain.CategoryResend, domain.ActionNone, "resend lexicon match"
	case containsAny(msg, snapshotLexicon):
		return domain.CategorySnapshot, domain.ActionNone, "snapshot lexicon match"
	case containsAny(msg, verifyLexicon):
		return domain.CategoryVerify, domain.ActionNone, "verify lexicon match"
	case isGreeting(msg):
		return domain.CategoryGreeting, domain.ActionNone, "greeting lexicon match"
	case containsAny(msg, reservationLexicon) || dateTokenRe.MatchString(msg) || hasTurnSlotSignal(msg):
		action := domain.ActionCreate
		if hasReservation {
			action = domain.ActionUpdate
		}
		return domain.CategoryReservation, action, "reservation lexicon match"
	default:
		return domain.CategoryInfo, domain.ActionNone, "generic fallback"
	}
}

// isGreeting requires both the lexicon and a short message; "hola, quiero
// reservar..." is not a greeting turn.
func isGreeting(msg string) bool {
	return containsAny(msg, greetingLexicon) && len(strings.TrimSpace(msg)) <= 30
}

// hasTurnSlotSignal reports whether the turn itself carries reservation slot
// content (party size, room type), which classifies as reservation even
// without the lexicon ("somos 3 ahora").
func hasTurnSlotSignal(msg string) bool {
	return extractNumGuests(msg) > 0 || extractRoomType(msg) != ""
}

func extractNumGuests(msg string) int {
	for _, m := range numGuestsRe.FindAllStringSubmatch(msg, -1) {
		raw := m[1]
		// "para 2 noches" is a stay length, not a party size.
		if raw != "" && m[2] != "" {
			continue
		}
		if raw == "" {
			raw = m[3]
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			continue
		}
		return n
	}
	return 0
}

func extractRoomType(msg string) string {
	for word, canonical := range roomTypeLexicon {
		if strings.Contains(msg, word) {
			return canonical
		}
	}
	return ""
}

func extractGuestName(message string) string {
	m := guestNameRe.FindStringSubmatch(strings.ToLower(message))
	if m == nil {
		return ""
	}
	// Re-find in the original message to preserve the guest's casing.
	idx := strings.Index(strings.ToLower(message), m[1])
	if idx < 0 {
		return strings.TrimSpace(m[1])
	}
	name := message[idx : idx+len(m[1])]
	name = strings.TrimRight(name, " .,!?")
	return strings.TrimSpace(name)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
