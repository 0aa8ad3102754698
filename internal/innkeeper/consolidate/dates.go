// Package consolidate turns free-text date mentions into a consistent
// check-in/check-out pair across turns, without making the guest repeat
// themselves.
//
// The resolver is a pure function over (message, prior slots, recent
// history): it never performs I/O, so every branch is unit-testable. It
// understands full dates (dd/mm/yyyy), short dates missing the year (dd/mm,
// year inherited from prior context), two dates in one message (order of
// mention is irrelevant, the earlier is always the check-in), and a single
// date answering a side the system just asked about.
//
// The one hard tie-break rule: a turn that contains zero date tokens never
// produces a confirmation, even when earlier heuristics would complete a
// range. A guest saying "I want to modify the check-in" gets asked for dates,
// not congratulated on dates they did not give.
package consolidate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dmorandell/innkeeper/internal/innkeeper/domain"
)

// Side identifies which end of the stay a date fills.
type Side int

const (
	SideNone Side = iota
	SideCheckIn
	SideCheckOut
)

// Outcome tells the pipeline what the consolidator decided.
type Outcome string

const (
	// OutcomeNone: no date content this turn; the pipeline proceeds normally.
	OutcomeNone Outcome = "none"
	// OutcomeConfirmRange: a complete (and new) range was formed; Reply
	// announces it and offers an availability check.
	OutcomeConfirmRange Outcome = "confirm_range"
	// OutcomeAskCheckIn / OutcomeAskCheckOut: one side is still missing;
	// Reply asks for it explicitly.
	OutcomeAskCheckIn  Outcome = "ask_check_in"
	OutcomeAskCheckOut Outcome = "ask_check_out"
	// OutcomeAskBoth: the guest asked to change "the dates" without giving
	// any; Reply asks for both sides rather than guessing.
	OutcomeAskBoth Outcome = "ask_both"
)

// Turn is one prior message of the conversation, oldest first in history.
type Turn struct {
	// Role is "user" or "assistant".
	Role    string
	Content string
}

// Request is the input to one consolidation pass.
type Request struct {
	Message string
	Prior   domain.ReservationSlots
	// History holds the most recent turns, oldest first. Used for year
	// inheritance and for detecting which side the system just asked about.
	History []Turn
	// Locale selects the reply language ("es" default, "en" supported).
	Locale string
	// Now anchors the year fallback when no prior date exists anywhere.
	Now time.Time
}

// Result is the outcome of one consolidation pass.
type Result struct {
	Outcome Outcome
	// Patch carries only the date fields this turn changed.
	Patch domain.SlotsPatch
	// Merged is the prior slot set with Patch applied.
	Merged domain.ReservationSlots
	// Reply is the canned clarifying or confirming text, empty for
	// OutcomeNone.
	Reply string
}

// dateToken is one date mention found in a message, in order of appearance.
type dateToken struct {
	day, month, year int // year 0 until resolved
	short            bool
}

func (t dateToken) time() time.Time {
	return time.Date(t.year, time.Month(t.month), t.day, 0, 0, 0, 0, time.UTC)
}

func (t dateToken) iso() string {
	return t.time().Format(domain.DateLayout)
}

// fullDateRe matches dd/mm/yyyy and dd-mm-yyyy.
// shortDateRe matches dd/mm (and dd-mm) not followed by a year.
var (
	fullDateRe  = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4})\b`)
	shortDateRe = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})\b([^/-]|$)`)
)

// extractTokens finds all date mentions in msg, in order of appearance.
// Short tokens carry year 0 and are resolved later.
func extractTokens(msg string) []dateToken {
	type span struct {
		start, end int
		tok        dateToken
	}
	var spans []span

	for _, m := range fullDateRe.FindAllStringSubmatchIndex(msg, -1) {
		d := atoi(msg[m[2]:m[3]])
		mo := atoi(msg[m[4]:m[5]])
		y := atoi(msg[m[6]:m[7]])
		if !plausibleDay(d, mo) {
			continue
		}
		spans = append(spans, span{m[0], m[1], dateToken{day: d, month: mo, year: y}})
	}

	for _, m := range shortDateRe.FindAllStringSubmatchIndex(msg, -1) {
		overlaps := false
		for _, s := range spans {
			if m[0] < s.end && m[1] > s.start {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		d := atoi(msg[m[2]:m[3]])
		mo := atoi(msg[m[4]:m[5]])
		if !plausibleDay(d, mo) {
			continue
		}
		spans = append(spans, span{m[0], m[1], dateToken{day: d, month: mo, short: true}})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	tokens := make([]dateToken, 0, len(spans))
	for _, s := range spans {
		tokens = append(tokens, s.tok)
	}
	return tokens
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

func plausibleDay(d, m int) bool {
	return d >= 1 && d <= 31 && m >= 1 && m <= 12
}

// Resolve runs one consolidation pass. See the package comment for the
// priority order of the heuristics.
func Resolve(req Request) Result {
	msg := strings.ToLower(req.Message)
	loc := replyLocale(req.Locale, req.Prior.Locale)
	tokens := extractTokens(msg)

	if len(tokens) == 0 {
		if asksDateChange(msg) {
			// No date was actually given, so nothing is confirmed or stored;
			// ask for the named side, or for both on a generic "the dates".
			switch sideFromVocabulary(msg) {
			case SideCheckIn:
				return Result{Outcome: OutcomeAskCheckIn, Merged: req.Prior, Reply: askCheckInText(loc)}
			case SideCheckOut:
				return Result{Outcome: OutcomeAskCheckOut, Merged: req.Prior, Reply: askCheckOutText(loc)}
			default:
				return Result{Outcome: OutcomeAskBoth, Merged: req.Prior, Reply: askBothText(loc)}
			}
		}
		return Result{Outcome: OutcomeNone, Merged: req.Prior}
	}

	resolveYears(tokens, req)
	tokens = dedupe(tokens)

	if len(tokens) >= 2 {
		return resolvePair(req, loc, tokens[0], tokens[1])
	}
	return resolveSingle(req, loc, msg, tokens[0])
}

// resolveYears fills in missing years, in priority order: the most recently
// known full date in the stored slots, a full date elsewhere in the same
// message (the pending update), a full date in a prior user message, and
// finally the current year.
func resolveYears(tokens []dateToken, req Request) {
	pendingYear := 0
	for _, t := range tokens {
		if !t.short {
			pendingYear = t.year
		}
	}

	inherited := 0
	if y := yearFromISO(req.Prior.CheckOut); y != 0 {
		inherited = y
	} else if y := yearFromISO(req.Prior.CheckIn); y != 0 {
		inherited = y
	}
	if inherited == 0 {
		inherited = pendingYear
	}
	if inherited == 0 {
		inherited = yearFromHistory(req.History)
	}
	if inherited == 0 {
		inherited = req.Now.Year()
	}

	for i := range tokens {
		if tokens[i].short {
			tokens[i].year = inherited
		}
	}
}

func yearFromISO(iso string) int {
	t, err := time.Parse(domain.DateLayout, iso)
	if err != nil {
		return 0
	}
	return t.Year()
}

// yearFromHistory scans user turns newest-first for a full date token.
func yearFromHistory(history []Turn) int {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != "user" {
			continue
		}
		for _, t := range extractTokens(strings.ToLower(history[i].Content)) {
			if !t.short {
				return t.year
			}
		}
	}
	return 0
}

func dedupe(tokens []dateToken) []dateToken {
	out := tokens[:0]
	for _, t := range tokens {
		dup := false
		for _, o := range out {
			if o.day == t.day && o.month == t.month && o.year == t.year {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, t)
		}
	}
	return out
}

// resolvePair handles two distinct dates in one message: the earlier is the
// check-in, the later the check-out, regardless of mention order.
func resolvePair(req Request, loc locale, a, b dateToken) Result {
	if b.time().Before(a.time()) {
		a, b = b, a
	}

	checkIn, checkOut := a.iso(), b.iso()
	if checkIn == checkOut {
		return resolveSingle(req, loc, strings.ToLower(req.Message), a)
	}

	patch := domain.SlotsPatch{
		CheckIn:  domain.Set(checkIn),
		CheckOut: domain.Set(checkOut),
	}
	merged := patch.Apply(req.Prior)

	if req.Prior.CheckIn == checkIn && req.Prior.CheckOut == checkOut {
		// Same range as stored; nothing new to announce.
		return Result{Outcome: OutcomeNone, Patch: patch, Merged: merged}
	}
	return Result{
		Outcome: OutcomeConfirmRange,
		Patch:   patch,
		Merged:  merged,
		Reply:   confirmRangeText(loc, checkIn, checkOut),
	}
}

// resolveSingle handles a lone date mention. Side resolution order: explicit
// arrival/departure vocabulary in the message, then the side the system asked
// about in its immediately preceding turn, then chronological fit against the
// known check-in.
func resolveSingle(req Request, loc locale, msg string, tok dateToken) Result {
	side := sideFromVocabulary(msg)
	if side == SideNone {
		side = askedSide(req.History)
	}
	if side == SideNone {
		side = sideFromChronology(req.Prior, tok)
	}

	var patch domain.SlotsPatch
	switch side {
	case SideCheckOut:
		patch.CheckOut = domain.Set(tok.iso())
	default:
		patch.CheckIn = domain.Set(tok.iso())
	}
	merged := patch.Apply(req.Prior)

	// A side assignment that inverts the range keeps the new value and drops
	// the stale opposite side; the guest is then asked for it explicitly.
	if merged.CheckIn != "" && merged.CheckOut != "" && merged.Validate() != nil {
		if side == SideCheckOut {
			patch.CheckIn = domain.Clear[string]()
		} else {
			patch.CheckOut = domain.Clear[string]()
		}
		merged = patch.Apply(req.Prior)
	}

	if merged.CheckIn != "" && merged.CheckOut != "" {
		changed := merged.CheckIn != req.Prior.CheckIn || merged.CheckOut != req.Prior.CheckOut
		bothKnownBefore := req.Prior.CheckIn != "" && req.Prior.CheckOut != ""
		if changed || !bothKnownBefore {
			return Result{
				Outcome: OutcomeConfirmRange,
				Patch:   patch,
				Merged:  merged,
				Reply:   confirmRangeText(loc, merged.CheckIn, merged.CheckOut),
			}
		}
		return Result{Outcome: OutcomeNone, Patch: patch, Merged: merged}
	}

	if merged.CheckIn == "" {
		return Result{Outcome: OutcomeAskCheckIn, Patch: patch, Merged: merged, Reply: askCheckInText(loc)}
	}
	return Result{Outcome: OutcomeAskCheckOut, Patch: patch, Merged: merged, Reply: askCheckOutText(loc)}
}

// sideFromChronology applies the rule for a bare date with no other signal:
// with a check-in already in progress, the date is the check-out when that
// keeps the range in order, otherwise it replaces the check-in.
func sideFromChronology(prior domain.ReservationSlots, tok dateToken) Side {
	if prior.CheckIn == "" {
		return SideCheckIn
	}
	in, err := time.Parse(domain.DateLayout, prior.CheckIn)
	if err != nil {
		return SideCheckIn
	}
	if tok.time().After(in) {
		return SideCheckOut
	}
	return SideCheckIn
}

// DisplayDate renders an ISO date in the guest-facing dd/mm/yyyy format.
func DisplayDate(iso string) string {
	t, err := time.Parse(domain.DateLayout, iso)
	if err != nil {
		return iso
	}
	return fmt.Sprintf("%02d/%02d/%04d", t.Day(), int(t.Month()), t.Year())
}
