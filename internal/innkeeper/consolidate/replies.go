package consolidate

import (
	"fmt"
	"strings"
)

type locale string

const (
	localeES locale = "es"
	localeEN locale = "en"
)

// replyLocale picks the reply language: the turn's detected language wins,
// then the locale remembered in the slots, then Spanish.
func replyLocale(detected, stored string) locale {
	for _, v := range []string{detected, stored} {
		switch strings.ToLower(v) {
		case "en":
			return localeEN
		case "es":
			return localeES
		}
	}
	return localeES
}

// arrivalWords and departureWords decide which side a lone date fills when
// the guest names it explicitly ("entrada el 03/10", "check out on 05/10").
var (
	arrivalWords = []string{
		"entrada", "llegada", "llegamos", "llego", "desde el", "check-in", "check in", "checkin",
		"arrive", "arrival", "arriving", "from the",
	}
	departureWords = []string{
		"salida", "salimos", "salgo", "nos vamos", "hasta el", "check-out", "check out", "checkout",
		"depart", "departure", "leave", "leaving", "until",
	}
)

func sideFromVocabulary(msg string) Side {
	arrival := containsAny(msg, arrivalWords)
	departure := containsAny(msg, departureWords)
	switch {
	case arrival && !departure:
		return SideCheckIn
	case departure && !arrival:
		return SideCheckOut
	default:
		return SideNone
	}
}

// askMarkers are substrings of our own prompts. When the assistant's
// immediately preceding turn contains one, a bare date in the guest's answer
// fills that side.
var (
	checkInAskMarkers  = []string{"fecha de entrada", "fecha sería la entrada", "check-in date", "date would you like to check in"}
	checkOutAskMarkers = []string{"fecha de salida", "check-out date", "and the check-out"}
)

// askedSide inspects the last assistant turn for a side-specific question.
func askedSide(history []Turn) Side {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != "assistant" {
			continue
		}
		text := strings.ToLower(history[i].Content)
		if containsAny(text, checkOutAskMarkers) {
			return SideCheckOut
		}
		if containsAny(text, checkInAskMarkers) {
			return SideCheckIn
		}
		return SideNone
	}
	return SideNone
}

// changeVerbs + dateNouns detect a generic "I want to change the dates"
// request that carries no actual date.
var (
	changeVerbs = []string{"cambiar", "cambia", "modificar", "modifica", "mover", "change", "modify", "move", "update"}
	dateNouns   = []string{"fecha", "fechas", "entrada", "salida", "date", "dates", "check-in", "check in", "check-out", "check out"}
)

func asksDateChange(msg string) bool {
	return containsAny(msg, changeVerbs) && containsAny(msg, dateNouns)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func askCheckInText(loc locale) string {
	if loc == localeEN {
		return "What date would you like to check in? (dd/mm/yyyy)"
	}
	return "¿Para qué fecha sería la entrada? (dd/mm/aaaa)"
}

func askCheckOutText(loc locale) string {
	if loc == localeEN {
		return "And the check-out date? (dd/mm/yyyy)"
	}
	return "¿Y la fecha de salida? (dd/mm/aaaa)"
}

func askBothText(loc locale) string {
	if loc == localeEN {
		return "Of course — could you give me the new check-in and check-out dates? (dd/mm/yyyy)"
	}
	return "Claro, ¿me indica las nuevas fechas de entrada y salida? (dd/mm/aaaa)"
}

func confirmRangeText(loc locale, checkInISO, checkOutISO string) string {
	in, out := DisplayDate(checkInISO), DisplayDate(checkOutISO)
	if loc == localeEN {
		return fmt.Sprintf("Noted: check-in on %s and check-out on %s. Shall I check availability for those dates?", in, out)
	}
	return fmt.Sprintf("Anotado: entrada el %s y salida el %s. ¿Quiere que compruebe la disponibilidad para esas fechas?", in, out)
}
