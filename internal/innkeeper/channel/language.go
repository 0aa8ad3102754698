package channel

import "strings"

// Marker words for the two reply languages the decision core speaks. The
// hint only has to beat the default locale, not a real language detector:
// ambiguous messages return "" and the stored conversation locale wins.
var (
	englishMarkers = []string{
		" the ", " and ", " for ", " i ", "hello", "good morning", "good afternoon",
		"please", "night", "book", "room ", "check-in", "check-out", "cancel my",
	}
	spanishMarkers = []string{
		" la ", " el ", " de ", " una ", " para ", "hola", "buenos", "buenas",
		"por favor", "gracias", "noche", "reserva", "habitación", "habitacion",
		"quiero", "cancelar",
	}
)

// DetectLanguage returns a lowercase ISO 639-1 hint ("es" or "en") for the
// guest message, or "" when the text is too ambiguous to call.
func DetectLanguage(text string) string {
	padded := " " + strings.ToLower(text) + " "

	var en, es int
	for _, m := range englishMarkers {
		if strings.Contains(padded, m) {
			en++
		}
	}
	for _, m := range spanishMarkers {
		if strings.Contains(padded, m) {
			es++
		}
	}

	switch {
	case en > es:
		return "en"
	case es > en:
		return "es"
	default:
		return ""
	}
}
