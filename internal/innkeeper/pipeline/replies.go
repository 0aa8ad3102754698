package pipeline

import (
	"fmt"

	"github.com/dmorandell/innkeeper/internal/innkeeper/consolidate"
	"github.com/dmorandell/innkeeper/internal/innkeeper/domain"
)

func greetingText(locale string) string {
	if locale == "en" {
		return "Hello! Welcome. I can help you book a room, check availability or answer questions about your stay. What can I do for you?"
	}
	return "¡Hola! Bienvenido. Puedo ayudarle a reservar una habitación, consultar disponibilidad o resolver dudas sobre su estancia. ¿En qué puedo ayudarle?"
}

func fallbackText(locale string) string {
	if locale == "en" {
		return "I'm sorry, I didn't quite get that. Could you tell me again what you need? I can help with bookings, dates and availability."
	}
	return "Disculpe, no le he entendido bien. ¿Podría repetirme qué necesita? Puedo ayudarle con reservas, fechas y disponibilidad."
}

func availabilityApologyText(locale string, withHandoff bool) string {
	var apology, handoff string
	if locale == "en" {
		apology = "I'm sorry, I can't check availability right now."
		handoff = " A member of our team will follow up with you shortly."
	} else {
		apology = "Lo siento, en este momento no puedo consultar la disponibilidad."
		handoff = " Una persona de nuestro equipo se pondrá en contacto con usted en breve."
	}
	if withHandoff {
		return apology + handoff
	}
	return apology
}

func noVacancyText(locale string) string {
	if locale == "en" {
		return "I'm sorry, we have no rooms available for those dates. Would you like to try different dates?"
	}
	return "Lo siento, no tenemos habitaciones disponibles para esas fechas. ¿Quiere probar con otras fechas?"
}

func quoteText(locale string, p *domain.Proposal, slots domain.ReservationSlots) string {
	nights := slots.Nights()
	total := p.SuggestedPricePerNight * float64(nights)
	if locale == "en" {
		return fmt.Sprintf("We have a %s room available from %s to %s (%d nights) at %.2f EUR per night, %.2f EUR in total. Shall I book it?",
			p.SuggestedRoomType, consolidate.DisplayDate(slots.CheckIn), consolidate.DisplayDate(slots.CheckOut),
			nights, p.SuggestedPricePerNight, total)
	}
	return fmt.Sprintf("Tenemos una habitación %s disponible del %s al %s (%d noches) a %.2f EUR por noche, %.2f EUR en total. ¿Se la reservo?",
		p.SuggestedRoomType, consolidate.DisplayDate(slots.CheckIn), consolidate.DisplayDate(slots.CheckOut),
		nights, p.SuggestedPricePerNight, total)
}

func requoteText(locale string, numGuests int, p *domain.Proposal, slots domain.ReservationSlots) string {
	nights := slots.Nights()
	total := p.SuggestedPricePerNight * float64(nights)
	if locale == "en" {
		return fmt.Sprintf("Noted, %d guests. I've updated the room to a %s to fit everyone: %.2f EUR per night, %.2f EUR in total for %d nights (%s to %s). Shall I go ahead?",
			numGuests, p.SuggestedRoomType, p.SuggestedPricePerNight, total, nights,
			consolidate.DisplayDate(slots.CheckIn), consolidate.DisplayDate(slots.CheckOut))
	}
	return fmt.Sprintf("Anotado, %d personas. He actualizado la habitación a una %s para que quepan todos: %.2f EUR por noche, %.2f EUR en total por %d noches (del %s al %s). ¿Sigo adelante?",
		numGuests, p.SuggestedRoomType, p.SuggestedPricePerNight, total, nights,
		consolidate.DisplayDate(slots.CheckIn), consolidate.DisplayDate(slots.CheckOut))
}

func cancelAckText(locale string) string {
	if locale == "en" {
		return "I understand you want to cancel your reservation. To confirm: should I cancel the whole booking? Please reply yes to proceed."
	}
	return "Entiendo que desea cancelar su reserva. Para confirmar: ¿cancelo la reserva completa? Responda sí para continuar."
}

func snapshotIntroText(locale string) string {
	if locale == "en" {
		return "Here are your current booking details:\n"
	}
	return "Estos son los datos actuales de su reserva:\n"
}
