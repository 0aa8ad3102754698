package quickintent

func askDestinationText(locale string) string {
	if locale == "en" {
		return "Of course. Where should I send your booking summary? You can give me an email address or a chat handle."
	}
	return "Por supuesto. ¿A dónde le envío el resumen de su reserva? Puede indicarme un correo electrónico o un usuario de chat."
}

func unsupportedChannelText(locale string) string {
	if locale == "en" {
		return "I'm sorry, I can't deliver summaries to that kind of address yet. Could you give me an email address or a chat handle?"
	}
	return "Lo siento, todavía no puedo enviar resúmenes a ese tipo de dirección. ¿Podría indicarme un correo electrónico o un usuario de chat?"
}

func dispatchFailedText(locale string) string {
	if locale == "en" {
		return "I couldn't deliver the summary just now. Would you like me to try again, or should I pass this to a member of our team?"
	}
	return "No he podido enviar el resumen en este momento. ¿Quiere que lo intente de nuevo o prefiere que lo gestione una persona de nuestro equipo?"
}

func sentText(locale, destination string) string {
	if locale == "en" {
		return "Done, I've sent your booking summary to " + destination + "."
	}
	return "Listo, le he enviado el resumen de su reserva a " + destination + "."
}
