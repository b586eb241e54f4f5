// Package handlers contains the Telegram command handlers and their
// registration table.
package handlers

import (
	"github.com/go-telegram/bot"
)

// RegisteredHandler is everything needed to register one handler.
type RegisteredHandler struct {
	HandlerType bot.HandlerType
	Pattern     string
	Handler     bot.HandlerFunc
	Middleware  []bot.Middleware
	MatchType   bot.MatchType
}

// RegisterAllCommands returns the bot's handlers keyed by command.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	handlers["/start"] = RegisteredHandler{
		HandlerType: bot.HandlerTypeMessageText,
		Pattern:     "start",
		Handler:     NewStartHandler(deps),
		MatchType:   bot.MatchTypeCommandStartOnly,
	}
	handlers["/help"] = RegisteredHandler{
		HandlerType: bot.HandlerTypeMessageText,
		Pattern:     "help",
		Handler:     NewHelpHandler(deps),
		MatchType:   bot.MatchTypeCommandStartOnly,
	}
	handlers["/farms"] = RegisteredHandler{
		HandlerType: bot.HandlerTypeMessageText,
		Pattern:     "farms",
		Handler:     NewFarmsHandler(deps),
		MatchType:   bot.MatchTypeCommandStartOnly,
	}

	advise := NewAdviseHandler(deps)
	handlers["/advise"] = RegisteredHandler{
		HandlerType: bot.HandlerTypeMessageText,
		Pattern:     "advise",
		Handler:     advise,
		MatchType:   bot.MatchTypeCommandStartOnly,
	}
	// Photos carry the command in their caption.
	handlers["/advise (photo)"] = RegisteredHandler{
		HandlerType: bot.HandlerTypePhotoCaption,
		Pattern:     "/advise",
		Handler:     advise,
		MatchType:   bot.MatchTypePrefix,
	}

	return handlers
}
