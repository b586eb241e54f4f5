package handlers

const (
	welcomeMsg = "Welcome to IntillaSense. I recommend tillage methods, equipment and timing for your farm.\n\n" + usageMsg

	usageMsg = "Commands:\n" +
		"/farms - list the farms I know about\n" +
		"/advise <farm number> <question> - ask for a recommendation\n" +
		"Send a field photo with an /advise caption to include it.\n\n" +
		"Example: /advise 1 Should I chisel plow this fall?"

	adviseUsageMsg  = "Usage: /advise <farm number> <question>\nExample: /advise 2 When should I till?"
	photoErrorMsg   = "I couldn't download that photo. Please try again."
	generalErrorMsg = "Sorry, I couldn't get a recommendation right now. Please try again later."
	noFarmsMsg      = "No farm profiles are configured."
)
