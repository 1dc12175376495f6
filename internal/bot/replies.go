package bot

import "fmt"

// Reply texts. Siddy signs most of what it says with "LeL.", that is the
// bot's voice, keep it.
const (
	replyStart = "LeL."

	replyHelp = "Use: \n" +
		"- /newvoice to create a new voice file.\n" +
		"- /voice <name> to send the voice file named <name>.\n" +
		"- /listvoices to show saved voices.\n" +
		"- /cancel to cancel the current task.\n"

	replyNewVoice = "Hi! My name is Siddy Bot. I will hold a conversation with you. LeL.\n" +
		"Send /cancel to stop talking to me.\n\n" +
		"How would you like to name the voice? LeL."

	replyNewVoiceRestart = "Okay, let's forget the voice we were working on and start over. LeL.\n\n" +
		"How would you like to name the voice? LeL."

	replyCancel = "Bye! I hope we can talk again some day."

	replyNothingToCancel = "Nothing to cancel here. LeL."

	replyMissingName = "Please input the voice name.\n" +
		"Use /voice <name> to get the voice!\n" +
		"LeL."

	replyNoVoices = "There are no voices saved yet. LeL."

	replyEmptyName = "A voice name can't be empty. Please send me a name. LeL."

	replyInvalidName = "A voice name can't contain '_', '/' or '\\'. Please select a different name. LeL."

	replyExpectingName = "I'm still waiting for a name. Send me a text message, or /cancel. LeL."

	replyExpectingVoice = "I'm still waiting for the recording. Send me a voice message, or /cancel. LeL."

	replySomethingWrong = "Sorry! Something went wrong on my side. Please try again. LeL."
)

func replyNameTaken(name string) string {
	return fmt.Sprintf("The name %s is already taken. Please select a different name. LeL.", name)
}

func replyNameAccepted(firstName, name string) string {
	return fmt.Sprintf("Okay %s. LeL.\n"+
		"The file will be named: %s\n"+
		"Now just send a voice message which should be saved! LeL.", firstName, name)
}

func replyVoiceSaved(name string) string {
	return fmt.Sprintf("Thank you, the voice is now saved as %s.\n"+
		"Use /voice <name> to get the voice!\n"+
		"I hope we can talk again some day. LeL.\n", name)
}

func replyVoiceNotFound(name string) string {
	return fmt.Sprintf("Sorry! Could not find voice file named: %q. LeL.", name)
}

func replyVoiceList(lines string) string {
	return "These voices are saved:\n\n" + lines + "\n\nLeL."
}
