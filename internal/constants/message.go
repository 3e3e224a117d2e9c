package constants

type MessageType string

const (
	MessageTypeUser      MessageType = "user"
	MessageTypeAssistant MessageType = "assistant"
	MessageTypeSystem    MessageType = "system"
)

const DefaultSessionTitle = "New Session"

// DefaultAccountID and DefaultBotName identify the bot seeded on first run.
const (
	DefaultAccountID uint64 = 1
	DefaultBotName          = "Default Bot"
)

// DefaultSystemPrompt seeds the conversation context when a bot has no
// system prompt of its own configured.
const DefaultSystemPrompt = "You are a helpful assistant trained to provide information and answer questions about our products and services. " +
	"Always be polite and professional. Keep your answers concise and relevant. " +
	"Do not provide personal opinions or guess answers to questions outside your training. " +
	"If you cannot provide an answer, guide the user on how they can get further assistance. " +
	"Remember to respect user privacy and do not ask for personal information unless necessary for the service."

// TitlePrompt wraps a session transcript; {body} is replaced with the
// formatted conversation before the prompt is sent.
const TitlePrompt = `
From the following conversation, please extract a title for the chat.
Here is the conversation:

{body}

- Keep the title to just a few short words
- Just return the title on a single line and nothing else.
- Title must not exceed 80 characters
`
