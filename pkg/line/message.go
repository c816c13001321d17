package line

// Message is any payload the Messaging API accepts in a reply or push.
type Message interface {
	message()
}

// TextMessage is a plain text bubble.
type TextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (TextMessage) message() {}

// NewTextMessage builds a text message.
func NewTextMessage(text string) TextMessage {
	return TextMessage{Type: "text", Text: text}
}

// FlexObject is one node of a flex message content tree. Flex layouts are
// deeply nested and mostly presentation, so they are built as raw JSON objects
// rather than a full typed mirror of the flex schema.
type FlexObject map[string]interface{}

// FlexMessage is a flex (card) message.
type FlexMessage struct {
	Type     string     `json:"type"`
	AltText  string     `json:"altText"`
	Contents FlexObject `json:"contents"`
}

func (FlexMessage) message() {}

// NewFlexMessage builds a flex message.
func NewFlexMessage(altText string, contents FlexObject) FlexMessage {
	return FlexMessage{Type: "flex", AltText: altText, Contents: contents}
}
