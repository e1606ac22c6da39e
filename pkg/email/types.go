package email

// Message is one outgoing notification. ReplyTo is set on contact form
// forwards so staff can answer the visitor directly.
type Message struct {
	To       []string
	ReplyTo  string
	Subject  string
	TextBody string
	HTMLBody string
}
