package reminders

// Notifier delivers one reminder message to a recipient address (an email
// address or a phone number, depending on the channel).
type Notifier interface {
	Send(recipient, subject, body string) error
}
