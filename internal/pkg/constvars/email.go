package constvars

const (
	EmailOrderConfirmationSubject = "[LABTRACE] Order %s Confirmed"
	EmailResultsReadySubject      = "[LABTRACE] Results Ready for Order %s"
)

const (
	EmailSendBasicEmailSubjectFormat = "To: %s\r\nSubject: %s\r\n\r\n%s\r\n"
	EmailSendHTMLSubjectFormat       = "To: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s\r\n"

	EmailBodyOrderConfirmation = "Your lab order %s has been confirmed. Please visit a collection point to have your specimen collected."
	EmailBodyResultsReady      = "Results for your lab order %s are ready. Log in to your account to view them."
)

const (
	NotificationKindOrderConfirmation = "order_confirmation"
	NotificationKindResultsReady      = "results_ready"
)

const (
	RegexEmail = `^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`
)
