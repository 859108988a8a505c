package models

// Виды транзакционных писем.
const (
	EmailKindVerifyEmail   = "verify_email"
	EmailKindResetPassword = "reset_password"
	EmailKindDirect        = "direct"
)

// EmailJob — задание на отправку письма, публикуется в очередь
// и обрабатывается воркером отправки.
type EmailJob struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`

	// Поля произвольного письма, используются только для Kind = direct.
	Subject string `json:"subject,omitempty"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}
