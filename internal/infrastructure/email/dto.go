package email

// Message is one outgoing HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

type OTPData struct {
	Name      string
	OTP       string
	ExpiresIn string
}

type ResetPasswordData struct {
	Name      string
	ResetLink string
	ExpiresIn string
}

type ResetSuccessData struct {
	Name string
}
