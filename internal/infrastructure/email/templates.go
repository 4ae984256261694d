package email

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	SubjectOTP          = "Your Verification Code for WriteSpace"
	SubjectResetRequest = "Reset your WriteSpace password"
	SubjectResetSuccess = "Your WriteSpace password was changed"
)

var (
	otpTemplate = template.Must(template.New("otp").Parse(`<div style="font-family:Arial,sans-serif;max-width:560px;margin:auto">
<h2>Welcome to WriteSpace{{if .Name}}, {{.Name}}{{end}}!</h2>
<p>Use the code below to finish creating your account:</p>
<p style="font-size:32px;letter-spacing:8px;font-weight:bold">{{.OTP}}</p>
<p>The code expires in {{.ExpiresIn}}. If you did not sign up, ignore this email.</p>
</div>`))

	resetTemplate = template.Must(template.New("reset").Parse(`<div style="font-family:Arial,sans-serif;max-width:560px;margin:auto">
<h2>Password reset</h2>
<p>Hi {{.Name}}, we received a request to reset your password.</p>
<p><a href="{{.ResetLink}}" style="background:#111;color:#fff;padding:10px 18px;text-decoration:none">Reset password</a></p>
<p>The link is valid for {{.ExpiresIn}}. If you did not ask for this, you can ignore this email.</p>
</div>`))

	resetSuccessTemplate = template.Must(template.New("reset_success").Parse(`<div style="font-family:Arial,sans-serif;max-width:560px;margin:auto">
<h2>Password updated</h2>
<p>Hi {{.Name}}, your WriteSpace password has been changed.</p>
<p>If this was not you, reset your password immediately.</p>
</div>`))
)

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func OTPMessage(to string, data OTPData) (Message, error) {
	html, err := render(otpTemplate, data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: SubjectOTP, HTML: html}, nil
}

func ResetPasswordMessage(to string, data ResetPasswordData) (Message, error) {
	html, err := render(resetTemplate, data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: SubjectResetRequest, HTML: html}, nil
}

func ResetSuccessMessage(to string, data ResetSuccessData) (Message, error) {
	html, err := render(resetSuccessTemplate, data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: SubjectResetSuccess, HTML: html}, nil
}
