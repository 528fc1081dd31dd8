package mail

import (
	"bytes"
	"html/template"
)

type codeMailData struct {
	Code          string
	Purpose       string
	ExpiryMinutes int
}

func purposeLabel(purpose string) string {
	switch purpose {
	case "LOGIN":
		return "Sign in"
	case "PASSWORD_RESET":
		return "Password reset"
	case "VERIFICATION":
		return "Verification"
	default:
		return purpose
	}
}

const codeMailTpl = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
</head>
<body style="background-color:#fff;margin:0 auto;font-family:ui-sans-serif,system-ui,-apple-system,BlinkMacSystemFont,Segoe UI,Roboto,Helvetica Neue,Arial,Noto Sans,sans-serif;padding:.5rem">
  <table align="center" width="100%" role="presentation" cellspacing="0" cellpadding="0" border="0" style="max-width:100%;border-width:1px;border-style:solid;border-radius:.25rem;margin:40px auto;padding:20px;width:550px;border-color:rgb(14,165,233)">
    <tbody>
      <tr><td>
        <h1 style="color:#000;font-size:18px;font-weight:400;text-align:center;margin:30px 0">{{.Purpose}} verification code</h1>
        <table align="center" width="100%" role="presentation" border="0" cellpadding="0" cellspacing="0" style="background-color:rgb(243,244,246);border-radius:.75rem;padding:0 1rem">
          <tbody><tr><td><p style="font-size:28px;letter-spacing:.5rem;line-height:48px;margin:16px 0;color:rgb(17,24,39);text-align:center;font-weight:600">{{.Code}}</p></td></tr></tbody>
        </table>
        <p style="font-size:13px;line-height:22px;margin:16px 0;color:rgb(107,114,128);text-align:center">This code expires in {{.ExpiryMinutes}} minutes. If you did not request it, you can safely ignore this email.</p>
      </td></tr>
    </tbody>
  </table>
</body>
</html>`

var codeMail = template.Must(template.New("code").Parse(codeMailTpl))

func renderCodeMail(data codeMailData) (string, error) {
	var buf bytes.Buffer
	if err := codeMail.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
