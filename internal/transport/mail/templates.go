package mail

import (
	"bytes"
	"html/template"
	"strings"
)

const (
	WelcomeSubject       = "Bienvenue @Foodies"
	PasswordResetSubject = "Réinitialisez Votre Mot de Passe"
)

var layoutTemplate = template.Must(template.New("layout").Parse(`<div style="border: 2px solid black; border-radius: 10px; padding: 1.3rem; display: grid; place-items: center; font-family: sans-serif; line-height: 1.5; font-size: 22px;">
<h2>Hello {{.Username}} !</h2>
<h4>{{.Content}}</h4>
<p>A très vite {{.Username}},</p>
<p>😘😘, {{.Signature}}</p>
</div>
`))

var welcomeTemplate = template.Must(template.New("welcome").Parse(`Merci pour votre inscription ! Je suis heureux de vous compter parmi nous !<br>
Je suis {{.Signature}} et je serai votre interlocuteur pour toutes vos questions éventuelles 😎.<br><br>
En attendant, j'espère vous retrouver rapidement sur la plate-forme pour partager vos différentes recettes.<br><br>
Oui, oui, je sais que vous aimez bien cuisiner !`))

var resetTemplate = template.Must(template.New("reset").Parse(`Il parait que vous avez oublié votre mot de passe.<br><br>
En même temps, c'est tellement compliqué de retenir tous ces mots de passe 😊.<br><br>
Pour vous simplifier la vie, il vous suffit de cliquer sur ce <a href="{{.ResetURL}}">lien</a> dans l'heure qui suit, pour en regénérer un autre.`))

// RenderMessage wraps already escaped content in the greeting and sign-off
// shared by every outgoing email.
func RenderMessage(username, signature string, content template.HTML) (string, error) {
	var buf bytes.Buffer
	err := layoutTemplate.Execute(&buf, struct {
		Username  string
		Signature string
		Content   template.HTML
	}{username, signature, content})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func WelcomeEmail(username, signature string) (string, error) {
	content, err := execute(welcomeTemplate, struct{ Signature string }{signature})
	if err != nil {
		return "", err
	}
	return RenderMessage(username, signature, content)
}

func PasswordResetEmail(username, resetURL, signature string) (string, error) {
	content, err := execute(resetTemplate, struct{ ResetURL string }{resetURL})
	if err != nil {
		return "", err
	}
	return RenderMessage(username, signature, content)
}

// ResetURL builds the frontend link for token.
func ResetURL(frontendURL, token string) string {
	return strings.TrimRight(strings.TrimSpace(frontendURL), "/") + "/reset/" + token
}

func execute(t *template.Template, data interface{}) (template.HTML, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
