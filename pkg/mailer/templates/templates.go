package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

// Template names understood by Render.
const (
	Welcome        = "welcome"
	ProfileUpdated = "profile_updated"
)

var templates = map[string]*template.Template{
	Welcome: template.Must(template.New(Welcome).Parse(`
<html><body>
<p>Hi {{.Name}},</p>
<p>Your knowledge service account is ready. Sign in with {{.Email}} to start
building collections.</p>
</body></html>`)),
	ProfileUpdated: template.Must(template.New(ProfileUpdated).Parse(`
<html><body>
<p>Hi {{.Name}},</p>
<p>Your profile was updated. If this wasn't you, contact support.</p>
</body></html>`)),
}

var subjects = map[string]string{
	Welcome:        "Welcome to the knowledge service",
	ProfileUpdated: "Your profile was updated",
}

// Render returns the subject and HTML body for a named template.
func Render(name string, data map[string]any) (subject, html string, err error) {
	tpl, ok := templates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return subjects[name], buf.String(), nil
}
