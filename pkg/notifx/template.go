package notifx

import (
	"bytes"
	htmltemplate "html/template"
	"sync"
	"text/template"
)

// Rendered is the output of a notice template.
type Rendered struct {
	Subject  string
	HTMLBody string
	TextBody string
}

// noticeTemplate renders one notice. The HTML part escapes its data; the
// subject and text parts do not.
type noticeTemplate struct {
	subject *template.Template
	html    *htmltemplate.Template
	text    *template.Template
}

// Templates holds the notice templates by name.
type Templates struct {
	mu     sync.RWMutex
	byName map[string]noticeTemplate
}

func NewTemplates() *Templates {
	return &Templates{byName: map[string]noticeTemplate{}}
}

// Register parses the three parts of a notice. text may be empty.
func (r *Templates) Register(name, subject, html, text string) error {
	var (
		t   noticeTemplate
		err error
	)
	if t.subject, err = template.New(name + ".subject").Parse(subject); err != nil {
		return notifxErrors.NewWithCause(ErrTemplateParse, err).WithDetail("template", name).WithDetail("part", "subject")
	}
	if t.html, err = htmltemplate.New(name + ".html").Parse(html); err != nil {
		return notifxErrors.NewWithCause(ErrTemplateParse, err).WithDetail("template", name).WithDetail("part", "html")
	}
	if text != "" {
		if t.text, err = template.New(name + ".text").Parse(text); err != nil {
			return notifxErrors.NewWithCause(ErrTemplateParse, err).WithDetail("template", name).WithDetail("part", "text")
		}
	}

	r.mu.Lock()
	r.byName[name] = t
	r.mu.Unlock()
	return nil
}

// Render executes every part of the named notice with data.
func (r *Templates) Render(name string, data any) (Rendered, error) {
	r.mu.RLock()
	t, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return Rendered{}, notifxErrors.New(ErrTemplateNotFound).WithDetail("template", name)
	}

	var out Rendered
	var buf bytes.Buffer

	render := func(part string, exec func() error) (string, error) {
		buf.Reset()
		if err := exec(); err != nil {
			return "", notifxErrors.NewWithCause(ErrTemplateRender, err).WithDetail("template", name).WithDetail("part", part)
		}
		return buf.String(), nil
	}

	var err error
	if out.Subject, err = render("subject", func() error { return t.subject.Execute(&buf, data) }); err != nil {
		return Rendered{}, err
	}
	if out.HTMLBody, err = render("html", func() error { return t.html.Execute(&buf, data) }); err != nil {
		return Rendered{}, err
	}
	if t.text != nil {
		if out.TextBody, err = render("text", func() error { return t.text.Execute(&buf, data) }); err != nil {
			return Rendered{}, err
		}
	}
	return out, nil
}
