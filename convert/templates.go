package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"cradoc/config"
	"cradoc/report"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context      string
	Title        string
	Version      string
	Revision     string
	Manufacturer string
	Date         string
	Language     string
	Format       string
	Source       string
}

func buildValues(p *report.Payload, name config.TemplateFieldName, src, lang string) Values {
	v := Values{
		Context:  string(name),
		Language: lang,
		Format:   p.Format.String(),
		Source:   strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
	}
	if c := p.Cover; c != nil {
		v.Title = strings.TrimSpace(c.Title)
		v.Version = strings.TrimSpace(c.Version)
		v.Revision = strings.TrimSpace(c.Revision)
		v.Manufacturer = strings.TrimSpace(c.Manufacturer)
		v.Date = strings.TrimSpace(c.Date)
	}
	return v
}

func expandTemplate(p *report.Payload, name config.TemplateFieldName, field, src, lang string) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, buildValues(p, name, src, lang)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
