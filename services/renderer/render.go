package main

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/communityos/community-platform/shared/models"
)

// Branding is the marketplace configuration context passed to every section
// renderer.
type Branding struct {
	Name    string
	LogoURL string
	Locale  string
}

// RenderSections composes the HTML body for an ordered section sequence.
// Sections render strictly in array order; a section whose type has no
// registered renderer yields a harmless placeholder comment instead of an
// error.
func RenderSections(sections []map[string]interface{}, branding Branding) string {
	var b strings.Builder
	for _, entry := range sections {
		section := models.ParseSection(entry)
		b.WriteString(renderSection(section, branding))
	}
	return b.String()
}

func renderSection(section models.Section, branding Branding) string {
	switch section.Type {
	case "Hero", "hero":
		return renderHero(section, branding)
	case "Text", "text":
		return renderText(section)
	case "Gallery", "gallery":
		return renderGallery(section)
	case "ContactForm", "contact_form":
		return renderContactForm(section, branding)
	case "Links", "links":
		return renderLinks(section)
	default:
		return fmt.Sprintf("<!-- section %s: no renderer for type %q -->\n",
			template.HTMLEscapeString(section.ID), template.HTMLEscapeString(section.Type))
	}
}

func contentString(section models.Section, key string) string {
	if v, ok := section.Content[key].(string); ok {
		return v
	}
	return ""
}

func renderHero(section models.Section, branding Branding) string {
	title := contentString(section, "title")
	if title == "" {
		title = branding.Name
	}
	subtitle := contentString(section, "subtitle")

	var b strings.Builder
	b.WriteString(`<section class="hero" id="` + template.HTMLEscapeString(section.ID) + `">`)
	if branding.LogoURL != "" {
		b.WriteString(`<img class="hero-logo" src="` + template.HTMLEscapeString(branding.LogoURL) + `" alt="">`)
	}
	b.WriteString(`<h1>` + template.HTMLEscapeString(title) + `</h1>`)
	if subtitle != "" {
		b.WriteString(`<p>` + template.HTMLEscapeString(subtitle) + `</p>`)
	}
	b.WriteString("</section>\n")
	return b.String()
}

func renderText(section models.Section) string {
	body := contentString(section, "body")
	return `<section class="text" id="` + template.HTMLEscapeString(section.ID) + `"><p>` +
		template.HTMLEscapeString(body) + "</p></section>\n"
}

func renderGallery(section models.Section) string {
	var b strings.Builder
	b.WriteString(`<section class="gallery" id="` + template.HTMLEscapeString(section.ID) + `">`)
	if images, ok := section.Content["images"].([]interface{}); ok {
		for _, img := range images {
			if url, ok := img.(string); ok {
				b.WriteString(`<img src="` + template.HTMLEscapeString(url) + `" alt="">`)
			}
		}
	}
	b.WriteString("</section>\n")
	return b.String()
}

func renderContactForm(section models.Section, branding Branding) string {
	heading := contentString(section, "heading")
	if heading == "" {
		heading = "Contact " + branding.Name
	}
	return `<section class="contact-form" id="` + template.HTMLEscapeString(section.ID) + `"><h2>` +
		template.HTMLEscapeString(heading) +
		`</h2><form method="post"><input name="email" type="email"><textarea name="message"></textarea>` +
		`<button type="submit">Send</button></form></section>` + "\n"
}

func renderLinks(section models.Section) string {
	var b strings.Builder
	b.WriteString(`<nav class="links" id="` + template.HTMLEscapeString(section.ID) + `">`)
	if links, ok := section.Content["links"].([]interface{}); ok {
		for _, raw := range links {
			link, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			href, _ := link["href"].(string)
			label, _ := link["label"].(string)
			b.WriteString(`<a href="` + template.HTMLEscapeString(href) + `">` +
				template.HTMLEscapeString(label) + `</a>`)
		}
	}
	b.WriteString("</nav>\n")
	return b.String()
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{if .Description}}<meta name="description" content="{{.Description}}">{{end}}
</head>
<body>
{{.Topbar}}
{{.Body}}
{{.Footer}}
</body>
</html>
`))

// PageView is the full-page template context. Topbar, Body and Footer carry
// HTML already escaped per section.
type PageView struct {
	Lang        string
	Title       string
	Description string
	Topbar      template.HTML
	Body        template.HTML
	Footer      template.HTML
}

// RenderPage assembles the complete HTML document.
func RenderPage(view PageView) (string, error) {
	var b strings.Builder
	if err := pageTemplate.Execute(&b, view); err != nil {
		return "", fmt.Errorf("failed to render page: %w", err)
	}
	return b.String(), nil
}
