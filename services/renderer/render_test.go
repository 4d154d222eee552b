package main

import (
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBranding = Branding{Name: "Acme", LogoURL: "https://cdn.acme.com/logo.png", Locale: "en"}

func TestRenderSectionsPreservesOrder(t *testing.T) {
	sections := []map[string]interface{}{
		{"id": "s1", "type": "text", "content": map[string]interface{}{"body": "first"}},
		{"id": "s2", "type": "hero", "content": map[string]interface{}{"title": "second"}},
		{"id": "s3", "type": "text", "content": map[string]interface{}{"body": "third"}},
	}

	html := RenderSections(sections, testBranding)

	first := strings.Index(html, "first")
	second := strings.Index(html, "second")
	third := strings.Index(html, "third")
	require.True(t, first >= 0 && second >= 0 && third >= 0)
	assert.Less(t, first, second)
	assert.Less(t, second, third)
}

func TestRenderSectionsUnknownTypePlaceholder(t *testing.T) {
	sections := []map[string]interface{}{
		{"id": "s1", "type": "carousel"},
	}

	html := RenderSections(sections, testBranding)
	assert.Contains(t, html, `<!-- section s1: no renderer for type "carousel" -->`)
}

func TestRenderHeroFallsBackToBrandingName(t *testing.T) {
	sections := []map[string]interface{}{
		{"id": "s1", "type": "hero", "content": map[string]interface{}{}},
	}

	html := RenderSections(sections, testBranding)
	assert.Contains(t, html, "<h1>Acme</h1>")
	assert.Contains(t, html, `src="https://cdn.acme.com/logo.png"`)
}

func TestRenderTextEscapesContent(t *testing.T) {
	sections := []map[string]interface{}{
		{"id": "s1", "type": "text", "content": map[string]interface{}{"body": `<script>alert("x")</script>`}},
	}

	html := RenderSections(sections, testBranding)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRenderGallery(t *testing.T) {
	sections := []map[string]interface{}{
		{"id": "g1", "type": "gallery", "content": map[string]interface{}{
			"images": []interface{}{"https://cdn.acme.com/a.png", "https://cdn.acme.com/b.png"},
		}},
	}

	html := RenderSections(sections, testBranding)
	assert.Contains(t, html, `src="https://cdn.acme.com/a.png"`)
	assert.Contains(t, html, `src="https://cdn.acme.com/b.png"`)
}

func TestRenderLinksSkipsMalformedEntries(t *testing.T) {
	sections := []map[string]interface{}{
		{"id": "l1", "type": "links", "content": map[string]interface{}{
			"links": []interface{}{
				map[string]interface{}{"href": "/about", "label": "About"},
				"not a link object",
			},
		}},
	}

	html := RenderSections(sections, testBranding)
	assert.Contains(t, html, `<a href="/about">About</a>`)
	assert.NotContains(t, html, "not a link object")
}

func TestRenderPage(t *testing.T) {
	html, err := RenderPage(PageView{
		Lang:        "en",
		Title:       "Acme - Home",
		Description: "Welcome to Acme",
		Body:        template.HTML(`<section id="s1"></section>`),
	})
	require.NoError(t, err)

	assert.Contains(t, html, `<html lang="en">`)
	assert.Contains(t, html, "<title>Acme - Home</title>")
	assert.Contains(t, html, `<meta name="description" content="Welcome to Acme">`)
	assert.Contains(t, html, `<section id="s1"></section>`)
}

func TestRenderPageOmitsEmptyDescription(t *testing.T) {
	html, err := RenderPage(PageView{Lang: "en", Title: "Acme"})
	require.NoError(t, err)
	assert.NotContains(t, html, `name="description"`)
}
