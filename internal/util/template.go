package util

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// RenderTemplate substitutes template variables using text/template. Prompt
// text passes through untouched when it carries no template markers, so plain
// strings are cheap. Missing keys are an error: a prompt silently rendered
// with a hole in it is worse than a loud failure.
func RenderTemplate(text string, vars map[string]any) (string, error) {
	if !strings.Contains(text, "{{") { // fast path: no template markers
		return text, nil
	}

	tmpl, err := template.New("prompt").Option("missingkey=error").Funcs(template.FuncMap{
		"join": strings.Join,
		"trim": strings.TrimSpace,
		"indent": func(prefix, s string) string {
			lines := strings.Split(s, "\n")
			for i, line := range lines {
				lines[i] = prefix + line
			}
			return strings.Join(lines, "\n")
		},
	}).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}

	return buf.String(), nil
}

// MustRenderTemplate is RenderTemplate for templates owned by this module,
// where a render failure is a programming error.
func MustRenderTemplate(text string, vars map[string]any) string {
	out, err := RenderTemplate(text, vars)
	if err != nil {
		panic(err)
	}
	return out
}
