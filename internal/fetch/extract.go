package fetch

import (
	"strings"

	"github.com/hyperjump/seshat/internal/models"
)

// ParseExtract splits a plain-text extract in wiki section format into a
// summary and sections. Text before the first "== H ==" heading is the
// summary, "=== H ===" starts an item of the current section, and deeper
// headings are folded into the current item.
func ParseExtract(text string) models.Content {
	var (
		content models.Content
		summary []string
		body    []string
		section *models.Section
		item    *models.Item
	)

	flush := func() {
		joined := strings.TrimSpace(strings.Join(body, "\n"))
		body = body[:0]
		switch {
		case item != nil:
			item.Content = joinNonEmpty(item.Content, joined)
		case section != nil:
			section.Content = joinNonEmpty(section.Content, joined)
		}
	}
	closeItem := func() {
		if item != nil && section != nil {
			section.Items = append(section.Items, *item)
		}
		item = nil
	}
	closeSection := func() {
		closeItem()
		if section != nil {
			content.Sections = append(content.Sections, *section)
		}
		section = nil
	}

	for _, line := range strings.Split(text, "\n") {
		level, title, ok := heading(line)
		if !ok {
			if section == nil {
				summary = append(summary, line)
			} else {
				body = append(body, line)
			}
			continue
		}
		flush()
		switch {
		case level == 2:
			closeSection()
			section = &models.Section{Title: title}
		case level == 3 && section != nil:
			closeItem()
			item = &models.Item{Title: title}
		case section == nil:
			// A sub-heading before any section is kept with the summary.
			summary = append(summary, title)
		default:
			body = append(body, title)
		}
	}
	flush()
	closeSection()

	content.Summary = strings.TrimSpace(strings.Join(summary, "\n"))
	return content
}

// heading reports whether line is a "== Title ==" style heading and returns
// its level (number of '=' on each side) and trimmed title.
func heading(line string) (int, string, bool) {
	s := strings.TrimSpace(line)
	if len(s) < 4 || s[0] != '=' || s[len(s)-1] != '=' {
		return 0, "", false
	}
	left := len(s) - len(strings.TrimLeft(s, "="))
	right := len(s) - len(strings.TrimRight(s, "="))
	level := min(left, right)
	if level < 2 || left >= len(s) {
		return 0, "", false
	}
	title := strings.TrimSpace(strings.Trim(s, "="))
	if title == "" {
		return 0, "", false
	}
	return level, title, true
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "\n" + b
}
