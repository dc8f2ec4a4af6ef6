// Package models defines core data structures for articles, requests, and responses.
package models

import "time"

// Article is a stored encyclopedia article. It is read-only input to the
// summarizer and corpus assembler.
type Article struct {
	ID        string                 `json:"id" yaml:"id,omitempty"`
	Title     string                 `json:"title" yaml:"title"`
	URL       string                 `json:"url" yaml:"url,omitempty"`
	Source    string                 `json:"source,omitempty" yaml:"source,omitempty"`
	Content   Content                `json:"content" yaml:"content"`
	Images    Images                 `json:"images" yaml:"images,omitempty"`
	Links     []string               `json:"links,omitempty" yaml:"links,omitempty"`
	Info      map[string]interface{} `json:"info,omitempty" yaml:"info,omitempty"`
	Hash      string                 `json:"hash,omitempty" yaml:"hash,omitempty"`
	CreatedAt time.Time              `json:"created_at" yaml:"-"`
	UpdatedAt time.Time              `json:"updated_at" yaml:"-"`
}

// Content is the text of an article: a lead summary and its sections.
type Content struct {
	Summary  string    `json:"summary" yaml:"summary"`
	Sections []Section `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// Section is a titled part of an article. Items are its sub-sections.
type Section struct {
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
	Items   []Item `json:"items,omitempty" yaml:"items,omitempty"`
}

// Item is a titled sub-section.
type Item struct {
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
}

// Images holds the main image and every image URL of an article.
type Images struct {
	Main string   `json:"main,omitempty" yaml:"main,omitempty"`
	All  []string `json:"all,omitempty" yaml:"all,omitempty"`
}

// ArticleView is the public shape of an article returned by the article operation.
type ArticleView struct {
	Title   string  `json:"title"`
	Image   string  `json:"image,omitempty"`
	Content Content `json:"content"`
}

// View returns the public shape of a.
func (a *Article) View() *ArticleView {
	return &ArticleView{Title: a.Title, Image: a.Images.Main, Content: a.Content}
}
