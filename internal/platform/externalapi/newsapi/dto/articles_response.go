// Package dto defines data transfer objects for the NewsAPI responses.
package dto

import "time"

// ArticlesResponse is the envelope shared by /top-headlines and /everything.
type ArticlesResponse struct {
	Status       string    `json:"status"`
	Code         string    `json:"code,omitempty"`
	Message      string    `json:"message,omitempty"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

type Article struct {
	Source      Source    `json:"source"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}

type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
