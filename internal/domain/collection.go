package domain

import (
	"time"
)

// Collection groups items.
type Collection struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	License     string    `json:"license,omitempty"`
	CDate       time.Time `json:"cdate"`
}

// Keyword is one entry of the keyword query surface.
type Keyword struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ParentID    string `json:"parentId,omitempty"`
	ParentTitle string `json:"parentTitle,omitempty"`
	Count       int64  `json:"count"`
}
