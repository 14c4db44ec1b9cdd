package entity

import "time"

type FlashCategory string

const (
	FlashSuccess FlashCategory = "success"
	FlashInfo    FlashCategory = "info"
	FlashWarning FlashCategory = "warning"
	FlashDanger  FlashCategory = "danger"
)

type Flash struct {
	Category FlashCategory `json:"category"`
	Message  string        `json:"message"`
}

// Session is the server side state behind the session cookie. UserId 0 means anonymous.
type Session struct {
	Id        string    `json:"id"`
	UserId    uint      `json:"user_id"`
	Email     string    `json:"email"`
	Flashes   []Flash   `json:"flashes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) IsAuthenticated() bool {
	return s != nil && s.UserId != 0
}

func (s *Session) AddFlash(category FlashCategory, message string) {
	s.Flashes = append(s.Flashes, Flash{Category: category, Message: message})
}

// PopFlashes returns the pending flashes and clears them.
func (s *Session) PopFlashes() []Flash {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}
