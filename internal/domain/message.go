package domain

import "time"

// Roles de los participantes de una conversacion.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message es un turno dentro de la conversacion de un ChatSession.
type Message struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
