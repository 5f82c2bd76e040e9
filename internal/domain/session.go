package domain

import "time"

// Session es la prueba de identidad emitida por el gateway.
// El token es opaco para el cliente; su expiracion queda fijada al emitirse.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired indica si la sesion ya vencio respecto al instante dado.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
