package query

import "context"

// Service define la capacidad de responder preguntas en lenguaje natural.
// Es opaca mas alla de su contrato HTTP; se elige una implementacion al
// arrancar (Live o Unavailable) y no se reasigna en runtime.
type Service interface {
	Ask(ctx context.Context, question, contextHint string) (Answer, error)
	Healthy(ctx context.Context) bool
}

// Answer es la respuesta del servicio de consultas.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []Source `json:"sources,omitempty"`
}

// Source referencia el material del que salio una respuesta.
type Source struct {
	URL string `json:"url"`
}
