package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"tutorgate/internal/domain"
	"tutorgate/internal/query"
)

// FallbackAnswer es la respuesta fija que se agrega al transcript cuando el
// backend no esta disponible.
const FallbackAnswer = "I'm the AI assistant. It seems the backend server is not available right now. Please try again in a moment."

// ChatSession mantiene el transcript de una conversacion y su ciclo de
// request/response. Ante fallas del backend degrada a una respuesta local
// en vez de exponer el error crudo en la conversacion.
type ChatSession struct {
	querier query.Service
	logger  *zap.Logger

	mu       sync.Mutex
	messages []domain.Message
	typing   bool
}

// NewChatSession crea una conversacion vacia sobre la capacidad de consulta dada.
func NewChatSession(querier query.Service, logger *zap.Logger) *ChatSession {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatSession{
		querier: querier,
		logger:  logger,
	}
}

// Send convierte un texto del usuario en un intercambio del transcript.
// Texto vacio tras recortar espacios es un no-op. El turno del usuario se
// agrega antes de confirmar nada con la red; despues se agrega exactamente
// uno de {respuesta real, respuesta fallback} y nunca se revierte el primero.
func (s *ChatSession) Send(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	s.mu.Lock()
	s.messages = append(s.messages, domain.Message{
		Sender:    domain.RoleUser,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
	s.typing = true
	s.mu.Unlock()

	// El flag typing se libera en todo camino de salida.
	defer func() {
		s.mu.Lock()
		s.typing = false
		s.mu.Unlock()
	}()

	answer, err := s.querier.Ask(ctx, text, "")
	reply := answer.Text
	if err != nil {
		s.logger.Warn("query failed, using fallback", zap.Error(err))
		reply = FallbackAnswer
	}

	s.mu.Lock()
	s.messages = append(s.messages, domain.Message{
		Sender:    domain.RoleAssistant,
		Text:      reply,
		CreatedAt: time.Now().UTC(),
	})
	s.mu.Unlock()
}

// Typing indica si hay una llamada al backend en curso.
func (s *ChatSession) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}

// Transcript devuelve una copia del transcript en orden de llegada.
func (s *ChatSession) Transcript() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Last devuelve el ultimo mensaje del transcript, si existe.
func (s *ChatSession) Last() (domain.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return domain.Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}
