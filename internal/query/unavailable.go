package query

import (
	"context"
	"errors"
)

type unavailable struct {
	reason string
}

// NewUnavailable devuelve un Service que siempre falla con la razon dada.
// Se usa cuando el QueryService no esta configurado o no responde al arrancar.
func NewUnavailable(reason string) Service {
	return &unavailable{reason: reason}
}

func (u *unavailable) Ask(_ context.Context, _, _ string) (Answer, error) {
	if u.reason == "" {
		return Answer{}, errors.New("query service unavailable")
	}
	return Answer{}, errors.New(u.reason)
}

func (u *unavailable) Healthy(_ context.Context) bool {
	return false
}
