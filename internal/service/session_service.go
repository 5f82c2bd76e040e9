package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"tutorgate/internal/domain"
)

// SessionService emite y resuelve tokens de sesion firmados con HS256.
// La expiracion queda fijada al emitir el token (no es deslizante): el claim
// exp y el TTL del SessionStore se calculan una sola vez en Issue.
type SessionService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	store  SessionStore
}

// SessionClaims son los claims embebidos en cada token de sesion.
type SessionClaims struct {
	UserID       string `json:"uid"`
	Email        string `json:"email"`
	DisplayName  string `json:"display_name,omitempty"`
	AuthProvider string `json:"auth_provider,omitempty"`
	TokenType    string `json:"typ"`
	jwt.RegisteredClaims
}

var ErrSessionInvalid = errors.New("session invalid")

// DefaultSessionTTL replica la expiracion de 7 dias del servidor original.
const DefaultSessionTTL = 7 * 24 * time.Hour

func NewSessionService(secret string, ttl time.Duration, store SessionStore) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if store == nil {
		store = NewMemorySessionStore()
	}
	return &SessionService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "tutorgate",
		store:  store,
	}
}

// Issue firma un token nuevo para el usuario y registra su jti en el store.
// Cada llamada genera un token distinto; nunca se reutilizan tokens previos.
func (s *SessionService) Issue(user domain.User) (domain.Session, error) {
	if len(s.secret) == 0 {
		return domain.Session{}, ErrSessionInvalid
	}
	now := time.Now().UTC()
	expiresAt := now.Add(s.ttl)
	jti := uuid.NewString()
	claims := SessionClaims{
		UserID:       user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		AuthProvider: user.AuthProvider,
		TokenType:    "session",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return domain.Session{}, err
	}
	if err := s.store.Store(jti, user.ID, s.ttl); err != nil {
		return domain.Session{}, err
	}
	return domain.Session{
		Token:     signed,
		User:      user,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

// Resolve devuelve la sesion asociada al token, o false si el token falta,
// esta malformado, vencio o fue revocado. Nunca devuelve error: un token que
// no se puede resolver significa "no autenticado", no una falla.
func (s *SessionService) Resolve(token string) (domain.Session, bool) {
	claims, err := s.parse(token)
	if err != nil {
		return domain.Session{}, false
	}
	if claims.TokenType != "session" || claims.ID == "" {
		return domain.Session{}, false
	}
	// El store es la autoridad sobre revocacion: el jti debe seguir vivo y
	// registrado para el mismo usuario que declaran los claims.
	ownerID, alive, err := s.store.Lookup(claims.ID)
	if err != nil || !alive || ownerID != claims.UserID {
		return domain.Session{}, false
	}
	user := domain.User{
		ID:           claims.UserID,
		Email:        claims.Email,
		DisplayName:  claims.DisplayName,
		AuthProvider: claims.AuthProvider,
	}
	return domain.Session{
		Token:     token,
		User:      user,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, true
}

// Revoke invalida el token del lado del servidor. Es idempotente: tokens ya
// invalidos, vencidos o malformados se tratan como exito para que el cliente
// siempre pueda limpiar su estado local.
func (s *SessionService) Revoke(token string) error {
	claims, err := s.parse(token)
	if err != nil || claims.ID == "" {
		return nil
	}
	return s.store.Revoke(claims.ID)
}

func (s *SessionService) parse(tokenString string) (SessionClaims, error) {
	if len(s.secret) == 0 || strings.TrimSpace(tokenString) == "" {
		return SessionClaims{}, ErrSessionInvalid
	}
	var claims SessionClaims
	parsed, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrSessionInvalid
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return SessionClaims{}, ErrSessionInvalid
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return SessionClaims{}, ErrSessionInvalid
	}
	return claims, nil
}
