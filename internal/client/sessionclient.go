package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"tutorgate/internal/domain"
)

// ErrAuthRejected indica que el gateway rechazo las credenciales o el registro.
// El caller (la UI) decide como presentarlo; es recuperable.
var ErrAuthRejected = errors.New("auth rejected")

// SessionClient traduce acciones de UI en llamadas al gateway y mantiene la
// proyeccion del usuario autenticado que consume la capa de presentacion.
type SessionClient struct {
	baseURL string
	client  *http.Client
	tokens  TokenStore
	logger  *zap.Logger

	mu      sync.Mutex
	current *domain.User
	loading atomic.Bool
}

// NewSessionClient crea el cliente de sesion contra el gateway dado.
func NewSessionClient(baseURL string, tokens TokenStore, logger *zap.Logger, httpClient *http.Client) *SessionClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
		tokens:  tokens,
		logger:  logger,
	}
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
	Error string      `json:"error"`
}

// SignIn autentica con email y password; en exito persiste el token y
// actualiza el usuario en memoria.
func (s *SessionClient) SignIn(ctx context.Context, email, password string) (domain.User, error) {
	return s.authenticate(ctx, "/auth/sign-in", map[string]string{
		"email":    email,
		"password": password,
	})
}

// SignUp registra una cuenta nueva; en exito se comporta como SignIn.
func (s *SessionClient) SignUp(ctx context.Context, email, password, name string) (domain.User, error) {
	return s.authenticate(ctx, "/auth/sign-up", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	})
}

func (s *SessionClient) authenticate(ctx context.Context, path string, body map[string]string) (domain.User, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return domain.User{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return domain.User{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.User{}, fmt.Errorf("gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	parsed, err := decodeAuthResponse(resp.Body)
	if err != nil {
		return domain.User{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if parsed.Error != "" {
			return domain.User{}, fmt.Errorf("%w: %s", ErrAuthRejected, parsed.Error)
		}
		return domain.User{}, fmt.Errorf("%w: status %d", ErrAuthRejected, resp.StatusCode)
	}
	if parsed.Token == "" {
		return domain.User{}, fmt.Errorf("%w: missing token", ErrAuthRejected)
	}

	if err := s.tokens.Save(parsed.Token, parsed.User.Email); err != nil {
		// Sin almacenamiento persistente la sesion vive solo en memoria.
		s.logger.Warn("token persist failed", zap.Error(err))
	}
	s.setCurrent(&parsed.User)
	return parsed.User, nil
}

// SignOut limpia siempre el estado local, falle o no la llamada remota:
// el logout local nunca queda bloqueado por condiciones de red.
func (s *SessionClient) SignOut(ctx context.Context) {
	token, _, _ := s.tokens.Load()

	if err := s.tokens.Clear(); err != nil {
		s.logger.Warn("token clear failed", zap.Error(err))
	}
	s.setCurrent(nil)

	if token == "" {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/auth/sign-out", nil)
	if err != nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("remote sign-out failed", zap.Error(err))
		return
	}
	resp.Body.Close()
}

// GetSession devuelve el usuario autenticado segun el gateway, o nil si no
// hay sesion. Sin token persistido no hace llamada de red. El resultado del
// servidor es autoritativo: un token revocado o vencido deja el estado local
// en nil aunque antes pareciera haber sesion.
func (s *SessionClient) GetSession(ctx context.Context) (*domain.User, error) {
	s.loading.Store(true)
	defer s.loading.Store(false)

	token, _, _ := s.tokens.Load()
	if token == "" {
		s.setCurrent(nil)
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/auth/session", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		// Red caida: no se puede confirmar ni negar; se reporta sin sesion
		// pero el token persistido queda para el proximo intento.
		s.logger.Warn("session check failed", zap.Error(err))
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Solo un 401 del gateway es autoritativo: el token ya no vale
		// y se descarta tambien localmente.
		if err := s.tokens.Clear(); err != nil {
			s.logger.Warn("token clear failed", zap.Error(err))
		}
		s.setCurrent(nil)
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		// Respuestas transitorias (502, 503) no prueban nada sobre la
		// sesion: se reporta sin usuario pero el token persiste.
		s.logger.Warn("session check returned transient status",
			zap.Int("status", resp.StatusCode))
		return nil, nil
	}

	var parsed struct {
		User domain.User `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	s.setCurrent(&parsed.User)
	user := parsed.User
	return &user, nil
}

// IsLoading indica si hay una verificacion de sesion en curso.
func (s *SessionClient) IsLoading() bool {
	return s.loading.Load()
}

// CurrentUser devuelve la proyeccion en memoria del usuario autenticado.
func (s *SessionClient) CurrentUser() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	user := *s.current
	return &user
}

// Token expone el token persistido para adjuntarlo a requests autenticados.
func (s *SessionClient) Token() string {
	token, _, _ := s.tokens.Load()
	return token
}

func (s *SessionClient) setCurrent(user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = user
}

func decodeAuthResponse(body io.Reader) (authResponse, error) {
	var parsed authResponse
	data, err := io.ReadAll(body)
	if err != nil {
		return authResponse{}, err
	}
	if len(data) == 0 {
		return authResponse{}, nil
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return authResponse{}, fmt.Errorf("decode auth response: %w", err)
	}
	return parsed, nil
}
