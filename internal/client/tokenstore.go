package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// TokenStore persiste el token de sesion vigente y el email asociado.
// Una carga sin datos devuelve cadenas vacias sin error.
type TokenStore interface {
	Load() (token, email string, err error)
	Save(token, email string) error
	Clear() error
}

// Claves fijas del estado persistido, espejo del almacenamiento del navegador.
type storedState struct {
	SessionToken string `json:"session_token"`
	UserEmail    string `json:"user_email"`
}

// FileTokenStore guarda el estado en un archivo JSON. Cualquier error de
// lectura se trata como "sin sesion"; nunca es fatal.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

// NewFileTokenStore crea un store sobre el path dado.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// DefaultTokenPath resuelve el archivo de sesion bajo el directorio de
// configuracion del usuario.
func DefaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".tutorgate-session.json"
	}
	return filepath.Join(dir, "tutorgate", "session.json")
}

func (s *FileTokenStore) Load() (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", "", nil
	}
	var state storedState
	if err := json.Unmarshal(data, &state); err != nil {
		return "", "", nil
	}
	return state.SessionToken, state.UserEmail, nil
}

func (s *FileTokenStore) Save(token, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(storedState{SessionToken: token, UserEmail: email})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// MemoryTokenStore implementa TokenStore en memoria para tests y contextos
// sin almacenamiento persistente.
type MemoryTokenStore struct {
	mu    sync.Mutex
	state storedState
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Load() (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SessionToken, s.state.UserEmail, nil
}

func (s *MemoryTokenStore) Save(token, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = storedState{SessionToken: token, UserEmail: email}
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = storedState{}
	return nil
}
