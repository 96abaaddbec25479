package redis

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	sessionKeyPrefix = "session:"
	sessionKeyBytes  = 32
)

var (
	// ErrSessionNotFound is returned when a session id is unknown or has expired.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidSessionID rejects blank ids before any round trip.
	ErrInvalidSessionID = errors.New("session id is required")

	errSealedTooShort = errors.New("sealed session payload too short")
)

var (
	setSessionValue    = Set
	getSessionValue    = Get
	delSessionValue    = Del
	marshalSessionJSON = json.Marshal
)

// SessionData is what a login session resolves to.
type SessionData struct {
	SubjectID    string `json:"subjectId"`
	Role         string `json:"role"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// SessionStore keeps login sessions in Redis sealed with AES-256-GCM.
// The session id is bound as associated data, so a payload copied under
// another key fails to open.
type SessionStore struct {
	encryptionKey []byte
}

// NewSessionStore parses a 64 character hex key.
func NewSessionStore(encryptionKeyHex string) (*SessionStore, error) {
	key, err := hex.DecodeString(strings.TrimSpace(encryptionKeyHex))
	if err != nil {
		return nil, fmt.Errorf("session key is not hex: %w", err)
	}
	if len(key) != sessionKeyBytes {
		return nil, fmt.Errorf("session key must be %d bytes, got %d", sessionKeyBytes, len(key))
	}
	return &SessionStore{encryptionKey: key}, nil
}

// CreateSession seals data under sessionID for the given lifetime.
func (s *SessionStore) CreateSession(ctx context.Context, sessionID string, data *SessionData, expiration time.Duration) error {
	if sessionID == "" {
		return ErrInvalidSessionID
	}
	raw, err := marshalSessionJSON(data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	sealed, err := s.seal(sessionID, raw)
	if err != nil {
		return err
	}
	return setSessionValue(ctx, sessionKeyPrefix+sessionID, sealed, expiration)
}

// GetSession opens the session stored under sessionID.
func (s *SessionStore) GetSession(ctx context.Context, sessionID string) (*SessionData, error) {
	if sessionID == "" {
		return nil, ErrInvalidSessionID
	}
	sealed, err := getSessionValue(ctx, sessionKeyPrefix+sessionID)
	if IsNil(err) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	raw, err := s.open(sessionID, sealed)
	if err != nil {
		return nil, err
	}

	var data SessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &data, nil
}

// DeleteSession ends a session. Unknown ids are not an error.
func (s *SessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidSessionID
	}
	return delSessionValue(ctx, sessionKeyPrefix+sessionID)
}

func (s *SessionStore) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (s *SessionStore) seal(sessionID string, plaintext []byte) (string, error) {
	gcm, err := s.aead()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize(), gcm.NonceSize()+len(plaintext)+gcm.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	out := gcm.Seal(nonce, nonce, plaintext, []byte(sessionID))
	return base64.RawStdEncoding.EncodeToString(out), nil
}

func (s *SessionStore) open(sessionID, sealed string) ([]byte, error) {
	buf, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil {
		return nil, fmt.Errorf("decode sealed session: %w", err)
	}
	gcm, err := s.aead()
	if err != nil {
		return nil, err
	}
	n := gcm.NonceSize()
	if len(buf) < n+gcm.Overhead() {
		return nil, errSealedTooShort
	}
	return gcm.Open(nil, buf[:n], buf[n:], []byte(sessionID))
}
