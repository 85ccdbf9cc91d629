package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/zeptools/pledgedesk/db/kvdb"
	"github.com/zeptools/pledgedesk/sec"
)

var ErrNoSession = errors.New("no valid web session")

type Manager struct {
	Conf              Conf
	Cipher            *sec.XChaCha20Poly1305Cipher
	AppName           string // for session key, etc.
	BackendKVDBClient kvdb.Client
	Now               func() time.Time

	// OnEnd runs after a session is destroyed or found past its hard cap
	OnEnd func(sessionID string)
}

func NewManager(appName string, conf Conf, kv kvdb.Client) (*Manager, error) {
	conf = conf.WithDefaults()
	var (
		key []byte
		err error
	)
	if conf.EncryptionKey == "" {
		log.Printf("[WARN][SESSION] no enckey configured, using a random per-process key")
		key, err = sec.GenerateKey()
	} else {
		key, err = sec.ParseKey(conf.EncryptionKey)
	}
	if err != nil {
		return nil, fmt.Errorf("session key: %w", err)
	}
	cipher, err := sec.NewXChaCha20Poly1305Cipher(key)
	if err != nil {
		return nil, err
	}
	return &Manager{
		Conf:              conf,
		Cipher:            cipher,
		AppName:           appName,
		BackendKVDBClient: kv,
		Now:               time.Now,
	}, nil
}

func (m *Manager) WebSessionIDToKVDBKey(sessionID string) string {
	return m.AppName + "_wsession:" + sessionID
}

func (m *Manager) sliding() time.Duration {
	return time.Duration(m.Conf.ExpireSliding) * time.Second
}

// Sliding is the idle timeout. Workspaces idle longer are swept.
func (m *Manager) Sliding() time.Duration {
	return m.sliding()
}

// Create starts a session for username and sets its cookie
func (m *Manager) Create(ctx context.Context, w http.ResponseWriter, username string) (*Info, error) {
	id, err := sec.GenerateOpaqueToken(16) // 128-bit
	if err != nil {
		return nil, err
	}
	info := &Info{ID: id, Username: username, CreatedAt: m.Now().Unix()}
	val, err := json.Marshal(info)
	if err != nil {
		return nil, err
	}
	if err = m.BackendKVDBClient.Set(ctx, m.WebSessionIDToKVDBKey(id), string(val), m.sliding()); err != nil {
		return nil, fmt.Errorf("store web session: %w", err)
	}
	if err = m.SetWebSessionCookie(w, id); err != nil {
		return nil, err
	}
	return info, nil
}

// Lookup resolves the request's cookie and slides the session's expiration
func (m *Manager) Lookup(ctx context.Context, r *http.Request) (*Info, error) {
	id, err := m.sessionIDFromCookie(r)
	if err != nil {
		return nil, ErrNoSession
	}
	key := m.WebSessionIDToKVDBKey(id)
	val, found, err := m.BackendKVDBClient.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load web session: %w", err)
	}
	if !found {
		return nil, ErrNoSession
	}
	info := &Info{}
	if err = json.Unmarshal([]byte(val), info); err != nil {
		return nil, fmt.Errorf("decode web session: %w", err)
	}
	info.ID = id
	if m.Now().Unix()-info.CreatedAt >= int64(m.Conf.ExpireHardcap) {
		_, _ = m.BackendKVDBClient.Delete(ctx, key)
		m.ended(id)
		return nil, ErrNoSession
	}
	if _, err = m.BackendKVDBClient.Expire(ctx, key, m.sliding()); err != nil {
		return nil, fmt.Errorf("slide web session: %w", err)
	}
	return info, nil
}

// Destroy ends the request's session, if any, and removes the cookie
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	m.RemoveWebSessionCookie(w)
	id, err := m.sessionIDFromCookie(r)
	if err != nil {
		return nil
	}
	if _, err = m.BackendKVDBClient.Delete(ctx, m.WebSessionIDToKVDBKey(id)); err != nil {
		return err
	}
	m.ended(id)
	return nil
}

// Alive reports whether the session still exists in the backend
func (m *Manager) Alive(ctx context.Context, sessionID string) (bool, error) {
	return m.BackendKVDBClient.Exists(ctx, m.WebSessionIDToKVDBKey(sessionID))
}

func (m *Manager) ended(id string) {
	if m.OnEnd != nil {
		m.OnEnd(id)
	}
}

func (m *Manager) sessionIDFromCookie(r *http.Request) (string, error) {
	c, err := r.Cookie(m.Conf.CookieName)
	if err != nil {
		return "", err
	}
	id, err := m.Cipher.Open(c.Value, []byte(m.Conf.CookieName))
	if err != nil {
		return "", err
	}
	return string(id), nil
}

func (m *Manager) SetWebSessionCookie(w http.ResponseWriter, webSessionId string) error {
	encWebSessionId, err := m.Cipher.Seal([]byte(webSessionId), []byte(m.Conf.CookieName))
	if err != nil {
		return fmt.Errorf("failed to encrypt web login session id. %v", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.Conf.CookieName,
		Value:    encWebSessionId,
		Path:     "/",  // Subpaths will get this cookie.
		HttpOnly: true, // JS cannot read it
		Secure:   m.Conf.CookieSecure,
		MaxAge:   m.Conf.ExpireHardcap,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

func (m *Manager) RemoveWebSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.Conf.CookieName,
		Path:     "/",
		MaxAge:   -1, // Delete
		HttpOnly: true,
		Secure:   m.Conf.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
