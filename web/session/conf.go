package session

const (
	DefaultCookieName    = "pledgedesk_sid"
	DefaultExpireSliding = 30 * 60      // seconds
	DefaultExpireHardcap = 12 * 60 * 60 // seconds
	DefaultLoginPath     = "/login"
)

type Conf struct {
	// hex or base64url 32-byte key. Empty: a random key per process,
	// so restarting the server logs everyone out
	EncryptionKey string `json:"enckey"`

	ExpireSliding int `json:"expire_sliding"` // seconds of idleness before a session ends
	ExpireHardcap int `json:"expire_hardcap"` // seconds since login before a session ends

	CookieName   string `json:"cookie_name"`
	CookieSecure bool   `json:"cookie_secure"` // set when served over HTTPS

	// For Web Login Sessions
	LoginPath string `json:"login_path"`
}

// WithDefaults fills zero values
func (c Conf) WithDefaults() Conf {
	if c.ExpireSliding <= 0 {
		c.ExpireSliding = DefaultExpireSliding
	}
	if c.ExpireHardcap <= 0 {
		c.ExpireHardcap = DefaultExpireHardcap
	}
	if c.CookieName == "" {
		c.CookieName = DefaultCookieName
	}
	if c.LoginPath == "" {
		c.LoginPath = DefaultLoginPath
	}
	return c
}
