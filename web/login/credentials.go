package login

import (
	"golang.org/x/text/cases"

	"github.com/zeptools/pledgedesk/sec"
)

const (
	DefaultUsername = "ghaith"
	DefaultPassword = "ghaith"
)

// Credentials is the single operator account
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c Credentials) WithDefaults() Credentials {
	if c.Username == "" {
		c.Username = DefaultUsername
	}
	if c.Password == "" {
		c.Password = DefaultPassword
	}
	return c
}

// Match folds the username (GHAITH == ghaith) and compares the password exactly.
// Both comparisons run in constant time.
func (c Credentials) Match(username string, password string) bool {
	fold := cases.Fold()
	userOK := sec.EqualConstantTime(fold.String(username), fold.String(c.Username))
	passOK := sec.EqualConstantTime(password, c.Password)
	return userOK && passOK
}
