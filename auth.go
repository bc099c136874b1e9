package corkboard

import (
	"fmt"
	"net/url"
	"strings"
)

const tokenParam = "auth_token"

// Authentication is the credential injected into every request. It is set
// once at construction and never changes during the client's lifetime.
//
// The two implementations are Credentials and Token.
type Authentication interface {
	inject(u *url.URL, query url.Values)
	validate() error
	fmt.Stringer
}

// Credentials authenticates with a username and password carried as URL
// user-info (HTTP basic auth on the wire).
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) inject(u *url.URL, _ url.Values) {
	u.User = url.UserPassword(c.Username, c.Password)
}

func (c Credentials) validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return fmt.Errorf("credentials: username is empty")
	}
	if c.Password == "" {
		return fmt.Errorf("credentials: password is empty")
	}
	return nil
}

// String never includes the password.
func (c Credentials) String() string {
	return fmt.Sprintf("credentials(%s)", c.Username)
}

// Token authenticates with an API token ("user:HEX") sent as the auth_token
// query parameter.
type Token string

func (t Token) inject(_ *url.URL, query url.Values) {
	query.Set(tokenParam, string(t))
}

func (t Token) validate() error {
	if strings.TrimSpace(string(t)) == "" {
		return fmt.Errorf("token: value is empty")
	}
	return nil
}

// String keeps the user part of a "user:secret" token and hides the rest.
func (t Token) String() string {
	user, _, found := strings.Cut(string(t), ":")
	if !found {
		return "token(REDACTED)"
	}
	return fmt.Sprintf("token(%s:REDACTED)", user)
}
