package app

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Signal/internal/config"
	"github.com/dkeye/Signal/internal/domain"
)

// credentialTTL is how long issued relay credentials stay valid, in seconds.
const credentialTTL = 86400

type storedCredential struct {
	password  string
	expiresAt time.Time
}

// Credentials derives short-lived TURN credentials from the shared secret
// and keeps them for later validation. Eviction is lazy: an expired entry
// is deleted the first time a validation lookup finds it; there is no
// background sweep.
type Credentials struct {
	secret   string
	publicIP string
	port     int

	now func() time.Time

	mu    sync.Mutex
	store map[string]storedCredential
}

func NewCredentials(cfg config.TurnConfig) *Credentials {
	return &Credentials{
		secret:   cfg.SharedSecret,
		publicIP: cfg.PublicIP,
		port:     cfg.Port,
		now:      time.Now,
		store:    make(map[string]storedCredential),
	}
}

// Issue mints credentials for username at the current time. The stored key
// is "<unix>:<username>", so a repeat within the same second overwrites.
func (c *Credentials) Issue(username string) domain.TurnCredentials {
	issuedAt := c.now()
	turnUsername := fmt.Sprintf("%d:%s", issuedAt.Unix(), username)

	mac := hmac.New(sha1.New, []byte(c.secret))
	mac.Write([]byte(turnUsername))
	password := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	creds := domain.TurnCredentials{
		Username: turnUsername,
		Password: password,
		TTL:      credentialTTL,
		URIs: []string{
			fmt.Sprintf("turn:%s:%d?transport=udp", c.publicIP, c.port),
		},
	}

	c.mu.Lock()
	c.store[turnUsername] = storedCredential{
		password:  password,
		expiresAt: issuedAt.Add(credentialTTL * time.Second),
	}
	c.mu.Unlock()

	log.Info().Str("module", "app.credentials").Str("username", turnUsername).Msg("issued turn credentials")
	return creds
}

// Validate returns the stored password while the credential is still live.
// A lookup that finds an expired entry deletes it and reports a miss.
func (c *Credentials) Validate(turnUsername string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sc, ok := c.store[turnUsername]
	if !ok {
		return "", false
	}
	if !c.now().Before(sc.expiresAt) {
		delete(c.store, turnUsername)
		log.Info().Str("module", "app.credentials").Str("username", turnUsername).Msg("evicted expired credentials")
		return "", false
	}
	return sc.password, true
}
