package persist

import (
	"encoding/json"

	"github.com/jrsteele09/bell-client/model"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Keys the session is stored under.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Bridge maps the session's token and profile to Storage keys. The profile
// is stored as JSON.
type Bridge struct {
	storage Storage
	logger  zerolog.Logger
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) BridgeOption {
	return func(b *Bridge) {
		b.logger = logger
	}
}

func NewBridge(storage Storage, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		storage: storage,
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Restore returns the persisted session. Both keys must be present and the
// profile must decode; anything less is a logged-out start, and a leftover
// key is removed.
func (b *Bridge) Restore() (string, *model.UserProfile, bool) {
	token, hasToken, err := b.storage.Get(KeyToken)
	if err != nil {
		b.logger.Err(err).Msg("Reading persisted token")
		return "", nil, false
	}
	rawUser, hasUser, err := b.storage.Get(KeyUser)
	if err != nil {
		b.logger.Err(err).Msg("Reading persisted user")
		return "", nil, false
	}

	if !hasToken || token == "" || !hasUser {
		if hasToken || hasUser {
			b.logger.Info().Bool("token", hasToken).Bool("user", hasUser).Msg("Discarding incomplete persisted session")
			b.clearQuietly()
		}
		return "", nil, false
	}

	var user model.UserProfile
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		b.logger.Warn().Err(err).Msg("Discarding unreadable persisted user")
		b.clearQuietly()
		return "", nil, false
	}
	return token, &user, true
}

// Save writes the token and profile. An empty token or nil profile removes
// its key. Storage implementing BatchStorage gets both changes at once.
func (b *Bridge) Save(token string, user *model.UserProfile) error {
	set := make(map[string]string, 2)
	var remove []string
	if token == "" {
		remove = append(remove, KeyToken)
	} else {
		set[KeyToken] = token
	}
	if user == nil {
		remove = append(remove, KeyUser)
	} else {
		data, err := json.Marshal(user)
		if err != nil {
			return errors.Wrap(err, "encoding user")
		}
		set[KeyUser] = string(data)
	}

	if batch, ok := b.storage.(BatchStorage); ok {
		return errors.Wrap(batch.Apply(set, remove), "saving session")
	}
	for _, key := range remove {
		if err := b.storage.Delete(key); err != nil {
			return errors.Wrapf(err, "deleting %s", key)
		}
	}
	for _, key := range []string{KeyToken, KeyUser} {
		if value, ok := set[key]; ok {
			if err := b.storage.Set(key, value); err != nil {
				return errors.Wrapf(err, "saving %s", key)
			}
		}
	}
	return nil
}

// Clear removes both keys.
func (b *Bridge) Clear() error {
	return b.Save("", nil)
}

func (b *Bridge) clearQuietly() {
	if err := b.Clear(); err != nil {
		b.logger.Err(err).Msg("Clearing persisted session")
	}
}
