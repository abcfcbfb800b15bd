package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/marqueeapp/marquee-server/internal/config"
	"github.com/marqueeapp/marquee-server/internal/logger"
	"github.com/marqueeapp/marquee-server/internal/session"
	"github.com/marqueeapp/marquee-server/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the handoff store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Metadata.BasePath, "db")
	db, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// SessionKey wraps the session cookie key bytes.
type SessionKey []byte

// ProvideSessionKey loads or generates the session key.
func ProvideSessionKey(i do.Injector) (SessionKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := session.LoadOrGenerateKey(cfg.Metadata.BasePath)
	if err != nil {
		return nil, err
	}

	log.Info("Session key loaded", "session_ttl", cfg.Session.TTL)

	return SessionKey(key), nil
}

// ProvideSessionCodec provides the PASETO session cookie codec.
func ProvideSessionCodec(i do.Injector) (*session.Codec, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[SessionKey](i)

	return session.NewCodec([]byte(key), cfg.Session.TTL)
}
