package monitoring

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/savemyigcse/backend/internal/services"
)

// TokenJanitor periodically clears expired email-verification and
// password-reset tokens so stale secrets do not linger in storage.
type TokenJanitor struct {
	userSvc services.UserServiceProvider
	cron    *cron.Cron
}

// NewTokenJanitor creates a new TokenJanitor.
func NewTokenJanitor(userSvc services.UserServiceProvider) *TokenJanitor {
	return &TokenJanitor{
		userSvc: userSvc,
		cron:    cron.New(),
	}
}

// Run registers the purge schedule and starts the cron loop. A purge
// also runs once immediately on start.
func (j *TokenJanitor) Run() {
	log.Info().Msg("Starting token janitor")
	j.purge()

	if _, err := j.cron.AddFunc("@hourly", j.purge); err != nil {
		log.Error().Err(err).Msg("Failed to schedule token purge")
		return
	}
	j.cron.Start()
}

// Stop halts the cron loop and waits for a running purge to finish.
func (j *TokenJanitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("Token janitor stopped")
}

func (j *TokenJanitor) purge() {
	purged, err := j.userSvc.PurgeExpiredTokens(time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("Failed to purge expired tokens")
		return
	}
	if purged > 0 {
		log.Info().Int64("users", purged).Msg("Cleared expired tokens")
	}
}
