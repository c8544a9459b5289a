package notify

import (
	"context"

	"go.uber.org/zap"
)

// Handler dispatches notifications according to configuration. All send
// failures are absorbed here; callers never see them.
type Handler struct {
	config Config
	sender Sender
	log    *zap.Logger
}

// NewHandler returns a Handler wrapping the given sender. A nil sender
// no-ops.
func NewHandler(config Config, sender Sender, log *zap.Logger) *Handler {
	if sender == nil {
		sender = NoopSender{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{config: config, sender: sender, log: log}
}

// Config returns the handler's notification configuration.
func (h *Handler) Config() Config { return h.config }

// EntryLogged posts the link-back comment for a freshly logged entry.
// Disabled configuration skips silently; a sender failure is logged and
// swallowed so the run still reports success.
func (h *Handler) EntryLogged(ctx context.Context, prNumber int, entry Entry) {
	if !h.config.Enabled {
		h.log.Debug("pr comment disabled; skipping", zap.Int("pr", prNumber))
		return
	}
	if err := h.sender.Send(ctx, prNumber, CommentBody(entry)); err != nil {
		h.log.Warn("posting pr comment failed",
			zap.Int("pr", prNumber),
			zap.Error(err))
		return
	}
	h.log.Info("pr comment posted", zap.Int("pr", prNumber))
}
