package party

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mcoot/wordparty/internal/model"
)

// SyncTyping shares the letters currently typed. It is cosmetic, so
// failures are only logged.
func (s *Session) SyncTyping(ctx context.Context, letters string) {
	letters = strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r
		}
		return -1
	}, strings.ToUpper(letters))
	if len(letters) > model.WordLength {
		letters = letters[:model.WordLength]
	}

	var value any
	if letters != "" {
		value = letters
	}
	s.writeTyping(ctx, value)
}

// ClearTyping removes the typing indicator
func (s *Session) ClearTyping(ctx context.Context) {
	s.writeTyping(ctx, nil)
}

func (s *Session) writeTyping(ctx context.Context, value any) {
	s.mu.Lock()
	defer s.unlock()
	if s.code == "" || s.closed || s.phase != model.StatusPlaying || s.isSetter {
		return
	}
	if err := s.store.Set(ctx, model.PlayerField(s.code, s.uid, model.FieldTyping), value); err != nil {
		s.logger.Debug("typing update failed", slog.String("error", err.Error()))
	}
}
