package contact

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Sender delivers a message to its destination. *Forwarder implements it.
type Sender interface {
	Forward(ctx context.Context, m Message) error
}

// Service validates submissions, deduplicates them by form token and
// forwards them once.
type Service struct {
	sender Sender
	store  *Store
	log    *zap.Logger
}

// NewService creates a Service. store may be nil, which disables
// deduplication and archiving.
func NewService(sender Sender, store *Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{sender: sender, store: store, log: log}
}

// Submit handles one submission of m under the given form token. Repeating a
// token that was already delivered succeeds without forwarding again; a token
// still being delivered yields ErrInFlight.
func (s *Service) Submit(ctx context.Context, token string, m Message) error {
	m = m.Normalize()
	if err := m.Validate(); err != nil {
		return err
	}

	if s.store != nil {
		claimed, prior, err := s.store.Claim(ctx, token, m)
		if err != nil {
			s.log.Error("store contact message", zap.Error(err))
			return fmt.Errorf("store message: %w", err)
		}
		if !claimed {
			s.log.Info("duplicate contact submission", zap.String("token", token), zap.String("status", string(prior)))
			if prior == StatusSent {
				return nil
			}
			return ErrInFlight
		}
	}

	fwdErr := s.sender.Forward(ctx, m)
	if fwdErr != nil {
		s.log.Warn("forward contact message", zap.Error(fwdErr), zap.String("token", token))
	} else {
		s.log.Info("contact message forwarded", zap.String("token", token))
	}

	if s.store != nil {
		// Record the outcome even when the request context is already done.
		if err := s.store.Finish(context.WithoutCancel(ctx), token, fwdErr); err != nil {
			s.log.Error("record contact outcome", zap.Error(err), zap.String("token", token))
		}
	}
	if fwdErr != nil {
		return fmt.Errorf("forward message: %w", fwdErr)
	}
	return nil
}
