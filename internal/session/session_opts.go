package session

import (
	"math/rand"
	"time"

	"github.com/wpals0817-max/policenthief/internal/discovery"
)

type SessionOpt func(*Session)

func WithNotifier(n Notifier) SessionOpt {
	return func(s *Session) {
		s.notifier = n
	}
}

func WithRecorder(r *discovery.Recorder) SessionOpt {
	return func(s *Session) {
		s.recorder = r
	}
}

func WithInviteBase(base string) SessionOpt {
	return func(s *Session) {
		s.inviteBase = base
	}
}

func WithClock(now func() time.Time) SessionOpt {
	return func(s *Session) {
		s.now = now
	}
}

func WithRand(rng *rand.Rand) SessionOpt {
	return func(s *Session) {
		s.rng = rng
	}
}
