package speech

import "sync"

// Session owns the single live audio resource of one playback attempt:
// the player handle plus its transient backing stream. At most one
// Session is live at any time; the controller tears down the previous
// one before starting the next.
type Session struct {
	player    Player
	once      sync.Once
	onRelease func()
}

// NewSession wraps a player into a session. The release hook fires
// exactly once, on the first Release call.
func NewSession(player Player, onRelease func()) *Session {
	return &Session{player: player, onRelease: onRelease}
}

// Player returns the underlying player handle.
func (s *Session) Player() Player {
	return s.player
}

// Release stops playback and frees the backing stream. Every path that
// ends a session (natural end, stop, error, teardown) calls Release;
// calling it more than once is harmless.
func (s *Session) Release() {
	s.once.Do(func() {
		_ = s.player.Stop()
		if s.onRelease != nil {
			s.onRelease()
		}
	})
}
