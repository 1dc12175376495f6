// Package dialog tracks each user's progress through the two-step recording
// conversation: pick a name, then send the voice clip.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cemck/siddy/internal/naming"
	"github.com/cemck/siddy/internal/store"
)

// ErrNoSession is returned when a stage submission arrives for a user with
// no active session.
var ErrNoSession = errors.New("no active session")

// ErrWrongStage is returned when a submission doesn't match the session's
// current stage (e.g. a voice clip while a name is expected). The session is
// left untouched; the caller decides how to nudge the user.
var ErrWrongStage = errors.New("wrong stage for message")

// Stage is a session's position in the conversation.
type Stage int

const (
	// AwaitingName means the bot asked for a voice name.
	AwaitingName Stage = iota
	// AwaitingVoice means a name was accepted and a clip is expected.
	AwaitingVoice
)

func (s Stage) String() string {
	switch s {
	case AwaitingName:
		return "awaiting_name"
	case AwaitingVoice:
		return "awaiting_voice"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Session is one user's in-progress dialog.
type Session struct {
	UserID      int64
	Stage       Stage
	PendingName string
}

// Clip identifies an uploaded voice message: the gateway handle to download
// it plus the stable media ID embedded in the stored filename.
type Clip struct {
	FileID  string
	MediaID string
}

// Downloader fetches an uploaded clip's bytes from the gateway. Implemented
// by telegram.Client.
type Downloader interface {
	DownloadVoice(ctx context.Context, fileID string) ([]byte, error)
}

// Saver persists a finished recording. Implemented by store.Store.
type Saver interface {
	Save(rec store.Record, payload []byte) error
}

// Machine owns all dialog sessions, keyed by user ID, and drives the
// transitions between stages. One user's progress never touches another's.
type Machine struct {
	policy *naming.Policy
	saver  Saver
	audio  Downloader
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewMachine creates a Machine with no active sessions.
func NewMachine(policy *naming.Policy, saver Saver, audio Downloader) *Machine {
	return &Machine{
		policy:   policy,
		saver:    saver,
		audio:    audio,
		logger:   slog.Default(),
		sessions: make(map[int64]*Session),
	}
}

// Begin starts a new session in AwaitingName for user. If a session was
// already active it is replaced; the caller gets replaced=true so it can
// tell the user the previous dialog was discarded.
func (m *Machine) Begin(userID int64) (replaced bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, replaced = m.sessions[userID]
	m.sessions[userID] = &Session{UserID: userID, Stage: AwaitingName}
	return replaced
}

// Cancel destroys the user's session if one exists.
func (m *Machine) Cancel(userID int64) (had bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, had = m.sessions[userID]
	delete(m.sessions, userID)
	return had
}

// StageOf returns the user's current stage, if a session is active.
func (m *Machine) StageOf(userID int64) (Stage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[userID]
	if !ok {
		return 0, false
	}
	return sess.Stage, true
}

// SubmitName feeds a text message into an AwaitingName session. On a policy
// rejection the session stays in AwaitingName and the rejection is returned
// for reporting. On acceptance the normalized name is stored and the session
// moves to AwaitingVoice.
func (m *Machine) SubmitName(userID int64, raw string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[userID]
	if !ok {
		return "", ErrNoSession
	}
	if sess.Stage != AwaitingName {
		return "", ErrWrongStage
	}

	name, err := m.policy.Validate(raw)
	if err != nil {
		return naming.Normalize(raw), err
	}

	sess.PendingName = name
	sess.Stage = AwaitingVoice
	return name, nil
}

// SubmitVoice feeds a voice message into an AwaitingVoice session: the clip
// is downloaded from the gateway and saved under the pending name, and the
// session is destroyed. The session is also destroyed on download or storage
// failure so it never dangles behind an error the user was told about.
func (m *Machine) SubmitVoice(ctx context.Context, userID int64, authorHandle string, clip Clip) (string, error) {
	m.mu.Lock()
	sess, ok := m.sessions[userID]
	if !ok {
		m.mu.Unlock()
		return "", ErrNoSession
	}
	if sess.Stage != AwaitingVoice {
		m.mu.Unlock()
		return "", ErrWrongStage
	}
	name := sess.PendingName
	delete(m.sessions, userID)
	m.mu.Unlock()

	// Download and save outside the lock; a slow fetch blocks this user's
	// turn only.
	payload, err := m.audio.DownloadVoice(ctx, clip.FileID)
	if err != nil {
		return name, fmt.Errorf("downloading voice clip: %w", err)
	}

	rec := store.Record{Name: name, AuthorHandle: authorHandle, MediaID: clip.MediaID}
	if err := m.saver.Save(rec, payload); err != nil {
		return name, fmt.Errorf("saving voice clip: %w", err)
	}

	m.logger.Info("voice saved", "name", name, "author", authorHandle, "media_id", clip.MediaID)
	return name, nil
}
