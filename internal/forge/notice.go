package forge

import (
	"time"

	"go-forge/internal/mirror"
)

// NoticeKind classifies a swallowed, non-fatal failure.
type NoticeKind string

const (
	KindPersistenceUnavailable NoticeKind = "persistence_unavailable"
	KindMirrorWriteFailed      NoticeKind = "mirror_write_failed"
	KindMirrorDropped          NoticeKind = "mirror_dropped"
)

// maxNotices bounds the retained notice history.
const maxNotices = 50

// Notice reports a failure that did not stop the in-memory operation.
type Notice struct {
	Kind  NoticeKind `json:"kind"`
	Path  string     `json:"path,omitempty"`
	Error string     `json:"error"`
	At    time.Time  `json:"at"`
}

// notify records n and hands it to the Notify callback.
// The callback runs synchronously and must not call back into the Store.
func (s *Store) notify(kind NoticeKind, path string, err error) {
	n := Notice{Kind: kind, Path: path, At: s.now().UTC()}
	if err != nil {
		n.Error = err.Error()
	}

	s.noticeMu.Lock()
	s.notices = append(s.notices, n)
	if len(s.notices) > maxNotices {
		s.notices = append([]Notice(nil), s.notices[len(s.notices)-maxNotices:]...)
	}
	s.noticeMu.Unlock()

	if s.onNotice != nil {
		s.onNotice(n)
	}
}

// Notices returns retained notices, newest last.
func (s *Store) Notices() []Notice {
	s.noticeMu.Lock()
	defer s.noticeMu.Unlock()
	return append([]Notice(nil), s.notices...)
}

// ReportMirrorFailure turns a failed mirror delivery into a notice.
// It matches mirror.FailureFunc so it can be handed straight to a Worker.
func (s *Store) ReportMirrorFailure(req mirror.Request, err error) {
	s.logger.Warn("Mirror write failed", "path", req.Path, "requestID", req.ID, "error", err)
	s.notify(KindMirrorWriteFailed, req.Path, err)
}
