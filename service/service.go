// Package service wires the directory snapshot, the session store and
// the outbound adapters together.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"release-service/config"
	"release-service/directory"
	"release-service/form"
	"release-service/message"
	"release-service/models"
	"release-service/rabbitmq"
	"release-service/submit"

	"github.com/apex/log"
)

var (
	// ErrDirectoryUnavailable blocks all form work until a reload
	// succeeds. No partial directory is ever accepted.
	ErrDirectoryUnavailable = errors.New("directory not loaded")

	// ErrNotSubmittable rejects submission of an incomplete draft.
	ErrNotSubmittable = errors.New("draft is not submittable")
)

const directoryLoadTimeout = 30 * time.Second

type Service struct {
	cfg      *config.Config
	source   directory.Source
	sink     submit.Sink
	enhancer form.Enhancer

	// Optional; nil when no broker is configured.
	publisher *rabbitmq.Publisher

	store *form.Store

	dirMu   sync.RWMutex
	dir     *models.Directory
	loadErr error

	stopCh chan struct{}
}

func New(cfg *config.Config, source directory.Source, sink submit.Sink, enhancer form.Enhancer, publisher *rabbitmq.Publisher) *Service {
	s := &Service{
		cfg:       cfg,
		source:    source,
		sink:      sink,
		enhancer:  enhancer,
		publisher: publisher,
		store:     form.NewStore(cfg.SessionTTL),
		loadErr:   ErrDirectoryUnavailable,
		stopCh:    make(chan struct{}),
	}
	return s
}

// Start loads the directory and begins session housekeeping. A load
// failure does not abort startup; the service stays up in a blocking
// error state until a reload succeeds.
func (s *Service) Start() {
	if err := s.ReloadDirectory(context.Background()); err != nil {
		log.Errorf("Initial directory load failed: %v", err)
	}
	go s.sweepLoop()
}

func (s *Service) Stop() {
	close(s.stopCh)
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			log.Warnf("Failed to close publisher: %v", err)
		}
	}
}

func (s *Service) sweepLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.store.Sweep(time.Now())
		case <-s.stopCh:
			return
		}
	}
}

// ReloadDirectory fetches a fresh roster snapshot. Existing sessions
// keep the snapshot they were created with.
func (s *Service) ReloadDirectory(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, directoryLoadTimeout)
	defer cancel()

	dir, err := s.source.Load(ctx)

	s.dirMu.Lock()
	defer s.dirMu.Unlock()

	if err != nil {
		s.loadErr = err
		return err
	}
	s.dir = dir
	s.loadErr = nil
	return nil
}

// Directory returns the current snapshot, or the blocking load error.
func (s *Service) Directory() (*models.Directory, error) {
	s.dirMu.RLock()
	defer s.dirMu.RUnlock()

	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.dir, nil
}

// CreateSession opens a new draft bound to the current snapshot.
func (s *Service) CreateSession() (*form.Session, error) {
	dir, err := s.Directory()
	if err != nil {
		return nil, err
	}
	return s.store.Create(dir, s.cfg.DefaultCity, s.cfg.LookupMinLength), nil
}

func (s *Service) Session(id string) (*form.Session, bool) {
	return s.store.Get(id)
}

// Enhance rewrites a free-text field in place, subject to the engine's
// staleness guard.
func (s *Service) Enhance(ctx context.Context, sess *form.Session, field form.Field) error {
	return sess.Enhance(ctx, field, s.enhancer)
}

// Summary renders the shareable text for the session's draft.
func (s *Service) Summary(sess *form.Session) string {
	draft := sess.Snapshot()
	return message.Render(&draft)
}

// ShareLink builds the messenger URI for the session's draft.
func (s *Service) ShareLink(sess *form.Session) string {
	draft := sess.Snapshot()
	summary := message.Render(&draft)

	phone := ""
	if draft.Neighborhood != nil {
		phone = draft.Neighborhood.CommanderPhone
	}
	return message.ShareLink(summary, phone, s.cfg.PhoneCountryPrefix, s.cfg.PhoneLocalDigits)
}

// Submit flattens the draft and delivers it to the sink. The draft is
// left untouched either way, so a failed delivery can be retried.
func (s *Service) Submit(ctx context.Context, sess *form.Session) (models.SubmissionRecord, error) {
	if !sess.IsSubmittable() {
		return models.SubmissionRecord{}, ErrNotSubmittable
	}

	draft := sess.Snapshot()
	rec := submit.BuildRecord(&draft, time.Now())

	if err := s.sink.Save(ctx, rec); err != nil {
		return models.SubmissionRecord{}, err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(rec); err != nil {
			// Fan-out is best effort; the report is already saved.
			log.Warnf("Failed to publish submitted report: %v", err)
		}
	}

	log.WithFields(log.Fields{
		"session": sess.ID,
		"team":    rec.Team,
	}).Info("report.submitted")
	return rec, nil
}
