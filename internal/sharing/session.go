package sharing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sosapp/internal/models"
	"sosapp/internal/ports"
	"sosapp/internal/utils"
	"sosapp/pkg/logger"
)

type Options struct {
	Recipients   []string
	Watch        models.WatchConfig
	MapsLinkBase string
}

// Report describes one shareLocation round.
type Report struct {
	Coordinate   models.Coordinate        `json:"coordinate"`
	Outcomes     []models.DeliveryOutcome `json:"outcomes"`
	Failed       []string                 `json:"failed"`
	Notification string                   `json:"notification"`
	Err          error                    `json:"-"`
}

// Session is the live location sharing session. Position updates are shared
// strictly one at a time: a single worker drains the active watch and
// shareMu keeps rounds from overlapping across a stop and restart.
type Session struct {
	mu          sync.Mutex
	state       models.SharingState
	watch       ports.Watch
	lastCoord   *models.Coordinate
	lastShared  *time.Time
	sharedCount int

	shareMu sync.Mutex
	workers sync.WaitGroup

	source      ports.PositionSource
	dispatcher  ports.MessageDispatcher
	notifier    ports.Notifier
	permissions ports.Permissions
	opts        Options
	logger      *logger.Logger
	now         func() time.Time
}

// NewSession builds an idle session. permissions may be nil, in which case
// location access is assumed.
func NewSession(
	source ports.PositionSource,
	dispatcher ports.MessageDispatcher,
	notifier ports.Notifier,
	permissions ports.Permissions,
	opts Options,
	log *logger.Logger,
) *Session {
	recipients := make([]string, len(opts.Recipients))
	copy(recipients, opts.Recipients)
	opts.Recipients = recipients

	return &Session{
		state:       models.SharingStateIdle,
		source:      source,
		dispatcher:  dispatcher,
		notifier:    notifier,
		permissions: permissions,
		opts:        opts,
		logger:      log.WithComponent("sharing_session"),
		now:         time.Now,
	}
}

// Start subscribes to the position source and shares every emitted fix.
// Calling it while already active does nothing.
func (s *Session) Start(ctx context.Context) error {
	if s.active() {
		return nil
	}

	if err := s.ensureLocationPermission(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	if s.state == models.SharingStateActive {
		s.mu.Unlock()
		return nil
	}

	watch, err := s.source.Subscribe(ctx, s.opts.Watch)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to watch position: %w", err)
	}

	s.state = models.SharingStateActive
	s.watch = watch

	s.workers.Add(1)
	go s.run(context.WithoutCancel(ctx), watch)
	s.mu.Unlock()

	s.logger.WithContext(ctx).LogSharingEvent("started", map[string]interface{}{
		"recipients":   len(s.opts.Recipients),
		"min_interval": s.opts.Watch.MinInterval.String(),
		"min_distance": s.opts.Watch.MinDistance,
	})
	s.notifier.Notify(ctx, MsgSharingStarted)

	return nil
}

// Stop cancels the active watch, if any, and always emits the stopped
// notification. A round already in flight finishes; no new round starts
// after Stop returns.
func (s *Session) Stop(ctx context.Context) {
	s.mu.Lock()
	watch := s.watch
	s.watch = nil
	s.state = models.SharingStateIdle
	s.mu.Unlock()

	if watch != nil {
		watch.Cancel()
	}

	s.logger.WithContext(ctx).LogSharingEvent("stopped", map[string]interface{}{
		"had_watch": watch != nil,
	})
	s.notifier.Notify(ctx, MsgSharingStopped)
}

// ShareLocation runs one round for coord. It waits for any round in flight.
func (s *Session) ShareLocation(ctx context.Context, coord models.Coordinate) Report {
	s.shareMu.Lock()
	defer s.shareMu.Unlock()
	return s.shareLocked(ctx, coord)
}

// Wait blocks until every worker started by Start has exited.
func (s *Session) Wait() {
	s.workers.Wait()
}

func (s *Session) Snapshot() models.SharingSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := models.SharingSnapshot{
		State:         s.state,
		Recipients:    len(s.opts.Recipients),
		UpdatesShared: s.sharedCount,
	}
	if s.lastCoord != nil {
		c := *s.lastCoord
		snap.LastCoordinate = &c
	}
	if s.lastShared != nil {
		at := *s.lastShared
		snap.LastSharedAt = &at
	}
	return snap
}

func (s *Session) run(ctx context.Context, watch ports.Watch) {
	defer s.workers.Done()

	for coord := range watch.Updates() {
		s.shareMu.Lock()
		if !s.isCurrent(watch) {
			s.shareMu.Unlock()
			return
		}
		s.shareLocked(ctx, coord)
		s.shareMu.Unlock()
	}
}

func (s *Session) active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == models.SharingStateActive
}

func (s *Session) isCurrent(watch ports.Watch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == models.SharingStateActive && s.watch == watch
}

func (s *Session) shareLocked(ctx context.Context, coord models.Coordinate) Report {
	log := s.logger.WithContext(ctx)
	report := Report{Coordinate: coord}

	if !s.dispatcher.IsAvailable(ctx) {
		report.Err = models.ErrTransportUnavailable
		report.Notification = MsgSMSUnavailable
		log.Warn("SMS transport unavailable, location not shared")
		s.notifier.Notify(ctx, report.Notification)
		return report
	}

	text := LocationMessage(s.opts.MapsLinkBase, coord)

	for _, recipient := range s.opts.Recipients {
		outcome := s.dispatcher.Send(ctx, recipient, text)
		outcome.Recipient = recipient
		report.Outcomes = append(report.Outcomes, outcome)

		log.LogDeliveryOutcome(utils.MaskPhone(recipient), outcome.Succeeded, outcome.Error)
		if !outcome.Succeeded {
			report.Failed = append(report.Failed, recipient)
		}
	}

	s.recordRound(coord)

	report.Notification = OutcomeMessage(report.Failed)
	log.LogSharingEvent("location_shared", map[string]interface{}{
		"attempted": len(report.Outcomes),
		"failed":    utils.MaskPhones(report.Failed),
	})
	s.notifier.Notify(ctx, report.Notification)

	return report
}

func (s *Session) recordRound(coord models.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := coord
	at := s.now()
	s.lastCoord = &c
	s.lastShared = &at
	s.sharedCount++
}

func (s *Session) ensureLocationPermission(ctx context.Context) error {
	if s.permissions == nil || s.permissions.Granted(ctx, models.PermissionLocation) {
		return nil
	}

	granted, err := s.permissions.Request(ctx, models.PermissionLocation)
	if err != nil {
		return fmt.Errorf("failed to request location permission: %w", err)
	}
	if !granted {
		s.logger.WithContext(ctx).Warn(MsgLocationDenied)
		s.notifier.Notify(ctx, MsgLocationDenied)
		return fmt.Errorf("%s: %w", MsgLocationDenied, models.ErrPermissionDenied)
	}

	return nil
}
