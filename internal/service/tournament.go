package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"portal-tournaments/internal/api"
	"portal-tournaments/internal/config"
	"portal-tournaments/internal/constants"
	"portal-tournaments/internal/domain"
	"portal-tournaments/internal/lifecycle"
	"portal-tournaments/internal/metrics"
	"portal-tournaments/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidInput = errors.New("invalid input")

// Backend is the hosted tournaments function.
type Backend interface {
	ListTournaments(ctx context.Context, steamID string) ([]domain.Tournament, error)
	GetTournament(ctx context.Context, tournamentID int64) (*domain.TournamentDetail, error)
	Register(ctx context.Context, tournamentID int64, who domain.Identity) error
	Unregister(ctx context.Context, tournamentID int64, steamID string) error
	Confirm(ctx context.Context, tournamentID int64, steamID string) error
}

type TournamentView struct {
	Tournament domain.Tournament
	Evaluation lifecycle.Evaluation
}

type DetailView struct {
	Detail     domain.TournamentDetail
	Caller     *domain.Participant
	Evaluation lifecycle.Evaluation
	Roster     lifecycle.Roster
	// Stale is set when the backend could not be reached and the last
	// stored snapshot was served instead.
	Stale bool
}

type AdminView struct {
	Tournament    domain.Tournament
	Evaluation    lifecycle.Evaluation
	Roster        lifecycle.Roster
	RecentActions []domain.ActionLogEntry
}

type TournamentService struct {
	backend     Backend
	tournaments *repository.TournamentRepository
	actions     *repository.ActionLogRepository
	engine      *lifecycle.Engine
	metrics     *metrics.Metrics
	snapshotTTL time.Duration
	logger      zerolog.Logger

	// one full Refresh at a time
	refreshMu sync.Mutex
}

func NewTournamentService(
	backend Backend,
	tournaments *repository.TournamentRepository,
	actions *repository.ActionLogRepository,
	engine *lifecycle.Engine,
	m *metrics.Metrics,
	cfg *config.Config,
	logger zerolog.Logger,
) *TournamentService {
	return &TournamentService{
		backend:     backend,
		tournaments: tournaments,
		actions:     actions,
		engine:      engine,
		metrics:     m,
		snapshotTTL: cfg.SnapshotTTL,
		logger:      logger.With().Str("component", "tournaments").Logger(),
	}
}

// Refresh stores a fresh list snapshot and the details of every tournament
// that is not completed. A failed detail fetch does not stop the others.
func (s *TournamentService) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, constants.RefreshTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		s.metrics.RefreshLatency.Observe(time.Since(start).Seconds())
	}()

	list, err := s.refreshList(ctx)
	if err != nil {
		s.metrics.RefreshFailures.Inc()
		return err
	}

	var (
		mu       sync.Mutex
		failures []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.RefreshConcurrency)

	for _, t := range list {
		if t.Status == domain.StatusCompleted {
			continue
		}
		id := t.ID
		g.Go(func() error {
			if _, err := s.refreshDetail(gctx, id); err != nil {
				s.logger.Warn().Err(err).Int64("tournament_id", id).Msg("failed to refresh tournament detail")
				mu.Lock()
				failures = append(failures, fmt.Errorf("tournament %d: %w", id, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) > 0 {
		s.metrics.RefreshFailures.Inc()
		return errors.Join(failures...)
	}

	s.logger.Info().
		Int("tournaments", len(list)).
		Dur("took", time.Since(start)).
		Msg("snapshots refreshed")
	return nil
}

func (s *TournamentService) refreshList(ctx context.Context) ([]domain.Tournament, error) {
	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	list, err := s.backend.ListTournaments(apiCtx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	slices.SortStableFunc(list, func(a, b domain.Tournament) int {
		return a.StartDate.Compare(b.StartDate)
	})

	dbCtx, dbCancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer dbCancel()

	if err := s.tournaments.ReplaceAll(dbCtx, list, s.engine.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to store tournaments: %w", err)
	}
	s.metrics.Snapshots.Set(float64(len(list)))
	return list, nil
}

func (s *TournamentService) refreshDetail(ctx context.Context, id int64) (*domain.TournamentDetail, error) {
	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	detail, err := s.backend.GetTournament(apiCtx, id)
	if err != nil {
		return nil, err
	}
	detail.FetchedAt = s.engine.Now().UTC()

	dbCtx, dbCancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer dbCancel()

	if err := s.tournaments.SaveDetail(dbCtx, detail); err != nil {
		s.logger.Warn().Err(err).Int64("tournament_id", id).Msg("failed to store tournament detail")
	}
	return detail, nil
}

// ListTournaments evaluates every tournament for the caller. Anonymous
// lists are served from snapshots; caller-scoped lists come from the
// backend, which knows the caller's registrations.
func (s *TournamentService) ListTournaments(ctx context.Context, steamID string, refresh bool) ([]TournamentView, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if steamID != "" {
		apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
		list, err := s.backend.ListTournaments(apiCtx, steamID)
		apiCancel()
		if err == nil {
			now := s.engine.Now()
			views := make([]TournamentView, len(list))
			for i, t := range list {
				views[i] = TournamentView{
					Tournament: t,
					Evaluation: s.engine.Evaluate(t, t.CallerParticipant(steamID), now),
				}
			}
			return views, nil
		}
		if !fallbackAllowed(err) {
			return nil, err
		}
		s.logger.Warn().Err(err).Str("steam_id", steamID).Msg("backend unavailable, serving snapshots")
	}

	list, err := s.snapshotList(ctx, refresh)
	if err != nil {
		return nil, err
	}

	now := s.engine.Now()
	views := make([]TournamentView, len(list))
	for i, t := range list {
		var caller *domain.Participant
		if steamID != "" {
			caller = s.snapshotParticipant(ctx, t.ID, steamID)
		}
		views[i] = TournamentView{Tournament: t, Evaluation: s.engine.Evaluate(t, caller, now)}
	}
	return views, nil
}

func (s *TournamentService) snapshotList(ctx context.Context, refresh bool) ([]domain.Tournament, error) {
	dbCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	list, err := s.tournaments.List(dbCtx)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	if !refresh && len(list) > 0 && !s.stale(list) {
		return list, nil
	}

	fresh, err := s.refreshList(ctx)
	if err != nil {
		if len(list) > 0 && fallbackAllowed(err) {
			s.logger.Warn().Err(err).Msg("refresh failed, serving stored snapshots")
			return list, nil
		}
		return nil, err
	}
	return fresh, nil
}

func (s *TournamentService) stale(list []domain.Tournament) bool {
	now := s.engine.Now()
	for _, t := range list {
		if now.Sub(t.FetchedAt) > s.snapshotTTL {
			return true
		}
	}
	return false
}

func (s *TournamentService) snapshotParticipant(ctx context.Context, id int64, steamID string) *domain.Participant {
	detail, err := s.tournaments.Get(ctx, id)
	if err != nil {
		return nil
	}
	return detail.Participant(steamID)
}

func (s *TournamentService) GetTournament(ctx context.Context, id int64, steamID string, refresh bool) (*DetailView, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if id <= 0 {
		return nil, fmt.Errorf("%w: tournament_id must be positive", ErrInvalidInput)
	}

	detail, stale, err := s.loadDetail(ctx, id, refresh)
	if err != nil {
		return nil, err
	}
	view := s.view(detail, steamID, s.engine.Now())
	view.Stale = stale
	return view, nil
}

func (s *TournamentService) loadDetail(ctx context.Context, id int64, refresh bool) (*domain.TournamentDetail, bool, error) {
	if !refresh {
		shouldRefresh, err := s.tournaments.ShouldRefresh(ctx, id, s.snapshotTTL, s.engine.Now())
		if err != nil {
			return nil, false, err
		}
		refresh = shouldRefresh
	}

	if !refresh {
		detail, err := s.tournaments.Get(ctx, id)
		if err == nil {
			return detail, false, nil
		}
		if !errors.Is(err, repository.ErrSnapshotNotFound) {
			return nil, false, err
		}
	}

	detail, err := s.refreshDetail(ctx, id)
	if err == nil {
		return detail, false, nil
	}
	if !fallbackAllowed(err) {
		return nil, false, err
	}

	snapshot, snapErr := s.tournaments.Get(ctx, id)
	if snapErr != nil {
		return nil, false, err
	}
	s.logger.Warn().Err(err).Int64("tournament_id", id).Msg("backend unavailable, serving stale detail")
	return snapshot, true, nil
}

func (s *TournamentService) view(detail *domain.TournamentDetail, steamID string, now time.Time) *DetailView {
	caller := detail.Participant(steamID)
	return &DetailView{
		Detail:     *detail,
		Caller:     caller,
		Evaluation: s.engine.Evaluate(detail.Tournament, caller, now),
		Roster:     lifecycle.SummarizeRoster(detail.Tournament, detail.Participants, now),
	}
}

func (s *TournamentService) Register(ctx context.Context, id int64, who domain.Identity) (*DetailView, error) {
	if who.PersonaName == "" {
		return nil, fmt.Errorf("%w: persona_name is required", ErrInvalidInput)
	}
	return s.act(ctx, domain.ActionRegister, id, who.SteamID, func(ctx context.Context) error {
		return s.backend.Register(ctx, id, who)
	})
}

func (s *TournamentService) Unregister(ctx context.Context, id int64, steamID string) (*DetailView, error) {
	return s.act(ctx, domain.ActionUnregister, id, steamID, func(ctx context.Context) error {
		return s.backend.Unregister(ctx, id, steamID)
	})
}

func (s *TournamentService) Confirm(ctx context.Context, id int64, steamID string) (*DetailView, error) {
	return s.act(ctx, domain.ActionConfirm, id, steamID, func(ctx context.Context) error {
		return s.backend.Confirm(ctx, id, steamID)
	})
}

// act authorizes against the backend's current state, forwards the action
// and returns the tournament as it looks afterwards.
func (s *TournamentService) act(ctx context.Context, action domain.ActionKind, id int64, steamID string, forward func(context.Context) error) (*DetailView, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if id <= 0 {
		return nil, fmt.Errorf("%w: tournament_id must be positive", ErrInvalidInput)
	}
	if steamID == "" {
		return nil, fmt.Errorf("%w: steam_id is required", ErrInvalidInput)
	}

	log := s.logger.With().
		Str("action", string(action)).
		Int64("tournament_id", id).
		Str("steam_id", steamID).
		Logger()

	detail, err := s.refreshDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament: %w", err)
	}

	ev := s.engine.Evaluate(detail.Tournament, detail.Participant(steamID), s.engine.Now())
	if err := lifecycle.Authorize(action, ev); err != nil {
		log.Info().Err(err).Str("phase", ev.Phase.String()).Msg("action denied")
		s.record(ctx, action, id, steamID, ev, false, err.Error())
		s.metrics.ActionsTotal.WithLabelValues(string(action), metrics.OutcomeDenied).Inc()
		return nil, err
	}

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	err = forward(apiCtx)
	apiCancel()
	if err != nil {
		log.Warn().Err(err).Msg("backend rejected action")
		s.record(ctx, action, id, steamID, ev, false, err.Error())
		s.metrics.ActionsTotal.WithLabelValues(string(action), metrics.OutcomeRejected).Inc()
		return nil, err
	}

	s.record(ctx, action, id, steamID, ev, true, "")
	s.metrics.ActionsTotal.WithLabelValues(string(action), metrics.OutcomeAccepted).Inc()
	log.Info().Str("phase", ev.Phase.String()).Msg("action accepted")

	updated, err := s.refreshDetail(ctx, id)
	if err != nil {
		log.Warn().Err(err).Msg("failed to reload tournament after action")
		return s.view(detail, steamID, s.engine.Now()), nil
	}
	return s.view(updated, steamID, s.engine.Now()), nil
}

func (s *TournamentService) record(ctx context.Context, action domain.ActionKind, id int64, steamID string, ev lifecycle.Evaluation, accepted bool, reason string) {
	dbCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	_, err := s.actions.Record(dbCtx, domain.ActionLogEntry{
		TournamentID: id,
		SteamID:      steamID,
		Action:       action,
		Phase:        ev.Phase.String(),
		Accepted:     accepted,
		Reason:       reason,
		CreatedAt:    ev.EvaluatedAt,
	})
	if err != nil {
		s.logger.Warn().Err(err).Int64("tournament_id", id).Msg("failed to record action")
	}
}

// AdminOverview reports every known tournament with its confirmation
// progress and latest participant actions.
func (s *TournamentService) AdminOverview(ctx context.Context) ([]AdminView, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	list, err := s.snapshotList(ctx, false)
	if err != nil {
		return nil, err
	}

	now := s.engine.Now()
	views := make([]AdminView, 0, len(list))
	for _, t := range list {
		detail, _, err := s.loadDetail(ctx, t.ID, false)
		if err != nil {
			s.logger.Warn().Err(err).Int64("tournament_id", t.ID).Msg("failed to load detail for overview")
			detail = &domain.TournamentDetail{Tournament: t}
		}

		recent, err := s.actions.Recent(ctx, t.ID, constants.ActionLogLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to load actions: %w", err)
		}

		views = append(views, AdminView{
			Tournament:    detail.Tournament,
			Evaluation:    s.engine.Evaluate(detail.Tournament, nil, now),
			Roster:        lifecycle.SummarizeRoster(detail.Tournament, detail.Participants, now),
			RecentActions: recent,
		})
	}
	return views, nil
}

// fallbackAllowed reports whether a stored snapshot may stand in for a
// failed backend call. Answers the backend actually gave are never masked.
func fallbackAllowed(err error) bool {
	var berr *api.BackendError
	if errors.As(err, &berr) {
		return errors.Is(err, api.ErrUnavailable)
	}
	return !errors.Is(err, context.Canceled)
}
