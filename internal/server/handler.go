package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"portal-tournaments/internal/api"
	"portal-tournaments/internal/lifecycle"
	"portal-tournaments/internal/middleware"
	"portal-tournaments/internal/repository"
	"portal-tournaments/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

const TournamentServiceName = "portal.tournaments.v1.TournamentService"

const (
	ListTournamentsProcedure = "/" + TournamentServiceName + "/ListTournaments"
	GetTournamentProcedure   = "/" + TournamentServiceName + "/GetTournament"
	RegisterProcedure        = "/" + TournamentServiceName + "/Register"
	UnregisterProcedure      = "/" + TournamentServiceName + "/Unregister"
	ConfirmProcedure         = "/" + TournamentServiceName + "/Confirm"
	AdminOverviewProcedure   = "/" + TournamentServiceName + "/AdminOverview"
)

// NewTournamentServiceHandler mounts every procedure under the service path
// prefix, in the same shape connect's generated handlers use.
func NewTournamentServiceHandler(s *TournamentServer, logger zerolog.Logger, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(Codecs(), opts...)
	opts = append(opts, connect.WithInterceptors(loggingInterceptor(logger)))

	mux := http.NewServeMux()
	mux.Handle(ListTournamentsProcedure, connect.NewUnaryHandler(ListTournamentsProcedure, s.ListTournaments, opts...))
	mux.Handle(GetTournamentProcedure, connect.NewUnaryHandler(GetTournamentProcedure, s.GetTournament, opts...))
	mux.Handle(RegisterProcedure, connect.NewUnaryHandler(RegisterProcedure, s.Register, opts...))
	mux.Handle(UnregisterProcedure, connect.NewUnaryHandler(UnregisterProcedure, s.Unregister, opts...))
	mux.Handle(ConfirmProcedure, connect.NewUnaryHandler(ConfirmProcedure, s.Confirm, opts...))
	mux.Handle(AdminOverviewProcedure, connect.NewUnaryHandler(AdminOverviewProcedure, s.AdminOverview, opts...))

	return "/" + TournamentServiceName + "/", mux
}

func loggingInterceptor(logger zerolog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			log := logger.With().
				Str("procedure", req.Spec().Procedure).
				Str("request_id", middleware.GetRequestID(ctx)).
				Logger()

			if err == nil {
				log.Debug().Dur("took", time.Since(start)).Msg("procedure served")
				return resp, nil
			}

			code := connect.CodeOf(err)
			event := log.Info()
			if code == connect.CodeInternal || code == connect.CodeUnavailable {
				event = log.Error()
			}
			event.Err(err).Str("code", code.String()).Dur("took", time.Since(start)).Msg("procedure failed")
			return resp, err
		}
	}
}

func toConnectError(err error) error {
	var code connect.Code
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		code = connect.CodeInvalidArgument
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, api.ErrAlreadyRegistered):
		code = connect.CodeAlreadyExists
	case errors.Is(err, api.ErrTournamentFull), errors.Is(err, api.ErrRegistrationClosed):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, api.ErrNotFound),
		errors.Is(err, api.ErrRegistrationNotFound),
		errors.Is(err, repository.ErrSnapshotNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, api.ErrUnavailable):
		code = connect.CodeUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	default:
		code = connect.CodeInternal
	}
	return connect.NewError(code, err)
}
