package server

import (
	"context"
	"time"

	"portal-tournaments/internal/config"
	"portal-tournaments/internal/domain"
	"portal-tournaments/internal/service"

	"connectrpc.com/connect"
)

type TournamentServer struct {
	svc  *service.TournamentService
	zone *time.Location
}

func NewTournamentServer(svc *service.TournamentService, cfg *config.Config) *TournamentServer {
	zone := cfg.DisplayZone
	if zone == nil {
		zone = time.UTC
	}
	return &TournamentServer{svc: svc, zone: zone}
}

func (s *TournamentServer) ListTournaments(ctx context.Context, req *connect.Request[ListTournamentsRequest]) (*connect.Response[ListTournamentsResponse], error) {
	views, err := s.svc.ListTournaments(ctx, req.Msg.SteamID, req.Msg.Refresh)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &ListTournamentsResponse{Tournaments: make([]Tournament, 0, len(views))}
	for _, v := range views {
		resp.Tournaments = append(resp.Tournaments, toTournament(v.Tournament, v.Evaluation, s.zone))
	}
	return connect.NewResponse(resp), nil
}

func (s *TournamentServer) GetTournament(ctx context.Context, req *connect.Request[GetTournamentRequest]) (*connect.Response[GetTournamentResponse], error) {
	view, err := s.svc.GetTournament(ctx, req.Msg.TournamentID, req.Msg.SteamID, req.Msg.Refresh)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(toDetail(view, s.zone)), nil
}

func (s *TournamentServer) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[GetTournamentResponse], error) {
	view, err := s.svc.Register(ctx, req.Msg.TournamentID, domain.Identity{
		SteamID:     req.Msg.SteamID,
		PersonaName: req.Msg.PersonaName,
		AvatarURL:   req.Msg.AvatarURL,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(toDetail(view, s.zone)), nil
}

func (s *TournamentServer) Unregister(ctx context.Context, req *connect.Request[ParticipantRequest]) (*connect.Response[GetTournamentResponse], error) {
	view, err := s.svc.Unregister(ctx, req.Msg.TournamentID, req.Msg.SteamID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(toDetail(view, s.zone)), nil
}

func (s *TournamentServer) Confirm(ctx context.Context, req *connect.Request[ParticipantRequest]) (*connect.Response[GetTournamentResponse], error) {
	view, err := s.svc.Confirm(ctx, req.Msg.TournamentID, req.Msg.SteamID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(toDetail(view, s.zone)), nil
}

func (s *TournamentServer) AdminOverview(ctx context.Context, req *connect.Request[AdminOverviewRequest]) (*connect.Response[AdminOverviewResponse], error) {
	views, err := s.svc.AdminOverview(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &AdminOverviewResponse{Tournaments: make([]AdminTournament, 0, len(views))}
	for _, v := range views {
		resp.Tournaments = append(resp.Tournaments, toAdminTournament(v, s.zone))
	}
	return connect.NewResponse(resp), nil
}
