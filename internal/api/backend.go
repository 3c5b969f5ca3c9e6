package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"portal-tournaments/internal/config"
	"portal-tournaments/internal/constants"
	"portal-tournaments/internal/domain"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// BackendClient talks to the hosted tournaments function. The function is a
// single URL that switches on method and query string.
type BackendClient struct {
	baseURL string
	client  *fasthttp.Client
	logger  zerolog.Logger
}

func NewBackendClient(cfg *config.Config, logger zerolog.Logger) *BackendClient {
	return NewBackendClientWith(cfg.TournamentsURL, &fasthttp.Client{
		MaxConnsPerHost:     100,
		ReadTimeout:         constants.ExternalAPITimeout,
		WriteTimeout:        constants.ExternalAPITimeout,
		MaxIdleConnDuration: 1 * time.Minute,
	}, logger)
}

func NewBackendClientWith(baseURL string, client *fasthttp.Client, logger zerolog.Logger) *BackendClient {
	return &BackendClient{
		baseURL: baseURL,
		client:  client,
		logger:  logger.With().Str("component", "backend").Logger(),
	}
}

// ListTournaments returns every tournament ordered by start date. With a
// non-empty steamID the rows carry the caller's registration.
func (c *BackendClient) ListTournaments(ctx context.Context, steamID string) ([]domain.Tournament, error) {
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	if steamID != "" {
		args.Set("steam_id", steamID)
	}

	resp, err := doRequest[TournamentListResponse](ctx, c, fasthttp.MethodGet, c.url(args), nil, fasthttp.StatusOK)
	if err != nil {
		return nil, err
	}

	fetchedAt := time.Now().UTC()
	tournaments := make([]domain.Tournament, 0, len(resp.Tournaments))
	for _, t := range resp.Tournaments {
		tournaments = append(tournaments, t.toDomain(fetchedAt))
	}
	return tournaments, nil
}

func (c *BackendClient) GetTournament(ctx context.Context, tournamentID int64) (*domain.TournamentDetail, error) {
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	args.Set("tournament_id", strconv.FormatInt(tournamentID, 10))

	resp, err := doRequest[TournamentDetailResponse](ctx, c, fasthttp.MethodGet, c.url(args), nil, fasthttp.StatusOK)
	if err != nil {
		return nil, err
	}
	detail := resp.toDomain(time.Now().UTC())
	return &detail, nil
}

func (c *BackendClient) Register(ctx context.Context, tournamentID int64, who domain.Identity) error {
	body := RegistrationRequest{
		TournamentID: tournamentID,
		SteamID:      who.SteamID,
		PersonaName:  who.PersonaName,
		AvatarURL:    who.AvatarURL,
	}
	_, err := doRequest[MessageResponse](ctx, c, fasthttp.MethodPost, c.baseURL, body, fasthttp.StatusCreated, fasthttp.StatusOK)
	return err
}

func (c *BackendClient) Unregister(ctx context.Context, tournamentID int64, steamID string) error {
	body := RegistrationRef{TournamentID: tournamentID, SteamID: steamID}
	_, err := doRequest[MessageResponse](ctx, c, fasthttp.MethodDelete, c.baseURL, body, fasthttp.StatusOK)
	return err
}

func (c *BackendClient) Confirm(ctx context.Context, tournamentID int64, steamID string) error {
	body := RegistrationRef{TournamentID: tournamentID, SteamID: steamID}
	_, err := doRequest[MessageResponse](ctx, c, fasthttp.MethodPatch, c.baseURL, body, fasthttp.StatusOK)
	return err
}

func (c *BackendClient) url(args *fasthttp.Args) string {
	if args.Len() == 0 {
		return c.baseURL
	}
	return c.baseURL + "?" + args.String()
}

func doRequest[T any](ctx context.Context, client *BackendClient, method, url string, body any, expected ...int) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	start := time.Now()
	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, fmt.Errorf("%s %s: %w: %w", method, url, ErrUnavailable, err)
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, fmt.Errorf("%s %s: %w: %w", method, url, ErrUnavailable, err)
		}
	}

	client.logger.Debug().
		Str("method", method).
		Str("url", url).
		Int("status", resp.StatusCode()).
		Dur("took", time.Since(start)).
		Msg("backend request")

	if !statusIn(resp.StatusCode(), expected) {
		return nil, newBackendError(resp.StatusCode(), resp.Body())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	return &result, nil
}

func statusIn(status int, expected []int) bool {
	for _, s := range expected {
		if s == status {
			return true
		}
	}
	return false
}
