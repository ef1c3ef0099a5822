package positions

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/riskos/internal/common"
	"github.com/ternarybob/riskos/internal/httpclient"
	"github.com/ternarybob/riskos/internal/models"
	"golang.org/x/oauth2"
)

const schwabTimeFormat = "2006-01-02T15:04:05.000Z"

// ErrSchwabNotConfigured means no credentials or token file are available
var ErrSchwabNotConfigured = errors.New("Schwab credentials not configured (SCHWAB_API_KEY, SCHWAB_APP_SECRET and a token file are required)")

type accountNumber struct {
	AccountNumber string `json:"accountNumber"`
	HashValue     string `json:"hashValue"`
}

// SchwabSource reads positions, balances and protective stop orders from the Schwab Trader API.
// Without credentials it serves the last snapshot instead.
type SchwabSource struct {
	config common.PositionsConfig
	logger arbor.ILogger
	now    func() time.Time
}

// NewSchwabSource creates a Schwab-backed source
func NewSchwabSource(config common.PositionsConfig, logger arbor.ILogger) *SchwabSource {
	return &SchwabSource{config: config, logger: logger, now: time.Now}
}

// Name identifies the source
func (s *SchwabSource) Name() string { return SourceSchwab }

func (s *SchwabSource) hasCredentials() bool {
	cfg := s.config.Schwab
	if cfg.APIKey == "" || cfg.AppSecret == "" || cfg.TokenPath == "" {
		return false
	}
	_, err := os.Stat(cfg.TokenPath)
	return err == nil
}

// Fetch performs a live fetch and refreshes the snapshot, or falls back to the snapshot
// (Cached=true) when credentials are missing.
func (s *SchwabSource) Fetch(ctx context.Context) models.PositionsResult {
	if !s.hasCredentials() {
		cached, err := ReadSnapshot(s.config.SnapshotPath)
		if err != nil {
			return errorResult(SourceSchwab, fmt.Errorf("%v; no usable snapshot at %s", ErrSchwabNotConfigured, s.config.SnapshotPath))
		}
		if s.logger != nil {
			s.logger.Info().Str("path", s.config.SnapshotPath).Msg("Schwab credentials missing, using cached positions snapshot")
		}
		cached.Cached = true
		if cached.Source == "" {
			cached.Source = SourceSchwab
		}
		return cached
	}

	result, err := s.fetchLive(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn().Err(err).Msg("Schwab positions fetch failed")
		}
		return errorResult(SourceSchwab, err)
	}

	if err := WriteSnapshot(s.config.SnapshotPath, result); err != nil && s.logger != nil {
		s.logger.Warn().Err(err).Str("path", s.config.SnapshotPath).Msg("Failed to write positions snapshot")
	}
	return result
}

func (s *SchwabSource) client(ctx context.Context) (*httpclient.Client, error) {
	cfg := s.config.Schwab
	token, err := LoadToken(cfg.TokenPath)
	if err != nil {
		return nil, err
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.APIKey,
		ClientSecret: cfg.AppSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	source := &persistingTokenSource{
		base: oauthConfig.TokenSource(ctx, token),
		path: cfg.TokenPath,
		last: token.AccessToken,
		onSave: func(err error) {
			if s.logger == nil {
				return
			}
			if err != nil {
				s.logger.Warn().Err(err).Str("path", cfg.TokenPath).Msg("Failed to persist refreshed Schwab token")
				return
			}
			s.logger.Debug().Str("path", cfg.TokenPath).Msg("Persisted refreshed Schwab token")
		},
	}

	httpClient := oauth2.NewClient(ctx, source)
	httpClient.Timeout = httpclient.DefaultTimeout

	return httpclient.New(SourceSchwab,
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithHTTPClient(httpClient),
		httpclient.WithLogger(s.logger),
		httpclient.WithRateLimit(cfg.RateLimit),
	), nil
}

func (s *SchwabSource) fetchLive(ctx context.Context) (models.PositionsResult, error) {
	client, err := s.client(ctx)
	if err != nil {
		return models.PositionsResult{}, err
	}

	var accounts []accountNumber
	if err := client.GetJSON(ctx, "/trader/v1/accounts/accountNumbers", nil, &accounts); err != nil {
		return models.PositionsResult{}, fmt.Errorf("failed to list Schwab accounts: %w", err)
	}
	if len(accounts) == 0 {
		return models.PositionsResult{}, errors.New("no Schwab accounts linked to this token")
	}

	result := models.PositionsResult{Positions: []models.Position{}, Source: SourceSchwab}
	orderStops := make(map[string]float64)

	for _, account := range accounts {
		var payload map[string]interface{}
		params := url.Values{"fields": {"positions"}}
		if err := client.GetJSON(ctx, "/trader/v1/accounts/"+account.HashValue, params, &payload); err != nil {
			return models.PositionsResult{}, fmt.Errorf("failed to fetch Schwab account: %w", err)
		}

		securities := asMap(payload["securitiesAccount"])
		if securities == nil {
			securities = payload
		}
		result.Positions = append(result.Positions, NormalizePositions(asSlice(securities["positions"]))...)

		balances := NormalizeBalances(securities)
		result.Summary.TotalValue += balances.TotalValue
		result.Summary.Cash += balances.Cash

		stops, err := s.fetchStops(ctx, client, account.HashValue)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn().Err(err).Msg("Failed to read Schwab stop orders")
			}
			continue
		}
		for ticker, stop := range stops {
			if current, ok := orderStops[ticker]; !ok || stop > current {
				orderStops[ticker] = stop
			}
		}
	}
	sortPositions(result.Positions)

	if len(orderStops) > 0 {
		ApplyStops(result.Positions, orderStops, true)
	} else {
		manual, err := LoadStops(s.config.StopsPath)
		if err != nil && s.logger != nil {
			s.logger.Warn().Err(err).Str("path", s.config.StopsPath).Msg("Ignoring unreadable stops file")
		}
		ApplyStops(result.Positions, manual, true)
	}

	if s.logger != nil {
		s.logger.Info().
			Int("accounts", len(accounts)).
			Int("positions", len(result.Positions)).
			Int("order_stops", len(orderStops)).
			Msg("Fetched Schwab positions")
	}
	return result, nil
}

func (s *SchwabSource) fetchStops(ctx context.Context, client *httpclient.Client, accountHash string) (map[string]float64, error) {
	now := s.now().UTC()
	lookback := s.config.Schwab.OrderLookbackDays
	if lookback <= 0 {
		lookback = 60
	}

	params := url.Values{}
	params.Set("fromEnteredTime", now.AddDate(0, 0, -lookback).Format(schwabTimeFormat))
	params.Set("toEnteredTime", now.Format(schwabTimeFormat))

	var orders []interface{}
	if err := client.GetJSON(ctx, "/trader/v1/accounts/"+accountHash+"/orders", params, &orders); err != nil {
		return nil, err
	}
	return ExtractStops(orders, s.config.Schwab.ActiveStatuses, s.config.Schwab.ProtectiveOrderTypes), nil
}
