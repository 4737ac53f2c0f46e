// Package platform is the HTTP client of the MediConnect domain query gateway.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mediconnect/assistant/internal/config"
	"github.com/mediconnect/assistant/internal/domain/chat/models"
	"github.com/mediconnect/assistant/pkg/logger"
)

const platformRequester = "platform"

type Service struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

type QueryRequest struct {
	RequesterID string `json:"requester_id"`
	Role        string `json:"role"`
	Query       string `json:"query"`
}

// NewService returns nil when GATEWAY_URL is not configured
func NewService() *Service {
	cfg := config.GetGatewayConfig()
	if cfg.URL == "" {
		logger.Warn(logger.GATEWAY, "Domain query gateway not configured - GATEWAY_URL missing")
		return nil
	}

	return NewServiceWithConfig(cfg)
}

func NewServiceWithConfig(cfg config.GatewayConfig) *Service {
	return &Service{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
	}
}

// Query asks the gateway for data relevant to text. It returns nil, nil when the gateway
// has nothing for this requester.
func (s *Service) Query(ctx context.Context, requesterID, role, text string) (*models.QueryResult, error) {
	if requesterID == "" {
		requesterID = platformRequester
	}

	jsonData, err := json.Marshal(QueryRequest{
		RequesterID: requesterID,
		Role:        role,
		Query:       text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/assistant/query", s.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		httpReq.Header.Set("X-API-Key", s.apiKey)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent, http.StatusNotFound:
		logger.Debug(logger.GATEWAY, "No domain data for requester %s", requesterID)
		return nil, nil
	default:
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr != nil {
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		logger.Error(logger.GATEWAY, "Gateway query failed with status %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var result models.QueryResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}
