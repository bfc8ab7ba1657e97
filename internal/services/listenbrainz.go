// ListenBrainz API implementation of [Service]
//
// Request and response shapes based on https://listenbrainz.readthedocs.io/en/latest/users/api/core.html
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/desertthunder/lbx/internal/models"
	"github.com/desertthunder/lbx/internal/shared"
	"golang.org/x/oauth2"
)

const (
	listenBrainzBaseURL = "https://api.listenbrainz.org"

	submitListensPath = "/1/submit-listens"
	validateTokenPath = "/1/validate-token"

	// listenTypeImport marks a historical bulk submission, as opposed to a
	// live "playing_now" or "single" listen.
	listenTypeImport = "import"

	// listeningFrom tags imported listens with their origin platform.
	listeningFrom = "lastfm"
)

// listenPayload is the wire shape of one listen in a submit-listens request.
type listenPayload struct {
	ListenedAt    int64         `json:"listened_at"`
	TrackMetadata trackMetadata `json:"track_metadata"`
}

type trackMetadata struct {
	ArtistName     string          `json:"artist_name"`
	TrackName      string          `json:"track_name"`
	ReleaseName    string          `json:"release_name,omitempty"`
	AdditionalInfo *additionalInfo `json:"additional_info,omitempty"`
}

type additionalInfo struct {
	ListeningFrom string `json:"listening_from,omitempty"`
}

// submitRequest is the body of a submit-listens request.
type submitRequest struct {
	ListenType string          `json:"listen_type"`
	Payload    []listenPayload `json:"payload"`
}

// tokenValidation is the response of the validate-token endpoint.
type tokenValidation struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Valid    bool   `json:"valid"`
	UserName string `json:"user_name"`
}

// apiMessage is the generic error body returned on failed requests.
type apiMessage struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

// ListenBrainzService implements the Service interface for the ListenBrainz API.
//
// Auth uses the account's user token via an [oauth2] static token source with
// the non-standard "Token" scheme the API expects.
type ListenBrainzService struct {
	baseURL    string
	httpClient *http.Client
}

// NewListenBrainzService creates a new ListenBrainz service authenticated
// with the given user token.
func NewListenBrainzService(ctx context.Context, baseURL, token string) (*ListenBrainzService, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty ListenBrainz token", shared.ErrMissingCredentials)
	}
	if baseURL == "" {
		baseURL = listenBrainzBaseURL
	}

	source := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		// ListenBrainz expects "Authorization: Token <token>", not Bearer.
		TokenType: "Token",
	})

	return &ListenBrainzService{
		baseURL:    baseURL,
		httpClient: oauth2.NewClient(ctx, source),
	}, nil
}

func (s *ListenBrainzService) Name() string {
	return "ListenBrainz"
}

// ValidateToken checks the configured token and returns the account name.
func (s *ListenBrainzService) ValidateToken(ctx context.Context) (string, error) {
	var result tokenValidation
	if err := s.doRequest(ctx, http.MethodGet, validateTokenPath, nil, &result); err != nil {
		return "", err
	}

	if !result.Valid {
		return "", fmt.Errorf("%w: %s", shared.ErrInvalidToken, result.Message)
	}

	return result.UserName, nil
}

// SubmitListens submits one batch of listens as a historical import.
func (s *ListenBrainzService) SubmitListens(ctx context.Context, listens []models.Listen) error {
	if len(listens) == 0 {
		return fmt.Errorf("%w: empty batch", shared.ErrInvalidArgument)
	}

	payload := make([]listenPayload, len(listens))
	for i, l := range listens {
		payload[i] = listenPayload{
			ListenedAt: l.ListenedAt,
			TrackMetadata: trackMetadata{
				ArtistName:     l.Artist,
				TrackName:      l.Track,
				ReleaseName:    l.Album,
				AdditionalInfo: &additionalInfo{ListeningFrom: listeningFrom},
			},
		}
	}

	body := submitRequest{ListenType: listenTypeImport, Payload: payload}
	return s.doRequest(ctx, http.MethodPost, submitListensPath, body, nil)
}

// doRequest performs an authenticated HTTP request against the API and
// decodes the JSON response into result when provided.
//
// 401 maps to [shared.ErrInvalidToken]; every other non-2xx status maps to an
// [*APIError] carrying any rate-limit wait the server suggested.
func (s *ListenBrainzService) doRequest(ctx context.Context, method, path string, body, result any) error {
	apiURL := s.baseURL + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// No response at all means the API could not be reached; the retry
		// layer treats this as transient.
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: status %d", shared.ErrInvalidToken, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    readAPIMessage(resp.Body),
			RetryAfter: retryAfter(resp.Header),
		}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// readAPIMessage extracts the error string from a failed response body.
func readAPIMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}

	var msg apiMessage
	if err := json.Unmarshal(data, &msg); err == nil && msg.Error != "" {
		return msg.Error
	}
	return ""
}

// retryAfter parses the server-suggested wait from rate-limit headers.
// ListenBrainz sends X-RateLimit-Reset-In (seconds); Retry-After is the
// generic fallback.
func retryAfter(header http.Header) time.Duration {
	for _, key := range []string{"X-RateLimit-Reset-In", "Retry-After"} {
		if value := header.Get(key); value != "" {
			if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
				return time.Duration(seconds) * time.Second
			}
		}
	}
	return 0
}
