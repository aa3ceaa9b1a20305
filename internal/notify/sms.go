package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// GatewaySMSSender posts messages to a JSON SMS gateway endpoint
// authenticated with a bearer key. Any gateway accepting
// {"to": ..., "body": ...} works; the studio's provider returns a message id,
// but a local uuid is used when the response omits one.
type GatewaySMSSender struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewGatewaySMSSender creates an SMS sender for the given gateway endpoint.
func NewGatewaySMSSender(endpoint, apiKey string) *GatewaySMSSender {
	return &GatewaySMSSender{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type smsPayload struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

type smsResponse struct {
	MessageID string `json:"message_id"`
}

// SendSMS posts one message to the gateway.
func (s *GatewaySMSSender) SendSMS(ctx context.Context, to, body string) (Result, error) {
	payload, err := json.Marshal(smsPayload{To: to, Body: body})
	if err != nil {
		return Result{}, fmt.Errorf("encoding sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("building sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("to", to).Msg("SMS send failed")
		return Result{}, fmt.Errorf("sms gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error().Int("status_code", resp.StatusCode).Str("to", to).Msg("SMS gateway rejected message")
		return Result{}, fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}

	var decoded smsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil || decoded.MessageID == "" {
		decoded.MessageID = uuid.NewString()
	}

	log.Info().Str("message_id", decoded.MessageID).Str("to", to).Msg("SMS sent")
	return Result{MessageID: decoded.MessageID, SentAt: time.Now()}, nil
}
