package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Config holds SMS provider settings. Provider "log" is a no-op sender that
// only logs the message, acceptable for non-production deployments.
type Config struct {
	Enable   bool   `yaml:"enable"`
	Provider string `yaml:"provider"` // "http" | "log"
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	From     string `yaml:"from"`
}

// Sender delivers one-time codes over SMS.
type Sender struct {
	cfg        Config
	codeTTL    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg Config, codeTTL time.Duration, logger *zap.Logger) *Sender {
	return &Sender{
		cfg:        cfg,
		codeTTL:    codeTTL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// Enabled reports whether the channel is configured to deliver at all.
func (s *Sender) Enabled() bool { return s.cfg.Enable }

type smsPayload struct {
	To      string `json:"to"`
	From    string `json:"from,omitempty"`
	Message string `json:"message"`
}

// SendCode delivers a one-time code to a phone number. Implements the
// delivery channel interface consumed by the code engine.
func (s *Sender) SendCode(ctx context.Context, target, code, purpose string) error {
	if !s.cfg.Enable {
		return nil
	}

	message := fmt.Sprintf("%s is your verification code. It expires in %d minutes.", code, int(s.codeTTL.Minutes()))

	if s.cfg.Provider == "log" || s.cfg.Endpoint == "" {
		s.logger.Info("sms (log provider)",
			zap.String("to", target),
			zap.String("purpose", purpose),
		)
		return nil
	}

	b, err := json.Marshal(smsPayload{To: target, From: s.cfg.From, Message: message})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sms provider error %d", resp.StatusCode)
	}
	return nil
}
