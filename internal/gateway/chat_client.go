package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

type space struct {
	Name string `json:"name"`
}

// sendDirectMessage resolves the recipient's DM space and posts text, retrying on rate limits
// with a delay of attempt*2s.
func (g *Gateway) sendDirectMessage(ctx context.Context, email, text string) error {
	var err error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		err = g.deliverDirectMessage(ctx, email, text)
		if err == nil {
			return nil
		}
		if !IsRateLimited(err) {
			return err
		}
		if attempt == g.cfg.MaxAttempts {
			break
		}
		delay := time.Duration(attempt) * 2 * time.Second
		g.logger.Info("chat provider rate limited; backing off",
			zap.String("recipient", email),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
		)
		if sleepErr := g.sleep(ctx, delay); sleepErr != nil {
			return sleepErr
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", g.cfg.MaxAttempts, err)
}

func (g *Gateway) deliverDirectMessage(ctx context.Context, email, text string) error {
	spaceName, err := g.findOrCreateSpace(ctx, email)
	if err != nil {
		return err
	}
	return g.call(ctx, "send message", http.MethodPost, g.cfg.ChatBaseURL+"/"+spaceName+"/messages", map[string]string{"text": text}, nil)
}

func (g *Gateway) findOrCreateSpace(ctx context.Context, email string) (string, error) {
	var found space
	findURL := fmt.Sprintf("%s/spaces:findDirectMessage?name=%s", g.cfg.ChatBaseURL, url.QueryEscape("users/"+email))
	err := g.call(ctx, "find space", http.MethodGet, findURL, nil, &found)
	if err == nil && found.Name != "" {
		return found.Name, nil
	}
	if err != nil && !isNotFound(err) {
		return "", err
	}

	setup := map[string]any{
		"space": map[string]any{
			"spaceType":       "DIRECT_MESSAGE",
			"singleUserBotDm": true,
		},
		"memberships": []map[string]any{
			{"member": map[string]string{"name": "users/" + email, "type": "HUMAN"}},
		},
	}
	var created space
	if err := g.call(ctx, "setup space", http.MethodPost, g.cfg.ChatBaseURL+"/spaces:setup", setup, &created); err != nil {
		return "", err
	}
	if created.Name == "" {
		return "", fmt.Errorf("setup space: provider returned no space name")
	}
	return created.Name, nil
}

// call performs one authenticated provider request under its own deadline.
func (g *Gateway) call(ctx context.Context, op, method, rawURL string, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	target, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	query := target.Query()
	query.Set("key", g.cfg.APIKey)
	target.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s: read body: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Op: op, Status: resp.StatusCode, Body: string(respBody)}
	}
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%s: decode body: %w", op, err)
		}
	}
	return nil
}
