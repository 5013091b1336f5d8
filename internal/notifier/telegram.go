package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultTelegramURL = "https://api.telegram.org"

	// MaxMessageLen is the Bot API limit on sendMessage text, in characters.
	MaxMessageLen = 4096
)

// TelegramNotifier sends messages via the Telegram Bot API. Reports longer
// than MaxLen are delivered as several messages split on line boundaries.
type TelegramNotifier struct {
	BotToken  string
	ChatID    string
	BaseURL   string
	ParseMode string
	MaxLen    int
	Client    *http.Client
	logger    zerolog.Logger
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		BotToken:  botToken,
		ChatID:    chatID,
		BaseURL:   defaultTelegramURL,
		ParseMode: "HTML",
		MaxLen:    MaxMessageLen,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		logger: log.With().Str("component", "telegram").Logger(),
	}
}

func (t *TelegramNotifier) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.BaseURL, t.BotToken, method)
}

// Send sends a message to the configured chat.
func (t *TelegramNotifier) Send(text string) error {
	for _, chunk := range splitMessage(text, t.maxLen()) {
		if err := t.sendChunk(chunk); err != nil {
			return err
		}
	}
	return nil
}

func (t *TelegramNotifier) sendChunk(text string) error {
	payload := map[string]string{
		"chat_id": t.ChatID,
		"text":    text,
	}
	if t.ParseMode != "" {
		payload["parse_mode"] = t.ParseMode
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	resp, err := t.Client.Post(t.endpoint("sendMessage"), "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff retry. Each chunk
// of a split message is retried on its own, so delivered chunks are not resent.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	chunks := splitMessage(text, t.maxLen())
	for n, chunk := range chunks {
		if err := t.retryChunk(ctx, chunk, maxRetries); err != nil {
			if len(chunks) > 1 {
				return fmt.Errorf("part %d of %d: %w", n+1, len(chunks), err)
			}
			return err
		}
	}
	return nil
}

func (t *TelegramNotifier) retryChunk(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := t.sendChunk(text); err != nil {
			lastErr = err
			backoff := time.Duration(1<<uint(i)) * time.Second
			t.logger.Warn().Err(err).
				Int("attempt", i+1).
				Int("max", maxRetries+1).
				Dur("backoff", backoff).
				Msg("telegram send failed, retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}

func (t *TelegramNotifier) maxLen() int {
	if t.MaxLen <= 0 || t.MaxLen > MaxMessageLen {
		return MaxMessageLen
	}
	return t.MaxLen
}

// splitMessage cuts text into chunks of at most limit runes. Cuts happen
// after a newline when one is available so report rows stay whole; a single
// line longer than limit is cut mid-line.
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	var chunks []string
	for {
		text = strings.TrimLeft(text, "\n")
		if utf8.RuneCountInString(text) <= limit {
			if text = strings.TrimRight(text, "\n"); text != "" {
				chunks = append(chunks, text)
			}
			return chunks
		}
		cut := runeOffset(text, limit)
		if nl := strings.LastIndexByte(text[:cut], '\n'); nl > 0 {
			cut = nl + 1
		}
		chunks = append(chunks, strings.TrimRight(text[:cut], "\n"))
		text = text[cut:]
	}
}

// runeOffset returns the byte offset of the n-th rune of s.
func runeOffset(s string, n int) int {
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}
