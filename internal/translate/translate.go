// Package translate is a memoized pass-through to third-party translation
// services, used by the rendering side to localize descriptions. Every
// successful translation is cached in a JSON file so reruns cost nothing.
// Failures degrade to the original text, never to an error the caller has
// to handle.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultEndpoint = "https://translate.googleapis.com/translate_a/single"
	maxInputLen     = 4000
	cacheKeyPrefix  = 100 // first N chars of the text form the cache key
)

type Translator struct {
	mu        sync.Mutex
	cachePath string
	cache     map[string]string

	http      *http.Client
	endpoint  string
	openaiKey string
}

func New(cachePath string) *Translator {
	return &Translator{
		cachePath: cachePath,
		cache:     make(map[string]string),
		http:      &http.Client{Timeout: 15 * time.Second},
		endpoint:  defaultEndpoint,
		openaiKey: os.Getenv("OPENAI_API_KEY"),
	}
}

// LoadCache reads previously cached translations; a missing file is fine.
func (t *Translator) LoadCache() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := os.ReadFile(t.cachePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read translation cache: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &t.cache); err != nil {
		return fmt.Errorf("unmarshal translation cache: %w", err)
	}
	return nil
}

// SaveCache rewrites the cache file.
func (t *Translator) SaveCache() error {
	t.mu.Lock()
	data, err := json.MarshalIndent(t.cache, "", "  ")
	t.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal translation cache: %w", err)
	}
	if err := os.WriteFile(t.cachePath, data, 0644); err != nil {
		return fmt.Errorf("write translation cache: %w", err)
	}
	return nil
}

// Translate returns text in the target language, or the original text when
// every service fails. Cache first, then the free Google endpoint, then
// OpenAI when a key is configured.
func (t *Translator) Translate(ctx context.Context, text, from, to string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 10 || from == to {
		return text
	}

	key := cacheKey(trimmed, from, to)
	t.mu.Lock()
	if cached, ok := t.cache[key]; ok {
		t.mu.Unlock()
		return cached
	}
	t.mu.Unlock()

	input := trimmed
	if len(input) > maxInputLen {
		input = input[:maxInputLen]
	}

	result, err := t.translateWithGoogle(ctx, input, from, to)
	if err != nil && t.openaiKey != "" {
		result, err = t.translateWithOpenAI(ctx, input, from, to)
	}
	if err != nil || result == "" || result == input {
		return text
	}

	t.mu.Lock()
	t.cache[key] = result
	t.mu.Unlock()
	return result
}

func cacheKey(text, from, to string) string {
	prefix := text
	if len(prefix) > cacheKeyPrefix {
		prefix = prefix[:cacheKeyPrefix]
	}
	return fmt.Sprintf("%s-%s:%s", from, to, prefix)
}

// translateWithGoogle uses the free public endpoint.
func (t *Translator) translateWithGoogle(ctx context.Context, text, from, to string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", from)
	params.Set("tl", to)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := t.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate endpoint status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return parseGoogleResponse(body)
}

// parseGoogleResponse unpacks the nested-array response shape:
// [[["translated","original",...],...],...]
func parseGoogleResponse(body []byte) (string, error) {
	var response []interface{}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if len(response) == 0 {
		return "", errors.New("empty translate response")
	}
	parts, ok := response[0].([]interface{})
	if !ok {
		return "", errors.New("unexpected translate response format")
	}

	var result strings.Builder
	for _, part := range parts {
		if arr, ok := part.([]interface{}); ok && len(arr) > 0 {
			if s, ok := arr[0].(string); ok {
				result.WriteString(s)
			}
		}
	}
	if result.Len() == 0 {
		return "", errors.New("no translation in response")
	}
	return result.String(), nil
}

func (t *Translator) translateWithOpenAI(ctx context.Context, text, from, to string) (string, error) {
	client := openai.NewClient(t.openaiKey)

	prompt := fmt.Sprintf(`Translate the following text from %q to %q.
Keep the meaning and tone of the original. Reply with the translation only.

%s`, from, to, text)

	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT3Dot5Turbo,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxCompletionTokens: 2000,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
