package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/agenda"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/common"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/credentials"
	log "github.com/echocat/slf4g"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"io"
	"net/http"
	"strings"
	"time"
)

const chatCompletionsPath = "/chat/completions"

func NewClient(conf *Configuration) *Client {
	return &Client{conf: conf}
}

// Client talks to an OpenAI compatible chat completions API.
type Client struct {
	conf         *Configuration
	saveConfFunc func() error
	apiKey       string

	client http.Client
}

// Initialize resolves the API key. It fails with ErrNoApiKey if none is
// available and prompting for it is not enabled.
func (this *Client) Initialize(saveConfFunc func() error) error {
	this.saveConfFunc = saveConfFunc

	apiKey, err := this.resolveApiKey()
	if err != nil {
		return err
	}
	this.apiKey = apiKey

	log.With("baseUrl", this.conf.BaseUrl).
		With("model", this.conf.Model).
		Debug("Oracle initialized.")
	return nil
}

func (this *Client) Dispose() error {
	this.apiKey = ""
	this.saveConfFunc = nil
	this.client.CloseIdleConnections()
	return nil
}

func (this *Client) resolveApiKey() (string, error) {
	var cred credentials.Credentials
	if _, err := cred.ReadFromStore(); err != nil {
		return "", fmt.Errorf("cannot read credentials: %w", err)
	}
	cred.Merge(credentials.Credentials{OracleApiKey: this.conf.ApiKey})
	if !cred.IsOracleZero() {
		return cred.OracleApiKey, nil
	}
	if !this.conf.PromptForApiKey {
		return "", ErrNoApiKey
	}

	log.With("baseUrl", this.conf.BaseUrl).
		Info("API key required to access the oracle.")
	if err := common.RequestStringContentIfRequiredFromTerminal(&cred.OracleApiKey, "API key", false, true); err != nil {
		return "", fmt.Errorf("cannot request API key: %w", err)
	}
	if err := this.storeApiKey(cred.OracleApiKey); err != nil {
		return "", fmt.Errorf("cannot store API key: %w", err)
	}
	return cred.OracleApiKey, nil
}

func (this *Client) storeApiKey(v string) error {
	supported, err := credentials.Update(func(cred *credentials.Credentials) {
		cred.OracleApiKey = v
	})
	if err != nil {
		return err
	}
	if supported {
		return nil
	}

	this.conf.ApiKey = v
	if this.saveConfFunc == nil {
		return nil
	}
	return this.saveConfFunc()
}

func (this *Client) JudgeTangent(ctx context.Context, req TangentRequest) (Judgment, error) {
	fail := func(err error) (Judgment, error) {
		return Judgment{}, &TransientError{"judge tangent", err}
	}

	body, err := this.request(0.1, 256, assessConversationTool,
		message{"user", tangentPrompt(req)},
	)
	if err != nil {
		return fail(err)
	}
	rsp, err := this.complete(ctx, body)
	if err != nil {
		return fail(err)
	}
	args, err := toolArguments(rsp)
	if err != nil {
		return fail(err)
	}

	var result Judgment
	if err := result.Status.Set(args.Get("status").String()); err != nil {
		return fail(err)
	}
	confidence := args.Get("confidence")
	if confidence.Type != gjson.Number {
		return fail(fmt.Errorf("illegal confidence: %s", confidence.Raw))
	}
	result.Confidence = confidence.Float()
	result.ShouldSpeak = args.Get("should_speak").Bool()
	result.SpokenResponse = strings.TrimSpace(args.Get("spoken_response").String())

	log.With("topic", req.Topic).
		With("judgment", result).
		Debug("Conversation judged.")
	return result, nil
}

// SummarizeItem always returns notes carrying the id and topic of the item,
// even if it fails.
func (this *Client) SummarizeItem(ctx context.Context, req SummaryRequest) (agenda.Notes, error) {
	result := agenda.Notes{
		ItemID: req.Item.ID,
		Topic:  req.Item.Topic,
	}
	fail := func(err error) (agenda.Notes, error) {
		return result, &TransientError{"summarize item", err}
	}

	body, err := this.request(0.2, 512, recordItemSummaryTool,
		message{"user", summaryPrompt(req)},
	)
	if err != nil {
		return fail(err)
	}
	rsp, err := this.complete(ctx, body)
	if err != nil {
		return fail(err)
	}
	args, err := toolArguments(rsp)
	if err != nil {
		return fail(err)
	}

	result.KeyPoints = stringsOf(args.Get("key_points"))
	result.Decisions = stringsOf(args.Get("decisions"))
	result.ActionItems = stringsOf(args.Get("action_items"))

	log.With("topic", req.Item.Topic).
		Info("Item summarized.")
	return result, nil
}

func (this *Client) Answer(ctx context.Context, q Question) (string, error) {
	fail := func(err error) (string, error) {
		return "", &TransientError{"answer", err}
	}

	body, err := this.request(0.4, 200, "",
		message{"system", answerSystemPrompt(q)},
		message{"user", answerUserPrompt(q)},
	)
	if err != nil {
		return fail(err)
	}
	rsp, err := this.complete(ctx, body)
	if err != nil {
		return fail(err)
	}

	result := normalizeAnswer(gjson.GetBytes(rsp, "choices.0.message.content").String())
	if result == "" {
		return fail(errors.New("response contains no content"))
	}
	return result, nil
}

type message struct {
	role    string
	content string
}

func (this *Client) request(temperature float64, maxTokens int, tool string, messages ...message) (result []byte, err error) {
	set := func(in []byte, path string, v any) []byte {
		if err != nil {
			return in
		}
		var out []byte
		out, err = sjson.SetBytes(in, path, v)
		return out
	}
	setRaw := func(in []byte, path string, v string) []byte {
		if err != nil {
			return in
		}
		var out []byte
		out, err = sjson.SetRawBytes(in, path, []byte(v))
		return out
	}

	result = set([]byte(`{}`), "model", this.conf.Model)
	result = setRaw(result, "messages", `[]`)
	for _, m := range messages {
		plain := set([]byte(`{}`), "role", m.role)
		plain = set(plain, "content", m.content)
		result = setRaw(result, "messages.-1", string(plain))
	}
	if tool != "" {
		result = setRaw(result, "tools", "["+tool+"]")
		if v := this.conf.ToolChoice; v != "" {
			result = set(result, "tool_choice", v)
		}
	}
	result = set(result, "temperature", temperature)
	result = set(result, "max_tokens", maxTokens)

	if err != nil {
		return nil, fmt.Errorf("cannot build request: %w", err)
	}
	return result, nil
}

func (this *Client) complete(ctx context.Context, body []byte) ([]byte, error) {
	if this.apiKey == "" {
		return nil, ErrNoApiKey
	}
	if v := this.conf.Timeout; v > 0 {
		var cancelFunc context.CancelFunc
		ctx, cancelFunc = context.WithTimeout(ctx, v)
		defer cancelFunc()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(this.conf.BaseUrl, "/")+chatCompletionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+this.apiKey)

	start := time.Now()
	rsp, err := this.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to access %v: %w", req.URL, err)
	}
	defer func() {
		_ = rsp.Body.Close()
	}()

	result, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response of %v: %w", req.URL, err)
	}
	log.With("status", rsp.StatusCode).
		With("duration", time.Since(start)).
		Trace("Oracle responded.")

	if rsp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - %s", rsp.StatusCode, errorMessageOf(result, rsp.Status))
	}
	if !gjson.ValidBytes(result) {
		return nil, errors.New("response is not valid JSON")
	}
	return result, nil
}

func errorMessageOf(body []byte, def string) string {
	for _, path := range []string{"error.message", "message", "detail"} {
		if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return def
}

func toolArguments(rsp []byte) (gjson.Result, error) {
	raw := gjson.GetBytes(rsp, "choices.0.message.tool_calls.0.function.arguments")
	if !raw.Exists() {
		return gjson.Result{}, errors.New("response contains no tool call")
	}
	plain := raw.String()
	if raw.IsObject() {
		plain = raw.Raw
	}
	if !gjson.Valid(plain) {
		return gjson.Result{}, fmt.Errorf("tool call arguments are no valid JSON: %q", plain)
	}
	return gjson.Parse(plain), nil
}

func stringsOf(v gjson.Result) []string {
	var result []string
	for _, e := range v.Array() {
		if s := strings.TrimSpace(e.String()); s != "" {
			result = append(result, s)
		}
	}
	return result
}
