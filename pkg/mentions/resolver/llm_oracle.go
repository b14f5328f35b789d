package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/seihyo/seihyo-cli/pkg/politicians"
	"golang.org/x/text/width"
)

// LLMOracle implements Oracle against an OpenAI-compatible chat completion
// endpoint. The reply contract is {"selected_index": N, "confidence": X}
// with index 0 meaning "no match"; models that ignore the JSON instruction
// and answer in free text (「番号: 2」「信頼度: 0.95」) are handled by a
// fallback parser. Anything that still cannot be interpreted surfaces as a
// parse-failure OracleError.
type LLMOracle struct {
	config     OracleConfig
	httpClient *http.Client
	prompt     *template.Template
}

// NewLLMOracle creates an oracle backed by the configured endpoint.
func NewLLMOracle(cfg OracleConfig) *LLMOracle {
	return &LLMOracle{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		prompt: template.Must(template.New("arbitrate").Parse(arbitratePromptTemplate)),
	}
}

const arbitrateSystemPrompt = `あなたは日本の政治家データベースの名寄せを行うアシスタントです。` +
	`抽出された人物の言及と候補者一覧を照合し、同一人物と判断できる候補者を一人だけ選んでください。` +
	`氏名の表記揺れ、政党、役職、選挙区を手がかりにしてください。`

const arbitratePromptTemplate = `以下の言及に該当する政治家を候補者一覧から選んでください。

言及:
  氏名: {{.Mention.Name}}
{{- if .Mention.PartyName}}
  政党: {{.Mention.PartyName}}
{{- end}}
{{- if .Mention.Role}}
  役職: {{.Mention.Role}}
{{- end}}
{{- if .Mention.GroupName}}
  所属グループ: {{.Mention.GroupName}}
{{- end}}

候補者一覧:
{{- range .Candidates}}
{{.Num}}. {{.Name}}{{if .Party}}（{{.Party}}）{{end}}{{if .Position}} / {{.Position}}{{end}}{{if .Prefecture}} / {{.Prefecture}}{{end}}
{{- end}}

該当する候補者の番号と信頼度（0.0〜1.0）をJSONで答えてください。
該当者がいない場合は番号0を返してください。

例: {"selected_index": 2, "confidence": 0.95}`

// candidateView is the prompt-side projection of a candidate.
type candidateView struct {
	Num        int
	Name       string
	Party      string
	Position   string
	Prefecture string
}

// Arbitrate asks the LLM which candidate the mention refers to.
func (o *LLMOracle) Arbitrate(ctx context.Context, mention MentionContext, candidates []politicians.Politician) (Arbitration, error) {
	prompt, err := o.renderPrompt(mention, candidates)
	if err != nil {
		return Arbitration{}, &OracleError{Code: OracleErrParseFailure, Message: fmt.Sprintf("render prompt: %v", err)}
	}

	var lastErr error
	for attempt := 0; attempt <= o.config.MaxRetries; attempt++ {
		content, err := o.complete(ctx, arbitrateSystemPrompt, prompt)
		if err != nil {
			// Transport errors don't improve with a reworded prompt.
			return Arbitration{}, err
		}

		arb, err := parseArbitration(content, len(candidates))
		if err != nil {
			lastErr = err
			if attempt < o.config.MaxRetries {
				prompt = prompt + "\n\n必ずJSONのみで回答してください。例: {\"selected_index\": 1, \"confidence\": 0.9}"
			}
			continue
		}

		return arb, nil
	}

	return Arbitration{}, lastErr
}

// IsAvailable checks if the endpoint is reachable.
func (o *LLMOracle) IsAvailable(ctx context.Context) bool {
	url := fmt.Sprintf("%s/v1/models", o.config.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	if o.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.config.APIKey)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func (o *LLMOracle) renderPrompt(mention MentionContext, candidates []politicians.Politician) (string, error) {
	views := make([]candidateView, 0, len(candidates))
	for i, c := range candidates {
		v := candidateView{Num: i + 1, Name: c.Name, Party: c.Party()}
		if c.Position != nil {
			v.Position = *c.Position
		}
		if c.Prefecture != nil {
			v.Prefecture = *c.Prefecture
		}
		views = append(views, v)
	}

	data := struct {
		Mention    MentionContext
		Candidates []candidateView
	}{
		Mention:    mention,
		Candidates: views,
	}

	var buf bytes.Buffer
	if err := o.prompt.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// chatMessage represents a message in the chat conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the OpenAI-compatible chat completion request.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// chatChoice represents a completion choice.
type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// chatResponse is the OpenAI-compatible chat completion response.
type chatResponse struct {
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

// complete sends one chat completion request and returns the raw content.
func (o *LLMOracle) complete(ctx context.Context, system, prompt string) (string, error) {
	chatReq := chatRequest{
		Model: o.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.1, // low temperature for deterministic arbitration
		MaxTokens:   256,
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return "", &OracleError{Code: OracleErrParseFailure, Message: fmt.Sprintf("marshal request: %v", err)}
	}

	url := fmt.Sprintf("%s/v1/chat/completions", o.config.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &OracleError{Code: OracleErrUnavailable, Message: fmt.Sprintf("create request: %v", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if o.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.config.APIKey)
	}

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", &OracleError{Code: OracleErrTimeout, Message: "request timeout"}
		}
		return "", &OracleError{Code: OracleErrUnavailable, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &OracleError{Code: OracleErrParseFailure, Message: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &OracleError{
			Code:    OracleErrUnavailable,
			Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", &OracleError{Code: OracleErrParseFailure, Message: fmt.Sprintf("parse response: %v", err)}
	}

	if len(chatResp.Choices) == 0 {
		return "", &OracleError{Code: OracleErrParseFailure, Message: "no choices in response"}
	}

	return chatResp.Choices[0].Message.Content, nil
}

// flexFloat64 is a float64 that can unmarshal from both JSON numbers and
// strings. Small models frequently quote numeric values.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat64(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("flexFloat64: cannot parse %q: %w", s, err)
		}
		*f = flexFloat64(n)
		return nil
	}
	return fmt.Errorf("flexFloat64: cannot unmarshal %s", string(data))
}

// flexInt is an int that tolerates quoted values.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexInt(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("flexInt: cannot parse %q: %w", s, err)
		}
		*f = flexInt(n)
		return nil
	}
	return fmt.Errorf("flexInt: cannot unmarshal %s", string(data))
}

var (
	indexLinePattern      = regexp.MustCompile(`番号\s*[:：]\s*([0-9]+)`)
	confidenceLinePattern = regexp.MustCompile(`信頼度\s*[:：]\s*([0-9]*\.?[0-9]+)`)
)

// parseArbitration interprets the oracle's reply. It first tries the JSON
// contract, then falls back to free-text 「番号/信頼度」 lines. An index
// outside [0, numCandidates] or a confidence outside [0, 1] is rejected.
func parseArbitration(content string, numCandidates int) (Arbitration, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var parsed struct {
		SelectedIndex flexInt     `json:"selected_index"`
		Confidence    flexFloat64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err == nil {
		return validateArbitration(int(parsed.SelectedIndex), float64(parsed.Confidence), numCandidates)
	}

	// Free-text fallback. Fold full-width digits first so 「番号：２」 parses.
	folded := width.Fold.String(cleaned)

	indexMatch := indexLinePattern.FindStringSubmatch(folded)
	if indexMatch == nil {
		return Arbitration{}, &OracleError{
			Code:    OracleErrParseFailure,
			Message: "response is neither valid JSON nor recognizable free text",
			Details: content,
		}
	}
	index, err := strconv.Atoi(indexMatch[1])
	if err != nil {
		return Arbitration{}, &OracleError{Code: OracleErrParseFailure, Message: fmt.Sprintf("parse index: %v", err), Details: content}
	}

	confidence := 0.0
	if confMatch := confidenceLinePattern.FindStringSubmatch(folded); confMatch != nil {
		confidence, err = strconv.ParseFloat(confMatch[1], 64)
		if err != nil {
			return Arbitration{}, &OracleError{Code: OracleErrParseFailure, Message: fmt.Sprintf("parse confidence: %v", err), Details: content}
		}
	}

	return validateArbitration(index, confidence, numCandidates)
}

func validateArbitration(index int, confidence float64, numCandidates int) (Arbitration, error) {
	if index < 0 || index > numCandidates {
		return Arbitration{}, &OracleError{
			Code:    OracleErrParseFailure,
			Message: fmt.Sprintf("selected index %d out of range [0, %d]", index, numCandidates),
		}
	}
	if confidence < 0 || confidence > 1 {
		return Arbitration{}, &OracleError{
			Code:    OracleErrParseFailure,
			Message: fmt.Sprintf("confidence %.3f outside [0, 1]", confidence),
		}
	}
	return Arbitration{SelectedIndex: index, Confidence: confidence}, nil
}
