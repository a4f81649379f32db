package classifier_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"saaqreg/internal/arbitrate"
	"saaqreg/internal/classifier"
	"saaqreg/internal/config"
	"saaqreg/internal/pairs"
	"saaqreg/internal/verdict"
)

func fixturePairs() (pairs.Pair, pairs.Candidate) {
	noisy := pairs.MustNew("VOLV0", "XC90", []string{"PAU"}, pairs.NewYearRange(2021, 2024), pairs.NewYearRange(2023, 2024))
	ref := pairs.MustNew("VOLVO", "XC90", []string{"PAU"}, pairs.NewYearRange(2003, 2022), pairs.NewYearRange(2011, 2022))
	return noisy, pairs.Candidate{Pair: ref, Score: 0.9361}
}

func staticCompleter(content string, err error) classifier.Completer {
	return classifier.CompleterFunc(func(context.Context, string, string) (string, error) {
		return content, err
	})
}

func TestClassifyStructuredResponse(t *testing.T) {
	noisy, candidate := fixturePairs()
	c := classifier.New(staticCompleter(`{"classification":"spelling_variant","regularize":true,"confidence":0.93,"reasoning":"digit zero typed for letter O"}`, nil), nil, nil)

	v := c.Classify(context.Background(), noisy, candidate)
	require.Equal(t, verdict.SourceClassifier, v.Source)
	require.Equal(t, verdict.LabelSpellingVariant, v.Label)
	require.Equal(t, verdict.Support, v.Stance)
	require.InDelta(t, 0.93, v.Confidence, 1e-9)
	require.NotNil(t, v.Regularize)
	require.True(t, *v.Regularize)
	require.Equal(t, "digit zero typed for letter O", v.Rationale)
	require.False(t, v.Degraded)
}

func TestClassifyTransportFailureIsUncertain(t *testing.T) {
	noisy, candidate := fixturePairs()
	c := classifier.New(staticCompleter("", errors.New("connection refused")), nil, nil)

	v := c.Classify(context.Background(), noisy, candidate)
	require.Equal(t, verdict.LabelUncertain, v.Label)
	require.Equal(t, verdict.Neutral, v.Stance)
	require.InDelta(t, 0.5, v.Confidence, 1e-9)
	require.True(t, v.Degraded)
	require.Contains(t, v.Rationale, "connection refused")
}

func TestParseResponseFallbacks(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		label      verdict.Label
		confidence float64
		structured bool
	}{
		{"fenced json", "```json\n{\"classification\":\"new model\",\"confidence\":0.8}\n```", verdict.LabelNewModel, 0.8, true},
		{"json percent confidence", `{"classification":"truncation_variant","confidence":85}`, verdict.LabelTruncationVariant, 0.85, true},
		{"json without confidence", `{"classification":"typo"}`, verdict.LabelSpellingVariant, 0.5, true},
		{"keywords with confidence", "This looks like a typo of the candidate. Confidence: 0.9", verdict.LabelSpellingVariant, 0.9, false},
		{"keywords with percent", "Probably a different model entirely (confidence 70%)", verdict.LabelNewModel, 0.7, false},
		{"earliest support keyword wins", "Truncated name, also a misspelling.", verdict.LabelTruncationVariant, 0.5, false},
		{"negated keyword", "Truncated name, not a new model.", verdict.LabelUncertain, 0.5, false},
		{"negated typo", "This is not a typo: X4 is a distinct new model. Confidence: 0.9", verdict.LabelUncertain, 0.9, false},
		{"negated new model", "It's not a new model; it is a typo. Confidence: 0.9", verdict.LabelUncertain, 0.9, false},
		{"contraction negates", "This isn't really a typo.", verdict.LabelUncertain, 0.5, false},
		{"conflicting labels", "Could be a typo or a new model.", verdict.LabelUncertain, 0.5, false},
		{"nothing usable", "I cannot help with that.", verdict.LabelUncertain, 0.5, false},
		{"empty", "", verdict.LabelUncertain, 0.5, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := classifier.ParseResponse(tc.content)
			require.Equal(t, tc.label, got.Label)
			require.InDelta(t, tc.confidence, got.Confidence, 1e-9)
			require.Equal(t, tc.structured, got.Structured)
		})
	}
}

func TestParseResponseFreeTextNeedsExplicitYes(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		regularize bool
	}{
		{"keyword only", "This looks like a typo. Confidence: 0.9", false},
		{"leading yes", "Yes. The zero is a typo for the letter O. Confidence: 0.95", true},
		{"leading no", "No, this is a different model.", false},
		{"labelled answer", "Spelling variant. Regularize: yes. Confidence 90%", true},
		{"labelled refusal", "Spelling variant. Recommendation: no", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := classifier.ParseResponse(tc.content)
			require.NotNil(t, got.Regularize)
			require.Equal(t, tc.regularize, *got.Regularize)
		})
	}

	structured := classifier.ParseResponse(`{"classification":"spelling_variant","confidence":0.9}`)
	require.Nil(t, structured.Regularize)
}

func TestClassifyNegatedAnswerIsPreserved(t *testing.T) {
	noisy, candidate := fixturePairs()
	c := classifier.New(staticCompleter("This is not a typo: X4 is a distinct new model. Confidence: 0.9", nil), nil, nil)

	v := c.Classify(context.Background(), noisy, candidate)
	require.Equal(t, verdict.LabelUncertain, v.Label)
	require.Equal(t, verdict.Neutral, v.Stance)
	require.NotNil(t, v.Regularize)
	require.False(t, *v.Regularize)

	d := arbitrate.New(arbitrate.Thresholds{}, nil).Decide(context.Background(), noisy, candidate, []verdict.Verdict{v})
	require.False(t, d.ShouldRegularize)
}

func TestUserPromptDescribesBothPairs(t *testing.T) {
	noisy, candidate := fixturePairs()
	prompt := classifier.UserPrompt(noisy, candidate)

	var decoded struct {
		Noisy struct {
			Make              string `json:"make"`
			RegistrationYears string `json:"registration_years"`
		} `json:"noisy"`
		Candidate struct {
			Make       string `json:"make"`
			ModelYears string `json:"model_years"`
		} `json:"candidate"`
		Similarity float64 `json:"similarity"`
	}
	require.NoError(t, json.Unmarshal([]byte(prompt), &decoded))
	require.Equal(t, "VOLV0", decoded.Noisy.Make)
	require.Equal(t, "2023-2024", decoded.Noisy.RegistrationYears)
	require.Equal(t, "VOLVO", decoded.Candidate.Make)
	require.Equal(t, "2003-2022", decoded.Candidate.ModelYears)
	require.InDelta(t, 0.936, decoded.Similarity, 1e-9)
}

func TestLimitsCapInflightCalls(t *testing.T) {
	limits := classifier.NewLimits(2, 0)
	var active, peak atomic.Int32
	completer := classifier.CompleterFunc(func(context.Context, string, string) (string, error) {
		n := active.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		active.Add(-1)
		return `{"classification":"uncertain"}`, nil
	})

	noisy, candidate := fixturePairs()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			classifier.New(completer, limits, nil).Classify(context.Background(), noisy, candidate)
		}()
	}
	wg.Wait()
	require.LessOrEqual(t, peak.Load(), int32(2))
}

func TestLimitsRespectCancellation(t *testing.T) {
	limits := classifier.NewLimits(1, 0)
	release, err := limits.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	noisy, candidate := fixturePairs()
	v := classifier.New(staticCompleter(`{"classification":"spelling_variant"}`, nil), limits, nil).Classify(ctx, noisy, candidate)
	require.True(t, v.Degraded)
	require.Equal(t, verdict.LabelUncertain, v.Label)
}

func TestFactoryBuildsOpenRouterClient(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		body := new(strings.Builder)
		_ = json.NewEncoder(body).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": `{"classification":"new_model","confidence":0.88,"reasoning":"launched 2023"}`}}},
		})
		_, _ = w.Write([]byte(body.String()))
	}))
	defer server.Close()

	factory := classifier.NewFactory(config.LLMConfig{Provider: "openrouter", APIKey: "test", BaseURL: server.URL, Model: "demo", RetryAttempts: 1})
	noisy, candidate := fixturePairs()
	v := classifier.New(factory(), nil, nil).Classify(context.Background(), noisy, candidate)
	require.Equal(t, verdict.LabelNewModel, v.Label)
	require.Equal(t, verdict.Prevent, v.Stance)
	require.Equal(t, int32(1), calls.Load())
}
