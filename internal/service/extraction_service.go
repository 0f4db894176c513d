package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/mergeed-api/internal/models"
	"github.com/noah-isme/mergeed-api/pkg/genai"
)

// Fallback classification tables. Order matters: the first matching
// category wins, mirroring the review dashboards' expectations.
var problemKeywords = []struct {
	category string
	keywords []string
}{
	{"absenteeism", []string{"absent", "skip", "missing", "attendance", "not coming", "absentee"}},
	{"engagement", []string{"boring", "bored", "engage", "interest", "motivate", "attention", "focus", "participation"}},
	{"learning", []string{"learn", "understand", "concept", "difficult", "hard", "not getting", "confused"}},
	{"behavior", []string{"discipline", "behavior", "rude", "noisy", "disruptive", "fight"}},
	{"infrastructure", []string{"tech", "computer", "internet", "device", "lab", "facility", "equipment"}},
	{"resources", []string{"book", "material", "resource", "tool", "supply", "stationery"}},
}

var languageKeywords = []struct {
	language string
	keywords []string
}{
	{"bengali", []string{"bengali", "bangla", "bengal"}},
	{"hindi", []string{"hindi"}},
	{"marathi", []string{"marathi"}},
	{"tamil", []string{"tamil"}},
	{"telugu", []string{"telugu"}},
	{"kannada", []string{"kannada"}},
	{"malayalam", []string{"malayalam"}},
	{"english", []string{"english", "inglish"}},
}

var (
	lowInfraWords  = []string{"low", "basic", "poor", "none", "no", "without", "limited"}
	highInfraWords = []string{"high", "advanced", "good", "excellent", "full", "complete", "smart"}
)

// ExtractionService turns a teacher's free-text message into structured
// teaching-context parameters. It never fails outward: any provider or
// parsing failure falls back to the deterministic keyword classifier.
type ExtractionService struct {
	provider genai.TextGenerator
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewExtractionService constructs an ExtractionService.
func NewExtractionService(provider genai.TextGenerator, metrics *MetricsService, logger *zap.Logger) *ExtractionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtractionService{provider: provider, metrics: metrics, logger: logger}
}

const extractionPromptFormat = `Extract teaching context from this teacher's message. Return ONLY valid JSON with these keys:
- "problem" (string): Main teaching challenge (e.g., "absenteeism", "engagement", "learning", "behavior", "resources", "other")
- "language" (string): Subject language (e.g., "English", "Hindi", "Marathi", "Bengali", etc.)
- "infrastructure" (string): "Low", "Medium", or "High"
- "raw_message" (string): The original message

Teacher's message: %q

Example response: {"problem": "engagement", "language": "Hindi", "infrastructure": "Medium", "raw_message": "original message here"}`

// Extract returns structured parameters for the message. The raw message
// is always echoed back untouched.
func (s *ExtractionService) Extract(ctx context.Context, message string) models.ExtractedParams {
	if s.provider != nil && s.provider.Ready() {
		params, err := s.extractWithModel(ctx, message)
		if err == nil {
			if s.metrics != nil {
				s.metrics.ObserveAICall("extract", AIModeModel)
			}
			return params
		}
		s.logger.Warn("model extraction failed, using fallback", zap.Error(err))
	}

	if s.metrics != nil {
		s.metrics.ObserveAICall("extract", AIModeFallback)
	}
	return s.fallbackExtract(message)
}

func (s *ExtractionService) extractWithModel(ctx context.Context, message string) (models.ExtractedParams, error) {
	prompt := fmt.Sprintf(extractionPromptFormat, message)
	text, err := s.provider.GenerateText(ctx, prompt, genai.GenerationConfig{
		Temperature:     0.1,
		MaxOutputTokens: 200,
	})
	if err != nil {
		return models.ExtractedParams{}, err
	}

	cleaned := stripCodeFences(text)
	var params models.ExtractedParams
	if err := json.Unmarshal([]byte(cleaned), &params); err != nil {
		return models.ExtractedParams{}, fmt.Errorf("parse extraction response: %w", err)
	}
	if params.Problem == "" || params.Language == "" || params.Infrastructure == "" {
		return models.ExtractedParams{}, fmt.Errorf("extraction response missing required keys")
	}
	// The model occasionally rewrites the message; the stored record must
	// keep the teacher's original words.
	params.RawMessage = message
	params.Error = ""
	return params, nil
}

func (s *ExtractionService) fallbackExtract(message string) models.ExtractedParams {
	lower := strings.ToLower(message)

	problem := "other"
	for _, entry := range problemKeywords {
		if containsAny(lower, entry.keywords) {
			problem = entry.category
			break
		}
	}

	language := "english"
	for _, entry := range languageKeywords {
		if containsAny(lower, entry.keywords) {
			language = entry.language
			break
		}
	}

	infrastructure := models.InfrastructureMedium
	tokens := strings.Fields(lower)
	switch {
	case tokensContainAny(tokens, lowInfraWords):
		infrastructure = models.InfrastructureLow
	case tokensContainAny(tokens, highInfraWords):
		infrastructure = models.InfrastructureHigh
	}

	return models.ExtractedParams{
		Problem:        problem,
		Language:       capitalize(language),
		Infrastructure: infrastructure,
		RawMessage:     message,
	}
}

func stripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

func containsAny(haystack string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(haystack, keyword) {
			return true
		}
	}
	return false
}

func tokensContainAny(tokens []string, words []string) bool {
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	for _, word := range words {
		if _, ok := set[word]; ok {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
