package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/mergeed-api/internal/models"
	"github.com/noah-isme/mergeed-api/pkg/genai"
)

// Banner strings let callers and tests tell degraded output from model
// output by inspection alone.
const (
	StrategyBanner = "**AI TEACHING STRATEGY**"
	FallbackBanner = "**AI TEACHING STRATEGY** (Fallback Mode)"
	OfflineBanner  = "**AI TEACHING STRATEGY** (Offline Mode)"
)

// StrategyService turns extracted parameters into a teaching strategy
// document. It never fails outward: provider failures fall back to a
// deterministic template carrying the fallback banner.
type StrategyService struct {
	provider genai.TextGenerator
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewStrategyService constructs a StrategyService.
func NewStrategyService(provider genai.TextGenerator, metrics *MetricsService, logger *zap.Logger) *StrategyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StrategyService{provider: provider, metrics: metrics, logger: logger}
}

const strategyPromptFormat = `You are an expert AI teaching assistant for Indian schools. Generate a practical, actionable teaching strategy.

CONTEXT:
- Subject Language: %s
- Main Problem: %s
- Infrastructure Level: %s
- Teacher's Query: %q

REQUIREMENTS:
1. Provide SPECIFIC, PRACTICAL strategies (not generic advice)
2. Include 2-3 actionable steps the teacher can implement immediately
3. Suggest resources appropriate for %s infrastructure level
4. Mention how to adapt for %s language teaching
5. Include assessment ideas to measure progress
6. Keep it encouraging and supportive
7. Use bullet points and clear sections
8. Maximum 400 words

FORMAT:
Start with: "%s"

Include these sections:
1. **Quick Wins** (2 things to try tomorrow)
2. **Detailed Approach** (step-by-step plan)
3. **Resources Needed** (matching %s infrastructure)
4. **Assessment Ideas**
5. **Expected Timeline**

Remember: Be specific to %s teaching and %s problem.`

// Generate returns a strategy document for the extracted parameters.
func (s *StrategyService) Generate(ctx context.Context, params models.ExtractedParams) string {
	if s.provider != nil && s.provider.Ready() {
		text, err := s.generateWithModel(ctx, params)
		if err == nil {
			if s.metrics != nil {
				s.metrics.ObserveAICall("generate", AIModeModel)
			}
			return text
		}
		s.logger.Warn("model strategy generation failed, using fallback", zap.Error(err))
	}

	if s.metrics != nil {
		s.metrics.ObserveAICall("generate", AIModeFallback)
	}
	return FallbackStrategy(params)
}

func (s *StrategyService) generateWithModel(ctx context.Context, params models.ExtractedParams) (string, error) {
	prompt := fmt.Sprintf(strategyPromptFormat,
		params.Language, params.Problem, params.Infrastructure, params.RawMessage,
		params.Infrastructure, params.Language,
		StrategyBanner,
		params.Infrastructure,
		params.Language, params.Problem,
	)
	text, err := s.provider.GenerateText(ctx, prompt, genai.GenerationConfig{
		Temperature:     0.7,
		MaxOutputTokens: 1000,
		TopP:            0.9,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// FallbackStrategy renders the deterministic template used whenever the
// generative provider is unavailable or fails.
func FallbackStrategy(params models.ExtractedParams) string {
	return fmt.Sprintf(`%s

**Context:** %s | %s | %s Infrastructure

**QUICK WINS** (Try tomorrow):
1. **Warm-up Activity**: Start class with a 5-minute %s word game
2. **Peer Teaching**: Pair students to explain concepts to each other

**DETAILED APPROACH**:
- Break lessons into 15-minute chunks with mini-activities
- Use visual aids (charts, drawings) for %s concepts
- Implement think-pair-share discussions

**RESOURCES NEEDED** (%s infrastructure):
- Basic: Paper, markers, flashcards
- Medium: Projector, audio player
- High: Digital tools, interactive apps

**ASSESSMENT IDEAS**:
- Weekly 5-question quizzes
- Peer feedback sessions
- Learning journals

**TIMELINE**:
Week 1: Implement 1-2 strategies
Week 2: Gather student feedback
Week 3: Adjust and expand

**Need specific help?** Describe your exact classroom situation for more tailored advice.`,
		FallbackBanner,
		params.Language, params.Problem, params.Infrastructure,
		params.Language,
		params.Language,
		params.Infrastructure,
	)
}

// OfflineStrategy is the generic document returned when the whole
// pipeline is unavailable and no parameters could be extracted at all.
func OfflineStrategy(message string) string {
	preview := message
	if runes := []rune(preview); len(runes) > 100 {
		preview = string(runes[:100]) + "..."
	}
	return fmt.Sprintf(`%s

I understand you're asking: %q

**GENERAL TEACHING STRATEGY:**

**Quick Classroom Tips:**
- Start with a 5-minute warm-up activity
- Use visual aids to explain concepts
- Implement peer learning groups
- Provide immediate feedback

**Student Engagement:**
- Use think-pair-share discussions
- Incorporate movement breaks
- Gamify learning with points/levels
- Connect lessons to real-life examples

**Assessment Ideas:**
- Exit tickets at end of class
- Weekly mini-quizzes
- Peer assessment activities
- Learning journals

**When the assistant is back online, you'll receive personalized strategies based on your specific classroom context, language, and infrastructure.**`,
		OfflineBanner, preview)
}
