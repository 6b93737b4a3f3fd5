package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/saadtariq57/richtv-chatbot/pkg/logger"
)

// IntentKind is the outcome of the combined classify-and-answer call.
type IntentKind int

const (
	// IntentGeneral means the query is conceptual and Answer carries the
	// model's direct response.
	IntentGeneral IntentKind = iota
	// IntentSpecific means the query is about a particular asset and Ticker
	// carries the model's best symbol guess.
	IntentSpecific
	// IntentUnclear covers off-topic queries, model failures, and responses
	// that did not match the expected grammar.
	IntentUnclear
)

// IntentResult is the parsed outcome of ClassifyAndAnswer.
type IntentResult struct {
	Kind   IntentKind
	Answer string
	Ticker string
}

const classifyPrompt = `You are a financial query analyzer. Analyze this user query and respond in ONE of these formats:

1. If it's a GENERAL financial/investing question (concepts, definitions, how things work):
   Provide a clear, concise answer
   Format: ANSWER: [your answer here]

2. If it's about a SPECIFIC stock, company, or ticker:
   Extract the ticker symbol (or best guess if company name given)
   Format: NEEDS_DATA: [TICKER]

3. If it's unclear, off-topic, or not about finance/investing:
   Format: CANNOT_ANSWER

Examples:
- "What is a dividend?" -> ANSWER: A dividend is a payment made by a corporation to its shareholders...
- "How much is Apple trading at?" -> NEEDS_DATA: AAPL
- "What's NVDA price?" -> NEEDS_DATA: NVDA
- "What's the weather?" -> CANNOT_ANSWER

User Query: "%s"

Your Response:`

// ClassifyAndAnswer makes one model call that both classifies the query and,
// for conceptual questions, answers it directly. Model failures and
// unexpected output degrade to IntentUnclear; this method never errors.
func (c *Client) ClassifyAndAnswer(ctx context.Context, query string) IntentResult {
	response, err := c.Generate(ctx, fmt.Sprintf(classifyPrompt, query), 0.3)
	if err != nil {
		logger.Warn("Classify-and-answer call failed", zap.Error(err))
		return IntentResult{Kind: IntentUnclear}
	}

	response = strings.TrimSpace(response)
	switch {
	case strings.HasPrefix(response, "ANSWER:"):
		return IntentResult{
			Kind:   IntentGeneral,
			Answer: strings.TrimSpace(strings.TrimPrefix(response, "ANSWER:")),
		}
	case strings.HasPrefix(response, "NEEDS_DATA:"):
		ticker := strings.TrimSpace(strings.TrimPrefix(response, "NEEDS_DATA:"))
		ticker = strings.ToUpper(strings.Trim(ticker, "\"'.,!?"))
		if ticker == "" {
			return IntentResult{Kind: IntentUnclear}
		}
		return IntentResult{Kind: IntentSpecific, Ticker: ticker}
	default:
		return IntentResult{Kind: IntentUnclear}
	}
}

const extractNamePrompt = `Extract ONLY the company or asset name from this query. Return just the name, nothing else.

Examples:
- "What's Figma trading at?" -> Figma
- "Tell me Nvidia's price" -> Nvidia
- "Bitcoin value?" -> Bitcoin
- "What is SAP worth?" -> SAP

Query: "%s"

Answer (company/asset name only):`

// ExtractEntityName asks the model for the bare company/asset name in the
// query. Used by the ticker-validity recheck and the rescue retry when
// pattern extraction produced nothing usable.
func (c *Client) ExtractEntityName(ctx context.Context, query string) (string, error) {
	response, err := c.Generate(ctx, fmt.Sprintf(extractNamePrompt, query), 0.1)
	if err != nil {
		return "", err
	}

	name := strings.Trim(strings.TrimSpace(response), "\"'.,!?")
	if name == "" {
		return "", fmt.Errorf("entity extraction returned empty response")
	}
	return name, nil
}

const answerPrompt = `You are RichTVBot, a financial assistant. Only use the following financial data.
Do not invent numbers. Answer the user's question based only on this data.
If the data is insufficient, respond with "%s"

Data: %s

User Question: %s

Answer:`

// GenerateAnswer phrases an answer strictly from the fetched context,
// serialized as JSON by the caller. It never returns an error; failures
// degrade to the fixed insufficiency message.
func (c *Client) GenerateAnswer(ctx context.Context, contextJSON, question string) string {
	prompt := fmt.Sprintf(answerPrompt, InsufficientDataMessage, contextJSON, question)

	response, err := c.Generate(ctx, prompt, 0.3)
	if err != nil {
		logger.Warn("Answer generation failed", zap.Error(err))
		return InsufficientDataMessage
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return InsufficientDataMessage
	}
	return response
}
