package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/wheelhaus/bikeshop-service/internal/core/domain"
	"github.com/wheelhaus/bikeshop-service/internal/core/ports"
)

const extractionPrompt = `You are reading a photographed bicycle workshop job sheet.
Extract the fields below and reply with a single JSON object, nothing else:
{
  "customer_name": string,
  "customer_phone": string,
  "bike_model": string,
  "work_required": string,
  "labor_cost": number,
  "total_cost": number,
  "date_due": "YYYY-MM-DD"
}
Use empty strings or 0 for anything unreadable. customer_name and work_required
must always be filled in from the sheet.`

// Extractor pulls structured job data out of a job-sheet photo via Gemini.
type Extractor struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger ports.LoggerPort
}

func NewExtractor(ctx context.Context, apiKey, modelName string, logger ports.LoggerPort) (*Extractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}

	return &Extractor{
		client: client,
		model:  client.GenerativeModel(modelName),
		logger: logger,
	}, nil
}

func (e *Extractor) Close() {
	if e.client != nil {
		e.client.Close()
	}
}

func (e *Extractor) ExtractJobSheet(ctx context.Context, image []byte, mimeType string) (*domain.JobSheetData, error) {
	format := "jpeg"
	if strings.HasPrefix(mimeType, "image/") {
		format = strings.TrimPrefix(mimeType, "image/")
	}

	resp, err := e.model.GenerateContent(ctx,
		genai.ImageData(format, image),
		genai.Text(extractionPrompt),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from gemini")
	}

	var fullText string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			fullText += string(txt)
		}
	}

	sheet, err := ParseJobSheet(fullText)
	if err != nil {
		e.logger.Warn("Unusable job sheet response", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	return sheet, nil
}

// ParseJobSheet locates the JSON object inside the model's free-text reply,
// decodes it, and checks the required keys. It fails loudly on any shape
// mismatch rather than passing partial data downstream.
func ParseJobSheet(raw string) (*domain.JobSheetData, error) {
	payload := extractJSONObject(raw)
	if payload == "" {
		return nil, fmt.Errorf("no JSON object in extraction response")
	}

	var sheet domain.JobSheetData
	decoder := json.NewDecoder(strings.NewReader(payload))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&sheet); err != nil {
		return nil, fmt.Errorf("malformed extraction JSON: %w", err)
	}

	if strings.TrimSpace(sheet.CustomerName) == "" {
		return nil, fmt.Errorf("extraction missing customer_name")
	}
	if strings.TrimSpace(sheet.WorkRequired) == "" {
		return nil, fmt.Errorf("extraction missing work_required")
	}

	return &sheet, nil
}

// extractJSONObject strips markdown fences and returns the first
// brace-balanced object in the text, or "" when none closes.
func extractJSONObject(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")

	start := strings.Index(cleaned, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(cleaned); i++ {
		ch := cleaned[i]
		if inString {
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return cleaned[start : i+1]
			}
		}
	}
	return ""
}
