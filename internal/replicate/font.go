package replicate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"outfit-studio-backend/internal/models"
)

const fontModel = "google/gemini-3-pro"

const fontPrompt = `Analyze the font style in this image. Identify the font and recommend 10 similar Google Fonts that match the style.

Return your response as a JSON object with this exact structure:
{
  "detectedFont": "Font name or description",
  "confidence": 0.85,
  "similarFonts": [
    {
      "name": "Roboto",
      "similarity": 0.95,
      "category": "sans-serif",
      "googleFontsUrl": "https://fonts.google.com/specimen/Roboto"
    }
  ]
}

Important:
- Provide exactly 10 similar fonts
- Use real Google Fonts names
- Include similarity scores (0-1)
- Include font categories (serif, sans-serif, display, handwriting, monospace)
- Include Google Fonts URLs`

// RecognizeFont sends the image to a vision model and extracts the JSON
// object from its free-form answer.
func (c *Client) RecognizeFont(ctx context.Context, image string) (*models.FontRecognitionResult, error) {
	var prediction *Prediction
	err := c.RetryWithBackoff(ctx, func() error {
		var runErr error
		prediction, runErr = c.Run(ctx, fontModel, map[string]interface{}{
			"prompt": fontPrompt,
			"image":  image,
		})
		return runErr
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("font recognition failed: %w", err)
	}

	text, err := prediction.OutputText()
	if err != nil {
		return nil, fmt.Errorf("font recognition failed: %w", err)
	}

	return parseFontResponse(text)
}

// parseFontResponse pulls the first JSON object out of the model text.
// Vision models wrap their answer in prose more often than not.
func parseFontResponse(text string) (*models.FontRecognitionResult, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON found in model response")
	}

	var result models.FontRecognitionResult
	if err := json.Unmarshal([]byte(text[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("invalid font recognition response: %w", err)
	}

	if result.DetectedFont == "" || result.SimilarFonts == nil {
		return nil, fmt.Errorf("incomplete font recognition response")
	}

	return &result, nil
}
