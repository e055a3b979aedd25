package claude

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/nestory/nestory/internal/ocr"
)

// maxTokens leaves ample room for the four-line reply.
const maxTokens = 256

type ClaudeAnalyzer struct {
	client *anthropic.Client
	model  string
}

var _ ocr.ReceiptAnalyzer = (*ClaudeAnalyzer)(nil)

func NewClaudeAnalyzer(apiKey, model string, opts ...anthropic.ClientOption) *ClaudeAnalyzer {
	return &ClaudeAnalyzer{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

func (a *ClaudeAnalyzer) Analyze(ctx context.Context, r io.Reader, mimeType string) (*ocr.Extraction, error) {
	imageData, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	resp, err := a.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(a.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{{
			Role: anthropic.RoleUser,
			Content: []anthropic.MessageContent{
				anthropic.NewImageMessageContent(anthropic.NewMessageContentSource(
					anthropic.MessagesContentSourceTypeBase64,
					normaliseMIME(mimeType),
					base64.StdEncoding.EncodeToString(imageData),
				)),
				anthropic.NewTextMessageContent(ocr.ReceiptPrompt),
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call claude: %w", err)
	}

	return ocr.ParseResponse(resp.GetFirstContentText()), nil
}

// normaliseMIME maps browser MIME types to the values the Anthropic API
// accepts. Unknown types are sent as jpeg.
func normaliseMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}
