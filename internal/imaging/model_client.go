package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"imagibox-server/internal/interfaces"
	"imagibox-server/internal/models"
)

// Compile-time check to ensure httpImageModelClient implements ImageModelClient
var _ interfaces.ImageModelClient = (*httpImageModelClient)(nil)

// imageModelRequest is the JSON body sent to the image model endpoint. The
// sketch travels base64-encoded when present.
type imageModelRequest struct {
	Prompt      string `json:"prompt"`
	SourceImage string `json:"source_image,omitempty"`
}

type httpImageModelClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPImageModelClient creates a client for the HTTP image model API.
func NewHTTPImageModelClient(baseURL string, timeout time.Duration, logger *zap.Logger) interfaces.ImageModelClient {
	return &httpImageModelClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.Named("ImageModelClient"),
	}
}

// Generate posts the prompt (and optional source sketch) to the image model
// and returns the raw image bytes.
func (c *httpImageModelClient) Generate(ctx context.Context, prompt string, sourceImage []byte) ([]byte, error) {
	payload := imageModelRequest{Prompt: prompt}
	if len(sourceImage) > 0 {
		payload.SourceImage = base64.StdEncoding.EncodeToString(sourceImage)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal image model request: %w", err)
	}

	endpointURL := c.baseURL + "/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create image model request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/*")

	c.logger.Debug("Calling image model", zap.String("url", endpointURL))
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("Image model request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrImageGenerationFailed, err)
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Image model returned non-OK status",
			zap.Int("statusCode", resp.StatusCode),
			zap.ByteString("body", data),
		)
		return nil, fmt.Errorf("%w: status %d", models.ErrImageGenerationFailed, resp.StatusCode)
	}
	if readErr != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrImageGenerationFailed, readErr)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image data", models.ErrImageGenerationFailed)
	}
	return data, nil
}
