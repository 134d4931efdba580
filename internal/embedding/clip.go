package embedding

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
)

// ClipEmbedder is a client for an out-of-process CLIP embedding service.
// The model itself runs elsewhere; this client only ships texts or image
// bytes over HTTP and normalizes the returned vectors.
type ClipEmbedder struct {
	baseURL    string
	dimensions int
	client     *http.Client
}

// NewClipEmbedder creates a client for the CLIP service at baseURL producing
// vectors of the given dimensionality.
func NewClipEmbedder(baseURL string, dimensions int, timeout time.Duration) *ClipEmbedder {
	return &ClipEmbedder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		dimensions: dimensions,
		client:     &http.Client{Timeout: timeout},
	}
}

type encodeTextRequest struct {
	Texts []string `json:"texts"`
}

type encodeImageRequest struct {
	ImageBase64 string `json:"image_base64"`
}

type encodeResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// EncodeText embeds texts in order; the response must carry one vector per text.
func (e *ClipEmbedder) EncodeText(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts to encode")
	}
	var resp encodeResponse
	if err := e.post(ctx, "/encode/text", encodeTextRequest{Texts: texts}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d texts", len(resp.Embeddings), len(texts))
	}
	for i, vec := range resp.Embeddings {
		if len(vec) != e.dimensions {
			return nil, fmt.Errorf("embedding %d has dimension %d, expected %d", i, len(vec), e.dimensions)
		}
		normalize(vec)
	}
	return resp.Embeddings, nil
}

// EncodeImage embeds one image.
func (e *ClipEmbedder) EncodeImage(ctx context.Context, image []byte) ([]float32, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("no image data to encode")
	}
	var resp encodeResponse
	req := encodeImageRequest{ImageBase64: base64.StdEncoding.EncodeToString(image)}
	if err := e.post(ctx, "/encode/image", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != 1 {
		return nil, fmt.Errorf("embedding service returned %d vectors for one image", len(resp.Embeddings))
	}
	vec := resp.Embeddings[0]
	if len(vec) != e.dimensions {
		return nil, fmt.Errorf("embedding has dimension %d, expected %d", len(vec), e.dimensions)
	}
	normalize(vec)
	return vec, nil
}

// Dimensions returns the embedding dimensionality.
func (e *ClipEmbedder) Dimensions() int { return e.dimensions }

// Close is a no-op; the embedding service owns the model lifecycle.
func (e *ClipEmbedder) Close() error { return nil }

func (e *ClipEmbedder) post(ctx context.Context, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("embedding service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode embedding response: %w", err)
	}
	return nil
}

// normalize scales vec to unit L2 length in place. The service should already
// return normalized vectors; this keeps cosine scores well-defined if not.
func normalize(vec []float32) {
	v64 := make([]float64, len(vec))
	for i, x := range vec {
		v64[i] = float64(x)
	}
	norm := floats.Norm(v64, 2)
	if norm == 0 {
		return
	}
	for i := range vec {
		vec[i] = float32(v64[i] / norm)
	}
}
