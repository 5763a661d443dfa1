package llm

import (
	"context"
	"fmt"
	"math"

	"google.golang.org/genai"
)

const (
	// DefaultModel is the default Gemini model used for all generation stages.
	DefaultModel = "gemini-2.0-flash"
	// DefaultEmbeddingModel is the default model for generating embeddings.
	DefaultEmbeddingModel = "gemini-embedding-001"
	// DefaultEmbeddingDimensions is the output dimension for embeddings (Matryoshka).
	DefaultEmbeddingDimensions = int32(768)
)

// Client wraps the Gemini SDK for text generation and embeddings.
type Client struct {
	modelName      string
	embeddingModel string
	gClient        *genai.Client
}

// Options configures a Client.
type Options struct {
	Model          string  // Generation model, defaults to DefaultModel
	EmbeddingModel string  // Embedding model, defaults to DefaultEmbeddingModel
	Temperature    float32 // Generation temperature
}

// NewClient creates a new LLM client. The API key is required; model names
// fall back to the package defaults when empty.
func NewClient(ctx context.Context, apiKey string, opts Options) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required; set GEMINI_API_KEY")
	}

	modelName := opts.Model
	if modelName == "" {
		modelName = DefaultModel
	}
	embeddingModel := opts.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		modelName:      modelName,
		embeddingModel: embeddingModel,
		gClient:        gClient,
	}, nil
}

// GenerateText sends a prompt to the generation model and returns the raw
// response text. Callers decide how to interpret it; responses may or may not
// contain fenced JSON.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}

	return text, nil
}

// GenerateEmbedding generates a vector embedding for the given text.
// Uses Matryoshka truncation to output 768 dimensions.
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	// Embedding models have token limits; truncate conservatively.
	if len(text) > 8000 {
		text = text[:8000]
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: text}},
		Role:  "user",
	}}

	dims := DefaultEmbeddingDimensions
	config := &genai.EmbedContentConfig{
		OutputDimensionality: &dims,
	}

	resp, err := c.gClient.Models.EmbedContent(ctx, c.embeddingModel, contents, config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("no embedding values returned from API")
	}

	values := resp.Embeddings[0].Values
	embedding := make([]float64, len(values))
	for i, val := range values {
		embedding[i] = float64(val)
	}

	return embedding, nil
}

// ModelName returns the configured generation model name.
func (c *Client) ModelName() string {
	return c.modelName
}

// CosineSimilarity calculates the cosine similarity between two embeddings.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
