package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEmbeddingAPI is a mock implementation of EmbeddingAPI
type MockEmbeddingAPI struct {
	mock.Mock
}

func (m *MockEmbeddingAPI) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockChatAPI is a mock implementation of ChatAPI
type MockChatAPI struct {
	mock.Mock
}

func (m *MockChatAPI) CreateChatCompletion(ctx context.Context, system, user string) (string, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Error(1)
}

func TestGenerateEmbedding(t *testing.T) {
	ctx := context.Background()

	t.Run("returns embedding of expected dimension", func(t *testing.T) {
		mockAPI := new(MockEmbeddingAPI)
		client := &Client{api: mockAPI, dimensions: 3}

		mockAPI.On("CreateEmbeddings", mock.Anything, "some text").Return([]float32{0.1, 0.2, 0.3}, nil)

		embedding, err := client.GenerateEmbedding(ctx, "some text")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, embedding)
	})

	t.Run("rejects empty text", func(t *testing.T) {
		client := &Client{api: new(MockEmbeddingAPI), dimensions: 3}

		_, err := client.GenerateEmbedding(ctx, "")
		assert.ErrorIs(t, err, ErrEmptyText)
	})

	t.Run("rejects wrong dimensions", func(t *testing.T) {
		mockAPI := new(MockEmbeddingAPI)
		client := &Client{api: mockAPI, dimensions: 3}

		mockAPI.On("CreateEmbeddings", mock.Anything, mock.Anything).Return([]float32{0.1, 0.2}, nil)

		_, err := client.GenerateEmbedding(ctx, "some text")
		assert.ErrorIs(t, err, ErrWrongDimensions)
	})

	t.Run("wraps API errors", func(t *testing.T) {
		mockAPI := new(MockEmbeddingAPI)
		client := &Client{api: mockAPI, dimensions: 3}

		mockAPI.On("CreateEmbeddings", mock.Anything, mock.Anything).Return(nil, errors.New("rate limited"))

		_, err := client.GenerateEmbedding(ctx, "some text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create embedding")
	})
}

func TestGenerateAnswer(t *testing.T) {
	ctx := context.Background()

	t.Run("returns completion verbatim", func(t *testing.T) {
		mockChat := new(MockChatAPI)
		client := &Client{chat: mockChat, dimensions: 3}

		mockChat.On("CreateChatCompletion", mock.Anything, "system prompt", "user prompt").Return("the answer", nil)

		answer, err := client.GenerateAnswer(ctx, "system prompt", "user prompt")
		require.NoError(t, err)
		assert.Equal(t, "the answer", answer)
	})

	t.Run("rejects empty prompt", func(t *testing.T) {
		client := &Client{chat: new(MockChatAPI), dimensions: 3}

		_, err := client.GenerateAnswer(ctx, "system prompt", "")
		assert.ErrorIs(t, err, ErrEmptyText)
	})

	t.Run("wraps API errors", func(t *testing.T) {
		mockChat := new(MockChatAPI)
		client := &Client{chat: mockChat, dimensions: 3}

		mockChat.On("CreateChatCompletion", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("model overloaded"))

		_, err := client.GenerateAnswer(ctx, "system prompt", "user prompt")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to generate answer")
	})
}

func TestDimensions(t *testing.T) {
	client := NewClient("sk-test")
	assert.Equal(t, DefaultEmbeddingDimensions, client.Dimensions())

	custom := NewClientWithConfig(Config{APIKey: "sk-test", EmbeddingDimensions: 768})
	assert.Equal(t, 768, custom.Dimensions())
}

func TestNewClientFromEnv_MissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewClientFromEnv()
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
