package testhelpers

import (
	"context"
	"io"
	"sync"

	"github.com/pageza/recipe-creator/backend/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockMailer is a mock implementation of service.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, text, html string) error {
	args := m.Called(ctx, to, subject, text, html)
	return args.Error(0)
}

// MockRecipeGenerator is a mock implementation of service.RecipeGenerator
type MockRecipeGenerator struct {
	mock.Mock
}

func (m *MockRecipeGenerator) Generate(ctx context.Context, req service.GenerateRequest) (*service.GeneratedRecipe, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GeneratedRecipe), args.Error(1)
}

// MockImageStore is a mock implementation of service.ImageStore
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	args := m.Called(ctx, key, contentType, body)
	return args.Error(0)
}

func (m *MockImageStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockImageStore) URL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

// SentMail is one message captured by CaptureMailer.
type SentMail struct {
	To, Subject, Text, HTML string
}

// CaptureMailer records every message instead of sending it.
type CaptureMailer struct {
	mu   sync.Mutex
	Sent []SentMail
	Err  error
}

func (c *CaptureMailer) Send(_ context.Context, to, subject, text, html string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.Sent = append(c.Sent, SentMail{To: to, Subject: subject, Text: text, HTML: html})
	return nil
}

// Last returns the most recent message, or the zero value.
func (c *CaptureMailer) Last() SentMail {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Sent) == 0 {
		return SentMail{}
	}
	return c.Sent[len(c.Sent)-1]
}
