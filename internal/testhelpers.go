package internal

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// CreateTestSession creates a test transcript with sample data
func CreateTestSession(id string) *Session {
	return &Session{
		ID:        id,
		Assistant: "copilot",
		Artifact:  "reviews.csv",
		Messages: []Message{
			{
				Actor:     "bot",
				Kind:      "greeting",
				Content:   CopilotGreeting,
				Timestamp: time.Now().Format(time.RFC3339),
			},
			{
				Actor:     "user",
				Kind:      "question",
				Content:   "Which columns have missing values?",
				Timestamp: time.Now().Format(time.RFC3339),
			},
			{
				Actor:     "bot",
				Kind:      "answer",
				Content:   "Only text has missing values.",
				Timestamp: time.Now().Format(time.RFC3339),
			},
		},
		Metadata: Metadata{
			Name:         "Dataset Copilot",
			Task:         string(TaskClassification),
			MessageCount: 3,
			CreatedAt:    time.Now().Format(time.RFC3339),
		},
	}
}

// CreateTestSessionWithMessages creates a test transcript with custom messages
func CreateTestSessionWithMessages(id string, messages []Message) *Session {
	return &Session{
		ID:        id,
		Assistant: "document",
		Messages:  messages,
		Metadata: Metadata{
			MessageCount: len(messages),
		},
	}
}

// StubService is an in-process Service. Each field, when set, answers the
// matching call; calls are counted per method.
type StubService struct {
	UploadDatasetFn  func(ctx context.Context, file Upload) (DatasetUploadResponse, error)
	UploadDocumentFn func(ctx context.Context, file Upload) (DocumentUploadResponse, error)
	TrainFn          func(ctx context.Context, req TrainRequest) (json.RawMessage, error)
	ConsultFn        func(ctx context.Context, req ConsultRequest) (ConsultResponse, error)
	QueryDocumentFn  func(ctx context.Context, req DocumentQueryRequest) (DocumentQueryResponse, error)
	PreprocessFn     func(ctx context.Context, req PreprocessRequest) (PreprocessResponse, error)

	mu    sync.Mutex
	calls map[string]int
}

var _ Service = (*StubService)(nil)

// Calls returns how often method was invoked
func (s *StubService) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// TotalCalls returns the number of calls across all methods
func (s *StubService) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *StubService) record(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[method]++
}

func (s *StubService) UploadDataset(ctx context.Context, file Upload) (DatasetUploadResponse, error) {
	s.record("UploadDataset")
	if s.UploadDatasetFn == nil {
		return DatasetUploadResponse{}, &ServiceError{Op: "upload", Status: 501}
	}
	return s.UploadDatasetFn(ctx, file)
}

func (s *StubService) UploadDocument(ctx context.Context, file Upload) (DocumentUploadResponse, error) {
	s.record("UploadDocument")
	if s.UploadDocumentFn == nil {
		return DocumentUploadResponse{}, &ServiceError{Op: "rag/upload", Status: 501}
	}
	return s.UploadDocumentFn(ctx, file)
}

func (s *StubService) Train(ctx context.Context, req TrainRequest) (json.RawMessage, error) {
	s.record("Train")
	if s.TrainFn == nil {
		return nil, &ServiceError{Op: "train", Status: 501}
	}
	return s.TrainFn(ctx, req)
}

func (s *StubService) Consult(ctx context.Context, req ConsultRequest) (ConsultResponse, error) {
	s.record("Consult")
	if s.ConsultFn == nil {
		return ConsultResponse{}, &ServiceError{Op: "consult", Status: 501}
	}
	return s.ConsultFn(ctx, req)
}

func (s *StubService) QueryDocument(ctx context.Context, req DocumentQueryRequest) (DocumentQueryResponse, error) {
	s.record("QueryDocument")
	if s.QueryDocumentFn == nil {
		return DocumentQueryResponse{}, &ServiceError{Op: "rag/query", Status: 501}
	}
	return s.QueryDocumentFn(ctx, req)
}

func (s *StubService) Preprocess(ctx context.Context, req PreprocessRequest) (PreprocessResponse, error) {
	s.record("Preprocess")
	if s.PreprocessFn == nil {
		return PreprocessResponse{}, &ServiceError{Op: "preprocess", Status: 501}
	}
	return s.PreprocessFn(ctx, req)
}
