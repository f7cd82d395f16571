package internal

import (
	"context"
	"encoding/json"
)

// Upload is a file handed to the remote service
type Upload struct {
	Name string
	Data []byte
}

// DatasetMetadata is the profile the service computes for an uploaded dataset
type DatasetMetadata struct {
	Rows               int               `json:"rows,omitempty"`
	Columns            int               `json:"columns,omitempty"`
	ColumnNames        []string          `json:"column_names"`
	MissingValues      map[string]int    `json:"missing_values,omitempty"`
	Dtypes             map[string]string `json:"dtypes,omitempty"`
	NumericalColumns   []string          `json:"numerical_columns,omitempty"`
	CategoricalColumns []string          `json:"categorical_columns,omitempty"`
}

// DatasetUploadResponse is the body returned by POST /upload
type DatasetUploadResponse struct {
	Filename string          `json:"filename"`
	Metadata DatasetMetadata `json:"metadata"`
}

// DocumentUploadResponse is the body returned by POST /rag/upload
type DocumentUploadResponse struct {
	Filename      string `json:"filename"`
	ChunksIndexed int    `json:"chunks_indexed"`
	PagesIndexed  int    `json:"pages_indexed"`
}

// TrainRequest is the body of POST /train
type TrainRequest struct {
	TaskType        TaskType       `json:"task_type"`
	Filename        string         `json:"filename"`
	InputColumn     string         `json:"input_column"`
	TargetColumn    string         `json:"target_column,omitempty"`
	ContextColumn   string         `json:"context_column,omitempty"`
	Hyperparameters map[string]any `json:"hyperparameters"`
}

// ConsultRequest is the body of POST /copilot/consult
type ConsultRequest struct {
	Filename  string `json:"filename"`
	UserQuery string `json:"user_query"`
}

// ConsultResponse is the body returned by POST /copilot/consult
type ConsultResponse struct {
	Response string `json:"response"`
}

// DocumentQueryRequest is the body of POST /rag/query
type DocumentQueryRequest struct {
	Filename string `json:"filename"`
	Question string `json:"question"`
}

// Citation points at the part of the document an answer came from
type Citation struct {
	Page    int    `json:"page" yaml:"page"`
	Chunk   int    `json:"chunk" yaml:"chunk"`
	Snippet string `json:"snippet" yaml:"snippet"`
}

// DocumentQueryResponse is the body returned by POST /rag/query
type DocumentQueryResponse struct {
	Answer  string     `json:"answer"`
	Sources []Citation `json:"sources,omitempty"`
}

// PreprocessRequest is the body of POST /preprocess
type PreprocessRequest struct {
	Filename   string          `json:"filename"`
	TextColumn string          `json:"text_column"`
	Options    map[string]bool `json:"options"`
}

// PreprocessResponse is the body returned by POST /preprocess
type PreprocessResponse struct {
	Message string           `json:"message"`
	Preview []map[string]any `json:"preview"`
}

// Preprocessing options understood by the service
const (
	OptionLowercase         = "lowercase"
	OptionRemovePunctuation = "remove_punctuation"
	OptionRemoveStopwords   = "remove_stopwords"
	OptionLemmatization     = "lemmatization"
	OptionStemming          = "stemming"
)

// Service is the remote inference/training service. Train returns the raw
// result body; decoding into an ExperimentResult happens in the dispatcher.
type Service interface {
	UploadDataset(ctx context.Context, file Upload) (DatasetUploadResponse, error)
	UploadDocument(ctx context.Context, file Upload) (DocumentUploadResponse, error)
	Train(ctx context.Context, req TrainRequest) (json.RawMessage, error)
	Consult(ctx context.Context, req ConsultRequest) (ConsultResponse, error)
	QueryDocument(ctx context.Context, req DocumentQueryRequest) (DocumentQueryResponse, error)
	Preprocess(ctx context.Context, req PreprocessRequest) (PreprocessResponse, error)
}
