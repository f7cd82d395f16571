package internal

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// TaskType is the NLP mission picked at the task selector
type TaskType string

const (
	TaskClassification TaskType = "classification"
	TaskSummarization  TaskType = "summarization"
	TaskQA             TaskType = "qa"
	TaskSentiment      TaskType = "sentiment"
	TaskRAG            TaskType = "rag"
)

// FieldKey names one configuration entry
type FieldKey string

const (
	FieldInput   FieldKey = "input_col"
	FieldTarget  FieldKey = "target_col"
	FieldContext FieldKey = "context_col"
)

// taskTraits is everything that varies by task type. All task-dependent
// branching goes through this table.
type taskTraits struct {
	title    string
	fields   []FieldKey
	artifact ArtifactKind
	results  []ResultType
}

var taskOrder = []TaskType{
	TaskClassification,
	TaskSummarization,
	TaskQA,
	TaskSentiment,
	TaskRAG,
}

var taskTable = map[TaskType]taskTraits{
	TaskClassification: {
		title:    "Text Classification",
		fields:   []FieldKey{FieldInput, FieldTarget},
		artifact: ArtifactTabular,
		results:  []ResultType{ResultClassificationMetrics},
	},
	TaskSummarization: {
		title:    "Summarization",
		fields:   []FieldKey{FieldInput},
		artifact: ArtifactTabular,
		results:  []ResultType{ResultTextOutput},
	},
	TaskQA: {
		title:    "Question Answering",
		fields:   []FieldKey{FieldInput, FieldContext},
		artifact: ArtifactTabular,
		results:  []ResultType{ResultTextOutput},
	},
	TaskSentiment: {
		title:    "Sentiment Analysis",
		fields:   []FieldKey{FieldInput},
		artifact: ArtifactTabular,
		results:  []ResultType{ResultSentimentAnalysis},
	},
	TaskRAG: {
		title:    "Ask Your Document (RAG)",
		fields:   []FieldKey{FieldInput},
		artifact: ArtifactDocument,
	},
}

// TaskInfo is one entry of the task catalogue
type TaskInfo struct {
	Type  TaskType
	Title string
}

// Tasks returns the catalogue in display order.
func Tasks() []TaskInfo {
	out := make([]TaskInfo, 0, len(taskOrder))
	for _, t := range taskOrder {
		out = append(out, TaskInfo{Type: t, Title: taskTable[t].title})
	}
	return out
}

// ParseTaskType validates a task name against the catalogue.
func ParseTaskType(s string) (TaskType, error) {
	t := TaskType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := taskTable[t]; !ok {
		return "", errors.Wrapf(ErrUnknownTask, "%q", s)
	}
	return t, nil
}

func (t TaskType) traits() taskTraits {
	return taskTable[t]
}

// Title returns the human-readable task name.
func (t TaskType) Title() string {
	return t.traits().title
}

// ArtifactKind is the kind of artifact this task works on.
func (t TaskType) ArtifactKind() ArtifactKind {
	return t.traits().artifact
}

// RequiredFields returns the configuration fields this task needs, input first.
func (t TaskType) RequiredFields() []FieldKey {
	fields := t.traits().fields
	out := make([]FieldKey, len(fields))
	copy(out, fields)
	return out
}

// Requires reports whether key is required by the task.
func (t TaskType) Requires(key FieldKey) bool {
	for _, f := range t.traits().fields {
		if f == key {
			return true
		}
	}
	return false
}

// Expects reports whether the task normally produces results of type rt.
func (t TaskType) Expects(rt ResultType) bool {
	for _, r := range t.traits().results {
		if r == rt {
			return true
		}
	}
	return false
}
