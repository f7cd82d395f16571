package internal

// Session is a point-in-time transcript of one conversational session
type Session struct {
	ID        string     `json:"id" yaml:"id"`
	Assistant string     `json:"assistant" yaml:"assistant"` // "copilot", "document"
	Artifact  string     `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	Messages  []Message  `json:"messages" yaml:"messages"`
	Citations []Citation `json:"citations,omitempty" yaml:"citations,omitempty"`
	Metadata  Metadata   `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Message represents a transcript message
type Message struct {
	Timestamp string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Actor     string `json:"actor" yaml:"actor"` // "user", "bot"
	Kind      string `json:"kind" yaml:"kind"`   // "greeting", "question", "answer", "failure"
	Content   string `json:"content" yaml:"content"`
}

// Metadata contains additional session information
type Metadata struct {
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
	Task         string `json:"task,omitempty" yaml:"task,omitempty"`
	CreatedAt    string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	MessageCount int    `json:"message_count" yaml:"message_count"`
	Status       string `json:"status,omitempty" yaml:"status,omitempty"`
}
