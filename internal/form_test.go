package internal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildForm(t *testing.T) {
	schema := []string{"text", "label", "text"}

	t.Run("classification exposes input then target", func(t *testing.T) {
		form := BuildForm(TaskClassification, schema, Configuration{})
		want := []FieldDescriptor{
			{Key: FieldInput, Label: "Input Column", Placeholder: "Select Column...", Options: []string{"text", "label"}},
			{Key: FieldTarget, Label: "Target Column", Placeholder: "Select Target...", Options: []string{"text", "label"}},
		}
		if diff := cmp.Diff(want, form); diff != "" {
			t.Errorf("BuildForm() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("qa exposes context, never target", func(t *testing.T) {
		form := BuildForm(TaskQA, schema, Configuration{})
		require.Len(t, form, 2)
		assert.Equal(t, FieldContext, form[1].Key)
	})

	t.Run("sentiment and summarization expose input only", func(t *testing.T) {
		assert.Len(t, BuildForm(TaskSentiment, schema, Configuration{}), 1)
		assert.Len(t, BuildForm(TaskSummarization, schema, Configuration{}), 1)
	})

	t.Run("selection is reflected", func(t *testing.T) {
		form := BuildForm(TaskClassification, schema, Configuration{FieldTarget: "label"})
		assert.False(t, form[0].IsSet)
		assert.Empty(t, form[0].Selected)
		assert.Equal(t, "Select Column...", form[0].Display())
		assert.True(t, form[1].IsSet)
		assert.Equal(t, "label", form[1].Selected)
		assert.Equal(t, "label", form[1].Display())
	})

	t.Run("columns that look like placeholders stay selections", func(t *testing.T) {
		for _, column := range []string{"(none)", "Select Column...", ""} {
			form := BuildForm(TaskSentiment, []string{column}, Configuration{FieldInput: column})
			assert.True(t, form[0].IsSet, column)
			assert.Equal(t, column, form[0].Selected)
			assert.Equal(t, column, form[0].Display())
		}
	})
}

func TestSelect(t *testing.T) {
	schema := []string{"text", "label"}

	t.Run("partial update keeps other keys", func(t *testing.T) {
		cfg := Configuration{FieldInput: "text"}
		require.NoError(t, Select(cfg, TaskClassification, schema, FieldTarget, "label"))
		assert.Equal(t, Configuration{FieldInput: "text", FieldTarget: "label"}, cfg)
	})

	t.Run("unknown column", func(t *testing.T) {
		cfg := Configuration{}
		err := Select(cfg, TaskClassification, schema, FieldInput, "body")
		assert.ErrorIs(t, err, ErrUnknownColumn)
		assert.Empty(t, cfg)
	})

	t.Run("field not used by task", func(t *testing.T) {
		cfg := Configuration{}
		err := Select(cfg, TaskSentiment, schema, FieldTarget, "label")
		assert.ErrorIs(t, err, ErrFieldNotApplicable)
		assert.Empty(t, cfg)
	})
}

func TestParseFieldKey(t *testing.T) {
	for in, want := range map[string]FieldKey{
		"input": FieldInput, "input_col": FieldInput,
		"target": FieldTarget, "target_col": FieldTarget,
		"context": FieldContext, "context_col": FieldContext,
	} {
		got, err := ParseFieldKey(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFieldKey("label")
	assert.Error(t, err)
}

func TestConfigurationClone(t *testing.T) {
	cfg := Configuration{FieldInput: "text"}
	c := cfg.Clone()
	c[FieldInput] = "other"
	assert.Equal(t, "text", cfg[FieldInput])
}

func TestCanRun(t *testing.T) {
	dataset := &Artifact{Identity: "reviews.csv", Kind: ArtifactTabular, Schema: []string{"text", "label"}}
	document := &Artifact{Identity: "paper.pdf", Kind: ArtifactDocument}
	full := Configuration{FieldInput: "text", FieldTarget: "label"}

	tests := []struct {
		name     string
		artifact *Artifact
		task     TaskType
		cfg      Configuration
		inFlight bool
		want     bool
	}{
		{"ready", dataset, TaskClassification, full, false, true},
		{"no artifact", nil, TaskClassification, full, false, false},
		{"document is not a dataset", document, TaskClassification, full, false, false},
		{"missing target", dataset, TaskClassification, Configuration{FieldInput: "text"}, false, false},
		{"in flight", dataset, TaskClassification, full, true, false},
		{"sentiment needs input only", dataset, TaskSentiment, Configuration{FieldInput: "text"}, false, true},
		{"qa needs context", dataset, TaskQA, Configuration{FieldInput: "text"}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanRun(tt.artifact, tt.task, tt.cfg, tt.inFlight))
		})
	}
}

func TestMissingForRun(t *testing.T) {
	assert.Equal(t, []string{"dataset", "input_col", "target_col"}, missingForRun(nil, TaskClassification, Configuration{}))
	assert.Nil(t, missingForRun(&Artifact{Kind: ArtifactTabular}, TaskSentiment, Configuration{FieldInput: "x"}))
}
