// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/survey-engine/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{DBPath: filepath.Join(t.TempDir(), "surveys.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAssignsDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	survey := &types.Survey{Topic: "transformer architectures in NLP"}
	require.NoError(t, s.Create(ctx, survey))

	assert.NotEmpty(t, survey.ID)
	assert.Equal(t, types.StatusPending, survey.Status)
	assert.False(t, survey.CreatedAt.IsZero())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	survey := &types.Survey{
		ID:             "s1",
		Topic:          "graph neural networks for chemistry",
		AdditionalInfo: "focus on molecule property prediction",
		Status:         types.StatusProcessing,
		CurrentAgent:   types.AgentPaperRetrieval,
		Progress:       40,
		Documents: []types.Document{
			{Filename: "a.pdf", OriginalName: "paper.pdf", MimeType: "application/pdf", Path: "/tmp/a.pdf", Size: 1024},
		},
		RetrievedPapers: []types.Paper{
			{Title: "GNNs in Chemistry", Authors: []string{"A", "B"}, Year: 2023, Source: types.SourceArxiv},
		},
		CreatedAt: created,
	}
	require.NoError(t, s.Create(ctx, survey))

	survey.Status = types.StatusCompleted
	survey.Progress = 100
	survey.Generated = &types.GeneratedSurvey{Content: "# Survey\n\ntext", WordCount: 2}
	survey.Verification = &types.VerificationReport{ConfidenceScore: 85, FlaggedIssues: []string{}}
	survey.Plagiarism = &types.PlagiarismReport{SimilarityScore: 3.5, OriginalityScore: 96.5}
	survey.CompletedAt = created.Add(90 * time.Second)
	survey.ProcessingTime = 90
	require.NoError(t, s.Save(ctx, survey))

	loaded, err := s.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, loaded.Status)
	assert.Equal(t, "graph neural networks for chemistry", loaded.Topic)
	assert.Equal(t, "focus on molecule property prediction", loaded.AdditionalInfo)
	require.Len(t, loaded.Documents, 1)
	assert.Equal(t, "paper.pdf", loaded.Documents[0].OriginalName)
	require.Len(t, loaded.RetrievedPapers, 1)
	assert.Equal(t, []string{"A", "B"}, loaded.RetrievedPapers[0].Authors)
	require.NotNil(t, loaded.Generated)
	assert.Equal(t, 2, loaded.Generated.WordCount)
	require.NotNil(t, loaded.Verification)
	assert.Equal(t, 85, loaded.Verification.ConfidenceScore)
	assert.Equal(t, 90, loaded.ProcessingTime)
	assert.True(t, loaded.CompletedAt.Equal(created.Add(90*time.Second)))
}

func TestLoadNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirstAndStatusFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	for i, st := range []types.SurveyStatus{types.StatusCompleted, types.StatusFailed, types.StatusCompleted} {
		require.NoError(t, s.Create(ctx, &types.Survey{
			ID:        string(rune('a' + i)),
			Topic:     "topic long enough here",
			Status:    st,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
	assert.Equal(t, "a", all[2].ID)

	completed, err := s.List(ctx, types.StatusCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 2)
	for _, sv := range completed {
		assert.Equal(t, types.StatusCompleted, sv.Status)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &types.Survey{ID: "s1", Topic: "a topic long enough"}))
	require.NoError(t, s.Delete(ctx, "s1"))

	_, err := s.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "s1"), ErrNotFound)
}
