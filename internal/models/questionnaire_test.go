package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuestionsForDedicatedSets(t *testing.T) {
	require.Equal(t, []string{"Total Amount?", "Store Name?", "Category?"}, QuestionsFor(EventTypeReceipt))
	require.Equal(t, []string{"Document ID?", "Expiration Date?", "Issuing Authority?"}, QuestionsFor(EventTypeIdentity))
	require.Len(t, QuestionsFor(EventTypeEssay), 3)
	require.Len(t, QuestionsFor(EventTypeCorrespondence), 3)
}

func TestQuestionsForFallsBackToGeneric(t *testing.T) {
	generic := []string{"What is this?", "Why is it important?", "Follow-up required?"}

	require.Equal(t, generic, QuestionsFor(EventTypeOther))
	require.Equal(t, generic, QuestionsFor(EventTypeNote))
	require.Equal(t, generic, QuestionsFor(EventTypeMedia))
	require.Equal(t, generic, QuestionsFor(EventType("anything at all")))
	require.Equal(t, generic, QuestionsFor(EventType("")))
}

func TestQuestionsForReturnsCopy(t *testing.T) {
	qs := QuestionsFor(EventTypeReceipt)
	qs[0] = "mutated"
	require.Equal(t, "Total Amount?", QuestionsFor(EventTypeReceipt)[0])
}
