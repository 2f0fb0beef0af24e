package models

// questionsByType is the data-driven classification questionnaire. The
// question set varies per event type and is itself data, not compiled-in
// structure: answers key off the question text.
var questionsByType = map[EventType][]string{
	EventTypeReceipt:        {"Total Amount?", "Store Name?", "Category?"},
	EventTypeIdentity:       {"Document ID?", "Expiration Date?", "Issuing Authority?"},
	EventTypeEssay:          {"Topic?", "Key Arguments?", "Target Audience?"},
	EventTypeCorrespondence: {"Sender/Recipient?", "Urgency Level?", "Next Steps?"},
	EventTypeOther:          {"What is this?", "Why is it important?", "Follow-up required?"},
}

// QuestionsFor returns the questionnaire for an event type. The lookup
// is total: any type without a dedicated set, including unrecognized
// strings, falls back to the generic questions.
func QuestionsFor(t EventType) []string {
	if qs, ok := questionsByType[t]; ok {
		return append([]string(nil), qs...)
	}
	return append([]string(nil), questionsByType[EventTypeOther]...)
}
