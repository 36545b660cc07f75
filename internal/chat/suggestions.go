package chat

import "context"

// Canned question suggestions for the chat UI. Projects without any
// indexed content get starter questions, projects with documents get
// analysis prompts. Dynamic generation from the actual content is a
// candidate for a later iteration.
var (
	emptyProjectSuggestions = []string{
		"Quali sono i concetti chiave in questo documento?",
		"Puoi riassumere la tesi principale?",
		"Quali sono le fonti principali citate?",
		"Come si struttura l'argomentazione?",
		"Ci sono collegamenti con altri documenti?",
	}

	contentSuggestions = []string{
		"Analizza la tesi centrale dei documenti caricati",
		"Elenca i concetti chiave più importanti",
		"Confronta le diverse argomentazioni presenti",
		"Identifica le fonti bibliografiche principali",
		"Quali sono i punti di forza e debolezza dell'argomentazione?",
		"Suggerisci collegamenti con altri argomenti di studio",
	}

	fallbackSuggestions = []string{
		"Puoi aiutarmi a capire questo documento?",
		"Quali sono i punti principali?",
		"Come posso approfondire questo argomento?",
	}
)

// SuggestedQuestions returns question prompts fitting the project's
// current content. Lookup failures degrade to a generic list instead of
// failing the endpoint.
func (m *Manager) SuggestedQuestions(ctx context.Context, projectID, userID int64) ([]string, error) {
	if _, err := m.store.GetOwnedProject(ctx, projectID, userID); err != nil {
		return nil, m.lookupError(err)
	}

	processed, err := m.store.CountProcessedDocuments(ctx, projectID)
	if err != nil {
		m.log.Warn("suggested questions fell back to generic list", err)
		return cloneStrings(fallbackSuggestions), nil
	}
	if processed == 0 {
		return cloneStrings(emptyProjectSuggestions), nil
	}
	return cloneStrings(contentSuggestions), nil
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
