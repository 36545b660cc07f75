package prompt

import (
	"fmt"
	"strings"

	"github.com/tutuni-ai/backend/internal/chunkstore"
)

// SystemPrompt is the fixed instruction block for the assistant. The
// product serves Italian humanities students, so the whole prompt
// surface is Italian.
const SystemPrompt = `Sei un assistente AI specializzato per studenti universitari di facoltà umanistiche,
in particolare Storia e Economia dei Beni Culturali. Il tuo compito è aiutare gli studenti
ad analizzare documenti accademici, estrarre concetti chiave e rispondere a domande specifiche.

Caratteristiche del tuo comportamento:
- Rispondi sempre in italiano
- Sii preciso e accademicamente rigoroso
- Cita sempre le fonti quando possibile
- Fornisci spiegazioni chiare e strutturate
- Aiuta a identificare tesi centrali, concetti chiave e strutture argomentative
- Suggerisci collegamenti tra diversi documenti quando rilevanti

Quando ti vengono forniti documenti come contesto, utilizzali per rispondere alle domande
dell'utente in modo accurato e dettagliato.`

// NoContextMarker is inserted in place of the document context when no
// chunk qualified, so the model knows it answers without sources.
const NoContextMarker = "Nessun documento di contesto disponibile per questa domanda."

// Message is one history entry as the assembler sees it.
type Message struct {
	// Role is "user" or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// Result is an assembled prompt plus its citation manifest.
type Result struct {
	// Prompt is the complete text sent to the completion provider.
	Prompt string

	// IncludedDocs lists the distinct document IDs whose chunks made it
	// into the prompt, in inclusion order. This is the point-in-time
	// citation stored on the ai message.
	IncludedDocs []int64

	// IncludedChunks is how many chunks fit the context budget.
	IncludedChunks int
}

// Assembler builds completion prompts from a question, retrieved chunks
// and conversation history. It is pure: no I/O, no clock, no randomness.
type Assembler struct {
	cfg *Config
}

// NewAssembler builds an Assembler.
func NewAssembler(cfg *Config) *Assembler {
	return &Assembler{cfg: cfg}
}

// Assemble packs chunks and history into a single prompt.
//
// Chunks are taken in the given order (the retriever's ranking) and
// included whole: packing stops at the first chunk that would exceed the
// character budget, so a chunk is never truncated and a lower-ranked
// chunk never displaces a higher-ranked one. maxContextChars <= 0 falls
// back to the configured budget. History is windowed to the most recent
// configured number of user/assistant pairs.
func (a *Assembler) Assemble(question string, chunks []chunkstore.ScoredChunk, history []Message, maxContextChars int) *Result {
	if maxContextChars <= 0 {
		maxContextChars = a.cfg.MaxContextChars
	}

	context, docs, included := a.packContext(chunks, maxContextChars)

	var b strings.Builder
	b.WriteString(SystemPrompt)
	b.WriteString("\n\n")

	if h := a.packHistory(history); h != "" {
		b.WriteString("CONVERSAZIONE PRECEDENTE:\n")
		b.WriteString(h)
		b.WriteString("\n")
	}

	if included == 0 {
		b.WriteString(NoContextMarker)
		b.WriteString("\n\nDOMANDA DELL'UTENTE:\n")
		b.WriteString(question)
	} else {
		b.WriteString("Basandoti sui seguenti documenti, rispondi alla domanda dell'utente:\n\n")
		b.WriteString("CONTESTO DAI DOCUMENTI:\n")
		b.WriteString(context)
		b.WriteString("\nDOMANDA DELL'UTENTE:\n")
		b.WriteString(question)
		b.WriteString("\n\nPer favore, rispondi alla domanda utilizzando le informazioni del contesto fornito.\n")
		b.WriteString("Se la risposta non è direttamente disponibile nei documenti, indica chiaramente\n")
		b.WriteString("quali parti dei documenti sono più rilevanti e fornisci una risposta ragionata.")
	}

	return &Result{
		Prompt:         b.String(),
		IncludedDocs:   docs,
		IncludedChunks: included,
	}
}

// packContext renders chunks into the "[Documento N - Sezione i]" blocks
// until the character budget is exhausted. Packing stops at the first
// chunk that would overflow; lower-ranked chunks never jump the queue.
func (a *Assembler) packContext(chunks []chunkstore.ScoredChunk, budget int) (string, []int64, int) {
	var b strings.Builder
	var docs []int64
	seen := make(map[int64]bool)
	included := 0

	for _, sc := range chunks {
		header := fmt.Sprintf("[Documento %d - Sezione %d]\n", sc.Chunk.DocumentID, included+1)
		block := header + sc.Chunk.Text + "\n\n"

		if b.Len()+len(block) > budget {
			break // whole-chunk inclusion only
		}

		b.WriteString(block)
		included++
		if !seen[sc.Chunk.DocumentID] {
			seen[sc.Chunk.DocumentID] = true
			docs = append(docs, sc.Chunk.DocumentID)
		}
	}

	return b.String(), docs, included
}

// packHistory renders the most recent exchange pairs, oldest first.
func (a *Assembler) packHistory(history []Message) string {
	if len(history) == 0 {
		return ""
	}

	max := a.cfg.HistoryPairs * 2
	if len(history) > max {
		history = history[len(history)-max:]
	}

	var b strings.Builder
	for _, m := range history {
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String()
}
