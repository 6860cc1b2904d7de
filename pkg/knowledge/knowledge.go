package knowledge

import "strings"

const FallbackAnswer = "I'm sorry, I can't answer that right now. Please check your internet connection or ask your teacher."

type Entry struct {
	Question string   `json:"question"`
	Keywords []string `json:"keywords"`
	Answer   string   `json:"answer"`
}

type IKnowledgeBase interface {
	Match(question string) string
	Entries() []Entry
}

type knowledgeBase struct {
	entries []Entry
}

// New builds a knowledge base over a copy of entries. Keywords are stored
// lowercased so that matching only has to fold the question.
func New(entries []Entry) IKnowledgeBase {
	copied := make([]Entry, len(entries))
	for i, entry := range entries {
		keywords := make([]string, 0, len(entry.Keywords))
		for _, keyword := range entry.Keywords {
			keyword = strings.ToLower(strings.TrimSpace(keyword))
			if keyword == "" {
				continue
			}
			keywords = append(keywords, keyword)
		}
		copied[i] = Entry{
			Question: entry.Question,
			Keywords: keywords,
			Answer:   entry.Answer,
		}
	}
	return &knowledgeBase{entries: copied}
}

// Default is the offline FAQ table compiled into the binary.
func Default() IKnowledgeBase {
	return defaultBase
}

// Match returns the answer of the entry with the most keywords contained
// in the question. Ties keep the earlier entry; no hits at all yields
// FallbackAnswer.
func (kb *knowledgeBase) Match(question string) string {
	question = strings.ToLower(question)

	bestScore := 0
	bestAnswer := FallbackAnswer
	for _, entry := range kb.entries {
		score := 0
		for _, keyword := range entry.Keywords {
			if strings.Contains(question, keyword) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestAnswer = entry.Answer
		}
	}

	return bestAnswer
}

func (kb *knowledgeBase) Entries() []Entry {
	out := make([]Entry, len(kb.entries))
	copy(out, kb.entries)
	return out
}
