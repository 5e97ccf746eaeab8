package questions

import (
	"fmt"

	"github.com/google/uuid"

	"hero-trivia-engine/internal/domain"
	"hero-trivia-engine/internal/scoring"
)

// Source is the randomness the generator draws from. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// maxAttempts bounds the search for an unseen combination before a repeat is accepted.
const maxAttempts = 32

type historyKey struct {
	archetype  domain.Archetype
	subjectID  string
	difficulty domain.Difficulty
}

// Generator builds one multiple-choice question at a time from a fixed dataset.
// It is not safe for concurrent use; each session owns its own generator.
type Generator struct {
	subjects []domain.Subject
	rnd      Source
	newID    func() string
	history  map[historyKey]struct{}
}

// NewGenerator validates the dataset up front. Generate never fails afterwards.
func NewGenerator(subjects []domain.Subject, rnd Source) (*Generator, error) {
	if err := Validate(subjects); err != nil {
		return nil, err
	}
	copied := make([]domain.Subject, len(subjects))
	copy(copied, subjects)
	return &Generator{
		subjects: copied,
		rnd:      rnd,
		newID:    uuid.NewString,
		history:  make(map[historyKey]struct{}),
	}, nil
}

// Generate returns a fresh question, avoiding recently asked combinations.
func (g *Generator) Generate(d domain.Difficulty) domain.Question {
	archetypes := ArchetypesFor(d)
	if len(g.history) >= len(archetypes)*len(g.subjects) {
		g.history = make(map[historyKey]struct{})
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		a := archetypes[g.rnd.Intn(len(archetypes))]
		s := g.subjects[g.rnd.Intn(len(g.subjects))]
		key := historyKey{archetype: a, subjectID: s.ID, difficulty: d}
		if _, seen := g.history[key]; seen {
			continue
		}
		q, ok := g.build(a, s, d)
		if !ok {
			// unbuildable combinations count as seen so the history still fills up
			g.history[key] = struct{}{}
			continue
		}
		g.history[key] = struct{}{}
		return q
	}

	s := g.subjects[g.rnd.Intn(len(g.subjects))]
	q, _ := g.build(domain.ArchetypeIdentity, s, d)
	return q
}

func (g *Generator) build(a domain.Archetype, s domain.Subject, d domain.Difficulty) (domain.Question, bool) {
	correct := answerFor(a, s)
	if correct == "" {
		return domain.Question{}, false
	}
	prompt, explanation, ok := g.describe(a, s)
	if !ok {
		return domain.Question{}, false
	}

	pool := make([]string, 0, len(g.subjects))
	used := map[string]struct{}{normalize(correct): {}}
	for _, other := range g.subjects {
		if other.ID == s.ID {
			continue
		}
		v := answerFor(a, other)
		if v == "" {
			continue
		}
		if _, dup := used[normalize(v)]; dup {
			continue
		}
		used[normalize(v)] = struct{}{}
		pool = append(pool, v)
	}
	if len(pool) < 3 {
		return domain.Question{}, false
	}
	g.rnd.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	options := []string{correct, pool[0], pool[1], pool[2]}
	g.rnd.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
	correctIndex := 0
	for i, o := range options {
		if o == correct {
			correctIndex = i
			break
		}
	}

	return domain.Question{
		ID:           g.newID(),
		Archetype:    a,
		Difficulty:   d,
		Prompt:       prompt,
		Options:      options,
		CorrectIndex: correctIndex,
		Explanation:  explanation,
		Points:       scoring.BasePoints(d),
		SubjectID:    s.ID,
	}, true
}

func (g *Generator) describe(a domain.Archetype, s domain.Subject) (string, string, bool) {
	switch a {
	case domain.ArchetypeIdentity:
		return fmt.Sprintf("Which hero is secretly %s?", s.RealName),
			fmt.Sprintf("%s is the secret identity of %s.", s.RealName, s.Name), true
	case domain.ArchetypeRealName:
		return fmt.Sprintf("What is %s's real name?", s.Name),
			fmt.Sprintf("%s's real name is %s.", s.Name, s.RealName), true
	case domain.ArchetypePowers:
		if s.Powers == "" {
			return "", "", false
		}
		return fmt.Sprintf("Which hero is known for %s?", s.Powers),
			fmt.Sprintf("%s is known for %s.", s.Name, s.Powers), true
	case domain.ArchetypeFirstAppearance:
		return fmt.Sprintf("Where did %s make their first appearance?", s.Name),
			fmt.Sprintf("%s first appeared in %s.", s.Name, s.FirstAppearance), true
	case domain.ArchetypeCreators:
		return fmt.Sprintf("Who created %s?", s.Name),
			fmt.Sprintf("%s was created by %s.", s.Name, s.Creators), true
	case domain.ArchetypeTrivia:
		if len(s.Trivia) == 0 {
			return "", "", false
		}
		fact := s.Trivia[g.rnd.Intn(len(s.Trivia))]
		return fmt.Sprintf("Which hero does this describe? %s", fact),
			fmt.Sprintf("That fact belongs to %s.", s.Name), true
	}
	return "", "", false
}

// answerFor returns the attribute a question of archetype a is answered with.
func answerFor(a domain.Archetype, s domain.Subject) string {
	switch a {
	case domain.ArchetypeIdentity, domain.ArchetypePowers, domain.ArchetypeTrivia:
		return s.Name
	case domain.ArchetypeRealName:
		return s.RealName
	case domain.ArchetypeFirstAppearance:
		return s.FirstAppearance
	case domain.ArchetypeCreators:
		return s.Creators
	}
	return ""
}
