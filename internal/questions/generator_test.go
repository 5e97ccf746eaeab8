package questions

import (
	"errors"
	"math/rand"
	"testing"

	"hero-trivia-engine/internal/domain"
)

func TestNewGeneratorRejectsSmallDataset(t *testing.T) {
	subjects := DefaultSubjects()[:3]
	_, err := NewGenerator(subjects, rand.New(rand.NewSource(1)))
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Fatalf("expected insufficient data, got %v", err)
	}
}

func TestNewGeneratorRejectsDuplicateNames(t *testing.T) {
	subjects := DefaultSubjects()[:4]
	subjects[3].Name = subjects[0].Name
	_, err := NewGenerator(subjects, rand.New(rand.NewSource(1)))
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Fatalf("expected insufficient data for duplicate names, got %v", err)
	}
}

func TestGeneratedQuestionsHaveOneCorrectDistinctOption(t *testing.T) {
	subjects := DefaultSubjects()
	bySubject := make(map[string]domain.Subject, len(subjects))
	for _, s := range subjects {
		bySubject[s.ID] = s
	}

	for _, d := range []domain.Difficulty{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard} {
		gen, err := NewGenerator(subjects, rand.New(rand.NewSource(42)))
		if err != nil {
			t.Fatalf("new generator: %v", err)
		}
		allowed := make(map[domain.Archetype]bool)
		for _, a := range ArchetypesFor(d) {
			allowed[a] = true
		}

		for i := 0; i < 300; i++ {
			q := gen.Generate(d)
			if len(q.Options) != 4 {
				t.Fatalf("expected 4 options, got %d", len(q.Options))
			}
			if !allowed[q.Archetype] {
				t.Fatalf("archetype %s not allowed at %s", q.Archetype, d)
			}
			if q.Difficulty != d || q.Points == 0 || q.ID == "" {
				t.Fatalf("unexpected question metadata %+v", q)
			}
			seen := make(map[string]bool)
			for _, o := range q.Options {
				if seen[normalize(o)] {
					t.Fatalf("duplicate option %q in %v", o, q.Options)
				}
				seen[normalize(o)] = true
			}
			want := answerFor(q.Archetype, bySubject[q.SubjectID])
			matches := 0
			for _, o := range q.Options {
				if o == want {
					matches++
				}
			}
			if matches != 1 || q.Options[q.CorrectIndex] != want {
				t.Fatalf("expected exactly one correct option %q at %d, got %v", want, q.CorrectIndex, q.Options)
			}
		}
	}
}

func TestGeneratorAvoidsImmediateRepeats(t *testing.T) {
	subjects := DefaultSubjects()
	gen, err := NewGenerator(subjects, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	type combo struct {
		a domain.Archetype
		s string
	}
	seen := make(map[combo]bool)
	n := len(ArchetypesFor(domain.DifficultyEasy)) * len(subjects) / 2
	for i := 0; i < n; i++ {
		q := gen.Generate(domain.DifficultyEasy)
		c := combo{q.Archetype, q.SubjectID}
		if seen[c] {
			t.Fatalf("combination %v repeated after %d questions", c, i)
		}
		seen[c] = true
	}
}

func TestGeneratorTerminatesOnSparseDataset(t *testing.T) {
	subjects := []domain.Subject{
		{ID: "a", Name: "Alpha", RealName: "Ann"},
		{ID: "b", Name: "Beta", RealName: "Bob"},
		{ID: "c", Name: "Gamma", RealName: "Cid"},
		{ID: "d", Name: "Delta", RealName: "Dee"},
	}
	gen, err := NewGenerator(subjects, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	for i := 0; i < 200; i++ {
		q := gen.Generate(domain.DifficultyHard)
		if q.Archetype != domain.ArchetypeIdentity && q.Archetype != domain.ArchetypeRealName {
			t.Fatalf("sparse dataset produced unbuildable archetype %s", q.Archetype)
		}
		if len(q.Options) != 4 {
			t.Fatalf("expected 4 options, got %v", q.Options)
		}
	}
}

func TestGeneratorIsDeterministicForSeed(t *testing.T) {
	a, _ := NewGenerator(DefaultSubjects(), rand.New(rand.NewSource(99)))
	b, _ := NewGenerator(DefaultSubjects(), rand.New(rand.NewSource(99)))
	for i := 0; i < 20; i++ {
		qa := a.Generate(domain.DifficultyMedium)
		qb := b.Generate(domain.DifficultyMedium)
		if qa.Prompt != qb.Prompt || qa.CorrectIndex != qb.CorrectIndex {
			t.Fatalf("seeded generators diverged at %d: %q vs %q", i, qa.Prompt, qb.Prompt)
		}
	}
}
