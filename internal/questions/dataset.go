package questions

import (
	"fmt"
	"strings"

	"hero-trivia-engine/internal/domain"
)

// MinSubjects is the smallest dataset that can fill four distinct options.
const MinSubjects = 4

// Validate checks a dataset once at startup so generation never has to fail.
// Every subject needs a unique name and a real name, which keeps the identity
// archetype buildable as a fallback.
func Validate(subjects []domain.Subject) error {
	if len(subjects) < MinSubjects {
		return fmt.Errorf("%w: have %d subjects, need at least %d", domain.ErrInsufficientData, len(subjects), MinSubjects)
	}
	seen := make(map[string]struct{}, len(subjects))
	for _, s := range subjects {
		if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.RealName) == "" {
			return fmt.Errorf("%w: subject %q is missing a name or real name", domain.ErrInsufficientData, s.ID)
		}
		key := normalize(s.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate subject name %q", domain.ErrInsufficientData, s.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// ArchetypesFor lists the question kinds available at a difficulty.
func ArchetypesFor(d domain.Difficulty) []domain.Archetype {
	switch d {
	case domain.DifficultyHard:
		return []domain.Archetype{
			domain.ArchetypeIdentity, domain.ArchetypePowers, domain.ArchetypeRealName,
			domain.ArchetypeCreators, domain.ArchetypeTrivia, domain.ArchetypeFirstAppearance,
		}
	case domain.DifficultyMedium:
		return []domain.Archetype{
			domain.ArchetypeIdentity, domain.ArchetypePowers, domain.ArchetypeRealName,
			domain.ArchetypeCreators, domain.ArchetypeTrivia,
		}
	default:
		return []domain.Archetype{domain.ArchetypeIdentity, domain.ArchetypePowers, domain.ArchetypeRealName}
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
