package questions

import "hero-trivia-engine/internal/domain"

// DefaultSubjects is the built-in dataset used when no database is configured.
func DefaultSubjects() []domain.Subject {
	return []domain.Subject{
		{
			ID: "spider-man", Name: "Spider-Man", RealName: "Peter Parker",
			Powers:          "wall-crawling and a precognitive danger sense",
			FirstAppearance: "Amazing Fantasy #15 (1962)",
			Creators:        "Stan Lee and Steve Ditko",
			Trivia:          []string{"Was bitten by a radioactive spider on a school science trip.", "Works as a freelance photographer for the Daily Bugle."},
		},
		{
			ID: "batman", Name: "Batman", RealName: "Bruce Wayne",
			Powers:          "peak human conditioning and detective skill",
			FirstAppearance: "Detective Comics #27 (1939)",
			Creators:        "Bob Kane and Bill Finger",
			Trivia:          []string{"Operates from a cave beneath a stately manor.", "Was trained by a butler who once served in the military."},
		},
		{
			ID: "superman", Name: "Superman", RealName: "Clark Kent",
			Powers:          "flight, heat vision and near invulnerability",
			FirstAppearance: "Action Comics #1 (1938)",
			Creators:        "Jerry Siegel and Joe Shuster",
			Trivia:          []string{"Was rocketed to Earth as an infant from a dying planet.", "Is weakened by green fragments of his home world."},
		},
		{
			ID: "wonder-woman", Name: "Wonder Woman", RealName: "Diana Prince",
			Powers:          "divine strength and a lasso that compels truth",
			FirstAppearance: "All Star Comics #8 (1941)",
			Creators:        "William Moulton Marston and H. G. Peter",
			Trivia:          []string{"Grew up on the hidden island of Themyscira."},
		},
		{
			ID: "iron-man", Name: "Iron Man", RealName: "Tony Stark",
			Powers:          "a powered suit of armor with repulsor weapons",
			FirstAppearance: "Tales of Suspense #39 (1963)",
			Creators:        "Stan Lee, Larry Lieber, Don Heck and Jack Kirby",
			Trivia:          []string{"Built his first suit while held captive in a cave."},
		},
		{
			ID: "hulk", Name: "Hulk", RealName: "Bruce Banner",
			Powers:          "strength that grows with his anger",
			FirstAppearance: "The Incredible Hulk #1 (1962)",
			Creators:        "Stan Lee and Jack Kirby",
			Trivia:          []string{"Was exposed to gamma radiation while saving a teenager at a bomb test."},
		},
		{
			ID: "flash", Name: "The Flash", RealName: "Barry Allen",
			Powers:          "super speed drawn from the Speed Force",
			FirstAppearance: "Showcase #4 (1956)",
			Creators:        "Robert Kanigher and Carmine Infantino",
			Trivia:          []string{"Works as a police forensic scientist in Central City."},
		},
		{
			ID: "black-panther", Name: "Black Panther", RealName: "T'Challa",
			Powers:          "enhanced senses granted by a heart-shaped herb",
			FirstAppearance: "Fantastic Four #52 (1966)",
			Creators:        "Stan Lee and Jack Kirby (Wakanda)",
			Trivia:          []string{"Rules a hidden nation built on a vibranium meteor."},
		},
		{
			ID: "wolverine", Name: "Wolverine", RealName: "James Howlett",
			Powers:          "a healing factor and retractable adamantium claws",
			FirstAppearance: "The Incredible Hulk #180 (1974)",
			Creators:        "Roy Thomas, Len Wein and John Romita Sr.",
			Trivia:          []string{"Often goes by the name Logan."},
		},
		{
			ID: "captain-marvel", Name: "Captain Marvel", RealName: "Carol Danvers",
			Powers:          "energy absorption and photon blasts",
			FirstAppearance: "Marvel Super-Heroes #13 (1968)",
			Creators:        "Roy Thomas and Gene Colan",
			Trivia:          []string{"Served as a pilot in the U.S. Air Force."},
		},
	}
}
