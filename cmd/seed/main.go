// Package main writes a sample movie dataset for local development.
//
// Usage:
//
//	go run ./cmd/seed                     # writes ./data.json
//	go run ./cmd/seed -out /tmp/data.json -copies 20
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/marqueeapp/marquee-server/internal/domain"
	"github.com/marqueeapp/marquee-server/internal/validation"
)

var (
	out    = flag.String("out", "data.json", "Path of the dataset file to write")
	copies = flag.Int("copies", 1, "Repeat the sample set this many times with numbered titles (for load testing)")
	force  = flag.Bool("force", false, "Overwrite an existing file")
)

var samples = []domain.Movie{
	{
		Title:    "Metropolis",
		Year:     "1927",
		Synopsis: "In a futuristic city sharply divided between the working class and the city planners, the son of the city's mastermind falls in love with a working-class prophet.",
		Link:     "https://www.imdb.com/title/tt0017136/",
		Poster:   "img/metropolis.jpg",
		Tags:     []string{"Sci-Fi", "Drama"},
	},
	{
		Title:    "Nosferatu",
		Year:     "1922",
		Synopsis: "Vampire Count Orlok expresses interest in a new residence and real estate agent Hutter's wife.",
		Link:     "https://www.imdb.com/title/tt0013442/",
		Poster:   "img/nosferatu.jpg",
		Tags:     []string{"Horror", "Fantasy"},
	},
	{
		Title:    "The General",
		Year:     "1926",
		Synopsis: "After being rejected by the Confederate military, not realizing it was due to his crucial civilian role, an engineer must <em>single-handedly</em> recapture his beloved locomotive.",
		Link:     "https://www.imdb.com/title/tt0017925/",
		Poster:   "img/the-general.jpg",
		Tags:     []string{"Comedy", "Action", "Adventure"},
	},
	{
		Title:    "Sherlock Jr.",
		Year:     "1924",
		Synopsis: "A film projectionist longs to be a detective, and puts his meagre skills to work when he is framed by a rival for stealing his girlfriend's father's pocketwatch.",
		Link:     "https://www.imdb.com/title/tt0015324/",
		Poster:   "img/sherlock-jr.jpg",
		Tags:     []string{"Comedy", "Action"},
	},
	{
		Title:    "Night of the Living Dead",
		Year:     "1968",
		Synopsis: "A ragtag group barricade themselves in an old Pennsylvania farmhouse to remain safe from a horde of <strong>flesh-eating ghouls</strong> ravaging the Northeast.",
		Link:     "https://www.imdb.com/title/tt0063350/",
		Poster:   "img/night-of-the-living-dead.jpg",
		Tags:     []string{"Horror"},
	},
	{
		Title:    "His Girl Friday",
		Year:     "1940",
		Synopsis: "A newspaper editor uses every trick in the book to keep his ace reporter ex-wife from remarrying.",
		Link:     "https://www.imdb.com/title/tt0032599/",
		Poster:   "img/his-girl-friday.jpg",
		Tags:     []string{"Comedy", "Romance"},
	},
	{
		Title:    "Charade",
		Year:     "1963",
		Synopsis: "Romance and suspense ensue in Paris as a woman is pursued by several men who want a fortune her murdered husband had stolen.",
		Link:     "https://www.imdb.com/title/tt0056923/",
		Poster:   "img/charade.jpg",
		Tags:     []string{"Comedy", "Mystery", "Romance"},
	},
	{
		Title:    "The Little Shop of Horrors",
		Year:     "1960",
		Synopsis: "A clumsy young man nurtures a plant and discovers that it's carnivorous, forcing him to kill to feed it.",
		Link:     "https://www.imdb.com/title/tt0054033/",
		Tags:     []string{"Comedy", "Horror"},
	},
	{
		Title:    "Plan 9 from Outer Space",
		Year:     "1957",
		Synopsis: "Aliens resurrect dead humans as zombies and vampires to stop humanity from creating the Solaranite bomb.",
		Link:     "https://www.imdb.com/title/tt0052077/",
	},
}

func main() {
	flag.Parse()

	if *copies < 1 {
		log.Fatal("-copies must be at least 1")
	}

	if _, err := os.Stat(*out); err == nil && !*force {
		log.Fatalf("%s already exists (use -force to overwrite)", *out)
	}

	movies := build(*copies)

	v := validation.New()
	for i := range movies {
		if err := v.Validate(movies[i]); err != nil {
			log.Fatalf("Sample %q is invalid: %v", movies[i].Title, err)
		}
	}

	data, err := json.MarshalIndent(movies, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode dataset: %v", err)
	}

	if dir := filepath.Dir(*out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	// Write through a temp file so a watching server never sees a partial file.
	tmp := *out + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil { //nolint:gosec // dataset is public
		log.Fatalf("Failed to write dataset: %v", err)
	}
	if err := os.Rename(tmp, *out); err != nil {
		log.Fatalf("Failed to move dataset into place: %v", err)
	}

	fmt.Printf("Wrote %d movies to %s\n", len(movies), *out)
}

// build returns the sample set repeated n times. Copies after the first get a
// numbered title so every title stays unique.
func build(n int) []domain.Movie {
	movies := make([]domain.Movie, 0, len(samples)*n)
	for c := range n {
		for _, m := range samples {
			if c > 0 {
				m.Title = fmt.Sprintf("%s #%d", m.Title, c+1)
			}
			m.Tags = append([]string(nil), m.Tags...)
			movies = append(movies, m)
		}
	}
	return movies
}
