// Package main provides a read-only inspection tool for the handoff store.
//
// Usage:
//
//	DB_PATH=~/Marquee/metadata/db go run ./cmd/dbinspect
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/marqueeapp/marquee-server/internal/handoff"
	"github.com/marqueeapp/marquee-server/internal/store"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/Marquee/metadata/db")
	}

	s, err := store.OpenReadOnly(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer s.Close() //nolint:errcheck // read-only

	fmt.Println("=== Handoff Inspection ===")
	fmt.Println()

	var total, valid, invalid int
	now := time.Now()

	err = s.ListHandoffs(context.Background(), func(rec store.HandoffRecord) error {
		total++

		expires := "never"
		if !rec.ExpiresAt.IsZero() {
			expires = rec.ExpiresAt.Sub(now).Round(time.Second).String()
		}

		movie, derr := handoff.Decode(rec.Payload)
		if derr != nil {
			invalid++
			fmt.Printf("Session: %s\n", rec.SessionID)
			fmt.Printf("  INVALID: %v\n", derr)
			fmt.Printf("  Expires in: %s\n", expires)
			fmt.Println()
			return nil
		}

		valid++
		if valid <= 10 {
			fmt.Printf("Session: %s\n", rec.SessionID)
			fmt.Printf("  Movie: %s\n", movie.Heading())
			fmt.Printf("  Tags: %d\n", len(movie.Tags))
			fmt.Printf("  Expires in: %s\n", expires)
			fmt.Println()
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Error iterating database: %v", err)
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total handoffs: %d\n", total)
	fmt.Printf("Valid: %d\n", valid)
	fmt.Printf("Invalid: %d\n", invalid)
}
