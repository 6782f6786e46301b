// seed checks a seed document file before it is handed to the server via SEED_FILE.
// It prints the documents and per-status counts, or exits non-zero on the first
// invalid document. Without --file the embedded fixture is checked.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"docverify-portal/internal/document/domain"
	"docverify-portal/internal/document/seed"
)

func main() {
	fs := pflag.NewFlagSet("seed", pflag.ExitOnError)
	path := fs.String("file", os.Getenv("SEED_FILE"), "seed YAML file (defaults to SEED_FILE, then the embedded fixture)")
	quiet := fs.BoolP("quiet", "q", false, "print only the counts")
	_ = fs.Parse(os.Args[1:])

	docs, err := seed.Load(*path)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	src := *path
	if src == "" {
		src = "embedded fixture"
	}
	if !*quiet {
		for _, d := range docs {
			line := fmt.Sprintf("%-4s %-13s %-20s %s", d.ID, d.Status, d.Type, d.Name)
			if d.RejectionReason != "" {
				line += " (" + d.RejectionReason + ")"
			}
			fmt.Println(line)
		}
	}
	c := domain.CountByStatus(docs)
	fmt.Printf("%s: %d documents (%d verified, %d under review, %d rejected)\n",
		src, c.Total(), c.Verified, c.UnderReview, c.Rejected)
}
