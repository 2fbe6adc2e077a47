package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pageza/platepal/backend/internal/models"
	"github.com/pageza/platepal/backend/internal/platepal"
)

// renderCards prints one block per restaurant with aligned labels.
func renderCards(out io.Writer, restaurants []models.Restaurant) error {
	if len(restaurants) == 0 {
		_, err := fmt.Fprintln(out, "No restaurants found.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, r := range restaurants {
		fmt.Fprintf(w, "%d.\t%s\n", i+1, r.Name)
		if r.Rating != "" {
			fmt.Fprintf(w, "\tRating:\t%s\n", r.Rating)
		}
		if r.Address != "" {
			fmt.Fprintf(w, "\tAddress:\t%s\n", r.Address)
		}
		if r.Description != "" {
			fmt.Fprintf(w, "\tAbout:\t%s\n", r.Description)
		}
		fmt.Fprintf(w, "\tMap:\t%s\n", platepal.MapsURL(r))
		if i < len(restaurants)-1 {
			fmt.Fprintln(w)
		}
	}
	return w.Flush()
}
