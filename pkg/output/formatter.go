package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/ritzau/conflict-atlas/pkg/coalition"
	"github.com/ritzau/conflict-atlas/pkg/model"
	"github.com/ritzau/conflict-atlas/pkg/stats"
	"github.com/ritzau/conflict-atlas/pkg/window"
)

// Report is everything the terminal report shows for one time window
type Report struct {
	Source       string
	Filter       window.Filter
	Events       int // Events inside the window
	Graph        *model.GraphData
	Coalitions   []coalition.Coalition
	TopCountries []stats.CountryTotal
	Unresolved   []string // Country names missing from the map
}

// NewReport derives a report from the loaded events and the graph built for f
func NewReport(source string, events []model.Event, f window.Filter, g *model.GraphData, topN int) Report {
	return Report{
		Source:       source,
		Filter:       f,
		Events:       len(window.Apply(events, f)),
		Graph:        g,
		Coalitions:   coalition.Find(g),
		TopCountries: stats.TopCountries(events, f, topN),
	}
}

// PrintGraphReport prints a colored summary of the faction graph
func PrintGraphReport(w io.Writer, r Report) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	// Header
	bold.Fprintln(w, "Conflict Atlas - Faction Report")
	bold.Fprintln(w, "===============================")
	fmt.Fprintf(w, "Source: %s\n", r.Source)
	fmt.Fprintf(w, "Window: %s\n", describeFilter(r.Filter))
	fmt.Fprintf(w, "Events: %d\n", r.Events)

	if r.Graph == nil || len(r.Graph.Nodes) == 0 {
		yellow.Fprintln(w, "No faction reaches the participation threshold in this window.")
		return
	}

	allies, enemies := 0, 0
	for _, e := range r.Graph.Edges {
		if e.Classification == model.Ally {
			allies++
		} else {
			enemies++
		}
	}
	fmt.Fprintf(w, "Factions: %d\n", len(r.Graph.Nodes))
	fmt.Fprint(w, "Relationships: ")
	green.Fprintf(w, "%d allied", allies)
	fmt.Fprint(w, ", ")
	red.Fprintf(w, "%d hostile\n", enemies)
	fmt.Fprintln(w)

	// Largest factions by casualties
	nodes := make([]model.Faction, len(r.Graph.Nodes))
	copy(nodes, r.Graph.Nodes)
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Casualties != nodes[j].Casualties {
			return nodes[i].Casualties > nodes[j].Casualties
		}
		return nodes[i].ID < nodes[j].ID
	})
	bold.Fprintln(w, "FACTIONS:")
	for _, n := range nodes {
		cyan.Fprintf(w, "  %s", n.ID)
		fmt.Fprintf(w, " (%s, %s) events=%d casualties=%.0f\n", n.Country, n.Region, n.Participation, n.Casualties)
	}
	fmt.Fprintln(w)

	if len(r.Coalitions) > 0 {
		bold.Fprintln(w, "COALITIONS:")
		for i, c := range r.Coalitions {
			green.Fprintf(w, "  #%d", i+1)
			fmt.Fprintf(w, " %v casualties=%.0f\n", c.Members, c.Casualties)
		}
		fmt.Fprintln(w)
	}

	if len(r.TopCountries) > 0 {
		bold.Fprintln(w, "TOP COUNTRIES:")
		for _, c := range r.TopCountries {
			fmt.Fprintf(w, "  %-28s %8.0f casualties in %d events\n", c.Country, c.Casualties, c.Events)
		}
		fmt.Fprintln(w)
	}

	if len(r.Unresolved) > 0 {
		yellow.Fprintf(w, "Unmapped countries: %d\n", len(r.Unresolved))
		for _, name := range r.Unresolved {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}
}

func describeFilter(f window.Filter) string {
	year := "all years"
	if f.Year != 0 {
		year = fmt.Sprintf("through %d", f.Year)
	}
	desc := year
	if f.ViolenceType != model.ViolenceAny {
		desc += ", " + f.ViolenceType.String()
	}
	if f.Region != "" {
		desc += ", " + f.Region
	}
	return desc
}
