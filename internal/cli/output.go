package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	out    io.Writer
	errOut io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer) *Output {
	return &Output{format: format, out: out, errOut: errOut}
}

var (
	headerColor   = color.New(color.Bold)
	secretColor   = color.New(color.FgYellow, color.Bold)
	warningColor  = color.New(color.FgRed)
	factionColors = map[string]*color.Color{
		"efemeros": color.New(color.FgCyan),
		"rosetta":  color.New(color.FgMagenta),
	}
)

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errOut, string(data))
	} else {
		_, _ = warningColor.Fprintf(o.errOut, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.out, string(data))
	} else {
		_, _ = fmt.Fprintln(o.out, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Registration:
		o.printRegistration(v)
	case *Registration:
		o.printRegistration(*v)
	case CreatedRegistration:
		o.printCreated(v)
	case *CreatedRegistration:
		o.printCreated(*v)
	case []Registration:
		o.printRegistrations(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case *Stats:
		o.printStats(*v)
	case *AdminToken:
		o.printAdminToken(*v)
	case *HealthResult:
		o.printHealthResult(*v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Registration response type (matches API)
type Registration struct {
	ID            string    `json:"id"`
	Faction       string    `json:"faction"`
	PlayerName    string    `json:"playerName"`
	CharacterUUID *string   `json:"characterUuid,omitempty"`
	TeamName      *string   `json:"teamName,omitempty"`
	RegisteredAt  time.Time `json:"registeredAt"`
}

// CreateRegistration is the create request body
type CreateRegistration struct {
	Faction       string  `json:"faction"`
	PlayerName    string  `json:"playerName"`
	CharacterUUID *string `json:"characterUuid,omitempty"`
	TeamName      *string `json:"teamName,omitempty"`
}

// CreatedRegistration is the create response, carrying the owner secret
type CreatedRegistration struct {
	Registration
	OwnerSecret string `json:"ownerSecret"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	Rank int `json:"rank"`
	Registration
}

// Leaderboard response type
type Leaderboard map[string][]LeaderboardEntry

// Stats response type
type Stats struct {
	Total     int            `json:"total"`
	ByFaction map[string]int `json:"byFaction"`
}

// AdminToken response type
type AdminToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func faction(name string) string {
	if c, ok := factionColors[name]; ok {
		return c.Sprint(name)
	}
	return name
}

func optional(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}

func (o *Output) printRegistration(r Registration) {
	_, _ = fmt.Fprintf(o.out, "Registration: %s\n", r.ID)
	_, _ = fmt.Fprintf(o.out, "Player: %s\n", r.PlayerName)
	_, _ = fmt.Fprintf(o.out, "Faction: %s\n", faction(r.Faction))
	_, _ = fmt.Fprintf(o.out, "Team: %s\n", optional(r.TeamName))
	_, _ = fmt.Fprintf(o.out, "Character: %s\n", optional(r.CharacterUUID))
	_, _ = fmt.Fprintf(o.out, "Registered: %s\n", humanize.Time(r.RegisteredAt))
}

func (o *Output) printCreated(c CreatedRegistration) {
	o.printRegistration(c.Registration)
	_, _ = secretColor.Fprintf(o.out, "Owner secret: %s\n", c.OwnerSecret)
	_, _ = fmt.Fprintln(o.out, "The secret has been saved locally. It cannot be recovered from the server.")
}

func (o *Output) printRegistrations(regs []Registration) {
	if len(regs) == 0 {
		_, _ = fmt.Fprintln(o.out, "No registrations")
		return
	}

	tw := tabwriter.NewWriter(o.out, 0, 4, 2, ' ', 0)
	_, _ = headerColor.Fprintln(tw, "ID\tPLAYER\tFACTION\tTEAM\tREGISTERED")
	for _, r := range regs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.PlayerName, faction(r.Faction), optional(r.TeamName), humanize.Time(r.RegisteredAt))
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(o.out, "%s registrations\n", humanize.Comma(int64(len(regs))))
}

func (o *Output) printLeaderboard(b Leaderboard) {
	for _, name := range []string{"efemeros", "rosetta"} {
		entries := b[name]
		_, _ = headerColor.Fprintf(o.out, "%s (%s)\n", faction(name), humanize.Comma(int64(len(entries))))
		for _, e := range entries {
			_, _ = fmt.Fprintf(o.out, "  %s  %s  %s\n", humanize.Ordinal(e.Rank), e.PlayerName, optional(e.TeamName))
		}
	}
}

func (o *Output) printStats(s Stats) {
	_, _ = fmt.Fprintf(o.out, "Total: %s\n", humanize.Comma(int64(s.Total)))
	for _, name := range []string{"efemeros", "rosetta"} {
		_, _ = fmt.Fprintf(o.out, "  %s: %s\n", faction(name), humanize.Comma(int64(s.ByFaction[name])))
	}
}

func (o *Output) printAdminToken(t AdminToken) {
	_, _ = fmt.Fprintf(o.out, "Admin session saved, expires %s\n", humanize.Time(t.ExpiresAt))
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.out, "Status: %s\n", h.Status)
}
