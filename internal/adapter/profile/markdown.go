package profile

import (
	"fmt"
	"strings"

	"linkedin-assistant/internal/domain"
)

// RenderMarkdown converts a structured profile into a markdown document.
// Empty sections are omitted.
func RenderMarkdown(p *domain.Profile) string {
	var b strings.Builder

	if p.Name != "" {
		fmt.Fprintf(&b, "# %s\n\n", p.Name)
	}
	if p.Headline != "" {
		fmt.Fprintf(&b, "**%s**\n\n", p.Headline)
	}
	if p.Location != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Location)
	}

	if p.About != "" {
		b.WriteString("## About\n\n")
		b.WriteString(p.About)
		b.WriteString("\n\n")
	}

	if len(p.Experience) > 0 {
		b.WriteString("## Experience\n\n")
		for _, e := range p.Experience {
			fmt.Fprintf(&b, "### %s\n\n", e.Title)
			if e.Company != "" {
				fmt.Fprintf(&b, "**%s**", e.Company)
				if e.Duration != "" {
					fmt.Fprintf(&b, " | %s", e.Duration)
				}
				b.WriteString("\n\n")
			}
			if e.Description != "" {
				b.WriteString(e.Description)
				b.WriteString("\n\n")
			}
		}
	}

	if len(p.Education) > 0 {
		b.WriteString("## Education\n\n")
		for _, e := range p.Education {
			fmt.Fprintf(&b, "### %s\n\n", e.School)
			var parts []string
			if e.Degree != "" {
				parts = append(parts, e.Degree)
			}
			if e.Field != "" {
				parts = append(parts, e.Field)
			}
			if len(parts) > 0 {
				fmt.Fprintf(&b, "%s", strings.Join(parts, ", "))
				if e.Years != "" {
					fmt.Fprintf(&b, " | %s", e.Years)
				}
				b.WriteString("\n\n")
			} else if e.Years != "" {
				fmt.Fprintf(&b, "%s\n\n", e.Years)
			}
		}
	}

	if len(p.Skills) > 0 {
		b.WriteString("## Skills\n\n")
		for _, s := range p.Skills {
			fmt.Fprintf(&b, "- %s\n", s)
		}
		b.WriteString("\n")
	}

	if len(p.Certifications) > 0 {
		b.WriteString("## Certifications\n\n")
		for _, c := range p.Certifications {
			fmt.Fprintf(&b, "- **%s**", c.Name)
			if c.Issuer != "" {
				fmt.Fprintf(&b, " - %s", c.Issuer)
			}
			if c.Date != "" {
				fmt.Fprintf(&b, " (%s)", c.Date)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(p.Languages) > 0 {
		b.WriteString("## Languages\n\n")
		for _, l := range p.Languages {
			fmt.Fprintf(&b, "- %s\n", l)
		}
		b.WriteString("\n")
	}

	if len(p.Volunteer) > 0 {
		b.WriteString("## Volunteering\n\n")
		for _, v := range p.Volunteer {
			fmt.Fprintf(&b, "- **%s** at %s", v.Role, v.Organization)
			if v.Duration != "" {
				fmt.Fprintf(&b, " (%s)", v.Duration)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(p.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		for _, r := range p.Recommendations {
			fmt.Fprintf(&b, "> %s\n>\n> -- %s", r.Text, r.Author)
			if r.Relationship != "" {
				fmt.Fprintf(&b, ", %s", r.Relationship)
			}
			b.WriteString("\n\n")
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}
