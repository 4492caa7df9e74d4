// Package render turns lead summaries into display fragments: escaped HTML
// rows for the dashboard and styled lines for the terminal client.
package render

import "leadscope_backend/internal/leads/domain"

// Badge is the visual marker of a lead's platform.
type Badge struct {
	Label string
	// Color is a bootstrap contextual class suffix (primary, info, danger...).
	Color string
	// Icon is a font-awesome class list.
	Icon string
	// Glyph is the short marker used by the terminal renderer.
	Glyph string
}

// PlatformBadge maps a platform to its badge. Unknown platforms fall back to
// the generic badge labelled with the raw value.
func PlatformBadge(platform string) Badge {
	p, _ := domain.ParsePlatform(platform)
	switch p {
	case domain.PlatformInstagram:
		return Badge{Label: "Instagram", Color: "danger", Icon: "fab fa-instagram", Glyph: "IG"}
	case domain.PlatformTwitter:
		return Badge{Label: "Twitter", Color: "info", Icon: "fab fa-twitter", Glyph: "X"}
	case domain.PlatformLinkedIn:
		return Badge{Label: "LinkedIn", Color: "primary", Icon: "fab fa-linkedin", Glyph: "in"}
	case domain.PlatformFacebook:
		return Badge{Label: "Facebook", Color: "primary", Icon: "fab fa-facebook", Glyph: "FB"}
	case domain.PlatformTikTok:
		return Badge{Label: "TikTok", Color: "dark", Icon: "fab fa-tiktok", Glyph: "TT"}
	case domain.PlatformYouTube:
		return Badge{Label: "YouTube", Color: "danger", Icon: "fab fa-youtube", Glyph: "YT"}
	case domain.PlatformPinterest:
		return Badge{Label: "Pinterest", Color: "danger", Icon: "fab fa-pinterest", Glyph: "PI"}
	case domain.PlatformSnapchat:
		return Badge{Label: "Snapchat", Color: "warning", Icon: "fab fa-snapchat", Glyph: "SC"}
	case domain.PlatformOther:
		return Badge{Label: "Other", Color: "secondary", Icon: "fas fa-globe", Glyph: "--"}
	default:
		label := platform
		if label == "" {
			label = "Other"
		}
		return Badge{Label: label, Color: "secondary", Icon: "fas fa-globe", Glyph: "--"}
	}
}
