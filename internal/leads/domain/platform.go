// Package domain holds lead rules that do not depend on storage or transport.
package domain

import "strings"

// Platform is the social network a lead was found on.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformFacebook  Platform = "facebook"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformPinterest Platform = "pinterest"
	PlatformSnapchat  Platform = "snapchat"
	PlatformOther     Platform = "other"
)

// Platforms lists every accepted platform in display order.
var Platforms = []Platform{
	PlatformInstagram,
	PlatformTwitter,
	PlatformLinkedIn,
	PlatformFacebook,
	PlatformTikTok,
	PlatformYouTube,
	PlatformPinterest,
	PlatformSnapchat,
	PlatformOther,
}

// ParsePlatform normalizes user input. The second result is false for
// values outside Platforms.
func ParsePlatform(s string) (Platform, bool) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Valid()
}

// Valid reports whether p is one of Platforms.
func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

func (p Platform) String() string { return string(p) }
