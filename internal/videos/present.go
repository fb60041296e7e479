package videos

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rheddev/rhed-v2/internal/models"
)

const (
	thumbnailWidth  = 480
	thumbnailHeight = 270
)

var (
	hoursPattern   = regexp.MustCompile(`(\d+)h`)
	minutesPattern = regexp.MustCompile(`(\d+)m`)
	secondsPattern = regexp.MustCompile(`(\d+)s`)
)

// Card is a video together with the values the landing page displays.
type Card struct {
	models.Video
	Thumbnail       string `json:"thumbnail"`
	DisplayDuration string `json:"display_duration"`
	DisplayDate     string `json:"display_date"`
}

// NewCard derives the display fields for a video.
func NewCard(video models.Video) Card {
	return Card{
		Video:           video,
		Thumbnail:       ThumbnailURL(video.ThumbnailURL, thumbnailWidth, thumbnailHeight),
		DisplayDuration: FormatDuration(video.Duration),
		DisplayDate:     FormatDate(video.CreatedAt),
	}
}

// ThumbnailURL fills the %{width} and %{height} placeholders of a thumbnail template.
func ThumbnailURL(template string, width, height int) string {
	return strings.NewReplacer(
		"%{width}", strconv.Itoa(width),
		"%{height}", strconv.Itoa(height),
	).Replace(template)
}

// FormatDuration renders a compact duration such as "1h2m3s" as "1h 2m".
// Seconds are only shown for videos shorter than an hour.
func FormatDuration(duration string) string {
	hours := hoursPattern.FindStringSubmatch(duration)
	minutes := minutesPattern.FindStringSubmatch(duration)
	seconds := secondsPattern.FindStringSubmatch(duration)

	var parts []string
	if hours != nil {
		parts = append(parts, hours[1]+"h")
	}
	if minutes != nil {
		parts = append(parts, minutes[1]+"m")
	}
	if seconds != nil && hours == nil {
		parts = append(parts, seconds[1]+"s")
	}
	if len(parts) == 0 {
		return "0s"
	}
	return strings.Join(parts, " ")
}

// FormatDate renders an RFC 3339 timestamp as "Jan 2, 2006". Unparseable input is returned as is.
func FormatDate(value string) string {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	return t.Format("Jan 2, 2006")
}
