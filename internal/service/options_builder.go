package service

import (
	"fmt"
	"mime"
	"strconv"
	"strings"

	"youdl/internal/model"
	"youdl/pkg/validator"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// Quality categories
const (
	QualityAudio   = "Audio"
	QualityFD      = "FD"
	QualitySD      = "SD"
	QualityHD      = "HD"
	QualityFHD     = "FHD"
	QualityUnknown = "Unknown"
)

// OptionsBuilder turns a metadata record into the list of downloadable streams
type OptionsBuilder struct {
	policy model.StreamPolicy
	log    *zap.Logger
}

// NewOptionsBuilder creates a builder applying the given stream policy
func NewOptionsBuilder(policy model.StreamPolicy, log *zap.Logger) *OptionsBuilder {
	if policy == "" {
		policy = model.PolicyProgressive
	}
	return &OptionsBuilder{policy: policy, log: log}
}

// Build walks progressive streams, then adaptive ones when the policy allows,
// and keeps every stream whose URL can be fetched as is. An empty result is a
// KindUnsupported error.
func (b *OptionsBuilder) Build(pr *model.PlayerResponse) (model.DownloadOptions, error) {
	title := pr.VideoDetails.Title
	if title == "" {
		title = pr.VideoDetails.VideoID
	}

	var opts model.DownloadOptions
	seen := make(map[int]bool)
	skipped := 0

	add := func(formats []model.Format, adaptive bool) {
		for _, f := range formats {
			if f.Ciphered() || !validator.IsDirectURL(f.URL) {
				skipped++
				continue
			}
			if seen[f.Itag] {
				continue
			}
			seen[f.Itag] = true
			opts = append(opts, buildOption(f, title, adaptive))
		}
	}

	add(pr.StreamingData.Formats, false)
	if b.policy.IncludesAdaptive() {
		add(pr.StreamingData.AdaptiveFormats, true)
	}

	b.log.Debug("Download options built",
		zap.String("title", title),
		zap.String("policy", string(b.policy)),
		zap.Int("options", len(opts)),
		zap.Int("skipped", skipped),
	)

	if len(opts) == 0 {
		if !pr.PlayabilityStatus.Playable() {
			reason := pr.PlayabilityStatus.Reason
			if reason == "" {
				reason = strings.ToLower(pr.PlayabilityStatus.Status)
			}
			return nil, model.Unsupported(fmt.Sprintf("video is not playable: %s", reason))
		}
		return nil, model.Unsupported("no stream can be downloaded directly, a fallback downloader can fetch this video")
	}
	return opts, nil
}

func buildOption(f model.Format, title string, adaptive bool) model.DownloadOption {
	mediaType, codecs := parseMimeType(f.MimeType)
	size, _ := strconv.ParseInt(f.ContentLength, 10, 64)

	opt := model.DownloadOption{
		Itag:          f.Itag,
		URL:           f.URL,
		Title:         title,
		FileName:      validator.BuildFileName(title, extensionFor(mediaType)),
		MimeType:      mediaType,
		Quality:       determineQuality(f, mediaType),
		Adaptive:      adaptive,
		ContentLength: size,
	}
	opt.Label = buildLabel(opt, f, codecs)
	return opt
}

// parseMimeType splits `video/mp4; codecs="avc1.42001E, mp4a.40.2"` into its
// media type and codec list
func parseMimeType(s string) (string, string) {
	mediaType, params, err := mime.ParseMediaType(s)
	if err != nil {
		base, _, _ := strings.Cut(s, ";")
		return strings.ToLower(strings.TrimSpace(base)), ""
	}
	return mediaType, params["codecs"]
}

// extensionFor maps a media type to a file extension
func extensionFor(mediaType string) string {
	switch mediaType {
	case "video/mp4":
		return "mp4"
	case "audio/mp4":
		return "m4a"
	case "video/webm", "audio/webm":
		return "webm"
	case "video/3gpp":
		return "3gp"
	}
	if _, sub, ok := strings.Cut(mediaType, "/"); ok && sub != "" && !strings.ContainsAny(sub, `/\`) {
		return sub
	}
	return "bin"
}

// determineQuality determines quality based on media type and frame height
// Categories: Audio, FD (below 480p), SD (480p), HD (720p), FHD (1080p and above)
func determineQuality(f model.Format, mediaType string) string {
	if strings.HasPrefix(mediaType, "audio/") {
		return QualityAudio
	}

	height := f.Height
	if height == 0 {
		height = heightFromLabel(f.QualityLabel)
	}
	return normalizeByHeight(height)
}

// normalizeByHeight maps a frame height to a quality category
func normalizeByHeight(height int) string {
	switch {
	case height <= 0:
		return QualityUnknown
	case height >= 1080:
		return QualityFHD
	case height >= 720:
		return QualityHD
	case height >= 480:
		return QualitySD
	default:
		return QualityFD
	}
}

// heightFromLabel extracts 720 from labels like "720p" or "720p60 HDR"
func heightFromLabel(label string) int {
	digits, _, found := strings.Cut(label, "p")
	if !found {
		return 0
	}
	h, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return h
}

// buildLabel builds a readable, unique option name
func buildLabel(opt model.DownloadOption, f model.Format, codecs string) string {
	var b strings.Builder
	b.WriteString(opt.Quality)

	switch {
	case f.QualityLabel != "":
		fmt.Fprintf(&b, " (%s)", f.QualityLabel)
	case f.Width > 0 && f.Height > 0:
		fmt.Fprintf(&b, " (%dx%d)", f.Width, f.Height)
	case opt.Quality == QualityAudio && f.AudioQuality != "":
		fmt.Fprintf(&b, " (%s)", strings.ToLower(strings.TrimPrefix(f.AudioQuality, "AUDIO_QUALITY_")))
	}

	fmt.Fprintf(&b, " - %s", opt.MimeType)
	if codecs != "" {
		fmt.Fprintf(&b, " [%s]", codecs)
	}
	if opt.Adaptive && opt.Quality != QualityAudio {
		b.WriteString(" video only")
	}
	if opt.ContentLength > 0 {
		fmt.Fprintf(&b, " - %s", humanize.Bytes(uint64(opt.ContentLength)))
	}
	fmt.Fprintf(&b, " - itag %d", opt.Itag)
	return b.String()
}
