package capture

import (
	"crypto/md5"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"shutter/internal/config"
	"shutter/internal/deps"
	"shutter/internal/viewport"
)

// buildArgs assembles the command line for one capture tool. The resolved
// binary path is supplied separately by the probe.
func buildArgs(tool deps.Tool, pageURL string, vp viewport.Spec, outputPath string, capture config.Capture) []string {
	switch tool {
	case deps.ToolWkhtmltoimage:
		return []string{
			"--quality", strconv.Itoa(capture.Quality),
			"--width", strconv.Itoa(vp.Width),
			"--height", strconv.Itoa(vp.Height),
			"--javascript-delay", strconv.Itoa(capture.ScriptDelayMS),
			"--no-stop-slow-scripts",
			"--disable-smart-width",
			"--format", "png",
			pageURL,
			outputPath,
		}
	case deps.ToolChrome:
		return []string{
			"--headless",
			"--disable-gpu",
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--hide-scrollbars",
			"--disable-background-timer-throttling",
			"--disable-backgrounding-occluded-windows",
			"--disable-renderer-backgrounding",
			fmt.Sprintf("--window-size=%d,%d", vp.Width, vp.Height),
			"--screenshot=" + outputPath,
			pageURL,
		}
	case deps.ToolFirefox:
		return []string{
			"--headless",
			"--screenshot=" + outputPath,
			fmt.Sprintf("--window-size=%d,%d", vp.Width, vp.Height),
			pageURL,
		}
	default:
		return nil
	}
}

// ArtifactPath derives the relative storage path for a capture. Artifacts are
// grouped into year/month directories and named after the viewport, the URL
// hash, and the capture time so repeated captures of the same page never
// collide.
func ArtifactPath(viewportName, pageURL string, ts time.Time, jobID string) string {
	hash := md5.Sum([]byte(pageURL))
	name := fmt.Sprintf("%s_%x_%d", viewportName, hash, ts.Unix())
	if suffix := sanitizeSuffix(jobID); suffix != "" {
		name += "_" + suffix
	}
	return filepath.Join(ts.Format("2006"), ts.Format("01"), name+".png")
}

// sanitizeSuffix strips anything that is not safe in a filename.
func sanitizeSuffix(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}
