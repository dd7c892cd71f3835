package beatmap

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultDownloadURL = "https://osu.ppy.sh/osu"

var ErrDownload = errors.New("beatmap: .osu download failed")

// Hit object type bits.
const (
	objCircle  = 1 << 0
	objSlider  = 1 << 1
	objSpinner = 1 << 3
	objHold    = 1 << 7
)

// File is the subset of an .osu file used for estimates and display.
type File struct {
	Title    string
	Artist   string
	Version  string
	Creator  string
	Mode     int
	HP       float64
	CS       float64
	OD       float64
	AR       float64
	Circles  int
	Sliders  int
	Spinners int
	Holds    int
}

// Objects is the total hit object count.
func (f *File) Objects() int {
	return f.Circles + f.Sliders + f.Spinners + f.Holds
}

type Downloader struct {
	baseURL    string
	httpClient *http.Client
}

func NewDownloader(baseURL string, httpClient *http.Client) *Downloader {
	if baseURL == "" {
		baseURL = DefaultDownloadURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Downloader{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// Fetch downloads and parses the .osu file of one difficulty. Nothing is
// written to disk.
func (d *Downloader) Fetch(ctx context.Context, beatmapID int) (*File, error) {
	url := fmt.Sprintf("%s/%d", d.baseURL, beatmapID)
	zap.S().Debugf("[Beatmap] Downloading %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		zap.S().Errorf("[Beatmap] Download of %d failed: %v", beatmapID, err)
		return nil, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		zap.S().Errorf("[Beatmap] Download of %d returned %d: %s", beatmapID, resp.StatusCode, body)
		return nil, fmt.Errorf("%w: status %d", ErrDownload, resp.StatusCode)
	}

	f, err := Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	if f.Objects() == 0 {
		return nil, fmt.Errorf("%w: beatmap %d has no hit objects", ErrDownload, beatmapID)
	}
	return f, nil
}

// Parse reads the General, Metadata, Difficulty and HitObjects sections.
// Unicode title and artist are used only when the ASCII ones are missing.
func Parse(r io.Reader) (*File, error) {
	f := &File{}
	var titleUnicode, artistUnicode string
	hasAR := false
	section := ""

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = line[1 : len(line)-1]
			continue
		}

		switch section {
		case "General", "Metadata", "Difficulty":
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			key = strings.TrimSpace(key)
			value = strings.TrimSpace(value)
			switch key {
			case "Mode":
				f.Mode, _ = strconv.Atoi(value)
			case "Title":
				f.Title = value
			case "TitleUnicode":
				titleUnicode = value
			case "Artist":
				f.Artist = value
			case "ArtistUnicode":
				artistUnicode = value
			case "Version":
				f.Version = value
			case "Creator":
				f.Creator = value
			case "HPDrainRate":
				f.HP = parseFloat(value)
			case "CircleSize":
				f.CS = parseFloat(value)
			case "OverallDifficulty":
				f.OD = parseFloat(value)
			case "ApproachRate":
				f.AR = parseFloat(value)
				hasAR = true
			}
		case "HitObjects":
			fields := strings.Split(line, ",")
			if len(fields) < 4 {
				continue
			}
			kind, err := strconv.Atoi(fields[3])
			if err != nil {
				continue
			}
			switch {
			case kind&objCircle != 0:
				f.Circles++
			case kind&objSlider != 0:
				f.Sliders++
			case kind&objSpinner != 0:
				f.Spinners++
			case kind&objHold != 0:
				f.Holds++
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read .osu file: %w", err)
	}

	if f.Title == "" {
		f.Title = titleUnicode
	}
	if f.Artist == "" {
		f.Artist = artistUnicode
	}
	// Old files have no ApproachRate line; AR followed OD back then.
	if !hasAR {
		f.AR = f.OD
	}
	return f, nil
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
