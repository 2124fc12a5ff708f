// Package images localises the remote images referenced by converted
// markdown. The conversion service serves cropped page regions from its
// CDN, and those links rot once the remote document is deleted. The
// processor downloads each image into a directory named after the
// markdown file and rewrites the link to a relative path.
package images

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pagestream/pagestream-cli/internal/logger"
)

// linkPattern matches markdown image links into the service CDN.
var linkPattern = regexp.MustCompile(`!\[(.*?)\]\((https?://cdn\.mathpix\.com/cropped/.*?)\)`)

// DefaultTimeout bounds a single image download.
const DefaultTimeout = 10 * time.Second

// Result counts what happened to one file's image links.
type Result struct {
	// Rewritten is how many links now point at local files.
	Rewritten int

	// Failed is how many downloads failed; those links are untouched.
	Failed int
}

// Processor downloads CDN images and rewrites markdown files in place.
type Processor struct {
	client *http.Client
}

// NewProcessor creates a processor. A nil client gets a default one
// with DefaultTimeout.
func NewProcessor(client *http.Client) *Processor {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Processor{client: client}
}

// ProcessFile localises the images of one markdown file. Images land in
// a sibling directory named after the file, so paper.mmd keeps its
// images under paper/. The file is rewritten only when a link changed.
func (p *Processor) ProcessFile(ctx context.Context, filePath string) (Result, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", filePath, err)
	}

	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	imageDir := filepath.Join(filepath.Dir(filePath), base)

	var res Result
	updated := linkPattern.ReplaceAllStringFunc(string(data), func(match string) string {
		groups := linkPattern.FindStringSubmatch(match)
		alt, link := groups[1], groups[2]

		name, err := p.download(ctx, link, imageDir)
		if err != nil {
			logger.Error("download %s: %v", link, err)
			res.Failed++
			return match
		}
		logger.Info("downloaded %s -> %s", link, filepath.Join(imageDir, name))
		res.Rewritten++
		return fmt.Sprintf("![%s](%s)", alt, filepath.Join(base, name))
	})

	if res.Rewritten > 0 {
		if err := os.WriteFile(filePath, []byte(updated), 0o644); err != nil {
			return res, fmt.Errorf("write %s: %w", filePath, err)
		}
	}
	return res, nil
}

// ProcessTree localises every .md and .mmd file under root.
func (p *Processor) ProcessTree(ctx context.Context, root string) (Result, error) {
	var total Result
	err := filepath.WalkDir(root, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(filePath)) {
		case ".md", ".mmd":
		default:
			return nil
		}
		res, err := p.ProcessFile(ctx, filePath)
		total.Rewritten += res.Rewritten
		total.Failed += res.Failed
		if err != nil {
			return err
		}
		return ctx.Err()
	})
	return total, err
}

// download fetches one image into dir and returns the stored filename.
func (p *Processor) download(ctx context.Context, link, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	name, err := imageName(link)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create image directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

// imageName derives a filename from the CDN link. The crop coordinates
// from the query keep two crops of the same page apart.
func imageName(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", err
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "", fmt.Errorf("no filename in %s", link)
	}

	q := u.Query()
	x, y, w, h := q.Get("top_left_x"), q.Get("top_left_y"), q.Get("width"), q.Get("height")
	if x != "" && y != "" && w != "" && h != "" {
		ext := path.Ext(name)
		name = fmt.Sprintf("%s_x%s_y%s_w%s_h%s%s", strings.TrimSuffix(name, ext), x, y, w, h, ext)
	}
	return name, nil
}
