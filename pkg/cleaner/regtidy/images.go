package regtidy

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/jmylchreest/regtidy/pkg/dom"
)

var styleDimRe = regexp.MustCompile(`(?i)(?:^|;)\s*(width|height)\s*:\s*(\d+(?:\.\d+)?)px`)

// imageDims returns the declared width and height of img, 0 when unknown.
func imageDims(img *html.Node) (w, h float64) {
	w = attrFloat(img, "width")
	h = attrFloat(img, "height")
	for _, m := range styleDimRe.FindAllStringSubmatch(dom.AttrOr(img, "style", ""), -1) {
		v, _ := strconv.ParseFloat(m[2], 64)
		switch strings.ToLower(m[1]) {
		case "width":
			if w == 0 {
				w = v
			}
		case "height":
			if h == 0 {
				h = v
			}
		}
	}
	return w, h
}

func attrFloat(n *html.Node, key string) float64 {
	v := strings.TrimSuffix(strings.TrimSpace(dom.AttrOr(n, key, "")), "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// rewriteImages drops spacer images and points image sources at the file
// server.
func rewriteImages(d *Doc) {
	min := float64(d.Config.Thresholds.MinImageDimension)
	d.each("img", func(img *html.Node) {
		w, h := imageDims(img)
		if (w > 0 && w < min) || (h > 0 && h < min) {
			d.remove(img)
			return
		}
		src := dom.AttrOr(img, "src", "")
		if strings.HasPrefix(strings.ToLower(src), "file:") {
			d.Result.AddWarning("rewriteImages", "image refers to a local file", src)
			return
		}
		if out, ok := d.fileURL(src, true); ok && out != src {
			dom.SetAttr(img, "src", out)
			d.Stats().LinksRewritten++
		}
	})
}

// rewriteLinks points links to uploaded files at the file server.
func rewriteLinks(d *Doc) {
	d.each("a[href]", func(a *html.Node) {
		href := dom.AttrOr(a, "href", "")
		if out, ok := d.fileURL(href, false); ok && out != href {
			dom.SetAttr(a, "href", out)
			d.Stats().LinksRewritten++
		}
	})
}

// fileURL rewrites raw onto the configured file server. Only paths under
// a file prefix are rewritten, unless anyRelative is set, in which case
// every relative reference is. The query string is dropped.
func (d *Doc) fileURL(raw string, anyRelative bool) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	switch u.Scheme {
	case "", "http", "https":
	default:
		return "", false
	}
	underPrefix := false
	for _, prefix := range d.Config.FilePathPrefixes {
		if strings.HasPrefix(u.Path, prefix) {
			underPrefix = true
			break
		}
	}
	relative := u.Host == ""
	if !underPrefix && !(anyRelative && relative) {
		return "", false
	}
	u.RawQuery = ""
	u.ForceQuery = false

	host := d.Config.FileServerHost
	if host == "" {
		return u.String(), true
	}
	base, err := url.Parse(host)
	if err != nil {
		return "", false
	}
	if !relative && !underPrefix {
		return u.String(), true
	}
	u.Scheme, u.Host, u.User = base.Scheme, base.Host, nil
	if !strings.HasPrefix(u.Path, "/") {
		u.Path = path.Join("/", base.Path, u.Path)
	}
	return u.String(), true
}
