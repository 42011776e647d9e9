// Package handlers implements the HTTP surface: list and detail pages,
// materialized document views, downloads, the image proxy, and the
// operational endpoints. Handlers parse, ask the buses, and respond;
// nothing here touches relays or caches directly.
package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"

	"octavo/domain/core/entities"
	"octavo/domain/core/valueobjects"
	"octavo/interfaces/http/templates"
)

// relaysParam reads the optional relays= override from a request.
func relaysParam(r *http.Request) valueobjects.RelaySet {
	return valueobjects.ParseRelaySet(r.URL.Query().Get("relays"))
}

// relaySuffix carries an explicit relays= override into generated links, so
// navigating from a custom-relay list page stays on those relays.
func relaySuffix(r *http.Request) string {
	raw := r.URL.Query().Get("relays")
	if raw == "" {
		return ""
	}
	return "&relays=" + url.QueryEscape(raw)
}

func formatWhen(ts nostr.Timestamp) string {
	if ts == 0 {
		return ""
	}
	return ts.Time().UTC().Format("2006-01-02")
}

// detailHref links to the detail page for an event, preferring the
// replaceable address form when the event has one.
func detailHref(ev *nostr.Event, suffix string) string {
	if addr, ok := valueobjects.AddressOf(ev); ok {
		if naddr, err := addr.Naddr(nil); err == nil {
			return "/?id=" + naddr + suffix
		}
	}
	if note, err := nip19.EncodeNote(ev.ID); err == nil {
		return "/?id=" + note + suffix
	}
	return ""
}

// listItems converts events into list page rows.
func listItems(events []*nostr.Event, handles map[string]string, suffix string) []templates.ListItem {
	items := make([]templates.ListItem, 0, len(events))
	for _, ev := range events {
		items = append(items, templates.ListItem{
			Title:   entities.EventTitle(ev),
			Author:  displayHandle(handles, ev.PubKey),
			Summary: entities.EventTag(ev, "summary"),
			Href:    detailHref(ev, suffix),
			When:    formatWhen(ev.CreatedAt),
		})
	}
	return items
}

func displayHandle(handles map[string]string, pubKey string) string {
	if handle, ok := handles[pubKey]; ok && handle != "" {
		return handle
	}
	return entities.ShortNpub(pubKey)
}

// proxiedImage routes a remote image through the proxy endpoint so pages
// never embed third-party origins directly.
func proxiedImage(raw string) string {
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return ""
	}
	return "/image-proxy?url=" + url.QueryEscape(raw)
}

// downloadFilename derives a safe attachment filename from a title.
func downloadFilename(title, extension string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "document"
	}
	if len(name) > 64 {
		name = name[:64]
	}
	return name + "." + extension
}

// flattenComments walks a comment forest into indented rows.
func flattenComments(roots []*entities.ThreadNode, handles map[string]string, markdown templates.MarkdownRenderer) []templates.CommentView {
	var out []templates.CommentView
	var walk func(node *entities.ThreadNode, depth int)
	walk = func(node *entities.ThreadNode, depth int) {
		body, err := markdown.Render(node.Event.Content)
		if err != nil {
			body = ""
		}
		out = append(out, templates.CommentView{
			Author: displayHandle(handles, node.Event.PubKey),
			When:   formatWhen(node.Event.CreatedAt),
			Body:   body,
			Depth:  depth,
		})
		for _, child := range node.Children {
			walk(child, depth+1)
		}
	}
	for _, root := range roots {
		walk(root, 0)
	}
	return out
}

func writeHTML(w http.ResponseWriter, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

func cacheFor(w http.ResponseWriter, d time.Duration) {
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(d.Seconds())))
}
