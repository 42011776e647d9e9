package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/nbd-wtf/go-nostr"
	"go.uber.org/zap"

	"octavo/application/ports"
	"octavo/application/resolve"
	"octavo/domain/core"
	"octavo/domain/core/entities"
	"octavo/domain/core/valueobjects"
	"octavo/infrastructure/cache"
	"octavo/infrastructure/config"
	apperrors "octavo/pkg/errors"
)

// Orchestrator implements the read-through flows behind every content
// request: probe the right cache namespaces, fall back to the network, and
// write results back so the next request short-circuits earlier.
type Orchestrator struct {
	fetcher   ports.Fetcher
	caches    *cache.Tiered
	resolver  *resolve.Resolver
	assembler *Assembler
	limit     int
	logger    *zap.Logger
}

// NewOrchestrator creates a request orchestrator
func NewOrchestrator(
	fetcher ports.Fetcher,
	caches *cache.Tiered,
	resolver *resolve.Resolver,
	assembler *Assembler,
	cfg *config.Config,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		fetcher:   fetcher,
		caches:    caches,
		resolver:  resolver,
		assembler: assembler,
		limit:     cfg.FetchLimit,
		logger:    logger,
	}
}

// PublicationByAddress resolves the newest publication index at an address:
// detail cache, then the list slot with TTL=∞ so stale lists still answer,
// then the network with a limit-1 early-exit fetch. A network hit is
// written back to both namespaces.
func (o *Orchestrator) PublicationByAddress(ctx context.Context, addr valueobjects.Address, explicit valueobjects.RelaySet) (*nostr.Event, error) {
	relays := o.resolver.PublicationRelays(explicit)
	key := qualifiedKey(addr.String(), explicit, relays)

	if ev, ok := o.caches.PublicationDetail.Get(key); ok {
		return ev, nil
	}
	if ev := o.probeListSlot(o.caches.Publications, relays, addr); ev != nil {
		o.caches.PublicationDetail.Set(key, ev)
		return ev, nil
	}

	ev := entities.NewestEvent(o.fetcher.FetchItem(ctx, nostr.Filters{addressFilter(addr)}, relays.URLs()))
	if ev == nil {
		return nil, apperrors.NewNotFoundError("publication")
	}
	o.caches.PublicationDetail.Set(key, ev)
	o.mergeIntoList(o.caches.Publications, relays, ev)
	return ev, nil
}

// ArticleByAddress is the article variant of PublicationByAddress. The
// detail namespace keys articles by author and discriminator.
func (o *Orchestrator) ArticleByAddress(ctx context.Context, addr valueobjects.Address, explicit valueobjects.RelaySet) (*nostr.Event, error) {
	relays := o.resolver.ArticleRelays(explicit)
	key := qualifiedKey(addr.PubKey()+":"+addr.Identifier(), explicit, relays)

	if ev, ok := o.caches.ArticleDetail.Get(key); ok {
		return ev, nil
	}
	if ev := o.probeListSlot(o.caches.Articles, relays, addr); ev != nil {
		o.caches.ArticleDetail.Set(key, ev)
		return ev, nil
	}

	ev := entities.NewestEvent(o.fetcher.FetchItem(ctx, nostr.Filters{addressFilter(addr)}, relays.URLs()))
	if ev == nil {
		return nil, apperrors.NewNotFoundError("article")
	}
	o.caches.ArticleDetail.Set(key, ev)
	o.mergeIntoList(o.caches.Articles, relays, ev)
	return ev, nil
}

// EventByID fetches one event by id. Relay hints from the decoded entity
// win over kind defaults; an explicit override wins over both. Results
// share the publication detail namespace, keyed by id.
func (o *Orchestrator) EventByID(ctx context.Context, id string, kind int, hints []string, explicit valueobjects.RelaySet) (*nostr.Event, error) {
	relays := o.resolver.RelaysFor(explicit, &resolve.Target{EventID: id, Kind: kind, Relays: hints})
	key := qualifiedKey(id, explicit, relays)

	if ev, ok := o.caches.PublicationDetail.Get(key); ok {
		return ev, nil
	}

	events := o.fetcher.FetchItem(ctx, nostr.Filters{{IDs: []string{id}, Limit: 1}}, relays.URLs())
	if len(events) == 0 {
		return nil, apperrors.NewNotFoundError("event")
	}
	ev := events[0]
	o.caches.PublicationDetail.Set(key, ev)
	return ev, nil
}

// Publications returns the top-level publication list, newest first. An
// empty fetch result is returned but never cached, so a relay outage does
// not pin an empty index page for the full list TTL.
func (o *Orchestrator) Publications(ctx context.Context, explicit valueobjects.RelaySet) []*nostr.Event {
	relays := o.resolver.PublicationRelays(explicit)
	key := o.listKey(relays)
	if events, ok := o.caches.Publications.Get(key); ok {
		return events
	}

	fetched := o.fetcher.FetchList(ctx, nostr.Filters{{
		Kinds: []int{core.KindPublicationIndex},
		Limit: o.limit,
	}}, relays.URLs(), o.limit)

	events := FilterTopLevel(entities.CollapseAddresses(fetched))
	entities.SortByCreatedDesc(events)
	if len(events) > 0 {
		o.caches.Publications.Set(key, events)
	}
	return events
}

// Articles returns the long-form article list, newest first.
func (o *Orchestrator) Articles(ctx context.Context, explicit valueobjects.RelaySet) []*nostr.Event {
	relays := o.resolver.ArticleRelays(explicit)
	key := o.listKey(relays)
	if events, ok := o.caches.Articles.Get(key); ok {
		return events
	}

	fetched := o.fetcher.FetchList(ctx, nostr.Filters{{
		Kinds: []int{core.KindArticle},
		Limit: o.limit,
	}}, relays.URLs(), o.limit)

	events := entities.CollapseAddresses(fetched)
	entities.SortByCreatedDesc(events)
	if len(events) > 0 {
		o.caches.Articles.Set(key, events)
	}
	return events
}

// Highlights returns recent highlights, newest first. Highlights are not
// replaceable, so deduplication by id in the fetch layer suffices.
func (o *Orchestrator) Highlights(ctx context.Context, explicit valueobjects.RelaySet) []*nostr.Event {
	relays := o.resolver.PublicationRelays(explicit)
	key := o.listKey(relays)
	if events, ok := o.caches.Highlights.Get(key); ok {
		return events
	}

	events := o.fetcher.FetchList(ctx, nostr.Filters{{
		Kinds: []int{core.KindHighlight},
		Limit: o.limit,
	}}, relays.URLs(), o.limit)

	entities.SortByCreatedDesc(events)
	if len(events) > 0 {
		o.caches.Highlights.Set(key, events)
	}
	return events
}

// Hierarchy assembles the content tree below a publication index, cached
// by the root event id.
func (o *Orchestrator) Hierarchy(ctx context.Context, root *nostr.Event, explicit valueobjects.RelaySet) *entities.Node {
	relays := o.resolver.PublicationRelays(explicit)
	key := qualifiedKey(root.ID, explicit, relays)
	if node, ok := o.caches.Hierarchies.Get(key); ok {
		return node
	}
	node := o.assembler.Build(ctx, root, relays)
	o.caches.Hierarchies.Set(key, node)
	return node
}

// Comments fetches the flat discussion below a root event. Comment events
// anchor to the root by uppercase E-tag, by uppercase A-tag when the root
// is replaceable, or as plain notes replying by lowercase e-tag. An empty
// result is cached: most events have no comments and asking relays again
// on every render would dominate fetch traffic.
func (o *Orchestrator) Comments(ctx context.Context, rootID string, rootAddr valueobjects.Address, explicit valueobjects.RelaySet) []*nostr.Event {
	relays := o.resolver.PublicationRelays(explicit)
	key := qualifiedKey(rootID, explicit, relays)
	if events, ok := o.caches.Comments.Get(key); ok {
		return events
	}

	filters := nostr.Filters{
		{Kinds: []int{core.KindComment}, Tags: nostr.TagMap{"E": []string{rootID}}, Limit: o.limit},
		{Kinds: []int{core.KindNote}, Tags: nostr.TagMap{"e": []string{rootID}}, Limit: o.limit},
	}
	if !rootAddr.IsZero() {
		filters = append(filters, nostr.Filter{
			Kinds: []int{core.KindComment},
			Tags:  nostr.TagMap{"A": []string{rootAddr.String()}},
			Limit: o.limit,
		})
	}

	events := o.fetcher.FetchList(ctx, filters, relays.URLs(), o.limit)
	o.caches.Comments.Set(key, events)
	return events
}

// Profile returns an author's parsed metadata, or nil when no profile
// event could be found.
func (o *Orchestrator) Profile(ctx context.Context, pubKey string, explicit valueobjects.RelaySet) *entities.Profile {
	if profile, ok := o.caches.Profiles.Get(pubKey); ok {
		return profile
	}
	return o.fetchProfile(ctx, pubKey, explicit)
}

// HandleFor resolves an author's display handle through the two-level
// profile cache: the handle namespace first, then the profile namespace
// with handle extraction, then the network. A fetch miss stores a negative
// handle entry so unknown authors are not refetched on every page.
func (o *Orchestrator) HandleFor(ctx context.Context, pubKey string, explicit valueobjects.RelaySet) string {
	if handle, ok := o.caches.Handles.Get(pubKey); ok {
		if handle == "" {
			return entities.ShortNpub(pubKey)
		}
		return handle
	}
	if profile, ok := o.caches.Profiles.Get(pubKey); ok && profile != nil {
		handle := profile.Handle()
		o.caches.Handles.Set(pubKey, handle)
		return handle
	}

	profile := o.fetchProfile(ctx, pubKey, explicit)
	if profile == nil {
		o.caches.Handles.Set(pubKey, "")
		return entities.ShortNpub(pubKey)
	}
	handle := profile.Handle()
	o.caches.Handles.Set(pubKey, handle)
	return handle
}

// HandlesFor resolves display handles for every author in a batch with at
// most one profile fetch for all cache misses together.
func (o *Orchestrator) HandlesFor(ctx context.Context, events []*nostr.Event, explicit valueobjects.RelaySet) map[string]string {
	handles := make(map[string]string)
	var missing []string
	for _, ev := range events {
		if ev == nil || ev.PubKey == "" {
			continue
		}
		if _, seen := handles[ev.PubKey]; seen {
			continue
		}
		if handle, ok := o.caches.Handles.Get(ev.PubKey); ok {
			if handle == "" {
				handle = entities.ShortNpub(ev.PubKey)
			}
			handles[ev.PubKey] = handle
			continue
		}
		if profile, ok := o.caches.Profiles.Get(ev.PubKey); ok && profile != nil {
			handle := profile.Handle()
			o.caches.Handles.Set(ev.PubKey, handle)
			handles[ev.PubKey] = handle
			continue
		}
		handles[ev.PubKey] = ""
		missing = append(missing, ev.PubKey)
	}

	if len(missing) > 0 {
		relays := o.resolver.PublicationRelays(explicit)
		fetched := o.fetcher.FetchProfile(ctx, nostr.Filters{{
			Kinds:   []int{core.KindProfile},
			Authors: missing,
		}}, relays.URLs())
		byAuthor := entities.LatestByAuthor(fetched)
		for _, pubKey := range missing {
			ev := byAuthor[pubKey]
			if ev == nil {
				o.caches.Handles.Set(pubKey, "")
				handles[pubKey] = entities.ShortNpub(pubKey)
				continue
			}
			profile := entities.ParseProfile(ev)
			o.caches.Profiles.Set(pubKey, &profile)
			handle := profile.Handle()
			o.caches.Handles.Set(pubKey, handle)
			handles[pubKey] = handle
		}
	}
	return handles
}

// fetchProfile fetches an author's newest profile event and writes the
// parsed result to the profile namespace, returning nil when no profile
// event could be found. A miss is not cached here; the callers record
// negative entries in the handle namespace instead.
func (o *Orchestrator) fetchProfile(ctx context.Context, pubKey string, explicit valueobjects.RelaySet) *entities.Profile {
	relays := o.resolver.PublicationRelays(explicit)
	fetched := o.fetcher.FetchProfile(ctx, nostr.Filters{{
		Kinds:   []int{core.KindProfile},
		Authors: []string{pubKey},
	}}, relays.URLs())
	ev := entities.NewestEvent(fetched)
	if ev == nil {
		return nil
	}
	profile := entities.ParseProfile(ev)
	o.caches.Profiles.Set(pubKey, &profile)
	return &profile
}

// SearchPublications matches the cached publication list against a
// free-text query. Fields are compared after exact normalization and again
// after diacritic folding, so "metamorphose" finds "Métamorphose".
func (o *Orchestrator) SearchPublications(ctx context.Context, text string, explicit valueobjects.RelaySet) []*nostr.Event {
	exact := resolve.NormalizeExact(text)
	if exact == "" {
		return nil
	}
	relays := o.resolver.PublicationRelays(explicit)
	key := exact + "|" + relays.Hash()
	if events, ok := o.caches.Search.Get(key); ok {
		return events
	}

	fuzzy := resolve.NormalizeFuzzy(text)
	var matched []*nostr.Event
	for _, ev := range o.Publications(ctx, explicit) {
		if matchesQuery(ev, exact, fuzzy) {
			matched = append(matched, ev)
		}
	}
	o.caches.Search.Set(key, matched)
	return matched
}

func matchesQuery(ev *nostr.Event, exact, fuzzy string) bool {
	fields := []string{
		entities.EventTitle(ev),
		entities.EventTag(ev, "author"),
		entities.EventTag(ev, "summary"),
	}
	for _, field := range fields {
		if field == "" {
			continue
		}
		if strings.Contains(resolve.NormalizeExact(field), exact) {
			return true
		}
		if fuzzy != "" && strings.Contains(resolve.NormalizeFuzzy(field), fuzzy) {
			return true
		}
	}
	return false
}

// probeListSlot answers a detail probe from the list namespace, accepting
// stale entries.
func (o *Orchestrator) probeListSlot(store *cache.Store[[]*nostr.Event], relays valueobjects.RelaySet, addr valueobjects.Address) *nostr.Event {
	events, ok := store.GetWithin(o.listKey(relays), cache.TTLInfinite)
	if !ok {
		return nil
	}
	for _, ev := range events {
		if candidate, found := valueobjects.AddressOf(ev); found && candidate.Equals(addr) {
			return ev
		}
	}
	return nil
}

// mergeIntoList folds a freshly fetched event into an existing list slot,
// deduplicating by address and keeping the greatest created_at. A missing
// slot is left missing; one event is not a list.
func (o *Orchestrator) mergeIntoList(store *cache.Store[[]*nostr.Event], relays valueobjects.RelaySet, ev *nostr.Event) {
	key := o.listKey(relays)
	existing, ok := store.GetWithin(key, cache.TTLInfinite)
	if !ok {
		return
	}
	merged := entities.CollapseAddresses(append(append([]*nostr.Event(nil), existing...), ev))
	entities.SortByCreatedDesc(merged)
	store.Set(key, merged)
}

func (o *Orchestrator) listKey(relays valueobjects.RelaySet) string {
	return fmt.Sprintf("%d|%s", o.limit, relays.Hash())
}

// qualifiedKey appends the relay-set hash to a cache key only when the
// request carries an explicit relay override, so custom relay sets never
// poison entries fetched from the defaults.
func qualifiedKey(base string, explicit, effective valueobjects.RelaySet) string {
	if explicit.IsEmpty() {
		return base
	}
	return base + "|" + effective.Hash()
}

func addressFilter(addr valueobjects.Address) nostr.Filter {
	return nostr.Filter{
		Kinds:   []int{addr.Kind()},
		Authors: []string{addr.PubKey()},
		Tags:    nostr.TagMap{"d": []string{addr.Identifier()}},
		Limit:   1,
	}
}
