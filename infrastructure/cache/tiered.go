package cache

import (
	"github.com/nbd-wtf/go-nostr"
	"go.uber.org/zap"

	"octavo/domain/core/entities"
	"octavo/infrastructure/config"
)

// Namespace names. Keys are namespaced by the store instance, so these appear
// only in stats and logs.
const (
	NamespaceListPublications = "list:publications"
	NamespaceListArticles     = "list:articles"
	NamespaceListHighlights   = "list:highlights"
	NamespaceDetailPub        = "detail:publication"
	NamespaceDetailArticle    = "detail:article"
	NamespaceHierarchy        = "hierarchy"
	NamespaceComments         = "comments"
	NamespaceHandle           = "profile:handle"
	NamespaceProfile          = "profile:event"
	NamespaceSearch           = "search"
	NamespaceDerived          = "derived:file"
	NamespaceMedia            = "media:image"
)

// Tiered composes one typed store per namespace behind a single façade. The
// list namespaces hold whole result sets under a fetch-limit + relay-set key;
// the detail namespaces hold single events by canonical address. Derived and
// media namespaces hold opaque bytes with a media type in the extra slot.
type Tiered struct {
	Publications      *Store[[]*nostr.Event]
	Articles          *Store[[]*nostr.Event]
	Highlights        *Store[[]*nostr.Event]
	PublicationDetail *Store[*nostr.Event]
	ArticleDetail     *Store[*nostr.Event]
	Hierarchies       *Store[*entities.Node]
	Comments          *Store[[]*nostr.Event]
	Handles           *Store[string]
	Profiles          *Store[*entities.Profile]
	Search            *Store[[]*nostr.Event]
	Derived           *Store[[]byte]
	Media             *Store[[]byte]

	logger     *zap.Logger
	namespaces []Namespace
}

// NewTiered builds the full namespace set from the cache configuration.
func NewTiered(cfg config.CacheConfig, logger *zap.Logger) *Tiered {
	if logger == nil {
		logger = zap.NewNop()
	}

	t := &Tiered{
		Publications:      NewStore[[]*nostr.Event](NamespaceListPublications, 1, cfg.ListTTL),
		Articles:          NewStore[[]*nostr.Event](NamespaceListArticles, 1, cfg.ListTTL),
		Highlights:        NewStore[[]*nostr.Event](NamespaceListHighlights, cfg.HighlightsCap, cfg.ListTTL),
		PublicationDetail: NewStore[*nostr.Event](NamespaceDetailPub, cfg.DetailCap, cfg.DetailTTL),
		ArticleDetail:     NewStore[*nostr.Event](NamespaceDetailArticle, cfg.DetailCap, cfg.DetailTTL),
		Hierarchies:       NewStore[*entities.Node](NamespaceHierarchy, 0, cfg.HierarchyTTL),
		Comments:          NewStore[[]*nostr.Event](NamespaceComments, 0, cfg.CommentsTTL),
		Handles:           NewStore[string](NamespaceHandle, cfg.HandleCap, cfg.ProfileTTL),
		Profiles:          NewStore[*entities.Profile](NamespaceProfile, cfg.ProfileEventCap, cfg.ProfileTTL),
		Search:            NewStore[[]*nostr.Event](NamespaceSearch, 0, cfg.SearchTTL),
		Derived:           NewStore[[]byte](NamespaceDerived, 0, cfg.DerivedTTL),
		Media:             NewStore[[]byte](NamespaceMedia, 0, cfg.MediaTTL),
		logger:            logger,
	}

	t.namespaces = []Namespace{
		t.Publications, t.Articles, t.Highlights,
		t.PublicationDetail, t.ArticleDetail,
		t.Hierarchies, t.Comments,
		t.Handles, t.Profiles,
		t.Search, t.Derived, t.Media,
	}

	return t
}

// ClearAll empties every namespace.
func (t *Tiered) ClearAll() {
	for _, ns := range t.namespaces {
		ns.Clear()
	}
	t.logger.Info("Cache cleared", zap.Int("namespaces", len(t.namespaces)))
}

// Stats returns per-namespace counters in registration order.
func (t *Tiered) Stats() []Stats {
	out := make([]Stats, 0, len(t.namespaces))
	for _, ns := range t.namespaces {
		out = append(out, ns.Stats())
	}
	return out
}

// Sizes returns the best-effort byte estimate per namespace and the total.
func (t *Tiered) Sizes() (map[string]int64, int64) {
	sizes := make(map[string]int64, len(t.namespaces))
	var total int64
	for _, ns := range t.namespaces {
		n := ns.EstimateSize()
		sizes[ns.Name()] = n
		total += n
	}
	return sizes, total
}
