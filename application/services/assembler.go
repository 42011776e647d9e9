// Package services holds the aggregation logic between the relay layer and
// the HTTP handlers: hierarchy assembly, thread building, top-level list
// filtering, and media embedding.
package services

import (
	"context"

	"github.com/nbd-wtf/go-nostr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"octavo/application/ports"
	"octavo/domain/core"
	"octavo/domain/core/entities"
	"octavo/domain/core/valueobjects"
)

// maxParallelBranches bounds how many sibling index nodes expand at once at
// any one level of the hierarchy.
const maxParallelBranches = 8

// Assembler resolves the ordered reference tree below a publication index.
// Recursion is cycle safe: every root-to-node path carries its own visited
// set, so shared sub-publications may appear under several branches while an
// ancestor can never become its own descendant.
type Assembler struct {
	fetcher ports.Fetcher
	logger  *zap.Logger
}

// NewAssembler creates an assembler over the given fetcher.
func NewAssembler(fetcher ports.Fetcher, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{fetcher: fetcher, logger: logger}
}

// Build assembles the hierarchy rooted at the index event. Fetch failures
// below the root surface as missing branches, never as errors.
func (a *Assembler) Build(ctx context.Context, index *nostr.Event, relays valueobjects.RelaySet) *entities.Node {
	root := entities.NewNode(index)
	if index == nil || !core.IsIndexKind(index.Kind) {
		return root
	}
	visited := map[string]bool{index.ID: true}
	root.Children = a.buildChildren(ctx, index, relays.URLs(), visited)
	return root
}

// reference is one ordered child slot of an index: an a-tag address or an
// e-tag event id.
type reference struct {
	addr    valueobjects.Address
	eventID string
}

// buildChildren resolves one level of references and recurses into child
// indexes in parallel. The visited set is copied per branch.
func (a *Assembler) buildChildren(ctx context.Context, index *nostr.Event, relayURLs []string, visited map[string]bool) []*entities.Node {
	refs := collectReferences(index)
	if len(refs) == 0 {
		return nil
	}

	byAddr, byID := a.fetchLevel(ctx, refs, relayURLs)

	nodes := make([]*entities.Node, 0, len(refs))
	emitted := make(map[string]bool, len(refs))
	var expand errgroup.Group
	expand.SetLimit(maxParallelBranches)

	for _, ref := range refs {
		var ev *nostr.Event
		if ref.eventID != "" {
			ev = byID[ref.eventID]
		} else {
			ev = byAddr[ref.addr.String()]
		}
		if ev == nil || emitted[ev.ID] || visited[ev.ID] {
			continue
		}
		emitted[ev.ID] = true

		node := entities.NewNode(ev)
		nodes = append(nodes, node)

		if core.IsIndexKind(ev.Kind) {
			child := ev
			branchVisited := copyVisited(visited, ev.ID)
			expand.Go(func() error {
				node.Children = a.buildChildren(ctx, child, relayURLs, branchVisited)
				return nil
			})
		}
	}
	_ = expand.Wait()

	if len(nodes) < len(refs) {
		a.logger.Debug("Hierarchy level resolved partially",
			zap.String("index", index.ID),
			zap.Int("references", len(refs)),
			zap.Int("resolved", len(nodes)),
		)
	}
	return nodes
}

// fetchLevel runs the level's two fetches concurrently: one filter per a-tag
// address and a single multi-id filter for the e-tags. Address candidates
// collapse to the newest event per address.
func (a *Assembler) fetchLevel(ctx context.Context, refs []reference, relayURLs []string) (map[string]*nostr.Event, map[string]*nostr.Event) {
	var addrFilters nostr.Filters
	var eventIDs []string
	for _, ref := range refs {
		if ref.eventID != "" {
			eventIDs = append(eventIDs, ref.eventID)
			continue
		}
		addrFilters = append(addrFilters, nostr.Filter{
			Kinds:   []int{ref.addr.Kind()},
			Authors: []string{ref.addr.PubKey()},
			Tags:    nostr.TagMap{"d": []string{ref.addr.Identifier()}},
		})
	}

	var addrEvents, idEvents []*nostr.Event
	var level errgroup.Group
	if len(addrFilters) > 0 {
		level.Go(func() error {
			addrEvents = a.fetcher.FetchLevel(ctx, addrFilters, relayURLs, len(refs))
			return nil
		})
	}
	if len(eventIDs) > 0 {
		level.Go(func() error {
			idEvents = a.fetcher.FetchLevel(ctx, nostr.Filters{{IDs: eventIDs}}, relayURLs, len(refs))
			return nil
		})
	}
	_ = level.Wait()

	return entities.LatestByAddress(addrEvents), entities.ByID(idEvents)
}

// collectReferences scans the index tags in order. Only publication-kind
// a-tags are fetchable at a level; a self-referential e-tag is dropped.
func collectReferences(index *nostr.Event) []reference {
	var refs []reference
	for _, tag := range index.Tags {
		if len(tag) < 2 || tag[1] == "" {
			continue
		}
		switch tag[0] {
		case "a":
			addr, err := valueobjects.ParseAddress(tag[1])
			if err != nil || !core.IsPublicationKind(addr.Kind()) {
				continue
			}
			refs = append(refs, reference{addr: addr})
		case "e":
			if tag[1] == index.ID {
				continue
			}
			refs = append(refs, reference{eventID: tag[1]})
		}
	}
	return refs
}

func copyVisited(visited map[string]bool, add string) map[string]bool {
	next := make(map[string]bool, len(visited)+1)
	for id := range visited {
		next[id] = true
	}
	next[add] = true
	return next
}
