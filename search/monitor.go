package search

import (
	"iter"

	"github.com/poiesic/weave/core"
)

// SearchMonitor provides hooks to observe the hybrid search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterVectorSearch(candidates []*core.SearchResult)
	AfterQueryEntityExtraction(names []string)
	FoundEntityMatch(name string, entityIds []string)
	AfterGraphExpansion(chunkIds iter.Seq[string])
	VectorHit(id string)
	GraphHit(id string)
	HybridHit(id string)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                           {}
func (n *noopMonitor) AfterVectorSearch(_ []*core.SearchResult) {}
func (n *noopMonitor) AfterQueryEntityExtraction(_ []string)    {}
func (n *noopMonitor) FoundEntityMatch(_ string, _ []string)    {}
func (n *noopMonitor) AfterGraphExpansion(_ iter.Seq[string])   {}
func (n *noopMonitor) VectorHit(_ string)                       {}
func (n *noopMonitor) GraphHit(_ string)                        {}
func (n *noopMonitor) HybridHit(_ string)                       {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)            {}
