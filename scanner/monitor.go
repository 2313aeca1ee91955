package scanner

import (
	"github.com/poiesic/catscan/core"
	"github.com/poiesic/catscan/search"
)

// Step names one stage of the scan pipeline.
type Step string

const (
	StepDomainKey        Step = "domain key fuzzy search"
	StepCategory         Step = "category match"
	StepConsecutiveWords Step = "consecutive words match"
	StepSimpleSubstring  Step = "simple substring match"
	StepFuzzyWords       Step = "fuzzy word match"
)

// ScanMonitor provides hooks to observe the scan process.
// Implement this interface to track intermediate steps and results during a scan.
type ScanMonitor interface {
	Start(strategy string, params Params)
	AfterStep(step Step, query string, hits []core.ID, err error)
	EntityExtracted(entity string, ok bool)
	Finish(results *search.ResultSet)
}

// noopMonitor is a no-op implementation of ScanMonitor
type noopMonitor struct{}

var _ ScanMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ Params)                         {}
func (n *noopMonitor) AfterStep(_ Step, _ string, _ []core.ID, _ error) {}
func (n *noopMonitor) EntityExtracted(_ string, _ bool)                 {}
func (n *noopMonitor) Finish(_ *search.ResultSet)                       {}
