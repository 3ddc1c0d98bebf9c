// Package capability detects optional backend features once at startup.
package capability

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Prober checks whether an optional table exists
type Prober interface {
	Probe(ctx context.Context) (bool, error)
}

// Set caches the detected capabilities
type Set struct {
	mu           sync.RWMutex
	caseComments bool
}

// Detect probes the comment table. A failed probe counts as unsupported; the
// result is not re-checked afterwards.
func Detect(ctx context.Context, comments Prober, logger *zap.Logger) *Set {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	s := &Set{}
	ok, err := comments.Probe(ctx)
	switch {
	case err != nil:
		logger.Warn("case comment probe failed, disabling comments", zap.Error(err))
	case !ok:
		logger.Info("case_comments table not found, comments disabled")
	default:
		s.caseComments = true
	}
	return s
}

// Static returns a set with fixed values
func Static(caseComments bool) *Set {
	return &Set{caseComments: caseComments}
}

// CaseComments reports whether case comments are available
func (s *Set) CaseComments() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.caseComments
}

// DisableCaseComments turns comments off, e.g. when the table disappears at runtime
func (s *Set) DisableCaseComments() {
	s.mu.Lock()
	s.caseComments = false
	s.mu.Unlock()
}
