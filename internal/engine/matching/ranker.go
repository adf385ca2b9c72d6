// internal/engine/matching/ranker.go
package matching

import (
	"container/heap"
	"context"
	"iter"
	"time"

	"staffing-engine/internal/common/logger"
	"staffing-engine/internal/engine/credentials"
	"staffing-engine/internal/models"
)

// RankedCandidate pairs a professional with the score computed against one
// job, plus the aggregate credential standing used for tie-breaks.
type RankedCandidate struct {
	Professional *models.HealthcareProfessional
	Score        int
	Standing     models.CredentialStatus
}

// RankedJob pairs a job with the score computed against one professional.
type RankedJob struct {
	Job   *models.JobOpportunity
	Score int
}

// Ranker produces ordered match sequences over candidate or job pools.
type Ranker struct {
	scorer    *Scorer
	validator *credentials.Validator
	logger    logger.Logger
}

func NewRanker(scorer *Scorer, validator *credentials.Validator, log logger.Logger) *Ranker {
	return &Ranker{
		scorer:    scorer,
		validator: validator,
		logger:    log.WithFields(map[string]interface{}{"component": "ranker"}),
	}
}

// RankCandidates returns a lazy descending sequence of (candidate, error)
// pairs for an open job. Professionals that are not active are excluded;
// professionals whose records fail validation are yielded with a non-nil
// error instead of silently disappearing.
//
// Scores are computed once up front, but ordering is paid per element: the
// sequence is heap-backed, so a caller that stops after the top K never
// pays for sorting the rest. The sequence is restartable; each range
// re-ranks from the inputs. Cancelling ctx or breaking out of the loop
// stops all remaining work with nothing left running.
func (r *Ranker) RankCandidates(ctx context.Context, job *models.JobOpportunity, pool []*models.HealthcareProfessional, asOf time.Time) iter.Seq2[RankedCandidate, error] {
	return func(yield func(RankedCandidate, error) bool) {
		if job.Status != models.JobOpen {
			return
		}

		h := &candidateHeap{}
		for _, p := range pool {
			if ctx.Err() != nil {
				return
			}
			if p.Status != models.ProfessionalActive {
				continue
			}

			score, err := r.scorer.Score(p, job, asOf)
			if err != nil {
				if !yield(RankedCandidate{Professional: p}, err) {
					return
				}
				continue
			}
			standing, err := r.validator.Standing(p, asOf)
			if err != nil {
				if !yield(RankedCandidate{Professional: p}, err) {
					return
				}
				continue
			}

			heap.Push(h, RankedCandidate{Professional: p, Score: score, Standing: standing})
		}

		for h.Len() > 0 {
			if ctx.Err() != nil {
				return
			}
			if !yield(heap.Pop(h).(RankedCandidate), nil) {
				return
			}
		}
	}
}

// RankJobs is the symmetric case: order open jobs for one active
// professional, descending by score with id as the deterministic tie-break.
func (r *Ranker) RankJobs(ctx context.Context, p *models.HealthcareProfessional, pool []*models.JobOpportunity, asOf time.Time) iter.Seq2[RankedJob, error] {
	return func(yield func(RankedJob, error) bool) {
		if p.Status != models.ProfessionalActive {
			return
		}

		h := &jobHeap{}
		for _, job := range pool {
			if ctx.Err() != nil {
				return
			}
			if job.Status != models.JobOpen {
				continue
			}

			score, err := r.scorer.Score(p, job, asOf)
			if err != nil {
				if !yield(RankedJob{Job: job}, err) {
					return
				}
				continue
			}
			heap.Push(h, RankedJob{Job: job, Score: score})
		}

		for h.Len() > 0 {
			if ctx.Err() != nil {
				return
			}
			if !yield(heap.Pop(h).(RankedJob), nil) {
				return
			}
		}
	}
}

// TopJobs materializes the first k successfully ranked jobs for a
// professional, for callers that want a plain slice.
func (r *Ranker) TopJobs(ctx context.Context, p *models.HealthcareProfessional, pool []*models.JobOpportunity, asOf time.Time, k int) ([]RankedJob, error) {
	out := make([]RankedJob, 0, k)
	for j, err := range r.RankJobs(ctx, p, pool, asOf) {
		if err != nil {
			return nil, err
		}
		out = append(out, j)
		if len(out) == k {
			break
		}
	}
	return out, nil
}

// TopCandidates materializes the first k successfully ranked candidates,
// for callers that want a plain slice.
func (r *Ranker) TopCandidates(ctx context.Context, job *models.JobOpportunity, pool []*models.HealthcareProfessional, asOf time.Time, k int) ([]RankedCandidate, error) {
	out := make([]RankedCandidate, 0, k)
	for c, err := range r.RankCandidates(ctx, job, pool, asOf) {
		if err != nil {
			return nil, err
		}
		out = append(out, c)
		if len(out) == k {
			break
		}
	}
	return out, nil
}

// candidateHeap orders by score descending, then higher credential
// standing, then least-recently-placed (never placed first), then id.
type candidateHeap []RankedCandidate

func (h candidateHeap) Len() int      { return len(h) }
func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h candidateHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if ra, rb := credentials.StandingRank(a.Standing), credentials.StandingRank(b.Standing); ra != rb {
		return ra > rb
	}
	if c := comparePlacedAt(a.Professional.LastPlacedAt, b.Professional.LastPlacedAt); c != 0 {
		return c < 0
	}
	return a.Professional.ID < b.Professional.ID
}

func (h *candidateHeap) Push(x any) { *h = append(*h, x.(RankedCandidate)) }

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// comparePlacedAt sorts the professional longest without a placement first;
// a nil LastPlacedAt (never placed) is the freshest of all. The direction is
// intentional: on equal score and standing the tie goes to the candidate who
// has waited longest for work, not the one placed most recently.
func comparePlacedAt(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case a.Before(*b):
		return -1
	case b.Before(*a):
		return 1
	default:
		return 0
	}
}

type jobHeap []RankedJob

func (h jobHeap) Len() int      { return len(h) }
func (h jobHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h jobHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score > h[j].Score
	}
	return h[i].Job.ID < h[j].Job.ID
}

func (h *jobHeap) Push(x any) { *h = append(*h, x.(RankedJob)) }

func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
