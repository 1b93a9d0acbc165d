package report

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/storepulse/backend/internal/contracts"
	"github.com/wonny/storepulse/backend/internal/delta"
	"github.com/wonny/storepulse/backend/internal/normalize"
	"github.com/wonny/storepulse/backend/internal/pit"
	"github.com/wonny/storepulse/backend/internal/rubricconfig"
	"github.com/wonny/storepulse/backend/internal/scoring"
	"github.com/wonny/storepulse/backend/internal/trend"
	"github.com/wonny/storepulse/backend/pkg/logger"
	"github.com/wonny/storepulse/backend/pkg/redis"
)

// Service turns batches of raw checklist records into the full derived
// report: normalized scores, monthly trend buckets, and period-over-period
// movers. All derived values are pure recomputations of the inputs, so the
// cache layer is strictly an optimization.
// ⭐ SSOT: 파이프라인 오케스트레이션은 여기서만 — 단계 간 직접 호출 금지
type Service struct {
	doc        *rubricconfig.Document
	rubricHash string

	normalizer *normalize.Normalizer
	evaluator  *scoring.Evaluator
	aggregator *trend.Aggregator
	resolver   *pit.Resolver
	calculator *delta.Calculator

	cache  *redis.Cache
	logger *logger.Logger
}

// NewService wires the pipeline stages around one rubric document. The
// rubric hash is computed once; a different rubric version keys a different
// cache namespace.
func NewService(doc *rubricconfig.Document, cache *redis.Cache, log *logger.Logger) (*Service, error) {
	hash, err := rubricconfig.Hash(doc)
	if err != nil {
		return nil, fmt.Errorf("hash rubric: %w", err)
	}

	return &Service{
		doc:        doc,
		rubricHash: hash,
		normalizer: normalize.NewNormalizer(doc.Aliases, log),
		evaluator:  scoring.NewEvaluator(log),
		aggregator: trend.NewAggregator(log),
		resolver:   pit.NewResolver(),
		calculator: delta.NewCalculator(),
		cache:      cache,
		logger:     log,
	}, nil
}

// RubricHash exposes the active rubric version for cache keys and logging.
func (s *Service) RubricHash() string {
	return s.rubricHash
}

// BuildReport runs the full pipeline for one batch of raw records with the
// given as-of cutoff. Cached results are served when the (rubric, batch,
// cutoff) triple has been computed before.
func (s *Service) BuildReport(ctx context.Context, records []contracts.RawRecord, cutoff time.Time) (*contracts.BatchReport, error) {
	fingerprint, err := Fingerprint(records)
	if err != nil {
		return nil, err
	}

	cacheKey := redis.BatchReportKey(s.rubricHash, fingerprint, cutoff.UTC().Format(time.RFC3339))

	var cached contracts.BatchReport
	if s.cache != nil {
		found, err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil && found {
			s.logger.WithField("key", cacheKey).Debug("Report served from cache")
			return &cached, nil
		}
	}

	rep, err := s.compute(ctx, records, cutoff)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, rep, redis.TTLDaily); err != nil {
			s.logger.WithError(err).Warn("Report cache write failed")
		}
	}

	return rep, nil
}

// compute is the pipeline body: normalize, score, aggregate, resolve
// point-in-time values, rank movers.
func (s *Service) compute(ctx context.Context, records []contracts.RawRecord, cutoff time.Time) (*contracts.BatchReport, error) {
	subs, rejected := s.normalizer.NormalizeBatch(records)

	scored := make([]contracts.ScoredSubmission, 0, len(subs))
	for _, sub := range subs {
		result, err := s.evaluator.Evaluate(&s.doc.Rubric, s.doc.Aliases, sub)
		if err != nil {
			return nil, fmt.Errorf("evaluate submission for %s: %w", sub.StoreID, err)
		}
		scored = append(scored, *result)
	}

	buckets, err := s.aggregator.Aggregate(ctx, scored, trend.Options{})
	if err != nil {
		return nil, fmt.Errorf("aggregate trend: %w", err)
	}

	movers := s.rankMovers(scored, cutoff)

	rep := &contracts.BatchReport{
		Scored:         scored,
		Buckets:        buckets,
		Movers:         movers,
		Rejected:       rejected,
		ProcessedCount: len(scored),
		RejectedCount:  len(rejected),
	}

	if msg := rep.RejectionMessage(); msg != "" {
		s.logger.WithFields(map[string]interface{}{
			"rejected":  rep.RejectedCount,
			"processed": rep.ProcessedCount,
		}).Warn(msg)
	}

	return rep, nil
}

// rankMovers compares each store's latest percentage as of the cutoff with
// its latest as of the previous month end, then ranks the deltas.
func (s *Service) rankMovers(scored []contracts.ScoredSubmission, cutoff time.Time) contracts.Movers {
	observations := Observations(scored)
	prevCutoff := pit.PreviousMonthEnd(cutoff)

	var inputs []delta.Input
	for _, storeID := range pit.StoreIDs(observations) {
		in := delta.Input{StoreID: storeID, StoreName: storeID}

		if prev := s.resolver.LatestAsOf(observations, storeID, prevCutoff); prev != nil {
			v := prev.Value
			in.Previous = &v
		}
		if cur := s.resolver.LatestAsOf(observations, storeID, cutoff); cur != nil {
			v := cur.Value
			in.Current = &v
		}

		inputs = append(inputs, in)
	}

	return s.calculator.Rank(inputs)
}

// Observations projects scored submissions onto the point-in-time metric
// stream, preserving slice order (= ingestion order) for tie-breaking.
func Observations(scored []contracts.ScoredSubmission) []contracts.Observation {
	observations := make([]contracts.Observation, 0, len(scored))
	for _, sc := range scored {
		observations = append(observations, contracts.Observation{
			StoreID:   sc.StoreID,
			Timestamp: sc.SubmittedAt,
			Value:     float64(sc.Overall.Percentage),
		})
	}
	return observations
}
