package sampler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/CraigKelly/consensus/config"
	"github.com/CraigKelly/consensus/model"
)

// Sampler runs independent chains over a response matrix
type Sampler struct {
	cfg     config.Sampling
	adapter ScaleAdapter
	logger  *zap.Logger
}

// Result holds everything a run produced. Samples and Stats are indexed by
// chain.
type Result struct {
	RunID   string
	Config  config.Sampling
	Samples []*PosteriorSample
	Stats   []ChainStats
	Elapsed time.Duration
}

// New creates a sampler. Proposal scales adapt toward cfg.TargetAccept
// unless cfg.AdaptRate is 0. A nil logger logs nothing.
func New(cfg config.Sampling, logger *zap.Logger) (*Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	var adapter ScaleAdapter = FixedScale{}
	if cfg.AdaptRate > 0 {
		ta, err := NewTargetAcceptance(cfg.TargetAccept, cfg.AdaptRate)
		if err != nil {
			return nil, errors.Wrap(config.ErrInvalidConfig, err.Error())
		}
		adapter = ta
	}

	return &Sampler{
		cfg:     cfg,
		adapter: adapter,
		logger:  logger,
	}, nil
}

// WithAdapter replaces the proposal scale strategy
func (s *Sampler) WithAdapter(a ScaleAdapter) *Sampler {
	if a == nil {
		a = FixedScale{}
	}
	s.adapter = a
	return s
}

// Run samples every chain and returns their posterior samples. Chains run
// concurrently when the config allows it; since each chain owns its state
// and generator the output is identical either way.
func (s *Sampler) Run(ctx context.Context, x *model.Responses) (*Result, error) {
	if x == nil || x.N() < 1 || x.M() < 1 {
		return nil, errors.Wrap(model.ErrInvalidData, "response matrix must be at least 1x1")
	}

	res := &Result{
		RunID:   uuid.NewString(),
		Config:  s.cfg,
		Samples: make([]*PosteriorSample, s.cfg.Chains),
		Stats:   make([]ChainStats, s.cfg.Chains),
	}
	log := s.logger.With(zap.String("run_id", res.RunID))

	log.Info("sampling started",
		zap.Int("informants", x.N()),
		zap.Int("items", x.M()),
		zap.Int("chains", s.cfg.Chains),
		zap.Int("tune", s.cfg.Tune),
		zap.Int("draws", s.cfg.Draws),
		zap.Int64("seed", s.cfg.Seed),
		zap.Bool("parallel", s.cfg.Parallel),
	)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	if !s.cfg.Parallel {
		g.SetLimit(1)
	}

	for k := 0; k < s.cfg.Chains; k++ {
		k := k
		g.Go(func() error {
			ch, err := NewChain(x, k, s.cfg, s.adapter)
			if err != nil {
				return errors.Wrapf(err, "Could not create chain %d", k)
			}

			chainStart := time.Now()
			if err := ch.Run(gctx); err != nil {
				return err
			}

			// Each goroutine writes only its own slot
			res.Samples[k] = ch.Sample
			res.Stats[k] = ch.Stats()

			st := res.Stats[k]
			log.Debug("chain finished",
				zap.Int("chain", k),
				zap.Duration("elapsed", time.Since(chainStart)),
				zap.Float64("tune_accept", st.TuneAccept),
				zap.Float64("draw_accept", st.DrawAccept),
				zap.Float64("log_posterior", st.LogPosterior),
			)
			if st.DegenerateTune {
				log.Warn("acceptance collapsed during tuning, expect poor mixing",
					zap.Int("chain", k),
					zap.Float64("tune_accept", st.TuneAccept),
				)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.Elapsed = time.Since(start)
	log.Info("sampling finished", zap.Duration("elapsed", res.Elapsed))

	return res, nil
}

// Traces is a helper for Traces(r.Samples)
func (r *Result) Traces() ([]*Trace, error) {
	return Traces(r.Samples)
}
