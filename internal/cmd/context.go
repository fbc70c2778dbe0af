package cmd

import (
	"time"

	"github.com/josephjilovec/quantumflow/internal/config"
	"github.com/josephjilovec/quantumflow/internal/cost"
	"github.com/josephjilovec/quantumflow/internal/log"
	"github.com/josephjilovec/quantumflow/internal/scheduler"
	"github.com/josephjilovec/quantumflow/internal/store"
	"github.com/josephjilovec/quantumflow/internal/workflow"
)

// session bundles the collaborators every command needs: loaded config,
// the schedule store handle, and the workflow store. Commands must call
// Close on every exit path.
type session struct {
	cfg       *config.Config
	store     *store.Store
	workflows workflow.Store
	logger    *log.Logger
}

// newSession loads configuration, applies the logging settings, and opens
// the stores under the configured data directory.
func newSession() (*session, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	logCfg := log.DefaultConfig()
	logCfg.Level = log.ParseLevel(cfg.Log.Level)
	logCfg.Format = log.ParseFormat(cfg.Log.Format)
	logger := log.New(logCfg)
	log.SetDefaultLogger(logger)

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	workflows, err := workflow.NewFileStore(cfg.DataDir)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &session{
		cfg:       cfg,
		store:     st,
		workflows: workflows,
		logger:    logger,
	}, nil
}

// Close releases the schedule store handle
func (s *session) Close() error {
	return s.store.Close()
}

// costModel builds the cost model from the loaded config
func (s *session) costModel() *cost.Model {
	return cost.NewModel(s.cfg.CostOptions())
}

// scheduler builds a scheduler facade; strategy and budget flags override
// the config when set.
func (s *session) scheduler(strategy string, maxBudget, maxLatencySeconds float64) (*scheduler.Scheduler, error) {
	if strategy == "" {
		strategy = s.cfg.Scheduler.Strategy
	}
	constraints := s.cfg.Constraints()
	if maxBudget > 0 {
		constraints.MaxBudget = maxBudget
	}
	if maxLatencySeconds > 0 {
		constraints.MaxLatency = secondsToDuration(maxLatencySeconds)
	}

	return scheduler.New(s.workflows, s.store, scheduler.Options{
		Model:       s.costModel(),
		Strategy:    strategy,
		Constraints: constraints,
		Logger:      s.logger,
	})
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
