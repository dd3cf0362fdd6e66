// Key derivation pipeline: image sub-pipeline and PIN sub-pipeline for one invocation
package core

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"cancellable-biokey/internal/algorithms"
	"cancellable-biokey/internal/cipher"
	"cancellable-biokey/internal/config"
	"cancellable-biokey/internal/feature"
	"cancellable-biokey/internal/io"
	"cancellable-biokey/internal/keys"
	"cancellable-biokey/internal/metrics"
	"cancellable-biokey/internal/store"
)

// Request carries the front-end inputs of one invocation. Empty strings are
// valid and produce a deterministic but weak key.
type Request struct {
	ImagePath string
	PIN       string
	Key1      string
	Key2      string
	Key3      string
}

// Result is everything one invocation produced.
type Result struct {
	RunID     string
	Key       keys.Key
	Chain     cipher.Chain
	Seed      uint32
	OutputDir string

	Feature     feature.Matrix
	Transformed feature.Matrix

	// Metrics holds stage quality figures keyed "<stage>.<metric>".
	Metrics map[string]float64
	// Artifacts maps artifact file names to their written paths.
	Artifacts map[string]string
}

// Pipeline sequences the derivation stages. It holds no per-invocation state.
type Pipeline struct {
	cfg       *config.Config
	logger    logrus.FieldLogger
	loader    *io.ImageLoader
	store     *store.Store
	evaluator *metrics.Evaluator
	clock     func() time.Time
}

func NewPipeline(cfg *config.Config, logger logrus.FieldLogger) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	loader := io.NewImageLoader(logger)
	return &Pipeline{
		cfg:       cfg,
		logger:    logger,
		loader:    loader,
		store:     store.New(cfg.OutputRoot, loader, logger),
		evaluator: metrics.NewEvaluator(),
		clock:     time.Now,
	}
}

// WithClock replaces the wall clock used to seed the cancellable transform.
func (p *Pipeline) WithClock(clock func() time.Time) *Pipeline {
	p.clock = clock
	return p
}

// Process runs both sub-pipelines for req and returns the derived key.
// The transformed feature matrix is persisted but does not feed the key.
func (p *Pipeline) Process(ctx context.Context, req Request) (*Result, error) {
	runID := uuid.NewString()
	log := p.logger.WithFields(logrus.Fields{
		"run_id": runID,
		"image":  req.ImagePath,
	})
	start := time.Now()
	log.WithField("output_root", p.store.Root()).Info("Q. Starting fingerprint processing")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source, err := p.loader.LoadImage(req.ImagePath)
	if err != nil {
		log.WithError(err).Error("Fingerprint image could not be loaded")
		return nil, err
	}
	defer source.Close()

	ks := cipher.DeriveKeySet(req.Key1, req.Key2, req.Key3)

	dir, err := p.store.Open(req.ImagePath)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:     runID,
		OutputDir: dir.Path(),
		Metrics:   make(map[string]float64),
		Artifacts: make(map[string]string),
	}

	if err := p.processImage(ctx, log, dir, source, res); err != nil {
		log.WithError(err).Error("Image sub-pipeline failed")
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.processPIN(log, dir, []byte(req.PIN), ks, res); err != nil {
		log.WithError(err).Error("PIN sub-pipeline failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"output_dir":  res.OutputDir,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("R. Fingerprint processing completed")
	return res, nil
}

// processImage runs refine, binarize, extract and the cancellable transform.
func (p *Pipeline) processImage(ctx context.Context, log logrus.FieldLogger, dir *store.RunDir, source gocv.Mat, res *Result) error {
	log.Info("A. Refining fingerprint image")
	refined, err := p.runStage(log, algorithms.SharpenName, source, nil)
	if err != nil {
		return fmt.Errorf("refine: %w", err)
	}
	defer refined.Close()
	if err := p.save(log, dir, store.RefinedImageFile, refined, res); err != nil {
		return err
	}
	p.recordMetrics(log, metrics.StageRefine, source, refined, res)
	log.Info("B. Refined image saved")

	if err := ctx.Err(); err != nil {
		return err
	}

	log.Info("C. Preprocessing fingerprint image")
	binary, err := p.runStage(log, algorithms.ThresholdName, refined, map[string]interface{}{
		"threshold": float64(p.cfg.Threshold),
	})
	if err != nil {
		return fmt.Errorf("binarize: %w", err)
	}
	defer binary.Close()
	if err := p.save(log, dir, store.PreprocessedImageFile, binary, res); err != nil {
		return err
	}
	p.recordMetrics(log, metrics.StageBinarize, refined, binary, res)
	log.Info("D. Preprocessed image saved")

	if err := ctx.Err(); err != nil {
		return err
	}

	log.Info("E. Generating feature matrix")
	fm, err := feature.Extract(binary)
	if err != nil {
		return fmt.Errorf("feature matrix: %w", err)
	}
	if err := p.saveMatrix(log, dir, store.FeatureMatrixFile, fm, res); err != nil {
		return err
	}
	res.Feature = fm
	log.WithFields(logrus.Fields{
		"rows":    fm.Rows,
		"cols":    fm.Cols,
		"density": fm.Density(),
	}).Info("F. Feature matrix saved")

	if err := ctx.Err(); err != nil {
		return err
	}

	log.Info("G. Applying cancellable transformation")
	seed := feature.ClockSeed(p.clock())
	transformed := feature.Transform(fm, seed)
	if err := p.saveMatrix(log, dir, store.TransformedMatrixFile, transformed, res); err != nil {
		return err
	}
	if p.cfg.PersistSeed {
		path, err := dir.WriteSeed(seed)
		if err != nil {
			return err
		}
		res.Artifacts[store.SeedFile] = path
	}
	res.Seed = seed
	res.Transformed = transformed
	log.WithField("seed_persisted", p.cfg.PersistSeed).Info("H. Transformed feature matrix saved")

	return nil
}

// processPIN runs the layered cipher and key finalization and persists both.
func (p *Pipeline) processPIN(log logrus.FieldLogger, dir *store.RunDir, pin []byte, ks cipher.KeySet, res *Result) error {
	log.Info("O. Generating cryptographic key")
	log.Info("K. Starting 3DES encryption with user PIN")
	chain, key, err := DeriveFromPIN(pin, ks)
	if err != nil {
		return err
	}

	c1, c2, c3 := chain.Hex()
	log.WithField("c1", c1).Debug("L. C1 (after K1 applied)")
	log.WithField("c2", c2).Debug("M. C2 (after K2 applied)")
	log.WithField("c3", c3).Debug("N. C3 (after K3 applied)")

	path, err := dir.WriteCipherChain(chain)
	if err != nil {
		return err
	}
	res.Artifacts[store.CipherKeysFile] = path
	log.Info("I. Cipher keys saved")

	log.WithField("key", key.Hex()).Debug("P. Final cryptographic key")
	path, err = dir.WriteHashKeys(key)
	if err != nil {
		return err
	}
	res.Artifacts[store.HashKeysFile] = path
	log.Info("J. Hash keys saved")

	res.Chain = chain
	res.Key = key
	return nil
}

// DeriveFromPIN is the image-independent half of the pipeline: layered
// encryption of pin under ks followed by SHA-256 finalization of C3.
func DeriveFromPIN(pin []byte, ks cipher.KeySet) (cipher.Chain, keys.Key, error) {
	layered, err := cipher.NewLayered(ks)
	if err != nil {
		return cipher.Chain{}, keys.Key{}, err
	}
	chain := layered.Encrypt(pin)
	return chain, keys.Derive(chain.C3), nil
}

// runStage applies a registered algorithm, starting from its default
// parameters with overrides on top.
func (p *Pipeline) runStage(log logrus.FieldLogger, name string, input gocv.Mat, overrides map[string]interface{}) (gocv.Mat, error) {
	algorithm, ok := algorithms.Get(name)
	if !ok {
		return gocv.NewMat(), fmt.Errorf("algorithm not found: %s", name)
	}

	params := algorithm.GetDefaultParams()
	for k, v := range overrides {
		params[k] = v
	}

	log.WithFields(logrus.Fields{
		"algorithm":   algorithm.GetName(),
		"description": algorithm.GetDescription(),
		"params":      params,
	}).Debug("Running preprocessing stage")

	return algorithms.Apply(name, input, params)
}

func (p *Pipeline) save(log logrus.FieldLogger, dir *store.RunDir, name string, mat gocv.Mat, res *Result) error {
	path, err := dir.SaveImage(name, mat)
	if err != nil {
		return err
	}
	res.Artifacts[name] = path
	log.WithField("path", path).Debug("Image artifact saved")
	return nil
}

func (p *Pipeline) saveMatrix(log logrus.FieldLogger, dir *store.RunDir, name string, m feature.Matrix, res *Result) error {
	img, err := m.ToMat()
	if err != nil {
		return fmt.Errorf("visualize %s: %w", name, err)
	}
	defer img.Close()
	return p.save(log, dir, name, img, res)
}

func (p *Pipeline) recordMetrics(log logrus.FieldLogger, stage string, before, after gocv.Mat, res *Result) {
	values := p.evaluator.EvaluateStage(stage, before, after)
	for name, v := range values {
		res.Metrics[stage+"."+name] = v

		entry := log.WithFields(logrus.Fields{"stage": stage, "metric": name})
		if metric, ok := p.evaluator.Get(name); ok {
			entry = entry.WithFields(logrus.Fields{
				"label":       metric.GetName(),
				"description": metric.GetDescription(),
			})
		}
		// JSON cannot encode an infinite PSNR.
		if math.IsInf(v, 0) {
			entry = entry.WithField("value", "inf")
		} else {
			entry = entry.WithField("value", v)
		}
		entry.Debug("Stage metric")
	}
}
