// Package ropevo is a Go substrate for evolving ROP payloads against an
// emulated CPU: a spatially structured population container, a family of
// fitness representations, selection strategies, and the profiling boundary
// that turns raw emulation effects into comparable scores.
//
// The repo deliberately stops at the emulation boundary. It defines what an
// emulator backend must provide (the CPU interface) and what comes back from
// a run (Profiler, Profile), but links no backend itself; adapters for
// Unicorn-style emulators live in their own modules and plug in through
// those types. Breeding operators are likewise the caller's: selection hands
// parents out, the driver breeds, and survivors go back into the container.
//
// Key Components:
//
//   - Geography: TrivialGeography, an ordered-slot population container.
//     Selection only competes candidates that live inside a radius-bounded
//     window of neighboring slots, which slows the spread of a dominant
//     genotype compared to panmictic selection. Populations can be built in
//     parallel and come out in a canonical slot order regardless of how the
//     construction interleaved.
//
//   - Fitness: representations for comparing candidates:
//     * Weighted: named objective scores scalarized through an arithmetic
//       weighting expression, with a memoized scalar
//     * Pareto: non-dominated comparison over score vectors
//     * ShuffleFit: epoch-keyed stochastic tie shuffling
//     * Lexical: ordered objective-by-objective comparison
//     Lower always means fitter.
//
//   - Emulator boundary: Profiler collects the observable effects of one
//     emulation (visited blocks, register snapshots, faults, timing);
//     Collate folds a batch of runs into a Profile, with distinct execution
//     paths held in a PrefixSet and register snapshots comparable through
//     MinHash similarity sketches.
//
//   - Selection: tournament, roulette, and lexicase strategies over the
//     geography container, all drawing through the same locality-restricted
//     windows and all reproducible under a fixed seed.
//
//   - Config: YAML run configuration with layered sources (files below
//     environment), validation, register-pattern files, per-island data
//     directory layout, and a manager for reload flows.
//
//   - Observer: the reporting side of the loop. Evaluations stream into a
//     sliding window; periodic summaries (gonum statistics, distinct path
//     counts, fault histograms) go to structured logs and to SQLite or
//     Parquet sinks; populations, champions, and gene-pool soup dump to
//     the formats the offline analysis tooling reads.
//
// Simple Example:
//
//	type Creature struct {
//	    Chromosome []uint64          `json:"chromosome"`
//	    Generation int               `json:"generation"`
//	    Fitness    *fitness.Weighted `json:"fitness"`
//	}
//
//	func (c *Creature) Hash() uint64 {
//	    var b []byte
//	    for _, word := range c.Chromosome {
//	        b = append(b, utils.U64LE(word)...)
//	    }
//	    return utils.Hash64(b)
//	}
//
//	cfg, err := config.Load(os.Args[1], "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rng := utils.SeededRNG(cfg.RandomSeed)
//
//	pop := geography.Generate(cfg.PopSize, cfg.Roper.NumWorkers, func(i int) *Creature {
//	    return spawn(cfg, i)
//	})
//	pop.SetRadius(cfg.Tournament.GeographicRadius)
//
//	sel := &selection.TournamentSelector[*Creature]{
//	    Size:       cfg.Tournament.TournamentSize,
//	    NumParents: cfg.Tournament.NumParents,
//	    Compare: func(a, b *Creature) fitness.Ordering {
//	        return a.Fitness.Compare(b.Fitness)
//	    },
//	}
//
//	sink, err := observer.NewSQLiteSink(filepath.Join(cfg.DataDirectory(), "observations.db"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	obs := observer.NewFitnessObserver(cfg.IslandID,
//	    cfg.Observer.WindowSize, cfg.Observer.ReportEvery, sink)
//	defer obs.Close()
//
//	for gen := 0; gen < generations; gen++ {
//	    parents, losers := sel.Select(pop, rng)
//	    for _, child := range breed(parents, rng) {
//	        profile := evaluate(child) // run the emulator, collate profilers
//	        score(child, profile)
//	        obs.Observe(observer.FromWeighted(cfg.IslandID, gen, child.Fitness, profile))
//	        pop.Insert(child)
//	    }
//	    for _, p := range parents {
//	        pop.Insert(p)
//	    }
//	    reinsertSurvivors(pop, losers)
//	}
//	obs.Report()
//
// For more examples and detailed documentation, visit:
// https://github.com/XiaoConstantine/ropevo-go
//
// ropevo-go is released under the MIT License.
package ropevo
