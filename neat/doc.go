// Package neat provides the neuroevolution core used to train pendulum controllers.
//
// Genomes are directed acyclic graphs of nodes and weighted connections. The
// Mutator grows them by splitting connections and adding new ones, and the
// Evolver keeps the best entries of a scored population while refilling it with
// mutated clones of roulette-picked parents. Genomes are compiled for execution
// by the nn subpackage.
//
// Basic usage:
//
//	// Load configuration
//	config, err := neat.LoadConfig("path/to/config")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	rng := neat.NewRNG(config.Experiment.SeedOffset)
//	evolver := neat.NewEvolver(config.Selection, neat.NewMutator(config.Mutation, rng), rng)
//	population := neat.NewPopulation(config.Selection.PopulationSize, 8, 1)
//
//	for i := 0; i < 100; i++ {
//		for j := range population {
//			population[j].Score = evaluate(nn.Generate(&population[j].Genome))
//		}
//		population = evolver.CreateNewGeneration(population)
//	}
package neat
