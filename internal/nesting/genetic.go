package nesting

import (
	"context"
	"math/rand"
	"sort"

	"github.com/piwi3910/sheetnest/internal/model"
)

// RefineConfig holds parameters for the order-refinement search.
type RefineConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	TournamentSize int
	EliteCount     int
	Seed           int64
}

// DefaultRefineConfig returns sensible defaults. The fixed seed keeps
// refinement deterministic for identical inputs.
func DefaultRefineConfig() RefineConfig {
	return RefineConfig{
		PopulationSize: 50,
		Generations:    100,
		MutationRate:   0.15,
		TournamentSize: 3,
		EliteCount:     2,
		Seed:           42,
	}
}

// gene is a single placement decision: which part instance, and whether to
// prefer the rotated orientation.
type gene struct {
	partIndex int
	rotated   bool
}

type chromosome struct {
	genes   []gene
	fitness float64
}

// refiner searches over part orderings and rotation preferences, decoding
// each candidate through the same guillotine packing the scheduler uses.
// The greedy heuristic fixes its order up front; the search frequently
// finds orderings that squeeze out another part or drop a sheet.
type refiner struct {
	settings  model.Settings
	config    RefineConfig
	parts     []model.Part // expanded, one instance per unit
	instances []model.SheetDefinition
	rng       *rand.Rand
}

// RefineOrder runs a genetic search over part order and rotation and
// returns the best nesting found. Inputs follow the scheduler contract;
// shelf jobs decode with the guillotine packer since shelf ordering is
// fixed by its height sort. The context is checked between generations.
func RefineOrder(ctx context.Context, parts []model.Part, sheets []model.SheetDefinition, settings model.Settings, config RefineConfig) (model.NestingResult, error) {
	if err := model.ValidateJob(parts, sheets, settings); err != nil {
		return model.NestingResult{}, err
	}
	if settings.Strategy == model.StrategyShelf {
		settings.Strategy = model.StrategyGuillotine
	}

	expanded := model.ExpandParts(parts)
	if len(expanded) == 0 {
		return model.NestingResult{}, nil
	}

	// Scale effort with problem size, as the greedy pass is already good
	// for small jobs.
	if len(expanded) > 20 {
		config.Generations = max(config.Generations, 150)
	}
	if len(expanded) > 50 {
		config.Generations = max(config.Generations, 200)
		config.PopulationSize = max(config.PopulationSize, 80)
	}

	r := &refiner{
		settings:  settings,
		config:    config,
		parts:     expanded,
		instances: model.ExpandSheets(sheets),
		rng:       rand.New(rand.NewSource(config.Seed)),
	}
	return r.optimize(ctx)
}

func (r *refiner) optimize(ctx context.Context) (model.NestingResult, error) {
	population := r.initPopulation()
	for i := range population {
		population[i].fitness = r.evaluate(population[i])
	}

	for gen := 0; gen < r.config.Generations; gen++ {
		if cancelled(ctx) {
			break
		}

		sort.SliceStable(population, func(i, j int) bool {
			return population[i].fitness > population[j].fitness
		})

		newPop := make([]chromosome, 0, r.config.PopulationSize)
		elite := min(r.config.EliteCount, len(population))
		for i := 0; i < elite; i++ {
			newPop = append(newPop, copyChromosome(population[i]))
		}

		for len(newPop) < r.config.PopulationSize {
			parent1 := r.tournamentSelect(population)
			parent2 := r.tournamentSelect(population)
			child := r.orderCrossover(parent1, parent2)
			r.mutate(&child)
			child.fitness = r.evaluate(child)
			newPop = append(newPop, child)
		}
		population = newPop
	}

	sort.SliceStable(population, func(i, j int) bool {
		return population[i].fitness > population[j].fitness
	})
	return r.decode(population[0]), ctx.Err()
}

func (r *refiner) initPopulation() []chromosome {
	n := len(r.parts)
	population := make([]chromosome, r.config.PopulationSize)

	for i := range population {
		genes := make([]gene, n)
		for j, idx := range r.rng.Perm(n) {
			genes[j] = gene{
				partIndex: idx,
				rotated:   r.parts[idx].RotationAllowed && r.rng.Float64() < 0.5,
			}
		}
		population[i] = chromosome{genes: genes}
	}

	// Seed one chromosome with the greedy order so the search never starts
	// worse than the plain heuristic.
	if len(population) > 0 {
		population[0] = r.greedyChromosome()
	}
	return population
}

func (r *refiner) greedyChromosome() chromosome {
	n := len(r.parts)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(i, j int) bool {
		return r.parts[indices[i]].Area() > r.parts[indices[j]].Area()
	})

	genes := make([]gene, n)
	for i, idx := range indices {
		genes[i] = gene{partIndex: idx}
	}
	return chromosome{genes: genes}
}

func (r *refiner) evaluate(c chromosome) float64 {
	result := r.decode(c)
	if result.SheetCount() == 0 {
		return 0
	}

	fitness := result.TotalUtilization()
	fitness -= float64(len(result.Unplaced)) * 0.1
	fitness -= float64(result.SheetCount()-1) * 0.05
	if fitness < 0 {
		fitness = 0
	}
	return fitness
}

// decode packs the chromosome's ordering across sheet instances in
// declaration order, honoring each gene's rotation preference with
// fallback to the other orientation.
func (r *refiner) decode(c chromosome) model.NestingResult {
	result := model.NestingResult{}
	remaining := make([]gene, len(c.genes))
	copy(remaining, c.genes)

	ripBias := r.settings.Strategy == model.StrategyCutOptimized

	for _, inst := range r.instances {
		if len(remaining) == 0 {
			break
		}

		sheetIndex := len(result.Sheets)
		gp := newGuillotinePacker(inst.Width, inst.Height, r.settings, ripBias)

		var placed []model.PlacedPart
		var unplaced []gene
		for _, g := range remaining {
			part := r.parts[g.partIndex]
			pp, ok := insertPreferring(gp, part, g.rotated)
			if !ok {
				unplaced = append(unplaced, g)
				continue
			}
			pp.SheetIndex = sheetIndex
			placed = append(placed, pp)
		}

		if len(placed) > 0 {
			var used float64
			for _, p := range placed {
				used += p.Area()
			}
			result.Placements = append(result.Placements, placed...)
			result.Sheets = append(result.Sheets, model.SheetStats{
				SheetIndex:  sheetIndex,
				Definition:  inst,
				PartCount:   len(placed),
				UsedArea:    used,
				Utilization: used / inst.Area(),
			})
		}
		remaining = unplaced
	}

	for _, g := range remaining {
		result.Unplaced = append(result.Unplaced, model.UnplacedPart{
			Part:   r.parts[g.partIndex],
			Reason: model.ReasonSheetsExhausted,
		})
	}
	return result
}

// insertPreferring tries the preferred orientation first and falls back to
// the other when it does not fit.
func insertPreferring(gp *guillotinePacker, part model.Part, preferRotated bool) (model.PlacedPart, bool) {
	type attempt struct {
		w, h float64
		deg  int
	}
	attempts := []attempt{{part.Width, part.Height, 0}}
	if part.RotationAllowed && part.Width != part.Height {
		rotated := attempt{part.Height, part.Width, 90}
		if preferRotated {
			attempts = []attempt{rotated, attempts[0]}
		} else {
			attempts = append(attempts, rotated)
		}
	}

	for _, a := range attempts {
		if x, y, ok := gp.insert(a.w, a.h); ok {
			return model.PlacedPart{
				PartID:      part.ID,
				Label:       part.Label,
				X:           x,
				Y:           y,
				Width:       a.w,
				Height:      a.h,
				RotationDeg: a.deg,
			}, true
		}
	}
	return model.PlacedPart{}, false
}

func (r *refiner) tournamentSelect(population []chromosome) chromosome {
	best := population[r.rng.Intn(len(population))]
	for i := 1; i < r.config.TournamentSize; i++ {
		candidate := population[r.rng.Intn(len(population))]
		if candidate.fitness > best.fitness {
			best = candidate
		}
	}
	return copyChromosome(best)
}

// orderCrossover implements Order Crossover (OX1), preserving the relative
// order of genes from both parents.
func (r *refiner) orderCrossover(parent1, parent2 chromosome) chromosome {
	n := len(parent1.genes)
	if n <= 2 {
		return copyChromosome(parent1)
	}

	point1 := r.rng.Intn(n)
	point2 := r.rng.Intn(n)
	if point1 > point2 {
		point1, point2 = point2, point1
	}

	child := chromosome{genes: make([]gene, n)}
	inSegment := make(map[int]bool, point2-point1+1)
	for i := point1; i <= point2; i++ {
		child.genes[i] = parent1.genes[i]
		inSegment[parent1.genes[i].partIndex] = true
	}

	childIdx := (point2 + 1) % n
	for _, g := range parent2.genes {
		if !inSegment[g.partIndex] {
			child.genes[childIdx] = g
			childIdx = (childIdx + 1) % n
		}
	}
	return child
}

func (r *refiner) mutate(c *chromosome) {
	n := len(c.genes)
	if n < 2 {
		return
	}

	// Swap mutation.
	if r.rng.Float64() < r.config.MutationRate {
		i, j := r.rng.Intn(n), r.rng.Intn(n)
		c.genes[i], c.genes[j] = c.genes[j], c.genes[i]
	}

	// Rotation toggle where the part allows it.
	if r.rng.Float64() < r.config.MutationRate {
		i := r.rng.Intn(n)
		if r.parts[c.genes[i].partIndex].RotationAllowed {
			c.genes[i].rotated = !c.genes[i].rotated
		}
	}

	// Segment inversion, less frequent.
	if r.rng.Float64() < r.config.MutationRate*0.5 {
		i, j := r.rng.Intn(n), r.rng.Intn(n)
		if i > j {
			i, j = j, i
		}
		for i < j {
			c.genes[i], c.genes[j] = c.genes[j], c.genes[i]
			i++
			j--
		}
	}
}

func copyChromosome(c chromosome) chromosome {
	genes := make([]gene, len(c.genes))
	copy(genes, c.genes)
	return chromosome{genes: genes, fitness: c.fitness}
}
