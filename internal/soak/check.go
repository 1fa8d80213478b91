// Package soak drives the batching engine through randomized object graphs
// and verifies its aliasing and consistency guarantees at runtime. It backs
// the copybatch CLI; it is a correctness harness, not a benchmark.
package soak

import (
	"fmt"
	"math/rand"
	"reflect"

	"github.com/bft-labs/copybatch/pkg/batch"
	"github.com/bft-labs/copybatch/pkg/log"
)

// Options configures a soak run.
type Options struct {
	// Graphs is the number of random graphs deferred per round.
	Graphs int

	// Rounds is the number of rounds; each round uses a fresh Batcher.
	Rounds int

	// Seed seeds the graph generator. Runs with equal options are
	// reproducible.
	Seed int64

	// Batch is the batcher configuration under test.
	Batch batch.Config

	// Logger receives per-violation detail. Defaults to no-op.
	Logger log.Logger
}

// Result summarizes a soak run.
type Result struct {
	Rounds     int
	Graphs     int
	Entries    int
	Violations int
}

// graphCase tracks one graph's handles through a round.
type graphCase struct {
	root     *Node
	preLabel string

	def    *batch.Handle // batcher-wide default policies
	pres1  *batch.Handle
	pres2  *batch.Handle
	dup1   *batch.Handle
	dup2   *batch.Handle
	strict *batch.Handle
	proxy  *batch.Proxy[*Node]

	// splitPres is set when an auto-flush landed between the two preserve
	// entries; shared-instance checks only hold within one batch.
	splitPres bool
}

// Run executes the soak and returns the violation count. The error return
// covers setup and copy failures, not invariant violations.
func Run(opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	res := Result{Rounds: opts.Rounds, Graphs: opts.Graphs}

	for round := 0; round < opts.Rounds; round++ {
		b, err := batch.New(opts.Batch, batch.WithLogger(logger))
		if err != nil {
			return res, err
		}
		rng := rand.New(rand.NewSource(opts.Seed + int64(round)))

		cases := make([]*graphCase, 0, opts.Graphs)
		for g := 0; g < opts.Graphs; g++ {
			root := buildGraph(rng, round*opts.Graphs+g)
			gc := &graphCase{root: root, preLabel: root.Label}

			// Strict snapshot first, then mutate the root so the
			// at-access entries observe a different state.
			gc.strict = b.Defer(root, batch.WithConsistency(batch.Strict))
			root.Label = root.Label + "+mutated"

			gc.def = b.Defer(root)
			gc.pres1 = b.Defer(root, batch.WithConsistency(batch.AtAccess), batch.WithAlias(batch.Preserve))
			gc.pres2 = b.Defer(root, batch.WithConsistency(batch.AtAccess), batch.WithAlias(batch.Preserve))
			gc.splitPres = gc.pres1.Ready() && !gc.pres2.Ready()
			gc.dup1 = b.Defer(root, batch.WithConsistency(batch.AtAccess), batch.WithAlias(batch.Duplicate))
			gc.dup2 = b.Defer(root, batch.WithConsistency(batch.AtAccess), batch.WithAlias(batch.Duplicate))
			gc.proxy = batch.DeferProxy(b, root, batch.WithConsistency(batch.AtAccess), batch.WithAlias(batch.Preserve))

			res.Entries += 7
			cases = append(cases, gc)
		}

		// One proxy access resolves every still-pending entry in the round.
		if _, err := cases[0].proxy.Value(); err != nil {
			return res, err
		}

		for _, gc := range cases {
			n, err := checkCase(b, gc, logger)
			if err != nil {
				return res, err
			}
			res.Violations += n
		}
	}
	return res, nil
}

// checkCase verifies one graph's guarantees and returns the number of
// violations found.
func checkCase(b *batch.Batcher, gc *graphCase, logger log.Logger) (int, error) {
	violations := 0
	flag := func(check string) {
		violations++
		logger.Error("invariant violated",
			log.String("check", check),
			log.Int("graph", gc.root.ID))
	}

	p1, err := getNode(b, gc.pres1)
	if err != nil {
		return violations, err
	}
	p2, err := getNode(b, gc.pres2)
	if err != nil {
		return violations, err
	}
	d1, err := getNode(b, gc.dup1)
	if err != nil {
		return violations, err
	}
	d2, err := getNode(b, gc.dup2)
	if err != nil {
		return violations, err
	}
	st, err := getNode(b, gc.strict)
	if err != nil {
		return violations, err
	}
	dv, err := getNode(b, gc.def)
	if err != nil {
		return violations, err
	}

	// Identity preservation: same-batch preserve entries share one output.
	if !gc.splitPres && p1 != p2 {
		flag("preserve-shared-instance")
	}
	if p1 == gc.root {
		flag("copy-aliases-source")
	}
	if !reflect.DeepEqual(p1, gc.root) {
		flag("preserve-deep-equal")
	}

	// Forced distinctness: duplicate entries never share, with each other,
	// the source, or the preserve output.
	if d1 == d2 {
		flag("duplicate-distinct")
	}
	if d1 == gc.root || d2 == gc.root {
		flag("duplicate-aliases-source")
	}
	if d1 == p1 || d2 == p1 {
		flag("duplicate-aliases-preserve")
	}
	if !reflect.DeepEqual(d1, gc.root) {
		flag("duplicate-deep-equal")
	}

	// Strict snapshot reflects the pre-mutation state.
	if st.Label != gc.preLabel {
		flag("strict-snapshot")
	}
	if st == gc.root {
		flag("strict-aliases-source")
	}

	// Default-policy entry is at minimum a faithful copy.
	if !reflect.DeepEqual(dv, gc.root) {
		flag("default-deep-equal")
	}

	// Cycle safety: back-edges in the copy point into the copy.
	if gc.root.Back == gc.root && p1.Back != p1 {
		flag("cycle-back-edge")
	}
	for _, child := range p1.Children {
		if child.Back != nil && child.Back != p1 {
			flag("cycle-child-back-edge")
		}
	}

	// Internal aliasing: every reference to the shared subtree maps to one
	// copied node, and never to the original.
	shared := sharedNodes(p1)
	for i := 1; i < len(shared); i++ {
		if shared[i] != shared[0] {
			flag("shared-subtree-instance")
		}
	}
	if orig := sharedNodes(gc.root); len(shared) > 0 && len(orig) > 0 && shared[0] == orig[0] {
		flag("shared-subtree-aliases-source")
	}

	return violations, nil
}

// getNode resolves a handle to a *Node.
func getNode(b *batch.Batcher, h *batch.Handle) (*Node, error) {
	v, err := b.Get(h)
	if err != nil {
		return nil, err
	}
	n, ok := v.(*Node)
	if !ok {
		return nil, fmt.Errorf("soak: resolved value is %T, not *Node", v)
	}
	return n, nil
}
