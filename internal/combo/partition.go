package combo

import (
	"fmt"
	"sort"

	"combo/internal/ir"
)

// partition is one congruence class: a set of nodes COMBO currently believes
// compute the same value (spec.md §4.2). Partitions only ever split, never
// merge, which is what makes the refinement terminate.
//
// Members are kept on two lists per spec.md §3's Partition field list
// (Leader list / Follower list): leaders have had their split_by_what key
// checked against the rest of the class this round, followers have not.
// splitOne's fast split only re-keys leaders; a follower is only re-examined
// — "raced" against the groups the leader split just produced — once its
// partition actually splits, at which point it is either promoted to leader
// in whichever group its key now matches, or, if it matches none, spun off
// as the leader of a brand-new partition (spec.md §4.2 fast split / race
// split, follower promotion).
type partition struct {
	id        int
	leaders   []*wrapper
	followers []*wrapper
	onW       bool // membership in the solver's W worklist (spec.md §4.3)
}

func (p *partition) String() string { return fmt.Sprintf("P%d", p.id) }

// members returns every node currently in p, leaders and followers alike —
// the view callers outside this file need (Inspect, verify, the REPL).
func (p *partition) members() []*wrapper {
	all := make([]*wrapper, 0, len(p.leaders)+len(p.followers))
	all = append(all, p.leaders...)
	all = append(all, p.followers...)
	return all
}

// store owns every live partition and the node→partition index.
type store struct {
	nextID     int
	partitions map[int]*partition
	byNode     map[*ir.Node]*partition
}

func newStore() *store {
	return &store{partitions: map[int]*partition{}, byNode: map[*ir.Node]*partition{}}
}

// newPartition creates a partition whose given members are all leaders —
// correct whenever the caller just grouped them by a freshly computed
// split_by_what key, which is true at every call site in this package.
func (s *store) newPartition(leaders []*wrapper) *partition {
	s.nextID++
	p := &partition{id: s.nextID, leaders: leaders}
	s.partitions[p.id] = p
	for _, w := range leaders {
		w.partition = p
		w.isFollower = false
		s.byNode[w.node] = p
	}
	return p
}

// addFollower assigns w to p as a follower: a member whose split_by_what key
// has not been checked against p's current leader key.
func (s *store) addFollower(p *partition, w *wrapper) {
	p.followers = append(p.followers, w)
	w.partition = p
	w.isFollower = true
	s.byNode[w.node] = p
}

// promote moves a follower into the given partition as a leader, since its
// split_by_what key has just been checked and found to match that
// partition's own leader key.
func (s *store) promote(p *partition, w *wrapper) {
	p.leaders = append(p.leaders, w)
	w.partition = p
	w.isFollower = false
	s.byNode[w.node] = p
}

func (s *store) of(n *ir.Node) *partition { return s.byNode[n] }

// key is a congruence characteristic: two nodes sharing a key are candidates
// for the same class this round (spec.md §4.2 split_by_what). Inputs are
// recorded as the *current* partition id of each operand, which is exactly
// why splitting an operand's partition can force a re-split here.
type key struct {
	op     ir.Opcode
	mode   string
	typ    string
	inputs string
	attr   string
	block  int
}

// isPinned reports whether n's identity is tied to the block it executes
// in: memory operations and control-flow nodes may not be GCSE'd across
// blocks regardless of Config.GCSEIgnoreControlEdge, since reordering them
// relative to their block would change program behavior (spec.md §4.2,
// §9's GCSE-vs-pinned distinction).
func isPinned(op ir.Opcode) bool {
	switch op {
	case ir.OpLoad, ir.OpStore, ir.OpCall, ir.OpSync,
		ir.OpJmp, ir.OpCond, ir.OpSwitch, ir.OpReturn, ir.OpBlock, ir.OpEnd:
		return true
	default:
		return false
	}
}

// splitKey computes split_by_what(n): the opcode, mode, current lattice
// type and static attribute (Proj index, Cmp/Confirm relation, Call/SymConst
// entity, Switch cases), plus the partition identity of every input,
// commutativity-normalized so op(a,b) and op(b,a) land on the same key
// (spec.md §4.2). The containing block's identity (its node ID) participates
// in the key for pinned nodes always, and for unpinned (floating, pure) nodes
// only when Config.GCSEIgnoreControlEdge is false — set that knob to allow
// floating nodes in different blocks to GCSE together (spec.md §4.2,
// Config.GCSEIgnoreControlEdge).
func splitKey(ctx *Context, n *ir.Node) key {
	ids := make([]int, len(n.In))
	for i, in := range n.In {
		if in == nil {
			ids[i] = -1
			continue
		}
		if p := ctx.store.of(in); p != nil {
			ids[i] = p.id
		} else {
			ids[i] = -1
		}
	}
	if ir.IsCommutative(n.Op) && len(ids) == 2 && ids[0] > ids[1] {
		ids[0], ids[1] = ids[1], ids[0]
	}
	w := ctx.wrapperOf(n)

	blockID := -1
	if isPinned(n.Op) || !ctx.Config.GCSEIgnoreControlEdge {
		if n.Block != nil {
			blockID = n.Block.ID
		}
	}

	return key{
		op:     n.Op,
		mode:   n.Mode.String(),
		typ:    w.typ.String(),
		inputs: fmt.Sprint(ids),
		attr:   attrKey(n),
		block:  blockID,
	}
}

// attrKey fingerprints the static, non-lattice data an opcode carries, so
// e.g. Proj #0 and Proj #1 of the same Cond never collapse into one
// congruence class just because their operand partitions happen to match.
func attrKey(n *ir.Node) string {
	switch n.Op {
	case ir.OpProj:
		return fmt.Sprintf("proj:%d", n.Attr.(*ir.ProjAttr).Index)
	case ir.OpCmp:
		return "cmp:" + n.Attr.(*ir.CmpAttr).Relation.String()
	case ir.OpConfirm:
		return "confirm:" + n.Attr.(*ir.ConfirmAttr).Relation.String()
	case ir.OpCall:
		return "call:" + n.Attr.(*ir.CallAttr).Entity
	case ir.OpSymConst:
		return "sym:" + n.Attr.(*ir.SymConstAttr).Entity
	case ir.OpSwitch:
		attr := n.Attr.(*ir.SwitchAttr)
		return fmt.Sprintf("switch:%d:%d:%d", len(attr.Cases), attr.NumOuts, attr.DefaultOut)
	default:
		return ""
	}
}

// initialKey is the coarse grouping used to seed partitions before any
// lattice information exists: same opcode and mode only (spec.md §4.2,
// "initial partition: one class per opcode").
func initialKey(n *ir.Node) key {
	return key{op: n.Op, mode: n.Mode.String()}
}

// buildInitialPartitions groups every node in the graph (excluding Block/End/
// Start pseudo-nodes, which the solver tracks via reachability instead) by
// initialKey, producing the coarsest sound starting point for refinement.
// Phi nodes go in as followers rather than leaders: a Phi's split_by_what
// key depends on the partitions of its operands, which may themselves sit
// behind a loop back-edge not yet visited, so a Phi's key cannot be trusted
// the first time its partition is examined. It rides as a follower until its
// partition actually splits and the race split checks it for real (spec.md
// §3/§4.2 leader/follower split).
func (ctx *Context) buildInitialPartitions() {
	groups := map[key][]*wrapper{}
	var order []key
	ctx.forEachNode(func(n *ir.Node) {
		if n.Op == ir.OpBlock || n.Op == ir.OpEnd {
			return
		}
		k := initialKey(n)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], ctx.wrapperOf(n))
	})
	for _, k := range order {
		var leaders, followers []*wrapper
		for _, w := range groups[k] {
			if w.node.Op == ir.OpPhi {
				followers = append(followers, w)
			} else {
				leaders = append(leaders, w)
			}
		}
		if len(leaders) == 0 {
			// An all-Phi class (e.g. one opcode/mode pair with no non-Phi
			// member at all): seed one of them as the leader so the
			// partition has something for splitOne's fast split to anchor
			// on; the rest stay followers and race against it.
			leaders, followers = followers[:1], followers[1:]
		}
		p := ctx.store.newPartition(leaders)
		for _, w := range followers {
			ctx.store.addFollower(p, w)
		}
		ctx.pushW(p)
	}
}

// groupByKey buckets members by their current split_by_what key, returning
// the groups and the keys in first-seen order.
func groupByKey(ctx *Context, members []*wrapper) (map[key][]*wrapper, []key) {
	groups := map[key][]*wrapper{}
	var order []key
	for _, w := range members {
		k := splitKey(ctx, w.node)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], w)
	}
	return groups, order
}

func biggestFirst(groups map[key][]*wrapper, order []key) {
	sort.Slice(order, func(i, j int) bool { return len(groups[order[i]]) > len(groups[order[j]]) })
}

// splitOne re-evaluates one partition's leaders against their current
// split_by_what keys (the fast split — followers are not re-keyed here).
// If more than one key is present among the leaders, the partition splits:
// the largest resulting group keeps p's identity (and is not requeued,
// following the "always work off the smaller side" discipline of
// Hopcroft-style refinement), every other group becomes a fresh partition
// and is pushed back onto W, and every user of a node that just changed
// partition is pushed back onto W too, since its own split key depended on
// this node's old partition id (spec.md §4.2 fast split).
//
// Either way, p's followers are then raced against the resulting leader
// groups (raceSplitFollowers): this is the one place a follower's key is
// ever actually checked, so it must run even when the leaders themselves
// did not split, or an all-follower partition (e.g. the all-Phi class
// buildInitialPartitions seeds) would never get refined at all.
func (ctx *Context) splitOne(p *partition) {
	followers := p.followers
	p.followers = nil

	var fresh []*partition

	if len(p.leaders) > 1 {
		groups, order := groupByKey(ctx, p.leaders)
		if len(order) > 1 {
			biggestFirst(groups, order)

			// largest group keeps p's identity in place.
			p.leaders = groups[order[0]]
			for _, w := range p.leaders {
				w.partition = p
				w.isFollower = false
			}

			for _, k := range order[1:] {
				members := groups[k]
				np := ctx.store.newPartition(members)
				ctx.pushW(np)
				fresh = append(fresh, np)
				for _, w := range members {
					ctx.enqueueUsers(w.node)
				}
			}
		}
	}

	// Race the followers against whatever leader groups now exist — p's
	// original one plus any carved off above — regardless of whether the
	// leaders themselves just split: this is the only place a follower's
	// key is ever checked, so skipping it whenever the leaders agree would
	// leave an all-follower partition (the all-Phi class
	// buildInitialPartitions seeds) permanently unrefined.
	ctx.raceSplitFollowers(p, fresh, followers)
}

// raceSplitFollowers checks every follower's split_by_what key against the
// leader groups splitOne just produced (p itself plus any fresh partitions
// carved off it). A follower whose key matches one of those groups is
// promoted to leader there — this is the "race split" spec.md §4.2
// describes, since the follower is racing to catch up with a split its
// leader already went through. A follower whose key matches none of them is
// itself grouped with any other such followers sharing a key and promoted
// straight to leader of a brand-new partition, since its key has now been
// checked for the first time.
func (ctx *Context) raceSplitFollowers(p *partition, fresh []*partition, followers []*wrapper) {
	if len(followers) == 0 {
		return
	}

	reprKey := map[*partition]key{}
	if len(p.leaders) > 0 {
		reprKey[p] = splitKey(ctx, p.leaders[0].node)
	}
	for _, np := range fresh {
		reprKey[np] = splitKey(ctx, np.leaders[0].node)
	}

	groups, order := groupByKey(ctx, followers)
	for _, k := range order {
		members := groups[k]

		var target *partition
		for part, rk := range reprKey {
			if rk == k {
				target = part
				break
			}
		}

		if target == nil {
			np := ctx.store.newPartition(members)
			ctx.pushW(np)
			for _, w := range members {
				ctx.enqueueUsers(w.node)
			}
			continue
		}

		for _, w := range members {
			ctx.store.promote(target, w)
			ctx.enqueueUsers(w.node)
		}
		if target != p {
			ctx.pushW(target)
		}
	}
}

// enqueueUsers pushes the partition of every direct user of n back onto W,
// since n having moved partitions may invalidate those users' split keys.
func (ctx *Context) enqueueUsers(n *ir.Node) {
	for _, e := range n.Uses {
		if p := ctx.store.of(e.User); p != nil {
			ctx.pushW(p)
		}
	}
	if n.Block != nil {
		if p := ctx.store.of(n.Block); p != nil {
			ctx.pushW(p)
		}
	}
}
