package location

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Error codes
const (
	CodeSelfParent        = "SELF_PARENT"
	CodeParentNotFound    = "PARENT_NOT_FOUND"
	CodeCircularReference = "CIRCULAR_REFERENCE"
	CodeDepthExceeded     = "DEPTH_EXCEEDED"
	CodeIncompatibleType  = "INCOMPATIBLE_TYPE"
	CodeHasChildren       = "HAS_CHILDREN"
	CodeHasItems          = "HAS_ITEMS"
)

const (
	// DefaultMaxDepth is the deepest level (1-based) a location may sit at
	DefaultMaxDepth = 5
	// DefaultHopLimit bounds every parent-chain walk
	DefaultHopLimit = 10
)

// HierarchyConfig holds the tree limits and the compatibility table
type HierarchyConfig struct {
	MaxDepth      int
	HopLimit      int
	Compatibility Compatibility
}

// DefaultHierarchyConfig returns the standard limits
func DefaultHierarchyConfig() HierarchyConfig {
	return HierarchyConfig{
		MaxDepth:      DefaultMaxDepth,
		HopLimit:      DefaultHopLimit,
		Compatibility: DefaultCompatibility(),
	}
}

// Hierarchy validates and queries the location tree
type Hierarchy struct {
	locations LocationReader
	items     ItemCounter
	config    HierarchyConfig
}

// NewHierarchy creates a Hierarchy
func NewHierarchy(locations LocationReader, items ItemCounter, config HierarchyConfig) *Hierarchy {
	if config.MaxDepth <= 0 {
		config.MaxDepth = DefaultMaxDepth
	}
	if config.HopLimit <= 0 {
		config.HopLimit = DefaultHopLimit
	}
	if config.Compatibility == nil {
		config.Compatibility = DefaultCompatibility()
	}
	return &Hierarchy{
		locations: locations,
		items:     items,
		config:    config,
	}
}

// Node is one location in the tree returned by BuildHierarchy
type Node struct {
	ID        uuid.UUID
	Code      string
	Name      string
	Type      LocationType
	IsActive  bool
	Level     int
	Path      string
	ItemCount int64
	Children  []*Node
}

// CapacityReport describes how full a location is
type CapacityReport struct {
	LocationID         uuid.UUID
	ItemCount          int64
	MaxCapacity        *int64
	UtilizationPercent decimal.Decimal
	Note               string
}

// ValidateParentAssignment checks that the stored location may be placed under proposedParentID
func (h *Hierarchy) ValidateParentAssignment(ctx context.Context, locationID uuid.UUID, proposedParentID *uuid.UUID) error {
	if proposedParentID != nil && *proposedParentID == locationID {
		return shared.NewDomainError(CodeSelfParent, "A location cannot be its own parent")
	}
	if proposedParentID == nil {
		return nil
	}

	loc, err := h.locations.FindByID(ctx, locationID)
	if err != nil {
		return err
	}
	return h.ValidatePlacement(ctx, loc, proposedParentID)
}

// ValidatePlacement checks that child may be placed under proposedParentID.
// child need not be stored yet. Checks run in order: self reference, parent
// existence, cycles, depth, type compatibility.
func (h *Hierarchy) ValidatePlacement(ctx context.Context, child *Location, proposedParentID *uuid.UUID) error {
	if proposedParentID != nil && *proposedParentID == child.ID {
		return shared.NewDomainError(CodeSelfParent, "A location cannot be its own parent")
	}
	if proposedParentID == nil {
		return nil
	}

	parent, err := h.locations.FindByID(ctx, *proposedParentID)
	if err != nil {
		if shared.IsNotFound(err) {
			return shared.NewDomainError(CodeParentNotFound, "Parent location not found")
		}
		return err
	}

	chainLength := 0
	visited := make(map[uuid.UUID]struct{})
	for current := parent; current != nil; {
		if current.ID == child.ID {
			return shared.NewDomainError(CodeCircularReference, "Assignment would create a circular reference")
		}
		if _, seen := visited[current.ID]; seen {
			return shared.NewDomainError(CodeCircularReference, "Location hierarchy already contains a cycle")
		}
		visited[current.ID] = struct{}{}

		chainLength++
		if chainLength > h.config.HopLimit {
			return shared.NewDomainError(shared.CodeInvariantViolation,
				fmt.Sprintf("Parent chain exceeds %d hops", h.config.HopLimit))
		}
		if current.ParentLocationID == nil {
			break
		}

		next, err := h.locations.FindByID(ctx, *current.ParentLocationID)
		if err != nil {
			if shared.IsNotFound(err) {
				break
			}
			return err
		}
		current = next
	}

	height, err := h.subtreeHeight(ctx, child.ID)
	if err != nil {
		return err
	}
	if chainLength+1+height > h.config.MaxDepth {
		return shared.NewDomainError(CodeDepthExceeded,
			fmt.Sprintf("Location hierarchy cannot exceed %d levels", h.config.MaxDepth))
	}

	if !h.config.Compatibility.Allows(parent.Type, child.Type) {
		return shared.NewDomainError(CodeIncompatibleType,
			fmt.Sprintf("A %s location cannot be placed under a %s location", child.Type, parent.Type))
	}
	return nil
}

// BuildHierarchy returns every root location with its subtree.
// Children are ordered by code; each node carries its 0-based level, the
// path from the root and the number of items stored directly at it.
func (h *Hierarchy) BuildHierarchy(ctx context.Context) ([]*Node, error) {
	var (
		all    []Location
		counts map[uuid.UUID]int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		all, err = h.locations.FindAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = h.items.CountsByLocation(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	known := make(map[uuid.UUID]struct{}, len(all))
	for i := range all {
		known[all[i].ID] = struct{}{}
	}

	children := make(map[uuid.UUID][]*Location)
	roots := make([]*Location, 0)
	for i := range all {
		loc := &all[i]
		if loc.IsRoot() {
			roots = append(roots, loc)
			continue
		}
		if _, ok := known[*loc.ParentLocationID]; !ok {
			// orphaned by a deleted parent; surface it at the top level
			roots = append(roots, loc)
			continue
		}
		children[*loc.ParentLocationID] = append(children[*loc.ParentLocationID], loc)
	}
	sortByCode(roots)
	for id := range children {
		sortByCode(children[id])
	}

	newNode := func(loc *Location, level int, parentPath string) *Node {
		path := loc.Label()
		if parentPath != "" {
			path = parentPath + " > " + path
		}
		return &Node{
			ID:        loc.ID,
			Code:      loc.Code,
			Name:      loc.Name,
			Type:      loc.Type,
			IsActive:  loc.IsActive,
			Level:     level,
			Path:      path,
			ItemCount: counts[loc.ID],
			Children:  make([]*Node, 0),
		}
	}

	result := make([]*Node, 0, len(roots))
	visited := make(map[uuid.UUID]struct{}, len(all))
	stack := make([]*Node, 0, len(roots))
	for _, root := range roots {
		node := newNode(root, 0, "")
		result = append(result, node)
		stack = append(stack, node)
		visited[root.ID] = struct{}{}
	}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, child := range children[node.ID] {
			if _, seen := visited[child.ID]; seen {
				continue
			}
			visited[child.ID] = struct{}{}
			childNode := newNode(child, node.Level+1, node.Path)
			node.Children = append(node.Children, childNode)
			stack = append(stack, childNode)
		}
	}

	return result, nil
}

// Ancestors returns the parent chain of a location, nearest first
func (h *Hierarchy) Ancestors(ctx context.Context, locationID uuid.UUID) ([]Location, error) {
	loc, err := h.locations.FindByID(ctx, locationID)
	if err != nil {
		return nil, err
	}

	ancestors := make([]Location, 0)
	visited := map[uuid.UUID]struct{}{loc.ID: {}}
	for parentID := loc.ParentLocationID; parentID != nil; {
		if _, seen := visited[*parentID]; seen {
			return nil, shared.NewDomainError(CodeCircularReference, "Location hierarchy contains a cycle")
		}
		if len(ancestors) >= h.config.HopLimit {
			return nil, shared.NewDomainError(shared.CodeInvariantViolation,
				fmt.Sprintf("Parent chain exceeds %d hops", h.config.HopLimit))
		}
		visited[*parentID] = struct{}{}

		parent, err := h.locations.FindByID(ctx, *parentID)
		if err != nil {
			if shared.IsNotFound(err) {
				break
			}
			return nil, err
		}
		ancestors = append(ancestors, *parent)
		parentID = parent.ParentLocationID
	}
	return ancestors, nil
}

// Descendants returns every location below locationID in breadth-first order
func (h *Hierarchy) Descendants(ctx context.Context, locationID uuid.UUID) ([]Location, error) {
	if _, err := h.locations.FindByID(ctx, locationID); err != nil {
		return nil, err
	}

	descendants := make([]Location, 0)
	visited := map[uuid.UUID]struct{}{locationID: {}}
	queue := []uuid.UUID{locationID}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		current := queue[0]
		queue = queue[1:]

		children, err := h.locations.FindChildren(ctx, current)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			if _, seen := visited[child.ID]; seen {
				continue
			}
			visited[child.ID] = struct{}{}
			descendants = append(descendants, child)
			queue = append(queue, child.ID)
		}
	}
	return descendants, nil
}

// subtreeHeight returns how many levels sit below locationID; 0 for a leaf
// or a location that is not stored yet.
func (h *Hierarchy) subtreeHeight(ctx context.Context, locationID uuid.UUID) (int, error) {
	height := 0
	visited := map[uuid.UUID]struct{}{locationID: {}}
	level := []uuid.UUID{locationID}
	for len(level) > 0 {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		next := make([]uuid.UUID, 0)
		for _, id := range level {
			children, err := h.locations.FindChildren(ctx, id)
			if err != nil {
				return 0, err
			}
			for _, child := range children {
				if _, seen := visited[child.ID]; seen {
					continue
				}
				visited[child.ID] = struct{}{}
				next = append(next, child.ID)
			}
		}
		if len(next) == 0 {
			break
		}
		height++
		if height > h.config.HopLimit {
			return 0, shared.NewDomainError(shared.CodeInvariantViolation,
				fmt.Sprintf("Subtree exceeds %d levels", h.config.HopLimit))
		}
		level = next
	}
	return height, nil
}

// CapacityUtilization reports items at the location as a percentage of its capacity
func (h *Hierarchy) CapacityUtilization(ctx context.Context, locationID uuid.UUID) (*CapacityReport, error) {
	loc, err := h.locations.FindByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	count, err := h.items.CountByLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}

	report := &CapacityReport{
		LocationID:         loc.ID,
		ItemCount:          count,
		MaxCapacity:        loc.MaxCapacity,
		UtilizationPercent: decimal.Zero,
	}
	if loc.MaxCapacity == nil || *loc.MaxCapacity <= 0 {
		report.Note = "No capacity limit configured for this location"
		return report, nil
	}

	report.UtilizationPercent = decimal.NewFromInt(count).
		Div(decimal.NewFromInt(*loc.MaxCapacity)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	return report, nil
}

// ValidateDeletion refuses to delete a location that still has children or items
func (h *Hierarchy) ValidateDeletion(ctx context.Context, locationID uuid.UUID) error {
	if _, err := h.locations.FindByID(ctx, locationID); err != nil {
		return err
	}

	hasChildren, err := h.locations.HasChildren(ctx, locationID)
	if err != nil {
		return err
	}
	if hasChildren {
		return shared.NewDomainError(CodeHasChildren, "Cannot delete a location that has child locations")
	}

	count, err := h.items.CountByLocation(ctx, locationID)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError(CodeHasItems,
			fmt.Sprintf("Cannot delete a location that holds %d inventory items", count))
	}
	return nil
}

func sortByCode(locs []*Location) {
	sort.Slice(locs, func(i, j int) bool {
		return strings.Compare(locs[i].Code, locs[j].Code) < 0
	})
}
