package supply

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"bookkeeping-backend/internal/apperr"
	"bookkeeping-backend/internal/models"
)

type CreateSupplyTypeRequest struct {
	Name        string `json:"name" form:"name" validate:"required,max=100"`
	Description string `json:"description" form:"description" validate:"max=200"`
	ParentID    *uint  `json:"parent_id" form:"parent_id"`
}

func (s *Service) CreateSupplyType(ctx context.Context, in CreateSupplyTypeRequest) (*models.SupplyType, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := apperr.Validate(in); err != nil {
		return nil, err
	}
	if in.ParentID != nil && *in.ParentID == 0 {
		in.ParentID = nil
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.SupplyType{}).Where("name = ?", in.Name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.Conflict("supply type %s already exists", in.Name)
	}

	if in.ParentID != nil {
		var parent models.SupplyType
		if err := db.Select("id").First(&parent, *in.ParentID).Error; err != nil {
			return nil, apperr.FromDB(err, fmt.Sprintf("parent supply type %d", *in.ParentID))
		}
	}

	st := models.SupplyType{
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		ParentID:    in.ParentID,
	}
	if err := db.Create(&st).Error; err != nil {
		return nil, apperr.FromDB(err, "supply type "+in.Name)
	}
	return &st, nil
}

func (s *Service) ListSupplyTypes(ctx context.Context) ([]models.SupplyType, error) {
	var rows []models.SupplyType
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list supply types: %w", err)
	}
	return rows, nil
}

// SupplyTypeTree loads every supply type into a Tree.
func (s *Service) SupplyTypeTree(ctx context.Context) (*Tree, error) {
	rows, err := s.ListSupplyTypes(ctx)
	if err != nil {
		return nil, err
	}
	return NewTree(rows), nil
}

// Node is one supply type in a Tree. Parent and children are ids into the tree.
type Node struct {
	ID       uint
	Name     string
	ParentID *uint
	Children []uint
}

// Tree indexes supply types by id.
type Tree struct {
	nodes map[uint]*Node
	roots []uint
}

// NewTree builds the index. A type whose parent is missing is a root.
func NewTree(rows []models.SupplyType) *Tree {
	t := &Tree{nodes: make(map[uint]*Node, len(rows))}
	for _, st := range rows {
		t.nodes[st.ID] = &Node{ID: st.ID, Name: st.Name, ParentID: st.ParentID}
	}
	for _, n := range t.nodes {
		if n.ParentID == nil {
			t.roots = append(t.roots, n.ID)
			continue
		}
		parent, ok := t.nodes[*n.ParentID]
		if !ok {
			t.roots = append(t.roots, n.ID)
			continue
		}
		parent.Children = append(parent.Children, n.ID)
	}
	slices.Sort(t.roots)
	for _, n := range t.nodes {
		slices.Sort(n.Children)
	}
	return t
}

func (t *Tree) Node(id uint) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

func (t *Tree) Roots() []uint {
	return t.roots
}

func (t *Tree) Len() int {
	return len(t.nodes)
}

// Ancestors returns the parent chain of id, nearest first. It stops at a
// repeated id, so rows forming a cycle still terminate.
func (t *Tree) Ancestors(id uint) []uint {
	var out []uint
	seen := map[uint]bool{id: true}

	n, ok := t.nodes[id]
	for ok && n.ParentID != nil {
		pid := *n.ParentID
		if seen[pid] {
			break
		}
		seen[pid] = true
		n, ok = t.nodes[pid]
		if !ok {
			break
		}
		out = append(out, pid)
	}
	return out
}

// Path renders the names from the root down to id, e.g. "Cement / OPC 53".
func (t *Tree) Path(id uint) string {
	n, ok := t.nodes[id]
	if !ok {
		return ""
	}
	anc := t.Ancestors(id)
	names := make([]string, 0, len(anc)+1)
	for i := len(anc) - 1; i >= 0; i-- {
		names = append(names, t.nodes[anc[i]].Name)
	}
	names = append(names, n.Name)
	return strings.Join(names, " / ")
}
