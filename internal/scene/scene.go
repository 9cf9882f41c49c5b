// Package scene owns entity identity and names on top of the transform
// graph, and mirrors bound skeletons into graph nodes so other entities can
// attach to animated joints.
package scene

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-rig/internal/transform"
)

// EntityID identifies an entity. The zero value means "no entity".
type EntityID string

func makeEntityID() EntityID {
	return EntityID(uuid.NewString())
}

type entity struct {
	id   EntityID
	name string
	node transform.NodeRef
	rig  *binding
}

// Scene is a set of named entities placed in a transform graph.
// It is owned by a single goroutine.
type Scene struct {
	graph    *transform.Graph
	entities map[EntityID]*entity
	byNode   map[transform.NodeRef]EntityID
	log      *zap.Logger
}

// Option configures a Scene.
type Option func(*Scene)

// WithLogger sets the logger for the scene and its graph.
func WithLogger(log *zap.Logger) Option {
	return func(s *Scene) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates an empty scene.
func New(opts ...Option) *Scene {
	s := &Scene{
		entities: make(map[EntityID]*entity),
		byNode:   make(map[transform.NodeRef]EntityID),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.graph = transform.New(transform.WithLogger(s.log.Named("graph")))
	return s
}

// Graph exposes the underlying transform graph for transform reads and
// writes.
func (s *Scene) Graph() *transform.Graph { return s.graph }

// Len returns the number of live entities.
func (s *Scene) Len() int { return len(s.entities) }

// Spawn creates a named entity at p. p.Parent may be any graph node,
// including an entity node or a bound joint node.
func (s *Scene) Spawn(name string, p transform.Placement) (EntityID, error) {
	node, err := s.graph.Register(p)
	if err != nil {
		return "", fmt.Errorf("spawn %q: %w", name, err)
	}
	e := &entity{id: makeEntityID(), name: name, node: node}
	s.entities[e.id] = e
	s.byNode[node] = e.id

	s.log.Debug("entity spawned", zap.String("id", string(e.id)), zap.String("name", name))
	return e.id, nil
}

// Despawn removes an entity. Without cascade it fails with
// transform.ErrHasChildren when anything hangs off the entity, including
// bound joints. With cascade every descendant entity is removed as well.
func (s *Scene) Despawn(id EntityID, cascade bool) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	if !cascade {
		if err := s.graph.Unregister(e.node); err != nil {
			return fmt.Errorf("despawn %s: %w", id, err)
		}
		s.forget(e)
		return nil
	}

	if err := s.graph.UnregisterTree(e.node); err != nil {
		return fmt.Errorf("despawn %s: %w", id, err)
	}
	s.prune()
	return nil
}

func (s *Scene) forget(e *entity) {
	delete(s.entities, e.id)
	delete(s.byNode, e.node)
	s.log.Debug("entity despawned", zap.String("id", string(e.id)), zap.String("name", e.name))
}

// prune drops entities whose nodes were removed from the graph.
func (s *Scene) prune() {
	for _, e := range s.entities {
		if _, err := s.graph.Parent(e.node); err != nil {
			s.forget(e)
		}
	}
}

func (s *Scene) lookup(id EntityID) (*entity, error) {
	e, ok := s.entities[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, id)
	}
	return e, nil
}

// Node returns the graph node of an entity.
func (s *Scene) Node(id EntityID) (transform.NodeRef, error) {
	e, err := s.lookup(id)
	if err != nil {
		return transform.NodeRef{}, err
	}
	return e.node, nil
}

// Name returns the entity name.
func (s *Scene) Name(id EntityID) (string, error) {
	e, err := s.lookup(id)
	if err != nil {
		return "", err
	}
	return e.name, nil
}

// Rename changes the entity name.
func (s *Scene) Rename(id EntityID, name string) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	e.name = name
	return nil
}

// EntityAt returns the entity owning node, if any.
func (s *Scene) EntityAt(node transform.NodeRef) (EntityID, bool) {
	id, ok := s.byNode[node]
	return id, ok
}

// Reparent moves an entity under parent, or to the root set when parent is
// zero. The entity keeps its world pose.
func (s *Scene) Reparent(id, parent EntityID) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	var target transform.NodeRef
	if parent != "" {
		p, err := s.lookup(parent)
		if err != nil {
			return err
		}
		target = p.node
	}
	return s.graph.SetParent(e.node, target)
}

// Attach moves an entity under an arbitrary graph node, such as a joint node.
func (s *Scene) Attach(id EntityID, node transform.NodeRef) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	return s.graph.SetParent(e.node, node)
}

func (s *Scene) nameOf(node transform.NodeRef) (string, bool) {
	id, ok := s.byNode[node]
	if !ok {
		return "", false
	}
	return s.entities[id].name, true
}

func (s *Scene) baseNode(base EntityID) (transform.NodeRef, error) {
	if base == "" {
		return transform.NodeRef{}, nil
	}
	e, err := s.lookup(base)
	if err != nil {
		return transform.NodeRef{}, err
	}
	return e.node, nil
}

// FindFirstNamed searches the direct children of base (the root set when
// base is zero) for an entity called name. Deeper descendants are not
// searched.
func (s *Scene) FindFirstNamed(base EntityID, name string) (EntityID, bool, error) {
	node, err := s.baseNode(base)
	if err != nil {
		return "", false, err
	}
	ref, ok, err := s.graph.FindFirstNamed(node, name, s.nameOf)
	if err != nil || !ok {
		return "", false, err
	}
	return s.byNode[ref], true, nil
}

// FindAllNamed is FindFirstNamed returning every match.
func (s *Scene) FindAllNamed(base EntityID, name string) ([]EntityID, error) {
	node, err := s.baseNode(base)
	if err != nil {
		return nil, err
	}
	refs, err := s.graph.FindAllNamed(node, name, s.nameOf)
	if err != nil {
		return nil, err
	}
	out := make([]EntityID, len(refs))
	for i, ref := range refs {
		out[i] = s.byNode[ref]
	}
	return out, nil
}
